package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/peopleops/leaveledger/internal/domain"
)

const (
	defaultMinutesPerDay = 480
	overviewCacheTTL     = 5 * time.Minute
)

// BalanceOverview is the read-path rollup for one (employee, category)
// partition: the balance as of a policy period, expressed in minutes and
// working days.
type BalanceOverview struct {
	EmployeeID  string          `json:"employee_id"`
	CategoryID  string          `json:"category_id"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	Balance     int64           `json:"balance"`
	BalanceDays decimal.Decimal `json:"balance_days"`
}

// OverviewUseCase aggregates a category's standing without replaying the
// ledger: last balance inside the current policy-period window plus the
// consumption already booked beyond it.
type OverviewUseCase struct {
	balanceRepo    BalanceRepository
	assignmentRepo AssignmentRepository
	policyRepo     PolicyRepository
	employeeRepo   EmployeeRepository
	cache          Cache
	minutesPerDay  int64
}

// NewOverviewUseCase creates a new OverviewUseCase. cache may be nil, in
// which case every call hits the store. A non-positive minutesPerDay falls
// back to the eight-hour working day.
func NewOverviewUseCase(
	balanceRepo BalanceRepository,
	assignmentRepo AssignmentRepository,
	policyRepo PolicyRepository,
	employeeRepo EmployeeRepository,
	cache Cache,
	minutesPerDay int64,
) *OverviewUseCase {
	if minutesPerDay <= 0 {
		minutesPerDay = defaultMinutesPerDay
	}
	return &OverviewUseCase{
		balanceRepo:    balanceRepo,
		assignmentRepo: assignmentRepo,
		policyRepo:     policyRepo,
		employeeRepo:   employeeRepo,
		cache:          cache,
		minutesPerDay:  minutesPerDay,
	}
}

// Overview computes the rollup for the policy period containing asOf.
func (uc *OverviewUseCase) Overview(ctx context.Context, employeeID, categoryID string, asOf time.Time) (*BalanceOverview, error) {
	asOf = asOf.UTC()
	cacheKey := fmt.Sprintf("overview:%s:%s:%s", employeeID, categoryID, asOf.Format("2006-01-02"))

	if uc.cache != nil {
		if data, err := uc.cache.Get(ctx, cacheKey); err == nil && data != nil {
			var cached BalanceOverview
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	employee, err := uc.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	assignment, err := uc.assignmentRepo.ActiveAt(ctx, nil, employeeID, categoryID, asOf)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, domain.ErrNoPolicyAssigned
	}

	policy, err := uc.policyRepo.GetByID(ctx, assignment.PolicyID)
	if err != nil {
		return nil, err
	}

	step := policy.PeriodYears
	if step < 1 {
		step = 1
	}
	start := periodStartFor(assignment.EffectiveAt, asOf, step)
	end := start.AddDate(step, 0, 0)

	// Clip the window to the employment span.
	if start.Before(employee.HiredAt) {
		start = employee.HiredAt.UTC()
	}
	if employee.ContractEndAt != nil {
		boundary := employee.ContractEndAt.UTC().AddDate(0, 0, 1)
		if end.After(boundary) {
			end = boundary
		}
	}

	last, err := uc.balanceRepo.LastInRange(ctx, employeeID, categoryID, start, end)
	if err != nil {
		return nil, err
	}

	var balance int64
	if last != nil {
		balance = last.Balance
	}

	later, err := uc.balanceRepo.TimeOffAmountAfter(ctx, employeeID, categoryID, end)
	if err != nil {
		return nil, err
	}
	balance += later

	overview := &BalanceOverview{
		EmployeeID:  employeeID,
		CategoryID:  categoryID,
		PeriodStart: start,
		PeriodEnd:   end,
		Balance:     balance,
		BalanceDays: decimal.NewFromInt(balance).Div(decimal.NewFromInt(uc.minutesPerDay)).Round(2),
	}

	if uc.cache != nil {
		if data, err := json.Marshal(overview); err == nil {
			_ = uc.cache.Set(ctx, cacheKey, data, overviewCacheTTL)
		}
	}

	return overview, nil
}
