package usecase

import (
	"context"
	"time"

	"github.com/peopleops/leaveledger/internal/domain"
	"github.com/peopleops/leaveledger/internal/infrastructure/metrics"
)

// accrualTypes are the policy-generated entry types that period recreation
// destroys and rebuilds. Consumption and manual corrections survive.
var accrualTypes = []domain.BalanceType{
	domain.TypeAssignation,
	domain.TypeAddition,
	domain.TypeRemoval,
	domain.TypeEndOfPeriod,
}

// AssignmentUseCase orchestrates the (employee, time-off-policy) assignment
// lifecycle: each create/update/destroy tears down the policy-generated
// entries in the affected window, rebuilds them period by period, and
// schedules one recompute cascade from the earliest touched date.
type AssignmentUseCase struct {
	txManager      TransactionManager
	assignmentRepo AssignmentRepository
	policyRepo     PolicyRepository
	employeeRepo   EmployeeRepository
	balanceRepo    BalanceRepository
	outboxRepo     OutboxRepository
	idGen          IDGenerator
	creation       *BalanceCreationUseCase
	cascade        *CascadeUseCase
	metrics        *metrics.Metrics
}

// NewAssignmentUseCase creates a new AssignmentUseCase.
func NewAssignmentUseCase(
	txManager TransactionManager,
	assignmentRepo AssignmentRepository,
	policyRepo PolicyRepository,
	employeeRepo EmployeeRepository,
	balanceRepo BalanceRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	creation *BalanceCreationUseCase,
	cascade *CascadeUseCase,
	m *metrics.Metrics,
) *AssignmentUseCase {
	return &AssignmentUseCase{
		txManager:      txManager,
		assignmentRepo: assignmentRepo,
		policyRepo:     policyRepo,
		employeeRepo:   employeeRepo,
		balanceRepo:    balanceRepo,
		outboxRepo:     outboxRepo,
		idGen:          idGen,
		creation:       creation,
		cascade:        cascade,
		metrics:        m,
	}
}

// CreateAssignmentInput assigns a policy to an employee from a given day.
type CreateAssignmentInput struct {
	EmployeeID  string
	PolicyID    string
	AccountID   string
	EffectiveAt time.Time
}

// Create assigns the policy, regenerates the partition's accrual entries
// from the assignment date to today, and schedules the cascade.
func (uc *AssignmentUseCase) Create(ctx context.Context, input CreateAssignmentInput) (*domain.EmployeeTimeOffPolicy, error) {
	policy, err := uc.policyRepo.GetByID(ctx, input.PolicyID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.employeeRepo.GetByID(ctx, input.EmployeeID); err != nil {
		return nil, err
	}

	effective := midnightUTC(input.EffectiveAt)

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Close any assignment currently covering the category.
	prior, err := uc.assignmentRepo.ActiveAt(ctx, tx, input.EmployeeID, policy.CategoryID, effective)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		till := effective
		prior.EffectiveTill = &till
		prior.UpdatedAt = time.Now().UTC()
		if err := uc.assignmentRepo.Update(ctx, tx, prior); err != nil {
			return nil, err
		}
	}

	assignment := &domain.EmployeeTimeOffPolicy{
		ID:          uc.idGen.Generate(),
		EmployeeID:  input.EmployeeID,
		PolicyID:    input.PolicyID,
		CategoryID:  policy.CategoryID,
		EffectiveAt: effective,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := uc.assignmentRepo.Create(ctx, tx, assignment); err != nil {
		return nil, err
	}

	// A closed prior assignment keeps generating entries into the new
	// window until its accruals are torn down here.
	if err := uc.balanceRepo.DeleteTypesInWindow(ctx, tx, input.EmployeeID, policy.CategoryID, accrualTypes, effective, nil); err != nil {
		return nil, err
	}

	if err := uc.recreatePeriods(ctx, tx, assignment, policy, input.AccountID, effective, domain.TypeAssignation); err != nil {
		return nil, err
	}

	if err := uc.cascade.ScheduleFrom(ctx, tx, input.EmployeeID, policy.CategoryID, effective); err != nil {
		return nil, err
	}

	if err := uc.recordEvent(ctx, tx, assignment, domain.EventTypeAssignmentCreated); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AssignmentsCreated.Inc()
	}

	return assignment, nil
}

// Update moves an assignment to a new effective date. When the new date
// keeps the same period alignment (same month and day), the generated
// entries beyond the moved boundary stay valid and only the gap between old
// and new dates is rebuilt; otherwise the whole span from the earlier date
// is regenerated.
func (uc *AssignmentUseCase) Update(ctx context.Context, id string, newEffectiveAt time.Time) (*domain.EmployeeTimeOffPolicy, error) {
	assignment, err := uc.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	policy, err := uc.policyRepo.GetByID(ctx, assignment.PolicyID)
	if err != nil {
		return nil, err
	}

	employee, err := uc.employeeRepo.GetByID(ctx, assignment.EmployeeID)
	if err != nil {
		return nil, err
	}

	oldEffective := assignment.EffectiveAt
	newEffective := midnightUTC(newEffectiveAt)

	if newEffective.Equal(oldEffective) {
		return assignment, nil
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	assignment.EffectiveAt = newEffective
	assignment.UpdatedAt = time.Now().UTC()
	if err := uc.assignmentRepo.Update(ctx, tx, assignment); err != nil {
		return nil, err
	}

	start, _ := affectedWindow(oldEffective, newEffective, policy.PeriodYears)

	sameAlignment := oldEffective.Month() == newEffective.Month() && oldEffective.Day() == newEffective.Day()
	if sameAlignment {
		// Period starts after both dates are identical; only the entries
		// between the two boundaries need tearing down.
		later := oldEffective
		if newEffective.After(later) {
			later = newEffective
		}
		if newEffective.Before(oldEffective) {
			// Rebuild the gap plus the old boundary day, whose assignation
			// entry becomes a plain period addition.
			end := later.AddDate(0, 0, 1)
			if err := uc.balanceRepo.DeleteTypesInWindow(ctx, tx, assignment.EmployeeID, assignment.CategoryID, accrualTypes, start, &end); err != nil {
				return nil, err
			}
			if err := uc.recreatePeriodsUntil(ctx, tx, assignment, policy, employee.AccountID, newEffective, oldEffective, domain.TypeAssignation); err != nil {
				return nil, err
			}
		} else {
			if err := uc.balanceRepo.DeleteTypesInWindow(ctx, tx, assignment.EmployeeID, assignment.CategoryID, accrualTypes, start, &later); err != nil {
				return nil, err
			}
		}
	} else {
		if err := uc.balanceRepo.DeleteTypesInWindow(ctx, tx, assignment.EmployeeID, assignment.CategoryID, accrualTypes, start, nil); err != nil {
			return nil, err
		}
		if err := uc.recreatePeriods(ctx, tx, assignment, policy, employee.AccountID, newEffective, domain.TypeAssignation); err != nil {
			return nil, err
		}
	}

	if err := uc.cascade.ScheduleFrom(ctx, tx, assignment.EmployeeID, assignment.CategoryID, start); err != nil {
		return nil, err
	}

	if err := uc.recordEvent(ctx, tx, assignment, domain.EventTypeAssignmentCreated); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return assignment, nil
}

// Destroy removes an assignment and the accrual entries it generated.
// The cascade only runs when another assignment still covers the category;
// with no coverage left there is nothing to recompute against.
func (uc *AssignmentUseCase) Destroy(ctx context.Context, id string) error {
	assignment, err := uc.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.balanceRepo.DeleteTypesInWindow(ctx, tx, assignment.EmployeeID, assignment.CategoryID, accrualTypes, assignment.EffectiveAt, assignment.EffectiveTill); err != nil {
		return err
	}

	if err := uc.assignmentRepo.Delete(ctx, tx, assignment.ID); err != nil {
		return err
	}

	remaining, err := uc.assignmentRepo.ListByCategory(ctx, tx, assignment.EmployeeID, assignment.CategoryID)
	if err != nil {
		return err
	}

	if len(remaining) > 0 {
		if err := uc.cascade.ScheduleFrom(ctx, tx, assignment.EmployeeID, assignment.CategoryID, assignment.EffectiveAt); err != nil {
			return err
		}
	}

	if err := uc.recordEvent(ctx, tx, assignment, domain.EventTypeAssignmentRemoved); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.AssignmentsRemoved.Inc()
	}

	return nil
}

// recreatePeriods generates one accrual entry per policy-period repetition
// from the given date up to today, with paired validity-date removals for
// balancer policies once their expiry has passed. firstType lets the first
// period mark either a fresh assignation or a post-reset addition.
func (uc *AssignmentUseCase) recreatePeriods(
	ctx context.Context,
	tx Transaction,
	assignment *domain.EmployeeTimeOffPolicy,
	policy *domain.TimeOffPolicy,
	accountID string,
	from time.Time,
	firstType domain.BalanceType,
) error {
	return uc.recreatePeriodsUntil(ctx, tx, assignment, policy, accountID, from, time.Now().UTC(), firstType)
}

// recreatePeriodsUntil bounds generation to period starts strictly before
// until, so a partial rebuild never collides with entries that survived
// the teardown.
func (uc *AssignmentUseCase) recreatePeriodsUntil(
	ctx context.Context,
	tx Transaction,
	assignment *domain.EmployeeTimeOffPolicy,
	policy *domain.TimeOffPolicy,
	accountID string,
	from time.Time,
	until time.Time,
	firstType domain.BalanceType,
) error {
	starts := PeriodStarts(from, policy.PeriodYears, until).Collect()

	// Additions grouped by expiry so each validity date gets one removal
	// offsetting everything that expires on it.
	byValidity := make(map[time.Time][]string)
	var validityOrder []time.Time

	for i, start := range starts {
		entryType := domain.TypeAddition
		if i == 0 {
			entryType = firstType
		}

		entry, err := uc.creation.Create(ctx, tx, CreateBalanceInput{
			EmployeeID:     assignment.EmployeeID,
			CategoryID:     assignment.CategoryID,
			AccountID:      accountID,
			Type:           entryType,
			ResourceAmount: policy.Amount,
			EffectiveDay:   &start,
		})
		if err != nil {
			return err
		}

		if entry.ValidityDate != nil && entry.ValidityDate.Before(until) {
			v := entry.ValidityDate.UTC()
			if _, seen := byValidity[v]; !seen {
				validityOrder = append(validityOrder, v)
			}
			byValidity[v] = append(byValidity[v], entry.ID)
		}
	}

	for _, validity := range validityOrder {
		at := validity
		if _, err := uc.creation.Create(ctx, tx, CreateBalanceInput{
			EmployeeID:        assignment.EmployeeID,
			CategoryID:        assignment.CategoryID,
			AccountID:         accountID,
			Type:              domain.TypeRemoval,
			EffectiveAt:       &at,
			CreditAdditionIDs: byValidity[validity],
		}); err != nil {
			return err
		}
	}

	return nil
}

func (uc *AssignmentUseCase) recordEvent(ctx context.Context, tx Transaction, assignment *domain.EmployeeTimeOffPolicy, eventType string) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   assignment.ID,
		AggregateType: domain.AggregateTypeAssignment,
		EventType:     eventType,
		Payload: domain.AssignmentEvent{
			AssignmentID: assignment.ID,
			EmployeeID:   assignment.EmployeeID,
			PolicyID:     assignment.PolicyID,
			CategoryID:   assignment.CategoryID,
			EffectiveAt:  assignment.EffectiveAt.Format(time.RFC3339),
		},
		CreatedAt: time.Now().UTC(),
	})
}

func midnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
