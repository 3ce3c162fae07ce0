package usecase

import (
	"context"
	"time"

	"github.com/peopleops/leaveledger/internal/domain"
	"github.com/peopleops/leaveledger/internal/infrastructure/metrics"
)

// CreateBalanceInput describes one new ledger entry. Exactly one of
// EffectiveAt (a full timestamp, used for time-off consumption) or
// EffectiveDay (a calendar day the type's offset is applied to) may be
// set; with neither, the entry lands on today.
type CreateBalanceInput struct {
	EmployeeID string
	CategoryID string
	AccountID  string

	Type domain.BalanceType

	ResourceAmount int64
	ManualAmount   int64
	RelatedAmount  int64

	EffectiveAt  *time.Time
	EffectiveDay *time.Time

	TimeOffID    *string
	ValidityDate *time.Time

	// CreditAdditionIDs names the additions a removal offsets. The removal's
	// resource amount is derived, never passed in.
	CreditAdditionIDs []string
}

// BalanceCreationUseCase builds and persists single ledger entries. It is
// the only way entries come into existence. It never cascades: callers
// that insert retroactively must schedule the recompute themselves.
type BalanceCreationUseCase struct {
	balanceRepo    BalanceRepository
	employeeRepo   EmployeeRepository
	assignmentRepo AssignmentRepository
	policyRepo     PolicyRepository
	outboxRepo     OutboxRepository
	idGen          IDGenerator
	calculator     *BalanceCalculator
	removalCalc    *RemovalAmountCalculator
	metrics        *metrics.Metrics
}

// NewBalanceCreationUseCase creates a new BalanceCreationUseCase.
func NewBalanceCreationUseCase(
	balanceRepo BalanceRepository,
	employeeRepo EmployeeRepository,
	assignmentRepo AssignmentRepository,
	policyRepo PolicyRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *BalanceCreationUseCase {
	return &BalanceCreationUseCase{
		balanceRepo:    balanceRepo,
		employeeRepo:   employeeRepo,
		assignmentRepo: assignmentRepo,
		policyRepo:     policyRepo,
		outboxRepo:     outboxRepo,
		idGen:          idGen,
		calculator:     NewBalanceCalculator(balanceRepo),
		removalCalc:    NewRemovalAmountCalculator(balanceRepo),
		metrics:        m,
	}
}

// Create validates, prices and persists one entry inside the caller's
// transaction, returning it with its running balance set.
func (uc *BalanceCreationUseCase) Create(ctx context.Context, tx Transaction, input CreateBalanceInput) (*domain.BalanceEntry, error) {
	employee, err := uc.employeeRepo.GetByID(ctx, input.EmployeeID)
	if err != nil {
		return nil, err
	}

	if employee.AccountID != input.AccountID {
		return nil, &domain.ValidationError{Field: "account_id", Reason: "employee belongs to a different account"}
	}

	effectiveAt := uc.effectiveAt(input)

	if !employee.ContractCovers(effectiveAt) {
		return nil, &domain.ValidationError{Field: "effective_at", Reason: "outside the employee's contract period"}
	}

	assignment, err := uc.assignmentRepo.ActiveAt(ctx, tx, input.EmployeeID, input.CategoryID, effectiveAt)
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

	entry := &domain.BalanceEntry{
		ID:             uc.idGen.Generate(),
		EmployeeID:     input.EmployeeID,
		CategoryID:     input.CategoryID,
		AccountID:      input.AccountID,
		Type:           input.Type,
		EffectiveAt:    effectiveAt,
		ResourceAmount: input.ResourceAmount,
		ManualAmount:   input.ManualAmount,
		RelatedAmount:  input.RelatedAmount,
		TimeOffID:      input.TimeOffID,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := uc.setValidity(entry, input, policy); err != nil {
		return nil, err
	}

	// An addition landing in an already-settled expiry window joins the
	// removal at its validity date, so the next cascade re-derives that
	// removal with this addition counted in.
	if entry.ValidityDate != nil {
		removal, err := uc.balanceRepo.RemovalAt(ctx, tx, entry.EmployeeID, entry.CategoryID, *entry.ValidityDate)
		if err != nil {
			return nil, err
		}
		if removal != nil {
			entry.BalanceCreditRemovalID = &removal.ID
		}
	}

	var additions []*domain.BalanceEntry
	if entry.Type == domain.TypeRemoval {
		additions, err = uc.resolveAdditions(ctx, tx, entry, input.CreditAdditionIDs)
		if err != nil {
			return nil, err
		}

		amount, err := uc.removalCalc.Compute(ctx, tx, entry, additions, policy.Kind)
		if err != nil {
			return nil, err
		}
		entry.ResourceAmount = amount
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	taken, err := uc.balanceRepo.ExistsAt(ctx, tx, entry.EmployeeID, entry.CategoryID, entry.EffectiveAt)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrDuplicateEffectiveAt
	}

	if err := uc.calculator.Compute(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := uc.balanceRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	for _, addition := range additions {
		addition.BalanceCreditRemovalID = &entry.ID
		addition.UpdatedAt = time.Now().UTC()
		if err := uc.balanceRepo.Update(ctx, tx, addition); err != nil {
			return nil, err
		}
	}

	if err := uc.recordCreated(ctx, tx, entry); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.BalancesCreated.WithLabelValues(string(entry.Type)).Inc()
	}

	return entry, nil
}

func (uc *BalanceCreationUseCase) effectiveAt(input CreateBalanceInput) time.Time {
	switch {
	case input.EffectiveAt != nil:
		return input.EffectiveAt.UTC()
	case input.EffectiveDay != nil:
		return domain.EffectiveAtFor(input.Type, *input.EffectiveDay)
	default:
		return domain.EffectiveAtFor(input.Type, time.Now().UTC())
	}
}

// setValidity derives the expiry for balancer additions and rejects a
// validity date anywhere it does not belong.
func (uc *BalanceCreationUseCase) setValidity(entry *domain.BalanceEntry, input CreateBalanceInput, policy *domain.TimeOffPolicy) error {
	isAccrual := entry.Type == domain.TypeAddition || entry.Type == domain.TypeAssignation

	if policy.Kind == domain.PolicyCounter {
		if input.ValidityDate != nil {
			return &domain.ValidationError{Field: "validity_date", Reason: "counter policies never expire entitlement"}
		}
		return nil
	}

	if !isAccrual {
		if input.ValidityDate != nil {
			return &domain.ValidationError{Field: "validity_date", Reason: "only additions carry a validity date"}
		}
		return nil
	}

	if input.ValidityDate != nil {
		entry.ValidityDate = input.ValidityDate
		return nil
	}

	entry.ValidityDate = policy.ValidityDateFor(entry.EffectiveAt)

	return nil
}

// resolveAdditions loads the additions a removal offsets and checks the
// pairing invariant: each addition must expire exactly at the removal.
func (uc *BalanceCreationUseCase) resolveAdditions(ctx context.Context, tx Transaction, removal *domain.BalanceEntry, ids []string) ([]*domain.BalanceEntry, error) {
	additions := make([]*domain.BalanceEntry, 0, len(ids))

	for _, id := range ids {
		addition, err := uc.balanceRepo.GetByIDTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if addition == nil {
			return nil, domain.ErrBalanceNotFound
		}

		if addition.ValidityDate == nil || !addition.ValidityDate.Equal(removal.EffectiveAt) {
			return nil, &domain.ValidationError{
				Field:  "effective_at",
				Reason: "removal must fall on its additions' validity date",
			}
		}

		additions = append(additions, addition)
	}

	return additions, nil
}

func (uc *BalanceCreationUseCase) recordCreated(ctx context.Context, tx Transaction, entry *domain.BalanceEntry) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   entry.ID,
		AggregateType: domain.AggregateTypeBalance,
		EventType:     domain.EventTypeBalanceCreated,
		Payload: domain.BalanceCreatedEvent{
			BalanceID:   entry.ID,
			EmployeeID:  entry.EmployeeID,
			CategoryID:  entry.CategoryID,
			BalanceType: string(entry.Type),
			Amount:      entry.Amount(),
			EffectiveAt: entry.EffectiveAt.Format(time.RFC3339Nano),
		},
		CreatedAt: time.Now().UTC(),
	})
}
