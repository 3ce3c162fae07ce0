package usecase

import (
	"context"
	"time"

	"github.com/peopleops/leaveledger/internal/domain"
	"github.com/peopleops/leaveledger/internal/infrastructure/metrics"
)

// nonTimeOffTypes lists every entry type except time-off consumption.
// Contract-end teardown keeps consumption history and removes the rest.
var nonTimeOffTypes = []domain.BalanceType{
	domain.TypeReset,
	domain.TypeRemoval,
	domain.TypeManualAdjustment,
	domain.TypeEndOfPeriod,
	domain.TypeAssignation,
	domain.TypeAddition,
}

// ContractEndUseCase applies contract-end events to the ledger: it clears
// assignments and policy-generated entries beyond the employment window,
// truncates straddling time offs, and seeds reset coverage at the boundary
// so a rehired employee starts from zero.
type ContractEndUseCase struct {
	txManager      TransactionManager
	employeeRepo   EmployeeRepository
	assignmentRepo AssignmentRepository
	timeOffRepo    TimeOffRepository
	balanceRepo    BalanceRepository
	policyRepo     PolicyRepository
	outboxRepo     OutboxRepository
	idGen          IDGenerator
	creation       *BalanceCreationUseCase
	cascade        *CascadeUseCase
	metrics        *metrics.Metrics
}

// NewContractEndUseCase creates a new ContractEndUseCase.
func NewContractEndUseCase(
	txManager TransactionManager,
	employeeRepo EmployeeRepository,
	assignmentRepo AssignmentRepository,
	timeOffRepo TimeOffRepository,
	balanceRepo BalanceRepository,
	policyRepo PolicyRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	creation *BalanceCreationUseCase,
	cascade *CascadeUseCase,
	m *metrics.Metrics,
) *ContractEndUseCase {
	return &ContractEndUseCase{
		txManager:      txManager,
		employeeRepo:   employeeRepo,
		assignmentRepo: assignmentRepo,
		timeOffRepo:    timeOffRepo,
		balanceRepo:    balanceRepo,
		policyRepo:     policyRepo,
		outboxRepo:     outboxRepo,
		idGen:          idGen,
		creation:       creation,
		cascade:        cascade,
		metrics:        m,
	}
}

// Apply records a contract end for the employee and rewrites the ledger
// around the boundary. The boundary sits one day after the contract end so
// a time off running through the last working day still settles.
func (uc *ContractEndUseCase) Apply(ctx context.Context, employeeID string, contractEndAt time.Time) error {
	employee, err := uc.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}

	endDay := midnightUTC(contractEndAt)

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.apply(ctx, tx, employee, endDay); err != nil {
		return err
	}

	if err := uc.employeeRepo.SetContractEnd(ctx, tx, employee.ID, &endDay); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.ContractEndsApplied.Inc()
	}

	return nil
}

// Move shifts an existing contract end to a new date: the stale reset rows
// and entries at the old boundary are removed, the teardown re-runs at the
// new date, and any span the move re-opened gets its accruals reinstated.
func (uc *ContractEndUseCase) Move(ctx context.Context, employeeID string, newContractEndAt time.Time) error {
	employee, err := uc.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}
	if employee.ContractEndAt == nil {
		return domain.ErrContractEndNotFound
	}

	oldEndDay := midnightUTC(*employee.ContractEndAt)
	newEndDay := midnightUTC(newContractEndAt)
	if newEndDay.Equal(oldEndDay) {
		return nil
	}

	oldBoundary := oldEndDay.AddDate(0, 0, 1)
	newBoundary := newEndDay.AddDate(0, 0, 1)

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.clearResets(ctx, tx, employee.ID, oldBoundary); err != nil {
		return err
	}

	// Creation validates contract coverage against this struct; it has to
	// see the new window before anything is written into it.
	employee.ContractEndAt = &newEndDay

	if newBoundary.After(oldBoundary) {
		// The span between the boundaries is employment again; put the
		// policy accruals back before the teardown reapplies at the new date.
		if err := uc.reinstate(ctx, tx, employee, oldBoundary, newBoundary); err != nil {
			return err
		}
	}

	if err := uc.apply(ctx, tx, employee, newEndDay); err != nil {
		return err
	}

	if oldEndDay.Before(newEndDay) {
		categories, err := uc.balanceRepo.CategoriesForEmployee(ctx, tx, employee.ID)
		if err != nil {
			return err
		}
		for _, categoryID := range categories {
			if err := uc.cascade.ScheduleFrom(ctx, tx, employee.ID, categoryID, oldEndDay); err != nil {
				return err
			}
		}
	}

	if err := uc.employeeRepo.SetContractEnd(ctx, tx, employee.ID, &newEndDay); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Remove deletes the employee's contract end, drops the reset coverage at
// the stale boundary, and reinstates accruals from there to today.
func (uc *ContractEndUseCase) Remove(ctx context.Context, employeeID string) error {
	employee, err := uc.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}
	if employee.ContractEndAt == nil {
		return domain.ErrContractEndNotFound
	}

	oldEndDay := midnightUTC(*employee.ContractEndAt)
	oldBoundary := oldEndDay.AddDate(0, 0, 1)

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.clearResets(ctx, tx, employee.ID, oldBoundary); err != nil {
		return err
	}

	if err := uc.employeeRepo.SetContractEnd(ctx, tx, employee.ID, nil); err != nil {
		return err
	}
	employee.ContractEndAt = nil

	if err := uc.reinstate(ctx, tx, employee, oldBoundary, time.Now().UTC()); err != nil {
		return err
	}

	categories, err := uc.balanceRepo.CategoriesForEmployee(ctx, tx, employee.ID)
	if err != nil {
		return err
	}
	for _, categoryID := range categories {
		if err := uc.cascade.ScheduleFrom(ctx, tx, employee.ID, categoryID, oldEndDay); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// apply runs the teardown and reset-seeding steps at the given contract end
// day, inside the caller's transaction.
func (uc *ContractEndUseCase) apply(ctx context.Context, tx Transaction, employee *domain.Employee, endDay time.Time) error {
	boundary := endDay.AddDate(0, 0, 1)

	if err := uc.assignmentRepo.DeleteEffectiveFrom(ctx, tx, employee.ID, boundary); err != nil {
		return err
	}

	if err := uc.timeOffRepo.DeleteStartingFrom(ctx, tx, employee.ID, boundary); err != nil {
		return err
	}

	categories, err := uc.balanceRepo.CategoriesForEmployee(ctx, tx, employee.ID)
	if err != nil {
		return err
	}

	// Everything the policies generated strictly after the boundary removal
	// slot goes; time-off consumption history stays.
	cutoff := boundary.Add(domain.ResetOffset)
	for _, categoryID := range categories {
		if err := uc.balanceRepo.DeleteTypesInWindow(ctx, tx, employee.ID, categoryID, nonTimeOffTypes, cutoff, nil); err != nil {
			return err
		}
	}

	if err := uc.truncateStraddlers(ctx, tx, employee.ID, boundary); err != nil {
		return err
	}

	seeded := 0
	for _, categoryID := range categories {
		ok, err := uc.seedReset(ctx, tx, employee, categoryID, boundary)
		if err != nil {
			return err
		}
		if ok {
			seeded++
		}
		if err := uc.cascade.ScheduleFrom(ctx, tx, employee.ID, categoryID, endDay); err != nil {
			return err
		}
	}

	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   employee.ID,
		AggregateType: domain.AggregateTypeEmployee,
		EventType:     domain.EventTypeContractEndApplied,
		Payload: domain.ContractEndAppliedEvent{
			EmployeeID:  employee.ID,
			EffectiveAt: endDay.Format(time.RFC3339),
			Categories:  seeded,
		},
		CreatedAt: time.Now().UTC(),
	})
}

// truncateStraddlers shortens approved time offs spanning the boundary to
// end exactly there and moves their consumption entries to match.
func (uc *ContractEndUseCase) truncateStraddlers(ctx context.Context, tx Transaction, employeeID string, boundary time.Time) error {
	straddlers, err := uc.timeOffRepo.FindStraddling(ctx, tx, employeeID, boundary)
	if err != nil {
		return err
	}

	for _, timeOff := range straddlers {
		if err := uc.timeOffRepo.Truncate(ctx, tx, timeOff.ID, boundary); err != nil {
			return err
		}

		entry, err := uc.balanceRepo.GetByTimeOffID(ctx, tx, timeOff.ID)
		if err != nil {
			return err
		}
		if entry == nil {
			continue
		}

		truncated := domain.TimeOff{StartsAt: timeOff.StartsAt, EndsAt: boundary}
		entry.EffectiveAt = boundary
		entry.ResourceAmount = -truncated.Minutes()
		entry.UpdatedAt = time.Now().UTC()
		if err := uc.balanceRepo.Update(ctx, tx, entry); err != nil {
			return err
		}
	}

	return nil
}

// seedReset re-assigns the category's latest policy as a reset row at the
// boundary and writes the reset entry that zeroes the partition. Reports
// whether the category had a policy to carry over.
func (uc *ContractEndUseCase) seedReset(ctx context.Context, tx Transaction, employee *domain.Employee, categoryID string, boundary time.Time) (bool, error) {
	history, err := uc.assignmentRepo.ListByCategory(ctx, tx, employee.ID, categoryID)
	if err != nil {
		return false, err
	}
	if len(history) == 0 {
		return false, nil
	}

	var latest *domain.EmployeeTimeOffPolicy
	for _, a := range history {
		if latest == nil || a.EffectiveAt.After(latest.EffectiveAt) {
			latest = a
		}
	}

	reset := &domain.EmployeeTimeOffPolicy{
		ID:          uc.idGen.Generate(),
		EmployeeID:  employee.ID,
		PolicyID:    latest.PolicyID,
		CategoryID:  categoryID,
		EffectiveAt: boundary,
		Reset:       true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := uc.assignmentRepo.Create(ctx, tx, reset); err != nil {
		return false, err
	}

	if _, err := uc.creation.Create(ctx, tx, CreateBalanceInput{
		EmployeeID:   employee.ID,
		CategoryID:   categoryID,
		AccountID:    employee.AccountID,
		Type:         domain.TypeReset,
		EffectiveDay: &boundary,
	}); err != nil {
		return false, err
	}

	return true, nil
}

// clearResets drops the reset rows and reset entries seeded at a stale
// boundary.
func (uc *ContractEndUseCase) clearResets(ctx context.Context, tx Transaction, employeeID string, boundary time.Time) error {
	if err := uc.assignmentRepo.DeleteResetsAt(ctx, tx, employeeID, boundary); err != nil {
		return err
	}

	categories, err := uc.balanceRepo.CategoriesForEmployee(ctx, tx, employeeID)
	if err != nil {
		return err
	}

	dayAfter := boundary.AddDate(0, 0, 1)
	resetOnly := []domain.BalanceType{domain.TypeReset}
	for _, categoryID := range categories {
		if err := uc.balanceRepo.DeleteTypesInWindow(ctx, tx, employeeID, categoryID, resetOnly, boundary, &dayAfter); err != nil {
			return err
		}
	}

	return nil
}

// reinstate regenerates policy accruals for every covered category in
// [from, until), anchored on whichever assignment governs each category at
// the window start.
func (uc *ContractEndUseCase) reinstate(ctx context.Context, tx Transaction, employee *domain.Employee, from, until time.Time) error {
	categories, err := uc.balanceRepo.CategoriesForEmployee(ctx, tx, employee.ID)
	if err != nil {
		return err
	}

	for _, categoryID := range categories {
		assignment, err := uc.assignmentRepo.ActiveAt(ctx, tx, employee.ID, categoryID, from)
		if err != nil {
			return err
		}
		if assignment == nil {
			continue
		}

		policy, err := uc.policyRepo.GetByID(ctx, assignment.PolicyID)
		if err != nil {
			return err
		}

		starts := PeriodStarts(assignment.EffectiveAt, policy.PeriodYears, until).Collect()
		for _, start := range starts {
			if start.Before(from) {
				continue
			}

			exists, err := uc.balanceRepo.ExistsAt(ctx, tx, employee.ID, categoryID, domain.EffectiveAtFor(domain.TypeAddition, start))
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			if _, err := uc.creation.Create(ctx, tx, CreateBalanceInput{
				EmployeeID:     employee.ID,
				CategoryID:     categoryID,
				AccountID:      employee.AccountID,
				Type:           domain.TypeAddition,
				ResourceAmount: policy.Amount,
				EffectiveDay:   &start,
			}); err != nil {
				return err
			}
		}
	}

	return nil
}
