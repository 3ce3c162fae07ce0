package usecase

import (
	"context"
	"time"

	"github.com/peopleops/leaveledger/internal/domain"
	"github.com/peopleops/leaveledger/internal/infrastructure/metrics"
)

// TimeOffUseCase handles the time-off request lifecycle. Requests are inert
// until approved; approval writes the consumption entry into the ledger and
// declining an approved request takes it back out.
type TimeOffUseCase struct {
	txManager    TransactionManager
	timeOffRepo  TimeOffRepository
	balanceRepo  BalanceRepository
	employeeRepo EmployeeRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	creation     *BalanceCreationUseCase
	cascade      *CascadeUseCase
	metrics      *metrics.Metrics
}

// NewTimeOffUseCase creates a new TimeOffUseCase.
func NewTimeOffUseCase(
	txManager TransactionManager,
	timeOffRepo TimeOffRepository,
	balanceRepo BalanceRepository,
	employeeRepo EmployeeRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	creation *BalanceCreationUseCase,
	cascade *CascadeUseCase,
	m *metrics.Metrics,
) *TimeOffUseCase {
	return &TimeOffUseCase{
		txManager:    txManager,
		timeOffRepo:  timeOffRepo,
		balanceRepo:  balanceRepo,
		employeeRepo: employeeRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		creation:     creation,
		cascade:      cascade,
		metrics:      m,
	}
}

// CreateTimeOffInput requests time off over [StartsAt, EndsAt].
type CreateTimeOffInput struct {
	EmployeeID string
	CategoryID string
	StartsAt   time.Time
	EndsAt     time.Time
}

// Create records a pending time-off request. Nothing touches the ledger
// until approval.
func (uc *TimeOffUseCase) Create(ctx context.Context, input CreateTimeOffInput) (*domain.TimeOff, error) {
	if !input.EndsAt.After(input.StartsAt) {
		return nil, domain.ErrInvalidTimeOffPeriod
	}

	if _, err := uc.employeeRepo.GetByID(ctx, input.EmployeeID); err != nil {
		return nil, err
	}

	timeOff := &domain.TimeOff{
		ID:         uc.idGen.Generate(),
		EmployeeID: input.EmployeeID,
		CategoryID: input.CategoryID,
		StartsAt:   input.StartsAt.UTC(),
		EndsAt:     input.EndsAt.UTC(),
		Status:     domain.TimeOffPending,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	if err := uc.timeOffRepo.Create(ctx, timeOff); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TimeOffsCreated.Inc()
	}

	return timeOff, nil
}

// Approve marks a pending request approved and writes its consumption entry
// at the request's end timestamp. The entry carries the raw end time, no
// day offset, so consumption sorts among same-day entries by when the leave
// actually ended.
func (uc *TimeOffUseCase) Approve(ctx context.Context, id string) (*domain.BalanceEntry, error) {
	timeOff, err := uc.timeOffRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if timeOff.Status != domain.TimeOffPending {
		return nil, domain.ErrTimeOffAlreadyProcessed
	}

	employee, err := uc.employeeRepo.GetByID(ctx, timeOff.EmployeeID)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	if err := uc.timeOffRepo.UpdateStatus(ctx, tx, timeOff.ID, domain.TimeOffApproved, now); err != nil {
		return nil, err
	}

	endsAt := timeOff.EndsAt
	entry, err := uc.creation.Create(ctx, tx, CreateBalanceInput{
		EmployeeID:     timeOff.EmployeeID,
		CategoryID:     timeOff.CategoryID,
		AccountID:      employee.AccountID,
		Type:           domain.TypeTimeOff,
		ResourceAmount: -timeOff.Minutes(),
		EffectiveAt:    &endsAt,
		TimeOffID:      &timeOff.ID,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.cascade.Schedule(ctx, tx, entry, nil); err != nil {
		return nil, err
	}

	if err := uc.recordStatus(ctx, tx, timeOff, domain.EventTypeTimeOffApproved, domain.TimeOffApproved); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TimeOffsApproved.Inc()
	}

	return entry, nil
}

// Decline rejects a request. Declining a pending request only flips its
// status; declining an approved one also removes the consumption entry and
// recomputes everything that chained off it.
func (uc *TimeOffUseCase) Decline(ctx context.Context, id string) error {
	timeOff, err := uc.timeOffRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if timeOff.Status == domain.TimeOffDeclined {
		return domain.ErrTimeOffAlreadyProcessed
	}

	wasApproved := timeOff.Status == domain.TimeOffApproved

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.timeOffRepo.UpdateStatus(ctx, tx, timeOff.ID, domain.TimeOffDeclined, time.Now().UTC()); err != nil {
		return err
	}

	if wasApproved {
		entry, err := uc.balanceRepo.GetByTimeOffID(ctx, tx, timeOff.ID)
		if err != nil {
			return err
		}
		if entry != nil {
			if err := uc.balanceRepo.DeleteByIDs(ctx, tx, []string{entry.ID}); err != nil {
				return err
			}
			if err := uc.cascade.ScheduleFrom(ctx, tx, entry.EmployeeID, entry.CategoryID, entry.EffectiveAt); err != nil {
				return err
			}
		}
	}

	if err := uc.recordStatus(ctx, tx, timeOff, domain.EventTypeTimeOffDeclined, domain.TimeOffDeclined); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.TimeOffsDeclined.Inc()
	}

	return nil
}

func (uc *TimeOffUseCase) recordStatus(ctx context.Context, tx Transaction, timeOff *domain.TimeOff, eventType string, status domain.TimeOffStatus) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   timeOff.ID,
		AggregateType: domain.AggregateTypeTimeOff,
		EventType:     eventType,
		Payload: domain.TimeOffStatusEvent{
			TimeOffID:  timeOff.ID,
			EmployeeID: timeOff.EmployeeID,
			CategoryID: timeOff.CategoryID,
			Status:     string(status),
		},
		CreatedAt: time.Now().UTC(),
	})
}
