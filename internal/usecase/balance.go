package usecase

import (
	"context"
	"time"

	"github.com/peopleops/leaveledger/internal/domain"
)

// BalanceUseCase exposes manual adjustments and the read surface over the
// ledger. Adjustments are the only entries written directly on request;
// everything else arrives through the policy and time-off flows.
type BalanceUseCase struct {
	txManager   TransactionManager
	balanceRepo BalanceRepository
	creation    *BalanceCreationUseCase
	cascade     *CascadeUseCase
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(
	txManager TransactionManager,
	balanceRepo BalanceRepository,
	creation *BalanceCreationUseCase,
	cascade *CascadeUseCase,
) *BalanceUseCase {
	return &BalanceUseCase{
		txManager:   txManager,
		balanceRepo: balanceRepo,
		creation:    creation,
		cascade:     cascade,
	}
}

// CreateAdjustmentInput corrects an employee's balance by a signed amount
// of minutes, today or on an explicit day.
type CreateAdjustmentInput struct {
	EmployeeID   string
	CategoryID   string
	AccountID    string
	Amount       int64
	EffectiveDay *time.Time
}

// CreateAdjustment writes a manual adjustment entry and schedules the
// cascade, which picks up any later entries when the adjustment is
// retroactive.
func (uc *BalanceUseCase) CreateAdjustment(ctx context.Context, input CreateAdjustmentInput) (*domain.BalanceEntry, error) {
	if input.Amount == 0 {
		return nil, domain.ErrInvalidAmount
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	entry, err := uc.creation.Create(ctx, tx, CreateBalanceInput{
		EmployeeID:   input.EmployeeID,
		CategoryID:   input.CategoryID,
		AccountID:    input.AccountID,
		Type:         domain.TypeManualAdjustment,
		ManualAmount: input.Amount,
		EffectiveDay: input.EffectiveDay,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.cascade.Schedule(ctx, tx, entry, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

// Get returns a single balance entry by id.
func (uc *BalanceUseCase) Get(ctx context.Context, id string) (*domain.BalanceEntry, error) {
	return uc.balanceRepo.GetByID(ctx, id)
}

// List returns a page of the partition's entries in effective order.
func (uc *BalanceUseCase) List(ctx context.Context, employeeID, categoryID string, limit, offset int) ([]*domain.BalanceEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.balanceRepo.ListByCategory(ctx, employeeID, categoryID, limit, offset)
}
