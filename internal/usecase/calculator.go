package usecase

import (
	"context"

	"github.com/peopleops/leaveledger/internal/domain"
)

// BalanceCalculator computes a single entry's running balance from its
// predecessor within the (employee, category) partition. It must run before
// persisting any entry and again for every entry touched by a cascade.
type BalanceCalculator struct {
	balanceRepo BalanceRepository
}

// NewBalanceCalculator creates a new BalanceCalculator.
func NewBalanceCalculator(balanceRepo BalanceRepository) *BalanceCalculator {
	return &BalanceCalculator{balanceRepo: balanceRepo}
}

// Compute sets entry.Balance from the latest entry strictly before
// entry.EffectiveAt. An entry that already has an id is excluded from the
// predecessor lookup so recomputing it in place is safe. The first entry of
// a partition, and every reset, carries its own amount as balance.
func (c *BalanceCalculator) Compute(ctx context.Context, tx Transaction, entry *domain.BalanceEntry) error {
	// A reset starts the chain over; it never inherits the predecessor.
	if entry.Type == domain.TypeReset {
		entry.Balance = entry.Amount()
		return nil
	}

	prev, err := c.balanceRepo.Previous(ctx, tx, entry.EmployeeID, entry.CategoryID, entry.EffectiveAt, entry.ID)
	if err != nil {
		return err
	}

	if prev == nil {
		entry.Balance = entry.Amount()
		return nil
	}

	entry.Balance = prev.Balance + entry.Amount()

	return nil
}
