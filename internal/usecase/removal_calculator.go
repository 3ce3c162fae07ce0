package usecase

import (
	"context"

	"github.com/peopleops/leaveledger/internal/domain"
)

// RemovalAmountCalculator determines how much a removal entry deducts.
//
// The balancer arithmetic mirrors the production accounting rules exactly,
// including the tie-breaks: the positive-amount window excludes entries
// whose validity date equals the removal's own effective time, and the
// carried-over pre-addition balance is subtracted out so it never expires
// with the addition. Changing any branch silently changes ledger history;
// the tests in removal_calculator_test.go pin every branch.
type RemovalAmountCalculator struct {
	balanceRepo BalanceRepository
}

// NewRemovalAmountCalculator creates a new RemovalAmountCalculator.
func NewRemovalAmountCalculator(balanceRepo BalanceRepository) *RemovalAmountCalculator {
	return &RemovalAmountCalculator{balanceRepo: balanceRepo}
}

// Compute returns the removal's resource amount (always <= 0) given the
// additions it offsets and the kind of the governing policy.
func (c *RemovalAmountCalculator) Compute(
	ctx context.Context,
	tx Transaction,
	removal *domain.BalanceEntry,
	additions []*domain.BalanceEntry,
	kind domain.PolicyKind,
) (int64, error) {
	prev, err := c.balanceRepo.Previous(ctx, tx, removal.EmployeeID, removal.CategoryID, removal.EffectiveAt, removal.ID)
	if err != nil {
		return 0, err
	}

	var prevBalance int64
	if prev != nil {
		prevBalance = prev.Balance
	}

	// A counter policy has no expiring entitlement; the removal zeroes it.
	if kind == domain.PolicyCounter {
		return -prevBalance, nil
	}

	if len(additions) == 0 {
		return 0, nil
	}

	var additionAmount int64
	for _, a := range additions {
		additionAmount += a.Amount()
	}

	last := additions[len(additions)-1]
	additionBalance := last.Balance

	window, err := c.balanceRepo.Between(ctx, tx, removal.EmployeeID, removal.CategoryID, last.EffectiveAt, removal.EffectiveAt)
	if err != nil {
		return 0, err
	}

	if !anyNonPositive(window) {
		// Nothing drove the balance non-positive since the addition: the
		// whole addition expires, capped at what is actually left when the
		// running balance at the addition was already below it.
		if additionAmount > additionBalance && additionBalance >= 0 {
			return -min64(additionAmount, additionBalance), nil
		}
		return -additionAmount, nil
	}

	var positiveAfter int64
	for _, e := range window {
		if e.Amount() <= 0 {
			continue
		}
		// An entry expiring at this removal belongs to the expiring
		// entitlement itself and must not offset it.
		if e.ValidityDate != nil && e.ValidityDate.Equal(removal.EffectiveAt) {
			continue
		}
		positiveAfter += e.Amount()
	}

	amountDifference := additionBalance - additionAmount
	if amountDifference < 0 {
		amountDifference = 0
	}

	sum := additionAmount - (prevBalance - positiveAfter - amountDifference)

	if sum > 0 && sum < additionAmount {
		return -(additionAmount - sum), nil
	}

	return 0, nil
}

func anyNonPositive(entries []*domain.BalanceEntry) bool {
	for _, e := range entries {
		if e.Amount() <= 0 {
			return true
		}
	}
	return false
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
