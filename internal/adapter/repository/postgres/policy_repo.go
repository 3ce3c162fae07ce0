package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peopleops/leaveledger/internal/domain"
)

// PolicyRepository implements usecase.PolicyRepository.
type PolicyRepository struct {
	pool *pgxpool.Pool
}

// NewPolicyRepository creates a new PolicyRepository.
func NewPolicyRepository(pool *pgxpool.Pool) *PolicyRepository {
	return &PolicyRepository{pool: pool}
}

// GetByID retrieves a policy by ID.
func (r *PolicyRepository) GetByID(ctx context.Context, id string) (*domain.TimeOffPolicy, error) {
	var p domain.TimeOffPolicy
	var endMonth int
	err := r.pool.QueryRow(ctx, `
		SELECT id, account_id, time_off_category_id, name, kind, amount,
			period_years, end_day, end_month, years_to_effect, created_at, updated_at
		FROM time_off_policies WHERE id = $1`, id).Scan(
		&p.ID, &p.AccountID, &p.CategoryID, &p.Name, &p.Kind, &p.Amount,
		&p.PeriodYears, &p.EndDay, &endMonth, &p.YearsToEffect, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPolicyNotFound
		}
		return nil, err
	}
	p.EndMonth = time.Month(endMonth)
	return &p, nil
}
