package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peopleops/leaveledger/internal/domain"
	"github.com/peopleops/leaveledger/internal/usecase"
)

// EmployeeRepository implements usecase.EmployeeRepository.
type EmployeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository creates a new EmployeeRepository.
func NewEmployeeRepository(pool *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// GetByID retrieves an employee by ID.
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	var e domain.Employee
	err := r.pool.QueryRow(ctx, `
		SELECT id, account_id, hired_at, contract_end_at, created_at, updated_at
		FROM employees WHERE id = $1`, id).Scan(
		&e.ID, &e.AccountID, &e.HiredAt, &e.ContractEndAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &e, nil
}

// SetContractEnd records or clears the employee's contract end date.
func (r *EmployeeRepository) SetContractEnd(ctx context.Context, tx usecase.Transaction, id string, at *time.Time) error {
	_, err := inTx(r.pool, tx).Exec(ctx, `
		UPDATE employees SET contract_end_at = $2, updated_at = $3 WHERE id = $1`,
		id, at, time.Now().UTC())
	return err
}
