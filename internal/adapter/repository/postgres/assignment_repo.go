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

const assignmentColumns = `id, employee_id, time_off_policy_id, time_off_category_id,
	effective_at, effective_till, reset, created_at, updated_at`

// AssignmentRepository implements usecase.AssignmentRepository.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// Create inserts a new policy assignment.
func (r *AssignmentRepository) Create(ctx context.Context, tx usecase.Transaction, assignment *domain.EmployeeTimeOffPolicy) error {
	_, err := inTx(r.pool, tx).Exec(ctx, `
		INSERT INTO employee_time_off_policies (`+assignmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		assignment.ID, assignment.EmployeeID, assignment.PolicyID, assignment.CategoryID,
		assignment.EffectiveAt, assignment.EffectiveTill, assignment.Reset,
		assignment.CreatedAt, assignment.UpdatedAt,
	)
	return err
}

// GetByID retrieves an assignment by ID.
func (r *AssignmentRepository) GetByID(ctx context.Context, id string) (*domain.EmployeeTimeOffPolicy, error) {
	assignment, err := scanAssignment(r.pool.QueryRow(ctx, `
		SELECT `+assignmentColumns+` FROM employee_time_off_policies WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAssignmentNotFound
		}
		return nil, err
	}
	return assignment, nil
}

// Update rewrites an assignment.
func (r *AssignmentRepository) Update(ctx context.Context, tx usecase.Transaction, assignment *domain.EmployeeTimeOffPolicy) error {
	_, err := inTx(r.pool, tx).Exec(ctx, `
		UPDATE employee_time_off_policies SET
			time_off_policy_id = $2, effective_at = $3, effective_till = $4, updated_at = $5
		WHERE id = $1`,
		assignment.ID, assignment.PolicyID, assignment.EffectiveAt, assignment.EffectiveTill,
		time.Now().UTC(),
	)
	return err
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	_, err := inTx(r.pool, tx).Exec(ctx, `
		DELETE FROM employee_time_off_policies WHERE id = $1`, id)
	return err
}

// ListByCategory lists the employee's assignments for a category, oldest
// first.
func (r *AssignmentRepository) ListByCategory(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string) ([]*domain.EmployeeTimeOffPolicy, error) {
	rows, err := inTx(r.pool, tx).Query(ctx, `
		SELECT `+assignmentColumns+` FROM employee_time_off_policies
		WHERE employee_id = $1 AND time_off_category_id = $2
		ORDER BY effective_at ASC`,
		employeeID, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []*domain.EmployeeTimeOffPolicy
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}

// ActiveAt returns the assignment governing the category at the given time,
// or (nil, nil) when the employee has no coverage.
func (r *AssignmentRepository) ActiveAt(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, at time.Time) (*domain.EmployeeTimeOffPolicy, error) {
	assignment, err := scanAssignment(inTx(r.pool, tx).QueryRow(ctx, `
		SELECT `+assignmentColumns+` FROM employee_time_off_policies
		WHERE employee_id = $1 AND time_off_category_id = $2
		  AND effective_at <= $3
		  AND (effective_till IS NULL OR effective_till > $3)
		ORDER BY effective_at DESC
		LIMIT 1`,
		employeeID, categoryID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return assignment, nil
}

// DeleteEffectiveFrom deletes the employee's assignments effective at or
// after the given time, across categories.
func (r *AssignmentRepository) DeleteEffectiveFrom(ctx context.Context, tx usecase.Transaction, employeeID string, from time.Time) error {
	_, err := inTx(r.pool, tx).Exec(ctx, `
		DELETE FROM employee_time_off_policies
		WHERE employee_id = $1 AND effective_at >= $2`,
		employeeID, from)
	return err
}

// DeleteResetsAt deletes reset assignments anchored at the given boundary.
func (r *AssignmentRepository) DeleteResetsAt(ctx context.Context, tx usecase.Transaction, employeeID string, at time.Time) error {
	_, err := inTx(r.pool, tx).Exec(ctx, `
		DELETE FROM employee_time_off_policies
		WHERE employee_id = $1 AND reset AND effective_at = $2`,
		employeeID, at)
	return err
}

func scanAssignment(row pgx.Row) (*domain.EmployeeTimeOffPolicy, error) {
	var a domain.EmployeeTimeOffPolicy
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.PolicyID, &a.CategoryID,
		&a.EffectiveAt, &a.EffectiveTill, &a.Reset, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
