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

const timeOffColumns = `id, employee_id, time_off_category_id, starts_at, ends_at,
	status, being_processed, created_at, updated_at`

// TimeOffRepository implements usecase.TimeOffRepository.
type TimeOffRepository struct {
	pool *pgxpool.Pool
}

// NewTimeOffRepository creates a new TimeOffRepository.
func NewTimeOffRepository(pool *pgxpool.Pool) *TimeOffRepository {
	return &TimeOffRepository{pool: pool}
}

// Create inserts a new time-off request.
func (r *TimeOffRepository) Create(ctx context.Context, timeOff *domain.TimeOff) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO time_offs (`+timeOffColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		timeOff.ID, timeOff.EmployeeID, timeOff.CategoryID, timeOff.StartsAt, timeOff.EndsAt,
		timeOff.Status, timeOff.BeingProcessed, timeOff.CreatedAt, timeOff.UpdatedAt,
	)
	return err
}

// GetByID retrieves a time off by ID.
func (r *TimeOffRepository) GetByID(ctx context.Context, id string) (*domain.TimeOff, error) {
	timeOff, err := scanTimeOff(r.pool.QueryRow(ctx, `
		SELECT `+timeOffColumns+` FROM time_offs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTimeOffNotFound
		}
		return nil, err
	}
	return timeOff, nil
}

// UpdateStatus transitions the request's approval state.
func (r *TimeOffRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TimeOffStatus, updatedAt time.Time) error {
	_, err := inTx(r.pool, tx).Exec(ctx, `
		UPDATE time_offs SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, updatedAt)
	return err
}

// SetProcessing flips the being_processed flag.
func (r *TimeOffRepository) SetProcessing(ctx context.Context, tx usecase.Transaction, id string, processing bool) error {
	_, err := inTx(r.pool, tx).Exec(ctx, `
		UPDATE time_offs SET being_processed = $2, updated_at = $3 WHERE id = $1`,
		id, processing, time.Now().UTC())
	return err
}

// DeleteStartingFrom deletes the employee's time offs beginning at or after
// the given time.
func (r *TimeOffRepository) DeleteStartingFrom(ctx context.Context, tx usecase.Transaction, employeeID string, from time.Time) error {
	_, err := inTx(r.pool, tx).Exec(ctx, `
		DELETE FROM time_offs WHERE employee_id = $1 AND starts_at >= $2`,
		employeeID, from)
	return err
}

// FindStraddling returns approved time offs that span the given instant.
func (r *TimeOffRepository) FindStraddling(ctx context.Context, tx usecase.Transaction, employeeID string, at time.Time) ([]*domain.TimeOff, error) {
	rows, err := inTx(r.pool, tx).Query(ctx, `
		SELECT `+timeOffColumns+` FROM time_offs
		WHERE employee_id = $1 AND status = $2
		  AND starts_at < $3 AND ends_at > $3
		ORDER BY starts_at ASC`,
		employeeID, domain.TimeOffApproved, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var timeOffs []*domain.TimeOff
	for rows.Next() {
		timeOff, err := scanTimeOff(rows)
		if err != nil {
			return nil, err
		}
		timeOffs = append(timeOffs, timeOff)
	}
	return timeOffs, rows.Err()
}

// Truncate cuts a time off short at the given end.
func (r *TimeOffRepository) Truncate(ctx context.Context, tx usecase.Transaction, id string, endsAt time.Time) error {
	_, err := inTx(r.pool, tx).Exec(ctx, `
		UPDATE time_offs SET ends_at = $2, updated_at = $3 WHERE id = $1`,
		id, endsAt, time.Now().UTC())
	return err
}

func scanTimeOff(row pgx.Row) (*domain.TimeOff, error) {
	var t domain.TimeOff
	err := row.Scan(
		&t.ID, &t.EmployeeID, &t.CategoryID, &t.StartsAt, &t.EndsAt,
		&t.Status, &t.BeingProcessed, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
