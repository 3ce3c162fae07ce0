package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peopleops/leaveledger/internal/domain"
	"github.com/peopleops/leaveledger/internal/usecase"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so repository
// methods can run inside or outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func inTx(pool *pgxpool.Pool, tx usecase.Transaction) querier {
	if tx == nil {
		return pool
	}
	return tx.(*Tx).PgxTx()
}

const balanceColumns = `id, employee_id, time_off_category_id, account_id, entry_type,
	effective_at, resource_amount, manual_amount, related_amount, balance,
	validity_date, balance_credit_removal_id, time_off_id, being_processed,
	created_at, updated_at`

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	pool *pgxpool.Pool
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{pool: pool}
}

// Create inserts a new balance entry.
func (r *BalanceRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.BalanceEntry) error {
	_, err := inTx(r.pool, tx).Exec(ctx, `
		INSERT INTO balance_entries (`+balanceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		entry.ID, entry.EmployeeID, entry.CategoryID, entry.AccountID, entry.Type,
		entry.EffectiveAt, entry.ResourceAmount, entry.ManualAmount, entry.RelatedAmount, entry.Balance,
		entry.ValidityDate, entry.BalanceCreditRemovalID, entry.TimeOffID, entry.BeingProcessed,
		entry.CreatedAt, entry.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrDuplicateEffectiveAt
	}
	return err
}

// GetByID retrieves a balance entry by ID.
func (r *BalanceRepository) GetByID(ctx context.Context, id string) (*domain.BalanceEntry, error) {
	entry, err := scanBalance(r.pool.QueryRow(ctx, `
		SELECT `+balanceColumns+` FROM balance_entries WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBalanceNotFound
		}
		return nil, err
	}
	return entry, nil
}

// GetByIDTx retrieves a balance entry by ID within a transaction, returning
// (nil, nil) when the row is gone.
func (r *BalanceRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.BalanceEntry, error) {
	entry, err := scanBalance(inTx(r.pool, tx).QueryRow(ctx, `
		SELECT `+balanceColumns+` FROM balance_entries WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// Previous returns the latest entry strictly before the given time.
func (r *BalanceRepository) Previous(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, before time.Time, excludeID string) (*domain.BalanceEntry, error) {
	entry, err := scanBalance(inTx(r.pool, tx).QueryRow(ctx, `
		SELECT `+balanceColumns+` FROM balance_entries
		WHERE employee_id = $1 AND time_off_category_id = $2
		  AND effective_at < $3 AND id <> $4
		ORDER BY effective_at DESC, id DESC
		LIMIT 1`,
		employeeID, categoryID, before, excludeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// Last returns the chronologically last entry of the partition.
func (r *BalanceRepository) Last(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string) (*domain.BalanceEntry, error) {
	entry, err := scanBalance(inTx(r.pool, tx).QueryRow(ctx, `
		SELECT `+balanceColumns+` FROM balance_entries
		WHERE employee_id = $1 AND time_off_category_id = $2
		ORDER BY effective_at DESC, id DESC
		LIMIT 1`,
		employeeID, categoryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// Between returns entries with from < effective_at < to, ascending.
func (r *BalanceRepository) Between(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, from, to time.Time) ([]*domain.BalanceEntry, error) {
	rows, err := inTx(r.pool, tx).Query(ctx, `
		SELECT `+balanceColumns+` FROM balance_entries
		WHERE employee_id = $1 AND time_off_category_id = $2
		  AND effective_at > $3 AND effective_at < $4
		ORDER BY effective_at ASC, id ASC`,
		employeeID, categoryID, from, to)
	if err != nil {
		return nil, err
	}
	return collectBalances(rows)
}

// ListFrom returns entries with effective_at >= from, ascending.
func (r *BalanceRepository) ListFrom(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, from time.Time) ([]*domain.BalanceEntry, error) {
	rows, err := inTx(r.pool, tx).Query(ctx, `
		SELECT `+balanceColumns+` FROM balance_entries
		WHERE employee_id = $1 AND time_off_category_id = $2
		  AND effective_at >= $3
		ORDER BY effective_at ASC, id ASC`,
		employeeID, categoryID, from)
	if err != nil {
		return nil, err
	}
	return collectBalances(rows)
}

// AdditionsForRemoval returns the additions credited against a removal.
func (r *BalanceRepository) AdditionsForRemoval(ctx context.Context, tx usecase.Transaction, removalID string) ([]*domain.BalanceEntry, error) {
	rows, err := inTx(r.pool, tx).Query(ctx, `
		SELECT `+balanceColumns+` FROM balance_entries
		WHERE balance_credit_removal_id = $1
		ORDER BY effective_at ASC, id ASC`,
		removalID)
	if err != nil {
		return nil, err
	}
	return collectBalances(rows)
}

// RemovalAt finds the removal entry at the exact effective time, if any.
func (r *BalanceRepository) RemovalAt(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, at time.Time) (*domain.BalanceEntry, error) {
	entry, err := scanBalance(inTx(r.pool, tx).QueryRow(ctx, `
		SELECT `+balanceColumns+` FROM balance_entries
		WHERE employee_id = $1 AND time_off_category_id = $2
		  AND entry_type = $3 AND effective_at = $4
		LIMIT 1`,
		employeeID, categoryID, domain.TypeRemoval, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// ExistsAt reports whether any entry occupies the exact effective time.
func (r *BalanceRepository) ExistsAt(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, at time.Time) (bool, error) {
	var exists bool
	err := inTx(r.pool, tx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM balance_entries
			WHERE employee_id = $1 AND time_off_category_id = $2 AND effective_at = $3
		)`,
		employeeID, categoryID, at).Scan(&exists)
	return exists, err
}

// GetByTimeOffID finds the consumption entry for a time off, if any.
func (r *BalanceRepository) GetByTimeOffID(ctx context.Context, tx usecase.Transaction, timeOffID string) (*domain.BalanceEntry, error) {
	entry, err := scanBalance(inTx(r.pool, tx).QueryRow(ctx, `
		SELECT `+balanceColumns+` FROM balance_entries
		WHERE time_off_id = $1
		LIMIT 1`,
		timeOffID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// Update rewrites a balance entry.
func (r *BalanceRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.BalanceEntry) error {
	_, err := inTx(r.pool, tx).Exec(ctx, `
		UPDATE balance_entries SET
			effective_at = $2, resource_amount = $3, manual_amount = $4,
			related_amount = $5, balance = $6, validity_date = $7,
			balance_credit_removal_id = $8, being_processed = $9, updated_at = $10
		WHERE id = $1`,
		entry.ID, entry.EffectiveAt, entry.ResourceAmount, entry.ManualAmount,
		entry.RelatedAmount, entry.Balance, entry.ValidityDate,
		entry.BalanceCreditRemovalID, entry.BeingProcessed, time.Now().UTC(),
	)
	return err
}

// SetProcessing flips the being_processed flag on the given entries.
func (r *BalanceRepository) SetProcessing(ctx context.Context, tx usecase.Transaction, ids []string, processing bool) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := inTx(r.pool, tx).Exec(ctx, `
		UPDATE balance_entries SET being_processed = $2, updated_at = $3
		WHERE id = ANY($1)`,
		ids, processing, time.Now().UTC())
	return err
}

// DeleteByIDs removes the given entries.
func (r *BalanceRepository) DeleteByIDs(ctx context.Context, tx usecase.Transaction, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := inTx(r.pool, tx).Exec(ctx, `
		DELETE FROM balance_entries WHERE id = ANY($1)`, ids)
	return err
}

// DeleteTypesInWindow deletes entries of the given types with
// from <= effective_at < to; a nil to means unbounded.
func (r *BalanceRepository) DeleteTypesInWindow(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, types []domain.BalanceType, from time.Time, to *time.Time) error {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}

	q := inTx(r.pool, tx)
	if to == nil {
		_, err := q.Exec(ctx, `
			DELETE FROM balance_entries
			WHERE employee_id = $1 AND time_off_category_id = $2
			  AND entry_type = ANY($3) AND effective_at >= $4`,
			employeeID, categoryID, names, from)
		return err
	}

	_, err := q.Exec(ctx, `
		DELETE FROM balance_entries
		WHERE employee_id = $1 AND time_off_category_id = $2
		  AND entry_type = ANY($3) AND effective_at >= $4 AND effective_at < $5`,
		employeeID, categoryID, names, from, *to)
	return err
}

// CategoriesForEmployee lists every category the employee has entries in.
func (r *BalanceRepository) CategoriesForEmployee(ctx context.Context, tx usecase.Transaction, employeeID string) ([]string, error) {
	rows, err := inTx(r.pool, tx).Query(ctx, `
		SELECT DISTINCT time_off_category_id FROM balance_entries
		WHERE employee_id = $1
		ORDER BY time_off_category_id`,
		employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListByCategory returns a page of the partition in effective order.
func (r *BalanceRepository) ListByCategory(ctx context.Context, employeeID, categoryID string, limit, offset int) ([]*domain.BalanceEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+balanceColumns+` FROM balance_entries
		WHERE employee_id = $1 AND time_off_category_id = $2
		ORDER BY effective_at ASC, id ASC
		LIMIT $3 OFFSET $4`,
		employeeID, categoryID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectBalances(rows)
}

// LastInRange returns the last entry with from <= effective_at <= to.
func (r *BalanceRepository) LastInRange(ctx context.Context, employeeID, categoryID string, from, to time.Time) (*domain.BalanceEntry, error) {
	entry, err := scanBalance(r.pool.QueryRow(ctx, `
		SELECT `+balanceColumns+` FROM balance_entries
		WHERE employee_id = $1 AND time_off_category_id = $2
		  AND effective_at >= $3 AND effective_at <= $4
		ORDER BY effective_at DESC, id DESC
		LIMIT 1`,
		employeeID, categoryID, from, to))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// TimeOffAmountAfter sums time-off consumption booked strictly after the
// given time.
func (r *BalanceRepository) TimeOffAmountAfter(ctx context.Context, employeeID, categoryID string, after time.Time) (int64, error) {
	var sum int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(resource_amount + manual_amount + related_amount), 0)
		FROM balance_entries
		WHERE employee_id = $1 AND time_off_category_id = $2
		  AND entry_type = $3 AND effective_at > $4`,
		employeeID, categoryID, domain.TypeTimeOff, after).Scan(&sum)
	return sum, err
}

func scanBalance(row pgx.Row) (*domain.BalanceEntry, error) {
	var e domain.BalanceEntry
	err := row.Scan(
		&e.ID, &e.EmployeeID, &e.CategoryID, &e.AccountID, &e.Type,
		&e.EffectiveAt, &e.ResourceAmount, &e.ManualAmount, &e.RelatedAmount, &e.Balance,
		&e.ValidityDate, &e.BalanceCreditRemovalID, &e.TimeOffID, &e.BeingProcessed,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectBalances(rows pgx.Rows) ([]*domain.BalanceEntry, error) {
	defer rows.Close()

	var entries []*domain.BalanceEntry
	for rows.Next() {
		entry, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
