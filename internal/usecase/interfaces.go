package usecase

import (
	"context"
	"time"

	"github.com/peopleops/leaveledger/internal/domain"
)

// BalanceRepository defines the ordered query surface over balance entries.
// All partition queries are scoped to one (employee, category) pair and
// ordered by effective_at. Lookups that can legitimately find nothing
// return (nil, nil) rather than an error.
type BalanceRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.BalanceEntry) error
	GetByID(ctx context.Context, id string) (*domain.BalanceEntry, error)
	GetByIDTx(ctx context.Context, tx Transaction, id string) (*domain.BalanceEntry, error)

	// Previous returns the latest entry strictly before the given time,
	// excluding excludeID when non-empty.
	Previous(ctx context.Context, tx Transaction, employeeID, categoryID string, before time.Time, excludeID string) (*domain.BalanceEntry, error)
	// Last returns the chronologically last entry of the partition.
	Last(ctx context.Context, tx Transaction, employeeID, categoryID string) (*domain.BalanceEntry, error)
	// Between returns entries with from < effective_at < to, ascending.
	Between(ctx context.Context, tx Transaction, employeeID, categoryID string, from, to time.Time) ([]*domain.BalanceEntry, error)
	// ListFrom returns entries with effective_at >= from, ascending.
	ListFrom(ctx context.Context, tx Transaction, employeeID, categoryID string, from time.Time) ([]*domain.BalanceEntry, error)
	// AdditionsForRemoval returns the additions whose credit removal is the
	// given removal entry, ascending by effective_at.
	AdditionsForRemoval(ctx context.Context, tx Transaction, removalID string) ([]*domain.BalanceEntry, error)
	// RemovalAt finds the removal entry at the exact effective time, if any.
	RemovalAt(ctx context.Context, tx Transaction, employeeID, categoryID string, at time.Time) (*domain.BalanceEntry, error)
	// ExistsAt reports whether any entry occupies the exact effective time.
	ExistsAt(ctx context.Context, tx Transaction, employeeID, categoryID string, at time.Time) (bool, error)

	GetByTimeOffID(ctx context.Context, tx Transaction, timeOffID string) (*domain.BalanceEntry, error)
	Update(ctx context.Context, tx Transaction, entry *domain.BalanceEntry) error
	SetProcessing(ctx context.Context, tx Transaction, ids []string, processing bool) error
	DeleteByIDs(ctx context.Context, tx Transaction, ids []string) error
	// DeleteTypesInWindow deletes entries of the given types with
	// from <= effective_at < to; a nil to means unbounded.
	DeleteTypesInWindow(ctx context.Context, tx Transaction, employeeID, categoryID string, types []domain.BalanceType, from time.Time, to *time.Time) error

	// CategoriesForEmployee lists every category the employee has entries in.
	CategoriesForEmployee(ctx context.Context, tx Transaction, employeeID string) ([]string, error)

	// Read path.
	ListByCategory(ctx context.Context, employeeID, categoryID string, limit, offset int) ([]*domain.BalanceEntry, error)
	LastInRange(ctx context.Context, employeeID, categoryID string, from, to time.Time) (*domain.BalanceEntry, error)
	TimeOffAmountAfter(ctx context.Context, employeeID, categoryID string, after time.Time) (int64, error)
}

// TimeOffRepository defines data access for time-off requests.
type TimeOffRepository interface {
	Create(ctx context.Context, timeOff *domain.TimeOff) error
	GetByID(ctx context.Context, id string) (*domain.TimeOff, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.TimeOffStatus, updatedAt time.Time) error
	SetProcessing(ctx context.Context, tx Transaction, id string, processing bool) error
	// DeleteStartingFrom deletes the employee's time offs beginning at or
	// after the given time.
	DeleteStartingFrom(ctx context.Context, tx Transaction, employeeID string, from time.Time) error
	// FindStraddling returns approved time offs that span the given instant.
	FindStraddling(ctx context.Context, tx Transaction, employeeID string, at time.Time) ([]*domain.TimeOff, error)
	Truncate(ctx context.Context, tx Transaction, id string, endsAt time.Time) error
}

// AssignmentRepository defines data access for employee time-off-policy
// assignments.
type AssignmentRepository interface {
	Create(ctx context.Context, tx Transaction, assignment *domain.EmployeeTimeOffPolicy) error
	GetByID(ctx context.Context, id string) (*domain.EmployeeTimeOffPolicy, error)
	Update(ctx context.Context, tx Transaction, assignment *domain.EmployeeTimeOffPolicy) error
	Delete(ctx context.Context, tx Transaction, id string) error
	ListByCategory(ctx context.Context, tx Transaction, employeeID, categoryID string) ([]*domain.EmployeeTimeOffPolicy, error)
	// ActiveAt returns the assignment governing the category at the given
	// time, or (nil, nil) when the employee has no coverage.
	ActiveAt(ctx context.Context, tx Transaction, employeeID, categoryID string, at time.Time) (*domain.EmployeeTimeOffPolicy, error)
	// DeleteEffectiveFrom deletes the employee's assignments effective at or
	// after the given time, across categories.
	DeleteEffectiveFrom(ctx context.Context, tx Transaction, employeeID string, from time.Time) error
	DeleteResetsAt(ctx context.Context, tx Transaction, employeeID string, at time.Time) error
}

// PolicyRepository defines read access to time-off policies.
type PolicyRepository interface {
	GetByID(ctx context.Context, id string) (*domain.TimeOffPolicy, error)
}

// EmployeeRepository defines data access for employees.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	// SetContractEnd records or clears the employee's contract end date.
	SetContractEnd(ctx context.Context, tx Transaction, id string, at *time.Time) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// JobQueue hands recompute work to the asynchronous worker. Delivery is
// at-least-once and fire-and-forget; the cascade is idempotent.
type JobQueue interface {
	Enqueue(ctx context.Context, job domain.RecomputeJob) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Delete releases a claimed key so the request may be retried.
	Delete(ctx context.Context, key string) error
}
