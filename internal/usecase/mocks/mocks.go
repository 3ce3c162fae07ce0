package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/peopleops/leaveledger/internal/domain"
	"github.com/peopleops/leaveledger/internal/usecase"
)

// MockBalanceRepository is a mock implementation of BalanceRepository. The
// default behavior keeps entries in memory with real partition ordering so
// cascade and creation flows run against it unchanged.
type MockBalanceRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.BalanceEntry

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, entry *domain.BalanceEntry) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.BalanceEntry, error)
	PreviousFunc            func(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, before time.Time, excludeID string) (*domain.BalanceEntry, error)
	LastFunc                func(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string) (*domain.BalanceEntry, error)
	ListFromFunc            func(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, from time.Time) ([]*domain.BalanceEntry, error)
	UpdateFunc              func(ctx context.Context, tx usecase.Transaction, entry *domain.BalanceEntry) error
	SetProcessingFunc       func(ctx context.Context, tx usecase.Transaction, ids []string, processing bool) error
	DeleteTypesInWindowFunc func(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, types []domain.BalanceType, from time.Time, to *time.Time) error
	TimeOffAmountAfterFunc  func(ctx context.Context, employeeID, categoryID string, after time.Time) (int64, error)
}

func NewMockBalanceRepository() *MockBalanceRepository {
	return &MockBalanceRepository{
		entries: make(map[string]*domain.BalanceEntry),
	}
}

// Seed inserts entries directly, bypassing any Func override.
func (m *MockBalanceRepository) Seed(entries ...*domain.BalanceEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.ID] = e
	}
}

func (m *MockBalanceRepository) partition(employeeID, categoryID string) []*domain.BalanceEntry {
	var out []*domain.BalanceEntry
	for _, e := range m.entries {
		if e.EmployeeID == employeeID && e.CategoryID == categoryID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EffectiveAt.Equal(out[j].EffectiveAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].EffectiveAt.Before(out[j].EffectiveAt)
	})
	return out
}

func (m *MockBalanceRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.BalanceEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockBalanceRepository) GetByID(ctx context.Context, id string) (*domain.BalanceEntry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, domain.ErrBalanceNotFound
}

func (m *MockBalanceRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.BalanceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, nil
}

func (m *MockBalanceRepository) Previous(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, before time.Time, excludeID string) (*domain.BalanceEntry, error) {
	if m.PreviousFunc != nil {
		return m.PreviousFunc(ctx, tx, employeeID, categoryID, before, excludeID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var prev *domain.BalanceEntry
	for _, e := range m.partition(employeeID, categoryID) {
		if e.ID == excludeID || !e.EffectiveAt.Before(before) {
			continue
		}
		prev = e
	}
	return prev, nil
}

func (m *MockBalanceRepository) Last(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string) (*domain.BalanceEntry, error) {
	if m.LastFunc != nil {
		return m.LastFunc(ctx, tx, employeeID, categoryID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.partition(employeeID, categoryID)
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[len(entries)-1], nil
}

func (m *MockBalanceRepository) Between(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, from, to time.Time) ([]*domain.BalanceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.BalanceEntry
	for _, e := range m.partition(employeeID, categoryID) {
		if e.EffectiveAt.After(from) && e.EffectiveAt.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockBalanceRepository) ListFrom(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, from time.Time) ([]*domain.BalanceEntry, error) {
	if m.ListFromFunc != nil {
		return m.ListFromFunc(ctx, tx, employeeID, categoryID, from)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.BalanceEntry
	for _, e := range m.partition(employeeID, categoryID) {
		if !e.EffectiveAt.Before(from) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockBalanceRepository) AdditionsForRemoval(ctx context.Context, tx usecase.Transaction, removalID string) ([]*domain.BalanceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.BalanceEntry
	for _, e := range m.entries {
		if e.BalanceCreditRemovalID != nil && *e.BalanceCreditRemovalID == removalID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EffectiveAt.Before(out[j].EffectiveAt) })
	return out, nil
}

func (m *MockBalanceRepository) RemovalAt(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, at time.Time) (*domain.BalanceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.partition(employeeID, categoryID) {
		if e.Type == domain.TypeRemoval && e.EffectiveAt.Equal(at) {
			return e, nil
		}
	}
	return nil, nil
}

func (m *MockBalanceRepository) ExistsAt(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, at time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.partition(employeeID, categoryID) {
		if e.EffectiveAt.Equal(at) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockBalanceRepository) GetByTimeOffID(ctx context.Context, tx usecase.Transaction, timeOffID string) (*domain.BalanceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.TimeOffID != nil && *e.TimeOffID == timeOffID {
			return e, nil
		}
	}
	return nil, nil
}

func (m *MockBalanceRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.BalanceEntry) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockBalanceRepository) SetProcessing(ctx context.Context, tx usecase.Transaction, ids []string, processing bool) error {
	if m.SetProcessingFunc != nil {
		return m.SetProcessingFunc(ctx, tx, ids, processing)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if e, ok := m.entries[id]; ok {
			e.BeingProcessed = processing
		}
	}
	return nil
}

func (m *MockBalanceRepository) DeleteByIDs(ctx context.Context, tx usecase.Transaction, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.entries, id)
	}
	return nil
}

func (m *MockBalanceRepository) DeleteTypesInWindow(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, types []domain.BalanceType, from time.Time, to *time.Time) error {
	if m.DeleteTypesInWindowFunc != nil {
		return m.DeleteTypesInWindowFunc(ctx, tx, employeeID, categoryID, types, from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	match := make(map[domain.BalanceType]bool, len(types))
	for _, t := range types {
		match[t] = true
	}
	for id, e := range m.entries {
		if e.EmployeeID != employeeID || e.CategoryID != categoryID || !match[e.Type] {
			continue
		}
		if e.EffectiveAt.Before(from) {
			continue
		}
		if to != nil && !e.EffectiveAt.Before(*to) {
			continue
		}
		delete(m.entries, id)
	}
	return nil
}

func (m *MockBalanceRepository) CategoriesForEmployee(ctx context.Context, tx usecase.Transaction, employeeID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, e := range m.entries {
		if e.EmployeeID == employeeID && !seen[e.CategoryID] {
			seen[e.CategoryID] = true
			out = append(out, e.CategoryID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MockBalanceRepository) ListByCategory(ctx context.Context, employeeID, categoryID string, limit, offset int) ([]*domain.BalanceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.partition(employeeID, categoryID)
	if offset >= len(entries) {
		return nil, nil
	}
	entries = entries[offset:]
	if limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *MockBalanceRepository) LastInRange(ctx context.Context, employeeID, categoryID string, from, to time.Time) (*domain.BalanceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var last *domain.BalanceEntry
	for _, e := range m.partition(employeeID, categoryID) {
		if e.EffectiveAt.Before(from) || e.EffectiveAt.After(to) {
			continue
		}
		last = e
	}
	return last, nil
}

func (m *MockBalanceRepository) TimeOffAmountAfter(ctx context.Context, employeeID, categoryID string, after time.Time) (int64, error) {
	if m.TimeOffAmountAfterFunc != nil {
		return m.TimeOffAmountAfterFunc(ctx, employeeID, categoryID, after)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, e := range m.partition(employeeID, categoryID) {
		if e.Type == domain.TypeTimeOff && e.EffectiveAt.After(after) {
			sum += e.ResourceAmount
		}
	}
	return sum, nil
}

// MockTimeOffRepository is a mock implementation of TimeOffRepository.
type MockTimeOffRepository struct {
	mu       sync.RWMutex
	timeOffs map[string]*domain.TimeOff

	CreateFunc         func(ctx context.Context, timeOff *domain.TimeOff) error
	GetByIDFunc        func(ctx context.Context, id string) (*domain.TimeOff, error)
	UpdateStatusFunc   func(ctx context.Context, tx usecase.Transaction, id string, status domain.TimeOffStatus, updatedAt time.Time) error
	FindStraddlingFunc func(ctx context.Context, tx usecase.Transaction, employeeID string, at time.Time) ([]*domain.TimeOff, error)
}

func NewMockTimeOffRepository() *MockTimeOffRepository {
	return &MockTimeOffRepository{
		timeOffs: make(map[string]*domain.TimeOff),
	}
}

func (m *MockTimeOffRepository) Seed(timeOffs ...*domain.TimeOff) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range timeOffs {
		m.timeOffs[t.ID] = t
	}
}

func (m *MockTimeOffRepository) Create(ctx context.Context, timeOff *domain.TimeOff) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, timeOff)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeOffs[timeOff.ID] = timeOff
	return nil
}

func (m *MockTimeOffRepository) GetByID(ctx context.Context, id string) (*domain.TimeOff, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.timeOffs[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTimeOffNotFound
}

func (m *MockTimeOffRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TimeOffStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timeOffs[id]; ok {
		t.Status = status
		t.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockTimeOffRepository) SetProcessing(ctx context.Context, tx usecase.Transaction, id string, processing bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timeOffs[id]; ok {
		t.BeingProcessed = processing
	}
	return nil
}

func (m *MockTimeOffRepository) DeleteStartingFrom(ctx context.Context, tx usecase.Transaction, employeeID string, from time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.timeOffs {
		if t.EmployeeID == employeeID && !t.StartsAt.Before(from) {
			delete(m.timeOffs, id)
		}
	}
	return nil
}

func (m *MockTimeOffRepository) FindStraddling(ctx context.Context, tx usecase.Transaction, employeeID string, at time.Time) ([]*domain.TimeOff, error) {
	if m.FindStraddlingFunc != nil {
		return m.FindStraddlingFunc(ctx, tx, employeeID, at)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.TimeOff
	for _, t := range m.timeOffs {
		if t.EmployeeID == employeeID && t.Status == domain.TimeOffApproved && t.Straddles(at) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MockTimeOffRepository) Truncate(ctx context.Context, tx usecase.Transaction, id string, endsAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timeOffs[id]; ok {
		t.EndsAt = endsAt
	}
	return nil
}

// MockAssignmentRepository is a mock implementation of AssignmentRepository.
type MockAssignmentRepository struct {
	mu          sync.RWMutex
	assignments map[string]*domain.EmployeeTimeOffPolicy

	ActiveAtFunc func(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, at time.Time) (*domain.EmployeeTimeOffPolicy, error)
}

func NewMockAssignmentRepository() *MockAssignmentRepository {
	return &MockAssignmentRepository{
		assignments: make(map[string]*domain.EmployeeTimeOffPolicy),
	}
}

func (m *MockAssignmentRepository) Seed(assignments ...*domain.EmployeeTimeOffPolicy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range assignments {
		m.assignments[a.ID] = a
	}
}

func (m *MockAssignmentRepository) Create(ctx context.Context, tx usecase.Transaction, assignment *domain.EmployeeTimeOffPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[assignment.ID] = assignment
	return nil
}

func (m *MockAssignmentRepository) GetByID(ctx context.Context, id string) (*domain.EmployeeTimeOffPolicy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.assignments[id]; ok {
		return a, nil
	}
	return nil, domain.ErrAssignmentNotFound
}

func (m *MockAssignmentRepository) Update(ctx context.Context, tx usecase.Transaction, assignment *domain.EmployeeTimeOffPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[assignment.ID] = assignment
	return nil
}

func (m *MockAssignmentRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.assignments, id)
	return nil
}

func (m *MockAssignmentRepository) ListByCategory(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string) ([]*domain.EmployeeTimeOffPolicy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.EmployeeTimeOffPolicy
	for _, a := range m.assignments {
		if a.EmployeeID == employeeID && a.CategoryID == categoryID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EffectiveAt.Before(out[j].EffectiveAt) })
	return out, nil
}

func (m *MockAssignmentRepository) ActiveAt(ctx context.Context, tx usecase.Transaction, employeeID, categoryID string, at time.Time) (*domain.EmployeeTimeOffPolicy, error) {
	if m.ActiveAtFunc != nil {
		return m.ActiveAtFunc(ctx, tx, employeeID, categoryID, at)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var active *domain.EmployeeTimeOffPolicy
	for _, a := range m.assignments {
		if a.EmployeeID != employeeID || a.CategoryID != categoryID || !a.CoversAt(at) {
			continue
		}
		if active == nil || a.EffectiveAt.After(active.EffectiveAt) {
			active = a
		}
	}
	return active, nil
}

func (m *MockAssignmentRepository) DeleteEffectiveFrom(ctx context.Context, tx usecase.Transaction, employeeID string, from time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.assignments {
		if a.EmployeeID == employeeID && !a.EffectiveAt.Before(from) {
			delete(m.assignments, id)
		}
	}
	return nil
}

func (m *MockAssignmentRepository) DeleteResetsAt(ctx context.Context, tx usecase.Transaction, employeeID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.assignments {
		if a.EmployeeID == employeeID && a.Reset && a.EffectiveAt.Equal(at) {
			delete(m.assignments, id)
		}
	}
	return nil
}

// MockPolicyRepository is a mock implementation of PolicyRepository.
type MockPolicyRepository struct {
	mu       sync.RWMutex
	policies map[string]*domain.TimeOffPolicy

	GetByIDFunc func(ctx context.Context, id string) (*domain.TimeOffPolicy, error)
}

func NewMockPolicyRepository() *MockPolicyRepository {
	return &MockPolicyRepository{
		policies: make(map[string]*domain.TimeOffPolicy),
	}
}

func (m *MockPolicyRepository) Seed(policies ...*domain.TimeOffPolicy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range policies {
		m.policies[p.ID] = p
	}
}

func (m *MockPolicyRepository) GetByID(ctx context.Context, id string) (*domain.TimeOffPolicy, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.policies[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPolicyNotFound
}

// MockEmployeeRepository is a mock implementation of EmployeeRepository.
type MockEmployeeRepository struct {
	mu        sync.RWMutex
	employees map[string]*domain.Employee

	GetByIDFunc func(ctx context.Context, id string) (*domain.Employee, error)
}

func NewMockEmployeeRepository() *MockEmployeeRepository {
	return &MockEmployeeRepository{
		employees: make(map[string]*domain.Employee),
	}
}

func (m *MockEmployeeRepository) Seed(employees ...*domain.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range employees {
		m.employees[e.ID] = e
	}
}

func (m *MockEmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.employees[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEmployeeNotFound
}

func (m *MockEmployeeRepository) SetContractEnd(ctx context.Context, tx usecase.Transaction, id string, at *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.employees[id]; ok {
		e.ContractEndAt = at
	}
	return nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

// Events returns everything recorded so far.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.OutboxEvent
	for _, e := range m.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return nil
}

// MockJobQueue is a mock implementation of JobQueue recording every job.
type MockJobQueue struct {
	mu   sync.Mutex
	jobs []domain.RecomputeJob

	EnqueueFunc func(ctx context.Context, job domain.RecomputeJob) error
}

func NewMockJobQueue() *MockJobQueue {
	return &MockJobQueue{}
}

func (m *MockJobQueue) Enqueue(ctx context.Context, job domain.RecomputeJob) error {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, job)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return nil
}

// Jobs returns the enqueued jobs in order.
func (m *MockJobQueue) Jobs() []domain.RecomputeJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.RecomputeJob, len(m.jobs))
	copy(out, m.jobs)
	return out
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%04d", m.counter)
}

// MockRetrier is a mock implementation of Retrier that runs the operation
// once.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string][]byte
	gets int
	sets int

	GetFunc func(ctx context.Context, key string) ([]byte, error)
	SetFunc func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string][]byte),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	m.gets++
	m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.sets++
	m.mu.Unlock()
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Gets reports how many reads the cache has served.
func (m *MockCache) Gets() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gets
}

// Sets reports how many writes the cache has taken.
func (m *MockCache) Sets() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sets
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
