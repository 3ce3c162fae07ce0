package domain

import "time"

// Event types
const (
	EventTypeBalanceCreated     = "balance.created"
	EventTypeCascadeCompleted   = "balance.cascade_completed"
	EventTypeTimeOffApproved    = "time_off.approved"
	EventTypeTimeOffDeclined    = "time_off.declined"
	EventTypeAssignmentCreated  = "assignment.created"
	EventTypeAssignmentRemoved  = "assignment.removed"
	EventTypeContractEndApplied = "contract_end.applied"
)

// Aggregate types
const (
	AggregateTypeBalance    = "balance"
	AggregateTypeTimeOff    = "time_off"
	AggregateTypeAssignment = "assignment"
	AggregateTypeEmployee   = "employee"
)

// OutboxEvent represents an event to be published. Producers set
// Payload to one of the typed event structs below; events read back
// from the outbox table carry the decoded JSON instead.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// BalanceCreatedEvent payload
type BalanceCreatedEvent struct {
	BalanceID   string `json:"balance_id"`
	EmployeeID  string `json:"employee_id"`
	CategoryID  string `json:"category_id"`
	BalanceType string `json:"balance_type"`
	Amount      int64  `json:"amount"`
	EffectiveAt string `json:"effective_at"`
}

// CascadeCompletedEvent payload
type CascadeCompletedEvent struct {
	TriggerBalanceID string `json:"trigger_balance_id"`
	EmployeeID       string `json:"employee_id"`
	CategoryID       string `json:"category_id"`
	Recomputed       int    `json:"recomputed"`
}

// TimeOffStatusEvent payload, shared by approve and decline.
type TimeOffStatusEvent struct {
	TimeOffID  string `json:"time_off_id"`
	EmployeeID string `json:"employee_id"`
	CategoryID string `json:"category_id"`
	Status     string `json:"status"`
}

// AssignmentEvent payload
type AssignmentEvent struct {
	AssignmentID string `json:"assignment_id"`
	EmployeeID   string `json:"employee_id"`
	PolicyID     string `json:"policy_id"`
	CategoryID   string `json:"category_id"`
	EffectiveAt  string `json:"effective_at"`
}

// ContractEndAppliedEvent payload
type ContractEndAppliedEvent struct {
	EmployeeID  string `json:"employee_id"`
	EffectiveAt string `json:"effective_at"`
	Categories  int    `json:"categories"`
}

// RecomputeJob is the unit of work handed to the job queue: recompute the
// partition of the trigger entry, optionally from an earlier date for
// retroactive inserts and deletions.
type RecomputeJob struct {
	EntryID    string     `json:"entry_id"`
	EmployeeID string     `json:"employee_id"`
	CategoryID string     `json:"category_id"`
	From       *time.Time `json:"from,omitempty"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
}
