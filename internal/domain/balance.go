package domain

import (
	"time"
)

// BalanceType identifies what kind of ledger event an entry records.
type BalanceType string

const (
	TypeTimeOff          BalanceType = "time_off"
	TypeReset            BalanceType = "reset"
	TypeRemoval          BalanceType = "removal"
	TypeManualAdjustment BalanceType = "manual_adjustment"
	TypeEndOfPeriod      BalanceType = "end_of_period"
	TypeAssignation      BalanceType = "assignation"
	TypeAddition         BalanceType = "addition"
)

// Sub-second offsets added to midnight of the effective day. They impose a
// total order on same-day entries of different types: an end-of-period entry
// sorts before the removal that expires the old period, a reset sorts after
// that removal, and the additions for the new period come after the reset.
const (
	EndOfPeriodOffset      = 1 * time.Millisecond
	RemovalOffset          = 2 * time.Millisecond
	ResetOffset            = 3 * time.Millisecond
	AssignationOffset      = 4 * time.Millisecond
	AdditionOffset         = 5 * time.Millisecond
	ManualAdjustmentOffset = 6 * time.Millisecond
)

// Offset returns the sub-second offset applied to entries of this type.
// Time-off entries carry the request's own end timestamp and get no offset.
func (t BalanceType) Offset() time.Duration {
	switch t {
	case TypeEndOfPeriod:
		return EndOfPeriodOffset
	case TypeRemoval:
		return RemovalOffset
	case TypeReset:
		return ResetOffset
	case TypeAssignation:
		return AssignationOffset
	case TypeAddition:
		return AdditionOffset
	case TypeManualAdjustment:
		return ManualAdjustmentOffset
	default:
		return 0
	}
}

// Valid reports whether t is one of the known balance types.
func (t BalanceType) Valid() bool {
	switch t {
	case TypeTimeOff, TypeReset, TypeRemoval, TypeManualAdjustment,
		TypeEndOfPeriod, TypeAssignation, TypeAddition:
		return true
	}
	return false
}

// EffectiveAtFor places an entry of the given type on a calendar day,
// applying the type's disambiguation offset to midnight UTC.
func EffectiveAtFor(t BalanceType, day time.Time) time.Time {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Add(t.Offset())
}

// BalanceEntry is a single row of the leave-balance ledger. Entries are
// partitioned by (EmployeeID, CategoryID); all ordering and recompute
// operations happen within one partition, ordered by EffectiveAt.
type BalanceEntry struct {
	ID         string
	EmployeeID string
	CategoryID string
	AccountID  string

	Type        BalanceType
	EffectiveAt time.Time

	// Amounts are signed minutes. Balance is the running total within the
	// partition: previous entry's balance plus this entry's Amount().
	ResourceAmount int64
	ManualAmount   int64
	RelatedAmount  int64
	Balance        int64

	// ValidityDate marks when a balancer-policy addition expires and must be
	// offset by a removal. Always nil under counter policies.
	ValidityDate *time.Time

	// BalanceCreditRemovalID links an addition to the removal that expires
	// it. Several additions may point at one removal; an addition has at
	// most one.
	BalanceCreditRemovalID *string

	// TimeOffID is set when the entry consumes from an approved time off.
	TimeOffID *string

	// BeingProcessed marks entries queued for asynchronous recompute, so
	// readers can tell a stale balance from a settled one.
	BeingProcessed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Amount returns the entry's total delta against the running balance.
func (e *BalanceEntry) Amount() int64 {
	return e.ResourceAmount + e.ManualAmount + e.RelatedAmount
}

// SameDay reports whether the entry falls on the given UTC calendar day.
func (e *BalanceEntry) SameDay(day time.Time) bool {
	y1, m1, d1 := e.EffectiveAt.UTC().Date()
	y2, m2, d2 := day.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
