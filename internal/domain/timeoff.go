package domain

import "time"

// TimeOffStatus is the approval state of a time-off request.
type TimeOffStatus string

const (
	TimeOffPending  TimeOffStatus = "pending"
	TimeOffApproved TimeOffStatus = "approved"
	TimeOffDeclined TimeOffStatus = "declined"
)

// TimeOff is a request to consume entitlement over [StartsAt, EndsAt].
// Approval creates a time_off balance entry at EndsAt; declining removes it.
type TimeOff struct {
	ID         string
	EmployeeID string
	CategoryID string

	StartsAt time.Time
	EndsAt   time.Time

	Status TimeOffStatus

	// BeingProcessed mirrors the flag on the linked balance entry while a
	// recompute that touches this time off is in flight.
	BeingProcessed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Minutes returns the consumed duration in whole minutes.
func (t *TimeOff) Minutes() int64 {
	return int64(t.EndsAt.Sub(t.StartsAt) / time.Minute)
}

// Overlaps reports whether the time off intersects [from, to).
func (t *TimeOff) Overlaps(from, to time.Time) bool {
	return t.StartsAt.Before(to) && t.EndsAt.After(from)
}

// Straddles reports whether the time off spans across the given instant.
func (t *TimeOff) Straddles(at time.Time) bool {
	return t.StartsAt.Before(at) && t.EndsAt.After(at)
}
