package domain

import "time"

// PolicyKind distinguishes the two accounting modes for time-off policies.
type PolicyKind string

const (
	// PolicyBalancer grants a fixed entitlement per period that expires and
	// must be offset by a removal at the period's validity date.
	PolicyBalancer PolicyKind = "balancer"
	// PolicyCounter has no expiry; the balance accumulates and depletes,
	// and a removal simply zeroes the counter.
	PolicyCounter PolicyKind = "counter"
)

// TimeOffPolicy describes how entitlement accrues for one category.
type TimeOffPolicy struct {
	ID         string
	AccountID  string
	CategoryID string
	Name       string
	Kind       PolicyKind

	// Amount is the entitlement credited per period, in minutes.
	Amount int64

	// PeriodYears is the policy period length; additions repeat at this
	// interval from the assignment's first start date.
	PeriodYears int

	// EndDay/EndMonth mark the day a balancer period's entitlement expires.
	// YearsToEffect shifts the expiry by whole years past the period start.
	EndDay        int
	EndMonth      time.Month
	YearsToEffect int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasValidity reports whether additions under this policy carry a validity
// date (balancer policies with a configured end day).
func (p *TimeOffPolicy) HasValidity() bool {
	return p.Kind == PolicyBalancer && p.EndDay != 0 && p.EndMonth != 0
}

// ValidityDateFor computes the validity date for an addition effective on
// the given day: the first end-day/end-month occurrence after the effective
// day, shifted by YearsToEffect, placed at the removal offset.
func (p *TimeOffPolicy) ValidityDateFor(effective time.Time) *time.Time {
	if !p.HasValidity() {
		return nil
	}

	base := time.Date(effective.Year(), p.EndMonth, p.EndDay, 0, 0, 0, 0, time.UTC)
	if !base.After(effective.UTC()) {
		base = base.AddDate(1, 0, 0)
	}

	if p.YearsToEffect > 0 {
		base = base.AddDate(p.YearsToEffect, 0, 0)
	}

	v := base.Add(RemovalOffset)

	return &v
}

// EmployeeTimeOffPolicy assigns a policy to an employee for the period
// [EffectiveAt, EffectiveTill). A nil EffectiveTill means open-ended.
type EmployeeTimeOffPolicy struct {
	ID         string
	EmployeeID string
	PolicyID   string
	CategoryID string

	EffectiveAt   time.Time
	EffectiveTill *time.Time

	// Reset marks a coverage-boundary assignment created by contract-end
	// handling: the employee re-enters the category at zero balance.
	Reset bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CoversAt reports whether the assignment is in force at the given time.
func (a *EmployeeTimeOffPolicy) CoversAt(at time.Time) bool {
	if at.Before(a.EffectiveAt) {
		return false
	}
	if a.EffectiveTill != nil && !at.Before(*a.EffectiveTill) {
		return false
	}
	return true
}
