package usecase

import "time"

// PeriodSequence lazily yields policy-period start dates: the assignment's
// first start date, then one start per policy length in years, up to a
// bound. Pure date arithmetic, kept apart from persistence so it can be
// tested on its own.
type PeriodSequence struct {
	next      time.Time
	stepYears int
	until     time.Time
	done      bool
}

// PeriodStarts builds the sequence of period starts from first (inclusive)
// to until (inclusive), stepping stepYears at a time. A step below one year
// is treated as annual.
func PeriodStarts(first time.Time, stepYears int, until time.Time) *PeriodSequence {
	if stepYears < 1 {
		stepYears = 1
	}

	return &PeriodSequence{
		next:      first.UTC(),
		stepYears: stepYears,
		until:     until.UTC(),
		done:      first.After(until),
	}
}

// Next returns the next period start, or false when the sequence is
// exhausted.
func (s *PeriodSequence) Next() (time.Time, bool) {
	if s.done {
		return time.Time{}, false
	}

	current := s.next

	s.next = current.AddDate(s.stepYears, 0, 0)
	if s.next.After(s.until) {
		s.done = true
	}

	return current, true
}

// Collect drains the sequence into a slice.
func (s *PeriodSequence) Collect() []time.Time {
	var starts []time.Time
	for {
		t, ok := s.Next()
		if !ok {
			return starts
		}
		starts = append(starts, t)
	}
}

// affectedWindow computes the [starting, ending) date window touched by an
// assignment change, from the old and new effective dates. The window opens
// at the earlier of the two and closes at the later, extended to the end of
// the policy period that contains it.
func affectedWindow(oldEffective, newEffective time.Time, stepYears int) (time.Time, time.Time) {
	if stepYears < 1 {
		stepYears = 1
	}

	start, end := oldEffective, newEffective
	if end.Before(start) {
		start, end = end, start
	}

	return start.UTC(), end.UTC().AddDate(stepYears, 0, 0)
}

// periodStartFor returns the start of the policy period containing at,
// anchored on the assignment's first effective date.
func periodStartFor(firstEffective, at time.Time, stepYears int) time.Time {
	if stepYears < 1 {
		stepYears = 1
	}

	current := firstEffective.UTC()
	for {
		next := current.AddDate(stepYears, 0, 0)
		if next.After(at.UTC()) {
			return current
		}
		current = next
	}
}
