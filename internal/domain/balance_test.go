package domain

import (
	"testing"
	"time"
)

func TestBalanceType_OffsetOrdering(t *testing.T) {
	day := time.Date(2017, 4, 1, 0, 0, 0, 0, time.UTC)

	// Same-day events must never collide and must sort in the documented
	// order: end_of_period, removal, reset, assignation, addition,
	// manual_adjustment.
	ordered := []BalanceType{
		TypeEndOfPeriod,
		TypeRemoval,
		TypeReset,
		TypeAssignation,
		TypeAddition,
		TypeManualAdjustment,
	}

	var prev time.Time
	for i, bt := range ordered {
		at := EffectiveAtFor(bt, day)
		if i > 0 && !at.After(prev) {
			t.Errorf("%s at %v does not sort after previous type at %v", bt, at, prev)
		}
		if !at.Truncate(24 * time.Hour).Equal(day) {
			t.Errorf("%s offset moved entry off its calendar day: %v", bt, at)
		}
		prev = at
	}
}

func TestBalanceType_ResetSortsAfterRemoval(t *testing.T) {
	day := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)

	removal := EffectiveAtFor(TypeRemoval, day)
	reset := EffectiveAtFor(TypeReset, day)

	if !reset.After(removal) {
		t.Errorf("reset %v must sort after removal %v on the same day", reset, removal)
	}
}

func TestBalanceEntry_Amount(t *testing.T) {
	tests := []struct {
		name     string
		resource int64
		manual   int64
		related  int64
		want     int64
	}{
		{"resource only", 9600, 0, 0, 9600},
		{"manual adjustment", 0, -120, 0, -120},
		{"with related time off", -480, 0, -60, -540},
		{"all zero", 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &BalanceEntry{
				ResourceAmount: tt.resource,
				ManualAmount:   tt.manual,
				RelatedAmount:  tt.related,
			}

			if got := e.Amount(); got != tt.want {
				t.Errorf("Amount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTimeOffPolicy_ValidityDateFor(t *testing.T) {
	policy := &TimeOffPolicy{
		Kind:     PolicyBalancer,
		EndDay:   1,
		EndMonth: time.April,
	}

	effective := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC).Add(AdditionOffset)

	got := policy.ValidityDateFor(effective)
	if got == nil {
		t.Fatal("expected validity date, got nil")
	}

	want := time.Date(2016, 4, 1, 0, 0, 0, 0, time.UTC).Add(RemovalOffset)
	if !got.Equal(want) {
		t.Errorf("validity date = %v, want %v", got, want)
	}
}

func TestTimeOffPolicy_ValidityDateFor_RollsToNextYear(t *testing.T) {
	policy := &TimeOffPolicy{
		Kind:     PolicyBalancer,
		EndDay:   1,
		EndMonth: time.April,
	}

	// Effective after the end day: validity must land in the next year.
	effective := time.Date(2016, 6, 15, 0, 0, 0, 0, time.UTC)

	got := policy.ValidityDateFor(effective)
	if got == nil {
		t.Fatal("expected validity date, got nil")
	}

	want := time.Date(2017, 4, 1, 0, 0, 0, 0, time.UTC).Add(RemovalOffset)
	if !got.Equal(want) {
		t.Errorf("validity date = %v, want %v", got, want)
	}
}

func TestTimeOffPolicy_ValidityDateFor_YearsToEffect(t *testing.T) {
	policy := &TimeOffPolicy{
		Kind:          PolicyBalancer,
		EndDay:        1,
		EndMonth:      time.April,
		YearsToEffect: 1,
	}

	effective := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)

	got := policy.ValidityDateFor(effective)
	want := time.Date(2017, 4, 1, 0, 0, 0, 0, time.UTC).Add(RemovalOffset)
	if got == nil || !got.Equal(want) {
		t.Errorf("validity date = %v, want %v", got, want)
	}
}

func TestTimeOffPolicy_CounterHasNoValidity(t *testing.T) {
	policy := &TimeOffPolicy{
		Kind:     PolicyCounter,
		EndDay:   1,
		EndMonth: time.April,
	}

	if policy.HasValidity() {
		t.Error("counter policy must never carry validity dates")
	}
	if got := policy.ValidityDateFor(time.Now()); got != nil {
		t.Errorf("expected nil validity date for counter policy, got %v", got)
	}
}

func TestTimeOff_Minutes(t *testing.T) {
	to := &TimeOff{
		StartsAt: time.Date(2017, 3, 1, 9, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2017, 3, 1, 17, 0, 0, 0, time.UTC),
	}

	if got := to.Minutes(); got != 480 {
		t.Errorf("Minutes() = %d, want 480", got)
	}
}

func TestTimeOff_Straddles(t *testing.T) {
	to := &TimeOff{
		StartsAt: time.Date(2017, 3, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2017, 3, 8, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"inside", time.Date(2017, 3, 3, 0, 0, 0, 0, time.UTC), true},
		{"before", time.Date(2017, 2, 1, 0, 0, 0, 0, time.UTC), false},
		{"after", time.Date(2017, 4, 1, 0, 0, 0, 0, time.UTC), false},
		{"at start", to.StartsAt, false},
		{"at end", to.EndsAt, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := to.Straddles(tt.at); got != tt.want {
				t.Errorf("Straddles(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}
