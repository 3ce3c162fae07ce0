package domain

import (
	"errors"
	"fmt"
)

// ValidationError attaches a failed invariant to the field that broke it.
// The entry carrying such an error must not be persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

type entryValidator func(*BalanceEntry) error

// Per-type validation tables. Each balance type carries only the fields it
// needs; anything else present is an invariant violation.
var entryValidators = map[BalanceType][]entryValidator{
	TypeAddition: {
		requireScope,
		validValidityDate,
	},
	TypeAssignation: {
		requireScope,
		validValidityDate,
	},
	TypeRemoval: {
		requireScope,
		noValidityDate,
		nonPositiveResource,
	},
	TypeReset: {
		requireScope,
		noValidityDate,
		noTimeOff,
	},
	TypeTimeOff: {
		requireScope,
		noValidityDate,
		requireTimeOff,
	},
	TypeManualAdjustment: {
		requireScope,
		noValidityDate,
	},
	TypeEndOfPeriod: {
		requireScope,
		noValidityDate,
	},
}

// Validate checks the entry-local invariants for the entry's type. Cross
// entity checks (policy coverage, removal/addition pairing) live in the
// creation service, which sees the surrounding rows.
func (e *BalanceEntry) Validate() error {
	if !e.Type.Valid() {
		return invalid("balance_type", fmt.Sprintf("unknown type %q", e.Type))
	}

	for _, check := range entryValidators[e.Type] {
		if err := check(e); err != nil {
			return err
		}
	}

	return nil
}

func requireScope(e *BalanceEntry) error {
	if e.EmployeeID == "" {
		return invalid("employee_id", "required")
	}
	if e.CategoryID == "" {
		return invalid("time_off_category_id", "required")
	}
	if e.AccountID == "" {
		return invalid("account_id", "required")
	}
	if e.EffectiveAt.IsZero() {
		return invalid("effective_at", "required")
	}
	return nil
}

func validValidityDate(e *BalanceEntry) error {
	if e.ValidityDate == nil {
		return nil
	}
	if !e.ValidityDate.After(e.EffectiveAt) {
		return invalid("validity_date", "must be after effective_at")
	}
	return nil
}

func noValidityDate(e *BalanceEntry) error {
	if e.ValidityDate != nil {
		return invalid("validity_date", fmt.Sprintf("must be blank for %s entries", e.Type))
	}
	return nil
}

func nonPositiveResource(e *BalanceEntry) error {
	if e.ResourceAmount > 0 {
		return invalid("resource_amount", "removal must not credit the balance")
	}
	return nil
}

func requireTimeOff(e *BalanceEntry) error {
	if e.TimeOffID == nil || *e.TimeOffID == "" {
		return invalid("time_off_id", "required for time_off entries")
	}
	return nil
}

func noTimeOff(e *BalanceEntry) error {
	if e.TimeOffID != nil {
		return invalid("time_off_id", fmt.Sprintf("must be blank for %s entries", e.Type))
	}
	return nil
}
