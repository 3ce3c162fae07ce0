package domain

import "time"

// Employee carries the contract window the ledger validates against.
// Everything else about employees is owned by the HR subsystem.
type Employee struct {
	ID        string
	AccountID string

	HiredAt       time.Time
	ContractEndAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContractCovers reports whether the given time falls inside the employee's
// contract period. The day after a contract end still belongs to the window
// so that reset entries can be placed there.
func (e *Employee) ContractCovers(at time.Time) bool {
	if at.Before(e.HiredAt) {
		return false
	}
	if e.ContractEndAt != nil && !at.Before(e.ContractEndAt.AddDate(0, 0, 2)) {
		return false
	}
	return true
}
