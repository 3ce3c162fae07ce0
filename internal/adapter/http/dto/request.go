package dto

import (
	"time"

	"github.com/peopleops/leaveledger/internal/usecase"
)

// CreateTimeOffRequest represents a request to book time off.
type CreateTimeOffRequest struct {
	EmployeeID string    `json:"employee_id"`
	CategoryID string    `json:"category_id"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTimeOffRequest) ToUseCaseInput() usecase.CreateTimeOffInput {
	return usecase.CreateTimeOffInput{
		EmployeeID: r.EmployeeID,
		CategoryID: r.CategoryID,
		StartsAt:   r.StartsAt,
		EndsAt:     r.EndsAt,
	}
}

// CreateAdjustmentRequest represents a manual balance correction in signed
// minutes.
type CreateAdjustmentRequest struct {
	EmployeeID   string     `json:"employee_id"`
	CategoryID   string     `json:"category_id"`
	AccountID    string     `json:"account_id"`
	Amount       int64      `json:"amount"`
	EffectiveDay *time.Time `json:"effective_day,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAdjustmentRequest) ToUseCaseInput() usecase.CreateAdjustmentInput {
	return usecase.CreateAdjustmentInput{
		EmployeeID:   r.EmployeeID,
		CategoryID:   r.CategoryID,
		AccountID:    r.AccountID,
		Amount:       r.Amount,
		EffectiveDay: r.EffectiveDay,
	}
}

// CreateAssignmentRequest represents a request to assign a policy to an
// employee.
type CreateAssignmentRequest struct {
	EmployeeID  string    `json:"employee_id"`
	PolicyID    string    `json:"policy_id"`
	AccountID   string    `json:"account_id"`
	EffectiveAt time.Time `json:"effective_at"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAssignmentRequest) ToUseCaseInput() usecase.CreateAssignmentInput {
	return usecase.CreateAssignmentInput{
		EmployeeID:  r.EmployeeID,
		PolicyID:    r.PolicyID,
		AccountID:   r.AccountID,
		EffectiveAt: r.EffectiveAt,
	}
}

// UpdateAssignmentRequest moves an assignment's start date.
type UpdateAssignmentRequest struct {
	EffectiveAt time.Time `json:"effective_at"`
}

// ContractEndRequest records or moves an employee's contract end date.
type ContractEndRequest struct {
	ContractEndAt time.Time `json:"contract_end_at"`
}
