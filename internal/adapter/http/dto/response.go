package dto

import (
	"time"

	"github.com/peopleops/leaveledger/internal/domain"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// BalanceResponse represents a balance entry in API responses.
type BalanceResponse struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employee_id"`
	CategoryID     string     `json:"category_id"`
	AccountID      string     `json:"account_id"`
	Type           string     `json:"type"`
	EffectiveAt    time.Time  `json:"effective_at"`
	ResourceAmount int64      `json:"resource_amount"`
	ManualAmount   int64      `json:"manual_amount"`
	RelatedAmount  int64      `json:"related_amount"`
	Balance        int64      `json:"balance"`
	ValidityDate   *time.Time `json:"validity_date,omitempty"`
	TimeOffID      *string    `json:"time_off_id,omitempty"`
	BeingProcessed bool       `json:"being_processed"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// BalanceFromDomain converts a domain balance entry to a response.
func BalanceFromDomain(e *domain.BalanceEntry) *BalanceResponse {
	return &BalanceResponse{
		ID:             e.ID,
		EmployeeID:     e.EmployeeID,
		CategoryID:     e.CategoryID,
		AccountID:      e.AccountID,
		Type:           string(e.Type),
		EffectiveAt:    e.EffectiveAt,
		ResourceAmount: e.ResourceAmount,
		ManualAmount:   e.ManualAmount,
		RelatedAmount:  e.RelatedAmount,
		Balance:        e.Balance,
		ValidityDate:   e.ValidityDate,
		TimeOffID:      e.TimeOffID,
		BeingProcessed: e.BeingProcessed,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

// BalancesFromDomain converts domain balance entries to responses.
func BalancesFromDomain(entries []*domain.BalanceEntry) []*BalanceResponse {
	result := make([]*BalanceResponse, len(entries))
	for i, e := range entries {
		result[i] = BalanceFromDomain(e)
	}
	return result
}

// ListBalancesResponse represents a page of a ledger partition.
type ListBalancesResponse struct {
	Balances []*BalanceResponse `json:"balances"`
	Total    int64              `json:"total"`
}

// TimeOffResponse represents a time-off request in API responses.
type TimeOffResponse struct {
	ID             string    `json:"id"`
	EmployeeID     string    `json:"employee_id"`
	CategoryID     string    `json:"category_id"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	Status         string    `json:"status"`
	BeingProcessed bool      `json:"being_processed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TimeOffFromDomain converts a domain time off to a response.
func TimeOffFromDomain(t *domain.TimeOff) *TimeOffResponse {
	return &TimeOffResponse{
		ID:             t.ID,
		EmployeeID:     t.EmployeeID,
		CategoryID:     t.CategoryID,
		StartsAt:       t.StartsAt,
		EndsAt:         t.EndsAt,
		Status:         string(t.Status),
		BeingProcessed: t.BeingProcessed,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// AssignmentResponse represents a policy assignment in API responses.
type AssignmentResponse struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employee_id"`
	PolicyID      string     `json:"policy_id"`
	CategoryID    string     `json:"category_id"`
	EffectiveAt   time.Time  `json:"effective_at"`
	EffectiveTill *time.Time `json:"effective_till,omitempty"`
	Reset         bool       `json:"reset"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AssignmentFromDomain converts a domain assignment to a response.
func AssignmentFromDomain(a *domain.EmployeeTimeOffPolicy) *AssignmentResponse {
	return &AssignmentResponse{
		ID:            a.ID,
		EmployeeID:    a.EmployeeID,
		PolicyID:      a.PolicyID,
		CategoryID:    a.CategoryID,
		EffectiveAt:   a.EffectiveAt,
		EffectiveTill: a.EffectiveTill,
		Reset:         a.Reset,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
