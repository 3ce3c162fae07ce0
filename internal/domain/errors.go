package domain

import "errors"

var (
	// Balance errors
	ErrBalanceNotFound      = errors.New("balance entry not found")
	ErrInvalidAmount        = errors.New("amount must be expressed in signed minutes")
	ErrDuplicateEffectiveAt = errors.New("an entry already exists at this effective time for the employee and category")

	// Association errors
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrPolicyNotFound      = errors.New("time off policy not found")
	ErrAssignmentNotFound  = errors.New("policy assignment not found")
	ErrTimeOffNotFound     = errors.New("time off not found")
	ErrNoPolicyAssigned    = errors.New("no time off policy assigned for category at effective date")
	ErrContractEndNotFound = errors.New("employee has no contract end recorded")

	// Time off errors
	ErrTimeOffAlreadyProcessed = errors.New("time off request already approved or declined")
	ErrInvalidTimeOffPeriod    = errors.New("time off must end after it starts")
)
