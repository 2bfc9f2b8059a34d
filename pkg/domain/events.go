package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CustomerType string

const (
	CustomerTypeRetail    CustomerType = "RETAIL"
	CustomerTypeCorporate CustomerType = "CORPORATE"
)

func (t CustomerType) Valid() bool {
	return t == CustomerTypeRetail || t == CustomerTypeCorporate
}

type AccountType string

const (
	AccountTypeSaving     AccountType = "SAVING"
	AccountTypeSalary     AccountType = "SALARY"
	AccountTypeInvestment AccountType = "INVESTMENT"
)

func (t AccountType) Valid() bool {
	return t == AccountTypeSaving || t == AccountTypeSalary || t == AccountTypeInvestment
}

type OutcomeStatus string

const (
	OutcomeStatusSuccess          OutcomeStatus = "SUCCESS"
	OutcomeStatusValidationFailed OutcomeStatus = "VALIDATION_FAILED"
	OutcomeStatusFailed           OutcomeStatus = "FAILED"
)

const (
	ErrorCodeValidation = "VALIDATION_ERROR"
	ErrorCodeTechnical  = "TECHNICAL_ERROR"
)

// AccountCreationRequest is published to the request topic keyed by
// RequestID, so every event of one request lands in the same partition.
type AccountCreationRequest struct {
	RequestID      string           `json:"request_id"`
	CustomerID     int64            `json:"customer_id"`
	CustomerType   CustomerType     `json:"customer_type"`
	AccountType    AccountType      `json:"account_type"`
	InitialBalance *decimal.Decimal `json:"initial_balance"`
	RequestedAt    int64            `json:"requested_at"`
}

// AccountCreationOutcome is the terminal event of a provisioning request,
// published to the response topic keyed by RequestID. At-least-once delivery
// means duplicates per request id are possible; readers take the first match.
type AccountCreationOutcome struct {
	RequestID  string        `json:"request_id"`
	AccountID  *int64        `json:"account_id"`
	CustomerID int64         `json:"customer_id"`
	Status     OutcomeStatus `json:"status"`
	Message    string        `json:"message"`
	ErrorCode  *string       `json:"error_code"`
	ProducedAt int64         `json:"produced_at"`
}

// NewSuccessOutcome carries the allocated account id and no error code.
func NewSuccessOutcome(requestID string, customerID, accountID int64, message string) *AccountCreationOutcome {
	return &AccountCreationOutcome{
		RequestID:  requestID,
		AccountID:  &accountID,
		CustomerID: customerID,
		Status:     OutcomeStatusSuccess,
		Message:    message,
		ProducedAt: time.Now().UnixMilli(),
	}
}

// NewValidationFailedOutcome reports a user-correctable rejection. It never
// carries an account id.
func NewValidationFailedOutcome(requestID string, customerID int64, message string) *AccountCreationOutcome {
	code := ErrorCodeValidation

	return &AccountCreationOutcome{
		RequestID:  requestID,
		CustomerID: customerID,
		Status:     OutcomeStatusValidationFailed,
		Message:    message,
		ErrorCode:  &code,
		ProducedAt: time.Now().UnixMilli(),
	}
}

// NewFailedOutcome reports a technical failure (store unavailable, allocator
// exhaustion, serialization error).
func NewFailedOutcome(requestID string, customerID int64, message string) *AccountCreationOutcome {
	code := ErrorCodeTechnical

	return &AccountCreationOutcome{
		RequestID:  requestID,
		CustomerID: customerID,
		Status:     OutcomeStatusFailed,
		Message:    message,
		ErrorCode:  &code,
		ProducedAt: time.Now().UnixMilli(),
	}
}
