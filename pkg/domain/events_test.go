package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSuccessOutcome(t *testing.T) {
	outcome := NewSuccessOutcome("req-1", 1000001, 1000001000, "Account created successfully")

	assert.Equal(t, "req-1", outcome.RequestID)
	assert.Equal(t, OutcomeStatusSuccess, outcome.Status)
	require.NotNil(t, outcome.AccountID)
	assert.Equal(t, int64(1000001000), *outcome.AccountID)
	assert.Nil(t, outcome.ErrorCode)
	assert.NotZero(t, outcome.ProducedAt)
}

func TestNewValidationFailedOutcome(t *testing.T) {
	outcome := NewValidationFailedOutcome("req-1", 1000001, "customer can have only one SALARY account")

	assert.Equal(t, OutcomeStatusValidationFailed, outcome.Status)
	assert.Nil(t, outcome.AccountID)
	require.NotNil(t, outcome.ErrorCode)
	assert.Equal(t, ErrorCodeValidation, *outcome.ErrorCode)
}

func TestNewFailedOutcome(t *testing.T) {
	outcome := NewFailedOutcome("req-1", 1000001, "technical error: store unavailable")

	assert.Equal(t, OutcomeStatusFailed, outcome.Status)
	assert.Nil(t, outcome.AccountID)
	require.NotNil(t, outcome.ErrorCode)
	assert.Equal(t, ErrorCodeTechnical, *outcome.ErrorCode)
}

func TestAccountTypeValid(t *testing.T) {
	assert.True(t, AccountTypeSaving.Valid())
	assert.True(t, AccountTypeSalary.Valid())
	assert.True(t, AccountTypeInvestment.Valid())
	assert.False(t, AccountType("CHECKING").Valid())
	assert.False(t, AccountType("").Valid())
}

func TestCustomerTypeValid(t *testing.T) {
	assert.True(t, CustomerTypeRetail.Valid())
	assert.True(t, CustomerTypeCorporate.Valid())
	assert.False(t, CustomerType("GOVERNMENT").Valid())
}
