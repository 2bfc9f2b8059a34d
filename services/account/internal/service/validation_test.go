package service

import (
	"context"
	"errors"
	"testing"

	generalDomain "github.com/sakashimaa/go-banking-saga/pkg/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type validationStoreStub struct {
	count      int64
	countErr   error
	hasType    map[generalDomain.AccountType]bool
	hasTypeErr error
}

func (s *validationStoreStub) CountByCustomer(_ context.Context, _ int64) (int64, error) {
	return s.count, s.countErr
}

func (s *validationStoreStub) HasAccountOfType(_ context.Context, _ int64, accountType generalDomain.AccountType) (bool, error) {
	return s.hasType[accountType], s.hasTypeErr
}

func newRequest(customerType generalDomain.CustomerType, accountType generalDomain.AccountType, balance *decimal.Decimal) *generalDomain.AccountCreationRequest {
	return &generalDomain.AccountCreationRequest{
		RequestID:      "req-1",
		CustomerID:     1000001,
		CustomerType:   customerType,
		AccountType:    accountType,
		InitialBalance: balance,
	}
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestValidateAccountCreation_Success(t *testing.T) {
	v := NewValidator(&validationStoreStub{}, zap.NewNop())

	err := v.ValidateAccountCreation(
		context.Background(),
		newRequest(generalDomain.CustomerTypeCorporate, generalDomain.AccountTypeInvestment, decimalPtr("15000.00")),
	)

	assert.NoError(t, err)
}

func TestValidateAccountCreation_InvalidAccountType(t *testing.T) {
	v := NewValidator(&validationStoreStub{}, zap.NewNop())

	err := v.ValidateAccountCreation(
		context.Background(),
		newRequest(generalDomain.CustomerTypeRetail, "CHECKING", nil),
	)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "invalid account type: CHECKING")
}

func TestValidateAccountCreation_AccountLimitReached(t *testing.T) {
	v := NewValidator(&validationStoreStub{count: 10}, zap.NewNop())

	err := v.ValidateAccountCreation(
		context.Background(),
		newRequest(generalDomain.CustomerTypeCorporate, generalDomain.AccountTypeSaving, nil),
	)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "maximum 10 accounts")
	assert.Contains(t, vErr.Message, "current count: 10")
}

func TestValidateAccountCreation_RetailRestriction(t *testing.T) {
	v := NewValidator(&validationStoreStub{}, zap.NewNop())

	for _, accountType := range []generalDomain.AccountType{
		generalDomain.AccountTypeSalary,
		generalDomain.AccountTypeInvestment,
	} {
		err := v.ValidateAccountCreation(
			context.Background(),
			newRequest(generalDomain.CustomerTypeRetail, accountType, decimalPtr("20000.00")),
		)

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Message, "retail customers can only have SAVING accounts")
	}
}

func TestValidateAccountCreation_RetailSavingAllowed(t *testing.T) {
	v := NewValidator(&validationStoreStub{}, zap.NewNop())

	err := v.ValidateAccountCreation(
		context.Background(),
		newRequest(generalDomain.CustomerTypeRetail, generalDomain.AccountTypeSaving, nil),
	)

	assert.NoError(t, err)
}

func TestValidateAccountCreation_DuplicateSalary(t *testing.T) {
	store := &validationStoreStub{
		hasType: map[generalDomain.AccountType]bool{
			generalDomain.AccountTypeSalary: true,
		},
	}
	v := NewValidator(store, zap.NewNop())

	err := v.ValidateAccountCreation(
		context.Background(),
		newRequest(generalDomain.CustomerTypeCorporate, generalDomain.AccountTypeSalary, nil),
	)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "customer can have only one SALARY account", vErr.Message)
}

func TestValidateAccountCreation_InvestmentBelowMinimum(t *testing.T) {
	v := NewValidator(&validationStoreStub{}, zap.NewNop())

	err := v.ValidateAccountCreation(
		context.Background(),
		newRequest(generalDomain.CustomerTypeCorporate, generalDomain.AccountTypeInvestment, decimalPtr("9999.99")),
	)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "minimum balance of 10000")
	assert.Contains(t, vErr.Message, "provided: 9999.99")
}

func TestValidateAccountCreation_InvestmentNilBalance(t *testing.T) {
	v := NewValidator(&validationStoreStub{}, zap.NewNop())

	err := v.ValidateAccountCreation(
		context.Background(),
		newRequest(generalDomain.CustomerTypeCorporate, generalDomain.AccountTypeInvestment, nil),
	)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "provided: null")
}

func TestValidateAccountCreation_InvestmentExactMinimum(t *testing.T) {
	v := NewValidator(&validationStoreStub{}, zap.NewNop())

	err := v.ValidateAccountCreation(
		context.Background(),
		newRequest(generalDomain.CustomerTypeCorporate, generalDomain.AccountTypeInvestment, decimalPtr("10000.00")),
	)

	assert.NoError(t, err)
}

func TestValidateAccountCreation_StoreErrorIsNotValidationError(t *testing.T) {
	storeErr := errors.New("connection refused")
	v := NewValidator(&validationStoreStub{countErr: storeErr}, zap.NewNop())

	err := v.ValidateAccountCreation(
		context.Background(),
		newRequest(generalDomain.CustomerTypeCorporate, generalDomain.AccountTypeSaving, nil),
	)

	require.Error(t, err)

	var vErr *ValidationError
	assert.False(t, errors.As(err, &vErr))
	assert.ErrorIs(t, err, storeErr)
}
