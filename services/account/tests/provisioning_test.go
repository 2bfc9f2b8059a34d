package tests

import (
	"github.com/google/uuid"
	generalDomain "github.com/sakashimaa/go-banking-saga/pkg/domain"
	kafka2 "github.com/sakashimaa/go-banking-saga/pkg/kafka"
	"github.com/shopspring/decimal"
)

func (s *IntegrationTestSuite) TestProvisioning_Success() {
	requestID := uuid.NewString()
	req := s.newRequest(requestID, 1000001, generalDomain.CustomerTypeCorporate, generalDomain.AccountTypeInvestment, "15000.00")

	s.Require().NoError(s.Provisioning.HandleCreationRequest(s.Ctx, req))

	account, err := s.AccountRepo.GetByID(s.Ctx, 1000001000)
	s.Require().NoError(err)
	s.Equal(int64(1000001), account.CustomerID)
	s.Equal(generalDomain.AccountTypeInvestment, account.Type)
	s.Equal("ACTIVE", string(account.Status))
	s.True(account.Balance.Equal(decimal.RequireFromString("15000.00")))
	s.True(account.MinBalance.Equal(decimal.RequireFromString("10000.00")))

	outcome := s.resolveOutcome(requestID)
	s.Equal(generalDomain.OutcomeStatusSuccess, outcome.Status)
	s.Require().NotNil(outcome.AccountID)
	s.Equal(int64(1000001000), *outcome.AccountID)
	s.Nil(outcome.ErrorCode)

	// Resolution only reads the topic, so asking again gives the same answer.
	again := s.resolveOutcome(requestID)
	s.Equal(outcome.RequestID, again.RequestID)
	s.Equal(outcome.Status, again.Status)
	s.Equal(*outcome.AccountID, *again.AccountID)
}

func (s *IntegrationTestSuite) TestProvisioning_SequentialIDs() {
	first := uuid.NewString()
	second := uuid.NewString()

	s.Require().NoError(s.Provisioning.HandleCreationRequest(
		s.Ctx,
		s.newRequest(first, 1000002, generalDomain.CustomerTypeCorporate, generalDomain.AccountTypeSaving, ""),
	))
	s.Require().NoError(s.Provisioning.HandleCreationRequest(
		s.Ctx,
		s.newRequest(second, 1000002, generalDomain.CustomerTypeCorporate, generalDomain.AccountTypeSalary, ""),
	))

	firstOutcome := s.resolveOutcome(first)
	secondOutcome := s.resolveOutcome(second)

	s.Require().NotNil(firstOutcome.AccountID)
	s.Require().NotNil(secondOutcome.AccountID)
	s.Equal(int64(1000002000), *firstOutcome.AccountID)
	s.Equal(int64(1000002001), *secondOutcome.AccountID)
}

func (s *IntegrationTestSuite) TestProvisioning_DuplicateSalaryRejected() {
	s.seedAccount(1000003000, 1000003, generalDomain.AccountTypeSalary)

	requestID := uuid.NewString()
	req := s.newRequest(requestID, 1000003, generalDomain.CustomerTypeCorporate, generalDomain.AccountTypeSalary, "")

	s.Require().NoError(s.Provisioning.HandleCreationRequest(s.Ctx, req))

	outcome := s.resolveOutcome(requestID)
	s.Equal(generalDomain.OutcomeStatusValidationFailed, outcome.Status)
	s.Nil(outcome.AccountID)
	s.Require().NotNil(outcome.ErrorCode)
	s.Equal(generalDomain.ErrorCodeValidation, *outcome.ErrorCode)
	s.Contains(outcome.Message, "only one SALARY account")

	count, err := s.AccountRepo.CountByCustomer(s.Ctx, 1000003)
	s.Require().NoError(err)
	s.Equal(int64(1), count)
}

func (s *IntegrationTestSuite) TestProvisioning_RetailRestriction() {
	requestID := uuid.NewString()
	req := s.newRequest(requestID, 1000004, generalDomain.CustomerTypeRetail, generalDomain.AccountTypeInvestment, "20000.00")

	s.Require().NoError(s.Provisioning.HandleCreationRequest(s.Ctx, req))

	outcome := s.resolveOutcome(requestID)
	s.Equal(generalDomain.OutcomeStatusValidationFailed, outcome.Status)
	s.Require().NotNil(outcome.ErrorCode)
	s.Equal(generalDomain.ErrorCodeValidation, *outcome.ErrorCode)
	s.Contains(outcome.Message, "retail customers can only have SAVING accounts")
}

func (s *IntegrationTestSuite) TestProvisioning_InvestmentBelowMinimum() {
	requestID := uuid.NewString()
	req := s.newRequest(requestID, 1000005, generalDomain.CustomerTypeCorporate, generalDomain.AccountTypeInvestment, "5000.00")

	s.Require().NoError(s.Provisioning.HandleCreationRequest(s.Ctx, req))

	outcome := s.resolveOutcome(requestID)
	s.Equal(generalDomain.OutcomeStatusValidationFailed, outcome.Status)
	s.Require().NotNil(outcome.ErrorCode)
	s.Equal(generalDomain.ErrorCodeValidation, *outcome.ErrorCode)

	count, err := s.AccountRepo.CountByCustomer(s.Ctx, 1000005)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *IntegrationTestSuite) TestProvisioning_IDSpaceExhausted() {
	// Namespace wrapped already: the highest id and the base are both taken.
	s.seedAccount(1000006999, 1000006, generalDomain.AccountTypeSaving)
	s.seedAccount(1000006000, 1000006, generalDomain.AccountTypeSaving)

	requestID := uuid.NewString()
	req := s.newRequest(requestID, 1000006, generalDomain.CustomerTypeCorporate, generalDomain.AccountTypeSaving, "")

	s.Require().NoError(s.Provisioning.HandleCreationRequest(s.Ctx, req))

	outcome := s.resolveOutcome(requestID)
	s.Equal(generalDomain.OutcomeStatusFailed, outcome.Status)
	s.Require().NotNil(outcome.ErrorCode)
	s.Equal(generalDomain.ErrorCodeTechnical, *outcome.ErrorCode)
	s.Contains(outcome.Message, "account id space exhausted")
}

func (s *IntegrationTestSuite) TestProvisioning_UnknownRequestIDNotFound() {
	_, err := s.TopicReader.FindFromBeginning(s.Ctx, responseTopic, uuid.NewString(), pollTimeout)
	s.ErrorIs(err, kafka2.ErrKeyNotFound)
}
