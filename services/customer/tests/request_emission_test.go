package tests

import (
	"encoding/json"

	"github.com/google/uuid"
	generalDomain "github.com/sakashimaa/go-banking-saga/pkg/domain"
	"github.com/sakashimaa/go-banking-saga/services/customer/internal/repository"
	"github.com/shopspring/decimal"
)

func (s *IntegrationTestSuite) TestRequestAccountCreation_PublishesKeyedRequest() {
	customerID := s.createCustomer(uuid.NewString(), generalDomain.CustomerTypeCorporate)

	balance := decimal.RequireFromString("15000.00")
	requestID, err := s.Emitter.RequestAccountCreation(s.Ctx, customerID, generalDomain.AccountTypeInvestment, &balance)
	s.Require().NoError(err)
	s.Require().NotEmpty(requestID)

	payload, err := s.TopicReader.FindFromBeginning(s.Ctx, requestTopic, requestID, pollTimeout)
	s.Require().NoError(err)

	var req generalDomain.AccountCreationRequest
	s.Require().NoError(json.Unmarshal(payload, &req))

	s.Equal(requestID, req.RequestID)
	s.Equal(customerID, req.CustomerID)
	s.Equal(generalDomain.CustomerTypeCorporate, req.CustomerType)
	s.Equal(generalDomain.AccountTypeInvestment, req.AccountType)
	s.Require().NotNil(req.InitialBalance)
	s.True(req.InitialBalance.Equal(balance))
	s.NotZero(req.RequestedAt)
}

func (s *IntegrationTestSuite) TestRequestAccountCreation_UnknownCustomer() {
	_, err := s.Emitter.RequestAccountCreation(s.Ctx, 9_999_999, generalDomain.AccountTypeSaving, nil)
	s.ErrorIs(err, repository.ErrCustomerNotFound)
}

func (s *IntegrationTestSuite) TestRequestAccountCreation_FreshCorrelationIDs() {
	customerID := s.createCustomer(uuid.NewString(), generalDomain.CustomerTypeRetail)

	first, err := s.Emitter.RequestAccountCreation(s.Ctx, customerID, generalDomain.AccountTypeSaving, nil)
	s.Require().NoError(err)

	second, err := s.Emitter.RequestAccountCreation(s.Ctx, customerID, generalDomain.AccountTypeSaving, nil)
	s.Require().NoError(err)

	s.NotEqual(first, second)
}
