package tests

import (
	"time"

	"github.com/google/uuid"
	generalDomain "github.com/sakashimaa/go-banking-saga/pkg/domain"
	"github.com/sakashimaa/go-banking-saga/services/customer/internal/service"
)

func (s *IntegrationTestSuite) publishOutcome(outcome *generalDomain.AccountCreationOutcome) {
	s.Require().NoError(s.TestProducer.ProduceMessage(s.Ctx, responseTopic, outcome.RequestID, outcome))
}

func (s *IntegrationTestSuite) TestGetRequestStatus_ResolvesPublishedOutcome() {
	requestID := uuid.NewString()
	s.publishOutcome(generalDomain.NewSuccessOutcome(requestID, 1000001, 1000001000, "Account created successfully"))

	outcome, err := s.StatusService.GetRequestStatus(s.Ctx, requestID)
	s.Require().NoError(err)

	s.Equal(requestID, outcome.RequestID)
	s.Equal(generalDomain.OutcomeStatusSuccess, outcome.Status)
	s.Require().NotNil(outcome.AccountID)
	s.Equal(int64(1000001000), *outcome.AccountID)

	// The topic is the source of truth; asking again returns the same answer.
	again, err := s.StatusService.GetRequestStatus(s.Ctx, requestID)
	s.Require().NoError(err)
	s.Equal(outcome.RequestID, again.RequestID)
	s.Equal(outcome.Status, again.Status)
}

func (s *IntegrationTestSuite) TestGetRequestStatus_ResolvesOutcomeArrivingDuringWatch() {
	requestID := uuid.NewString()

	go func() {
		time.Sleep(500 * time.Millisecond)

		outcome := generalDomain.NewValidationFailedOutcome(requestID, 1000002, "customer can have only one SALARY account")
		if err := s.TestProducer.ProduceMessage(s.Ctx, responseTopic, requestID, outcome); err != nil {
			s.T().Errorf("failed to publish outcome: %v", err)
		}
	}()

	outcome, err := s.StatusService.GetRequestStatus(s.Ctx, requestID)
	s.Require().NoError(err)

	s.Equal(generalDomain.OutcomeStatusValidationFailed, outcome.Status)
	s.Require().NotNil(outcome.ErrorCode)
	s.Equal(generalDomain.ErrorCodeValidation, *outcome.ErrorCode)
	s.Nil(outcome.AccountID)
}

func (s *IntegrationTestSuite) TestGetRequestStatus_DuplicateOutcomesReturnFirst() {
	requestID := uuid.NewString()

	// At-least-once relay can publish the same outcome twice; the first
	// record wins and later duplicates are never surfaced.
	first := generalDomain.NewSuccessOutcome(requestID, 1000003, 1000003000, "Account created successfully")
	s.publishOutcome(first)

	duplicate := generalDomain.NewSuccessOutcome(requestID, 1000003, 1000003000, "Account created successfully (redelivery)")
	s.publishOutcome(duplicate)

	outcome, err := s.StatusService.GetRequestStatus(s.Ctx, requestID)
	s.Require().NoError(err)
	s.Equal(generalDomain.OutcomeStatusSuccess, outcome.Status)
	s.Equal(first.Message, outcome.Message)
	s.Equal(first.ProducedAt, outcome.ProducedAt)

	again, err := s.StatusService.GetRequestStatus(s.Ctx, requestID)
	s.Require().NoError(err)
	s.Equal(first.Message, again.Message)
	s.Equal(first.ProducedAt, again.ProducedAt)
}

func (s *IntegrationTestSuite) TestGetRequestStatus_UnknownRequest() {
	_, err := s.StatusService.GetRequestStatus(s.Ctx, uuid.NewString())
	s.ErrorIs(err, service.ErrStatusNotFound)
}
