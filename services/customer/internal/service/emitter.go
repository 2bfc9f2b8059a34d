package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	generalDomain "github.com/sakashimaa/go-banking-saga/pkg/domain"
	"github.com/sakashimaa/go-banking-saga/pkg/kafka"
	"github.com/sakashimaa/go-banking-saga/pkg/mylogger"
	"github.com/sakashimaa/go-banking-saga/pkg/utils"
	"github.com/sakashimaa/go-banking-saga/services/customer/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrPublishFailed wraps broker errors on the request-emission path.
var ErrPublishFailed = errors.New("failed to publish account creation request")

// AccountRequestEmitter builds and publishes account creation requests keyed
// by a fresh correlation id. It returns right after the publish ack and never
// waits for an outcome.
type AccountRequestEmitter struct {
	producer  kafka.Producer
	customers repository.CustomerRepository
	topic     string
	cb        *gobreaker.CircuitBreaker
	logger    *zap.Logger
	tracer    trace.Tracer
}

func NewAccountRequestEmitter(
	producer kafka.Producer,
	customers repository.CustomerRepository,
	topic string,
	logger *zap.Logger,
) *AccountRequestEmitter {
	settings := gobreaker.Settings{
		Name:        "AccountCreationRequests",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn(
				"Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &AccountRequestEmitter{
		producer:  producer,
		customers: customers,
		topic:     topic,
		cb:        gobreaker.NewCircuitBreaker(settings),
		logger:    logger,
		tracer:    otel.Tracer("account_request_emitter"),
	}
}

func (e *AccountRequestEmitter) RequestAccountCreation(
	ctx context.Context,
	customerID int64,
	accountType generalDomain.AccountType,
	initialBalance *decimal.Decimal,
) (string, error) {
	ctx, span := e.tracer.Start(ctx, "AccountRequestEmitter.RequestAccountCreation")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", customerID),
		attribute.String("account_type", string(accountType)),
	)

	customer, err := e.customers.GetByID(ctx, customerID)
	if err != nil {
		return "", err
	}

	requestID := uuid.NewString()

	span.SetAttributes(
		attribute.String("request_id", requestID),
	)

	event := &generalDomain.AccountCreationRequest{
		RequestID:      requestID,
		CustomerID:     customer.ID,
		CustomerType:   customer.Type,
		AccountType:    accountType,
		InitialBalance: initialBalance,
		RequestedAt:    time.Now().UnixMilli(),
	}

	_, err = utils.ExecuteWithBreaker(e.cb, func() (struct{}, error) {
		return struct{}{}, e.producer.ProduceMessage(ctx, e.topic, requestID, event)
	})
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			e.logger,
			"Failed to publish account creation request",
			zap.String("request_id", requestID),
			zap.Int64("customer_id", customerID),
			zap.Error(err),
		)

		return "", fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}

	mylogger.Info(
		ctx,
		e.logger,
		"Account creation requested",
		zap.String("request_id", requestID),
		zap.Int64("customer_id", customerID),
		zap.String("account_type", string(accountType)),
	)

	return requestID, nil
}
