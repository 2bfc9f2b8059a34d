package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	generalDomain "github.com/sakashimaa/go-banking-saga/pkg/domain"
	"github.com/sakashimaa/go-banking-saga/pkg/mylogger"
	outboxDomain "github.com/sakashimaa/go-banking-saga/pkg/outbox/domain"
	"github.com/sakashimaa/go-banking-saga/pkg/outbox/worker"
	accountDomain "github.com/sakashimaa/go-banking-saga/services/account/internal/domain"
	"github.com/sakashimaa/go-banking-saga/services/account/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ProvisioningService interface {
	HandleCreationRequest(ctx context.Context, req *generalDomain.AccountCreationRequest) error
}

type provisioningService struct {
	pool          *pgxpool.Pool
	logger        *zap.Logger
	accounts      repository.AccountRepository
	outboxRepo    worker.OutboxRepository
	validator     *Validator
	responseTopic string
	tracer        trace.Tracer
}

func NewProvisioningService(
	pool *pgxpool.Pool,
	logger *zap.Logger,
	accounts repository.AccountRepository,
	outboxRepo worker.OutboxRepository,
	validator *Validator,
	responseTopic string,
) ProvisioningService {
	return &provisioningService{
		pool:          pool,
		logger:        logger,
		accounts:      accounts,
		outboxRepo:    outboxRepo,
		validator:     validator,
		responseTopic: responseTopic,
		tracer:        otel.Tracer("provisioning_service"),
	}
}

// HandleCreationRequest drives validate, allocate, persist and record-outcome
// for one delivery. Every path records exactly one outcome; only when even
// the outcome row cannot be written does the error escape, leaving the
// delivery unmarked for broker-level redelivery.
func (s *provisioningService) HandleCreationRequest(ctx context.Context, req *generalDomain.AccountCreationRequest) error {
	ctx, span := s.tracer.Start(ctx, "ProvisioningService.HandleCreationRequest")
	defer span.End()

	span.SetAttributes(
		attribute.String("request_id", req.RequestID),
		attribute.Int64("customer_id", req.CustomerID),
		attribute.String("account_type", string(req.AccountType)),
	)

	err := s.validator.ValidateAccountCreation(ctx, req)

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		mylogger.Warn(
			ctx,
			s.logger,
			"Account creation validation failed",
			zap.String("request_id", req.RequestID),
			zap.Int64("customer_id", req.CustomerID),
			zap.String("reason", vErr.Message),
		)

		return s.recordOutcome(ctx, generalDomain.NewValidationFailedOutcome(req.RequestID, req.CustomerID, vErr.Message))
	}
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Account creation validation errored",
			zap.String("request_id", req.RequestID),
			zap.Error(err),
		)

		return s.recordOutcome(ctx, generalDomain.NewFailedOutcome(req.RequestID, req.CustomerID, "technical error: "+err.Error()))
	}

	account, err := s.createAccount(ctx, req)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			s.logger,
			"Failed to create account",
			zap.String("request_id", req.RequestID),
			zap.Int64("customer_id", req.CustomerID),
			zap.Error(err),
		)

		return s.recordOutcome(ctx, generalDomain.NewFailedOutcome(req.RequestID, req.CustomerID, "technical error: "+err.Error()))
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Account created",
		zap.Int64("account_id", account.ID),
		zap.Int64("customer_id", account.CustomerID),
	)

	return nil
}

// createAccount runs the allocate-persist-outcome sequence as one unit of
// work: the account row and its SUCCESS outcome commit together or not at
// all.
func (s *provisioningService) createAccount(ctx context.Context, req *generalDomain.AccountCreationRequest) (*accountDomain.Account, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)

		err := tx.Rollback(shutdownCtx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(shutdownCtx, s.logger, "Failed to rollback transaction", zap.Error(err))
		}
	}()

	accountID, err := NextAccountID(ctx, tx, s.accounts, req.CustomerID)
	if err != nil {
		return nil, err
	}

	account, err := accountDomain.NewAccount(accountID, req.CustomerID, req.AccountType, req.InitialBalance)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Save(ctx, tx, account); err != nil {
		return nil, err
	}

	outcome := generalDomain.NewSuccessOutcome(req.RequestID, req.CustomerID, account.ID, "Account created successfully")
	if err := s.saveOutcome(ctx, tx, outcome); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

// recordOutcome writes a terminal outcome in its own transaction, used for
// the paths that persist no account row.
func (s *provisioningService) recordOutcome(ctx context.Context, outcome *generalDomain.AccountCreationOutcome) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)

		err := tx.Rollback(shutdownCtx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(shutdownCtx, s.logger, "Failed to rollback transaction", zap.Error(err))
		}
	}()

	if err := s.saveOutcome(ctx, tx, outcome); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *provisioningService) saveOutcome(ctx context.Context, tx pgx.Tx, outcome *generalDomain.AccountCreationOutcome) error {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	outboxEvent := &outboxDomain.OutboxEvent{
		AggregateType: "Account",
		AggregateID:   outcome.RequestID,
		EventType:     "AccountCreationOutcome",
		EventKey:      outcome.RequestID,
		Payload:       payload,
		Topic:         s.responseTopic,
	}

	if err := s.outboxRepo.SaveOutboxEvent(ctx, tx, outboxEvent); err != nil {
		return fmt.Errorf("failed to save outcome to outbox: %w", err)
	}

	return nil
}
