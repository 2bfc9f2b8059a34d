package service

import (
	"context"
	"fmt"

	generalDomain "github.com/sakashimaa/go-banking-saga/pkg/domain"
	"github.com/sakashimaa/go-banking-saga/pkg/mylogger"
	accountDomain "github.com/sakashimaa/go-banking-saga/services/account/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const maxAccountsPerCustomer = 10

// ValidationError is a user-correctable rejection of a creation request.
// Store failures during validation are returned as plain errors instead.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type validationStore interface {
	CountByCustomer(ctx context.Context, customerID int64) (int64, error)
	HasAccountOfType(ctx context.Context, customerID int64, accountType generalDomain.AccountType) (bool, error)
}

type Validator struct {
	store  validationStore
	logger *zap.Logger
	tracer trace.Tracer
}

func NewValidator(store validationStore, logger *zap.Logger) *Validator {
	return &Validator{
		store:  store,
		logger: logger,
		tracer: otel.Tracer("account_validator"),
	}
}

// ValidateAccountCreation runs the business rules in a fixed order; the first
// failing rule wins and later rules are not evaluated.
func (v *Validator) ValidateAccountCreation(ctx context.Context, req *generalDomain.AccountCreationRequest) error {
	ctx, span := v.tracer.Start(ctx, "Validator.ValidateAccountCreation")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", req.CustomerID),
		attribute.String("account_type", string(req.AccountType)),
	)

	if !req.AccountType.Valid() {
		return &ValidationError{Message: fmt.Sprintf(
			"invalid account type: %s, valid types are: SAVING, SALARY, INVESTMENT", req.AccountType,
		)}
	}

	count, err := v.store.CountByCustomer(ctx, req.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to count customer accounts: %w", err)
	}
	if count >= maxAccountsPerCustomer {
		return &ValidationError{Message: fmt.Sprintf(
			"customer can have maximum %d accounts, current count: %d", maxAccountsPerCustomer, count,
		)}
	}

	if req.CustomerType == generalDomain.CustomerTypeRetail && req.AccountType != generalDomain.AccountTypeSaving {
		return &ValidationError{Message: fmt.Sprintf(
			"retail customers can only have SAVING accounts, requested: %s", req.AccountType,
		)}
	}

	if req.AccountType == generalDomain.AccountTypeSalary {
		hasSalary, err := v.store.HasAccountOfType(ctx, req.CustomerID, generalDomain.AccountTypeSalary)
		if err != nil {
			return fmt.Errorf("failed to check salary account: %w", err)
		}
		if hasSalary {
			return &ValidationError{Message: "customer can have only one SALARY account"}
		}
	}

	if req.AccountType == generalDomain.AccountTypeInvestment {
		if req.InitialBalance == nil || req.InitialBalance.LessThan(accountDomain.InvestmentMinBalance) {
			provided := "null"
			if req.InitialBalance != nil {
				provided = req.InitialBalance.String()
			}

			return &ValidationError{Message: fmt.Sprintf(
				"INVESTMENT accounts must have minimum balance of %s, provided: %s",
				accountDomain.InvestmentMinBalance, provided,
			)}
		}
	}

	mylogger.Debug(
		ctx,
		v.logger,
		"Account creation request passed validation",
		zap.Int64("customer_id", req.CustomerID),
		zap.String("account_type", string(req.AccountType)),
	)

	return nil
}
