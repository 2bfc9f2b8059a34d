package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	generalDomain "github.com/sakashimaa/go-banking-saga/pkg/domain"
	"github.com/sakashimaa/go-banking-saga/pkg/mylogger"
	"github.com/sakashimaa/go-banking-saga/pkg/utils"
	"github.com/sakashimaa/go-banking-saga/services/customer/internal/domain"
	"github.com/sakashimaa/go-banking-saga/services/customer/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrAllocationExhausted means the random probe failed to find a free
// customer id within the attempt ceiling.
var ErrAllocationExhausted = errors.New("failed to allocate a unique customer id")

const (
	customerIDMin      = 1_000_000
	customerIDSpan     = 9_000_000
	maxIDProbeAttempts = 20
)

type CreateCustomerInput struct {
	LegalID   string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	Type      generalDomain.CustomerType
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
}

type customerService struct {
	repo   repository.CustomerRepository
	logger *zap.Logger
	tracer trace.Tracer
}

func NewCustomerService(repo repository.CustomerRepository, logger *zap.Logger) CustomerService {
	return &customerService{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("customer_service"),
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.CreateCustomer")
	defer span.End()

	customerID, err := s.nextCustomerID(ctx)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("customer_id", customerID),
	)

	customer := &domain.Customer{
		ID:        customerID,
		LegalID:   input.LegalID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		Type:      input.Type,
	}

	if err := s.repo.Save(ctx, customer); err != nil {
		return nil, err
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Customer created",
		zap.Int64("customer_id", customer.ID),
	)

	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.GetCustomer")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", id),
	)

	return s.repo.GetByID(ctx, id)
}

// nextCustomerID draws uniform random 7-digit ids and probes the store for a
// free one. Draws are independent; nothing carries between attempts beyond
// the counter.
func (s *customerService) nextCustomerID(ctx context.Context) (int64, error) {
	id, err := utils.RetryBounded(maxIDProbeAttempts, func(attempt int) (int64, error) {
		candidate := int64(customerIDMin + rand.Int64N(customerIDSpan))

		exists, err := s.repo.ExistsByID(ctx, candidate)
		if err != nil {
			return 0, err
		}

		if exists {
			mylogger.Warn(
				ctx,
				s.logger,
				"Customer id already exists, drawing again",
				zap.Int64("candidate", candidate),
				zap.Int("attempt", attempt),
			)

			return 0, utils.ErrRetry
		}

		return candidate, nil
	})

	if errors.Is(err, utils.ErrRetriesExhausted) {
		return 0, fmt.Errorf("%w: gave up after %d attempts", ErrAllocationExhausted, maxIDProbeAttempts)
	}
	if err != nil {
		return 0, err
	}

	return id, nil
}
