package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakashimaa/go-banking-saga/pkg/mylogger"
	"github.com/sakashimaa/go-banking-saga/services/customer/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CustomerRepository interface {
	Save(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

type customerRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewCustomerRepository(pool *pgxpool.Pool, logger *zap.Logger) CustomerRepository {
	return &customerRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("customer_repository"),
	}
}

func (r *customerRepo) Save(ctx context.Context, customer *domain.Customer) error {
	ctx, span := r.tracer.Start(ctx, "CustomerRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", customer.ID),
		attribute.String("customer_type", string(customer.Type)),
	)

	query := `
		INSERT INTO customers (id, legal_id, first_name, last_name, email, phone, address, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(
		ctx,
		query,
		customer.ID,
		customer.LegalID,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
		customer.Address,
		string(customer.Type),
	).Scan(
		&customer.CreatedAt,
		&customer.UpdatedAt,
	); err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			return ErrCustomerAlreadyExists
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to insert customer",
			zap.Int64("customer_id", customer.ID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to insert customer: %w", err)
	}

	return nil
}

func (r *customerRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	ctx, span := r.tracer.Start(ctx, "CustomerRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", id),
	)

	query := `
		SELECT id, legal_id, first_name, last_name, email, phone, address, type, created_at, updated_at
		FROM customers
		WHERE id = $1
	`

	var customer domain.Customer
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&customer.ID,
		&customer.LegalID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.Phone,
		&customer.Address,
		&customer.Type,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query customer",
			zap.Int64("customer_id", id),
			zap.Error(err),
		)

		return nil, err
	}

	return &customer, nil
}

func (r *customerRepo) ExistsByID(ctx context.Context, id int64) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "CustomerRepository.ExistsByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", id),
	)

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists); err != nil {
		span.RecordError(err)

		return false, fmt.Errorf("failed to check customer existence: %w", err)
	}

	return exists, nil
}
