package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	generalDomain "github.com/sakashimaa/go-banking-saga/pkg/domain"
	"github.com/sakashimaa/go-banking-saga/pkg/mylogger"
	"github.com/sakashimaa/go-banking-saga/services/account/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByIDAndCustomer(ctx context.Context, id, customerID int64) (*domain.Account, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Account, error)
	CountByCustomer(ctx context.Context, customerID int64) (int64, error)
	HasAccountOfType(ctx context.Context, customerID int64, accountType generalDomain.AccountType) (bool, error)
	LockCustomerNamespace(ctx context.Context, tx pgx.Tx, customerID int64) error
	MaxIDForCustomer(ctx context.Context, tx pgx.Tx, customerID int64) (int64, bool, error)
	ExistsByID(ctx context.Context, tx pgx.Tx, id int64) (bool, error)
	Save(ctx context.Context, tx pgx.Tx, account *domain.Account) error
	UpdateBalance(ctx context.Context, id, customerID int64, balance decimal.Decimal) error
	Delete(ctx context.Context, id, customerID int64) error
}

type accountRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewAccountRepository(pool *pgxpool.Pool, logger *zap.Logger) AccountRepository {
	return &accountRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("account_repository"),
	}
}

func (r *accountRepo) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("account_id", id),
	)

	query := `
		SELECT id, customer_id, balance, type, status, min_balance, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	return r.scanAccount(ctx, r.pool.QueryRow(ctx, query, id))
}

func (r *accountRepo) GetByIDAndCustomer(ctx context.Context, id, customerID int64) (*domain.Account, error) {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.GetByIDAndCustomer")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("account_id", id),
		attribute.Int64("customer_id", customerID),
	)

	query := `
		SELECT id, customer_id, balance, type, status, min_balance, created_at, updated_at
		FROM accounts
		WHERE id = $1 AND customer_id = $2
	`

	return r.scanAccount(ctx, r.pool.QueryRow(ctx, query, id, customerID))
}

func (r *accountRepo) scanAccount(ctx context.Context, row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.CustomerID,
		&account.Balance,
		&account.Type,
		&account.Status,
		&account.MinBalance,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to scan account row",
			zap.Error(err),
		)

		return nil, err
	}

	return &account, nil
}

func (r *accountRepo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Account, error) {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.ListByCustomer")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", customerID),
	)

	query := `
		SELECT id, customer_id, balance, type, status, min_balance, created_at, updated_at
		FROM accounts
		WHERE customer_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query accounts",
			zap.Error(err),
		)

		return nil, err
	}
	defer rows.Close()

	var result []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID,
			&account.CustomerID,
			&account.Balance,
			&account.Type,
			&account.Status,
			&account.MinBalance,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			span.RecordError(err)

			return nil, err
		}

		result = append(result, account)
	}

	if err := rows.Err(); err != nil {
		mylogger.Error(
			ctx,
			r.logger,
			"Rows error",
			zap.Error(err),
		)

		return nil, err
	}

	return result, nil
}

func (r *accountRepo) CountByCustomer(ctx context.Context, customerID int64) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.CountByCustomer")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", customerID),
	)

	query := `
		SELECT COUNT(*)
		FROM accounts
		WHERE customer_id = $1
	`

	var count int64
	if err := r.pool.QueryRow(ctx, query, customerID).Scan(&count); err != nil {
		span.RecordError(err)

		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	return count, nil
}

func (r *accountRepo) HasAccountOfType(ctx context.Context, customerID int64, accountType generalDomain.AccountType) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.HasAccountOfType")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", customerID),
		attribute.String("account_type", string(accountType)),
	)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM accounts
			WHERE customer_id = $1 AND type = $2
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, customerID, string(accountType)).Scan(&exists); err != nil {
		span.RecordError(err)

		return false, fmt.Errorf("failed to check account type: %w", err)
	}

	return exists, nil
}

// LockCustomerNamespace serializes id allocation for one customer inside the
// surrounding transaction. Allocations for different customers take different
// locks and proceed independently.
func (r *accountRepo) LockCustomerNamespace(ctx context.Context, tx pgx.Tx, customerID int64) error {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.LockCustomerNamespace")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", customerID),
	)

	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, customerID)
	if err != nil {
		span.RecordError(err)

		return fmt.Errorf("failed to lock customer namespace: %w", err)
	}

	return nil
}

func (r *accountRepo) MaxIDForCustomer(ctx context.Context, tx pgx.Tx, customerID int64) (int64, bool, error) {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.MaxIDForCustomer")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", customerID),
	)

	query := `
		SELECT MAX(id)
		FROM accounts
		WHERE customer_id = $1
	`

	var maxID *int64
	if err := tx.QueryRow(ctx, query, customerID).Scan(&maxID); err != nil {
		span.RecordError(err)

		return 0, false, fmt.Errorf("failed to query max account id: %w", err)
	}

	if maxID == nil {
		return 0, false, nil
	}

	return *maxID, true, nil
}

func (r *accountRepo) ExistsByID(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.ExistsByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("account_id", id),
	)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
		span.RecordError(err)

		return false, fmt.Errorf("failed to check account existence: %w", err)
	}

	return exists, nil
}

func (r *accountRepo) Save(ctx context.Context, tx pgx.Tx, account *domain.Account) error {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("account_id", account.ID),
		attribute.Int64("customer_id", account.CustomerID),
		attribute.String("account_type", string(account.Type)),
	)

	query := `
		INSERT INTO accounts (id, customer_id, balance, type, status, min_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if err := tx.QueryRow(
		ctx,
		query,
		account.ID,
		account.CustomerID,
		account.Balance,
		string(account.Type),
		string(account.Status),
		account.MinBalance,
	).Scan(
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			return ErrAccountAlreadyExists
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to insert account",
			zap.Int64("account_id", account.ID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

func (r *accountRepo) UpdateBalance(ctx context.Context, id, customerID int64, balance decimal.Decimal) error {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.UpdateBalance")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("account_id", id),
	)

	query := `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE id = $2 AND customer_id = $3
	`

	commandTag, err := r.pool.Exec(ctx, query, balance, id, customerID)
	if err != nil {
		span.RecordError(err)

		return fmt.Errorf("failed to update balance: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func (r *accountRepo) Delete(ctx context.Context, id, customerID int64) error {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("account_id", id),
	)

	commandTag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1 AND customer_id = $2`, id, customerID)
	if err != nil {
		span.RecordError(err)

		return fmt.Errorf("failed to delete account: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	mylogger.Info(
		ctx,
		r.logger,
		"Account deleted",
		zap.Int64("account_id", id),
	)

	return nil
}
