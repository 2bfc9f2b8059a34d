package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrIDSpaceExhausted means all 1000 ids of a customer's namespace are taken.
// No further accounts can be allocated for that customer.
var ErrIDSpaceExhausted = errors.New("account id space exhausted for customer")

// accountIDNamespace reserves ids customerId*1000 .. customerId*1000+999 for
// each customer.
const accountIDNamespace = 1000

type accountIDStore interface {
	LockCustomerNamespace(ctx context.Context, tx pgx.Tx, customerID int64) error
	MaxIDForCustomer(ctx context.Context, tx pgx.Tx, customerID int64) (int64, bool, error)
	ExistsByID(ctx context.Context, tx pgx.Tx, id int64) (bool, error)
}

// NextAccountID allocates the next id in the customer's namespace. The caller
// must run it inside the same transaction that inserts the account: the
// per-customer advisory lock taken here serializes concurrent allocations for
// one customer while leaving other customers untouched.
//
// The first account gets the namespace base. After that ids grow by one; an
// increment spilling into the next customer's namespace wraps back to the
// base, and a taken base after wrap means the namespace is exhausted.
func NextAccountID(ctx context.Context, tx pgx.Tx, store accountIDStore, customerID int64) (int64, error) {
	if err := store.LockCustomerNamespace(ctx, tx, customerID); err != nil {
		return 0, err
	}

	base := customerID * accountIDNamespace

	maxID, found, err := store.MaxIDForCustomer(ctx, tx, customerID)
	if err != nil {
		return 0, err
	}

	if !found {
		return base, nil
	}

	next := maxID + 1
	if next/accountIDNamespace != customerID {
		next = base

		exists, err := store.ExistsByID(ctx, tx, next)
		if err != nil {
			return 0, err
		}
		if exists {
			return 0, fmt.Errorf("%w: %d", ErrIDSpaceExhausted, customerID)
		}
	}

	return next, nil
}
