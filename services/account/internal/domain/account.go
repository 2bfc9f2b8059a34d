package domain

import (
	"fmt"
	"time"

	generalDomain "github.com/sakashimaa/go-banking-saga/pkg/domain"
	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
	AccountStatusClosed    AccountStatus = "CLOSED"
)

// InvestmentMinBalance is the floor every INVESTMENT account must hold.
var InvestmentMinBalance = decimal.RequireFromString("10000.00")

type Account struct {
	ID         int64                     `db:"id"`
	CustomerID int64                     `db:"customer_id"`
	Balance    decimal.Decimal           `db:"balance"`
	Type       generalDomain.AccountType `db:"type"`
	Status     AccountStatus             `db:"status"`
	MinBalance decimal.Decimal           `db:"min_balance"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NewAccount computes all defaults up front: status starts ACTIVE, a nil
// initial balance means zero, and the minimum balance follows the account
// type. The INVESTMENT floor is enforced here so an account below it can
// never be constructed.
func NewAccount(id, customerID int64, accountType generalDomain.AccountType, initialBalance *decimal.Decimal) (*Account, error) {
	balance := decimal.Zero
	if initialBalance != nil {
		balance = *initialBalance
	}

	if balance.IsNegative() {
		return nil, fmt.Errorf("balance cannot be negative: %s", balance)
	}

	minBalance := decimal.Zero
	if accountType == generalDomain.AccountTypeInvestment {
		minBalance = InvestmentMinBalance

		if balance.LessThan(minBalance) {
			return nil, fmt.Errorf("investment accounts require minimum balance of %s, got %s", minBalance, balance)
		}
	}

	return &Account{
		ID:         id,
		CustomerID: customerID,
		Balance:    balance,
		Type:       accountType,
		Status:     AccountStatusActive,
		MinBalance: minBalance,
	}, nil
}
