package domain

import (
	"time"

	generalDomain "github.com/sakashimaa/go-banking-saga/pkg/domain"
)

type Customer struct {
	ID        int64                      `db:"id"`
	LegalID   string                     `db:"legal_id"`
	FirstName string                     `db:"first_name"`
	LastName  string                     `db:"last_name"`
	Email     string                     `db:"email"`
	Phone     string                     `db:"phone"`
	Address   string                     `db:"address"`
	Type      generalDomain.CustomerType `db:"type"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
