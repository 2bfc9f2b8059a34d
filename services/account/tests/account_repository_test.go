package tests

import (
	generalDomain "github.com/sakashimaa/go-banking-saga/pkg/domain"
	"github.com/sakashimaa/go-banking-saga/services/account/internal/repository"
	"github.com/shopspring/decimal"
)

func (s *IntegrationTestSuite) TestAccountRepository_ListByCustomer() {
	s.seedAccount(1000010000, 1000010, generalDomain.AccountTypeSaving)
	s.seedAccount(1000010001, 1000010, generalDomain.AccountTypeSalary)
	s.seedAccount(1000011000, 1000011, generalDomain.AccountTypeSaving)

	accounts, err := s.AccountRepo.ListByCustomer(s.Ctx, 1000010)
	s.Require().NoError(err)
	s.Require().Len(accounts, 2)
	s.Equal(int64(1000010000), accounts[0].ID)
	s.Equal(int64(1000010001), accounts[1].ID)
}

func (s *IntegrationTestSuite) TestAccountRepository_GetByIDAndCustomer() {
	s.seedAccount(1000012000, 1000012, generalDomain.AccountTypeSaving)

	account, err := s.AccountRepo.GetByIDAndCustomer(s.Ctx, 1000012000, 1000012)
	s.Require().NoError(err)
	s.Equal(int64(1000012000), account.ID)

	_, err = s.AccountRepo.GetByIDAndCustomer(s.Ctx, 1000012000, 1000013)
	s.ErrorIs(err, repository.ErrAccountNotFound)
}

func (s *IntegrationTestSuite) TestAccountRepository_UpdateBalance() {
	s.seedAccount(1000014000, 1000014, generalDomain.AccountTypeSaving)

	newBalance := decimal.RequireFromString("250.75")
	s.Require().NoError(s.AccountRepo.UpdateBalance(s.Ctx, 1000014000, 1000014, newBalance))

	account, err := s.AccountRepo.GetByID(s.Ctx, 1000014000)
	s.Require().NoError(err)
	s.True(account.Balance.Equal(newBalance))

	err = s.AccountRepo.UpdateBalance(s.Ctx, 1000014999, 1000014, newBalance)
	s.ErrorIs(err, repository.ErrAccountNotFound)
}

func (s *IntegrationTestSuite) TestAccountRepository_Delete() {
	s.seedAccount(1000015000, 1000015, generalDomain.AccountTypeSaving)

	s.Require().NoError(s.AccountRepo.Delete(s.Ctx, 1000015000, 1000015))

	_, err := s.AccountRepo.GetByID(s.Ctx, 1000015000)
	s.ErrorIs(err, repository.ErrAccountNotFound)

	err = s.AccountRepo.Delete(s.Ctx, 1000015000, 1000015)
	s.ErrorIs(err, repository.ErrAccountNotFound)
}
