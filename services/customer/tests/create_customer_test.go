package tests

import (
	generalDomain "github.com/sakashimaa/go-banking-saga/pkg/domain"
	"github.com/sakashimaa/go-banking-saga/services/customer/internal/repository"
	"github.com/sakashimaa/go-banking-saga/services/customer/internal/service"
)

func (s *IntegrationTestSuite) TestCreateCustomer_Success() {
	id := s.createCustomer("7701234567", generalDomain.CustomerTypeRetail)

	s.GreaterOrEqual(id, int64(1_000_000))
	s.LessOrEqual(id, int64(9_999_999))

	customer, err := s.CustomerService.GetCustomer(s.Ctx, id)
	s.Require().NoError(err)
	s.Equal("7701234567", customer.LegalID)
	s.Equal(generalDomain.CustomerTypeRetail, customer.Type)
	s.False(customer.CreatedAt.IsZero())
}

func (s *IntegrationTestSuite) TestCreateCustomer_DuplicateLegalID() {
	s.createCustomer("7701234567", generalDomain.CustomerTypeRetail)

	_, err := s.CustomerService.CreateCustomer(s.Ctx, &service.CreateCustomerInput{
		LegalID:   "7701234567",
		FirstName: "Jane",
		LastName:  "Smith",
		Email:     "jane.smith@example.com",
		Type:      generalDomain.CustomerTypeCorporate,
	})
	s.ErrorIs(err, repository.ErrCustomerAlreadyExists)
}

func (s *IntegrationTestSuite) TestGetCustomer_NotFound() {
	_, err := s.CustomerService.GetCustomer(s.Ctx, 9_999_999)
	s.ErrorIs(err, repository.ErrCustomerNotFound)
}
