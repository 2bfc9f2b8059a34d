package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	generalDomain "github.com/sakashimaa/go-banking-saga/pkg/domain"
	"github.com/sakashimaa/go-banking-saga/pkg/utils"
	"github.com/sakashimaa/go-banking-saga/services/customer/internal/domain"
	"github.com/sakashimaa/go-banking-saga/services/customer/internal/repository"
	"github.com/sakashimaa/go-banking-saga/services/customer/internal/service"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	service  service.CustomerService
	logger   *zap.Logger
	validate *validator.Validate
}

func NewCustomerHandler(service service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		service:  service,
		logger:   logger,
		validate: validator.New(),
	}
}

type createCustomerRequest struct {
	LegalID      string `json:"legal_id" validate:"required"`
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	CustomerType string `json:"customer_type" validate:"required,oneof=RETAIL CORPORATE"`
}

type customerResponse struct {
	ID        int64  `json:"id"`
	LegalID   string `json:"legal_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Type      string `json:"customer_type"`
}

func toCustomerResponse(c *domain.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		LegalID:   c.LegalID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Type:      string(c.Type),
	}
}

func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	input := new(createCustomerRequest)

	if err := c.BodyParser(input); err != nil {
		h.logger.Warn(
			"failed to parse body in create customer",
			zap.Error(err),
		)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "error parsing body",
		})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": utils.FormatValidationError(err),
		})
	}

	customer, err := h.service.CreateCustomer(c.UserContext(), &service.CreateCustomerInput{
		LegalID:   input.LegalID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		Type:      generalDomain.CustomerType(input.CustomerType),
	})
	if err != nil {
		if errors.Is(err, repository.ErrCustomerAlreadyExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "customer already exists",
			})
		}

		h.logger.Error(
			"create customer failed",
			zap.Error(err),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(toCustomerResponse(customer))
}

func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid customer id",
		})
	}

	customer, err := h.service.GetCustomer(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "customer not found",
			})
		}

		h.logger.Error(
			"get customer failed",
			zap.Int64("customer_id", id),
			zap.Error(err),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
		})
	}

	return c.JSON(toCustomerResponse(customer))
}
