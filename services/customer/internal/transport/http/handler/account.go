package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	generalDomain "github.com/sakashimaa/go-banking-saga/pkg/domain"
	"github.com/sakashimaa/go-banking-saga/pkg/utils"
	"github.com/sakashimaa/go-banking-saga/services/customer/internal/repository"
	"github.com/sakashimaa/go-banking-saga/services/customer/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AccountHandler struct {
	emitter  *service.AccountRequestEmitter
	status   *service.StatusService
	logger   *zap.Logger
	validate *validator.Validate
}

func NewAccountHandler(emitter *service.AccountRequestEmitter, status *service.StatusService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		emitter:  emitter,
		status:   status,
		logger:   logger,
		validate: validator.New(),
	}
}

type createAccountRequest struct {
	AccountType    string           `json:"account_type" validate:"required,oneof=SAVING SALARY INVESTMENT"`
	InitialBalance *decimal.Decimal `json:"initial_balance"`
}

type requestStatusResponse struct {
	RequestID  string `json:"request_id"`
	AccountID  *int64 `json:"account_id,omitempty"`
	CustomerID int64  `json:"customer_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	ErrorCode  string `json:"error_code,omitempty"`
	ProducedAt string `json:"produced_at"`
}

// RequestCreation accepts the request and answers 202 with the correlation
// id; the account is provisioned asynchronously.
func (h *AccountHandler) RequestCreation(c *fiber.Ctx) error {
	customerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid customer id",
		})
	}

	input := new(createAccountRequest)
	if err := c.BodyParser(input); err != nil {
		h.logger.Warn(
			"failed to parse body in request creation",
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

	requestID, err := h.emitter.RequestAccountCreation(
		c.UserContext(),
		customerID,
		generalDomain.AccountType(input.AccountType),
		input.InitialBalance,
	)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "customer not found",
			})
		}

		if errors.Is(err, service.ErrPublishFailed) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "service temporarily unavailable",
			})
		}

		h.logger.Error(
			"request account creation failed",
			zap.Int64("customer_id", customerID),
			zap.Error(err),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"request_id": requestID,
		"status":     "PENDING",
	})
}

// GetRequestStatus resolves the outcome by scanning the response topic; 404
// means not observed yet, not a saga failure.
func (h *AccountHandler) GetRequestStatus(c *fiber.Ctx) error {
	requestID := c.Params("requestId")
	if requestID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "request id is required",
		})
	}

	outcome, err := h.status.GetRequestStatus(c.UserContext(), requestID)
	if err != nil {
		if errors.Is(err, service.ErrStatusNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "request not found or still processing",
			})
		}

		h.logger.Error(
			"get request status failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
		})
	}

	resp := requestStatusResponse{
		RequestID:  outcome.RequestID,
		AccountID:  outcome.AccountID,
		CustomerID: outcome.CustomerID,
		Status:     string(outcome.Status),
		Message:    outcome.Message,
		ProducedAt: time.UnixMilli(outcome.ProducedAt).UTC().Format(time.RFC3339),
	}
	if outcome.ErrorCode != nil {
		resp.ErrorCode = *outcome.ErrorCode
	}

	return c.JSON(resp)
}
