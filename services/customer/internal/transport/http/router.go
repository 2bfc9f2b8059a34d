package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/go-banking-saga/services/customer/internal/transport/http/handler"
)

type Handlers struct {
	Customer *handler.CustomerHandler
	Account  *handler.AccountHandler
}

func RegisterRoutes(app *fiber.App, h *Handlers) {
	customers := app.Group("/customers")

	customers.Post("", h.Customer.Create)
	customers.Get("/:id", h.Customer.GetByID)
	customers.Post("/:id/accounts", h.Account.RequestCreation)

	app.Get("/account-requests/:requestId", h.Account.GetRequestStatus)
}
