package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/oilcall_backend/internal/service/customer"
)

type CustomerHandler struct {
	svc customer.Service
}

func NewCustomerHandler(svc customer.Service) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

// GET /customers
func (h *CustomerHandler) List(c fiber.Ctx) error {
	var q struct {
		Page    int `query:"page"`
		PerPage int `query:"per_page"`
	}
	_ = c.Bind().Query(&q)

	customers, err := h.svc.List(c.Context(), q.Page, q.PerPage)
	if err != nil {
		return internalError(c)
	}
	return ok(c, customers)
}

// GET /customers/:id
func (h *CustomerHandler) GetByID(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid customer id")
	}

	cust, err := h.svc.Get(c.Context(), id)
	if errors.Is(err, customer.ErrNotFound) {
		return notFound(c, err.Error())
	}
	if err != nil {
		return internalError(c)
	}
	return ok(c, cust)
}
