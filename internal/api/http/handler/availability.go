package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/oilcall_backend/internal/service/availability"
)

type AvailabilityHandler struct {
	svc availability.Service
}

func NewAvailabilityHandler(svc availability.Service) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

func mapAvailabilityError(c fiber.Ctx, err error) error {
	if handled, resp := validationFailed(c, err); handled {
		return resp
	}
	return internalError(c)
}

// GET /availability/:date
func (h *AvailabilityHandler) Slots(c fiber.Ctx) error {
	slots, err := h.svc.Resolve(c.Context(), c.Params("date"))
	if err != nil {
		return mapAvailabilityError(c, err)
	}
	return ok(c, slots)
}

// GET /availability/:date/:timeSlot/mechanics
func (h *AvailabilityHandler) Mechanics(c fiber.Ctx) error {
	mechanics, err := h.svc.MechanicsForSlot(c.Context(), c.Params("date"), pathParam(c, "timeSlot"))
	if err != nil {
		return mapAvailabilityError(c, err)
	}
	return ok(c, mechanics)
}
