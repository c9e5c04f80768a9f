package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/oilcall_backend/internal/service/timeentry"
)

type TimeEntryHandler struct {
	svc timeentry.Service
}

func NewTimeEntryHandler(svc timeentry.Service) *TimeEntryHandler {
	return &TimeEntryHandler{svc: svc}
}

func mapTimeEntryError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, timeentry.ErrAlreadyCheckedIn), errors.Is(err, timeentry.ErrNotCheckedIn):
		return conflict(c, err.Error())
	case errors.Is(err, timeentry.ErrMechanicNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /mechanic/time-entry/check-in
func (h *TimeEntryHandler) CheckIn(c fiber.Ctx) error {
	entry, err := h.svc.CheckIn(c.Context(), actor(c).ID)
	if err != nil {
		return mapTimeEntryError(c, err)
	}
	return created(c, entry)
}

// POST /mechanic/time-entry/check-out
func (h *TimeEntryHandler) CheckOut(c fiber.Ctx) error {
	entry, err := h.svc.CheckOut(c.Context(), actor(c).ID)
	if err != nil {
		return mapTimeEntryError(c, err)
	}
	return ok(c, entry)
}

// GET /mechanic/time-entry/current
func (h *TimeEntryHandler) Current(c fiber.Ctx) error {
	entry, err := h.svc.Current(c.Context(), actor(c).ID)
	if err != nil {
		return mapTimeEntryError(c, err)
	}
	return ok(c, fiber.Map{"checked_in": entry != nil, "entry": entry})
}
