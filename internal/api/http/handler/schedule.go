package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/oilcall_backend/internal/service/schedule"
)

// ScheduleHandler serves the signed-in technician's own schedule.
type ScheduleHandler struct {
	svc schedule.Service
}

func NewScheduleHandler(svc schedule.Service) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

func mapScheduleError(c fiber.Ctx, err error) error {
	if handled, resp := validationFailed(c, err); handled {
		return resp
	}
	switch {
	case errors.Is(err, schedule.ErrMechanicNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, schedule.ErrOverrideNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /mechanic/schedule
func (h *ScheduleHandler) ListRecurring(c fiber.Ctx) error {
	entries, err := h.svc.ListRecurring(c.Context(), actor(c).ID)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, entries)
}

// PUT /mechanic/schedule
func (h *ScheduleHandler) ReplaceRecurring(c fiber.Ctx) error {
	var body struct {
		Entries []schedule.RecurringInput `json:"entries"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	entries, err := h.svc.ReplaceRecurring(c.Context(), actor(c).ID, body.Entries)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, entries)
}

// GET /mechanic/availability?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ScheduleHandler) ListOverrides(c fiber.Ctx) error {
	overrides, err := h.svc.ListOverrides(c.Context(), actor(c).ID, c.Query("from"), c.Query("to"))
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, overrides)
}

// POST /mechanic/availability/batch
func (h *ScheduleHandler) UpsertOverrides(c fiber.Ctx) error {
	var body struct {
		Entries []schedule.OverrideInput `json:"entries"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	overrides, err := h.svc.UpsertOverrides(c.Context(), actor(c).ID, body.Entries)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, overrides)
}

// DELETE /mechanic/availability?date=YYYY-MM-DD&time_slot=08:00%20AM
func (h *ScheduleHandler) DeleteOverride(c fiber.Ctx) error {
	date, slot := c.Query("date"), c.Query("time_slot")
	if date == "" || slot == "" {
		return badRequest(c, "date and time_slot are required")
	}

	if err := h.svc.DeleteOverride(c.Context(), actor(c).ID, date, slot); err != nil {
		return mapScheduleError(c, err)
	}
	return noContent(c)
}
