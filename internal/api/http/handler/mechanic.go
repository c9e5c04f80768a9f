package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/oilcall_backend/internal/service/mechanic"
	"github.com/Alijeyrad/oilcall_backend/internal/service/schedule"
	"github.com/Alijeyrad/oilcall_backend/internal/service/timeentry"
)

type MechanicHandler struct {
	svc       mechanic.Service
	schedules schedule.Service
	entries   timeentry.Service
}

func NewMechanicHandler(svc mechanic.Service, schedules schedule.Service, entries timeentry.Service) *MechanicHandler {
	return &MechanicHandler{svc: svc, schedules: schedules, entries: entries}
}

func mapMechanicError(c fiber.Ctx, err error) error {
	if handled, resp := validationFailed(c, err); handled {
		return resp
	}
	switch {
	case errors.Is(err, mechanic.ErrNotFound),
		errors.Is(err, schedule.ErrMechanicNotFound),
		errors.Is(err, timeentry.ErrMechanicNotFound):
		return notFound(c, "mechanic not found")
	case errors.Is(err, mechanic.ErrEmailTaken):
		return conflict(c, err.Error())
	case errors.Is(err, mechanic.ErrPhotoTooLarge):
		return tooLarge(c, err.Error())
	case errors.Is(err, mechanic.ErrPhotoStorage):
		return unavailable(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /mechanics/public
func (h *MechanicHandler) PublicList(c fiber.Ctx) error {
	mechanics, err := h.svc.ListPublic(c.Context())
	if err != nil {
		return mapMechanicError(c, err)
	}
	return ok(c, mechanics)
}

// GET /mechanics
func (h *MechanicHandler) List(c fiber.Ctx) error {
	mechanics, err := h.svc.List(c.Context())
	if err != nil {
		return mapMechanicError(c, err)
	}
	return ok(c, mechanics)
}

// GET /mechanics/:id
func (h *MechanicHandler) GetByID(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid mechanic id")
	}

	m, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return mapMechanicError(c, err)
	}
	return ok(c, m)
}

// POST /mechanics
func (h *MechanicHandler) Create(c fiber.Ctx) error {
	var body mechanic.CreateRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	m, err := h.svc.Create(c.Context(), body)
	if err != nil {
		return mapMechanicError(c, err)
	}
	return created(c, m)
}

// PATCH /mechanics/:id
func (h *MechanicHandler) Update(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid mechanic id")
	}
	var body mechanic.UpdateRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	m, err := h.svc.Update(c.Context(), id, body)
	if err != nil {
		return mapMechanicError(c, err)
	}
	return ok(c, m)
}

// DELETE /mechanics/:id
func (h *MechanicHandler) Delete(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid mechanic id")
	}

	if err := h.svc.Delete(c.Context(), id); err != nil {
		return mapMechanicError(c, err)
	}
	return noContent(c)
}

// POST /mechanics/:id/photo  (multipart field "photo")
func (h *MechanicHandler) UploadPhoto(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid mechanic id")
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		return badRequest(c, "photo file is required")
	}
	if fh.Size > mechanic.MaxPhotoSize {
		return tooLarge(c, mechanic.ErrPhotoTooLarge.Error())
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "could not read photo")
	}
	defer f.Close()

	m, err := h.svc.UploadPhoto(c.Context(), id, mechanic.Photo{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return mapMechanicError(c, err)
	}
	return ok(c, m)
}

// GET /mechanics/:id/schedule
func (h *MechanicHandler) Schedule(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid mechanic id")
	}

	recurring, err := h.schedules.ListRecurring(c.Context(), id)
	if err != nil {
		return mapMechanicError(c, err)
	}
	overrides, err := h.schedules.ListOverrides(c.Context(), id, c.Query("from"), c.Query("to"))
	if err != nil {
		return mapMechanicError(c, err)
	}
	return ok(c, fiber.Map{"recurring": recurring, "overrides": overrides})
}

// GET /mechanics/:id/time-entries?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *MechanicHandler) TimeEntries(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid mechanic id")
	}

	report, err := h.entries.List(c.Context(), id, c.Query("from"), c.Query("to"))
	if err != nil {
		return mapMechanicError(c, err)
	}
	return ok(c, report)
}
