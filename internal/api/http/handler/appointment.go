package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/service/appointment"
)

type AppointmentHandler struct {
	svc appointment.Service
}

func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

func mapAppointmentError(c fiber.Ctx, err error) error {
	if handled, resp := validationFailed(c, err); handled {
		return resp
	}
	switch {
	case errors.Is(err, appointment.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, appointment.ErrMechanicNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, appointment.ErrForbidden):
		return forbidden(c)
	case errors.Is(err, appointment.ErrSlotUnavailable),
		errors.Is(err, appointment.ErrAlreadyCompleted),
		errors.Is(err, appointment.ErrAlreadyCancelled),
		errors.Is(err, appointment.ErrInvalidTransition):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}

// publicView is the confirmation shown to customers without a login.
type publicView struct {
	ID          uuid.UUID               `json:"id"`
	JobNumber   int64                   `json:"job_number"`
	Date        string                  `json:"date"`
	TimeSlot    string                  `json:"time_slot"`
	ServiceType string                  `json:"service_type"`
	Status      model.AppointmentStatus `json:"status"`
	Assigned    bool                    `json:"technician_assigned"`
}

func toPublicView(a *model.Appointment) publicView {
	return publicView{
		ID:          a.ID,
		JobNumber:   a.JobNumber,
		Date:        a.Date,
		TimeSlot:    a.TimeSlot,
		ServiceType: a.ServiceType,
		Status:      a.Status,
		Assigned:    a.MechanicID != nil,
	}
}

type listQuery struct {
	Status     string `query:"status"`
	MechanicID string `query:"mechanic_id"`
	Date       string `query:"date"`
	From       string `query:"from"`
	To         string `query:"to"`
	Page       int    `query:"page"`
	PerPage    int    `query:"per_page"`
}

func (q listQuery) request() (appointment.ListRequest, error) {
	req := appointment.ListRequest{Date: q.Date, From: q.From, To: q.To, Page: q.Page, PerPage: q.PerPage}
	if q.Status != "" {
		s := model.AppointmentStatus(q.Status)
		req.Status = &s
	}
	if q.MechanicID != "" {
		id, err := uuid.Parse(q.MechanicID)
		if err != nil {
			return req, err
		}
		req.MechanicID = &id
	}
	return req, nil
}

// POST /appointments
func (h *AppointmentHandler) Book(c fiber.Ctx) error {
	var body appointment.BookRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	appt, err := h.svc.Book(c.Context(), body)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return created(c, appt)
}

// POST /appointments/:id/cancel
func (h *AppointmentHandler) Cancel(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	appt, err := h.svc.Cancel(c.Context(), id)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, toPublicView(appt))
}

// GET /appointments/:id/public
func (h *AppointmentHandler) PublicView(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	appt, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, toPublicView(appt))
}

// GET /appointments
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	var q listQuery
	_ = c.Bind().Query(&q)

	req, err := q.request()
	if err != nil {
		return badRequest(c, "invalid mechanic_id")
	}
	appts, err := h.svc.List(c.Context(), req)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, appts)
}

// GET /appointments/:id
func (h *AppointmentHandler) GetByID(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	appt, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, appt)
}

// PATCH /appointments/:id/status
func (h *AppointmentHandler) UpdateStatus(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}
	var body struct {
		Status model.AppointmentStatus `json:"status"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	var appt *model.Appointment
	if body.Status == model.StatusCancelled {
		appt, err = h.svc.Cancel(c.Context(), id)
	} else {
		appt, err = h.svc.UpdateStatus(c.Context(), actor(c), id, body.Status)
	}
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, appt)
}

// PATCH /appointments/:id/assign
func (h *AppointmentHandler) Assign(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}
	var body struct {
		MechanicID *uuid.UUID `json:"mechanic_id"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.svc.Assign(c.Context(), actor(c), id, body.MechanicID)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, res)
}

// PATCH /appointments/:id/payment
func (h *AppointmentHandler) RecordPayment(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}
	var body appointment.PaymentUpdate
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	appt, err := h.svc.RecordPayment(c.Context(), id, body)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, appt)
}

// GET /mechanic/appointments
func (h *AppointmentHandler) ListMine(c fiber.Ctx) error {
	me := actor(c)
	var q listQuery
	_ = c.Bind().Query(&q)
	q.MechanicID = ""

	req, _ := q.request()
	appts, err := h.svc.ListForMechanic(c.Context(), me.ID, req)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, appts)
}

// PATCH /mechanic/appointments/:id/start
func (h *AppointmentHandler) Start(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	appt, err := h.svc.Start(c.Context(), actor(c), id)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, appt)
}

// PATCH /mechanic/appointments/:id/complete
func (h *AppointmentHandler) Complete(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	appt, err := h.svc.Complete(c.Context(), actor(c), id)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, appt)
}
