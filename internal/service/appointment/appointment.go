package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/service/availability"
	"github.com/Alijeyrad/oilcall_backend/internal/service/customer"
	"github.com/Alijeyrad/oilcall_backend/internal/service/notification"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
	"github.com/Alijeyrad/oilcall_backend/pkg/jobnumber"
	"github.com/Alijeyrad/oilcall_backend/pkg/observability"
	"github.com/Alijeyrad/oilcall_backend/pkg/phone"
	"github.com/Alijeyrad/oilcall_backend/pkg/timeslot"
	"github.com/Alijeyrad/oilcall_backend/pkg/validation"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type VehicleInput struct {
	Make  string `json:"make" validate:"required,max=64"`
	Model string `json:"model" validate:"required,max=64"`
	Year  int    `json:"year" validate:"omitempty,min=1900,max=2100"`
	Plate string `json:"plate" validate:"omitempty,max=16"`
}

type BookRequest struct {
	CustomerName      string       `json:"customer_name" validate:"required,max=200"`
	CustomerEmail     string       `json:"customer_email" validate:"required,email"`
	CustomerPhone     string       `json:"customer_phone" validate:"required"`
	ContactPreference string       `json:"contact_preference" validate:"omitempty,oneof=email phone sms"`
	Address           string       `json:"address" validate:"required,max=500"`
	Vehicle           VehicleInput `json:"vehicle"`
	ServiceType       string       `json:"service_type" validate:"required,max=100"`
	Notes             string       `json:"notes" validate:"max=2000"`
	Date              string       `json:"date" validate:"required,calendar_date"`
	TimeSlot          string       `json:"time_slot" validate:"required,time_slot"`
	MechanicID        *uuid.UUID   `json:"mechanic_id"`
}

type ListRequest struct {
	Status     *model.AppointmentStatus
	MechanicID *uuid.UUID
	Date       string
	From       string
	To         string
	Page       int
	PerPage    int
}

type PaymentUpdate struct {
	Status    model.PaymentStatus `json:"status" validate:"required"`
	Provider  string              `json:"provider" validate:"max=64"`
	Reference string              `json:"reference" validate:"max=255"`
}

// Assignment is an assign result. Eligible is false when a manager placed a
// technician outside their published availability.
type Assignment struct {
	Appointment *model.Appointment `json:"appointment"`
	Eligible    bool               `json:"eligible"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Book(ctx context.Context, req BookRequest) (*model.Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, req ListRequest) ([]model.Appointment, error)
	ListForMechanic(ctx context.Context, mechanicID uuid.UUID, req ListRequest) ([]model.Appointment, error)
	ListByDate(ctx context.Context, date string, status *model.AppointmentStatus) ([]model.Appointment, error)

	// Assign sets or, with a nil mechanicID, clears the technician.
	Assign(ctx context.Context, actor model.Actor, id uuid.UUID, mechanicID *uuid.UUID) (*Assignment, error)
	Start(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Appointment, error)
	Complete(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, actor model.Actor, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	RecordPayment(ctx context.Context, id uuid.UUID, req PaymentUpdate) (*model.Appointment, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Params struct {
	Store        store.Store
	Availability availability.Service
	Customers    customer.Service
	Counter      jobnumber.Counter
	Notifier     notification.Notifier
	Metrics      *observability.Metrics
	Logger       *slog.Logger
	// Region resolves customer phone numbers written without a country code.
	Region string
}

type appointmentService struct {
	st       store.Store
	avail    availability.Service
	cust     customer.Service
	counter  jobnumber.Counter
	notifier notification.Notifier
	metrics  *observability.Metrics
	logger   *slog.Logger
	region   string
	now      func() time.Time
}

func New(p Params) Service {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.Notifier == nil {
		p.Notifier = notification.Nop{}
	}
	if p.Region == "" {
		p.Region = "US"
	}
	return &appointmentService{
		st:       p.Store,
		avail:    p.Availability,
		cust:     p.Customers,
		counter:  p.Counter,
		notifier: p.Notifier,
		metrics:  p.Metrics,
		logger:   p.Logger,
		region:   p.Region,
		now:      time.Now,
	}
}

var (
	live = []model.AppointmentStatus{model.StatusScheduled, model.StatusInProgress}
)

// statusError explains why an appointment in status cannot move.
func statusError(status model.AppointmentStatus) error {
	switch status {
	case model.StatusCompleted:
		return ErrAlreadyCompleted
	case model.StatusCancelled:
		return ErrAlreadyCancelled
	}
	return ErrInvalidTransition
}

func (s *appointmentService) Book(ctx context.Context, req BookRequest) (*model.Appointment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	e164, err := phone.Normalize(req.CustomerPhone, s.region)
	if err != nil {
		return nil, validation.Field("customer_phone", "must be a valid phone number")
	}
	slot := timeslot.Normalize(req.TimeSlot)
	email := customer.NormalizeEmail(req.CustomerEmail)

	// Numbers are taken outside the transaction, so a rolled back booking
	// leaves a gap instead of a reused number.
	jobNumber, err := s.counter.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate job number: %w", err)
	}

	now := s.now()
	appt := model.Appointment{
		ID:                uuid.Must(uuid.NewV7()),
		JobNumber:         jobNumber,
		CustomerName:      strings.TrimSpace(req.CustomerName),
		CustomerEmail:     email,
		CustomerPhone:     e164,
		ContactPreference: req.ContactPreference,
		Address:           strings.TrimSpace(req.Address),
		Vehicle: model.Vehicle{
			Make:  strings.TrimSpace(req.Vehicle.Make),
			Model: strings.TrimSpace(req.Vehicle.Model),
			Year:  req.Vehicle.Year,
			Plate: strings.ToUpper(strings.TrimSpace(req.Vehicle.Plate)),
		},
		ServiceType:   strings.TrimSpace(req.ServiceType),
		Notes:         req.Notes,
		Date:          req.Date,
		TimeSlot:      slot,
		MechanicID:    req.MechanicID,
		Status:        model.StatusScheduled,
		PaymentStatus: model.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var mechanicName string
	err = s.st.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		if req.MechanicID != nil {
			if _, err := s.avail.WithStore(tx).CheckAssignment(ctx, model.CustomerActor(), req.Date, slot, *req.MechanicID, nil); err != nil {
				return err
			}
			if m, err := tx.Mechanics().Get(ctx, *req.MechanicID); err == nil {
				mechanicName = m.Name
			}
		}

		c, err := s.cust.WithStore(tx).Upsert(ctx, customer.Input{
			Email:             email,
			Name:              appt.CustomerName,
			Phone:             e164,
			ContactPreference: req.ContactPreference,
			Address:           appt.Address,
		})
		if err != nil {
			return err
		}
		appt.CustomerID = &c.ID

		if err := tx.Appointments().Create(ctx, &appt); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return &availability.SlotUnavailableError{Date: req.Date, Slot: slot}
			}
			return err
		}
		return nil
	})
	if errors.Is(err, ErrSlotUnavailable) {
		s.metrics.BookingRejected(ctx, "slot_unavailable")
		return nil, err
	}
	if err != nil {
		if validation.IsValidation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("book appointment: %w", err)
	}

	s.metrics.BookingCreated(ctx, appt.ServiceType)
	s.logger.InfoContext(ctx, "appointment booked",
		"appointment_id", appt.ID, "job_number", appt.JobNumber,
		"date", appt.Date, "time_slot", appt.TimeSlot, "mechanic_id", appt.MechanicID)
	s.notify(ctx, notification.EventAppointmentCreated, appt, mechanicName)
	return &appt, nil
}

func (s *appointmentService) notify(ctx context.Context, event notification.Event, a model.Appointment, mechanicName string) {
	if err := s.notifier.Notify(ctx, event, notification.Payload{Appointment: a, MechanicName: mechanicName}); err != nil {
		s.logger.WarnContext(ctx, "appointment: notify failed", "event", event, "appointment_id", a.ID, "err", err)
	}
}

func (s *appointmentService) mechanicName(ctx context.Context, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	m, err := s.st.Mechanics().Get(ctx, *id)
	if err != nil {
		return ""
	}
	return m.Name
}

func (s *appointmentService) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, err := s.st.Appointments().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

func (s *appointmentService) List(ctx context.Context, req ListRequest) ([]model.Appointment, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 20
	}

	verr := &validation.Error{}
	if req.Status != nil && !req.Status.Valid() {
		verr.Add("status", "must be one of: scheduled in-progress completed cancelled")
	}
	for name, v := range map[string]string{"date": req.Date, "from": req.From, "to": req.To} {
		if v != "" && !validation.ValidDate(v) {
			verr.Add(name, "must be a date in YYYY-MM-DD format")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	rows, err := s.st.Appointments().List(ctx, store.AppointmentFilter{
		Status:     req.Status,
		MechanicID: req.MechanicID,
		Date:       req.Date,
		From:       req.From,
		To:         req.To,
		Limit:      req.PerPage,
		Offset:     (req.Page - 1) * req.PerPage,
	})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return rows, nil
}

func (s *appointmentService) ListForMechanic(ctx context.Context, mechanicID uuid.UUID, req ListRequest) ([]model.Appointment, error) {
	req.MechanicID = &mechanicID
	return s.List(ctx, req)
}

func (s *appointmentService) ListByDate(ctx context.Context, date string, status *model.AppointmentStatus) ([]model.Appointment, error) {
	if !validation.ValidDate(date) {
		return nil, validation.Field("date", "must be a date in YYYY-MM-DD format")
	}
	rows, err := s.st.Appointments().List(ctx, store.AppointmentFilter{Date: date, Status: status})
	if err != nil {
		return nil, fmt.Errorf("list appointments for %s: %w", date, err)
	}
	return rows, nil
}

func (s *appointmentService) Assign(ctx context.Context, actor model.Actor, id uuid.UUID, mechanicID *uuid.UUID) (*Assignment, error) {
	if !actor.IsManager() {
		return nil, ErrForbidden
	}

	var (
		out          = &Assignment{Eligible: true}
		mechanicName string
	)
	err := s.st.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		appt, err := tx.Appointments().Get(ctx, id)
		if err != nil {
			return err
		}
		if appt.Status.Terminal() {
			return statusError(appt.Status)
		}

		if mechanicID != nil {
			m, err := tx.Mechanics().Get(ctx, *mechanicID)
			if errors.Is(err, store.ErrNotFound) {
				return ErrMechanicNotFound
			}
			if err != nil {
				return err
			}
			mechanicName = m.Name

			d, err := s.avail.WithStore(tx).CheckAssignment(ctx, actor, appt.Date, appt.TimeSlot, *mechanicID, &appt.ID)
			if err != nil {
				return err
			}
			out.Eligible = d.Eligible
		}

		updated, err := tx.Appointments().Assign(ctx, id, mechanicID, live)
		if errors.Is(err, store.ErrConflict) {
			return &availability.SlotUnavailableError{Date: appt.Date, Slot: appt.TimeSlot}
		}
		if err != nil {
			return err
		}
		out.Appointment = updated
		return nil
	})
	if err != nil {
		return nil, s.lifecycleError(ctx, "assign appointment", id, err)
	}

	s.logger.InfoContext(ctx, "appointment assigned",
		"appointment_id", id, "mechanic_id", mechanicID, "eligible", out.Eligible, "manager_id", actor.ID)
	s.notify(ctx, notification.EventAppointmentAssigned, *out.Appointment, mechanicName)
	return out, nil
}

// lifecycleError maps store errors from a status change to service errors.
// A stale compare-and-set is resolved by re-reading the current status.
func (s *appointmentService) lifecycleError(ctx context.Context, op string, id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrStaleStatus):
		current, gerr := s.Get(ctx, id)
		if gerr != nil {
			return gerr
		}
		return statusError(current.Status)
	case errors.Is(err, ErrAlreadyCompleted), errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrForbidden),
		errors.Is(err, ErrMechanicNotFound), errors.Is(err, ErrSlotUnavailable),
		validation.IsValidation(err):
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

// authorizeWork allows managers and the technician assigned to a.
func authorizeWork(actor model.Actor, a *model.Appointment) error {
	if actor.IsManager() {
		return nil
	}
	if actor.Role == model.RoleMechanic && a.AssignedTo(actor.ID) {
		return nil
	}
	return ErrForbidden
}

func (s *appointmentService) Start(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeWork(actor, appt); err != nil {
		return nil, err
	}
	if appt.Status != model.StatusScheduled {
		return nil, statusError(appt.Status)
	}

	updated, err := s.st.Appointments().TransitionStatus(ctx, id,
		[]model.AppointmentStatus{model.StatusScheduled}, model.StatusInProgress, s.now())
	if err != nil {
		return nil, s.lifecycleError(ctx, "start appointment", id, err)
	}
	s.metrics.Transition(ctx, string(model.StatusInProgress))
	return updated, nil
}

func (s *appointmentService) Complete(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeWork(actor, appt); err != nil {
		return nil, err
	}
	if appt.Status.Terminal() {
		return nil, statusError(appt.Status)
	}

	var updated *model.Appointment
	err = s.st.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		a, err := tx.Appointments().TransitionStatus(ctx, id, live, model.StatusCompleted, s.now())
		if err != nil {
			return err
		}
		if a.MechanicID != nil && a.IsOilChange() {
			if err := tx.Mechanics().IncrementOilChanges(ctx, *a.MechanicID); err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, s.lifecycleError(ctx, "complete appointment", id, err)
	}

	s.metrics.Transition(ctx, string(model.StatusCompleted))
	s.logger.InfoContext(ctx, "job completed", "appointment_id", id, "job_number", updated.JobNumber, "mechanic_id", updated.MechanicID)
	s.notify(ctx, notification.EventJobCompleted, *updated, s.mechanicName(ctx, updated.MechanicID))
	return updated, nil
}

func (s *appointmentService) UpdateStatus(ctx context.Context, actor model.Actor, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	switch status {
	case model.StatusInProgress:
		appt, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if appt.Status == model.StatusInProgress {
			return appt, authorizeWork(actor, appt)
		}
		return s.Start(ctx, actor, id)
	case model.StatusCompleted:
		return s.Complete(ctx, actor, id)
	case model.StatusScheduled:
		appt, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := authorizeWork(actor, appt); err != nil {
			return nil, err
		}
		if appt.Status != model.StatusScheduled {
			return nil, statusError(appt.Status)
		}
		return appt, nil
	}
	return nil, validation.Field("status", "must be one of: scheduled in-progress completed")
}

func (s *appointmentService) Cancel(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	updated, err := s.st.Appointments().TransitionStatus(ctx, id, live, model.StatusCancelled, s.now())
	if err != nil {
		return nil, s.lifecycleError(ctx, "cancel appointment", id, err)
	}

	s.metrics.Transition(ctx, string(model.StatusCancelled))
	s.logger.InfoContext(ctx, "appointment cancelled", "appointment_id", id, "job_number", updated.JobNumber)
	s.notify(ctx, notification.EventAppointmentCancelled, *updated, s.mechanicName(ctx, updated.MechanicID))
	return updated, nil
}

func (s *appointmentService) RecordPayment(ctx context.Context, id uuid.UUID, req PaymentUpdate) (*model.Appointment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if !req.Status.Valid() {
		return nil, validation.Field("status", "must be one of: pending paid refunded failed")
	}
	updated, err := s.st.Appointments().UpdatePayment(ctx, id, req.Status, strings.TrimSpace(req.Provider), strings.TrimSpace(req.Reference))
	if err != nil {
		return nil, s.lifecycleError(ctx, "record payment", id, err)
	}
	return updated, nil
}
