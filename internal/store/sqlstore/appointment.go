package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
)

var appointmentColumns = []string{
	"id", "job_number", "customer_id", "customer_name", "customer_email", "customer_phone",
	"contact_preference", "address", "vehicle_make", "vehicle_model", "vehicle_year", "vehicle_plate",
	"service_type", "notes", "date", "time_slot", "mechanic_id", "status", "payment_status",
	"payment_provider", "payment_reference", "created_at", "updated_at", "completed_at", "cancelled_at",
}

func scanAppointment(rows *entsql.Rows) (model.Appointment, error) {
	var (
		a                      model.Appointment
		customerID, mechanicID uuid.NullUUID
		completed, cancelled   sql.NullTime
		status, payment        string
	)
	err := rows.Scan(
		&a.ID, &a.JobNumber, &customerID, &a.CustomerName, &a.CustomerEmail, &a.CustomerPhone,
		&a.ContactPreference, &a.Address, &a.Vehicle.Make, &a.Vehicle.Model, &a.Vehicle.Year, &a.Vehicle.Plate,
		&a.ServiceType, &a.Notes, &a.Date, &a.TimeSlot, &mechanicID, &status, &payment,
		&a.PaymentProvider, &a.PaymentReference, &a.CreatedAt, &a.UpdatedAt, &completed, &cancelled,
	)
	if err != nil {
		return a, fmt.Errorf("scan appointment: %w", err)
	}
	a.CustomerID = uuidPtr(customerID)
	a.MechanicID = uuidPtr(mechanicID)
	a.Status = model.AppointmentStatus(status)
	a.PaymentStatus = model.PaymentStatus(payment)
	a.CompletedAt = timePtr(completed)
	a.CancelledAt = timePtr(cancelled)
	return a, nil
}

type appointmentRepo struct{ s *Store }

func (r appointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	q := pg().Insert(AppointmentsTable.Name).
		Columns(appointmentColumns...).
		Values(
			a.ID, a.JobNumber, nullable(a.CustomerID), a.CustomerName, a.CustomerEmail, a.CustomerPhone,
			a.ContactPreference, a.Address, a.Vehicle.Make, a.Vehicle.Model, a.Vehicle.Year, a.Vehicle.Plate,
			a.ServiceType, a.Notes, a.Date, a.TimeSlot, nullable(a.MechanicID), string(a.Status), string(a.PaymentStatus),
			a.PaymentProvider, a.PaymentReference, a.CreatedAt, a.UpdatedAt, nullable(a.CompletedAt), nullable(a.CancelledAt),
		)
	if _, err := r.s.exec(ctx, q); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r appointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	q := pg().Select(appointmentColumns...).From(pg().Table(AppointmentsTable.Name)).Where(entsql.EQ("id", id))
	return queryOne(ctx, r.s, q, scanAppointment)
}

func (r appointmentRepo) List(ctx context.Context, f store.AppointmentFilter) ([]model.Appointment, error) {
	var preds []*entsql.Predicate
	if f.Status != nil {
		preds = append(preds, entsql.EQ("status", string(*f.Status)))
	}
	if f.MechanicID != nil {
		preds = append(preds, entsql.EQ("mechanic_id", *f.MechanicID))
	}
	if f.Date != "" {
		preds = append(preds, entsql.EQ("date", f.Date))
	}
	if f.From != "" {
		preds = append(preds, entsql.GTE("date", f.From))
	}
	if f.To != "" {
		preds = append(preds, entsql.LTE("date", f.To))
	}

	q := pg().Select(appointmentColumns...).
		From(pg().Table(AppointmentsTable.Name)).
		OrderBy("date", "job_number")
	if len(preds) > 0 {
		q.Where(entsql.And(preds...))
	}
	if f.Limit > 0 {
		q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q.Offset(f.Offset)
	}
	return queryAll(ctx, r.s, q, scanAppointment)
}

func (r appointmentRepo) HasLiveBooking(ctx context.Context, mechanicID uuid.UUID, date, slot string, exclude *uuid.UUID) (bool, error) {
	preds := []*entsql.Predicate{
		entsql.EQ("mechanic_id", mechanicID),
		entsql.EQ("date", date),
		entsql.EQ("time_slot", slot),
		entsql.NEQ("status", string(model.StatusCancelled)),
	}
	if exclude != nil {
		preds = append(preds, entsql.NEQ("id", *exclude))
	}
	q := pg().Select("id").From(pg().Table(AppointmentsTable.Name)).Where(entsql.And(preds...)).Limit(1)

	found := false
	err := r.s.query(ctx, q, func(rows *entsql.Rows) error {
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("check live booking: %w", err)
	}
	return found, nil
}

// casUpdate applies u only while the row's status is one of from, telling a
// missing row apart from a stale status.
func (r appointmentRepo) casUpdate(ctx context.Context, id uuid.UUID, from []model.AppointmentStatus, u *entsql.UpdateBuilder) (*model.Appointment, error) {
	u.Where(entsql.And(entsql.EQ("id", id), entsql.In("status", statusArgs(from)...)))
	err := r.s.execOne(ctx, u)
	if errors.Is(err, store.ErrNotFound) {
		if _, gerr := r.Get(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, store.ErrStaleStatus
	}
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r appointmentRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from []model.AppointmentStatus, to model.AppointmentStatus, at time.Time) (*model.Appointment, error) {
	u := pg().Update(AppointmentsTable.Name).
		Set("status", string(to)).
		Set("updated_at", at)
	switch to {
	case model.StatusCompleted:
		u.Set("completed_at", at)
	case model.StatusCancelled:
		u.Set("cancelled_at", at)
	}
	return r.casUpdate(ctx, id, from, u)
}

func (r appointmentRepo) Assign(ctx context.Context, id uuid.UUID, mechanicID *uuid.UUID, from []model.AppointmentStatus) (*model.Appointment, error) {
	u := pg().Update(AppointmentsTable.Name).
		Set("mechanic_id", nullable(mechanicID)).
		Set("updated_at", time.Now())
	return r.casUpdate(ctx, id, from, u)
}

func (r appointmentRepo) UpdatePayment(ctx context.Context, id uuid.UUID, status model.PaymentStatus, provider, reference string) (*model.Appointment, error) {
	u := pg().Update(AppointmentsTable.Name).
		Set("payment_status", string(status)).
		Set("updated_at", time.Now()).
		Where(entsql.EQ("id", id))
	if provider != "" {
		u.Set("payment_provider", provider)
	}
	if reference != "" {
		u.Set("payment_reference", reference)
	}
	if err := r.s.execOne(ctx, u); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}
