// Package store declares the persistence boundary. sqlstore implements it on
// PostgreSQL and memstore in process memory.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrConflict      = errors.New("unique constraint violated")
	ErrSchemaMissing = errors.New("database schema is missing")
	// ErrStaleStatus is returned by compare-and-set updates when the row's
	// status no longer matches what the caller expected.
	ErrStaleStatus = errors.New("record status changed concurrently")
)

type Store interface {
	Mechanics() MechanicRepo
	Managers() ManagerRepo
	Schedules() ScheduleRepo
	Appointments() AppointmentRepo
	TimeEntries() TimeEntryRepo
	Customers() CustomerRepo

	// InTx runs fn against a Store bound to a single transaction. A non-nil
	// error from fn rolls the transaction back. Nested calls reuse the outer
	// transaction.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	Ping(ctx context.Context) error
	Close() error
}

type MechanicFilter struct {
	PublicOnly bool
}

type MechanicRepo interface {
	Create(ctx context.Context, m *model.Mechanic) error
	Update(ctx context.Context, m *model.Mechanic) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.Mechanic, error)
	GetByEmail(ctx context.Context, email string) (*model.Mechanic, error)
	List(ctx context.Context, f MechanicFilter) ([]model.Mechanic, error)
	// Lock takes a row lock on the mechanic for the rest of the transaction.
	Lock(ctx context.Context, id uuid.UUID) error
	IncrementOilChanges(ctx context.Context, id uuid.UUID) error
}

type ManagerRepo interface {
	Create(ctx context.Context, m *model.Manager) error
	Get(ctx context.Context, id uuid.UUID) (*model.Manager, error)
	GetByEmail(ctx context.Context, email string) (*model.Manager, error)
}

type ScheduleRepo interface {
	ListRecurring(ctx context.Context, mechanicID uuid.UUID) ([]model.RecurringEntry, error)
	DeleteRecurring(ctx context.Context, mechanicID uuid.UUID) error
	InsertRecurring(ctx context.Context, entries []model.RecurringEntry) error

	UpsertOverride(ctx context.Context, o *model.OverrideEntry) error
	// ListOverrides returns overrides with from <= date <= to; empty bounds are open.
	ListOverrides(ctx context.Context, mechanicID uuid.UUID, from, to string) ([]model.OverrideEntry, error)
	DeleteOverride(ctx context.Context, mechanicID uuid.UUID, date, slot string) error

	// AvailableRecurring returns every is_available row for a weekday. Slots
	// come back as stored; callers normalize.
	AvailableRecurring(ctx context.Context, dayOfWeek int) ([]model.SlotMechanic, error)
	// AvailableOverrides returns every is_available row for a date.
	AvailableOverrides(ctx context.Context, date string) ([]model.SlotMechanic, error)
}

type AppointmentFilter struct {
	Status     *model.AppointmentStatus
	MechanicID *uuid.UUID
	// Date matches exactly; From and To bound the date range inclusively.
	Date   string
	From   string
	To     string
	Limit  int
	Offset int
}

type AppointmentRepo interface {
	// Create fails with ErrConflict when the mechanic already holds a live
	// appointment in the same date and slot, or the job number is taken.
	Create(ctx context.Context, a *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, f AppointmentFilter) ([]model.Appointment, error)
	// HasLiveBooking reports whether the mechanic holds a non-cancelled
	// appointment for date and slot, ignoring exclude when set.
	HasLiveBooking(ctx context.Context, mechanicID uuid.UUID, date, slot string, exclude *uuid.UUID) (bool, error)
	// TransitionStatus moves the appointment to `to` only if its current
	// status is one of from, returning ErrStaleStatus otherwise.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []model.AppointmentStatus, to model.AppointmentStatus, at time.Time) (*model.Appointment, error)
	// Assign sets the mechanic only while the status is one of from.
	Assign(ctx context.Context, id uuid.UUID, mechanicID *uuid.UUID, from []model.AppointmentStatus) (*model.Appointment, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, status model.PaymentStatus, provider, reference string) (*model.Appointment, error)
}

type TimeEntryRepo interface {
	// Open returns the mechanic's entry without a check-out, or ErrNotFound.
	Open(ctx context.Context, mechanicID uuid.UUID) (*model.TimeEntry, error)
	// Create fails with ErrConflict when the mechanic already has an open entry.
	Create(ctx context.Context, e *model.TimeEntry) error
	// Close sets check_out_time on an open entry; ErrNotFound if it is already closed.
	Close(ctx context.Context, id uuid.UUID, at time.Time) (*model.TimeEntry, error)
	List(ctx context.Context, mechanicID uuid.UUID, from, to time.Time) ([]model.TimeEntry, error)
}

type CustomerRepo interface {
	// Upsert inserts c, or merges its non-empty fields into the customer
	// already stored under the same email, and returns the stored row. It is
	// one atomic step: two first bookings under one email both succeed and
	// end up on the same customer.
	Upsert(ctx context.Context, c *model.Customer) (*model.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, limit, offset int) ([]model.Customer, error)
}
