// Package memstore is an in-process store.Store. It enforces the same unique
// constraints as the PostgreSQL schema and serializes transactions behind a
// single mutex, restoring a snapshot on rollback.
package memstore

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
)

type state struct {
	mechanics    map[uuid.UUID]model.Mechanic
	managers     map[uuid.UUID]model.Manager
	recurring    map[uuid.UUID]model.RecurringEntry
	overrides    map[uuid.UUID]model.OverrideEntry
	appointments map[uuid.UUID]model.Appointment
	timeEntries  map[uuid.UUID]model.TimeEntry
	customers    map[uuid.UUID]model.Customer
}

func newState() *state {
	return &state{
		mechanics:    map[uuid.UUID]model.Mechanic{},
		managers:     map[uuid.UUID]model.Manager{},
		recurring:    map[uuid.UUID]model.RecurringEntry{},
		overrides:    map[uuid.UUID]model.OverrideEntry{},
		appointments: map[uuid.UUID]model.Appointment{},
		timeEntries:  map[uuid.UUID]model.TimeEntry{},
		customers:    map[uuid.UUID]model.Customer{},
	}
}

// clone copies every table. Rows are values, so a shallow map copy suffices
// as long as writers replace rows instead of mutating through pointers.
func (s *state) clone() *state {
	return &state{
		mechanics:    maps.Clone(s.mechanics),
		managers:     maps.Clone(s.managers),
		recurring:    maps.Clone(s.recurring),
		overrides:    maps.Clone(s.overrides),
		appointments: maps.Clone(s.appointments),
		timeEntries:  maps.Clone(s.timeEntries),
		customers:    maps.Clone(s.customers),
	}
}

type db struct {
	mu sync.Mutex
	st *state
}

type Store struct {
	db *db
	// locked is true for the Store handed to an InTx callback; the mutex is
	// already held by the enclosing transaction.
	locked bool
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{db: &db{st: newState()}}
}

// do runs fn with exclusive access to the current state.
func (s *Store) do(fn func(st *state) error) error {
	if !s.locked {
		s.db.mu.Lock()
		defer s.db.mu.Unlock()
	}
	return fn(s.db.st)
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if s.locked {
		return fn(ctx, s)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	snapshot := s.db.st.clone()
	if err := fn(ctx, &Store{db: s.db, locked: true}); err != nil {
		s.db.st = snapshot
		return err
	}
	if err := ctx.Err(); err != nil {
		s.db.st = snapshot
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

func (s *Store) Mechanics() store.MechanicRepo       { return mechanicRepo{s} }
func (s *Store) Managers() store.ManagerRepo         { return managerRepo{s} }
func (s *Store) Schedules() store.ScheduleRepo       { return scheduleRepo{s} }
func (s *Store) Appointments() store.AppointmentRepo { return appointmentRepo{s} }
func (s *Store) TimeEntries() store.TimeEntryRepo    { return timeEntryRepo{s} }
func (s *Store) Customers() store.CustomerRepo       { return customerRepo{s} }

func page[T any](rows []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(rows) {
			return []T{}
		}
		rows = rows[offset:]
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T { return &v }
