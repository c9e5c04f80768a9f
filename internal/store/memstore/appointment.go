package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
)

type appointmentRepo struct{ s *Store }

// liveConflict mirrors the partial unique index on
// (mechanic_id, date, time_slot) WHERE status <> 'cancelled'.
func liveConflict(st *state, a model.Appointment) bool {
	if a.MechanicID == nil || a.Status == model.StatusCancelled {
		return false
	}
	for id, other := range st.appointments {
		if id == a.ID || other.Status == model.StatusCancelled {
			continue
		}
		if other.AssignedTo(*a.MechanicID) && other.Date == a.Date && other.TimeSlot == a.TimeSlot {
			return true
		}
	}
	return false
}

func (r appointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.appointments[a.ID]; ok {
			return store.ErrConflict
		}
		for _, other := range st.appointments {
			if other.JobNumber == a.JobNumber {
				return store.ErrConflict
			}
		}
		if a.MechanicID != nil {
			if _, ok := st.mechanics[*a.MechanicID]; !ok {
				return store.ErrNotFound
			}
		}
		if liveConflict(st, *a) {
			return store.ErrConflict
		}
		st.appointments[a.ID] = *a
		return nil
	})
}

func (r appointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var out *model.Appointment
	err := r.s.do(func(st *state) error {
		a, ok := st.appointments[id]
		if !ok {
			return store.ErrNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r appointmentRepo) List(ctx context.Context, f store.AppointmentFilter) ([]model.Appointment, error) {
	var out []model.Appointment
	err := r.s.do(func(st *state) error {
		for _, a := range st.appointments {
			if f.Status != nil && a.Status != *f.Status {
				continue
			}
			if f.MechanicID != nil && !a.AssignedTo(*f.MechanicID) {
				continue
			}
			if f.Date != "" && a.Date != f.Date {
				continue
			}
			if f.From != "" && a.Date < f.From {
				continue
			}
			if f.To != "" && a.Date > f.To {
				continue
			}
			out = append(out, a)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].JobNumber < out[j].JobNumber
	})
	return page(out, f.Limit, f.Offset), err
}

func (r appointmentRepo) HasLiveBooking(ctx context.Context, mechanicID uuid.UUID, date, slot string, exclude *uuid.UUID) (bool, error) {
	var found bool
	err := r.s.do(func(st *state) error {
		for id, a := range st.appointments {
			if exclude != nil && id == *exclude {
				continue
			}
			if a.Status != model.StatusCancelled && a.AssignedTo(mechanicID) && a.Date == date && a.TimeSlot == slot {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r appointmentRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from []model.AppointmentStatus, to model.AppointmentStatus, at time.Time) (*model.Appointment, error) {
	var out *model.Appointment
	err := r.s.do(func(st *state) error {
		a, ok := st.appointments[id]
		if !ok {
			return store.ErrNotFound
		}
		if !contains(from, a.Status) {
			return store.ErrStaleStatus
		}
		a.Status = to
		a.UpdatedAt = at
		switch to {
		case model.StatusCompleted:
			a.CompletedAt = ptr(at)
		case model.StatusCancelled:
			a.CancelledAt = ptr(at)
		}
		if liveConflict(st, a) {
			return store.ErrConflict
		}
		st.appointments[id] = a
		out = &a
		return nil
	})
	return out, err
}

func (r appointmentRepo) Assign(ctx context.Context, id uuid.UUID, mechanicID *uuid.UUID, from []model.AppointmentStatus) (*model.Appointment, error) {
	var out *model.Appointment
	err := r.s.do(func(st *state) error {
		a, ok := st.appointments[id]
		if !ok {
			return store.ErrNotFound
		}
		if !contains(from, a.Status) {
			return store.ErrStaleStatus
		}
		if mechanicID != nil {
			if _, ok := st.mechanics[*mechanicID]; !ok {
				return store.ErrNotFound
			}
			a.MechanicID = ptr(*mechanicID)
		} else {
			a.MechanicID = nil
		}
		if liveConflict(st, a) {
			return store.ErrConflict
		}
		a.UpdatedAt = time.Now()
		st.appointments[id] = a
		out = &a
		return nil
	})
	return out, err
}

func (r appointmentRepo) UpdatePayment(ctx context.Context, id uuid.UUID, status model.PaymentStatus, provider, reference string) (*model.Appointment, error) {
	var out *model.Appointment
	err := r.s.do(func(st *state) error {
		a, ok := st.appointments[id]
		if !ok {
			return store.ErrNotFound
		}
		a.PaymentStatus = status
		if provider != "" {
			a.PaymentProvider = provider
		}
		if reference != "" {
			a.PaymentReference = reference
		}
		a.UpdatedAt = time.Now()
		st.appointments[id] = a
		out = &a
		return nil
	})
	return out, err
}
