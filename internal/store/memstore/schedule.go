package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
)

type scheduleRepo struct{ s *Store }

func (r scheduleRepo) ListRecurring(ctx context.Context, mechanicID uuid.UUID) ([]model.RecurringEntry, error) {
	var out []model.RecurringEntry
	err := r.s.do(func(st *state) error {
		for _, e := range st.recurring {
			if e.MechanicID == mechanicID {
				out = append(out, e)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].TimeSlot < out[j].TimeSlot
	})
	return out, err
}

func (r scheduleRepo) DeleteRecurring(ctx context.Context, mechanicID uuid.UUID) error {
	return r.s.do(func(st *state) error {
		for k, e := range st.recurring {
			if e.MechanicID == mechanicID {
				delete(st.recurring, k)
			}
		}
		return nil
	})
}

func (r scheduleRepo) InsertRecurring(ctx context.Context, entries []model.RecurringEntry) error {
	return r.s.do(func(st *state) error {
		for _, e := range entries {
			if _, ok := st.mechanics[e.MechanicID]; !ok {
				return store.ErrNotFound
			}
			for _, other := range st.recurring {
				if other.MechanicID == e.MechanicID && other.DayOfWeek == e.DayOfWeek && other.TimeSlot == e.TimeSlot {
					return store.ErrConflict
				}
			}
			st.recurring[e.ID] = e
		}
		return nil
	})
}

func (r scheduleRepo) UpsertOverride(ctx context.Context, o *model.OverrideEntry) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.mechanics[o.MechanicID]; !ok {
			return store.ErrNotFound
		}
		for k, other := range st.overrides {
			if other.MechanicID == o.MechanicID && other.Date == o.Date && other.TimeSlot == o.TimeSlot {
				other.IsAvailable = o.IsAvailable
				other.UpdatedAt = o.UpdatedAt
				st.overrides[k] = other
				*o = other
				return nil
			}
		}
		st.overrides[o.ID] = *o
		return nil
	})
}

func (r scheduleRepo) ListOverrides(ctx context.Context, mechanicID uuid.UUID, from, to string) ([]model.OverrideEntry, error) {
	var out []model.OverrideEntry
	err := r.s.do(func(st *state) error {
		for _, o := range st.overrides {
			if o.MechanicID != mechanicID {
				continue
			}
			if from != "" && o.Date < from {
				continue
			}
			if to != "" && o.Date > to {
				continue
			}
			out = append(out, o)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].TimeSlot < out[j].TimeSlot
	})
	return out, err
}

func (r scheduleRepo) DeleteOverride(ctx context.Context, mechanicID uuid.UUID, date, slot string) error {
	return r.s.do(func(st *state) error {
		for k, o := range st.overrides {
			if o.MechanicID == mechanicID && o.Date == date && o.TimeSlot == slot {
				delete(st.overrides, k)
				return nil
			}
		}
		return store.ErrNotFound
	})
}

func (r scheduleRepo) AvailableRecurring(ctx context.Context, dayOfWeek int) ([]model.SlotMechanic, error) {
	var out []model.SlotMechanic
	err := r.s.do(func(st *state) error {
		for _, e := range st.recurring {
			if e.DayOfWeek != dayOfWeek || !e.IsAvailable {
				continue
			}
			m, ok := st.mechanics[e.MechanicID]
			if !ok {
				continue
			}
			out = append(out, model.SlotMechanic{TimeSlot: e.TimeSlot, Mechanic: m.Ref(), IsAvailable: true})
		}
		return nil
	})
	return out, err
}

func (r scheduleRepo) AvailableOverrides(ctx context.Context, date string) ([]model.SlotMechanic, error) {
	var out []model.SlotMechanic
	err := r.s.do(func(st *state) error {
		for _, o := range st.overrides {
			if o.Date != date || !o.IsAvailable {
				continue
			}
			m, ok := st.mechanics[o.MechanicID]
			if !ok {
				continue
			}
			out = append(out, model.SlotMechanic{TimeSlot: o.TimeSlot, Mechanic: m.Ref(), IsAvailable: true})
		}
		return nil
	})
	return out, err
}

type timeEntryRepo struct{ s *Store }

func (r timeEntryRepo) Open(ctx context.Context, mechanicID uuid.UUID) (*model.TimeEntry, error) {
	var out *model.TimeEntry
	err := r.s.do(func(st *state) error {
		for _, e := range st.timeEntries {
			if e.MechanicID == mechanicID && e.CheckOutTime == nil {
				out = &e
				return nil
			}
		}
		return store.ErrNotFound
	})
	return out, err
}

func (r timeEntryRepo) Create(ctx context.Context, e *model.TimeEntry) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.mechanics[e.MechanicID]; !ok {
			return store.ErrNotFound
		}
		for _, other := range st.timeEntries {
			if other.MechanicID == e.MechanicID && other.CheckOutTime == nil {
				return store.ErrConflict
			}
		}
		st.timeEntries[e.ID] = *e
		return nil
	})
}

func (r timeEntryRepo) Close(ctx context.Context, id uuid.UUID, at time.Time) (*model.TimeEntry, error) {
	var out *model.TimeEntry
	err := r.s.do(func(st *state) error {
		e, ok := st.timeEntries[id]
		if !ok || e.CheckOutTime != nil {
			return store.ErrNotFound
		}
		e.CheckOutTime = ptr(at)
		st.timeEntries[id] = e
		out = &e
		return nil
	})
	return out, err
}

func (r timeEntryRepo) List(ctx context.Context, mechanicID uuid.UUID, from, to time.Time) ([]model.TimeEntry, error) {
	var out []model.TimeEntry
	err := r.s.do(func(st *state) error {
		for _, e := range st.timeEntries {
			if e.MechanicID != mechanicID {
				continue
			}
			if !from.IsZero() && e.CheckInTime.Before(from) {
				continue
			}
			if !to.IsZero() && !e.CheckInTime.Before(to) {
				continue
			}
			out = append(out, e)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInTime.Before(out[j].CheckInTime) })
	return out, err
}
