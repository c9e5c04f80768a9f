package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
)

type mechanicRepo struct{ s *Store }

func (r mechanicRepo) Create(ctx context.Context, m *model.Mechanic) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.mechanics[m.ID]; ok {
			return store.ErrConflict
		}
		if m.Email != nil && mechanicEmailTaken(st, *m.Email, m.ID) {
			return store.ErrConflict
		}
		st.mechanics[m.ID] = *m
		return nil
	})
}

func (r mechanicRepo) Update(ctx context.Context, m *model.Mechanic) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.mechanics[m.ID]; !ok {
			return store.ErrNotFound
		}
		if m.Email != nil && mechanicEmailTaken(st, *m.Email, m.ID) {
			return store.ErrConflict
		}
		st.mechanics[m.ID] = *m
		return nil
	})
}

func mechanicEmailTaken(st *state, email string, self uuid.UUID) bool {
	for id, other := range st.mechanics {
		if id != self && other.Email != nil && strings.EqualFold(*other.Email, email) {
			return true
		}
	}
	return false
}

// Delete mirrors the SQL foreign keys: schedules, overrides and time entries
// cascade, appointments are unassigned.
func (r mechanicRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.mechanics[id]; !ok {
			return store.ErrNotFound
		}
		delete(st.mechanics, id)
		for k, e := range st.recurring {
			if e.MechanicID == id {
				delete(st.recurring, k)
			}
		}
		for k, o := range st.overrides {
			if o.MechanicID == id {
				delete(st.overrides, k)
			}
		}
		for k, e := range st.timeEntries {
			if e.MechanicID == id {
				delete(st.timeEntries, k)
			}
		}
		for k, a := range st.appointments {
			if a.AssignedTo(id) {
				a.MechanicID = nil
				st.appointments[k] = a
			}
		}
		return nil
	})
}

func (r mechanicRepo) Get(ctx context.Context, id uuid.UUID) (*model.Mechanic, error) {
	var out *model.Mechanic
	err := r.s.do(func(st *state) error {
		m, ok := st.mechanics[id]
		if !ok {
			return store.ErrNotFound
		}
		out = &m
		return nil
	})
	return out, err
}

func (r mechanicRepo) GetByEmail(ctx context.Context, email string) (*model.Mechanic, error) {
	var out *model.Mechanic
	err := r.s.do(func(st *state) error {
		for _, m := range st.mechanics {
			if m.Email != nil && strings.EqualFold(*m.Email, email) {
				out = &m
				return nil
			}
		}
		return store.ErrNotFound
	})
	return out, err
}

func (r mechanicRepo) List(ctx context.Context, f store.MechanicFilter) ([]model.Mechanic, error) {
	var out []model.Mechanic
	err := r.s.do(func(st *state) error {
		for _, m := range st.mechanics {
			if f.PublicOnly && !m.IsPublic {
				continue
			}
			out = append(out, m)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, err
}

// Lock only checks existence; the store mutex already serializes transactions.
func (r mechanicRepo) Lock(ctx context.Context, id uuid.UUID) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.mechanics[id]; !ok {
			return store.ErrNotFound
		}
		return nil
	})
}

func (r mechanicRepo) IncrementOilChanges(ctx context.Context, id uuid.UUID) error {
	return r.s.do(func(st *state) error {
		m, ok := st.mechanics[id]
		if !ok {
			return store.ErrNotFound
		}
		m.OilChangeCount++
		st.mechanics[id] = m
		return nil
	})
}

type managerRepo struct{ s *Store }

func (r managerRepo) Create(ctx context.Context, m *model.Manager) error {
	return r.s.do(func(st *state) error {
		for _, other := range st.managers {
			if other.ID == m.ID || strings.EqualFold(other.Email, m.Email) {
				return store.ErrConflict
			}
		}
		st.managers[m.ID] = *m
		return nil
	})
}

func (r managerRepo) Get(ctx context.Context, id uuid.UUID) (*model.Manager, error) {
	var out *model.Manager
	err := r.s.do(func(st *state) error {
		m, ok := st.managers[id]
		if !ok {
			return store.ErrNotFound
		}
		out = &m
		return nil
	})
	return out, err
}

func (r managerRepo) GetByEmail(ctx context.Context, email string) (*model.Manager, error) {
	var out *model.Manager
	err := r.s.do(func(st *state) error {
		for _, m := range st.managers {
			if strings.EqualFold(m.Email, email) {
				out = &m
				return nil
			}
		}
		return store.ErrNotFound
	})
	return out, err
}

type customerRepo struct{ s *Store }

func (r customerRepo) Upsert(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	var out model.Customer
	err := r.s.do(func(st *state) error {
		for id, existing := range st.customers {
			if !strings.EqualFold(existing.Email, c.Email) {
				continue
			}
			merged := existing.Merge(*c)
			if merged != existing {
				merged.UpdatedAt = c.UpdatedAt
				st.customers[id] = merged
			}
			out = merged
			return nil
		}
		if _, taken := st.customers[c.ID]; taken {
			return store.ErrConflict
		}
		st.customers[c.ID] = *c
		out = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r customerRepo) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var out *model.Customer
	err := r.s.do(func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return store.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r customerRepo) List(ctx context.Context, limit, offset int) ([]model.Customer, error) {
	var out []model.Customer
	err := r.s.do(func(st *state) error {
		for _, c := range st.customers {
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return page(out, limit, offset), err
}
