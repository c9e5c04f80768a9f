package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
)

var mechanicColumns = []string{
	"id", "name", "email", "phone", "password_hash", "photo_key",
	"is_public", "oil_change_count", "created_at", "updated_at",
}

func scanMechanic(rows *entsql.Rows) (model.Mechanic, error) {
	var (
		m                         model.Mechanic
		email, phone, hash, photo sql.NullString
	)
	err := rows.Scan(&m.ID, &m.Name, &email, &phone, &hash, &photo,
		&m.IsPublic, &m.OilChangeCount, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return m, fmt.Errorf("scan mechanic: %w", err)
	}
	m.Email = stringPtr(email)
	m.Phone = stringPtr(phone)
	m.PasswordHash = stringPtr(hash)
	m.PhotoKey = stringPtr(photo)
	return m, nil
}

type mechanicRepo struct{ s *Store }

func (r mechanicRepo) Create(ctx context.Context, m *model.Mechanic) error {
	q := pg().Insert(MechanicsTable.Name).
		Columns(mechanicColumns...).
		Values(m.ID, m.Name, nullable(m.Email), nullable(m.Phone), nullable(m.PasswordHash), nullable(m.PhotoKey),
			m.IsPublic, m.OilChangeCount, m.CreatedAt, m.UpdatedAt)
	if _, err := r.s.exec(ctx, q); err != nil {
		return fmt.Errorf("insert mechanic: %w", err)
	}
	return nil
}

func (r mechanicRepo) Update(ctx context.Context, m *model.Mechanic) error {
	q := pg().Update(MechanicsTable.Name).
		Set("name", m.Name).
		Set("email", nullable(m.Email)).
		Set("phone", nullable(m.Phone)).
		Set("password_hash", nullable(m.PasswordHash)).
		Set("photo_key", nullable(m.PhotoKey)).
		Set("is_public", m.IsPublic).
		Set("updated_at", m.UpdatedAt).
		Where(entsql.EQ("id", m.ID))
	return r.s.execOne(ctx, q)
}

func (r mechanicRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.execOne(ctx, pg().Delete(MechanicsTable.Name).Where(entsql.EQ("id", id)))
}

func (r mechanicRepo) Get(ctx context.Context, id uuid.UUID) (*model.Mechanic, error) {
	q := pg().Select(mechanicColumns...).From(pg().Table(MechanicsTable.Name)).Where(entsql.EQ("id", id))
	return queryOne(ctx, r.s, q, scanMechanic)
}

func (r mechanicRepo) GetByEmail(ctx context.Context, email string) (*model.Mechanic, error) {
	q := pg().Select(mechanicColumns...).From(pg().Table(MechanicsTable.Name)).Where(entsql.EQ("email", email))
	return queryOne(ctx, r.s, q, scanMechanic)
}

func (r mechanicRepo) List(ctx context.Context, f store.MechanicFilter) ([]model.Mechanic, error) {
	q := pg().Select(mechanicColumns...).From(pg().Table(MechanicsTable.Name)).OrderBy("name", "id")
	if f.PublicOnly {
		q.Where(entsql.EQ("is_public", true))
	}
	return queryAll(ctx, r.s, q, scanMechanic)
}

func (r mechanicRepo) Lock(ctx context.Context, id uuid.UUID) error {
	q := pg().Select("id").From(pg().Table(MechanicsTable.Name)).Where(entsql.EQ("id", id)).ForUpdate()
	found := false
	err := r.s.query(ctx, q, func(rows *entsql.Rows) error {
		found = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("lock mechanic: %w", err)
	}
	if !found {
		return store.ErrNotFound
	}
	return nil
}

func (r mechanicRepo) IncrementOilChanges(ctx context.Context, id uuid.UUID) error {
	q := pg().Update(MechanicsTable.Name).
		Add("oil_change_count", 1).
		Set("updated_at", time.Now()).
		Where(entsql.EQ("id", id))
	return r.s.execOne(ctx, q)
}

var managerColumns = []string{"id", "email", "name", "password_hash", "created_at"}

func scanManager(rows *entsql.Rows) (model.Manager, error) {
	var m model.Manager
	if err := rows.Scan(&m.ID, &m.Email, &m.Name, &m.PasswordHash, &m.CreatedAt); err != nil {
		return m, fmt.Errorf("scan manager: %w", err)
	}
	return m, nil
}

type managerRepo struct{ s *Store }

func (r managerRepo) Create(ctx context.Context, m *model.Manager) error {
	q := pg().Insert(ManagersTable.Name).
		Columns(managerColumns...).
		Values(m.ID, m.Email, m.Name, m.PasswordHash, m.CreatedAt)
	if _, err := r.s.exec(ctx, q); err != nil {
		return fmt.Errorf("insert manager: %w", err)
	}
	return nil
}

func (r managerRepo) Get(ctx context.Context, id uuid.UUID) (*model.Manager, error) {
	q := pg().Select(managerColumns...).From(pg().Table(ManagersTable.Name)).Where(entsql.EQ("id", id))
	return queryOne(ctx, r.s, q, scanManager)
}

func (r managerRepo) GetByEmail(ctx context.Context, email string) (*model.Manager, error) {
	q := pg().Select(managerColumns...).From(pg().Table(ManagersTable.Name)).Where(entsql.EQ("email", email))
	return queryOne(ctx, r.s, q, scanManager)
}

var customerColumns = []string{
	"id", "email", "name", "phone", "contact_preference", "address", "created_at", "updated_at",
}

func scanCustomer(rows *entsql.Rows) (model.Customer, error) {
	var c model.Customer
	err := rows.Scan(&c.ID, &c.Email, &c.Name, &c.Phone, &c.ContactPreference, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, fmt.Errorf("scan customer: %w", err)
	}
	return c, nil
}

type customerRepo struct{ s *Store }

// customerMergeColumns are refreshed from a booking only when the booking
// carries a value for them.
var customerMergeColumns = []string{"name", "phone", "contact_preference", "address"}

// upsertCustomer is INSERT ... ON CONFLICT (email) DO UPDATE. A conflicting
// insert waits for the other transaction and then merges, so it never aborts
// the surrounding booking transaction with a unique violation.
func upsertCustomer(c *model.Customer) *entsql.InsertBuilder {
	table := CustomersTable.Name
	changed := make([]string, 0, len(customerMergeColumns))
	for _, col := range customerMergeColumns {
		changed = append(changed, fmt.Sprintf("(excluded.%[1]s <> '' AND excluded.%[1]s <> %[2]s.%[1]s)", col, table))
	}

	return pg().Insert(table).
		Columns(customerColumns...).
		Values(c.ID, c.Email, c.Name, c.Phone, c.ContactPreference, c.Address, c.CreatedAt, c.UpdatedAt).
		OnConflict(
			entsql.ConflictColumns("email"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, col := range customerMergeColumns {
					u.Set(col, entsql.Expr(fmt.Sprintf("COALESCE(NULLIF(excluded.%[1]s, ''), %[2]s.%[1]s)", col, table)))
				}
				u.Set("updated_at", entsql.Expr(fmt.Sprintf(
					"CASE WHEN %s THEN excluded.updated_at ELSE %s.updated_at END",
					strings.Join(changed, " OR "), table)))
			}),
		).
		Returning(customerColumns...)
}

func (r customerRepo) Upsert(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	out, err := queryOne(ctx, r.s, upsertCustomer(c), scanCustomer)
	if err != nil {
		return nil, fmt.Errorf("upsert customer: %w", err)
	}
	return out, nil
}

func (r customerRepo) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	q := pg().Select(customerColumns...).From(pg().Table(CustomersTable.Name)).Where(entsql.EQ("id", id))
	return queryOne(ctx, r.s, q, scanCustomer)
}

func (r customerRepo) List(ctx context.Context, limit, offset int) ([]model.Customer, error) {
	q := pg().Select(customerColumns...).From(pg().Table(CustomersTable.Name)).OrderBy("email")
	if limit > 0 {
		q.Limit(limit)
	}
	if offset > 0 {
		q.Offset(offset)
	}
	return queryAll(ctx, r.s, q, scanCustomer)
}
