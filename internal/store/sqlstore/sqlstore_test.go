package sqlstore

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "unique violation", err: &pq.Error{Code: "23505", Constraint: "appointment_mechanic_id_date_time_slot_live"}, want: store.ErrConflict},
		{name: "foreign key violation", err: &pq.Error{Code: "23503"}, want: store.ErrNotFound},
		{name: "undefined table", err: &pq.Error{Code: "42P01", Message: `relation "appointments" does not exist`}, want: store.ErrSchemaMissing},
		{name: "wrapped unique violation", err: fmt.Errorf("exec: %w", &pq.Error{Code: "23505"}), want: store.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("mapError() = %v, want %v", got, tt.want)
			}
		})
	}

	other := errors.New("connection reset")
	if got := mapError(other); got != other {
		t.Errorf("mapError() changed unrelated error: %v", got)
	}
	if mapError(nil) != nil {
		t.Error("mapError(nil) != nil")
	}
}

func TestPartialUniqueIndexes(t *testing.T) {
	tests := []struct {
		name  string
		index string
		where string
	}{
		{name: "one live booking per slot", index: "appointment_mechanic_id_date_time_slot_live", where: "status <> 'cancelled'"},
		{name: "one open time entry", index: "timeentry_mechanic_id_open", where: "check_out_time IS NULL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var found bool
			for _, tbl := range Tables {
				for _, idx := range tbl.Indexes {
					if idx.Name != tt.index {
						continue
					}
					found = true
					if !idx.Unique {
						t.Errorf("index %s is not unique", idx.Name)
					}
					if idx.Annotation == nil || !strings.Contains(idx.Annotation.Where, tt.where) {
						t.Errorf("index %s predicate = %+v, want it to contain %q", idx.Name, idx.Annotation, tt.where)
					}
				}
			}
			if !found {
				t.Fatalf("index %s not declared", tt.index)
			}
		})
	}
}

func TestForeignKeysResolved(t *testing.T) {
	for _, tbl := range Tables {
		for _, fk := range tbl.ForeignKeys {
			if fk.RefTable == nil {
				t.Errorf("%s.%s has no referenced table", tbl.Name, fk.Symbol)
			}
		}
	}
}

func TestAvailabilityQueryShape(t *testing.T) {
	b := pg()
	a := b.Table(RecurringSchedulesTable.Name).As("a")
	m := b.Table(MechanicsTable.Name).As("m")
	query, args := b.Select(a.C("time_slot"), m.C("id"), m.C("name")).
		From(a).
		Join(m).On(a.C("mechanic_id"), m.C("id")).
		Where(entsql.And(
			entsql.EQ(a.C("day_of_week"), 2),
			entsql.EQ(a.C("is_available"), true),
			entsql.In(a.C("time_slot"), "08:00 AM", "8:00 AM"),
		)).
		Query()

	for _, want := range []string{`JOIN "mechanics" AS "m"`, `"a"."day_of_week" = $1`, `"a"."time_slot" IN ($3, $4)`} {
		if !strings.Contains(query, want) {
			t.Errorf("query %q missing %q", query, want)
		}
	}
	if len(args) != 4 {
		t.Errorf("args = %v, want 4 values", args)
	}
}

func TestUpsertCustomerIsSingleStatement(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	c := &model.Customer{ID: uuid.New(), Email: "dana@example.com", Name: "Dana", CreatedAt: now, UpdatedAt: now}

	query, args := upsertCustomer(c).Query()
	for _, want := range []string{
		"INSERT INTO",
		"ON CONFLICT",
		`"email"`,
		"DO UPDATE SET",
		"COALESCE(NULLIF(excluded.name, ''), customers.name)",
		"COALESCE(NULLIF(excluded.address, ''), customers.address)",
		"THEN excluded.updated_at ELSE customers.updated_at END",
		"RETURNING",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("upsert query missing %q:\n%s", want, query)
		}
	}
	if len(args) != len(customerColumns) {
		t.Errorf("upsert args = %d, want one per column (%d)", len(args), len(customerColumns))
	}
}
