package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
)

var recurringColumns = []string{"id", "mechanic_id", "day_of_week", "time_slot", "is_available"}

func scanRecurring(rows *entsql.Rows) (model.RecurringEntry, error) {
	var e model.RecurringEntry
	if err := rows.Scan(&e.ID, &e.MechanicID, &e.DayOfWeek, &e.TimeSlot, &e.IsAvailable); err != nil {
		return e, fmt.Errorf("scan recurring schedule: %w", err)
	}
	return e, nil
}

var overrideColumns = []string{"id", "mechanic_id", "date", "time_slot", "is_available", "updated_at"}

func scanOverride(rows *entsql.Rows) (model.OverrideEntry, error) {
	var o model.OverrideEntry
	if err := rows.Scan(&o.ID, &o.MechanicID, &o.Date, &o.TimeSlot, &o.IsAvailable, &o.UpdatedAt); err != nil {
		return o, fmt.Errorf("scan date override: %w", err)
	}
	return o, nil
}

type scheduleRepo struct{ s *Store }

func (r scheduleRepo) ListRecurring(ctx context.Context, mechanicID uuid.UUID) ([]model.RecurringEntry, error) {
	q := pg().Select(recurringColumns...).
		From(pg().Table(RecurringSchedulesTable.Name)).
		Where(entsql.EQ("mechanic_id", mechanicID)).
		OrderBy("day_of_week", "time_slot")
	return queryAll(ctx, r.s, q, scanRecurring)
}

func (r scheduleRepo) DeleteRecurring(ctx context.Context, mechanicID uuid.UUID) error {
	q := pg().Delete(RecurringSchedulesTable.Name).Where(entsql.EQ("mechanic_id", mechanicID))
	if _, err := r.s.exec(ctx, q); err != nil {
		return fmt.Errorf("delete recurring schedule: %w", err)
	}
	return nil
}

func (r scheduleRepo) InsertRecurring(ctx context.Context, entries []model.RecurringEntry) error {
	if len(entries) == 0 {
		return nil
	}
	q := pg().Insert(RecurringSchedulesTable.Name).Columns(recurringColumns...)
	for _, e := range entries {
		q.Values(e.ID, e.MechanicID, e.DayOfWeek, e.TimeSlot, e.IsAvailable)
	}
	if _, err := r.s.exec(ctx, q); err != nil {
		return fmt.Errorf("insert recurring schedule: %w", err)
	}
	return nil
}

func (r scheduleRepo) UpsertOverride(ctx context.Context, o *model.OverrideEntry) error {
	q := pg().Insert(DateOverridesTable.Name).
		Columns(overrideColumns...).
		Values(o.ID, o.MechanicID, o.Date, o.TimeSlot, o.IsAvailable, o.UpdatedAt).
		OnConflict(
			entsql.ConflictColumns("mechanic_id", "date", "time_slot"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("is_available")
				u.SetExcluded("updated_at")
			}),
		).
		Returning("id")

	var id uuid.UUID
	err := r.s.query(ctx, q, func(rows *entsql.Rows) error {
		return rows.Scan(&id)
	})
	if err != nil {
		return fmt.Errorf("upsert date override: %w", err)
	}
	o.ID = id
	return nil
}

func (r scheduleRepo) ListOverrides(ctx context.Context, mechanicID uuid.UUID, from, to string) ([]model.OverrideEntry, error) {
	preds := []*entsql.Predicate{entsql.EQ("mechanic_id", mechanicID)}
	if from != "" {
		preds = append(preds, entsql.GTE("date", from))
	}
	if to != "" {
		preds = append(preds, entsql.LTE("date", to))
	}
	q := pg().Select(overrideColumns...).
		From(pg().Table(DateOverridesTable.Name)).
		Where(entsql.And(preds...)).
		OrderBy("date", "time_slot")
	return queryAll(ctx, r.s, q, scanOverride)
}

func (r scheduleRepo) DeleteOverride(ctx context.Context, mechanicID uuid.UUID, date, slot string) error {
	q := pg().Delete(DateOverridesTable.Name).Where(entsql.And(
		entsql.EQ("mechanic_id", mechanicID),
		entsql.EQ("date", date),
		entsql.EQ("time_slot", slot),
	))
	return r.s.execOne(ctx, q)
}

// availableJoin selects is_available rows of an availability table where
// keyColumn equals key, joined with the technician's name.
func (r scheduleRepo) availableJoin(ctx context.Context, table, keyColumn string, key any) ([]model.SlotMechanic, error) {
	b := pg()
	a := b.Table(table).As("a")
	m := b.Table(MechanicsTable.Name).As("m")

	q := b.Select(a.C("time_slot"), m.C("id"), m.C("name")).
		From(a).
		Join(m).On(a.C("mechanic_id"), m.C("id")).
		Where(entsql.And(entsql.EQ(a.C(keyColumn), key), entsql.EQ(a.C("is_available"), true)))

	return queryAll(ctx, r.s, q, func(rows *entsql.Rows) (model.SlotMechanic, error) {
		sm := model.SlotMechanic{IsAvailable: true}
		if err := rows.Scan(&sm.TimeSlot, &sm.Mechanic.ID, &sm.Mechanic.Name); err != nil {
			return sm, fmt.Errorf("scan availability: %w", err)
		}
		return sm, nil
	})
}

func (r scheduleRepo) AvailableRecurring(ctx context.Context, dayOfWeek int) ([]model.SlotMechanic, error) {
	return r.availableJoin(ctx, RecurringSchedulesTable.Name, "day_of_week", dayOfWeek)
}

func (r scheduleRepo) AvailableOverrides(ctx context.Context, date string) ([]model.SlotMechanic, error) {
	return r.availableJoin(ctx, DateOverridesTable.Name, "date", date)
}

var timeEntryColumns = []string{"id", "mechanic_id", "check_in_time", "check_out_time"}

func scanTimeEntry(rows *entsql.Rows) (model.TimeEntry, error) {
	var (
		e   model.TimeEntry
		out sql.NullTime
	)
	if err := rows.Scan(&e.ID, &e.MechanicID, &e.CheckInTime, &out); err != nil {
		return e, fmt.Errorf("scan time entry: %w", err)
	}
	e.CheckOutTime = timePtr(out)
	return e, nil
}

type timeEntryRepo struct{ s *Store }

func (r timeEntryRepo) Open(ctx context.Context, mechanicID uuid.UUID) (*model.TimeEntry, error) {
	q := pg().Select(timeEntryColumns...).
		From(pg().Table(TimeEntriesTable.Name)).
		Where(entsql.And(entsql.EQ("mechanic_id", mechanicID), entsql.IsNull("check_out_time")))
	return queryOne(ctx, r.s, q, scanTimeEntry)
}

func (r timeEntryRepo) Create(ctx context.Context, e *model.TimeEntry) error {
	q := pg().Insert(TimeEntriesTable.Name).
		Columns(timeEntryColumns...).
		Values(e.ID, e.MechanicID, e.CheckInTime, nullable(e.CheckOutTime))
	if _, err := r.s.exec(ctx, q); err != nil {
		return fmt.Errorf("insert time entry: %w", err)
	}
	return nil
}

func (r timeEntryRepo) Close(ctx context.Context, id uuid.UUID, at time.Time) (*model.TimeEntry, error) {
	q := pg().Update(TimeEntriesTable.Name).
		Set("check_out_time", at).
		Where(entsql.And(entsql.EQ("id", id), entsql.IsNull("check_out_time")))
	if err := r.s.execOne(ctx, q); err != nil {
		return nil, err
	}
	get := pg().Select(timeEntryColumns...).From(pg().Table(TimeEntriesTable.Name)).Where(entsql.EQ("id", id))
	return queryOne(ctx, r.s, get, scanTimeEntry)
}

func (r timeEntryRepo) List(ctx context.Context, mechanicID uuid.UUID, from, to time.Time) ([]model.TimeEntry, error) {
	preds := []*entsql.Predicate{entsql.EQ("mechanic_id", mechanicID)}
	if !from.IsZero() {
		preds = append(preds, entsql.GTE("check_in_time", from))
	}
	if !to.IsZero() {
		preds = append(preds, entsql.LT("check_in_time", to))
	}
	q := pg().Select(timeEntryColumns...).
		From(pg().Table(TimeEntriesTable.Name)).
		Where(entsql.And(preds...)).
		OrderBy("check_in_time")
	return queryAll(ctx, r.s, q, scanTimeEntry)
}
