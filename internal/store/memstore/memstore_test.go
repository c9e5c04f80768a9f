package memstore

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
)

func seedMechanic(t *testing.T, s *Store, name string) model.Mechanic {
	t.Helper()
	m := model.Mechanic{ID: uuid.New(), Name: name, IsPublic: true}
	if err := s.Mechanics().Create(context.Background(), &m); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return m
}

func TestInTxRollback(t *testing.T) {
	s := New()
	ctx := context.Background()
	m := seedMechanic(t, s, "Ana")

	boom := errors.New("boom")
	err := s.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.Schedules().InsertRecurring(ctx, []model.RecurringEntry{
			{ID: uuid.New(), MechanicID: m.ID, DayOfWeek: 2, TimeSlot: "09:00 AM", IsAvailable: true},
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx() error = %v, want %v", err, boom)
	}

	rows, err := s.Schedules().ListRecurring(ctx, m.ID)
	if err != nil {
		t.Fatalf("ListRecurring() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rolled back insert still visible: %+v", rows)
	}
}

func TestLiveSlotUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()
	m := seedMechanic(t, s, "Ana")

	first := model.Appointment{ID: uuid.New(), JobNumber: 1, Date: "2025-03-04", TimeSlot: "09:00 AM", MechanicID: &m.ID, Status: model.StatusScheduled}
	if err := s.Appointments().Create(ctx, &first); err != nil {
		t.Fatalf("Create(first) error = %v", err)
	}

	second := first
	second.ID = uuid.New()
	second.JobNumber = 2
	if err := s.Appointments().Create(ctx, &second); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("Create(second) error = %v, want ErrConflict", err)
	}

	if _, err := s.Appointments().TransitionStatus(ctx, first.ID, []model.AppointmentStatus{model.StatusScheduled}, model.StatusCancelled, time.Now()); err != nil {
		t.Fatalf("TransitionStatus() error = %v", err)
	}
	if err := s.Appointments().Create(ctx, &second); err != nil {
		t.Errorf("Create() after cancel error = %v, want nil", err)
	}
}

func TestJobNumberUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()

	a := model.Appointment{ID: uuid.New(), JobNumber: 7, Status: model.StatusScheduled}
	if err := s.Appointments().Create(ctx, &a); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	b := model.Appointment{ID: uuid.New(), JobNumber: 7, Status: model.StatusScheduled}
	if err := s.Appointments().Create(ctx, &b); !errors.Is(err, store.ErrConflict) {
		t.Errorf("Create() duplicate job number error = %v, want ErrConflict", err)
	}
}

func TestTransitionStatusStale(t *testing.T) {
	s := New()
	ctx := context.Background()

	a := model.Appointment{ID: uuid.New(), JobNumber: 1, Status: model.StatusCancelled}
	if err := s.Appointments().Create(ctx, &a); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err := s.Appointments().TransitionStatus(ctx, a.ID, []model.AppointmentStatus{model.StatusScheduled}, model.StatusCancelled, time.Now())
	if !errors.Is(err, store.ErrStaleStatus) {
		t.Errorf("TransitionStatus() error = %v, want ErrStaleStatus", err)
	}
}

func TestOneOpenTimeEntry(t *testing.T) {
	s := New()
	ctx := context.Background()
	m := seedMechanic(t, s, "Ana")

	open := model.TimeEntry{ID: uuid.New(), MechanicID: m.ID, CheckInTime: time.Now()}
	if err := s.TimeEntries().Create(ctx, &open); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	again := model.TimeEntry{ID: uuid.New(), MechanicID: m.ID, CheckInTime: time.Now()}
	if err := s.TimeEntries().Create(ctx, &again); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("Create() second open entry error = %v, want ErrConflict", err)
	}

	if _, err := s.TimeEntries().Close(ctx, open.ID, time.Now()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := s.TimeEntries().Close(ctx, open.ID, time.Now()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Close() on closed entry error = %v, want ErrNotFound", err)
	}
	if err := s.TimeEntries().Create(ctx, &again); err != nil {
		t.Errorf("Create() after check-out error = %v", err)
	}
}

func TestUpsertOverride(t *testing.T) {
	s := New()
	ctx := context.Background()
	m := seedMechanic(t, s, "Ana")

	o := model.OverrideEntry{ID: uuid.New(), MechanicID: m.ID, Date: "2025-03-04", TimeSlot: "09:00 AM", IsAvailable: true}
	if err := s.Schedules().UpsertOverride(ctx, &o); err != nil {
		t.Fatalf("UpsertOverride() error = %v", err)
	}
	flip := model.OverrideEntry{ID: uuid.New(), MechanicID: m.ID, Date: "2025-03-04", TimeSlot: "09:00 AM", IsAvailable: false}
	if err := s.Schedules().UpsertOverride(ctx, &flip); err != nil {
		t.Fatalf("UpsertOverride() error = %v", err)
	}
	if flip.ID != o.ID {
		t.Errorf("upsert created a new row, id = %v, want %v", flip.ID, o.ID)
	}

	rows, err := s.Schedules().ListOverrides(ctx, m.ID, "", "")
	if err != nil {
		t.Fatalf("ListOverrides() error = %v", err)
	}
	if len(rows) != 1 || rows[0].IsAvailable {
		t.Errorf("ListOverrides() = %+v, want one unavailable row", rows)
	}
}

func TestDeleteMechanicCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	m := seedMechanic(t, s, "Ana")

	if err := s.Schedules().InsertRecurring(ctx, []model.RecurringEntry{
		{ID: uuid.New(), MechanicID: m.ID, DayOfWeek: 1, TimeSlot: "09:00 AM", IsAvailable: true},
	}); err != nil {
		t.Fatalf("InsertRecurring() error = %v", err)
	}
	a := model.Appointment{ID: uuid.New(), JobNumber: 1, Date: "2025-03-03", TimeSlot: "09:00 AM", MechanicID: &m.ID, Status: model.StatusScheduled}
	if err := s.Appointments().Create(ctx, &a); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := s.Mechanics().Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	rows, _ := s.Schedules().ListRecurring(ctx, m.ID)
	if len(rows) != 0 {
		t.Errorf("recurring rows survived delete: %+v", rows)
	}
	got, err := s.Appointments().Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.MechanicID != nil {
		t.Errorf("appointment still assigned to deleted mechanic")
	}
}

func TestAvailableRecurringKeepsStoredSpelling(t *testing.T) {
	s := New()
	ctx := context.Background()
	ana := seedMechanic(t, s, "Ana")
	bo := seedMechanic(t, s, "Bo")

	if err := s.Schedules().InsertRecurring(ctx, []model.RecurringEntry{
		{ID: uuid.New(), MechanicID: ana.ID, DayOfWeek: 2, TimeSlot: "8:00 am", IsAvailable: true},
		{ID: uuid.New(), MechanicID: bo.ID, DayOfWeek: 2, TimeSlot: "09:00 AM", IsAvailable: true},
		{ID: uuid.New(), MechanicID: bo.ID, DayOfWeek: 2, TimeSlot: "10:00 AM", IsAvailable: false},
		{ID: uuid.New(), MechanicID: bo.ID, DayOfWeek: 3, TimeSlot: "10:00 AM", IsAvailable: true},
	}); err != nil {
		t.Fatalf("InsertRecurring() error = %v", err)
	}

	rows, err := s.Schedules().AvailableRecurring(ctx, 2)
	if err != nil {
		t.Fatalf("AvailableRecurring() error = %v", err)
	}
	got := map[string]uuid.UUID{}
	for _, r := range rows {
		got[r.TimeSlot] = r.Mechanic.ID
	}
	want := map[string]uuid.UUID{"8:00 am": ana.ID, "09:00 AM": bo.ID}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AvailableRecurring(2) slots = %v, want %v", got, want)
	}
}

func TestCustomerUpsertMergesByEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	a := model.Customer{ID: uuid.New(), Email: "pat@example.com", Name: "Pat", Phone: "+12015550123"}
	got, err := s.Customers().Upsert(ctx, &a)
	if err != nil || got.ID != a.ID {
		t.Fatalf("Upsert() = %v, %v", got, err)
	}

	b := model.Customer{ID: uuid.New(), Email: "PAT@example.com", Address: "4 Oak Ave"}
	got, err = s.Customers().Upsert(ctx, &b)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if got.ID != a.ID || got.Name != "Pat" || got.Phone != "+12015550123" || got.Address != "4 Oak Ave" {
		t.Errorf("Upsert() merged row = %+v", got)
	}

	all, err := s.Customers().List(ctx, 0, 0)
	if err != nil || len(all) != 1 {
		t.Errorf("List() = %d customers, %v; want 1", len(all), err)
	}
}
