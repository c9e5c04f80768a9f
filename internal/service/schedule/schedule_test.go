package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/store/memstore"
	"github.com/Alijeyrad/oilcall_backend/pkg/validation"
)

func setup(t *testing.T) (*memstore.Store, Service, uuid.UUID) {
	t.Helper()
	st := memstore.New()
	m := model.Mechanic{ID: uuid.New(), Name: "Ana", IsPublic: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := st.Mechanics().Create(context.Background(), &m); err != nil {
		t.Fatalf("create mechanic: %v", err)
	}
	return st, New(st), m.ID
}

func boolPtr(b bool) *bool { return &b }

func TestReplaceRecurring(t *testing.T) {
	_, svc, id := setup(t)
	ctx := context.Background()

	_, err := svc.ReplaceRecurring(ctx, id, []RecurringInput{
		{DayOfWeek: 1, TimeSlot: "9:00 am"},
		{DayOfWeek: 1, TimeSlot: "08:00 AM"},
		{DayOfWeek: 3, TimeSlot: "10:00 AM"},
	})
	if err != nil {
		t.Fatalf("ReplaceRecurring() error = %v", err)
	}

	got, err := svc.ReplaceRecurring(ctx, id, []RecurringInput{
		{DayOfWeek: 2, TimeSlot: "1:30 pm", IsAvailable: boolPtr(false)},
		{DayOfWeek: 2, TimeSlot: "01:30 PM"},
	})
	if err != nil {
		t.Fatalf("ReplaceRecurring() error = %v", err)
	}
	if len(got) != 1 || got[0].TimeSlot != "01:30 PM" || !got[0].IsAvailable {
		t.Errorf("ReplaceRecurring() = %+v, want the later duplicate only", got)
	}

	stored, err := svc.ListRecurring(ctx, id)
	if err != nil {
		t.Fatalf("ListRecurring() error = %v", err)
	}
	if len(stored) != 1 || stored[0].DayOfWeek != 2 {
		t.Errorf("ListRecurring() = %+v, old entries survived the replace", stored)
	}
}

func TestReplaceRecurringValidation(t *testing.T) {
	_, svc, id := setup(t)
	_, err := svc.ReplaceRecurring(context.Background(), id, []RecurringInput{
		{DayOfWeek: 7, TimeSlot: "08:00 AM"},
		{DayOfWeek: 1, TimeSlot: "noon"},
	})
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("ReplaceRecurring() error = %v, want validation error", err)
	}
	for _, field := range []string{"entries[0].day_of_week", "entries[1].time_slot"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("missing field error for %s in %v", field, verr.Fields)
		}
	}
}

func TestReplaceRecurringUnknownMechanic(t *testing.T) {
	_, svc, _ := setup(t)
	_, err := svc.ReplaceRecurring(context.Background(), uuid.New(), []RecurringInput{{DayOfWeek: 1, TimeSlot: "08:00 AM"}})
	if !errors.Is(err, ErrMechanicNotFound) {
		t.Errorf("ReplaceRecurring() error = %v, want ErrMechanicNotFound", err)
	}
}

func TestReplaceRecurringConcurrent(t *testing.T) {
	_, svc, id := setup(t)
	ctx := context.Background()

	sets := [][]RecurringInput{
		{{DayOfWeek: 1, TimeSlot: "08:00 AM"}, {DayOfWeek: 1, TimeSlot: "09:00 AM"}},
		{{DayOfWeek: 4, TimeSlot: "02:00 PM"}},
	}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(set []RecurringInput) {
			defer wg.Done()
			if _, err := svc.ReplaceRecurring(ctx, id, set); err != nil {
				t.Errorf("ReplaceRecurring() error = %v", err)
			}
		}(sets[i%2])
	}
	wg.Wait()

	got, err := svc.ListRecurring(ctx, id)
	if err != nil {
		t.Fatalf("ListRecurring() error = %v", err)
	}
	if n := len(got); n != 1 && n != 2 {
		t.Fatalf("ListRecurring() = %+v, want exactly one of the submitted sets", got)
	}
	for _, e := range got[1:] {
		if e.DayOfWeek != got[0].DayOfWeek {
			t.Errorf("schedule mixes two replacements: %+v", got)
		}
	}
}

func TestUpsertOverrides(t *testing.T) {
	_, svc, id := setup(t)
	ctx := context.Background()

	first, err := svc.UpsertOverrides(ctx, id, []OverrideInput{
		{Date: "2026-03-10", TimeSlot: "8:00 AM", IsAvailable: true},
		{Date: "2026-03-11", TimeSlot: "10:00 AM", IsAvailable: true},
	})
	if err != nil {
		t.Fatalf("UpsertOverrides() error = %v", err)
	}

	second, err := svc.UpsertOverrides(ctx, id, []OverrideInput{
		{Date: "2026-03-10", TimeSlot: "08:00 AM", IsAvailable: false},
	})
	if err != nil {
		t.Fatalf("UpsertOverrides() error = %v", err)
	}
	if second[0].ID != first[0].ID {
		t.Errorf("upsert inserted a new row %s instead of updating %s", second[0].ID, first[0].ID)
	}

	rows, err := svc.ListOverrides(ctx, id, "2026-03-10", "2026-03-10")
	if err != nil {
		t.Fatalf("ListOverrides() error = %v", err)
	}
	if len(rows) != 1 || rows[0].IsAvailable {
		t.Errorf("ListOverrides() = %+v, want one unavailable row", rows)
	}
}

func TestUpsertOverridesValidation(t *testing.T) {
	_, svc, id := setup(t)
	tests := []struct {
		name    string
		entries []OverrideInput
		field   string
	}{
		{"empty batch", nil, "entries"},
		{"bad date", []OverrideInput{{Date: "2026-02-30", TimeSlot: "08:00 AM"}}, "entries[0].date"},
		{"bad slot", []OverrideInput{{Date: "2026-03-10", TimeSlot: "8am"}}, "entries[0].time_slot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpsertOverrides(context.Background(), id, tt.entries)
			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("UpsertOverrides() error = %v, want validation error", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("fields = %v, want %s", verr.Fields, tt.field)
			}
		})
	}
}

func TestDeleteOverride(t *testing.T) {
	_, svc, id := setup(t)
	ctx := context.Background()
	if _, err := svc.UpsertOverrides(ctx, id, []OverrideInput{{Date: "2026-03-10", TimeSlot: "08:00 AM", IsAvailable: true}}); err != nil {
		t.Fatalf("UpsertOverrides() error = %v", err)
	}
	if err := svc.DeleteOverride(ctx, id, "2026-03-10", "8:00 am"); err != nil {
		t.Fatalf("DeleteOverride() error = %v", err)
	}
	if err := svc.DeleteOverride(ctx, id, "2026-03-10", "08:00 AM"); !errors.Is(err, ErrOverrideNotFound) {
		t.Errorf("second DeleteOverride() error = %v, want ErrOverrideNotFound", err)
	}
}
