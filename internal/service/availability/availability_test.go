package availability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/store/memstore"
	"github.com/Alijeyrad/oilcall_backend/pkg/validation"
)

const (
	tuesday     = "2026-03-10"
	nextTuesday = "2026-03-17"
	dowTuesday  = 2
)

type fixture struct {
	t   *testing.T
	st  *memstore.Store
	svc Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	return &fixture{t: t, st: st, svc: New(st, slog.New(slog.NewTextHandler(io.Discard, nil)))}
}

func (f *fixture) mechanic(name string) model.MechanicRef {
	f.t.Helper()
	m := model.Mechanic{ID: uuid.New(), Name: name, IsPublic: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := f.st.Mechanics().Create(context.Background(), &m); err != nil {
		f.t.Fatalf("create mechanic: %v", err)
	}
	return m.Ref()
}

// recurring stores slot exactly as given, like rows written before slots
// were normalized on the way in.
func (f *fixture) recurring(m model.MechanicRef, dow int, slot string, available bool) {
	f.t.Helper()
	err := f.st.Schedules().InsertRecurring(context.Background(), []model.RecurringEntry{
		{ID: uuid.New(), MechanicID: m.ID, DayOfWeek: dow, TimeSlot: slot, IsAvailable: available},
	})
	if err != nil {
		f.t.Fatalf("insert recurring: %v", err)
	}
}

func (f *fixture) override(m model.MechanicRef, date, slot string, available bool) {
	f.t.Helper()
	o := model.OverrideEntry{ID: uuid.New(), MechanicID: m.ID, Date: date, TimeSlot: slot, IsAvailable: available, UpdatedAt: time.Now()}
	if err := f.st.Schedules().UpsertOverride(context.Background(), &o); err != nil {
		f.t.Fatalf("upsert override: %v", err)
	}
}

func TestWeekday(t *testing.T) {
	tests := []struct {
		date    string
		want    int
		wantErr bool
	}{
		{date: tuesday, want: dowTuesday},
		{date: "2026-03-15", want: 0},
		{date: "2026-03-14", want: 6},
		{date: "2026-02-30", wantErr: true},
		{date: "03/10/2026", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := Weekday(tt.date)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Weekday() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Weekday() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolveTuesdayOverride(t *testing.T) {
	f := newFixture(t)
	ana := f.mechanic("Ana")
	ben := f.mechanic("Ben")
	f.recurring(ana, dowTuesday, "08:00 AM", true)
	f.override(ben, tuesday, "10:00 AM", true)

	got, err := f.svc.Resolve(context.Background(), tuesday)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := []SlotAvailability{
		{TimeSlot: "08:00 AM", Mechanics: []model.MechanicRef{ana}},
		{TimeSlot: "10:00 AM", Mechanics: []model.MechanicRef{ben}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve(%s) = %+v, want %+v", tuesday, got, want)
	}

	// The override applies to its date only.
	got, err = f.svc.Resolve(context.Background(), nextTuesday)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want = []SlotAvailability{{TimeSlot: "08:00 AM", Mechanics: []model.MechanicRef{ana}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve(%s) = %+v, want %+v", nextTuesday, got, want)
	}
}

func TestUnpaddedStoredSlotMatches(t *testing.T) {
	f := newFixture(t)
	ana := f.mechanic("Ana")
	f.recurring(ana, dowTuesday, "8:00 AM", true)

	for _, asked := range []string{"08:00 AM", "8:00 AM", "8:00 am"} {
		t.Run(asked, func(t *testing.T) {
			got, err := f.svc.MechanicsForSlot(context.Background(), tuesday, asked)
			if err != nil {
				t.Fatalf("MechanicsForSlot() error = %v", err)
			}
			if len(got) != 1 || got[0] != ana {
				t.Errorf("MechanicsForSlot(%q) = %+v, want [%v]", asked, got, ana)
			}
		})
	}

	resolved, err := f.svc.Resolve(context.Background(), tuesday)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(resolved) != 1 || resolved[0].TimeSlot != "08:00 AM" {
		t.Errorf("Resolve() = %+v, want a single 08:00 AM slot", resolved)
	}
}

// Rows written before slots were normalized on the way in may use any
// spelling. The scoped lookup and the guard must agree with Resolve on them.
func TestScopedLookupMatchesResolveForLegacySpellings(t *testing.T) {
	f := newFixture(t)
	alice := f.mechanic("Alice")
	f.override(alice, tuesday, "8:00 am", true)
	f.recurring(alice, dowTuesday, "09:00AM", true)
	f.recurring(alice, dowTuesday, " 10:30 pm ", true)
	ctx := context.Background()

	resolved, err := f.svc.Resolve(ctx, tuesday)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	for _, slot := range resolved {
		t.Run(slot.TimeSlot, func(t *testing.T) {
			got, err := f.svc.MechanicsForSlot(ctx, tuesday, slot.TimeSlot)
			if err != nil {
				t.Fatalf("MechanicsForSlot() error = %v", err)
			}
			if !reflect.DeepEqual(got, slot.Mechanics) {
				t.Errorf("MechanicsForSlot(%q) = %+v, Resolve offered %+v", slot.TimeSlot, got, slot.Mechanics)
			}
			if _, err := f.svc.CheckAssignment(ctx, model.CustomerActor(), tuesday, slot.TimeSlot, alice.ID, nil); err != nil {
				t.Errorf("CheckAssignment(%q) error = %v", slot.TimeSlot, err)
			}
		})
	}

	if len(resolved) != 3 {
		t.Errorf("Resolve() = %+v, want 08:00 AM, 09:00 AM and 10:30 PM", resolved)
	}
}

func TestResolveDeduplicatesAcrossLayers(t *testing.T) {
	f := newFixture(t)
	ana := f.mechanic("Ana")
	f.recurring(ana, dowTuesday, "9:00 AM", true)
	f.override(ana, tuesday, "09:00 AM", true)

	got, err := f.svc.Resolve(context.Background(), tuesday)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(got) != 1 || len(got[0].Mechanics) != 1 {
		t.Errorf("Resolve() = %+v, want one slot with one technician", got)
	}
}

func TestResolveOrdering(t *testing.T) {
	f := newFixture(t)
	zoe := f.mechanic("Zoe")
	ana := f.mechanic("Ana")
	f.recurring(zoe, dowTuesday, "01:00 PM", true)
	f.recurring(zoe, dowTuesday, "11:00 AM", true)
	f.recurring(ana, dowTuesday, "11:00 AM", true)
	f.recurring(ana, dowTuesday, "Afternoon", true)

	got, err := f.svc.Resolve(context.Background(), tuesday)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	var slots []string
	for _, g := range got {
		slots = append(slots, g.TimeSlot)
	}
	if want := []string{"11:00 AM", "01:00 PM", "Afternoon"}; !reflect.DeepEqual(slots, want) {
		t.Errorf("slot order = %v, want %v", slots, want)
	}
	if got[0].Mechanics[0] != ana || got[0].Mechanics[1] != zoe {
		t.Errorf("technicians not sorted by name: %+v", got[0].Mechanics)
	}
}

func TestResolveOmitsUnavailable(t *testing.T) {
	f := newFixture(t)
	ana := f.mechanic("Ana")
	f.recurring(ana, dowTuesday, "08:00 AM", false)

	got, err := f.svc.Resolve(context.Background(), tuesday)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Resolve() = %+v, want no slots", got)
	}
}

// Availability is the union of true rows, so an override marked false does
// not block the recurring entry for that day.
func TestFalseOverrideDoesNotSuppressRecurring(t *testing.T) {
	f := newFixture(t)
	ana := f.mechanic("Ana")
	f.recurring(ana, dowTuesday, "08:00 AM", true)
	f.override(ana, tuesday, "08:00 AM", false)

	ok, err := f.svc.IsEligible(context.Background(), tuesday, "08:00 AM", ana.ID)
	if err != nil {
		t.Fatalf("IsEligible() error = %v", err)
	}
	if !ok {
		t.Error("IsEligible() = false; a false override now suppresses recurring availability")
	}
}

func TestResolveRejectsBadDate(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Resolve(context.Background(), "2026-13-01"); !validation.IsValidation(err) {
		t.Errorf("Resolve() error = %v, want validation error", err)
	}
}

// A technician is listed under a slot iff some available row of either
// source names them for that slot.
func TestGroupUnionProperty(t *testing.T) {
	a := model.MechanicRef{ID: uuid.New(), Name: "A"}
	b := model.MechanicRef{ID: uuid.New(), Name: "B"}
	rows := []Row{
		{Source: SourceRecurring, Mechanic: a, Slot: "8:00 am", IsAvailable: true},
		{Source: SourceOverride, Mechanic: b, Slot: "08:00 AM", IsAvailable: false},
		{Source: SourceOverride, Mechanic: a, Slot: "08:00 AM", IsAvailable: true},
		{Source: SourceRecurring, Mechanic: b, Slot: "09:30 AM", IsAvailable: true},
	}
	got := group(rows)
	want := []SlotAvailability{
		{TimeSlot: "08:00 AM", Mechanics: []model.MechanicRef{a}},
		{TimeSlot: "09:30 AM", Mechanics: []model.MechanicRef{b}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("group() = %+v, want %+v", got, want)
	}
}

func TestCheckAssignment(t *testing.T) {
	f := newFixture(t)
	ana := f.mechanic("Ana")
	ben := f.mechanic("Ben")
	f.recurring(ana, dowTuesday, "08:00 AM", true)

	booked := model.Appointment{
		ID: uuid.New(), JobNumber: 1, Date: tuesday, TimeSlot: "08:00 AM",
		MechanicID: &ana.ID, Status: model.StatusScheduled,
	}
	ctx := context.Background()
	manager := model.ManagerActor(uuid.New())
	customer := model.CustomerActor()

	t.Run("customer eligible and free", func(t *testing.T) {
		d, err := f.svc.CheckAssignment(ctx, customer, tuesday, "8:00 AM", ana.ID, nil)
		if err != nil || !d.Eligible {
			t.Errorf("CheckAssignment() = %+v, %v", d, err)
		}
	})
	t.Run("customer ineligible", func(t *testing.T) {
		_, err := f.svc.CheckAssignment(ctx, customer, tuesday, "08:00 AM", ben.ID, nil)
		if !errors.Is(err, ErrSlotUnavailable) {
			t.Fatalf("CheckAssignment() error = %v, want ErrSlotUnavailable", err)
		}
		want := "slot 08:00 AM on 2026-03-10 is full or unavailable for the requested technician"
		if err.Error() != want {
			t.Errorf("message = %q, want %q", err.Error(), want)
		}
	})
	t.Run("manager override is advisory", func(t *testing.T) {
		d, err := f.svc.CheckAssignment(ctx, manager, tuesday, "08:00 AM", ben.ID, nil)
		if err != nil {
			t.Fatalf("CheckAssignment() error = %v", err)
		}
		if d.Eligible {
			t.Error("Eligible = true for an off-schedule technician")
		}
	})

	if err := f.st.Appointments().Create(ctx, &booked); err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	for _, actor := range []model.Actor{customer, manager} {
		t.Run("double booking refused for "+string(actor.Role), func(t *testing.T) {
			if _, err := f.svc.CheckAssignment(ctx, actor, tuesday, "08:00 AM", ana.ID, nil); !errors.Is(err, ErrSlotUnavailable) {
				t.Errorf("CheckAssignment() error = %v, want ErrSlotUnavailable", err)
			}
		})
	}
	t.Run("own appointment excluded", func(t *testing.T) {
		if _, err := f.svc.CheckAssignment(ctx, manager, tuesday, "08:00 AM", ana.ID, &booked.ID); err != nil {
			t.Errorf("CheckAssignment() error = %v", err)
		}
	})
}
