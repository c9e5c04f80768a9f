package appointment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/service/availability"
	"github.com/Alijeyrad/oilcall_backend/internal/service/customer"
	"github.com/Alijeyrad/oilcall_backend/internal/service/notification"
	"github.com/Alijeyrad/oilcall_backend/internal/store/memstore"
	"github.com/Alijeyrad/oilcall_backend/pkg/jobnumber"
	"github.com/Alijeyrad/oilcall_backend/pkg/validation"
)

const (
	tuesday    = "2026-03-10"
	dowTuesday = 2
)

type recorder struct {
	mu     sync.Mutex
	events []notification.Event
	names  []string
}

func (r *recorder) Notify(ctx context.Context, e notification.Event, p notification.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	r.names = append(r.names, p.MechanicName)
	return nil
}

func (r *recorder) last() (notification.Event, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return "", ""
	}
	return r.events[len(r.events)-1], r.names[len(r.names)-1]
}

type fixture struct {
	t        *testing.T
	st       *memstore.Store
	svc      Service
	notified *recorder
	manager  model.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := &recorder{}
	svc := New(Params{
		Store:        st,
		Availability: availability.New(st, logger),
		Customers:    customer.New(st),
		Counter:      jobnumber.NewMemoryCounter(1000),
		Notifier:     rec,
		Logger:       logger,
		Region:       "US",
	})
	return &fixture{t: t, st: st, svc: svc, notified: rec, manager: model.ManagerActor(uuid.New())}
}

// mechanic creates a technician available on Tuesdays in slots.
func (f *fixture) mechanic(name string, slots ...string) uuid.UUID {
	f.t.Helper()
	ctx := context.Background()
	m := model.Mechanic{ID: uuid.New(), Name: name, IsPublic: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := f.st.Mechanics().Create(ctx, &m); err != nil {
		f.t.Fatalf("create mechanic: %v", err)
	}
	entries := make([]model.RecurringEntry, len(slots))
	for i, s := range slots {
		entries[i] = model.RecurringEntry{ID: uuid.New(), MechanicID: m.ID, DayOfWeek: dowTuesday, TimeSlot: s, IsAvailable: true}
	}
	if err := f.st.Schedules().InsertRecurring(ctx, entries); err != nil {
		f.t.Fatalf("insert recurring: %v", err)
	}
	return m.ID
}

func request(email string, mechanicID *uuid.UUID) BookRequest {
	return BookRequest{
		CustomerName:  "Dana Reyes",
		CustomerEmail: email,
		CustomerPhone: "(201) 555-0123",
		Address:       "12 Elm St",
		Vehicle:       VehicleInput{Make: "Honda", Model: "Civic", Year: 2019, Plate: "abc123"},
		ServiceType:   "Oil Change",
		Date:          tuesday,
		TimeSlot:      "8:00 AM",
		MechanicID:    mechanicID,
	}
}

func (f *fixture) book(req BookRequest) *model.Appointment {
	f.t.Helper()
	a, err := f.svc.Book(context.Background(), req)
	if err != nil {
		f.t.Fatalf("Book() error = %v", err)
	}
	return a
}

func TestBook(t *testing.T) {
	f := newFixture(t)
	mech := f.mechanic("Ana", "08:00 AM")

	a := f.book(request("Dana@Example.com", &mech))

	if a.Status != model.StatusScheduled || a.PaymentStatus != model.PaymentPending {
		t.Errorf("status = %s/%s, want scheduled/pending", a.Status, a.PaymentStatus)
	}
	if a.TimeSlot != "08:00 AM" {
		t.Errorf("TimeSlot = %q, want normalized 08:00 AM", a.TimeSlot)
	}
	if a.CustomerPhone != "+12015550123" {
		t.Errorf("CustomerPhone = %q, want E.164", a.CustomerPhone)
	}
	if a.CustomerEmail != "dana@example.com" {
		t.Errorf("CustomerEmail = %q, want lower case", a.CustomerEmail)
	}
	if a.Vehicle.Plate != "ABC123" {
		t.Errorf("Plate = %q", a.Vehicle.Plate)
	}
	if a.JobNumber != 1000 {
		t.Errorf("JobNumber = %d, want 1000", a.JobNumber)
	}
	if a.CustomerID == nil {
		t.Fatal("CustomerID not set")
	}
	c, err := f.st.Customers().Get(context.Background(), *a.CustomerID)
	if err != nil || c.Email != "dana@example.com" {
		t.Errorf("customer = %+v, %v", c, err)
	}
	if e, name := f.notified.last(); e != notification.EventAppointmentCreated || name != "Ana" {
		t.Errorf("notified %q for %q, want appointment.created for Ana", e, name)
	}
}

func TestBookWithoutMechanic(t *testing.T) {
	f := newFixture(t)
	a := f.book(request("walkin@example.com", nil))
	if a.MechanicID != nil {
		t.Errorf("MechanicID = %v, want unassigned", a.MechanicID)
	}
}

func TestBookValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(r *BookRequest)
		field string
	}{
		{name: "missing name", edit: func(r *BookRequest) { r.CustomerName = "" }, field: "customer_name"},
		{name: "bad email", edit: func(r *BookRequest) { r.CustomerEmail = "nope" }, field: "customer_email"},
		{name: "bad phone", edit: func(r *BookRequest) { r.CustomerPhone = "123" }, field: "customer_phone"},
		{name: "bad date", edit: func(r *BookRequest) { r.Date = "03/10/2026" }, field: "date"},
		{name: "bad slot", edit: func(r *BookRequest) { r.TimeSlot = "25:00" }, field: "time_slot"},
		{name: "bad contact preference", edit: func(r *BookRequest) { r.ContactPreference = "fax" }, field: "contact_preference"},
		{name: "missing vehicle make", edit: func(r *BookRequest) { r.Vehicle.Make = "" }, field: "vehicle.make"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := request("dana@example.com", nil)
			tt.edit(&req)

			_, err := f.svc.Book(context.Background(), req)
			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("Book() error = %v, want validation error", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("fields = %v, want %s", verr.Fields, tt.field)
			}
		})
	}
}

func TestBookUnavailableMechanic(t *testing.T) {
	f := newFixture(t)
	mech := f.mechanic("Ana", "10:00 AM")

	_, err := f.svc.Book(context.Background(), request("dana@example.com", &mech))
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("Book() error = %v, want ErrSlotUnavailable", err)
	}
	rows, _ := f.svc.ListByDate(context.Background(), tuesday, nil)
	if len(rows) != 0 {
		t.Errorf("appointments = %d, want none", len(rows))
	}
}

func TestBookLastTechnicianRace(t *testing.T) {
	f := newFixture(t)
	mech := f.mechanic("Ana", "08:00 AM")

	const callers = 2
	var (
		wg   sync.WaitGroup
		errs = make([]error, callers)
	)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := request(uuid.NewString()+"@example.com", &mech)
			_, errs[i] = f.svc.Book(context.Background(), req)
		}(i)
	}
	wg.Wait()

	var ok, refused int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrSlotUnavailable):
			refused++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || refused != 1 {
		t.Errorf("ok = %d refused = %d, want exactly one of each", ok, refused)
	}
}

func TestJobNumbersUnique(t *testing.T) {
	f := newFixture(t)
	seen := map[int64]bool{}
	for range 5 {
		a := f.book(request(uuid.NewString()+"@example.com", nil))
		if seen[a.JobNumber] {
			t.Fatalf("job number %d reused", a.JobNumber)
		}
		seen[a.JobNumber] = true
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	mech := f.mechanic("Ana", "08:00 AM")
	a := f.book(request("dana@example.com", &mech))
	ctx := context.Background()

	got, err := f.svc.Cancel(ctx, a.ID)
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if got.Status != model.StatusCancelled || got.CancelledAt == nil {
		t.Errorf("after cancel: status = %s cancelled_at = %v", got.Status, got.CancelledAt)
	}
	if e, _ := f.notified.last(); e != notification.EventAppointmentCancelled {
		t.Errorf("notified %q, want appointment.cancelled", e)
	}

	_, err = f.svc.Cancel(ctx, a.ID)
	if !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("second Cancel() error = %v, want ErrAlreadyCancelled", err)
	}
	if err.Error() != "appointment is already cancelled" {
		t.Errorf("message = %q", err.Error())
	}
	stored, _ := f.svc.Get(ctx, a.ID)
	if stored.Status != model.StatusCancelled {
		t.Errorf("status = %s, want cancelled", stored.Status)
	}

	// The slot opens up again once the booking is cancelled.
	f.book(request("other@example.com", &mech))
}

func TestCancelUnknown(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Cancel(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Cancel() error = %v, want ErrNotFound", err)
	}
}

func TestLifecycle(t *testing.T) {
	f := newFixture(t)
	mech := f.mechanic("Ana", "08:00 AM")
	a := f.book(request("dana@example.com", &mech))
	ctx := context.Background()
	actor := model.MechanicActor(mech)

	started, err := f.svc.Start(ctx, actor, a.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if started.Status != model.StatusInProgress {
		t.Errorf("status = %s, want in-progress", started.Status)
	}
	if _, err := f.svc.Start(ctx, actor, a.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Start() error = %v, want ErrInvalidTransition", err)
	}

	done, err := f.svc.Complete(ctx, actor, a.ID)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if done.Status != model.StatusCompleted || done.CompletedAt == nil {
		t.Errorf("status = %s completed_at = %v", done.Status, done.CompletedAt)
	}
	m, _ := f.st.Mechanics().Get(ctx, mech)
	if m.OilChangeCount != 1 {
		t.Errorf("OilChangeCount = %d, want 1", m.OilChangeCount)
	}
	if e, name := f.notified.last(); e != notification.EventJobCompleted || name != "Ana" {
		t.Errorf("notified %q for %q, want job.completed for Ana", e, name)
	}

	if _, err := f.svc.Complete(ctx, actor, a.ID); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("second Complete() error = %v, want ErrAlreadyCompleted", err)
	}
	if _, err := f.svc.Cancel(ctx, a.ID); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("Cancel() after complete error = %v, want ErrAlreadyCompleted", err)
	}
}

func TestCompleteNonOilService(t *testing.T) {
	f := newFixture(t)
	mech := f.mechanic("Ana", "08:00 AM")
	req := request("dana@example.com", &mech)
	req.ServiceType = "Tire Rotation"
	a := f.book(req)

	if _, err := f.svc.Complete(context.Background(), f.manager, a.ID); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	m, _ := f.st.Mechanics().Get(context.Background(), mech)
	if m.OilChangeCount != 0 {
		t.Errorf("OilChangeCount = %d, want 0", m.OilChangeCount)
	}
}

func TestWorkRequiresAssignedMechanic(t *testing.T) {
	f := newFixture(t)
	mech := f.mechanic("Ana", "08:00 AM")
	other := f.mechanic("Bo", "08:00 AM")
	a := f.book(request("dana@example.com", &mech))
	ctx := context.Background()

	tests := []struct {
		name  string
		actor model.Actor
	}{
		{name: "other mechanic", actor: model.MechanicActor(other)},
		{name: "customer", actor: model.CustomerActor()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Start(ctx, tt.actor, a.ID); !errors.Is(err, ErrForbidden) {
				t.Errorf("Start() error = %v, want ErrForbidden", err)
			}
			if _, err := f.svc.Complete(ctx, tt.actor, a.ID); !errors.Is(err, ErrForbidden) {
				t.Errorf("Complete() error = %v, want ErrForbidden", err)
			}
		})
	}
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	mech := f.mechanic("Ana", "08:00 AM")
	a := f.book(request("dana@example.com", &mech))
	ctx := context.Background()
	actor := model.MechanicActor(mech)

	steps := []struct {
		status  model.AppointmentStatus
		want    model.AppointmentStatus
		wantErr error
	}{
		{status: model.StatusScheduled, want: model.StatusScheduled},
		{status: model.StatusInProgress, want: model.StatusInProgress},
		{status: model.StatusInProgress, want: model.StatusInProgress},
		{status: model.StatusScheduled, wantErr: ErrInvalidTransition},
		{status: model.StatusCompleted, want: model.StatusCompleted},
		{status: model.StatusInProgress, wantErr: ErrAlreadyCompleted},
	}
	for i, s := range steps {
		got, err := f.svc.UpdateStatus(ctx, actor, a.ID, s.status)
		if s.wantErr != nil {
			if !errors.Is(err, s.wantErr) {
				t.Errorf("step %d: UpdateStatus(%s) error = %v, want %v", i, s.status, err, s.wantErr)
			}
			continue
		}
		if err != nil {
			t.Fatalf("step %d: UpdateStatus(%s) error = %v", i, s.status, err)
		}
		if got.Status != s.want {
			t.Errorf("step %d: status = %s, want %s", i, got.Status, s.want)
		}
	}

	if _, err := f.svc.UpdateStatus(ctx, actor, a.ID, model.StatusCancelled); !validation.IsValidation(err) {
		t.Errorf("UpdateStatus(cancelled) error = %v, want validation error", err)
	}
}

func TestAssign(t *testing.T) {
	f := newFixture(t)
	ana := f.mechanic("Ana", "08:00 AM")
	bo := f.mechanic("Bo", "10:00 AM")
	ctx := context.Background()

	t.Run("eligible", func(t *testing.T) {
		a := f.book(request("one@example.com", nil))
		got, err := f.svc.Assign(ctx, f.manager, a.ID, &ana)
		if err != nil {
			t.Fatalf("Assign() error = %v", err)
		}
		if !got.Eligible || !got.Appointment.AssignedTo(ana) {
			t.Errorf("Assign() = %+v", got)
		}
		if e, name := f.notified.last(); e != notification.EventAppointmentAssigned || name != "Ana" {
			t.Errorf("notified %q for %q", e, name)
		}
	})

	t.Run("manager override outside schedule", func(t *testing.T) {
		a := f.book(request("two@example.com", nil))
		got, err := f.svc.Assign(ctx, f.manager, a.ID, &bo)
		if err != nil {
			t.Fatalf("Assign() error = %v", err)
		}
		if got.Eligible {
			t.Error("Eligible = true, want false for an off-schedule technician")
		}
	})

	t.Run("double booking refused even for managers", func(t *testing.T) {
		a := f.book(request("three@example.com", nil))
		if _, err := f.svc.Assign(ctx, f.manager, a.ID, &ana); !errors.Is(err, ErrSlotUnavailable) {
			t.Errorf("Assign() error = %v, want ErrSlotUnavailable", err)
		}
	})

	t.Run("unknown mechanic", func(t *testing.T) {
		a := f.book(request("four@example.com", nil))
		missing := uuid.New()
		if _, err := f.svc.Assign(ctx, f.manager, a.ID, &missing); !errors.Is(err, ErrMechanicNotFound) {
			t.Errorf("Assign() error = %v, want ErrMechanicNotFound", err)
		}
	})

	t.Run("mechanics may not assign", func(t *testing.T) {
		a := f.book(request("five@example.com", nil))
		if _, err := f.svc.Assign(ctx, model.MechanicActor(ana), a.ID, &ana); !errors.Is(err, ErrForbidden) {
			t.Errorf("Assign() error = %v, want ErrForbidden", err)
		}
	})

	t.Run("cancelled appointment", func(t *testing.T) {
		a := f.book(request("six@example.com", nil))
		if _, err := f.svc.Cancel(ctx, a.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := f.svc.Assign(ctx, f.manager, a.ID, &bo); !errors.Is(err, ErrAlreadyCancelled) {
			t.Errorf("Assign() error = %v, want ErrAlreadyCancelled", err)
		}
	})

	t.Run("unassign", func(t *testing.T) {
		req := request("seven@example.com", nil)
		req.TimeSlot = "10:00 AM"
		a := f.book(req)
		if _, err := f.svc.Assign(ctx, f.manager, a.ID, &bo); err != nil {
			t.Fatal(err)
		}
		got, err := f.svc.Assign(ctx, f.manager, a.ID, nil)
		if err != nil {
			t.Fatalf("Assign(nil) error = %v", err)
		}
		if got.Appointment.MechanicID != nil {
			t.Errorf("MechanicID = %v, want nil", got.Appointment.MechanicID)
		}
	})
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ana := f.mechanic("Ana", "08:00 AM", "10:00 AM")
	ctx := context.Background()

	first := f.book(request("one@example.com", &ana))
	second := request("two@example.com", nil)
	second.TimeSlot = "10:00 AM"
	f.book(second)

	all, err := f.svc.List(ctx, ListRequest{Date: tuesday})
	if err != nil || len(all) != 2 {
		t.Fatalf("List() = %d rows, %v", len(all), err)
	}
	mine, err := f.svc.ListForMechanic(ctx, ana, ListRequest{})
	if err != nil || len(mine) != 1 || mine[0].ID != first.ID {
		t.Errorf("ListForMechanic() = %+v, %v", mine, err)
	}

	bad := model.AppointmentStatus("pending")
	if _, err := f.svc.List(ctx, ListRequest{Status: &bad, From: "tomorrow"}); !validation.IsValidation(err) {
		t.Errorf("List() error = %v, want validation error", err)
	}
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	a := f.book(request("dana@example.com", nil))
	ctx := context.Background()

	got, err := f.svc.RecordPayment(ctx, a.ID, PaymentUpdate{Status: model.PaymentPaid, Provider: "stripe", Reference: "pi_123"})
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}
	if got.PaymentStatus != model.PaymentPaid || got.PaymentReference != "pi_123" {
		t.Errorf("payment = %s %q", got.PaymentStatus, got.PaymentReference)
	}
	if _, err := f.svc.RecordPayment(ctx, a.ID, PaymentUpdate{Status: "owed"}); !validation.IsValidation(err) {
		t.Errorf("RecordPayment(owed) error = %v, want validation error", err)
	}
	if _, err := f.svc.RecordPayment(ctx, uuid.New(), PaymentUpdate{Status: model.PaymentPaid}); !errors.Is(err, ErrNotFound) {
		t.Errorf("RecordPayment(unknown) error = %v, want ErrNotFound", err)
	}
}
