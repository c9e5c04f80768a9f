package availability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
	"github.com/Alijeyrad/oilcall_backend/pkg/timeslot"
	"github.com/Alijeyrad/oilcall_backend/pkg/validation"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Decision is the outcome of an assignment check that did not fail.
// Eligible is false only for manager overrides of the schedule.
type Decision struct {
	Eligible bool
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Resolve lists every slot on date with at least one available technician.
	Resolve(ctx context.Context, date string) ([]SlotAvailability, error)
	// MechanicsForSlot lists technicians available on date in slot. Stored
	// and requested slots are both normalized before comparison.
	MechanicsForSlot(ctx context.Context, date, slot string) ([]model.MechanicRef, error)
	IsEligible(ctx context.Context, date, slot string, mechanicID uuid.UUID) (bool, error)

	// CheckAssignment decides whether actor may put mechanicID on date/slot.
	// Customers need an eligible, free technician. Managers may override
	// eligibility but never double book. exclude skips the appointment being
	// reassigned.
	CheckAssignment(ctx context.Context, actor model.Actor, date, slot string, mechanicID uuid.UUID, exclude *uuid.UUID) (Decision, error)

	// WithStore binds the service to st, typically a transaction.
	WithStore(st store.Store) Service
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type availabilityService struct {
	st     store.Store
	logger *slog.Logger
}

func New(st store.Store, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &availabilityService{st: st, logger: logger}
}

func (s *availabilityService) WithStore(st store.Store) Service {
	return &availabilityService{st: st, logger: s.logger}
}

// Weekday returns the day of week of a YYYY-MM-DD date, 0 = Sunday.
func Weekday(date string) (int, error) {
	if !validation.ValidDate(date) {
		return 0, validation.Field("date", "must be a date in YYYY-MM-DD format")
	}
	t, _ := time.ParseInLocation(time.DateOnly, date, time.Local)
	return int(t.Weekday()), nil
}

// rows loads both layers for date. Slots are matched after normalization, so
// rows stored under any spelling take part.
func (s *availabilityService) rows(ctx context.Context, date string) ([]Row, error) {
	dow, err := Weekday(date)
	if err != nil {
		return nil, err
	}

	recurring, err := s.st.Schedules().AvailableRecurring(ctx, dow)
	if err != nil {
		return nil, fmt.Errorf("load recurring availability: %w", err)
	}
	overrides, err := s.st.Schedules().AvailableOverrides(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load date overrides: %w", err)
	}

	rows := rowsFrom(SourceRecurring, recurring)
	return append(rows, rowsFrom(SourceOverride, overrides)...), nil
}

func (s *availabilityService) Resolve(ctx context.Context, date string) ([]SlotAvailability, error) {
	rows, err := s.rows(ctx, date)
	if err != nil {
		return nil, err
	}
	return group(rows), nil
}

func (s *availabilityService) MechanicsForSlot(ctx context.Context, date, slot string) ([]model.MechanicRef, error) {
	if slot == "" {
		return nil, validation.Field("time_slot", "is required")
	}
	rows, err := s.rows(ctx, date)
	if err != nil {
		return nil, err
	}

	want := timeslot.Normalize(slot)
	for _, g := range group(rows) {
		if g.TimeSlot == want {
			return g.Mechanics, nil
		}
	}
	return []model.MechanicRef{}, nil
}

func (s *availabilityService) IsEligible(ctx context.Context, date, slot string, mechanicID uuid.UUID) (bool, error) {
	mechanics, err := s.MechanicsForSlot(ctx, date, slot)
	if err != nil {
		return false, err
	}
	for _, m := range mechanics {
		if m.ID == mechanicID {
			return true, nil
		}
	}
	return false, nil
}

func (s *availabilityService) CheckAssignment(ctx context.Context, actor model.Actor, date, slot string, mechanicID uuid.UUID, exclude *uuid.UUID) (Decision, error) {
	eligible, err := s.IsEligible(ctx, date, slot, mechanicID)
	if err != nil {
		return Decision{}, err
	}
	if !eligible {
		if !actor.IsManager() {
			return Decision{}, slotUnavailable(date, slot)
		}
		s.logger.WarnContext(ctx, "availability: manager assigned technician outside their schedule",
			"mechanic_id", mechanicID, "date", date, "time_slot", slot, "manager_id", actor.ID)
	}

	busy, err := s.st.Appointments().HasLiveBooking(ctx, mechanicID, date, timeslot.Normalize(slot), exclude)
	if err != nil {
		return Decision{}, fmt.Errorf("check slot occupancy: %w", err)
	}
	if busy {
		return Decision{}, slotUnavailable(date, slot)
	}
	return Decision{Eligible: eligible}, nil
}
