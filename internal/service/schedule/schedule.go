package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
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

type RecurringInput struct {
	DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"`
	TimeSlot  string `json:"time_slot" validate:"required,time_slot"`
	// IsAvailable defaults to true when omitted.
	IsAvailable *bool `json:"is_available"`
}

type OverrideInput struct {
	Date        string `json:"date" validate:"required,calendar_date"`
	TimeSlot    string `json:"time_slot" validate:"required,time_slot"`
	IsAvailable bool   `json:"is_available"`
}

type recurringBatch struct {
	Entries []RecurringInput `json:"entries" validate:"dive"`
}

type overrideBatch struct {
	Entries []OverrideInput `json:"entries" validate:"required,min=1,dive"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// ReplaceRecurring swaps the technician's whole weekly schedule for
	// entries. Readers see either the old set or the new one.
	ReplaceRecurring(ctx context.Context, mechanicID uuid.UUID, entries []RecurringInput) ([]model.RecurringEntry, error)
	ListRecurring(ctx context.Context, mechanicID uuid.UUID) ([]model.RecurringEntry, error)

	UpsertOverrides(ctx context.Context, mechanicID uuid.UUID, entries []OverrideInput) ([]model.OverrideEntry, error)
	ListOverrides(ctx context.Context, mechanicID uuid.UUID, from, to string) ([]model.OverrideEntry, error)
	DeleteOverride(ctx context.Context, mechanicID uuid.UUID, date, slot string) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type scheduleService struct {
	st  store.Store
	now func() time.Time
}

func New(st store.Store) Service {
	return &scheduleService{st: st, now: time.Now}
}

func (s *scheduleService) ReplaceRecurring(ctx context.Context, mechanicID uuid.UUID, entries []RecurringInput) ([]model.RecurringEntry, error) {
	if err := validation.Struct(recurringBatch{Entries: entries}); err != nil {
		return nil, err
	}

	type key struct {
		dow  int
		slot string
	}
	latest := make(map[key]model.RecurringEntry, len(entries))
	for _, in := range entries {
		available := true
		if in.IsAvailable != nil {
			available = *in.IsAvailable
		}
		k := key{in.DayOfWeek, timeslot.Normalize(in.TimeSlot)}
		latest[k] = model.RecurringEntry{
			ID:          uuid.Must(uuid.NewV7()),
			MechanicID:  mechanicID,
			DayOfWeek:   k.dow,
			TimeSlot:    k.slot,
			IsAvailable: available,
		}
	}
	rows := make([]model.RecurringEntry, 0, len(latest))
	for _, e := range latest {
		rows = append(rows, e)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DayOfWeek != rows[j].DayOfWeek {
			return rows[i].DayOfWeek < rows[j].DayOfWeek
		}
		return timeslot.Less(rows[i].TimeSlot, rows[j].TimeSlot)
	})

	err := s.st.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.Mechanics().Lock(ctx, mechanicID); err != nil {
			return err
		}
		if err := tx.Schedules().DeleteRecurring(ctx, mechanicID); err != nil {
			return err
		}
		return tx.Schedules().InsertRecurring(ctx, rows)
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrMechanicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("replace recurring schedule: %w", err)
	}
	return rows, nil
}

func (s *scheduleService) ListRecurring(ctx context.Context, mechanicID uuid.UUID) ([]model.RecurringEntry, error) {
	rows, err := s.st.Schedules().ListRecurring(ctx, mechanicID)
	if err != nil {
		return nil, fmt.Errorf("list recurring schedule: %w", err)
	}
	return rows, nil
}

func (s *scheduleService) UpsertOverrides(ctx context.Context, mechanicID uuid.UUID, entries []OverrideInput) ([]model.OverrideEntry, error) {
	if err := validation.Struct(overrideBatch{Entries: entries}); err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]model.OverrideEntry, 0, len(entries))
	err := s.st.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := tx.Mechanics().Get(ctx, mechanicID); err != nil {
			return err
		}
		for _, in := range entries {
			o := model.OverrideEntry{
				ID:          uuid.Must(uuid.NewV7()),
				MechanicID:  mechanicID,
				Date:        in.Date,
				TimeSlot:    timeslot.Normalize(in.TimeSlot),
				IsAvailable: in.IsAvailable,
				UpdatedAt:   now,
			}
			if err := tx.Schedules().UpsertOverride(ctx, &o); err != nil {
				return err
			}
			out = append(out, o)
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrMechanicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("upsert date overrides: %w", err)
	}
	return out, nil
}

func (s *scheduleService) ListOverrides(ctx context.Context, mechanicID uuid.UUID, from, to string) ([]model.OverrideEntry, error) {
	verr := &validation.Error{}
	if from != "" && !validation.ValidDate(from) {
		verr.Add("from", "must be a date in YYYY-MM-DD format")
	}
	if to != "" && !validation.ValidDate(to) {
		verr.Add("to", "must be a date in YYYY-MM-DD format")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	rows, err := s.st.Schedules().ListOverrides(ctx, mechanicID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list date overrides: %w", err)
	}
	return rows, nil
}

func (s *scheduleService) DeleteOverride(ctx context.Context, mechanicID uuid.UUID, date, slot string) error {
	if !validation.ValidDate(date) {
		return validation.Field("date", "must be a date in YYYY-MM-DD format")
	}
	err := s.st.Schedules().DeleteOverride(ctx, mechanicID, date, timeslot.Normalize(slot))
	if errors.Is(err, store.ErrNotFound) {
		return ErrOverrideNotFound
	}
	if err != nil {
		return fmt.Errorf("delete date override: %w", err)
	}
	return nil
}
