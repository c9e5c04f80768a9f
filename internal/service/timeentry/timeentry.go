package timeentry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
	"github.com/Alijeyrad/oilcall_backend/pkg/validation"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Entry is a time entry with its worked duration, computed up to now for an
// open entry.
type Entry struct {
	model.TimeEntry
	WorkedSeconds int64 `json:"worked_seconds"`
}

// Report lists a technician's entries for a date range.
type Report struct {
	MechanicID   uuid.UUID `json:"mechanic_id"`
	Entries      []Entry   `json:"entries"`
	TotalSeconds int64     `json:"total_seconds"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	CheckIn(ctx context.Context, mechanicID uuid.UUID) (*model.TimeEntry, error)
	CheckOut(ctx context.Context, mechanicID uuid.UUID) (*Entry, error)
	// Current returns the open entry, or nil when the technician is checked out.
	Current(ctx context.Context, mechanicID uuid.UUID) (*Entry, error)
	// List reports entries checked in on dates from through to, inclusive.
	List(ctx context.Context, mechanicID uuid.UUID, from, to string) (*Report, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type timeEntryService struct {
	st     store.Store
	logger *slog.Logger
	loc    *time.Location
	now    func() time.Time
}

// New builds the service. loc is the business time zone that report dates
// are interpreted in.
func New(st store.Store, logger *slog.Logger, loc *time.Location) Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &timeEntryService{st: st, logger: logger, loc: loc, now: time.Now}
}

func (s *timeEntryService) entry(e model.TimeEntry) *Entry {
	return &Entry{TimeEntry: e, WorkedSeconds: int64(e.Worked(s.now()).Seconds())}
}

func (s *timeEntryService) CheckIn(ctx context.Context, mechanicID uuid.UUID) (*model.TimeEntry, error) {
	e := model.TimeEntry{
		ID:          uuid.Must(uuid.NewV7()),
		MechanicID:  mechanicID,
		CheckInTime: s.now(),
	}
	err := s.st.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := tx.Mechanics().Get(ctx, mechanicID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrMechanicNotFound
			}
			return err
		}
		open, err := tx.TimeEntries().Open(ctx, mechanicID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if open != nil {
			return ErrAlreadyCheckedIn
		}
		return tx.TimeEntries().Create(ctx, &e)
	})
	switch {
	case errors.Is(err, store.ErrConflict):
		// A concurrent check-in won the partial unique index.
		return nil, ErrAlreadyCheckedIn
	case errors.Is(err, ErrAlreadyCheckedIn), errors.Is(err, ErrMechanicNotFound):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("check in: %w", err)
	}

	s.logger.InfoContext(ctx, "mechanic checked in", "mechanic_id", mechanicID, "time_entry_id", e.ID)
	return &e, nil
}

func (s *timeEntryService) CheckOut(ctx context.Context, mechanicID uuid.UUID) (*Entry, error) {
	var closed *model.TimeEntry
	err := s.st.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		open, err := tx.TimeEntries().Open(ctx, mechanicID)
		if err != nil {
			return err
		}
		closed, err = tx.TimeEntries().Close(ctx, open.ID, s.now())
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotCheckedIn
	}
	if err != nil {
		return nil, fmt.Errorf("check out: %w", err)
	}

	out := s.entry(*closed)
	s.logger.InfoContext(ctx, "mechanic checked out",
		"mechanic_id", mechanicID, "time_entry_id", closed.ID, "worked_seconds", out.WorkedSeconds)
	return out, nil
}

func (s *timeEntryService) Current(ctx context.Context, mechanicID uuid.UUID) (*Entry, error) {
	open, err := s.st.TimeEntries().Open(ctx, mechanicID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get open time entry: %w", err)
	}
	return s.entry(*open), nil
}

// day parses a YYYY-MM-DD bound in the business time zone; empty is open.
func (s *timeEntryService) day(verr *validation.Error, name, v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(time.DateOnly, v, s.loc)
	if err != nil {
		verr.Add(name, "must be a date in YYYY-MM-DD format")
		return time.Time{}
	}
	return t
}

func (s *timeEntryService) List(ctx context.Context, mechanicID uuid.UUID, from, to string) (*Report, error) {
	verr := &validation.Error{}
	start := s.day(verr, "from", from)
	end := s.day(verr, "to", to)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if !end.IsZero() {
		end = end.AddDate(0, 0, 1)
	}

	rows, err := s.st.TimeEntries().List(ctx, mechanicID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}

	report := &Report{MechanicID: mechanicID, Entries: make([]Entry, 0, len(rows))}
	for _, r := range rows {
		e := s.entry(r)
		report.Entries = append(report.Entries, *e)
		report.TotalSeconds += e.WorkedSeconds
	}
	return report, nil
}
