// Package reminder sends the day-of reminder for every scheduled appointment.
// It runs once a day on a cron schedule and can be triggered by hand.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/service/notification"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
	"github.com/Alijeyrad/oilcall_backend/pkg/observability"
)

var ErrAlreadyStarted = errors.New("reminder scheduler already started")

// Lister returns the appointments on a date with the given status.
type Lister interface {
	ListByDate(ctx context.Context, date string, status *model.AppointmentStatus) ([]model.Appointment, error)
}

type Config struct {
	// Hour of day, 0-23, in Location.
	Hour     int
	Location *time.Location
}

// Summary reports one run.
type Summary struct {
	Date    string `json:"date"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
	Skipped bool   `json:"skipped"`
}

type Reminder struct {
	appointments Lister
	notifier     notification.Notifier
	metrics      *observability.Metrics
	logger       *slog.Logger
	cfg          Config
	now          func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func New(appointments Lister, notifier notification.Notifier, metrics *observability.Metrics, logger *slog.Logger, cfg Config) *Reminder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Reminder{
		appointments: appointments,
		notifier:     notifier,
		metrics:      metrics,
		logger:       logger,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Spec is the cron expression the scheduler fires on.
func (r *Reminder) Spec() string {
	return fmt.Sprintf("0 %d * * *", r.cfg.Hour)
}

// Start schedules the daily run. Firings missed while stopped are not
// caught up.
func (r *Reminder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return ErrAlreadyStarted
	}

	logger := cronLogger{r.logger}
	c := cron.New(
		cron.WithLocation(r.cfg.Location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(r.Spec(), r.fire); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}
	c.Start()
	r.cron = c
	r.logger.Info("reminder scheduler started", "spec", r.Spec(), "location", r.cfg.Location.String())
	return nil
}

// Stop halts the scheduler and waits for a running batch, or for ctx.
func (r *Reminder) Stop(ctx context.Context) error {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		r.logger.Info("reminder scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reminder) fire() {
	date := r.now().In(r.cfg.Location).Format(time.DateOnly)
	if _, err := r.RunOnce(context.Background(), date); err != nil {
		r.logger.Error("reminder run failed", "date", date, "err", err)
	}
}

// RunOnce sends a reminder for each scheduled appointment on date. A failed
// delivery is logged and the batch continues.
func (r *Reminder) RunOnce(ctx context.Context, date string) (Summary, error) {
	sum := Summary{Date: date}
	status := model.StatusScheduled

	rows, err := r.appointments.ListByDate(ctx, date, &status)
	if errors.Is(err, store.ErrSchemaMissing) {
		r.logger.WarnContext(ctx, "reminder: database schema missing, run skipped", "date", date)
		sum.Skipped = true
		return sum, nil
	}
	if err != nil {
		return sum, fmt.Errorf("list appointments for reminders: %w", err)
	}

	for _, a := range rows {
		err := r.notifier.Notify(ctx, notification.EventAppointmentReminder, notification.Payload{Appointment: a})
		r.metrics.Reminder(ctx, err)
		if err != nil {
			sum.Failed++
			r.logger.WarnContext(ctx, "reminder: delivery failed",
				"appointment_id", a.ID, "job_number", a.JobNumber, "err", err)
			continue
		}
		sum.Sent++
	}

	r.logger.InfoContext(ctx, "reminders sent", "date", date, "sent", sum.Sent, "failed", sum.Failed)
	return sum, nil
}

// cronLogger routes cron's own logs to slog.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
