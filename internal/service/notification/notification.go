// Package notification delivers appointment events to customers. Delivery is
// best effort: a failing channel is logged, the other channels still run, and
// request paths go through Async so a failure never reaches the booking.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/pkg/observability"
)

type Event string

const (
	EventAppointmentCreated   Event = "appointment.created"
	EventAppointmentAssigned  Event = "appointment.assigned"
	EventAppointmentCancelled Event = "appointment.cancelled"
	EventJobCompleted         Event = "job.completed"
	EventAppointmentReminder  Event = "appointment.reminder"
)

func (e Event) Valid() bool {
	switch e {
	case EventAppointmentCreated, EventAppointmentAssigned, EventAppointmentCancelled,
		EventJobCompleted, EventAppointmentReminder:
		return true
	}
	return false
}

// Payload is what every event carries. It is JSON encoded on the bus.
type Payload struct {
	Appointment  model.Appointment `json:"appointment"`
	MechanicName string            `json:"mechanic_name,omitempty"`
}

// Notifier is the outbound collaborator the service layer depends on.
type Notifier interface {
	Notify(ctx context.Context, event Event, p Payload) error
}

// Channel is one delivery medium.
type Channel interface {
	Name() string
	Handles(event Event) bool
	Deliver(ctx context.Context, event Event, p Payload) error
}

// Dispatcher fans an event out to every channel that handles it.
type Dispatcher struct {
	channels []Channel
	metrics  *observability.Metrics
	logger   *slog.Logger
}

func NewDispatcher(logger *slog.Logger, metrics *observability.Metrics, channels ...Channel) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{channels: channels, metrics: metrics, logger: logger}
}

// Notify tries every channel that handles event, whatever the others do. It
// returns ErrDeliveryFailed joined with the channel errors when any channel
// failed. A channel with no recipient for the appointment is skipped, not
// failed.
func (d *Dispatcher) Notify(ctx context.Context, event Event, p Payload) error {
	if !event.Valid() {
		return ErrUnknownEvent
	}
	var errs []error
	for _, ch := range d.channels {
		if !ch.Handles(event) {
			continue
		}
		err := ch.Deliver(ctx, event, p)
		if errors.Is(err, ErrNoRecipient) {
			d.logger.DebugContext(ctx, "notification: no recipient",
				"event", event, "channel", ch.Name(), "appointment_id", p.Appointment.ID)
			continue
		}
		d.metrics.Notification(ctx, string(event), ch.Name(), err)
		if err != nil {
			d.logger.WarnContext(ctx, "notification: delivery failed",
				"event", event,
				"channel", ch.Name(),
				"appointment_id", p.Appointment.ID,
				"job_number", p.Appointment.JobNumber,
				"err", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, errors.Join(errs...))
	}
	return nil
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event, Payload) error { return nil }
