package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the business counters. Instruments come from the global
// meter provider, so they are no-ops until InitTelemetry runs.
type Metrics struct {
	bookings      metric.Int64Counter
	rejected      metric.Int64Counter
	transitions   metric.Int64Counter
	notifications metric.Int64Counter
	reminders     metric.Int64Counter
}

func NewMetrics() *Metrics {
	meter := otel.Meter(tracerName)

	m := &Metrics{}
	m.bookings, _ = meter.Int64Counter("oilcall_bookings_total",
		metric.WithDescription("Appointments booked"), metric.WithUnit("{appointment}"))
	m.rejected, _ = meter.Int64Counter("oilcall_bookings_rejected_total",
		metric.WithDescription("Bookings refused because the slot was unavailable"), metric.WithUnit("{appointment}"))
	m.transitions, _ = meter.Int64Counter("oilcall_appointment_transitions_total",
		metric.WithDescription("Appointment status transitions"), metric.WithUnit("{transition}"))
	m.notifications, _ = meter.Int64Counter("oilcall_notifications_total",
		metric.WithDescription("Notification deliveries by event, channel and outcome"), metric.WithUnit("{notification}"))
	m.reminders, _ = meter.Int64Counter("oilcall_reminders_total",
		metric.WithDescription("Reminder dispatches by outcome"), metric.WithUnit("{reminder}"))
	return m
}

func (m *Metrics) BookingCreated(ctx context.Context, serviceType string) {
	if m == nil {
		return
	}
	m.bookings.Add(ctx, 1, metric.WithAttributes(attribute.String("service_type", serviceType)))
}

func (m *Metrics) BookingRejected(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) Transition(ctx context.Context, to string) {
	if m == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("to", to)))
}

func (m *Metrics) Notification(ctx context.Context, event, channel string, err error) {
	if m == nil {
		return
	}
	m.notifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("channel", channel),
		attribute.Bool("ok", err == nil),
	))
}

func (m *Metrics) Reminder(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.reminders.Add(ctx, 1, metric.WithAttributes(attribute.Bool("ok", err == nil)))
}
