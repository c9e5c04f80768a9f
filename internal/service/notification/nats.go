package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes events to <prefix>.<event>, for example
// oilcall.appointment.created.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

func NewNATSPublisher(nc *nats.Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{nc: nc, prefix: prefix}
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event, err)
	}
	if err := p.nc.Publish(Subject(p.prefix, event), data); err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}
	return nil
}

func Subject(prefix string, event Event) string {
	return prefix + "." + string(event)
}

// EventFromSubject reverses Subject.
func EventFromSubject(prefix, subject string) (Event, bool) {
	ev := Event(strings.TrimPrefix(subject, prefix+"."))
	if ev.Valid() && strings.HasPrefix(subject, prefix+".") {
		return ev, true
	}
	return "", false
}

// Subscribe consumes every event under prefix and hands it to n. Each message
// gets its own time-bounded context.
func Subscribe(nc *nats.Conn, prefix string, n Notifier, logger *slog.Logger) (*nats.Subscription, error) {
	sub, err := nc.QueueSubscribe(prefix+".>", "notification-workers", func(msg *nats.Msg) {
		handleMessage(n, prefix, msg.Subject, msg.Data, logger)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s.>: %w", prefix, err)
	}
	return sub, nil
}

func handleMessage(n Notifier, prefix, subject string, data []byte, logger *slog.Logger) {
	event, ok := EventFromSubject(prefix, subject)
	if !ok {
		logger.Warn("notification_worker: unknown subject", "subject", subject)
		return
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		logger.Warn("notification_worker: bad payload", "subject", subject, "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultDeliveryTimeout)
	defer cancel()
	if err := n.Notify(ctx, event, p); err != nil && !errors.Is(err, ErrDeliveryFailed) {
		logger.Warn("notification_worker: notify failed", "event", event, "err", err)
	}
}
