package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const DefaultDeliveryTimeout = 30 * time.Second

// Publisher hands an event to an external bus.
type Publisher interface {
	Publish(ctx context.Context, event Event, p Payload) error
}

// Async returns immediately. Events go to the bus when one is configured and
// the publish succeeds; otherwise they are delivered by a goroutine with a
// context detached from the request and bounded by timeout.
type Async struct {
	next    Notifier
	pub     Publisher
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

func NewAsync(next Notifier, pub Publisher, logger *slog.Logger) *Async {
	if logger == nil {
		logger = slog.Default()
	}
	return &Async{next: next, pub: pub, timeout: DefaultDeliveryTimeout, logger: logger}
}

func (a *Async) Notify(ctx context.Context, event Event, p Payload) error {
	if a.pub != nil {
		err := a.pub.Publish(ctx, event, p)
		if err == nil {
			return nil
		}
		a.logger.WarnContext(ctx, "notification: publish failed, delivering in process",
			"event", event, "appointment_id", p.Appointment.ID, "err", err)
	}

	detached := context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(detached, a.timeout)
		defer cancel()
		if err := a.next.Notify(ctx, event, p); err != nil && !errors.Is(err, ErrDeliveryFailed) {
			a.logger.WarnContext(ctx, "notification: delivery failed",
				"event", event, "appointment_id", p.Appointment.ID, "err", err)
		}
	}()
	return nil
}

// Wait blocks until in-process deliveries started so far have finished.
func (a *Async) Wait() {
	a.wg.Wait()
}
