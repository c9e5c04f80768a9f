package app

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/oilcall_backend/config"
	"github.com/Alijeyrad/oilcall_backend/internal/service/notification"
	"github.com/Alijeyrad/oilcall_backend/internal/service/reminder"
)

// WorkerModule registers the NATS notification worker and the daily
// reminder scheduler.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc         fx.Lifecycle
	Cfg        *config.Config
	Logger     *slog.Logger
	NC         *nats.Conn `optional:"true"`
	Dispatcher *notification.Dispatcher
	Reminder   *reminder.Reminder
}

func RegisterWorkers(p WorkerParams) {
	var sub *nats.Subscription

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if p.NC != nil {
				s, err := startNotificationWorker(p.NC, p.Cfg.Nats.SubjectPrefix, p.Dispatcher, p.Logger)
				if err != nil {
					return err
				}
				sub = s
			}
			if p.Cfg.Reminder.Enabled {
				if err := p.Reminder.Start(); err != nil {
					return err
				}
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if sub != nil {
				if err := sub.Unsubscribe(); err != nil {
					p.Logger.Warn("notification_worker: unsubscribe failed", "err", err)
				}
			}
			// Connection drain is handled by ProvideNatsClient.
			return p.Reminder.Stop(ctx)
		},
	})
}

// ---------------------------------------------------------------------------
// notification_worker
// ---------------------------------------------------------------------------

func startNotificationWorker(nc *nats.Conn, prefix string, d *notification.Dispatcher, logger *slog.Logger) (*nats.Subscription, error) {
	sub, err := notification.Subscribe(nc, prefix, d, logger)
	if err != nil {
		logger.Error("notification_worker: subscribe failed", "prefix", prefix, "err", err)
		return nil, err
	}
	logger.Info("notification_worker: started", "subject", prefix+".>")
	return sub, nil
}
