package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/oilcall_backend/config"
	"github.com/Alijeyrad/oilcall_backend/internal/service/appointment"
	"github.com/Alijeyrad/oilcall_backend/internal/service/auth"
	"github.com/Alijeyrad/oilcall_backend/internal/service/availability"
	"github.com/Alijeyrad/oilcall_backend/internal/service/customer"
	"github.com/Alijeyrad/oilcall_backend/internal/service/mechanic"
	"github.com/Alijeyrad/oilcall_backend/internal/service/notification"
	"github.com/Alijeyrad/oilcall_backend/internal/service/reminder"
	"github.com/Alijeyrad/oilcall_backend/internal/service/schedule"
	"github.com/Alijeyrad/oilcall_backend/internal/service/timeentry"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
	"github.com/Alijeyrad/oilcall_backend/pkg/email"
	"github.com/Alijeyrad/oilcall_backend/pkg/jobnumber"
	"github.com/Alijeyrad/oilcall_backend/pkg/observability"
	pasetotoken "github.com/Alijeyrad/oilcall_backend/pkg/paseto"
	s3pkg "github.com/Alijeyrad/oilcall_backend/pkg/s3"
	"github.com/Alijeyrad/oilcall_backend/pkg/sms"
	"github.com/Alijeyrad/oilcall_backend/pkg/util/password"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvidePasetoManager,
		ProvideAuthService,
		ProvideAvailabilityService,
		ProvideScheduleService,
		ProvideCustomerService,
		ProvideMechanicService,
		ProvideTimeEntryService,
		ProvideDispatcher,
		ProvideNotifier,
		ProvideAppointmentService,
		ProvideReminder,
	),
)

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}

func ProvideAuthService(
	st store.Store,
	rdb *redis.Client,
	paseto *pasetotoken.Manager,
	hasher *password.Hasher,
	logger *slog.Logger,
	cfg *config.Config,
) auth.Service {
	var sessions auth.Sessions
	if rdb != nil {
		sessions = auth.NewRedisSessions(rdb)
	} else {
		sessions = auth.NewMemorySessions()
	}
	return auth.New(st, sessions, paseto, hasher, logger, auth.Options{
		MaxLoginAttempts: cfg.Authentication.MaxLoginAttempts,
		Lockout:          time.Duration(cfg.Authentication.LockoutMinutes) * time.Minute,
	})
}

func ProvideAvailabilityService(st store.Store, logger *slog.Logger) availability.Service {
	return availability.New(st, logger)
}

func ProvideScheduleService(st store.Store) schedule.Service {
	return schedule.New(st)
}

func ProvideCustomerService(st store.Store) customer.Service {
	return customer.New(st)
}

func ProvideMechanicService(st store.Store, s3 *s3pkg.Client, hasher *password.Hasher, logger *slog.Logger) mechanic.Service {
	return mechanic.New(st, s3, hasher, logger)
}

func ProvideTimeEntryService(st store.Store, logger *slog.Logger, cfg *config.Config) timeentry.Service {
	return timeentry.New(st, logger, cfg.Server.Location())
}

// ProvideDispatcher delivers events synchronously over every channel. The
// reminder job and the NATS worker call it directly.
func ProvideDispatcher(emailCli *email.Client, smsCli *sms.Client, metrics *observability.Metrics, logger *slog.Logger) *notification.Dispatcher {
	return notification.NewDispatcher(logger, metrics,
		notification.NewEmailChannel(emailCli),
		notification.NewSMSChannel(smsCli),
	)
}

// ProvideNotifier is what request paths use: it never blocks on delivery.
func ProvideNotifier(lc fx.Lifecycle, d *notification.Dispatcher, nc *nats.Conn, cfg *config.Config, logger *slog.Logger) notification.Notifier {
	var pub notification.Publisher
	if nc != nil {
		pub = notification.NewNATSPublisher(nc, cfg.Nats.SubjectPrefix)
	}
	async := notification.NewAsync(d, pub, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			done := make(chan struct{})
			go func() {
				async.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
	return async
}

type AppointmentParams struct {
	fx.In

	Cfg          *config.Config
	Store        store.Store
	Availability availability.Service
	Customers    customer.Service
	Counter      jobnumber.Counter
	Notifier     notification.Notifier
	Metrics      *observability.Metrics
	Logger       *slog.Logger
}

func ProvideAppointmentService(p AppointmentParams) appointment.Service {
	return appointment.New(appointment.Params{
		Store:        p.Store,
		Availability: p.Availability,
		Customers:    p.Customers,
		Counter:      p.Counter,
		Notifier:     p.Notifier,
		Metrics:      p.Metrics,
		Logger:       p.Logger,
		Region:       p.Cfg.Booking.DefaultRegion,
	})
}

func ProvideReminder(
	appointments appointment.Service,
	d *notification.Dispatcher,
	metrics *observability.Metrics,
	logger *slog.Logger,
	cfg *config.Config,
) *reminder.Reminder {
	return reminder.New(appointments, d, metrics, logger, reminder.Config{
		Hour:     cfg.Reminder.Hour,
		Location: cfg.Server.Location(),
	})
}
