package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/oilcall_backend/config"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
	"github.com/Alijeyrad/oilcall_backend/internal/store/memstore"
	"github.com/Alijeyrad/oilcall_backend/internal/store/sqlstore"
	"github.com/Alijeyrad/oilcall_backend/pkg/authorize"
	"github.com/Alijeyrad/oilcall_backend/pkg/database"
	"github.com/Alijeyrad/oilcall_backend/pkg/email"
	"github.com/Alijeyrad/oilcall_backend/pkg/jobnumber"
	"github.com/Alijeyrad/oilcall_backend/pkg/observability"
	redispkg "github.com/Alijeyrad/oilcall_backend/pkg/redis"
	s3pkg "github.com/Alijeyrad/oilcall_backend/pkg/s3"
	"github.com/Alijeyrad/oilcall_backend/pkg/sms"
	"github.com/Alijeyrad/oilcall_backend/pkg/util/password"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideSQLDriver),
	fx.Provide(ProvideStore),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideJobCounter),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideMetrics),
	fx.Provide(ProvideS3Client),
	fx.Provide(ProvideNatsClient),
	fx.Provide(ProvidePasswordHasher),
)

// ProvideLogger hands the process logger, set up by the command before fx
// starts, to constructors that take one.
func ProvideLogger() *slog.Logger {
	return slog.Default()
}

// ProvideSQLDriver returns nil with the memory driver.
func ProvideSQLDriver(lc fx.Lifecycle, cfg *config.Config) (*entsql.Driver, error) {
	if strings.EqualFold(cfg.Database.Driver, config.DriverMemory) {
		return nil, nil
	}
	drv, err := database.OpenDriver(context.Background(), cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Migrations.AutoMigrate {
		if err := sqlstore.Migrate(context.Background(), drv, cfg.JobNumber.Start); err != nil {
			_ = drv.Close()
			return nil, err
		}
		slog.Info("database schema migrated")
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return drv.Close()
		},
	})
	return drv, nil
}

func ProvideStore(drv *entsql.Driver) store.Store {
	if drv == nil {
		slog.Warn("using in-memory store; data is lost on restart")
		return memstore.New()
	}
	return sqlstore.New(drv)
}

// ProvideRedis returns nil when no address is configured. Sessions then live
// in process memory and rate limiting is disabled.
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	rdb, err := redispkg.NewRedisFromCentral(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideJobCounter(cfg *config.Config, drv *entsql.Driver, rdb *redis.Client) (jobnumber.Counter, error) {
	switch strings.ToLower(cfg.JobNumber.Backend) {
	case config.JobNumberPostgres:
		if drv == nil {
			return nil, fmt.Errorf("job_number.backend postgres needs a postgres database")
		}
		return jobnumber.NewSequenceCounter(drv), nil
	case config.JobNumberRedis:
		if rdb == nil {
			return nil, fmt.Errorf("job_number.backend redis needs redis.addr")
		}
		c, err := jobnumber.NewRedisCounter(context.Background(), rdb, cfg.JobNumber.RedisKey, cfg.JobNumber.Start)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		slog.Warn("using in-memory job numbers; numbering restarts with the process",
			"start", cfg.JobNumber.Start)
		return jobnumber.NewMemoryCounter(cfg.JobNumber.Start), nil
	}
}

func ProvideAuthorization(cfg *config.Config, logger *slog.Logger) (authorize.IAuthorization, error) {
	enforcer, err := authorize.NewEnforcer()
	if err != nil {
		return nil, err
	}
	baseAuth, err := authorize.NewAuthorization(enforcer)
	if err != nil {
		return nil, err
	}
	if err := authorize.SeedDefaultPolicies(context.Background(), baseAuth); err != nil {
		return nil, err
	}
	if !cfg.Authorization.EnableAudit {
		return baseAuth, nil
	}
	return authorize.NewAuditedAuthorization(baseAuth, logger), nil
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email)
}

func ProvideSMSClient(cfg *config.Config) (*sms.Client, error) {
	return sms.NewFromConfig(cfg.SMS)
}

func ProvideS3Client(cfg *config.Config) (*s3pkg.Client, error) {
	return s3pkg.New(context.Background(), cfg.S3)
}

func ProvidePasswordHasher(cfg *config.Config) *password.Hasher {
	return password.NewHasher(password.FromCentralConfig(cfg.Password))
}

// ProvideNatsClient returns nil when NATS is disabled; notifications are then
// delivered in process.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if !cfg.Nats.Enabled {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL, nats.Name(cfg.Observability.ServiceName))
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", cfg.Nats.URL, err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

// ProvideMetrics depends on the OTel provider so instruments are created
// after the global meter provider is installed.
func ProvideMetrics(_ *observability.Provider) *observability.Metrics {
	return observability.NewMetrics()
}
