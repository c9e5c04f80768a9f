package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/oilcall_backend/config"
	"github.com/Alijeyrad/oilcall_backend/internal/api/http/handler"
	"github.com/Alijeyrad/oilcall_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/oilcall_backend/internal/service/appointment"
	"github.com/Alijeyrad/oilcall_backend/internal/service/auth"
	"github.com/Alijeyrad/oilcall_backend/internal/service/availability"
	"github.com/Alijeyrad/oilcall_backend/internal/service/customer"
	"github.com/Alijeyrad/oilcall_backend/internal/service/mechanic"
	"github.com/Alijeyrad/oilcall_backend/internal/service/schedule"
	"github.com/Alijeyrad/oilcall_backend/internal/service/timeentry"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
	"github.com/Alijeyrad/oilcall_backend/pkg/authorize"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg   *config.Config
	Redis *redis.Client `optional:"true"`
	Auth  authorize.IAuthorization
	Store store.Store

	AuthSvc         auth.Service
	AvailabilitySvc availability.Service
	AppointmentSvc  appointment.Service
	MechanicSvc     mechanic.Service
	ScheduleSvc     schedule.Service
	TimeEntrySvc    timeentry.Service
	CustomerSvc     customer.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	authRequired := middleware.AuthRequired(r.p.AuthSvc)

	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	// 3. Initialize Handlers
	authH := handler.NewAuthHandler(r.p.AuthSvc)
	availabilityH := handler.NewAvailabilityHandler(r.p.AvailabilitySvc)
	appointmentH := handler.NewAppointmentHandler(r.p.AppointmentSvc)
	mechanicH := handler.NewMechanicHandler(r.p.MechanicSvc, r.p.ScheduleSvc, r.p.TimeEntrySvc)
	scheduleH := handler.NewScheduleHandler(r.p.ScheduleSvc)
	timeEntryH := handler.NewTimeEntryHandler(r.p.TimeEntrySvc)
	customerH := handler.NewCustomerHandler(r.p.CustomerSvc)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerAuthRoutes(api, authH, authRequired)
	r.registerAvailabilityRoutes(api, availabilityH)
	r.registerAppointmentRoutes(api, appointmentH, authRequired, requirePerm)
	r.registerMechanicRoutes(api, mechanicH, authRequired, requirePerm)
	r.registerCustomerRoutes(api, customerH, authRequired, requirePerm)
	r.registerMechanicSelfRoutes(api, scheduleH, timeEntryH, appointmentH, authRequired, requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return r.p.Store.Ping(c.Context()) == nil },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
