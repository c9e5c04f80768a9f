package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/oilcall_backend/internal/api/http/handler"
	"github.com/Alijeyrad/oilcall_backend/pkg/authorize"
)

func (r *Router) registerMechanicRoutes(
	api fiber.Router,
	mh *handler.MechanicHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	mechanics := api.Group("/mechanics")

	// public directory
	mechanics.Get("/", mh.PublicList)

	// manager; "/all" is registered ahead of "/:id"
	mechanics.Get("/all", authRequired, requirePerm(authorize.ResourceMechanic, authorize.ActionList), mh.List)
	mechanics.Post("/", authRequired, requirePerm(authorize.ResourceMechanic, authorize.ActionCreate), mh.Create)

	m := mechanics.Group("/:id", authRequired)
	m.Get("/", requirePerm(authorize.ResourceMechanic, authorize.ActionRead), mh.GetByID)
	m.Patch("/", requirePerm(authorize.ResourceMechanic, authorize.ActionUpdate), mh.Update)
	m.Delete("/", requirePerm(authorize.ResourceMechanic, authorize.ActionDelete), mh.Delete)
	m.Post("/photo", requirePerm(authorize.ResourceMechanic, authorize.ActionUpdate), mh.UploadPhoto)
	m.Get("/schedule", requirePerm(authorize.ResourceSchedule, authorize.ActionRead), mh.Schedule)
	m.Get("/time-entries", requirePerm(authorize.ResourceTimeEntry, authorize.ActionList), mh.TimeEntries)
}
