package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/oilcall_backend/internal/api/http/handler"
	"github.com/Alijeyrad/oilcall_backend/pkg/authorize"
)

// registerMechanicSelfRoutes serves the signed-in technician's own
// availability, time clock and jobs.
func (r *Router) registerMechanicSelfRoutes(
	api fiber.Router,
	sh *handler.ScheduleHandler,
	th *handler.TimeEntryHandler,
	ah *handler.AppointmentHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	me := api.Group("/mechanic", authRequired)

	avail := me.Group("/availability")
	avail.Get("/", requirePerm(authorize.ResourceAvailability, authorize.ActionList), sh.ListOverrides)
	avail.Post("/batch", requirePerm(authorize.ResourceAvailability, authorize.ActionUpdate), sh.UpsertOverrides)
	avail.Delete("/", requirePerm(authorize.ResourceAvailability, authorize.ActionDelete), sh.DeleteOverride)

	me.Get("/schedule", requirePerm(authorize.ResourceSchedule, authorize.ActionRead), sh.ListRecurring)
	me.Put("/schedule", requirePerm(authorize.ResourceSchedule, authorize.ActionUpdate), sh.ReplaceRecurring)

	clock := me.Group("/time-entry")
	clock.Post("/check-in", requirePerm(authorize.ResourceTimeEntry, authorize.ActionExecute), th.CheckIn)
	clock.Post("/check-out", requirePerm(authorize.ResourceTimeEntry, authorize.ActionExecute), th.CheckOut)
	clock.Get("/current", requirePerm(authorize.ResourceTimeEntry, authorize.ActionRead), th.Current)

	jobs := me.Group("/appointments")
	jobs.Get("/", requirePerm(authorize.ResourceAppointment, authorize.ActionList), ah.ListMine)
	jobs.Patch("/:id/start", requirePerm(authorize.ResourceAppointment, authorize.ActionExecute), ah.Start)
	jobs.Patch("/:id/complete", requirePerm(authorize.ResourceAppointment, authorize.ActionExecute), ah.Complete)
}
