package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/oilcall_backend/internal/api/http/handler"
	"github.com/Alijeyrad/oilcall_backend/pkg/authorize"
)

func (r *Router) registerAppointmentRoutes(
	api fiber.Router,
	ah *handler.AppointmentHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	appts := api.Group("/appointments")

	// public
	appts.Post("/", ah.Book)
	appts.Post("/:id/cancel", ah.Cancel)
	appts.Get("/:id/public", ah.PublicView)

	// manager
	appts.Get("/", authRequired, requirePerm(authorize.ResourceAppointment, authorize.ActionList), ah.List)

	a := appts.Group("/:id", authRequired)
	a.Get("/", requirePerm(authorize.ResourceAppointment, authorize.ActionRead), ah.GetByID)
	a.Patch("/status", requirePerm(authorize.ResourceAppointment, authorize.ActionUpdate), ah.UpdateStatus)
	a.Patch("/assign", requirePerm(authorize.ResourceAppointment, authorize.ActionUpdate), ah.Assign)
	a.Patch("/payment", requirePerm(authorize.ResourcePayment, authorize.ActionUpdate), ah.RecordPayment)
}
