package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/oilcall_backend/internal/api/http/handler"
	"github.com/Alijeyrad/oilcall_backend/pkg/authorize"
)

func (r *Router) registerCustomerRoutes(
	api fiber.Router,
	ch *handler.CustomerHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	customers := api.Group("/customers", authRequired)

	customers.Get("/", requirePerm(authorize.ResourceCustomer, authorize.ActionList), ch.List)
	customers.Get("/:id", requirePerm(authorize.ResourceCustomer, authorize.ActionRead), ch.GetByID)
}
