package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/oilcall_backend/internal/api/http/handler"
)

// Availability is public; customers browse it before booking.
func (r *Router) registerAvailabilityRoutes(api fiber.Router, ah *handler.AvailabilityHandler) {
	g := api.Group("/availability")

	g.Get("/:date", ah.Slots)
	g.Get("/:date/:timeSlot/mechanics", ah.Mechanics)
}
