package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/oilcall_backend/internal/api/http/handler"
)

func (r *Router) registerAuthRoutes(api fiber.Router, ah *handler.AuthHandler, authRequired fiber.Handler) {
	g := api.Group("/auth")

	g.Post("/login", ah.Login)
	g.Post("/refresh", ah.Refresh)
	g.Post("/logout", authRequired, ah.Logout)
	g.Get("/me", authRequired, ah.Me)
}
