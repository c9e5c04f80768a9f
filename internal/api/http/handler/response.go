package handler

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/pkg/reqctx"
	"github.com/Alijeyrad/oilcall_backend/pkg/validation"
)

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

func created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": data})
}

func noContent(c fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func unauthorized(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
}

func forbidden(c fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
}

func notFound(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msg})
}

func conflict(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": msg})
}

func tooManyRequests(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": msg})
}

func tooLarge(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": msg})
}

func unavailable(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": msg})
}

func internalError(c fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

// validationFailed reports the per-field messages of err, if it is a
// validation.Error.
func validationFailed(c fiber.Ctx, err error) (bool, error) {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return false, nil
	}
	return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "validation failed",
		"fields": verr.Fields,
	})
}

func uuidParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

// pathParam returns the unescaped route parameter, so "08%3A00%20AM" reads
// as "08:00 AM".
func pathParam(c fiber.Ctx, name string) string {
	raw := c.Params(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func identity(c fiber.Ctx) (reqctx.Identity, bool) {
	return reqctx.IdentityFromContext(c.Context())
}

// actor returns the caller as a service actor. Requests without an identity
// are anonymous customers.
func actor(c fiber.Ctx) model.Actor {
	id, ok := identity(c)
	if !ok {
		return model.CustomerActor()
	}
	switch model.Role(id.Role) {
	case model.RoleManager:
		return model.ManagerActor(id.UserID)
	case model.RoleMechanic:
		return model.MechanicActor(id.UserID)
	}
	return model.CustomerActor()
}
