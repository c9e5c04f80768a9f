package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/oilcall_backend/pkg/authorize"
	"github.com/Alijeyrad/oilcall_backend/pkg/reqctx"
)

// RequirePermission checks the caller's role against the policy for
// resource and action. It must run after AuthRequired.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, ok := reqctx.IdentityFromContext(c.Context())
		if !ok {
			return fiber.ErrUnauthorized
		}

		role, ok := authorize.RoleFor(id.Role)
		if !ok {
			return fiber.ErrForbidden
		}
		if err := auth.MustEnforce(c.Context(), role, resource, action); err != nil {
			if errors.Is(err, authorize.ErrForbidden) {
				return fiber.ErrForbidden
			}
			return err
		}

		return c.Next()
	}
}
