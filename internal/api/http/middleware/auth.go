package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	pasetotoken "github.com/Alijeyrad/oilcall_backend/pkg/paseto"
	"github.com/Alijeyrad/oilcall_backend/pkg/reqctx"
)

// Authenticator resolves an access token to the staff member behind it.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (reqctx.Identity, error)
}

// AuthRequired validates a Bearer PASETO access token against its live
// session and attaches the caller's reqctx.Identity to the request context.
func AuthRequired(auth Authenticator) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := pasetotoken.BearerToken(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		id, err := auth.Authenticate(c.Context(), token)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.SetContext(reqctx.WithIdentity(c.Context(), id))
		return c.Next()
	}
}
