package identity

import (
	"strings"

	"cmcs-backend/internal/config"

	"github.com/gofiber/fiber/v2"
)

const ctxIdentityKey = "identity"

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header missing")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		id, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(ctxIdentityKey, id)
		return c.Next()
	}
}

// FromContext returns the identity stored by JWTMiddleware.
func FromContext(c *fiber.Ctx) (Identity, error) {
	id, ok := c.Locals(ctxIdentityKey).(Identity)
	if !ok {
		return Identity{}, fiber.NewError(fiber.StatusForbidden, "could not resolve caller identity")
	}
	return id, nil
}

func RequireRole(allowed ...Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := FromContext(c)
		if err != nil {
			return err
		}

		for _, r := range allowed {
			if r == id.Role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "you are not allowed to perform this action")
	}
}
