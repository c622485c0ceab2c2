package identity

import (
	"cmcs-backend/internal/config"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginHandler issues a token for the demo identity scheme. No credential is
// verified; the role comes from the provider's placeholder rules.
func LoginHandler(cfg *config.Config, provider Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		id, err := provider.Resolve(body.Email, body.Name)
		if err != nil {
			return err
		}

		token, err := GenerateToken(cfg.JWTSecret, id)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"name":  id.Name,
				"email": id.Email,
				"role":  id.Role,
			},
		})
	}
}
