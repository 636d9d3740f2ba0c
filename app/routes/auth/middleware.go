package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"swadiq-lms/app/models"
)

const actorKey = "actor"

// AuthMiddleware validates the JWT from the cookie or Authorization header and
// stores the caller in the request context
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// First try cookie
		tokenString := c.Cookies("jwt_token")

		// If no cookie, try Authorization header
		if tokenString == "" {
			auth := c.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				tokenString = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "No token found"})
		}

		claims, err := ValidateJWT(secret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Invalid token"})
		}

		actor := claims.Actor()
		c.Locals("user_id", actor.ID)
		c.Locals(actorKey, actor)

		return c.Next()
	}
}

// CurrentActor returns the caller set by AuthMiddleware, or nil
func CurrentActor(c *fiber.Ctx) *models.Actor {
	actor, _ := c.Locals(actorKey).(*models.Actor)
	return actor
}
