package middleware

import (
	config "github.com/earnlang/earnlang/configs"
	"github.com/earnlang/earnlang/database"
	"github.com/earnlang/earnlang/models"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
)

func Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(config.Config("JWT_SECRET")),
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

// ActiveUserRequired resolves the authenticated user from the database and
// rejects banned accounts. The user row is stored in locals for handlers
// that need more than the claims.
func ActiveUserRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Locals("user").(*jwt.Token)
		claims := token.Claims.(jwt.MapClaims)
		userID := claims["user_id"].(string)

		var user models.User
		if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token is not valid",
			})
		}

		if user.IsBanned {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Account is banned",
			})
		}

		c.Locals("currentUser", &user)
		return c.Next()
	}
}

// AdminRequired checks the admin flag against the user row rather than the
// token claims, so revoking admin takes effect immediately.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Locals("user").(*jwt.Token)
		claims := token.Claims.(jwt.MapClaims)
		userID := claims["user_id"].(string)

		var user models.User
		if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User not found",
			})
		}

		if !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Admin access required",
			})
		}

		if user.IsBanned {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Account is banned",
			})
		}

		c.Locals("adminUser", &user)
		return c.Next()
	}
}
