package routes

import (
	"github.com/earnlang/earnlang/handlers"
	"github.com/earnlang/earnlang/middleware"
	"github.com/gofiber/fiber/v2"
)

func UserRoutes(app *fiber.App) {
	api := app.Group("/api")

	user := api.Group("/user", middleware.Protected(), middleware.ActiveUserRequired())
	user.Get("/profile", handlers.GetProfile)
	user.Get("/stats", handlers.GetUserStats)
	user.Get("/referral", handlers.GetReferralInfo)
}
