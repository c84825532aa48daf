package routes

import (
	"github.com/earnlang/earnlang/handlers"
	"github.com/earnlang/earnlang/middleware"
	"github.com/gofiber/fiber/v2"
)

func PayoutRoutes(app *fiber.App) {
	api := app.Group("/api")

	payouts := api.Group("/payouts", middleware.Protected(), middleware.ActiveUserRequired())
	payouts.Post("/request", handlers.RequestPayout)
	payouts.Get("/history", handlers.GetPayoutHistory)
	payouts.Get("/stats", handlers.GetPayoutStats)
	payouts.Post("/cancel/:payoutId", handlers.CancelPayout)
}
