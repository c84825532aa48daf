package routes

import (
	"github.com/earnlang/earnlang/handlers"
	"github.com/earnlang/earnlang/middleware"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.RegisterUser)
	auth.Post("/login", handlers.LoginUser)
	auth.Post("/forgot-password", handlers.ForgotPassword)
	auth.Post("/reset-password", handlers.ResetPassword)

	me := auth.Group("", middleware.Protected(), middleware.ActiveUserRequired())
	me.Get("/me", handlers.GetCurrentUser)
	me.Post("/verify-email", handlers.VerifyEmail)
	me.Post("/resend-verification", handlers.ResendVerification)
}
