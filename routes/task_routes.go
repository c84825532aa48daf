package routes

import (
	"github.com/earnlang/earnlang/handlers"
	"github.com/earnlang/earnlang/middleware"
	"github.com/gofiber/fiber/v2"
)

func TaskRoutes(app *fiber.App) {
	api := app.Group("/api")

	tasks := api.Group("/tasks", middleware.Protected(), middleware.ActiveUserRequired())
	tasks.Get("", handlers.ListTasks)
	tasks.Get("/stats", handlers.GetTaskStats)
	tasks.Post("/complete/:taskId", handlers.CompleteTask)
}
