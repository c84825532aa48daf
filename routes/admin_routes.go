package routes

import (
	"github.com/earnlang/earnlang/handlers"
	"github.com/earnlang/earnlang/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/dashboard-stats", handlers.GetDashboardStats)
	admin.Get("/recent-activity", handlers.GetRecentActivity)
	admin.Get("/stats", handlers.GetPlatformStats)

	users := admin.Group("/users")
	users.Get("", handlers.GetAllUsers)
	users.Get("/:userId", handlers.GetUserDetails)
	users.Put("/:userId", handlers.UpdateUser)

	tasks := admin.Group("/tasks")
	tasks.Get("", handlers.AdminListTasks)
	tasks.Post("", handlers.CreateTask)
	tasks.Put("/:taskId", handlers.UpdateTask)
	tasks.Delete("/:taskId", handlers.DeleteTask)

	payouts := admin.Group("/payouts")
	payouts.Get("", handlers.AdminListPayouts)
	payouts.Post("/:payoutId/approve", handlers.ApprovePayout)
	payouts.Post("/:payoutId/reject", handlers.RejectPayout)

	reports := admin.Group("/reports")
	reports.Get("/payouts", handlers.GeneratePayoutReport)
}
