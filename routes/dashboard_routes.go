package routes

import (
	"github.com/bkoskei/classroom_exams/handlers"
	"github.com/bkoskei/classroom_exams/middleware"
	"github.com/gofiber/fiber/v2"
)

func DashboardRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/dashboard", middleware.Protected(), handlers.GetDashboard)
}
