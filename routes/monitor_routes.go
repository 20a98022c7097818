package routes

import (
	"github.com/bkoskei/classroom_exams/handlers"
	"github.com/bkoskei/classroom_exams/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func MonitorRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})

	api.Get("/ws/monitor", middleware.Protected(), middleware.TeacherRequired(), websocket.New(handlers.ServeMonitor))
}
