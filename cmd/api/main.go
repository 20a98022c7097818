package main

import (
	"log"
	"time"

	"github.com/bkoskei/classroom_exams/database"
	"github.com/bkoskei/classroom_exams/jobs"
	"github.com/bkoskei/classroom_exams/notifications"
	"github.com/bkoskei/classroom_exams/routes"
	ws "github.com/bkoskei/classroom_exams/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	database.SeedAdmin()
	database.ConnectRedis()
	notifications.InitEmailService()

	c := cron.New()
	c.AddFunc("* * * * *", jobs.FinalizeOverdueAttempts)
	c.AddFunc("*/5 * * * *", jobs.CompleteExpiredExams)
	go c.Start()
	log.Println("✅ Cron jobs for attempt expiry scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "Classroom Exams",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Classroom Exams API",
		})
	})

	routes.AuthRoutes(app)
	routes.ClassRoutes(app)
	routes.QuestionRoutes(app)
	routes.ExamRoutes(app)
	routes.StudentRoutes(app)
	routes.UploadRoutes(app)
	routes.DashboardRoutes(app)
	routes.MonitorRoutes(app)

	go ws.RunHub()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	log.Println("✅ Server is running on port 8080")
	err := app.Listen(":8080")
	if err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
