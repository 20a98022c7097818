package routes

import (
	"github.com/bkoskei/classroom_exams/handlers"
	"github.com/bkoskei/classroom_exams/middleware"
	"github.com/gofiber/fiber/v2"
)

func ClassRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	classes := api.Group("/classes", middleware.Protected(), middleware.TeacherRequired())
	classes.Post("", handlers.CreateClass)
	classes.Get("", handlers.ListClasses)
	classes.Get("/:classId", handlers.GetClass)
	classes.Put("/:classId", handlers.UpdateClass)
	classes.Delete("/:classId", handlers.DeleteClass)

	student := api.Group("/student/classes", middleware.Protected(), middleware.StudentRequired())
	student.Post("/join", handlers.JoinClass)
	student.Get("", handlers.MyClasses)
	student.Post("/:classId/leave", handlers.LeaveClass)
}
