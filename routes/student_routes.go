package routes

import (
	"github.com/bkoskei/classroom_exams/handlers"
	"github.com/bkoskei/classroom_exams/middleware"
	"github.com/gofiber/fiber/v2"
)

func StudentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	student := api.Group("/student/exams", middleware.Protected(), middleware.StudentRequired())
	student.Get("", handlers.ListAvailableExams)
	student.Post("/:examId/take", handlers.TakeExam)
	student.Post("/attempts/:attemptId/progress", handlers.SaveProgress)
	student.Post("/attempts/:attemptId/submit", handlers.SubmitExam)
	student.Get("/:examId/result", handlers.ExamResult)
}
