package routes

import (
	"github.com/bkoskei/classroom_exams/handlers"
	"github.com/bkoskei/classroom_exams/middleware"
	"github.com/gofiber/fiber/v2"
)

func ExamRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	exams := api.Group("/exams", middleware.Protected(), middleware.TeacherRequired())
	exams.Post("", handlers.CreateExam)
	exams.Get("", handlers.ListExams)
	exams.Get("/:examId", handlers.GetExam)
	exams.Put("/:examId", handlers.UpdateExam)
	exams.Delete("/:examId", handlers.DeleteExam)
	exams.Post("/:examId/publish", handlers.PublishExam)
	exams.Post("/:examId/duplicate", handlers.DuplicateExam)
	exams.Get("/:examId/results", handlers.ExamResults)
	exams.Post("/:examId/report", handlers.GenerateExamReport)
}
