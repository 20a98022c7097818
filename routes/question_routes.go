package routes

import (
	"github.com/bkoskei/classroom_exams/handlers"
	"github.com/bkoskei/classroom_exams/middleware"
	"github.com/gofiber/fiber/v2"
)

func QuestionRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	questions := api.Group("/questions", middleware.Protected(), middleware.TeacherRequired())
	questions.Post("", handlers.CreateQuestion)
	questions.Get("", handlers.ListQuestions)
	questions.Get("/:questionId", handlers.GetQuestion)
	questions.Put("/:questionId", handlers.UpdateQuestion)
	questions.Delete("/:questionId", handlers.DeleteQuestion)
	questions.Post("/:questionId/duplicate", handlers.DuplicateQuestion)
	questions.Patch("/:questionId/toggle-status", handlers.ToggleQuestionStatus)
}
