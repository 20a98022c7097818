package handlers

import (
	"github.com/bkoskei/classroom_exams/database"
	"github.com/bkoskei/classroom_exams/middleware"
	"github.com/bkoskei/classroom_exams/models"
	"github.com/gofiber/fiber/v2"
)

func GetDashboard(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	if middleware.CurrentRole(c) == models.RoleTeacher {
		var classes, questions, exams, published int64
		database.DB.Model(&models.Class{}).Where("teacher_id = ?", userID).Count(&classes)
		database.DB.Model(&models.Question{}).Where("teacher_id = ?", userID).Count(&questions)
		database.DB.Model(&models.Exam{}).Where("teacher_id = ?", userID).Count(&exams)
		database.DB.Model(&models.Exam{}).Where("teacher_id = ? AND status = ?", userID, models.ExamPublished).Count(&published)

		var attempts int64
		database.DB.Model(&models.ExamAttempt{}).
			Joins("JOIN exams ON exams.id = exam_attempts.exam_id").
			Where("exams.teacher_id = ?", userID).
			Count(&attempts)

		return c.JSON(fiber.Map{
			"classes":         classes,
			"questions":       questions,
			"exams":           exams,
			"published_exams": published,
			"total_attempts":  attempts,
		})
	}

	finished := []string{models.AttemptCompleted, models.AttemptSubmitted, models.AttemptTimedOut}

	var enrolled, completed int64
	database.DB.Model(&models.ClassMember{}).
		Where("user_id = ? AND status = ?", userID, models.MemberActive).
		Count(&enrolled)
	database.DB.Model(&models.ExamAttempt{}).
		Where("student_id = ? AND status IN ?", userID, finished).
		Count(&completed)

	var avg *float64
	database.DB.Model(&models.ExamAttempt{}).
		Select("AVG(percentage)").
		Where("student_id = ? AND status IN ?", userID, finished).
		Scan(&avg)

	return c.JSON(fiber.Map{
		"enrolled_classes":   enrolled,
		"completed_attempts": completed,
		"average_percentage": avg,
	})
}
