package handlers

import (
	"errors"
	"fmt"

	"github.com/bkoskei/classroom_exams/database"
	"github.com/bkoskei/classroom_exams/middleware"
	"github.com/bkoskei/classroom_exams/models"
	"github.com/bkoskei/classroom_exams/notifications"
	"github.com/bkoskei/classroom_exams/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AnswersRequest struct {
	Answers map[string]string `json:"answers"`
}

// ListAvailableExams returns published exams from the student's active
// classes, annotated with how many attempts the student has used.
func ListAvailableExams(c *fiber.Ctx) error {
	studentID := middleware.CurrentUserID(c)

	var classIDs []uuid.UUID
	if err := database.DB.Model(&models.ClassMember{}).
		Where("user_id = ? AND status = ?", studentID, models.MemberActive).
		Pluck("class_id", &classIDs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list exams"})
	}
	if len(classIDs) == 0 {
		return c.JSON([]fiber.Map{})
	}

	var exams []models.Exam
	if err := database.DB.Preload("Class").Preload("Teacher").
		Where("class_id IN ? AND status = ?", classIDs, models.ExamPublished).
		Order("start_time DESC").
		Find(&exams).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list exams"})
	}

	result := make([]fiber.Map, 0, len(exams))
	for _, exam := range exams {
		var attemptsUsed int64
		database.DB.Model(&models.ExamAttempt{}).
			Where("exam_id = ? AND student_id = ?", exam.ID, studentID).
			Count(&attemptsUsed)

		var questionCount int64
		database.DB.Model(&models.ExamQuestion{}).Where("exam_id = ?", exam.ID).Count(&questionCount)

		result = append(result, fiber.Map{
			"exam":           exam,
			"question_count": questionCount,
			"attempts_used":  attemptsUsed,
			"attempts_left":  max(0, exam.MaxAttempts-int(attemptsUsed)),
		})
	}

	return c.JSON(result)
}

// TakeExam starts a new attempt or resumes the in-progress one and returns
// the exam paper.
func TakeExam(c *fiber.Ctx) error {
	studentID := middleware.CurrentUserID(c)

	examID, err := uuid.Parse(c.Params("examId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid exam ID"})
	}

	paper, err := services.StartOrResumeAttempt(database.DB, examID, studentID)
	if err != nil {
		return attemptError(c, err)
	}

	return c.JSON(paper)
}

func SaveProgress(c *fiber.Ctx) error {
	studentID := middleware.CurrentUserID(c)

	attemptID, err := uuid.Parse(c.Params("attemptId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid attempt ID"})
	}

	answers, err := parseAnswers(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := services.SaveProgress(database.DB, attemptID, studentID, answers); err != nil {
		return attemptError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Progress saved"})
}

func SubmitExam(c *fiber.Ctx) error {
	studentID := middleware.CurrentUserID(c)

	attemptID, err := uuid.Parse(c.Params("attemptId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid attempt ID"})
	}

	answers, err := parseAnswers(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	attempt, err := services.SubmitAttempt(database.DB, attemptID, studentID, answers)
	if err != nil {
		return attemptError(c, err)
	}

	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", attempt.ExamID).Error; err == nil && exam.ShowResultsImmediately {
		var student models.User
		if err := database.DB.First(&student, "id = ?", studentID).Error; err == nil {
			subject := fmt.Sprintf("Your results for %s", exam.Title)
			body := fmt.Sprintf(
				"<h1>Exam Submitted</h1><p>Hi %s,</p><p>Your attempt for <b>%s</b> has been scored: %.2f points (%.1f%%).</p>",
				student.FullName, exam.Title, *attempt.Score, *attempt.Percentage,
			)
			go notifications.SendEmail(student.FullName, student.Email, subject, body)
		}
	}

	return c.JSON(fiber.Map{
		"message": "Exam submitted successfully",
		"attempt": attempt,
	})
}

// ExamResult is the terminal read of an attempt; correctness detail is
// redacted by the service when the exam disables review.
func ExamResult(c *fiber.Ctx) error {
	studentID := middleware.CurrentUserID(c)

	examID, err := uuid.Parse(c.Params("examId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid exam ID"})
	}

	result, err := services.GetResult(database.DB, examID, studentID)
	if err != nil {
		return attemptError(c, err)
	}

	return c.JSON(result)
}

func parseAnswers(c *fiber.Ctx) (map[uuid.UUID]string, error) {
	var req AnswersRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, errors.New("cannot parse JSON")
	}

	answers := make(map[uuid.UUID]string, len(req.Answers))
	for key, option := range req.Answers {
		questionID, err := uuid.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("invalid question ID: %s", key)
		}
		answers[questionID] = option
	}
	return answers, nil
}

// attemptError maps the attempt engine's error taxonomy onto HTTP statuses.
func attemptError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrExamNotFound), errors.Is(err, services.ErrAttemptNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrExamNotPublished),
		errors.Is(err, services.ErrOutsideWindow),
		errors.Is(err, services.ErrNotEnrolled),
		errors.Is(err, services.ErrAttemptsExhausted),
		errors.Is(err, services.ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadySubmitted),
		errors.Is(err, services.ErrAttemptNotActive),
		errors.Is(err, services.ErrTimeExpired):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidOption),
		errors.Is(err, services.ErrUnknownQuestion):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong"})
	}
}
