package handlers

import (
	"encoding/json"

	"github.com/bkoskei/classroom_exams/database"
	"github.com/bkoskei/classroom_exams/middleware"
	"github.com/bkoskei/classroom_exams/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type QuestionRequest struct {
	QuestionText  string   `json:"question_text" validate:"required,min=10,max=1000"`
	OptionA       string   `json:"option_a" validate:"required,max=255"`
	OptionB       string   `json:"option_b" validate:"required,max=255"`
	OptionC       string   `json:"option_c" validate:"required,max=255"`
	OptionD       string   `json:"option_d" validate:"required,max=255"`
	CorrectAnswer string   `json:"correct_answer" validate:"required,oneof=a b c d"`
	Subject       string   `json:"subject" validate:"max=100"`
	Difficulty    string   `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Explanation   string   `json:"explanation" validate:"max=2000"`
	Tags          []string `json:"tags"`
	ImageURL      *string  `json:"image_url"`
}

func CreateQuestion(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)

	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}

	question := models.Question{
		TeacherID:     teacherID,
		QuestionText:  req.QuestionText,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		OptionC:       req.OptionC,
		OptionD:       req.OptionD,
		CorrectAnswer: req.CorrectAnswer,
		Subject:       req.Subject,
		Difficulty:    difficulty,
		Explanation:   req.Explanation,
		ImageURL:      req.ImageURL,
		IsActive:      true,
	}
	if len(req.Tags) > 0 {
		tags, err := tagsJSON(req.Tags)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tags"})
		}
		question.Tags = tags
	}

	if err := database.DB.Create(&question).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create question"})
	}

	return c.Status(fiber.StatusCreated).JSON(question)
}

func ListQuestions(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)

	query := database.DB.Where("teacher_id = ?", teacherID)
	if subject := c.Query("subject"); subject != "" {
		query = query.Where("subject = ?", subject)
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("question_text LIKE ?", "%"+search+"%")
	}
	switch c.Query("status") {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	var questions []models.Question
	if err := query.Order("created_at DESC").Find(&questions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list questions"})
	}
	return c.JSON(questions)
}

func GetQuestion(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)
	questionID := c.Params("questionId")

	var question models.Question
	if err := database.DB.First(&question, "id = ?", questionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	if question.TeacherID != teacherID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this question"})
	}

	var usageCount int64
	database.DB.Model(&models.ExamQuestion{}).Where("question_id = ?", question.ID).Count(&usageCount)

	return c.JSON(fiber.Map{
		"question":    question,
		"usage_count": usageCount,
	})
}

func UpdateQuestion(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)
	questionID := c.Params("questionId")

	var question models.Question
	if err := database.DB.First(&question, "id = ?", questionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	if question.TeacherID != teacherID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this question"})
	}

	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	question.QuestionText = req.QuestionText
	question.OptionA = req.OptionA
	question.OptionB = req.OptionB
	question.OptionC = req.OptionC
	question.OptionD = req.OptionD
	question.CorrectAnswer = req.CorrectAnswer
	question.Subject = req.Subject
	if req.Difficulty != "" {
		question.Difficulty = req.Difficulty
	}
	question.Explanation = req.Explanation
	question.ImageURL = req.ImageURL
	if len(req.Tags) > 0 {
		tags, err := tagsJSON(req.Tags)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tags"})
		}
		question.Tags = tags
	}
	if err := database.DB.Save(&question).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update question"})
	}

	return c.JSON(question)
}

// DeleteQuestion refuses to remove a question any exam still references;
// exams must keep their question sets intact for scored attempts.
func DeleteQuestion(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)
	questionID := c.Params("questionId")

	var question models.Question
	if err := database.DB.First(&question, "id = ?", questionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	if question.TeacherID != teacherID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this question"})
	}

	var usageCount int64
	database.DB.Model(&models.ExamQuestion{}).Where("question_id = ?", question.ID).Count(&usageCount)
	if usageCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Cannot delete a question that is used in an exam"})
	}

	if err := database.DB.Delete(&question).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete question"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func DuplicateQuestion(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)
	questionID := c.Params("questionId")

	var question models.Question
	if err := database.DB.First(&question, "id = ?", questionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	if question.TeacherID != teacherID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this question"})
	}

	dup := question
	dup.ID = uuid.Nil
	dup.QuestionText = question.QuestionText + " (Copy)"
	if err := database.DB.Create(&dup).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to duplicate question"})
	}

	return c.Status(fiber.StatusCreated).JSON(dup)
}

func ToggleQuestionStatus(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)
	questionID := c.Params("questionId")

	var question models.Question
	if err := database.DB.First(&question, "id = ?", questionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	if question.TeacherID != teacherID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this question"})
	}

	question.IsActive = !question.IsActive
	if err := database.DB.Save(&question).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update question"})
	}
	return c.JSON(question)
}

func tagsJSON(tags []string) (datatypes.JSON, error) {
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
