package handlers

import (
	"time"

	"github.com/bkoskei/classroom_exams/database"
	"github.com/bkoskei/classroom_exams/middleware"
	"github.com/bkoskei/classroom_exams/models"
	"github.com/bkoskei/classroom_exams/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SelectedQuestion struct {
	ID     string  `json:"id" validate:"required,uuid4"`
	Points float64 `json:"points" validate:"omitempty,gt=0,lte=100"`
}

type ExamRequest struct {
	Title                  string             `json:"title" validate:"required,max=255"`
	Description            string             `json:"description" validate:"max=1000"`
	ClassID                string             `json:"class_id" validate:"required,uuid4"`
	DurationMinutes        int                `json:"duration_minutes" validate:"required,min=5,max=480"`
	StartTime              time.Time          `json:"start_time" validate:"required"`
	EndTime                time.Time          `json:"end_time" validate:"required,gtfield=StartTime"`
	ShuffleQuestions       bool               `json:"shuffle_questions"`
	ShowResultsImmediately *bool              `json:"show_results_immediately"`
	AllowReview            *bool              `json:"allow_review"`
	PassingScore           *float64           `json:"passing_score" validate:"omitempty,min=0,max=100"`
	MaxAttempts            int                `json:"max_attempts" validate:"omitempty,min=1,max=10"`
	SelectedQuestions      []SelectedQuestion `json:"selected_questions" validate:"dive"`
}

func CreateExam(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)

	var req ExamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	classID, _ := uuid.Parse(req.ClassID)
	var class models.Class
	if err := database.DB.First(&class, "id = ? AND teacher_id = ?", classID, teacherID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please select one of your own classes"})
	}

	exam := models.Exam{
		Title:            req.Title,
		Description:      req.Description,
		TeacherID:        teacherID,
		ClassID:          classID,
		DurationMinutes:  req.DurationMinutes,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		ShuffleQuestions: req.ShuffleQuestions,
		MaxAttempts:      1,
		PassingScore:     60,
		Status:           models.ExamDraft,
	}
	applyExamOptions(&exam, &req)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&exam).Error; err != nil {
			return err
		}
		return attachQuestions(tx, &exam, teacherID, req.SelectedQuestions)
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(exam)
}

func applyExamOptions(exam *models.Exam, req *ExamRequest) {
	exam.ShowResultsImmediately = true
	if req.ShowResultsImmediately != nil {
		exam.ShowResultsImmediately = *req.ShowResultsImmediately
	}
	exam.AllowReview = true
	if req.AllowReview != nil {
		exam.AllowReview = *req.AllowReview
	}
	if req.PassingScore != nil {
		exam.PassingScore = *req.PassingScore
	}
	if req.MaxAttempts > 0 {
		exam.MaxAttempts = req.MaxAttempts
	}
}

// attachQuestions replaces the exam's question list. Position is the list
// index plus one; a missing weight defaults to a single point.
func attachQuestions(tx *gorm.DB, exam *models.Exam, teacherID uuid.UUID, selected []SelectedQuestion) error {
	if err := tx.Where("exam_id = ?", exam.ID).Delete(&models.ExamQuestion{}).Error; err != nil {
		return err
	}

	for index, sq := range selected {
		questionID, err := uuid.Parse(sq.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid question ID")
		}

		var question models.Question
		if err := tx.First(&question, "id = ? AND teacher_id = ? AND is_active = ?", questionID, teacherID, true).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "One or more selected questions are invalid")
		}

		points := sq.Points
		if points == 0 {
			points = 1
		}
		eq := models.ExamQuestion{
			ExamID:        exam.ID,
			QuestionID:    questionID,
			QuestionOrder: index + 1,
			Points:        points,
		}
		if err := tx.Create(&eq).Error; err != nil {
			return err
		}
	}

	return nil
}

func ListExams(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)

	query := database.DB.Where("teacher_id = ?", teacherID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if classID := c.Query("class_id"); classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}

	var exams []models.Exam
	if err := query.Preload("Class").Order("created_at DESC").Find(&exams).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list exams"})
	}

	stats := fiber.Map{}
	for _, status := range []string{models.ExamDraft, models.ExamPublished, models.ExamCompleted} {
		var count int64
		database.DB.Model(&models.Exam{}).Where("teacher_id = ? AND status = ?", teacherID, status).Count(&count)
		stats[status] = count
	}

	return c.JSON(fiber.Map{"exams": exams, "stats": stats})
}

func GetExam(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)

	exam, ok := loadOwnedExam(c, teacherID)
	if !ok {
		return nil
	}

	var examQuestions []models.ExamQuestion
	database.DB.Preload("Question").
		Where("exam_id = ?", exam.ID).
		Order("question_order").
		Find(&examQuestions)

	var attemptCount, completedCount int64
	database.DB.Model(&models.ExamAttempt{}).Where("exam_id = ?", exam.ID).Count(&attemptCount)
	database.DB.Model(&models.ExamAttempt{}).
		Where("exam_id = ? AND status IN ?", exam.ID,
			[]string{models.AttemptCompleted, models.AttemptSubmitted, models.AttemptTimedOut}).
		Count(&completedCount)

	return c.JSON(fiber.Map{
		"exam":            exam,
		"questions":       examQuestions,
		"can_edit":        exam.Status == models.ExamDraft,
		"attempts_count":  attemptCount,
		"completed_count": completedCount,
	})
}

func UpdateExam(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)

	exam, ok := loadOwnedExam(c, teacherID)
	if !ok {
		return nil
	}
	if exam.Status != models.ExamDraft {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Cannot edit a published exam"})
	}

	var req ExamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	classID, _ := uuid.Parse(req.ClassID)
	var class models.Class
	if err := database.DB.First(&class, "id = ? AND teacher_id = ?", classID, teacherID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please select one of your own classes"})
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		exam.Title = req.Title
		exam.Description = req.Description
		exam.ClassID = classID
		exam.DurationMinutes = req.DurationMinutes
		exam.StartTime = req.StartTime
		exam.EndTime = req.EndTime
		exam.ShuffleQuestions = req.ShuffleQuestions
		applyExamOptions(exam, &req)
		if err := tx.Save(exam).Error; err != nil {
			return err
		}
		return attachQuestions(tx, exam, teacherID, req.SelectedQuestions)
	})
	if txErr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": txErr.Error()})
	}

	services.InvalidatePaperCache(exam.ID)
	return c.JSON(exam)
}

func DeleteExam(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)

	exam, ok := loadOwnedExam(c, teacherID)
	if !ok {
		return nil
	}

	var attemptCount int64
	database.DB.Model(&models.ExamAttempt{}).Where("exam_id = ?", exam.ID).Count(&attemptCount)
	if attemptCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Cannot delete an exam that has student attempts"})
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", exam.ID).Delete(&models.ExamQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(exam).Error
	})
	if txErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete exam"})
	}

	services.InvalidatePaperCache(exam.ID)
	return c.SendStatus(fiber.StatusNoContent)
}

// PublishExam moves a draft into the published state. An exam with no
// questions cannot be published.
func PublishExam(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)

	exam, ok := loadOwnedExam(c, teacherID)
	if !ok {
		return nil
	}
	if exam.Status != models.ExamDraft {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Only draft exams can be published"})
	}

	var questionCount int64
	database.DB.Model(&models.ExamQuestion{}).Where("exam_id = ?", exam.ID).Count(&questionCount)
	if questionCount == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot publish an exam without questions"})
	}

	exam.Status = models.ExamPublished
	if err := database.DB.Save(exam).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to publish exam"})
	}

	services.InvalidatePaperCache(exam.ID)
	return c.JSON(fiber.Map{"message": "Exam published successfully", "exam": exam})
}

func DuplicateExam(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)

	exam, ok := loadOwnedExam(c, teacherID)
	if !ok {
		return nil
	}

	newExam := *exam
	newExam.ID = uuid.Nil
	newExam.Title = exam.Title + " (Copy)"
	newExam.Status = models.ExamDraft

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newExam).Error; err != nil {
			return err
		}

		var examQuestions []models.ExamQuestion
		if err := tx.Where("exam_id = ?", exam.ID).Find(&examQuestions).Error; err != nil {
			return err
		}
		for _, eq := range examQuestions {
			dup := models.ExamQuestion{
				ExamID:        newExam.ID,
				QuestionID:    eq.QuestionID,
				QuestionOrder: eq.QuestionOrder,
				Points:        eq.Points,
			}
			if err := tx.Create(&dup).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to duplicate exam"})
	}

	return c.Status(fiber.StatusCreated).JSON(newExam)
}

func ExamResults(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)

	exam, ok := loadOwnedExam(c, teacherID)
	if !ok {
		return nil
	}

	finished := []string{models.AttemptCompleted, models.AttemptSubmitted, models.AttemptTimedOut}

	var attempts []models.ExamAttempt
	database.DB.Preload("Student").
		Where("exam_id = ? AND status IN ?", exam.ID, finished).
		Order("percentage DESC").
		Find(&attempts)

	type row struct{ Avg, Max, Min *float64 }
	var agg row
	database.DB.Model(&models.ExamAttempt{}).
		Select("AVG(percentage) as avg, MAX(percentage) as max, MIN(percentage) as min").
		Where("exam_id = ? AND status IN ?", exam.ID, finished).
		Scan(&agg)

	var passed int64
	database.DB.Model(&models.ExamAttempt{}).
		Where("exam_id = ? AND status IN ? AND percentage >= ?", exam.ID, finished, exam.PassingScore).
		Count(&passed)

	passingRate := 0.0
	if len(attempts) > 0 {
		passingRate = float64(passed) / float64(len(attempts)) * 100
	}

	return c.JSON(fiber.Map{
		"exam":     exam,
		"attempts": attempts,
		"analytics": fiber.Map{
			"total_attempts": len(attempts),
			"average_score":  agg.Avg,
			"highest_score":  agg.Max,
			"lowest_score":   agg.Min,
			"passing_rate":   passingRate,
		},
	})
}

// GenerateExamReport renders a PDF results sheet and returns its URL.
func GenerateExamReport(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)

	exam, ok := loadOwnedExam(c, teacherID)
	if !ok {
		return nil
	}

	url, genErr := services.GenerateResultsReport(database.DB, exam)
	if genErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate report"})
	}

	return c.JSON(fiber.Map{"report_url": url})
}

// loadOwnedExam writes the refusal response itself; a false return means
// the handler is done.
func loadOwnedExam(c *fiber.Ctx, teacherID uuid.UUID) (*models.Exam, bool) {
	examID := c.Params("examId")

	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", examID).Error; err != nil {
		c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exam not found"})
		return nil, false
	}
	if exam.TeacherID != teacherID {
		c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this exam"})
		return nil, false
	}
	return &exam, true
}
