package handlers

import (
	"time"

	"github.com/bkoskei/classroom_exams/database"
	"github.com/bkoskei/classroom_exams/middleware"
	"github.com/bkoskei/classroom_exams/models"
	"github.com/bkoskei/classroom_exams/utils"
	"github.com/gofiber/fiber/v2"
)

type ClassRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
	Subject     string `json:"subject" validate:"max=100"`
	MaxStudents int    `json:"max_students" validate:"omitempty,min=1,max=500"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive archived"`
}

type JoinClassRequest struct {
	ClassCode string `json:"class_code" validate:"required,len=8"`
}

func CreateClass(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)

	var req ClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	code, err := utils.GenerateUniqueClassCode(database.DB)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate class code"})
	}

	maxStudents := req.MaxStudents
	if maxStudents == 0 {
		maxStudents = 50
	}

	class := models.Class{
		Name:        req.Name,
		Description: req.Description,
		TeacherID:   teacherID,
		ClassCode:   code,
		Subject:     req.Subject,
		Status:      models.ClassActive,
		MaxStudents: maxStudents,
	}
	if err := database.DB.Create(&class).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create class"})
	}

	return c.Status(fiber.StatusCreated).JSON(class)
}

func ListClasses(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)

	var classes []models.Class
	query := database.DB.Where("teacher_id = ?", teacherID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Find(&classes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list classes"})
	}

	type classWithCount struct {
		models.Class
		StudentCount int64 `json:"student_count"`
	}

	result := make([]classWithCount, 0, len(classes))
	for _, class := range classes {
		var count int64
		database.DB.Model(&models.ClassMember{}).
			Where("class_id = ? AND status = ?", class.ID, models.MemberActive).
			Count(&count)
		result = append(result, classWithCount{Class: class, StudentCount: count})
	}

	return c.JSON(result)
}

func GetClass(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)
	classID := c.Params("classId")

	var class models.Class
	if err := database.DB.First(&class, "id = ?", classID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
	}
	if class.TeacherID != teacherID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this class"})
	}

	var members []models.ClassMember
	database.DB.Preload("User").
		Where("class_id = ? AND status = ?", class.ID, models.MemberActive).
		Order("joined_at").
		Find(&members)

	var exams []models.Exam
	database.DB.Where("class_id = ?", class.ID).Order("start_time DESC").Find(&exams)

	return c.JSON(fiber.Map{
		"class":   class,
		"members": members,
		"exams":   exams,
	})
}

func UpdateClass(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)
	classID := c.Params("classId")

	var class models.Class
	if err := database.DB.First(&class, "id = ?", classID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
	}
	if class.TeacherID != teacherID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this class"})
	}

	var req ClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	class.Name = req.Name
	class.Description = req.Description
	class.Subject = req.Subject
	if req.MaxStudents > 0 {
		class.MaxStudents = req.MaxStudents
	}
	if req.Status != "" {
		class.Status = req.Status
	}
	if err := database.DB.Save(&class).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update class"})
	}

	return c.JSON(class)
}

func DeleteClass(c *fiber.Ctx) error {
	teacherID := middleware.CurrentUserID(c)
	classID := c.Params("classId")

	var class models.Class
	if err := database.DB.First(&class, "id = ?", classID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
	}
	if class.TeacherID != teacherID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this class"})
	}

	var examCount int64
	database.DB.Model(&models.Exam{}).Where("class_id = ?", class.ID).Count(&examCount)
	if examCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Cannot delete a class that has exams"})
	}

	if err := database.DB.Delete(&class).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete class"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func JoinClass(c *fiber.Ctx) error {
	studentID := middleware.CurrentUserID(c)

	var req JoinClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var class models.Class
	if err := database.DB.
		Where("class_code = ? AND status = ?", req.ClassCode, models.ClassActive).
		First(&class).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No active class with that code"})
	}

	var existing models.ClassMember
	err := database.DB.Where("class_id = ? AND user_id = ?", class.ID, studentID).First(&existing).Error
	if err == nil {
		if existing.Status == models.MemberActive {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You are already enrolled in this class"})
		}
		// Rejoining after leaving reactivates the old membership.
		existing.Status = models.MemberActive
		existing.JoinedAt = time.Now()
		existing.LeftAt = nil
		if err := database.DB.Save(&existing).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to join class"})
		}
		return c.JSON(fiber.Map{"message": "Successfully joined the class", "class": class})
	}

	var enrolled int64
	database.DB.Model(&models.ClassMember{}).
		Where("class_id = ? AND status = ?", class.ID, models.MemberActive).
		Count(&enrolled)
	if enrolled >= int64(class.MaxStudents) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "This class is full"})
	}

	member := models.ClassMember{
		ClassID:  class.ID,
		UserID:   studentID,
		Status:   models.MemberActive,
		JoinedAt: time.Now(),
	}
	if err := database.DB.Create(&member).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to join class"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Successfully joined the class", "class": class})
}

func LeaveClass(c *fiber.Ctx) error {
	studentID := middleware.CurrentUserID(c)
	classID := c.Params("classId")

	var member models.ClassMember
	if err := database.DB.
		Where("class_id = ? AND user_id = ? AND status = ?", classID, studentID, models.MemberActive).
		First(&member).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "You are not enrolled in this class"})
	}

	now := time.Now()
	member.Status = models.MemberInactive
	member.LeftAt = &now
	if err := database.DB.Save(&member).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to leave class"})
	}

	return c.JSON(fiber.Map{"message": "Successfully left the class"})
}

func MyClasses(c *fiber.Ctx) error {
	studentID := middleware.CurrentUserID(c)

	var memberships []models.ClassMember
	if err := database.DB.Preload("Class").Preload("Class.Teacher").
		Where("user_id = ? AND status = ?", studentID, models.MemberActive).
		Find(&memberships).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list classes"})
	}

	type enrolledClass struct {
		models.Class
		JoinedAt time.Time `json:"joined_at"`
	}

	result := make([]enrolledClass, 0, len(memberships))
	for _, m := range memberships {
		result = append(result, enrolledClass{Class: m.Class, JoinedAt: m.JoinedAt})
	}

	return c.JSON(result)
}
