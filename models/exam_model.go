package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ExamDraft     = "draft"
	ExamPublished = "published"
	ExamCompleted = "completed"
	ExamArchived  = "archived"
)

type Exam struct {
	ID                     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Title                  string    `gorm:"size:255;not null" json:"title"`
	Description            string    `gorm:"type:text" json:"description"`
	TeacherID              uuid.UUID `gorm:"type:uuid;not null;index" json:"teacher_id"`
	ClassID                uuid.UUID `gorm:"type:uuid;not null;index" json:"class_id"`
	DurationMinutes        int       `gorm:"not null" json:"duration_minutes"`
	StartTime              time.Time `gorm:"not null;index" json:"start_time"`
	EndTime                time.Time `gorm:"not null;index" json:"end_time"`
	ShuffleQuestions       bool      `gorm:"default:false" json:"shuffle_questions"`
	ShowResultsImmediately bool      `gorm:"default:true" json:"show_results_immediately"`
	AllowReview            bool      `gorm:"default:true" json:"allow_review"`
	PassingScore           float64   `gorm:"type:decimal(5,2);default:60" json:"passing_score"`
	MaxAttempts            int       `gorm:"not null;default:1" json:"max_attempts"`
	Status                 string    `gorm:"size:20;not null;default:'draft';index" json:"status"`

	Teacher User  `gorm:"foreignkey:TeacherID" json:"teacher,omitempty"`
	Class   Class `gorm:"foreignkey:ClassID" json:"class,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Exam) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// WithinWindow reports whether t falls inside the exam's availability window.
func (e *Exam) WithinWindow(t time.Time) bool {
	return !t.Before(e.StartTime) && !t.After(e.EndTime)
}

// ExamQuestion links a bank question into an exam with an exam-specific
// position and point weight. Order and points belong to the exam, not the
// question, so many exams can reuse one question with different weights.
type ExamQuestion struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ExamID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_exam_question;uniqueIndex:idx_exam_order" json:"exam_id"`
	QuestionID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_exam_question" json:"question_id"`
	QuestionOrder int       `gorm:"not null;uniqueIndex:idx_exam_order" json:"question_order"`
	Points        float64   `gorm:"type:decimal(5,2);not null;default:1" json:"points"`

	Exam     Exam     `gorm:"foreignkey:ExamID" json:"-"`
	Question Question `gorm:"foreignkey:QuestionID" json:"question,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (eq *ExamQuestion) BeforeCreate(tx *gorm.DB) error {
	if eq.ID == uuid.Nil {
		eq.ID = uuid.New()
	}
	return nil
}
