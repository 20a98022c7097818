package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudentAnswer is the single row per (attempt, question). During the
// attempt only selected_answer and answered_at are written; correctness and
// points are filled in once, at grading time.
type StudentAnswer struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	AttemptID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_attempt_question" json:"attempt_id"`
	QuestionID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_attempt_question" json:"question_id"`
	SelectedAnswer *string    `gorm:"size:1" json:"selected_answer"`
	IsCorrect      *bool      `json:"is_correct,omitempty"`
	PointsEarned   float64    `gorm:"type:decimal(5,2);not null;default:0" json:"points_earned"`
	AnsweredAt     *time.Time `json:"answered_at,omitempty"`

	Attempt  ExamAttempt `gorm:"foreignkey:AttemptID" json:"-"`
	Question Question    `gorm:"foreignkey:QuestionID" json:"question,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *StudentAnswer) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
