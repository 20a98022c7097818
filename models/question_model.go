package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Question struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	TeacherID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"teacher_id"`
	QuestionText  string         `gorm:"type:text;not null" json:"question_text"`
	OptionA       string         `gorm:"size:255;not null" json:"option_a"`
	OptionB       string         `gorm:"size:255;not null" json:"option_b"`
	OptionC       string         `gorm:"size:255;not null" json:"option_c"`
	OptionD       string         `gorm:"size:255;not null" json:"option_d"`
	CorrectAnswer string         `gorm:"size:1;not null" json:"correct_answer"`
	Subject       string         `gorm:"size:100;index" json:"subject"`
	Difficulty    string         `gorm:"size:10;not null;default:'medium'" json:"difficulty"`
	Explanation   string         `gorm:"type:text" json:"explanation"`
	Tags          datatypes.JSON `json:"tags,omitempty"`
	ImageURL      *string        `gorm:"size:512" json:"image_url,omitempty"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// ValidOption reports whether s is one of the four answer keys.
func ValidOption(s string) bool {
	switch s {
	case "a", "b", "c", "d":
		return true
	}
	return false
}
