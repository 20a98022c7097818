package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AttemptNotStarted = "not_started"
	AttemptInProgress = "in_progress"
	AttemptCompleted  = "completed"
	AttemptSubmitted  = "submitted"
	AttemptTimedOut   = "timed_out"
)

type ExamAttempt struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ExamID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_attempt_exam_student" json:"exam_id"`
	StudentID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_attempt_exam_student" json:"student_id"`
	AttemptNumber int        `gorm:"not null;default:1" json:"attempt_number"`
	StartedAt     time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	Score         *float64   `gorm:"type:decimal(7,2)" json:"score,omitempty"`
	Percentage    *float64   `gorm:"type:decimal(5,2)" json:"percentage,omitempty"`
	TotalQuestions int       `gorm:"not null;default:0" json:"total_questions"`
	CorrectAnswers int       `gorm:"not null;default:0" json:"correct_answers"`
	WrongAnswers   int       `gorm:"not null;default:0" json:"wrong_answers"`
	Unanswered     int       `gorm:"not null;default:0" json:"unanswered"`
	Status         string    `gorm:"size:20;not null;default:'not_started';index" json:"status"`

	// QuestionOrder pins the presentation order decided when the attempt
	// was created, so a shuffled exam keeps stable numbering across page
	// reloads and resumes. Stored as a JSON array of question IDs.
	QuestionOrder datatypes.JSON `json:"question_order,omitempty"`

	Exam    Exam `gorm:"foreignkey:ExamID" json:"-"`
	Student User `gorm:"foreignkey:StudentID" json:"student,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *ExamAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *ExamAttempt) IsInProgress() bool {
	return a.Status == AttemptInProgress
}

// IsFinished reports whether the attempt has reached a terminal state and
// its score is immutable.
func (a *ExamAttempt) IsFinished() bool {
	switch a.Status {
	case AttemptCompleted, AttemptSubmitted, AttemptTimedOut:
		return true
	}
	return false
}

// Deadline is the attempt's personal cut-off: started_at plus the exam's
// duration budget. The exam's absolute end_time is enforced separately and
// the earlier of the two wins.
func (a *ExamAttempt) Deadline(durationMinutes int) time.Time {
	return a.StartedAt.Add(time.Duration(durationMinutes) * time.Minute)
}
