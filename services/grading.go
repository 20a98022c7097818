package services

import (
	"math/rand"
	"time"

	"github.com/bkoskei/classroom_exams/models"
	"github.com/google/uuid"
)

// QuestionKey is the grading view of one exam question: its correct option
// and the point weight the exam assigns to it.
type QuestionKey struct {
	ID            uuid.UUID
	CorrectAnswer string
	Points        float64
}

type AnswerResult struct {
	QuestionID   uuid.UUID
	Selected     *string
	IsCorrect    bool
	PointsEarned float64
}

type GradeSummary struct {
	Results        []AnswerResult
	CorrectAnswers int
	WrongAnswers   int
	Unanswered     int
	EarnedPoints   float64
	TotalPoints    float64
	Percentage     float64
}

// GradeAttempt scores every question of the exam against the selected
// answers. Questions without a selection earn nothing and count as both
// wrong and unanswered; percentage is 0 when the exam carries no points.
func GradeAttempt(keys []QuestionKey, selected map[uuid.UUID]string) GradeSummary {
	summary := GradeSummary{Results: make([]AnswerResult, 0, len(keys))}

	for _, key := range keys {
		result := AnswerResult{QuestionID: key.ID}

		if answer, ok := selected[key.ID]; ok && answer != "" {
			a := answer
			result.Selected = &a
			result.IsCorrect = answer == key.CorrectAnswer
		} else {
			summary.Unanswered++
		}

		if result.IsCorrect {
			result.PointsEarned = key.Points
			summary.CorrectAnswers++
			summary.EarnedPoints += key.Points
		}

		summary.TotalPoints += key.Points
		summary.Results = append(summary.Results, result)
	}

	summary.WrongAnswers = len(keys) - summary.CorrectAnswers
	if summary.TotalPoints > 0 {
		summary.Percentage = summary.EarnedPoints / summary.TotalPoints * 100
	}

	return summary
}

// CanStartExam is the admission predicate for a new or resumed attempt.
// Checks run in order: publication, availability window, enrollment, then
// the attempt cap, so the caller gets the most specific refusal.
func CanStartExam(exam *models.Exam, now time.Time, enrolled bool, priorAttempts int) error {
	if exam.Status != models.ExamPublished {
		return ErrExamNotPublished
	}
	if !exam.WithinWindow(now) {
		return ErrOutsideWindow
	}
	if !enrolled {
		return ErrNotEnrolled
	}
	if priorAttempts >= exam.MaxAttempts {
		return ErrAttemptsExhausted
	}
	return nil
}

// CanSubmitAttempt gates writes against an attempt: the caller must own it
// and it must still be running.
func CanSubmitAttempt(attempt *models.ExamAttempt, studentID uuid.UUID) error {
	if attempt.StudentID != studentID {
		return ErrNotOwner
	}
	if attempt.IsFinished() {
		return ErrAlreadySubmitted
	}
	if !attempt.IsInProgress() {
		return ErrAttemptNotActive
	}
	return nil
}

// attemptCutoff is the moment writes against an attempt stop counting.
// Two clocks apply: the personal duration budget from started_at and the
// exam's absolute end_time. The earlier one wins.
func attemptCutoff(attempt *models.ExamAttempt, exam *models.Exam) time.Time {
	deadline := attempt.Deadline(exam.DurationMinutes)
	if exam.EndTime.Before(deadline) {
		return exam.EndTime
	}
	return deadline
}

// TimeRemaining returns the seconds left on an attempt; never negative.
func TimeRemaining(attempt *models.ExamAttempt, exam *models.Exam, now time.Time) int {
	remaining := int(attemptCutoff(attempt, exam).Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// pinQuestionOrder decides the presentation order once, when the attempt is
// created. The result is persisted on the attempt so a shuffled exam keeps
// the same numbering across reloads.
func pinQuestionOrder(questionIDs []uuid.UUID, shuffle bool) []uuid.UUID {
	order := make([]uuid.UUID, len(questionIDs))
	copy(order, questionIDs)

	if shuffle {
		seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
		seededRand.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	return order
}
