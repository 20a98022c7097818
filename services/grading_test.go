package services

import (
	"testing"
	"time"

	"github.com/bkoskei/classroom_exams/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGradeAttemptWeighted(t *testing.T) {
	q1, q2 := uuid.New(), uuid.New()
	keys := []QuestionKey{
		{ID: q1, CorrectAnswer: "a", Points: 1},
		{ID: q2, CorrectAnswer: "b", Points: 3},
	}

	grade := GradeAttempt(keys, map[uuid.UUID]string{q1: "a", q2: "c"})

	assert.Equal(t, 1, grade.CorrectAnswers)
	assert.Equal(t, 1, grade.WrongAnswers)
	assert.Equal(t, 0, grade.Unanswered)
	assert.Equal(t, 1.0, grade.EarnedPoints)
	assert.Equal(t, 4.0, grade.TotalPoints)
	assert.Equal(t, 25.0, grade.Percentage)
}

func TestGradeAttemptAllCorrect(t *testing.T) {
	q1, q2 := uuid.New(), uuid.New()
	keys := []QuestionKey{
		{ID: q1, CorrectAnswer: "d", Points: 2},
		{ID: q2, CorrectAnswer: "b", Points: 2},
	}

	grade := GradeAttempt(keys, map[uuid.UUID]string{q1: "d", q2: "b"})

	assert.Equal(t, 2, grade.CorrectAnswers)
	assert.Equal(t, 4.0, grade.EarnedPoints)
	assert.Equal(t, 100.0, grade.Percentage)
}

func TestGradeAttemptUnanswered(t *testing.T) {
	q1, q2, q3 := uuid.New(), uuid.New(), uuid.New()
	keys := []QuestionKey{
		{ID: q1, CorrectAnswer: "a", Points: 1},
		{ID: q2, CorrectAnswer: "a", Points: 1},
		{ID: q3, CorrectAnswer: "a", Points: 1},
	}

	grade := GradeAttempt(keys, map[uuid.UUID]string{q2: "a"})

	assert.Equal(t, 1, grade.CorrectAnswers)
	assert.Equal(t, 2, grade.WrongAnswers)
	assert.Equal(t, 2, grade.Unanswered)
	assert.Len(t, grade.Results, 3)
}

func TestGradeAttemptZeroTotalPoints(t *testing.T) {
	grade := GradeAttempt(nil, map[uuid.UUID]string{uuid.New(): "a"})

	assert.Equal(t, 0.0, grade.TotalPoints)
	assert.Equal(t, 0.0, grade.Percentage)
	assert.Equal(t, 0, grade.CorrectAnswers)
}

func publishedExam(start, end time.Time) *models.Exam {
	return &models.Exam{
		Status:          models.ExamPublished,
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: 30,
		MaxAttempts:     2,
	}
}

func TestCanStartExam(t *testing.T) {
	now := time.Now()
	exam := publishedExam(now.Add(-time.Hour), now.Add(time.Hour))

	assert.NoError(t, CanStartExam(exam, now, true, 0))
	assert.ErrorIs(t, CanStartExam(exam, now, true, 2), ErrAttemptsExhausted)
	assert.ErrorIs(t, CanStartExam(exam, now, false, 0), ErrNotEnrolled)

	early := publishedExam(now.Add(time.Hour), now.Add(2*time.Hour))
	assert.ErrorIs(t, CanStartExam(early, now, true, 0), ErrOutsideWindow)

	late := publishedExam(now.Add(-2*time.Hour), now.Add(-time.Hour))
	assert.ErrorIs(t, CanStartExam(late, now, true, 0), ErrOutsideWindow)

	draft := publishedExam(now.Add(-time.Hour), now.Add(time.Hour))
	draft.Status = models.ExamDraft
	assert.ErrorIs(t, CanStartExam(draft, now, true, 0), ErrExamNotPublished)
}

func TestCanSubmitAttempt(t *testing.T) {
	owner := uuid.New()
	attempt := &models.ExamAttempt{StudentID: owner, Status: models.AttemptInProgress}

	assert.NoError(t, CanSubmitAttempt(attempt, owner))
	assert.ErrorIs(t, CanSubmitAttempt(attempt, uuid.New()), ErrNotOwner)

	attempt.Status = models.AttemptCompleted
	assert.ErrorIs(t, CanSubmitAttempt(attempt, owner), ErrAlreadySubmitted)
}

func TestTimeRemainingEarlierDeadlineWins(t *testing.T) {
	now := time.Now()
	exam := &models.Exam{DurationMinutes: 60, EndTime: now.Add(10 * time.Minute)}
	attempt := &models.ExamAttempt{StartedAt: now}

	// The exam window closes before the personal budget runs out.
	remaining := TimeRemaining(attempt, exam, now)
	assert.InDelta(t, 600, remaining, 2)

	exam.EndTime = now.Add(3 * time.Hour)
	remaining = TimeRemaining(attempt, exam, now)
	assert.InDelta(t, 3600, remaining, 2)
}

func TestTimeRemainingNeverNegative(t *testing.T) {
	now := time.Now()
	exam := &models.Exam{DurationMinutes: 30, EndTime: now.Add(time.Hour)}
	attempt := &models.ExamAttempt{StartedAt: now.Add(-2 * time.Hour)}

	assert.Equal(t, 0, TimeRemaining(attempt, exam, now))
}

func TestPinQuestionOrder(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()}

	unshuffled := pinQuestionOrder(ids, false)
	assert.Equal(t, ids, unshuffled)

	shuffled := pinQuestionOrder(ids, true)
	assert.ElementsMatch(t, ids, shuffled)
}
