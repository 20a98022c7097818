package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/bkoskei/classroom_exams/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.ClassMember{},
		&models.Question{},
		&models.Exam{},
		&models.ExamQuestion{},
		&models.ExamAttempt{},
		&models.StudentAnswer{},
	))
	return db
}

type fixture struct {
	db      *gorm.DB
	teacher models.User
	student models.User
	class   models.Class
	exam    models.Exam
	q1      models.Question
	q2      models.Question
}

// newFixture builds a published two-question exam worth 1 and 3 points
// (correct answers "a" and "b") with the student actively enrolled.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)

	f := &fixture{db: db}

	f.teacher = models.User{FullName: "Grace Mwangi", Email: "grace@example.com", Password: "x", Role: models.RoleTeacher, IsActive: true}
	require.NoError(t, db.Create(&f.teacher).Error)

	f.student = models.User{FullName: "Brian Otieno", Email: "brian@example.com", Password: "x", Role: models.RoleStudent, IsActive: true}
	require.NoError(t, db.Create(&f.student).Error)

	f.class = models.Class{Name: "Form 4 Physics", TeacherID: f.teacher.ID, ClassCode: "PHYS4A22", Status: models.ClassActive, MaxStudents: 50}
	require.NoError(t, db.Create(&f.class).Error)

	member := models.ClassMember{ClassID: f.class.ID, UserID: f.student.ID, Status: models.MemberActive, JoinedAt: time.Now()}
	require.NoError(t, db.Create(&member).Error)

	f.q1 = models.Question{TeacherID: f.teacher.ID, QuestionText: "What is the SI unit of force?", OptionA: "Newton", OptionB: "Joule", OptionC: "Watt", OptionD: "Pascal", CorrectAnswer: "a", Difficulty: models.DifficultyEasy, IsActive: true}
	require.NoError(t, db.Create(&f.q1).Error)

	f.q2 = models.Question{TeacherID: f.teacher.ID, QuestionText: "Which law relates force to acceleration?", OptionA: "First", OptionB: "Second", OptionC: "Third", OptionD: "Zeroth", CorrectAnswer: "b", Difficulty: models.DifficultyMedium, IsActive: true}
	require.NoError(t, db.Create(&f.q2).Error)

	now := time.Now()
	f.exam = models.Exam{
		Title:                  "Mechanics CAT 1",
		TeacherID:              f.teacher.ID,
		ClassID:                f.class.ID,
		DurationMinutes:        30,
		StartTime:              now.Add(-time.Hour),
		EndTime:                now.Add(time.Hour),
		ShowResultsImmediately: true,
		AllowReview:            true,
		PassingScore:           60,
		MaxAttempts:            1,
		Status:                 models.ExamPublished,
	}
	require.NoError(t, db.Create(&f.exam).Error)

	require.NoError(t, db.Create(&models.ExamQuestion{ExamID: f.exam.ID, QuestionID: f.q1.ID, QuestionOrder: 1, Points: 1}).Error)
	require.NoError(t, db.Create(&models.ExamQuestion{ExamID: f.exam.ID, QuestionID: f.q2.ID, QuestionOrder: 2, Points: 3}).Error)

	return f
}

func (f *fixture) backdateAttempt(t *testing.T, attemptID uuid.UUID, ago time.Duration) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.ExamAttempt{}).
		Where("id = ?", attemptID).
		Update("started_at", time.Now().Add(-ago)).Error)
}

func TestStartCreatesAttempt(t *testing.T) {
	f := newFixture(t)

	paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, paper.Attempt.AttemptNumber)
	assert.Equal(t, models.AttemptInProgress, paper.Attempt.Status)
	assert.Equal(t, 2, paper.Attempt.TotalQuestions)
	assert.Len(t, paper.Questions, 2)
	assert.Greater(t, paper.TimeRemainingSec, 0)
	assert.Empty(t, paper.ExistingAnswers)

	// The paper never carries the answer key.
	assert.Equal(t, 1, paper.Questions[0].Position)
	assert.Equal(t, 1.0, paper.Questions[0].Points)
	assert.Equal(t, 3.0, paper.Questions[1].Points)
}

func TestStartTwiceResumesSameAttempt(t *testing.T) {
	f := newFixture(t)

	first, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)
	second, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Attempt.ID, second.Attempt.ID)

	var count int64
	f.db.Model(&models.ExamAttempt{}).Where("exam_id = ?", f.exam.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestStartResumeKeepsPinnedOrder(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&models.Exam{}).Where("id = ?", f.exam.ID).Update("shuffle_questions", true).Error)

	first, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)
	second, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	firstIDs := make([]uuid.UUID, len(first.Questions))
	secondIDs := make([]uuid.UUID, len(second.Questions))
	for i := range first.Questions {
		firstIDs[i] = first.Questions[i].QuestionID
		secondIDs[i] = second.Questions[i].QuestionID
	}
	assert.Equal(t, firstIDs, secondIDs)
	assert.ElementsMatch(t, []uuid.UUID{f.q1.ID, f.q2.ID}, firstIDs)
}

func TestStartAdmissionDenied(t *testing.T) {
	f := newFixture(t)

	t.Run("not published", func(t *testing.T) {
		require.NoError(t, f.db.Model(&models.Exam{}).Where("id = ?", f.exam.ID).Update("status", models.ExamDraft).Error)
		_, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
		assert.ErrorIs(t, err, ErrExamNotPublished)
		require.NoError(t, f.db.Model(&models.Exam{}).Where("id = ?", f.exam.ID).Update("status", models.ExamPublished).Error)
	})

	t.Run("outside window", func(t *testing.T) {
		require.NoError(t, f.db.Model(&models.Exam{}).Where("id = ?", f.exam.ID).
			Updates(map[string]interface{}{
				"start_time": time.Now().Add(-3 * time.Hour),
				"end_time":   time.Now().Add(-2 * time.Hour),
			}).Error)
		_, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
		assert.ErrorIs(t, err, ErrOutsideWindow)

		var count int64
		f.db.Model(&models.ExamAttempt{}).Where("exam_id = ?", f.exam.ID).Count(&count)
		assert.Equal(t, int64(0), count)

		require.NoError(t, f.db.Model(&models.Exam{}).Where("id = ?", f.exam.ID).
			Updates(map[string]interface{}{
				"start_time": time.Now().Add(-time.Hour),
				"end_time":   time.Now().Add(time.Hour),
			}).Error)
	})

	t.Run("not enrolled", func(t *testing.T) {
		stranger := models.User{FullName: "Outsider", Email: "outsider@example.com", Password: "x", Role: models.RoleStudent, IsActive: true}
		require.NoError(t, f.db.Create(&stranger).Error)

		_, err := StartOrResumeAttempt(f.db, f.exam.ID, stranger.ID)
		assert.ErrorIs(t, err, ErrNotEnrolled)
	})

	t.Run("exam missing", func(t *testing.T) {
		_, err := StartOrResumeAttempt(f.db, uuid.New(), f.student.ID)
		assert.ErrorIs(t, err, ErrExamNotFound)
	})
}

func TestAttemptsExhausted(t *testing.T) {
	f := newFixture(t)

	paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)
	_, err = SubmitAttempt(f.db, paper.Attempt.ID, f.student.ID, nil)
	require.NoError(t, err)

	_, err = StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	assert.ErrorIs(t, err, ErrAttemptsExhausted)
}

func TestAttemptNumberSequence(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&models.Exam{}).Where("id = ?", f.exam.ID).Update("max_attempts", 3).Error)

	for want := 1; want <= 3; want++ {
		paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
		require.NoError(t, err)
		assert.Equal(t, want, paper.Attempt.AttemptNumber)

		_, err = SubmitAttempt(f.db, paper.Attempt.ID, f.student.ID, nil)
		require.NoError(t, err)
	}

	_, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	assert.ErrorIs(t, err, ErrAttemptsExhausted)
}

func TestSaveProgressThenSubmit(t *testing.T) {
	f := newFixture(t)

	paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	require.NoError(t, SaveProgress(f.db, paper.Attempt.ID, f.student.ID, map[uuid.UUID]string{
		f.q1.ID: "a",
		f.q2.ID: "c",
	}))

	// Saved answers show up on resume.
	resumed, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", resumed.ExistingAnswers[f.q1.ID])
	assert.Equal(t, "c", resumed.ExistingAnswers[f.q2.ID])

	attempt, err := SubmitAttempt(f.db, paper.Attempt.ID, f.student.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, models.AttemptCompleted, attempt.Status)
	assert.Equal(t, 1, attempt.CorrectAnswers)
	assert.Equal(t, 1, attempt.WrongAnswers)
	assert.Equal(t, 0, attempt.Unanswered)
	require.NotNil(t, attempt.Score)
	require.NotNil(t, attempt.Percentage)
	assert.Equal(t, 1.0, *attempt.Score)
	assert.Equal(t, 25.0, *attempt.Percentage)
	assert.NotNil(t, attempt.CompletedAt)
	assert.NotNil(t, attempt.SubmittedAt)
}

func TestSubmitTimeAnswersWin(t *testing.T) {
	f := newFixture(t)

	paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	require.NoError(t, SaveProgress(f.db, paper.Attempt.ID, f.student.ID, map[uuid.UUID]string{f.q1.ID: "c"}))

	attempt, err := SubmitAttempt(f.db, paper.Attempt.ID, f.student.ID, map[uuid.UUID]string{
		f.q1.ID: "a",
		f.q2.ID: "b",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, attempt.CorrectAnswers)
	assert.Equal(t, 4.0, *attempt.Score)
	assert.Equal(t, 100.0, *attempt.Percentage)
}

func TestSaveProgressIdempotent(t *testing.T) {
	f := newFixture(t)

	paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	answers := map[uuid.UUID]string{f.q1.ID: "a"}
	require.NoError(t, SaveProgress(f.db, paper.Attempt.ID, f.student.ID, answers))
	require.NoError(t, SaveProgress(f.db, paper.Attempt.ID, f.student.ID, answers))

	var count int64
	f.db.Model(&models.StudentAnswer{}).Where("attempt_id = ?", paper.Attempt.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSaveProgressRejectsInvalidOption(t *testing.T) {
	f := newFixture(t)

	paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	err = SaveProgress(f.db, paper.Attempt.ID, f.student.ID, map[uuid.UUID]string{f.q1.ID: "e"})
	assert.ErrorIs(t, err, ErrInvalidOption)

	var count int64
	f.db.Model(&models.StudentAnswer{}).Where("attempt_id = ?", paper.Attempt.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRejectsQuestionsNotOnExam(t *testing.T) {
	f := newFixture(t)

	foreign := models.Question{TeacherID: f.teacher.ID, QuestionText: "Unreleased end-of-term question", OptionA: "w", OptionB: "x", OptionC: "y", OptionD: "z", CorrectAnswer: "d", Difficulty: models.DifficultyHard, IsActive: true}
	require.NoError(t, f.db.Create(&foreign).Error)

	paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	err = SaveProgress(f.db, paper.Attempt.ID, f.student.ID, map[uuid.UUID]string{foreign.ID: "a"})
	assert.ErrorIs(t, err, ErrUnknownQuestion)

	var count int64
	f.db.Model(&models.StudentAnswer{}).Where("attempt_id = ?", paper.Attempt.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	_, err = SubmitAttempt(f.db, paper.Attempt.ID, f.student.ID, map[uuid.UUID]string{f.q1.ID: "a", foreign.ID: "d"})
	assert.ErrorIs(t, err, ErrUnknownQuestion)

	var stored models.ExamAttempt
	require.NoError(t, f.db.First(&stored, "id = ?", paper.Attempt.ID).Error)
	assert.Equal(t, models.AttemptInProgress, stored.Status)
}

func TestResultNeverEchoesForeignQuestions(t *testing.T) {
	f := newFixture(t)

	foreign := models.Question{TeacherID: f.teacher.ID, QuestionText: "Unreleased end-of-term question", OptionA: "w", OptionB: "x", OptionC: "y", OptionD: "z", CorrectAnswer: "d", Difficulty: models.DifficultyHard, IsActive: true}
	require.NoError(t, f.db.Create(&foreign).Error)

	paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	// A stray row written outside the engine must neither score nor leak
	// through the result view.
	option := "a"
	require.NoError(t, f.db.Create(&models.StudentAnswer{AttemptID: paper.Attempt.ID, QuestionID: foreign.ID, SelectedAnswer: &option}).Error)

	attempt, err := SubmitAttempt(f.db, paper.Attempt.ID, f.student.ID, map[uuid.UUID]string{f.q1.ID: "a"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, *attempt.Score)
	assert.Equal(t, 1, attempt.CorrectAnswers)

	result, err := GetResult(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)
	require.Len(t, result.Answers, 2)
	for _, answer := range result.Answers {
		assert.NotEqual(t, foreign.ID, answer.QuestionID)
	}
}

func TestSubmitIsAtMostOnce(t *testing.T) {
	f := newFixture(t)

	paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	first, err := SubmitAttempt(f.db, paper.Attempt.ID, f.student.ID, map[uuid.UUID]string{f.q1.ID: "a"})
	require.NoError(t, err)

	// A racing second submit must not re-score, even with better answers.
	_, err = SubmitAttempt(f.db, paper.Attempt.ID, f.student.ID, map[uuid.UUID]string{f.q1.ID: "a", f.q2.ID: "b"})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	var stored models.ExamAttempt
	require.NoError(t, f.db.First(&stored, "id = ?", paper.Attempt.ID).Error)
	assert.Equal(t, *first.Score, *stored.Score)
	assert.Equal(t, 1.0, *stored.Score)
}

func TestSubmitOwnershipAndExistence(t *testing.T) {
	f := newFixture(t)

	paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	_, err = SubmitAttempt(f.db, uuid.New(), f.student.ID, nil)
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	_, err = SubmitAttempt(f.db, paper.Attempt.ID, uuid.New(), nil)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestLateSubmitIgnoresNewAnswers(t *testing.T) {
	f := newFixture(t)

	paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	require.NoError(t, SaveProgress(f.db, paper.Attempt.ID, f.student.ID, map[uuid.UUID]string{f.q1.ID: "a"}))

	f.backdateAttempt(t, paper.Attempt.ID, 2*time.Hour)

	attempt, err := SubmitAttempt(f.db, paper.Attempt.ID, f.student.ID, map[uuid.UUID]string{f.q2.ID: "b"})
	require.NoError(t, err)

	assert.Equal(t, models.AttemptTimedOut, attempt.Status)
	assert.Equal(t, 1, attempt.CorrectAnswers)
	assert.Equal(t, 1.0, *attempt.Score)
}

func TestSubmitAfterWindowClosesIsClamped(t *testing.T) {
	f := newFixture(t)

	paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	require.NoError(t, SaveProgress(f.db, paper.Attempt.ID, f.student.ID, map[uuid.UUID]string{f.q1.ID: "a"}))

	// The window closes while the personal duration budget still has time
	// on the clock; the earlier cut-off wins.
	require.NoError(t, f.db.Model(&models.Exam{}).Where("id = ?", f.exam.ID).
		Update("end_time", time.Now().Add(-time.Minute)).Error)

	attempt, err := SubmitAttempt(f.db, paper.Attempt.ID, f.student.ID, map[uuid.UUID]string{f.q1.ID: "a", f.q2.ID: "b"})
	require.NoError(t, err)

	assert.Equal(t, models.AttemptTimedOut, attempt.Status)
	assert.Equal(t, 1, attempt.CorrectAnswers)
	assert.Equal(t, 1.0, *attempt.Score)
}

func TestFinalizeOverdueAttemptsAfterWindowCloses(t *testing.T) {
	f := newFixture(t)

	paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&models.Exam{}).Where("id = ?", f.exam.ID).
		Update("end_time", time.Now().Add(-time.Minute)).Error)

	finalized, err := FinalizeOverdueAttempts(f.db)
	require.NoError(t, err)
	assert.Equal(t, 1, finalized)

	var stored models.ExamAttempt
	require.NoError(t, f.db.First(&stored, "id = ?", paper.Attempt.ID).Error)
	assert.Equal(t, models.AttemptTimedOut, stored.Status)
}

func TestSaveProgressAfterDeadlineTimesOut(t *testing.T) {
	f := newFixture(t)

	paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	f.backdateAttempt(t, paper.Attempt.ID, 2*time.Hour)

	err = SaveProgress(f.db, paper.Attempt.ID, f.student.ID, map[uuid.UUID]string{f.q1.ID: "a"})
	assert.ErrorIs(t, err, ErrTimeExpired)

	var stored models.ExamAttempt
	require.NoError(t, f.db.First(&stored, "id = ?", paper.Attempt.ID).Error)
	assert.Equal(t, models.AttemptTimedOut, stored.Status)
}

func TestResumeExpiredAttemptFinalizesIt(t *testing.T) {
	f := newFixture(t)

	paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	f.backdateAttempt(t, paper.Attempt.ID, 2*time.Hour)

	// max_attempts is 1, so once the expired attempt is finalized the
	// student is out of attempts.
	_, err = StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	assert.ErrorIs(t, err, ErrAttemptsExhausted)

	var stored models.ExamAttempt
	require.NoError(t, f.db.First(&stored, "id = ?", paper.Attempt.ID).Error)
	assert.Equal(t, models.AttemptTimedOut, stored.Status)
}

func TestFinalizeOverdueAttempts(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&models.Exam{}).Where("id = ?", f.exam.ID).Update("max_attempts", 2).Error)

	overdue, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)
	require.NoError(t, SaveProgress(f.db, overdue.Attempt.ID, f.student.ID, map[uuid.UUID]string{f.q2.ID: "b"}))
	f.backdateAttempt(t, overdue.Attempt.ID, 2*time.Hour)

	other := models.User{FullName: "Second Student", Email: "second@example.com", Password: "x", Role: models.RoleStudent, IsActive: true}
	require.NoError(t, f.db.Create(&other).Error)
	require.NoError(t, f.db.Create(&models.ClassMember{ClassID: f.class.ID, UserID: other.ID, Status: models.MemberActive, JoinedAt: time.Now()}).Error)

	fresh, err := StartOrResumeAttempt(f.db, f.exam.ID, other.ID)
	require.NoError(t, err)

	finalized, err := FinalizeOverdueAttempts(f.db)
	require.NoError(t, err)
	assert.Equal(t, 1, finalized)

	var stored models.ExamAttempt
	require.NoError(t, f.db.First(&stored, "id = ?", overdue.Attempt.ID).Error)
	assert.Equal(t, models.AttemptTimedOut, stored.Status)
	assert.Equal(t, 3.0, *stored.Score)

	var freshStored models.ExamAttempt
	require.NoError(t, f.db.First(&freshStored, "id = ?", fresh.Attempt.ID).Error)
	assert.Equal(t, models.AttemptInProgress, freshStored.Status)
}

func TestGetResult(t *testing.T) {
	f := newFixture(t)

	paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)
	_, err = SubmitAttempt(f.db, paper.Attempt.ID, f.student.ID, map[uuid.UUID]string{f.q1.ID: "a", f.q2.ID: "c"})
	require.NoError(t, err)

	result, err := GetResult(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	assert.True(t, result.ShowAnswers)
	assert.Equal(t, 25.0, *result.Attempt.Percentage)
	require.Len(t, result.Answers, 2)
	for _, answer := range result.Answers {
		assert.NotNil(t, answer.IsCorrect)
		assert.NotNil(t, answer.CorrectAnswer)
	}
}

func TestGetResultRedactsWhenReviewDisabled(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&models.Exam{}).Where("id = ?", f.exam.ID).Update("allow_review", false).Error)

	paper, err := StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)
	_, err = SubmitAttempt(f.db, paper.Attempt.ID, f.student.ID, map[uuid.UUID]string{f.q1.ID: "a"})
	require.NoError(t, err)

	result, err := GetResult(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)

	// The score stays visible but per-question detail is withheld.
	assert.False(t, result.ShowAnswers)
	assert.NotNil(t, result.Attempt.Percentage)
	for _, answer := range result.Answers {
		assert.Nil(t, answer.IsCorrect)
		assert.Nil(t, answer.CorrectAnswer)
		assert.Nil(t, answer.PointsEarned)
		assert.Nil(t, answer.Explanation)
	}
}

func TestGetResultNoFinishedAttempt(t *testing.T) {
	f := newFixture(t)

	_, err := GetResult(f.db, f.exam.ID, f.student.ID)
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	// An in-progress attempt is not a result.
	_, err = StartOrResumeAttempt(f.db, f.exam.ID, f.student.ID)
	require.NoError(t, err)
	_, err = GetResult(f.db, f.exam.ID, f.student.ID)
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}
