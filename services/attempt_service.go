package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/bkoskei/classroom_exams/models"
	ws "github.com/bkoskei/classroom_exams/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrExamNotFound      = errors.New("exam not found")
	ErrExamNotPublished  = errors.New("exam is not published")
	ErrOutsideWindow     = errors.New("exam is not currently available")
	ErrNotEnrolled       = errors.New("you are not enrolled in this class")
	ErrAttemptsExhausted = errors.New("no attempts remaining")
	ErrAttemptNotFound   = errors.New("attempt not found")
	ErrNotOwner          = errors.New("attempt does not belong to you")
	ErrAttemptNotActive  = errors.New("attempt is not in progress")
	ErrAlreadySubmitted  = errors.New("attempt has already been submitted")
	ErrTimeExpired       = errors.New("time is up for this attempt")
	ErrInvalidOption     = errors.New("selected answer must be one of a, b, c or d")
	ErrUnknownQuestion   = errors.New("question does not belong to this exam")
)

// ExamPaper is everything the exam-taking view needs: the attempt, the
// questions in their pinned order with correct answers stripped, whatever
// the student has already saved, and the countdown.
type ExamPaper struct {
	Exam             ExamSummary              `json:"exam"`
	Attempt          *models.ExamAttempt      `json:"attempt"`
	Questions        []PaperQuestion          `json:"questions"`
	ExistingAnswers  map[uuid.UUID]string     `json:"existing_answers"`
	TimeRemainingSec int                      `json:"time_remaining_seconds"`
}

type ExamSummary struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	EndTime         time.Time `json:"end_time"`
	MaxAttempts     int       `json:"max_attempts"`
}

// StartOrResumeAttempt is the admission path. An existing in-progress
// attempt is returned as-is rather than duplicated; one that has outlived
// its duration budget is finalized as timed out first, and admission is
// re-evaluated from scratch.
func StartOrResumeAttempt(db *gorm.DB, examID, studentID uuid.UUID) (*ExamPaper, error) {
	var exam models.Exam
	if err := db.First(&exam, "id = ?", examID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	now := time.Now()

	var current models.ExamAttempt
	err := db.Where("exam_id = ? AND student_id = ? AND status = ?",
		examID, studentID, models.AttemptInProgress).First(&current).Error
	switch {
	case err == nil:
		if now.After(attemptCutoff(&current, &exam)) {
			if _, err := finalizeAttempt(db, &current, &exam, nil, models.AttemptTimedOut); err != nil {
				return nil, err
			}
		} else {
			return buildPaper(db, &exam, &current, now)
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	enrolled, err := isActiveMember(db, exam.ClassID, studentID)
	if err != nil {
		return nil, err
	}

	var priorAttempts int64
	if err := db.Model(&models.ExamAttempt{}).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		Count(&priorAttempts).Error; err != nil {
		return nil, err
	}

	if err := CanStartExam(&exam, now, enrolled, int(priorAttempts)); err != nil {
		return nil, err
	}

	questions, err := LoadPaperQuestions(db, &exam)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(questions))
	for i, q := range questions {
		ids[i] = q.QuestionID
	}
	pinned := pinQuestionOrder(ids, exam.ShuffleQuestions)
	orderJSON, err := json.Marshal(pinned)
	if err != nil {
		return nil, err
	}

	attempt := models.ExamAttempt{
		ExamID:         examID,
		StudentID:      studentID,
		AttemptNumber:  int(priorAttempts) + 1,
		StartedAt:      now,
		TotalQuestions: len(questions),
		Status:         models.AttemptInProgress,
		QuestionOrder:  orderJSON,
	}
	if err := db.Create(&attempt).Error; err != nil {
		return nil, err
	}

	notifyAttempt(db, &attempt, &exam)

	return buildPaper(db, &exam, &attempt, now)
}

// SaveProgress upserts autosaved answers for an in-progress attempt.
// Correctness and points are deliberately not touched here; the student can
// still change their mind until submission. Repeated identical calls are
// no-ops beyond the answered_at bump.
func SaveProgress(db *gorm.DB, attemptID, studentID uuid.UUID, answers map[uuid.UUID]string) error {
	for _, option := range answers {
		if !models.ValidOption(option) {
			return ErrInvalidOption
		}
	}

	var attempt models.ExamAttempt
	if err := db.First(&attempt, "id = ?", attemptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttemptNotFound
		}
		return err
	}
	if err := CanSubmitAttempt(&attempt, studentID); err != nil {
		return err
	}

	var exam models.Exam
	if err := db.First(&exam, "id = ?", attempt.ExamID).Error; err != nil {
		return err
	}

	if err := rejectForeignQuestions(db, exam.ID, answers); err != nil {
		return err
	}

	if time.Now().After(attemptCutoff(&attempt, &exam)) {
		if _, err := finalizeAttempt(db, &attempt, &exam, nil, models.AttemptTimedOut); err != nil {
			return err
		}
		return ErrTimeExpired
	}

	if len(answers) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]models.StudentAnswer, 0, len(answers))
	for questionID, option := range answers {
		o := option
		rows = append(rows, models.StudentAnswer{
			AttemptID:      attempt.ID,
			QuestionID:     questionID,
			SelectedAnswer: &o,
			AnsweredAt:     &now,
		})
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_answer", "answered_at", "updated_at"}),
	}).Create(&rows).Error
}

// SubmitAttempt finalizes and scores an attempt. The status transition is a
// transactional check-and-set, so of two racing submits (say the countdown
// firing while the student clicks the button) exactly one scores and the
// other observes ErrAlreadySubmitted.
func SubmitAttempt(db *gorm.DB, attemptID, studentID uuid.UUID, answers map[uuid.UUID]string) (*models.ExamAttempt, error) {
	for _, option := range answers {
		if !models.ValidOption(option) {
			return nil, ErrInvalidOption
		}
	}

	var attempt models.ExamAttempt
	if err := db.First(&attempt, "id = ?", attemptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}
	if err := CanSubmitAttempt(&attempt, studentID); err != nil {
		return nil, err
	}

	var exam models.Exam
	if err := db.First(&exam, "id = ?", attempt.ExamID).Error; err != nil {
		return nil, err
	}

	if err := rejectForeignQuestions(db, exam.ID, answers); err != nil {
		return nil, err
	}

	finalStatus := models.AttemptCompleted
	if time.Now().After(attemptCutoff(&attempt, &exam)) {
		// Past the personal deadline only autosaved answers count; the
		// submit payload is discarded server-side.
		finalStatus = models.AttemptTimedOut
		answers = nil
	}

	return finalizeAttempt(db, &attempt, &exam, answers, finalStatus)
}

// FinalizeOverdueAttempts is the server-side sweep behind the client
// countdown: any in-progress attempt past its duration budget is scored
// from its autosaved answers and marked timed out. Returns how many
// attempts were finalized.
func FinalizeOverdueAttempts(db *gorm.DB) (int, error) {
	var attempts []models.ExamAttempt
	if err := db.Where("status = ?", models.AttemptInProgress).Find(&attempts).Error; err != nil {
		return 0, err
	}

	now := time.Now()
	finalized := 0
	for i := range attempts {
		var exam models.Exam
		if err := db.First(&exam, "id = ?", attempts[i].ExamID).Error; err != nil {
			continue
		}
		if !now.After(attemptCutoff(&attempts[i], &exam)) {
			continue
		}
		if _, err := finalizeAttempt(db, &attempts[i], &exam, nil, models.AttemptTimedOut); err != nil {
			if errors.Is(err, ErrAlreadySubmitted) {
				continue
			}
			return finalized, err
		}
		finalized++
	}

	return finalized, nil
}

// finalizeAttempt performs the one-shot scoring transition. Every question
// of the exam is graded, submit-time answers win over autosaved ones, and
// the attempt row is updated atomically with the state check.
func finalizeAttempt(db *gorm.DB, attempt *models.ExamAttempt, exam *models.Exam, submitted map[uuid.UUID]string, finalStatus string) (*models.ExamAttempt, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ExamAttempt{}).
			Where("id = ? AND status = ?", attempt.ID, models.AttemptInProgress).
			Update("status", finalStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadySubmitted
		}

		keys, err := loadQuestionKeys(tx, exam.ID)
		if err != nil {
			return err
		}

		var saved []models.StudentAnswer
		if err := tx.Where("attempt_id = ?", attempt.ID).Find(&saved).Error; err != nil {
			return err
		}

		// Only questions on the exam take part in grading; anything else
		// in the payload or the saved rows is dropped here.
		onExam := make(map[uuid.UUID]bool, len(keys))
		for _, key := range keys {
			onExam[key.ID] = true
		}

		selected := make(map[uuid.UUID]string, len(keys))
		for _, row := range saved {
			if row.SelectedAnswer != nil && onExam[row.QuestionID] {
				selected[row.QuestionID] = *row.SelectedAnswer
			}
		}
		for questionID, option := range submitted {
			if onExam[questionID] {
				selected[questionID] = option
			}
		}

		grade := GradeAttempt(keys, selected)

		now := time.Now()
		rows := make([]models.StudentAnswer, 0, len(grade.Results))
		for _, result := range grade.Results {
			isCorrect := result.IsCorrect
			rows = append(rows, models.StudentAnswer{
				AttemptID:      attempt.ID,
				QuestionID:     result.QuestionID,
				SelectedAnswer: result.Selected,
				IsCorrect:      &isCorrect,
				PointsEarned:   result.PointsEarned,
				AnsweredAt:     &now,
			})
		}
		if len(rows) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"selected_answer", "is_correct", "points_earned", "answered_at", "updated_at"}),
			}).Create(&rows).Error; err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"completed_at":    now,
			"submitted_at":    now,
			"score":           grade.EarnedPoints,
			"percentage":      grade.Percentage,
			"correct_answers": grade.CorrectAnswers,
			"wrong_answers":   grade.WrongAnswers,
			"unanswered":      grade.Unanswered,
		}
		if err := tx.Model(&models.ExamAttempt{}).Where("id = ?", attempt.ID).Updates(updates).Error; err != nil {
			return err
		}

		attempt.Status = finalStatus
		attempt.CompletedAt = &now
		attempt.SubmittedAt = &now
		attempt.Score = &grade.EarnedPoints
		attempt.Percentage = &grade.Percentage
		attempt.CorrectAnswers = grade.CorrectAnswers
		attempt.WrongAnswers = grade.WrongAnswers
		attempt.Unanswered = grade.Unanswered
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifyAttempt(db, attempt, exam)

	return attempt, nil
}

// AttemptResult is the terminal read of the lifecycle. When the exam
// disables review the score stays visible but per-question correctness,
// the answer key and explanations are withheld.
type AttemptResult struct {
	Attempt     models.ExamAttempt `json:"attempt"`
	ShowAnswers bool               `json:"show_answers"`
	Answers     []ResultAnswer     `json:"answers"`
}

type ResultAnswer struct {
	QuestionID     uuid.UUID `json:"question_id"`
	QuestionText   string    `json:"question_text"`
	OptionA        string    `json:"option_a"`
	OptionB        string    `json:"option_b"`
	OptionC        string    `json:"option_c"`
	OptionD        string    `json:"option_d"`
	SelectedAnswer *string   `json:"selected_answer"`
	IsCorrect      *bool     `json:"is_correct,omitempty"`
	CorrectAnswer  *string   `json:"correct_answer,omitempty"`
	PointsEarned   *float64  `json:"points_earned,omitempty"`
	Explanation    *string   `json:"explanation,omitempty"`
}

// GetResult returns the student's most recent finished attempt for an exam.
func GetResult(db *gorm.DB, examID, studentID uuid.UUID) (*AttemptResult, error) {
	var exam models.Exam
	if err := db.First(&exam, "id = ?", examID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	var attempt models.ExamAttempt
	err := db.Where("exam_id = ? AND student_id = ? AND status IN ?",
		examID, studentID,
		[]string{models.AttemptCompleted, models.AttemptSubmitted, models.AttemptTimedOut}).
		Order("attempt_number DESC").
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}

	var answers []models.StudentAnswer
	if err := db.Preload("Question").Where("attempt_id = ?", attempt.ID).Find(&answers).Error; err != nil {
		return nil, err
	}

	var questionIDs []uuid.UUID
	if err := db.Model(&models.ExamQuestion{}).
		Where("exam_id = ?", examID).
		Pluck("question_id", &questionIDs).Error; err != nil {
		return nil, err
	}
	onExam := make(map[uuid.UUID]bool, len(questionIDs))
	for _, id := range questionIDs {
		onExam[id] = true
	}

	result := AttemptResult{
		Attempt:     attempt,
		ShowAnswers: exam.AllowReview,
		Answers:     make([]ResultAnswer, 0, len(answers)),
	}
	for _, row := range answers {
		if !onExam[row.QuestionID] {
			continue
		}
		answer := ResultAnswer{
			QuestionID:     row.QuestionID,
			QuestionText:   row.Question.QuestionText,
			OptionA:        row.Question.OptionA,
			OptionB:        row.Question.OptionB,
			OptionC:        row.Question.OptionC,
			OptionD:        row.Question.OptionD,
			SelectedAnswer: row.SelectedAnswer,
		}
		if exam.AllowReview {
			answer.IsCorrect = row.IsCorrect
			correct := row.Question.CorrectAnswer
			answer.CorrectAnswer = &correct
			points := row.PointsEarned
			answer.PointsEarned = &points
			if row.Question.Explanation != "" {
				explanation := row.Question.Explanation
				answer.Explanation = &explanation
			}
		}
		result.Answers = append(result.Answers, answer)
	}

	return &result, nil
}

// rejectForeignQuestions refuses answer payloads that reference questions
// not on the exam. Without this check a stray question ID would persist as
// a StudentAnswer row and the result view would echo that question back,
// answer key included.
func rejectForeignQuestions(db *gorm.DB, examID uuid.UUID, answers map[uuid.UUID]string) error {
	if len(answers) == 0 {
		return nil
	}

	var ids []uuid.UUID
	if err := db.Model(&models.ExamQuestion{}).
		Where("exam_id = ?", examID).
		Pluck("question_id", &ids).Error; err != nil {
		return err
	}

	onExam := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		onExam[id] = true
	}
	for questionID := range answers {
		if !onExam[questionID] {
			return ErrUnknownQuestion
		}
	}
	return nil
}

func isActiveMember(db *gorm.DB, classID, studentID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&models.ClassMember{}).
		Where("class_id = ? AND user_id = ? AND status = ?", classID, studentID, models.MemberActive).
		Count(&count).Error
	return count > 0, err
}

func loadQuestionKeys(db *gorm.DB, examID uuid.UUID) ([]QuestionKey, error) {
	var examQuestions []models.ExamQuestion
	if err := db.Preload("Question").
		Where("exam_id = ?", examID).
		Order("question_order").
		Find(&examQuestions).Error; err != nil {
		return nil, err
	}

	keys := make([]QuestionKey, 0, len(examQuestions))
	for _, eq := range examQuestions {
		keys = append(keys, QuestionKey{
			ID:            eq.QuestionID,
			CorrectAnswer: eq.Question.CorrectAnswer,
			Points:        eq.Points,
		})
	}
	return keys, nil
}

// buildPaper assembles the exam-taking payload in the attempt's pinned
// order, with existing answers and the countdown already computed.
func buildPaper(db *gorm.DB, exam *models.Exam, attempt *models.ExamAttempt, now time.Time) (*ExamPaper, error) {
	questions, err := LoadPaperQuestions(db, exam)
	if err != nil {
		return nil, err
	}

	if len(attempt.QuestionOrder) > 0 {
		var pinned []uuid.UUID
		if err := json.Unmarshal(attempt.QuestionOrder, &pinned); err == nil {
			byID := make(map[uuid.UUID]PaperQuestion, len(questions))
			for _, q := range questions {
				byID[q.QuestionID] = q
			}
			ordered := make([]PaperQuestion, 0, len(pinned))
			for _, id := range pinned {
				if q, ok := byID[id]; ok {
					ordered = append(ordered, q)
				}
			}
			questions = ordered
		}
	}
	for i := range questions {
		questions[i].Position = i + 1
	}

	var saved []models.StudentAnswer
	if err := db.Where("attempt_id = ?", attempt.ID).Find(&saved).Error; err != nil {
		return nil, err
	}
	existing := make(map[uuid.UUID]string, len(saved))
	for _, row := range saved {
		if row.SelectedAnswer != nil {
			existing[row.QuestionID] = *row.SelectedAnswer
		}
	}

	return &ExamPaper{
		Exam: ExamSummary{
			ID:              exam.ID,
			Title:           exam.Title,
			Description:     exam.Description,
			DurationMinutes: exam.DurationMinutes,
			EndTime:         exam.EndTime,
			MaxAttempts:     exam.MaxAttempts,
		},
		Attempt:          attempt,
		Questions:        questions,
		ExistingAnswers:  existing,
		TimeRemainingSec: TimeRemaining(attempt, exam, now),
	}, nil
}

func notifyAttempt(db *gorm.DB, attempt *models.ExamAttempt, exam *models.Exam) {
	event := &ws.AttemptEvent{
		ExamID:        exam.ID,
		ExamTitle:     exam.Title,
		AttemptID:     attempt.ID,
		StudentID:     attempt.StudentID,
		AttemptNumber: attempt.AttemptNumber,
		Status:        attempt.Status,
		OccurredAt:    time.Now(),
	}
	if attempt.Percentage != nil {
		p := *attempt.Percentage
		event.Percentage = &p
	}

	var student models.User
	if err := db.First(&student, "id = ?", attempt.StudentID).Error; err == nil {
		event.StudentName = student.FullName
	}

	ws.Notify(event)
}
