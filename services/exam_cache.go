package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/bkoskei/classroom_exams/database"
	"github.com/bkoskei/classroom_exams/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// PaperQuestion is a question as the student sees it: the answer key and
// explanation never leave the server. Position is assigned per attempt
// after the pinned order is applied.
type PaperQuestion struct {
	QuestionID   uuid.UUID `json:"question_id"`
	QuestionText string    `json:"question_text"`
	OptionA      string    `json:"option_a"`
	OptionB      string    `json:"option_b"`
	OptionC      string    `json:"option_c"`
	OptionD      string    `json:"option_d"`
	ImageURL     *string   `json:"image_url,omitempty"`
	Points       float64   `json:"points"`
	Position     int       `json:"position"`
}

func paperCacheKey(examID uuid.UUID) string {
	return "exam:paper:" + examID.String()
}

// LoadPaperQuestions returns the exam's redacted question set in the stored
// exam order, read through the redis cache when one is configured. Every
// student sitting the same exam shares this payload, so the cache saves the
// join on each page load.
func LoadPaperQuestions(db *gorm.DB, exam *models.Exam) ([]PaperQuestion, error) {
	ctx := context.Background()

	if database.RDB != nil {
		data, err := database.RDB.Get(ctx, paperCacheKey(exam.ID)).Result()
		if err == nil {
			var cached []PaperQuestion
			if err := json.Unmarshal([]byte(data), &cached); err == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			log.Printf("Redis read failed for exam %s: %v", exam.ID, err)
		}
	}

	var examQuestions []models.ExamQuestion
	if err := db.Preload("Question").
		Where("exam_id = ?", exam.ID).
		Order("question_order").
		Find(&examQuestions).Error; err != nil {
		return nil, err
	}

	questions := make([]PaperQuestion, 0, len(examQuestions))
	for _, eq := range examQuestions {
		questions = append(questions, PaperQuestion{
			QuestionID:   eq.QuestionID,
			QuestionText: eq.Question.QuestionText,
			OptionA:      eq.Question.OptionA,
			OptionB:      eq.Question.OptionB,
			OptionC:      eq.Question.OptionC,
			OptionD:      eq.Question.OptionD,
			ImageURL:     eq.Question.ImageURL,
			Points:       eq.Points,
		})
	}

	if database.RDB != nil {
		ttl := time.Until(exam.EndTime) + time.Duration(exam.DurationMinutes)*time.Minute
		if ttl < time.Minute {
			ttl = time.Minute
		}
		if data, err := json.Marshal(questions); err == nil {
			if err := database.RDB.Set(ctx, paperCacheKey(exam.ID), data, ttl).Err(); err != nil {
				log.Printf("Redis write failed for exam %s: %v", exam.ID, err)
			}
		}
	}

	return questions, nil
}

// InvalidatePaperCache drops the cached paper after the exam's question set
// or settings change.
func InvalidatePaperCache(examID uuid.UUID) {
	if database.RDB == nil {
		return
	}
	if err := database.RDB.Del(context.Background(), paperCacheKey(examID)).Err(); err != nil {
		log.Printf("Redis delete failed for exam %s: %v", examID, err)
	}
}
