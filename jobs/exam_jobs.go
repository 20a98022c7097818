package jobs

import (
	"log"
	"time"

	"github.com/bkoskei/classroom_exams/database"
	"github.com/bkoskei/classroom_exams/models"
	"github.com/bkoskei/classroom_exams/services"
)

// FinalizeOverdueAttempts is the server-side backstop for the client
// countdown: attempts that outlived their duration budget get scored from
// their autosaved answers and marked timed out.
func FinalizeOverdueAttempts() {
	finalized, err := services.FinalizeOverdueAttempts(database.DB)
	if err != nil {
		log.Printf("Error finalizing overdue attempts: %v", err)
		return
	}
	if finalized > 0 {
		log.Printf("Finalized %d overdue attempt(s)", finalized)
	}
}

// CompleteExpiredExams flips published exams whose window has closed into
// the completed state.
func CompleteExpiredExams() {
	res := database.DB.Model(&models.Exam{}).
		Where("status = ? AND end_time < ?", models.ExamPublished, time.Now()).
		Update("status", models.ExamCompleted)
	if res.Error != nil {
		log.Printf("Error completing expired exams: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Marked %d exam(s) as completed", res.RowsAffected)
	}
}
