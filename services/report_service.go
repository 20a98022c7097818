package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	config "github.com/bkoskei/classroom_exams/configs"
	"github.com/bkoskei/classroom_exams/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reportRow struct {
	StudentName   string
	AttemptNumber int
	Score         float64
	Percentage    float64
	Passed        bool
	SubmittedAt   string
}

// GenerateResultsReport renders the exam's completed attempts into a PDF
// results sheet and uploads it. Returns the public URL of the document.
func GenerateResultsReport(db *gorm.DB, exam *models.Exam) (string, error) {
	var class models.Class
	if err := db.First(&class, "id = ?", exam.ClassID).Error; err != nil {
		return "", err
	}

	var attempts []models.ExamAttempt
	if err := db.Preload("Student").
		Where("exam_id = ? AND status IN ?", exam.ID,
			[]string{models.AttemptCompleted, models.AttemptSubmitted, models.AttemptTimedOut}).
		Order("percentage DESC").
		Find(&attempts).Error; err != nil {
		return "", err
	}

	rows := make([]reportRow, 0, len(attempts))
	for _, attempt := range attempts {
		row := reportRow{
			StudentName:   attempt.Student.FullName,
			AttemptNumber: attempt.AttemptNumber,
		}
		if attempt.Score != nil {
			row.Score = *attempt.Score
		}
		if attempt.Percentage != nil {
			row.Percentage = *attempt.Percentage
			row.Passed = *attempt.Percentage >= exam.PassingScore
		}
		if attempt.SubmittedAt != nil {
			row.SubmittedAt = attempt.SubmittedAt.Format("Jan 2, 2006 15:04")
		}
		rows = append(rows, row)
	}

	htmlData, err := generateReportHTML(exam, &class, rows)
	if err != nil {
		return "", fmt.Errorf("failed to render report HTML: %w", err)
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		return "", fmt.Errorf("failed to generate PDF: %w", err)
	}

	uploadURL, err := uploadReportToCloudinary(pdfBytes, exam.ID.String())
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	return uploadURL, nil
}

func generateReportHTML(exam *models.Exam, class *models.Class, rows []reportRow) (string, error) {
	tmpl, err := template.ParseFiles("templates/report.html")
	if err != nil {
		return "", err
	}

	data := struct {
		ExamTitle    string
		ClassName    string
		PassingScore float64
		GeneratedAt  string
		Rows         []reportRow
	}{
		ExamTitle:    exam.Title,
		ClassName:    class.Name,
		PassingScore: exam.PassingScore,
		GeneratedAt:  time.Now().Format("January 2, 2006 15:04"),
		Rows:         rows,
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadReportToCloudinary(fileBytes []byte, examID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("reports/%s_%s", examID, uuid.New().String()),
		Folder:       "classroom_exam_reports",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
