package utils

import (
	"math/rand"
	"time"

	"github.com/bkoskei/classroom_exams/models"
	"gorm.io/gorm"
)

const classCodeLength = 8
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateUniqueClassCode returns a join code no existing class uses.
func GenerateUniqueClassCode(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, classCodeLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		code := string(b)

		var class models.Class
		err := tx.Where("class_code = ?", code).First(&class).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return code, nil
			}
			return "", err
		}
	}
}
