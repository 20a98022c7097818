package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ClassActive   = "active"
	ClassInactive = "inactive"
	ClassArchived = "archived"
)

const (
	MemberActive   = "active"
	MemberInactive = "inactive"
)

type Class struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	TeacherID   uuid.UUID `gorm:"type:uuid;not null;index" json:"teacher_id"`
	ClassCode   string    `gorm:"size:10;not null;unique" json:"class_code"`
	Subject     string    `gorm:"size:100" json:"subject"`
	Status      string    `gorm:"size:20;not null;default:'active'" json:"status"`
	MaxStudents int       `gorm:"not null;default:50" json:"max_students"`

	Teacher User `gorm:"foreignkey:TeacherID" json:"teacher,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Class) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ClassMember is the enrollment row between a class and a student.
// Membership is never deleted on leave; status flips to inactive so the
// join history survives.
type ClassMember struct {
	ID       uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ClassID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_class_user" json:"class_id"`
	UserID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_class_user" json:"user_id"`
	Status   string     `gorm:"size:20;not null;default:'active'" json:"status"`
	JoinedAt time.Time  `gorm:"not null" json:"joined_at"`
	LeftAt   *time.Time `json:"left_at,omitempty"`

	Class Class `gorm:"foreignkey:ClassID" json:"-"`
	User  User  `gorm:"foreignkey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *ClassMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
