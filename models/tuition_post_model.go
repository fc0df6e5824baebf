package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TuitionStatus string

const (
	TuitionPending   TuitionStatus = "pending"
	TuitionApproved  TuitionStatus = "approved"
	TuitionRejected  TuitionStatus = "rejected"
	TuitionCompleted TuitionStatus = "completed"
)

// TuitionPost is a student's request for a tutor. TutorID and TutorEmail are
// set exactly when Status is approved or completed.
type TuitionPost struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StudentID    uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	StudentEmail string    `gorm:"size:255;not null;index" json:"student_email"`

	Subject     string  `gorm:"size:255;not null" json:"subject"`
	Class       string  `gorm:"size:100;not null" json:"class"`
	Curriculum  string  `gorm:"size:100" json:"curriculum"`
	Location    string  `gorm:"size:255;not null" json:"location"`
	Budget      int     `gorm:"not null" json:"budget"`
	DaysPerWeek int     `gorm:"not null;default:0" json:"days_per_week"`
	TimeSlot    string  `gorm:"size:100;not null" json:"time_slot"`
	Contact     string  `gorm:"size:255;not null" json:"contact"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	Status           TuitionStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ApplicationCount int           `gorm:"not null;default:0" json:"application_count"`
	TutorID          *uuid.UUID    `gorm:"type:uuid" json:"tutor_id,omitempty"`
	TutorEmail       *string       `gorm:"size:255" json:"tutor_email,omitempty"`
	Version          int           `gorm:"not null;default:0" json:"-"`

	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p *TuitionPost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *TuitionPost) IsPending() bool { return p.Status == TuitionPending }
