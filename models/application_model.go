package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

type Application struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TuitionPostID uuid.UUID `gorm:"type:uuid;not null;index" json:"tuition_post_id"`
	TutorID       uuid.UUID `gorm:"type:uuid;not null;index" json:"tutor_id"`
	TutorEmail    string    `gorm:"size:255;not null;index" json:"tutor_email"`

	Qualification string  `gorm:"type:text;not null" json:"qualification"`
	Experience    string  `gorm:"type:text;not null" json:"experience"`
	ProposedFee   float64 `gorm:"type:numeric(10,2);not null" json:"proposed_fee"`
	Message       *string `gorm:"type:text" json:"message,omitempty"`

	Status    ApplicationStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	AppliedAt time.Time         `gorm:"not null" json:"applied_at"`
	DecidedAt *time.Time        `json:"decided_at,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`

	TuitionPost *TuitionPost `gorm:"foreignkey:TuitionPostID" json:"tuition_post,omitempty"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// IsLive reports whether the application still blocks its tutor from applying
// to the same post again.
func (a *Application) IsLive() bool {
	return a.Status == ApplicationPending || a.Status == ApplicationApproved
}
