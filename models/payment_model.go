package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentRecord is a ledger entry written by the payment callback. Only Status
// (and UpdatedAt) ever changes after insert.
type PaymentRecord struct {
	ID            uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID string        `gorm:"size:255;not null;unique" json:"transaction_id"`
	PayerEmail    string        `gorm:"size:255;not null;index" json:"payer_email"`
	PayeeEmail    *string       `gorm:"size:255;index" json:"payee_email,omitempty"`
	TuitionPostID *uuid.UUID    `gorm:"type:uuid;index" json:"tuition_post_id,omitempty"`
	ApplicationID *uuid.UUID    `gorm:"type:uuid" json:"application_id,omitempty"`
	Amount        float64       `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency      string        `gorm:"size:3" json:"currency"`
	Status        PaymentStatus `gorm:"size:20;not null;index" json:"status"`
	PaymentDate   time.Time     `gorm:"not null" json:"payment_date"`

	Subject string `gorm:"size:255" json:"subject,omitempty"`
	Class   string `gorm:"size:100" json:"class,omitempty"`
	Month   string `gorm:"size:20" json:"month,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *PaymentRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
