package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// PaymentInput is the body the payment gateway posts to the webhook.
type PaymentInput struct {
	TransactionID string               `json:"transaction_id" validate:"required"`
	PayerEmail    string               `json:"payer_email" validate:"required,email"`
	TuitionPostID string               `json:"tuition_id" validate:"omitempty,uuid"`
	ApplicationID string               `json:"application_id" validate:"omitempty,uuid"`
	Amount        float64              `json:"amount" validate:"gt=0"`
	Currency      string               `json:"currency" validate:"omitempty,len=3"`
	Status        models.PaymentStatus `json:"status" validate:"omitempty,oneof=pending completed failed refunded"`
	PaymentDate   *time.Time           `json:"payment_date"`
	Subject       string               `json:"subject"`
	Class         string               `json:"class"`
	Month         string               `json:"month"`
}

// canMove reports whether a payment may go from one status to another.
func canMove(from, to models.PaymentStatus) bool {
	switch from {
	case models.PaymentPending:
		return to == models.PaymentCompleted || to == models.PaymentFailed
	case models.PaymentCompleted:
		return to == models.PaymentRefunded
	}
	return false
}

// Record stores a gateway callback. Replaying a transaction id is a no-op when
// the status matches and a finalization when the transition is allowed. The
// boolean result reports whether anything was written.
func (s *PaymentService) Record(ctx context.Context, in PaymentInput) (*models.PaymentRecord, bool, error) {
	in.TransactionID = strings.TrimSpace(in.TransactionID)
	in.PayerEmail = strings.ToLower(strings.TrimSpace(in.PayerEmail))
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Status == "" {
		in.Status = models.PaymentCompleted
	}
	if err := validateInput(&in); err != nil {
		return nil, false, err
	}

	var existing models.PaymentRecord
	err := s.db.WithContext(ctx).Where("transaction_id = ?", in.TransactionID).First(&existing).Error
	if err == nil {
		if existing.Status == in.Status {
			return &existing, false, nil
		}
		rec, err := s.Finalize(ctx, in.TransactionID, in.Status)
		return rec, err == nil, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, storeError(err)
	}
	if in.Status == models.PaymentRefunded {
		return nil, false, &InvalidStateError{Message: "cannot refund an unknown transaction"}
	}

	rec := models.PaymentRecord{
		TransactionID: in.TransactionID,
		PayerEmail:    in.PayerEmail,
		Amount:        in.Amount,
		Currency:      in.Currency,
		Status:        in.Status,
		PaymentDate:   s.now(),
		Subject:       in.Subject,
		Class:         in.Class,
		Month:         in.Month,
	}
	if in.PaymentDate != nil {
		rec.PaymentDate = in.PaymentDate.UTC()
	}
	if rec.Currency == "" {
		rec.Currency = "KES"
	}
	if rec.Month == "" {
		rec.Month = rec.PaymentDate.Format("January 2006")
	}
	if err := s.attachTuition(ctx, &rec, in); err != nil {
		return nil, false, err
	}

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		// A concurrent delivery of the same transaction may have won the insert.
		if lookup := s.db.WithContext(ctx).Where("transaction_id = ?", in.TransactionID).First(&existing).Error; lookup == nil {
			return &existing, false, nil
		}
		return nil, false, storeError(err)
	}
	log.Printf("Payment %s recorded for %s (%s)", rec.TransactionID, rec.PayerEmail, rec.Status)
	return &rec, true, nil
}

// attachTuition links the record to its post and application and fills the
// payee and display fields the gateway left out.
func (s *PaymentService) attachTuition(ctx context.Context, rec *models.PaymentRecord, in PaymentInput) error {
	if in.ApplicationID != "" {
		appID := uuid.MustParse(in.ApplicationID)
		app, err := findApplication(s.db.WithContext(ctx), appID)
		if err != nil {
			return storeError(err)
		}
		rec.ApplicationID = &app.ID
		rec.PayeeEmail = &app.TutorEmail
		if in.TuitionPostID == "" {
			in.TuitionPostID = app.TuitionPostID.String()
		} else if app.TuitionPostID.String() != in.TuitionPostID {
			return newValidationError("invalid input", FieldError{Field: "application_id", Error: "does not belong to the tuition"})
		}
	}
	if in.TuitionPostID == "" {
		return nil
	}

	postID := uuid.MustParse(in.TuitionPostID)
	var post models.TuitionPost
	if err := s.db.WithContext(ctx).First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "tuition", ID: in.TuitionPostID}
		}
		return storeError(err)
	}
	rec.TuitionPostID = &post.ID
	if rec.PayeeEmail == nil && post.TutorEmail != nil {
		rec.PayeeEmail = post.TutorEmail
	}
	if rec.Subject == "" {
		rec.Subject = post.Subject
	}
	if rec.Class == "" {
		rec.Class = post.Class
	}
	return nil
}

// Finalize moves a payment to its next status. It is the only mutation a
// PaymentRecord ever sees.
func (s *PaymentService) Finalize(ctx context.Context, transactionID string, to models.PaymentStatus) (*models.PaymentRecord, error) {
	var rec models.PaymentRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", transactionID).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "payment", ID: transactionID}
			}
			return err
		}
		if !canMove(rec.Status, to) {
			return &InvalidStateError{Message: "payment cannot move from " + string(rec.Status) + " to " + string(to)}
		}
		res := tx.Model(&models.PaymentRecord{}).
			Where("id = ? AND status = ?", rec.ID, rec.Status).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &InvalidStateError{Message: "payment was finalized concurrently"}
		}
		return tx.First(&rec, "id = ?", rec.ID).Error
	})
	if err != nil {
		return nil, storeError(err)
	}
	return &rec, nil
}

// FailStale marks pending payments older than maxAge as failed.
func (s *PaymentService) FailStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge)
	res := s.db.WithContext(ctx).Model(&models.PaymentRecord{}).
		Where("status = ? AND payment_date < ?", models.PaymentPending, cutoff).
		Update("status", models.PaymentFailed)
	if res.Error != nil {
		return 0, storeError(res.Error)
	}
	return res.RowsAffected, nil
}

type PaymentFilter struct {
	PayerEmail string
	PayeeEmail string
	Status     models.PaymentStatus
}

func (s *PaymentService) list(ctx context.Context, f PaymentFilter) ([]models.PaymentRecord, error) {
	query := s.db.WithContext(ctx).Model(&models.PaymentRecord{})
	if f.PayerEmail != "" {
		query = query.Where("payer_email = ?", strings.ToLower(f.PayerEmail))
	}
	if f.PayeeEmail != "" {
		query = query.Where("payee_email = ?", strings.ToLower(f.PayeeEmail))
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	var records []models.PaymentRecord
	if err := query.Order("payment_date desc").Find(&records).Error; err != nil {
		return nil, storeError(err)
	}
	return records, nil
}

func (s *PaymentService) ListAll(ctx context.Context, actor Actor, f PaymentFilter) ([]models.PaymentRecord, error) {
	if !actor.IsAdmin() {
		return nil, &AuthorizationError{Action: "list all payments"}
	}
	return s.list(ctx, f)
}

// ListForStudent returns the payments made by studentEmail. Students only see
// their own; an empty email means the caller.
func (s *PaymentService) ListForStudent(ctx context.Context, actor Actor, studentEmail string) ([]models.PaymentRecord, error) {
	if studentEmail == "" {
		studentEmail = actor.Email
	}
	if !actor.IsAdmin() && !(actor.IsStudent() && strings.EqualFold(studentEmail, actor.Email)) {
		return nil, &AuthorizationError{Action: "list student payments"}
	}
	return s.list(ctx, PaymentFilter{PayerEmail: studentEmail})
}
