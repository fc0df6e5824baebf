package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TuitionService struct {
	db        *gorm.DB
	minBudget int
	now       func() time.Time
}

func NewTuitionService(db *gorm.DB, minBudget int) *TuitionService {
	return &TuitionService{db: db, minBudget: minBudget, now: func() time.Time { return time.Now().UTC() }}
}

type TuitionInput struct {
	Subject     string `json:"subject" validate:"required"`
	Class       string `json:"class" validate:"required"`
	Curriculum  string `json:"curriculum"`
	Location    string `json:"location" validate:"required"`
	Budget      int    `json:"budget" validate:"required,gt=0"`
	DaysPerWeek int    `json:"days_per_week" validate:"gte=0,lte=7"`
	TimeSlot    string `json:"time_slot" validate:"required"`
	Contact     string `json:"contact" validate:"required"`
	Description string `json:"description"`
	// StudentEmail lets an admin post on behalf of a registered student.
	StudentEmail string `json:"student_email" validate:"omitempty,email"`
}

func (in *TuitionInput) trim() {
	in.Subject = strings.TrimSpace(in.Subject)
	in.Class = strings.TrimSpace(in.Class)
	in.Curriculum = strings.TrimSpace(in.Curriculum)
	in.Location = strings.TrimSpace(in.Location)
	in.TimeSlot = strings.TrimSpace(in.TimeSlot)
	in.Contact = strings.TrimSpace(in.Contact)
	in.Description = strings.TrimSpace(in.Description)
}

func (s *TuitionService) validateInput(in *TuitionInput) error {
	in.trim()
	if err := validateInput(in); err != nil {
		return err
	}
	if in.Budget < s.minBudget {
		return newValidationError("invalid input", FieldError{
			Field: "budget",
			Error: "must be at least " + strconv.Itoa(s.minBudget),
		})
	}
	return nil
}

func (s *TuitionService) Create(ctx context.Context, actor Actor, in TuitionInput) (*models.TuitionPost, error) {
	if !actor.IsStudent() && !actor.IsAdmin() {
		return nil, &AuthorizationError{Action: "create tuition"}
	}
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}

	studentID, studentEmail := actor.ID, actor.Email
	if actor.IsAdmin() {
		if in.StudentEmail == "" {
			return nil, newValidationError("invalid input", FieldError{Field: "student_email", Error: "is required"})
		}
		var student models.User
		err := s.db.WithContext(ctx).Where("email = ? AND role = ?", in.StudentEmail, models.RoleStudent).First(&student).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "student", ID: in.StudentEmail}
		}
		if err != nil {
			return nil, storeError(err)
		}
		studentID, studentEmail = student.ID, student.Email
	}

	post := models.TuitionPost{
		StudentID:    studentID,
		StudentEmail: studentEmail,
		Subject:      in.Subject,
		Class:        in.Class,
		Curriculum:   in.Curriculum,
		Location:     in.Location,
		Budget:       in.Budget,
		DaysPerWeek:  in.DaysPerWeek,
		TimeSlot:     in.TimeSlot,
		Contact:      in.Contact,
		Status:       models.TuitionPending,
	}
	if in.Description != "" {
		post.Description = &in.Description
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, storeError(err)
	}
	return &post, nil
}

func (s *TuitionService) Get(ctx context.Context, id uuid.UUID) (*models.TuitionPost, error) {
	var post models.TuitionPost
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "tuition", ID: id.String()}
		}
		return nil, storeError(err)
	}
	return &post, nil
}

// UpdateDetails overwrites the descriptive fields of a pending post.
func (s *TuitionService) UpdateDetails(ctx context.Context, actor Actor, id uuid.UUID, in TuitionInput) (*models.TuitionPost, error) {
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}

	var post *models.TuitionPost
	err := inPostTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		post, err = lockPost(tx, id)
		if err != nil {
			return err
		}
		if !actor.canDecide(post) {
			return &AuthorizationError{Action: "update tuition"}
		}
		if !post.IsPending() {
			return &InvalidStateError{Message: "only pending tuitions can be edited"}
		}
		var description interface{}
		if in.Description != "" {
			description = in.Description
		}
		return commitPost(tx, post, map[string]interface{}{
			"subject":       in.Subject,
			"class":         in.Class,
			"curriculum":    in.Curriculum,
			"location":      in.Location,
			"budget":        in.Budget,
			"days_per_week": in.DaysPerWeek,
			"time_slot":     in.TimeSlot,
			"contact":       in.Contact,
			"description":   description,
		})
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Reject is the admin moderation path that closes a pending post without a tutor.
// Admin approval goes through ApprovalService so that a tutor is always bound.
func (s *TuitionService) Reject(ctx context.Context, actor Actor, id uuid.UUID) (*models.TuitionPost, error) {
	if !actor.IsAdmin() {
		return nil, &AuthorizationError{Action: "moderate tuition"}
	}

	var post *models.TuitionPost
	err := inPostTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		post, err = lockPost(tx, id)
		if err != nil {
			return err
		}
		if !post.IsPending() {
			return &InvalidStateError{Message: "tuition is already " + string(post.Status)}
		}
		return commitPost(tx, post, map[string]interface{}{
			"status":      models.TuitionRejected,
			"rejected_at": s.now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Complete accepts the external "lessons delivered" event for an approved post.
func (s *TuitionService) Complete(ctx context.Context, actor Actor, id uuid.UUID) (*models.TuitionPost, error) {
	var post *models.TuitionPost
	err := inPostTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		post, err = lockPost(tx, id)
		if err != nil {
			return err
		}
		if !actor.canDecide(post) {
			return &AuthorizationError{Action: "complete tuition"}
		}
		if post.Status != models.TuitionApproved {
			return &InvalidStateError{Message: "only approved tuitions can be completed"}
		}
		return commitPost(tx, post, map[string]interface{}{
			"status":       models.TuitionCompleted,
			"completed_at": s.now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

type TuitionSort string

const (
	SortRecent     TuitionSort = "recent"
	SortBudgetAsc  TuitionSort = "budget_asc"
	SortBudgetDesc TuitionSort = "budget_desc"
)

type TuitionFilter struct {
	Status       models.TuitionStatus
	Subject      string
	Class        string
	Location     string
	StudentEmail string
	MinBudget    int
	MaxBudget    int
	Sort         TuitionSort
	Page         int
	Limit        int
}

// Normalize applies the default and maximum page size.
func (f *TuitionFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
}

func likeTerm(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func (f TuitionFilter) apply(query *gorm.DB) *gorm.DB {
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Subject != "" {
		query = query.Where("LOWER(subject) LIKE ?", likeTerm(f.Subject))
	}
	if f.Class != "" {
		query = query.Where("LOWER(class) LIKE ?", likeTerm(f.Class))
	}
	if f.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", likeTerm(f.Location))
	}
	if f.StudentEmail != "" {
		query = query.Where("student_email = ?", f.StudentEmail)
	}
	if f.MinBudget > 0 {
		query = query.Where("budget >= ?", f.MinBudget)
	}
	if f.MaxBudget > 0 {
		query = query.Where("budget <= ?", f.MaxBudget)
	}
	return query
}

func (s *TuitionService) List(ctx context.Context, f TuitionFilter) ([]models.TuitionPost, int64, error) {
	f.Normalize()

	var total int64
	countQuery := f.apply(s.db.WithContext(ctx).Model(&models.TuitionPost{}))
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, storeError(err)
	}

	query := f.apply(s.db.WithContext(ctx).Model(&models.TuitionPost{}))
	switch f.Sort {
	case SortBudgetAsc:
		query = query.Order("budget asc").Order("created_at desc")
	case SortBudgetDesc:
		query = query.Order("budget desc").Order("created_at desc")
	default:
		query = query.Order("created_at desc")
	}

	var posts []models.TuitionPost
	if err := query.Offset((f.Page - 1) * f.Limit).Limit(f.Limit).Find(&posts).Error; err != nil {
		return nil, 0, storeError(err)
	}
	return posts, total, nil
}

func (s *TuitionService) ListMine(ctx context.Context, actor Actor) ([]models.TuitionPost, error) {
	if !actor.IsStudent() {
		return nil, &AuthorizationError{Action: "list own tuitions"}
	}
	var posts []models.TuitionPost
	err := s.db.WithContext(ctx).Where("student_id = ?", actor.ID).Order("created_at desc").Find(&posts).Error
	if err != nil {
		return nil, storeError(err)
	}
	return posts, nil
}
