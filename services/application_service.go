package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewApplicationService(db *gorm.DB) *ApplicationService {
	return &ApplicationService{db: db, now: func() time.Time { return time.Now().UTC() }}
}

type ApplicationInput struct {
	Qualification string  `json:"qualification" validate:"required"`
	Experience    string  `json:"experience" validate:"required"`
	ProposedFee   float64 `json:"proposed_fee" validate:"gt=0"`
	Message       string  `json:"message"`
}

func (in *ApplicationInput) normalize() error {
	in.Qualification = strings.TrimSpace(in.Qualification)
	in.Experience = strings.TrimSpace(in.Experience)
	in.Message = strings.TrimSpace(in.Message)
	return validateInput(in)
}

func (in ApplicationInput) message() *string {
	if in.Message == "" {
		return nil
	}
	return &in.Message
}

// lockApplication locks the application's post first and only then reads the
// application, so both are seen at the same version.
func lockApplication(tx *gorm.DB, id uuid.UUID) (*models.Application, *models.TuitionPost, error) {
	app, err := findApplication(tx, id)
	if err != nil {
		return nil, nil, err
	}
	post, err := lockPost(tx, app.TuitionPostID)
	if err != nil {
		return nil, nil, err
	}
	if app, err = findApplication(tx, id); err != nil {
		return nil, nil, err
	}
	return app, post, nil
}

func (s *ApplicationService) Submit(ctx context.Context, actor Actor, postID uuid.UUID, in ApplicationInput) (*models.Application, error) {
	if !actor.IsTutor() {
		return nil, &AuthorizationError{Action: "apply to tuition"}
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var app *models.Application
	err := inPostTx(ctx, s.db, func(tx *gorm.DB) error {
		post, err := lockPost(tx, postID)
		if err != nil {
			return err
		}
		if !post.IsPending() {
			return &InvalidStateError{Message: "tuition is no longer accepting applications"}
		}

		var live int64
		err = tx.Model(&models.Application{}).
			Where("tuition_post_id = ? AND tutor_id = ? AND status IN ?", postID, actor.ID,
				[]models.ApplicationStatus{models.ApplicationPending, models.ApplicationApproved}).
			Count(&live).Error
		if err != nil {
			return err
		}
		if live > 0 {
			return &DuplicateError{Message: "you have already applied to this tuition"}
		}

		app = &models.Application{
			TuitionPostID: postID,
			TutorID:       actor.ID,
			TutorEmail:    actor.Email,
			Qualification: in.Qualification,
			Experience:    in.Experience,
			ProposedFee:   in.ProposedFee,
			Message:       in.message(),
			Status:        models.ApplicationPending,
			AppliedAt:     s.now(),
		}
		if err := tx.Create(app).Error; err != nil {
			return err
		}
		return commitPost(tx, post, map[string]interface{}{
			"application_count": post.ApplicationCount + 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (s *ApplicationService) Edit(ctx context.Context, actor Actor, id uuid.UUID, in ApplicationInput) (*models.Application, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var app *models.Application
	err := inPostTx(ctx, s.db, func(tx *gorm.DB) error {
		var (
			post *models.TuitionPost
			err  error
		)
		app, post, err = lockApplication(tx, id)
		if err != nil {
			return err
		}
		if !actor.ownsApplication(app) {
			return &AuthorizationError{Action: "edit application"}
		}
		if app.Status != models.ApplicationPending {
			return &InvalidStateError{Message: "only pending applications can be edited"}
		}

		var message interface{}
		if m := in.message(); m != nil {
			message = *m
		}
		err = tx.Model(&models.Application{}).Where("id = ?", app.ID).Updates(map[string]interface{}{
			"qualification": in.Qualification,
			"experience":    in.Experience,
			"proposed_fee":  in.ProposedFee,
			"message":       message,
		}).Error
		if err != nil {
			return err
		}
		if err := commitPost(tx, post, nil); err != nil {
			return err
		}
		return tx.First(app, "id = ?", app.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Withdraw hard-deletes a pending application owned by the caller.
func (s *ApplicationService) Withdraw(ctx context.Context, actor Actor, id uuid.UUID) error {
	return inPostTx(ctx, s.db, func(tx *gorm.DB) error {
		app, post, err := lockApplication(tx, id)
		if err != nil {
			return err
		}
		if !actor.ownsApplication(app) {
			return &AuthorizationError{Action: "withdraw application"}
		}
		if app.Status != models.ApplicationPending {
			return &InvalidStateError{Message: "only pending applications can be withdrawn"}
		}
		if err := tx.Delete(&models.Application{}, "id = ?", app.ID).Error; err != nil {
			return err
		}
		count := post.ApplicationCount - 1
		if count < 0 {
			count = 0
		}
		return commitPost(tx, post, map[string]interface{}{"application_count": count})
	})
}

func (s *ApplicationService) ListForPost(ctx context.Context, actor Actor, postID uuid.UUID) ([]models.Application, error) {
	var post models.TuitionPost
	if err := s.db.WithContext(ctx).First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "tuition", ID: postID.String()}
		}
		return nil, storeError(err)
	}
	if !actor.canDecide(&post) {
		return nil, &AuthorizationError{Action: "list tuition applications"}
	}

	var apps []models.Application
	err := s.db.WithContext(ctx).Where("tuition_post_id = ?", postID).Order("applied_at asc").Find(&apps).Error
	if err != nil {
		return nil, storeError(err)
	}
	return apps, nil
}

func (s *ApplicationService) ListMine(ctx context.Context, actor Actor) ([]models.Application, error) {
	if !actor.IsTutor() {
		return nil, &AuthorizationError{Action: "list own applications"}
	}
	var apps []models.Application
	err := s.db.WithContext(ctx).
		Preload("TuitionPost").
		Where("tutor_id = ?", actor.ID).
		Order("applied_at desc").
		Find(&apps).Error
	if err != nil {
		return nil, storeError(err)
	}
	return apps, nil
}
