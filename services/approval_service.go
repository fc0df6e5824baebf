package services

import (
	"context"
	"time"

	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalService binds one application to a tuition post. Approving rejects
// every other pending application on the post in the same transaction.
type ApprovalService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewApprovalService(db *gorm.DB) *ApprovalService {
	return &ApprovalService{db: db, now: func() time.Time { return time.Now().UTC() }}
}

type ApprovalResult struct {
	Post        models.TuitionPost `json:"tuition"`
	Application models.Application `json:"application"`
	// Rejected lists the sibling applications this call turned down.
	Rejected []models.Application `json:"rejected"`
	// AlreadyApproved is set when the call found the post already bound to
	// this application and changed nothing.
	AlreadyApproved bool `json:"already_approved"`
}

// Approve approves appID on postID. A nil postID means the application's own post.
func (s *ApprovalService) Approve(ctx context.Context, actor Actor, postID, appID uuid.UUID) (*ApprovalResult, error) {
	var result *ApprovalResult
	err := inPostTx(ctx, s.db, func(tx *gorm.DB) error {
		app, post, err := lockApplication(tx, appID)
		if err != nil {
			return err
		}
		if postID == uuid.Nil {
			postID = post.ID
		}
		if !actor.canDecide(post) {
			return &AuthorizationError{Action: "approve application"}
		}
		if app.TuitionPostID != postID {
			return &InvalidStateError{Message: "application does not belong to this tuition"}
		}

		if post.Status == models.TuitionApproved && app.Status == models.ApplicationApproved &&
			post.TutorID != nil && *post.TutorID == app.TutorID {
			result = &ApprovalResult{Post: *post, Application: *app, Rejected: []models.Application{}, AlreadyApproved: true}
			return nil
		}
		if !post.IsPending() {
			return &InvalidStateError{Message: "tuition is already " + string(post.Status)}
		}
		if app.Status != models.ApplicationPending {
			return &InvalidStateError{Message: "application is already " + string(app.Status)}
		}

		now := s.now()
		var siblings []models.Application
		err = tx.Where("tuition_post_id = ? AND id <> ? AND status = ?", post.ID, app.ID, models.ApplicationPending).
			Find(&siblings).Error
		if err != nil {
			return err
		}

		res := tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", app.ID, models.ApplicationPending).
			Updates(map[string]interface{}{"status": models.ApplicationApproved, "decided_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &ConcurrencyError{PostID: post.ID.String()}
		}

		if len(siblings) > 0 {
			ids := make([]uuid.UUID, 0, len(siblings))
			for _, sib := range siblings {
				ids = append(ids, sib.ID)
			}
			err = tx.Model(&models.Application{}).
				Where("id IN ? AND status = ?", ids, models.ApplicationPending).
				Updates(map[string]interface{}{"status": models.ApplicationRejected, "decided_at": now}).Error
			if err != nil {
				return err
			}
			for i := range siblings {
				siblings[i].Status = models.ApplicationRejected
				siblings[i].DecidedAt = &now
			}
		}

		err = commitPost(tx, post, map[string]interface{}{
			"status":      models.TuitionApproved,
			"tutor_id":    app.TutorID,
			"tutor_email": app.TutorEmail,
			"approved_at": now,
		})
		if err != nil {
			return err
		}
		if err := tx.First(app, "id = ?", app.ID).Error; err != nil {
			return err
		}

		if siblings == nil {
			siblings = []models.Application{}
		}
		result = &ApprovalResult{Post: *post, Application: *app, Rejected: siblings}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reject turns down a single pending application. The post and the other
// applications keep their state.
func (s *ApprovalService) Reject(ctx context.Context, actor Actor, appID uuid.UUID) (*models.Application, error) {
	var app *models.Application
	err := inPostTx(ctx, s.db, func(tx *gorm.DB) error {
		var (
			post *models.TuitionPost
			err  error
		)
		app, post, err = lockApplication(tx, appID)
		if err != nil {
			return err
		}
		if !actor.canDecide(post) {
			return &AuthorizationError{Action: "reject application"}
		}
		if app.Status != models.ApplicationPending {
			return &InvalidStateError{Message: "application is already " + string(app.Status)}
		}

		res := tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", app.ID, models.ApplicationPending).
			Updates(map[string]interface{}{"status": models.ApplicationRejected, "decided_at": s.now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &ConcurrencyError{PostID: post.ID.String()}
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
