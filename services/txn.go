package services

import (
	"context"
	"errors"
	"log"

	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postTxAttempts bounds how often a unit of work is replayed after losing a
// version race on its tuition post.
const postTxAttempts = 2

// inPostTx runs fn inside one transaction. A ConcurrencyError is retried once;
// fn re-reads all state on the retry.
func inPostTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= postTxAttempts; attempt++ {
		err = db.WithContext(ctx).Transaction(fn)
		var ce *ConcurrencyError
		if !errors.As(err, &ce) {
			break
		}
		log.Printf("Tuition %s modified concurrently (attempt %d)", ce.PostID, attempt)
	}
	return storeError(err)
}

// lockPost loads a post for update. Row locks are taken on PostgreSQL; every
// dialect is still protected by the version check in commitPost.
func lockPost(tx *gorm.DB, id uuid.UUID) (*models.TuitionPost, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var post models.TuitionPost
	if err := q.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "tuition", ID: id.String()}
		}
		return nil, err
	}
	return &post, nil
}

// commitPost applies updates to the post only if nobody else wrote it since it
// was read, then reloads it.
func commitPost(tx *gorm.DB, post *models.TuitionPost, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["version"] = post.Version + 1

	res := tx.Model(&models.TuitionPost{}).
		Where("id = ? AND version = ?", post.ID, post.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &ConcurrencyError{PostID: post.ID.String()}
	}
	return tx.First(post, "id = ?", post.ID).Error
}

func findApplication(tx *gorm.DB, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := tx.First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "application", ID: id.String()}
		}
		return nil, err
	}
	return &app, nil
}
