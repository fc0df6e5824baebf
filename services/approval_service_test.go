package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestApprove_BindsTutorAndRejectsSiblings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t)
	a1 := f.apply(t, post.ID, f.tutors[0])
	a2 := f.apply(t, post.ID, f.tutors[1])

	result, err := f.approvals.Approve(ctx, f.student, post.ID, a1.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadyApproved)

	assert.Equal(t, models.TuitionApproved, result.Post.Status)
	require.NotNil(t, result.Post.TutorID)
	assert.Equal(t, f.tutors[0].ID, *result.Post.TutorID)
	require.NotNil(t, result.Post.TutorEmail)
	assert.Equal(t, f.tutors[0].Email, *result.Post.TutorEmail)
	assert.NotNil(t, result.Post.ApprovedAt)
	assert.Equal(t, models.ApplicationApproved, result.Application.Status)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, a2.ID, result.Rejected[0].ID)

	stored := f.reloadPost(t, post.ID)
	assert.Equal(t, models.TuitionApproved, stored.Status)
	assert.Equal(t, models.ApplicationApproved, f.reloadApp(t, a1.ID).Status)
	assert.Equal(t, models.ApplicationRejected, f.reloadApp(t, a2.ID).Status)
	assert.NotNil(t, f.reloadApp(t, a2.ID).DecidedAt)

	_, err = f.applications.Submit(ctx, f.tutors[2], post.ID, validApplication())
	var ie *InvalidStateError
	assert.True(t, errors.As(err, &ie), "got %v", err)
}

func TestApprove_IsIdempotentForTheSameApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t)
	a1 := f.apply(t, post.ID, f.tutors[0])

	_, err := f.approvals.Approve(ctx, f.student, post.ID, a1.ID)
	require.NoError(t, err)
	before := f.reloadPost(t, post.ID)

	again, err := f.approvals.Approve(ctx, f.student, post.ID, a1.ID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyApproved)
	assert.Empty(t, again.Rejected)

	after := f.reloadPost(t, post.ID)
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, models.TuitionApproved, after.Status)
}

func TestApprove_SecondApplicantAfterDecisionFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t)
	a1 := f.apply(t, post.ID, f.tutors[0])
	a2 := f.apply(t, post.ID, f.tutors[1])

	_, err := f.approvals.Approve(ctx, f.student, post.ID, a1.ID)
	require.NoError(t, err)

	_, err = f.approvals.Approve(ctx, f.student, post.ID, a2.ID)
	var ie *InvalidStateError
	require.True(t, errors.As(err, &ie), "got %v", err)

	var approved int64
	require.NoError(t, f.db.Model(&models.Application{}).
		Where("tuition_post_id = ? AND status = ?", post.ID, models.ApplicationApproved).
		Count(&approved).Error)
	assert.EqualValues(t, 1, approved)
}

func TestApprove_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t)
	a1 := f.apply(t, post.ID, f.tutors[0])

	tests := []struct {
		name  string
		actor Actor
	}{
		{name: "other student", actor: f.other},
		{name: "tutor", actor: f.tutors[0]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.approvals.Approve(ctx, tt.actor, post.ID, a1.ID)
			var ae *AuthorizationError
			assert.True(t, errors.As(err, &ae), "got %v", err)
		})
	}

	assert.Equal(t, models.TuitionPending, f.reloadPost(t, post.ID).Status)

	result, err := f.approvals.Approve(ctx, f.admin, post.ID, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TuitionApproved, result.Post.Status)
}

func TestApprove_ApplicationFromAnotherPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.post(t)
	p2 := f.post(t)
	onP2 := f.apply(t, p2.ID, f.tutors[0])

	_, err := f.approvals.Approve(ctx, f.student, p1.ID, onP2.ID)
	var ie *InvalidStateError
	assert.True(t, errors.As(err, &ie), "got %v", err)
	assert.Equal(t, models.ApplicationPending, f.reloadApp(t, onP2.ID).Status)
}

func TestApprove_UnknownIDs(t *testing.T) {
	f := newFixture(t)
	_, err := f.approvals.Approve(context.Background(), f.student, uuid.Nil, uuid.New())
	var ne *NotFoundError
	assert.True(t, errors.As(err, &ne), "got %v", err)
}

func TestApprove_ResolvesPostFromApplication(t *testing.T) {
	f := newFixture(t)
	post := f.post(t)
	a1 := f.apply(t, post.ID, f.tutors[0])

	result, err := f.approvals.Approve(context.Background(), f.student, uuid.Nil, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, result.Post.ID)
}

func TestApprove_ConcurrentApprovalsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	post := f.post(t)
	a1 := f.apply(t, post.ID, f.tutors[0])
	a2 := f.apply(t, post.ID, f.tutors[1])

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, appID := range []uuid.UUID{a1.ID, a2.ID} {
		wg.Add(1)
		go func(i int, appID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.approvals.Approve(context.Background(), f.student, post.ID, appID)
		}(i, appID)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		var ie *InvalidStateError
		switch {
		case err == nil:
			wins++
		case errors.As(err, &ie):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	stored := f.reloadPost(t, post.ID)
	require.NotNil(t, stored.TutorID)
	winner := a1
	if *stored.TutorID == a2.TutorID {
		winner = a2
	}
	assert.Equal(t, models.ApplicationApproved, f.reloadApp(t, winner.ID).Status)

	var approved int64
	require.NoError(t, f.db.Model(&models.Application{}).
		Where("tuition_post_id = ? AND status = ?", post.ID, models.ApplicationApproved).
		Count(&approved).Error)
	assert.EqualValues(t, 1, approved)
}

func TestApprove_RollsBackWhenPostWriteFails(t *testing.T) {
	f := newFixture(t)
	post := f.post(t)
	a1 := f.apply(t, post.ID, f.tutors[0])
	a2 := f.apply(t, post.ID, f.tutors[1])

	err := f.db.Callback().Update().Before("gorm:update").Register("test:fail_post_update", func(tx *gorm.DB) {
		if tx.Statement.Table == "tuition_posts" {
			_ = tx.AddError(errors.New("disk I/O error"))
		}
	})
	require.NoError(t, err)

	_, err = f.approvals.Approve(context.Background(), f.student, post.ID, a1.ID)
	var ue *UnavailableError
	require.True(t, errors.As(err, &ue), "got %v", err)

	stored := f.reloadPost(t, post.ID)
	assert.Equal(t, models.TuitionPending, stored.Status)
	assert.Nil(t, stored.TutorID)
	assert.Equal(t, models.ApplicationPending, f.reloadApp(t, a1.ID).Status)
	assert.Equal(t, models.ApplicationPending, f.reloadApp(t, a2.ID).Status)
}

func TestReject_OnlyTouchesTheApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t)
	a1 := f.apply(t, post.ID, f.tutors[0])
	a2 := f.apply(t, post.ID, f.tutors[1])
	before := f.reloadPost(t, post.ID)

	app, err := f.approvals.Reject(ctx, f.student, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, app.Status)
	assert.NotNil(t, app.DecidedAt)

	after := f.reloadPost(t, post.ID)
	assert.Equal(t, models.TuitionPending, after.Status)
	assert.Equal(t, before.Version+1, after.Version)
	assert.Equal(t, models.ApplicationPending, f.reloadApp(t, a2.ID).Status)

	_, err = f.approvals.Reject(ctx, f.student, a1.ID)
	var ie *InvalidStateError
	assert.True(t, errors.As(err, &ie), "got %v", err)

	_, err = f.approvals.Reject(ctx, f.other, a2.ID)
	var ae *AuthorizationError
	assert.True(t, errors.As(err, &ae), "got %v", err)
}

func TestCommitPost_StaleVersion(t *testing.T) {
	f := newFixture(t)
	post := f.post(t)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		stale, err := lockPost(tx, post.ID)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.TuitionPost{}).Where("id = ?", post.ID).Update("version", stale.Version+1).Error; err != nil {
			return err
		}
		return commitPost(tx, stale, map[string]interface{}{"subject": "Physics"})
	})
	var ce *ConcurrencyError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, "Mathematics", f.reloadPost(t, post.ID).Subject)
}
