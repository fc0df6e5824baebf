package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t)

	app := f.apply(t, post.ID, f.tutors[0])
	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Equal(t, f.tutors[0].Email, app.TutorEmail)
	assert.Equal(t, 1, f.reloadPost(t, post.ID).ApplicationCount)

	_, err := f.applications.Submit(ctx, f.tutors[0], post.ID, validApplication())
	var de *DuplicateError
	require.True(t, errors.As(err, &de), "got %v", err)
	assert.Equal(t, 1, f.reloadPost(t, post.ID).ApplicationCount)
}

func TestSubmit_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t)

	_, err := f.applications.Submit(ctx, f.student, post.ID, validApplication())
	var ae *AuthorizationError
	assert.True(t, errors.As(err, &ae), "student: got %v", err)

	_, err = f.applications.Submit(ctx, f.tutors[0], uuid.New(), validApplication())
	var ne *NotFoundError
	assert.True(t, errors.As(err, &ne), "unknown post: got %v", err)

	tests := []struct {
		name  string
		edit  func(*ApplicationInput)
		field string
	}{
		{name: "no qualification", edit: func(in *ApplicationInput) { in.Qualification = "" }, field: "qualification"},
		{name: "no experience", edit: func(in *ApplicationInput) { in.Experience = " " }, field: "experience"},
		{name: "zero fee", edit: func(in *ApplicationInput) { in.ProposedFee = 0 }, field: "proposed_fee"},
		{name: "negative fee", edit: func(in *ApplicationInput) { in.ProposedFee = -10 }, field: "proposed_fee"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validApplication()
			tt.edit(&in)
			_, err := f.applications.Submit(ctx, f.tutors[0], post.ID, in)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			require.Len(t, ve.Fields, 1)
			assert.Equal(t, tt.field, ve.Fields[0].Field)
		})
	}
	assert.Equal(t, 0, f.reloadPost(t, post.ID).ApplicationCount)
}

func TestSubmit_AfterRejectionIsAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t)
	app := f.apply(t, post.ID, f.tutors[0])

	_, err := f.approvals.Reject(ctx, f.student, app.ID)
	require.NoError(t, err)

	again := f.apply(t, post.ID, f.tutors[0])
	assert.NotEqual(t, app.ID, again.ID)
	assert.Equal(t, 2, f.reloadPost(t, post.ID).ApplicationCount)
}

func TestEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t)
	app := f.apply(t, post.ID, f.tutors[0])

	in := ApplicationInput{Qualification: "MSc Physics", Experience: "6 years", ProposedFee: 6000}
	_, err := f.applications.Edit(ctx, f.tutors[1], app.ID, in)
	var ae *AuthorizationError
	require.True(t, errors.As(err, &ae), "got %v", err)

	edited, err := f.applications.Edit(ctx, f.tutors[0], app.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "MSc Physics", edited.Qualification)
	assert.Equal(t, 6000.0, edited.ProposedFee)
	assert.Nil(t, edited.Message)

	_, err = f.approvals.Reject(ctx, f.student, app.ID)
	require.NoError(t, err)
	_, err = f.applications.Edit(ctx, f.tutors[0], app.ID, in)
	var ie *InvalidStateError
	assert.True(t, errors.As(err, &ie), "got %v", err)
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t)
	a1 := f.apply(t, post.ID, f.tutors[0])
	a2 := f.apply(t, post.ID, f.tutors[1])

	err := f.applications.Withdraw(ctx, f.tutors[1], a1.ID)
	var ae *AuthorizationError
	require.True(t, errors.As(err, &ae), "got %v", err)

	require.NoError(t, f.applications.Withdraw(ctx, f.tutors[0], a1.ID))
	assert.Equal(t, 1, f.reloadPost(t, post.ID).ApplicationCount)

	var count int64
	require.NoError(t, f.db.Model(&models.Application{}).Where("id = ?", a1.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	err = f.applications.Withdraw(ctx, f.tutors[0], a1.ID)
	var ne *NotFoundError
	assert.True(t, errors.As(err, &ne), "got %v", err)

	_, err = f.approvals.Approve(ctx, f.student, post.ID, a2.ID)
	require.NoError(t, err)
	err = f.applications.Withdraw(ctx, f.tutors[1], a2.ID)
	var ie *InvalidStateError
	assert.True(t, errors.As(err, &ie), "got %v", err)
}

func TestListApplications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t)
	f.apply(t, post.ID, f.tutors[0])
	f.apply(t, post.ID, f.tutors[1])

	apps, err := f.applications.ListForPost(ctx, f.student, post.ID)
	require.NoError(t, err)
	assert.Len(t, apps, 2)

	apps, err = f.applications.ListForPost(ctx, f.admin, post.ID)
	require.NoError(t, err)
	assert.Len(t, apps, 2)

	_, err = f.applications.ListForPost(ctx, f.other, post.ID)
	var ae *AuthorizationError
	assert.True(t, errors.As(err, &ae), "got %v", err)

	mine, err := f.applications.ListMine(ctx, f.tutors[0])
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].TuitionPost)
	assert.Equal(t, post.ID, mine[0].TuitionPost.ID)
}
