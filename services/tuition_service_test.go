package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTuitionCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.tuitions.Create(ctx, f.student, validTuition())
	require.NoError(t, err)
	assert.Equal(t, models.TuitionPending, post.Status)
	assert.Equal(t, 0, post.ApplicationCount)
	assert.Equal(t, f.student.ID, post.StudentID)
	assert.Equal(t, f.student.Email, post.StudentEmail)
	assert.Nil(t, post.TutorID)
	assert.Nil(t, post.Description)
}

func TestTuitionCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		edit  func(*TuitionInput)
		field string
	}{
		{name: "missing subject", edit: func(in *TuitionInput) { in.Subject = "  " }, field: "subject"},
		{name: "missing class", edit: func(in *TuitionInput) { in.Class = "" }, field: "class"},
		{name: "missing location", edit: func(in *TuitionInput) { in.Location = "" }, field: "location"},
		{name: "missing time slot", edit: func(in *TuitionInput) { in.TimeSlot = "" }, field: "time_slot"},
		{name: "missing contact", edit: func(in *TuitionInput) { in.Contact = "" }, field: "contact"},
		{name: "zero budget", edit: func(in *TuitionInput) { in.Budget = 0 }, field: "budget"},
		{name: "budget below minimum", edit: func(in *TuitionInput) { in.Budget = testMinBudget - 1 }, field: "budget"},
		{name: "too many days", edit: func(in *TuitionInput) { in.DaysPerWeek = 8 }, field: "days_per_week"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validTuition()
			tt.edit(&in)
			_, err := f.tuitions.Create(ctx, f.student, in)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			var fields []string
			for _, fe := range ve.Fields {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestTuitionCreate_Roles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tuitions.Create(ctx, f.tutors[0], validTuition())
	var ae *AuthorizationError
	assert.True(t, errors.As(err, &ae), "got %v", err)

	in := validTuition()
	_, err = f.tuitions.Create(ctx, f.admin, in)
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve), "admin without student_email: got %v", err)

	in.StudentEmail = f.tutors[0].Email
	_, err = f.tuitions.Create(ctx, f.admin, in)
	var ne *NotFoundError
	assert.True(t, errors.As(err, &ne), "admin naming a tutor: got %v", err)

	in.StudentEmail = f.other.Email
	post, err := f.tuitions.Create(ctx, f.admin, in)
	require.NoError(t, err)
	assert.Equal(t, f.other.ID, post.StudentID)
}

func TestTuitionUpdateDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t)

	in := validTuition()
	in.Subject = "Physics"
	in.Budget = 7000
	in.Description = "Exam prep"

	_, err := f.tuitions.UpdateDetails(ctx, f.other, post.ID, in)
	var ae *AuthorizationError
	require.True(t, errors.As(err, &ae), "got %v", err)

	updated, err := f.tuitions.UpdateDetails(ctx, f.student, post.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Physics", updated.Subject)
	assert.Equal(t, 7000, updated.Budget)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Exam prep", *updated.Description)
	assert.Equal(t, post.Version+1, updated.Version)

	_, err = f.tuitions.Reject(ctx, f.admin, post.ID)
	require.NoError(t, err)
	_, err = f.tuitions.UpdateDetails(ctx, f.student, post.ID, in)
	var ie *InvalidStateError
	assert.True(t, errors.As(err, &ie), "got %v", err)
}

func TestTuitionReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t)
	app := f.apply(t, post.ID, f.tutors[0])

	_, err := f.tuitions.Reject(ctx, f.student, post.ID)
	var ae *AuthorizationError
	require.True(t, errors.As(err, &ae), "got %v", err)

	rejected, err := f.tuitions.Reject(ctx, f.admin, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TuitionRejected, rejected.Status)
	assert.NotNil(t, rejected.RejectedAt)
	assert.Nil(t, rejected.TutorID)
	assert.Equal(t, models.ApplicationPending, f.reloadApp(t, app.ID).Status)

	_, err = f.tuitions.Reject(ctx, f.admin, post.ID)
	var ie *InvalidStateError
	assert.True(t, errors.As(err, &ie), "got %v", err)

	_, err = f.applications.Submit(ctx, f.tutors[1], post.ID, validApplication())
	assert.True(t, errors.As(err, &ie), "got %v", err)
}

func TestTuitionComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t)
	app := f.apply(t, post.ID, f.tutors[0])

	_, err := f.tuitions.Complete(ctx, f.student, post.ID)
	var ie *InvalidStateError
	require.True(t, errors.As(err, &ie), "got %v", err)

	_, err = f.approvals.Approve(ctx, f.student, post.ID, app.ID)
	require.NoError(t, err)

	_, err = f.tuitions.Complete(ctx, f.tutors[0], post.ID)
	var ae *AuthorizationError
	require.True(t, errors.As(err, &ae), "got %v", err)

	done, err := f.tuitions.Complete(ctx, f.student, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TuitionCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)
	require.NotNil(t, done.TutorID)
	assert.Equal(t, f.tutors[0].ID, *done.TutorID)
}

func TestTuitionList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, seed := range []struct {
		subject, location string
		budget            int
	}{
		{"Mathematics", "Westlands", 3000},
		{"Physics", "Kilimani", 8000},
		{"Advanced Mathematics", "Karen", 5000},
		{"Chemistry", "Westlands", 2000},
	} {
		in := validTuition()
		in.Subject = seed.subject
		in.Location = seed.location
		in.Budget = seed.budget
		_, err := f.tuitions.Create(ctx, f.student, in)
		require.NoError(t, err)
	}

	posts, total, err := f.tuitions.List(ctx, TuitionFilter{Subject: "MATH", Sort: SortBudgetAsc})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, posts, 2)
	assert.Equal(t, 3000, posts[0].Budget)
	assert.Equal(t, 5000, posts[1].Budget)

	posts, total, err = f.tuitions.List(ctx, TuitionFilter{Location: "westlands", MinBudget: 2500})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, posts, 1)
	assert.Equal(t, "Mathematics", posts[0].Subject)

	posts, total, err = f.tuitions.List(ctx, TuitionFilter{Sort: SortBudgetDesc, Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, posts, 1)
	assert.Equal(t, 2000, posts[0].Budget)

	_, total, err = f.tuitions.List(ctx, TuitionFilter{Status: models.TuitionApproved})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestTuitionFilterNormalize(t *testing.T) {
	f := TuitionFilter{Page: -1, Limit: 500}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 100, f.Limit)

	f = TuitionFilter{}
	f.Normalize()
	assert.Equal(t, 20, f.Limit)
}

func TestTuitionListMine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.post(t)
	f.post(t)
	_, err := f.tuitions.Create(ctx, f.other, validTuition())
	require.NoError(t, err)

	posts, err := f.tuitions.ListMine(ctx, f.student)
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	_, err = f.tuitions.ListMine(ctx, f.tutors[0])
	var ae *AuthorizationError
	assert.True(t, errors.As(err, &ae), "got %v", err)
}
