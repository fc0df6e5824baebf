package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/anjiri1684/tuition_marketplace/database"
	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testMinBudget = 1000

// setupDB opens a private in-memory database for the calling test.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, role models.Role, email string) Actor {
	t.Helper()
	u := models.User{FullName: "Test " + string(role), Email: email, Password: "x", Role: role, IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	return Actor{ID: u.ID, Email: u.Email, Role: u.Role}
}

func validTuition() TuitionInput {
	return TuitionInput{
		Subject:     "Mathematics",
		Class:       "Form 3",
		Curriculum:  "8-4-4",
		Location:    "Westlands, Nairobi",
		Budget:      5000,
		DaysPerWeek: 3,
		TimeSlot:    "4pm - 6pm",
		Contact:     "0712345678",
	}
}

func validApplication() ApplicationInput {
	return ApplicationInput{
		Qualification: "BEd Mathematics",
		Experience:    "4 years",
		ProposedFee:   4500,
		Message:       "Available weekdays",
	}
}

type fixture struct {
	db           *gorm.DB
	tuitions     *TuitionService
	applications *ApplicationService
	approvals    *ApprovalService
	payments     *PaymentService

	admin   Actor
	student Actor
	other   Actor
	tutors  []Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupDB(t)
	f := &fixture{
		db:           db,
		tuitions:     NewTuitionService(db, testMinBudget),
		applications: NewApplicationService(db),
		approvals:    NewApprovalService(db),
		payments:     NewPaymentService(db),
		admin:        createUser(t, db, models.RoleAdmin, "admin@example.com"),
		student:      createUser(t, db, models.RoleStudent, "student@example.com"),
		other:        createUser(t, db, models.RoleStudent, "other@example.com"),
	}
	for i := 1; i <= 3; i++ {
		f.tutors = append(f.tutors, createUser(t, db, models.RoleTutor, fmt.Sprintf("tutor%d@example.com", i)))
	}
	return f
}

func (f *fixture) post(t *testing.T) *models.TuitionPost {
	t.Helper()
	post, err := f.tuitions.Create(context.Background(), f.student, validTuition())
	require.NoError(t, err)
	return post
}

func (f *fixture) apply(t *testing.T, postID uuid.UUID, tutor Actor) *models.Application {
	t.Helper()
	app, err := f.applications.Submit(context.Background(), tutor, postID, validApplication())
	require.NoError(t, err)
	return app
}

func (f *fixture) reloadPost(t *testing.T, id uuid.UUID) models.TuitionPost {
	t.Helper()
	var post models.TuitionPost
	require.NoError(t, f.db.First(&post, "id = ?", id).Error)
	return post
}

func (f *fixture) reloadApp(t *testing.T, id uuid.UUID) models.Application {
	t.Helper()
	var app models.Application
	require.NoError(t, f.db.First(&app, "id = ?", id).Error)
	return app
}
