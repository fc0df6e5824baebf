package services

import (
	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/google/uuid"
)

// Actor is the authenticated caller of an operation. It is built per request
// from the session token and passed explicitly to every service call.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  models.Role
}

func (a Actor) IsAdmin() bool   { return a.Role == models.RoleAdmin }
func (a Actor) IsStudent() bool { return a.Role == models.RoleStudent }
func (a Actor) IsTutor() bool   { return a.Role == models.RoleTutor }

func (a Actor) ownsPost(post *models.TuitionPost) bool {
	return a.IsStudent() && post.StudentID == a.ID
}

// canDecide covers approving/rejecting applications and editing a post.
func (a Actor) canDecide(post *models.TuitionPost) bool {
	return a.IsAdmin() || a.ownsPost(post)
}

func (a Actor) ownsApplication(app *models.Application) bool {
	return a.IsTutor() && app.TutorID == a.ID
}
