package notifications

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/anjiri1684/tuition_marketplace/services"
	"github.com/google/uuid"
)

const (
	EventApplicationSubmitted = "application.submitted"
	EventApplicationApproved  = "application.approved"
	EventApplicationRejected  = "application.rejected"
	EventTuitionRejected      = "tuition.rejected"
	EventTuitionCompleted     = "tuition.completed"
	EventPaymentRecorded      = "payment.recorded"
	EventUserRegistered       = "user.registered"
)

// Event is what browsers and the broker receive.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	At   time.Time   `json:"at"`
}

// EventPublisher is satisfied by *Publisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v interface{}) error
}

// Pusher is satisfied by *websocket.Hub.
type Pusher interface {
	SendToUser(userID uuid.UUID, payload interface{})
}

type recipient struct {
	userID uuid.UUID
	email  string
	// subject and body are empty when the recipient only gets a live push.
	subject string
	body    string
}

// Notifier fans committed domain events out to email, websockets and the
// broker. Deliveries run in the background and failures are only logged.
type Notifier struct {
	mailer    *Mailer
	publisher EventPublisher
	pusher    Pusher
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewNotifier accepts nil for any channel that is not configured.
func NewNotifier(mailer *Mailer, publisher EventPublisher, pusher Pusher) *Notifier {
	return &Notifier{mailer: mailer, publisher: publisher, pusher: pusher, timeout: 5 * time.Second}
}

// Wait blocks until queued deliveries are done.
func (n *Notifier) Wait() { n.wg.Wait() }

func (n *Notifier) dispatch(evt Event, to []recipient) {
	if n == nil {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.deliver(evt, to)
	}()
}

func (n *Notifier) deliver(evt Event, to []recipient) {
	for _, r := range to {
		if n.pusher != nil && r.userID != uuid.Nil {
			n.pusher.SendToUser(r.userID, evt)
		}
		if r.subject != "" && r.email != "" {
			if err := n.mailer.Send("", r.email, r.subject, r.body); err != nil {
				log.Printf("🔥 Failed to send %s email to %s: %v", evt.Type, r.email, err)
			}
		}
	}
	if n.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.publisher.PublishJSON(ctx, evt.Type, evt); err != nil {
			log.Printf("🔥 Failed to publish %s: %v", evt.Type, err)
		}
	}
}

func newEvent(typ string, data interface{}) Event {
	return Event{Type: typ, Data: data, At: time.Now().UTC()}
}

func (n *Notifier) ApplicationSubmitted(post *models.TuitionPost, app *models.Application) {
	n.dispatch(newEvent(EventApplicationSubmitted, app), []recipient{{
		userID:  post.StudentID,
		email:   post.StudentEmail,
		subject: "New application for your " + post.Subject + " tuition",
		body: fmt.Sprintf("<h1>New Application</h1><p>%s applied to your %s (%s) tuition with a proposed fee of %.2f.</p>",
			app.TutorEmail, post.Subject, post.Class, app.ProposedFee),
	}})
}

// ApplicationApproved tells the chosen tutor, every rejected sibling and the student.
func (n *Notifier) ApplicationApproved(result *services.ApprovalResult) {
	if result.AlreadyApproved {
		return
	}
	post := result.Post
	to := []recipient{
		{userID: post.StudentID},
		{
			userID:  result.Application.TutorID,
			email:   result.Application.TutorEmail,
			subject: "Your application was approved",
			body: fmt.Sprintf("<h1>Congratulations!</h1><p>You have been selected for the %s (%s) tuition in %s. Contact: %s</p>",
				post.Subject, post.Class, post.Location, post.Contact),
		},
	}
	for _, sib := range result.Rejected {
		to = append(to, rejectionRecipient(&post, &sib))
	}
	n.dispatch(newEvent(EventApplicationApproved, result), to)
}

func (n *Notifier) ApplicationRejected(post *models.TuitionPost, app *models.Application) {
	n.dispatch(newEvent(EventApplicationRejected, app), []recipient{rejectionRecipient(post, app)})
}

func rejectionRecipient(post *models.TuitionPost, app *models.Application) recipient {
	return recipient{
		userID:  app.TutorID,
		email:   app.TutorEmail,
		subject: "Update on your application",
		body: fmt.Sprintf("<h1>Application Update</h1><p>Your application for the %s (%s) tuition was not selected.</p>",
			post.Subject, post.Class),
	}
}

func (n *Notifier) TuitionRejected(post *models.TuitionPost) {
	n.dispatch(newEvent(EventTuitionRejected, post), []recipient{{
		userID:  post.StudentID,
		email:   post.StudentEmail,
		subject: "Your tuition post was not approved",
		body:    fmt.Sprintf("<h1>Tuition Update</h1><p>Your %s (%s) tuition post was rejected by moderation.</p>", post.Subject, post.Class),
	}})
}

func (n *Notifier) TuitionCompleted(post *models.TuitionPost) {
	to := []recipient{{userID: post.StudentID}}
	if post.TutorID != nil {
		to = append(to, recipient{userID: *post.TutorID})
	}
	n.dispatch(newEvent(EventTuitionCompleted, post), to)
}

func (n *Notifier) PaymentRecorded(rec *models.PaymentRecord) {
	n.dispatch(newEvent(EventPaymentRecorded, rec), nil)
}

func (n *Notifier) Welcome(user *models.User) {
	n.dispatch(newEvent(EventUserRegistered, user), []recipient{{
		email:   user.Email,
		subject: "Welcome!",
		body:    "<h1>Welcome!</h1><p>Thank you for registering as a " + string(user.Role) + ".</p>",
	}})
}
