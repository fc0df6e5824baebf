package notifications

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// Mailer sends transactional email through SendGrid. A nil *Mailer is valid
// and skips every send.
type Mailer struct {
	apiKey string
	host   string
	from   *sgmail.Email
}

// NewMailer returns nil when the key or sender is missing.
func NewMailer(apiKey, senderEmail, senderName string) *Mailer {
	if apiKey == "" || senderEmail == "" {
		log.Println("⚠️ Email service not configured. Missing SENDGRID_API_KEY or EMAIL_SENDER.")
		return nil
	}
	log.Println("✅ Email service initialized successfully.")
	return &Mailer{
		apiKey: apiKey,
		host:   sendGridHost,
		from:   sgmail.NewEmail(senderName, senderEmail),
	}
}

func (m *Mailer) message(toName, toEmail, subject, htmlContent string) *sgmail.SGMailV3 {
	if toName == "" {
		toName = toEmail[:strings.Index(toEmail, "@")]
	}
	p := sgmail.NewPersonalization()
	p.Subject = subject
	p.AddTos(sgmail.NewEmail(toName, toEmail))

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.AddPersonalizations(p)
	msg.AddContent(sgmail.NewContent("text/html", htmlContent))
	return msg
}

func (m *Mailer) Send(toName, toEmail, subject, htmlContent string) error {
	if m == nil {
		log.Println("Email client not initialized, skipping email send.")
		return nil
	}
	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}

	req := sendgrid.GetRequest(m.apiKey, sendGridEndpoint, m.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.message(toName, toEmail, subject, htmlContent))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("send email via SendGrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("send email via SendGrid: status %d: %s", res.StatusCode, res.Body)
	}
	log.Printf("✅ Email sent successfully to %s", toEmail)
	return nil
}
