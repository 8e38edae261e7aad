package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/achievo/achievement-portal/internal/models"
	"github.com/achievo/achievement-portal/internal/observability"
)

// Mailer delivers decision notifications over SMTP. Delivery is best-effort:
// callers get a bool, never an error, and undelivered mail is retried by the
// background job.
type Mailer struct {
	addr string // host:port, empty disables delivery
	from string
	auth smtp.Auth
	log  *zap.Logger

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(addr, from, user, pass string, log *zap.Logger) *Mailer {
	m := &Mailer{addr: addr, from: from, log: log, send: smtp.SendMail}
	if user != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		m.auth = smtp.PlainAuth("", user, pass, host)
	}
	return m
}

func (m *Mailer) SendDecision(ctx context.Context, email string, decision models.VerificationStatus, notes string) bool {
	if m.addr == "" {
		return false
	}
	if err := ctx.Err(); err != nil {
		return false
	}
	msg := decisionMessage(m.from, email, decision, notes)
	if err := m.send(m.addr, m.auth, m.from, []string{email}, msg); err != nil {
		m.log.Warn("decision mail failed", zap.String("to", email), zap.Error(err))
		if isDeliveryErr(err) {
			observability.CaptureErr(err)
		}
		return false
	}
	return true
}

func decisionMessage(from, to string, decision models.VerificationStatus, notes string) []byte {
	subject := "Your achievement was rejected"
	body := "Your achievement submission was reviewed and rejected."
	if decision == models.StatusApproved {
		subject = "Your achievement was approved"
		body = "Congratulations! Your achievement submission was approved."
	}
	if notes != "" {
		body += "\r\n\r\nReviewer notes: " + notes
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// Infrastructure failures go to Sentry, bad recipient addresses do not.
func isDeliveryErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	if strings.Contains(s, "550") || strings.Contains(s, "553") || strings.Contains(s, "no such user") {
		return false
	}
	return true
}
