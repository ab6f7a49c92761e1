package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"peppolsheet/internal/config"
)

// MailAttachment is an in-memory file attached to an outgoing mail.
type MailAttachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Mailer wraps SMTP configuration for sending document copies.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Configured reports whether an SMTP host is set.
func (m *Mailer) Configured() bool { return m.host != "" }

// Send delivers a plain text mail with attachments.
func (m *Mailer) Send(to, subject, body string, attachments ...MailAttachment) error {
	if !m.Configured() {
		return fmt.Errorf("mailer: SMTP_HOST not configured")
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	for _, a := range attachments {
		if _, err := e.Attach(bytes.NewReader(a.Content), a.Filename, a.ContentType); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", a.Filename, err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
