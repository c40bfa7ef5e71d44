package mail

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
)

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// SMTPMailer sends messages over SMTP with a multipart/alternative body.
type SMTPMailer struct {
	config SMTPConfig
	server string
	auth   smtp.Auth
}

// NewSMTPMailer constructs an SMTPMailer.
func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}
	return &SMTPMailer{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   auth,
	}
}

// IsConfigured reports whether the mailer has enough settings to send.
func (m *SMTPMailer) IsConfigured() bool {
	return m.config.Host != "" && m.config.Port != "" && m.config.From != ""
}

// Send delivers a single message. net/smtp does not take a context, so
// cancellation is checked up front and the dial itself relies on the
// caller's deadline expiring the operation.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if !m.IsConfigured() {
		return fmt.Errorf("mail not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := m.config.From
	if m.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.config.FromName, m.config.From)
	}

	const boundary = "boundary-docshare"

	var body bytes.Buffer
	fmt.Fprintf(&body, "To: %s\r\n", msg.To)
	fmt.Fprintf(&body, "From: %s\r\n", from)
	fmt.Fprintf(&body, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&body, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&body, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	fmt.Fprintf(&body, "\r\n")

	// Plain text fallback.
	fmt.Fprintf(&body, "--%s\r\n", boundary)
	fmt.Fprintf(&body, "Content-Type: text/plain; charset=UTF-8\r\n")
	fmt.Fprintf(&body, "\r\n")
	fmt.Fprintf(&body, "Please view this email in an HTML-capable email client.\r\n")
	fmt.Fprintf(&body, "\r\n")

	fmt.Fprintf(&body, "--%s\r\n", boundary)
	fmt.Fprintf(&body, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&body, "\r\n")
	fmt.Fprintf(&body, "%s\r\n", msg.HTMLBody)
	fmt.Fprintf(&body, "\r\n")
	fmt.Fprintf(&body, "--%s--\r\n", boundary)

	return smtp.SendMail(m.server, m.auth, m.config.From, []string{msg.To}, body.Bytes())
}

var _ Mailer = (*SMTPMailer)(nil)
