// Package logistics holds the delivery collaborator contracts the final
// stage hands artifacts to. Both collaborators are optional and gated by
// configuration; their failures are logged by the orchestrator, never
// raised.
package logistics

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// PDFRenderer converts the final plan text into a document.
type PDFRenderer interface {
	Render(plan string) ([]byte, error)
}

// EmailSender delivers the plan (and optional attachment) to a recipient.
type EmailSender interface {
	Send(recipient, subject, body string, attachment []byte) error
}

// TextRenderer is the built-in renderer: it produces a plain-text document
// with a header, standing in for a real PDF backend behind the same
// contract.
type TextRenderer struct{}

func (TextRenderer) Render(plan string) ([]byte, error) {
	if strings.TrimSpace(plan) == "" {
		return nil, fmt.Errorf("empty plan")
	}
	header := fmt.Sprintf("Trip Itinerary — generated %s\n%s\n\n",
		time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		strings.Repeat("=", 40))
	return []byte(header + plan), nil
}

// SMTPConfig carries mail delivery settings. Empty Email/Password disables
// sending entirely.
type SMTPConfig struct {
	Email    string `yaml:"email" json:"email"`
	Password string `yaml:"password" json:"-"`
	Server   string `yaml:"server" json:"server"`
	Port     int    `yaml:"port" json:"port"`
}

// Enabled reports whether credentials permit sending.
func (c SMTPConfig) Enabled() bool {
	return c.Email != "" && c.Password != ""
}

// SMTPSender sends plain-text mail over STARTTLS-capable SMTP.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender builds a sender, defaulting to Gmail's submission endpoint.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Server == "" {
		cfg.Server = "smtp.gmail.com"
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(recipient, subject, body string, attachment []byte) error {
	if !s.cfg.Enabled() {
		return fmt.Errorf("smtp credentials not configured")
	}
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.Email)
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n\r\n", subject)
	msg.WriteString(body)
	if len(attachment) > 0 {
		msg.WriteString("\r\n\r\n--- Attached itinerary ---\r\n")
		msg.Write(attachment)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Server, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Email, s.cfg.Password, s.cfg.Server)
	return smtp.SendMail(addr, auth, s.cfg.Email, []string{recipient}, []byte(msg.String()))
}
