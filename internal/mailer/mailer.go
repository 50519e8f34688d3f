// Package mailer renders account emails and hands them to a transport.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/hugh/secretstuffs/internal/auth"
	"github.com/hugh/secretstuffs/pkg/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	SubjectVerification = "Verify your email address"
	SubjectReset        = "Reset your password"
)

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Transport delivers a rendered message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

type Mailer struct {
	transport Transport
	templates *template.Template
	log       *slog.Logger
}

func New(transport Transport, log *slog.Logger) (*Mailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing email templates: %w", err)
	}
	return &Mailer{transport: transport, templates: tmpl, log: log}, nil
}

// NewFromConfig picks the transport named by cfg.Provider.
func NewFromConfig(cfg *config.MailConfig, log *slog.Logger) (*Mailer, error) {
	var transport Transport
	switch cfg.Provider {
	case "mailjet":
		t, err := NewMailjetTransport(cfg)
		if err != nil {
			return nil, err
		}
		transport = t
	case "smtp":
		t, err := NewSMTPTransport(cfg)
		if err != nil {
			return nil, err
		}
		transport = t
	case "log", "":
		transport = NewLogTransport(log)
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}

	log.Info("mail transport configured", "provider", cfg.Provider)
	return New(transport, log)
}

func (m *Mailer) SendVerificationEmail(ctx context.Context, email, link string) error {
	return m.send(ctx, email, SubjectVerification, "verification.html", link,
		"Please verify your email address by opening this link: "+link)
}

func (m *Mailer) SendForgotPasswordEmail(ctx context.Context, email, link string) error {
	return m.send(ctx, email, SubjectReset, "reset.html", link,
		"Reset your password by opening this link (valid for one hour): "+link)
}

func (m *Mailer) send(ctx context.Context, to, subject, tmpl, link, text string) error {
	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, tmpl, struct{ Link string }{link}); err != nil {
		return fmt.Errorf("rendering %s: %w", tmpl, err)
	}

	msg := Message{To: to, Subject: subject, HTML: buf.String(), Text: text}
	if err := m.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending %q: %w", subject, err)
	}
	return nil
}

var _ auth.Notifier = (*Mailer)(nil)
