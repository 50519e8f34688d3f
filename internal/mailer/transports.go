package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/secretstuffs/pkg/config"
	"github.com/mailjet/mailjet-apiv3-go/v4"
)

// MailjetTransport sends through the Mailjet v3.1 send API.
type MailjetTransport struct {
	client   *mailjet.Client
	fromAddr string
	fromName string
}

func NewMailjetTransport(cfg *config.MailConfig) (*MailjetTransport, error) {
	if cfg.MailjetKey == "" || cfg.MailjetSecret == "" {
		return nil, fmt.Errorf("mailjet provider requires MAILJET_KEY and MAILJET_SECRET")
	}
	return &MailjetTransport{
		client:   mailjet.NewMailjetClient(cfg.MailjetKey, cfg.MailjetSecret),
		fromAddr: cfg.FromAddress,
		fromName: cfg.FromName,
	}, nil
}

func (t *MailjetTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	messages := mailjet.MessagesV31{Info: []mailjet.InfoMessagesV31{
		{
			From: &mailjet.RecipientV31{
				Email: t.fromAddr,
				Name:  t.fromName,
			},
			To: &mailjet.RecipientsV31{
				{Email: msg.To},
			},
			Subject:  msg.Subject,
			TextPart: msg.Text,
			HTMLPart: msg.HTML,
		},
	}}

	if _, err := t.client.SendMailV31(&messages); err != nil {
		return fmt.Errorf("could not send email: %w", err)
	}
	return nil
}

// SMTPTransport sends with PLAIN auth over net/smtp.
type SMTPTransport struct {
	addr     string
	auth     smtp.Auth
	fromAddr string
	fromName string
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPTransport(cfg *config.MailConfig) (*SMTPTransport, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("smtp provider requires SMTP_HOST")
	}

	var a smtp.Auth
	if cfg.SMTPUser != "" {
		a = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}

	return &SMTPTransport{
		addr:     cfg.SMTPAddr(),
		auth:     a,
		fromAddr: cfg.FromAddress,
		fromName: cfg.FromName,
		send:     smtp.SendMail,
	}, nil
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.send(t.addr, t.auth, t.fromAddr, []string{msg.To}, t.build(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// build renders a multipart/alternative message with text and HTML parts.
func (t *SMTPTransport) build(msg Message) []byte {
	boundary := "b-" + uuid.NewString()
	from := t.fromAddr
	if t.fromName != "" {
		from = mime.QEncoding.Encode("utf-8", t.fromName) + " <" + t.fromAddr + ">"
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/alternative; boundary=" + boundary + "\r\n\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Text + "\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(msg.HTML + "\r\n")

	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String())
}

// LogTransport writes mail to the logger instead of delivering it. Links are
// only visible at debug level.
type LogTransport struct {
	log *slog.Logger
}

func NewLogTransport(log *slog.Logger) *LogTransport {
	return &LogTransport{log: log}
}

func (t *LogTransport) Send(ctx context.Context, msg Message) error {
	t.log.InfoContext(ctx, "mail not delivered, log transport", "to", msg.To, "subject", msg.Subject)
	t.log.DebugContext(ctx, "mail body", "to", msg.To, "text", msg.Text)
	return nil
}
