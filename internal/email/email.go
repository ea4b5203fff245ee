package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

const (
	TemplateVerification  = "emailVerification"
	TemplateResetPassword = "forgotPassword"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Message is everything needed to deliver one templated email.
type Message struct {
	Subject  string
	To       string
	From     string
	ReplyTo  string
	Template string
	Name     string // recipient display name
	Link     string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Render executes msg.Template with the recipient name and link.
func Render(msg Message) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Name string
		Link string
	}{Name: msg.Name, Link: msg.Link}

	if err := templates.ExecuteTemplate(&buf, msg.Template+".html", data); err != nil {
		return "", fmt.Errorf("render %s: %w", msg.Template, err)
	}
	return buf.String(), nil
}

// LogSender logs emails instead of sending them. Used in ENV=local.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if _, err := Render(msg); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "email (local dev)",
		"to", msg.To, "subject", msg.Subject, "template", msg.Template, "link", msg.Link)
	return nil
}

// ResendSender sends emails through the Resend API. Used in staging/production.
type ResendSender struct {
	client *resend.Client
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	html, err := Render(msg)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    html,
		ReplyTo: msg.ReplyTo,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NewSender returns a LogSender for ENV=local, ResendSender otherwise.
func NewSender(env, apiKey string, logger *slog.Logger) Sender {
	if env == "local" {
		return &LogSender{logger: logger.With("component", "email")}
	}
	return &ResendSender{client: resend.NewClient(apiKey)}
}
