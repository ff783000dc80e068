package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrNoRecipient        = errors.New("mailer: no recipient")
	ErrTemplateNotFound   = errors.New("mailer: template not found")
	ErrInvalidFrontmatter = errors.New("mailer: invalid front matter")
	ErrRender             = errors.New("mailer: render failed")
	ErrSend               = errors.New("mailer: send failed")
)

// Email is a fully rendered message.
type Email struct {
	To      []string
	From    string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers rendered emails.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Message describes an email to render from a template.
type Message struct {
	Data     any
	To       string
	Template string
	Subject  string // overrides the template's subject
}

// Mailer renders messages and delivers them through a Sender.
type Mailer struct {
	sender          Sender
	renderer        *Renderer
	fallbackSubject string
}

func New(sender Sender, renderer *Renderer, fallbackSubject string) *Mailer {
	return &Mailer{sender: sender, renderer: renderer, fallbackSubject: fallbackSubject}
}

// Send renders msg and delivers it. Subject precedence: msg.Subject,
// the template's front matter, then the fallback subject.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	out, err := m.renderer.Render(msg.Template, msg.Data)
	if err != nil {
		return err
	}

	subject := msg.Subject
	if subject == "" {
		subject = out.Subject
	}
	if subject == "" {
		subject = m.fallbackSubject
	}

	email := &Email{To: []string{msg.To}, Subject: subject, HTML: out.HTML, Text: out.Text}
	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSend, err)
	}
	return nil
}

// LogSender writes emails to a logger instead of delivering them.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, email *Email) error {
	s.Logger.InfoContext(ctx, "email not delivered, no provider configured",
		slog.Any("to", email.To),
		slog.String("subject", email.Subject),
		slog.Int("html_bytes", len(email.HTML)),
	)
	return nil
}

func wrap(base error, name string, err error) error {
	return fmt.Errorf("%w: %s: %w", base, name, err)
}
