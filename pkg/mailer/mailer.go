package mailer

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrymomot/mergeflow/pkg/sanitizer"
)

// Config holds mailer configuration.
type Config struct {
	// Layout wraps every body. Empty sends the sanitized body as is.
	Layout  string `yaml:"layout"`
	ReplyTo string `yaml:"reply_to"`
}

// Mailer validates, sanitizes and renders emails before handing them to a Sender.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	config   Config
}

// New creates a new Mailer. The renderer may be nil when no layout is used.
func New(sender Sender, renderer *Renderer, cfg Config) *Mailer {
	return &Mailer{
		sender:   sender,
		renderer: renderer,
		config:   cfg,
	}
}

// Send prepares the email and delivers it, returning the provider message id.
//
// The HTML body is sanitized for email and wrapped into the configured
// layout. A plain text alternative is derived from the body when Text is empty.
func (m *Mailer) Send(ctx context.Context, email *Email) (string, error) {
	if len(email.To) == 0 {
		return "", ErrNoRecipient
	}
	if strings.TrimSpace(email.Subject) == "" {
		return "", ErrNoSubject
	}
	if strings.TrimSpace(email.HTML) == "" {
		return "", ErrNoContent
	}

	prepared := *email
	prepared.HTML = sanitizer.EmailHTML(email.HTML)
	if prepared.Text == "" {
		prepared.Text = sanitizer.PlainText(email.HTML)
	}
	if prepared.ReplyTo == "" {
		prepared.ReplyTo = m.config.ReplyTo
	}

	if m.renderer != nil && m.config.Layout != "" {
		html, err := m.renderer.Render(m.config.Layout, prepared.Subject, prepared.HTML)
		if err != nil {
			return "", errors.Join(ErrRenderFailed, err)
		}
		prepared.HTML = html
	}

	id, err := m.sender.Send(ctx, &prepared)
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	return id, nil
}
