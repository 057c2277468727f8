package resend

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/mergeflow/pkg/mailer"
)

// Resend reports the delivery state of a message as its last event.
const eventBounced = "bounced"

// Sender implements mailer.Sender and mailer.BounceChecker using the Resend API.
type Sender struct {
	client *resend.Client
	config Config
}

// New creates a new Resend sender.
func New(cfg Config) (*Sender, error) {
	client := resend.NewClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("resend: invalid base url: %w", err)
		}
		client.BaseURL = u
	}
	return &Sender{
		client: client,
		config: cfg,
	}, nil
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) (string, error) {
	from := email.From
	if from == "" {
		from = mailer.Address(s.config.SenderName, s.config.SenderEmail)
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
	}
	for _, a := range email.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		})
	}
	// Resend accepts only ASCII letters, digits, underscores and dashes in tags.
	for name, value := range email.Tags {
		req.Tags = append(req.Tags, resend.Tag{Name: tagSafe(name), Value: tagSafe(value)})
	}

	resp, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return "", fmt.Errorf("resend: failed to send email: %w", err)
	}
	return resp.Id, nil
}

// Bounced implements mailer.BounceChecker.
func (s *Sender) Bounced(ctx context.Context, messageID string) (bool, error) {
	email, err := s.client.Emails.GetWithContext(ctx, messageID)
	if err != nil {
		return false, fmt.Errorf("resend: failed to get email %s: %w", messageID, err)
	}
	return email.LastEvent == eventBounced, nil
}

func tagSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, s)
}
