package mailer

import (
	"context"
	"time"
)

// Sender defines the minimal interface that email providers must implement.
type Sender interface {
	// Send delivers an email message and returns the provider message id.
	// The id may be empty when the provider does not report one.
	Send(ctx context.Context, email *Email) (string, error)
}

// Locator finds the provider id of a message that was already sent.
type Locator interface {
	// LocateSent returns the id of the most recent message sent to the
	// address with the given subject no earlier than since.
	// Returns ErrMessageNotFound when nothing matches.
	LocateSent(ctx context.Context, to, subject string, since time.Time) (string, error)
}

// BounceChecker inspects a sent message for delivery failure notices.
type BounceChecker interface {
	Bounced(ctx context.Context, messageID string) (bool, error)
}
