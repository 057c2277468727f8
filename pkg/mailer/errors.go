package mailer

import "errors"

// Mailer errors. Senders wrap provider failures in ErrSendFailed.
var (
	ErrNoRecipient    = errors.New("mailer: no recipient")
	ErrNoSubject      = errors.New("mailer: empty subject")
	ErrNoContent      = errors.New("mailer: empty body")
	ErrLayoutNotFound = errors.New("mailer: layout not found")
	ErrRenderFailed   = errors.New("mailer: render failed")
	ErrSendFailed     = errors.New("mailer: send failed")

	// ErrMessageNotFound is returned by a MessageLocator when no sent
	// message matches.
	ErrMessageNotFound = errors.New("mailer: message not found")
)
