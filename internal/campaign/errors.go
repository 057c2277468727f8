package campaign

import (
	"errors"
	"strings"
)

// Campaign errors. Operation-level failures abort a run; the rest are
// recorded per recipient and wrapped around the underlying cause.
var (
	// ErrTemplateRead is returned when the template cannot be loaded or parsed.
	ErrTemplateRead = errors.New("campaign: template is unreadable")

	// ErrRecipientsRead is returned when the recipient table cannot be loaded.
	ErrRecipientsRead = errors.New("campaign: recipient table is unreadable")

	// ErrArtifactStore wraps failures to store, read, list or trash artifacts.
	ErrArtifactStore = errors.New("campaign: artifact store failed")

	// ErrTransport wraps a rejected send.
	ErrTransport = errors.New("campaign: message transport failed")

	// ErrNoConverter is returned by PDF operations without a converter.
	ErrNoConverter = errors.New("campaign: no pdf converter configured")

	// ErrNoSender is returned by send operations without a transport.
	ErrNoSender = errors.New("campaign: no message transport configured")

	// ErrNoBounceChecker is returned by the bounce poll without a checker.
	ErrNoBounceChecker = errors.New("campaign: no bounce checker configured")

	// ErrNoDocument is recorded for a PDF request on a recipient without a document.
	ErrNoDocument = errors.New("campaign: recipient has no document")

	// ErrSuspiciousOrphanRatio is returned by an unforced delete when too
	// many files in a location look orphaned.
	ErrSuspiciousOrphanRatio = errors.New("campaign: orphan ratio exceeds threshold")

	// ErrUnknownTrack is returned for a track other than documents or pdfs.
	ErrUnknownTrack = errors.New("campaign: unknown artifact track")
)

// ValidationError lists the required fields a recipient is missing and the
// fields whose value is malformed.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid fields: "+strings.Join(e.Invalid, ", "))
	}
	return "campaign: " + strings.Join(parts, "; ")
}
