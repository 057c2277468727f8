package recipient

import "strings"

// Status is the delivery state of a recipient.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusBounced Status = "bounced"
)

// ParseStatus normalizes a stored status value. Empty or unknown values
// are treated as pending.
func ParseStatus(s string) Status {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusSent, StatusFailed, StatusBounced:
		return st
	default:
		return StatusPending
	}
}

// String implements fmt.Stringer.
func (s Status) String() string { return string(s) }
