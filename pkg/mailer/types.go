package mailer

import "fmt"

// Email is a message ready for a Sender. HTML is the final body, already
// wrapped in the layout when one is configured.
type Email struct {
	To          []string
	Subject     string
	HTML        string
	Text        string
	From        string // empty uses the sender's configured address
	ReplyTo     string
	Tags        map[string]string
	Attachments []Attachment
}

// Attachment is a file sent with the message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Address formats "Name <email>", or the bare email when name is empty.
func Address(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
