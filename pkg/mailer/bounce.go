package mailer

import "strings"

// daemonMarkers identify automated delivery-failure senders.
var daemonMarkers = []string{
	"mailer-daemon",
	"postmaster",
	"mail delivery subsystem",
	"mail delivery system",
}

// IsDaemonSender reports whether a sender name or address belongs to a mail
// delivery daemon. Matching is case-insensitive on substrings.
func IsDaemonSender(sender string) bool {
	s := strings.ToLower(sender)
	for _, m := range daemonMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
