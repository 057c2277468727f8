package campaign

import (
	"strings"

	"github.com/dmitrymomot/mergeflow/pkg/merge"
	"github.com/dmitrymomot/mergeflow/pkg/recipient"
)

// ArtifactName picks a file name for a recipient's artifacts:
// the Filename field, then nameTemplate when it resolves at least one
// token to a value, then "{title} - {FirstName} {LastName}" degrading to
// Name, Email and "Recipient".
func ArtifactName(nameTemplate, title string, r *recipient.Record) string {
	if name := strings.TrimSpace(r.Get(recipient.FieldFilename)); name != "" {
		return name
	}

	if nameTemplate != "" && merge.Resolved(nameTemplate, r) > 0 {
		if name := strings.TrimSpace(merge.Markup(nameTemplate, r)); name != "" {
			return name
		}
	}

	who := r.DisplayName()
	if title == "" {
		return who
	}
	return title + " - " + who
}
