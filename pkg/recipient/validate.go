package recipient

import "github.com/dmitrymomot/mergeflow/pkg/placeholder"

// Validation is the outcome of checking a record against a manifest.
type Validation struct {
	Missing []string
	Valid   bool
}

// Validate checks that every required manifest field is present and
// non-blank on the record. Optional fields are never checked.
func Validate(m *placeholder.Manifest, r *Record) Validation {
	var missing []string
	for _, name := range m.Required() {
		if !r.Has(name) {
			missing = append(missing, name)
		}
	}
	return Validation{Valid: len(missing) == 0, Missing: missing}
}
