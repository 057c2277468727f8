package placeholder

import (
	"regexp"
	"slices"
	"strings"
)

// OptionalMarker prefixes the name of an optional field inside a token.
const OptionalMarker = "?"

// tokenPattern matches {{Name}} and {{?Name}} tokens.
var tokenPattern = regexp.MustCompile(`\{\{(\??)([^}]+)\}\}`)

// Token is a single placeholder occurrence in a template.
type Token struct {
	Raw      string // Exact matched text, e.g. "{{ ?Address2 }}"
	Name     string // Trimmed field name without the optional marker
	Optional bool
}

// Manifest is the set of fields a template references.
type Manifest struct {
	required  map[string]struct{}
	optional  map[string]struct{}
	conflicts map[string]struct{}
}

// Tokens returns every token occurrence in text, in order of appearance.
// Tokens whose name is empty after trimming are skipped.
func Tokens(text string) []Token {
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	tokens := make([]Token, 0, len(matches))
	for _, m := range matches {
		tok, ok := newToken(m[0], m[1], m[2])
		if !ok {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func newToken(raw, marker, body string) (Token, bool) {
	name := strings.TrimSpace(body)
	optional := marker == OptionalMarker
	if !optional && strings.HasPrefix(name, OptionalMarker) {
		// "{{ ?Name}}": marker after leading whitespace.
		optional = true
	}
	if optional {
		name = strings.TrimSpace(strings.TrimPrefix(name, OptionalMarker))
	}
	if name == "" {
		return Token{}, false
	}
	return Token{Raw: raw, Name: name, Optional: optional}, true
}

// Parse scans text for tokens and builds its manifest.
func Parse(text string) *Manifest {
	m := &Manifest{
		required:  make(map[string]struct{}),
		optional:  make(map[string]struct{}),
		conflicts: make(map[string]struct{}),
	}
	for _, tok := range Tokens(text) {
		if tok.Optional {
			m.optional[tok.Name] = struct{}{}
		} else {
			m.required[tok.Name] = struct{}{}
		}
	}

	// Optional wins over required.
	for name := range m.optional {
		if _, ok := m.required[name]; ok {
			delete(m.required, name)
			m.conflicts[name] = struct{}{}
		}
	}
	return m
}

// Required returns the sorted required field names.
func (m *Manifest) Required() []string {
	return sortedKeys(m.required)
}

// Optional returns the sorted optional field names.
func (m *Manifest) Optional() []string {
	return sortedKeys(m.optional)
}

// Fields returns the sorted union of required and optional names.
func (m *Manifest) Fields() []string {
	all := make(map[string]struct{}, len(m.required)+len(m.optional))
	for k := range m.required {
		all[k] = struct{}{}
	}
	for k := range m.optional {
		all[k] = struct{}{}
	}
	return sortedKeys(all)
}

// Conflicts returns fields declared both with and without the optional marker.
func (m *Manifest) Conflicts() []string {
	return sortedKeys(m.conflicts)
}

// IsRequired reports whether name must be present on a recipient.
func (m *Manifest) IsRequired(name string) bool {
	_, ok := m.required[name]
	return ok
}

// IsOptional reports whether name is declared optional.
func (m *Manifest) IsOptional(name string) bool {
	_, ok := m.optional[name]
	return ok
}

// Empty reports whether the template references no fields at all.
func (m *Manifest) Empty() bool {
	return len(m.required) == 0 && len(m.optional) == 0
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
