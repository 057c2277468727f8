package merge

import (
	"regexp"

	"github.com/dmitrymomot/mergeflow/pkg/richtext"
)

var tokenPattern = regexp.MustCompile(`\{\{\??[^}]+\}\}`)

// cleanupRule rewrites punctuation artifacts left by empty fields.
type cleanupRule struct {
	pattern *regexp.Regexp
	repl    string
}

// Applied in order.
var cleanupRules = []cleanupRule{
	{regexp.MustCompile(`^[\s,]+`), ""},     // leading commas and whitespace
	{regexp.MustCompile(`,(?:\s*,)+`), ","}, // doubled commas
	{regexp.MustCompile(`\s*,[\s,]*$`), ""}, // trailing commas
	{regexp.MustCompile(` {2,}`), " "},      // runs of spaces
}

var blankPattern = regexp.MustCompile(`^[\s,;.]*$`)

// Cleanup applies the punctuation rules to a plain string.
func Cleanup(s string) string {
	for _, rule := range cleanupRules {
		s = rule.pattern.ReplaceAllString(s, rule.repl)
	}
	return s
}

// CleanupParagraph applies the punctuation rules to a paragraph, keeping the
// formatting of the surviving text.
func CleanupParagraph(p *richtext.Paragraph) {
	for _, rule := range cleanupRules {
		repl := rule.repl
		p.ReplaceRegexp(rule.pattern, func(string) string { return repl })
	}
}

// IsBlank reports whether s contains nothing but whitespace, commas,
// semicolons and periods.
func IsBlank(s string) bool {
	return blankPattern.MatchString(s)
}
