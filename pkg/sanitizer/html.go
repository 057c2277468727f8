package sanitizer

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	emailPolicy  *bluemonday.Policy
	initOnce     sync.Once
)

// Block-level closing tags that end a line in the plain text rendition.
var lineBreaks = regexp.MustCompile(`(?i)<br\s*/?>|</(p|h[1-6]|li|tr|div)>`)

var blankLines = regexp.MustCompile(`\n{3,}`)

func initPolicies() {
	initOnce.Do(func() {
		// StrictPolicy strips ALL HTML, returns plain text
		strictPolicy = bluemonday.StrictPolicy()

		// Everything the document merger produces, nothing executable.
		emailPolicy = bluemonday.NewPolicy()
		emailPolicy.AllowStandardURLs()
		emailPolicy.AllowURLSchemes("mailto", "http", "https")
		emailPolicy.AllowElements(
			"p", "br", "span", "div",
			"b", "strong", "i", "em", "u",
			"h1", "h2", "h3", "h4", "h5", "h6",
			"ul", "ol", "li",
			"table", "thead", "tbody", "tr", "td", "th",
			"blockquote", "pre", "code",
		)
		emailPolicy.AllowAttrs("href").OnElements("a")
		emailPolicy.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Integer).OnElements("td", "th")
		emailPolicy.RequireNoFollowOnLinks(false)
	})
}

// EmailHTML keeps the formatting produced by document merging (paragraphs,
// headings, lists, tables, bold, italic, links) and strips everything else,
// including scripts, event handlers and javascript: URLs.
func EmailHTML(s string) string {
	initPolicies()
	return emailPolicy.Sanitize(s)
}

// PlainText converts HTML into readable plain text. Block boundaries become
// line breaks, all tags are removed and entities are decoded.
func PlainText(s string) string {
	initPolicies()
	s = lineBreaks.ReplaceAllString(s, "$0\n")
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// SanitizeHTMLCustom applies a custom bluemonday policy.
// Returns input unchanged if policy is nil.
func SanitizeHTMLCustom(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}
