package richtext

import (
	"html"
	"strings"
	"unicode/utf8"
)

// Attrs is the formatting applied to a character.
type Attrs struct {
	Link   string
	Bold   bool
	Italic bool
}

// Styled is a text node that exposes formatting per character.
// AttrsAt receives the byte offset of a character within Text.
type Styled interface {
	Text() string
	AttrsAt(offset int) Attrs
}

// Run is a maximal stretch of characters sharing the same formatting.
type Run struct {
	Text    string
	LinkURL string
	Bold    bool
	Italic  bool
}

func (r Run) attrs() Attrs {
	return Attrs{Bold: r.Bold, Italic: r.Italic, Link: r.LinkURL}
}

// MergeRuns groups consecutive characters with identical formatting.
// Returns nil for a node without text.
func MergeRuns(node Styled) []Run {
	text := node.Text()
	if text == "" {
		return nil
	}

	var (
		runs  []Run
		start int
		cur   = node.AttrsAt(0)
	)
	for offset := 0; offset < len(text); {
		_, size := utf8.DecodeRuneInString(text[offset:])
		if a := node.AttrsAt(offset); a != cur {
			runs = append(runs, newRun(text[start:offset], cur))
			start, cur = offset, a
		}
		offset += size
	}
	return append(runs, newRun(text[start:], cur))
}

func newRun(text string, a Attrs) Run {
	return Run{Text: text, Bold: a.Bold, Italic: a.Italic, LinkURL: a.Link}
}

// Markup serializes runs to HTML. Bold is applied first, italic wraps bold,
// and a link wraps both.
func Markup(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		writeRun(&b, r)
	}
	return b.String()
}

func writeRun(b *strings.Builder, r Run) {
	if r.Text == "" {
		return
	}

	out := html.EscapeString(r.Text)
	if r.Bold {
		out = "<b>" + out + "</b>"
	}
	if r.Italic {
		out = "<i>" + out + "</i>"
	}
	if r.LinkURL != "" {
		out = `<a href="` + html.EscapeString(r.LinkURL) + `">` + out + "</a>"
	}
	b.WriteString(out)
}
