package richtext

import (
	"regexp"
	"strings"
)

// ReplaceAll replaces every occurrence of old with repl.
// The replacement takes the formatting of the first replaced character.
// Returns true if the paragraph changed.
func (p *Paragraph) ReplaceAll(old, repl string) bool {
	if old == "" || !strings.Contains(p.Text(), old) {
		return false
	}
	return p.ReplaceRegexp(regexp.MustCompile(regexp.QuoteMeta(old)), func(string) string {
		return repl
	})
}

// ReplaceRegexp replaces every match of re with the result of repl.
// Characters outside matches keep their formatting; the replacement takes
// the formatting of the first matched character. Returns true if at least
// one match was found.
func (p *Paragraph) ReplaceRegexp(re *regexp.Regexp, repl func(match string) string) bool {
	text := p.Text()
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return false
	}

	attrs := p.byteAttrs(len(text))
	var spans []Span
	prev := 0
	for _, loc := range locs {
		spans = appendRange(spans, text, attrs, prev, loc[0])
		if r := repl(text[loc[0]:loc[1]]); r != "" {
			spans = appendSpan(spans, Span{Text: r, Attrs: attrAt(attrs, loc[0])})
		}
		prev = loc[1]
	}
	spans = appendRange(spans, text, attrs, prev, len(text))

	p.Spans = spans
	return true
}

// byteAttrs expands span formatting to one entry per byte of text.
func (p *Paragraph) byteAttrs(n int) []Attrs {
	out := make([]Attrs, 0, n)
	for _, s := range p.Spans {
		for range len(s.Text) {
			out = append(out, s.Attrs)
		}
	}
	return out
}

func attrAt(attrs []Attrs, i int) Attrs {
	switch {
	case len(attrs) == 0:
		return Attrs{}
	case i < len(attrs):
		return attrs[i]
	default:
		return attrs[len(attrs)-1]
	}
}

func appendRange(spans []Span, text string, attrs []Attrs, from, to int) []Span {
	for i := from; i < to; {
		j := i + 1
		for j < to && attrs[j] == attrs[i] {
			j++
		}
		spans = appendSpan(spans, Span{Text: text[i:j], Attrs: attrs[i]})
		i = j
	}
	return spans
}

func appendSpan(spans []Span, s Span) []Span {
	if s.Text == "" {
		return spans
	}
	if n := len(spans); n > 0 && spans[n-1].Attrs == s.Attrs {
		spans[n-1].Text += s.Text
		return spans
	}
	return append(spans, s)
}
