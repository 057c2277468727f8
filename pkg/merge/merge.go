package merge

import (
	"html"
	"strings"

	"github.com/dmitrymomot/mergeflow/pkg/placeholder"
	"github.com/dmitrymomot/mergeflow/pkg/recipient"
	"github.com/dmitrymomot/mergeflow/pkg/richtext"
)

// Markup replaces every token in s with the record's value for its field.
// Fields the record does not have resolve to "".
func Markup(s string, r *recipient.Record) string {
	return replaceTokens(s, r, func(v string) string { return v })
}

// HTML is Markup for HTML source: values are escaped so that text such as
// "Acme <Ops>" survives sanitizing.
func HTML(s string, r *recipient.Record) string {
	return replaceTokens(s, r, html.EscapeString)
}

func replaceTokens(s string, r *recipient.Record, escape func(string) string) string {
	tokens := placeholder.Tokens(s)
	if len(tokens) == 0 {
		return s
	}

	pairs := make([]string, 0, len(tokens)*2)
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok.Raw]; ok {
			continue
		}
		seen[tok.Raw] = struct{}{}
		pairs = append(pairs, tok.Raw, escape(r.Get(tok.Name)))
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// Resolved reports how many tokens in s resolve to a non-blank value.
func Resolved(s string, r *recipient.Record) int {
	n := 0
	for _, tok := range placeholder.Tokens(s) {
		if r.Has(tok.Name) {
			n++
		}
	}
	return n
}

// Document returns a merged copy of doc. Every token is replaced in a
// single pass with the record's value for its field; tokens naming system
// fields or fields the record lacks become empty. Paragraphs touched by
// substitution are then cleaned up, and those left without meaningful
// content are removed.
func Document(doc *richtext.Document, r *recipient.Record) *richtext.Document {
	out := doc.Clone()

	touched := make(map[*richtext.Paragraph]bool)
	for _, p := range out.Paragraphs() {
		if substituteParagraph(p, r) {
			touched[p] = true
		}
	}

	for p := range touched {
		CleanupParagraph(p)
	}
	out.RemoveParagraphs(func(p *richtext.Paragraph) bool {
		return touched[p] && IsBlank(p.Text())
	})
	return out
}

func substituteParagraph(p *richtext.Paragraph, r *recipient.Record) bool {
	return p.ReplaceRegexp(tokenPattern, func(match string) string {
		tokens := placeholder.Tokens(match)
		if len(tokens) == 0 || recipient.IsSystemField(tokens[0].Name) {
			return ""
		}
		return r.Get(tokens[0].Name)
	})
}
