package richtext_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mergeflow/pkg/richtext"
)

func sampleDocument() *richtext.Document {
	return &richtext.Document{
		ID:    "tpl",
		Title: "Letter",
		Blocks: []richtext.Block{
			{Paragraph: &richtext.Paragraph{Kind: richtext.KindHeading, Level: 1, Spans: []richtext.Span{richtext.Plain("Hello {{Name}}")}}},
			{Paragraph: richtext.NewParagraph(richtext.Plain("Intro"))},
			{Paragraph: &richtext.Paragraph{Kind: richtext.KindListItem, Spans: []richtext.Span{richtext.Plain("one")}}},
			{Paragraph: &richtext.Paragraph{Kind: richtext.KindListItem, Spans: []richtext.Span{richtext.Plain("two")}}},
			{Table: &richtext.Table{Rows: [][]richtext.Cell{
				{{Paragraphs: []*richtext.Paragraph{richtext.NewParagraph(richtext.Plain("{{City}}"))}}},
			}}},
			{Paragraph: richtext.NewParagraph()},
		},
	}
}

func TestDocument_Text(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Hello {{Name}}\nIntro\none\ntwo\n{{City}}\n", sampleDocument().Text())
}

func TestDocument_Markup(t *testing.T) {
	t.Parallel()

	expected := "<h1>Hello {{Name}}</h1><p>Intro</p><ul><li>one</li><li>two</li></ul>" +
		"<table><tr><td>{{City}}</td></tr></table>"

	assert.Equal(t, expected, sampleDocument().Markup())
}

func TestDocument_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	orig := sampleDocument()
	clone := orig.Clone()

	clone.Paragraphs()[0].ReplaceAll("{{Name}}", "Ann")
	clone.Paragraphs()[4].ReplaceAll("{{City}}", "Oslo")

	assert.Equal(t, "Hello {{Name}}", orig.Paragraphs()[0].Text())
	assert.Equal(t, "{{City}}", orig.Paragraphs()[4].Text())
	assert.Equal(t, "Hello Ann", clone.Paragraphs()[0].Text())
	assert.Equal(t, "Oslo", clone.Paragraphs()[4].Text())
}

func TestDocument_RemoveParagraphs(t *testing.T) {
	t.Parallel()

	doc := sampleDocument()

	removed := doc.RemoveParagraphs(func(p *richtext.Paragraph) bool {
		return p.Text() == "" || p.Text() == "{{City}}"
	})

	assert.Equal(t, 2, removed)
	require.Len(t, doc.Blocks, 5)
	assert.Empty(t, doc.Blocks[4].Table.Rows[0][0].Paragraphs)
}

func TestParagraph_ReplaceAllKeepsFormatting(t *testing.T) {
	t.Parallel()

	p := richtext.NewParagraph(
		richtext.Plain("Dear "),
		richtext.Span{Text: "{{Name}}", Attrs: richtext.Attrs{Bold: true}},
		richtext.Plain(", welcome"),
	)

	changed := p.ReplaceAll("{{Name}}", "Ann")

	assert.True(t, changed)
	assert.Equal(t, "Dear <b>Ann</b>, welcome", p.Markup())
}

func TestParagraph_ReplaceAllAcrossSpans(t *testing.T) {
	t.Parallel()

	p := richtext.NewParagraph(
		richtext.Span{Text: "{{Na", Attrs: richtext.Attrs{Italic: true}},
		richtext.Plain("me}} rest"),
	)

	p.ReplaceAll("{{Name}}", "Bob")

	assert.Equal(t, "<i>Bob</i> rest", p.Markup())
}

func TestParagraph_ReplaceAllNoMatch(t *testing.T) {
	t.Parallel()

	p := richtext.NewParagraph(richtext.Plain("nothing"))

	assert.False(t, p.ReplaceAll("{{Name}}", "x"))
	assert.False(t, p.ReplaceAll("", "x"))
	assert.Equal(t, "nothing", p.Text())
}

func TestParagraph_ReplaceRegexpToEmpty(t *testing.T) {
	t.Parallel()

	p := richtext.NewParagraph(richtext.Plain(", "), richtext.Span{Text: "x", Attrs: richtext.Attrs{Bold: true}})

	p.ReplaceRegexp(regexp.MustCompile(`^[\s,]+`), func(string) string { return "" })

	require.Len(t, p.Spans, 1)
	assert.Equal(t, "<b>x</b>", p.Markup())
}
