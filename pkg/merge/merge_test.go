package merge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mergeflow/pkg/merge"
	"github.com/dmitrymomot/mergeflow/pkg/placeholder"
	"github.com/dmitrymomot/mergeflow/pkg/recipient"
	"github.com/dmitrymomot/mergeflow/pkg/richtext"
)

func TestMarkup(t *testing.T) {
	t.Parallel()

	rec := recipient.FromPairs(1, "Name", "Ann", "City", "Oslo")

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{
			name:     "no tokens",
			template: "Hello, World!",
			expected: "Hello, World!",
		},
		{
			name:     "repeated token",
			template: "{{Name}} and {{Name}}",
			expected: "Ann and Ann",
		},
		{
			name:     "optional form",
			template: "<p>{{Name}} from {{?City}}</p>",
			expected: "<p>Ann from Oslo</p>",
		},
		{
			name:     "unknown field resolves to empty",
			template: "Hi {{Name}}{{Title}}!",
			expected: "Hi Ann!",
		},
		{
			name:     "whitespace inside token",
			template: "Hi {{ Name }}",
			expected: "Hi Ann",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, merge.Markup(tt.template, rec))
		})
	}
}

func TestHTML_EscapesValues(t *testing.T) {
	t.Parallel()

	rec := recipient.FromPairs(1, "Company", "Acme <Ops>", "City", "Oslo & Co")

	assert.Equal(t, "<p>Acme &lt;Ops&gt; in Oslo &amp; Co</p>", merge.HTML("<p>{{Company}} in {{ City }}</p>", rec))
	assert.Equal(t, "Acme <Ops>", merge.Markup("{{Company}}", rec))
}

func TestMarkup_RoundTripLeavesNoTokens(t *testing.T) {
	t.Parallel()

	template := "Dear {{FirstName}} {{LastName}}, your order {{?OrderId}} ships to {{City}}."
	manifest := placeholder.Parse(template)

	rec := recipient.New(1)
	for _, f := range manifest.Fields() {
		rec.Set(f, "value-"+f)
	}

	out := merge.Markup(template, rec)

	assert.True(t, placeholder.Parse(out).Empty())
}

func TestResolved(t *testing.T) {
	t.Parallel()

	rec := recipient.FromPairs(1, "Name", "Ann", "City", "")

	assert.Equal(t, 1, merge.Resolved("{{Name}} {{City}} {{Zip}}", rec))
	assert.Equal(t, 0, merge.Resolved("static", rec))
}

func docOf(lines ...string) *richtext.Document {
	doc := &richtext.Document{Title: "T"}
	for _, l := range lines {
		doc.Blocks = append(doc.Blocks, richtext.Block{Paragraph: richtext.NewParagraph(richtext.Plain(l))})
	}
	return doc
}

func texts(doc *richtext.Document) []string {
	var out []string
	for _, p := range doc.Paragraphs() {
		out = append(out, p.Text())
	}
	return out
}

func TestDocument_CollapsesDoubleSpace(t *testing.T) {
	t.Parallel()

	doc := docOf("Hi {{Name}}, {{?Title}} welcome")

	out := merge.Document(doc, recipient.FromPairs(1, "Name", "Ann"))

	assert.Equal(t, []string{"Hi Ann, welcome"}, texts(out))
	assert.Equal(t, []string{"Hi {{Name}}, {{?Title}} welcome"}, texts(doc), "template must not change")
}

func TestDocument_RemovesEmptyOptionalLine(t *testing.T) {
	t.Parallel()

	doc := docOf("{{Address1}}", ", {{?Address2}}", "{{City}}")

	out := merge.Document(doc, recipient.FromPairs(1, "Address1", "1 Main St", "Address2", "", "City", "Oslo"))

	assert.Equal(t, []string{"1 Main St", "Oslo"}, texts(out))
}

func TestDocument_KeepsUntouchedEmptyParagraphs(t *testing.T) {
	t.Parallel()

	doc := docOf("Dear {{Name}},", "", "Regards")

	out := merge.Document(doc, recipient.FromPairs(1, "Name", "Ann"))

	assert.Equal(t, []string{"Dear Ann", "", "Regards"}, texts(out))
}

func TestDocument_SkipsSystemFields(t *testing.T) {
	t.Parallel()

	doc := docOf("Ref {{DocId}} for {{Name}}")

	out := merge.Document(doc, recipient.FromPairs(1, "Name", "Ann", "DocId", "secret"))

	assert.Equal(t, []string{"Ref for Ann"}, texts(out))
}

func TestDocument_PreservesFormatting(t *testing.T) {
	t.Parallel()

	doc := &richtext.Document{Blocks: []richtext.Block{{Paragraph: richtext.NewParagraph(
		richtext.Plain("Dear "),
		richtext.Span{Text: "{{Name}}", Attrs: richtext.Attrs{Bold: true}},
		richtext.Plain(", {{?Title}}"),
	)}}}

	out := merge.Document(doc, recipient.FromPairs(1, "Name", "Ann"))

	require.Len(t, out.Paragraphs(), 1)
	assert.Equal(t, "Dear <b>Ann</b>", out.Paragraphs()[0].Markup())
}

func TestDocument_TableCells(t *testing.T) {
	t.Parallel()

	doc := &richtext.Document{Blocks: []richtext.Block{{Table: &richtext.Table{Rows: [][]richtext.Cell{{
		{Paragraphs: []*richtext.Paragraph{richtext.NewParagraph(richtext.Plain("{{Item}}"))}},
		{Paragraphs: []*richtext.Paragraph{richtext.NewParagraph(richtext.Plain("{{?Note}}"))}},
	}}}}}}

	out := merge.Document(doc, recipient.FromPairs(1, "Item", "Widget"))

	assert.Equal(t, "<table><tr><td>Widget</td><td></td></tr></table>", out.Markup())
}

func TestDocument_WhitespaceInsideTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lines    []string
		rec      *recipient.Record
		expected []string
	}{
		{
			name:     "required field",
			lines:    []string{"Dear {{ Name }}, welcome"},
			rec:      recipient.FromPairs(1, "Name", "Ann"),
			expected: []string{"Dear Ann, welcome"},
		},
		{
			name:     "optional field present",
			lines:    []string{"{{Address1}}", ", {{? Address2 }}"},
			rec:      recipient.FromPairs(1, "Address1", "1 Main St", "Address2", "Flat 4"),
			expected: []string{"1 Main St", "Flat 4"},
		},
		{
			name:     "optional field blank",
			lines:    []string{"{{Address1}}", ", {{ ?Address2 }}"},
			rec:      recipient.FromPairs(1, "Address1", "1 Main St", "Address2", ""),
			expected: []string{"1 Main St"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, texts(merge.Document(docOf(tt.lines...), tt.rec)))
		})
	}
}

func TestDocument_ValuesAreNotReparsed(t *testing.T) {
	t.Parallel()

	out := merge.Document(docOf("Note: {{Note}}"), recipient.FromPairs(1, "Note", "literal {{Name}}", "Name", "Ann"))

	assert.Equal(t, []string{"Note: literal {{Name}}"}, texts(out))
}
