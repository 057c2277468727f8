package richtext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mergeflow/pkg/richtext"
)

func TestFromMarkdown(t *testing.T) {
	t.Parallel()

	src := []byte(`# Invoice for {{Name}}

Dear **{{FirstName}}**, see [your account](https://example.com/{{Id}}).

- {{Address1}}
- {{?Address2}}

| Item | Price |
|------|-------|
| {{Item}} | {{Price}} |
`)

	doc := richtext.FromMarkdown(src)

	paragraphs := doc.Paragraphs()
	require.Len(t, paragraphs, 8)

	assert.Equal(t, richtext.KindHeading, paragraphs[0].Kind)
	assert.Equal(t, 1, paragraphs[0].Level)
	assert.Equal(t, "Invoice for {{Name}}", paragraphs[0].Text())

	assert.Equal(t,
		`Dear <b>{{FirstName}}</b>, see <a href="https://example.com/{{Id}}">your account</a>.`,
		paragraphs[1].Markup(),
	)

	assert.Equal(t, richtext.KindListItem, paragraphs[2].Kind)
	assert.Equal(t, "{{?Address2}}", paragraphs[3].Text())

	assert.Equal(t, "Item", paragraphs[4].Text())
	assert.Equal(t, "{{Price}}", paragraphs[7].Text())
}

func TestFromMarkdown_SoftBreaksBecomeSpaces(t *testing.T) {
	t.Parallel()

	doc := richtext.FromMarkdown([]byte("line one\nline two"))

	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "line one line two", doc.Blocks[0].Paragraph.Text())
}

func TestFromMarkdown_Empty(t *testing.T) {
	t.Parallel()

	doc := richtext.FromMarkdown(nil)

	assert.Empty(t, doc.Blocks)
	assert.Equal(t, "", doc.Markup())
}
