package template_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mergeflow/pkg/placeholder"
	"github.com/dmitrymomot/mergeflow/pkg/template"
)

const offer = `---
title: Offer letter
subject: Your offer, {{FirstName}}
---
# Offer

Dear **{{FirstName}}**,

{{Address1}}, {{?Address2}}
`

func TestParse(t *testing.T) {
	t.Parallel()

	tmpl, err := template.Parse("offer", []byte(offer))
	require.NoError(t, err)

	assert.Equal(t, "offer", tmpl.ID)
	assert.Equal(t, "offer", tmpl.Document.ID)
	assert.Equal(t, "Offer letter", tmpl.Title())
	assert.Equal(t, "Your offer, {{FirstName}}", tmpl.Subject)

	m := placeholder.Parse(tmpl.Document.Text())
	assert.Equal(t, []string{"Address1", "FirstName"}, m.Required())
	assert.Equal(t, []string{"Address2"}, m.Optional())
}

func TestParse_TitleFallbacks(t *testing.T) {
	t.Parallel()

	tmpl, err := template.Parse("letter", []byte("# Welcome pack\n\nHi {{Name}}\n"))
	require.NoError(t, err)
	assert.Equal(t, "Welcome pack", tmpl.Title())
	assert.Empty(t, tmpl.Subject)

	tmpl, err = template.Parse("letter", []byte("Hi {{Name}}\n"))
	require.NoError(t, err)
	assert.Equal(t, "letter", tmpl.Title())
}

func TestParseFrontmatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		meta    map[string]any
		body    string
		err     error
	}{
		{
			name:    "no frontmatter",
			content: "Hello",
			meta:    map[string]any{},
			body:    "Hello",
		},
		{
			name:    "with frontmatter",
			content: "---\ntitle: T\n---\nHello",
			meta:    map[string]any{"title": "T"},
			body:    "Hello",
		},
		{
			name:    "windows line endings",
			content: "---\r\ntitle: T\r\n---\r\nHello",
			meta:    map[string]any{"title": "T"},
			body:    "Hello",
		},
		{
			name:    "empty frontmatter",
			content: "---\n---\nHello",
			meta:    map[string]any{},
			body:    "Hello",
		},
		{
			name:    "missing closing delimiter",
			content: "---\ntitle: T\nHello",
			err:     template.ErrInvalidFrontmatter,
		},
		{
			name:    "nothing after delimiter",
			content: "---\n",
			err:     template.ErrInvalidFrontmatter,
		},
		{
			name:    "invalid yaml",
			content: "---\ntitle: [unclosed\n---\nHello",
			err:     template.ErrInvalidFrontmatter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			meta, body, err := template.ParseFrontmatter([]byte(tt.content))
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.meta, meta)
			assert.Equal(t, tt.body, string(body))
		})
	}
}

func TestFSStore_Load(t *testing.T) {
	t.Parallel()

	store := template.NewFSStore(fstest.MapFS{
		"offer.md":  &fstest.MapFile{Data: []byte(offer)},
		"notes.txt": &fstest.MapFile{Data: []byte("Plain {{Name}}")},
		"broken.md": &fstest.MapFile{Data: []byte("---\ntitle: x\n")},
	})

	tmpl, err := store.Load(context.Background(), "offer")
	require.NoError(t, err)
	assert.Equal(t, "Offer letter", tmpl.Title())

	tmpl, err = store.Load(context.Background(), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "Plain {{Name}}", tmpl.Document.Text())

	_, err = store.Load(context.Background(), "missing")
	require.ErrorIs(t, err, template.ErrNotFound)

	_, err = store.Load(context.Background(), "broken")
	require.ErrorIs(t, err, template.ErrInvalidFrontmatter)
}

var errNoKey = errors.New("no such key")

type mapGetter map[string]string

func (m mapGetter) Get(_ context.Context, key string) (io.ReadCloser, error) {
	v, ok := m[key]
	if !ok {
		return nil, errNoKey
	}
	return io.NopCloser(bytes.NewReader([]byte(v))), nil
}

func TestObjectStore_Load(t *testing.T) {
	t.Parallel()

	store := template.NewObjectStore(mapGetter{"templates/offer.md": offer}, "templates", errNoKey)

	tmpl, err := store.Load(context.Background(), "offer")
	require.NoError(t, err)
	assert.Equal(t, "Offer letter", tmpl.Title())

	_, err = store.Load(context.Background(), "missing")
	require.ErrorIs(t, err, template.ErrNotFound)
}
