package template

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/mergeflow/pkg/richtext"
)

var (
	// ErrNotFound indicates the template does not exist.
	ErrNotFound = errors.New("template: not found")

	// ErrInvalidFrontmatter indicates invalid YAML frontmatter.
	ErrInvalidFrontmatter = errors.New("template: invalid frontmatter")
)

// Store loads templates by id.
type Store interface {
	Load(ctx context.Context, id string) (*Template, error)
}

// Template is a parsed merge template.
type Template struct {
	Metadata map[string]any
	Document *richtext.Document
	ID       string
	Subject  string
}

// Title returns the display title of the template.
func (t *Template) Title() string {
	return t.Document.Title
}

// Parse builds a Template from raw file content.
func Parse(id string, content []byte) (*Template, error) {
	meta, body, err := ParseFrontmatter(content)
	if err != nil {
		return nil, err
	}

	doc := richtext.FromMarkdown(body)
	doc.ID = id
	doc.Title = stringMeta(meta, "title")
	if doc.Title == "" {
		doc.Title = firstHeading(doc)
	}
	if doc.Title == "" {
		doc.Title = id
	}

	return &Template{
		ID:       id,
		Subject:  stringMeta(meta, "subject"),
		Metadata: meta,
		Document: doc,
	}, nil
}

// ParseFrontmatter splits content into YAML metadata and the markdown body.
// Content without a leading "---" line has empty metadata.
func ParseFrontmatter(content []byte) (map[string]any, []byte, error) {
	delimiter := []byte("---")

	if !bytes.HasPrefix(content, delimiter) {
		return map[string]any{}, content, nil
	}

	rest := bytes.TrimLeft(bytes.TrimPrefix(content, delimiter), "\r\n")
	if len(rest) == 0 {
		return nil, nil, fmt.Errorf("%w: no content after opening delimiter", ErrInvalidFrontmatter)
	}

	end := bytes.Index(rest, delimiter)
	if end == -1 {
		return nil, nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	front := rest[:end]
	body := rest[end+len(delimiter):]
	body = bytes.TrimPrefix(body, []byte("\r"))
	body = bytes.TrimPrefix(body, []byte("\n"))

	meta := map[string]any{}
	if len(bytes.TrimSpace(front)) > 0 {
		if err := yaml.Unmarshal(front, &meta); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}
	return meta, body, nil
}

func stringMeta(meta map[string]any, key string) string {
	for k, v := range meta {
		if strings.EqualFold(k, key) {
			if s, ok := v.(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func firstHeading(doc *richtext.Document) string {
	for _, p := range doc.Paragraphs() {
		if p.Kind == richtext.KindHeading {
			return strings.TrimSpace(p.Text())
		}
	}
	return ""
}
