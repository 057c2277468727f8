package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
)

// Renderer wraps merged body markup into HTML layouts read from a file system.
type Renderer struct {
	fs     fs.FS
	layout map[string]*template.Template
	dir    string

	mu sync.RWMutex
}

// NewRenderer creates a renderer reading layouts from the root of filesystem.
func NewRenderer(filesystem fs.FS) *Renderer {
	return NewRendererWithDir(filesystem, ".")
}

// NewRendererWithDir creates a renderer reading layouts from dir.
func NewRendererWithDir(filesystem fs.FS, dir string) *Renderer {
	if dir == "" {
		dir = "."
	}
	return &Renderer{
		fs:     filesystem,
		dir:    dir,
		layout: make(map[string]*template.Template),
	}
}

// Render executes the named layout with the body as trusted HTML content.
func (r *Renderer) Render(layout, subject, body string) (string, error) {
	tmpl, err := r.getLayout(layout)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	data := map[string]any{
		"Subject": subject,
		"Content": template.HTML(body), //nolint:gosec // body is sanitized by Mailer
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: failed to execute layout: %v", ErrRenderFailed, err)
	}
	return buf.String(), nil
}

// getLayout returns a cached layout template or parses and caches it.
func (r *Renderer) getLayout(name string) (*template.Template, error) {
	r.mu.RLock()
	if cached, ok := r.layout[name]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if cached, ok := r.layout[name]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.dir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse layout: %v", ErrRenderFailed, err)
	}

	r.layout[name] = tmpl
	return tmpl, nil
}
