package template

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
)

// DefaultExt is appended to ids without an extension.
const DefaultExt = ".md"

func fileName(id string) string {
	if path.Ext(id) == "" {
		return id + DefaultExt
	}
	return id
}

// FSStore reads templates from a file system.
type FSStore struct {
	fsys fs.FS
}

// NewFSStore creates a store rooted at fsys.
func NewFSStore(fsys fs.FS) *FSStore {
	return &FSStore{fsys: fsys}
}

// Load implements Store.
func (s *FSStore) Load(_ context.Context, id string) (*Template, error) {
	content, err := fs.ReadFile(s.fsys, fileName(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("template: read %s: %w", id, err)
	}
	return Parse(id, content)
}

// Getter reads objects by key. *storage.S3Storage satisfies it.
type Getter interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// ObjectStore reads templates from object storage below a prefix.
type ObjectStore struct {
	objects  Getter
	prefix   string
	notFound error
}

// NewObjectStore creates a store reading keys below prefix. notFound is the
// getter's sentinel for missing keys (for example storage.ErrNotFound); it
// is translated to ErrNotFound.
func NewObjectStore(objects Getter, prefix string, notFound error) *ObjectStore {
	return &ObjectStore{objects: objects, prefix: prefix, notFound: notFound}
}

// Load implements Store.
func (s *ObjectStore) Load(ctx context.Context, id string) (*Template, error) {
	rc, err := s.objects.Get(ctx, path.Join(s.prefix, fileName(id)))
	if err != nil {
		if s.notFound != nil && errors.Is(err, s.notFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("template: read %s: %w", id, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("template: read %s: %w", id, err)
	}
	return Parse(id, content)
}
