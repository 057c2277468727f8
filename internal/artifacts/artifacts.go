// Package artifacts stores generated campaign files in object storage.
// Object keys double as artifact ids, and locations are key prefixes.
package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/dmitrymomot/mergeflow/internal/campaign"
	"github.com/dmitrymomot/mergeflow/pkg/storage"
)

// Objects is the subset of *storage.S3Storage the store needs.
type Objects interface {
	Put(ctx context.Context, r io.Reader, size int64, opts ...storage.Option) (*storage.FileInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]storage.FileInfo, error)
	Trash(ctx context.Context, key string) (string, error)
}

// Store adapts object storage to campaign.ArtifactStore.
type Store struct {
	objects Objects
}

// New returns a campaign artifact store backed by objects.
func New(objects Objects) *Store {
	return &Store{objects: objects}
}

func (s *Store) Put(ctx context.Context, location, name, contentType string, body []byte) (campaign.Artifact, error) {
	info, err := s.objects.Put(ctx, bytes.NewReader(body), int64(len(body)),
		storage.WithPrefix(location),
		storage.WithName(name),
		storage.WithContentType(contentType),
	)
	if err != nil {
		return campaign.Artifact{}, err
	}
	return campaign.Artifact{ID: info.Key, Location: location, Name: name}, nil
}

// Replace overwrites the object at id in place.
func (s *Store) Replace(ctx context.Context, id, contentType string, body []byte) error {
	_, err := s.objects.Put(ctx, bytes.NewReader(body), int64(len(body)),
		storage.WithKey(id),
		storage.WithContentType(contentType),
	)
	return err
}

func (s *Store) Get(ctx context.Context, id string) ([]byte, error) {
	rc, err := s.objects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("artifacts: read %s: %w", id, err)
	}
	return data, nil
}

func (s *Store) List(ctx context.Context, location string) ([]campaign.File, error) {
	infos, err := s.objects.List(ctx, location)
	if err != nil {
		return nil, err
	}
	files := make([]campaign.File, 0, len(infos))
	for _, info := range infos {
		files = append(files, campaign.File{ID: info.Key, Name: info.Name})
	}
	return files, nil
}

// Trash moves the object below the storage trash prefix. Trashed objects
// fall outside every location and stop showing up in List.
func (s *Store) Trash(ctx context.Context, id string) error {
	_, err := s.objects.Trash(ctx, id)
	return err
}

var _ campaign.ArtifactStore = (*Store)(nil)
