package campaign

import (
	"context"
	"fmt"
	"html"
	"strings"
)

const (
	ContentTypeHTML = "text/html"
	ContentTypePDF  = "application/pdf"
)

// Artifact is a generated file.
type Artifact struct {
	ID       string `json:"id"`
	Location string `json:"location"`
	Name     string `json:"name"`
}

// File is an entry listed from an artifact location.
type File struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ArtifactStore persists generated documents and PDFs.
type ArtifactStore interface {
	Put(ctx context.Context, location, name, contentType string, body []byte) (Artifact, error)
	// Replace overwrites the content of an existing artifact, keeping its id.
	Replace(ctx context.Context, id, contentType string, body []byte) error
	Get(ctx context.Context, id string) ([]byte, error)
	List(ctx context.Context, location string) ([]File, error)
	// Trash soft-deletes an artifact.
	Trash(ctx context.Context, id string) error
}

// Converter renders an HTML document to PDF.
type Converter interface {
	Convert(ctx context.Context, name string, html []byte) ([]byte, error)
}

// Track is one of the two artifact kinds a recipient can reference.
type Track string

const (
	TrackDocuments Track = "documents"
	TrackPDFs      Track = "pdfs"
)

// ParseTrack accepts "documents"/"docs" and "pdfs"/"pdf".
func ParseTrack(s string) (Track, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "documents", "document", "docs", "doc":
		return TrackDocuments, nil
	case "pdfs", "pdf":
		return TrackPDFs, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTrack, s)
	}
}

// field is the recipient column holding this track's artifact id.
func (t Track) location(cfg Config) string {
	if t == TrackPDFs {
		return cfg.PDFsLocation
	}
	return cfg.DocumentsLocation
}

// htmlPage wraps merged markup into a standalone document.
func htmlPage(title, body string) []byte {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n</body>\n</html>\n")
	return []byte(b.String())
}
