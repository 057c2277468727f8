package storage

import (
	"net/http"
	"strings"

	"github.com/dmitrymomot/mergeflow/pkg/id"
)

// MIME type constants.
const (
	MIMEOctetStream = "application/octet-stream"
	MIMEPDF         = "application/pdf"
	MIMEHTML        = "text/html"
	MIMEMarkdown    = "text/markdown"

	mimeDetectionBytes = 512 // http.DetectContentType reads up to 512 bytes
)

var extensions = map[string]string{
	MIMEPDF:      ".pdf",
	MIMEHTML:     ".html",
	MIMEMarkdown: ".md",
	"text/plain": ".txt",
	"text/csv":   ".csv",
}

// NormalizeMIME strips parameters and lowercases a content type.
func NormalizeMIME(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// ExtFromMIME returns the file extension for a content type, or "" if unknown.
func ExtFromMIME(ct string) string {
	return extensions[NormalizeMIME(ct)]
}

// DetectMIME sniffs the content type of data.
func DetectMIME(data []byte) string {
	if len(data) == 0 {
		return MIMEOctetStream
	}
	return NormalizeMIME(http.DetectContentType(data[:min(len(data), mimeDetectionBytes)]))
}

// nameFromKey recovers the display name from a generated key by dropping the
// directory, the extension and the trailing ULID.
func nameFromKey(key string) string {
	base := key
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	if i := strings.LastIndexByte(base, '-'); i > 0 && len(base)-i-1 == id.ULIDLength {
		base = base[:i]
	}
	return base
}
