package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves the subset of the S3 REST API used by S3Storage (path-style).
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// "/bucket/key..." -> key
	key := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/"), "campaigns")
	key = strings.TrimPrefix(key, "/")

	switch {
	case r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2":
		prefix := r.URL.Query().Get("prefix")
		var keys []string
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)

		var b strings.Builder
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
		fmt.Fprintf(&b, `<Name>campaigns</Name><Prefix>%s</Prefix><KeyCount>%d</KeyCount><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated>`, prefix, len(keys))
		for _, k := range keys {
			fmt.Fprintf(&b, `<Contents><Key>%s</Key><LastModified>2026-01-02T03:04:05.000Z</LastModified><Size>%d</Size></Contents>`, k, len(f.objects[k]))
		}
		b.WriteString(`</ListBucketResult>`)
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(b.String()))

	case r.Method == http.MethodPut && r.Header.Get("x-amz-copy-source") != "":
		src := strings.TrimPrefix(r.Header.Get("x-amz-copy-source"), "campaigns/")
		body, ok := f.objects[src]
		if !ok {
			writeS3Error(w, http.StatusNotFound, "NoSuchKey")
			return
		}
		f.objects[key] = body
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<CopyObjectResult><ETag>"etag"</ETag><LastModified>2026-01-02T03:04:05.000Z</LastModified></CopyObjectResult>`))

	case r.Method == http.MethodPut:
		_, _ = io.Copy(io.Discard, r.Body)
		f.objects[key] = "uploaded"
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			writeS3Error(w, http.StatusNotFound, "NoSuchKey")
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte(body))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) object(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.objects[key]
	return v, ok
}

func writeS3Error(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message></Error>`, code, code)
}

func newFakeStorage(t *testing.T, objects map[string]string) (*S3Storage, *fakeS3) {
	t.Helper()

	fake := &fakeS3{objects: objects}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := New(Config{
		Bucket:    "campaigns",
		AccessKey: "test-access-key",
		SecretKey: "test-secret-key",
		Endpoint:  srv.URL,
		PathStyle: true,
	})
	require.NoError(t, err)
	return store, fake
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		store, err := New(Config{Bucket: "b", AccessKey: "a", SecretKey: "s"})
		require.NoError(t, err)
		require.NotNil(t, store.client)
		require.Equal(t, DefaultRegion, store.cfg.Region)
		require.Equal(t, DefaultTrashPrefix, store.cfg.TrashPrefix)
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()

		store, err := New(Config{})
		require.ErrorIs(t, err, ErrInvalidConfig)
		require.Nil(t, store)
	})
}

func TestBuildKey(t *testing.T) {
	t.Parallel()

	ulid := `[0-9A-HJ-NP-TV-Z]{26}`

	tests := []struct {
		name        string
		prefix      string
		display     string
		contentType string
		pattern     string
	}{
		{"named pdf", "pdfs", "Offer - Zoë Smith", MIMEPDF, `^pdfs/Offer-Zoe-Smith-` + ulid + `\.pdf$`},
		{"nested prefix", "/campaign/docs/", "Letter", MIMEHTML, `^campaign/docs/Letter-` + ulid + `\.html$`},
		{"no name", "docs", "", MIMEMarkdown, `^docs/` + ulid + `\.md$`},
		{"no prefix unknown type", "", "x", "image/x-unknown", `^x-` + ulid + `\.bin$`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			key := buildKey(tt.prefix, tt.display, tt.contentType)
			assert.Regexp(t, regexp.MustCompile(tt.pattern), key)
		})
	}
}

func TestNameFromKey(t *testing.T) {
	t.Parallel()

	key := buildKey("pdfs", "Offer - Ann", MIMEPDF)
	assert.Equal(t, "Offer-Ann", nameFromKey(key))
	assert.Equal(t, "notes", nameFromKey("legacy/notes.txt"))
	assert.Equal(t, "a-b", nameFromKey("a-b.pdf"))
}

func TestMIME(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".pdf", ExtFromMIME("Application/PDF"))
	assert.Equal(t, ".html", ExtFromMIME("text/html; charset=utf-8"))
	assert.Empty(t, ExtFromMIME("image/png"))
	assert.Equal(t, MIMEPDF, DetectMIME([]byte("%PDF-1.7\n")))
	assert.Equal(t, MIMEHTML, DetectMIME([]byte("<html><body>x</body></html>")))
	assert.Equal(t, MIMEOctetStream, DetectMIME(nil))
}

func TestNormalizePrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "docs/", normalizePrefix("docs"))
	assert.Equal(t, "docs/", normalizePrefix("/docs/"))
	assert.Empty(t, normalizePrefix(""))
}

func TestS3Storage_Put(t *testing.T) {
	t.Parallel()

	store, fake := newFakeStorage(t, map[string]string{})

	info, err := store.Put(context.Background(), bytes.NewReader([]byte("%PDF-1.7")), 0,
		WithPrefix("pdfs"), WithName("Offer - Ann"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(info.Key, "pdfs/Offer-Ann-"))
	assert.Equal(t, "Offer - Ann", info.Name)
	assert.Equal(t, MIMEPDF, info.ContentType)
	assert.Equal(t, int64(8), info.Size)
	_, ok := fake.object(info.Key)
	assert.True(t, ok)

	_, err = store.Put(context.Background(), bytes.NewReader(nil), 0)
	require.ErrorIs(t, err, ErrEmptyFile)
}

func TestS3Storage_List(t *testing.T) {
	t.Parallel()

	store, _ := newFakeStorage(t, map[string]string{
		"docs/Letter-Ann-01JABCDEFGHJKMNPQRSTVWXYZ0.html": "a",
		"docs/Letter-Bob-01JABCDEFGHJKMNPQRSTVWXYZ1.html": "bb",
		"pdfs/Letter-Ann-01JABCDEFGHJKMNPQRSTVWXYZ2.pdf":  "ccc",
	})

	files, err := store.List(context.Background(), "docs")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "docs/Letter-Ann-01JABCDEFGHJKMNPQRSTVWXYZ0.html", files[0].Key)
	assert.Equal(t, "Letter-Ann", files[0].Name)
	assert.Equal(t, int64(2), files[1].Size)
	assert.Equal(t, 2026, files[1].Modified.Year())
}

func TestS3Storage_GetMissing(t *testing.T) {
	t.Parallel()

	store, _ := newFakeStorage(t, map[string]string{"docs/a.html": "hello"})

	rc, err := store.Get(context.Background(), "docs/a.html")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(body))

	_, err = store.Get(context.Background(), "docs/missing.html")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestS3Storage_Trash(t *testing.T) {
	t.Parallel()

	store, fake := newFakeStorage(t, map[string]string{"docs/a.html": "hello"})

	dst, err := store.Trash(context.Background(), "docs/a.html")
	require.NoError(t, err)
	assert.Equal(t, ".trash/docs/a.html", dst)
	_, ok := fake.object("docs/a.html")
	assert.False(t, ok)
	moved, _ := fake.object(".trash/docs/a.html")
	assert.Equal(t, "hello", moved)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Settings{}, Resolve())
	assert.Equal(t, Settings{Key: "docs/a.html", Prefix: "docs", Name: "A", ContentType: "text/html"},
		Resolve(WithPrefix("docs"), WithName("A"), WithContentType("text/html"), WithKey("docs/a.html")))
}
