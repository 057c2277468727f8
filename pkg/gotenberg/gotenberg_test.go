package gotenberg_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mergeflow/pkg/gotenberg"
)

func newServer(t *testing.T, handler http.HandlerFunc) *gotenberg.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := gotenberg.NewWithHTTPClient(srv.Client(), gotenberg.Config{URL: srv.URL + "/", PaperWidth: 8.27})
	require.NoError(t, err)
	return c
}

func TestConvert(t *testing.T) {
	t.Parallel()

	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		assert.Equal(t, "Letter - Ann", r.Header.Get("Gotenberg-Output-Filename"))

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "8.27", r.FormValue("paperWidth"))
		assert.Empty(t, r.FormValue("paperHeight"))

		f, header, err := r.FormFile("files")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		assert.Equal(t, "index.html", header.Filename)
		body, _ := io.ReadAll(f)
		assert.Equal(t, "<p>Hi Ann</p>", string(body))

		_, _ = w.Write([]byte("%PDF-1.7 fake"))
	})

	pdf, err := c.Convert(context.Background(), "Letter - Ann", []byte("<p>Hi Ann</p>"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 fake", string(pdf))
}

func TestConvert_Errors(t *testing.T) {
	t.Parallel()

	t.Run("server error", func(t *testing.T) {
		t.Parallel()
		c := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "chromium crashed", http.StatusInternalServerError)
		})
		_, err := c.Convert(context.Background(), "x", []byte("<p>x</p>"))
		assert.ErrorIs(t, err, gotenberg.ErrConversion)
		assert.Contains(t, err.Error(), "chromium crashed")
	})

	t.Run("not a pdf", func(t *testing.T) {
		t.Parallel()
		c := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		})
		_, err := c.Convert(context.Background(), "x", []byte("<p>x</p>"))
		assert.ErrorIs(t, err, gotenberg.ErrUnexpectedReply)
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()
		c, err := gotenberg.New(gotenberg.Config{URL: "http://localhost:3000"})
		require.NoError(t, err)
		_, err = c.Convert(context.Background(), "x", []byte("  "))
		assert.ErrorIs(t, err, gotenberg.ErrEmptyDocument)
	})
}

func TestNew_RequiresURL(t *testing.T) {
	t.Parallel()
	_, err := gotenberg.New(gotenberg.Config{})
	assert.ErrorIs(t, err, gotenberg.ErrMissingURL)
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"status":"up"}`))
	})
	assert.NoError(t, c.Healthcheck(context.Background()))
}
