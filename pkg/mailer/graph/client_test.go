package graph_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mergeflow/pkg/mailer"
	"github.com/dmitrymomot/mergeflow/pkg/mailer/graph"
)

const sentItems = `{"value":[
	{"id":"m2","subject":"Hello Bob","conversationId":"c2","toRecipients":[{"emailAddress":{"address":"bob@example.com"}}]},
	{"id":"m1","subject":"Hello Ann","conversationId":"c1","toRecipients":[{"emailAddress":{"address":"Ann@Example.com"}}]}
]}`

func newClient(t *testing.T, thread string) *graph.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/campaigns@example.com/mailFolders/SentItems/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("$filter"), "sentDateTime ge 2026-01-02T03:04:05Z")
		_, _ = w.Write([]byte(sentItems))
	})
	mux.HandleFunc("GET /users/campaigns@example.com/messages/m1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"m1","conversationId":"c1"}`))
	})
	mux.HandleFunc("GET /users/campaigns@example.com/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "conversationId eq 'c1'", r.URL.Query().Get("$filter"))
		_, _ = w.Write([]byte(thread))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return graph.NewWithHTTPClient(srv.Client(), graph.Config{
		Mailbox: "campaigns@example.com",
		BaseURL: srv.URL,
	})
}

func TestClient_LocateSent(t *testing.T) {
	t.Parallel()

	c := newClient(t, `{"value":[]}`)
	since := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	id, err := c.LocateSent(context.Background(), "ann@example.com", "Hello Ann", since)
	require.NoError(t, err)
	assert.Equal(t, "m1", id)

	_, err = c.LocateSent(context.Background(), "ann@example.com", "Other subject", since)
	require.ErrorIs(t, err, mailer.ErrMessageNotFound)
}

func TestClient_Bounced(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		thread   string
		expected bool
	}{
		{
			name: "daemon reply in thread",
			thread: `{"value":[
				{"id":"m1","from":{"emailAddress":{"address":"campaigns@example.com"}}},
				{"id":"r1","from":{"emailAddress":{"address":"MAILER-DAEMON@mx.example.com","name":"Mail Delivery Subsystem"}}}
			]}`,
			expected: true,
		},
		{
			name: "human reply only",
			thread: `{"value":[
				{"id":"m1","from":{"emailAddress":{"address":"campaigns@example.com"}}},
				{"id":"r1","from":{"emailAddress":{"address":"ann@example.com","name":"Ann"}}}
			]}`,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newClient(t, tt.thread)

			bounced, err := c.Bounced(context.Background(), "m1")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, bounced)
		})
	}
}

func TestClient_BouncedUnknownMessage(t *testing.T) {
	t.Parallel()

	c := newClient(t, `{"value":[]}`)

	_, err := c.Bounced(context.Background(), "nope")
	require.ErrorIs(t, err, mailer.ErrMessageNotFound)
}
