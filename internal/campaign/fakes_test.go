package campaign_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mergeflow/internal/campaign"
	"github.com/dmitrymomot/mergeflow/pkg/activity"
	"github.com/dmitrymomot/mergeflow/pkg/mailer"
	"github.com/dmitrymomot/mergeflow/pkg/sheet"
	"github.com/dmitrymomot/mergeflow/pkg/template"
)

const inviteTemplate = `---
subject: "Your invitation, {{FirstName}}"
---
# Invitation

Dear {{FirstName}} {{?LastName}},

{{City}}, {{?Address2}}

See you soon.
`

var errStoreDown = errors.New("store down")

func templates() template.Store {
	return template.NewFSStore(fstest.MapFS{
		"invite.md": &fstest.MapFile{Data: []byte(inviteTemplate)},
	})
}

func testConfig() campaign.Config {
	return campaign.Config{
		Template:          "invite",
		DocumentsLocation: "docs",
		PDFsLocation:      "pdfs",
		SendDelay:         -1,
	}
}

func newSheet(t *testing.T, columns []string, rows ...[]string) *sheet.MemoryStore {
	t.Helper()
	s, err := sheet.NewMemoryStore(columns, rows...)
	require.NoError(t, err)
	return s
}

type storedArtifact struct {
	location    string
	name        string
	contentType string
	body        []byte
}

// memArtifacts is an in-memory ArtifactStore. failOn makes operations on
// matching names or ids fail. With recursive set, List also returns
// artifacts of nested locations, like an object store prefix listing.
type memArtifacts struct {
	items     map[string]*storedArtifact
	trashed   []string
	failOn    map[string]bool
	seq       int
	recursive bool
	mu        sync.Mutex
}

func newArtifacts() *memArtifacts {
	return &memArtifacts{items: map[string]*storedArtifact{}, failOn: map[string]bool{}}
}

func (m *memArtifacts) Put(_ context.Context, location, name, contentType string, body []byte) (campaign.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn[name] {
		return campaign.Artifact{}, errStoreDown
	}
	m.seq++
	id := fmt.Sprintf("%s/%d", location, m.seq)
	m.items[id] = &storedArtifact{location: location, name: name, contentType: contentType, body: body}
	return campaign.Artifact{ID: id, Location: location, Name: name}, nil
}

func (m *memArtifacts) Replace(_ context.Context, id, contentType string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok || m.failOn[id] {
		return errStoreDown
	}
	a.contentType = contentType
	a.body = body
	return nil
}

func (m *memArtifacts) Get(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, errStoreDown
	}
	return a.body, nil
}

func (m *memArtifacts) List(_ context.Context, location string) ([]campaign.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn[location] {
		return nil, errStoreDown
	}
	var files []campaign.File
	for id, a := range m.items {
		if a.location == location || (m.recursive && strings.HasPrefix(a.location, location+"/")) {
			files = append(files, campaign.File{ID: id, Name: a.name})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return files, nil
}

func (m *memArtifacts) Trash(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn[id] {
		return errStoreDown
	}
	if _, ok := m.items[id]; !ok {
		return errStoreDown
	}
	delete(m.items, id)
	m.trashed = append(m.trashed, id)
	return nil
}

// seed stores an artifact under a fixed id.
func (m *memArtifacts) seed(id, location, name string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = &storedArtifact{location: location, name: name, body: body}
}

func (m *memArtifacts) body(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.items[id]; ok {
		return string(a.body)
	}
	return ""
}

func (m *memArtifacts) count(location string) int {
	files, _ := m.List(context.Background(), location)
	return len(files)
}

type fakeConverter struct {
	err   error
	calls int
}

func (c *fakeConverter) Convert(_ context.Context, name string, html []byte) ([]byte, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return append([]byte("%PDF "+name+" "), html[:min(len(html), 16)]...), nil
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, email *mailer.Email) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

type MockLocator struct {
	mock.Mock
}

func (m *MockLocator) LocateSent(ctx context.Context, to, subject string, since time.Time) (string, error) {
	args := m.Called(ctx, to, subject, since)
	return args.String(0), args.Error(1)
}

type MockBounceChecker struct {
	mock.Mock
}

func (m *MockBounceChecker) Bounced(ctx context.Context, messageID string) (bool, error) {
	args := m.Called(ctx, messageID)
	return args.Bool(0), args.Error(1)
}

type memActivity struct {
	entries []activity.Entry
	mu      sync.Mutex
}

func (l *memActivity) Append(_ context.Context, e activity.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return nil
}

func (l *memActivity) outcomes() []activity.Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]activity.Outcome, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.Outcome)
	}
	return out
}
