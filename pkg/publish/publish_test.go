package publish_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relnote/relnote/pkg/changelog"
	"github.com/relnote/relnote/pkg/publish"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (s *memStore) Put(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = append([]byte(nil), data...)

	return nil
}

func (s *memStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string

	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	return keys, nil
}

func sampleRelease(version string) *changelog.Release {
	return &changelog.Release{
		Version: version,
		Date:    "2023-10-06",
		Sections: []*changelog.Section{
			{
				Rubric: "Feature",
				Entries: []*changelog.Entry{
					{
						Text: "Added lazy concat.",
						Refs: []changelog.Ref{
							{Kind: changelog.RefPR, Value: "1247"},
							{Kind: changelog.RefUser, Value: "ivirshup"},
						},
					},
				},
			},
		},
	}
}

func TestPublishRelease(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	p := publish.NewPublisher(store, "notes")

	require.NoError(t, p.PublishRelease(t.Context(), sampleRelease("0.10.0"), true))

	doc := string(store.objects["notes/0.10.0.md"])
	assert.Contains(t, doc, "## 0.10.0 (2023-10-06)")
	assert.Contains(t, doc, "{pr}`1247` {user}`ivirshup`")
	assert.Equal(t, doc, string(store.objects["notes/latest.md"]))
}

func TestPublishReleaseNotLatest(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	p := publish.NewPublisher(store, "notes")

	require.NoError(t, p.PublishRelease(t.Context(), sampleRelease("0.9.2"), false))

	assert.Contains(t, store.objects, "notes/0.9.2.md")
	assert.NotContains(t, store.objects, "notes/latest.md")
}

func TestPublished(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	p := publish.NewPublisher(store, "notes")
	ctx := t.Context()

	require.NoError(t, p.PublishRelease(ctx, sampleRelease("0.9.2"), false))
	require.NoError(t, p.PublishRelease(ctx, sampleRelease("0.10.0"), true))

	versions, err := p.Published(ctx)
	require.NoError(t, err)

	// Semver order with latest.md filtered out.
	assert.Equal(t, []string{"0.10.0", "0.9.2"}, versions)
}
