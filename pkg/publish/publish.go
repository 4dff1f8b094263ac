package publish

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/relnote/relnote/pkg/changelog"
)

const contentType = "text/markdown"

var ErrPublishFailed = errors.New("failed to publish release notes")

// ObjectStore is the storage surface publishing needs. Implementations
// must be safe for concurrent use.
type ObjectStore interface {
	// Put writes data under key, replacing any previous object.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// List returns every key under prefix, lexically sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Publisher renders release sections and uploads them under a key
// prefix. Each release lands at <prefix>/<version>.md and the newest
// additionally at <prefix>/latest.md.
type Publisher struct {
	store  ObjectStore
	prefix string
}

// NewPublisher returns a publisher writing through store under prefix.
func NewPublisher(store ObjectStore, prefix string) *Publisher {
	return &Publisher{store: store, prefix: prefix}
}

// PublishRelease uploads the rendered release. When latest is set the
// same document also replaces <prefix>/latest.md.
func (p *Publisher) PublishRelease(ctx context.Context, rel *changelog.Release, latest bool) error {
	var buf strings.Builder
	if err := changelog.RenderRelease(&buf, rel); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	data := []byte(buf.String())

	if err := p.store.Put(ctx, p.key(rel.Version+".md"), data, contentType); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	if latest {
		if err := p.store.Put(ctx, p.key("latest.md"), data, contentType); err != nil {
			return fmt.Errorf("%w: %w", ErrPublishFailed, err)
		}
	}

	return nil
}

// Published returns the versions already uploaded, newest first.
func (p *Publisher) Published(ctx context.Context) ([]string, error) {
	keys, err := p.store.List(ctx, p.prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	var versions []string

	for _, key := range keys {
		name := strings.TrimSuffix(path.Base(key), ".md")
		if name == "latest" || !strings.HasSuffix(key, ".md") {
			continue
		}

		versions = append(versions, name)
	}

	sort.Slice(versions, func(i, j int) bool {
		vi, erri := changelog.ParseVersion(versions[i])
		vj, errj := changelog.ParseVersion(versions[j])
		if erri != nil || errj != nil {
			return versions[i] > versions[j]
		}

		return vi.GreaterThan(vj)
	})

	return versions, nil
}

func (p *Publisher) key(name string) string {
	return path.Join(p.prefix, name)
}
