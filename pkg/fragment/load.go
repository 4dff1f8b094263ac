package fragment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/semaphore"
)

var ErrLoadWorkerFailed = errors.New("fragment load worker failed")

// Load reads all fragment files in dir. Files whose names do not match the
// fragment pattern are skipped. Reads run concurrently, bounded by
// GOMAXPROCS; all malformed fragments are reported together rather than
// stopping at the first.
//
// The returned fragments are sorted by PR number, then rubric.
func Load(ctx context.Context, dir string) ([]*Fragment, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read fragment directory: %w", err)
	}

	logger := slog.With(slog.String("dir", dir))

	workerCount := int64(runtime.GOMAXPROCS(0))
	sem := semaphore.NewWeighted(workerCount)

	var (
		mu        sync.Mutex
		fragments []*Fragment
		merr      error
	)

	for _, dirent := range dirents {
		if dirent.IsDir() {
			continue
		}

		name := dirent.Name()

		pr, rubric, err := ParseName(name)
		if errors.Is(err, ErrNotFragment) {
			logger.Debug("skipping non-fragment file", slog.String("name", name))

			continue
		} else if err != nil {
			merr = multierror.Append(merr, err)

			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadWorkerFailed, err)
		}

		go func() {
			defer sem.Release(1)

			path := filepath.Join(dir, name)

			body, err := os.ReadFile(path) //nolint:gosec // Path is inside the fragment directory.

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				merr = multierror.Append(merr, fmt.Errorf("read fragment %q: %w", name, err))

				return
			}

			text, authors := parseBody(string(body))
			if text == "" {
				merr = multierror.Append(merr, fmt.Errorf("fragment %q: empty entry text", name))

				return
			}

			fragments = append(fragments, &Fragment{
				Path:    path,
				PR:      pr,
				Rubric:  rubric,
				Text:    text,
				Authors: authors,
			})
		}()
	}

	if err := sem.Acquire(ctx, workerCount); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadWorkerFailed, err)
	}

	if merr != nil {
		return nil, merr
	}

	sort.Slice(fragments, func(i, j int) bool {
		if fragments[i].PR != fragments[j].PR {
			return fragments[i].PR < fragments[j].PR
		}

		return fragments[i].Rubric < fragments[j].Rubric
	})

	logger.Debug("loaded fragments", slog.Int("count", len(fragments)))

	return fragments, nil
}
