package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/relnote/relnote/pkg/changelog"
	"github.com/relnote/relnote/pkg/relconfig"
	"github.com/relnote/relnote/pkg/relerrors"
)

// BundleExt is the suffix of one archived release bundle.
const BundleExt = ".md.zst"

var (
	ErrArchiveFailed = errors.New("failed to archive releases")
	ErrBundleExists  = errors.New("bundle already exists")
)

// Bundled describes one release moved into the archive.
type Bundled struct {
	Version string
	Path    string
}

// Prune moves every release after the first keep releases out of the
// changelog into per-release bundles under the configured archive
// directory, then rewrites the trimmed changelog. A keep of zero falls
// back to the configured keep count. Existing bundles are never
// overwritten.
func Prune(cfg *relconfig.Config, keep int) ([]Bundled, error) {
	if keep <= 0 {
		keep = cfg.Archive.KeepReleases
	}

	f, err := os.Open(cfg.ChangelogPath())
	if err != nil {
		return nil, fmt.Errorf("%w: open changelog: %w", ErrArchiveFailed, err)
	}
	defer f.Close() //nolint:errcheck // Read-only file.

	cl, err := changelog.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}

	removed := cl.RemoveOlderThan(keep)
	if len(removed) == 0 {
		return nil, nil
	}

	dir := cfg.ArchivePath()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}

	bundled := make([]Bundled, 0, len(removed))

	for _, rel := range removed {
		path := filepath.Join(dir, rel.Version+BundleExt)

		if err := writeBundle(path, rel); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
		}

		bundled = append(bundled, Bundled{Version: rel.Version, Path: path})
	}

	var buf strings.Builder
	if err := cl.Render(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}

	if err := os.WriteFile(cfg.ChangelogPath(), []byte(buf.String()), 0o644); err != nil { //nolint:gosec // The changelog is a public document.
		return nil, fmt.Errorf("%w: write changelog: %w", ErrArchiveFailed, err)
	}

	return bundled, nil
}

// List returns the versions bundled under dir, newest first.
func List(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}

	var versions []string

	for _, ent := range ents {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), BundleExt) {
			continue
		}

		versions = append(versions, strings.TrimSuffix(ent.Name(), BundleExt))
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

// Extract decompresses the bundle for version under dir into w.
func Extract(dir, version string, w io.Writer) error {
	f, err := os.Open(filepath.Join(dir, version+BundleExt)) //nolint:gosec // The archive dir comes from the project config.
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: no bundle for %q", relerrors.ErrFileNotFound, version)
	} else if err != nil {
		return fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}
	defer f.Close() //nolint:errcheck // Read-only file.

	dec, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}
	defer dec.Close()

	if _, err := io.Copy(w, dec); err != nil { //nolint:gosec // Bundles are written by this tool.
		return fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}

	return nil
}

// Restore parses the bundle for version under dir back into a release.
func Restore(dir, version string) (*changelog.Release, error) {
	var buf strings.Builder
	if err := Extract(dir, version, &buf); err != nil {
		return nil, err
	}

	cl, err := changelog.Parse(strings.NewReader(buf.String()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}

	rel := cl.Release(version)
	if rel == nil {
		return nil, fmt.Errorf("%w: bundle holds no release %q", relerrors.ErrInvalidFormat, version)
	}

	return rel, nil
}

func writeBundle(path string, rel *changelog.Release) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrBundleExists, path)
	}

	f, err := os.Create(path) //nolint:gosec // The archive dir comes from the project config.
	if err != nil {
		return err
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close() //nolint:errcheck,gosec // Best effort on the error path.

		return err
	}

	if err := changelog.RenderRelease(enc, rel); err != nil {
		enc.Close() //nolint:errcheck,gosec // Best effort on the error path.
		f.Close()   //nolint:errcheck,gosec // Best effort on the error path.

		return err
	}

	if err := enc.Close(); err != nil {
		f.Close() //nolint:errcheck,gosec // Best effort on the error path.

		return err
	}

	return f.Close()
}
