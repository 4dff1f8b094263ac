package release_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relnote/relnote/pkg/changelog"
	"github.com/relnote/relnote/pkg/relconfig"
	"github.com/relnote/relnote/pkg/release"
	"github.com/relnote/relnote/pkg/relerrors"
)

const existingDoc = "# Changelog\n" +
	"\n" +
	"## 0.9.2 (2023-07-25)\n" +
	"\n" +
	"### Bugfix\n" +
	"\n" +
	"- Old fix. {pr}`900` {user}`x`\n"

func setupProject(t *testing.T, fragments map[string]string) *relconfig.Config {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, relconfig.FileName), []byte("{}\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "CHANGELOG.md"), []byte(existingDoc), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "news"), 0o755))

	for name, body := range fragments {
		require.NoError(t, os.WriteFile(filepath.Join(root, "news", name), []byte(body), 0o600))
	}

	cfg, err := relconfig.Find(root)
	require.NoError(t, err)

	return cfg
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	cfg := setupProject(t, map[string]string{
		"1266.performance.md":   "Backed sparse matrices now cache their index pointer.\nauthor: Intron7\n",
		"1189.bugfix.md":        "Concatenation keeps extra layers.\nauthor: flying-sheep\n",
		"1247.documentation.md": "Expanded the on-disk format reference.\nauthor: ivirshup\n",
	})

	var events []any

	b := release.NewBuilder(cfg, release.WithClock(fixedClock()))
	b.Subscribe(func(evt any) { events = append(events, evt) })

	rel, err := b.Build(t.Context(), release.Options{})
	require.NoError(t, err)

	assert.Equal(t, "0.9.3", rel.Version)
	assert.Equal(t, "2024-02-01", rel.Date)

	// Sections follow configured rubric order.
	require.Len(t, rel.Sections, 3)
	assert.Equal(t, "Bugfix", rel.Sections[0].Rubric)
	assert.Equal(t, "Documentation", rel.Sections[1].Rubric)
	assert.Equal(t, "Performance", rel.Sections[2].Rubric)

	e := rel.Sections[0].Entries[0]
	assert.Equal(t, "Concatenation keeps extra layers. {pr}`1189` {user}`flying-sheep`", e.String())

	// Changelog was rewritten with the new release on top.
	data, err := os.ReadFile(cfg.ChangelogPath())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Changelog\n\n## 0.9.3 (2024-02-01)\n"))
	assert.Contains(t, string(data), "## 0.9.2 (2023-07-25)")

	// Fragments were consumed.
	dirents, err := os.ReadDir(cfg.FragmentsPath())
	require.NoError(t, err)
	assert.Empty(t, dirents)

	// Events were broadcast.
	require.NotEmpty(t, events)
	assert.Equal(t, release.EventSetFragmentTotal(3), events[0])
	assert.Equal(t, release.EventDone{Version: "0.9.3"}, events[len(events)-1])
}

func TestBuildMinorBump(t *testing.T) {
	t.Parallel()

	cfg := setupProject(t, map[string]string{
		"1100.feature.md": "Added lazy concatenation.\nauthor: a\n",
		"1101.bugfix.md":  "Fixed something.\nauthor: b\n",
	})

	b := release.NewBuilder(cfg, release.WithClock(fixedClock()))

	rel, err := b.Build(t.Context(), release.Options{})
	require.NoError(t, err)
	assert.Equal(t, "0.10.0", rel.Version)
}

func TestBuildExplicitVersionAndDryRun(t *testing.T) {
	t.Parallel()

	cfg := setupProject(t, map[string]string{
		"1.bugfix.md": "Fix.\nauthor: a\n",
	})

	b := release.NewBuilder(cfg, release.WithClock(fixedClock()))

	rel, err := b.Build(t.Context(), release.Options{Version: "2.0.0", DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", rel.Version)

	// Nothing was written or removed.
	data, err := os.ReadFile(cfg.ChangelogPath())
	require.NoError(t, err)
	assert.Equal(t, existingDoc, string(data))

	dirents, err := os.ReadDir(cfg.FragmentsPath())
	require.NoError(t, err)
	assert.Len(t, dirents, 1)
}

func TestBuildKeep(t *testing.T) {
	t.Parallel()

	cfg := setupProject(t, map[string]string{
		"1.bugfix.md": "Fix.\nauthor: a\n",
	})

	b := release.NewBuilder(cfg, release.WithClock(fixedClock()))

	_, err := b.Build(t.Context(), release.Options{Keep: true})
	require.NoError(t, err)

	dirents, err := os.ReadDir(cfg.FragmentsPath())
	require.NoError(t, err)
	assert.Len(t, dirents, 1)
}

func TestBuildNoFragments(t *testing.T) {
	t.Parallel()

	cfg := setupProject(t, nil)

	b := release.NewBuilder(cfg)

	_, err := b.Build(t.Context(), release.Options{})
	require.ErrorIs(t, err, release.ErrNoFragments)
}

func TestBuildVersionRegression(t *testing.T) {
	t.Parallel()

	cfg := setupProject(t, map[string]string{
		"1.bugfix.md": "Fix.\nauthor: a\n",
	})

	b := release.NewBuilder(cfg, release.WithClock(fixedClock()))

	_, err := b.Build(t.Context(), release.Options{Version: "0.9.0"})
	require.ErrorIs(t, err, relerrors.ErrVersionRegression)
}

func TestBuildUnknownRubric(t *testing.T) {
	t.Parallel()

	cfg := setupProject(t, map[string]string{
		"1.misc.md": "Something.\nauthor: a\n",
	})

	b := release.NewBuilder(cfg)

	_, err := b.Build(t.Context(), release.Options{})
	require.ErrorIs(t, err, relerrors.ErrUnknownRubric)
}

func TestBuildMergesExplicitMarkers(t *testing.T) {
	t.Parallel()

	cfg := setupProject(t, map[string]string{
		"20.bugfix.md": "Fix with extras. {pr}`19` {user}`early`\nauthor: late\n",
	})

	b := release.NewBuilder(cfg, release.WithClock(fixedClock()))

	rel, err := b.Build(t.Context(), release.Options{})
	require.NoError(t, err)

	e := rel.Sections[0].Entries[0]
	assert.Equal(t, "Fix with extras. {pr}`19` {pr}`20` {user}`early` {user}`late`", e.String())
}

func TestBuildRecorder(t *testing.T) {
	t.Parallel()

	cfg := setupProject(t, map[string]string{
		"1.bugfix.md": "Fix.\nauthor: a\n",
	})

	rec := &fakeRecorder{}
	b := release.NewBuilder(cfg, release.WithClock(fixedClock()), release.WithRecorder(rec))

	rel, err := b.Build(t.Context(), release.Options{})
	require.NoError(t, err)
	require.Len(t, rec.releases, 1)
	assert.Equal(t, rel.Version, rec.releases[0].Version)
}

type fakeRecorder struct {
	latest   string
	releases []*changelog.Release
}

func (f *fakeRecorder) RecordRelease(_ context.Context, rel *changelog.Release) error {
	f.releases = append(f.releases, rel)
	f.latest = rel.Version

	return nil
}

func (f *fakeRecorder) LatestVersion(_ context.Context) (string, error) {
	return f.latest, nil
}

func TestBuildRejectsVersionBehindCatalog(t *testing.T) {
	t.Parallel()

	cfg := setupProject(t, map[string]string{
		"1250.bugfix.md": "Fix.\nauthor: a\n",
	})

	// The changelog tops out at 0.9.2, but the catalog has already seen
	// 1.0.0 (e.g. the 1.x sections were archived away).
	rec := &fakeRecorder{latest: "1.0.0"}
	b := release.NewBuilder(cfg, release.WithClock(fixedClock()), release.WithRecorder(rec))

	_, err := b.Build(t.Context(), release.Options{Version: "0.9.3"})
	require.ErrorIs(t, err, relerrors.ErrVersionRegression)
	assert.Empty(t, rec.releases)

	data, err := os.ReadFile(cfg.ChangelogPath())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "0.9.3")
}

func TestNextVersionEmptyChangelog(t *testing.T) {
	t.Parallel()

	cfg := relconfig.DefaultConfig()
	b := release.NewBuilder(cfg)

	v, err := b.NextVersion(&changelog.Changelog{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", v)
}
