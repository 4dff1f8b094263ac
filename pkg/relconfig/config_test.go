package relconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relnote/relnote/pkg/relconfig"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, relconfig.FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "{}\n")

	c, err := relconfig.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "CHANGELOG.md", c.Changelog)
	assert.Equal(t, "news", c.Fragments)
	require.NotNil(t, c.RubricBySlug("bugfix"))
	assert.Equal(t, "Bugfix", c.RubricBySlug("bugfix").Name)
	assert.Equal(t, relconfig.BumpPatch, c.RubricBySlug("bugfix").Bump)
	assert.Equal(t, 10, c.Archive.KeepReleases)
}

func TestLoadDerivesNamesAndSlugs(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), `
rubrics:
  - slug: breaking_change
    bump: major
  - name: Bugfix
    bump: patch
`)

	c, err := relconfig.Load(path)
	require.NoError(t, err)

	bc := c.RubricBySlug("breaking_change")
	require.NotNil(t, bc)
	assert.Equal(t, "Breaking Change", bc.Name)

	bf := c.RubricByName("Bugfix")
	require.NotNil(t, bf)
	assert.Equal(t, "bugfix", bf.Slug)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "changlog: CHANGELOG.md\n")

	_, err := relconfig.Load(path)
	require.ErrorIs(t, err, relconfig.ErrInvalidConfig)
}

func TestValidateDuplicateSlug(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), `
rubrics:
  - name: Bugfix
  - slug: bugfix
`)

	_, err := relconfig.Load(path)
	require.ErrorIs(t, err, relconfig.ErrInvalidConfig)
}

func TestValidateBadBump(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), `
rubrics:
  - name: Bugfix
    bump: huge
`)

	_, err := relconfig.Load(path)
	require.ErrorIs(t, err, relconfig.ErrInvalidConfig)
}

func TestValidatePublish(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), `
publish:
  endpoint: minio.example.com
`)

	_, err := relconfig.Load(path)
	require.ErrorIs(t, err, relconfig.ErrInvalidConfig)
}

func TestFind(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, "fragments: changes\n")

	nested := filepath.Join(root, "pkg", "deep")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	c, err := relconfig.Find(nested)
	require.NoError(t, err)
	assert.Equal(t, root, c.Root())
	assert.Equal(t, filepath.Join(root, "changes"), c.FragmentsPath())
}

func TestFindMissing(t *testing.T) {
	t.Parallel()

	_, err := relconfig.Find(t.TempDir())
	require.ErrorIs(t, err, relconfig.ErrConfigNotFound)
}

func TestWriteRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, relconfig.FileName)

	c := relconfig.DefaultConfig()
	require.NoError(t, c.Write(path))

	got, err := relconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, c.Changelog, got.Changelog)
	assert.Len(t, got.Rubrics, len(c.Rubrics))
}

func TestSchema(t *testing.T) {
	t.Parallel()

	out, err := relconfig.Schema()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"rubrics"`)
	assert.Contains(t, string(out), "relnote configuration")
}
