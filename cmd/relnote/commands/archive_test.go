package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveCmds(t *testing.T) {
	root := initProject(t)

	addFragment(t, root, "900", "bugfix", "Old fix.", "x")
	_, _, err := executeCmd(t, "build", "-p", root, "--quiet", "--date", "2023-07-25")
	require.NoError(t, err)

	addFragment(t, root, "1247", "feature", "Added lazy concat.", "ivirshup")
	_, _, err = executeCmd(t, "build", "-p", root, "--quiet", "--date", "2023-10-06")
	require.NoError(t, err)

	stdout, _, err := executeCmd(t, "archive", "prune", "-p", root, "--keep_releases", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Archived 0.1.0")

	data, err := os.ReadFile(filepath.Join(root, "CHANGELOG.md"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "## 0.1.0")

	listOut, _, err := executeCmd(t, "archive", "list", "-p", root)
	require.NoError(t, err)
	assert.Contains(t, listOut, "0.1.0")

	catOut, _, err := executeCmd(t, "archive", "cat", "0.1.0", "-p", root)
	require.NoError(t, err)
	assert.Contains(t, catOut, "## 0.1.0 (2023-07-25)")
	assert.Contains(t, catOut, "- Old fix. {pr}`900` {user}`x`")
}

func TestArchivePruneCmdNothingToDo(t *testing.T) {
	root := initProject(t)

	addFragment(t, root, "900", "bugfix", "Old fix.", "x")
	_, _, err := executeCmd(t, "build", "-p", root, "--quiet")
	require.NoError(t, err)

	stdout, _, err := executeCmd(t, "archive", "prune", "-p", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Nothing to archive.")
}
