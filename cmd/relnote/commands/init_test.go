package commands_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relnote/relnote/cmd/relnote/commands"
)

func initProject(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	_, _, err := executeCmd(t, "init", "-p", root)
	require.NoError(t, err)

	return root
}

func TestInitCmd(t *testing.T) {
	root := initProject(t)

	assert.FileExists(t, filepath.Join(root, ".relnote.yaml"))
	assert.FileExists(t, filepath.Join(root, "CHANGELOG.md"))
	assert.FileExists(t, filepath.Join(root, "news", "README.md"))
}

func TestInitCmdTwice(t *testing.T) {
	root := initProject(t)

	_, _, err := executeCmd(t, "init", "-p", root)
	require.ErrorIs(t, err, commands.ErrInitFailed)
}
