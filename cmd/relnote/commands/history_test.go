package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relnote/relnote/cmd/relnote/commands"
)

func TestHistorySearchCmd(t *testing.T) {
	root := initProject(t)

	addFragment(t, root, "1189", "bugfix", "Fixed append of categoricals.", "flying-sheep")
	_, _, err := executeCmd(t, "build", "-p", root, "--quiet", "--version", "0.1.0")
	require.NoError(t, err)

	addFragment(t, root, "1266", "performance", "Faster disk io.", "Intron7")
	_, _, err = executeCmd(t, "build", "-p", root, "--quiet", "--version", "0.2.0")
	require.NoError(t, err)

	byPR, _, err := executeCmd(t, "history", "search", "-p", root, "--pr", "1189")
	require.NoError(t, err)
	assert.Contains(t, byPR, "0.1.0")
	assert.Contains(t, byPR, "Fixed append of categoricals.")
	assert.NotContains(t, byPR, "Faster disk io.")

	byText, _, err := executeCmd(t, "history", "search", "-p", root, "--text", "disk")
	require.NoError(t, err)
	assert.Contains(t, byText, "0.2.0")
	assert.Contains(t, byText, "Faster disk io. (Intron7)")

	byAuthor, _, err := executeCmd(t, "history", "search", "-p", root, "--author", "flying-sheep")
	require.NoError(t, err)
	assert.Contains(t, byAuthor, "Bugfix")
	assert.NotContains(t, byAuthor, "0.2.0")
}

func TestHistorySearchCmdNoCriteria(t *testing.T) {
	root := initProject(t)

	_, _, err := executeCmd(t, "history", "search", "-p", root)
	require.ErrorIs(t, err, commands.ErrHistoryFailed)
}

func TestHistoryListCmdEmpty(t *testing.T) {
	root := initProject(t)

	stdout, _, err := executeCmd(t, "history", "list", "-p", root)
	require.NoError(t, err)
	assert.Empty(t, stdout)
}
