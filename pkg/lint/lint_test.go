package lint_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relnote/relnote/pkg/changelog"
	"github.com/relnote/relnote/pkg/fragment"
	"github.com/relnote/relnote/pkg/lint"
	"github.com/relnote/relnote/pkg/relconfig"
)

func parseDoc(t *testing.T, doc string) *changelog.Changelog {
	t.Helper()

	c, err := changelog.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	return c
}

func defaultCfg() *relconfig.Config {
	return relconfig.DefaultConfig()
}

func rules(res *lint.Result) []string {
	var out []string
	for _, f := range res.Findings {
		out = append(out, f.Rule)
	}

	return out
}

func TestChangelogClean(t *testing.T) {
	t.Parallel()

	doc := "## 0.10.1 (2024-01-08)\n" +
		"\n" +
		"### Bugfix\n" +
		"\n" +
		"- Fixed concat of backed layers. {pr}`1189` {user}`flying-sheep`\n" +
		"\n" +
		"## 0.10.0 (2023-10-06)\n" +
		"\n" +
		"### Performance\n" +
		"\n" +
		"- Cached index pointers. {pr}`1266` {user}`Intron7`\n"

	res := lint.Changelog(parseDoc(t, doc), defaultCfg())
	assert.True(t, res.OK())
	require.NoError(t, res.Err())
}

func TestEntryMissingRefs(t *testing.T) {
	t.Parallel()

	doc := "## 0.1.0 (2024-01-01)\n" +
		"\n" +
		"### Bugfix\n" +
		"\n" +
		"- No references at all.\n" +
		"- Only a PR. {pr}`12`\n" +
		"- Out of order. {user}`a` {pr}`12`\n"

	res := lint.Changelog(parseDoc(t, doc), defaultCfg())
	assert.Equal(t, []string{lint.RuleEntryRefs, lint.RuleEntryRefs, lint.RuleEntryRefs}, rules(res))

	err := res.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pull request reference")
	assert.Contains(t, err.Error(), "no author reference")
	assert.Contains(t, err.Error(), "must follow")
}

func TestUnknownRubric(t *testing.T) {
	t.Parallel()

	doc := "## 0.1.0 (2024-01-01)\n" +
		"\n" +
		"### Misc\n" +
		"\n" +
		"- Something. {pr}`1` {user}`a`\n"

	res := lint.Changelog(parseDoc(t, doc), defaultCfg())
	assert.Equal(t, []string{lint.RuleRubricDeclared}, rules(res))
}

func TestRepeatedRubric(t *testing.T) {
	t.Parallel()

	doc := "## 0.1.0 (2024-01-01)\n" +
		"\n" +
		"### Bugfix\n" +
		"\n" +
		"- One. {pr}`1` {user}`a`\n" +
		"\n" +
		"### Bugfix\n" +
		"\n" +
		"- Two. {pr}`2` {user}`a`\n"

	res := lint.Changelog(parseDoc(t, doc), defaultCfg())
	assert.Equal(t, []string{lint.RuleRubricDeclared}, rules(res))
}

func TestVersionOrder(t *testing.T) {
	t.Parallel()

	doc := "## 0.9.0 (2024-01-01)\n" +
		"\n" +
		"### Bugfix\n" +
		"\n" +
		"- One. {pr}`1` {user}`a`\n" +
		"\n" +
		"## 0.10.0 (2023-12-01)\n" +
		"\n" +
		"### Bugfix\n" +
		"\n" +
		"- Two. {pr}`2` {user}`a`\n"

	res := lint.Changelog(parseDoc(t, doc), defaultCfg())
	assert.Equal(t, []string{lint.RuleHeading}, rules(res))
}

func TestHeadingProblems(t *testing.T) {
	t.Parallel()

	doc := "## 0.10.0 (someday)\n" +
		"\n" +
		"### Bugfix\n" +
		"\n" +
		"- One. {pr}`1` {user}`a`\n" +
		"\n" +
		"## 0.9.0 (unreleased)\n" +
		"\n" +
		"### Bugfix\n" +
		"\n" +
		"- Two. {pr}`2` {user}`a`\n"

	res := lint.Changelog(parseDoc(t, doc), defaultCfg())
	assert.Equal(t, []string{lint.RuleHeading, lint.RuleHeading}, rules(res))
}

func TestDuplicatePR(t *testing.T) {
	t.Parallel()

	doc := "## 0.1.0 (2024-01-01)\n" +
		"\n" +
		"### Bugfix\n" +
		"\n" +
		"- One. {pr}`7` {user}`a`\n" +
		"- Two. {pr}`7` {user}`b`\n"

	res := lint.Changelog(parseDoc(t, doc), defaultCfg())
	assert.Equal(t, []string{lint.RuleDuplicatePR}, rules(res))
}

func TestDuplicatePRAcrossRubricsAllowed(t *testing.T) {
	t.Parallel()

	doc := "## 0.1.0 (2024-01-01)\n" +
		"\n" +
		"### Bugfix\n" +
		"\n" +
		"- Fix. {pr}`7` {user}`a`\n" +
		"\n" +
		"### Documentation\n" +
		"\n" +
		"- Docs for the fix. {pr}`7` {user}`a`\n"

	res := lint.Changelog(parseDoc(t, doc), defaultCfg())
	assert.True(t, res.OK())
}

func TestFragments(t *testing.T) {
	t.Parallel()

	frs := []*fragment.Fragment{
		{PR: 1, Rubric: "bugfix", Text: "Fine."},
		{PR: 2, Rubric: "misc", Text: "Unknown rubric."},
	}

	res := lint.Fragments(frs, defaultCfg())
	assert.Equal(t, []string{lint.RuleFragment}, rules(res))
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	doc := "## 0.1.0 (2024-01-01)\n\n### Bugfix\n\n- No refs.\n"

	res := lint.Changelog(parseDoc(t, doc), defaultCfg())

	var buf strings.Builder
	require.NoError(t, res.WriteReport(&buf, false))

	out := buf.String()
	assert.Contains(t, out, "fail 0.1.0/Bugfix")
	assert.Contains(t, out, "1 problem(s) found")
}

func TestWriteReportClean(t *testing.T) {
	t.Parallel()

	res := lint.Changelog(&changelog.Changelog{}, defaultCfg())

	var buf strings.Builder
	require.NoError(t, res.WriteReport(&buf, false))
	assert.Contains(t, buf.String(), "no problems found")
}
