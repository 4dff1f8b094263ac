package fragment

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/relnote/relnote/pkg/relerrors"
)

// ErrNotFragment indicates a file name that does not follow the
// `<pr>.<rubric>.md` pattern. Such files are skipped during loading.
var ErrNotFragment = errors.New("not a fragment file")

var fragmentNameRE = regexp.MustCompile(`^(\d+)\.([a-z0-9_]+)\.md$`)

// Fragment is one pending changelog entry, parsed from a fragment file.
type Fragment struct {
	Path    string
	Rubric  string
	Text    string
	Authors []string
	PR      int
}

// ParseName extracts the PR number and rubric slug from a fragment file
// name. It returns [ErrNotFragment] for names that do not match the
// pattern, so callers can skip READMEs, templates, and dotfiles.
func ParseName(name string) (int, string, error) {
	m := fragmentNameRE.FindStringSubmatch(name)
	if m == nil {
		return 0, "", fmt.Errorf("%w: %q", ErrNotFragment, name)
	}

	pr, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q: %w", relerrors.ErrInvalidFormat, name, err)
	}

	return pr, m[2], nil
}

// Name returns the canonical file name for the fragment.
func Name(pr int, rubric string) string {
	return fmt.Sprintf("%d.%s.md", pr, rubric)
}

// parseBody splits a fragment body into entry text and author handles.
// `author: <handle>[, <handle>...]` trailer lines supply authors; the
// remaining lines are collapsed into a single-line entry text.
func parseBody(body string) (string, []string) {
	var (
		textLines []string
		authors   []string
	)

	for line := range strings.SplitSeq(body, "\n") {
		trimmed := strings.TrimSpace(line)

		if h, ok := strings.CutPrefix(trimmed, "author:"); ok {
			for a := range strings.SplitSeq(h, ",") {
				if a = strings.TrimSpace(a); a != "" {
					authors = append(authors, a)
				}
			}

			continue
		}

		if trimmed != "" {
			textLines = append(textLines, trimmed)
		}
	}

	return strings.Join(textLines, " "), authors
}
