package changelog

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/relnote/relnote/pkg/relerrors"
)

var (
	releaseHeadingRE = regexp.MustCompile(`^## (\S+) \(([^)]+)\)\s*$`)
	rubricHeadingRE  = regexp.MustCompile(`^### (.+?)\s*$`)
	trailingRefRE    = regexp.MustCompile("\\s*\\{(pr|user)\\}`([^`]*)`\\s*$")
)

// Parse reads a changelog document in its canonical Markdown form. Lines
// before the first release heading are preserved verbatim as the preamble.
// Structural problems (a rubric heading outside a release, a bullet outside
// a rubric) are errors; editorial problems are left to lint.
func Parse(r io.Reader) (*Changelog, error) {
	c := &Changelog{}

	var (
		preamble   []string
		curRelease *Release
		curSection *Section
		curEntry   *Entry
		lineNo     int
	)

	flushEntry := func() {
		curEntry = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if m := releaseHeadingRE.FindStringSubmatch(line); m != nil {
			flushEntry()

			curRelease = &Release{Version: m[1], Date: m[2]}
			curSection = nil
			c.Releases = append(c.Releases, curRelease)

			continue
		}

		if curRelease == nil {
			preamble = append(preamble, line)

			continue
		}

		if m := rubricHeadingRE.FindStringSubmatch(line); m != nil {
			flushEntry()

			curSection = &Section{Rubric: m[1]}
			curRelease.Sections = append(curRelease.Sections, curSection)

			continue
		}

		switch {
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			flushEntry()

			if curSection == nil {
				return nil, fmt.Errorf("%w: line %d: entry outside of a rubric", relerrors.ErrInvalidFormat, lineNo)
			}

			text, refs := splitRefs(line[2:])
			curEntry = &Entry{Text: text, Refs: refs}
			curSection.Entries = append(curSection.Entries, curEntry)

		case strings.TrimSpace(line) == "":
			flushEntry()

		case curEntry != nil && strings.HasPrefix(line, "  "):
			// Continuation of a wrapped entry.
			text, refs := splitRefs(strings.TrimSpace(line))
			if curEntry.Text != "" && text != "" {
				curEntry.Text += " "
			}

			curEntry.Text += text
			curEntry.Refs = append(curEntry.Refs, refs...)

		default:
			return nil, fmt.Errorf("%w: line %d: unexpected content %q", relerrors.ErrInvalidFormat, lineNo, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read changelog: %w", err)
	}

	c.Preamble = strings.TrimRight(strings.Join(preamble, "\n"), "\n")

	return c, nil
}

// ParseEntry parses a single entry line into body text and trailing
// reference markers.
func ParseEntry(line string) *Entry {
	text, refs := splitRefs(line)

	return &Entry{Text: text, Refs: refs}
}

// splitRefs splits an entry line into its body text and the run of trailing
// reference markers. Markers embedded mid-text stay in the body.
func splitRefs(line string) (string, []Ref) {
	text := strings.TrimSpace(line)

	var reversed []Ref

	for {
		m := trailingRefRE.FindStringSubmatch(text)
		if m == nil {
			break
		}

		reversed = append(reversed, Ref{Kind: RefKind(m[1]), Value: m[2]})
		text = strings.TrimSpace(text[:len(text)-len(m[0])])
	}

	refs := make([]Ref, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		refs = append(refs, reversed[i])
	}

	if len(refs) == 0 {
		return text, nil
	}

	return text, refs
}
