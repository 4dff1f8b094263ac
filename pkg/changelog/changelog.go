package changelog

import (
	"fmt"
	"strconv"

	"github.com/Masterminds/semver/v3"

	"github.com/relnote/relnote/pkg/relerrors"
)

// UnreleasedDate is the date placeholder used for a release section that has
// not been published yet.
const UnreleasedDate = "unreleased"

// DateLayout is the date format used in release headings.
const DateLayout = "2006-01-02"

// RefKind discriminates trailing reference markers on an entry.
type RefKind string

const (
	RefPR   RefKind = "pr"
	RefUser RefKind = "user"
)

// Ref is a single reference marker: a {pr} marker holding a pull request
// number, or a {user} marker holding a github handle.
type Ref struct {
	Kind  RefKind
	Value string
}

// Entry is one bullet item in a rubric. Text holds the entry body without
// its trailing reference markers; Refs holds those markers in document
// order.
type Entry struct {
	Text string
	Refs []Ref
}

// PRs returns the pull request numbers referenced by the entry. Markers
// whose value is not numeric are skipped; lint reports them.
func (e *Entry) PRs() []int {
	var prs []int

	for _, r := range e.Refs {
		if r.Kind != RefPR {
			continue
		}

		n, err := strconv.Atoi(r.Value)
		if err != nil {
			continue
		}

		prs = append(prs, n)
	}

	return prs
}

// Authors returns the author handles referenced by the entry.
func (e *Entry) Authors() []string {
	var authors []string

	for _, r := range e.Refs {
		if r.Kind == RefUser {
			authors = append(authors, r.Value)
		}
	}

	return authors
}

// Section groups the entries of one rubric within a release.
type Section struct {
	Rubric  string
	Entries []*Entry
}

// Release is one version section. Published releases are immutable; the
// only mutation the tool performs is moving whole sections to the archive.
type Release struct {
	Version  string
	Date     string
	Sections []*Section
}

// Unreleased reports whether the release still carries the date
// placeholder.
func (r *Release) Unreleased() bool {
	return r.Date == UnreleasedDate || r.Date == ""
}

// Section returns the section for the named rubric, or nil.
func (r *Release) Section(rubric string) *Section {
	for _, s := range r.Sections {
		if s.Rubric == rubric {
			return s
		}
	}

	return nil
}

// EntryCount returns the total number of entries across all sections.
func (r *Release) EntryCount() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Entries)
	}

	return n
}

// Changelog is a whole release-notes document: optional preamble text
// followed by release sections ordered newest first.
type Changelog struct {
	Preamble string
	Releases []*Release
}

// Latest returns the newest release, or nil for an empty changelog.
func (c *Changelog) Latest() *Release {
	if len(c.Releases) == 0 {
		return nil
	}

	return c.Releases[0]
}

// Release returns the release with the given version, or nil.
func (c *Changelog) Release(version string) *Release {
	for _, r := range c.Releases {
		if r.Version == version {
			return r
		}
	}

	return nil
}

// Insert prepends a new release. The version must parse as semver, must not
// already exist, and must be greater than the current latest release.
func (c *Changelog) Insert(rel *Release) error {
	v, err := ParseVersion(rel.Version)
	if err != nil {
		return err
	}

	if c.Release(rel.Version) != nil {
		return fmt.Errorf("%w: release %q", relerrors.ErrDuplicate, rel.Version)
	}

	if latest := c.Latest(); latest != nil {
		lv, err := ParseVersion(latest.Version)
		if err == nil && !v.GreaterThan(lv) {
			return fmt.Errorf("%w: %q is not greater than %q", relerrors.ErrVersionRegression, rel.Version, latest.Version)
		}
	}

	c.Releases = append([]*Release{rel}, c.Releases...)

	return nil
}

// RemoveOlderThan removes all releases after the first keep releases and
// returns them, oldest last. It is used when archiving old sections.
func (c *Changelog) RemoveOlderThan(keep int) []*Release {
	if keep < 0 || keep >= len(c.Releases) {
		return nil
	}

	removed := c.Releases[keep:]
	c.Releases = c.Releases[:keep:keep]

	return removed
}

// ParseVersion parses a semver version string, tolerating a leading "v".
func ParseVersion(s string) (*semver.Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", relerrors.ErrInvalidVersion, s, err)
	}

	return v, nil
}
