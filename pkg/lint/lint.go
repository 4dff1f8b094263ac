package lint

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/relnote/relnote/pkg/changelog"
	"github.com/relnote/relnote/pkg/fragment"
	"github.com/relnote/relnote/pkg/relconfig"
)

// Rule names used in findings.
const (
	RuleEntryRefs      = "entry-refs"
	RuleRubricDeclared = "rubric-declared"
	RuleHeading        = "heading"
	RuleDuplicatePR    = "duplicate-pr"
	RuleFragment       = "fragment"
)

// Finding is one lint problem. It implements error so findings can be
// aggregated with multierror.
type Finding struct {
	Rule    string
	Message string
	Version string
	Rubric  string
}

func (f Finding) Error() string {
	pos := ""

	if f.Version != "" {
		pos = f.Version

		if f.Rubric != "" {
			pos += "/" + f.Rubric
		}

		pos += ": "
	}

	return fmt.Sprintf("%s%s (%s)", pos, f.Message, f.Rule)
}

// Result collects the findings of one lint run.
type Result struct {
	Findings []Finding
}

func (r *Result) add(f Finding) {
	r.Findings = append(r.Findings, f)
}

// OK reports whether the run produced no findings.
func (r *Result) OK() bool {
	return len(r.Findings) == 0
}

// Err returns all findings aggregated into a single error, or nil.
func (r *Result) Err() error {
	var merr error

	for _, f := range r.Findings {
		merr = multierror.Append(merr, f)
	}

	return merr
}

// Changelog lints a parsed changelog document against the configured rubric
// set.
func Changelog(c *changelog.Changelog, cfg *relconfig.Config) *Result {
	res := &Result{}

	var prev *changelog.Release

	for i, rel := range c.Releases {
		lintHeading(res, rel, prev, i == 0)
		lintSections(res, rel, cfg)
		prev = rel
	}

	return res
}

func lintHeading(res *Result, rel, prev *changelog.Release, first bool) {
	v, err := changelog.ParseVersion(rel.Version)
	if err != nil {
		res.add(Finding{
			Rule:    RuleHeading,
			Version: rel.Version,
			Message: fmt.Sprintf("heading version %q is not semver", rel.Version),
		})

		return
	}

	if rel.Unreleased() {
		if !first {
			res.add(Finding{
				Rule:    RuleHeading,
				Version: rel.Version,
				Message: "only the newest release may be unreleased",
			})
		}
	} else if _, err := time.Parse(changelog.DateLayout, rel.Date); err != nil {
		res.add(Finding{
			Rule:    RuleHeading,
			Version: rel.Version,
			Message: fmt.Sprintf("release date %q is not YYYY-MM-DD", rel.Date),
		})
	}

	if prev == nil {
		return
	}

	pv, err := changelog.ParseVersion(prev.Version)
	if err != nil {
		return
	}

	if !pv.GreaterThan(v) {
		res.add(Finding{
			Rule:    RuleHeading,
			Version: rel.Version,
			Message: fmt.Sprintf("version %q is not older than %q above it", rel.Version, prev.Version),
		})
	}
}

func lintSections(res *Result, rel *changelog.Release, cfg *relconfig.Config) {
	seenRubric := map[string]bool{}
	seenPR := map[string]map[int]bool{}

	for _, sec := range rel.Sections {
		if cfg.RubricByName(sec.Rubric) == nil {
			res.add(Finding{
				Rule:    RuleRubricDeclared,
				Version: rel.Version,
				Rubric:  sec.Rubric,
				Message: fmt.Sprintf("rubric %q is not declared", sec.Rubric),
			})
		}

		if seenRubric[sec.Rubric] {
			res.add(Finding{
				Rule:    RuleRubricDeclared,
				Version: rel.Version,
				Rubric:  sec.Rubric,
				Message: fmt.Sprintf("rubric %q appears more than once", sec.Rubric),
			})
		}

		seenRubric[sec.Rubric] = true

		if seenPR[sec.Rubric] == nil {
			seenPR[sec.Rubric] = map[int]bool{}
		}

		for _, e := range sec.Entries {
			lintEntry(res, rel, sec, e)

			for _, pr := range e.PRs() {
				if seenPR[sec.Rubric][pr] {
					res.add(Finding{
						Rule:    RuleDuplicatePR,
						Version: rel.Version,
						Rubric:  sec.Rubric,
						Message: fmt.Sprintf("pull request %d referenced by more than one entry", pr),
					})
				}

				seenPR[sec.Rubric][pr] = true
			}
		}
	}
}

// lintEntry enforces the canonical trailer: at least one {pr} reference,
// then at least one {user} reference, nothing interleaved.
func lintEntry(res *Result, rel *changelog.Release, sec *changelog.Section, e *changelog.Entry) {
	add := func(msg string) {
		res.add(Finding{
			Rule:    RuleEntryRefs,
			Version: rel.Version,
			Rubric:  sec.Rubric,
			Message: msg,
		})
	}

	var prs, users int

	sawUser := false
	ordered := true

	for _, r := range e.Refs {
		switch r.Kind {
		case changelog.RefPR:
			prs++

			if sawUser {
				ordered = false
			}

			if _, err := strconv.Atoi(r.Value); err != nil {
				add(fmt.Sprintf("entry %q: pull request reference %q is not a number", truncate(e.Text), r.Value))
			}

		case changelog.RefUser:
			users++
			sawUser = true
		}
	}

	switch {
	case prs == 0:
		add(fmt.Sprintf("entry %q has no pull request reference", truncate(e.Text)))
	case users == 0:
		add(fmt.Sprintf("entry %q has no author reference", truncate(e.Text)))
	case !ordered:
		add(fmt.Sprintf("entry %q: author references must follow pull request references", truncate(e.Text)))
	}
}

// Fragments lints pending fragments against the configured rubric set.
func Fragments(frs []*fragment.Fragment, cfg *relconfig.Config) *Result {
	res := &Result{}

	for _, fr := range frs {
		if cfg.RubricBySlug(fr.Rubric) == nil {
			res.add(Finding{
				Rule:    RuleFragment,
				Rubric:  fr.Rubric,
				Message: fmt.Sprintf("fragment %s: rubric slug %q is not declared", fragment.Name(fr.PR, fr.Rubric), fr.Rubric),
			})
		}
	}

	return res
}

func truncate(s string) string {
	const limit = 40

	if len(s) <= limit {
		return s
	}

	return s[:limit] + "..."
}
