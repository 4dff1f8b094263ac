package release

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/relnote/relnote/pkg/changelog"
	"github.com/relnote/relnote/pkg/fragment"
	"github.com/relnote/relnote/pkg/relconfig"
	"github.com/relnote/relnote/pkg/relerrors"
)

var (
	ErrNoFragments = errors.New("no fragments to build")
	ErrBuildFailed = errors.New("build failed")
)

// Recorder persists a published release, e.g. into the local catalog.
// LatestVersion guards against building a version the catalog already
// records a newer release for.
type Recorder interface {
	RecordRelease(ctx context.Context, rel *changelog.Release) error
	LatestVersion(ctx context.Context) (string, error)
}

// Builder assembles fragments into a release and maintains the changelog
// file.
type Builder struct {
	cfg      *relconfig.Config
	recorder Recorder
	now      func() time.Time
	subs     []func(any)
	mu       sync.RWMutex
}

type BuilderOpt func(*Builder)

// WithRecorder registers a catalog recorder invoked after a successful
// build.
func WithRecorder(r Recorder) BuilderOpt {
	return func(b *Builder) {
		b.recorder = r
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) BuilderOpt {
	return func(b *Builder) {
		b.now = now
	}
}

func NewBuilder(cfg *relconfig.Config, opts ...BuilderOpt) *Builder {
	b := &Builder{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Subscribe registers a subscriber for build events.
func (b *Builder) Subscribe(f func(any)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = append(b.subs, f)
}

func (b *Builder) broadcastEvent(evt any) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, f := range b.subs {
		f(evt)
	}
}

// Options control one build run.
type Options struct {
	// Version overrides the computed next version.
	Version string
	// Date overrides today's date.
	Date string
	// DryRun plans the release without touching any file.
	DryRun bool
	// Keep leaves consumed fragment files in place.
	Keep bool
}

// Build loads the pending fragments, assembles the next release, inserts it
// into the changelog, and removes the consumed fragments.
func (b *Builder) Build(ctx context.Context, opts Options) (*changelog.Release, error) {
	rel, err := b.build(ctx, opts)
	if err != nil {
		b.broadcastEvent(EventDone{Err: err})

		return nil, err
	}

	b.broadcastEvent(EventDone{Version: rel.Version})

	return rel, nil
}

func (b *Builder) build(ctx context.Context, opts Options) (*changelog.Release, error) {
	logger := slog.With(slog.String("cmd", "build"))

	frs, err := fragment.Load(ctx, b.cfg.FragmentsPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	if len(frs) == 0 {
		return nil, ErrNoFragments
	}

	b.broadcastEvent(EventSetFragmentTotal(len(frs)))

	cl, err := b.loadChangelog()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	version := opts.Version
	if version == "" {
		version, err = b.NextVersion(cl, frs)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
		}
	}

	date := opts.Date
	if date == "" {
		date = b.now().Format(changelog.DateLayout)
	}

	if b.recorder != nil {
		if err := b.checkRecorded(ctx, version); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
		}
	}

	rel, err := b.Plan(frs, version, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	if err := cl.Insert(rel); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	logger.Info("assembled release",
		slog.String("version", rel.Version),
		slog.Int("entries", rel.EntryCount()),
	)

	if opts.DryRun {
		return rel, nil
	}

	if err := b.writeChangelog(cl); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	if !opts.Keep {
		for _, fr := range frs {
			if err := os.Remove(fr.Path); err != nil {
				return nil, fmt.Errorf("%w: remove fragment: %w", ErrBuildFailed, err)
			}
		}
	}

	if b.recorder != nil {
		if err := b.recorder.RecordRelease(ctx, rel); err != nil {
			return nil, fmt.Errorf("%w: record release: %w", ErrBuildFailed, err)
		}
	}

	return rel, nil
}

// Plan groups fragments into a release section without touching any file.
// Sections follow the configured rubric order; entries keep their PR order.
func (b *Builder) Plan(frs []*fragment.Fragment, version, date string) (*changelog.Release, error) {
	byRubric := map[string][]*changelog.Entry{}

	for _, fr := range frs {
		rubric := b.cfg.RubricBySlug(fr.Rubric)
		if rubric == nil {
			return nil, fmt.Errorf("%w: %q in fragment %s", relerrors.ErrUnknownRubric, fr.Rubric, fragment.Name(fr.PR, fr.Rubric))
		}

		entry := newEntry(fr)
		byRubric[rubric.Name] = append(byRubric[rubric.Name], entry)

		b.broadcastEvent(EventAddedFragment{Name: fragment.Name(fr.PR, fr.Rubric)})
	}

	rel := &changelog.Release{Version: version, Date: date}

	for _, rubric := range b.cfg.Rubrics {
		entries := byRubric[rubric.Name]
		if len(entries) == 0 {
			continue
		}

		rel.Sections = append(rel.Sections, &changelog.Section{
			Rubric:  rubric.Name,
			Entries: entries,
		})
	}

	return rel, nil
}

// newEntry converts a fragment into a changelog entry, merging markers
// already present in the fragment text with the PR number from the file
// name and the authors from the trailer. PR references always precede
// author references.
func newEntry(fr *fragment.Fragment) *changelog.Entry {
	e := changelog.ParseEntry(fr.Text)

	prs := e.PRs()
	if !slices.Contains(prs, fr.PR) {
		prs = append(prs, fr.PR)
	}

	authors := e.Authors()
	for _, a := range fr.Authors {
		if !slices.Contains(authors, a) {
			authors = append(authors, a)
		}
	}

	refs := make([]changelog.Ref, 0, len(prs)+len(authors))
	for _, pr := range prs {
		refs = append(refs, changelog.Ref{Kind: changelog.RefPR, Value: strconv.Itoa(pr)})
	}

	for _, a := range authors {
		refs = append(refs, changelog.Ref{Kind: changelog.RefUser, Value: a})
	}

	return &changelog.Entry{Text: e.Text, Refs: refs}
}

// NextVersion computes the version for the next release from the highest
// bump weight among the fragments' rubrics.
func (b *Builder) NextVersion(cl *changelog.Changelog, frs []*fragment.Fragment) (string, error) {
	latest := cl.Latest()
	if latest == nil {
		return "0.1.0", nil
	}

	v, err := changelog.ParseVersion(latest.Version)
	if err != nil {
		return "", err
	}

	var next semver.Version

	switch highestBump(b.cfg, frs) {
	case relconfig.BumpMajor:
		next = v.IncMajor()
	case relconfig.BumpMinor:
		next = v.IncMinor()
	default:
		next = v.IncPatch()
	}

	return next.String(), nil
}

func highestBump(cfg *relconfig.Config, frs []*fragment.Fragment) string {
	rank := map[string]int{
		relconfig.BumpNone:  0,
		relconfig.BumpPatch: 1,
		relconfig.BumpMinor: 2,
		relconfig.BumpMajor: 3,
	}

	highest := relconfig.BumpPatch

	for _, fr := range frs {
		rubric := cfg.RubricBySlug(fr.Rubric)
		if rubric == nil {
			continue
		}

		if rank[rubric.Bump] > rank[highest] {
			highest = rubric.Bump
		}
	}

	return highest
}

// checkRecorded rejects versions at or below the catalog's recorded
// latest. The changelog alone cannot catch this once old sections have
// been archived away.
func (b *Builder) checkRecorded(ctx context.Context, version string) error {
	latest, err := b.recorder.LatestVersion(ctx)
	if err != nil {
		return fmt.Errorf("catalog latest version: %w", err)
	}

	if latest == "" {
		return nil
	}

	v, err := changelog.ParseVersion(version)
	if err != nil {
		return err
	}

	lv, err := changelog.ParseVersion(latest)
	if err != nil {
		return fmt.Errorf("catalog latest version: %w", err)
	}

	if !v.GreaterThan(lv) {
		return fmt.Errorf("%w: %s is not newer than recorded %s",
			relerrors.ErrVersionRegression, version, latest)
	}

	return nil
}

func (b *Builder) loadChangelog() (*changelog.Changelog, error) {
	f, err := os.Open(b.cfg.ChangelogPath())
	if errors.Is(err, os.ErrNotExist) {
		return &changelog.Changelog{Preamble: "# Changelog"}, nil
	} else if err != nil {
		return nil, fmt.Errorf("open changelog: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file.

	return changelog.Parse(f)
}

func (b *Builder) writeChangelog(cl *changelog.Changelog) error {
	var buf strings.Builder
	if err := cl.Render(&buf); err != nil {
		return err
	}

	if err := os.WriteFile(b.cfg.ChangelogPath(), []byte(buf.String()), 0o644); err != nil { //nolint:gosec // The changelog is a public document.
		return fmt.Errorf("write changelog: %w", err)
	}

	return nil
}
