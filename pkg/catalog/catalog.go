package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // Pure Go SQLite driver.

	"github.com/relnote/relnote/pkg/changelog"
	"github.com/relnote/relnote/pkg/relerrors"
)

// FileName is the default catalog database file name, relative to the
// project root.
const FileName = ".relnote.db"

// Release is one published release as recorded in the catalog.
type Release struct {
	PublishedAt time.Time
	Version     string
	Date        string
	EntryCount  int
}

// Entry is one changelog entry as recorded in the catalog.
type Entry struct {
	ID      string
	Version string
	Rubric  string
	Text    string
	Authors []string
	PRs     []int
}

type releaseModel struct {
	bun.BaseModel `bun:"table:releases"`

	Version     string    `bun:"version,pk"`
	Date        string    `bun:"date,notnull"`
	PublishedAt time.Time `bun:"published_at,notnull"`
	EntryCount  int       `bun:"entry_count,notnull"`
}

type entryModel struct {
	bun.BaseModel `bun:"table:entries"`

	ID      string `bun:"id,pk"`
	Version string `bun:"version,notnull"`
	Rubric  string `bun:"rubric,notnull"`
	Text    string `bun:"text,notnull"`
	// PRs and Authors are stored comma-wrapped (",1189,") so exact LIKE
	// matches work without a join table.
	PRs     string `bun:"prs,notnull"`
	Authors string `bun:"authors,notnull"`
}

// Store is the SQLite-backed catalog.
type Store struct {
	db  *sql.DB
	bun *bun.DB
	now func() time.Time
}

// Open opens (and if needed initializes) the catalog database at path. Use
// ":memory:" for an ephemeral catalog.
func Open(path string) (*Store, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	s := &Store{
		db:  sqldb,
		bun: bun.NewDB(sqldb, sqlitedialect.New()),
		now: time.Now,
	}

	if err := s.init(context.Background()); err != nil {
		_ = sqldb.Close()

		return nil, err
	}

	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	for _, model := range []any{(*releaseModel)(nil), (*entryModel)(nil)} {
		if _, err := s.bun.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create catalog tables: %w", err)
		}
	}

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.bun.Close(); err != nil {
		return fmt.Errorf("close catalog: %w", err)
	}

	return nil
}

// RecordRelease stores a release with all of its entries. Recording the
// same version twice is an error.
func (s *Store) RecordRelease(ctx context.Context, rel *changelog.Release) error {
	if existing, err := s.release(ctx, rel.Version); err != nil {
		return err
	} else if existing != nil {
		return fmt.Errorf("%w: release %q already recorded", relerrors.ErrDuplicate, rel.Version)
	}

	tx, err := s.bun.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit.

	rm := &releaseModel{
		Version:     rel.Version,
		Date:        rel.Date,
		PublishedAt: s.now().UTC(),
		EntryCount:  rel.EntryCount(),
	}
	if _, err := tx.NewInsert().Model(rm).Exec(ctx); err != nil {
		return fmt.Errorf("insert release: %w", err)
	}

	for _, sec := range rel.Sections {
		for _, e := range sec.Entries {
			em := &entryModel{
				ID:      uuid.NewString(),
				Version: rel.Version,
				Rubric:  sec.Rubric,
				Text:    e.Text,
				PRs:     wrapInts(e.PRs()),
				Authors: wrapStrings(e.Authors()),
			}
			if _, err := tx.NewInsert().Model(em).Exec(ctx); err != nil {
				return fmt.Errorf("insert entry: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog transaction: %w", err)
	}

	return nil
}

func (s *Store) release(ctx context.Context, version string) (*releaseModel, error) {
	rm := &releaseModel{}

	err := s.bun.NewSelect().Model(rm).Where("version = ?", version).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("query release: %w", err)
	}

	return rm, nil
}

// LatestVersion returns the highest recorded version, or "" for an empty
// catalog. Versions are compared as semver, not lexically.
func (s *Store) LatestVersion(ctx context.Context) (string, error) {
	releases, err := s.Releases(ctx)
	if err != nil {
		return "", err
	}

	if len(releases) == 0 {
		return "", nil
	}

	return releases[0].Version, nil
}

// Releases lists all recorded releases, newest version first.
func (s *Store) Releases(ctx context.Context) ([]Release, error) {
	var ms []releaseModel

	if err := s.bun.NewSelect().Model(&ms).Scan(ctx); err != nil {
		return nil, fmt.Errorf("query releases: %w", err)
	}

	out := make([]Release, 0, len(ms))
	for _, m := range ms {
		out = append(out, Release{
			Version:     m.Version,
			Date:        m.Date,
			PublishedAt: m.PublishedAt,
			EntryCount:  m.EntryCount,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		vi, erri := changelog.ParseVersion(out[i].Version)
		vj, errj := changelog.ParseVersion(out[j].Version)

		if erri != nil || errj != nil {
			return out[i].Version > out[j].Version
		}

		return vi.GreaterThan(vj)
	})

	return out, nil
}

// Query filters entry searches. Zero fields are ignored.
type Query struct {
	Author string
	Text   string
	PR     int
}

// SearchEntries returns recorded entries matching all set filters.
func (s *Store) SearchEntries(ctx context.Context, q Query) ([]Entry, error) {
	var ms []entryModel

	sel := s.bun.NewSelect().Model(&ms).Order("version", "rubric")

	if q.Author != "" {
		sel = sel.Where("authors LIKE ?", "%,"+q.Author+",%")
	}

	if q.PR != 0 {
		sel = sel.Where("prs LIKE ?", "%,"+strconv.Itoa(q.PR)+",%")
	}

	if q.Text != "" {
		sel = sel.Where("text LIKE ?", "%"+q.Text+"%")
	}

	if err := sel.Scan(ctx); err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}

	out := make([]Entry, 0, len(ms))
	for _, m := range ms {
		out = append(out, Entry{
			ID:      m.ID,
			Version: m.Version,
			Rubric:  m.Rubric,
			Text:    m.Text,
			PRs:     unwrapInts(m.PRs),
			Authors: unwrapStrings(m.Authors),
		})
	}

	return out, nil
}

func wrapStrings(vals []string) string {
	if len(vals) == 0 {
		return ","
	}

	return "," + strings.Join(vals, ",") + ","
}

func wrapInts(vals []int) string {
	strs := make([]string, 0, len(vals))
	for _, v := range vals {
		strs = append(strs, strconv.Itoa(v))
	}

	return wrapStrings(strs)
}

func unwrapStrings(s string) []string {
	var out []string

	for v := range strings.SplitSeq(strings.Trim(s, ","), ",") {
		if v != "" {
			out = append(out, v)
		}
	}

	return out
}

func unwrapInts(s string) []int {
	var out []int

	for _, v := range unwrapStrings(s) {
		n, err := strconv.Atoi(v)
		if err == nil {
			out = append(out, n)
		}
	}

	return out
}
