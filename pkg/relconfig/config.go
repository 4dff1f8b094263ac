package relconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/relnote/relnote/pkg/paths"
)

// FileName is the name of the project configuration file.
const FileName = ".relnote.yaml"

// Bump weights a rubric carries for computing the next version.
const (
	BumpNone  = "none"
	BumpPatch = "patch"
	BumpMinor = "minor"
	BumpMajor = "major"
)

var (
	ErrConfigNotFound = errors.New("config not found")
	ErrInvalidConfig  = errors.New("invalid config")
)

// Rubric declares one changelog category. Either Name or Slug may be
// omitted; the other is derived.
type Rubric struct {
	// Name is the display name used in rubric headings, e.g. "Bugfix".
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Slug is the identifier used in fragment file names, e.g. "bugfix".
	Slug string `json:"slug,omitempty" yaml:"slug,omitempty"`
	// Bump is the semver weight of the rubric: none, patch, minor or major.
	Bump string `json:"bump,omitempty" yaml:"bump,omitempty" jsonschema:"enum=none,enum=patch,enum=minor,enum=major"`
}

// ArchiveConfig controls moving old release sections out of the changelog.
type ArchiveConfig struct {
	// Dir is the directory holding archive bundles.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
	// KeepReleases is the number of newest releases kept in the changelog.
	KeepReleases int `json:"keep_releases,omitempty" yaml:"keep_releases,omitempty" jsonschema:"minimum=1"`
}

// PublishConfig points at the S3-compatible bucket release notes are
// published to. Credentials come from the named environment variables.
type PublishConfig struct {
	Endpoint     string `json:"endpoint"                yaml:"endpoint"`
	Bucket       string `json:"bucket"                  yaml:"bucket"`
	Prefix       string `json:"prefix,omitempty"        yaml:"prefix,omitempty"`
	AccessKeyEnv string `json:"access_key_env,omitempty" yaml:"access_key_env,omitempty"`
	SecretKeyEnv string `json:"secret_key_env,omitempty" yaml:"secret_key_env,omitempty"`
	UseSSL       bool   `json:"use_ssl,omitempty"       yaml:"use_ssl,omitempty"`
}

// Config is the project configuration.
type Config struct {
	// Changelog is the path of the changelog document, relative to the
	// project root.
	Changelog string `json:"changelog,omitempty" yaml:"changelog,omitempty"`
	// Fragments is the news fragment directory, relative to the project
	// root.
	Fragments string `json:"fragments,omitempty" yaml:"fragments,omitempty"`
	// PRURL is a template for pull request links, with %d for the number.
	PRURL string `json:"pr_url,omitempty" yaml:"pr_url,omitempty"`
	// UserURL is a template for author links, with %s for the handle.
	UserURL string `json:"user_url,omitempty" yaml:"user_url,omitempty"`

	Rubrics []Rubric       `json:"rubrics,omitempty" yaml:"rubrics,omitempty"`
	Archive ArchiveConfig  `json:"archive,omitempty" yaml:"archive,omitempty"`
	Publish *PublishConfig `json:"publish,omitempty" yaml:"publish,omitempty"`

	root string
}

// DefaultConfig returns the configuration used when `.relnote.yaml` holds
// no overrides. The default rubric set carries the conventional five
// categories.
func DefaultConfig() *Config {
	return &Config{
		Changelog: "CHANGELOG.md",
		Fragments: "news",
		Rubrics: []Rubric{
			{Name: "Breaking", Slug: "breaking", Bump: BumpMajor},
			{Name: "Feature", Slug: "feature", Bump: BumpMinor},
			{Name: "Bugfix", Slug: "bugfix", Bump: BumpPatch},
			{Name: "Documentation", Slug: "documentation", Bump: BumpNone},
			{Name: "Performance", Slug: "performance", Bump: BumpPatch},
		},
		Archive: ArchiveConfig{
			Dir:          "docs/changelog-archive",
			KeepReleases: 10,
		},
	}
}

// Load reads, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // The config path is user-provided by design.
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file.

	c := &Config{}

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	c.root = filepath.Dir(path)
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// Find locates the project root for dir and loads its configuration.
func Find(dir string) (*Config, error) {
	root, err := paths.FindProjectRoot(dir, FileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigNotFound, err)
	}

	return Load(filepath.Join(root, FileName))
}

// Root returns the project root directory the config was loaded from.
func (c *Config) Root() string {
	return c.root
}

// ChangelogPath returns the absolute changelog path.
func (c *Config) ChangelogPath() string {
	return filepath.Join(c.root, c.Changelog)
}

// FragmentsPath returns the absolute fragment directory path.
func (c *Config) FragmentsPath() string {
	return filepath.Join(c.root, c.Fragments)
}

// ArchivePath returns the absolute archive directory path.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.root, c.Archive.Dir)
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()

	if c.Changelog == "" {
		c.Changelog = d.Changelog
	}

	if c.Fragments == "" {
		c.Fragments = d.Fragments
	}

	if len(c.Rubrics) == 0 {
		c.Rubrics = d.Rubrics
	}

	if c.Archive.Dir == "" {
		c.Archive.Dir = d.Archive.Dir
	}

	if c.Archive.KeepReleases == 0 {
		c.Archive.KeepReleases = d.Archive.KeepReleases
	}

	caser := cases.Title(language.English)

	for i := range c.Rubrics {
		r := &c.Rubrics[i]

		if r.Slug == "" && r.Name != "" {
			r.Slug = strcase.ToSnake(r.Name)
		}

		if r.Name == "" && r.Slug != "" {
			r.Name = caser.String(strings.ReplaceAll(r.Slug, "_", " "))
		}

		if r.Bump == "" {
			r.Bump = BumpNone
		}
	}
}

// Validate checks rubric declarations for consistency.
func (c *Config) Validate() error {
	seenName := map[string]bool{}
	seenSlug := map[string]bool{}

	for _, r := range c.Rubrics {
		if r.Name == "" || r.Slug == "" {
			return fmt.Errorf("%w: rubric needs a name or slug", ErrInvalidConfig)
		}

		if seenName[r.Name] {
			return fmt.Errorf("%w: duplicate rubric name %q", ErrInvalidConfig, r.Name)
		}

		if seenSlug[r.Slug] {
			return fmt.Errorf("%w: duplicate rubric slug %q", ErrInvalidConfig, r.Slug)
		}

		seenName[r.Name] = true
		seenSlug[r.Slug] = true

		switch r.Bump {
		case BumpNone, BumpPatch, BumpMinor, BumpMajor:
		default:
			return fmt.Errorf("%w: rubric %q: unknown bump %q", ErrInvalidConfig, r.Name, r.Bump)
		}
	}

	if c.Publish != nil {
		if c.Publish.Endpoint == "" || c.Publish.Bucket == "" {
			return fmt.Errorf("%w: publish needs an endpoint and a bucket", ErrInvalidConfig)
		}
	}

	return nil
}

// RubricBySlug returns the declared rubric with the given slug, or nil.
func (c *Config) RubricBySlug(slug string) *Rubric {
	for i := range c.Rubrics {
		if c.Rubrics[i].Slug == slug {
			return &c.Rubrics[i]
		}
	}

	return nil
}

// RubricByName returns the declared rubric with the given display name, or
// nil.
func (c *Config) RubricByName(name string) *Rubric {
	for i := range c.Rubrics {
		if c.Rubrics[i].Name == name {
			return &c.Rubrics[i]
		}
	}

	return nil
}

// Write marshals the configuration to path, used by `relnote init`.
func (c *Config) Write(path string) error {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
