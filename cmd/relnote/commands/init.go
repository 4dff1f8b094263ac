package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/relnote/relnote/pkg/relconfig"
)

var ErrInitFailed = errors.New("init failed")

const fragmentsReadme = `Put one Markdown fragment per pull request in this directory, named
<pr>.<rubric>.md. The body is the changelog entry; an optional trailer
line ` + "`author: <github-handle>`" + ` credits the author.

Fragments are folded into CHANGELOG.md by ` + "`relnote build`" + ` and removed
afterwards.
`

// NewInitCmd returns the init command, which scaffolds a project.
func NewInitCmd(args *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a relnote project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			root := args.GetPath()
			cfgPath := filepath.Join(root, relconfig.FileName)

			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("%w: %s already exists", ErrInitFailed, cfgPath)
			}

			cfg := relconfig.DefaultConfig()
			if err := cfg.Write(cfgPath); err != nil {
				return fmt.Errorf("%w: %w", ErrInitFailed, err)
			}

			fragmentsDir := filepath.Join(root, cfg.Fragments)
			if err := os.MkdirAll(fragmentsDir, 0o755); err != nil {
				return fmt.Errorf("%w: %w", ErrInitFailed, err)
			}

			readmePath := filepath.Join(fragmentsDir, "README.md")
			if err := os.WriteFile(readmePath, []byte(fragmentsReadme), 0o644); err != nil { //nolint:gosec // Documentation file.
				return fmt.Errorf("%w: %w", ErrInitFailed, err)
			}

			changelogPath := filepath.Join(root, cfg.Changelog)
			if _, err := os.Stat(changelogPath); errors.Is(err, os.ErrNotExist) {
				if err := os.WriteFile(changelogPath, []byte("# Changelog\n"), 0o644); err != nil { //nolint:gosec // The changelog is a public document.
					return fmt.Errorf("%w: %w", ErrInitFailed, err)
				}
			}

			cmd.Printf("Initialized relnote project in %s.\n", root)

			return nil
		},
		SilenceUsage: true,
	}
}
