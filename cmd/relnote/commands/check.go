package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/relnote/relnote/pkg/changelog"
	"github.com/relnote/relnote/pkg/fragment"
	"github.com/relnote/relnote/pkg/lint"
	"github.com/relnote/relnote/pkg/relconfig"
)

var ErrCheckFailed = errors.New("check failed")

// NewCheckCmd returns the check command, which lints the changelog and
// the pending fragments.
func NewCheckCmd(args *RootArgs) *cobra.Command {
	noColor := new(bool)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Lint the changelog and pending fragments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := findConfig(args)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCheckFailed, err)
			}

			cl, err := loadChangelog(cfg)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCheckFailed, err)
			}

			frs, err := fragment.Load(cmd.Context(), cfg.FragmentsPath())
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCheckFailed, err)
			}

			color := !*noColor && isatty.IsTerminal(os.Stdout.Fd())

			res := lint.Changelog(cl, cfg)
			if err := res.WriteReport(cmd.OutOrStdout(), color); err != nil {
				return fmt.Errorf("%w: %w", ErrCheckFailed, err)
			}

			frRes := lint.Fragments(frs, cfg)
			if err := frRes.WriteReport(cmd.OutOrStdout(), color); err != nil {
				return fmt.Errorf("%w: %w", ErrCheckFailed, err)
			}

			if !res.OK() || !frRes.OK() {
				return ErrCheckFailed
			}

			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().BoolVar(noColor, "no_color", false, "Disable colored output")

	return cmd
}

func loadChangelog(cfg *relconfig.Config) (*changelog.Changelog, error) {
	f, err := os.Open(cfg.ChangelogPath())
	if err != nil {
		return nil, fmt.Errorf("open changelog: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file.

	return changelog.Parse(f)
}
