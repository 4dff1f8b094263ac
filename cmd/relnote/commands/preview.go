package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relnote/relnote/pkg/changelog"
	"github.com/relnote/relnote/pkg/release"
)

var ErrPreviewFailed = errors.New("preview failed")

// NewPreviewCmd returns the preview command, which renders the would-be
// next release to stdout without touching any file.
func NewPreviewCmd(args *RootArgs) *cobra.Command {
	version := new(string)
	date := new(string)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the next release without building it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := findConfig(args)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrPreviewFailed, err)
			}

			b := release.NewBuilder(cfg)

			rel, err := b.Build(cmd.Context(), release.Options{
				Version: *version,
				Date:    *date,
				DryRun:  true,
			})
			if err != nil {
				return fmt.Errorf("%w: %w", ErrPreviewFailed, err)
			}

			if err := changelog.RenderRelease(cmd.OutOrStdout(), rel); err != nil {
				return fmt.Errorf("%w: %w", ErrPreviewFailed, err)
			}

			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(version, "version", "v", "", "Release version (computed from rubric bumps if unset)")
	cmd.Flags().StringVarP(date, "date", "d", "", "Release date (today if unset)")

	return cmd
}
