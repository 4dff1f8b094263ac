package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/relnote/relnote/pkg/catalog"
	"github.com/relnote/relnote/pkg/changelog"
	"github.com/relnote/relnote/pkg/release"
	"github.com/relnote/relnote/pkg/reltui"
)

var ErrBuildFailed = errors.New("build failed")

// NewBuildCmd returns the build command, which assembles the pending
// fragments into a new release section.
func NewBuildCmd(args *RootArgs) *cobra.Command {
	version := new(string)
	date := new(string)
	dryRun := new(bool)
	keep := new(bool)
	quiet := new(bool)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble fragments into a new release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := findConfig(args)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrBuildFailed, err)
			}

			opts := release.Options{
				Version: *version,
				Date:    *date,
				DryRun:  *dryRun,
				Keep:    *keep,
			}

			builderOpts := []release.BuilderOpt{}

			if !*dryRun {
				store, err := catalog.Open(filepath.Join(cfg.Root(), catalog.FileName))
				if err != nil {
					return fmt.Errorf("%w: %w", ErrBuildFailed, err)
				}
				defer store.Close() //nolint:errcheck // Best effort on shutdown.

				builderOpts = append(builderOpts, release.WithRecorder(store))
			}

			b := release.NewBuilder(cfg, builderOpts...)

			var rel *changelog.Release

			if *quiet || !isatty.IsTerminal(os.Stdout.Fd()) {
				rel, err = b.Build(cmd.Context(), opts)
			} else {
				var tui *reltui.BuildTUI

				tui, err = reltui.NewBuildTUI(cmd.OutOrStdout(), args.GetLogLevel(), b)
				if err != nil {
					return fmt.Errorf("%w: %w", ErrBuildFailed, err)
				}

				rel, err = tui.Build(cmd.Context(), opts)
			}

			if err != nil {
				return fmt.Errorf("%w: %w", ErrBuildFailed, err)
			}

			if *dryRun {
				cmd.Printf("Would build release %s with %d entries.\n", rel.Version, rel.EntryCount())

				return nil
			}

			cmd.Printf("Built release %s with %d entries.\n", rel.Version, rel.EntryCount())

			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(version, "version", "v", "", "Release version (computed from rubric bumps if unset)")
	cmd.Flags().StringVarP(date, "date", "d", "", "Release date (today if unset)")
	cmd.Flags().BoolVar(dryRun, "dry_run", false, "Plan the release without touching any file")
	cmd.Flags().BoolVarP(keep, "keep", "k", false, "Leave consumed fragment files in place")
	cmd.Flags().BoolVarP(quiet, "quiet", "q", false, "Run in quiet mode")

	return cmd
}
