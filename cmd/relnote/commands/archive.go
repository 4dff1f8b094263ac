package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relnote/relnote/pkg/archive"
)

var ErrArchiveFailed = errors.New("archive failed")

// NewArchiveCmd returns the archive command group, which moves old
// release sections into compressed bundles.
func NewArchiveCmd(args *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Move old release sections into the archive",
	}

	cmd.AddCommand(NewArchivePruneCmd(args))
	cmd.AddCommand(NewArchiveListCmd(args))
	cmd.AddCommand(NewArchiveCatCmd(args))

	return cmd
}

func NewArchivePruneCmd(args *RootArgs) *cobra.Command {
	keep := new(int)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Bundle releases past the keep count",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := findConfig(args)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrArchiveFailed, err)
			}

			bundled, err := archive.Prune(cfg, *keep)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrArchiveFailed, err)
			}

			if len(bundled) == 0 {
				cmd.Println("Nothing to archive.")

				return nil
			}

			for _, b := range bundled {
				cmd.Printf("Archived %s to %s.\n", b.Version, b.Path)
			}

			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().IntVarP(keep, "keep_releases", "k", 0, "Releases to keep in the changelog (config default if unset)")

	return cmd
}

func NewArchiveListCmd(args *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived releases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := findConfig(args)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrArchiveFailed, err)
			}

			versions, err := archive.List(cfg.ArchivePath())
			if err != nil {
				return fmt.Errorf("%w: %w", ErrArchiveFailed, err)
			}

			for _, v := range versions {
				cmd.Println(v)
			}

			return nil
		},
		SilenceUsage: true,
	}
}

func NewArchiveCatCmd(args *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <version>",
		Short: "Print one archived release",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			cfg, err := findConfig(args)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrArchiveFailed, err)
			}

			if err := archive.Extract(cfg.ArchivePath(), cmdArgs[0], cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("%w: %w", ErrArchiveFailed, err)
			}

			return nil
		},
		SilenceUsage: true,
	}
}
