package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relnote/relnote/pkg/catalog"
)

var ErrHistoryFailed = errors.New("history failed")

// NewHistoryCmd returns the history command group, which queries the
// local release catalog.
func NewHistoryCmd(args *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query the local release catalog",
	}

	cmd.AddCommand(NewHistoryListCmd(args))
	cmd.AddCommand(NewHistorySearchCmd(args))

	return cmd
}

func NewHistoryListCmd(args *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded releases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCatalog(args)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrHistoryFailed, err)
			}
			defer store.Close() //nolint:errcheck // Best effort on shutdown.

			releases, err := store.Releases(cmd.Context())
			if err != nil {
				return fmt.Errorf("%w: %w", ErrHistoryFailed, err)
			}

			for _, rel := range releases {
				cmd.Printf("%s\t%s\t%d entries\n", rel.Version, rel.Date, rel.EntryCount)
			}

			return nil
		},
		SilenceUsage: true,
	}
}

func NewHistorySearchCmd(args *RootArgs) *cobra.Command {
	author := new(string)
	pr := new(int)
	text := new(string)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search recorded entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if *author == "" && *pr == 0 && *text == "" {
				return fmt.Errorf("%w: at least one of --author, --pr, --text is required", ErrHistoryFailed)
			}

			store, err := openCatalog(args)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrHistoryFailed, err)
			}
			defer store.Close() //nolint:errcheck // Best effort on shutdown.

			entries, err := store.SearchEntries(cmd.Context(), catalog.Query{
				Author: *author,
				PR:     *pr,
				Text:   *text,
			})
			if err != nil {
				return fmt.Errorf("%w: %w", ErrHistoryFailed, err)
			}

			for _, e := range entries {
				cmd.Printf("%s\t%s\t%s (%s)\n",
					e.Version, e.Rubric, e.Text, strings.Join(e.Authors, ", "))
			}

			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(author, "author", "a", "", "Exact author github handle")
	cmd.Flags().IntVar(pr, "pr", 0, "Pull request number")
	cmd.Flags().StringVarP(text, "text", "t", "", "Entry text substring")

	return cmd
}

func openCatalog(args *RootArgs) (*catalog.Store, error) {
	cfg, err := findConfig(args)
	if err != nil {
		return nil, err
	}

	return catalog.Open(filepath.Join(cfg.Root(), catalog.FileName))
}
