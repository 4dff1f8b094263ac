package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relnote/relnote/pkg/publish"
)

var ErrPublishFailed = errors.New("publish failed")

// NewPublishCmd returns the publish command, which uploads rendered
// release notes to the configured object storage.
func NewPublishCmd(args *RootArgs) *cobra.Command {
	version := new(string)
	latest := new(bool)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload release notes to object storage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := findConfig(args)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrPublishFailed, err)
			}

			if cfg.Publish == nil {
				return fmt.Errorf("%w: no publish configuration", ErrPublishFailed)
			}

			cl, err := loadChangelog(cfg)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrPublishFailed, err)
			}

			rel := cl.Latest()
			if *version != "" {
				rel = cl.Release(*version)
			}

			if rel == nil {
				return fmt.Errorf("%w: no such release in the changelog", ErrPublishFailed)
			}

			store, err := publish.NewMinioStore(cfg.Publish)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrPublishFailed, err)
			}

			p := publish.NewPublisher(store, cfg.Publish.Prefix)

			markLatest := *latest || rel == cl.Latest()
			if err := p.PublishRelease(cmd.Context(), rel, markLatest); err != nil {
				return fmt.Errorf("%w: %w", ErrPublishFailed, err)
			}

			cmd.Printf("Published %s.\n", rel.Version)

			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(version, "version", "v", "", "Release to publish (latest if unset)")
	cmd.Flags().BoolVar(latest, "latest", false, "Also replace latest.md")

	return cmd
}
