package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/relnote/relnote/pkg/log"
	"github.com/relnote/relnote/pkg/relconfig"
)

var ErrLogHandlerFailed = errors.New("log handler failed")

func NewRootCmd(name, shortDesc, longDesc string) *cobra.Command {
	args := NewRootArgs()

	cmd := &cobra.Command{
		Use:           name,
		Short:         shortDesc,
		Long:          longDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       GetVersionString(),
	}

	cmd.PersistentFlags().StringVar(args.logLevel, "log_level", "warn", "Set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(args.logFormat, "log_format", "text", "Set the log format (text, json)")
	cmd.PersistentFlags().StringVarP(args.path, "path", "p", ".", "Project directory")

	must(cmd.MarkPersistentFlagDirname("path"))

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		h, err := log.CreateHandler(
			cc.ErrOrStderr(),
			args.GetLogLevel(),
			args.GetLogFormat(),
		)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrLogHandlerFailed, err)
		}

		slog.SetDefault(slog.New(h))

		slog.Debug("ready to go")

		return nil
	}

	cmd.AddCommand(NewVersionCmd())
	cmd.AddCommand(NewInitCmd(args))
	cmd.AddCommand(NewAddCmd(args))
	cmd.AddCommand(NewCheckCmd(args))
	cmd.AddCommand(NewBuildCmd(args))
	cmd.AddCommand(NewPreviewCmd(args))
	cmd.AddCommand(NewHistoryCmd(args))
	cmd.AddCommand(NewArchiveCmd(args))
	cmd.AddCommand(NewPublishCmd(args))
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}

// findConfig loads the project configuration for the path flag.
func findConfig(args *RootArgs) (*relconfig.Config, error) {
	cfg, err := relconfig.Find(args.GetPath())
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	return cfg, nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
