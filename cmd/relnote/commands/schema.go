package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relnote/relnote/pkg/relconfig"
)

var ErrSchemaFailed = errors.New("schema failed")

// NewSchemaCmd returns the schema command, which prints the JSON Schema
// for the project configuration.
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the configuration JSON Schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := relconfig.Schema()
			if err != nil {
				return fmt.Errorf("%w: %w", ErrSchemaFailed, err)
			}

			cmd.Println(string(data))

			return nil
		},
		SilenceUsage: true,
	}
}
