package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// NewExistsCommand returns the "exists" command: report whether a recording
// is present in storage and in the catalog.
func NewExistsCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <recording-name>",
		Short: "Check if a recording exists in storage and in the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := resolve(cmd, logger)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer env.Close(ctx)

			name := args[0]
			inCatalog, err := env.orch.Contains(ctx, name)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recording exists in storage: %s\n", yesNo(env.root.Exists(name)))
			fmt.Fprintf(cmd.OutOrStdout(), "Recording exists in catalog: %s\n", yesNo(inCatalog))
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
