package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewMetadataCommand returns the "metadata" command: generate (and by
// default persist) a recording's metadata file without touching the catalog.
func NewMetadataCommand(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata <recording-name>",
		Short: "Generate metadata for a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := resolve(cmd, logger)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer env.Close(ctx)

			usePath, _ := cmd.Flags().GetBool("path")
			noStore, _ := cmd.Flags().GetBool("no-store")

			recordingPath := args[0]
			if !usePath {
				recordingPath = env.root.RecordingPath(args[0])
			}

			meta, err := env.orch.GenerateMetadata(ctx, recordingPath, !noStore)
			if err != nil {
				return err
			}
			if meta == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Recording has no log files; no metadata generated.")
				return nil
			}

			out, err := yaml.Marshal(meta)
			if err != nil {
				return fmt.Errorf("render metadata: %w", err)
			}
			cmd.OutOrStdout().Write(out)
			return nil
		},
	}
	cmd.Flags().BoolP("path", "p", false, "treat the argument as a local path instead of a recording name in storage")
	cmd.Flags().Bool("no-store", false, "print the metadata without writing the metadata file")
	return cmd
}
