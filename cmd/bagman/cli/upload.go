package cli

import (
	"fmt"
	"log/slog"

	"bagman/internal/orchestrator"
	"bagman/internal/storage"

	"github.com/spf13/cobra"
)

// NewUploadCommand returns the "upload" command: copy (or move) a local
// recording into the storage root, optionally cataloging it right away.
func NewUploadCommand(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <local-recording-path>",
		Short: "Upload a recording to storage (optional: add to the catalog)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := resolve(cmd, logger)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer env.Close(ctx)

			src := args[0]
			move, _ := cmd.Flags().GetBool("move")
			add, _ := cmd.Flags().GetBool("add")

			name, err := storage.RecordingName(src)
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}

			override := false
			if env.root.Exists(name) {
				if !confirm(cmd, "Recording already exists in storage. Override it?", true) {
					fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled.")
					return nil
				}
				override = true
			}

			name, err = env.root.Upload(src, move, override)
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", name)

			if add {
				return ingestWithEnv(cmd, env, name, orchestrator.ModeAdd)
			}
			return nil
		},
	}
	cmd.Flags().BoolP("move", "m", false, "move instead of copy the recording")
	cmd.Flags().BoolP("add", "a", false, "add the recording to the catalog after upload")
	cmd.Flags().BoolP("yes", "y", false, "answer prompts with their defaults")
	return cmd
}
