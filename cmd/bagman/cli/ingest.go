package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bagman/internal/catalog"
	"bagman/internal/orchestrator"

	"github.com/spf13/cobra"
)

// NewAddCommand returns the "add" command: catalog a recording that exists
// in storage, or update its existing record after confirmation.
func NewAddCommand(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <recording-name>",
		Short: "Add a recording to the catalog or update an existing entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args[0], orchestrator.ModeAdd, logger)
		},
	}
	addIngestFlags(cmd)
	return cmd
}

// NewUpdateCommand returns the "update" command: re-ingest a recording that
// is already catalogued.
func NewUpdateCommand(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <recording-name>",
		Short: "Re-ingest a recording that is already in the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args[0], orchestrator.ModeUpdate, logger)
		},
	}
	addIngestFlags(cmd)
	return cmd
}

func addIngestFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("use-existing-metadata", false, "use the recording's metadata file instead of rescanning")
	cmd.Flags().Bool("no-store-metadata", false, "do not write the generated metadata file")
	cmd.Flags().BoolP("yes", "y", false, "answer prompts with their defaults")
}

func runIngest(cmd *cobra.Command, name string, mode orchestrator.Mode, logger *slog.Logger) error {
	env, err := resolve(cmd, logger)
	if err != nil {
		return err
	}
	defer env.Close(cmd.Context())
	return ingestWithEnv(cmd, env, name, mode)
}

// ingestWithEnv runs the ingest workflow against already-wired components;
// upload reuses it after copying a recording into storage.
func ingestWithEnv(cmd *cobra.Command, env *environment, name string, mode orchestrator.Mode) error {
	ctx := cmd.Context()
	useExisting, _ := cmd.Flags().GetBool("use-existing-metadata")
	noStore, _ := cmd.Flags().GetBool("no-store-metadata")

	req := orchestrator.IngestRequest{
		Name:                    name,
		Mode:                    mode,
		UseExistingMetadataFile: useExisting,
		StoreMetadataFile:       !noStore,
	}

	if mode == orchestrator.ModeAdd {
		exists, err := env.orch.Contains(ctx, name)
		if err != nil {
			return err
		}
		if exists {
			if !confirm(cmd, "Recording already exists in the catalog. Override it?", true) {
				fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled.")
				return nil
			}
			req.Override = true
		}

		if !useExisting {
			metadataFile := filepath.Join(env.root.RecordingPath(name), env.cfg.MetadataFile)
			if _, err := os.Stat(metadataFile); err == nil {
				req.UseExistingMetadataFile = !confirm(cmd, "Metadata file already exists. Regenerate it?", true)
			}
		}
	}

	doc, err := env.orch.Ingest(ctx, req)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) && mode == orchestrator.ModeAdd {
			fmt.Fprintln(cmd.OutOrStdout(), "Recording does not exist in recordings storage. Upload it before adding to the catalog.")
			return nil
		}
		return err
	}
	if doc == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Recording has no log files; nothing catalogued.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Catalogued %s (%s, %v files)\n",
		name, formatDuration(floatField(doc, "duration")), len(listField(doc, "files")))
	return nil
}

func floatField(doc catalog.Document, key string) float64 {
	if f, ok := doc[key].(float64); ok {
		return f
	}
	return 0
}

func listField(doc catalog.Document, key string) []any {
	if l, ok := doc[key].([]any); ok {
		return l
	}
	return nil
}
