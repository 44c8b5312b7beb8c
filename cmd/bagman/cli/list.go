package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"bagman/internal/catalog"

	"github.com/spf13/cobra"
)

// NewListCommand returns the "list" command: print the catalog in its
// stored (sorted) order.
func NewListCommand(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all catalogued recordings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := resolve(cmd, logger)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer env.Close(ctx)

			docs, err := env.orch.GetAll(ctx)
			if err != nil {
				return err
			}

			if integrity, err := env.orch.CheckIntegrity(ctx); err != nil {
				return err
			} else if integrity != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", integrity)
			}

			format, _ := cmd.Flags().GetString("output")
			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(docs)
			case "table":
				printTable(cmd, docs)
				return nil
			default:
				return fmt.Errorf("unknown output format %q", format)
			}
		},
	}
	cmd.Flags().StringP("output", "o", "table", "output format: table or json")
	return cmd
}

func printTable(cmd *cobra.Command, docs []catalog.Document) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTART\tDURATION\tSIZE\tFILES\tTOPICS")
	for _, doc := range docs {
		name, _ := doc["name"].(string)
		size := int64(floatField(doc, "size"))
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
			name,
			formatTime(floatField(doc, "start_time")),
			formatDuration(floatField(doc, "duration")),
			formatSize(size),
			len(listField(doc, "files")),
			len(listField(doc, "topics")),
		)
	}
	w.Flush()
}
