package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"bagman/internal/catalog"

	"github.com/spf13/cobra"
)

// NewRemoveCommand returns the "remove" command: delete a recording's
// catalog record. Storage is untouched.
func NewRemoveCommand(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <recording-name>",
		Short: "Remove a recording from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := resolve(cmd, logger)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer env.Close(ctx)
			return removeWithEnv(cmd, env, args[0])
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "answer prompts with their defaults")
	return cmd
}

func removeWithEnv(cmd *cobra.Command, env *environment, name string) error {
	ctx := cmd.Context()

	exists, err := env.orch.Contains(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Fprintln(cmd.OutOrStdout(), "Recording does not exist in the catalog.")
		return nil
	}

	if !confirm(cmd, fmt.Sprintf("Remove %s from the catalog?", name), false) {
		fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled.")
		return nil
	}

	if err := env.orch.Remove(ctx, name); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), "Recording does not exist in the catalog.")
			return nil
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from the catalog.\n", name)
	return nil
}

// NewDeleteCommand returns the "delete" command: delete a recording from
// storage, optionally removing its catalog record too.
func NewDeleteCommand(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <recording-name>",
		Short: "Delete a recording from storage (optional: remove from the catalog)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := resolve(cmd, logger)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer env.Close(ctx)

			name := args[0]
			remove, _ := cmd.Flags().GetBool("remove")

			if !env.root.Exists(name) {
				fmt.Fprintln(cmd.OutOrStdout(), "Recording does not exist in storage.")
			} else if confirm(cmd, fmt.Sprintf("Delete %s from storage?", name), false) {
				if err := env.root.Delete(name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s from storage.\n", name)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled.")
			}

			if remove {
				return removeWithEnv(cmd, env, name)
			}
			return nil
		},
	}
	cmd.Flags().BoolP("remove", "r", false, "also remove the recording from the catalog")
	cmd.Flags().BoolP("yes", "y", false, "answer prompts with their defaults")
	return cmd
}
