// Command bagman manages a catalog of robot sensor log recordings.
//
// Logging:
//   - Base logger is created here with output format and level
//   - Logger is passed to all components via dependency injection
//   - No global slog configuration (no slog.SetDefault)
//   - Components scope loggers with their own attributes
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"bagman/cmd/bagman/cli"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	level := slog.LevelInfo
	if os.Getenv("BAGMAN_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	rootCmd := &cobra.Command{
		Use:           "bagman",
		Short:         "Sensor log recording catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "config.yaml", "path to config file")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	rootCmd.AddCommand(
		cli.NewUploadCommand(logger),
		cli.NewAddCommand(logger),
		cli.NewUpdateCommand(logger),
		cli.NewRemoveCommand(logger),
		cli.NewDeleteCommand(logger),
		cli.NewExistsCommand(logger),
		cli.NewMetadataCommand(logger),
		cli.NewListCommand(logger),
		versionCmd,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
