// Package cli implements the bagman subcommands. All interactive behavior
// (confirmation prompts, console output) lives here; the core packages take
// explicit flags and never prompt.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// confirm prompts the user with a yes/no question. The --yes flag on cmd
// (or a non-interactive stdin failure) resolves to def.
func confirm(cmd *cobra.Command, question string, def bool) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return def
	}

	suffix := "[y/N]"
	if def {
		suffix = "[Y/n]"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: ", question, suffix)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

// formatTime renders a float epoch-seconds timestamp for console output.
func formatTime(seconds float64) string {
	if seconds == 0 {
		return "-"
	}
	return time.Unix(int64(seconds), 0).UTC().Format("2006-01-02 15:04:05")
}

// formatDuration renders a float seconds duration for console output.
func formatDuration(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}

// formatSize renders a byte count for console output.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
