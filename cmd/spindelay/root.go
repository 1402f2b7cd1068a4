// The spindelay command calibrates the busy-wait delay primitives,
// verifies their accuracy on the executing host, and serves recorded
// runs for inspection.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any
// subcommands.
var rootCmd = &cobra.Command{
	Use: "spindelay",
	Short: "Calibrate and verify the busy-wait delay primitives on " +
		"this host.",
	Long: `The spindelay tool measures the spin-kernel loop rate of the ` +
		`executing host, derives the delay loop counts from it, checks the ` +
		`produced delays against the wall clock, and records the results ` +
		`in a SQLite database.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func init() {
	rootCmd.PersistentFlags().String("db", defaultDBPath(),
		"path of the run database, without the .sqlite3 suffix")
	rootCmd.PersistentFlags().String("targets", "targets.yaml",
		"path of the YAML file declaring fixed-rate targets")
}

func defaultDBPath() string {
	if path := os.Getenv("SPINDELAY_DB"); path != "" {
		return path
	}

	return "spindelay_runs"
}
