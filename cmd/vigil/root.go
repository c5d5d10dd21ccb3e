package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/vigil/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Vigil observes and intercepts property access on objects",
	Long: `Vigil runs declarative observation scenarios: it instruments the properties of an object,
fires before/main/after events around every read, write and call, and restores the object
when observation ends.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loggerFor builds the logger selected by --log-level.
func loggerFor(cmd *cobra.Command) (*slog.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	return cli.CreateLogger(level)
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
}
