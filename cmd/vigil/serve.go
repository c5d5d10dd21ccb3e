package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/aretw0/vigil/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <scenario>",
	Short: "Expose a scenario's observed object over HTTP",
	Long: `Builds the scenario's object, installs its rules and serves the inspector API with
a change journal, a Server-Sent Events stream and Prometheus metrics.

Set ` + journalKeyEnv + ` to a hex-encoded 32 byte key to encrypt journal entries.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := loggerFor(cmd)
		if err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")
		redisAddr, _ := cmd.Flags().GetString("redis-addr")
		redact, _ := cmd.Flags().GetStringSlice("redact")
		key, err := journalKey()
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.Serve(ctx, cli.ServeOptions{
			Path:       args[0],
			Addr:       addr,
			RedisAddr:  redisAddr,
			Redact:     redact,
			JournalKey: key,
			Banner:     cli.ShouldColor(os.Stdout),
			Out:        os.Stdout,
			Logger:     logger,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("redis-addr", "", "Redis address for the change journal (in-memory when empty)")
	serveCmd.Flags().StringSlice("redact", nil, "Patterns of property names whose values are masked in the journal")
}

const journalKeyEnv = "VIGIL_JOURNAL_KEY"

func journalKey() ([]byte, error) {
	raw := os.Getenv(journalKeyEnv)
	if raw == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", journalKeyEnv, err)
	}
	return key, nil
}
