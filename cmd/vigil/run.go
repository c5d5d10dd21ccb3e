package main

import (
	"os"

	"github.com/aretw0/vigil/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Run a scenario and print its event trace",
	Long:  `Loads a scenario file (YAML or JSON), performs its steps against the observed object and prints every fired event.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := loggerFor(cmd)
		if err != nil {
			return err
		}
		jsonMode, _ := cmd.Flags().GetBool("json")
		mermaid, _ := cmd.Flags().GetBool("mermaid")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.Run(ctx, cli.RunOptions{
			Path:    args[0],
			JSON:    jsonMode,
			Mermaid: mermaid,
			Color:   cli.ShouldColor(os.Stdout),
			Out:     os.Stdout,
			Logger:  logger,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Print the result as JSON")
	runCmd.Flags().Bool("mermaid", false, "Print the trace as a Mermaid sequence diagram")
	runCmd.MarkFlagsMutuallyExclusive("json", "mermaid")
}
