package main

import (
	"os"

	"github.com/aretw0/vigil/internal/cli"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <scenario>",
	Short: "Show the property descriptors of a scenario's object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := loggerFor(cmd)
		if err != nil {
			return err
		}
		observed, _ := cmd.Flags().GetBool("observed")
		raw, _ := cmd.Flags().GetBool("raw")

		return cli.Inspect(cli.InspectOptions{
			Path:     args[0],
			Observed: observed,
			Raw:      raw || !cli.ShouldColor(os.Stdout),
			Out:      os.Stdout,
			Logger:   logger,
		})
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("observed", false, "Show the descriptors while the object is instrumented")
	inspectCmd.Flags().Bool("raw", false, "Print markdown without rendering")
}
