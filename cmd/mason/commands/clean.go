package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/mason/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the output directories of every target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, _ := cmd.Flags().GetString("config")
			verbose, _ := cmd.Flags().GetBool("verbose")
			return c.app.Clean(app.Options{
				ConfigPath: config,
				Verbose:    verbose,
			})
		},
	}
	cmd.Flags().StringP("config", "c", "build.yaml", "Path to the root build descriptor")
	cmd.Flags().BoolP("verbose", "v", false, "Print each removed directory")
	return cmd
}
