package commands

import (
	"github.com/spf13/cobra"

	"github.com/talonforge/talon/internal/logging"
	"github.com/talonforge/talon/internal/output"
)

// Version is the CLI version, set at build time
var Version = "dev"

// RootCmd creates and returns the root command for the talon CLI
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "talon",
		Short: "Generate MCP servers from templates and mine codebases for tool opportunities",
		Long: `Talon analyzes source code for functions worth exposing as MCP tools,
recommends the best-matching server template, and materializes new
servers from parameterized templates.

Typical flow:
  talon analyze ./src        find tool opportunities in a codebase
  talon recommend -l python  pick the best template for a language
  talon new python-basic my-server --var serverName=my-server`,
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(verbose)
			if verbose {
				logging.Default().SetLevel(logging.LevelDebug)
			} else {
				logging.Default().SetLevel(logging.LevelWarn)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")

	return cmd
}
