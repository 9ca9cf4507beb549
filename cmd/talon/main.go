package main

import (
	"os"

	"github.com/talonforge/talon/internal/commands"
)

func main() {
	rootCmd := commands.RootCmd()

	rootCmd.AddCommand(commands.AnalyzeCmd())
	rootCmd.AddCommand(commands.NewCmd())
	rootCmd.AddCommand(commands.TemplatesCmd())
	rootCmd.AddCommand(commands.RecommendCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
