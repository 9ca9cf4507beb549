package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talonforge/talon/internal/catalog"
	"github.com/talonforge/talon/internal/config"
	"github.com/talonforge/talon/internal/output"
)

// TemplatesCmd creates the 'templates' command listing the catalog
func TemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List available server templates",
		Long: `Templates lists every template found across the configured search
paths. Earlier paths win on name collisions, so a template in your
project's templates/ directory shadows the built-in one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			cat, err := catalog.Load(cfg.Catalog.SearchPaths)
			if err != nil {
				return err
			}
			for _, warning := range cat.Warnings() {
				output.Warn(warning)
			}

			all := cat.All()
			if len(all) == 0 {
				output.Info("No templates found in: " + strings.Join(cfg.Catalog.SearchPaths, ", "))
				return nil
			}

			output.Success(fmt.Sprintf("%d template(s) available:", len(all)))
			for _, d := range all {
				fmt.Println()
				output.Info(fmt.Sprintf("%s@%s (%s)", d.Name, d.Version, d.Language))
				if d.Description != "" {
					output.Step(d.Description)
				}
				if len(d.Tags) > 0 {
					output.Step("tags: " + strings.Join(d.Tags, ", "))
				}
				if n := d.Optimization.Count(); n > 0 {
					var enabled []string
					for _, flag := range catalog.OptimizationFlags {
						if d.Optimization.Flag(flag) {
							enabled = append(enabled, flag)
						}
					}
					output.Step("optimizations: " + strings.Join(enabled, ", "))
				}
			}
			return nil
		},
	}
}
