package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talonforge/talon/internal/catalog"
	"github.com/talonforge/talon/internal/config"
	"github.com/talonforge/talon/internal/output"
)

// RecommendCmd creates the 'recommend' command for template selection
func RecommendCmd() *cobra.Command {
	var language string
	var optimizations, tags []string
	var showAll bool

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Pick the best template for the given criteria",
		Long: `Recommend scores every template in the catalog against the criteria
and explains why the winner was chosen. Language match dominates; each
supported optimization flag and matched tag refines the score.

Examples:
  talon recommend --language typescript
  talon recommend --language typescript --optimization turboRepo --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			cat, err := catalog.Load(cfg.Catalog.SearchPaths)
			if err != nil {
				return err
			}

			criteria := catalog.Criteria{
				Language: catalog.Language(language),
				Tags:     tags,
			}
			if len(optimizations) > 0 {
				criteria.Optimization = make(map[string]bool, len(optimizations))
				for _, flag := range optimizations {
					criteria.Optimization[flag] = true
				}
			}

			selector := catalog.NewSelector(cat)

			if showAll {
				matches := selector.Suggest(criteria)
				if len(matches) == 0 {
					output.Info("No template matches the given criteria")
					return nil
				}
				for _, match := range matches {
					printMatch(match)
				}
				return nil
			}

			match, ok := selector.Select(criteria)
			if !ok {
				output.Info("No template matches the given criteria")
				return nil
			}
			printMatch(match)
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Target language (python, typescript, javascript, rust, go)")
	cmd.Flags().StringArrayVar(&optimizations, "optimization", nil, "Required optimization flag (repeatable)")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Desired template tag (repeatable)")
	cmd.Flags().BoolVar(&showAll, "all", false, "Show the full ranking, not just the winner")

	return cmd
}

func printMatch(match catalog.Match) {
	output.Success(fmt.Sprintf("%s@%s (score %d)", match.Template.Name, match.Template.Version, match.Score))
	for _, reason := range match.Reasons {
		output.Step("- " + reason)
	}
}
