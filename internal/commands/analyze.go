package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/talonforge/talon/internal/analyzer"
	"github.com/talonforge/talon/internal/config"
	"github.com/talonforge/talon/internal/output"
	"github.com/talonforge/talon/internal/scoring"
)

// AnalyzeCmd creates the 'analyze' command
func AnalyzeCmd() *cobra.Command {
	var workers, limit int
	var maxFileSize int64

	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Scan a source tree for MCP tool opportunities",
		Long: `Analyze walks a directory, extracts function metadata from JavaScript,
TypeScript, and Python sources, detects code idioms (API calls, file
operations, database queries, validation logic, third-party imports),
and ranks functions that would make good generated tools.

Examples:
  talon analyze .
  talon analyze ./src --limit 5
  talon analyze ./src --workers 8`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			opts := cfg.AnalyzerOptions()
			if workers > 0 {
				opts.Workers = workers
			}
			if maxFileSize > 0 {
				opts.MaxFileSize = maxFileSize
			}

			a := analyzer.New(scoring.NewScorer(scoring.DefaultWeights()))
			result, err := a.Analyze(cmd.Context(), root, opts)
			if err != nil {
				output.Error(err.Error())
				return err
			}

			printAnalysis(result, limit)
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel file workers (default: CPU count)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum opportunities to display")
	cmd.Flags().Int64Var(&maxFileSize, "max-file-size", 0, "Skip files larger than this many bytes")

	return cmd
}

func printAnalysis(result *analyzer.Result, limit int) {
	output.Info(fmt.Sprintf("Scanned %d file(s): %d analyzed, %d skipped in %s",
		result.FilesSeen, result.FilesAnalyzed, result.FilesSkipped, result.Duration.Round(time.Millisecond)))

	for _, errMsg := range result.Errors {
		output.Warn(errMsg)
	}

	if len(result.Opportunities) == 0 {
		output.Info("No tool opportunities found")
		return
	}

	shown := result.Opportunities
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	output.Success(fmt.Sprintf("Found %d tool opportunity(ies), showing top %d:", len(result.Opportunities), len(shown)))
	for _, opp := range shown {
		fmt.Println()
		output.Info(fmt.Sprintf("%s (score %d, %s)", opp.Function.Name, opp.Score, opp.Category))
		output.Step(fmt.Sprintf("%s:%d", opp.Function.Location.File, opp.Function.Location.StartLine))
		output.Step(fmt.Sprintf("tool: %s, complexity: %s, effort: %s",
			opp.Sketch.ToolName, opp.Sketch.Complexity, opp.Sketch.Effort))
		for _, reason := range opp.Reasoning {
			output.Step("- " + reason)
		}
	}

	if len(result.Recommendations) > 0 {
		fmt.Println()
		output.Info("Recommended templates: " + strings.Join(result.Recommendations, ", "))
	}
}
