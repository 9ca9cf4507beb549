package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talonforge/talon/internal/catalog"
	"github.com/talonforge/talon/internal/config"
	"github.com/talonforge/talon/internal/output"
	"github.com/talonforge/talon/internal/renderer"
)

// NewCmd creates the 'new' command for generating a server from a template
func NewCmd() *cobra.Command {
	var outputDir, launcherPath string
	var vars []string
	var skipValidation, dryRun, force, skipExisting bool

	cmd := &cobra.Command{
		Use:   "new [template] [name]",
		Short: "Generate a new MCP server from a template",
		Long: `New renders a template into a fresh directory, substituting variables
into templated files and writing the MCP launcher config artifact.

Variables are passed as --var key=value. Values that parse as JSON
(numbers, booleans, arrays, objects) keep their type; everything else
is a string. Variable validation runs by default; pass
--skip-validation to substitute best-effort.

Examples:
  talon new python-basic my-server
  talon new typescript-basic my-api --var serverDescription="Weather API tools"
  talon new python-basic my-server --dry-run`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			templateName, serverName := args[0], args[1]

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

			tmpl, ok := cat.Get(templateName)
			if !ok {
				available := make([]string, 0, cat.Len())
				for _, d := range cat.All() {
					available = append(available, d.Name)
				}
				return fmt.Errorf("template %q not found; available: %s", templateName, strings.Join(available, ", "))
			}

			bindings, err := parseBindings(vars)
			if err != nil {
				return err
			}
			if _, ok := bindings["serverName"]; !ok {
				bindings["serverName"] = renderer.String(serverName)
			}

			if outputDir == "" {
				outputDir = serverName
			}

			conflict := renderer.ConflictError
			switch {
			case force:
				conflict = renderer.ConflictOverwrite
			case skipExisting:
				conflict = renderer.ConflictSkip
			}

			ctx := renderer.Context{
				OutputPath:        outputDir,
				Variables:         bindings,
				ValidateVariables: !skipValidation,
				DryRun:            dryRun,
				Conflict:          conflict,
				LauncherPath:      launcherPath,
			}

			result := renderer.NewRenderer().Render(tmpl, ctx)
			printRenderResult(tmpl, result, dryRun)

			if !result.Success {
				return fmt.Errorf("generation failed with %d error(s)", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: the server name)")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Template variable as key=value (repeatable)")
	cmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "Skip variable validation before rendering")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List files without writing them")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing output files")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Keep existing output files, writing only new ones")
	cmd.Flags().StringVar(&launcherPath, "launcher-config", "", "Where to write the MCP launcher config artifact")

	return cmd
}

// parseBindings turns --var key=value pairs into typed values. JSON-shaped
// values keep their type; anything else is a plain string.
func parseBindings(vars []string) (map[string]renderer.Value, error) {
	bindings := make(map[string]renderer.Value, len(vars))

	for _, pair := range vars {
		key, raw, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --var %q: expected key=value", pair)
		}

		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			bindings[key] = renderer.FromAny(decoded)
		} else {
			bindings[key] = renderer.String(raw)
		}
	}

	return bindings, nil
}

func printRenderResult(tmpl *catalog.Descriptor, result renderer.Result, dryRun bool) {
	for _, warning := range result.Warnings {
		output.Warn(warning)
	}
	for _, errMsg := range result.Errors {
		output.Error(errMsg)
	}

	prefix := "Created"
	if dryRun {
		prefix = "[dry run] Would create"
	}
	for _, file := range result.GeneratedFiles {
		output.Step(prefix + " " + file)
	}

	if !result.Success {
		return
	}

	output.Success(fmt.Sprintf("Generated %s server in %s from template %s@%s",
		tmpl.Language, result.OutputPath, tmpl.Name, tmpl.Version))
	if result.LauncherConfigPath != "" {
		output.Step("launcher config: " + result.LauncherConfigPath)
	}
	if result.BuildCommand != "" {
		output.Info("Next steps:")
		output.Step("cd " + result.OutputPath)
		output.Step(result.BuildCommand)
		output.Step(result.DevCommand)
	}
}
