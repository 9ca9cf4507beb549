package renderer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/talonforge/talon/internal/catalog"
)

// LauncherOverride lets a caller replace the launch command the template
// declares. Any non-zero field wins over the template default.
type LauncherOverride struct {
	Command string
	Args    []string
	Cwd     string
	Env     map[string]string
}

// launcherEntry is one server's launch recipe in the artifact
type launcherEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Cwd     string            `json:"cwd,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// launcherConfig is the artifact consumed by an external MCP launcher
type launcherConfig struct {
	MCPServers map[string]launcherEntry `json:"mcpServers"`
}

// DefaultLauncherFile is the artifact name written into the output tree
const DefaultLauncherFile = "mcp-config.json"

// languageLaunchers is the fallback launch table used when neither the
// call nor the template declares a command.
var languageLaunchers = map[catalog.Language]launcherEntry{
	catalog.LangPython:     {Command: "python", Args: []string{"main.py"}},
	catalog.LangTypeScript: {Command: "node", Args: []string{"dist/index.js"}},
	catalog.LangJavaScript: {Command: "node", Args: []string{"index.js"}},
	catalog.LangRust:       {Command: "cargo", Args: []string{"run", "--release"}},
	catalog.LangGo:         {Command: "go", Args: []string{"run", "."}},
}

// GenerateLauncherConfig writes the auxiliary launcher artifact and
// returns its path. Resolution priority: explicit per-call override,
// then the template's declared launcher, then the language fallback.
// In dry-run mode the artifact is resolved but not written.
func (r *Renderer) GenerateLauncherConfig(tmpl *catalog.Descriptor, ctx Context) (string, error) {
	entry := resolveLauncher(tmpl, ctx)

	serverName := tmpl.Name
	if v, ok := ctx.Variables["serverName"]; ok && v.Display() != "" {
		serverName = v.Display()
	}

	config := launcherConfig{
		MCPServers: map[string]launcherEntry{serverName: entry},
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode launcher config: %w", err)
	}
	data = append(data, '\n')

	path := ctx.LauncherPath
	if path == "" {
		path = filepath.Join(ctx.OutputPath, DefaultLauncherFile)
	}

	if ctx.DryRun {
		return path, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create launcher config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write launcher config %s: %w", path, err)
	}

	return path, nil
}

// resolveLauncher applies the override > template > language priority
func resolveLauncher(tmpl *catalog.Descriptor, ctx Context) launcherEntry {
	entry := languageLaunchers[tmpl.Language]

	if tmpl.Launcher != nil {
		if tmpl.Launcher.Command != "" {
			entry.Command = tmpl.Launcher.Command
			entry.Args = tmpl.Launcher.Args
		}
		if tmpl.Launcher.Cwd != "" {
			entry.Cwd = tmpl.Launcher.Cwd
		}
		if len(tmpl.Launcher.Env) > 0 {
			entry.Env = tmpl.Launcher.Env
		}
	}

	if o := ctx.Launcher; o != nil {
		if o.Command != "" {
			entry.Command = o.Command
			entry.Args = o.Args
		}
		if o.Cwd != "" {
			entry.Cwd = o.Cwd
		}
		if len(o.Env) > 0 {
			entry.Env = o.Env
		}
	}

	if entry.Args == nil {
		entry.Args = []string{}
	}
	if entry.Cwd == "" {
		entry.Cwd = ctx.OutputPath
	}

	return entry
}
