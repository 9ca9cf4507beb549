package renderer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talonforge/talon/internal/catalog"
	"github.com/talonforge/talon/internal/logging"
)

// writeTemplateTree materializes template source files and returns a
// descriptor pointing at them.
func writeTemplateTree(t *testing.T, files map[string]string, specs []catalog.FileSpec) *catalog.Descriptor {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return &catalog.Descriptor{
		Name:     "test-template",
		Version:  "1.0.0",
		Language: catalog.LangTypeScript,
		Files:    specs,
		Path:     root,
	}
}

func newTestRenderer() *Renderer {
	return NewRenderer().WithLogger(logging.NewSilent())
}

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	tmpl := writeTemplateTree(t,
		map[string]string{"greeting.txt": "Hello {{name}}!"},
		[]catalog.FileSpec{{Path: "greeting.txt", Templated: true}},
	)

	out := t.TempDir()
	result := newTestRenderer().Render(tmpl, Context{
		OutputPath: out,
		Variables:  map[string]Value{"name": String("TestServer")},
	})

	require.True(t, result.Success, "errors: %v", result.Errors)
	require.Len(t, result.GeneratedFiles, 1)

	data, err := os.ReadFile(filepath.Join(out, "greeting.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Hello TestServer!", string(data))
}

func TestRenderLeavesUnboundPlaceholdersVerbatim(t *testing.T) {
	tmpl := writeTemplateTree(t,
		map[string]string{"a.txt": "{{known}} and {{unknown}}"},
		[]catalog.FileSpec{{Path: "a.txt", Templated: true}},
	)

	out := t.TempDir()
	result := newTestRenderer().Render(tmpl, Context{
		OutputPath: out,
		Variables:  map[string]Value{"known": String("bound")},
	})
	require.True(t, result.Success)

	data, err := os.ReadFile(filepath.Join(out, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "bound and {{unknown}}", string(data))
}

func TestRenderSubstitutesDeclaredDefaults(t *testing.T) {
	tmpl := writeTemplateTree(t,
		map[string]string{"a.txt": "port={{port}}"},
		[]catalog.FileSpec{{Path: "a.txt", Templated: true}},
	)
	tmpl.Variables = map[string]catalog.VariableSpec{
		"port": {Type: "number", Default: 8080},
	}

	out := t.TempDir()
	result := newTestRenderer().Render(tmpl, Context{OutputPath: out})
	require.True(t, result.Success)

	data, err := os.ReadFile(filepath.Join(out, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "port=8080", string(data))
}

func TestRenderCopiesNonTemplatedFilesByteForByte(t *testing.T) {
	binary := string([]byte{0x00, 0xFF, 0x7B, 0x7B, 0x6E, 0x7D, 0x7D, 0x01})
	tmpl := writeTemplateTree(t,
		map[string]string{"blob.bin": binary, "raw.txt": "{{name}} stays"},
		[]catalog.FileSpec{
			{Path: "blob.bin"},
			{Path: "raw.txt"},
		},
	)

	out := t.TempDir()
	result := newTestRenderer().Render(tmpl, Context{
		OutputPath: out,
		Variables:  map[string]Value{"name": String("x")},
	})
	require.True(t, result.Success)

	blob, err := os.ReadFile(filepath.Join(out, "blob.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte(binary), blob)

	raw, err := os.ReadFile(filepath.Join(out, "raw.txt"))
	require.NoError(t, err)
	assert.Equal(t, "{{name}} stays", string(raw), "non-templated files are never substituted")
}

func TestRenderCreatesNestedDirectories(t *testing.T) {
	tmpl := writeTemplateTree(t,
		map[string]string{"src/deep/index.ts": "export const name = '{{name}}';"},
		[]catalog.FileSpec{{Path: "src/deep/index.ts", Templated: true}},
	)

	out := t.TempDir()
	result := newTestRenderer().Render(tmpl, Context{
		OutputPath: out,
		Variables:  map[string]Value{"name": String("svc")},
	})
	require.True(t, result.Success)
	assert.FileExists(t, filepath.Join(out, "src", "deep", "index.ts"))
	assert.Equal(t, "npm run build", result.BuildCommand)
	assert.Equal(t, "npm run dev", result.DevCommand)
}

func TestRenderMarksExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}

	tmpl := writeTemplateTree(t,
		map[string]string{"run.sh": "#!/bin/sh\necho {{name}}\n"},
		[]catalog.FileSpec{{Path: "run.sh", Templated: true, Executable: true}},
	)

	out := t.TempDir()
	result := newTestRenderer().Render(tmpl, Context{
		OutputPath: out,
		Variables:  map[string]Value{"name": String("x")},
	})
	require.True(t, result.Success)

	info, err := os.Stat(filepath.Join(out, "run.sh"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0111)
}

func TestRenderWarnsOnConditionalSections(t *testing.T) {
	tmpl := writeTemplateTree(t,
		map[string]string{"a.txt": "{{#if debug}}{{name}}{{/if}}"},
		[]catalog.FileSpec{{Path: "a.txt", Templated: true}},
	)

	out := t.TempDir()
	result := newTestRenderer().Render(tmpl, Context{
		OutputPath: out,
		Variables:  map[string]Value{"name": String("x")},
	})

	require.True(t, result.Success, "section markers warn, never fail")
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "conditional template sections")

	data, err := os.ReadFile(filepath.Join(out, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "{{#if debug}}x{{/if}}", string(data), "flat placeholders substitute inside unprocessed sections")
}

func TestPreflightEnumeratesEveryMissingFile(t *testing.T) {
	tmpl := writeTemplateTree(t,
		map[string]string{"present.txt": "ok"},
		[]catalog.FileSpec{
			{Path: "present.txt"},
			{Path: "missing-one.txt"},
			{Path: "missing-two.txt"},
		},
	)

	pf := newTestRenderer().Preflight(tmpl, Context{OutputPath: t.TempDir()})

	assert.False(t, pf.Valid)
	require.Len(t, pf.Errors, 2, "one error per missing file")
	assert.Contains(t, pf.Errors[0], "missing-one.txt")
	assert.Contains(t, pf.Errors[1], "missing-two.txt")
}

func TestPreflightRejectsMissingRootAndEmptyOutput(t *testing.T) {
	tmpl := &catalog.Descriptor{
		Name:  "ghost",
		Path:  filepath.Join(t.TempDir(), "nope"),
		Files: []catalog.FileSpec{{Path: "a.txt"}},
	}

	pf := newTestRenderer().Preflight(tmpl, Context{})

	assert.False(t, pf.Valid)
	require.Len(t, pf.Errors, 2)
	assert.Contains(t, pf.Errors[0], "does not exist")
	assert.Contains(t, pf.Errors[1], "output path is empty")
}

func TestRenderFailsPreflightBeforeWriting(t *testing.T) {
	tmpl := writeTemplateTree(t,
		map[string]string{"a.txt": "ok"},
		[]catalog.FileSpec{{Path: "a.txt"}, {Path: "gone.txt"}},
	)

	out := t.TempDir()
	result := newTestRenderer().Render(tmpl, Context{OutputPath: out})

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
	assert.Empty(t, result.GeneratedFiles)
	assert.NoFileExists(t, filepath.Join(out, "a.txt"))
}

func TestRenderValidatesVariablesWhenRequested(t *testing.T) {
	tmpl := writeTemplateTree(t,
		map[string]string{"a.txt": "{{name}}"},
		[]catalog.FileSpec{{Path: "a.txt", Templated: true}},
	)
	tmpl.Variables = map[string]catalog.VariableSpec{
		"name": {Type: "string", Required: true, Pattern: "^[a-z0-9-]+$"},
	}

	out := t.TempDir()
	result := newTestRenderer().Render(tmpl, Context{
		OutputPath:        out,
		Variables:         map[string]Value{"name": String("My_Server")},
		ValidateVariables: true,
	})

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "does not match pattern")
	assert.NoFileExists(t, filepath.Join(out, "a.txt"))
}

func TestRenderKeepsEarlierFilesAfterFatalError(t *testing.T) {
	tmpl := writeTemplateTree(t,
		map[string]string{"first.txt": "one"},
		[]catalog.FileSpec{
			{Path: "first.txt", Templated: true},
			{Path: "second", Templated: true},
		},
	)
	// "second" exists as a directory: preflight's stat passes but the
	// read during rendering fails, halting after first.txt was written.
	require.NoError(t, os.MkdirAll(filepath.Join(tmpl.Path, "second"), 0755))

	out := t.TempDir()
	result := newTestRenderer().Render(tmpl, Context{OutputPath: out})

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
	require.Len(t, result.GeneratedFiles, 1)
	assert.FileExists(t, filepath.Join(out, "first.txt"), "no rollback of already-written files")
}

func TestRenderConflictStrategies(t *testing.T) {
	newTemplate := func(t *testing.T) *catalog.Descriptor {
		return writeTemplateTree(t,
			map[string]string{"a.txt": "fresh"},
			[]catalog.FileSpec{{Path: "a.txt", Templated: true}},
		)
	}
	seedOutput := func(t *testing.T) string {
		out := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(out, "a.txt"), []byte("stale"), 0644))
		return out
	}

	t.Run("default halts on existing file", func(t *testing.T) {
		out := seedOutput(t)
		result := newTestRenderer().Render(newTemplate(t), Context{OutputPath: out})

		assert.False(t, result.Success)
		require.NotEmpty(t, result.Errors)
		assert.Contains(t, result.Errors[0], "already exists")

		data, err := os.ReadFile(filepath.Join(out, "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "stale", string(data))
	})

	t.Run("overwrite replaces existing file", func(t *testing.T) {
		out := seedOutput(t)
		result := newTestRenderer().Render(newTemplate(t), Context{
			OutputPath: out,
			Conflict:   ConflictOverwrite,
		})

		require.True(t, result.Success)
		data, err := os.ReadFile(filepath.Join(out, "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "fresh", string(data))
	})

	t.Run("skip keeps existing file with warning", func(t *testing.T) {
		out := seedOutput(t)
		result := newTestRenderer().Render(newTemplate(t), Context{
			OutputPath: out,
			Conflict:   ConflictSkip,
		})

		require.True(t, result.Success)
		assert.Empty(t, result.GeneratedFiles, "skipped files are not reported as generated")
		require.NotEmpty(t, result.Warnings)
		assert.Contains(t, result.Warnings[0], "already exists, skipped")

		data, err := os.ReadFile(filepath.Join(out, "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "stale", string(data))
	})
}

func TestRenderDryRunWritesNothing(t *testing.T) {
	tmpl := writeTemplateTree(t,
		map[string]string{"a.txt": "{{name}}"},
		[]catalog.FileSpec{{Path: "a.txt", Templated: true}},
	)

	out := filepath.Join(t.TempDir(), "generated")
	result := newTestRenderer().Render(tmpl, Context{
		OutputPath: out,
		Variables:  map[string]Value{"name": String("x")},
		DryRun:     true,
	})

	require.True(t, result.Success)
	require.Len(t, result.GeneratedFiles, 1)
	assert.NoFileExists(t, filepath.Join(out, "a.txt"))
	assert.NotEmpty(t, result.LauncherConfigPath)
	assert.NoFileExists(t, result.LauncherConfigPath)

	// not even the output directory itself
	assert.NoDirExists(t, out)
}

func TestRenderEchoesOptimization(t *testing.T) {
	tmpl := writeTemplateTree(t,
		map[string]string{"a.txt": "ok"},
		[]catalog.FileSpec{{Path: "a.txt"}},
	)

	prefs := map[string]bool{"hotReload": true, "streaming": false}
	result := newTestRenderer().Render(tmpl, Context{
		OutputPath:   t.TempDir(),
		Optimization: prefs,
	})

	require.True(t, result.Success)
	assert.Equal(t, prefs, result.Optimization)
}

func TestGenerateLauncherConfig(t *testing.T) {
	tmpl := writeTemplateTree(t,
		map[string]string{"a.txt": "ok"},
		[]catalog.FileSpec{{Path: "a.txt"}},
	)

	out := t.TempDir()
	result := newTestRenderer().Render(tmpl, Context{
		OutputPath: out,
		Variables:  map[string]Value{"serverName": String("my-server")},
	})
	require.True(t, result.Success)
	assert.Equal(t, filepath.Join(out, DefaultLauncherFile), result.LauncherConfigPath)

	data, err := os.ReadFile(result.LauncherConfigPath)
	require.NoError(t, err)

	var config struct {
		MCPServers map[string]struct {
			Command string   `json:"command"`
			Args    []string `json:"args"`
			Cwd     string   `json:"cwd"`
		} `json:"mcpServers"`
	}
	require.NoError(t, json.Unmarshal(data, &config))

	entry, ok := config.MCPServers["my-server"]
	require.True(t, ok, "artifact must be keyed by the serverName binding")
	assert.Equal(t, "node", entry.Command)
	assert.Equal(t, []string{"dist/index.js"}, entry.Args)
	assert.Equal(t, out, entry.Cwd)
}

func TestLauncherResolutionPriority(t *testing.T) {
	out := t.TempDir()

	tmpl := &catalog.Descriptor{
		Name:     "svc",
		Language: catalog.LangPython,
		Launcher: &catalog.LauncherSpec{Command: "python3", Args: []string{"-m", "svc"}},
	}

	// template launcher beats the language fallback
	entry := resolveLauncher(tmpl, Context{OutputPath: out})
	assert.Equal(t, "python3", entry.Command)
	assert.Equal(t, []string{"-m", "svc"}, entry.Args)
	assert.Equal(t, out, entry.Cwd)

	// per-call override beats the template launcher
	entry = resolveLauncher(tmpl, Context{
		OutputPath: out,
		Launcher:   &LauncherOverride{Command: "uv", Args: []string{"run", "svc"}, Cwd: "/srv"},
	})
	assert.Equal(t, "uv", entry.Command)
	assert.Equal(t, []string{"run", "svc"}, entry.Args)
	assert.Equal(t, "/srv", entry.Cwd)

	// no template launcher: language fallback applies
	fallback := resolveLauncher(&catalog.Descriptor{Name: "r", Language: catalog.LangRust}, Context{OutputPath: out})
	assert.Equal(t, "cargo", fallback.Command)
	assert.Equal(t, []string{"run", "--release"}, fallback.Args)
}

func TestLauncherConfigDefaultsToTemplateName(t *testing.T) {
	tmpl := writeTemplateTree(t,
		map[string]string{"a.txt": "ok"},
		[]catalog.FileSpec{{Path: "a.txt"}},
	)

	out := t.TempDir()
	path, err := newTestRenderer().GenerateLauncherConfig(tmpl, Context{OutputPath: out})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"test-template"`)
}
