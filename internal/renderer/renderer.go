// Package renderer materializes template file trees: pre-flight
// validation, flat placeholder substitution, and the auxiliary launcher
// config artifact. It is the only component in the pipeline with
// filesystem write side effects.
//
// Rendering two templates into the same output directory concurrently is
// not supported; overlapping paths resolve to last-writer-wins and callers
// must serialize or pre-check collisions.
package renderer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/talonforge/talon/internal/catalog"
	"github.com/talonforge/talon/internal/logging"
)

// placeholderRe matches flat {{name}} placeholders. Section markers such
// as {{#if}} / {{/if}} deliberately do not match: nested and conditional
// template logic is out of scope and passes through verbatim.
var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][0-9A-Za-z_]*)\s*\}\}`)

// sectionRe recognizes nested/conditional section markers so renders can
// warn that they are present but unprocessed.
var sectionRe = regexp.MustCompile(`\{\{\s*[#/^][^}]*\}\}`)

// templateTextCacheSize bounds the in-memory cache of templated file text
const templateTextCacheSize = 128

// ConflictStrategy decides what happens when an output file already exists
type ConflictStrategy int

const (
	// ConflictError halts the render at the first existing output file
	ConflictError ConflictStrategy = iota
	// ConflictOverwrite replaces existing output files
	ConflictOverwrite
	// ConflictSkip leaves existing output files untouched, with a warning
	ConflictSkip
)

// Context carries everything one render call needs
type Context struct {
	TemplatePath string // overrides the descriptor's catalog path when set
	OutputPath   string
	Variables    map[string]Value
	Optimization map[string]bool // caller preference, echoed onto the Result

	// ValidateVariables makes Render fail when bindings violate the
	// template's variable schema instead of substituting best-effort.
	ValidateVariables bool

	// DryRun lists would-be writes without touching output files
	DryRun bool

	// Conflict governs existing output files; the default halts the render
	Conflict ConflictStrategy

	Launcher     *LauncherOverride // explicit launcher config override
	LauncherPath string            // where to write the launcher artifact
}

// PreflightResult enumerates every blocking problem found before writing
type PreflightResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// Result reports one render call's outcome. GeneratedFiles lists every
// file actually written, even when a later file failed: there is no
// silent rollback.
type Result struct {
	Success            bool
	OutputPath         string
	GeneratedFiles     []string
	Errors             []string
	Warnings           []string
	BuildCommand       string
	DevCommand         string
	LauncherConfigPath string

	// Optimization echoes the caller's preference map so downstream
	// consumers see the render outcome and the request together.
	Optimization map[string]bool
}

// Renderer performs template materialization
type Renderer struct {
	textCache *lru.Cache[string, string]
	logger    logging.Logger
}

// NewRenderer creates a Renderer with a bounded template-text cache
func NewRenderer() *Renderer {
	cache, err := lru.New[string, string](templateTextCacheSize)
	if err != nil {
		// only reachable with a non-positive size constant
		panic(err)
	}
	return &Renderer{
		textCache: cache,
		logger:    logging.Default(),
	}
}

// WithLogger returns a Renderer that logs through the given logger
func (r *Renderer) WithLogger(log logging.Logger) *Renderer {
	return &Renderer{textCache: r.textCache, logger: log}
}

// Preflight checks that the template root exists, the output directory is
// writable, and every file the descriptor lists is physically present.
// Every failing check becomes its own error entry so the caller learns
// all blocking problems in one pass.
func (r *Renderer) Preflight(tmpl *catalog.Descriptor, ctx Context) PreflightResult {
	var errs, warnings []string

	root := templateRoot(tmpl, ctx)
	if root == "" {
		errs = append(errs, fmt.Sprintf("template %q has no on-disk path; load it through the catalog or set TemplatePath", tmpl.Name))
	} else if info, err := os.Stat(root); err != nil {
		errs = append(errs, fmt.Sprintf("template root %s does not exist: %v", root, err))
	} else if !info.IsDir() {
		errs = append(errs, fmt.Sprintf("template root %s is not a directory", root))
	} else {
		for _, f := range tmpl.Files {
			src := filepath.Join(root, f.Path)
			if _, err := os.Stat(src); err != nil {
				errs = append(errs, fmt.Sprintf("template file %s is missing from %s; the manifest lists it but it was not found", f.Path, root))
			}
		}
	}

	if ctx.OutputPath == "" {
		errs = append(errs, "output path is empty; set OutputPath to the directory to generate into")
	} else if ctx.DryRun {
		// dry runs must leave the filesystem untouched, so only check
		// that an existing output path is usable
		if info, err := os.Stat(ctx.OutputPath); err == nil && !info.IsDir() {
			errs = append(errs, fmt.Sprintf("output path %s exists and is not a directory", ctx.OutputPath))
		}
	} else if err := os.MkdirAll(ctx.OutputPath, 0o755); err != nil {
		// writability is checked by attempting directory creation
		errs = append(errs, fmt.Sprintf("output directory %s is not writable: %v", ctx.OutputPath, err))
	}

	return PreflightResult{Valid: len(errs) == 0, Errors: errs, Warnings: warnings}
}

// Render materializes the template into the output directory. Success is
// false when preflight fails, when requested variable validation fails,
// or when any file step returns an error. A fatal file error halts
// further writes but already-written files stay on disk and in
// GeneratedFiles.
func (r *Renderer) Render(tmpl *catalog.Descriptor, ctx Context) Result {
	result := Result{OutputPath: ctx.OutputPath, Optimization: ctx.Optimization}

	pf := r.Preflight(tmpl, ctx)
	result.Warnings = append(result.Warnings, pf.Warnings...)
	if !pf.Valid {
		result.Errors = append(result.Errors, pf.Errors...)
		return result
	}

	if ctx.ValidateVariables {
		vr := ValidateVariables(tmpl, ctx.Variables)
		if !vr.Valid {
			for _, ve := range vr.Errors {
				result.Errors = append(result.Errors, ve.Error())
			}
			return result
		}
	}

	root := templateRoot(tmpl, ctx)

	for _, f := range tmpl.Files {
		src := filepath.Join(root, f.Path)
		dst := filepath.Join(ctx.OutputPath, f.Path)

		if err := r.renderFile(tmpl, ctx, f, src, dst, &result); err != nil {
			result.Errors = append(result.Errors, err.Error())
			r.logger.Error("Render halted",
				logging.F("file", f.Path),
				logging.F("error", err))
			return result
		}
	}

	result.BuildCommand, result.DevCommand = deriveCommands(tmpl.Language)

	if path, err := r.GenerateLauncherConfig(tmpl, ctx); err != nil {
		// launcher config is auxiliary: failure is logged, never fatal
		result.Warnings = append(result.Warnings, fmt.Sprintf("launcher config not written: %v", err))
		r.logger.Warn("Launcher config generation failed", logging.F("error", err))
	} else {
		result.LauncherConfigPath = path
	}

	result.Success = true
	return result
}

// renderFile materializes one descriptor entry. Permission problems on the
// executable bit are downgraded to warnings; everything else is fatal for
// the remaining files.
func (r *Renderer) renderFile(tmpl *catalog.Descriptor, ctx Context, f catalog.FileSpec, src, dst string, result *Result) error {
	if _, err := os.Stat(dst); err == nil {
		switch ctx.Conflict {
		case ConflictSkip:
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s already exists, skipped", dst))
			return nil
		case ConflictOverwrite:
			// fall through to the write
		default:
			return fmt.Errorf("%s already exists; render with an overwrite or skip conflict strategy", dst)
		}
	}

	if f.Templated {
		text, err := r.templateText(src)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", src, err)
		}

		if sectionRe.MatchString(text) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s contains conditional template sections; only flat placeholders are substituted", f.Path))
		}

		rendered := r.substitute(text, tmpl, ctx.Variables)
		if err := writeFile(dst, []byte(rendered), ctx.DryRun); err != nil {
			return fmt.Errorf("failed to write %s: %w", dst, err)
		}
	} else {
		// byte-for-byte copy; binary content must survive intact
		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", src, err)
		}
		if err := writeFile(dst, data, ctx.DryRun); err != nil {
			return fmt.Errorf("failed to write %s: %w", dst, err)
		}
	}

	result.GeneratedFiles = append(result.GeneratedFiles, dst)

	if f.Executable && !ctx.DryRun {
		if err := os.Chmod(dst, 0o755); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("could not mark %s executable: %v", dst, err))
		}
	}

	return nil
}

// substitute replaces {{name}} placeholders with the bound value's display
// form, falling back to the variable's declared default. Placeholders for
// variables that were never supplied stay verbatim in the output.
func (r *Renderer) substitute(text string, tmpl *catalog.Descriptor, bindings map[string]Value) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]

		if value, ok := bindings[name]; ok {
			return value.Display()
		}
		if spec, ok := tmpl.Variables[name]; ok && spec.Default != nil {
			return FromAny(spec.Default).Display()
		}
		return match
	})
}

// templateText reads templated file text through the bounded cache
func (r *Renderer) templateText(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	if text, ok := r.textCache.Get(abs); ok {
		return text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	text := string(data)
	r.textCache.Add(abs, text)
	return text, nil
}

func writeFile(path string, data []byte, dryRun bool) error {
	if dryRun {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func templateRoot(tmpl *catalog.Descriptor, ctx Context) string {
	if ctx.TemplatePath != "" {
		return ctx.TemplatePath
	}
	return tmpl.Path
}

// deriveCommands maps a template language to conventional build and dev
// command strings for the generated project.
func deriveCommands(lang catalog.Language) (build, dev string) {
	switch lang {
	case catalog.LangPython:
		return "pip install -r requirements.txt", "python main.py"
	case catalog.LangTypeScript, catalog.LangJavaScript:
		return "npm run build", "npm run dev"
	case catalog.LangRust:
		return "cargo build --release", "cargo run"
	case catalog.LangGo:
		return "go build ./...", "go run ."
	default:
		return "", ""
	}
}
