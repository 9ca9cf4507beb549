package catalog

import (
	"fmt"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Language is the closed set of target languages a template can generate
type Language string

const (
	LangPython     Language = "python"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangRust       Language = "rust"
	LangGo         Language = "go"
)

// Optimization holds the four independent capability flags a template
// can declare. Each is matched independently during selection.
type Optimization struct {
	TurboRepo   bool `yaml:"turboRepo"`
	ESBuild     bool `yaml:"esbuild"`
	TreeShaking bool `yaml:"treeShaking"`
	HotReload   bool `yaml:"hotReload"`
}

// OptimizationFlags lists the flag names in stable order
var OptimizationFlags = []string{"turboRepo", "esbuild", "treeShaking", "hotReload"}

// Flag reports whether the named optimization is enabled
func (o Optimization) Flag(name string) bool {
	switch name {
	case "turboRepo":
		return o.TurboRepo
	case "esbuild":
		return o.ESBuild
	case "treeShaking":
		return o.TreeShaking
	case "hotReload":
		return o.HotReload
	default:
		return false
	}
}

// Count returns how many optimization flags are enabled
func (o Optimization) Count() int {
	n := 0
	for _, name := range OptimizationFlags {
		if o.Flag(name) {
			n++
		}
	}
	return n
}

// VariableSpec declares one template variable and its constraints
type VariableSpec struct {
	Type     string    `yaml:"type" validate:"required,oneof=string number boolean array object"`
	Required bool      `yaml:"required"`
	Default  any       `yaml:"default"`
	Pattern  string    `yaml:"pattern"` // regex applied to string values
	Min      *float64  `yaml:"min"`     // numeric lower bound
	Max      *float64  `yaml:"max"`     // numeric upper bound
	Enum     []any     `yaml:"enum"`    // allowed values, per-element for arrays
}

// FileSpec describes one file the template materializes
type FileSpec struct {
	Path       string `yaml:"path" validate:"required"`
	Templated  bool   `yaml:"templated"`
	Executable bool   `yaml:"executable"`
	Encoding   string `yaml:"encoding"` // informational; files are written as read
}

// LauncherSpec is the template-declared default launch command for the
// generated server, overridable per render call.
type LauncherSpec struct {
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Cwd     string            `yaml:"cwd"`
	Env     map[string]string `yaml:"env"`
}

// Descriptor is a parsed template manifest plus its on-disk location
type Descriptor struct {
	Name         string                  `yaml:"name" validate:"required"`
	Version      string                  `yaml:"version" validate:"required,strictsemver"`
	Description  string                  `yaml:"description"`
	Language     Language                `yaml:"language" validate:"required,oneof=python typescript javascript rust go"`
	Optimization Optimization            `yaml:"optimization"`
	Tags         []string                `yaml:"tags"`
	Variables    map[string]VariableSpec `yaml:"variables" validate:"dive"`
	Files        []FileSpec              `yaml:"files" validate:"min=1,dive"`
	Launcher     *LauncherSpec           `yaml:"launcher"`

	// Path is the template's root directory, set by the catalog loader
	Path string `yaml:"-"`
}

// ManifestName is the descriptor file expected in every template directory
const ManifestName = "template.yml"

// strictSemverRe enforces plain MAJOR.MINOR.PATCH. Pre-release and build
// suffixes are rejected on purpose.
var strictSemverRe = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// registration only fails for an empty tag name
	_ = v.RegisterValidation("strictsemver", func(fl validator.FieldLevel) bool {
		return strictSemverRe.MatchString(fl.Field().String())
	})
	return v
}

// ParseDescriptor reads and validates a template manifest file
func ParseDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return ParseDescriptorBytes(data)
}

// ParseDescriptorBytes parses and validates a manifest from bytes
func ParseDescriptorBytes(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("invalid manifest YAML: %w", err)
	}

	if err := validate.Struct(&d); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return nil, fmt.Errorf("invalid manifest: field %s failed %q validation (value %v)",
				first.Namespace(), first.Tag(), first.Value())
		}
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	// File paths must be unique within a template
	seen := make(map[string]bool, len(d.Files))
	for _, f := range d.Files {
		if seen[f.Path] {
			return nil, fmt.Errorf("invalid manifest: duplicate file path %q", f.Path)
		}
		seen[f.Path] = true
	}

	// Pattern constraints must compile up front so render-time validation
	// cannot hit a bad regex
	for name, spec := range d.Variables {
		if spec.Pattern != "" {
			if _, err := regexp.Compile(spec.Pattern); err != nil {
				return nil, fmt.Errorf("invalid manifest: variable %q has unusable pattern %q: %v", name, spec.Pattern, err)
			}
		}
	}

	return &d, nil
}
