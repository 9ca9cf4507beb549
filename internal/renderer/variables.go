package renderer

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/talonforge/talon/internal/catalog"
)

// VariableError is one field-attributed validation failure
type VariableError struct {
	Field    string
	Message  string
	Value    string // display form of the offending value
	Expected string // expected type or constraint
}

// Error formats the failure as a self-contained diagnostic
func (e VariableError) Error() string {
	msg := fmt.Sprintf("variable %q: %s", e.Field, e.Message)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got %s)", e.Value)
	}
	if e.Expected != "" {
		msg += fmt.Sprintf(", expected %s", e.Expected)
	}
	return msg
}

// ValidationResult aggregates variable validation outcomes
type ValidationResult struct {
	Valid  bool
	Errors []VariableError
}

// ValidateVariables checks bindings against the template's variable schema.
// Every failing variable contributes its own error so a caller learns all
// problems in one pass. Bindings without a schema entry pass untouched.
func ValidateVariables(tmpl *catalog.Descriptor, bindings map[string]Value) ValidationResult {
	var errs []VariableError

	for _, name := range sortedVariableNames(tmpl.Variables) {
		spec := tmpl.Variables[name]
		value, bound := bindings[name]

		if !bound {
			if spec.Required && spec.Default == nil {
				errs = append(errs, VariableError{
					Field:    name,
					Message:  "required variable is missing",
					Expected: spec.Type,
				})
			}
			continue
		}

		if err := checkType(name, spec, value); err != nil {
			errs = append(errs, *err)
			continue // the remaining constraints assume the declared type
		}

		errs = append(errs, checkConstraints(name, spec, value)...)
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// checkType verifies the binding's kind against the declared type.
// Arrays and generic objects are distinct kinds, never interchangeable.
func checkType(name string, spec catalog.VariableSpec, value Value) *VariableError {
	want := map[string]Kind{
		"string":  KindString,
		"number":  KindNumber,
		"boolean": KindBool,
		"array":   KindArray,
		"object":  KindObject,
	}[spec.Type]

	if value.Kind() == want {
		return nil
	}
	return &VariableError{
		Field:    name,
		Message:  fmt.Sprintf("type mismatch: value is %s", value.Kind()),
		Value:    value.Display(),
		Expected: spec.Type,
	}
}

// checkConstraints applies the optional pattern/range/enum rules
func checkConstraints(name string, spec catalog.VariableSpec, value Value) []VariableError {
	var errs []VariableError

	if spec.Pattern != "" && value.Kind() == KindString {
		// patterns are pre-compiled at manifest parse time, so a failure
		// here means the manifest bypassed ParseDescriptor
		re, err := regexp.Compile(spec.Pattern)
		if err == nil && !re.MatchString(value.Display()) {
			errs = append(errs, VariableError{
				Field:    name,
				Message:  fmt.Sprintf("does not match pattern %s", spec.Pattern),
				Value:    value.Display(),
				Expected: "string matching " + spec.Pattern,
			})
		}
	}

	if value.Kind() == KindNumber {
		if spec.Min != nil && value.Num() < *spec.Min {
			errs = append(errs, VariableError{
				Field:    name,
				Message:  fmt.Sprintf("below minimum %v", *spec.Min),
				Value:    value.Display(),
				Expected: fmt.Sprintf("number >= %v", *spec.Min),
			})
		}
		if spec.Max != nil && value.Num() > *spec.Max {
			errs = append(errs, VariableError{
				Field:    name,
				Message:  fmt.Sprintf("above maximum %v", *spec.Max),
				Value:    value.Display(),
				Expected: fmt.Sprintf("number <= %v", *spec.Max),
			})
		}
	}

	if len(spec.Enum) > 0 {
		allowed := make([]Value, 0, len(spec.Enum))
		for _, e := range spec.Enum {
			allowed = append(allowed, FromAny(e))
		}

		// For declared arrays the allowed-values check applies per element
		if spec.Type == "array" && value.Kind() == KindArray {
			for i, item := range value.Items() {
				if !inEnum(item, allowed) {
					errs = append(errs, VariableError{
						Field:    name,
						Message:  fmt.Sprintf("element %d is not an allowed value", i),
						Value:    item.Display(),
						Expected: enumDescription(allowed),
					})
				}
			}
		} else if !inEnum(value, allowed) {
			errs = append(errs, VariableError{
				Field:    name,
				Message:  "not an allowed value",
				Value:    value.Display(),
				Expected: enumDescription(allowed),
			})
		}
	}

	return errs
}

func inEnum(value Value, allowed []Value) bool {
	for _, a := range allowed {
		if value.Equal(a) {
			return true
		}
	}
	return false
}

func enumDescription(allowed []Value) string {
	parts := make([]string, len(allowed))
	for i, a := range allowed {
		parts[i] = a.Display()
	}
	return "one of " + fmt.Sprintf("%v", parts)
}

func sortedVariableNames(vars map[string]catalog.VariableSpec) []string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic error ordering
	return names
}
