// Package scoring ranks analyzed functions as candidates for generated
// tools. All weights live in an injectable Weights value; the algorithm
// itself carries no constants.
package scoring

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/talonforge/talon/internal/analyzer"
)

// opportunityNamespace seeds the deterministic UUIDv5 derivation of
// opportunity identifiers. Never change it: IDs must stay stable across
// releases so re-analysis of unchanged code is idempotent.
var opportunityNamespace = uuid.MustParse("f4c1a2de-7b3a-4e0c-9d6f-1a8b2c3d4e5f")

// Scorer scores and classifies analyzed functions
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer with the given weights
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score computes a weighted sum of independent signals, clamped to [0,100].
// Every contribution is non-negative, so adding a pattern can only raise
// the pre-clamp total.
func (s *Scorer) Score(fn *analyzer.Function, patterns []analyzer.Pattern) int {
	w := s.weights
	total := 0.0

	if fn.Exported {
		total += float64(w.ExportedBonus)
	}
	if fn.Async {
		total += float64(w.AsyncBonus)
	}

	cyclo := fn.Complexity.Cyclomatic
	switch {
	case cyclo >= w.ComplexitySweetMin && cyclo <= w.ComplexitySweetMax:
		total += float64(w.ComplexitySweetBonus)
	case cyclo > w.ComplexitySweetMax && cyclo <= w.ComplexityUpperMax:
		total += float64(w.ComplexityUpperBonus)
	case cyclo > 0 && cyclo < w.ComplexitySweetMin:
		total += float64(w.ComplexityTrivialBonus)
	}

	lines := fn.Complexity.Lines
	switch {
	case lines >= w.LinesSweetMin && lines <= w.LinesSweetMax:
		total += float64(w.LinesSweetBonus)
	case lines > w.LinesSweetMax && lines <= w.LinesUpperMax:
		total += float64(w.LinesUpperBonus)
	case lines > 0 && lines < w.LinesSweetMin:
		total += float64(w.LinesTrivialBonus)
	}

	params := len(fn.Parameters)
	switch {
	case params >= 1 && params <= w.ParamsSweetMax:
		total += float64(w.ParamsSweetBonus)
	case params > w.ParamsSweetMax && params <= w.ParamsUpperMax:
		total += float64(w.ParamsUpperBonus)
	case params == 0:
		total += float64(w.ParamsZeroBonus)
	}

	// Multiple pattern kinds sum; they are independent evidence.
	for _, pattern := range patterns {
		total += pattern.Confidence * w.PatternWeights[pattern.Kind]
	}

	if len(fn.Doc) >= w.MinDocLength {
		total += float64(w.DocBonus)
	}

	return clamp(int(total), 0, 100)
}

// Categorize picks the category of the pattern kind with the highest
// cumulative confidence, summed across instances of the same kind. Empty
// input defaults to utility. Ties keep the kind that appears first in
// analyzer.AllPatternKinds, which makes the result deterministic.
func (s *Scorer) Categorize(patterns []analyzer.Pattern) analyzer.Category {
	if len(patterns) == 0 {
		return analyzer.CategoryUtility
	}

	totals := make(map[analyzer.PatternKind]float64, len(patterns))
	for _, p := range patterns {
		totals[p.Kind] += p.Confidence
	}

	best := analyzer.CategoryUtility
	bestTotal := 0.0
	for _, kind := range analyzer.AllPatternKinds {
		if totals[kind] > bestTotal {
			bestTotal = totals[kind]
			best = categoryFor(kind)
		}
	}
	return best
}

// categoryFor maps a pattern kind to an opportunity category. The switch
// is exhaustive over the closed kind set; a new kind fails to compile
// here rather than silently classifying as utility.
func categoryFor(kind analyzer.PatternKind) analyzer.Category {
	switch kind {
	case analyzer.PatternAPICall:
		return analyzer.CategoryAPIIntegration
	case analyzer.PatternFileOperation:
		return analyzer.CategoryFileManagement
	case analyzer.PatternDatabaseQuery:
		return analyzer.CategoryDataAccess
	case analyzer.PatternValidationLogic:
		return analyzer.CategoryValidation
	case analyzer.PatternExternalDependency:
		return analyzer.CategoryIntegration
	}
	return analyzer.CategoryUtility
}

// Synthesize builds the full opportunity record for a function
func (s *Scorer) Synthesize(fn *analyzer.Function, patterns []analyzer.Pattern) analyzer.Opportunity {
	score := s.Score(fn, patterns)

	return analyzer.Opportunity{
		ID:                deriveID(fn),
		Function:          fn,
		Patterns:          patterns,
		Score:             score,
		Category:          s.Categorize(patterns),
		Reasoning:         s.reasoning(fn, patterns),
		SuggestedTemplate: suggestTemplate(fn),
		Sketch:            s.sketch(fn, score),
	}
}

// deriveID produces a stable identifier from the function's identity.
// UUIDv5 over (file, name, start line) is idempotent across re-analysis
// of unchanged code.
func deriveID(fn *analyzer.Function) string {
	seed := fmt.Sprintf("%s:%s:%d", fn.Location.File, fn.Name, fn.Location.StartLine)
	return uuid.NewSHA1(opportunityNamespace, []byte(seed)).String()
}

// reasoning emits one line per triggered heuristic
func (s *Scorer) reasoning(fn *analyzer.Function, patterns []analyzer.Pattern) []string {
	var reasons []string

	if fn.Exported {
		reasons = append(reasons, fmt.Sprintf("%s is exported and callable from outside its module", fn.Name))
	}
	if n := len(fn.Parameters); n > 0 {
		reasons = append(reasons, fmt.Sprintf("accepts %d parameter(s) that map onto a tool input schema", n))
	}
	if fn.Async {
		reasons = append(reasons, "asynchronous, suited to I/O-bound tool work")
	}
	for _, p := range patterns {
		if p.Confidence >= s.weights.PatternReasonThreshold {
			reasons = append(reasons, fmt.Sprintf("%s pattern detected (confidence %.2f): %s", p.Kind, p.Confidence, p.Description))
		}
	}

	return reasons
}

func suggestTemplate(fn *analyzer.Function) string {
	switch strings.ToLower(filepath.Ext(fn.Location.File)) {
	case ".py":
		return "python-basic"
	default:
		return "typescript-basic"
	}
}

// sketch fills implementation-sketch fields from pure lookup tables
func (s *Scorer) sketch(fn *analyzer.Function, score int) analyzer.Sketch {
	description := fn.Doc
	if idx := strings.IndexByte(description, '\n'); idx >= 0 {
		description = description[:idx]
	}
	if strings.TrimSpace(description) == "" {
		description = fmt.Sprintf("Tool generated from %s", fn.Name)
	}

	schema := make(map[string]analyzer.SketchParam, len(fn.Parameters))
	for _, p := range fn.Parameters {
		schema[p.Name] = analyzer.SketchParam{
			Type:     schemaType(p.Type),
			Required: !p.Optional,
		}
	}

	bucket := complexityBucket(fn.Complexity.Cyclomatic)

	return analyzer.Sketch{
		ToolName:    kebabCase(fn.Name),
		Description: strings.TrimSpace(description),
		InputSchema: schema,
		Complexity:  bucket,
		Effort:      effortFor(bucket, score),
	}
}

// schemaType normalizes a source-language type annotation onto the
// closed schema type set. Untyped parameters default to string, the
// loosest tool input type.
func schemaType(annotation string) string {
	t := strings.ToLower(strings.TrimSpace(annotation))
	switch {
	case t == "":
		return "string"
	case t == "string" || t == "str":
		return "string"
	case t == "number" || t == "int" || t == "float" || t == "double" || t == "bigint":
		return "number"
	case t == "boolean" || t == "bool":
		return "boolean"
	case strings.HasSuffix(t, "[]") || strings.HasPrefix(t, "array") || strings.HasPrefix(t, "list"):
		return "array"
	default:
		return "object"
	}
}

// complexityBucket maps cyclomatic complexity onto the closed bucket set
func complexityBucket(cyclo int) analyzer.ComplexityBucket {
	switch {
	case cyclo < 5:
		return analyzer.ComplexitySimple
	case cyclo <= 10:
		return analyzer.ComplexityModerate
	default:
		return analyzer.ComplexityComplex
	}
}

// effortFor is a 2-D lookup over (complexity bucket, score band)
func effortFor(bucket analyzer.ComplexityBucket, score int) analyzer.EffortBucket {
	band := 0 // <40
	switch {
	case score >= 70:
		band = 2
	case score >= 40:
		band = 1
	}

	table := map[analyzer.ComplexityBucket][3]analyzer.EffortBucket{
		analyzer.ComplexitySimple:   {analyzer.EffortMedium, analyzer.EffortLow, analyzer.EffortLow},
		analyzer.ComplexityModerate: {analyzer.EffortHigh, analyzer.EffortMedium, analyzer.EffortLow},
		analyzer.ComplexityComplex:  {analyzer.EffortHigh, analyzer.EffortHigh, analyzer.EffortMedium},
	}
	return table[bucket][band]
}

// kebabCase converts camelCase or snake_case to kebab-case for tool names
func kebabCase(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || r == ' ':
			b.WriteRune('-')
		case unicode.IsUpper(r):
			if i > 0 {
				prev := rune(s[i-1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) {
					b.WriteRune('-')
				} else if i+1 < len(s) && unicode.IsLower(rune(s[i+1])) && prev != '-' && prev != '_' {
					b.WriteRune('-')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
