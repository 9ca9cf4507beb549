package analyzer

import "time"

// Function represents a function extracted from a source file.
// Extraction is lexical, not compiler-grade: fields are best-effort.
type Function struct {
	Name       string
	Signature  string
	Parameters []Parameter
	ReturnType string
	Complexity Complexity
	Location   Location
	Doc        string
	Exported   bool
	Async      bool
}

// Parameter represents a function parameter
type Parameter struct {
	Name     string
	Type     string
	Optional bool
	Default  string
}

// Complexity holds the lightweight complexity metrics used for scoring
type Complexity struct {
	Cyclomatic   int
	Lines        int
	Dependencies int
}

// Location identifies where a function lives in the source tree
type Location struct {
	File      string
	StartLine int
	EndLine   int
}

// PatternKind is the closed set of code idioms the analyzer recognizes.
// Keep the switch in String and the AllPatternKinds list in sync when
// adding a kind; the scorer matches exhaustively on this type.
type PatternKind int

const (
	PatternAPICall PatternKind = iota
	PatternFileOperation
	PatternDatabaseQuery
	PatternValidationLogic
	PatternExternalDependency
)

// AllPatternKinds lists every kind in stable order. Categorize ties are
// broken by this order.
var AllPatternKinds = []PatternKind{
	PatternAPICall,
	PatternFileOperation,
	PatternDatabaseQuery,
	PatternValidationLogic,
	PatternExternalDependency,
}

func (k PatternKind) String() string {
	switch k {
	case PatternAPICall:
		return "api-call"
	case PatternFileOperation:
		return "file-operation"
	case PatternDatabaseQuery:
		return "database-query"
	case PatternValidationLogic:
		return "validation-logic"
	case PatternExternalDependency:
		return "external-dependency"
	default:
		return "unknown"
	}
}

// Pattern is a lexically-recognized code idiom used as a scoring signal
type Pattern struct {
	Kind        PatternKind
	Confidence  float64 // 0.0-1.0
	Description string
	Evidence    []string // capped at maxEvidence regardless of match count
}

// Category is the closed set of opportunity classifications
type Category int

const (
	CategoryUtility Category = iota
	CategoryAPIIntegration
	CategoryFileManagement
	CategoryDataAccess
	CategoryValidation
	CategoryIntegration
)

func (c Category) String() string {
	switch c {
	case CategoryAPIIntegration:
		return "api-integration"
	case CategoryFileManagement:
		return "file-management"
	case CategoryDataAccess:
		return "data-access"
	case CategoryValidation:
		return "validation"
	case CategoryIntegration:
		return "integration"
	default:
		return "utility"
	}
}

// ComplexityBucket classifies cyclomatic complexity for implementation sketches
type ComplexityBucket string

const (
	ComplexitySimple   ComplexityBucket = "simple"
	ComplexityModerate ComplexityBucket = "moderate"
	ComplexityComplex  ComplexityBucket = "complex"
)

// EffortBucket estimates implementation effort for a generated tool
type EffortBucket string

const (
	EffortLow    EffortBucket = "low"
	EffortMedium EffortBucket = "medium"
	EffortHigh   EffortBucket = "high"
)

// SketchParam describes one input-schema entry derived from a parameter
type SketchParam struct {
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Sketch outlines how the function would look as a generated MCP tool
type Sketch struct {
	ToolName    string
	Description string
	InputSchema map[string]SketchParam
	Complexity  ComplexityBucket
	Effort      EffortBucket
}

// Opportunity is a scored recommendation that a function would make a good
// generated tool. The ID is derived from (file, function name, start line)
// so re-analyzing unchanged code yields the same identifier.
type Opportunity struct {
	ID                string
	Function          *Function
	Patterns          []Pattern
	Score             int // always clamped to [0,100]
	Category          Category
	Reasoning         []string
	SuggestedTemplate string
	Sketch            Sketch
}

// Scorer turns analyzed functions into opportunities. Implemented by the
// scoring package; declared here so the analyzer stays free of scoring
// policy, mirroring how convention detection is injected.
type Scorer interface {
	Synthesize(fn *Function, patterns []Pattern) Opportunity
}

// Result aggregates a directory analysis pass
type Result struct {
	Opportunities   []Opportunity
	FilesSeen       int
	FilesAnalyzed   int
	FilesSkipped    int
	Duration        time.Duration
	Errors          []string
	Recommendations []string // template names, most relevant first
}
