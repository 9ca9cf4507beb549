package scoring

import "github.com/talonforge/talon/internal/analyzer"

// Weights holds every scoring constant so tests and callers can override
// them independently of the algorithm.
type Weights struct {
	ExportedBonus int
	AsyncBonus    int

	// Cyclomatic complexity banding. The sweet spot earns the most: trivial
	// functions make poor tools and very complex ones make risky ones.
	ComplexitySweetMin     int
	ComplexitySweetMax     int
	ComplexityUpperMax     int // the wider partial-credit band above the sweet spot
	ComplexitySweetBonus   int
	ComplexityUpperBonus   int
	ComplexityTrivialBonus int

	// Lines-of-code banding, same three-tier shape
	LinesSweetMin     int
	LinesSweetMax     int
	LinesUpperMax     int
	LinesSweetBonus   int
	LinesUpperBonus   int
	LinesTrivialBonus int

	// Parameter count banding: a few named inputs map cleanly onto a tool
	// schema, zero gives the tool nothing to accept, too many is unwieldy.
	ParamsSweetMax   int
	ParamsUpperMax   int
	ParamsSweetBonus int
	ParamsUpperBonus int
	ParamsZeroBonus  int

	// Per-pattern additive contribution = confidence x kind weight
	PatternWeights map[analyzer.PatternKind]float64

	// Documentation bonus applies only above MinDocLength characters
	DocBonus     int
	MinDocLength int

	// Reasoning lines mention a pattern only above this confidence
	PatternReasonThreshold float64
}

// DefaultWeights returns the stock scoring configuration
func DefaultWeights() Weights {
	return Weights{
		ExportedBonus: 10,
		AsyncBonus:    8,

		ComplexitySweetMin:     3,
		ComplexitySweetMax:     8,
		ComplexityUpperMax:     20,
		ComplexitySweetBonus:   20,
		ComplexityUpperBonus:   10,
		ComplexityTrivialBonus: 2,

		LinesSweetMin:     10,
		LinesSweetMax:     50,
		LinesUpperMax:     120,
		LinesSweetBonus:   15,
		LinesUpperBonus:   8,
		LinesTrivialBonus: 3,

		ParamsSweetMax:   4,
		ParamsUpperMax:   7,
		ParamsSweetBonus: 10,
		ParamsUpperBonus: 5,
		ParamsZeroBonus:  2,

		PatternWeights: map[analyzer.PatternKind]float64{
			analyzer.PatternAPICall:            25,
			analyzer.PatternDatabaseQuery:      20,
			analyzer.PatternFileOperation:      18,
			analyzer.PatternValidationLogic:    15,
			analyzer.PatternExternalDependency: 8,
		},

		DocBonus:     5,
		MinDocLength: 20,

		PatternReasonThreshold: 0.5,
	}
}
