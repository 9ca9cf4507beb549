package analyzer

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// maxEvidence caps how many source snippets a pattern carries, no matter
// how many lines matched.
const maxEvidence = 3

// idiomMatcher ties a pattern kind to the lexical idioms that signal it
type idiomMatcher struct {
	kind        PatternKind
	description string
	idioms      []*regexp.Regexp
}

var idiomMatchers = []idiomMatcher{
	{
		kind:        PatternAPICall,
		description: "Makes HTTP or API calls",
		idioms: []*regexp.Regexp{
			regexp.MustCompile(`\bfetch\s*\(`),
			regexp.MustCompile(`\baxios\s*[.(]`),
			regexp.MustCompile(`new\s+XMLHttpRequest`),
			regexp.MustCompile(`\brequests\.(get|post|put|patch|delete|head)\s*\(`),
			regexp.MustCompile(`\burllib\.request\b`),
			regexp.MustCompile(`\bhttpx?\.(get|post|put|patch|delete|request)\s*\(`),
		},
	},
	{
		kind:        PatternFileOperation,
		description: "Reads or writes the filesystem",
		idioms: []*regexp.Regexp{
			regexp.MustCompile(`\bfs\.\w+\s*\(`),
			regexp.MustCompile(`\bcreate(Read|Write)Stream\s*\(`),
			regexp.MustCompile(`\bopen\s*\(\s*['"]`),
			regexp.MustCompile(`\bos\.path\.\w+`),
			regexp.MustCompile(`\bpathlib\.`),
			regexp.MustCompile(`\bshutil\.\w+`),
		},
	},
	{
		kind:        PatternDatabaseQuery,
		description: "Executes database queries",
		idioms: []*regexp.Regexp{
			regexp.MustCompile(`(?i)['"\x60]\s*(SELECT|INSERT\s+INTO|UPDATE|DELETE\s+FROM)\b`),
			regexp.MustCompile(`\.\s*query\s*\(`),
			regexp.MustCompile(`\.\s*execute\s*\(`),
			regexp.MustCompile(`\bprisma\.\w+`),
			regexp.MustCompile(`\bknex\s*[.(]`),
			regexp.MustCompile(`\bmongoose\.\w+`),
			regexp.MustCompile(`\bcursor\.\w+\s*\(`),
		},
	},
	{
		kind:        PatternValidationLogic,
		description: "Validates input against a schema",
		idioms: []*regexp.Regexp{
			regexp.MustCompile(`\bjoi\.\w+`),
			regexp.MustCompile(`\bz\.(object|string|number|array)\s*\(`),
			regexp.MustCompile(`\byup\.\w+`),
			regexp.MustCompile(`\bajv\b`),
			regexp.MustCompile(`\.\s*validate(Sync|Async)?\s*\(`),
			regexp.MustCompile(`\bpydantic\b|\bBaseModel\b`),
		},
	},
}

// DetectPatterns scans file content for known code idioms. Matching is
// purely lexical. Confidence grows with occurrence count but sub-linearly,
// clamped to 1.0. The functions argument mirrors Parse output; it is kept
// for signature stability even though current matchers scan whole-file text.
func (p *Parser) DetectPatterns(content string, functions []Function) []Pattern {
	_ = functions

	lines := strings.Split(content, "\n")
	var patterns []Pattern

	for _, m := range idiomMatchers {
		count := 0
		var evidence []string

		for _, line := range lines {
			matched := false
			for _, re := range m.idioms {
				if n := len(re.FindAllString(line, -1)); n > 0 {
					count += n
					matched = true
				}
			}
			if matched && len(evidence) < maxEvidence {
				evidence = append(evidence, strings.TrimSpace(line))
			}
		}

		if count == 0 {
			continue
		}

		patterns = append(patterns, Pattern{
			Kind:        m.kind,
			Confidence:  confidenceFor(count),
			Description: fmt.Sprintf("%s (%d occurrence(s))", m.description, count),
			Evidence:    evidence,
		})
	}

	if dep := detectExternalDependencies(lines); dep != nil {
		patterns = append(patterns, *dep)
	}

	return patterns
}

// detectExternalDependencies reports third-party imports. Built-in modules
// and relative imports never count as evidence.
func detectExternalDependencies(lines []string) *Pattern {
	imports := extractImports(lines)

	count := 0
	var evidence []string
	for _, imp := range imports {
		if imp.Builtin || imp.Relative {
			continue
		}
		count++
		if len(evidence) < maxEvidence {
			evidence = append(evidence, imp.Raw)
		}
	}

	if count == 0 {
		return nil
	}

	return &Pattern{
		Kind:        PatternExternalDependency,
		Confidence:  confidenceFor(count),
		Description: fmt.Sprintf("Depends on %d third-party module(s)", count),
		Evidence:    evidence,
	}
}

// confidenceFor maps an occurrence count to [0,1]. One hit is already a
// meaningful signal; repeats add progressively less.
func confidenceFor(count int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Min(1.0, 0.4+0.2*math.Log2(float64(1+count)))
}
