package analyzer

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Parser extracts function metadata from source files using lexical
// matching. It is deliberately not a compiler front end: malformed input
// produces a partial result, never an error.
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// SupportedExtensions maps file extensions the parser understands
var SupportedExtensions = map[string]bool{
	".js":  true,
	".jsx": true,
	".mjs": true,
	".cjs": true,
	".ts":  true,
	".tsx": true,
	".py":  true,
}

var (
	jsFuncRe  = regexp.MustCompile(`^\s*(export\s+)?(?:default\s+)?(async\s+)?function\s*\*?\s*([A-Za-z_$][0-9A-Za-z_$]*)\s*\(([^)]*)\)\s*(?::\s*([^{]+?))?\s*\{`)
	jsArrowRe = regexp.MustCompile(`^\s*(export\s+)?(?:const|let|var)\s+([A-Za-z_$][0-9A-Za-z_$]*)\s*(?::\s*[^=]+?)?=\s*(async\s+)?\(([^)]*)\)\s*(?::\s*([^={]+?))?\s*=>`)
	pyDefRe   = regexp.MustCompile(`^(\s*)(async\s+)?def\s+([A-Za-z_][0-9A-Za-z_]*)\s*\(([^)]*)\)\s*(?:->\s*([^:]+))?:`)

	jsBranchRe = regexp.MustCompile(`\b(if|for|while|case|catch)\b|&&|\|\|`)
	pyBranchRe = regexp.MustCompile(`\b(if|elif|for|while|except|and|or)\b`)

	jsImportRe    = regexp.MustCompile(`^\s*import\s+(?:([A-Za-z_$][0-9A-Za-z_$]*)|\{([^}]*)\}|\*\s+as\s+([A-Za-z_$][0-9A-Za-z_$]*))\s+from\s+['"]([^'"]+)['"]`)
	jsRequireRe   = regexp.MustCompile(`^\s*(?:const|let|var)\s+(?:([A-Za-z_$][0-9A-Za-z_$]*)|\{([^}]*)\})\s*=\s*require\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	pyImportRe    = regexp.MustCompile(`^\s*import\s+([A-Za-z_][0-9A-Za-z_.]*)`)
	pyFromImpRe   = regexp.MustCompile(`^\s*from\s+([A-Za-z_.][0-9A-Za-z_.]*)\s+import\s+(.+)`)
	jsDocLineRe   = regexp.MustCompile(`^\s*\*\s?`)
	pyDocstringRe = regexp.MustCompile(`^\s*(?:'''|""")`)
)

// nodeBuiltins are Node.js standard modules, excluded from
// external-dependency detection.
var nodeBuiltins = map[string]bool{
	"assert": true, "buffer": true, "child_process": true, "crypto": true,
	"events": true, "fs": true, "http": true, "https": true, "net": true,
	"os": true, "path": true, "process": true, "readline": true,
	"stream": true, "string_decoder": true, "timers": true, "tls": true,
	"url": true, "util": true, "zlib": true,
}

// pythonStdlib is the subset of the Python standard library we check
// against. Not exhaustive; misses only skew external-dependency confidence
// slightly.
var pythonStdlib = map[string]bool{
	"abc": true, "argparse": true, "asyncio": true, "collections": true,
	"contextlib": true, "dataclasses": true, "datetime": true, "enum": true,
	"functools": true, "io": true, "itertools": true, "json": true,
	"logging": true, "math": true, "os": true, "pathlib": true, "re": true,
	"shutil": true, "string": true, "subprocess": true, "sys": true,
	"tempfile": true, "threading": true, "time": true, "typing": true,
	"unittest": true, "urllib": true, "uuid": true,
}

// importRef is one import statement found in a file
type importRef struct {
	Module   string   // module path as written
	Bindings []string // names bound locally
	Raw      string   // trimmed source line
	Builtin  bool
	Relative bool
}

// Parse extracts function descriptors from one source file. Unsupported
// extensions yield an empty list. The result is best-effort and Parse
// never fails: upstream callers record unreadable files, not this layer.
func (p *Parser) Parse(filePath, content string) []Function {
	ext := strings.ToLower(filepath.Ext(filePath))
	if !SupportedExtensions[ext] {
		return nil
	}

	lines := strings.Split(content, "\n")
	imports := extractImports(lines)

	if ext == ".py" {
		return p.parsePython(filePath, lines, imports)
	}
	return p.parseJS(filePath, lines, imports)
}

func (p *Parser) parseJS(filePath string, lines []string, imports []importRef) []Function {
	var fns []Function

	for i, line := range lines {
		var name, params, retType string
		var exported, async bool

		if m := jsFuncRe.FindStringSubmatch(line); m != nil {
			exported = m[1] != ""
			async = m[2] != ""
			name = m[3]
			params = m[4]
			retType = strings.TrimSpace(m[5])
		} else if m := jsArrowRe.FindStringSubmatch(line); m != nil {
			exported = m[1] != ""
			name = m[2]
			async = m[3] != ""
			params = m[4]
			retType = strings.TrimSpace(m[5])
		} else {
			continue
		}

		end := braceEnd(lines, i)
		body := strings.Join(lines[i:end+1], "\n")

		fn := Function{
			Name:       name,
			Signature:  strings.TrimSpace(line),
			Parameters: parseJSParams(params),
			ReturnType: retType,
			Doc:        docAbove(lines, i),
			Exported:   exported,
			Async:      async,
			Location: Location{
				File:      filePath,
				StartLine: i + 1,
				EndLine:   end + 1,
			},
			Complexity: Complexity{
				Cyclomatic:   1 + len(jsBranchRe.FindAllString(body, -1)),
				Lines:        end - i + 1,
				Dependencies: countImportUses(body, imports),
			},
		}
		fns = append(fns, fn)
	}

	return fns
}

func (p *Parser) parsePython(filePath string, lines []string, imports []importRef) []Function {
	var fns []Function

	for i, line := range lines {
		m := pyDefRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		indent := len(m[1])
		async := m[2] != ""
		name := m[3]
		params := m[4]
		retType := strings.TrimSpace(m[5])

		end := indentEnd(lines, i, indent)
		body := strings.Join(lines[i:end+1], "\n")

		fn := Function{
			Name:       name,
			Signature:  strings.TrimSpace(line),
			Parameters: parsePyParams(params),
			ReturnType: retType,
			Doc:        pyDocstring(lines, i, end),
			Exported:   !strings.HasPrefix(name, "_"),
			Async:      async,
			Location: Location{
				File:      filePath,
				StartLine: i + 1,
				EndLine:   end + 1,
			},
			Complexity: Complexity{
				Cyclomatic:   1 + len(pyBranchRe.FindAllString(body, -1)),
				Lines:        end - i + 1,
				Dependencies: countImportUses(body, imports),
			},
		}
		fns = append(fns, fn)
	}

	return fns
}

// braceEnd finds the line index where the body block opened on startIdx
// closes. The body brace is the last one on the declaration line, so
// braces inside default parameter values do not confuse the count. A
// declaration line without a brace is an expression-bodied arrow and ends
// where it starts. Strings and comments are not tracked; mismatches fall
// back to the last line.
func braceEnd(lines []string, startIdx int) int {
	open := strings.LastIndexByte(lines[startIdx], '{')
	if open < 0 {
		return startIdx
	}

	depth := 0
	for i := startIdx; i < len(lines); i++ {
		seg := lines[i]
		if i == startIdx {
			seg = seg[open:]
		}
		for _, r := range seg {
			switch r {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return i
				}
			}
		}
	}

	return len(lines) - 1
}

// indentEnd finds the last line of a Python block that starts at defIdx
// with the given indentation.
func indentEnd(lines []string, defIdx, indent int) int {
	last := defIdx

	for i := defIdx + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if leadingSpaces(lines[i]) <= indent {
			return last
		}
		last = i
	}

	return last
}

func leadingSpaces(s string) int {
	n := 0
	for _, r := range s {
		if r == ' ' {
			n++
		} else if r == '\t' {
			n += 4
		} else {
			break
		}
	}
	return n
}

// docAbove collects a JSDoc or line-comment block immediately above line idx
func docAbove(lines []string, idx int) string {
	i := idx - 1
	if i < 0 {
		return ""
	}

	// Line comment run
	if strings.HasPrefix(strings.TrimSpace(lines[i]), "//") {
		var parts []string
		for i >= 0 && strings.HasPrefix(strings.TrimSpace(lines[i]), "//") {
			text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[i]), "//"))
			parts = append([]string{text}, parts...)
			i--
		}
		return strings.TrimSpace(strings.Join(parts, "\n"))
	}

	// JSDoc block ending directly above
	if !strings.HasSuffix(strings.TrimSpace(lines[i]), "*/") {
		return ""
	}
	var parts []string
	for ; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		text := strings.TrimSuffix(trimmed, "*/")
		text = strings.TrimPrefix(text, "/**")
		text = strings.TrimPrefix(text, "/*")
		text = jsDocLineRe.ReplaceAllString(text, "")
		if t := strings.TrimSpace(text); t != "" {
			parts = append([]string{t}, parts...)
		}
		if strings.HasPrefix(trimmed, "/*") {
			break
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// pyDocstring extracts the docstring immediately following a def line
func pyDocstring(lines []string, defIdx, endIdx int) string {
	i := defIdx + 1
	if i > endIdx || i >= len(lines) {
		return ""
	}
	if !pyDocstringRe.MatchString(lines[i]) {
		return ""
	}

	quote := `"""`
	if strings.Contains(lines[i], "'''") {
		quote = "'''"
	}

	first := strings.TrimSpace(lines[i])
	inner := strings.TrimPrefix(first, quote)
	if strings.HasSuffix(inner, quote) && len(inner) >= len(quote) {
		return strings.TrimSpace(strings.TrimSuffix(inner, quote))
	}

	var parts []string
	if t := strings.TrimSpace(inner); t != "" {
		parts = append(parts, t)
	}
	for j := i + 1; j <= endIdx && j < len(lines); j++ {
		trimmed := strings.TrimSpace(lines[j])
		if strings.Contains(trimmed, quote) {
			if t := strings.TrimSpace(strings.TrimSuffix(trimmed, quote)); t != "" {
				parts = append(parts, t)
			}
			break
		}
		parts = append(parts, trimmed)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func parseJSParams(raw string) []Parameter {
	var params []Parameter

	for _, part := range splitParams(raw) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		p := Parameter{}

		if eq := strings.Index(part, "="); eq >= 0 {
			p.Default = strings.TrimSpace(part[eq+1:])
			p.Optional = true
			part = strings.TrimSpace(part[:eq])
		}

		if colon := strings.Index(part, ":"); colon >= 0 {
			p.Type = strings.TrimSpace(part[colon+1:])
			part = strings.TrimSpace(part[:colon])
		}

		if strings.HasSuffix(part, "?") {
			p.Optional = true
			part = strings.TrimSuffix(part, "?")
		}
		part = strings.TrimPrefix(part, "...")

		p.Name = part
		if p.Name != "" {
			params = append(params, p)
		}
	}

	return params
}

func parsePyParams(raw string) []Parameter {
	var params []Parameter

	for _, part := range splitParams(raw) {
		part = strings.TrimSpace(part)
		if part == "" || part == "self" || part == "cls" {
			continue
		}

		p := Parameter{}

		if eq := strings.Index(part, "="); eq >= 0 {
			p.Default = strings.TrimSpace(part[eq+1:])
			p.Optional = true
			part = strings.TrimSpace(part[:eq])
		}

		if colon := strings.Index(part, ":"); colon >= 0 {
			p.Type = strings.TrimSpace(part[colon+1:])
			part = strings.TrimSpace(part[:colon])
		}

		part = strings.TrimPrefix(part, "**")
		part = strings.TrimPrefix(part, "*")

		p.Name = part
		if p.Name != "" {
			params = append(params, p)
		}
	}

	return params
}

// splitParams splits a parameter list on commas outside brackets and
// braces, so destructured and generic parameters stay intact.
func splitParams(raw string) []string {
	var parts []string
	depth := 0
	start := 0

	for i, r := range raw {
		switch r {
		case '{', '[', '(', '<':
			depth++
		case '}', ']', ')', '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, raw[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, raw[start:])

	return parts
}

// extractImports finds all import statements in a file, both JS and
// Python forms, classifying each as builtin, relative, or third-party.
func extractImports(lines []string) []importRef {
	var imports []importRef

	for _, line := range lines {
		if m := jsImportRe.FindStringSubmatch(line); m != nil {
			imports = append(imports, newImportRef(m[4], jsBindings(m[1], m[2], m[3]), line))
			continue
		}
		if m := jsRequireRe.FindStringSubmatch(line); m != nil {
			imports = append(imports, newImportRef(m[3], jsBindings(m[1], m[2], ""), line))
			continue
		}
		if m := pyFromImpRe.FindStringSubmatch(line); m != nil {
			names := strings.Split(m[2], ",")
			bindings := make([]string, 0, len(names))
			for _, n := range names {
				n = strings.TrimSpace(n)
				if as := strings.Index(n, " as "); as >= 0 {
					n = strings.TrimSpace(n[as+4:])
				}
				if n != "" {
					bindings = append(bindings, n)
				}
			}
			imports = append(imports, newImportRef(m[1], bindings, line))
			continue
		}
		if m := pyImportRe.FindStringSubmatch(line); m != nil {
			module := m[1]
			binding := module
			if dot := strings.Index(module, "."); dot >= 0 {
				binding = module[:dot]
			}
			imports = append(imports, newImportRef(module, []string{binding}, line))
		}
	}

	return imports
}

func jsBindings(def, named, star string) []string {
	var bindings []string
	if def != "" {
		bindings = append(bindings, def)
	}
	if star != "" {
		bindings = append(bindings, star)
	}
	for _, n := range strings.Split(named, ",") {
		n = strings.TrimSpace(n)
		if as := strings.Index(n, " as "); as >= 0 {
			n = strings.TrimSpace(n[as+4:])
		}
		if n != "" {
			bindings = append(bindings, n)
		}
	}
	return bindings
}

func newImportRef(module string, bindings []string, raw string) importRef {
	relative := strings.HasPrefix(module, ".") || strings.HasPrefix(module, "/")

	root := module
	root = strings.TrimPrefix(root, "node:")
	if idx := strings.IndexAny(root, "/."); idx >= 0 && !relative {
		// Scoped npm packages keep their scope, dotted Python modules
		// reduce to the top-level package.
		if !strings.HasPrefix(root, "@") {
			root = root[:idx]
		}
	}

	return importRef{
		Module:   module,
		Bindings: bindings,
		Raw:      strings.TrimSpace(raw),
		Builtin:  nodeBuiltins[root] || pythonStdlib[root],
		Relative: relative,
	}
}

// countImportUses counts how many distinct imported bindings a function
// body references. This stands in for a real dependency graph.
func countImportUses(body string, imports []importRef) int {
	count := 0
	for _, imp := range imports {
		for _, binding := range imp.Bindings {
			if binding == "" {
				continue
			}
			if regexp.MustCompile(`\b` + regexp.QuoteMeta(binding) + `\b`).MatchString(body) {
				count++
				break
			}
		}
	}
	return count
}
