// Package analyzer walks source trees, extracts function-level metadata,
// and detects code idioms that signal good candidates for generated tools.
package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/talonforge/talon/internal/filesystem"
	"github.com/talonforge/talon/internal/logging"
)

// Options configures a directory analysis pass
type Options struct {
	MaxFileSize  int64    // files larger than this are seen but skipped
	ExcludeGlobs []string // file name globs to skip (tests, minified bundles)
	IgnoreDirs   []string // directory names to skip entirely
	Workers      int      // parallel file workers; <=0 means NumCPU
}

// DefaultOptions returns analysis options suitable for most projects
func DefaultOptions() Options {
	return Options{
		MaxFileSize: 1 << 20, // 1 MiB
		ExcludeGlobs: []string{
			"*_test.*", "*.test.*", "*.spec.*", "*.min.js", "*.d.ts",
		},
		IgnoreDirs: filesystem.DefaultIgnoreDirs,
	}
}

// Analyzer runs directory-level analysis. Scoring policy is injected so
// the analyzer stays free of weight tables.
type Analyzer struct {
	parser *Parser
	scorer Scorer
	logger logging.Logger
}

// New creates an Analyzer with the given scorer
func New(scorer Scorer) *Analyzer {
	return &Analyzer{
		parser: NewParser(),
		scorer: scorer,
		logger: logging.Default(),
	}
}

// WithLogger returns a new Analyzer with the specified logger
func (a *Analyzer) WithLogger(log logging.Logger) *Analyzer {
	return &Analyzer{
		parser: a.parser,
		scorer: a.scorer,
		logger: log,
	}
}

// fileJob is one file queued for a worker
type fileJob struct {
	path string
	size int64
}

// fileResult carries one file's outcome back to the collector
type fileResult struct {
	opportunities []Opportunity
	language      string
	errMsg        string
}

// Analyze walks rootPath and produces ranked opportunities. One file's
// read failure is isolated: it increments the skipped counter and appends
// an error string without aborting siblings. A missing or non-directory
// root fails the whole call before any recursion.
func (a *Analyzer) Analyze(ctx context.Context, rootPath string, opts Options) (*Result, error) {
	started := time.Now()

	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("analysis root %s does not exist: %w", rootPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("analysis root %s is not a directory", rootPath)
	}

	a.logger.Info("Starting source analysis", logging.F("path", rootPath))

	result := &Result{}

	// Phase 1: collect eligible files, counting ineligible ones as skipped
	var jobs []fileJob
	walkErr := filesystem.Walk(rootPath, filesystem.WalkOptions{
		IgnoreDirs: opts.IgnoreDirs,
	}, func(path string, fi os.FileInfo) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if fi.IsDir() {
			return nil
		}
		result.FilesSeen++

		if !SupportedExtensions[strings.ToLower(filepath.Ext(path))] {
			result.FilesSkipped++
			return nil
		}
		if excluded(path, opts.ExcludeGlobs) {
			result.FilesSkipped++
			return nil
		}
		if opts.MaxFileSize > 0 && fi.Size() > opts.MaxFileSize {
			result.FilesSkipped++
			a.logger.Debug("Skipping oversized file",
				logging.F("path", path),
				logging.F("size", fi.Size()))
			return nil
		}

		jobs = append(jobs, fileJob{path: path, size: fi.Size()})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", rootPath, walkErr)
	}

	// Phase 2: analyze files with a worker pool. Files are independent,
	// so order of completion does not matter; the final sort below keeps
	// output deterministic.
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	jobCh := make(chan fileJob, len(jobs))
	resultCh := make(chan fileResult, len(jobs))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go a.analyzeWorker(ctx, jobCh, resultCh, &wg)
	}

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	languages := make(map[string]int)
	for res := range resultCh {
		if res.errMsg != "" {
			result.FilesSkipped++
			result.Errors = append(result.Errors, res.errMsg)
			continue
		}
		result.FilesAnalyzed++
		result.Opportunities = append(result.Opportunities, res.opportunities...)
		if res.language != "" {
			languages[res.language]++
		}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	sortOpportunities(result.Opportunities)
	sort.Strings(result.Errors)
	result.Recommendations = recommendTemplates(languages)
	result.Duration = time.Since(started)

	a.logger.Info("Analysis complete",
		logging.F("analyzed", result.FilesAnalyzed),
		logging.F("skipped", result.FilesSkipped),
		logging.F("opportunities", len(result.Opportunities)))

	return result, nil
}

// AnalyzeFile runs the single-file pipeline: parse, detect, synthesize
func (a *Analyzer) AnalyzeFile(path, content string) []Opportunity {
	functions := a.parser.Parse(path, content)
	patterns := a.parser.DetectPatterns(content, functions)

	opportunities := make([]Opportunity, 0, len(functions))
	for i := range functions {
		opportunities = append(opportunities, a.scorer.Synthesize(&functions[i], patterns))
	}
	return opportunities
}

func (a *Analyzer) analyzeWorker(ctx context.Context, jobs <-chan fileJob, results chan<- fileResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		data, err := os.ReadFile(job.path)
		if err != nil {
			results <- fileResult{
				errMsg: fmt.Sprintf("failed to read %s: %v", job.path, err),
			}
			continue
		}

		results <- fileResult{
			opportunities: a.AnalyzeFile(job.path, string(data)),
			language:      languageOf(job.path),
		}
	}
}

// sortOpportunities orders by score descending; ties break on file path,
// then start line, so repeated runs over the same tree are stable.
func sortOpportunities(opps []Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		if opps[i].Score != opps[j].Score {
			return opps[i].Score > opps[j].Score
		}
		if opps[i].Function.Location.File != opps[j].Function.Location.File {
			return opps[i].Function.Location.File < opps[j].Function.Location.File
		}
		return opps[i].Function.Location.StartLine < opps[j].Function.Location.StartLine
	})
}

func excluded(path string, globs []string) bool {
	name := filepath.Base(path)
	for _, glob := range globs {
		if matched, _ := filepath.Match(glob, name); matched {
			return true
		}
	}
	return false
}

func languageOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx":
		return "typescript"
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript"
	case ".py":
		return "python"
	default:
		return ""
	}
}

// recommendTemplates maps the language histogram of analyzed files to
// template names, most common language first.
func recommendTemplates(languages map[string]int) []string {
	type langCount struct {
		lang  string
		count int
	}

	counts := make([]langCount, 0, len(languages))
	for lang, count := range languages {
		counts = append(counts, langCount{lang, count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].lang < counts[j].lang
	})

	var recs []string
	for _, lc := range counts {
		switch lc.lang {
		case "typescript", "javascript":
			recs = append(recs, "typescript-basic")
		case "python":
			recs = append(recs, "python-basic")
		}
	}
	return dedupe(recs)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
