package analyzer_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talonforge/talon/internal/analyzer"
	"github.com/talonforge/talon/internal/scoring"
)

const jsSource = `import axios from 'axios';

/**
 * Fetches a user record from the upstream API.
 */
export async function fetchUser(id) {
  if (!id) {
    throw new Error("id required");
  }
  const response = await fetch("/users/" + id);
  return response.json();
}
`

const pySource = `import requests


def load_config(path: str) -> dict:
    """Load service configuration from disk."""
    with open(path) as f:
        return f.read()
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func newAnalyzer() *analyzer.Analyzer {
	return analyzer.New(scoring.NewScorer(scoring.DefaultWeights()))
}

func TestAnalyzeCountsAndOrdering(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/api.js":      jsSource,
		"src/config.py":   pySource,
		"notes.txt":       "not source code",
		"src/app.test.js": "test('x', () => {});",
		"src/bundle.js":   strings.Repeat("// padding\n", 100),
	})

	opts := analyzer.DefaultOptions()
	opts.MaxFileSize = 500 // bundle.js exceeds this

	result, err := newAnalyzer().Analyze(context.Background(), root, opts)
	require.NoError(t, err)

	assert.Equal(t, 5, result.FilesSeen)
	assert.Equal(t, 2, result.FilesAnalyzed)
	assert.Equal(t, 3, result.FilesSkipped)
	assert.Empty(t, result.Errors)
	assert.Positive(t, result.Duration)

	require.NotEmpty(t, result.Opportunities)
	for i := 1; i < len(result.Opportunities); i++ {
		assert.GreaterOrEqual(t, result.Opportunities[i-1].Score, result.Opportunities[i].Score,
			"opportunities must be sorted by score descending")
	}

	assert.Equal(t, []string{"typescript-basic", "python-basic"}, result.Recommendations)
}

func TestAnalyzeMissingRoot(t *testing.T) {
	_, err := newAnalyzer().Analyze(context.Background(), filepath.Join(t.TempDir(), "nope"), analyzer.DefaultOptions())
	assert.Error(t, err)
}

func TestAnalyzeRootIsFile(t *testing.T) {
	root := writeTree(t, map[string]string{"file.js": jsSource})

	_, err := newAnalyzer().Analyze(context.Background(), filepath.Join(root, "file.js"), analyzer.DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestAnalyzeOversizedFileSeenButSkipped(t *testing.T) {
	root := writeTree(t, map[string]string{"big.js": jsSource})

	opts := analyzer.DefaultOptions()
	opts.MaxFileSize = 10

	result, err := newAnalyzer().Analyze(context.Background(), root, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesSeen)
	assert.Equal(t, 0, result.FilesAnalyzed)
	assert.Equal(t, 1, result.FilesSkipped)
	assert.Empty(t, result.Opportunities)
}

func TestAnalyzeReadFailureIsolated(t *testing.T) {
	// A dangling symlink passes the walk phase but fails at read time;
	// the failure must not take down analysis of sibling files.
	root := writeTree(t, map[string]string{"good.js": jsSource})
	badPath := filepath.Join(root, "bad.js")
	require.NoError(t, os.Symlink(filepath.Join(root, "missing.js"), badPath))

	result, err := newAnalyzer().Analyze(context.Background(), root, analyzer.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 2, result.FilesSeen)
	assert.Equal(t, 1, result.FilesAnalyzed)
	assert.Equal(t, 1, result.FilesSkipped)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], badPath)

	require.NotEmpty(t, result.Opportunities)
	assert.Equal(t, "fetchUser", result.Opportunities[0].Function.Name)
}

func TestAnalyzeIdempotentIDs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/api.js":    jsSource,
		"src/config.py": pySource,
	})

	a := newAnalyzer()
	first, err := a.Analyze(context.Background(), root, analyzer.DefaultOptions())
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), root, analyzer.DefaultOptions())
	require.NoError(t, err)

	require.Equal(t, len(first.Opportunities), len(second.Opportunities))
	for i := range first.Opportunities {
		assert.Equal(t, first.Opportunities[i].ID, second.Opportunities[i].ID)
		assert.NotEmpty(t, first.Opportunities[i].ID)
	}
}

func TestAnalyzeCancelledContext(t *testing.T) {
	root := writeTree(t, map[string]string{"src/api.js": jsSource})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newAnalyzer().Analyze(ctx, root, analyzer.DefaultOptions())
	assert.Error(t, err)
}

func TestAnalyzeFileSingle(t *testing.T) {
	opps := newAnalyzer().AnalyzeFile("api.js", jsSource)

	require.Len(t, opps, 1)
	opp := opps[0]
	assert.NotEmpty(t, opp.ID)
	assert.Equal(t, "fetchUser", opp.Function.Name)
	assert.Greater(t, opp.Score, 0)
	assert.NotEmpty(t, opp.Reasoning)
	assert.Equal(t, "fetch-user", opp.Sketch.ToolName)
	assert.Equal(t, "typescript-basic", opp.SuggestedTemplate)
}
