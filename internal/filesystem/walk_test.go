package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := []string{
		"main.js",
		"src/app.js",
		"node_modules/pkg/index.js",
		".git/config",
		".hidden.js",
		"dist/bundle.min.js",
	}
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}
	return root
}

func collectFiles(t *testing.T, root string, opts WalkOptions) []string {
	t.Helper()
	var seen []string
	err := Walk(root, opts, func(path string, info os.FileInfo) error {
		if !info.IsDir() {
			rel, err := filepath.Rel(root, path)
			require.NoError(t, err)
			seen = append(seen, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return seen
}

func TestWalkSkipsIgnoredAndHidden(t *testing.T) {
	root := setupTree(t)

	seen := collectFiles(t, root, WalkOptions{})

	assert.Contains(t, seen, "main.js")
	assert.Contains(t, seen, "src/app.js")
	assert.NotContains(t, seen, "node_modules/pkg/index.js")
	assert.NotContains(t, seen, ".git/config")
	assert.NotContains(t, seen, ".hidden.js")
	assert.NotContains(t, seen, "dist/bundle.min.js", "dist is in the default ignore list")
}

func TestWalkIncludeHidden(t *testing.T) {
	root := setupTree(t)

	seen := collectFiles(t, root, WalkOptions{
		IgnoreDirs:    []string{"node_modules"},
		IncludeHidden: true,
	})

	assert.Contains(t, seen, ".hidden.js")
	assert.Contains(t, seen, ".git/config")
	assert.NotContains(t, seen, "node_modules/pkg/index.js")
}

func TestWalkIgnorePatterns(t *testing.T) {
	root := setupTree(t)

	seen := collectFiles(t, root, WalkOptions{
		IgnoreDirs:     []string{"node_modules"},
		IgnorePatterns: []string{"*.min.js"},
	})

	assert.Contains(t, seen, "main.js")
	assert.NotContains(t, seen, "dist/bundle.min.js")
}

func TestWalkMissingRoot(t *testing.T) {
	err := WalkWithDefaults(filepath.Join(t.TempDir(), "nope"), func(string, os.FileInfo) error {
		return nil
	})
	assert.Error(t, err)
}
