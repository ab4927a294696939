package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree lays out files under root; a trailing slash in a key creates a
// directory, otherwise the value is written as file content.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestDirPatternExcludesSubtree(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":    "build/\n",
		"build/out.bin": "",
		"build/sub/x.o": "",
		"src/main.go":   "",
	})

	m, err := Compile(root)
	require.NoError(t, err)

	assert.True(t, m.IsIgnored(filepath.Join(root, "build"), true))
	assert.True(t, m.IsIgnored(filepath.Join(root, "build", "out.bin"), false))
	assert.True(t, m.IsIgnored(filepath.Join(root, "build", "sub", "x.o"), false))
	assert.False(t, m.IsIgnored(filepath.Join(root, "src", "main.go"), false))
	assert.False(t, m.HasNegations())
}

func TestNegationReincludesSingleFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":     "build/\n!build/keep.txt\n",
		"build/keep.txt": "",
		"build/drop.txt": "",
	})

	m, err := Compile(root)
	require.NoError(t, err)

	assert.False(t, m.IsIgnored(filepath.Join(root, "build", "keep.txt"), false))
	assert.True(t, m.IsIgnored(filepath.Join(root, "build", "drop.txt"), false))
	assert.True(t, m.HasNegations())
}

func TestNestedIgnoreFileWins(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":        "*.log\n",
		"sub/.gitignore":    "!important.log\n",
		"sub/important.log": "",
		"sub/other.log":     "",
		"top.log":           "",
	})

	m, err := Compile(root)
	require.NoError(t, err)

	assert.True(t, m.IsIgnored(filepath.Join(root, "top.log"), false))
	assert.True(t, m.IsIgnored(filepath.Join(root, "sub", "other.log"), false))
	assert.False(t, m.IsIgnored(filepath.Join(root, "sub", "important.log"), false))
}

func TestDeeplyNestedSiblingIgnoreFiles(t *testing.T) {
	// Sibling ignore files several levels down must keep their own anchor
	// directories; one sibling's patterns must never leak into another's.
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/b/c/.gitignore": "*.log\n",
		"a/b/d/.gitignore": "*.tmp\n",
		"a/b/c/x.log":      "",
		"a/b/c/x.tmp":      "",
		"a/b/d/y.tmp":      "",
		"a/b/d/y.log":      "",
	})

	m, err := Compile(root)
	require.NoError(t, err)

	assert.True(t, m.IsIgnored(filepath.Join(root, "a", "b", "c", "x.log"), false))
	assert.False(t, m.IsIgnored(filepath.Join(root, "a", "b", "c", "x.tmp"), false))
	assert.True(t, m.IsIgnored(filepath.Join(root, "a", "b", "d", "y.tmp"), false))
	assert.False(t, m.IsIgnored(filepath.Join(root, "a", "b", "d", "y.log"), false))
}

func TestExtraSourcesHaveHighestPrecedence(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore": "tmp/\n",
		"tmp/a":      "",
		"cache/b":    "",
	})

	m, err := Compile(root, Source{Patterns: []string{"cache/", "!tmp/"}})
	require.NoError(t, err)

	assert.True(t, m.IsIgnored(filepath.Join(root, "cache"), true))
	assert.False(t, m.IsIgnored(filepath.Join(root, "tmp"), true))
}

func TestDirOnlyPatternSparesFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore": "node_modules/\n",
	})
	writeTree(t, root, map[string]string{"node_modules": ""}) // a file, not a dir

	m, err := Compile(root)
	require.NoError(t, err)

	assert.False(t, m.IsIgnored(filepath.Join(root, "node_modules"), false))
	assert.True(t, m.IsIgnored(filepath.Join(root, "node_modules"), true))
}

func TestGitDirAlwaysIgnored(t *testing.T) {
	root := t.TempDir()
	m, err := Compile(root)
	require.NoError(t, err)

	assert.True(t, m.IsIgnored(filepath.Join(root, ".git"), true))
	assert.True(t, m.IsAlwaysIgnored(filepath.Join(root, ".git"), true))
	assert.False(t, m.IsAlwaysIgnored(filepath.Join(root, "src"), true))
	assert.False(t, m.IsAlwaysIgnored(filepath.Join(root, ".git"), false))
}

func TestRootNeverIgnored(t *testing.T) {
	root := t.TempDir()
	m, err := Compile(root, Source{Patterns: []string{"*"}})
	require.NoError(t, err)

	assert.False(t, m.IsIgnored(root, true))
}

func TestCommentsAndBlanksSkipped(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore": "# comment\n\n*.tmp\n",
		"a.tmp":      "",
	})

	m, err := Compile(root)
	require.NoError(t, err)
	assert.True(t, m.IsIgnored(filepath.Join(root, "a.tmp"), false))
}

func TestInvalidExtraPattern(t *testing.T) {
	root := t.TempDir()
	_, err := Compile(root, Source{Patterns: []string{"!"}})
	assert.Error(t, err)
}
