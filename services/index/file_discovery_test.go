package index

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

var walkTestFiles = map[string]string{
	"a.txt":                   "a",
	"sub/b.md":                "b",
	"sub/deeper/c.go":         "c",
	".hidden.txt":             "hidden file",
	".git/config":             "hidden dir",
	".git/objects/ab/cdef":    "hidden subtree",
	"sub/.cache/d.txt":        "hidden nested dir",
	"node_modules/pkg/e.js":   "excluded dir",
	"sub/notes.tmp":           "excluded by extension",
	"sub/deeper/keep.tmp.txt": "kept",
}

func writeTree(t *testing.T, assert *require.Assertions, files map[string]string) string {
	root := t.TempDir()
	for relPath, content := range files {
		fullPath := filepath.Join(root, relPath)
		err := os.MkdirAll(filepath.Dir(fullPath), 0755)
		assert.NoError(err, "could not create test sub-directory")
		err = os.WriteFile(fullPath, []byte(content), 0644)
		assert.NoError(err, "could not write test file")
	}
	return root
}

func collect(assert *require.Assertions, walker *Walker, root string) []string {
	var paths []string
	for candidate, err := range walker.Walk(root) {
		assert.NoError(err)
		assert.False(candidate.ModifiedAt.IsZero(), "candidate should carry a modification time")
		relPath, err := filepath.Rel(root, candidate.Path)
		assert.NoError(err)
		paths = append(paths, filepath.ToSlash(relPath))
	}
	sort.Strings(paths)
	return paths
}

func TestWalkSkipsHiddenEntries(t *testing.T) {
	assert := require.New(t)
	root := writeTree(t, assert, walkTestFiles)

	walker, err := NewWalker(nil)
	assert.NoError(err)

	assert.Equal([]string{
		"a.txt",
		"node_modules/pkg/e.js",
		"sub/b.md",
		"sub/deeper/c.go",
		"sub/deeper/keep.tmp.txt",
		"sub/notes.tmp",
	}, collect(assert, walker, root))
}

func TestWalkSkipsExcludedEntries(t *testing.T) {
	assert := require.New(t)
	root := writeTree(t, assert, walkTestFiles)

	walker, err := NewWalker([]string{"node_modules", "*.tmp"})
	assert.NoError(err)

	assert.Equal([]string{
		"a.txt",
		"sub/b.md",
		"sub/deeper/c.go",
		"sub/deeper/keep.tmp.txt",
	}, collect(assert, walker, root))
}

func TestWalkExcludesRelativePaths(t *testing.T) {
	assert := require.New(t)
	root := writeTree(t, assert, walkTestFiles)

	walker, err := NewWalker([]string{"sub/deeper"})
	assert.NoError(err)

	assert.Equal([]string{
		"a.txt",
		"node_modules/pkg/e.js",
		"sub/b.md",
		"sub/notes.tmp",
	}, collect(assert, walker, root))
}

func TestInvalidExcludePattern(t *testing.T) {
	assert := require.New(t)

	_, err := NewWalker([]string{"[unclosed"})
	assert.Error(err)
}

func TestWalkHiddenRootIsWalked(t *testing.T) {
	assert := require.New(t)
	root := filepath.Join(t.TempDir(), ".notes")
	assert.NoError(os.MkdirAll(root, 0755))
	assert.NoError(os.WriteFile(filepath.Join(root, "todo.txt"), []byte("todo"), 0644))

	walker, err := NewWalker(nil)
	assert.NoError(err)

	assert.Equal([]string{"todo.txt"}, collect(assert, walker, root))
}

func TestWalkStopsWhenConsumerStops(t *testing.T) {
	assert := require.New(t)
	root := writeTree(t, assert, walkTestFiles)

	walker, err := NewWalker(nil)
	assert.NoError(err)

	count := 0
	for _, err := range walker.Walk(root) {
		assert.NoError(err)
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(2, count)
}

func TestWalkReportsEntryErrorsAndContinues(t *testing.T) {
	assert := require.New(t)
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := writeTree(t, assert, map[string]string{
		"ok.txt":        "ok",
		"locked/no.txt": "unreachable",
		"zzz/later.txt": "after the error",
	})
	locked := filepath.Join(root, "locked")
	assert.NoError(os.Chmod(locked, 0000))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	walker, err := NewWalker(nil)
	assert.NoError(err)

	var paths []string
	var walkErrs []*WalkError
	for candidate, err := range walker.Walk(root) {
		if err != nil {
			var walkErr *WalkError
			assert.True(errors.As(err, &walkErr))
			walkErrs = append(walkErrs, walkErr)
			continue
		}
		paths = append(paths, filepath.Base(candidate.Path))
	}

	assert.Len(walkErrs, 1)
	assert.Equal(locked, walkErrs[0].Path)
	assert.ElementsMatch([]string{"ok.txt", "later.txt"}, paths)
}
