package fs_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasmramos/forge/internal/adapters/fs"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
}

func TestWalkSources(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b/Second.java")
	writeFile(t, root, "a/First.java")
	writeFile(t, root, "a/README.md")
	writeFile(t, root, ".git/objects/Ignored.java")

	walker := fs.NewWalker()
	got := slices.Collect(walker.WalkSources(root, ".java"))

	want := []string{
		filepath.Join(root, "a", "First.java"),
		filepath.Join(root, "b", "Second.java"),
	}
	assert.Equal(t, want, got)
}

func TestWalkSources_EarlyStop(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "A.java")
	writeFile(t, root, "B.java")
	writeFile(t, root, "C.java")

	walker := fs.NewWalker()
	var got []string
	for path := range walker.WalkSources(root, ".java") {
		got = append(got, path)
		if len(got) == 2 {
			break
		}
	}
	assert.Len(t, got, 2)
}

func TestWalkSources_MissingRootYieldsNothing(t *testing.T) {
	walker := fs.NewWalker()
	got := slices.Collect(walker.WalkSources(filepath.Join(t.TempDir(), "nope"), ".java"))
	assert.Empty(t, got)
}

func TestContentHash(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "A.java")
	content := []byte("package a;\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	hasher := fs.NewHasher()
	got, err := hasher.ContentHash(path)
	require.NoError(t, err)
	assert.Equal(t, xxhash.Sum64(content), got)
}

func TestContentHash_MissingFile(t *testing.T) {
	hasher := fs.NewHasher()
	_, err := hasher.ContentHash(filepath.Join(t.TempDir(), "nope.java"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open file")
}
