// Package fs provides filesystem adapters for source discovery and hashing.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"
)

// Walker discovers source files under a root.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkSources yields every regular file under root whose name ends in ext, in
// lexical path order. filepath.WalkDir visits entries lexically, so the yield
// order is deterministic across runs. VCS metadata directories are skipped.
func (w *Walker) WalkSources(root, ext string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable subtree, skip
			}

			if d.IsDir() {
				if name := d.Name(); name == ".git" || name == ".jj" {
					return filepath.SkipDir
				}
				return nil
			}

			if !strings.HasSuffix(d.Name(), ext) {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}
