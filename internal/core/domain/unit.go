package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// CompilationUnit is a single source file discovered by the analyzer.
// Identity is the absolute source path. The analyzer owns these values;
// the scheduler only ever reads them.
type CompilationUnit struct {
	// Path is the absolute path of the source file.
	Path string

	// Package is the declared package name, extracted heuristically from the
	// first `package` declaration. Empty when extraction failed.
	Package InternedString

	// Imports holds the import identifiers extracted by line scanning.
	// Best-effort only; never treated as a correctness oracle.
	Imports []InternedString

	// ContentHash is the xxhash of the file content. Zero when the file was
	// unreadable at analysis time.
	ContentHash uint64

	ModTime time.Time
	Size    int64

	// Lines and Complexity feed the snapshot's build-time estimate. Both are
	// zero for unreadable files, which stay discovered but drop out of metrics.
	Lines      int
	Complexity float64

	// IsTest marks files whose name or directory suggests a test source.
	IsTest bool
}

// Metered reports whether the unit contributed to snapshot metrics.
// Unreadable files are discovered but carry no content hash.
func (u *CompilationUnit) Metered() bool {
	return u.ContentHash != 0
}

// Estimation constants, applied per unit and per complexity point.
const (
	estimateBasePerUnit       = 50 * time.Millisecond
	estimatePerComplexityUnit = 10 * time.Millisecond
)

// ProjectSnapshot is the ordered set of compilation units produced by one
// analysis pass, plus aggregate metrics. Immutable once returned.
type ProjectSnapshot struct {
	// Units in discovery order: roots in configured order, paths sorted
	// lexically within each root.
	Units []CompilationUnit

	TotalLines      int
	ComplexityScore float64

	// EstimatedDuration is a diagnostic estimate only, never a correctness input.
	EstimatedDuration time.Duration

	// Warnings records non-fatal analysis problems (missing roots,
	// unreadable files).
	Warnings []string
}

// Unit returns the unit with the given path, or nil.
func (s *ProjectSnapshot) Unit(path string) *CompilationUnit {
	for i := range s.Units {
		if s.Units[i].Path == path {
			return &s.Units[i]
		}
	}
	return nil
}

// TestUnits returns the units flagged as test sources.
func (s *ProjectSnapshot) TestUnits() []CompilationUnit {
	var tests []CompilationUnit
	for _, u := range s.Units {
		if u.IsTest {
			tests = append(tests, u)
		}
	}
	return tests
}

// PackageCounts returns the number of units per declared package.
func (s *ProjectSnapshot) PackageCounts() map[string]int {
	counts := make(map[string]int)
	for _, u := range s.Units {
		if pkg := u.Package.String(); pkg != "" {
			counts[pkg]++
		}
	}
	return counts
}

// EstimateDuration derives the snapshot's build-time estimate from its unit
// count and complexity score.
func EstimateDuration(unitCount int, complexity float64) time.Duration {
	return time.Duration(unitCount)*estimateBasePerUnit +
		time.Duration(complexity*float64(estimatePerComplexityUnit))
}

// ChangeSet is the subset of a snapshot whose units differ from the last
// recorded watermark. Always a subset of the snapshot it was derived from.
type ChangeSet struct {
	Units []CompilationUnit
}

// Empty reports whether nothing changed since the watermark.
func (c *ChangeSet) Empty() bool {
	return len(c.Units) == 0
}

// Contains reports whether the change set includes the given unit path.
func (c *ChangeSet) Contains(path string) bool {
	for i := range c.Units {
		if c.Units[i].Path == path {
			return true
		}
	}
	return false
}

// IsTestPath applies the test-file heuristic to a root-relative source path:
// the file name or any parent directory segment mentioning "test" or "spec"
// marks it. Callers pass paths relative to the source root so the project's
// location on disk never participates.
func IsTestPath(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if strings.Contains(base, "test") || strings.Contains(base, "spec") {
		return true
	}
	return strings.Contains(strings.ToLower(filepath.Dir(path)), "test")
}
