// Package analyzer discovers compilation units and computes change sets.
package analyzer

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/yasmramos/forge/internal/adapters/fs"
	"github.com/yasmramos/forge/internal/core/domain"
	"github.com/yasmramos/forge/internal/core/ports"
)

// SourceExt is the source file extension the analyzer discovers.
const SourceExt = ".java"

// Analyzer walks source roots and produces project snapshots.
type Analyzer struct {
	walker *fs.Walker
	hasher ports.Hasher
	logger ports.Logger
}

// New creates an Analyzer.
func New(walker *fs.Walker, hasher ports.Hasher, logger ports.Logger) *Analyzer {
	return &Analyzer{
		walker: walker,
		hasher: hasher,
		logger: logger,
	}
}

// Analyze walks the source roots and returns a snapshot of every discovered
// unit plus aggregate metrics. Missing roots are recorded as warnings, never
// errors. A file that cannot be read stays in the snapshot but contributes
// nothing to metrics.
func (a *Analyzer) Analyze(roots []string) (*domain.ProjectSnapshot, error) {
	snapshot := &domain.ProjectSnapshot{}

	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			warning := "source root not found: " + root
			a.logger.Warn(warning)
			snapshot.Warnings = append(snapshot.Warnings, warning)
			continue
		}

		for path := range a.walker.WalkSources(root, SourceExt) {
			unit, warning := a.analyzeUnit(root, path)
			if warning != "" {
				a.logger.Warn(warning)
				snapshot.Warnings = append(snapshot.Warnings, warning)
			}
			snapshot.Units = append(snapshot.Units, unit)
		}
	}

	for i := range snapshot.Units {
		snapshot.TotalLines += snapshot.Units[i].Lines
		snapshot.ComplexityScore += snapshot.Units[i].Complexity
	}
	snapshot.EstimatedDuration = domain.EstimateDuration(len(snapshot.Units), snapshot.ComplexityScore)

	return snapshot, nil
}

// AnalyzeChanges analyzes the roots and returns the subset of units that
// differ from the watermark. A nil watermark marks everything as changed.
func (a *Analyzer) AnalyzeChanges(roots []string, wm *domain.Watermark) (*domain.ChangeSet, error) {
	snapshot, err := a.Analyze(roots)
	if err != nil {
		return nil, err
	}
	return Changes(snapshot, wm), nil
}

// Changes computes the change set of an already-analyzed snapshot against a
// watermark. The result is always a subset of the snapshot's units.
func Changes(snapshot *domain.ProjectSnapshot, wm *domain.Watermark) *domain.ChangeSet {
	cs := &domain.ChangeSet{}
	for i := range snapshot.Units {
		if wm.Changed(&snapshot.Units[i]) {
			cs.Units = append(cs.Units, snapshot.Units[i])
		}
	}
	return cs
}

// analyzeUnit builds one CompilationUnit. The returned warning is non-empty
// when the file was discovered but could not be read. The test-file heuristic
// applies to the root-relative path, so the project's location on disk never
// influences the census.
func (a *Analyzer) analyzeUnit(root, path string) (domain.CompilationUnit, string) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	unit := domain.CompilationUnit{
		Path:   path,
		IsTest: domain.IsTestPath(rel),
	}

	if info, err := os.Stat(path); err == nil {
		unit.ModTime = info.ModTime()
		unit.Size = info.Size()
	}

	content, err := os.ReadFile(path) //nolint:gosec // Path comes from the source walk
	if err != nil {
		return unit, "failed to read source file: " + path
	}

	if hash, err := a.hasher.ContentHash(path); err == nil {
		unit.ContentHash = hash
	} else {
		return unit, "failed to hash source file: " + path
	}

	unit.Lines = countLines(content)
	unit.Complexity = scoreComplexity(content)
	scanDeclarations(&unit, content)

	return unit, ""
}

// scanDeclarations extracts the package name and import identifiers by
// line-oriented scanning. Deliberately not a parse; extraction failures just
// leave the fields empty.
func scanDeclarations(unit *domain.CompilationUnit, content []byte) {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if unit.Package.String() == "" {
			if decl, ok := strings.CutPrefix(line, "package "); ok {
				unit.Package = domain.NewInternedString(trimDecl(decl))
				continue
			}
		}

		if decl, ok := strings.CutPrefix(line, "import "); ok {
			decl = strings.TrimPrefix(decl, "static ")
			if imp := trimDecl(decl); imp != "" {
				unit.Imports = append(unit.Imports, domain.NewInternedString(imp))
			}
		}
	}
}

func trimDecl(decl string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(decl), ";"))
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}

// Complexity weights per construct category.
const (
	methodWeight      = 2.0
	loopWeight        = 3.0
	conditionalWeight = 2.0
	tryWeight         = 1.5
)

// scoreComplexity counts method signatures, loops, conditionals, and
// exception blocks with substring heuristics and combines them with fixed
// weights. Diagnostic input for the build-time estimate only.
func scoreComplexity(content []byte) float64 {
	count := func(tokens ...string) int {
		n := 0
		for _, tok := range tokens {
			n += bytes.Count(content, []byte(tok))
		}
		return n
	}

	methods := count("public ", "private ", "protected ")
	loops := count("for (", "while (", "do {")
	conditionals := count("if (", "switch (")
	tryBlocks := count("try {")

	return float64(methods)*methodWeight +
		float64(loops)*loopWeight +
		float64(conditionals)*conditionalWeight +
		float64(tryBlocks)*tryWeight
}
