package analyzer_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasmramos/forge/internal/adapters/fs"
	"github.com/yasmramos/forge/internal/analyzer"
	"github.com/yasmramos/forge/internal/core/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(error) {}

func newAnalyzer() *analyzer.Analyzer {
	return analyzer.New(fs.NewWalker(), fs.NewHasher(), nopLogger{})
}

func writeSource(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const appSource = `package com.acme;

import java.util.List;
import com.acme.util.Strings;

public class App {
	public static void main(String[] args) {
		for (int i = 0; i < args.length; i++) {
			if (args[i].isEmpty()) {
				continue;
			}
		}
	}
}
`

func TestAnalyze_EmptyProject(t *testing.T) {
	root := t.TempDir()

	snapshot, err := newAnalyzer().Analyze([]string{root})
	require.NoError(t, err)

	assert.Empty(t, snapshot.Units)
	assert.Zero(t, snapshot.TotalLines)
	assert.Zero(t, snapshot.ComplexityScore)
	assert.Empty(t, snapshot.Warnings)
}

func TestAnalyze_ExtractsDeclarations(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "com/acme/App.java", appSource)

	snapshot, err := newAnalyzer().Analyze([]string{root})
	require.NoError(t, err)
	require.Len(t, snapshot.Units, 1)

	unit := snapshot.Units[0]
	assert.Equal(t, "com.acme", unit.Package.String())
	require.Len(t, unit.Imports, 2)
	assert.Equal(t, "java.util.List", unit.Imports[0].String())
	assert.Equal(t, "com.acme.util.Strings", unit.Imports[1].String())
	assert.NotZero(t, unit.ContentHash)
	assert.Positive(t, unit.Lines)
	assert.Positive(t, unit.Complexity)
	assert.False(t, unit.IsTest)
	assert.Positive(t, snapshot.EstimatedDuration)
}

func TestAnalyze_ComplexityWeights(t *testing.T) {
	root := t.TempDir()
	// 2 method modifiers, 1 loop, 1 conditional, 1 try block.
	writeSource(t, root, "C.java", `package p;
public class C {
	private void run() {
		for (int i = 0; i < 3; i++) {}
		if (true) {}
		try { } catch (Exception e) {}
	}
}
`)

	snapshot, err := newAnalyzer().Analyze([]string{root})
	require.NoError(t, err)
	require.Len(t, snapshot.Units, 1)

	// 2*2.0 + 1*3.0 + 1*2.0 + 1*1.5
	assert.InDelta(t, 10.5, snapshot.Units[0].Complexity, 0.001)
	assert.InDelta(t, 10.5, snapshot.ComplexityScore, 0.001)
}

func TestAnalyze_DeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "b/B.java", "package b;\n")
	writeSource(t, root, "a/A.java", "package a;\n")
	writeSource(t, root, "C.java", "package c;\n")

	first, err := newAnalyzer().Analyze([]string{root})
	require.NoError(t, err)
	second, err := newAnalyzer().Analyze([]string{root})
	require.NoError(t, err)

	var firstPaths, secondPaths []string
	for _, u := range first.Units {
		firstPaths = append(firstPaths, u.Path)
	}
	for _, u := range second.Units {
		secondPaths = append(secondPaths, u.Path)
	}
	assert.Equal(t, firstPaths, secondPaths)
	require.Len(t, firstPaths, 3)
	assert.Equal(t, "C.java", filepath.Base(firstPaths[0]))
}

func TestAnalyze_MissingRootIsWarning(t *testing.T) {
	existing := t.TempDir()
	writeSource(t, existing, "A.java", "package a;\n")

	snapshot, err := newAnalyzer().Analyze([]string{filepath.Join(existing, "no-such-root"), existing})
	require.NoError(t, err)

	assert.Len(t, snapshot.Units, 1)
	require.Len(t, snapshot.Warnings, 1)
	assert.Contains(t, snapshot.Warnings[0], "source root not found")
}

func TestAnalyze_TestFileCensus(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "Calculator.java", "package p;\n")
	writeSource(t, root, "CalculatorTest.java", "package p;\n")
	writeSource(t, root, "test/Helper.java", "package p;\n")

	snapshot, err := newAnalyzer().Analyze([]string{root})
	require.NoError(t, err)

	assert.Len(t, snapshot.Units, 3)
	assert.Len(t, snapshot.TestUnits(), 2)
}

func TestAnalyze_PackageCounts(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "a/A.java", "package com.acme;\n")
	writeSource(t, root, "b/B.java", "package com.acme;\n")
	writeSource(t, root, "c/C.java", "package com.acme.util;\n")

	snapshot, err := newAnalyzer().Analyze([]string{root})
	require.NoError(t, err)

	counts := snapshot.PackageCounts()
	assert.Equal(t, 2, counts["com.acme"])
	assert.Equal(t, 1, counts["com.acme.util"])
}

func TestAnalyzeChanges_NilWatermarkMarksEverything(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "A.java", "package a;\n")
	writeSource(t, root, "B.java", "package b;\n")

	cs, err := newAnalyzer().AnalyzeChanges([]string{root}, nil)
	require.NoError(t, err)

	assert.Len(t, cs.Units, 2)
	assert.False(t, cs.Empty())
}

func TestAnalyzeChanges_UnchangedProjectIsEmpty(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "A.java", "package a;\n")

	a := newAnalyzer()
	snapshot, err := a.Analyze([]string{root})
	require.NoError(t, err)
	wm := domain.NewWatermark(snapshot)

	cs, err := a.AnalyzeChanges([]string{root}, wm)
	require.NoError(t, err)
	assert.True(t, cs.Empty())
}

func TestAnalyzeChanges_DetectsModification(t *testing.T) {
	root := t.TempDir()
	path := writeSource(t, root, "A.java", "package a;\n")
	writeSource(t, root, "B.java", "package b;\n")

	a := newAnalyzer()
	snapshot, err := a.Analyze([]string{root})
	require.NoError(t, err)
	wm := domain.NewWatermark(snapshot)

	require.NoError(t, os.WriteFile(path, []byte("package a; // changed\n"), 0o644))
	future := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	cs, err := a.AnalyzeChanges([]string{root}, wm)
	require.NoError(t, err)

	require.Len(t, cs.Units, 1)
	assert.Equal(t, filepath.Base(cs.Units[0].Path), "A.java")
	assert.True(t, cs.Contains(cs.Units[0].Path))
}
