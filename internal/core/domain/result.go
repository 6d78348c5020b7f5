package domain

import "time"

// CompilationResult aggregates the outcome of one scheduler run. Constructed
// once execution finishes; immutable afterwards.
type CompilationResult struct {
	// Success is true only when every unit compiled or was served from a
	// valid cache entry.
	Success bool

	TotalFiles    int
	CompiledFiles int

	// CachedFiles counts units served from the cache without invoking the
	// compiler. Cached units also count towards the success criterion.
	CachedFiles int

	FailedFiles int

	// Failures maps unit path to a human-readable reason. Units skipped
	// because a dependency failed appear here too; they were never attempted.
	Failures map[string]string
}

// PackageResult records the artifact packaging outcome.
type PackageResult struct {
	Success   bool
	Kind      string
	Artifacts int
}

// TestResult records the test census outcome.
type TestResult struct {
	Success     bool
	TotalTests  int
	PassedTests int
}

// BuildResult composes the per-phase outcomes of a full build invocation.
type BuildResult struct {
	Success     bool
	Compilation *CompilationResult
	Package     *PackageResult
	Test        *TestResult
	Duration    time.Duration
}
