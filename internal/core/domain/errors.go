package domain

import "go.trai.ch/zerr"

var (
	// ErrCycleDetected is returned when the build graph contains an import cycle.
	ErrCycleDetected = zerr.New("import cycle detected")

	// ErrUnitAlreadyExists is returned when two compilation units share a source path.
	ErrUnitAlreadyExists = zerr.New("compilation unit already exists")

	// ErrUnitNotFound is returned when a build graph lookup misses.
	ErrUnitNotFound = zerr.New("compilation unit not found")

	// ErrUnresolvedVersion is returned when a "latest" version cannot be pinned
	// to a concrete version.
	ErrUnresolvedVersion = zerr.New("cannot pin requested version")

	// ErrArtifactMissing is returned when a dependency claims resolution but its
	// local artifact does not exist or is empty.
	ErrArtifactMissing = zerr.New("dependency artifact missing or empty")

	// ErrUnknownDependencyType is returned for descriptor types the resolver
	// does not understand.
	ErrUnknownDependencyType = zerr.New("unknown dependency type")

	// ErrDependencyFailed marks a unit that was skipped because one of its
	// graph predecessors failed to compile.
	ErrDependencyFailed = zerr.New("skipped: dependency failed to compile")

	// ErrOutputDirCreate is returned when the compiler output directory cannot
	// be created. This is fatal for the build invocation.
	ErrOutputDirCreate = zerr.New("cannot create output directory")

	// ErrNoSourceRoots is returned when the configuration yields no source roots.
	ErrNoSourceRoots = zerr.New("no source roots configured")

	// ErrCompilationFailed is the generic wrapper for an external compiler failure.
	ErrCompilationFailed = zerr.New("compilation failed")

	// ErrBuildFailed signals a build invocation that completed with per-unit
	// failures. The CLI maps it to a non-zero exit code; the per-unit reasons
	// have already been reported.
	ErrBuildFailed = zerr.New("build failed")
)
