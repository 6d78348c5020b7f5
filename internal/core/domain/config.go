package domain

// BuildSettings controls scheduler behaviour.
type BuildSettings struct {
	// Threads bounds the worker pool. Zero means the host's available
	// parallelism.
	Threads int

	// Parallel enables concurrent execution of independent graph nodes.
	// When false the pool size is one.
	Parallel bool

	// Incremental restricts builds to the change set plus its transitive
	// dependents.
	Incremental bool
}

// ProjectConfig is the already-parsed configuration a build invocation runs
// against. Config-file parsing lives in the config adapter.
type ProjectConfig struct {
	Name    string
	Version string

	// SourceRoots are the filesystem roots the analyzer walks. Non-existent
	// roots are skipped with a warning.
	SourceRoots []string

	// OutputDir receives compiled artifacts. Failure to create it aborts the
	// build invocation.
	OutputDir string

	// Registry is the artifact repository endpoint for registry-type
	// dependencies.
	Registry string

	// SystemLibDir is where system-type dependencies are expected.
	SystemLibDir string

	// Dependencies are the declared requirements, keyed by name.
	Dependencies []DependencyDescriptor

	Build BuildSettings
}
