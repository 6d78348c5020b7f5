package domain

import (
	"sort"
	"strings"
	"sync"
)

// DependencyType classifies where a declared dependency comes from.
type DependencyType string

const (
	// DependencyRegistry is a registry-style artifact fetched from a
	// repository endpoint. The default when a descriptor declares only a
	// version string.
	DependencyRegistry DependencyType = "registry"

	// DependencyLocal is an artifact referenced by a filesystem path.
	DependencyLocal DependencyType = "local"

	// DependencySystem is an artifact expected under the system library
	// directory.
	DependencySystem DependencyType = "system"
)

// VersionLatest is the floating version literal. It must be pinned to a
// concrete version before a ResolvedDependency is produced.
const VersionLatest = "latest"

// DependencyDescriptor is a declared requirement, read-only input supplied by
// configuration.
type DependencyDescriptor struct {
	Name    string
	Version string
	Type    DependencyType

	// Path is the artifact location for local-type descriptors.
	Path string
}

// ResolvedDependency is a descriptor mapped to a concrete, locally available
// artifact. Resolved is true only when LocalPath exists and is non-empty.
type ResolvedDependency struct {
	Name      string
	Version   string
	Type      DependencyType
	LocalPath string
	Resolved  bool
}

// ID returns the dependency's identity as name@version.
func (d ResolvedDependency) ID() string {
	return d.Name + "@" + d.Version
}

// DependencyResolution accumulates the outcome of resolving a descriptor
// batch. Every input descriptor lands in exactly one of Dependencies or
// Errors. Safe for concurrent writers during resolution; treated as
// immutable once handed to the scheduler.
type DependencyResolution struct {
	mu           sync.Mutex
	dependencies []ResolvedDependency
	errors       map[string]string
}

// NewDependencyResolution returns an empty resolution accumulator.
func NewDependencyResolution() *DependencyResolution {
	return &DependencyResolution{
		errors: make(map[string]string),
	}
}

// Add records a successfully resolved dependency.
func (r *DependencyResolution) Add(dep ResolvedDependency) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dependencies = append(r.dependencies, dep)
}

// AddError records a per-descriptor failure reason keyed by descriptor name.
func (r *DependencyResolution) AddError(name, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[name] = reason
}

// Dependencies returns the resolved dependencies sorted by identity.
func (r *DependencyResolution) Dependencies() []ResolvedDependency {
	r.mu.Lock()
	defer r.mu.Unlock()
	deps := make([]ResolvedDependency, len(r.dependencies))
	copy(deps, r.dependencies)
	sort.Slice(deps, func(i, j int) bool { return deps[i].ID() < deps[j].ID() })
	return deps
}

// Errors returns a copy of the failure map.
func (r *DependencyResolution) Errors() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	errs := make(map[string]string, len(r.errors))
	for k, v := range r.errors {
		errs[k] = v
	}
	return errs
}

// SuccessCount returns the number of resolved dependencies.
func (r *DependencyResolution) SuccessCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dependencies)
}

// ErrorCount returns the number of failed descriptors.
func (r *DependencyResolution) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors)
}

// HasErrors reports whether any descriptor failed to resolve.
func (r *DependencyResolution) HasErrors() bool {
	return r.ErrorCount() > 0
}

// Classpath returns the local paths of all resolved artifacts, sorted.
func (r *DependencyResolution) Classpath() []string {
	deps := r.Dependencies()
	paths := make([]string, 0, len(deps))
	for _, d := range deps {
		if d.Resolved {
			paths = append(paths, d.LocalPath)
		}
	}
	return paths
}

// CanonicalID returns a deterministic serialization of the dependency set:
// sorted name@version identities joined by commas. Fingerprints hash this, so
// it must be stable across runs and processes.
func (r *DependencyResolution) CanonicalID() string {
	deps := r.Dependencies()
	ids := make([]string, len(deps))
	for i, d := range deps {
		ids[i] = d.ID()
	}
	return strings.Join(ids, ",")
}
