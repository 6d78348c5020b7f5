package domain

import (
	"sort"
	"strings"

	"go.trai.ch/zerr"
)

// BuildGraph is the directed graph of compilation units connected by inferred
// import edges. Built fresh per build invocation and read-only during
// execution, so it needs no locking.
type BuildGraph struct {
	units map[string]*CompilationUnit

	// dependencies maps a unit path to the paths of units whose output it
	// needs (incoming edges). dependents is the reverse adjacency.
	dependencies map[string][]string
	dependents   map[string][]string

	// duplicates holds paths that appeared more than once in the snapshot;
	// Validate reports them as fatal.
	duplicates []string
}

// NewBuildGraph derives the graph from a snapshot. A unit A depends on unit B
// when one of A's imports references B's declared package: an exact match, or
// a wildcard import (`a.b.*`) of that package. Imports that match no unit in
// the snapshot are external and produce no edge.
func NewBuildGraph(snapshot *ProjectSnapshot) *BuildGraph {
	g := &BuildGraph{
		units:        make(map[string]*CompilationUnit, len(snapshot.Units)),
		dependencies: make(map[string][]string),
		dependents:   make(map[string][]string),
	}

	// Units providing each package, in discovery order.
	providers := make(map[string][]string)
	for i := range snapshot.Units {
		u := &snapshot.Units[i]
		if _, exists := g.units[u.Path]; exists {
			g.duplicates = append(g.duplicates, u.Path)
			continue
		}
		g.units[u.Path] = u
		if pkg := u.Package.String(); pkg != "" {
			providers[pkg] = append(providers[pkg], u.Path)
		}
	}

	for i := range snapshot.Units {
		u := &snapshot.Units[i]
		seen := make(map[string]bool)
		for _, imp := range u.Imports {
			pkg := importedPackage(imp.String())
			for _, provider := range providers[pkg] {
				if provider == u.Path || seen[provider] {
					continue
				}
				seen[provider] = true
				g.dependencies[u.Path] = append(g.dependencies[u.Path], provider)
				g.dependents[provider] = append(g.dependents[provider], u.Path)
			}
		}
		sort.Strings(g.dependencies[u.Path])
	}
	for path := range g.dependents {
		sort.Strings(g.dependents[path])
	}

	return g
}

// importedPackage maps an import identifier to the package it targets.
// `a.b.C` imports a type from package `a.b`; `a.b.*` imports package `a.b`.
// An identifier without a dot is taken as a bare package name.
func importedPackage(imp string) string {
	if strings.HasSuffix(imp, ".*") {
		return strings.TrimSuffix(imp, ".*")
	}
	idx := strings.LastIndexByte(imp, '.')
	if idx < 0 {
		return imp
	}
	return imp[:idx]
}

// UnitCount returns the number of nodes.
func (g *BuildGraph) UnitCount() int { return len(g.units) }

// Unit returns the unit for a path.
func (g *BuildGraph) Unit(path string) (*CompilationUnit, bool) {
	u, ok := g.units[path]
	return u, ok
}

// Dependencies returns the paths the given unit depends on.
func (g *BuildGraph) Dependencies(path string) []string {
	return g.dependencies[path]
}

// Dependents returns the paths that depend on the given unit.
func (g *BuildGraph) Dependents(path string) []string {
	return g.dependents[path]
}

// Paths returns all node paths, sorted.
func (g *BuildGraph) Paths() []string {
	paths := make([]string, 0, len(g.units))
	for p := range g.units {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// TransitiveDependents returns the closure of units reachable from the given
// seed paths along dependent edges, excluding the seeds themselves.
func (g *BuildGraph) TransitiveDependents(seeds []string) map[string]bool {
	closure := make(map[string]bool)
	queue := make([]string, len(seeds))
	copy(queue, seeds)

	seen := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		seen[s] = true
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dep := range g.dependents[current] {
			if !seen[dep] {
				seen[dep] = true
				closure[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	return closure
}

// Validate checks the graph for duplicate unit paths and import cycles, the
// latter with a depth-first topological sort. A well-formed project is acyclic
// with unique paths; a violation is fatal for the build invocation and the
// error names the implicated units.
func (g *BuildGraph) Validate() error {
	if len(g.duplicates) > 0 {
		return zerr.With(zerr.Wrap(ErrUnitAlreadyExists, g.duplicates[0]), "path", g.duplicates[0])
	}
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(g.units))
	var path []string

	var visit func(p string) error
	visit = func(p string) error {
		state[p] = visiting
		path = append(path, p)

		for _, dep := range g.dependencies[p] {
			switch state[dep] {
			case visiting:
				return g.cycleError(path, dep)
			case unvisited:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		state[p] = done
		path = path[:len(path)-1]
		return nil
	}

	for _, p := range g.Paths() {
		if state[p] == unvisited {
			if err := visit(p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *BuildGraph) cycleError(path []string, repeated string) error {
	start := 0
	for i, p := range path {
		if p == repeated {
			start = i
			break
		}
	}
	cycle := strings.Join(append(path[start:], repeated), " -> ")
	return zerr.With(zerr.Wrap(ErrCycleDetected, cycle), "cycle", cycle)
}
