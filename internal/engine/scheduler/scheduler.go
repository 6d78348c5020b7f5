// Package scheduler drives compilation of the build graph with bounded
// parallelism, ordering, and at-most-once-per-fingerprint semantics.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"

	"github.com/yasmramos/forge/internal/core/domain"
	"github.com/yasmramos/forge/internal/core/ports"
)

// UnitStatus represents the status of a compilation unit.
type UnitStatus string

const (
	// StatusPending indicates the unit is waiting to be compiled.
	StatusPending UnitStatus = "Pending"
	// StatusRunning indicates the unit is currently compiling.
	StatusRunning UnitStatus = "Running"
	// StatusCompleted indicates the unit compiled successfully.
	StatusCompleted UnitStatus = "Completed"
	// StatusCached indicates the unit was served from the artifact cache.
	StatusCached UnitStatus = "Cached"
	// StatusFailed indicates the unit's compilation failed.
	StatusFailed UnitStatus = "Failed"
	// StatusSkipped indicates the unit was never attempted because one of its
	// graph predecessors failed.
	StatusSkipped UnitStatus = "Skipped"
)

// Options carries the per-invocation inputs of a scheduler run.
type Options struct {
	// OutputDir receives the compiler's on-disk output.
	OutputDir string

	// CompilerConfig is a canonical serialization of compiler settings; it
	// feeds the fingerprint so config changes invalidate cached artifacts.
	CompilerConfig string

	// Parallelism bounds concurrently running compiles. Values below one are
	// treated as one.
	Parallelism int
}

// Scheduler executes build graphs. Safe for one run at a time per instance;
// the singleflight group spans runs so racing fingerprints coalesce.
type Scheduler struct {
	compiler ports.Compiler
	cache    ports.ArtifactCache
	logger   ports.Logger
	tracer   ports.Tracer

	group singleflight.Group

	mu     sync.RWMutex
	status map[string]UnitStatus
}

// New creates a Scheduler.
func New(compiler ports.Compiler, cache ports.ArtifactCache, logger ports.Logger, tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		compiler: compiler,
		cache:    cache,
		logger:   logger,
		tracer:   tracer,
		status:   make(map[string]UnitStatus),
	}
}

// Build compiles the entire snapshot. A graph cycle is a fatal error; a
// failing unit is not — it is recorded in the result and its dependents are
// skipped while independent units continue.
func (s *Scheduler) Build(ctx context.Context, snapshot *domain.ProjectSnapshot, resolution *domain.DependencyResolution, opts Options) (*domain.CompilationResult, error) {
	graph := domain.NewBuildGraph(snapshot)
	if err := graph.Validate(); err != nil {
		return nil, err
	}
	return s.run(ctx, graph, allPaths(graph), resolution, opts)
}

// BuildIncremental compiles only the change set plus the transitive
// dependents of changed units: their inputs changed even when their files did
// not. Because a dependent's own file can be untouched, its fingerprint still
// matches the cached artifact; those entries are evicted up front so the
// dependent recompiles against the changed inputs. Edges are honored within
// the targeted set.
func (s *Scheduler) BuildIncremental(ctx context.Context, snapshot *domain.ProjectSnapshot, changes *domain.ChangeSet, resolution *domain.DependencyResolution, opts Options) (*domain.CompilationResult, error) {
	graph := domain.NewBuildGraph(snapshot)
	if err := graph.Validate(); err != nil {
		return nil, err
	}

	targets := make(map[string]bool, len(changes.Units))
	seeds := make([]string, 0, len(changes.Units))
	for i := range changes.Units {
		targets[changes.Units[i].Path] = true
		seeds = append(seeds, changes.Units[i].Path)
	}

	depSetID := resolution.CanonicalID()
	for path := range graph.TransitiveDependents(seeds) {
		targets[path] = true
		unit, ok := graph.Unit(path)
		if !ok {
			continue
		}
		fp := domain.NewFingerprint(unit, depSetID, opts.CompilerConfig)
		if err := s.cache.Invalidate(fp); err != nil {
			s.logger.Warn("failed to evict stale artifact for " + path + ": " + err.Error())
		}
	}

	return s.run(ctx, graph, targets, resolution, opts)
}

// Status returns the last observed status of a unit.
func (s *Scheduler) Status(path string) UnitStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status[path]
}

func (s *Scheduler) updateStatus(path string, status UnitStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[path] = status
}

func allPaths(graph *domain.BuildGraph) map[string]bool {
	targets := make(map[string]bool, graph.UnitCount())
	for _, p := range graph.Paths() {
		targets[p] = true
	}
	return targets
}

type result struct {
	path   string
	cached bool
	err    error
}

type runState struct {
	graph    *domain.BuildGraph
	targets  map[string]bool
	inDegree map[string]int
	tainted  map[string]string // unit path -> failed predecessor path
	ready    []string
	active   int

	resultsCh   chan result
	parallelism int
	ctx         context.Context

	compiled int
	cached   int
	failures map[string]string

	s *Scheduler
}

func (s *Scheduler) run(ctx context.Context, graph *domain.BuildGraph, targets map[string]bool, resolution *domain.DependencyResolution, opts Options) (*domain.CompilationResult, error) {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}

	state := s.newRunState(ctx, graph, targets, opts.Parallelism)
	classpath := resolution.Classpath()
	depSetID := resolution.CanonicalID()

	for !state.isDone() {
		state.schedule(classpath, depSetID, opts)

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil && state.active == 0 {
			return state.result(), state.ctx.Err()
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
		}
	}

	if state.ctx.Err() != nil {
		return state.result(), state.ctx.Err()
	}
	return state.result(), nil
}

func (s *Scheduler) newRunState(ctx context.Context, graph *domain.BuildGraph, targets map[string]bool, parallelism int) *runState {
	inDegree := make(map[string]int, len(targets))
	for path := range targets {
		degree := 0
		for _, dep := range graph.Dependencies(path) {
			if targets[dep] {
				degree++
			}
		}
		inDegree[path] = degree
		s.updateStatus(path, StatusPending)
	}

	var ready []string
	for _, path := range graph.Paths() {
		if targets[path] && inDegree[path] == 0 {
			ready = append(ready, path)
		}
	}

	return &runState{
		graph:       graph,
		targets:     targets,
		inDegree:    inDegree,
		tainted:     make(map[string]string),
		ready:       ready,
		resultsCh:   make(chan result, parallelism),
		parallelism: parallelism,
		ctx:         ctx,
		failures:    make(map[string]string),
		s:           s,
	}
}

func (state *runState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *runState) schedule(classpath []string, depSetID string, opts Options) {
	for len(state.ready) > 0 && state.active < state.parallelism && state.ctx.Err() == nil {
		path := state.ready[0]
		state.ready = state.ready[1:]

		if failedDep, ok := state.tainted[path]; ok {
			state.skip(path, failedDep)
			continue
		}

		unit, ok := state.graph.Unit(path)
		if !ok {
			state.failures[path] = domain.ErrUnitNotFound.Error()
			state.releaseDependents(path)
			continue
		}

		state.active++
		state.s.updateStatus(path, StatusRunning)

		go func(u *domain.CompilationUnit) {
			cached, err := state.s.compileOne(state.ctx, u, classpath, depSetID, opts)
			state.resultsCh <- result{path: u.Path, cached: cached, err: err}
		}(unit)
	}
}

// skip records a never-attempted unit as failed and propagates the taint so
// its own dependents are skipped too.
func (state *runState) skip(path, failedDep string) {
	state.s.updateStatus(path, StatusSkipped)
	state.failures[path] = zerr.Wrap(domain.ErrDependencyFailed, failedDep).Error()
	state.taintDependents(path)
	state.releaseDependents(path)
}

func (state *runState) taintDependents(path string) {
	for _, dep := range state.graph.Dependents(path) {
		if state.targets[dep] {
			if _, already := state.tainted[dep]; !already {
				state.tainted[dep] = path
			}
		}
	}
}

func (state *runState) releaseDependents(path string) {
	for _, dep := range state.graph.Dependents(path) {
		if !state.targets[dep] {
			continue
		}
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.ready = append(state.ready, dep)
		}
	}
}

func (state *runState) handleResult(res result) {
	state.active--

	if res.err != nil {
		state.s.updateStatus(res.path, StatusFailed)
		state.failures[res.path] = res.err.Error()
		state.s.logger.Error(zerr.With(zerr.Wrap(res.err, "unit compilation failed"), "unit", res.path))
		state.taintDependents(res.path)
		state.releaseDependents(res.path)
		return
	}

	if res.cached {
		state.cached++
		state.s.updateStatus(res.path, StatusCached)
	} else {
		state.compiled++
		state.s.updateStatus(res.path, StatusCompleted)
	}
	state.releaseDependents(res.path)
}

func (state *runState) result() *domain.CompilationResult {
	return &domain.CompilationResult{
		Success:       len(state.failures) == 0,
		TotalFiles:    len(state.targets),
		CompiledFiles: state.compiled,
		CachedFiles:   state.cached,
		FailedFiles:   len(state.failures),
		Failures:      state.failures,
	}
}

// compileOne runs the per-unit compile step. The singleflight group keyed by
// fingerprint guarantees that two workers racing on the same fingerprint
// never both invoke the compiler; the second observes the first's outcome.
func (s *Scheduler) compileOne(ctx context.Context, unit *domain.CompilationUnit, classpath []string, depSetID string, opts Options) (bool, error) {
	fp := domain.NewFingerprint(unit, depSetID, opts.CompilerConfig)

	v, err, _ := s.group.Do(fp.String(), func() (any, error) {
		ctx, span := s.tracer.Start(ctx, "compile_unit")
		defer span.End()
		span.SetAttribute("unit", unit.Path)

		if s.cache.IsValid(fp, unit.ModTime) {
			span.SetAttribute("cache_hit", true)
			return true, nil
		}
		span.SetAttribute("cache_hit", false)

		artifact, diagnostics, err := s.compiler.CompileUnit(ctx, unit, classpath, opts.OutputDir)
		if err != nil {
			span.RecordError(err)
			if diagnostics != "" {
				err = zerr.With(err, "diagnostics", diagnostics)
			}
			return false, err
		}

		entry := &domain.CacheEntry{
			Artifact:      artifact,
			SourceModTime: unit.ModTime,
			CreatedAt:     time.Now(),
			Metadata:      map[string]string{"package": unit.Package.String()},
		}
		if err := s.cache.Put(fp, entry); err != nil {
			return false, zerr.Wrap(err, "failed to cache artifact")
		}
		return false, nil
	})
	if err != nil {
		return false, err
	}

	cached, ok := v.(bool)
	if !ok {
		return false, errors.New("unexpected singleflight result type")
	}
	return cached, nil
}
