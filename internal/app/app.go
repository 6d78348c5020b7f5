// Package app implements the build pipeline facade for forge.
package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/zerr"

	"github.com/yasmramos/forge/internal/analyzer"
	"github.com/yasmramos/forge/internal/core/domain"
	"github.com/yasmramos/forge/internal/core/ports"
	"github.com/yasmramos/forge/internal/engine/scheduler"
	"github.com/yasmramos/forge/internal/resolver"
)

// PackageKind is the artifact kind reported for compiled output.
const PackageKind = "jar"

// App wires the analyzer, resolver, cache, and scheduler into the build
// operations the CLI exposes.
type App struct {
	configLoader ports.ConfigLoader
	analyzer     *analyzer.Analyzer
	resolver     *resolver.Resolver
	scheduler    *scheduler.Scheduler
	cache        ports.ArtifactCache
	store        ports.WatermarkStore
	logger       ports.Logger
	tracer       ports.Tracer

	workDir string
}

// New creates a new App instance rooted at the current directory.
func New(
	loader ports.ConfigLoader,
	an *analyzer.Analyzer,
	res *resolver.Resolver,
	sched *scheduler.Scheduler,
	cache ports.ArtifactCache,
	store ports.WatermarkStore,
	logger ports.Logger,
	tracer ports.Tracer,
) *App {
	return &App{
		configLoader: loader,
		analyzer:     an,
		resolver:     res,
		scheduler:    sched,
		cache:        cache,
		store:        store,
		logger:       logger,
		tracer:       tracer,
		workDir:      ".",
	}
}

// WithWorkDir overrides the directory the configuration is loaded from.
func WithWorkDir(dir string) func(*App) {
	return func(a *App) { a.workDir = dir }
}

// Build runs the full pipeline: analyze, resolve, compile the whole
// snapshot, then record the watermark when compilation succeeded. When the
// project configuration sets build.incremental, the incremental pipeline runs
// instead, so the flag on the CLI and the setting in forge.yaml agree.
func (a *App) Build(ctx context.Context) (*domain.BuildResult, error) {
	cfg, err := a.configLoader.Load(a.workDir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	if cfg.Build.Incremental {
		return a.incrementalBuild(ctx, cfg)
	}

	ctx, span := a.tracer.Start(ctx, "build")
	defer span.End()
	start := time.Now()

	snapshot, resolution, err := a.analyzeAndResolve(ctx, cfg)
	if err != nil {
		return nil, err
	}

	compilation, err := a.compile(ctx, cfg, snapshot, resolution, nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if compilation.Success {
		a.saveWatermark(snapshot)
	}

	result := composeResult(snapshot, compilation, time.Since(start))
	span.SetAttribute("success", result.Success)
	return result, nil
}

// BuildIncremental compiles only units that changed since the last recorded
// watermark, plus their transitive dependents. An empty change set is an
// immediate zero-compile success.
func (a *App) BuildIncremental(ctx context.Context) (*domain.BuildResult, error) {
	cfg, err := a.configLoader.Load(a.workDir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return a.incrementalBuild(ctx, cfg)
}

func (a *App) incrementalBuild(ctx context.Context, cfg *domain.ProjectConfig) (*domain.BuildResult, error) {
	ctx, span := a.tracer.Start(ctx, "build_incremental")
	defer span.End()
	start := time.Now()

	wm, err := a.store.Load(a.projectRoot())
	if err != nil {
		a.logger.Warn("failed to load watermark, rebuilding everything: " + err.Error())
		wm = nil
	}

	snapshot, resolution, err := a.analyzeAndResolve(ctx, cfg)
	if err != nil {
		return nil, err
	}

	changes := analyzer.Changes(snapshot, wm)
	if changes.Empty() {
		a.logger.Info("nothing changed since the last build")
		compilation := &domain.CompilationResult{Success: true}
		return composeResult(snapshot, compilation, time.Since(start)), nil
	}

	compilation, err := a.compile(ctx, cfg, snapshot, resolution, changes)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if compilation.Success {
		a.saveWatermark(snapshot)
	}

	result := composeResult(snapshot, compilation, time.Since(start))
	span.SetAttribute("success", result.Success)
	return result, nil
}

// Clean removes the output directory and clears the artifact cache, leaving
// the project in a never-built state. Always callable; failures are
// collected, not fatal midway.
func (a *App) Clean(ctx context.Context) error {
	_, span := a.tracer.Start(ctx, "clean")
	defer span.End()

	cfg, err := a.configLoader.Load(a.workDir)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	var errs error
	if err := os.RemoveAll(cfg.OutputDir); err != nil {
		errs = errors.Join(errs, zerr.Wrap(err, "failed to remove output directory"))
	}
	if err := a.cache.Clear(); err != nil {
		errs = errors.Join(errs, zerr.Wrap(err, "failed to clear artifact cache"))
	}

	if errs != nil {
		span.RecordError(errs)
		return errs
	}
	a.logger.Info("cleaned " + cfg.OutputDir)
	return nil
}

// Deps resolves the declared dependencies and reports the outcome without
// compiling anything.
func (a *App) Deps(ctx context.Context) (*domain.DependencyResolution, error) {
	cfg, err := a.configLoader.Load(a.workDir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	return a.resolver.Resolve(ctx, cfg.Dependencies, resolver.Options{
		Registry:     cfg.Registry,
		SystemLibDir: cfg.SystemLibDir,
	}), nil
}

func (a *App) analyzeAndResolve(ctx context.Context, cfg *domain.ProjectConfig) (*domain.ProjectSnapshot, *domain.DependencyResolution, error) {
	if len(cfg.SourceRoots) == 0 {
		return nil, nil, domain.ErrNoSourceRoots
	}

	snapshot, err := a.analyzer.Analyze(cfg.SourceRoots)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "analysis failed")
	}

	resolution := a.resolver.Resolve(ctx, cfg.Dependencies, resolver.Options{
		Registry:     cfg.Registry,
		SystemLibDir: cfg.SystemLibDir,
	})
	for name, reason := range resolution.Errors() {
		a.logger.Warn("dependency " + name + " not resolved: " + reason)
	}

	return snapshot, resolution, nil
}

// compile ensures the output directory exists and runs the scheduler over
// the full snapshot, or over the change set when one is given.
func (a *App) compile(ctx context.Context, cfg *domain.ProjectConfig, snapshot *domain.ProjectSnapshot, resolution *domain.DependencyResolution, changes *domain.ChangeSet) (*domain.CompilationResult, error) {
	if err := os.MkdirAll(cfg.OutputDir, domain.DirPerm); err != nil {
		return nil, errors.Join(zerr.Wrap(domain.ErrOutputDirCreate, cfg.OutputDir), err)
	}

	parallelism := cfg.Build.Threads
	if !cfg.Build.Parallel {
		parallelism = 1
	}

	schedOpts := scheduler.Options{
		OutputDir:      cfg.OutputDir,
		CompilerConfig: compilerConfig(cfg),
		Parallelism:    parallelism,
	}

	if changes != nil {
		return a.scheduler.BuildIncremental(ctx, snapshot, changes, resolution, schedOpts)
	}
	return a.scheduler.Build(ctx, snapshot, resolution, schedOpts)
}

// compilerConfig canonically serializes the compiler settings that affect
// output, so fingerprints change when they do.
func compilerConfig(cfg *domain.ProjectConfig) string {
	return "javac -encoding UTF-8 -d " + cfg.OutputDir
}

func (a *App) projectRoot() string {
	if abs, err := filepath.Abs(a.workDir); err == nil {
		return abs
	}
	return a.workDir
}

func (a *App) saveWatermark(snapshot *domain.ProjectSnapshot) {
	wm := domain.NewWatermark(snapshot)
	if err := a.store.Save(a.projectRoot(), wm); err != nil {
		a.logger.Warn("failed to save build watermark: " + err.Error())
	}
}

// composeResult derives the per-phase records from the compilation outcome.
// Packaging and test execution are downstream consumers; here they are
// reported as a census over what actually built.
func composeResult(snapshot *domain.ProjectSnapshot, compilation *domain.CompilationResult, duration time.Duration) *domain.BuildResult {
	pkg := &domain.PackageResult{
		Success:   compilation.Success,
		Kind:      PackageKind,
		Artifacts: compilation.CompiledFiles + compilation.CachedFiles,
	}

	tests := &domain.TestResult{Success: true}
	for _, u := range snapshot.TestUnits() {
		tests.TotalTests++
		if _, failed := compilation.Failures[u.Path]; !failed {
			tests.PassedTests++
		}
	}
	tests.Success = tests.PassedTests == tests.TotalTests

	return &domain.BuildResult{
		Success:     compilation.Success && pkg.Success && tests.Success,
		Compilation: compilation,
		Package:     pkg,
		Test:        tests,
		Duration:    duration,
	}
}
