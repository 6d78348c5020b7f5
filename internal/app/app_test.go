package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/yasmramos/forge/internal/adapters/fs"
	"github.com/yasmramos/forge/internal/adapters/telemetry"
	"github.com/yasmramos/forge/internal/adapters/watermark"
	"github.com/yasmramos/forge/internal/analyzer"
	"github.com/yasmramos/forge/internal/app"
	"github.com/yasmramos/forge/internal/cache"
	"github.com/yasmramos/forge/internal/core/domain"
	"github.com/yasmramos/forge/internal/core/ports/mocks"
	"github.com/yasmramos/forge/internal/engine/scheduler"
	"github.com/yasmramos/forge/internal/resolver"
)

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(error) {}

// fixture assembles an App over a real analyzer, cache, and watermark store,
// with the external compiler and transport mocked.
type fixture struct {
	app      *app.App
	compiler *mocks.MockCompiler
	root     string
	cfg      *domain.ProjectConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	root := t.TempDir()

	cfg := &domain.ProjectConfig{
		Name:        "demo",
		Version:     "1.0.0",
		SourceRoots: []string{filepath.Join(root, "src")},
		OutputDir:   filepath.Join(root, "target", "classes"),
		Build:       domain.BuildSettings{Threads: 4, Parallel: true},
	}

	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any()).Return(cfg, nil).AnyTimes()

	compiler := mocks.NewMockCompiler(ctrl)

	log := nopLogger{}
	tracer := telemetry.NewNoOpTracer()

	artifactCache, err := cache.New(filepath.Join(root, ".forge", "cache"), log)
	require.NoError(t, err)

	store, err := watermark.Open(filepath.Join(root, ".forge", "watermarks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	an := analyzer.New(fs.NewWalker(), fs.NewHasher(), log)
	res := resolver.New(mocks.NewMockFetcher(ctrl), log, filepath.Join(root, ".forge", "libs"))
	sched := scheduler.New(compiler, artifactCache, log, tracer)

	a := app.New(loader, an, res, sched, artifactCache, store, log, tracer)
	app.WithWorkDir(root)(a)

	return &fixture{app: a, compiler: compiler, root: root, cfg: cfg}
}

func (f *fixture) writeSource(t *testing.T, rel, content string) string {
	t.Helper()

	path := filepath.Join(f.root, "src", rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (f *fixture) expectCompiles(n int) {
	f.compiler.EXPECT().
		CompileUnit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte{0xCA, 0xFE}, "", nil).Times(n)
}

func TestBuild_FullPipeline(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, "com/acme/App.java", "package com.acme;\npublic class App {}\n")
	f.writeSource(t, "com/acme/Util.java", "package com.acme.util;\npublic class Util {}\n")
	f.writeSource(t, "com/acme/AppTest.java", "package com.acme;\npublic class AppTest {}\n")
	f.expectCompiles(3)

	result, err := f.app.Build(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Compilation.TotalFiles)
	assert.Equal(t, 3, result.Compilation.CompiledFiles)
	assert.Zero(t, result.Compilation.FailedFiles)

	assert.True(t, result.Package.Success)
	assert.Equal(t, app.PackageKind, result.Package.Kind)
	assert.Equal(t, 3, result.Package.Artifacts)

	assert.True(t, result.Test.Success)
	assert.Equal(t, 1, result.Test.TotalTests)
	assert.Equal(t, 1, result.Test.PassedTests)

	assert.Positive(t, result.Duration)

	// Output directory was created for the compiler.
	info, err := os.Stat(f.cfg.OutputDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestBuild_SecondBuildIsFullyCached(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, "A.java", "package a;\n")
	f.writeSource(t, "B.java", "package b;\n")
	f.expectCompiles(2) // across both builds

	first, err := f.app.Build(context.Background())
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := f.app.Build(context.Background())
	require.NoError(t, err)

	assert.True(t, second.Success)
	assert.Zero(t, second.Compilation.CompiledFiles)
	assert.Equal(t, 2, second.Compilation.CachedFiles)
}

func TestBuildIncremental_NothingChanged(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, "A.java", "package a;\n")
	f.expectCompiles(1)

	_, err := f.app.Build(context.Background())
	require.NoError(t, err)

	// No compiler expectation remains: an empty change set never schedules.
	result, err := f.app.BuildIncremental(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Zero(t, result.Compilation.TotalFiles)
	assert.Zero(t, result.Compilation.CompiledFiles)
}

func TestBuild_ConfigIncrementalIsDefault(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, "A.java", "package a;\n")
	f.expectCompiles(1)

	_, err := f.app.Build(context.Background())
	require.NoError(t, err)

	// With build.incremental set, a plain Build takes the incremental path:
	// nothing changed, so nothing is even scheduled. A full build would have
	// reported the unit as cached instead.
	f.cfg.Build.Incremental = true

	result, err := f.app.Build(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Zero(t, result.Compilation.TotalFiles)
	assert.Zero(t, result.Compilation.CachedFiles)
}

func TestBuildIncremental_NoWatermarkRebuildsEverything(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, "A.java", "package a;\n")
	f.writeSource(t, "B.java", "package b;\n")
	f.expectCompiles(2)

	result, err := f.app.BuildIncremental(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Compilation.TotalFiles)
}

func TestBuild_PartialFailureDoesNotAdvanceWatermark(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, "Good.java", "package good;\n")
	f.writeSource(t, "Bad.java", "package bad;\n")

	f.compiler.EXPECT().
		CompileUnit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *domain.CompilationUnit, _ []string, _ string) ([]byte, string, error) {
			if filepath.Base(u.Path) == "Bad.java" {
				return nil, "Bad.java:1: error", errors.New("compilation failed")
			}
			return []byte{1}, "", nil
		}).Times(2)

	result, err := f.app.Build(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Compilation.CompiledFiles)
	assert.Equal(t, 1, result.Compilation.FailedFiles)

	// The watermark was not saved, so an incremental build still sees both
	// units as changed.
	f.compiler.EXPECT().
		CompileUnit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte{1}, "", nil).Times(1) // Good.java is cached; only Bad.java recompiles

	retry, err := f.app.BuildIncremental(context.Background())
	require.NoError(t, err)
	assert.True(t, retry.Success)
	assert.Equal(t, 2, retry.Compilation.TotalFiles)
	assert.Equal(t, 1, retry.Compilation.CachedFiles)
	assert.Equal(t, 1, retry.Compilation.CompiledFiles)
}

func TestBuild_OutputDirCreateFailureIsIdentifiable(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, "A.java", "package a;\n")

	// A regular file where the output directory should go makes MkdirAll fail.
	blocker := filepath.Join(f.root, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	f.cfg.OutputDir = filepath.Join(blocker, "classes")

	_, err := f.app.Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOutputDirCreate))
	assert.Contains(t, err.Error(), f.cfg.OutputDir)
}

func TestClean_RestoresNeverBuiltState(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, "A.java", "package a;\n")
	f.expectCompiles(2) // initial build + rebuild after clean

	_, err := f.app.Build(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.app.Clean(context.Background()))

	_, err = os.Stat(f.cfg.OutputDir)
	assert.True(t, os.IsNotExist(err))

	// After a clean, nothing is served from the cache.
	result, err := f.app.Build(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Compilation.CompiledFiles)
	assert.Zero(t, result.Compilation.CachedFiles)
}

func TestClean_CallableBeforeAnyBuild(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.app.Clean(context.Background()))
}

func TestBuild_NoSourceRootsIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)

	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any()).Return(&domain.ProjectConfig{}, nil)

	log := nopLogger{}
	tracer := telemetry.NewNoOpTracer()
	artifactCache, err := cache.New(t.TempDir(), log)
	require.NoError(t, err)
	store, err := watermark.Open(filepath.Join(t.TempDir(), "wm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	a := app.New(
		loader,
		analyzer.New(fs.NewWalker(), fs.NewHasher(), log),
		resolver.New(mocks.NewMockFetcher(ctrl), log, t.TempDir()),
		scheduler.New(mocks.NewMockCompiler(ctrl), artifactCache, log, tracer),
		artifactCache, store, log, tracer,
	)

	_, err = a.Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoSourceRoots))
}

func TestDeps_ReportsResolution(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	jar := filepath.Join(root, "local.jar")
	require.NoError(t, os.WriteFile(jar, []byte("x"), 0o644))

	cfg := &domain.ProjectConfig{
		Name:        "demo",
		SourceRoots: []string{root},
		OutputDir:   filepath.Join(root, "out"),
		Dependencies: []domain.DependencyDescriptor{
			{Name: "local", Version: "1.0", Type: domain.DependencyLocal, Path: jar},
			{Name: "ghost", Version: "1.0", Type: domain.DependencyLocal, Path: filepath.Join(root, "missing.jar")},
		},
	}
	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any()).Return(cfg, nil)

	log := nopLogger{}
	tracer := telemetry.NewNoOpTracer()
	artifactCache, err := cache.New(t.TempDir(), log)
	require.NoError(t, err)
	store, err := watermark.Open(filepath.Join(t.TempDir(), "wm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	a := app.New(
		loader,
		analyzer.New(fs.NewWalker(), fs.NewHasher(), log),
		resolver.New(mocks.NewMockFetcher(ctrl), log, t.TempDir()),
		scheduler.New(mocks.NewMockCompiler(ctrl), artifactCache, log, tracer),
		artifactCache, store, log, tracer,
	)

	resolution, err := a.Deps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resolution.SuccessCount())
	assert.Equal(t, 1, resolution.ErrorCount())
}
