// Package resolver turns declared dependency descriptors into resolved,
// locally materialized artifacts.
package resolver

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"

	"github.com/yasmramos/forge/internal/core/domain"
	"github.com/yasmramos/forge/internal/core/ports"
)

// DefaultFetchLimit bounds concurrent artifact downloads.
const DefaultFetchLimit = 4

// versionLocal pins path-based descriptors that declare no version. The
// floating "latest" literal never reaches a ResolvedDependency.
const versionLocal = "local"

// Options carries the per-project inputs of one resolution batch.
type Options struct {
	// Registry is the repository endpoint, without a trailing slash. Empty
	// means fetching is unavailable; only already-materialized artifacts
	// resolve.
	Registry string

	// SystemLibDir is the directory searched for system-type descriptors.
	SystemLibDir string
}

// Resolver resolves descriptor batches. Each descriptor resolves or fails
// independently; a failure never aborts the batch.
type Resolver struct {
	fetcher ports.Fetcher
	logger  ports.Logger
	libDir  string
	limit   int
}

// New creates a Resolver that materializes registry artifacts under libDir.
func New(fetcher ports.Fetcher, logger ports.Logger, libDir string) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		logger:  logger,
		libDir:  libDir,
		limit:   DefaultFetchLimit,
	}
}

// Resolve resolves every descriptor, up to DefaultFetchLimit concurrently.
// The returned resolution holds exactly one outcome per descriptor: a
// ResolvedDependency or a failure reason keyed by name.
func (r *Resolver) Resolve(ctx context.Context, descriptors []domain.DependencyDescriptor, opts Options) *domain.DependencyResolution {
	resolution := domain.NewDependencyResolution()

	g := new(errgroup.Group)
	g.SetLimit(r.limit)

	for _, desc := range descriptors {
		g.Go(func() error {
			dep, err := r.resolveOne(ctx, desc, opts)
			if err != nil {
				r.logger.Error(zerr.With(err, "dependency", desc.Name))
				resolution.AddError(desc.Name, err.Error())
				return nil
			}
			resolution.Add(dep)
			return nil
		})
	}
	_ = g.Wait()

	return resolution
}

func (r *Resolver) resolveOne(ctx context.Context, desc domain.DependencyDescriptor, opts Options) (domain.ResolvedDependency, error) {
	switch desc.Type {
	case domain.DependencyRegistry:
		return r.resolveRegistry(ctx, desc, opts.Registry)
	case domain.DependencyLocal:
		return resolveLocal(desc)
	case domain.DependencySystem:
		return resolveSystem(desc, opts.SystemLibDir)
	default:
		return domain.ResolvedDependency{}, zerr.Wrap(domain.ErrUnknownDependencyType, string(desc.Type))
	}
}

// resolveRegistry pins the version, reuses an already-materialized artifact
// when present, and otherwise fetches and atomically places it.
func (r *Resolver) resolveRegistry(ctx context.Context, desc domain.DependencyDescriptor, registry string) (domain.ResolvedDependency, error) {
	version := desc.Version
	if version == domain.VersionLatest {
		pinned, err := r.pinLatest(ctx, registry, desc.Name)
		if err != nil {
			return domain.ResolvedDependency{}, err
		}
		version = pinned
	}

	localPath := filepath.Join(r.libDir, artifactName(desc.Name, version))
	if existsNonEmpty(localPath) {
		return resolved(desc.Name, version, domain.DependencyRegistry, localPath), nil
	}

	if registry == "" {
		return domain.ResolvedDependency{}, zerr.Wrap(domain.ErrArtifactMissing, localPath)
	}

	url := registry + "/" + desc.Name + "/" + version + "/" + artifactName(desc.Name, version)
	data, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return domain.ResolvedDependency{}, zerr.Wrap(err, "failed to fetch artifact")
	}

	if err := atomicWrite(localPath, data); err != nil {
		return domain.ResolvedDependency{}, err
	}

	if !existsNonEmpty(localPath) {
		return domain.ResolvedDependency{}, zerr.Wrap(domain.ErrArtifactMissing, localPath)
	}

	r.logger.Info("fetched dependency " + desc.Name + "@" + version)
	return resolved(desc.Name, version, domain.DependencyRegistry, localPath), nil
}

// pinLatest queries the registry for the concrete version behind "latest".
func (r *Resolver) pinLatest(ctx context.Context, registry, name string) (string, error) {
	if registry == "" {
		return "", zerr.Wrap(domain.ErrUnresolvedVersion, "no registry configured")
	}

	body, err := r.fetcher.Fetch(ctx, registry+"/"+name+"/latest")
	if err != nil {
		return "", zerr.Wrap(err, "failed to query latest version")
	}

	version := strings.TrimSpace(string(body))
	if version == "" || version == domain.VersionLatest {
		return "", zerr.Wrap(domain.ErrUnresolvedVersion, "registry answered "+strconv.Quote(version))
	}
	return version, nil
}

func resolveLocal(desc domain.DependencyDescriptor) (domain.ResolvedDependency, error) {
	if desc.Path == "" {
		return domain.ResolvedDependency{}, zerr.Wrap(domain.ErrArtifactMissing, "local dependency declares no path")
	}
	if !existsNonEmpty(desc.Path) {
		return domain.ResolvedDependency{}, zerr.Wrap(domain.ErrArtifactMissing, desc.Path)
	}

	version := desc.Version
	if version == "" || version == domain.VersionLatest {
		version = versionLocal
	}
	return resolved(desc.Name, version, domain.DependencyLocal, desc.Path), nil
}

func resolveSystem(desc domain.DependencyDescriptor, systemLibDir string) (domain.ResolvedDependency, error) {
	if desc.Version == domain.VersionLatest {
		return domain.ResolvedDependency{}, zerr.Wrap(domain.ErrUnresolvedVersion, "system dependencies need a concrete version")
	}

	path := filepath.Join(systemLibDir, artifactName(desc.Name, desc.Version))
	if !existsNonEmpty(path) {
		return domain.ResolvedDependency{}, zerr.Wrap(domain.ErrArtifactMissing, path)
	}
	return resolved(desc.Name, desc.Version, domain.DependencySystem, path), nil
}

func resolved(name, version string, typ domain.DependencyType, path string) domain.ResolvedDependency {
	return domain.ResolvedDependency{
		Name:      name,
		Version:   version,
		Type:      typ,
		LocalPath: path,
		Resolved:  true,
	}
}

func artifactName(name, version string) string {
	return name + "-" + version + ".jar"
}

func existsNonEmpty(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

// atomicWrite places data at path via a temp file and rename. A partial
// write never survives at the final path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create artifact directory")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create temp artifact")
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return zerr.Wrap(err, "failed to write artifact")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return zerr.Wrap(err, "failed to close temp artifact")
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return zerr.Wrap(err, "failed to place artifact")
	}
	return nil
}
