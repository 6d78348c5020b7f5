// Package config provides the forge.yaml configuration loader.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/yasmramos/forge/internal/core/domain"
	"github.com/yasmramos/forge/internal/core/ports"
)

// DefaultFilename is the configuration file looked up in the working directory.
const DefaultFilename = domain.ConfigFileName

var _ ports.ConfigLoader = (*FileConfigLoader)(nil)

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	Filename string
}

// Load reads the configuration from the given working directory.
func (l *FileConfigLoader) Load(cwd string) (*domain.ProjectConfig, error) {
	name := l.Filename
	if name == "" {
		name = DefaultFilename
	}
	return Load(filepath.Join(cwd, name))
}

// Load reads a configuration file and returns the parsed project config with
// defaults applied.
func Load(path string) (*domain.ProjectConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var file Forgefile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	cfg := &domain.ProjectConfig{
		Name:         file.Name,
		Version:      file.Version,
		SourceRoots:  file.SourceRoots,
		OutputDir:    file.OutputDir,
		Registry:     strings.TrimSuffix(file.Registry, "/"),
		SystemLibDir: file.SystemLibDir,
		Dependencies: descriptors(file.Dependencies),
		Build: domain.BuildSettings{
			Threads:     file.Build.Threads,
			Parallel:    file.Build.Parallel,
			Incremental: file.Build.Incremental,
		},
	}
	applyDefaults(cfg)
	return cfg, nil
}

func descriptors(deps map[string]DependencyDTO) []domain.DependencyDescriptor {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.DependencyDescriptor, 0, len(names))
	for _, name := range names {
		dto := deps[name]
		desc := domain.DependencyDescriptor{
			Name:    name,
			Version: dto.Version,
			Type:    domain.DependencyType(dto.Type),
			Path:    dto.Path,
		}
		if desc.Version == "" {
			desc.Version = domain.VersionLatest
		}
		if desc.Type == "" {
			desc.Type = domain.DependencyRegistry
		}
		out = append(out, desc)
	}
	return out
}

func applyDefaults(cfg *domain.ProjectConfig) {
	if len(cfg.SourceRoots) == 0 {
		cfg.SourceRoots = []string{
			filepath.Join("src", "main", "java"),
			filepath.Join("src", "test", "java"),
		}
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join("target", "classes")
	}
	if cfg.Build.Threads <= 0 {
		cfg.Build.Threads = runtime.NumCPU()
	}
}
