package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Forgefile is the structure of the forge.yaml configuration file.
type Forgefile struct {
	Name         string                   `yaml:"name"`
	Version      string                   `yaml:"version"`
	SourceRoots  []string                 `yaml:"sourceRoots"`
	OutputDir    string                   `yaml:"outputDir"`
	Registry     string                   `yaml:"registry"`
	SystemLibDir string                   `yaml:"systemLibDir"`
	Dependencies map[string]DependencyDTO `yaml:"dependencies"`
	Build        BuildDTO                 `yaml:"build"`
}

// BuildDTO holds the scheduler settings.
type BuildDTO struct {
	Threads     int  `yaml:"threads"`
	Parallel    bool `yaml:"parallel"`
	Incremental bool `yaml:"incremental"`
}

// DependencyDTO is a dependency declaration. A bare version scalar implies
// the default registry type:
//
//	junit: "4.13.2"
//
// A mapping may override version, type, and (for local artifacts) path:
//
//	locallib:
//	  type: local
//	  path: libs/local.jar
type DependencyDTO struct {
	Version string `yaml:"version"`
	Type    string `yaml:"type"`
	Path    string `yaml:"path"`
}

// UnmarshalYAML accepts both the scalar and the mapping shape.
func (d *DependencyDTO) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		d.Version = value.Value
		return nil
	case yaml.MappingNode:
		type plain DependencyDTO
		return value.Decode((*plain)(d))
	default:
		return fmt.Errorf("dependency must be a version string or a mapping, got yaml kind %d", value.Kind)
	}
}
