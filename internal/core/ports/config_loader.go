package ports

import "github.com/yasmramos/forge/internal/core/domain"

// ConfigLoader reads the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration from the given working directory.
	Load(cwd string) (*domain.ProjectConfig, error)
}
