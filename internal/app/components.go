package app

import "github.com/yasmramos/forge/internal/core/ports"

// Components bundles everything the CLI entry point needs from the graph.
type Components struct {
	App    *App
	Logger ports.Logger
}
