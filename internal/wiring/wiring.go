// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/yasmramos/forge/internal/adapters/config"
	_ "github.com/yasmramos/forge/internal/adapters/fetch"
	_ "github.com/yasmramos/forge/internal/adapters/fs"
	_ "github.com/yasmramos/forge/internal/adapters/javac"
	_ "github.com/yasmramos/forge/internal/adapters/logger"
	_ "github.com/yasmramos/forge/internal/adapters/telemetry"
	_ "github.com/yasmramos/forge/internal/adapters/watermark"
	// Register app and engine nodes.
	_ "github.com/yasmramos/forge/internal/analyzer"
	_ "github.com/yasmramos/forge/internal/app"
	_ "github.com/yasmramos/forge/internal/cache"
	_ "github.com/yasmramos/forge/internal/engine/scheduler"
	_ "github.com/yasmramos/forge/internal/resolver"
)
