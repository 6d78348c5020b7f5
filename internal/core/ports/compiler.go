// Package ports defines the core interfaces the engine consumes.
package ports

import (
	"context"

	"github.com/yasmramos/forge/internal/core/domain"
)

// Compiler is the external compilation capability. Opaque, potentially slow,
// potentially failing; the scheduler never assumes anything beyond the
// contract below.
//
//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// CompileUnit compiles one unit against the given classpath, placing any
	// on-disk output under outputDir. On success it returns the produced
	// artifact bytes. On failure it returns a non-nil error and whatever
	// diagnostic text the compiler emitted.
	CompileUnit(ctx context.Context, unit *domain.CompilationUnit, classpath []string, outputDir string) (artifact []byte, diagnostics string, err error)
}
