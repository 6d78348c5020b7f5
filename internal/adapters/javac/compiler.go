// Package javac provides the external compiler adapter.
package javac

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"

	"github.com/yasmramos/forge/internal/core/domain"
	"github.com/yasmramos/forge/internal/core/ports"
)

// DefaultBinary is the compiler executable invoked when none is configured.
const DefaultBinary = "javac"

var _ ports.Compiler = (*Compiler)(nil)

// Compiler implements ports.Compiler by shelling out to javac.
type Compiler struct {
	binary string
	logger ports.Logger
}

// New creates a Compiler that invokes the default javac binary.
func New(logger ports.Logger) *Compiler {
	return NewWithBinary(DefaultBinary, logger)
}

// NewWithBinary creates a Compiler around a specific executable.
func NewWithBinary(binary string, logger ports.Logger) *Compiler {
	return &Compiler{binary: binary, logger: logger}
}

// CompileUnit compiles a single source file against the classpath, writing
// class files under outputDir. The produced class file bytes are returned so
// callers can cache them independently of the output tree.
func (c *Compiler) CompileUnit(ctx context.Context, unit *domain.CompilationUnit, classpath []string, outputDir string) ([]byte, string, error) {
	args := buildArgs(unit, classpath, outputDir)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.binary, args...) //nolint:gosec // binary is operator-configured
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diagnostics := strings.TrimSpace(stderr.String())
		if diagnostics == "" {
			diagnostics = strings.TrimSpace(stdout.String())
		}

		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		cErr := zerr.Wrap(domain.ErrCompilationFailed, unit.Path)
		cErr = zerr.With(cErr, "unit", unit.Path)
		cErr = zerr.With(cErr, "exit_code", exitCode)
		return nil, diagnostics, errors.Join(cErr, err)
	}

	artifact, err := os.ReadFile(classFilePath(unit, outputDir))
	if err != nil {
		return nil, "", zerr.With(zerr.Wrap(err, "failed to read compiled class file"), "unit", unit.Path)
	}

	c.logger.Info("compiled " + unit.Path)
	return artifact, strings.TrimSpace(stderr.String()), nil
}

// buildArgs assembles the javac argument list for one unit.
func buildArgs(unit *domain.CompilationUnit, classpath []string, outputDir string) []string {
	args := []string{"-encoding", "UTF-8", "-d", outputDir}
	if len(classpath) > 0 {
		args = append(args, "-cp", strings.Join(classpath, string(os.PathListSeparator)))
	}
	return append(args, unit.Path)
}

// classFilePath maps a source unit to its primary class file under outputDir,
// mirroring the package declaration onto the directory layout.
func classFilePath(unit *domain.CompilationUnit, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(unit.Path), filepath.Ext(unit.Path)) + ".class"
	pkgDir := strings.ReplaceAll(unit.Package.String(), ".", string(filepath.Separator))
	return filepath.Join(outputDir, pkgDir, base)
}
