package domain

import (
	"os"
	"path/filepath"
)

const (
	// ForgeDirName is the name of the internal workspace directory.
	ForgeDirName = ".forge"

	// CacheDirName is the name of the artifact cache directory.
	CacheDirName = "cache"

	// LibsDirName is the name of the downloaded dependency directory.
	LibsDirName = "libs"

	// WatermarkDBName is the name of the watermark database file.
	WatermarkDBName = "watermarks.db"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "forge.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultForgePath returns the default root directory for forge metadata.
func DefaultForgePath() string {
	return ForgeDirName
}

// DefaultCachePath returns the default path for the artifact cache.
// It joins .forge and cache.
func DefaultCachePath() string {
	return filepath.Join(ForgeDirName, CacheDirName)
}

// DefaultWatermarkDBPath returns the default path for the watermark database.
// It joins .forge and watermarks.db.
func DefaultWatermarkDBPath() string {
	return filepath.Join(ForgeDirName, WatermarkDBName)
}

// DefaultLibsPath returns the default directory for downloaded dependency
// artifacts, under the user's home when available.
func DefaultLibsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(ForgeDirName, LibsDirName)
	}
	return filepath.Join(home, ForgeDirName, LibsDirName)
}
