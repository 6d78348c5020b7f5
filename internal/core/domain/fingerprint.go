package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Fingerprint identifies a unique (source, dependency set, compiler config)
// combination. Two builds with identical fingerprints must produce identical
// output; this is the correctness contract the cache depends on.
type Fingerprint string

// NewFingerprint computes a fingerprint from the unit's absolute path and
// modification time, the canonical dependency set serialization, and the
// compiler configuration. Pure and deterministic across processes; sha256
// keeps it collision-resistant.
func NewFingerprint(unit *CompilationUnit, depSetID, compilerConfig string) Fingerprint {
	h := sha256.New()
	h.Write([]byte(unit.Path))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(unit.ModTime.UnixNano(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(depSetID))
	h.Write([]byte{0})
	h.Write([]byte(compilerConfig))
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// String returns the hex fingerprint.
func (f Fingerprint) String() string { return string(f) }

// CacheEntry is a previously produced compilation artifact keyed by
// fingerprint. Lives until invalidated or the cache is cleared.
type CacheEntry struct {
	// Artifact is the compiled output bytes.
	Artifact []byte `json:"artifact"`

	// SourceModTime is the source modification time recorded when the entry
	// was produced. Validity requires exact equality with the current mtime.
	SourceModTime time.Time `json:"source_mod_time"`

	// CreatedAt is when the entry was stored.
	CreatedAt time.Time `json:"created_at"`

	// Metadata carries arbitrary producer annotations.
	Metadata map[string]string `json:"metadata,omitempty"`
}
