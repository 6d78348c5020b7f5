package ports

// Hasher computes content hashes for source files.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ContentHash returns the hash of the file's content.
	ContentHash(path string) (uint64, error)
}
