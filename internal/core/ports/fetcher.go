package ports

import "context"

// Fetcher is the pluggable artifact transport used by the dependency
// resolver. Failures surface as resolution errors, never as panics.
//
//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type Fetcher interface {
	// Fetch retrieves the content at url.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
