// Package fetch implements the artifact fetch capability over HTTP.
package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.trai.ch/zerr"

	"github.com/yasmramos/forge/internal/core/ports"
)

const clientTimeout = 30 * time.Second

var _ ports.Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher implements ports.Fetcher using net/http.
type HTTPFetcher struct {
	client *http.Client
}

// New creates an HTTPFetcher with a bounded request timeout.
func New() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: clientTimeout},
	}
}

// NewWithClient creates an HTTPFetcher with a custom client (used for testing).
func NewWithClient(client *http.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client}
}

// Fetch retrieves the content at url. Non-2xx responses are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to build request"), "url", url)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "request failed"), "url", url)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close in defer

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		errResp := zerr.With(zerr.New("unexpected response status"), "url", url)
		return nil, zerr.With(errResp, "status_code", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read response body"), "url", url)
	}

	return body, nil
}
