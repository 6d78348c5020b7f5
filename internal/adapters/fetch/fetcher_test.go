package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasmramos/forge/internal/adapters/fetch"
)

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte("artifact-bytes"))
	}))
	defer srv.Close()

	f := fetch.NewWithClient(srv.Client())
	body, err := f.Fetch(context.Background(), srv.URL+"/libs/junit-4.13.jar")
	require.NoError(t, err)
	assert.Equal(t, []byte("artifact-bytes"), body)
}

func TestFetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such artifact", http.StatusNotFound)
	}))
	defer srv.Close()

	f := fetch.NewWithClient(srv.Client())
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected response status")
}

func TestFetch_ContextCanceled(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	f := fetch.NewWithClient(srv.Client())
	_, err := f.Fetch(ctx, srv.URL)
	require.Error(t, err)
}

func TestFetch_BadURL(t *testing.T) {
	f := fetch.New()
	_, err := f.Fetch(context.Background(), "://not-a-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build request")
}
