package watermark_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yasmramos/forge/internal/adapters/watermark"
	"github.com/yasmramos/forge/internal/core/domain"
)

func openStore(t *testing.T) *watermark.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".forge", "watermarks.db")
	store, err := watermark.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestStore_LoadMissing(t *testing.T) {
	store := openStore(t)

	wm, err := store.Load("/project/never-built")
	require.NoError(t, err)
	require.Nil(t, wm)
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := openStore(t)

	in := &domain.Watermark{
		BuiltAt: time.Now().Truncate(time.Millisecond),
		Units: map[string]domain.UnitStamp{
			"src/main/java/App.java": {ModTimeNano: 12345, ContentHash: 0xdeadbeef},
		},
	}
	require.NoError(t, store.Save("/project/a", in))

	got, err := store.Load("/project/a")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, in.Units, got.Units)
	require.True(t, in.BuiltAt.Equal(got.BuiltAt))
}

func TestStore_SaveOverwrites(t *testing.T) {
	store := openStore(t)

	first := &domain.Watermark{Units: map[string]domain.UnitStamp{
		"a.java": {ModTimeNano: 1},
	}}
	second := &domain.Watermark{Units: map[string]domain.UnitStamp{
		"a.java": {ModTimeNano: 2},
		"b.java": {ModTimeNano: 3},
	}}

	require.NoError(t, store.Save("/project/b", first))
	require.NoError(t, store.Save("/project/b", second))

	got, err := store.Load("/project/b")
	require.NoError(t, err)
	require.Equal(t, second.Units, got.Units)
}

func TestStore_ProjectsIsolated(t *testing.T) {
	store := openStore(t)

	require.NoError(t, store.Save("/project/x", &domain.Watermark{Units: map[string]domain.UnitStamp{
		"x.java": {ModTimeNano: 1},
	}}))

	got, err := store.Load("/project/y")
	require.NoError(t, err)
	require.Nil(t, got)
}
