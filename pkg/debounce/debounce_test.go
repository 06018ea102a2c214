package debounce

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, window time.Duration) *Store {
	t.Helper()
	workdir := t.TempDir()
	require.NoError(t, os.MkdirAll(path.Join(workdir, "data"), 0755))
	store, err := Open(workdir, window)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAllowFirstView(t *testing.T) {
	store := openTestStore(t, time.Hour)
	assert.True(t, store.Allow("sess-1", 10))
}

func TestAllowSuppressesRepeatInWindow(t *testing.T) {
	store := openTestStore(t, time.Hour)

	require.True(t, store.Allow("sess-1", 10))
	assert.False(t, store.Allow("sess-1", 10))

	// other sessions and products are independent
	assert.True(t, store.Allow("sess-2", 10))
	assert.True(t, store.Allow("sess-1", 11))
}

func TestAllowAfterWindowExpires(t *testing.T) {
	store := openTestStore(t, time.Second)

	require.True(t, store.Allow("sess-1", 10))
	require.False(t, store.Allow("sess-1", 10))

	time.Sleep(1100 * time.Millisecond)
	assert.True(t, store.Allow("sess-1", 10))
}

func TestAllowEmptySessionNeverDebounced(t *testing.T) {
	store := openTestStore(t, time.Hour)

	assert.True(t, store.Allow("", 10))
	assert.True(t, store.Allow("", 10))
}

func TestPrune(t *testing.T) {
	store := openTestStore(t, time.Second)

	require.True(t, store.Allow("sess-1", 10))
	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, store.Prune())

	// pruned entry behaves like a first view again
	assert.True(t, store.Allow("sess-1", 10))
}
