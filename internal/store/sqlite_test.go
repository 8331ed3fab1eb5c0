package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteCache(t *testing.T) *SQLiteCache {
	t.Helper()
	cache, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestSQLiteCachePutGet(t *testing.T) {
	cache := newTestSQLiteCache(t)

	_, hit, err := cache.Get("missing")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Put("k1", []byte("payload")))

	value, hit, err := cache.Get("k1")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, []byte("payload"), value)
}

func TestSQLiteCacheOverwrite(t *testing.T) {
	cache := newTestSQLiteCache(t)

	require.NoError(t, cache.Put("k1", []byte("old")))
	require.NoError(t, cache.Put("k1", []byte("new")))

	value, hit, err := cache.Get("k1")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, []byte("new"), value)
}

func TestSQLiteCacheDelete(t *testing.T) {
	cache := newTestSQLiteCache(t)

	require.NoError(t, cache.Put("k1", []byte("payload")))
	require.NoError(t, cache.Delete("k1"))
	require.NoError(t, cache.Delete("k1"))

	_, hit, err := cache.Get("k1")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSQLiteCacheSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	first, err := NewSQLiteCache(path)
	require.NoError(t, err)
	require.NoError(t, first.Put("k1", []byte("persisted")))
	require.NoError(t, first.Close())

	second, err := NewSQLiteCache(path)
	require.NoError(t, err)
	defer second.Close()

	value, hit, err := second.Get("k1")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, []byte("persisted"), value)
}

func TestFileLock(t *testing.T) {
	dir := t.TempDir()

	l1 := NewFileLock(dir, "abc123")
	require.NoError(t, l1.Lock())

	l2 := NewFileLock(dir, "abc123")
	acquired, err := l2.TryLock()
	require.NoError(t, err)
	assert.False(t, acquired, "second lock on the same key must not acquire")

	other := NewFileLock(dir, "other-key")
	acquired, err = other.TryLock()
	require.NoError(t, err)
	assert.True(t, acquired, "locks are per cache key")
	require.NoError(t, other.Unlock())

	require.NoError(t, l1.Unlock())
	acquired, err = l2.TryLock()
	require.NoError(t, err)
	assert.True(t, acquired)
	require.NoError(t, l2.Unlock())
}
