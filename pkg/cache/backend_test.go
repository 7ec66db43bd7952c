package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// exerciseCache checks the behaviour every persistent backend shares.
func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	_, hit, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, c.Set(ctx, "layout:a", []byte(`{"type":"FeatureCollection"}`), 0))
	data, hit, err := c.Get(ctx, "layout:a")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, `{"type":"FeatureCollection"}`, string(data))

	// Overwrite
	require.NoError(t, c.Set(ctx, "layout:a", []byte("v2"), time.Hour))
	data, _, err = c.Get(ctx, "layout:a")
	require.NoError(t, err)
	require.Equal(t, "v2", string(data))

	// Expired entries are misses
	require.NoError(t, c.Set(ctx, "layout:b", []byte("old"), time.Nanosecond))
	time.Sleep(5 * time.Millisecond)
	_, hit, err = c.Get(ctx, "layout:b")
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, c.Delete(ctx, "layout:a"))
	require.NoError(t, c.Delete(ctx, "layout:a"), "deleting twice is fine")
	_, hit, err = c.Get(ctx, "layout:a")
	require.NoError(t, err)
	require.False(t, hit)

	if cl, ok := c.(Clearer); ok {
		require.NoError(t, c.Set(ctx, "k1", []byte("1"), 0))
		require.NoError(t, c.Set(ctx, "k2", []byte("2"), 0))
		require.NoError(t, cl.Clear(ctx))
		_, hit, err = c.Get(ctx, "k1")
		require.NoError(t, err)
		require.False(t, hit)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(filepath.Join(t.TempDir(), "layouts"))
	require.NoError(t, err)
	defer c.Close()
	exerciseCache(t, c)
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, os.WriteFile(c.path("k"), []byte("{not json"), 0o644))

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, hit)
	_, err = os.Stat(c.path("k"))
	require.True(t, os.IsNotExist(err), "corrupt entry is removed")
}

func TestSQLiteCache(t *testing.T) {
	c, err := NewSQLiteCache(context.Background(), MemoryDSN)
	require.NoError(t, err)
	defer c.Close()
	exerciseCache(t, c)
}

func TestSQLiteCacheOnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sub", "cache.db")

	c, err := NewSQLiteCache(ctx, path)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Set(ctx, "old", []byte("v"), time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	n, err := c.Prune(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.NoError(t, c.Close())

	// Entries survive reopening
	c, err = NewSQLiteCache(ctx, path)
	require.NoError(t, err)
	defer c.Close()
	data, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, "v", string(data))

	count, err := c.Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("PROTEOMAP_TEST_REDIS_URL")
	if url == "" {
		t.Skip("PROTEOMAP_TEST_REDIS_URL not set")
	}
	c, err := NewRedisCache(context.Background(), url, "proteomap-test:"+t.Name()+":")
	require.NoError(t, err)
	defer c.Close()
	exerciseCache(t, c)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c, err := Open(ctx, BackendNone, "")
	require.NoError(t, err)
	require.IsType(t, NullCache{}, c)

	c, err = Open(ctx, BackendFile, "")
	require.NoError(t, err)
	require.IsType(t, &FileCache{}, c)
	dir, err := DefaultDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "layouts"), c.(*FileCache).Dir())

	c, err = Open(ctx, BackendSQLite, MemoryDSN)
	require.NoError(t, err)
	require.IsType(t, &SQLiteCache{}, c)
	require.NoError(t, c.Close())

	_, err = Open(ctx, "memcached", "")
	require.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestDefaultDir(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		custom := t.TempDir()
		t.Setenv("XDG_CACHE_HOME", custom)
		dir, err := DefaultDir()
		require.NoError(t, err)
		require.Equal(t, filepath.Join(custom, "proteomap"), dir)
	})

	t.Run("user cache dir", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "")
		base, err := os.UserCacheDir()
		if err != nil {
			t.Skipf("no user cache directory: %v", err)
		}
		dir, err := DefaultDir()
		require.NoError(t, err)
		require.Equal(t, filepath.Join(base, "proteomap"), dir)
	})
}
