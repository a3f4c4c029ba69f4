package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/naka-gawa/octotrends/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T, maxAge time.Duration) *BoltCache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "nested", "cache.db"), maxAge)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestBoltCache_GetPut(t *testing.T) {
	c := openTestCache(t, 0)

	_, ok, err := c.Get("golang/go")
	require.NoError(t, err)
	assert.False(t, ok)

	info := domain.RepoInfo{Stars: 120000, Language: "Go", Topics: []string{"go", "language"}, Description: "The Go programming language"}
	require.NoError(t, c.Put("golang/go", info))

	got, ok, err := c.Get("golang/go")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, info, got)

	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBoltCache_MaxAge(t *testing.T) {
	c := openTestCache(t, time.Hour)
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	require.NoError(t, c.Put("a/b", domain.RepoInfo{Stars: 1}))

	c.now = func() time.Time { return base.Add(30 * time.Minute) }
	_, ok, err := c.Get("a/b")
	require.NoError(t, err)
	assert.True(t, ok)

	c.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, ok, err = c.Get("a/b")
	require.NoError(t, err)
	assert.False(t, ok, "stale entries are misses")
}

func TestBoltCache_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path, 0)
	require.NoError(t, err)
	require.NoError(t, c.Put("a/b", domain.RepoInfo{Language: "Rust"}))
	require.NoError(t, c.Close())

	c, err = Open(path, 0)
	require.NoError(t, err)
	defer c.Close()
	got, ok, err := c.Get("a/b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Rust", got.Language)
}
