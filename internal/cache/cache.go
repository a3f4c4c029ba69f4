// Package cache keeps GitHub repository metadata between snapshot runs.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/naka-gawa/octotrends/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const bucketName = "repo_info"

type entry struct {
	Info      domain.RepoInfo `json:"info"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// BoltCache stores domain.RepoInfo by repository name in a bbolt file.
type BoltCache struct {
	db     *bolt.DB
	maxAge time.Duration
	now    func() time.Time
}

// Open opens or creates the cache file at path. Entries older than maxAge are
// treated as missing; zero keeps entries forever.
func Open(path string, maxAge time.Duration) (*BoltCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init cache: %w", err)
	}
	return &BoltCache{db: db, maxAge: maxAge, now: time.Now}, nil
}

// Close releases the file lock.
func (c *BoltCache) Close() error { return c.db.Close() }

// Get returns the cached metadata of a repository.
func (c *BoltCache) Get(name string) (domain.RepoInfo, bool, error) {
	var e entry
	var found bool
	err := c.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(name))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &e)
	})
	if err != nil {
		return domain.RepoInfo{}, false, fmt.Errorf("failed to read cache entry %s: %w", name, err)
	}
	if !found || (c.maxAge > 0 && c.now().Sub(e.FetchedAt) > c.maxAge) {
		return domain.RepoInfo{}, false, nil
	}
	return e.Info, true, nil
}

// Put stores the metadata of a repository.
func (c *BoltCache) Put(name string, info domain.RepoInfo) error {
	data, err := json.Marshal(entry{Info: info, FetchedAt: c.now().UTC()})
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(name), data)
	})
}

// Len counts the cached entries, stale ones included.
func (c *BoltCache) Len() (int, error) {
	var n int
	err := c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(bucketName)).Stats().KeyN
		return nil
	})
	return n, err
}
