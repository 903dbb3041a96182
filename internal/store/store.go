package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/coocood/freecache"
	"github.com/mmcdole/vinilo/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketMeta = []byte("meta")
)

// Table names
const (
	TableMusicians  = "musicians"
	TableCollectors = "collectors"
)

// minPageCacheBytes is the smallest size freecache accepts.
const minPageCacheBytes = 512 * 1024

// Options tunes the local store.
type Options struct {
	// PageCacheMB sizes the in-memory page cache. 0 disables it.
	PageCacheMB int
	Logger      *slog.Logger
}

// DB is the on-disk catalog cache: one bbolt file, one bucket per table,
// plus an in-memory cache for hot page reads.
type DB struct {
	db     *bolt.DB
	pages  *freecache.Cache // nil when disabled
	logger *slog.Logger

	// tempDir is removed on Close (memory-only mode)
	tempDir string

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the cache database in dir.
// An empty dir selects memory-only mode: the file lives in a temp
// directory that is removed on Close.
func Open(dir string, opts Options) (*DB, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tempDir := ""
	if dir == "" {
		tmp, err := os.MkdirTemp("", "vinilo-cache-")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp cache dir: %w", err)
		}
		dir, tempDir = tmp, tmp
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "vinilo.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		removeTemp(tempDir)
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		db.Close()
		removeTemp(tempDir)
		return nil, err
	}

	s := &DB{db: db, logger: logger, tempDir: tempDir}
	if opts.PageCacheMB > 0 {
		s.pages = freecache.NewCache(max(opts.PageCacheMB*1024*1024, minPageCacheBytes))
	}

	logger.Debug("opened cache database", "path", dbPath, "pageCacheMB", opts.PageCacheMB)
	return s, nil
}

func removeTemp(dir string) {
	if dir != "" {
		os.RemoveAll(dir) // Ignore errors
	}
}

// Path returns the database file path
func (s *DB) Path() string {
	return s.db.Path()
}

func (s *DB) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.db.Close()
	removeTemp(s.tempDir)
	return err
}

// view runs fn in a read-only transaction
func (s *DB) view(fn func(tx *bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	return s.db.View(fn)
}

// update runs fn in a read-write transaction; fn's error rolls back
func (s *DB) update(fn func(tx *bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	return s.db.Update(fn)
}

// === Page cache helpers ===

func (s *DB) getPage(key string) ([]byte, bool) {
	if s.pages == nil {
		return nil, false
	}
	data, err := s.pages.Get([]byte(key))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			s.logger.Debug("page cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

func (s *DB) setPage(key string, data []byte) {
	if s.pages == nil {
		return
	}
	// Entries never expire; table generations make stale keys unreachable.
	if err := s.pages.Set([]byte(key), data, 0); err != nil {
		s.logger.Debug("page cache write skipped", "key", key, "error", err)
	}
}

// PageCacheStats reports hit and miss counts of the page cache
func (s *DB) PageCacheStats() (hits, misses int64) {
	if s.pages == nil {
		return 0, 0
	}
	return s.pages.HitCount(), s.pages.MissCount()
}
