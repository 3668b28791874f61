// Package cache provides the persistent HTTP page cache. Fetched doc-site
// pages are large and change rarely, so they are kept in BadgerDB with a
// TTL and reused across runs.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/quantmind-br/relnotes-go/internal/domain"
)

var _ domain.Cache = (*BadgerCache)(nil)

// Options contains cache configuration options
type Options struct {
	// Directory is the on-disk location; empty selects ~/.relnotes/cache.
	Directory string
	// InMemory disables persistence. Used by tests.
	InMemory bool
	// Logger enables badger's internal logging.
	Logger bool
}

// DefaultOptions returns default cache options
func DefaultOptions() Options {
	return Options{}
}

// BadgerCache is a cache implementation using BadgerDB
type BadgerCache struct {
	db     *badger.DB
	stopGC chan struct{}
}

// NewBadgerCache opens the cache database.
func NewBadgerCache(opts Options) (*BadgerCache, error) {
	var badgerOpts badger.Options

	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Directory == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			opts.Directory = filepath.Join(homeDir, ".relnotes", "cache")
		}
		if err := os.MkdirAll(opts.Directory, 0o755); err != nil {
			return nil, err
		}
		badgerOpts = badger.DefaultOptions(opts.Directory)
	}

	if !opts.Logger {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}

	c := &BadgerCache{db: db, stopGC: make(chan struct{})}
	go c.runGC()
	return c, nil
}

// runGC reclaims value-log space in the background until Close.
func (c *BadgerCache) runGC() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = c.db.RunValueLogGC(0.5)
		case <-c.stopGC:
			return
		}
	}
}

// Get retrieves a cached page body. Returns domain.ErrCacheMiss when the
// key is absent or its TTL has elapsed.
func (c *BadgerCache) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(GenerateKey(key)))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return domain.ErrCacheMiss
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores a page body. A zero TTL stores it without expiry.
func (c *BadgerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(GenerateKey(key)), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Has checks if a key exists in cache
func (c *BadgerCache) Has(ctx context.Context, key string) bool {
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(GenerateKey(key)))
		return err
	})
	return err == nil
}

// Delete removes a key from cache
func (c *BadgerCache) Delete(ctx context.Context, key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(GenerateKey(key)))
	})
}

// Close releases cache resources
func (c *BadgerCache) Close() error {
	close(c.stopGC)
	return c.db.Close()
}

// Clear removes all entries from the cache
func (c *BadgerCache) Clear() error {
	return c.db.DropAll()
}

// Size returns the number of entries in the cache
func (c *BadgerCache) Size() int64 {
	var count int64
	_ = c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count
}
