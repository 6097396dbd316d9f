// Package prefs persists the operator's small local preferences (consent and
// dismissed hints) with an expiry, the way a browser keeps cookies.
package prefs

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned for a missing or expired key.
var ErrNotFound = errors.New("preference not found")

// Store is a string key/value store with per-key expiry.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key. A ttl of zero never expires.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

// BadgerStore implements Store with Badger DB.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a store in the directory at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(filepath.Clean(path)).
		WithLogger(nil).
		WithValueLogFileSize(1 << 20)
	return openBadger(opts)
}

// NewInMemoryBadgerStore opens a store that lives only as long as the process.
func NewInMemoryBadgerStore() (*BadgerStore, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

func openBadger(opts badger.Options) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func prefKey(key string) []byte {
	return []byte("pref:" + key)
}

// Get implements Store.
func (s *BadgerStore) Get(_ context.Context, key string) (string, error) {
	var out string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(prefKey(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(v []byte) error {
			out = string(v)
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// Set implements Store.
func (s *BadgerStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(prefKey(key), []byte(value))
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryStore is a map-backed Store for tests and one-shot commands.
type MemoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryStore creates an empty MemoryStore. now defaults to time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{now: now, entries: make(map[string]memoryEntry)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.entries, key)
		return "", ErrNotFound
	}
	return e.value, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
