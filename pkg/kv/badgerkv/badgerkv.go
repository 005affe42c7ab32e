// Package badgerkv adapts Badger into the kv.Store contract used by the
// MVCC engine. It is the production storage backend; pkg/kv/memkv is the
// in-memory reference used by tests.
//
// Reads of immutable Version(userKey, version) entries optionally go
// through a ristretto read-through cache; every other key kind always
// reads through to Badger, since those are mutated in place and ristretto
// deletes are asynchronous (see versionKeyDiscriminant).
package badgerkv

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"

	"github.com/reifydb/reifydb/pkg/kv"
)

// Config controls how the underlying Badger database is opened.
type Config struct {
	// Dir is the on-disk directory. Ignored when InMemory is set.
	Dir        string
	InMemory   bool
	SyncWrites bool
	// CacheSize is the total cost budget (ristretto MaxCost) of the optional
	// read-through cache; each entry costs its value length in bytes. Zero
	// disables the cache.
	CacheSize int64
	Logger    *zap.Logger
}

// DefaultConfig returns sensible defaults for a persistent, on-disk store.
func DefaultConfig(dir string) *Config {
	return &Config{
		Dir:        dir,
		SyncWrites: true,
		CacheSize:  1 << 20,
	}
}

// versionKeyDiscriminant is the first byte of every Keycode-encoded
// Version(userKey, version) key (pkg/mvcc's kindVersion variant). Those
// entries are write-once and immutable once committed. Every other key
// kind (NextVersion, TxActive, TxActiveSnapshot, TxWrite, Unversioned) is
// mutated in place, so caching them is unsafe: ristretto's Del is buffered,
// not synchronous, and a stale read of e.g. NextVersion after an async Del
// would hand two Begin calls the same version. Only kindVersion keys go
// through the cache.
const versionKeyDiscriminant = 0x04

func isVersionKey(key []byte) bool {
	return len(key) > 0 && key[0] == versionKeyDiscriminant
}

// Store adapts *badger.DB into kv.Store. Reads of immutable Version keys
// optionally go through a ristretto cache, invalidated on local writes to
// that same key; every other key kind always reads through to Badger.
type Store struct {
	db     *badger.DB
	cache  *ristretto.Cache[string, []byte]
	log    *zap.Logger
	mu     sync.Mutex
	closed bool
}

// Open opens (or creates) the Badger database described by cfg.
func Open(cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig("")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerkv: open: %w", err)
	}

	var cache *ristretto.Cache[string, []byte]
	if cfg.CacheSize > 0 {
		cache, err = ristretto.NewCache(&ristretto.Config[string, []byte]{
			NumCounters: cfg.CacheSize * 10,
			MaxCost:     cfg.CacheSize,
			BufferItems: 64,
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("badgerkv: cache: %w", err)
		}
	}

	return &Store{db: db, cache: cache, log: log}, nil
}

func (s *Store) Get(key []byte) ([]byte, bool, error) {
	cacheable := s.cache != nil && isVersionKey(key)
	if cacheable {
		if v, ok := s.cache.Get(string(key)); ok {
			return append([]byte(nil), v...), true, nil
		}
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("badgerkv: get: %w", err)
	}
	if value == nil {
		return nil, false, nil
	}
	if cacheable {
		s.cache.Set(string(key), value, int64(len(value)))
	}
	return value, true, nil
}

func (s *Store) Set(key, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("badgerkv: set: %w", err)
	}
	if s.cache != nil && isVersionKey(key) {
		s.cache.Del(string(key))
	}
	return nil
}

func (s *Store) Delete(key []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("badgerkv: delete: %w", err)
	}
	if s.cache != nil && isVersionKey(key) {
		s.cache.Del(string(key))
	}
	return nil
}

func (s *Store) Scan(start, end []byte) (kv.Iterator, error) {
	txn := s.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	it := txn.NewIterator(opts)
	it.Seek(start)
	return &iterator{txn: txn, it: it, end: end, first: true}, nil
}

func (s *Store) ScanPrefix(prefix []byte) (kv.Iterator, error) {
	txn := s.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	it.Seek(prefix)
	return &iterator{txn: txn, it: it, prefix: prefix, first: true}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.cache != nil {
		s.cache.Close()
	}
	return s.db.Close()
}

// iterator wraps a read-only Badger transaction + iterator so that callers
// never have to manage transaction lifetime directly.
type iterator struct {
	txn    *badger.Txn
	it     *badger.Iterator
	prefix []byte
	end    []byte
	first  bool
	key    []byte
	value  []byte
	err    error
}

func (it *iterator) Next() bool {
	if it.first {
		it.first = false
	} else {
		it.it.Next()
	}
	if !it.it.ValidForPrefix(it.prefixOrEmpty()) {
		return false
	}
	item := it.it.Item()
	key := item.KeyCopy(nil)
	if it.end != nil && bytes.Compare(key, it.end) >= 0 {
		return false
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		it.err = fmt.Errorf("badgerkv: iterate: %w", err)
		return false
	}
	it.key, it.value = key, value
	return true
}

func (it *iterator) prefixOrEmpty() []byte {
	if it.prefix != nil {
		return it.prefix
	}
	return []byte{}
}

func (it *iterator) Key() []byte   { return it.key }
func (it *iterator) Value() []byte { return it.value }
func (it *iterator) Err() error    { return it.err }
func (it *iterator) Close() error {
	it.it.Close()
	it.txn.Discard()
	return nil
}
