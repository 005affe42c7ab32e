// Package memkv is a reference Store implementation backed by a sorted
// in-memory slice. It exists for tests and small embedded deployments where
// pulling in Badger is unwarranted; the production path is
// pkg/kv/badgerkv.
package memkv

import (
	"bytes"
	"sort"
	"sync"

	"github.com/reifydb/reifydb/pkg/kv"
)

// Store is a sorted-slice-backed kv.Store. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries []entry
}

type entry struct {
	key   []byte
	value []byte
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

func (s *Store) search(key []byte) int {
	return sort.Search(len(s.entries), func(i int) bool {
		return bytes.Compare(s.entries[i].key, key) >= 0
	})
}

func (s *Store) Get(key []byte) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.search(key)
	if i < len(s.entries) && bytes.Equal(s.entries[i].key, key) {
		return append([]byte(nil), s.entries[i].value...), true, nil
	}
	return nil, false, nil
}

func (s *Store) Set(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.search(key)
	k, v := append([]byte(nil), key...), append([]byte(nil), value...)
	if i < len(s.entries) && bytes.Equal(s.entries[i].key, key) {
		s.entries[i].value = v
		return nil
	}
	s.entries = append(s.entries, entry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = entry{key: k, value: v}
	return nil
}

func (s *Store) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.search(key)
	if i < len(s.entries) && bytes.Equal(s.entries[i].key, key) {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
	}
	return nil
}

func (s *Store) Scan(start, end []byte) (kv.Iterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lo := s.search(start)
	hi := len(s.entries)
	if end != nil {
		hi = s.search(end)
	}
	snap := make([]entry, hi-lo)
	copy(snap, s.entries[lo:hi])
	return &sliceIterator{entries: snap, pos: -1}, nil
}

func (s *Store) ScanPrefix(prefix []byte) (kv.Iterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lo := s.search(prefix)
	hi := lo
	for hi < len(s.entries) && bytes.HasPrefix(s.entries[hi].key, prefix) {
		hi++
	}
	snap := make([]entry, hi-lo)
	copy(snap, s.entries[lo:hi])
	return &sliceIterator{entries: snap, pos: -1}, nil
}

func (s *Store) Close() error { return nil }

type sliceIterator struct {
	entries []entry
	pos     int
}

func (it *sliceIterator) Next() bool {
	it.pos++
	return it.pos < len(it.entries)
}

func (it *sliceIterator) Key() []byte   { return it.entries[it.pos].key }
func (it *sliceIterator) Value() []byte { return it.entries[it.pos].value }
func (it *sliceIterator) Err() error    { return nil }
func (it *sliceIterator) Close() error  { return nil }
