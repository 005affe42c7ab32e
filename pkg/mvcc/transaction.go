package mvcc

import (
	"fmt"

	"go.uber.org/zap"
)

// maxVersion is used as an open upper bound when scanning every version of a
// single user key.
const maxVersion = Version(^uint64(0))

// Transaction is a single MVCC transaction: a version to write at (if
// read-write) plus the active-set snapshot that determines what it can see.
// It is a scoped handle — callers must Commit or Rollback it; dropping it
// without doing either leaks its TxActive marker.
type Transaction struct {
	engine *Engine
	state  State
}

// Version returns the version this transaction is running at.
func (t *Transaction) Version() Version { return t.state.Version }

// ReadOnly reports whether this transaction can write.
func (t *Transaction) ReadOnly() bool { return t.state.ReadOnly }

// State returns the transaction's exportable state, for Engine.Resume.
func (t *Transaction) State() State { return t.state }

// exactKeyBounds returns the byte range covering every Version(userKey, *)
// entry for exactly this user key, regardless of version.
func exactKeyBounds(userKey []byte) (start, end []byte) {
	full := keyVersion(userKey, 0).encode()
	prefix := full[:len(full)-8] // discriminant + escape(userKey) + terminator
	_, end = prefixRange(prefix)
	return full, end
}

// Get fetches the latest value visible to this transaction, or ok=false if
// there is none (missing or tombstoned).
func (t *Transaction) Get(userKey []byte) (value []byte, ok bool, err error) {
	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()

	start, end := exactKeyBounds(userKey)
	it, err := t.engine.store.Scan(start, end)
	if err != nil {
		return nil, false, fmt.Errorf("mvcc: get: %w", err)
	}
	defer it.Close()

	var bestValue []byte
	var bestTombstone bool
	found := false
	for it.Next() {
		k, err := decodeKey(it.Key())
		if err != nil {
			return nil, false, err
		}
		if k.kind != kindVersion {
			return nil, false, fmt.Errorf("mvcc: %w: expected Version key", ErrCorruption)
		}
		if !t.state.isVisible(k.version) {
			continue
		}
		v, tomb, err := decodeStoredValue(it.Value())
		if err != nil {
			return nil, false, err
		}
		bestValue, bestTombstone, found = v, tomb, true
	}
	if err := it.Err(); err != nil {
		return nil, false, fmt.Errorf("mvcc: get: %w", err)
	}
	if !found || bestTombstone {
		return nil, false, nil
	}
	return bestValue, true, nil
}

// Set writes value for userKey at this transaction's version.
func (t *Transaction) Set(userKey, value []byte) error {
	return t.writeVersion(userKey, value, false)
}

// Delete writes a tombstone for userKey at this transaction's version.
func (t *Transaction) Delete(userKey []byte) error {
	return t.writeVersion(userKey, nil, true)
}

func (t *Transaction) writeVersion(userKey, value []byte, tombstone bool) error {
	if t.state.ReadOnly {
		return ErrReadOnly
	}

	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()

	// Conflict detection: scan from the oldest version this transaction
	// cannot assume has committed up through every version of this key.
	// Only the latest entry matters, since every transaction enforces the
	// same invariant, so an earlier version being invisible to us would
	// already have been rejected by whoever wrote it.
	from := keyVersion(userKey, t.state.minActiveOr(t.state.Version+1)).encode()
	_, end := exactKeyBounds(userKey)
	it, err := t.engine.store.Scan(from, end)
	if err != nil {
		return fmt.Errorf("mvcc: write: %w", err)
	}
	var lastVersion Version
	haveLast := false
	for it.Next() {
		k, err := decodeKey(it.Key())
		if err != nil {
			it.Close()
			return err
		}
		if k.kind != kindVersion {
			it.Close()
			return fmt.Errorf("mvcc: %w: expected Version key", ErrCorruption)
		}
		lastVersion, haveLast = k.version, true
	}
	if err := it.Err(); err != nil {
		it.Close()
		return fmt.Errorf("mvcc: write: %w", err)
	}
	it.Close()

	if haveLast && !t.state.isVisible(lastVersion) {
		return ErrConflict
	}

	if err := t.engine.store.Set(keyTxWrite(t.state.Version, userKey).encode(), []byte{}); err != nil {
		return fmt.Errorf("mvcc: write: record tx write: %w", err)
	}
	if err := t.engine.store.Set(keyVersion(userKey, t.state.Version).encode(), encodeStoredValue(value, tombstone)); err != nil {
		return fmt.Errorf("mvcc: write: store version: %w", err)
	}
	return nil
}

// Commit publishes the transaction's writes by removing its membership in
// the active set. It does not flush to durable storage; that is delegated to
// the underlying store.
func (t *Transaction) Commit() error {
	if t.state.ReadOnly {
		return nil
	}
	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()

	it, err := t.engine.store.ScanPrefix(prefixTxWrite(t.state.Version))
	if err != nil {
		return fmt.Errorf("mvcc: commit: %w", err)
	}
	var toRemove [][]byte
	for it.Next() {
		toRemove = append(toRemove, append([]byte(nil), it.Key()...))
	}
	if err := it.Err(); err != nil {
		it.Close()
		return fmt.Errorf("mvcc: commit: %w", err)
	}
	it.Close()

	for _, k := range toRemove {
		if err := t.engine.store.Delete(k); err != nil {
			return fmt.Errorf("mvcc: commit: %w", err)
		}
	}
	if err := t.engine.store.Delete(keyTxActive(t.state.Version).encode()); err != nil {
		return fmt.Errorf("mvcc: commit: remove active marker: %w", err)
	}
	t.engine.log.Debug("transaction commit", zap.Uint64("version", uint64(t.state.Version)))
	return nil
}

// Rollback undoes every version this transaction wrote and removes it from
// the active set. The TxActiveSnapshot(version) record is left behind: later
// time-travel queries at this version rely on it.
func (t *Transaction) Rollback() error {
	if t.state.ReadOnly {
		return nil
	}
	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()

	it, err := t.engine.store.ScanPrefix(prefixTxWrite(t.state.Version))
	if err != nil {
		return fmt.Errorf("mvcc: rollback: %w", err)
	}
	var toRemove [][]byte
	for it.Next() {
		k, err := decodeKey(it.Key())
		if err != nil {
			it.Close()
			return err
		}
		if k.kind != kindTxWrite {
			it.Close()
			return fmt.Errorf("mvcc: %w: expected TxWrite key", ErrCorruption)
		}
		toRemove = append(toRemove, keyVersion(k.userKey, t.state.Version).encode())
		toRemove = append(toRemove, append([]byte(nil), it.Key()...))
	}
	if err := it.Err(); err != nil {
		it.Close()
		return fmt.Errorf("mvcc: rollback: %w", err)
	}
	it.Close()

	for _, k := range toRemove {
		if err := t.engine.store.Delete(k); err != nil {
			return fmt.Errorf("mvcc: rollback: %w", err)
		}
	}
	if err := t.engine.store.Delete(keyTxActive(t.state.Version).encode()); err != nil {
		return fmt.Errorf("mvcc: rollback: remove active marker: %w", err)
	}
	t.engine.log.Debug("transaction rollback", zap.Uint64("version", uint64(t.state.Version)))
	return nil
}

// Scan returns the latest visible (key, value) pair for every user key in
// [low, high), in key order, with tombstones skipped. A nil low scans from
// the beginning of the keyspace; a nil high scans to its end.
func (t *Transaction) Scan(low, high []byte) *ScanIterator {
	start := []byte{byte(kindVersion)}
	if low != nil {
		start = keyVersion(low, 0).encode()
	}
	end := []byte{byte(kindUnversioned)}
	if high != nil {
		end = keyVersion(high, 0).encode()
	}
	return newScanIterator(t.engine, t.state, start, end, defaultBufferSize)
}

// ScanPrefix returns the latest visible (key, value) pair for every user key
// beginning with prefix.
func (t *Transaction) ScanPrefix(prefix []byte) *ScanIterator {
	start, end := prefixRange(prefixVersion(prefix))
	return newScanIterator(t.engine, t.state, start, end, defaultBufferSize)
}
