package mvcc

import "fmt"

// defaultBufferSize is the number of live, visible pairs ScanIterator pulls
// from the engine per lock acquisition. Production code should use this;
// tests use a smaller size to exercise the refill path.
const defaultBufferSize = 32

// scanPhase is the ScanIterator state machine's current state: Init before
// the first fill, Buffered(n) while n items remain queued, Exhausted once
// the remainder is empty and the buffer has drained.
type scanPhase int

const (
	phaseInit scanPhase = iota
	phaseBuffered
	phaseExhausted
)

type pair struct {
	key   []byte
	value []byte
}

// ScanIterator walks the latest visible (key, value) pair for each distinct
// user key across a raw key range, without holding the engine mutex across
// the caller's own iteration: each refill acquires the mutex once, pulls up
// to bufferSize live pairs, and releases it before returning control.
//
// It is not safe for concurrent use, but its state (buffer + remainder) is a
// plain value snapshot and can be copied to fork a second cursor over the
// same remaining range.
type ScanIterator struct {
	engine     *Engine
	tx         State
	bufferSize int

	phase   scanPhase
	buffer  []pair
	current pair
	// remainder is the [start, end) range not yet pulled into buffer.
	remainderStart, remainderEnd []byte
	remainderValid               bool
	err                          error
}

func newScanIterator(engine *Engine, tx State, start, end []byte, bufferSize int) *ScanIterator {
	return &ScanIterator{
		engine:         engine,
		tx:             tx,
		bufferSize:     bufferSize,
		phase:          phaseInit,
		remainderStart: start,
		remainderEnd:   end,
		remainderValid: true,
	}
}

// Clone returns an independent copy of the iterator's current position.
func (it *ScanIterator) Clone() *ScanIterator {
	cp := *it
	cp.buffer = append([]pair(nil), it.buffer...)
	return &cp
}

// Next advances to the next live, visible pair, returning false at
// exhaustion or on error (check Err in that case).
func (it *ScanIterator) Next() bool {
	if it.err != nil {
		return false
	}
	if len(it.buffer) == 0 {
		if it.phase == phaseExhausted {
			return false
		}
		if err := it.fillBuffer(); err != nil {
			it.err = err
			return false
		}
		if len(it.buffer) == 0 {
			it.phase = phaseExhausted
			return false
		}
	}
	it.current, it.buffer = it.buffer[0], it.buffer[1:]
	if len(it.buffer) == 0 && !it.remainderValid {
		it.phase = phaseExhausted
	} else {
		it.phase = phaseBuffered
	}
	return true
}

func (it *ScanIterator) Key() []byte   { return it.current.key }
func (it *ScanIterator) Value() []byte { return it.current.value }
func (it *ScanIterator) Err() error    { return it.err }

// visibleEntry is one raw Version(userKey, version) entry from the store
// that this transaction can see.
type visibleEntry struct {
	userKey []byte
	version Version
	raw     []byte
}

// fillBuffer pulls up to bufferSize live, visible (key, value) pairs from
// the engine, holding its mutex only for the duration of this call, then
// saves the unread range as the new remainder.
//
// An entry is only ever buffered once a peek at the next visible entry
// confirms it belongs to a different user key (or the range is exhausted):
// since entries for one user key are encoded together in ascending version
// order, the run of visible entries sharing a key ends with its latest
// version, and that is the only one worth keeping. This also guarantees a
// buffer cut always lands on a key boundary, so a later fillBuffer call
// never re-opens a run already flushed by an earlier one.
func (it *ScanIterator) fillBuffer() error {
	if !it.remainderValid {
		return nil
	}

	it.engine.mu.Lock()
	defer it.engine.mu.Unlock()

	raw, err := it.engine.store.Scan(it.remainderStart, it.remainderEnd)
	if err != nil {
		return fmt.Errorf("mvcc: scan: %w", err)
	}
	defer raw.Close()

	advance := func() (*visibleEntry, error) {
		for raw.Next() {
			k, err := decodeKey(raw.Key())
			if err != nil {
				return nil, err
			}
			if k.kind != kindVersion {
				return nil, fmt.Errorf("mvcc: %w: expected Version key", ErrCorruption)
			}
			if !it.tx.isVisible(k.version) {
				continue
			}
			return &visibleEntry{userKey: k.userKey, version: k.version, raw: append([]byte(nil), raw.Value()...)}, nil
		}
		return nil, raw.Err()
	}

	var peeked *visibleEntry
	havePeek := false
	peek := func() (*visibleEntry, error) {
		if !havePeek {
			e, err := advance()
			if err != nil {
				return nil, err
			}
			peeked, havePeek = e, true
		}
		return peeked, nil
	}
	next := func() (*visibleEntry, error) {
		e, err := peek()
		havePeek = false
		return e, err
	}

	for len(it.buffer) < it.bufferSize {
		entry, err := next()
		if err != nil {
			return err
		}
		if entry == nil {
			it.remainderValid = false
			return nil
		}

		upcoming, err := peek()
		if err != nil {
			return err
		}
		if upcoming != nil && bytesEqual(upcoming.userKey, entry.userKey) {
			// Not the latest visible version for this key; skip it.
			continue
		}

		value, tombstone, err := decodeStoredValue(entry.raw)
		if err != nil {
			return err
		}
		if tombstone {
			continue
		}
		it.buffer = append(it.buffer, pair{key: entry.userKey, value: value})

		if len(it.buffer) == it.bufferSize {
			if upcoming != nil {
				it.remainderStart = keyVersion(upcoming.userKey, upcoming.version).encode()
				it.remainderValid = true
			} else {
				it.remainderValid = false
			}
			return nil
		}
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
