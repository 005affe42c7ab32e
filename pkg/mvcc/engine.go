// Package mvcc implements a multi-version concurrency control transactional
// layer over an ordered byte-keyed kv.Store: snapshot isolation, time-travel
// reads, and first-writer-wins conflict detection, following the Keycode
// key space described in the module's design notes.
package mvcc

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/reifydb/reifydb/pkg/kv"
)

// Status summarizes the engine's version sequence and in-flight transaction
// count.
type Status struct {
	Versions  uint64
	ActiveTxs int
}

// Engine is a transactional key-value engine layered over any kv.Store. All
// operations acquire engine.mu for their duration and release it before
// returning control to the caller, so that non-thread-safe storage backends
// and external serialization (e.g. a replicated command log) both work.
type Engine struct {
	mu    sync.Mutex
	store kv.Store
	log   *zap.Logger
}

// New wraps store in a transactional engine. A nil logger disables logging.
func New(store kv.Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, log: log}
}

// Begin starts a new read-write transaction, allocating it a fresh version.
func (e *Engine) Begin() (*Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	version, err := e.nextVersionLocked()
	if err != nil {
		return nil, err
	}
	if err := e.store.Set(keyNextVersion().encode(), encodeVersion(version+1)); err != nil {
		return nil, fmt.Errorf("mvcc: begin: %w", err)
	}

	active, err := e.scanActiveLocked()
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		if err := e.store.Set(keyTxActiveSnapshot(version).encode(), encodeVersionSet(active)); err != nil {
			return nil, fmt.Errorf("mvcc: begin: persist active snapshot: %w", err)
		}
	}
	if err := e.store.Set(keyTxActive(version).encode(), []byte{}); err != nil {
		return nil, fmt.Errorf("mvcc: begin: mark active: %w", err)
	}

	e.log.Debug("transaction begin", zap.Uint64("version", uint64(version)), zap.Int("active", len(active)))
	return &Transaction{engine: e, state: State{Version: version, ReadOnly: false, ActiveSet: active}}, nil
}

// BeginReadOnly starts a read-only transaction observing the current,
// real-time snapshot.
func (e *Engine) BeginReadOnly() (*Transaction, error) {
	return e.BeginAsOf(nil)
}

// BeginAsOf starts a read-only (time-travel, if asOf is non-nil) transaction.
// A nil asOf observes the live snapshot; otherwise the transaction replays
// the state as of the beginning of version *asOf.
func (e *Engine) BeginAsOf(asOf *Version) (*Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	version, err := e.nextVersionLocked()
	if err != nil {
		return nil, err
	}

	var active []Version
	if asOf != nil {
		if *asOf >= version {
			return nil, fmt.Errorf("mvcc: %w: version %d does not exist", ErrRangeError, *asOf)
		}
		version = *asOf
		raw, ok, err := e.store.Get(keyTxActiveSnapshot(version).encode())
		if err != nil {
			return nil, fmt.Errorf("mvcc: begin as of: %w", err)
		}
		if ok {
			active, err = decodeVersionSet(raw)
			if err != nil {
				return nil, err
			}
		}
	} else {
		active, err = e.scanActiveLocked()
		if err != nil {
			return nil, err
		}
	}

	return &Transaction{engine: e, state: State{Version: version, ReadOnly: true, ActiveSet: active}}, nil
}

// Resume reconstructs a transaction from a previously exported State. For a
// read-write state it verifies the transaction is still marked active.
func (e *Engine) Resume(s State) (*Transaction, error) {
	if !s.ReadOnly {
		e.mu.Lock()
		_, ok, err := e.store.Get(keyTxActive(s.Version).encode())
		e.mu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("mvcc: resume: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("mvcc: %w: no active transaction at version %d", ErrNotFound, s.Version)
		}
	}
	return &Transaction{engine: e, state: s}, nil
}

// Status reports the current version sequence position and active
// transaction count.
func (e *Engine) Status() (Status, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := e.nextVersionLocked()
	if err != nil {
		return Status{}, err
	}
	active, err := e.scanActiveLocked()
	if err != nil {
		return Status{}, err
	}
	return Status{Versions: uint64(next - 1), ActiveTxs: len(active)}, nil
}

// GetUnversioned reads a key outside the version sequence, used for engine
// metadata that isn't subject to MVCC visibility rules.
func (e *Engine) GetUnversioned(userKey []byte) ([]byte, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok, err := e.store.Get(keyUnversioned(userKey).encode())
	if err != nil {
		return nil, false, fmt.Errorf("mvcc: get unversioned: %w", err)
	}
	return v, ok, nil
}

// SetUnversioned writes a key outside the version sequence.
func (e *Engine) SetUnversioned(userKey, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.Set(keyUnversioned(userKey).encode(), value); err != nil {
		return fmt.Errorf("mvcc: set unversioned: %w", err)
	}
	return nil
}

func (e *Engine) nextVersionLocked() (Version, error) {
	raw, ok, err := e.store.Get(keyNextVersion().encode())
	if err != nil {
		return 0, fmt.Errorf("mvcc: read next version: %w", err)
	}
	if !ok {
		return 1, nil
	}
	v, _, err := decodeVersion(raw)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func (e *Engine) scanActiveLocked() ([]Version, error) {
	it, err := e.store.ScanPrefix(prefixTxActive())
	if err != nil {
		return nil, fmt.Errorf("mvcc: scan active: %w", err)
	}
	defer it.Close()

	set := make(map[Version]struct{})
	for it.Next() {
		k, err := decodeKey(it.Key())
		if err != nil {
			return nil, err
		}
		if k.kind != kindTxActive {
			return nil, fmt.Errorf("mvcc: %w: expected TxActive key", ErrCorruption)
		}
		set[k.version] = struct{}{}
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("mvcc: scan active: %w", err)
	}
	return newActiveSet(set), nil
}

func encodeVersionSet(vs []Version) []byte {
	out := make([]byte, 0, 4+8*len(vs))
	count := uint32(len(vs))
	out = append(out, byte(count>>24), byte(count>>16), byte(count>>8), byte(count))
	for _, v := range vs {
		out = append(out, encodeVersion(v)...)
	}
	return out
}

func decodeVersionSet(b []byte) ([]Version, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("mvcc: %w: short active set", ErrCorruption)
	}
	count := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	b = b[4:]
	out := make([]Version, 0, count)
	for i := uint32(0); i < count; i++ {
		v, n, err := decodeVersion(b)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		b = b[n:]
	}
	return out, nil
}
