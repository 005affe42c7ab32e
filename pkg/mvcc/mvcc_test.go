package mvcc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reifydb/reifydb/pkg/kv/memkv"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	store := memkv.New()
	t.Cleanup(func() { _ = store.Close() })
	return New(store, nil)
}

func TestBeginCommitRoundTrip(t *testing.T) {
	e := newTestEngine(t)

	tx, err := e.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Set([]byte("a"), []byte("1")))
	require.NoError(t, tx.Commit())

	ro, err := e.BeginReadOnly()
	require.NoError(t, err)
	value, ok, err := ro.Get([]byte("a"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", string(value))
	require.NoError(t, ro.Commit())
}

func TestGetMissingKey(t *testing.T) {
	e := newTestEngine(t)
	tx, err := e.Begin()
	require.NoError(t, err)
	_, ok, err := tx.Get([]byte("nope"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteTombstones(t *testing.T) {
	e := newTestEngine(t)

	tx, err := e.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Set([]byte("a"), []byte("1")))
	require.NoError(t, tx.Commit())

	tx2, err := e.Begin()
	require.NoError(t, err)
	require.NoError(t, tx2.Delete([]byte("a")))
	require.NoError(t, tx2.Commit())

	ro, err := e.BeginReadOnly()
	require.NoError(t, err)
	_, ok, err := ro.Get([]byte("a"))
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestSnapshotIsolation mirrors the module's own worked example: two
// transactions active concurrently each see a different, self-consistent
// world, and a later reader sees the fully committed state.
func TestSnapshotIsolation(t *testing.T) {
	e := newTestEngine(t)

	setup, err := e.Begin()
	require.NoError(t, err)
	require.NoError(t, setup.Set([]byte("key"), []byte("v1")))
	require.NoError(t, setup.Commit())

	t2, err := e.Begin()
	require.NoError(t, err)

	t3, err := e.Begin()
	require.NoError(t, err)
	require.NoError(t, t3.Set([]byte("key"), []byte("v3")))
	require.NoError(t, t3.Commit())

	// t3 was not active when t2 began (t2's active set only contains
	// transactions active at t2's start), so the active set does not hide
	// v3; t2 still does not see it because a read-write transaction sees
	// only versions up to its own, and t3 began after t2 with a higher one.
	value, ok, err := t2.Get([]byte("key"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", string(value))
	require.NoError(t, t2.Commit())

	t5, err := e.BeginReadOnly()
	require.NoError(t, err)
	value, ok, err = t5.Get([]byte("key"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v3", string(value))
}

func TestConcurrentActiveTransactionDoesNotSeeUncommittedWrite(t *testing.T) {
	e := newTestEngine(t)

	writer, err := e.Begin()
	require.NoError(t, err)
	require.NoError(t, writer.Set([]byte("key"), []byte("uncommitted")))

	reader, err := e.Begin()
	require.NoError(t, err)
	_, ok, err := reader.Get([]byte("key"))
	require.NoError(t, err)
	assert.False(t, ok, "active writer's uncommitted write must not be visible")

	require.NoError(t, writer.Commit())
	require.NoError(t, reader.Commit())
}

func TestWriteConflict(t *testing.T) {
	e := newTestEngine(t)

	t1, err := e.Begin()
	require.NoError(t, err)
	t2, err := e.Begin()
	require.NoError(t, err)

	require.NoError(t, t1.Set([]byte("key"), []byte("from t1")))
	require.NoError(t, t1.Commit())

	// t2 started before t1 committed, so t1's version is in t2's active
	// set and therefore invisible: writing now must conflict.
	err = t2.Set([]byte("key"), []byte("from t2"))
	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, t2.Rollback())
}

func TestReadOnlyTransactionRejectsWrites(t *testing.T) {
	e := newTestEngine(t)
	ro, err := e.BeginReadOnly()
	require.NoError(t, err)

	err = ro.Set([]byte("a"), []byte("1"))
	assert.ErrorIs(t, err, ErrReadOnly)

	err = ro.Delete([]byte("a"))
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestRollbackUndoesWrites(t *testing.T) {
	e := newTestEngine(t)

	tx, err := e.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Set([]byte("a"), []byte("1")))
	require.NoError(t, tx.Rollback())

	ro, err := e.BeginReadOnly()
	require.NoError(t, err)
	_, ok, err := ro.Get([]byte("a"))
	require.NoError(t, err)
	assert.False(t, ok)

	// A fresh writer must not see a stale conflict against the rolled
	// back version.
	tx2, err := e.Begin()
	require.NoError(t, err)
	require.NoError(t, tx2.Set([]byte("a"), []byte("2")))
	require.NoError(t, tx2.Commit())
}

func TestRollbackAllowsRewriteByAnotherTransaction(t *testing.T) {
	e := newTestEngine(t)

	t1, err := e.Begin()
	require.NoError(t, err)
	t2, err := e.Begin()
	require.NoError(t, err)

	require.NoError(t, t1.Set([]byte("key"), []byte("t1")))
	require.NoError(t, t1.Rollback())

	require.NoError(t, t2.Set([]byte("key"), []byte("t2")))
	require.NoError(t, t2.Commit())

	ro, err := e.BeginReadOnly()
	require.NoError(t, err)
	value, ok, err := ro.Get([]byte("key"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "t2", string(value))
}

func TestBeginAsOfTimeTravel(t *testing.T) {
	e := newTestEngine(t)

	tx1, err := e.Begin()
	require.NoError(t, err)
	require.NoError(t, tx1.Set([]byte("key"), []byte("v1")))
	require.NoError(t, tx1.Commit())

	tx2, err := e.Begin()
	require.NoError(t, err)
	v2 := tx2.Version()
	require.NoError(t, tx2.Set([]byte("key"), []byte("v2")))
	require.NoError(t, tx2.Commit())

	// As of tx2's version the store looks as it did just before tx2 began.
	past, err := e.BeginAsOf(&v2)
	require.NoError(t, err)
	value, ok, err := past.Get([]byte("key"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", string(value))

	now, err := e.BeginReadOnly()
	require.NoError(t, err)
	value, ok, err = now.Get([]byte("key"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v2", string(value))
}

func TestBeginAsOfFutureVersionFails(t *testing.T) {
	e := newTestEngine(t)
	future := Version(1000)
	_, err := e.BeginAsOf(&future)
	assert.ErrorIs(t, err, ErrRangeError)
}

func TestResumeRequiresActiveTransaction(t *testing.T) {
	e := newTestEngine(t)

	tx, err := e.Begin()
	require.NoError(t, err)
	state := tx.State()
	require.NoError(t, tx.Commit())

	_, err = e.Resume(state)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResumeReadWriteTransaction(t *testing.T) {
	e := newTestEngine(t)

	tx, err := e.Begin()
	require.NoError(t, err)
	state := tx.State()

	resumed, err := e.Resume(state)
	require.NoError(t, err)
	require.NoError(t, resumed.Set([]byte("a"), []byte("1")))
	require.NoError(t, resumed.Commit())
}

func TestStatusReportsVersionsAndActiveTxs(t *testing.T) {
	e := newTestEngine(t)

	tx1, err := e.Begin()
	require.NoError(t, err)
	require.NoError(t, tx1.Commit())

	tx2, err := e.Begin()
	require.NoError(t, err)

	status, err := e.Status()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), status.Versions)
	assert.Equal(t, 1, status.ActiveTxs)

	require.NoError(t, tx2.Commit())
}

func TestUnversionedKeyBypassesVisibility(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SetUnversioned([]byte("meta"), []byte("v1")))

	value, ok, err := e.GetUnversioned([]byte("meta"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", string(value))
}

func scanAll(t *testing.T, it *ScanIterator) []pair {
	t.Helper()
	var out []pair
	for it.Next() {
		out = append(out, pair{
			key:   append([]byte(nil), it.Key()...),
			value: append([]byte(nil), it.Value()...),
		})
	}
	require.NoError(t, it.Err())
	return out
}

func TestScanOrderedAndLatestOnly(t *testing.T) {
	e := newTestEngine(t)

	tx, err := e.Begin()
	require.NoError(t, err)
	for _, k := range []string{"c", "a", "b"} {
		require.NoError(t, tx.Set([]byte(k), []byte("1-"+k)))
	}
	require.NoError(t, tx.Commit())

	tx2, err := e.Begin()
	require.NoError(t, err)
	require.NoError(t, tx2.Set([]byte("b"), []byte("2-b")))
	require.NoError(t, tx2.Commit())

	ro, err := e.BeginReadOnly()
	require.NoError(t, err)
	got := scanAll(t, ro.Scan(nil, nil))
	require.Len(t, got, 3)
	assert.Equal(t, "a", string(got[0].key))
	assert.Equal(t, "1-a", string(got[0].value))
	assert.Equal(t, "b", string(got[1].key))
	assert.Equal(t, "2-b", string(got[1].value))
	assert.Equal(t, "c", string(got[2].key))
	assert.Equal(t, "1-c", string(got[2].value))
}

func TestScanSkipsTombstones(t *testing.T) {
	e := newTestEngine(t)

	tx, err := e.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Set([]byte("a"), []byte("1")))
	require.NoError(t, tx.Set([]byte("b"), []byte("2")))
	require.NoError(t, tx.Commit())

	tx2, err := e.Begin()
	require.NoError(t, err)
	require.NoError(t, tx2.Delete([]byte("a")))
	require.NoError(t, tx2.Commit())

	ro, err := e.BeginReadOnly()
	require.NoError(t, err)
	got := scanAll(t, ro.Scan(nil, nil))
	require.Len(t, got, 1)
	assert.Equal(t, "b", string(got[0].key))
}

func TestScanPrefixMatchesOnlyThatPrefix(t *testing.T) {
	e := newTestEngine(t)

	tx, err := e.Begin()
	require.NoError(t, err)
	for _, k := range []string{"app", "apple", "apply", "banana"} {
		require.NoError(t, tx.Set([]byte(k), []byte(k)))
	}
	require.NoError(t, tx.Commit())

	ro, err := e.BeginReadOnly()
	require.NoError(t, err)
	got := scanAll(t, ro.ScanPrefix([]byte("app")))
	require.Len(t, got, 3)
	for _, p := range got {
		assert.Contains(t, []string{"app", "apple", "apply"}, string(p.key))
	}
}

// TestScanBufferRefill forces the ScanIterator's buffer to refill multiple
// times by constructing it directly with a tiny buffer size, verifying the
// remainder/refill bookkeeping never drops or duplicates a key across a
// fillBuffer boundary.
func TestScanBufferRefill(t *testing.T) {
	e := newTestEngine(t)

	tx, err := e.Begin()
	require.NoError(t, err)
	keys := []string{"a", "b", "c", "d", "e", "f", "g"}
	for _, k := range keys {
		require.NoError(t, tx.Set([]byte(k), []byte("v-"+k)))
	}
	require.NoError(t, tx.Commit())

	// A second transaction rewrites some keys so each one's run spans
	// more than one raw version, exercising the peek-ahead run-skipping
	// logic as well as the cross-call remainder.
	tx2, err := e.Begin()
	require.NoError(t, err)
	require.NoError(t, tx2.Set([]byte("b"), []byte("v2-b")))
	require.NoError(t, tx2.Set([]byte("d"), []byte("v2-d")))
	require.NoError(t, tx2.Commit())

	ro, err := e.BeginReadOnly()
	require.NoError(t, err)
	it := newScanIterator(ro.engine, ro.state, []byte{byte(kindVersion)}, []byte{byte(kindUnversioned)}, 2)
	got := scanAll(t, it)

	require.Len(t, got, len(keys))
	for i, k := range keys {
		assert.Equal(t, k, string(got[i].key))
	}
	assert.Equal(t, "v2-b", string(got[1].value))
	assert.Equal(t, "v2-d", string(got[3].value))
}

func TestScanIteratorCloneIsIndependent(t *testing.T) {
	e := newTestEngine(t)

	tx, err := e.Begin()
	require.NoError(t, err)
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, tx.Set([]byte(k), []byte(k)))
	}
	require.NoError(t, tx.Commit())

	ro, err := e.BeginReadOnly()
	require.NoError(t, err)
	it := newScanIterator(ro.engine, ro.state, []byte{byte(kindVersion)}, []byte{byte(kindUnversioned)}, 1)
	require.True(t, it.Next())
	assert.Equal(t, "a", string(it.Key()))

	clone := it.Clone()
	require.True(t, it.Next())
	assert.Equal(t, "b", string(it.Key()))

	require.True(t, clone.Next())
	assert.Equal(t, "b", string(clone.Key()), "clone resumes from the point it was cloned at")
}
