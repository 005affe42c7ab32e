package mvcc

import "errors"

var (
	// ErrConflict is returned when a write finds a version it cannot see,
	// meaning a concurrent transaction got there first. The caller should
	// retry the transaction.
	ErrConflict = errors.New("mvcc: serialization conflict, retry transaction")
	// ErrReadOnly is returned by write operations on a read-only
	// transaction (including historical time-travel transactions).
	ErrReadOnly = errors.New("mvcc: transaction is read-only")
	// ErrNotFound is returned by operations that require an active
	// transaction record that is no longer present.
	ErrNotFound = errors.New("mvcc: not found")
	// ErrCorruption is returned when a stored key or value cannot be
	// decoded into its expected shape.
	ErrCorruption = errors.New("mvcc: data corruption")
	// ErrRangeError is returned by BeginAsOf for an as-of version that has
	// not yet been allocated.
	ErrRangeError = errors.New("mvcc: invalid range")
)
