package mvcc

import "sort"

// State is a transaction's write version, read-only flag and the snapshot of
// concurrently active transactions it started with. It is kept separate from
// Transaction so it can be inspected or reconstructed independently of the
// engine it runs against.
type State struct {
	Version    Version
	ReadOnly   bool
	ActiveSet  []Version // sorted ascending, no duplicates
}

func newActiveSet(versions map[Version]struct{}) []Version {
	out := make([]Version, 0, len(versions))
	for v := range versions {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s State) isActive(v Version) bool {
	i := sort.Search(len(s.ActiveSet), func(i int) bool { return s.ActiveSet[i] >= v })
	return i < len(s.ActiveSet) && s.ActiveSet[i] == v
}

// isVisible reports whether a version's write is visible to a transaction in
// this state. Future versions and versions belonging to a transaction that
// was active when this transaction started are never visible. Read-write
// transactions see everything up to and including their own version
// (including their own uncommitted writes); read-only and time-travel
// transactions only see versions strictly below theirs, so that a query at
// version v sees the same world the read-write transaction at v saw when it
// began.
func (s State) isVisible(v Version) bool {
	if s.isActive(v) {
		return false
	}
	if s.ReadOnly {
		return v < s.Version
	}
	return v <= s.Version
}

func (s State) minActiveOr(fallback Version) Version {
	if len(s.ActiveSet) == 0 {
		return fallback
	}
	return s.ActiveSet[0]
}
