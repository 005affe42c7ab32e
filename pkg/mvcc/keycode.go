package mvcc

import "fmt"

// kind is the Keycode-style discriminant for an mvcc key variant: its value
// is the byte a key's encoding begins with, matching the order the original
// enum declares its variants in so that discriminants group and sort the way
// the module doc describes.
type kind uint8

const (
	kindNextVersion kind = iota
	kindTxActive
	kindTxActiveSnapshot
	kindTxWrite
	kindVersion
	kindUnversioned
)

// Version identifies a logical point in the MVCC version sequence.
type Version uint64

// key is the decoded form of one of the key variants in the mvcc keyspace:
//
//	NextVersion                the next version to allocate
//	TxActive(version)          membership in the active-transaction set
//	TxActiveSnapshot(version)  the active set as observed by a tx starting at version
//	TxWrite(version, userKey)  a key written by an in-flight transaction, for rollback
//	Version(userKey, version)  a versioned value
//	Unversioned(userKey)       metadata outside the version sequence
type key struct {
	kind    kind
	version Version
	userKey []byte
}

func keyNextVersion() key                          { return key{kind: kindNextVersion} }
func keyTxActive(v Version) key                    { return key{kind: kindTxActive, version: v} }
func keyTxActiveSnapshot(v Version) key             { return key{kind: kindTxActiveSnapshot, version: v} }
func keyTxWrite(v Version, userKey []byte) key      { return key{kind: kindTxWrite, version: v, userKey: userKey} }
func keyVersion(userKey []byte, v Version) key      { return key{kind: kindVersion, version: v, userKey: userKey} }
func keyUnversioned(userKey []byte) key             { return key{kind: kindUnversioned, userKey: userKey} }

// encode renders a key to its Keycode byte string: a one-byte discriminant
// followed by its fields in declaration order, with byte strings escaped and
// terminated so prefix relationships among encoded keys match prefix
// relationships among the logical values.
func (k key) encode() []byte {
	switch k.kind {
	case kindNextVersion:
		return []byte{byte(kindNextVersion)}
	case kindTxActive:
		out := []byte{byte(kindTxActive)}
		return append(out, encodeVersion(k.version)...)
	case kindTxActiveSnapshot:
		out := []byte{byte(kindTxActiveSnapshot)}
		return append(out, encodeVersion(k.version)...)
	case kindTxWrite:
		out := []byte{byte(kindTxWrite)}
		out = append(out, encodeVersion(k.version)...)
		out = append(out, encodeBytes(k.userKey)...)
		return out
	case kindVersion:
		out := []byte{byte(kindVersion)}
		out = append(out, encodeBytes(k.userKey)...)
		out = append(out, encodeVersion(k.version)...)
		return out
	case kindUnversioned:
		out := []byte{byte(kindUnversioned)}
		out = append(out, encodeBytes(k.userKey)...)
		return out
	default:
		panic(fmt.Sprintf("mvcc: unknown key kind %d", k.kind))
	}
}

// decodeKey parses a Keycode byte string back into a key.
func decodeKey(b []byte) (key, error) {
	if len(b) == 0 {
		return key{}, fmt.Errorf("mvcc: %w: empty key", ErrCorruption)
	}
	switch kind(b[0]) {
	case kindNextVersion:
		return keyNextVersion(), nil
	case kindTxActive:
		v, _, err := decodeVersion(b[1:])
		if err != nil {
			return key{}, err
		}
		return keyTxActive(v), nil
	case kindTxActiveSnapshot:
		v, _, err := decodeVersion(b[1:])
		if err != nil {
			return key{}, err
		}
		return keyTxActiveSnapshot(v), nil
	case kindTxWrite:
		v, n, err := decodeVersion(b[1:])
		if err != nil {
			return key{}, err
		}
		userKey, _, err := decodeBytes(b[1+n:])
		if err != nil {
			return key{}, err
		}
		return keyTxWrite(v, userKey), nil
	case kindVersion:
		userKey, rest, err := decodeBytes(b[1:])
		if err != nil {
			return key{}, err
		}
		v, _, err := decodeVersion(rest)
		if err != nil {
			return key{}, err
		}
		return keyVersion(userKey, v), nil
	case kindUnversioned:
		userKey, _, err := decodeBytes(b[1:])
		if err != nil {
			return key{}, err
		}
		return keyUnversioned(userKey), nil
	default:
		return key{}, fmt.Errorf("mvcc: %w: unknown key kind %d", ErrCorruption, b[0])
	}
}

// prefixTxActive, prefixTxWrite, prefixVersion and prefixUnversioned mirror
// the original KeyPrefix enum: byte strings that are a genuine prefix of
// every full key encoding of the matching variant, for use with
// Store.ScanPrefix.
func prefixTxActive() []byte { return []byte{byte(kindTxActive)} }

func prefixTxWrite(v Version) []byte {
	return append([]byte{byte(kindTxWrite)}, encodeVersion(v)...)
}

// prefixVersion returns the shared byte prefix of every Version(userKey, *)
// encoding whose userKey begins with the given bytes. A bare
// keyVersion(userKey, 0).encode() also matches only the exact key, since its
// encoded byte-string terminator makes "ab" distinguishable from "abc"; we
// chop the 8-byte version and the two-byte terminator off to get a genuine
// multi-key prefix.
func prefixVersion(userKeyPrefix []byte) []byte {
	full := keyVersion(userKeyPrefix, 0).encode()
	return full[:len(full)-10]
}

func prefixUnversioned() []byte { return []byte{byte(kindUnversioned)} }

func encodeVersion(v Version) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

func decodeVersion(b []byte) (Version, int, error) {
	if len(b) < 8 {
		return 0, 0, fmt.Errorf("mvcc: %w: short version", ErrCorruption)
	}
	var v Version
	for i := 0; i < 8; i++ {
		v = v<<8 | Version(b[i])
	}
	return v, 8, nil
}

// encodeBytes escapes a byte string for use inside a composite key: every
// 0x00 byte becomes the pair 0x00 0xff, and the string is terminated by the
// pair 0x00 0x00. This is order-preserving: the terminator pair sorts below
// the escape pair, so a string is always ordered before any string it is a
// genuine prefix of.
func encodeBytes(b []byte) []byte {
	out := make([]byte, 0, len(b)+2)
	for _, c := range b {
		if c == 0x00 {
			out = append(out, 0x00, 0xff)
		} else {
			out = append(out, c)
		}
	}
	return append(out, 0x00, 0x00)
}

// decodeBytes reads one encodeBytes-encoded string off the front of b and
// returns it along with the remaining bytes.
func decodeBytes(b []byte) (value, rest []byte, err error) {
	var out []byte
	i := 0
	for i < len(b) {
		if b[i] != 0x00 {
			out = append(out, b[i])
			i++
			continue
		}
		if i+1 >= len(b) {
			return nil, nil, fmt.Errorf("mvcc: %w: truncated escape sequence", ErrCorruption)
		}
		switch b[i+1] {
		case 0xff:
			out = append(out, 0x00)
			i += 2
		case 0x00:
			return out, b[i+2:], nil
		default:
			return nil, nil, fmt.Errorf("mvcc: %w: invalid escape byte 0x%02x", ErrCorruption, b[i+1])
		}
	}
	return nil, nil, fmt.Errorf("mvcc: %w: missing terminator", ErrCorruption)
}

// prefixRange computes the [start, end) byte range containing every key that
// begins with prefix: start is prefix itself, end is prefix with its last
// byte incremented (carrying through trailing 0xff bytes). A prefix of all
// 0xff bytes (or empty) has no finite upper bound.
func prefixRange(prefix []byte) (start, end []byte) {
	start = append([]byte(nil), prefix...)
	end = append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return start, end[:i+1]
		}
	}
	return start, nil
}
