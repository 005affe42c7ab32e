package mvcc

import "fmt"

// Versioned values are stored as a one-byte tag (tombstone or present)
// followed by the raw payload, mirroring the Option<Vec<u8>> the original
// engine serializes at each version.
const (
	tagTombstone byte = 0
	tagValue     byte = 1
)

func encodeStoredValue(value []byte, tombstone bool) []byte {
	if tombstone {
		return []byte{tagTombstone}
	}
	out := make([]byte, 0, len(value)+1)
	out = append(out, tagValue)
	return append(out, value...)
}

func decodeStoredValue(b []byte) (value []byte, tombstone bool, err error) {
	if len(b) == 0 {
		return nil, false, fmt.Errorf("mvcc: %w: empty stored value", ErrCorruption)
	}
	switch b[0] {
	case tagTombstone:
		return nil, true, nil
	case tagValue:
		return append([]byte(nil), b[1:]...), false, nil
	default:
		return nil, false, fmt.Errorf("mvcc: %w: unknown value tag 0x%02x", ErrCorruption, b[0])
	}
}
