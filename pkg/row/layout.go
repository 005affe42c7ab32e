package row

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/reifydb/reifydb/pkg/safeconvert"
)

// EncodedRow is a contiguous byte buffer: a validity-bit header, a
// fixed-offset region, and a trailing indirect area for variable-length
// field payloads.
type EncodedRow struct {
	bytes []byte
}

// Bytes returns the raw backing buffer. Callers must not mutate it outside
// of the RowLayout accessors.
func (r *EncodedRow) Bytes() []byte { return r.bytes }

// Layout precomputes per-field offsets and the validity header size for a
// fixed ordered list of field types.
type Layout struct {
	Fields        []Type
	offsets       []int
	validityBytes int
	fixedSize     int // validityBytes + sum of field widths
}

// NewLayout builds a Layout from an ordered field type list.
func NewLayout(fields []Type) *Layout {
	l := &Layout{Fields: append([]Type(nil), fields...)}
	l.validityBytes = (len(fields) + 7) / 8
	l.offsets = make([]int, len(fields))
	offset := l.validityBytes
	for i, f := range fields {
		l.offsets[i] = offset
		offset += f.FixedWidth()
	}
	l.fixedSize = offset
	return l
}

// AllocateRow returns a fresh EncodedRow with all validity bits clear and
// zeroed fixed-region payload.
func (l *Layout) AllocateRow() *EncodedRow {
	return &EncodedRow{bytes: make([]byte, l.fixedSize)}
}

func (l *Layout) checkIndex(i int) {
	if i < 0 || i >= len(l.Fields) {
		panic(fmt.Sprintf("row: field index %d out of range [0,%d)", i, len(l.Fields)))
	}
}

// AllDefined reports whether every validity bit in row is set.
func (l *Layout) AllDefined(row *EncodedRow) bool {
	for i := range l.Fields {
		if !l.IsDefined(row, i) {
			return false
		}
	}
	return true
}

// IsDefined reports the validity bit for field i.
func (l *Layout) IsDefined(row *EncodedRow, i int) bool {
	l.checkIndex(i)
	return row.bytes[i/8]&(1<<uint(i%8)) != 0
}

func (l *Layout) setValid(row *EncodedRow, i int) {
	row.bytes[i/8] |= 1 << uint(i%8)
}

// SetUndefined clears the validity bit for field i. Value bytes are left
// untouched, matching the source's "undefined leaves payload alone"
// contract.
func (l *Layout) SetUndefined(row *EncodedRow, i int) {
	l.checkIndex(i)
	row.bytes[i/8] &^= 1 << uint(i%8)
}

func (l *Layout) fixedSlot(row *EncodedRow, i int, width int) []byte {
	off := l.offsets[i]
	return row.bytes[off : off+width]
}

func (l *Layout) setVarBytes(row *EncodedRow, i int, data []byte) {
	off := l.offsets[i]
	varOffset := uint32(len(row.bytes))
	row.bytes = append(row.bytes, data...)
	binary.BigEndian.PutUint32(row.bytes[off:], varOffset)
	binary.BigEndian.PutUint32(row.bytes[off+4:], uint32(len(data)))
}

func (l *Layout) varBytes(row *EncodedRow, i int) []byte {
	off := l.offsets[i]
	varOffset := binary.BigEndian.Uint32(row.bytes[off:])
	length := binary.BigEndian.Uint32(row.bytes[off+4:])
	return row.bytes[varOffset : varOffset+length]
}

// ---- typed setters ---------------------------------------------------------

func (l *Layout) SetBool(row *EncodedRow, i int, v bool) {
	l.checkIndex(i)
	if v {
		l.fixedSlot(row, i, 1)[0] = 1
	} else {
		l.fixedSlot(row, i, 1)[0] = 0
	}
	l.setValid(row, i)
}

func (l *Layout) SetInt1(row *EncodedRow, i int, v int8) {
	l.checkIndex(i)
	l.fixedSlot(row, i, 1)[0] = byte(v)
	l.setValid(row, i)
}

func (l *Layout) SetInt2(row *EncodedRow, i int, v int16) {
	l.checkIndex(i)
	binary.BigEndian.PutUint16(l.fixedSlot(row, i, 2), uint16(v))
	l.setValid(row, i)
}

func (l *Layout) SetInt4(row *EncodedRow, i int, v int32) {
	l.checkIndex(i)
	binary.BigEndian.PutUint32(l.fixedSlot(row, i, 4), uint32(v))
	l.setValid(row, i)
}

func (l *Layout) SetInt8(row *EncodedRow, i int, v int64) {
	l.checkIndex(i)
	binary.BigEndian.PutUint64(l.fixedSlot(row, i, 8), uint64(v))
	l.setValid(row, i)
}

func (l *Layout) SetUint1(row *EncodedRow, i int, v uint8) {
	l.checkIndex(i)
	l.fixedSlot(row, i, 1)[0] = v
	l.setValid(row, i)
}

func (l *Layout) SetUint2(row *EncodedRow, i int, v uint16) {
	l.checkIndex(i)
	binary.BigEndian.PutUint16(l.fixedSlot(row, i, 2), v)
	l.setValid(row, i)
}

func (l *Layout) SetUint4(row *EncodedRow, i int, v uint32) {
	l.checkIndex(i)
	binary.BigEndian.PutUint32(l.fixedSlot(row, i, 4), v)
	l.setValid(row, i)
}

func (l *Layout) SetUint8(row *EncodedRow, i int, v uint64) {
	l.checkIndex(i)
	binary.BigEndian.PutUint64(l.fixedSlot(row, i, 8), v)
	l.setValid(row, i)
}

func (l *Layout) SetFloat4(row *EncodedRow, i int, v float32) {
	l.checkIndex(i)
	binary.BigEndian.PutUint32(l.fixedSlot(row, i, 4), math.Float32bits(v))
	l.setValid(row, i)
}

func (l *Layout) SetFloat8(row *EncodedRow, i int, v float64) {
	l.checkIndex(i)
	binary.BigEndian.PutUint64(l.fixedSlot(row, i, 8), math.Float64bits(v))
	l.setValid(row, i)
}

func (l *Layout) SetInt16(row *EncodedRow, i int, v *big.Int) {
	l.checkIndex(i)
	put128(l.fixedSlot(row, i, 16), v)
	l.setValid(row, i)
}

func (l *Layout) SetUint16(row *EncodedRow, i int, v *big.Int) {
	l.checkIndex(i)
	put128(l.fixedSlot(row, i, 16), v)
	l.setValid(row, i)
}

func (l *Layout) SetUtf8(row *EncodedRow, i int, v string) {
	l.checkIndex(i)
	l.setVarBytes(row, i, []byte(v))
	l.setValid(row, i)
}

func (l *Layout) SetBlob(row *EncodedRow, i int, v []byte) {
	l.checkIndex(i)
	l.setVarBytes(row, i, v)
	l.setValid(row, i)
}

func (l *Layout) SetDate(row *EncodedRow, i int, v time.Time) {
	l.checkIndex(i)
	days := int32(v.UTC().Unix() / 86400)
	binary.BigEndian.PutUint32(l.fixedSlot(row, i, 4), uint32(days))
	l.setValid(row, i)
}

func (l *Layout) SetDateTime(row *EncodedRow, i int, v time.Time) {
	l.checkIndex(i)
	binary.BigEndian.PutUint64(l.fixedSlot(row, i, 8), uint64(v.UTC().UnixNano()))
	l.setValid(row, i)
}

func (l *Layout) SetTime(row *EncodedRow, i int, v time.Time) {
	l.checkIndex(i)
	nanosSinceMidnight := v.Hour()*3600e9 + v.Minute()*60e9 + v.Second()*1e9 + v.Nanosecond()
	binary.BigEndian.PutUint64(l.fixedSlot(row, i, 8), uint64(nanosSinceMidnight))
	l.setValid(row, i)
}

func (l *Layout) SetDuration(row *EncodedRow, i int, v time.Duration) {
	l.checkIndex(i)
	binary.BigEndian.PutUint64(l.fixedSlot(row, i, 8), uint64(v))
	l.setValid(row, i)
}

func (l *Layout) SetUuid4(row *EncodedRow, i int, v uuid.UUID) {
	l.checkIndex(i)
	copy(l.fixedSlot(row, i, 16), v[:])
	l.setValid(row, i)
}

func (l *Layout) SetUuid7(row *EncodedRow, i int, v uuid.UUID) {
	l.checkIndex(i)
	copy(l.fixedSlot(row, i, 16), v[:])
	l.setValid(row, i)
}

func (l *Layout) SetDecimal(row *EncodedRow, i int, v safeconvert.Decimal) {
	l.checkIndex(i)
	l.setVarBytes(row, i, []byte(v.String()))
	l.setValid(row, i)
}

func (l *Layout) SetInt(row *EncodedRow, i int, v *big.Int) {
	l.checkIndex(i)
	l.setVarBytes(row, i, []byte(v.String()))
	l.setValid(row, i)
}

func (l *Layout) SetUint(row *EncodedRow, i int, v *big.Int) {
	l.checkIndex(i)
	l.setVarBytes(row, i, []byte(v.String()))
	l.setValid(row, i)
}

func (l *Layout) SetDictionaryId(row *EncodedRow, i int, id uint64) {
	l.checkIndex(i)
	binary.BigEndian.PutUint64(l.fixedSlot(row, i, 8), id)
	l.setValid(row, i)
}

func (l *Layout) SetIdentityId(row *EncodedRow, i int, id uint64) {
	l.checkIndex(i)
	binary.BigEndian.PutUint64(l.fixedSlot(row, i, 8), id)
	l.setValid(row, i)
}

func (l *Layout) SetRowNumber(row *EncodedRow, i int, n uint64) {
	l.checkIndex(i)
	binary.BigEndian.PutUint64(l.fixedSlot(row, i, 8), n)
	l.setValid(row, i)
}

// SetValues dispatches each value to its typed setter based on the field's
// declared type, or SetUndefined if the value is absent.
func (l *Layout) SetValues(row *EncodedRow, values []Value) error {
	if len(values) != len(l.Fields) {
		return fmt.Errorf("row: %d values for a %d-field layout", len(values), len(l.Fields))
	}
	for i, v := range values {
		if !v.Defined {
			l.SetUndefined(row, i)
			continue
		}
		switch l.Fields[i].Kind {
		case KindBool:
			l.SetBool(row, i, v.Bool)
		case KindInt1:
			l.SetInt1(row, i, int8(v.Int))
		case KindInt2:
			l.SetInt2(row, i, int16(v.Int))
		case KindInt4:
			l.SetInt4(row, i, int32(v.Int))
		case KindInt8:
			l.SetInt8(row, i, v.Int)
		case KindUint1:
			l.SetUint1(row, i, uint8(v.Uint))
		case KindUint2:
			l.SetUint2(row, i, uint16(v.Uint))
		case KindUint4:
			l.SetUint4(row, i, uint32(v.Uint))
		case KindUint8:
			l.SetUint8(row, i, v.Uint)
		case KindFloat4:
			l.SetFloat4(row, i, v.Float32)
		case KindFloat8:
			l.SetFloat8(row, i, v.Float64)
		case KindInt16:
			l.SetInt16(row, i, v.Big)
		case KindUint16:
			l.SetUint16(row, i, v.Big)
		case KindUtf8:
			l.SetUtf8(row, i, v.Str)
		case KindBlob:
			l.SetBlob(row, i, v.Bytes)
		case KindDate:
			l.SetDate(row, i, v.Time)
		case KindDateTime:
			l.SetDateTime(row, i, v.Time)
		case KindTime:
			l.SetTime(row, i, v.Time)
		case KindDuration:
			l.SetDuration(row, i, v.Dur)
		case KindUuid4:
			l.SetUuid4(row, i, v.UUID)
		case KindUuid7:
			l.SetUuid7(row, i, v.UUID)
		case KindDecimal:
			l.SetDecimal(row, i, v.Decimal)
		case KindInt:
			l.SetInt(row, i, v.Big)
		case KindUint:
			l.SetUint(row, i, v.Big)
		case KindDictionaryId:
			l.SetDictionaryId(row, i, v.DictID)
		case KindIdentityId:
			l.SetIdentityId(row, i, v.Ident)
		case KindRowNumber:
			l.SetRowNumber(row, i, v.RowNum)
		default:
			return fmt.Errorf("row: no setter for field %d of type %s", i, l.Fields[i].Kind)
		}
	}
	return nil
}

// ---- typed getters ---------------------------------------------------------

func (l *Layout) GetBool(row *EncodedRow, i int) bool {
	l.checkIndex(i)
	return l.fixedSlot(row, i, 1)[0] != 0
}

func (l *Layout) TryGetBool(row *EncodedRow, i int) (bool, bool) {
	if !l.IsDefined(row, i) {
		return false, false
	}
	return l.GetBool(row, i), true
}

func (l *Layout) GetInt1(row *EncodedRow, i int) int8 {
	l.checkIndex(i)
	return int8(l.fixedSlot(row, i, 1)[0])
}

func (l *Layout) TryGetInt1(row *EncodedRow, i int) (int8, bool) {
	if !l.IsDefined(row, i) {
		return 0, false
	}
	return l.GetInt1(row, i), true
}

func (l *Layout) GetInt2(row *EncodedRow, i int) int16 {
	l.checkIndex(i)
	return int16(binary.BigEndian.Uint16(l.fixedSlot(row, i, 2)))
}

func (l *Layout) TryGetInt2(row *EncodedRow, i int) (int16, bool) {
	if !l.IsDefined(row, i) {
		return 0, false
	}
	return l.GetInt2(row, i), true
}

func (l *Layout) GetInt4(row *EncodedRow, i int) int32 {
	l.checkIndex(i)
	return int32(binary.BigEndian.Uint32(l.fixedSlot(row, i, 4)))
}

func (l *Layout) TryGetInt4(row *EncodedRow, i int) (int32, bool) {
	if !l.IsDefined(row, i) {
		return 0, false
	}
	return l.GetInt4(row, i), true
}

func (l *Layout) GetInt8(row *EncodedRow, i int) int64 {
	l.checkIndex(i)
	return int64(binary.BigEndian.Uint64(l.fixedSlot(row, i, 8)))
}

func (l *Layout) TryGetInt8(row *EncodedRow, i int) (int64, bool) {
	if !l.IsDefined(row, i) {
		return 0, false
	}
	return l.GetInt8(row, i), true
}

func (l *Layout) GetUint1(row *EncodedRow, i int) uint8 {
	l.checkIndex(i)
	return l.fixedSlot(row, i, 1)[0]
}

func (l *Layout) TryGetUint1(row *EncodedRow, i int) (uint8, bool) {
	if !l.IsDefined(row, i) {
		return 0, false
	}
	return l.GetUint1(row, i), true
}

func (l *Layout) GetUint2(row *EncodedRow, i int) uint16 {
	l.checkIndex(i)
	return binary.BigEndian.Uint16(l.fixedSlot(row, i, 2))
}

func (l *Layout) TryGetUint2(row *EncodedRow, i int) (uint16, bool) {
	if !l.IsDefined(row, i) {
		return 0, false
	}
	return l.GetUint2(row, i), true
}

func (l *Layout) GetUint4(row *EncodedRow, i int) uint32 {
	l.checkIndex(i)
	return binary.BigEndian.Uint32(l.fixedSlot(row, i, 4))
}

func (l *Layout) TryGetUint4(row *EncodedRow, i int) (uint32, bool) {
	if !l.IsDefined(row, i) {
		return 0, false
	}
	return l.GetUint4(row, i), true
}

func (l *Layout) GetUint8(row *EncodedRow, i int) uint64 {
	l.checkIndex(i)
	return binary.BigEndian.Uint64(l.fixedSlot(row, i, 8))
}

func (l *Layout) TryGetUint8(row *EncodedRow, i int) (uint64, bool) {
	if !l.IsDefined(row, i) {
		return 0, false
	}
	return l.GetUint8(row, i), true
}

func (l *Layout) GetFloat4(row *EncodedRow, i int) float32 {
	l.checkIndex(i)
	return math.Float32frombits(binary.BigEndian.Uint32(l.fixedSlot(row, i, 4)))
}

func (l *Layout) TryGetFloat4(row *EncodedRow, i int) (float32, bool) {
	if !l.IsDefined(row, i) {
		return 0, false
	}
	return l.GetFloat4(row, i), true
}

func (l *Layout) GetFloat8(row *EncodedRow, i int) float64 {
	l.checkIndex(i)
	return math.Float64frombits(binary.BigEndian.Uint64(l.fixedSlot(row, i, 8)))
}

func (l *Layout) TryGetFloat8(row *EncodedRow, i int) (float64, bool) {
	if !l.IsDefined(row, i) {
		return 0, false
	}
	return l.GetFloat8(row, i), true
}

func (l *Layout) GetInt16(row *EncodedRow, i int) *big.Int {
	l.checkIndex(i)
	return get128(l.fixedSlot(row, i, 16), true)
}

func (l *Layout) GetUint16(row *EncodedRow, i int) *big.Int {
	l.checkIndex(i)
	return get128(l.fixedSlot(row, i, 16), false)
}

func (l *Layout) GetUtf8(row *EncodedRow, i int) string {
	l.checkIndex(i)
	return string(l.varBytes(row, i))
}

func (l *Layout) TryGetUtf8(row *EncodedRow, i int) (string, bool) {
	if !l.IsDefined(row, i) {
		return "", false
	}
	return l.GetUtf8(row, i), true
}

func (l *Layout) GetBlob(row *EncodedRow, i int) []byte {
	l.checkIndex(i)
	return l.varBytes(row, i)
}

func (l *Layout) GetDate(row *EncodedRow, i int) time.Time {
	l.checkIndex(i)
	days := int32(binary.BigEndian.Uint32(l.fixedSlot(row, i, 4)))
	return time.Unix(int64(days)*86400, 0).UTC()
}

func (l *Layout) GetDateTime(row *EncodedRow, i int) time.Time {
	l.checkIndex(i)
	nanos := int64(binary.BigEndian.Uint64(l.fixedSlot(row, i, 8)))
	return time.Unix(0, nanos).UTC()
}

func (l *Layout) GetTime(row *EncodedRow, i int) time.Time {
	l.checkIndex(i)
	nanos := int64(binary.BigEndian.Uint64(l.fixedSlot(row, i, 8)))
	return time.Unix(0, nanos).UTC()
}

func (l *Layout) GetDuration(row *EncodedRow, i int) time.Duration {
	l.checkIndex(i)
	return time.Duration(binary.BigEndian.Uint64(l.fixedSlot(row, i, 8)))
}

func (l *Layout) GetUuid4(row *EncodedRow, i int) uuid.UUID {
	l.checkIndex(i)
	var u uuid.UUID
	copy(u[:], l.fixedSlot(row, i, 16))
	return u
}

func (l *Layout) GetUuid7(row *EncodedRow, i int) uuid.UUID {
	l.checkIndex(i)
	var u uuid.UUID
	copy(u[:], l.fixedSlot(row, i, 16))
	return u
}

func (l *Layout) GetDecimal(row *EncodedRow, i int) safeconvert.Decimal {
	l.checkIndex(i)
	return decimalFromString(string(l.varBytes(row, i)))
}

func (l *Layout) GetInt(row *EncodedRow, i int) *big.Int {
	l.checkIndex(i)
	v := new(big.Int)
	v.SetString(string(l.varBytes(row, i)), 10)
	return v
}

func (l *Layout) GetUint(row *EncodedRow, i int) *big.Int {
	return l.GetInt(row, i)
}

func (l *Layout) GetDictionaryId(row *EncodedRow, i int) uint64 {
	l.checkIndex(i)
	return binary.BigEndian.Uint64(l.fixedSlot(row, i, 8))
}

func (l *Layout) GetIdentityId(row *EncodedRow, i int) uint64 {
	l.checkIndex(i)
	return binary.BigEndian.Uint64(l.fixedSlot(row, i, 8))
}

func (l *Layout) GetRowNumber(row *EncodedRow, i int) uint64 {
	l.checkIndex(i)
	return binary.BigEndian.Uint64(l.fixedSlot(row, i, 8))
}

// GetValue reads field i assuming it is defined, dispatching on the field's
// declared type.
func (l *Layout) GetValue(row *EncodedRow, i int) Value {
	l.checkIndex(i)
	switch l.Fields[i].Kind {
	case KindBool:
		return BoolValue(l.GetBool(row, i))
	case KindInt1:
		return Int1Value(l.GetInt1(row, i))
	case KindInt2:
		return Int2Value(l.GetInt2(row, i))
	case KindInt4:
		return Int4Value(l.GetInt4(row, i))
	case KindInt8:
		return Int8Value(l.GetInt8(row, i))
	case KindUint1:
		return Uint1Value(l.GetUint1(row, i))
	case KindUint2:
		return Uint2Value(l.GetUint2(row, i))
	case KindUint4:
		return Uint4Value(l.GetUint4(row, i))
	case KindUint8:
		return Uint8Value(l.GetUint8(row, i))
	case KindFloat4:
		return Float4Value(l.GetFloat4(row, i))
	case KindFloat8:
		return Float8Value(l.GetFloat8(row, i))
	case KindInt16:
		return Int16Value(l.GetInt16(row, i))
	case KindUint16:
		return Uint16Value(l.GetUint16(row, i))
	case KindUtf8:
		return Utf8Value(l.GetUtf8(row, i))
	case KindBlob:
		return BlobValue(l.GetBlob(row, i))
	case KindDate:
		return DateValue(l.GetDate(row, i))
	case KindDateTime:
		return DateTimeValue(l.GetDateTime(row, i))
	case KindTime:
		return TimeValue(l.GetTime(row, i))
	case KindDuration:
		return DurationValue(l.GetDuration(row, i))
	case KindUuid4:
		return Uuid4Value(l.GetUuid4(row, i))
	case KindUuid7:
		return Uuid7Value(l.GetUuid7(row, i))
	case KindDecimal:
		return DecimalValue(l.GetDecimal(row, i))
	case KindInt:
		return IntValue(l.GetInt(row, i))
	case KindUint:
		return UintValue(l.GetUint(row, i))
	case KindDictionaryId:
		return DictionaryIdValue(l.GetDictionaryId(row, i))
	case KindIdentityId:
		return IdentityIdValue(l.GetIdentityId(row, i))
	case KindRowNumber:
		return RowNumberValue(l.GetRowNumber(row, i))
	default:
		panic(fmt.Sprintf("row: no getter for field %d of type %s", i, l.Fields[i].Kind))
	}
}

// TryGetValue consults the validity bit before dispatching.
func (l *Layout) TryGetValue(row *EncodedRow, i int) Value {
	if !l.IsDefined(row, i) {
		return Undefined(l.Fields[i].Kind)
	}
	return l.GetValue(row, i)
}

func put128(dst []byte, v *big.Int) {
	if v == nil {
		v = new(big.Int)
	}
	for i := range dst {
		dst[i] = 0
	}
	abs := new(big.Int).Abs(v)
	b := abs.Bytes()
	if len(b) > 16 {
		b = b[len(b)-16:]
	}
	copy(dst[16-len(b):], b)
	if v.Sign() < 0 {
		two := new(big.Int).Lsh(big.NewInt(1), 128)
		wrapped := new(big.Int).Add(two, v)
		b2 := wrapped.Bytes()
		for i := range dst {
			dst[i] = 0
		}
		if len(b2) > 16 {
			b2 = b2[len(b2)-16:]
		}
		copy(dst[16-len(b2):], b2)
	}
}

func get128(src []byte, signed bool) *big.Int {
	v := new(big.Int).SetBytes(src)
	if signed {
		half := new(big.Int).Lsh(big.NewInt(1), 127)
		if v.Cmp(half) >= 0 {
			full := new(big.Int).Lsh(big.NewInt(1), 128)
			v = new(big.Int).Sub(v, full)
		}
	}
	return v
}

func decimalFromString(s string) safeconvert.Decimal {
	dot := -1
	for i, c := range s {
		if c == '.' {
			dot = i
			break
		}
	}
	if dot < 0 {
		v := new(big.Int)
		v.SetString(s, 10)
		return safeconvert.NewDecimal(v, 0)
	}
	scale := int32(len(s) - dot - 1)
	digits := s[:dot] + s[dot+1:]
	v := new(big.Int)
	v.SetString(digits, 10)
	return safeconvert.NewDecimal(v, scale)
}
