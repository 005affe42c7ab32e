package row

import (
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/reifydb/reifydb/pkg/safeconvert"
)

// Value is a decoded scalar of any supported logical type. It is the
// currency RowLayout.SetValues and ColumnData.GetValue exchange: one flat
// struct rather than N wrapper types, so dispatch on Kind stays a single
// switch instead of a type assertion per caller.
type Value struct {
	Kind    Kind
	Defined bool

	Bool    bool
	Int     int64    // Int1, Int2, Int4, Int8
	Uint    uint64   // Uint1, Uint2, Uint4, Uint8
	Big     *big.Int // Int16, Uint16 (128-bit), Int, Uint (arbitrary precision)
	Float32 float32
	Float64 float64
	Str     string
	Bytes   []byte
	Time    time.Time
	Dur     time.Duration
	UUID    uuid.UUID
	Decimal safeconvert.Decimal
	RowNum  uint64
	DictID  uint64
	Ident   uint64
}

func Undefined(k Kind) Value { return Value{Kind: k, Defined: false} }

func BoolValue(v bool) Value    { return Value{Kind: KindBool, Defined: true, Bool: v} }
func Int1Value(v int8) Value    { return Value{Kind: KindInt1, Defined: true, Int: int64(v)} }
func Int2Value(v int16) Value   { return Value{Kind: KindInt2, Defined: true, Int: int64(v)} }
func Int4Value(v int32) Value   { return Value{Kind: KindInt4, Defined: true, Int: int64(v)} }
func Int8Value(v int64) Value   { return Value{Kind: KindInt8, Defined: true, Int: v} }
func Uint1Value(v uint8) Value  { return Value{Kind: KindUint1, Defined: true, Uint: uint64(v)} }
func Uint2Value(v uint16) Value { return Value{Kind: KindUint2, Defined: true, Uint: uint64(v)} }
func Uint4Value(v uint32) Value { return Value{Kind: KindUint4, Defined: true, Uint: uint64(v)} }
func Uint8Value(v uint64) Value { return Value{Kind: KindUint8, Defined: true, Uint: v} }

func Int16Value(v *big.Int) Value  { return Value{Kind: KindInt16, Defined: true, Big: v} }
func Uint16Value(v *big.Int) Value { return Value{Kind: KindUint16, Defined: true, Big: v} }
func IntValue(v *big.Int) Value    { return Value{Kind: KindInt, Defined: true, Big: v} }
func UintValue(v *big.Int) Value   { return Value{Kind: KindUint, Defined: true, Big: v} }

func Float4Value(v float32) Value { return Value{Kind: KindFloat4, Defined: true, Float32: v} }
func Float8Value(v float64) Value { return Value{Kind: KindFloat8, Defined: true, Float64: v} }

func Utf8Value(v string) Value { return Value{Kind: KindUtf8, Defined: true, Str: v} }
func BlobValue(v []byte) Value { return Value{Kind: KindBlob, Defined: true, Bytes: v} }

func DateValue(v time.Time) Value     { return Value{Kind: KindDate, Defined: true, Time: v} }
func DateTimeValue(v time.Time) Value { return Value{Kind: KindDateTime, Defined: true, Time: v} }
func TimeValue(v time.Time) Value     { return Value{Kind: KindTime, Defined: true, Time: v} }
func DurationValue(v time.Duration) Value {
	return Value{Kind: KindDuration, Defined: true, Dur: v}
}

func Uuid4Value(v uuid.UUID) Value { return Value{Kind: KindUuid4, Defined: true, UUID: v} }
func Uuid7Value(v uuid.UUID) Value { return Value{Kind: KindUuid7, Defined: true, UUID: v} }

func DecimalValue(v safeconvert.Decimal) Value {
	return Value{Kind: KindDecimal, Defined: true, Decimal: v}
}

func DictionaryIdValue(id uint64) Value {
	return Value{Kind: KindDictionaryId, Defined: true, DictID: id}
}
func IdentityIdValue(id uint64) Value { return Value{Kind: KindIdentityId, Defined: true, Ident: id} }
func RowNumberValue(n uint64) Value   { return Value{Kind: KindRowNumber, Defined: true, RowNum: n} }
