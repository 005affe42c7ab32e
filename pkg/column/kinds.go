package column

import (
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/reifydb/reifydb/pkg/bitvec"
	"github.com/reifydb/reifydb/pkg/row"
	"github.com/reifydb/reifydb/pkg/safeconvert"
)

// wrap ties a bare container to an optional validity bitvec, matching the
// source's "xxx_with_bitvec(values, bits)" constructor family: nil bits
// means every row is valid (the container stays bare).
func wrap(inner Data, bits *bitvec.BitVec) Data {
	if bits == nil {
		return inner
	}
	return &optionColumn{inner: inner, valid: bits}
}

func matchKind(v row.Value, k row.Kind) bool { return v.Kind == k }

func NewBool(values []bool) Data {
	return newTyped(row.KindBool, values, false, row.BoolValue, func(v row.Value) (bool, bool) {
		if !matchKind(v, row.KindBool) {
			return false, false
		}
		return v.Bool, true
	})
}
func BoolWithBitvec(values []bool, bits *bitvec.BitVec) Data { return wrap(NewBool(values), bits) }

func NewInt1(values []int8) Data {
	return newTyped(row.KindInt1, values, 0, func(v int8) row.Value { return row.Int1Value(v) }, func(v row.Value) (int8, bool) {
		if !matchKind(v, row.KindInt1) {
			return 0, false
		}
		return int8(v.Int), true
	})
}
func Int1WithBitvec(values []int8, bits *bitvec.BitVec) Data { return wrap(NewInt1(values), bits) }

func NewInt2(values []int16) Data {
	return newTyped(row.KindInt2, values, 0, func(v int16) row.Value { return row.Int2Value(v) }, func(v row.Value) (int16, bool) {
		if !matchKind(v, row.KindInt2) {
			return 0, false
		}
		return int16(v.Int), true
	})
}
func Int2WithBitvec(values []int16, bits *bitvec.BitVec) Data { return wrap(NewInt2(values), bits) }

func NewInt4(values []int32) Data {
	return newTyped(row.KindInt4, values, 0, func(v int32) row.Value { return row.Int4Value(v) }, func(v row.Value) (int32, bool) {
		if !matchKind(v, row.KindInt4) {
			return 0, false
		}
		return int32(v.Int), true
	})
}
func Int4WithBitvec(values []int32, bits *bitvec.BitVec) Data { return wrap(NewInt4(values), bits) }

func NewInt8(values []int64) Data {
	return newTyped(row.KindInt8, values, 0, func(v int64) row.Value { return row.Int8Value(v) }, func(v row.Value) (int64, bool) {
		if !matchKind(v, row.KindInt8) {
			return 0, false
		}
		return v.Int, true
	})
}
func Int8WithBitvec(values []int64, bits *bitvec.BitVec) Data { return wrap(NewInt8(values), bits) }

func NewUint1(values []uint8) Data {
	return newTyped(row.KindUint1, values, 0, func(v uint8) row.Value { return row.Uint1Value(v) }, func(v row.Value) (uint8, bool) {
		if !matchKind(v, row.KindUint1) {
			return 0, false
		}
		return uint8(v.Uint), true
	})
}
func Uint1WithBitvec(values []uint8, bits *bitvec.BitVec) Data { return wrap(NewUint1(values), bits) }

func NewUint2(values []uint16) Data {
	return newTyped(row.KindUint2, values, 0, func(v uint16) row.Value { return row.Uint2Value(v) }, func(v row.Value) (uint16, bool) {
		if !matchKind(v, row.KindUint2) {
			return 0, false
		}
		return uint16(v.Uint), true
	})
}
func Uint2WithBitvec(values []uint16, bits *bitvec.BitVec) Data { return wrap(NewUint2(values), bits) }

func NewUint4(values []uint32) Data {
	return newTyped(row.KindUint4, values, 0, func(v uint32) row.Value { return row.Uint4Value(v) }, func(v row.Value) (uint32, bool) {
		if !matchKind(v, row.KindUint4) {
			return 0, false
		}
		return uint32(v.Uint), true
	})
}
func Uint4WithBitvec(values []uint32, bits *bitvec.BitVec) Data { return wrap(NewUint4(values), bits) }

func NewUint8(values []uint64) Data {
	return newTyped(row.KindUint8, values, 0, func(v uint64) row.Value { return row.Uint8Value(v) }, func(v row.Value) (uint64, bool) {
		if !matchKind(v, row.KindUint8) {
			return 0, false
		}
		return v.Uint, true
	})
}
func Uint8WithBitvec(values []uint64, bits *bitvec.BitVec) Data { return wrap(NewUint8(values), bits) }

func NewFloat4(values []float32) Data {
	return newTyped(row.KindFloat4, values, 0, func(v float32) row.Value { return row.Float4Value(v) }, func(v row.Value) (float32, bool) {
		if !matchKind(v, row.KindFloat4) {
			return 0, false
		}
		return v.Float32, true
	})
}
func Float4WithBitvec(values []float32, bits *bitvec.BitVec) Data { return wrap(NewFloat4(values), bits) }

func NewFloat8(values []float64) Data {
	return newTyped(row.KindFloat8, values, 0, func(v float64) row.Value { return row.Float8Value(v) }, func(v row.Value) (float64, bool) {
		if !matchKind(v, row.KindFloat8) {
			return 0, false
		}
		return v.Float64, true
	})
}
func Float8WithBitvec(values []float64, bits *bitvec.BitVec) Data { return wrap(NewFloat8(values), bits) }

func NewUtf8(values []string) Data {
	return newTyped(row.KindUtf8, values, "", func(v string) row.Value { return row.Utf8Value(v) }, func(v row.Value) (string, bool) {
		if !matchKind(v, row.KindUtf8) {
			return "", false
		}
		return v.Str, true
	})
}
func Utf8WithBitvec(values []string, bits *bitvec.BitVec) Data { return wrap(NewUtf8(values), bits) }

func NewBlob(values [][]byte) Data {
	return newTyped(row.KindBlob, values, nil, func(v []byte) row.Value { return row.BlobValue(v) }, func(v row.Value) ([]byte, bool) {
		if !matchKind(v, row.KindBlob) {
			return nil, false
		}
		return v.Bytes, true
	})
}
func BlobWithBitvec(values [][]byte, bits *bitvec.BitVec) Data { return wrap(NewBlob(values), bits) }

func NewDate(values []time.Time) Data {
	return newTyped(row.KindDate, values, time.Time{}, func(v time.Time) row.Value { return row.DateValue(v) }, func(v row.Value) (time.Time, bool) {
		if !matchKind(v, row.KindDate) {
			return time.Time{}, false
		}
		return v.Time, true
	})
}
func DateWithBitvec(values []time.Time, bits *bitvec.BitVec) Data { return wrap(NewDate(values), bits) }

func NewDateTime(values []time.Time) Data {
	return newTyped(row.KindDateTime, values, time.Time{}, func(v time.Time) row.Value { return row.DateTimeValue(v) }, func(v row.Value) (time.Time, bool) {
		if !matchKind(v, row.KindDateTime) {
			return time.Time{}, false
		}
		return v.Time, true
	})
}
func DateTimeWithBitvec(values []time.Time, bits *bitvec.BitVec) Data {
	return wrap(NewDateTime(values), bits)
}

func NewTime(values []time.Time) Data {
	return newTyped(row.KindTime, values, time.Time{}, func(v time.Time) row.Value { return row.TimeValue(v) }, func(v row.Value) (time.Time, bool) {
		if !matchKind(v, row.KindTime) {
			return time.Time{}, false
		}
		return v.Time, true
	})
}
func TimeWithBitvec(values []time.Time, bits *bitvec.BitVec) Data { return wrap(NewTime(values), bits) }

func NewDuration(values []time.Duration) Data {
	return newTyped(row.KindDuration, values, 0, func(v time.Duration) row.Value { return row.DurationValue(v) }, func(v row.Value) (time.Duration, bool) {
		if !matchKind(v, row.KindDuration) {
			return 0, false
		}
		return v.Dur, true
	})
}
func DurationWithBitvec(values []time.Duration, bits *bitvec.BitVec) Data {
	return wrap(NewDuration(values), bits)
}

func NewUuid4(values []uuid.UUID) Data {
	return newTyped(row.KindUuid4, values, uuid.Nil, func(v uuid.UUID) row.Value { return row.Uuid4Value(v) }, func(v row.Value) (uuid.UUID, bool) {
		if !matchKind(v, row.KindUuid4) {
			return uuid.Nil, false
		}
		return v.UUID, true
	})
}
func Uuid4WithBitvec(values []uuid.UUID, bits *bitvec.BitVec) Data { return wrap(NewUuid4(values), bits) }

func NewUuid7(values []uuid.UUID) Data {
	return newTyped(row.KindUuid7, values, uuid.Nil, func(v uuid.UUID) row.Value { return row.Uuid7Value(v) }, func(v row.Value) (uuid.UUID, bool) {
		if !matchKind(v, row.KindUuid7) {
			return uuid.Nil, false
		}
		return v.UUID, true
	})
}
func Uuid7WithBitvec(values []uuid.UUID, bits *bitvec.BitVec) Data { return wrap(NewUuid7(values), bits) }

// NewDecimal builds a Decimal column with a fixed precision/scale; any
// pushed value at a different scale is rescaled via SafeConvert, and a
// rescale that would truncate non-zero digits is rejected as a mismatch
// (see ColumnData §4.4's scale-preservation constraint).
func NewDecimal(values []safeconvert.Decimal, precision uint8, scale int32) Data {
	zero := safeconvert.NewDecimal(big.NewInt(0), scale)
	t := newTyped(row.KindDecimal, values, zero, func(v safeconvert.Decimal) row.Value { return row.DecimalValue(v) }, func(v row.Value) (safeconvert.Decimal, bool) {
		if !matchKind(v, row.KindDecimal) {
			return safeconvert.Decimal{}, false
		}
		if v.Decimal.Scale() == scale {
			return v.Decimal, true
		}
		rescaled, err := v.Decimal.Rescale(scale)
		if err != nil {
			return safeconvert.Decimal{}, false
		}
		return rescaled, true
	})
	t.decimalScale = scale
	t.decimalPrecision = precision
	return t
}
func DecimalWithBitvec(values []safeconvert.Decimal, precision uint8, scale int32, bits *bitvec.BitVec) Data {
	return wrap(NewDecimal(values, precision, scale), bits)
}

func NewVarInt(values []*big.Int) Data {
	return newTyped(row.KindInt, values, big.NewInt(0), func(v *big.Int) row.Value { return row.IntValue(v) }, func(v row.Value) (*big.Int, bool) {
		if !matchKind(v, row.KindInt) {
			return nil, false
		}
		return v.Big, true
	})
}
func VarIntWithBitvec(values []*big.Int, bits *bitvec.BitVec) Data { return wrap(NewVarInt(values), bits) }

func NewVarUint(values []*big.Int) Data {
	return newTyped(row.KindUint, values, big.NewInt(0), func(v *big.Int) row.Value { return row.UintValue(v) }, func(v row.Value) (*big.Int, bool) {
		if !matchKind(v, row.KindUint) {
			return nil, false
		}
		return v.Big, true
	})
}
func VarUintWithBitvec(values []*big.Int, bits *bitvec.BitVec) Data { return wrap(NewVarUint(values), bits) }

func NewInt16(values []*big.Int) Data {
	return newTyped(row.KindInt16, values, big.NewInt(0), func(v *big.Int) row.Value { return row.Int16Value(v) }, func(v row.Value) (*big.Int, bool) {
		if !matchKind(v, row.KindInt16) {
			return nil, false
		}
		return v.Big, true
	})
}
func Int16WithBitvec(values []*big.Int, bits *bitvec.BitVec) Data { return wrap(NewInt16(values), bits) }

func NewUint16(values []*big.Int) Data {
	return newTyped(row.KindUint16, values, big.NewInt(0), func(v *big.Int) row.Value { return row.Uint16Value(v) }, func(v row.Value) (*big.Int, bool) {
		if !matchKind(v, row.KindUint16) {
			return nil, false
		}
		return v.Big, true
	})
}
func Uint16WithBitvec(values []*big.Int, bits *bitvec.BitVec) Data { return wrap(NewUint16(values), bits) }

func NewDictionaryId(values []uint64) Data {
	return newTyped(row.KindDictionaryId, values, 0, func(v uint64) row.Value { return row.DictionaryIdValue(v) }, func(v row.Value) (uint64, bool) {
		if !matchKind(v, row.KindDictionaryId) {
			return 0, false
		}
		return v.DictID, true
	})
}
func DictionaryIdWithBitvec(values []uint64, bits *bitvec.BitVec) Data {
	return wrap(NewDictionaryId(values), bits)
}

func NewIdentityId(values []uint64) Data {
	return newTyped(row.KindIdentityId, values, 0, func(v uint64) row.Value { return row.IdentityIdValue(v) }, func(v row.Value) (uint64, bool) {
		if !matchKind(v, row.KindIdentityId) {
			return 0, false
		}
		return v.Ident, true
	})
}
func IdentityIdWithBitvec(values []uint64, bits *bitvec.BitVec) Data {
	return wrap(NewIdentityId(values), bits)
}

func NewRowNumber(values []uint64) Data {
	return newTyped(row.KindRowNumber, values, 0, func(v uint64) row.Value { return row.RowNumberValue(v) }, func(v row.Value) (uint64, bool) {
		if !matchKind(v, row.KindRowNumber) {
			return 0, false
		}
		return v.RowNum, true
	})
}
func RowNumberWithBitvec(values []uint64, bits *bitvec.BitVec) Data {
	return wrap(NewRowNumber(values), bits)
}

// Skeleton builds the length-n typed-but-all-invalid container append_rows
// needs to bootstrap an Undefined or all-none-Option column against a
// schema field type before the first fast-path push.
func Skeleton(t row.Type, n int) Data {
	bare := bareSkeletonOfType(t, n)
	return wrap(bare, bitvec.Repeat(n, false))
}

func bareSkeletonOfType(t row.Type, n int) Data {
	if t.Kind == row.KindOption {
		return bareSkeletonOfType(*t.Inner, n)
	}
	switch t.Kind {
	case row.KindBool:
		return NewBool(make([]bool, n))
	case row.KindInt1:
		return NewInt1(make([]int8, n))
	case row.KindInt2:
		return NewInt2(make([]int16, n))
	case row.KindInt4:
		return NewInt4(make([]int32, n))
	case row.KindInt8:
		return NewInt8(make([]int64, n))
	case row.KindUint1:
		return NewUint1(make([]uint8, n))
	case row.KindUint2:
		return NewUint2(make([]uint16, n))
	case row.KindUint4:
		return NewUint4(make([]uint32, n))
	case row.KindUint8:
		return NewUint8(make([]uint64, n))
	case row.KindFloat4:
		return NewFloat4(make([]float32, n))
	case row.KindFloat8:
		return NewFloat8(make([]float64, n))
	case row.KindUtf8:
		return NewUtf8(make([]string, n))
	case row.KindBlob:
		return NewBlob(make([][]byte, n))
	case row.KindDate:
		return NewDate(make([]time.Time, n))
	case row.KindDateTime:
		return NewDateTime(make([]time.Time, n))
	case row.KindTime:
		return NewTime(make([]time.Time, n))
	case row.KindDuration:
		return NewDuration(make([]time.Duration, n))
	case row.KindUuid4:
		return NewUuid4(make([]uuid.UUID, n))
	case row.KindUuid7:
		return NewUuid7(make([]uuid.UUID, n))
	case row.KindDecimal:
		return NewDecimal(make([]safeconvert.Decimal, n), t.Precision, t.Scale)
	case row.KindInt:
		return NewVarInt(make([]*big.Int, n))
	case row.KindUint:
		return NewVarUint(make([]*big.Int, n))
	case row.KindInt16:
		return NewInt16(make([]*big.Int, n))
	case row.KindUint16:
		return NewUint16(make([]*big.Int, n))
	case row.KindDictionaryId:
		return NewDictionaryId(make([]uint64, n))
	case row.KindIdentityId:
		return NewIdentityId(make([]uint64, n))
	case row.KindRowNumber:
		return NewRowNumber(make([]uint64, n))
	default:
		panic("column: no skeleton constructor for type " + t.Kind.String())
	}
}
