package parquetio

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	pq "github.com/parquet-go/parquet-go"

	"github.com/reifydb/reifydb/pkg/row"
	"github.com/reifydb/reifydb/pkg/safeconvert"
)

func parseKind(s string) (row.Kind, error) {
	for k := row.KindUndefined; k <= row.KindOption; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("parquetio: unknown column kind %q", s)
}

// signedBigIntBytes encodes a *big.Int as a sign byte (0x00 negative, 0x01
// non-negative) followed by its absolute value's big-endian bytes, since
// big.Int.Bytes discards the sign.
func signedBigIntBytes(v *big.Int) []byte {
	if v == nil {
		v = new(big.Int)
	}
	out := make([]byte, 0, 1+len(v.Bytes()))
	if v.Sign() < 0 {
		out = append(out, 0x00)
	} else {
		out = append(out, 0x01)
	}
	return append(out, new(big.Int).Abs(v).Bytes()...)
}

func signedBigIntFromBytes(b []byte) (*big.Int, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("parquetio: %w: empty big.Int encoding", errCorrupt)
	}
	v := new(big.Int).SetBytes(b[1:])
	if b[0] == 0x00 {
		v.Neg(v)
	}
	return v, nil
}

func decimalBytes(d safeconvert.Decimal) []byte {
	return signedBigIntBytes(d.Unscaled())
}

func decimalFromBytes(b []byte, scale int32) (safeconvert.Decimal, error) {
	u, err := signedBigIntFromBytes(b)
	if err != nil {
		return safeconvert.Decimal{}, err
	}
	return safeconvert.NewDecimal(u, scale), nil
}

var errCorrupt = fmt.Errorf("corrupt parquetio payload")

// valueToParquet converts a defined row.Value into a Parquet leaf value at
// the given repetition/definition/column levels. v.Defined is assumed true;
// callers emit pq.NullValue directly for undefined values.
func valueToParquet(v row.Value, defLevel, col int) pq.Value {
	lvl := func(pv pq.Value) pq.Value { return pv.Level(0, defLevel, col) }
	switch v.Kind {
	case row.KindBool:
		return lvl(pq.BooleanValue(v.Bool))
	case row.KindInt1, row.KindInt2, row.KindInt4:
		return lvl(pq.Int32Value(int32(v.Int)))
	case row.KindInt8:
		return lvl(pq.Int64Value(v.Int))
	case row.KindUint1, row.KindUint2:
		return lvl(pq.Int32Value(int32(v.Uint)))
	case row.KindUint4, row.KindUint8:
		return lvl(pq.Int64Value(int64(v.Uint)))
	case row.KindFloat4:
		return lvl(pq.FloatValue(v.Float32))
	case row.KindFloat8:
		return lvl(pq.DoubleValue(v.Float64))
	case row.KindUtf8:
		return lvl(pq.ByteArrayValue([]byte(v.Str)))
	case row.KindBlob:
		return lvl(pq.ByteArrayValue(v.Bytes))
	case row.KindUuid4, row.KindUuid7:
		b, _ := v.UUID.MarshalBinary()
		return lvl(pq.ByteArrayValue(b))
	case row.KindDecimal:
		return lvl(pq.ByteArrayValue(decimalBytes(v.Decimal)))
	case row.KindInt, row.KindUint, row.KindInt16, row.KindUint16:
		return lvl(pq.ByteArrayValue(signedBigIntBytes(v.Big)))
	case row.KindDate, row.KindDateTime, row.KindTime:
		return lvl(pq.Int64Value(v.Time.UnixNano()))
	case row.KindDuration:
		return lvl(pq.Int64Value(int64(v.Dur)))
	case row.KindDictionaryId:
		return lvl(pq.Int64Value(int64(v.DictID)))
	case row.KindIdentityId:
		return lvl(pq.Int64Value(int64(v.Ident)))
	case row.KindRowNumber:
		return lvl(pq.Int64Value(int64(v.RowNum)))
	default:
		panic("parquetio: no parquet encoding for kind " + v.Kind.String())
	}
}

// parquetToValue decodes one Parquet leaf value back into a row.Value of the
// given kind (scale only meaningful for Decimal).
func parquetToValue(pv pq.Value, k row.Kind, scale int32) (row.Value, error) {
	if pv.IsNull() {
		return row.Undefined(k), nil
	}
	switch k {
	case row.KindBool:
		return row.BoolValue(pv.Boolean()), nil
	case row.KindInt1:
		return row.Int1Value(int8(pv.Int32())), nil
	case row.KindInt2:
		return row.Int2Value(int16(pv.Int32())), nil
	case row.KindInt4:
		return row.Int4Value(pv.Int32()), nil
	case row.KindInt8:
		return row.Int8Value(pv.Int64()), nil
	case row.KindUint1:
		return row.Uint1Value(uint8(pv.Int32())), nil
	case row.KindUint2:
		return row.Uint2Value(uint16(pv.Int32())), nil
	case row.KindUint4:
		return row.Uint4Value(uint32(pv.Int64())), nil
	case row.KindUint8:
		return row.Uint8Value(uint64(pv.Int64())), nil
	case row.KindFloat4:
		return row.Float4Value(pv.Float()), nil
	case row.KindFloat8:
		return row.Float8Value(pv.Double()), nil
	case row.KindUtf8:
		return row.Utf8Value(string(pv.ByteArray())), nil
	case row.KindBlob:
		data := pv.ByteArray()
		cp := make([]byte, len(data))
		copy(cp, data)
		return row.BlobValue(cp), nil
	case row.KindUuid4:
		id, err := uuid.FromBytes(pv.ByteArray())
		if err != nil {
			return row.Value{}, fmt.Errorf("parquetio: %w: %v", errCorrupt, err)
		}
		return row.Uuid4Value(id), nil
	case row.KindUuid7:
		id, err := uuid.FromBytes(pv.ByteArray())
		if err != nil {
			return row.Value{}, fmt.Errorf("parquetio: %w: %v", errCorrupt, err)
		}
		return row.Uuid7Value(id), nil
	case row.KindDecimal:
		d, err := decimalFromBytes(pv.ByteArray(), scale)
		if err != nil {
			return row.Value{}, err
		}
		return row.DecimalValue(d), nil
	case row.KindInt:
		v, err := signedBigIntFromBytes(pv.ByteArray())
		if err != nil {
			return row.Value{}, err
		}
		return row.IntValue(v), nil
	case row.KindUint:
		v, err := signedBigIntFromBytes(pv.ByteArray())
		if err != nil {
			return row.Value{}, err
		}
		return row.UintValue(v), nil
	case row.KindInt16:
		v, err := signedBigIntFromBytes(pv.ByteArray())
		if err != nil {
			return row.Value{}, err
		}
		return row.Int16Value(v), nil
	case row.KindUint16:
		v, err := signedBigIntFromBytes(pv.ByteArray())
		if err != nil {
			return row.Value{}, err
		}
		return row.Uint16Value(v), nil
	case row.KindDate:
		return row.DateValue(time.Unix(0, pv.Int64()).UTC()), nil
	case row.KindDateTime:
		return row.DateTimeValue(time.Unix(0, pv.Int64()).UTC()), nil
	case row.KindTime:
		return row.TimeValue(time.Unix(0, pv.Int64()).UTC()), nil
	case row.KindDuration:
		return row.DurationValue(time.Duration(pv.Int64())), nil
	case row.KindDictionaryId:
		return row.DictionaryIdValue(uint64(pv.Int64())), nil
	case row.KindIdentityId:
		return row.IdentityIdValue(uint64(pv.Int64())), nil
	case row.KindRowNumber:
		return row.RowNumberValue(uint64(pv.Int64())), nil
	default:
		return row.Value{}, fmt.Errorf("parquetio: %w: no decoder for kind %s", errCorrupt, k)
	}
}
