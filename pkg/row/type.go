// Package row implements the binary EncodedRow format and the RowLayout
// that describes it: a contiguous byte buffer with a validity-bit header,
// fixed-offset fields, and indirect storage for variable-length fields.
package row

import "fmt"

// Kind enumerates every logical type a row field or column can hold.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindBool
	KindInt1
	KindInt2
	KindInt4
	KindInt8
	KindInt16
	KindUint1
	KindUint2
	KindUint4
	KindUint8
	KindUint16
	KindFloat4
	KindFloat8
	KindUtf8
	KindBlob
	KindDate
	KindDateTime
	KindTime
	KindDuration
	KindUuid4
	KindUuid7
	KindDecimal
	KindInt      // arbitrary-precision VarInt
	KindUint     // arbitrary-precision VarUint
	KindDictionaryId
	KindIdentityId
	KindRowNumber
	KindOption
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "Undefined"
	case KindBool:
		return "Bool"
	case KindInt1:
		return "Int1"
	case KindInt2:
		return "Int2"
	case KindInt4:
		return "Int4"
	case KindInt8:
		return "Int8"
	case KindInt16:
		return "Int16"
	case KindUint1:
		return "Uint1"
	case KindUint2:
		return "Uint2"
	case KindUint4:
		return "Uint4"
	case KindUint8:
		return "Uint8"
	case KindUint16:
		return "Uint16"
	case KindFloat4:
		return "Float4"
	case KindFloat8:
		return "Float8"
	case KindUtf8:
		return "Utf8"
	case KindBlob:
		return "Blob"
	case KindDate:
		return "Date"
	case KindDateTime:
		return "DateTime"
	case KindTime:
		return "Time"
	case KindDuration:
		return "Duration"
	case KindUuid4:
		return "Uuid4"
	case KindUuid7:
		return "Uuid7"
	case KindDecimal:
		return "Decimal"
	case KindInt:
		return "Int"
	case KindUint:
		return "Uint"
	case KindDictionaryId:
		return "DictionaryId"
	case KindIdentityId:
		return "IdentityId"
	case KindRowNumber:
		return "RowNumber"
	case KindOption:
		return "Option"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Type is a field/column type descriptor. Decimal carries precision/scale;
// Option carries the wrapped inner type. All other kinds are self-contained.
type Type struct {
	Kind      Kind
	Precision uint8
	Scale     int32
	Inner     *Type
	// DictID is the schema-declared dictionary identifier for a
	// DictionaryId field constraint; nil means the field carries no
	// dictionary association.
	DictID *uint64
}

func Bool() Type         { return Type{Kind: KindBool} }
func Int1() Type         { return Type{Kind: KindInt1} }
func Int2() Type         { return Type{Kind: KindInt2} }
func Int4() Type         { return Type{Kind: KindInt4} }
func Int8() Type         { return Type{Kind: KindInt8} }
func Int16() Type        { return Type{Kind: KindInt16} }
func Uint1() Type        { return Type{Kind: KindUint1} }
func Uint2() Type        { return Type{Kind: KindUint2} }
func Uint4() Type        { return Type{Kind: KindUint4} }
func Uint8() Type        { return Type{Kind: KindUint8} }
func Uint16() Type       { return Type{Kind: KindUint16} }
func Float4() Type       { return Type{Kind: KindFloat4} }
func Float8() Type       { return Type{Kind: KindFloat8} }
func Utf8() Type         { return Type{Kind: KindUtf8} }
func Blob() Type         { return Type{Kind: KindBlob} }
func Date() Type         { return Type{Kind: KindDate} }
func DateTime() Type     { return Type{Kind: KindDateTime} }
func Time() Type         { return Type{Kind: KindTime} }
func Duration() Type     { return Type{Kind: KindDuration} }
func Uuid4() Type        { return Type{Kind: KindUuid4} }
func Uuid7() Type        { return Type{Kind: KindUuid7} }
func Int() Type          { return Type{Kind: KindInt} }
func Uint() Type         { return Type{Kind: KindUint} }
func DictionaryId() Type { return Type{Kind: KindDictionaryId} }
func IdentityId() Type   { return Type{Kind: KindIdentityId} }
func RowNumber() Type    { return Type{Kind: KindRowNumber} }

func Decimal(precision uint8, scale int32) Type {
	return Type{Kind: KindDecimal, Precision: precision, Scale: scale}
}

func Option(inner Type) Type {
	return Type{Kind: KindOption, Inner: &inner}
}

// IsFixedWidth reports whether a field of this type occupies a fixed number
// of bytes in a RowLayout's fixed region, as opposed to an offset+length
// slot pointing into the indirect data area.
func (t Type) IsFixedWidth() bool {
	switch t.Kind {
	case KindUtf8, KindBlob, KindInt, KindUint, KindDecimal:
		return false
	case KindOption:
		return t.Inner.IsFixedWidth()
	default:
		return true
	}
}

// FixedWidth returns the number of bytes a fixed-width field occupies.
// Variable-width kinds occupy an 8-byte (offset uint32, length uint32) slot
// regardless of their payload size.
func (t Type) FixedWidth() int {
	switch t.Kind {
	case KindBool, KindInt1, KindUint1:
		return 1
	case KindInt2, KindUint2:
		return 2
	case KindInt4, KindUint4, KindFloat4, KindDate:
		return 4
	case KindInt8, KindUint8, KindFloat8, KindDateTime, KindTime, KindDuration, KindRowNumber, KindDictionaryId, KindIdentityId:
		return 8
	case KindInt16, KindUint16, KindUuid4, KindUuid7:
		return 16
	case KindOption:
		return t.Inner.FixedWidth()
	default:
		return 8 // variable-width slot: {offset uint32, length uint32}
	}
}
