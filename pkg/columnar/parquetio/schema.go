// Package parquetio bridges pkg/columns.Columns to the Apache Parquet
// columnar interchange format, so a Columns buffer built from a scan can be
// written to (and later reloaded from) a single Parquet-encoded payload.
//
// Parquet's own type system cannot round-trip every distinction the column
// lattice makes (Int1 vs Int2 vs Int4 as separate bit widths, Decimal scale/
// precision, Duration vs a plain Int8, uint64 vs int64) without relying on
// logical-type annotations this package does not depend on. Instead, a small
// JSON header describing each column's exact Kind, Decimal scale (not its
// precision) and optionality is written ahead of the embedded Parquet payload; the
// payload itself carries only the bulk values, using parquet-go's own types
// wherever they map directly. See DESIGN.md for the rationale.
package parquetio

import (
	"fmt"

	pq "github.com/parquet-go/parquet-go"

	"github.com/reifydb/reifydb/pkg/row"
)

// leafNode returns the physical Parquet node used to store one bare
// (non-Option) value of kind k. Kinds with no direct Parquet primitive
// (Decimal, Uuid4/Uuid7, VarInt/VarUint/Int16/Uint16, Blob) are stored as raw
// byte arrays; the header records the Kind needed to decode them back.
func leafNode(k row.Kind) pq.Node {
	switch k {
	case row.KindBool:
		return pq.Leaf(pq.BooleanType)
	case row.KindInt1, row.KindInt2, row.KindInt4:
		return pq.Leaf(pq.Int32Type)
	case row.KindInt8:
		return pq.Leaf(pq.Int64Type)
	case row.KindUint1, row.KindUint2:
		return pq.Leaf(pq.Int32Type)
	case row.KindUint4, row.KindUint8:
		// Stored as signed INT64: a uint32 always fits losslessly, and
		// matching Uint8's width avoids a second physical type for a
		// value that never needs one.
		return pq.Leaf(pq.Int64Type)
	case row.KindFloat4:
		return pq.Leaf(pq.FloatType)
	case row.KindFloat8:
		return pq.Leaf(pq.DoubleType)
	case row.KindUtf8:
		return pq.String()
	case row.KindBlob, row.KindUuid4, row.KindUuid7, row.KindDecimal,
		row.KindInt, row.KindUint, row.KindInt16, row.KindUint16:
		return pq.Leaf(pq.ByteArrayType)
	case row.KindDate, row.KindDateTime, row.KindTime, row.KindDuration:
		return pq.Leaf(pq.Int64Type)
	case row.KindDictionaryId, row.KindIdentityId, row.KindRowNumber:
		return pq.Leaf(pq.Int64Type)
	default:
		panic("parquetio: no parquet node for kind " + k.String())
	}
}

// buildSchema constructs a flat Parquet schema from the header's column
// metadata. A pq.Group orders its fields by name, not header order; Read
// restores header order from the JSON header.
func buildSchema(name string, cols []columnMeta) (*pq.Schema, error) {
	group := make(pq.Group, len(cols))
	for _, c := range cols {
		kind, err := parseKind(c.Kind)
		if err != nil {
			return nil, err
		}
		node := leafNode(kind)
		if c.Optional {
			node = pq.Optional(node)
		}
		group[c.Name] = node
	}
	return pq.NewSchema(name, group), nil
}
