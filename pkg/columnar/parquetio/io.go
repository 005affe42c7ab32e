package parquetio

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	pq "github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/reifydb/reifydb/pkg/column"
	"github.com/reifydb/reifydb/pkg/columns"
	"github.com/reifydb/reifydb/pkg/row"
)

// columnMeta is the per-column metadata the embedded Parquet schema cannot
// carry on its own: the exact logical Kind, Decimal scale, and whether the
// column is Option-wrapped. metaFor takes a Decimal column's scale from its
// first value and leaves Precision at zero; precision is not recorded.
type columnMeta struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Precision uint8  `json:"precision,omitempty"`
	Scale     int32  `json:"scale,omitempty"`
	Optional  bool   `json:"optional"`
}

type fileHeader struct {
	Name    string       `json:"name"`
	Rows    int          `json:"rows"`
	Columns []columnMeta `json:"columns"`
}

func metaFor(col column.Column) columnMeta {
	inner, valid := column.Unwrap(col.Data)
	meta := columnMeta{Name: col.Name, Kind: inner.Kind().String(), Optional: valid != nil}
	if inner.Kind() == row.KindDecimal && inner.Len() > 0 {
		meta.Scale = inner.GetValue(0).Decimal.Scale()
	}
	return meta
}

func compressionCodec(name string) compress.Codec {
	switch strings.ToLower(name) {
	case "snappy":
		return &pq.Snappy
	case "gzip":
		return &pq.Gzip
	case "zstd":
		return &pq.Zstd
	case "lz4":
		return &pq.Lz4Raw
	default:
		return nil
	}
}

// Write encodes cols as a self-describing Parquet payload: a 4-byte
// big-endian length, a JSON column-metadata header, then the Parquet file
// bytes themselves.
func Write(w io.Writer, name string, cols *columns.Columns, compression string) error {
	metas := make([]columnMeta, len(cols.Columns))
	for i, col := range cols.Columns {
		metas[i] = metaFor(col)
	}
	header := fileHeader{Name: name, Rows: cols.Len(), Columns: metas}

	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("parquetio: encode header: %w", err)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(headerBytes)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("parquetio: write header length: %w", err)
	}
	if _, err := w.Write(headerBytes); err != nil {
		return fmt.Errorf("parquetio: write header: %w", err)
	}

	schema, err := buildSchema(name, metas)
	if err != nil {
		return err
	}
	opts := []pq.WriterOption{schema}
	if codec := compressionCodec(compression); codec != nil {
		opts = append(opts, pq.Compression(codec))
	}
	writer := pq.NewWriter(w, opts...)

	fields := schema.Fields()
	byName := make(map[string]int, len(cols.Columns))
	for i, col := range cols.Columns {
		byName[col.Name] = i
	}

	rows := make([]pq.Row, cols.Len())
	for r := 0; r < cols.Len(); r++ {
		values := make([]pq.Value, len(fields))
		for i, f := range fields {
			colIdx := byName[f.Name()]
			meta := metas[colIdx]
			v := cols.Columns[colIdx].Data.GetValue(r)
			if !v.Defined {
				values[i] = pq.NullValue().Level(0, 0, i)
				continue
			}
			defLevel := 0
			if meta.Optional {
				defLevel = 1
			}
			values[i] = valueToParquet(v, defLevel, i)
		}
		rows[r] = pq.Row(values)
	}
	if len(rows) > 0 {
		if _, err := writer.WriteRows(rows); err != nil {
			return fmt.Errorf("parquetio: write rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("parquetio: close writer: %w", err)
	}
	return nil
}

// Read decodes a payload written by Write back into a Columns buffer.
func Read(r io.ReaderAt, size int64) (*columns.Columns, error) {
	var lenBuf [4]byte
	if _, err := r.ReadAt(lenBuf[:], 0); err != nil {
		return nil, fmt.Errorf("parquetio: read header length: %w", err)
	}
	headerLen := int64(binary.BigEndian.Uint32(lenBuf[:]))

	headerBytes := make([]byte, headerLen)
	if _, err := r.ReadAt(headerBytes, 4); err != nil {
		return nil, fmt.Errorf("parquetio: read header: %w", err)
	}
	var header fileHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("parquetio: decode header: %w", err)
	}

	payloadOffset := 4 + headerLen
	section := io.NewSectionReader(r, payloadOffset, size-payloadOffset)

	pf, err := pq.OpenFile(section, section.Size())
	if err != nil {
		return nil, fmt.Errorf("parquetio: open parquet payload: %w", err)
	}
	schema := pf.Schema()
	fields := schema.Fields()

	byName := make(map[string]columnMeta, len(header.Columns))
	for _, m := range header.Columns {
		byName[m.Name] = m
	}

	kinds := make([]row.Kind, len(fields))
	metasByField := make([]columnMeta, len(fields))
	for i, f := range fields {
		meta, ok := byName[f.Name()]
		if !ok {
			return nil, fmt.Errorf("parquetio: %w: header missing column %q", errCorrupt, f.Name())
		}
		k, err := parseKind(meta.Kind)
		if err != nil {
			return nil, err
		}
		kinds[i] = k
		metasByField[i] = meta
	}

	reader := pq.NewReader(section)
	defer reader.Close()

	cols := make([]column.Column, len(fields))
	for i, f := range fields {
		data := column.Skeleton(skeletonType(kinds[i], metasByField[i]), 0)
		if !metasByField[i].Optional {
			data, _ = column.Unwrap(data)
		}
		cols[i] = column.Column{Name: f.Name(), Data: data}
	}

	buf := make([]pq.Row, 128)
	for {
		n, err := reader.ReadRows(buf)
		for i := 0; i < n; i++ {
			for c := range cols {
				v, decodeErr := parquetToValue(buf[i][c], kinds[c], metasByField[c].Scale)
				if decodeErr != nil {
					return nil, decodeErr
				}
				if v.Defined {
					if pushErr := cols[c].Push(v); pushErr != nil {
						return nil, fmt.Errorf("parquetio: column %q: %w", cols[c].Name, pushErr)
					}
				} else {
					cols[c].PushNone()
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("parquetio: read rows: %w", err)
		}
	}

	// Parquet orders group fields by name; restore the header's column order.
	ordered := make([]column.Column, 0, len(cols))
	for _, m := range header.Columns {
		for i := range cols {
			if cols[i].Name == m.Name {
				ordered = append(ordered, cols[i])
				break
			}
		}
	}
	return columns.New(ordered), nil
}

func skeletonType(k row.Kind, meta columnMeta) row.Type {
	t := row.Type{Kind: k, Precision: meta.Precision, Scale: meta.Scale}
	if meta.Optional {
		return row.Option(t)
	}
	return t
}
