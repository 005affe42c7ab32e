// Package columns implements Columns, the columnar buffer that bridges
// decoded EncodedRow values to a vectorized execution layer: column-wise
// append (concatenation across a scan partition boundary) and row-wise
// append (the row -> columns transpose every scan result goes through).
package columns

import (
	"fmt"

	"github.com/reifydb/reifydb/pkg/column"
	"github.com/reifydb/reifydb/pkg/row"
)

// Columns is an ordered sequence of named columns sharing the same row
// count, plus an optional per-row-number side column.
type Columns struct {
	Columns    []column.Column
	RowNumbers []uint64
}

// New builds a Columns value from an ordered column list.
func New(cols []column.Column) *Columns {
	return &Columns{Columns: append([]column.Column(nil), cols...)}
}

// Len returns the shared row count (0 for a Columns with no columns).
func (c *Columns) Len() int {
	if len(c.Columns) == 0 {
		return 0
	}
	return c.Columns[0].Len()
}

// AppendColumns concatenates other onto c column-wise: self.len() ==
// other.len() and every column pair must share a name; index i of self is
// extended with index i of other using ColumnData's promotion rules.
func (c *Columns) AppendColumns(other *Columns) error {
	if len(c.Columns) != len(other.Columns) {
		return fmt.Errorf("columns: mismatched column count: %d vs %d", len(c.Columns), len(other.Columns))
	}
	for i := range c.Columns {
		if c.Columns[i].Name != other.Columns[i].Name {
			return fmt.Errorf("columns: column name mismatch at index %d: %q vs %q", i, c.Columns[i].Name, other.Columns[i].Name)
		}
	}
	for i := range c.Columns {
		if err := c.Columns[i].Extend(other.Columns[i].Data); err != nil {
			return fmt.Errorf("columns: column %q: %w", c.Columns[i].Name, err)
		}
	}
	if len(other.RowNumbers) > 0 || len(c.RowNumbers) > 0 {
		c.RowNumbers = append(c.RowNumbers, other.RowNumbers...)
	}
	return nil
}

// AppendRows transposes a batch of EncodedRow values into c, one push per
// (row, column) pair, per the layout's field types. On any failure no rows
// from this call are retained: lengths are snapshotted before the loop and
// every touched column is truncated back on error (the "snapshot and
// truncate" strategy named as an explicit open question upstream).
func (c *Columns) AppendRows(layout *row.Layout, rows []*row.EncodedRow, rowNumbers []uint64) error {
	if len(c.Columns) != len(layout.Fields) {
		return fmt.Errorf("columns: %d columns for a %d-field layout", len(c.Columns), len(layout.Fields))
	}
	if len(rowNumbers) > 0 && len(rowNumbers) != len(rows) {
		return fmt.Errorf("columns: %d row numbers for %d rows", len(rowNumbers), len(rows))
	}

	priorLen := c.Len()
	priorRowNumbers := len(c.RowNumbers)

	if err := c.convertUndefinedSkeletons(layout); err != nil {
		return err
	}

	if err := c.appendRowsUnchecked(layout, rows); err != nil {
		c.truncateTo(priorLen, priorRowNumbers)
		return err
	}

	if len(rowNumbers) > 0 {
		c.RowNumbers = append(c.RowNumbers, rowNumbers...)
	}
	return nil
}

// convertUndefinedSkeletons replaces every column that is currently
// Undefined(n) or an all-none Option with a typed skeleton of length n
// matching the schema field type, so the push loop below always sees a
// typed container.
func (c *Columns) convertUndefinedSkeletons(layout *row.Layout) error {
	for i := range c.Columns {
		data := c.Columns[i].Data
		if layout.Fields[i].Kind == row.KindOption {
			// Schema already declares nullability; leave as-is.
			if data.IsUndefined() {
				n := data.Len()
				c.Columns[i].Data = column.Skeleton(layout.Fields[i], n)
			}
			continue
		}
		if data.IsUndefined() || data.IsAllNone() {
			n := data.Len()
			c.Columns[i].Data = column.Skeleton(layout.Fields[i], n)
		}
	}
	return nil
}

func (c *Columns) appendRowsUnchecked(layout *row.Layout, rows []*row.EncodedRow) error {
	for _, r := range rows {
		for i := range c.Columns {
			if err := c.pushField(layout, r, i); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Columns) pushField(layout *row.Layout, r *row.EncodedRow, i int) error {
	fieldType := layout.Fields[i]
	expectedKind := fieldType.Kind
	if expectedKind == row.KindOption {
		expectedKind = fieldType.Inner.Kind
	}

	col := &c.Columns[i]
	if col.Data.Kind() != expectedKind {
		return fmt.Errorf("columns: type mismatch for %s(%s): incompatible with value %s",
			col.Name, col.Data.Kind(), expectedKind)
	}

	v := layout.TryGetValue(r, i)

	if expectedKind == row.KindDictionaryId {
		c.adoptDictionaryId(col, fieldType)
		if v.Defined && v.Kind != row.KindDictionaryId {
			col.Data = col.Data.PushDefault()
			return nil
		}
	}

	if !v.Defined {
		col.PushNone()
		return nil
	}
	return col.Push(v)
}

// adoptDictionaryId implements §4.5.3: if the schema names a dictionary
// and the column hasn't adopted one yet, adopt it.
func (c *Columns) adoptDictionaryId(col *column.Column, fieldType row.Type) {
	if fieldType.DictID == nil {
		return
	}
	inner, _ := column.Unwrap(col.Data)
	aware, ok := inner.(column.DictionaryAware)
	if !ok {
		return
	}
	if _, set := aware.DictionaryID(); !set {
		aware.SetDictionaryID(*fieldType.DictID)
	}
}

func (c *Columns) truncateTo(rowCount, rowNumberCount int) {
	for i := range c.Columns {
		c.Columns[i].Data.Truncate(rowCount)
	}
	if rowNumberCount <= len(c.RowNumbers) {
		c.RowNumbers = c.RowNumbers[:rowNumberCount]
	}
}
