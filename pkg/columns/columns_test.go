package columns

import (
	"testing"

	"github.com/reifydb/reifydb/pkg/column"
	"github.com/reifydb/reifydb/pkg/row"
)

// TestAppendRowsUndefinedPromotion encodes scenario S6: a single
// Undefined(2) column "id" gets one Int2(42) row appended through
// AppendRows and becomes Int2, length 3, validity [false,false,true].
func TestAppendRowsUndefinedPromotion(t *testing.T) {
	cs := New([]column.Column{column.New("id", column.NewUndefined(2))})
	layout := row.NewLayout([]row.Type{row.Int2()})
	r := layout.AllocateRow()
	layout.SetInt2(r, 0, 42)

	if err := cs.AppendRows(layout, []*row.EncodedRow{r}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	col := cs.Columns[0]
	if col.Data.Kind() != row.KindInt2 {
		t.Fatalf("expected Int2, got %s", col.Data.Kind())
	}
	if col.Len() != 3 {
		t.Fatalf("expected length 3, got %d", col.Len())
	}
	if col.IsDefined(0) || col.IsDefined(1) || !col.IsDefined(2) {
		t.Fatalf("expected validity [false,false,true]")
	}
	if v := col.GetValue(2); v.Int != 42 {
		t.Fatalf("expected 42, got %d", v.Int)
	}
}

// TestAppendRowsOneUndefinedField encodes scenario S7.
func TestAppendRowsOneUndefinedField(t *testing.T) {
	cs := New([]column.Column{
		column.New("a", column.NewInt2(nil)),
		column.New("b", column.NewBool(nil)),
	})
	layout := row.NewLayout([]row.Type{row.Int2(), row.Bool()})

	r1 := layout.AllocateRow()
	layout.SetInt2(r1, 0, 1)
	layout.SetBool(r1, 1, true)

	r2 := layout.AllocateRow()
	layout.SetUndefined(r2, 0)
	layout.SetBool(r2, 1, false)

	if err := cs.AppendRows(layout, []*row.EncodedRow{r1, r2}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, b := cs.Columns[0], cs.Columns[1]
	if a.Len() != 2 || b.Len() != 2 {
		t.Fatalf("expected length 2 for both columns")
	}
	if !a.IsDefined(0) || a.IsDefined(1) {
		t.Fatalf("expected a validity [true,false]")
	}
	if !b.IsDefined(0) || !b.IsDefined(1) {
		t.Fatalf("expected b validity [true,true]")
	}
	if v := a.GetValue(0); v.Int != 1 {
		t.Fatalf("expected a[0]=1, got %d", v.Int)
	}
}

func TestAppendRowsAtomicOnTypeMismatch(t *testing.T) {
	cs := New([]column.Column{column.New("a", column.NewInt2([]int16{9}))})
	layout := row.NewLayout([]row.Type{row.Bool()}) // mismatched schema type

	r := layout.AllocateRow()
	layout.SetBool(r, 0, true)

	if err := cs.AppendRows(layout, []*row.EncodedRow{r}, nil); err == nil {
		t.Fatalf("expected type mismatch error")
	}
	if cs.Columns[0].Len() != 1 {
		t.Fatalf("expected column untouched after failed append, got length %d", cs.Columns[0].Len())
	}
}

func TestAppendColumnsNameMismatch(t *testing.T) {
	a := New([]column.Column{column.New("x", column.NewInt2([]int16{1}))})
	b := New([]column.Column{column.New("y", column.NewInt2([]int16{2}))})
	if err := a.AppendColumns(b); err == nil {
		t.Fatalf("expected name mismatch error")
	}
}

func TestAppendColumnsConcatenates(t *testing.T) {
	a := New([]column.Column{column.New("x", column.NewInt2([]int16{1, 2}))})
	b := New([]column.Column{column.New("x", column.NewInt2([]int16{3}))})
	if err := a.AppendColumns(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Len() != 3 {
		t.Fatalf("expected length 3, got %d", a.Len())
	}
	if v := a.Columns[0].GetValue(2); v.Int != 3 {
		t.Fatalf("expected 3, got %d", v.Int)
	}
}

func TestAppendColumnsRowNumberSidebandConcatenates(t *testing.T) {
	a := New([]column.Column{column.New("x", column.NewInt2([]int16{1}))})
	a.RowNumbers = []uint64{10}
	b := New([]column.Column{column.New("x", column.NewInt2([]int16{2}))})
	b.RowNumbers = []uint64{20}

	if err := a.AppendColumns(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.RowNumbers) != 2 || a.RowNumbers[0] != 10 || a.RowNumbers[1] != 20 {
		t.Fatalf("expected row numbers [10,20], got %v", a.RowNumbers)
	}
}
