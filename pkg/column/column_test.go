package column

import (
	"math/big"
	"testing"

	"github.com/reifydb/reifydb/pkg/row"
	"github.com/reifydb/reifydb/pkg/safeconvert"
)

// TestUndefinedPromotion encodes scenario S6: an Undefined(2) column gets
// its first Int2 push and becomes a typed column of length 3 with the
// first two validity bits clear.
func TestUndefinedPromotion(t *testing.T) {
	col := New("id", NewUndefined(2))
	if err := col.Push(row.Int2Value(42)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if col.Data.Kind() != row.KindInt2 {
		t.Fatalf("expected Int2 after promotion, got %s", col.Data.Kind())
	}
	if col.Len() != 3 {
		t.Fatalf("expected length 3, got %d", col.Len())
	}
	if col.IsDefined(0) || col.IsDefined(1) {
		t.Fatalf("expected first two entries invalid")
	}
	if !col.IsDefined(2) {
		t.Fatalf("expected third entry valid")
	}
	v := col.GetValue(2)
	if v.Int != 42 {
		t.Fatalf("expected 42, got %v", v.Int)
	}
}

func TestOptionPromotionOnPushNone(t *testing.T) {
	col := New("a", NewInt2([]int16{1, 2, 3}))
	col.PushNone()
	if !col.Data.IsOptional() {
		t.Fatalf("expected promotion to Option after push_none")
	}
	if col.Len() != 4 {
		t.Fatalf("expected length 4, got %d", col.Len())
	}
	for i := 0; i < 3; i++ {
		if !col.IsDefined(i) {
			t.Fatalf("expected index %d still valid", i)
		}
	}
	if col.IsDefined(3) {
		t.Fatalf("expected index 3 invalid")
	}
}

func TestExtendBareWithUndefined(t *testing.T) {
	col := New("a", NewInt2([]int16{1, 2}))
	if err := col.Extend(NewUndefined(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !col.Data.IsOptional() {
		t.Fatalf("expected promotion to Option when extending with Undefined")
	}
	if col.Len() != 4 {
		t.Fatalf("expected length 4, got %d", col.Len())
	}
	if col.IsDefined(2) || col.IsDefined(3) {
		t.Fatalf("expected trailing entries invalid")
	}
}

func TestExtendVariantMismatch(t *testing.T) {
	col := New("a", NewInt2([]int16{1}))
	err := col.Extend(NewBool([]bool{true}))
	if err == nil {
		t.Fatalf("expected variant mismatch error")
	}
}

func TestDecimalScaleMismatchRejected(t *testing.T) {
	col := New("price", NewDecimal(nil, 10, 2))
	// 1.005 at scale 3 cannot be rescaled to scale 2 without truncating
	// the trailing 5, so the push must be rejected.
	badValue := row.DecimalValue(safeconvert.NewDecimal(big.NewInt(1005), 3))
	if err := col.Push(badValue); err == nil {
		t.Fatalf("expected scale-truncation push to be rejected")
	}
}

// TestRowWithOneUndefinedField encodes scenario S7.
func TestRowWithOneUndefinedField(t *testing.T) {
	a := New("a", NewInt2(nil))
	b := New("b", NewBool(nil))

	rows := []row.Value{
		row.Int2Value(1),
		row.Undefined(row.KindInt2),
	}
	bools := []row.Value{
		row.BoolValue(true),
		row.BoolValue(false),
	}
	for i := range rows {
		if err := a.Push(rows[i]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := b.Push(bools[i]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if a.Len() != 2 || b.Len() != 2 {
		t.Fatalf("expected both columns length 2")
	}
	if !a.IsDefined(0) || a.IsDefined(1) {
		t.Fatalf("expected a validity [true,false]")
	}
	if !b.IsDefined(0) || !b.IsDefined(1) {
		t.Fatalf("expected b validity [true,true]")
	}
}
