package bitvec

import "testing"

func TestPushGetSet(t *testing.T) {
	bv := New()
	bv.Push(true)
	bv.Push(false)
	bv.Push(true)

	if bv.Len() != 3 {
		t.Fatalf("expected len 3, got %d", bv.Len())
	}
	if !bv.Get(0) || bv.Get(1) || !bv.Get(2) {
		t.Fatalf("unexpected bits: %v", bv.ToSlice())
	}

	bv.Set(1, true)
	if !bv.Get(1) {
		t.Fatalf("expected bit 1 to be set")
	}
}

func TestRepeat(t *testing.T) {
	bv := Repeat(10, true)
	if bv.Len() != 10 {
		t.Fatalf("expected len 10, got %d", bv.Len())
	}
	if bv.CountOnes() != 10 {
		t.Fatalf("expected 10 ones, got %d", bv.CountOnes())
	}

	bv2 := Repeat(5, false)
	if bv2.CountOnes() != 0 {
		t.Fatalf("expected 0 ones, got %d", bv2.CountOnes())
	}
}

func TestFromSliceAndCountOnes(t *testing.T) {
	bv := FromSlice([]bool{true, false, true, true, false})
	if bv.Len() != 5 {
		t.Fatalf("expected len 5, got %d", bv.Len())
	}
	if bv.CountOnes() != 3 {
		t.Fatalf("expected 3 ones, got %d", bv.CountOnes())
	}
}

func TestExtend(t *testing.T) {
	a := FromSlice([]bool{true, false})
	b := FromSlice([]bool{false, true, true})
	a.Extend(b)
	if a.Len() != 5 {
		t.Fatalf("expected len 5, got %d", a.Len())
	}
	want := []bool{true, false, false, true, true}
	got := a.ToSlice()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: want %v got %v", i, want[i], got[i])
		}
	}
}

func TestOutOfRangePanics(t *testing.T) {
	bv := Repeat(3, false)
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic on out-of-range access")
		}
	}()
	bv.Get(3)
}

func TestCrossWordBoundary(t *testing.T) {
	bv := Repeat(130, false)
	bv.Set(64, true)
	bv.Set(127, true)
	bv.Set(129, true)
	if bv.CountOnes() != 3 {
		t.Fatalf("expected 3 ones, got %d", bv.CountOnes())
	}
	if !bv.Get(64) || !bv.Get(127) || !bv.Get(129) {
		t.Fatalf("expected bits 64, 127, 129 set")
	}
}

func TestTruncate(t *testing.T) {
	bv := FromSlice([]bool{true, true, true, true})
	bv.Truncate(2)
	if bv.Len() != 2 {
		t.Fatalf("expected len 2, got %d", bv.Len())
	}
	if bv.CountOnes() != 2 {
		t.Fatalf("expected 2 ones, got %d", bv.CountOnes())
	}
}
