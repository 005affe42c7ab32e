package row

import (
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/reifydb/reifydb/pkg/safeconvert"
)

func TestAllocateRowStartsEmpty(t *testing.T) {
	l := NewLayout([]Type{Int2(), Bool()})
	r := l.AllocateRow()
	if l.AllDefined(r) {
		t.Fatalf("freshly allocated row must have no validity bits set")
	}
	if l.IsDefined(r, 0) || l.IsDefined(r, 1) {
		t.Fatalf("expected both fields undefined")
	}
}

func TestFixedWidthRoundTrip(t *testing.T) {
	l := NewLayout([]Type{Int2(), Bool(), Float8(), Uint4()})
	r := l.AllocateRow()
	l.SetInt2(r, 0, -7)
	l.SetBool(r, 1, true)
	l.SetFloat8(r, 2, 3.5)
	l.SetUint4(r, 3, 42)

	if !l.AllDefined(r) {
		t.Fatalf("expected all fields defined after setting all")
	}
	if got := l.GetInt2(r, 0); got != -7 {
		t.Fatalf("expected -7, got %d", got)
	}
	if got := l.GetBool(r, 1); !got {
		t.Fatalf("expected true")
	}
	if got := l.GetFloat8(r, 2); got != 3.5 {
		t.Fatalf("expected 3.5, got %v", got)
	}
	if got := l.GetUint4(r, 3); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestVariableWidthRoundTrip(t *testing.T) {
	l := NewLayout([]Type{Utf8(), Blob(), Decimal(10, 2), Int(), Uint()})
	r := l.AllocateRow()
	l.SetUtf8(r, 0, "hello, row")
	l.SetBlob(r, 1, []byte{1, 2, 3, 4})
	l.SetDecimal(r, 2, safeconvert.NewDecimal(big.NewInt(12345), 2))
	huge := new(big.Int)
	huge.SetString("123456789012345678901234567890", 10)
	l.SetInt(r, 3, huge)
	l.SetUint(r, 4, big.NewInt(99))

	if got := l.GetUtf8(r, 0); got != "hello, row" {
		t.Fatalf("expected round-trip string, got %q", got)
	}
	if got := l.GetBlob(r, 1); string(got) != string([]byte{1, 2, 3, 4}) {
		t.Fatalf("expected round-trip blob, got %v", got)
	}
	if got := l.GetDecimal(r, 2); got.String() != "123.45" {
		t.Fatalf("expected 123.45, got %s", got.String())
	}
	if got := l.GetInt(r, 3); got.Cmp(huge) != 0 {
		t.Fatalf("expected %s, got %s", huge.String(), got.String())
	}
	if got := l.GetUint(r, 4); got.Cmp(big.NewInt(99)) != 0 {
		t.Fatalf("expected 99, got %s", got.String())
	}
}

func TestInt16SignRoundTrip(t *testing.T) {
	l := NewLayout([]Type{Int16()})
	r := l.AllocateRow()

	neg := big.NewInt(-123456789)
	l.SetInt16(r, 0, neg)
	if got := l.GetInt16(r, 0); got.Cmp(neg) != 0 {
		t.Fatalf("expected %s, got %s", neg.String(), got.String())
	}

	pos := big.NewInt(987654321)
	l.SetInt16(r, 0, pos)
	if got := l.GetInt16(r, 0); got.Cmp(pos) != 0 {
		t.Fatalf("expected %s, got %s", pos.String(), got.String())
	}
}

func TestSetUndefinedClearsBit(t *testing.T) {
	l := NewLayout([]Type{Int2()})
	r := l.AllocateRow()
	l.SetInt2(r, 0, 5)
	l.SetUndefined(r, 0)
	if l.IsDefined(r, 0) {
		t.Fatalf("expected bit cleared after SetUndefined")
	}
	if _, ok := l.TryGetInt2(r, 0); ok {
		t.Fatalf("expected TryGetInt2 to report absent")
	}
}

func TestSetValuesAndGetValueRoundTrip(t *testing.T) {
	fields := []Type{Int2(), Utf8(), Bool()}
	l := NewLayout(fields)
	r := l.AllocateRow()

	values := []Value{
		Int2Value(7),
		Utf8Value("x"),
		Undefined(KindBool),
	}
	if err := l.SetValues(r, values); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.AllDefined(r) {
		t.Fatalf("expected field 2 undefined")
	}
	got := l.TryGetValue(r, 0)
	if !got.Defined || got.Int != 7 {
		t.Fatalf("expected defined Int2(7), got %+v", got)
	}
	got2 := l.TryGetValue(r, 2)
	if got2.Defined {
		t.Fatalf("expected field 2 undefined")
	}
}

func TestUuidAndTimeRoundTrip(t *testing.T) {
	l := NewLayout([]Type{Uuid4(), DateTime(), Duration()})
	r := l.AllocateRow()
	id := uuid.New()
	l.SetUuid4(r, 0, id)
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	l.SetDateTime(r, 1, now)
	l.SetDuration(r, 2, 5*time.Second)

	if got := l.GetUuid4(r, 0); got != id {
		t.Fatalf("expected uuid round-trip")
	}
	if got := l.GetDateTime(r, 1); !got.Equal(now) {
		t.Fatalf("expected %v, got %v", now, got)
	}
	if got := l.GetDuration(r, 2); got != 5*time.Second {
		t.Fatalf("expected 5s, got %v", got)
	}
}
