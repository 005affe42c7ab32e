package safeconvert

import (
	"math"
	"math/big"
	"testing"
)

func TestCheckedConvertIntToUint(t *testing.T) {
	if y, ok := CheckedConvert[uint8](int8(42)); !ok || y != 42 {
		t.Fatalf("expected (42,true), got (%v,%v)", y, ok)
	}
	if _, ok := CheckedConvert[uint8](int8(-1)); ok {
		t.Fatalf("expected checked convert of -1 to u8 to fail")
	}
}

func TestSaturatingAndWrappingIntToUint(t *testing.T) {
	if y := SaturatingConvert[uint8](int32(-1)); y != 0 {
		t.Fatalf("expected 0, got %v", y)
	}
	if y := WrappingConvert[uint8](int32(-1)); y != 255 {
		t.Fatalf("expected 255, got %v", y)
	}
}

func TestIntToFloatBoundary(t *testing.T) {
	if _, ok := CheckedConvert[float32](int64(math.MaxInt64)); ok {
		t.Fatalf("expected checked convert of i64::MAX to f32 to fail")
	}
	want := float32(int64(1) << 24)
	if y := SaturatingConvert[float32](int64(math.MaxInt64)); y != want {
		t.Fatalf("expected %v, got %v", want, y)
	}
}

func TestFloatToIntSpecialValues(t *testing.T) {
	if y := SaturatingConvert[int32](math.NaN()); y != 0 {
		t.Fatalf("expected NaN->0, got %v", y)
	}
	if y := SaturatingConvert[int32](math.Inf(1)); y != math.MaxInt32 {
		t.Fatalf("expected +Inf->MaxInt32, got %v", y)
	}
	if y := SaturatingConvert[int32](math.Inf(-1)); y != math.MinInt32 {
		t.Fatalf("expected -Inf->MinInt32, got %v", y)
	}
}

func TestCheckedFloatToIntRejectsFraction(t *testing.T) {
	if _, ok := CheckedConvert[int32](3.5); ok {
		t.Fatalf("expected non-integral float to fail checked conversion")
	}
	if y, ok := CheckedConvert[int32](3.0); !ok || y != 3 {
		t.Fatalf("expected (3,true), got (%v,%v)", y, ok)
	}
}

func TestCheckedImpliesSaturatingEqual(t *testing.T) {
	inputs := []int32{0, 1, -1, 100, -100, math.MaxInt8, math.MinInt8}
	for _, x := range inputs {
		if y, ok := CheckedConvert[int8](x); ok {
			if s := SaturatingConvert[int8](x); s != y {
				t.Fatalf("checked=%v but saturating=%v for input %v", y, s, x)
			}
		}
	}
}

func TestSaturatingEnvelope(t *testing.T) {
	for _, x := range []int64{math.MinInt64, -1, 0, 1, math.MaxInt64} {
		y := SaturatingConvert[int8](x)
		if y < math.MinInt8 || y > math.MaxInt8 {
			t.Fatalf("saturating result %v out of int8 range", y)
		}
	}
}

func TestWrappingIsTotal(t *testing.T) {
	// Must never panic for any input across the lattice.
	_ = WrappingConvert[int8](uint64(math.MaxUint64))
	_ = WrappingConvert[uint64](int8(-128))
	_ = WrappingConvert[float32](int64(math.MaxInt64))
	_ = WrappingConvert[int16](math.Inf(1))
	_ = WrappingConvert[int16](math.NaN())
}

func TestBigIntConversions(t *testing.T) {
	huge := new(big.Int)
	huge.SetString("123456789012345678901234567890", 10)
	b := NewBigInt(huge)

	if _, ok := CheckedFromBigInt[int64](b); ok {
		t.Fatalf("expected huge BigInt to fail checked conversion to int64")
	}
	if y := SaturatingFromBigInt[int64](b); y != math.MaxInt64 {
		t.Fatalf("expected saturation to MaxInt64, got %v", y)
	}

	small := BigIntFromInt64(42)
	if y, ok := CheckedFromBigInt[int32](small); !ok || y != 42 {
		t.Fatalf("expected (42,true), got (%v,%v)", y, ok)
	}
}

func TestDecimalConversions(t *testing.T) {
	d := NewDecimal(big.NewInt(12340), 2) // 123.40
	if got := d.String(); got != "123.40" {
		t.Fatalf("expected 123.40, got %s", got)
	}

	if _, ok := CheckedFromDecimal[int32](d); ok {
		t.Fatalf("expected checked conversion of 123.40 to int32 to fail (fractional)")
	}

	whole := NewDecimal(big.NewInt(12300), 2) // 123.00
	if y, ok := CheckedFromDecimal[int32](whole); !ok || y != 123 {
		t.Fatalf("expected (123,true), got (%v,%v)", y, ok)
	}

	rescaled, err := d.Rescale(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rescaled.String() != "123.400" {
		t.Fatalf("expected 123.400, got %s", rescaled.String())
	}

	_, err = d.Rescale(0)
	if err == nil {
		t.Fatalf("expected error rescaling 123.40 down to scale 0 (would truncate the non-zero .40)")
	}
}

func TestDecimalFromNumericRoundTrip(t *testing.T) {
	d := DecimalFromNumeric(int32(42), 2)
	if d.String() != "42.00" {
		t.Fatalf("expected 42.00, got %s", d.String())
	}
	y := SaturatingFromDecimal[int32](d)
	if y != 42 {
		t.Fatalf("expected 42, got %v", y)
	}
}
