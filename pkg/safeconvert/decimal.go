package safeconvert

import (
	"fmt"
	"math/big"
)

// Decimal is a fixed-point arbitrary-precision number: value = unscaled *
// 10^-scale. Precision and scale are preserved across every operation that
// touches a Decimal column (see pkg/column); SafeConvert itself only cares
// about the represented magnitude.
type Decimal struct {
	unscaled *big.Int
	scale    int32
}

// NewDecimal builds a Decimal from an unscaled integer and a scale (number
// of digits after the decimal point).
func NewDecimal(unscaled *big.Int, scale int32) Decimal {
	if unscaled == nil {
		unscaled = new(big.Int)
	}
	return Decimal{unscaled: new(big.Int).Set(unscaled), scale: scale}
}

// DecimalFromInt64 builds a Decimal whose unscaled value is v, at the given
// scale.
func DecimalFromInt64(v int64, scale int32) Decimal {
	return Decimal{unscaled: big.NewInt(v), scale: scale}
}

// Scale returns the number of digits after the decimal point.
func (d Decimal) Scale() int32 { return d.scale }

// Unscaled returns the raw unscaled integer.
func (d Decimal) Unscaled() *big.Int {
	if d.unscaled == nil {
		return new(big.Int)
	}
	return d.unscaled
}

// Rescale returns a Decimal equal in value to d but with the given scale,
// or an error if the target scale would truncate non-zero digits (callers
// that want lossy rescaling should go through SafeConvert explicitly).
func (d Decimal) Rescale(scale int32) (Decimal, error) {
	diff := scale - d.scale
	u := d.Unscaled()
	switch {
	case diff == 0:
		return d, nil
	case diff > 0:
		factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(diff)), nil)
		return Decimal{unscaled: new(big.Int).Mul(u, factor), scale: scale}, nil
	default:
		factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-diff)), nil)
		q, r := new(big.Int).QuoRem(u, factor, new(big.Int))
		if r.Sign() != 0 {
			return Decimal{}, fmt.Errorf("safeconvert: rescale from scale %d to %d would truncate non-zero digits", d.scale, scale)
		}
		return Decimal{unscaled: q, scale: scale}, nil
	}
}

func (d Decimal) asRat() *big.Rat {
	u := d.Unscaled()
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d.scale)), nil)
	return new(big.Rat).SetFrac(u, denom)
}

// CheckedFromDecimal returns (y, true) iff d's represented value is
// exactly representable in D.
func CheckedFromDecimal[D Numeric](d Decimal) (D, bool) {
	r := d.asRat()
	if isFloatKind[D]() {
		f, exact := r.Float64()
		if !exact {
			var zero D
			return zero, false
		}
		return CheckedConvert[D](f)
	}
	if !r.IsInt() {
		var zero D
		return zero, false
	}
	return CheckedFromBigInt[D](BigInt{v: r.Num()})
}

// SaturatingFromDecimal clamps d's value into D's representable range.
func SaturatingFromDecimal[D Numeric](d Decimal) D {
	r := d.asRat()
	if isFloatKind[D]() {
		f, _ := r.Float64()
		return SaturatingConvert[D](f)
	}
	q := new(big.Int).Quo(r.Num(), r.Denom())
	return SaturatingFromBigInt[D](BigInt{v: q})
}

// WrappingFromDecimal is defined as equivalent to SaturatingFromDecimal;
// see the BigInt doc comment for the rationale (no natural wrap exists for
// an unbounded fixed-point type).
func WrappingFromDecimal[D Numeric](d Decimal) D {
	return SaturatingFromDecimal[D](d)
}

// DecimalFromNumeric lifts a fixed-width numeric value into a Decimal at
// the given scale.
func DecimalFromNumeric[S Numeric](x S, scale int32) Decimal {
	if isFloatKind[S]() {
		f := toFloat64(x)
		r := new(big.Rat).SetFloat64(f)
		if r == nil {
			return Decimal{unscaled: new(big.Int), scale: scale}
		}
		factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil)
		scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt(factor))
		num := new(big.Int).Quo(scaled.Num(), scaled.Denom())
		return Decimal{unscaled: num, scale: scale}
	}
	bi := BigIntFromNumeric(x)
	factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil)
	return Decimal{unscaled: new(big.Int).Mul(bi.Int(), factor), scale: scale}
}

// String renders the decimal in plain notation, e.g. "123.40".
func (d Decimal) String() string {
	if d.scale <= 0 {
		u := d.Unscaled()
		if d.scale == 0 {
			return u.String()
		}
		factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-d.scale)), nil)
		return new(big.Int).Mul(u, factor).String()
	}
	u := d.Unscaled()
	neg := u.Sign() < 0
	abs := new(big.Int).Abs(u)
	s := abs.String()
	for len(s) <= int(d.scale) {
		s = "0" + s
	}
	cut := len(s) - int(d.scale)
	out := s[:cut] + "." + s[cut:]
	if neg {
		out = "-" + out
	}
	return out
}
