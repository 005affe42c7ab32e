package safeconvert

import (
	"math"
	"math/big"
)

// BigInt is the arbitrary-precision signed integer type (spec's VarInt).
// It follows the same three-mode contract as the fixed-width lattice:
// checked succeeds iff the magnitude fits the target, saturating clamps,
// and wrapping is defined as equivalent to saturating — there is no
// natural wraparound for an unbounded type, and silently picking one would
// be more surprising than documenting the equivalence here.
type BigInt struct{ v *big.Int }

// NewBigInt wraps v (or zero, if v is nil) as a BigInt.
func NewBigInt(v *big.Int) BigInt {
	if v == nil {
		return BigInt{v: new(big.Int)}
	}
	return BigInt{v: new(big.Int).Set(v)}
}

// BigIntFromInt64 builds a BigInt from a fixed-width signed integer.
func BigIntFromInt64(v int64) BigInt { return BigInt{v: big.NewInt(v)} }

// Int returns the underlying *big.Int (never mutated in place by BigInt's
// own methods; callers must not mutate the returned value).
func (b BigInt) Int() *big.Int { return b.v }

func (b BigInt) ensure() *big.Int {
	if b.v == nil {
		return new(big.Int)
	}
	return b.v
}

// CheckedFromBigInt returns (y, true) iff b's magnitude fits exactly in D.
func CheckedFromBigInt[D Numeric](b BigInt) (D, bool) {
	v := b.ensure()
	if isFloatKind[D]() {
		limit, neg := mantissaLimit[D]()
		if v.Cmp(neg) < 0 || v.Cmp(limit) > 0 {
			var zero D
			return zero, false
		}
		f, _ := new(big.Float).SetInt(v).Float64()
		return fromFloat64[D](f), true
	}
	lo, hi := integerBounds[D]()
	if v.Cmp(lo) < 0 || v.Cmp(hi) > 0 {
		var zero D
		return zero, false
	}
	return fromBigInt[D](v), true
}

// SaturatingFromBigInt clamps b into D's representable range.
func SaturatingFromBigInt[D Numeric](b BigInt) D {
	v := b.ensure()
	if isFloatKind[D]() {
		limit, neg := mantissaLimit[D]()
		clamped := v
		if v.Cmp(neg) < 0 {
			clamped = neg
		} else if v.Cmp(limit) > 0 {
			clamped = limit
		}
		f, _ := new(big.Float).SetInt(clamped).Float64()
		return fromFloat64[D](f)
	}
	lo, hi := integerBounds[D]()
	clamped := v
	if v.Cmp(lo) < 0 {
		clamped = lo
	} else if v.Cmp(hi) > 0 {
		clamped = hi
	}
	return fromBigInt[D](clamped)
}

// WrappingFromBigInt is defined as equivalent to SaturatingFromBigInt; see
// the BigInt doc comment.
func WrappingFromBigInt[D Numeric](b BigInt) D {
	return SaturatingFromBigInt[D](b)
}

// BigIntFromNumeric lifts any fixed-width numeric value into a BigInt,
// truncating fractional floats toward zero (matching the source integer
// truncation convention). NaN and ±Inf lift to zero.
func BigIntFromNumeric[S Numeric](x S) BigInt {
	if isFloatKind[S]() {
		f := toFloat64(x)
		bf := new(big.Float).SetFloat64(truncFloat(f))
		bi, _ := bf.Int(nil)
		return BigInt{v: bi}
	}
	return BigInt{v: toBigInt(x)}
}

func truncFloat(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return math.Trunc(f)
}

// BigUint is the arbitrary-precision unsigned integer type (spec's
// VarUint). NewBigUint clamps negative inputs to zero; Wrapping is
// equivalent to Saturating, same rationale as BigInt.
type BigUint struct{ v *big.Int }

// NewBigUint wraps v (or zero, if v is nil or negative) as a BigUint.
func NewBigUint(v *big.Int) BigUint {
	if v == nil || v.Sign() < 0 {
		return BigUint{v: new(big.Int)}
	}
	return BigUint{v: new(big.Int).Set(v)}
}

func (b BigUint) ensure() *big.Int {
	if b.v == nil {
		return new(big.Int)
	}
	return b.v
}

// Uint returns the underlying non-negative *big.Int.
func (b BigUint) Uint() *big.Int { return b.ensure() }

// CheckedFromBigUint returns (y, true) iff b fits exactly in D.
func CheckedFromBigUint[D Numeric](b BigUint) (D, bool) {
	return CheckedFromBigInt[D](BigInt{v: b.ensure()})
}

// SaturatingFromBigUint clamps b into D's representable range.
func SaturatingFromBigUint[D Numeric](b BigUint) D {
	return SaturatingFromBigInt[D](BigInt{v: b.ensure()})
}

// WrappingFromBigUint is defined as equivalent to SaturatingFromBigUint.
func WrappingFromBigUint[D Numeric](b BigUint) D {
	return SaturatingFromBigUint[D](b)
}
