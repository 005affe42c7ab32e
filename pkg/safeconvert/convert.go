// Package safeconvert implements the total-function numeric conversion
// lattice shared by the row encoder, column builder, and expression
// evaluator: every ordered pair of supported numeric types gets checked,
// saturating, and wrapping conversions that never panic and never error.
//
// The source this module is adapted from expands one trait impl per
// (source, destination) pair through a Rust macro. Go has no equivalent
// macro-over-types facility, so the lattice is written once as a family of
// generic functions constrained by golang.org/x/exp/constraints — every
// pair is still covered, just through a single code path keyed on the
// runtime type of the zero value rather than through N*M hand-written
// impls.
package safeconvert

import (
	"math"
	"math/big"

	"golang.org/x/exp/constraints"
)

// Numeric is the set of fixed-width scalar types the conversion lattice is
// defined over: every signed/unsigned integer width and both IEEE-754 float
// widths.
type Numeric interface {
	constraints.Integer | constraints.Float
}

// CheckedConvert returns (y, true) iff x is exactly representable as D.
// It returns (zero, false) otherwise. It never panics.
func CheckedConvert[D Numeric, S Numeric](x S) (D, bool) {
	srcFloat := isFloatKind[S]()
	dstFloat := isFloatKind[D]()

	switch {
	case !srcFloat && !dstFloat:
		bi := toBigInt(x)
		lo, hi := integerBounds[D]()
		if bi.Cmp(lo) < 0 || bi.Cmp(hi) > 0 {
			var zero D
			return zero, false
		}
		return fromBigInt[D](bi), true

	case !srcFloat && dstFloat:
		bi := toBigInt(x)
		limit, neg := mantissaLimit[D]()
		if bi.Cmp(neg) < 0 || bi.Cmp(limit) > 0 {
			var zero D
			return zero, false
		}
		f, _ := new(big.Float).SetInt(bi).Float64()
		return fromFloat64[D](f), true

	case srcFloat && !dstFloat:
		f := toFloat64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			var zero D
			return zero, false
		}
		if f != math.Trunc(f) {
			var zero D
			return zero, false
		}
		lo, hi := integerBounds[D]()
		bf := big.NewFloat(f)
		if bf.Cmp(new(big.Float).SetInt(lo)) < 0 || bf.Cmp(new(big.Float).SetInt(hi)) > 0 {
			var zero D
			return zero, false
		}
		return fromFloat64[D](f), true

	default: // float -> float
		f := toFloat64(x)
		if math.IsNaN(f) {
			var zero D
			return zero, false
		}
		d := fromFloat64[D](f)
		if toFloat64(d) != f {
			var zero D
			return zero, false
		}
		return d, true
	}
}

// SaturatingConvert clamps x into D's representable range. NaN maps to 0
// for integer destinations; +/-Inf maps to D's max/min.
func SaturatingConvert[D Numeric, S Numeric](x S) D {
	srcFloat := isFloatKind[S]()
	dstFloat := isFloatKind[D]()

	switch {
	case !srcFloat && !dstFloat:
		bi := toBigInt(x)
		lo, hi := integerBounds[D]()
		if bi.Cmp(lo) < 0 {
			bi = lo
		} else if bi.Cmp(hi) > 0 {
			bi = hi
		}
		return fromBigInt[D](bi)

	case !srcFloat && dstFloat:
		bi := toBigInt(x)
		limit, neg := mantissaLimit[D]()
		if bi.Cmp(neg) < 0 {
			bi = neg
		} else if bi.Cmp(limit) > 0 {
			bi = limit
		}
		f, _ := new(big.Float).SetInt(bi).Float64()
		return fromFloat64[D](f)

	case srcFloat && !dstFloat:
		f := toFloat64(x)
		lo, hi := integerBounds[D]()
		switch {
		case math.IsNaN(f):
			return fromInt64[D](0)
		case math.IsInf(f, 1):
			return fromBigInt[D](hi)
		case math.IsInf(f, -1):
			return fromBigInt[D](lo)
		}
		trunc := math.Trunc(f)
		bf := big.NewFloat(trunc)
		switch {
		case bf.Cmp(new(big.Float).SetInt(lo)) < 0:
			return fromBigInt[D](lo)
		case bf.Cmp(new(big.Float).SetInt(hi)) > 0:
			return fromBigInt[D](hi)
		default:
			return fromFloat64[D](trunc)
		}

	default: // float -> float
		f := toFloat64(x)
		if math.IsNaN(f) {
			return fromFloat64[D](math.NaN())
		}
		if isFloat32Kind[D]() {
			if f > math.MaxFloat32 {
				return fromFloat64[D](math.MaxFloat32)
			}
			if f < -math.MaxFloat32 {
				return fromFloat64[D](-math.MaxFloat32)
			}
		}
		return fromFloat64[D](f)
	}
}

// WrappingConvert performs two's-complement wraparound for integer
// destinations. Integer-to-float and float-to-float conversions have no
// natural "wrap", so they behave like a direct IEEE-754 cast; float-to-int
// wrapping is defined identically to saturating, mirroring the source
// language's "as" cast semantics (which itself saturates rather than
// invoking undefined behavior on out-of-range floats).
func WrappingConvert[D Numeric, S Numeric](x S) D {
	srcFloat := isFloatKind[S]()
	dstFloat := isFloatKind[D]()

	switch {
	case !srcFloat && !dstFloat:
		bi := toBigInt(x)
		width := bitWidth[D]()
		mod := new(big.Int).Lsh(big.NewInt(1), width)
		bi = new(big.Int).Mod(bi, mod) // Euclidean mod: always in [0, mod)
		if isSignedKind[D]() {
			half := new(big.Int).Lsh(big.NewInt(1), width-1)
			if bi.Cmp(half) >= 0 {
				bi = new(big.Int).Sub(bi, mod)
			}
		}
		return fromBigInt[D](bi)

	case !srcFloat && dstFloat:
		bi := toBigInt(x)
		f, _ := new(big.Float).SetInt(bi).Float64()
		return fromFloat64[D](f)

	case srcFloat && !dstFloat:
		return SaturatingConvert[D](x)

	default:
		return fromFloat64[D](toFloat64(x))
	}
}

// ---- type introspection helpers -------------------------------------------------

func isFloatKind[T Numeric]() bool {
	var z T
	switch any(z).(type) {
	case float32, float64:
		return true
	}
	return false
}

func isFloat32Kind[T Numeric]() bool {
	var z T
	_, ok := any(z).(float32)
	return ok
}

func isSignedKind[T Numeric]() bool {
	var z T
	switch any(z).(type) {
	case int, int8, int16, int32, int64:
		return true
	}
	return false
}

func bitWidth[T Numeric]() uint {
	var z T
	switch any(z).(type) {
	case int8, uint8:
		return 8
	case int16, uint16:
		return 16
	case int32, uint32:
		return 32
	case int64, uint64, int, uint:
		return 64
	}
	panic("safeconvert: unsupported integer type")
}

func integerBounds[T Numeric]() (lo, hi *big.Int) {
	var z T
	switch any(z).(type) {
	case int8:
		return big.NewInt(math.MinInt8), big.NewInt(math.MaxInt8)
	case int16:
		return big.NewInt(math.MinInt16), big.NewInt(math.MaxInt16)
	case int32:
		return big.NewInt(math.MinInt32), big.NewInt(math.MaxInt32)
	case int64, int:
		return big.NewInt(math.MinInt64), big.NewInt(math.MaxInt64)
	case uint8:
		return big.NewInt(0), big.NewInt(math.MaxUint8)
	case uint16:
		return big.NewInt(0), big.NewInt(math.MaxUint16)
	case uint32:
		return big.NewInt(0), big.NewInt(math.MaxUint32)
	case uint64, uint:
		return big.NewInt(0), new(big.Int).SetUint64(math.MaxUint64)
	}
	panic("safeconvert: unsupported integer type")
}

// mantissaLimit returns (+limit, -limit) where limit = 2^m and m is the
// destination float's mantissa width (24 for f32, 53 for f64), per spec
// §4.1's exactness rule for integer->float conversions.
func mantissaLimit[T Numeric]() (limit, neg *big.Int) {
	var z T
	var m uint
	switch any(z).(type) {
	case float32:
		m = 24
	case float64:
		m = 53
	default:
		panic("safeconvert: unsupported float type")
	}
	limit = new(big.Int).Lsh(big.NewInt(1), m)
	neg = new(big.Int).Neg(limit)
	return limit, neg
}

func toBigInt[S Numeric](x S) *big.Int {
	switch v := any(x).(type) {
	case int8:
		return big.NewInt(int64(v))
	case int16:
		return big.NewInt(int64(v))
	case int32:
		return big.NewInt(int64(v))
	case int64:
		return big.NewInt(v)
	case int:
		return big.NewInt(int64(v))
	case uint8:
		return new(big.Int).SetUint64(uint64(v))
	case uint16:
		return new(big.Int).SetUint64(uint64(v))
	case uint32:
		return new(big.Int).SetUint64(uint64(v))
	case uint64:
		return new(big.Int).SetUint64(v)
	case uint:
		return new(big.Int).SetUint64(uint64(v))
	}
	panic("safeconvert: toBigInt called with non-integer type")
}

func toFloat64[S Numeric](x S) float64 {
	switch v := any(x).(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case uint:
		return float64(v)
	}
	panic("safeconvert: toFloat64 called with unsupported type")
}

func fromInt64[D Numeric](v int64) D { return D(v) }

func fromFloat64[D Numeric](v float64) D { return D(v) }

// fromBigInt assumes bi is already within D's representable range.
func fromBigInt[D Numeric](bi *big.Int) D {
	if isSignedKind[D]() {
		return fromInt64[D](bi.Int64())
	}
	return D(bi.Uint64())
}
