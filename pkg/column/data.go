// Package column implements ColumnData: a per-logical-type columnar
// container, plus the Undefined sentinel and Option nullable wrapper that
// let a column transition from typeless to typed and from non-nullable to
// nullable as rows are appended.
package column

import (
	"fmt"

	"github.com/reifydb/reifydb/pkg/bitvec"
	"github.com/reifydb/reifydb/pkg/row"
)

// Data is the common interface every ColumnData variant implements. Methods
// that can change a container's variant (PushNone promoting bare -> Option,
// PushValue promoting Undefined -> typed) return the container to use from
// that point on; callers always reassign: col.Data, err = col.Data.PushValue(v).
type Data interface {
	Kind() row.Kind
	Len() int
	IsDefined(i int) bool
	GetValue(i int) row.Value
	PushValue(v row.Value) (Data, error)
	PushNone() Data
	PushDefault() Data
	Extend(other Data) (Data, error)
	Clone() Data
	Truncate(n int)
	// DefaultSkeleton returns a fresh bare container of the same logical
	// type (and, for Decimal, the same scale/precision) with n elements
	// set to the type default. Used for Undefined promotion and for
	// append_rows' typed-skeleton-conversion step.
	DefaultSkeleton(n int) Data
	IsOptional() bool
	IsUndefined() bool
	// IsAllNone reports whether the container is Option-wrapped with
	// every validity bit clear (used by Columns.AppendRows' typed-
	// skeleton-conversion step).
	IsAllNone() bool
}

// undefinedData is the Undefined(n) sentinel: n semantically-typeless
// nulls, carrying no element type. It is the only variant that can appear
// before a column has seen its first concrete value.
type undefinedData struct{ n int }

// NewUndefined returns an Undefined(n) column.
func NewUndefined(n int) Data { return &undefinedData{n: n} }

func (u *undefinedData) Kind() row.Kind { return row.KindUndefined }
func (u *undefinedData) Len() int       { return u.n }

func (u *undefinedData) checkIndex(i int) {
	if i < 0 || i >= u.n {
		panic(fmt.Sprintf("column: index %d out of range [0,%d)", i, u.n))
	}
}

func (u *undefinedData) IsDefined(i int) bool {
	u.checkIndex(i)
	return false
}

func (u *undefinedData) GetValue(i int) row.Value {
	u.checkIndex(i)
	return row.Undefined(row.KindUndefined)
}

// PushValue is the only legal way to transition out of Undefined: it
// replaces the container in place with a properly-typed one of length n
// (type default, all invalid), then appends the new value as valid.
func (u *undefinedData) PushValue(v row.Value) (Data, error) {
	skeleton := &optionColumn{inner: skeletonForValue(v, u.n), valid: bitvec.Repeat(u.n, false)}
	return skeleton.PushValue(v)
}

func (u *undefinedData) PushNone() Data {
	u.n++
	return u
}

func (u *undefinedData) PushDefault() Data {
	u.n++
	return u
}

func (u *undefinedData) Extend(other Data) (Data, error) {
	if o, ok := other.(*undefinedData); ok {
		u.n += o.n
		return u, nil
	}
	bare := other.DefaultSkeleton(u.n)
	opt := &optionColumn{inner: bare, valid: bitvec.Repeat(u.n, false)}
	return opt.Extend(other)
}

func (u *undefinedData) Clone() Data { return &undefinedData{n: u.n} }

func (u *undefinedData) Truncate(n int) { u.n = n }

func (u *undefinedData) DefaultSkeleton(int) Data {
	panic("column: cannot build a typed skeleton from Undefined without a concrete type")
}

func (u *undefinedData) IsOptional() bool  { return false }
func (u *undefinedData) IsUndefined() bool { return true }
func (u *undefinedData) IsAllNone() bool   { return false }

// optionColumn is the Option{inner, bitvec} wrapper: inner[i] is
// meaningful iff bitvec[i] = 1.
type optionColumn struct {
	inner Data
	valid *bitvec.BitVec
}

func (o *optionColumn) Kind() row.Kind { return o.inner.Kind() }
func (o *optionColumn) Len() int       { return o.valid.Len() }

func (o *optionColumn) IsDefined(i int) bool { return o.valid.Get(i) }

func (o *optionColumn) GetValue(i int) row.Value {
	if !o.valid.Get(i) {
		return row.Undefined(o.inner.Kind())
	}
	return o.inner.GetValue(i)
}

func (o *optionColumn) PushValue(v row.Value) (Data, error) {
	if !v.Defined {
		return o.PushNone(), nil
	}
	newInner, err := o.inner.PushValue(v)
	if err != nil {
		return o, err
	}
	o.inner = newInner
	o.valid.Push(true)
	return o, nil
}

func (o *optionColumn) PushNone() Data {
	o.inner = o.inner.PushDefault()
	o.valid.Push(false)
	return o
}

func (o *optionColumn) PushDefault() Data {
	o.inner = o.inner.PushDefault()
	o.valid.Push(true)
	return o
}

// Extend merges other into o. A bare other is treated as all-valid; an
// Undefined(n) other appends n invalid defaults; an Option other merges
// validity bitvecs alongside the underlying values.
func (o *optionColumn) Extend(other Data) (Data, error) {
	switch oo := other.(type) {
	case *undefinedData:
		for i := 0; i < oo.n; i++ {
			o.inner = o.inner.PushDefault()
			o.valid.Push(false)
		}
		return o, nil
	case *optionColumn:
		merged, err := o.inner.Extend(oo.inner)
		if err != nil {
			return o, err
		}
		o.inner = merged
		o.valid.Extend(oo.valid)
		return o, nil
	default:
		merged, err := o.inner.Extend(other)
		if err != nil {
			return o, err
		}
		o.inner = merged
		o.valid.Extend(bitvec.Repeat(other.Len(), true))
		return o, nil
	}
}

func (o *optionColumn) Clone() Data {
	return &optionColumn{inner: o.inner.Clone(), valid: o.valid.Clone()}
}

func (o *optionColumn) Truncate(n int) {
	o.inner.Truncate(n)
	o.valid.Truncate(n)
}

func (o *optionColumn) DefaultSkeleton(n int) Data { return o.inner.DefaultSkeleton(n) }

func (o *optionColumn) IsOptional() bool  { return true }
func (o *optionColumn) IsUndefined() bool { return false }
func (o *optionColumn) IsAllNone() bool   { return o.valid.CountOnes() == 0 }

// Inner returns the wrapped (always bare) container.
func (o *optionColumn) Inner() Data { return o.inner }

// Valid returns the per-row validity bitvec.
func (o *optionColumn) Valid() *bitvec.BitVec { return o.valid }

// Unwrap returns the underlying non-Option container and its validity
// bitvec if d is Option-wrapped, or d itself and a nil bitvec (meaning
// "every row valid") otherwise.
func Unwrap(d Data) (inner Data, valid *bitvec.BitVec) {
	if o, ok := d.(*optionColumn); ok {
		return o.inner, o.valid
	}
	return d, nil
}

// skeletonForValue builds a bare n-length default container whose shape
// (scale, precision, ...) matches v, used solely to bootstrap an Undefined
// column's first concrete push.
func skeletonForValue(v row.Value, n int) Data {
	t := row.Type{Kind: v.Kind}
	if v.Kind == row.KindDecimal {
		t.Scale = v.Decimal.Scale()
	}
	return bareSkeletonOfType(t, n)
}
