package column

import (
	"fmt"

	"github.com/reifydb/reifydb/pkg/bitvec"
	"github.com/reifydb/reifydb/pkg/row"
)

// typed is the shared shape behind every bare (non-nullable, non-Undefined)
// ColumnData variant: a contiguous buffer of T plus the two closures that
// bridge T to the dynamic Value union. One generic implementation stands in
// for what a macro-expanded source would write as one struct per logical
// type.
type typed[T any] struct {
	kind    row.Kind
	values  []T
	zero    T
	toVal   func(T) row.Value
	fromVal func(row.Value) (T, bool)

	// Decimal-only metadata; zero value for every other kind.
	decimalScale     int32
	decimalPrecision uint8

	// DictionaryId-only metadata.
	dictID *uint64
}

func newTyped[T any](kind row.Kind, values []T, zero T, toVal func(T) row.Value, fromVal func(row.Value) (T, bool)) *typed[T] {
	return &typed[T]{
		kind:    kind,
		values:  append([]T(nil), values...),
		zero:    zero,
		toVal:   toVal,
		fromVal: fromVal,
	}
}

func (c *typed[T]) Kind() row.Kind { return c.kind }
func (c *typed[T]) Len() int       { return len(c.values) }

func (c *typed[T]) checkIndex(i int) {
	if i < 0 || i >= len(c.values) {
		panic(fmt.Sprintf("column: index %d out of range [0,%d)", i, len(c.values)))
	}
}

func (c *typed[T]) IsDefined(i int) bool {
	c.checkIndex(i)
	return true
}

func (c *typed[T]) GetValue(i int) row.Value {
	c.checkIndex(i)
	return c.toVal(c.values[i])
}

func (c *typed[T]) PushValue(v row.Value) (Data, error) {
	if !v.Defined {
		return c.PushNone(), nil
	}
	val, ok := c.fromVal(v)
	if !ok {
		return c, fmt.Errorf("column: type mismatch for %s: incompatible with value %s", c.kind, v.Kind)
	}
	c.values = append(c.values, val)
	return c, nil
}

// PushNone promotes a bare container to Option on first null: bitvec is
// 1...1 for the prior length, then a 0 bit and a type-default value.
func (c *typed[T]) PushNone() Data {
	prior := len(c.values)
	bv := bitvec.Repeat(prior, true)
	bv.Push(false)
	c.values = append(c.values, c.zero)
	return &optionColumn{inner: c, valid: bv}
}

func (c *typed[T]) PushDefault() Data {
	c.values = append(c.values, c.zero)
	return c
}

func (c *typed[T]) Extend(other Data) (Data, error) {
	switch o := other.(type) {
	case *undefinedData:
		bv := bitvec.Repeat(len(c.values), true)
		for i := 0; i < o.n; i++ {
			c.values = append(c.values, c.zero)
			bv.Push(false)
		}
		return &optionColumn{inner: c, valid: bv}, nil
	case *optionColumn:
		bv := bitvec.Repeat(len(c.values), true)
		merged, err := c.extendSameKind(o.inner)
		if err != nil {
			return c, err
		}
		bv.Extend(o.valid)
		return &optionColumn{inner: merged, valid: bv}, nil
	default:
		return c.extendSameKind(other)
	}
}

func (c *typed[T]) extendSameKind(other Data) (Data, error) {
	o, ok := other.(*typed[T])
	if !ok || o.kind != c.kind {
		return c, fmt.Errorf("column: variant mismatch extending %s with %s", c.kind, other.Kind())
	}
	if c.kind == row.KindDecimal && o.decimalScale != c.decimalScale {
		return c, fmt.Errorf("column: decimal scale mismatch extending scale %d with scale %d", c.decimalScale, o.decimalScale)
	}
	c.values = append(c.values, o.values...)
	return c, nil
}

func (c *typed[T]) Clone() Data {
	cp := *c
	cp.values = append([]T(nil), c.values...)
	if c.dictID != nil {
		id := *c.dictID
		cp.dictID = &id
	}
	return &cp
}

func (c *typed[T]) Truncate(n int) { c.values = c.values[:n] }

func (c *typed[T]) DefaultSkeleton(n int) Data {
	values := make([]T, n)
	for i := range values {
		values[i] = c.zero
	}
	return &typed[T]{
		kind:             c.kind,
		values:           values,
		zero:             c.zero,
		toVal:            c.toVal,
		fromVal:          c.fromVal,
		decimalScale:     c.decimalScale,
		decimalPrecision: c.decimalPrecision,
	}
}

func (c *typed[T]) IsOptional() bool  { return false }
func (c *typed[T]) IsUndefined() bool { return false }
func (c *typed[T]) IsAllNone() bool   { return false }

// DictionaryID returns the column's adopted dictionary identifier, if any.
func (c *typed[T]) DictionaryID() (uint64, bool) {
	if c.dictID == nil {
		return 0, false
	}
	return *c.dictID, true
}

// SetDictionaryID adopts a dictionary identifier for a DictionaryId column.
func (c *typed[T]) SetDictionaryID(id uint64) { c.dictID = &id }

// DictionaryAware is implemented by DictionaryId columns so the append
// pipeline can adopt a schema-declared dictionary id without a type switch
// per logical type.
type DictionaryAware interface {
	DictionaryID() (uint64, bool)
	SetDictionaryID(id uint64)
}
