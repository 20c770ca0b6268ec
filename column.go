package gdf

import (
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"
)

// Element is the closed set of column element types.
type Element interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// groupKey is the set of types grouping runs on. Float keys are
// reinterpreted to the equal-width member of this set, see
// DType.GroupKeyType.
type groupKey interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// Column is a fixed-width numeric column backed by arrow buffer memory.
// There is no validity mask: the aggregation path never carries nulls.
//
// The declared length and the buffer capacity are tracked separately so
// a column can serve as a preallocated output whose realized element
// count is unknown until a backend call returns.
type Column struct {
	dtype  DType
	length int
	buf    *memory.Buffer
}

// NewColumnFrom copies a Go slice into a new Column. A nil allocator
// selects memory.DefaultAllocator.
func NewColumnFrom[T Element](mem memory.Allocator, data []T) *Column {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	dt := dtypeOf[T]()
	buf := memory.NewResizableBuffer(mem)
	buf.Resize(len(data) * dt.Size())
	c := &Column{dtype: dt, length: len(data), buf: buf}
	copy(columnData[T](c), data)
	return c
}

// NewColumnFromValues converts dynamically typed values into a Column of
// the requested dtype. Values are converted with the usual numeric
// coercion rules; a value that cannot be represented fails the whole
// conversion.
func NewColumnFromValues(mem memory.Allocator, dtype DType, values []any) (*Column, error) {
	if !dtype.Valid() {
		return nil, errors.Wrapf(ErrUnsupportedType, "column type %s", dtype)
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	buf := memory.NewResizableBuffer(mem)
	buf.Resize(len(values) * dtype.Size())
	c := &Column{dtype: dtype, length: len(values), buf: buf}

	var err error
	for i, v := range values {
		switch dtype {
		case Int8:
			var x int8
			if x, err = cast.ToInt8E(v); err == nil {
				columnData[int8](c)[i] = x
			}
		case Int16:
			var x int16
			if x, err = cast.ToInt16E(v); err == nil {
				columnData[int16](c)[i] = x
			}
		case Int32:
			var x int32
			if x, err = cast.ToInt32E(v); err == nil {
				columnData[int32](c)[i] = x
			}
		case Int64:
			var x int64
			if x, err = cast.ToInt64E(v); err == nil {
				columnData[int64](c)[i] = x
			}
		case Float32:
			var x float32
			if x, err = cast.ToFloat32E(v); err == nil {
				columnData[float32](c)[i] = x
			}
		case Float64:
			var x float64
			if x, err = cast.ToFloat64E(v); err == nil {
				columnData[float64](c)[i] = x
			}
		}
		if err != nil {
			c.Release()
			return nil, errors.Wrapf(err, "value %d", i)
		}
	}
	return c, nil
}

// DType returns the element type tag
func (c *Column) DType() DType {
	return c.dtype
}

// Len returns the declared element count
func (c *Column) Len() int {
	return c.length
}

// SetLen declares the realized element count. Content beyond the new
// length is unspecified.
func (c *Column) SetLen(n int) {
	c.length = n
}

// Cap returns the element capacity of the underlying buffer
func (c *Column) Cap() int {
	if c.buf == nil || c.dtype.Size() == 0 {
		return 0
	}
	return c.buf.Len() / c.dtype.Size()
}

// Release frees the underlying buffer. It must be called exactly once
// per allocation; a released column must not be used again.
func (c *Column) Release() {
	if c.buf != nil {
		c.buf.Release()
		c.buf = nil
	}
	c.length = 0
}

// Value returns element i as a dynamically typed value.
func (c *Column) Value(i int) any {
	switch c.dtype {
	case Int8:
		return c.Int8s()[i]
	case Int16:
		return c.Int16s()[i]
	case Int32:
		return c.Int32s()[i]
	case Int64:
		return c.Int64s()[i]
	case Float32:
		return c.Float32s()[i]
	case Float64:
		return c.Float64s()[i]
	default:
		return nil
	}
}

// Typed views over the declared length. The column must carry the
// matching dtype; views share the column's memory.

func (c *Column) Int8s() []int8 {
	return arrow.Int8Traits.CastFromBytes(c.bytes())[:c.length]
}

func (c *Column) Int16s() []int16 {
	return arrow.Int16Traits.CastFromBytes(c.bytes())[:c.length]
}

func (c *Column) Int32s() []int32 {
	return arrow.Int32Traits.CastFromBytes(c.bytes())[:c.length]
}

func (c *Column) Int64s() []int64 {
	return arrow.Int64Traits.CastFromBytes(c.bytes())[:c.length]
}

func (c *Column) Float32s() []float32 {
	return arrow.Float32Traits.CastFromBytes(c.bytes())[:c.length]
}

func (c *Column) Float64s() []float64 {
	return arrow.Float64Traits.CastFromBytes(c.bytes())[:c.length]
}

func (c *Column) bytes() []byte {
	if c.buf == nil {
		return nil
	}
	return c.buf.Bytes()
}

// columnData reinterprets the full buffer capacity as a slice of T.
// Width must match; the dtype tag is not consulted, which is what lets
// float key columns run on the integer grouping path.
func columnData[T Element](c *Column) []T {
	b := c.bytes()
	if len(b) == 0 {
		return nil
	}
	var z T
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), len(b)/int(unsafe.Sizeof(z)))
}

// dtypeOf maps a static element type to its runtime tag
func dtypeOf[T Element]() DType {
	var z T
	switch any(z).(type) {
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case float32:
		return Float32
	default:
		return Float64
	}
}
