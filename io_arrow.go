package gdf

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/cockroachdb/errors"
)

// ============================================================================
// Arrow Export
// ============================================================================

// GroupResult pairs the key and value columns produced by one group-by
// call, for export. The result borrows the columns; releasing them
// stays the caller's responsibility.
type GroupResult struct {
	KeyName   string
	ValueName string
	Keys      *Column
	Values    *Column
}

// ToArrow exports the result as an Arrow Record. The caller is
// responsible for calling Release() on the returned Record.
func (r GroupResult) ToArrow(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	if r.Keys == nil || r.Values == nil {
		return nil, errors.AssertionFailedf("nil result column")
	}

	keyType, err := dtypeToArrowType(r.Keys.DType())
	if err != nil {
		return nil, errors.Wrapf(err, "key column %s", r.KeyName)
	}
	valueType, err := dtypeToArrowType(r.Values.DType())
	if err != nil {
		return nil, errors.Wrapf(err, "value column %s", r.ValueName)
	}
	schema := arrow.NewSchema([]arrow.Field{
		{Name: r.KeyName, Type: keyType},
		{Name: r.ValueName, Type: valueType},
	}, nil)

	keyArr, err := columnToArrowArray(r.Keys, mem)
	if err != nil {
		return nil, errors.Wrapf(err, "key column %s", r.KeyName)
	}
	valueArr, err := columnToArrowArray(r.Values, mem)
	if err != nil {
		keyArr.Release()
		return nil, errors.Wrapf(err, "value column %s", r.ValueName)
	}

	record := array.NewRecord(schema, []arrow.Array{keyArr, valueArr}, int64(r.Keys.Len()))

	// Record retains the arrays
	keyArr.Release()
	valueArr.Release()

	return record, nil
}

// dtypeToArrowType converts a DType to an Arrow DataType
func dtypeToArrowType(dtype DType) (arrow.DataType, error) {
	switch dtype {
	case Int8:
		return arrow.PrimitiveTypes.Int8, nil
	case Int16:
		return arrow.PrimitiveTypes.Int16, nil
	case Int32:
		return arrow.PrimitiveTypes.Int32, nil
	case Int64:
		return arrow.PrimitiveTypes.Int64, nil
	case Float32:
		return arrow.PrimitiveTypes.Float32, nil
	case Float64:
		return arrow.PrimitiveTypes.Float64, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "column type %s", dtype)
	}
}

// columnToArrowArray copies a Column into an Arrow Array
func columnToArrowArray(c *Column, mem memory.Allocator) (arrow.Array, error) {
	switch c.DType() {
	case Int8:
		b := array.NewInt8Builder(mem)
		defer b.Release()
		b.AppendValues(c.Int8s(), nil)
		return b.NewArray(), nil
	case Int16:
		b := array.NewInt16Builder(mem)
		defer b.Release()
		b.AppendValues(c.Int16s(), nil)
		return b.NewArray(), nil
	case Int32:
		b := array.NewInt32Builder(mem)
		defer b.Release()
		b.AppendValues(c.Int32s(), nil)
		return b.NewArray(), nil
	case Int64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		b.AppendValues(c.Int64s(), nil)
		return b.NewArray(), nil
	case Float32:
		b := array.NewFloat32Builder(mem)
		defer b.Release()
		b.AppendValues(c.Float32s(), nil)
		return b.NewArray(), nil
	case Float64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		b.AppendValues(c.Float64s(), nil)
		return b.NewArray(), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "column type %s", c.DType())
	}
}
