package gdf

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/parquet-go/parquet-go"
)

// ============================================================================
// Parquet Export
// ============================================================================

// ParquetWriteOptions configures Parquet writing behavior
type ParquetWriteOptions struct {
	Compression string // "snappy", "gzip", "zstd", or "" for none
}

// DefaultParquetWriteOptions returns default Parquet writing options
func DefaultParquetWriteOptions() ParquetWriteOptions {
	return ParquetWriteOptions{Compression: "snappy"}
}

// WriteParquet writes the result to a Parquet file
func (r GroupResult) WriteParquet(path string, opts ...ParquetWriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create file")
	}
	defer f.Close()

	return r.WriteParquetTo(f, opts...)
}

// WriteParquetTo writes the result to an io.Writer
func (r GroupResult) WriteParquetTo(w io.Writer, opts ...ParquetWriteOptions) error {
	opt := DefaultParquetWriteOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if r.Keys == nil || r.Values == nil {
		return errors.AssertionFailedf("nil result column")
	}

	keyNode, err := dtypeToParquetNode(r.Keys.DType())
	if err != nil {
		return errors.Wrapf(err, "key column %s", r.KeyName)
	}
	valueNode, err := dtypeToParquetNode(r.Values.DType())
	if err != nil {
		return errors.Wrapf(err, "value column %s", r.ValueName)
	}
	schema := parquet.NewSchema("groupby", parquet.Group{
		r.KeyName:   keyNode,
		r.ValueName: valueNode,
	})

	writerOpts := []parquet.WriterOption{schema}
	switch opt.Compression {
	case "snappy":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Snappy))
	case "gzip":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Gzip))
	case "zstd":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Zstd))
	}

	pw := parquet.NewWriter(w, writerOpts...)

	// Group schemas order fields alphabetically; source each leaf from
	// the matching column
	fields := schema.Fields()
	cols := make([]*Column, len(fields))
	for i, f := range fields {
		switch f.Name() {
		case r.KeyName:
			cols[i] = r.Keys
		case r.ValueName:
			cols[i] = r.Values
		}
	}

	const batchSize = 1000
	rows := make([]parquet.Row, 0, batchSize)
	for i := 0; i < r.Keys.Len(); i++ {
		row := make(parquet.Row, len(cols))
		for j, col := range cols {
			row[j] = toParquetValue(col, i).Level(0, 0, j)
		}
		rows = append(rows, row)

		if len(rows) >= batchSize {
			if _, err := pw.WriteRows(rows); err != nil {
				return errors.Wrapf(err, "write rows at %d", i-len(rows)+1)
			}
			rows = rows[:0]
		}
	}
	if len(rows) > 0 {
		if _, err := pw.WriteRows(rows); err != nil {
			return errors.Wrap(err, "write final rows")
		}
	}

	return pw.Close()
}

func dtypeToParquetNode(dtype DType) (parquet.Node, error) {
	switch dtype {
	case Int8:
		return parquet.Int(8), nil
	case Int16:
		return parquet.Int(16), nil
	case Int32:
		return parquet.Int(32), nil
	case Int64:
		return parquet.Int(64), nil
	case Float32:
		return parquet.Leaf(parquet.FloatType), nil
	case Float64:
		return parquet.Leaf(parquet.DoubleType), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "column type %s", dtype)
	}
}

func toParquetValue(c *Column, i int) parquet.Value {
	switch c.DType() {
	case Int8:
		return parquet.Int32Value(int32(c.Int8s()[i]))
	case Int16:
		return parquet.Int32Value(int32(c.Int16s()[i]))
	case Int32:
		return parquet.Int32Value(c.Int32s()[i])
	case Int64:
		return parquet.Int64Value(c.Int64s()[i])
	case Float32:
		return parquet.FloatValue(c.Float32s()[i])
	case Float64:
		return parquet.DoubleValue(c.Float64s()[i])
	default:
		return parquet.NullValue()
	}
}
