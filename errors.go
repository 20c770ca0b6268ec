package gdf

import "github.com/cockroachdb/errors"

// Error taxonomy surfaced by the aggregation engine. Callers match with
// errors.Is; on any error the output column sizes are unset and buffer
// contents are undefined, never a partial result.
var (
	// ErrInvalidColumnCount is returned when a request names more than
	// one grouping column.
	ErrInvalidColumnCount = errors.New("gdf: exactly one grouping column is required")

	// ErrUnsupportedType is returned when a key, value, or output column
	// carries a type tag outside the six supported kinds, or when output
	// tags do not match the request. Raised before any allocation or
	// backend invocation.
	ErrUnsupportedType = errors.New("gdf: unsupported column element type")

	// ErrComputeBackend marks failures reported by the compute backend
	// (allocation exhaustion, device fault, or similar).
	ErrComputeBackend = errors.New("gdf: compute backend failure")

	// ErrBufferCapacity is returned when output buffers are smaller than
	// the input element count, or when key and value lengths differ.
	ErrBufferCapacity = errors.New("gdf: buffer capacity below input element count")
)
