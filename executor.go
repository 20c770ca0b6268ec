package gdf

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// singleAggregate is a monomorphized execution path for one
// (key type, value type) pair: it runs exactly one operator through the
// compute backend and copies the backend-owned results into the
// caller's buffers.
//
// On success the output lengths are set to the distinct-group count;
// content beyond that count is unspecified. On backend failure the
// output lengths are left untouched and the error is marked
// ErrComputeBackend — never a partial result.
func singleAggregate[K groupKey, V Element](e *Engine, op AggOp, key, values, outKeys, outValues *Column, sortResult bool) error {
	resKeys, resValues, groups, err := e.backend.HashAggregate(op, key, values, sortResult)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "%s aggregation", op), ErrComputeBackend)
	}
	defer resKeys.Release()
	defer resValues.Release()

	copy(columnData[K](outKeys)[:groups], columnData[K](resKeys)[:groups])
	if op == AggCount {
		// counts come back as Int64 regardless of the requested output
		// tag; narrow into the caller-declared type
		src := columnData[int64](resValues)[:groups]
		dst := columnData[V](outValues)[:groups]
		for i, n := range src {
			dst[i] = V(n)
		}
	} else {
		copy(columnData[V](outValues)[:groups], columnData[V](resValues)[:groups])
	}

	outKeys.SetLen(groups)
	outValues.SetLen(groups)
	e.log.Debug("aggregation pass complete",
		zap.Stringer("op", op),
		zap.Int("rows", key.Len()),
		zap.Int("groups", groups))
	return nil
}
