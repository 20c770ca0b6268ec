package gdf

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// GroupByHash aggregates the value column per distinct key and writes
// results into the caller's preallocated output buffers.
//
// Exactly one grouping column is supported. Output buffers must have
// capacity for at least one element per input row (the upper bound on
// distinct groups); their declared lengths are set to the realized
// group count on success and are unreliable on error. When sortResult
// is set the output is ordered ascending by key, otherwise the order is
// unspecified.
//
// AggAvg requests are routed through the multi-pass composer, which
// always sorts.
func (e *Engine) GroupByHash(op AggOp, keys []*Column, values *Column, outKeys, outValues *Column, sortResult bool) error {
	if len(keys) != 1 {
		return errors.Wrapf(ErrInvalidColumnCount, "got %d grouping columns", len(keys))
	}
	if op == AggAvg {
		return e.GroupByHashAverage(keys, values, outKeys, outValues)
	}
	e.log.Debug("group-by hash",
		zap.Stringer("op", op),
		zap.Int("rows", keys[0].Len()),
		zap.Bool("sorted", sortResult))
	return e.dispatchSingle(op, keys[0], values, outKeys, outValues, sortResult)
}

// dispatchSingle is the first dispatch level: it validates the request
// and resolves the grouping key's runtime tag to a key-typed execution
// path. Float key tags take the equal-width integer path (bit-pattern
// grouping, see DType.GroupKeyType).
func (e *Engine) dispatchSingle(op AggOp, key, values, outKeys, outValues *Column, sortResult bool) error {
	if err := checkAggregateArgs(op, key, values, outKeys, outValues); err != nil {
		return err
	}
	kt, ok := key.DType().GroupKeyType()
	if !ok {
		return errors.Wrapf(ErrUnsupportedType, "grouping key type %s", key.DType())
	}
	switch kt {
	case Int8:
		return dispatchValue[int8](e, op, key, values, outKeys, outValues, sortResult)
	case Int16:
		return dispatchValue[int16](e, op, key, values, outKeys, outValues, sortResult)
	case Int32:
		return dispatchValue[int32](e, op, key, values, outKeys, outValues, sortResult)
	case Int64:
		return dispatchValue[int64](e, op, key, values, outKeys, outValues, sortResult)
	default:
		return errors.Wrapf(ErrUnsupportedType, "grouping key type %s", key.DType())
	}
}

// dispatchValue is the second dispatch level. It resolves on the value
// column's tag, except for COUNT, which resolves on the output column's
// tag: a count's result type is unrelated to the values being counted.
func dispatchValue[K groupKey](e *Engine, op AggOp, key, values, outKeys, outValues *Column, sortResult bool) error {
	vt := values.DType()
	if op == AggCount {
		vt = outValues.DType()
	}
	switch vt {
	case Int8:
		return singleAggregate[K, int8](e, op, key, values, outKeys, outValues, sortResult)
	case Int16:
		return singleAggregate[K, int16](e, op, key, values, outKeys, outValues, sortResult)
	case Int32:
		return singleAggregate[K, int32](e, op, key, values, outKeys, outValues, sortResult)
	case Int64:
		return singleAggregate[K, int64](e, op, key, values, outKeys, outValues, sortResult)
	case Float32:
		return singleAggregate[K, float32](e, op, key, values, outKeys, outValues, sortResult)
	case Float64:
		return singleAggregate[K, float64](e, op, key, values, outKeys, outValues, sortResult)
	default:
		return errors.Wrapf(ErrUnsupportedType, "value type %s", vt)
	}
}

// checkAggregateArgs rejects malformed requests before any allocation
// or backend invocation. No partial mutation happens past this point
// for type errors.
func checkAggregateArgs(op AggOp, key, values, outKeys, outValues *Column) error {
	if key == nil || values == nil || outKeys == nil || outValues == nil {
		return errors.AssertionFailedf("nil column argument")
	}
	if !key.DType().Valid() {
		return errors.Wrapf(ErrUnsupportedType, "grouping key type %s", key.DType())
	}
	if !values.DType().Valid() {
		return errors.Wrapf(ErrUnsupportedType, "value type %s", values.DType())
	}
	if !outValues.DType().Valid() {
		return errors.Wrapf(ErrUnsupportedType, "output value type %s", outValues.DType())
	}
	if outKeys.DType() != key.DType() {
		return errors.Wrapf(ErrUnsupportedType,
			"output key type %s does not match grouping key type %s", outKeys.DType(), key.DType())
	}
	// COUNT and AVG outputs are decoupled from the value column's type;
	// everything else accumulates in the value type.
	if op != AggCount && op != AggAvg && outValues.DType() != values.DType() {
		return errors.Wrapf(ErrUnsupportedType,
			"output value type %s does not match value type %s", outValues.DType(), values.DType())
	}
	if key.Len() != values.Len() {
		return errors.Wrapf(ErrBufferCapacity,
			"key length %d does not match value length %d", key.Len(), values.Len())
	}
	if outKeys.Cap() < key.Len() || outValues.Cap() < key.Len() {
		return errors.Wrapf(ErrBufferCapacity,
			"output capacity (%d keys, %d values) below input element count %d",
			outKeys.Cap(), outValues.Cap(), key.Len())
	}
	return nil
}
