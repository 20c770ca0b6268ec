package gdf

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// The backend primitive commits to a single accumulator per pass, so
// derived statistics are composed from multiple primitive passes plus a
// pure combine kernel. Every pass requests sorted output: two sorted
// passes over identical keys yield element-wise aligned rows (a
// determinism guarantee of the ComputeBackend contract, asserted by
// tests rather than re-verified per call).

// primitivePass declares one backend pass required by a derived
// aggregation and the accumulator type its intermediate buffer carries.
type primitivePass struct {
	op AggOp

	// resultType picks the intermediate accumulator dtype for this pass
	// from the request's value and output columns.
	resultType func(values, outValues *Column) DType
}

// derivedAgg is a derived aggregation: its primitive passes plus a
// combine kernel over the aligned pass results.
type derivedAgg struct {
	passes []primitivePass

	// combine writes the derived statistic for rows [0, groups) into
	// outValues, computed in outValues' element type.
	combine func(outValues *Column, passResults []*Column, groups int) error
}

var derivedAggs = map[AggOp]derivedAgg{
	AggAvg: {
		passes: []primitivePass{
			// group cardinalities can exceed any narrower integer, so
			// counts always accumulate in Int64
			{op: AggCount, resultType: func(_, _ *Column) DType { return Int64 }},
			{op: AggSum, resultType: func(values, _ *Column) DType { return values.DType() }},
		},
		combine: combineAverage,
	},
}

// GroupByHashAverage derives the per-group average AVG = SUM / COUNT
// via two sorted backend passes and an elementwise division computed in
// the output column's element type.
//
// Both passes write the caller's output key buffer; the value buffer
// receives the quotients. Intermediate COUNT and SUM buffers are owned
// by the composer and released on every exit path.
func (e *Engine) GroupByHashAverage(keys []*Column, values *Column, outKeys, outValues *Column) error {
	if len(keys) != 1 {
		return errors.Wrapf(ErrInvalidColumnCount, "got %d grouping columns", len(keys))
	}
	return e.groupByDerived(AggAvg, keys[0], values, outKeys, outValues)
}

func (e *Engine) groupByDerived(op AggOp, key, values, outKeys, outValues *Column) error {
	d, ok := derivedAggs[op]
	if !ok {
		return errors.AssertionFailedf("%s is not a derived aggregation", op)
	}
	// reject bad requests before the first intermediate is allocated
	if err := checkAggregateArgs(op, key, values, outKeys, outValues); err != nil {
		return err
	}
	e.log.Debug("derived group-by",
		zap.Stringer("op", op),
		zap.Int("rows", key.Len()),
		zap.Int("passes", len(d.passes)))

	// intermediates are sized to the caller's output capacity and are
	// released on every exit path below, exactly once each
	intermediates := make([]*Column, 0, len(d.passes))
	releaseAll := func() {
		for _, c := range intermediates {
			e.factory.Release(c)
		}
	}

	for _, pass := range d.passes {
		col, err := e.factory.NewColumn(pass.resultType(values, outValues), outValues.Cap())
		if err != nil {
			releaseAll()
			return err
		}
		intermediates = append(intermediates, col)
		if err := e.dispatchSingle(pass.op, key, values, outKeys, col, true); err != nil {
			releaseAll()
			return err
		}
	}

	groups := intermediates[0].Len()
	if err := d.combine(outValues, intermediates, groups); err != nil {
		releaseAll()
		return err
	}
	outValues.SetLen(groups)
	releaseAll()
	return nil
}

// combineAverage divides the SUM pass by the COUNT pass elementwise in
// the output element type. Every row below the group count is a
// realized group, so counts are always >= 1 and no division by zero can
// arise from group data.
func combineAverage(outValues *Column, passResults []*Column, groups int) error {
	counts, sums := passResults[0], passResults[1]
	switch outValues.DType() {
	case Int8:
		return divideInto[int8](outValues, sums, counts, groups)
	case Int16:
		return divideInto[int16](outValues, sums, counts, groups)
	case Int32:
		return divideInto[int32](outValues, sums, counts, groups)
	case Int64:
		return divideInto[int64](outValues, sums, counts, groups)
	case Float32:
		return divideInto[float32](outValues, sums, counts, groups)
	case Float64:
		return divideInto[float64](outValues, sums, counts, groups)
	default:
		return errors.Wrapf(ErrUnsupportedType, "average output type %s", outValues.DType())
	}
}

func divideInto[T Element](outValues, sums, counts *Column, groups int) error {
	dst := columnData[T](outValues)[:groups]
	cnt := columnData[int64](counts)[:groups]
	switch sums.DType() {
	case Int8:
		divideLoop(dst, columnData[int8](sums), cnt)
	case Int16:
		divideLoop(dst, columnData[int16](sums), cnt)
	case Int32:
		divideLoop(dst, columnData[int32](sums), cnt)
	case Int64:
		divideLoop(dst, columnData[int64](sums), cnt)
	case Float32:
		divideLoop(dst, columnData[float32](sums), cnt)
	case Float64:
		divideLoop(dst, columnData[float64](sums), cnt)
	default:
		return errors.Wrapf(ErrUnsupportedType, "sum accumulator type %s", sums.DType())
	}
	return nil
}

func divideLoop[T, S Element](dst []T, sums []S, counts []int64) {
	for i := range dst {
		dst[i] = T(sums[i]) / T(counts[i])
	}
}
