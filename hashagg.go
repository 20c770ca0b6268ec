package gdf

import (
	"sort"
	"sync"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
)

// HashBackend is the in-process reference implementation of
// ComputeBackend: a partitioned hash build over morsels of the input,
// a deterministic merge, and an optional ascending key sort.
//
// Group order without sorting is first-occurrence order (merged in
// morsel order), so results are deterministic for a fixed configuration
// — the property the multi-pass composer depends on.
type HashBackend struct {
	factory *BufferFactory
	cfg     *ParallelConfig

	poolOnce sync.Once
	pool     *ants.Pool
}

// NewHashBackend creates a backend allocating its result columns from
// mem. A nil config selects DefaultParallelConfig.
func NewHashBackend(mem memory.Allocator, cfg *ParallelConfig) *HashBackend {
	if cfg == nil {
		cfg = DefaultParallelConfig()
	}
	return &HashBackend{
		factory: NewBufferFactory(mem),
		cfg:     cfg,
	}
}

// Close releases the worker pool. The backend must not be used after.
func (b *HashBackend) Close() {
	if b.pool != nil {
		b.pool.Release()
		b.pool = nil
	}
}

// workerPool lazily creates the ants pool; a creation failure degrades
// to plain goroutines.
func (b *HashBackend) workerPool() *ants.Pool {
	b.poolOnce.Do(func() {
		if p, err := ants.NewPool(b.cfg.numWorkers()); err == nil {
			b.pool = p
		}
	})
	return b.pool
}

// HashAggregate implements ComputeBackend.
func (b *HashBackend) HashAggregate(op AggOp, keys, values *Column, sortOutput bool) (*Column, *Column, int, error) {
	if op == AggAvg {
		return nil, nil, 0, errors.Newf("hash backend: %s has no single-pass accumulator", op)
	}
	if keys == nil || values == nil {
		return nil, nil, 0, errors.AssertionFailedf("nil input column")
	}
	kt, ok := keys.DType().GroupKeyType()
	if !ok {
		return nil, nil, 0, errors.Wrapf(ErrUnsupportedType, "grouping key type %s", keys.DType())
	}
	switch kt {
	case Int8:
		return aggregateKeyed[int8](b, op, keys, values, sortOutput)
	case Int16:
		return aggregateKeyed[int16](b, op, keys, values, sortOutput)
	case Int32:
		return aggregateKeyed[int32](b, op, keys, values, sortOutput)
	case Int64:
		return aggregateKeyed[int64](b, op, keys, values, sortOutput)
	default:
		return nil, nil, 0, errors.Wrapf(ErrUnsupportedType, "grouping key type %s", keys.DType())
	}
}

// aggregateKeyed resolves the accumulator type. COUNT ignores the value
// stream and always accumulates Int64 counts.
func aggregateKeyed[K groupKey](b *HashBackend, op AggOp, keys, values *Column, sortOutput bool) (*Column, *Column, int, error) {
	if op == AggCount {
		return aggregateTyped[K, int64](b, op, keys, values, sortOutput)
	}
	switch values.DType() {
	case Int8:
		return aggregateTyped[K, int8](b, op, keys, values, sortOutput)
	case Int16:
		return aggregateTyped[K, int16](b, op, keys, values, sortOutput)
	case Int32:
		return aggregateTyped[K, int32](b, op, keys, values, sortOutput)
	case Int64:
		return aggregateTyped[K, int64](b, op, keys, values, sortOutput)
	case Float32:
		return aggregateTyped[K, float32](b, op, keys, values, sortOutput)
	case Float64:
		return aggregateTyped[K, float64](b, op, keys, values, sortOutput)
	default:
		return nil, nil, 0, errors.Wrapf(ErrUnsupportedType, "value type %s", values.DType())
	}
}

func aggregateTyped[K groupKey, V Element](b *HashBackend, op AggOp, keys, values *Column, sortOutput bool) (*Column, *Column, int, error) {
	st, ok := strategyFor[V](op)
	if !ok {
		return nil, nil, 0, errors.Newf("hash backend: unsupported operator %s", op)
	}

	ks := columnData[K](keys)[:keys.Len()]
	var vs []V
	if op != AggCount {
		vs = columnData[V](values)[:values.Len()]
	}

	var groupKeys []K
	var groupVals []V
	if b.cfg.shouldParallelize(len(ks)) {
		groupKeys, groupVals = aggregateParallel(b, st, ks, vs)
	} else {
		groupKeys, groupVals = aggregateSerial(st, ks, vs)
	}
	if sortOutput {
		sortGroups(groupKeys, groupVals)
	}

	outKeys, err := b.factory.NewColumn(keys.DType(), len(groupKeys))
	if err != nil {
		return nil, nil, 0, err
	}
	outDType := values.DType()
	if op == AggCount {
		outDType = Int64
	}
	outValues, err := b.factory.NewColumn(outDType, len(groupVals))
	if err != nil {
		outKeys.Release()
		return nil, nil, 0, err
	}
	copy(columnData[K](outKeys), groupKeys)
	copy(columnData[V](outValues), groupVals)
	outKeys.SetLen(len(groupKeys))
	outValues.SetLen(len(groupVals))
	return outKeys, outValues, len(groupKeys), nil
}

// aggStrategy is the runtime operator strategy: how to seed a new
// group, fold one more row in, and merge two partial accumulators.
type aggStrategy[V Element] struct {
	seed  func(vs []V, i int) V
	fold  func(acc V, vs []V, i int) V
	merge func(a, b V) V
}

func strategyFor[V Element](op AggOp) (aggStrategy[V], bool) {
	switch op {
	case AggCount:
		return aggStrategy[V]{
			seed:  func([]V, int) V { return 1 },
			fold:  func(acc V, _ []V, _ int) V { return acc + 1 },
			merge: func(a, b V) V { return a + b },
		}, true
	case AggSum:
		return aggStrategy[V]{
			seed:  func(vs []V, i int) V { return vs[i] },
			fold:  func(acc V, vs []V, i int) V { return acc + vs[i] },
			merge: func(a, b V) V { return a + b },
		}, true
	case AggMin:
		return aggStrategy[V]{
			seed: func(vs []V, i int) V { return vs[i] },
			fold: func(acc V, vs []V, i int) V {
				if vs[i] < acc {
					return vs[i]
				}
				return acc
			},
			merge: func(a, b V) V {
				if b < a {
					return b
				}
				return a
			},
		}, true
	case AggMax:
		return aggStrategy[V]{
			seed: func(vs []V, i int) V { return vs[i] },
			fold: func(acc V, vs []V, i int) V {
				if vs[i] > acc {
					return vs[i]
				}
				return acc
			},
			merge: func(a, b V) V {
				if b > a {
					return b
				}
				return a
			},
		}, true
	default:
		return aggStrategy[V]{}, false
	}
}

// aggregateSerial builds groups in first-occurrence order.
func aggregateSerial[K groupKey, V Element](st aggStrategy[V], ks []K, vs []V) ([]K, []V) {
	idx := make(map[K]int, 64)
	groupKeys := make([]K, 0, 64)
	groupVals := make([]V, 0, 64)
	for i, k := range ks {
		if j, ok := idx[k]; ok {
			groupVals[j] = st.fold(groupVals[j], vs, i)
		} else {
			idx[k] = len(groupKeys)
			groupKeys = append(groupKeys, k)
			groupVals = append(groupVals, st.seed(vs, i))
		}
	}
	return groupKeys, groupVals
}

// aggregateParallel accumulates per-morsel partials on the worker pool
// and merges them in morsel order, keeping group order deterministic.
func aggregateParallel[K groupKey, V Element](b *HashBackend, st aggStrategy[V], ks []K, vs []V) ([]K, []V) {
	ms := b.cfg.morsels(len(ks))
	if len(ms) <= 1 {
		return aggregateSerial(st, ks, vs)
	}

	type partial struct {
		keys []K
		vals []V
	}
	parts := make([]partial, len(ms))

	pool := b.workerPool()
	var wg sync.WaitGroup
	for i, m := range ms {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			var mv []V
			if vs != nil {
				mv = vs[m.Start:m.End]
			}
			k, v := aggregateSerial(st, ks[m.Start:m.End], mv)
			parts[i] = partial{keys: k, vals: v}
		}
		if pool == nil || pool.Submit(task) != nil {
			go task()
		}
	}
	wg.Wait()

	idx := make(map[K]int, len(parts[0].keys))
	groupKeys := make([]K, 0, len(parts[0].keys))
	groupVals := make([]V, 0, len(parts[0].keys))
	for _, p := range parts {
		for j, k := range p.keys {
			if gi, ok := idx[k]; ok {
				groupVals[gi] = st.merge(groupVals[gi], p.vals[j])
			} else {
				idx[k] = len(groupKeys)
				groupKeys = append(groupKeys, k)
				groupVals = append(groupVals, p.vals[j])
			}
		}
	}
	return groupKeys, groupVals
}

// groupSorter sorts group keys ascending, carrying accumulators along.
type groupSorter[K groupKey, V Element] struct {
	keys []K
	vals []V
}

func (s groupSorter[K, V]) Len() int           { return len(s.keys) }
func (s groupSorter[K, V]) Less(i, j int) bool { return s.keys[i] < s.keys[j] }
func (s groupSorter[K, V]) Swap(i, j int) {
	s.keys[i], s.keys[j] = s.keys[j], s.keys[i]
	s.vals[i], s.vals[j] = s.vals[j], s.vals[i]
}

func sortGroups[K groupKey, V Element](keys []K, vals []V) {
	sort.Sort(groupSorter[K, V]{keys: keys, vals: vals})
}
