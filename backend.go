package gdf

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"
)

// AggOp identifies a group-by aggregation operator.
type AggOp uint8

const (
	AggCount AggOp = iota
	AggSum
	AggMin
	AggMax
	AggAvg
)

// String returns the string representation of the operator
func (op AggOp) String() string {
	switch op {
	case AggCount:
		return "count"
	case AggSum:
		return "sum"
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	case AggAvg:
		return "avg"
	default:
		return "unknown"
	}
}

// ComputeBackend is the capability contract for the external
// hash-aggregation primitive. Its build/probe/accumulate internals are
// opaque to the engine; calls block until the backend completes or
// fails.
//
// HashAggregate groups the key column and accumulates the value column
// under a single operator. It returns backend-owned result columns and
// the distinct-group count; the caller must release both columns. The
// key result carries the key column's dtype; the value result carries
// the value column's dtype, except for COUNT which always yields Int64
// counts. When sortOutput is set the results are ordered ascending by
// key (for float keys, by the integer bit-pattern reinterpretation).
//
// A backend must be deterministic for a fixed (operator, sortOutput)
// pair run on identical inputs: the multi-pass composer relies on
// sorted passes over identical keys being element-wise aligned.
type ComputeBackend interface {
	HashAggregate(op AggOp, keys, values *Column, sortOutput bool) (outKeys, outValues *Column, groups int, err error)
}

// Options configures an Engine.
type Options struct {
	// Allocator backs intermediate column buffers (default
	// memory.DefaultAllocator).
	Allocator memory.Allocator

	// Backend executes the hash-aggregation primitive (default: the
	// in-process HashBackend).
	Backend ComputeBackend

	// Logger receives pass-level debug logs (default zap.NewNop()).
	Logger *zap.Logger

	// Parallel tunes the default backend; ignored when Backend is set.
	Parallel *ParallelConfig
}

// DefaultOptions returns the zero configuration; NewEngine fills in
// defaults for every unset field.
func DefaultOptions() Options {
	return Options{}
}

// Engine is the dispatch and composition layer: it resolves runtime
// element types to specialized execution paths, invokes the compute
// backend, and composes multi-pass derived aggregations.
//
// An Engine is safe for concurrent use as long as concurrent requests do
// not share output buffers and the configured backend is reentrant.
type Engine struct {
	mem     memory.Allocator
	backend ComputeBackend
	factory *BufferFactory
	log     *zap.Logger
}

// NewEngine creates an engine. With no options it runs on the default
// allocator and the in-process hash backend.
func NewEngine(opts ...Options) *Engine {
	opt := DefaultOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	mem := opt.Allocator
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	backend := opt.Backend
	if backend == nil {
		backend = NewHashBackend(mem, opt.Parallel)
	}
	return &Engine{
		mem:     mem,
		backend: backend,
		factory: NewBufferFactory(mem),
		log:     log,
	}
}

// Factory returns the engine's buffer factory.
func (e *Engine) Factory() *BufferFactory {
	return e.factory
}
