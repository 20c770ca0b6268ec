package gdf

import (
	"sync"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/cockroachdb/errors"
)

// countingBackend counts primitive invocations.
type countingBackend struct {
	inner ComputeBackend
	calls int
}

func (b *countingBackend) HashAggregate(op AggOp, keys, values *Column, sortOutput bool) (*Column, *Column, int, error) {
	b.calls++
	return b.inner.HashAggregate(op, keys, values, sortOutput)
}

// recordedPass snapshots the key output of one primitive invocation.
type recordedPass struct {
	op       AggOp
	groups   int
	keyBytes []byte
}

// recordingBackend captures per-pass key sequences so tests can assert
// the cross-pass alignment invariant directly.
type recordingBackend struct {
	inner  ComputeBackend
	passes []recordedPass
}

func (b *recordingBackend) HashAggregate(op AggOp, keys, values *Column, sortOutput bool) (*Column, *Column, int, error) {
	outKeys, outValues, groups, err := b.inner.HashAggregate(op, keys, values, sortOutput)
	if err != nil {
		return nil, nil, 0, err
	}
	snapshot := append([]byte(nil), outKeys.bytes()[:groups*outKeys.DType().Size()]...)
	b.passes = append(b.passes, recordedPass{op: op, groups: groups, keyBytes: snapshot})
	return outKeys, outValues, groups, nil
}

// failingBackend fails every pass running the given operator and
// delegates the rest.
type failingBackend struct {
	inner  ComputeBackend
	failOn AggOp
}

func (b *failingBackend) HashAggregate(op AggOp, keys, values *Column, sortOutput bool) (*Column, *Column, int, error) {
	if op == b.failOn {
		return nil, nil, 0, errors.Newf("injected %s failure", op)
	}
	return b.inner.HashAggregate(op, keys, values, sortOutput)
}

// trackingAllocator counts allocations and frees flowing through the
// engine and backend, for the alloc-count == dealloc-count property.
type trackingAllocator struct {
	mu     sync.Mutex
	inner  memory.Allocator
	allocs int
	frees  int
}

func newTrackingAllocator() *trackingAllocator {
	return &trackingAllocator{inner: memory.NewGoAllocator()}
}

func (a *trackingAllocator) Allocate(size int) []byte {
	a.mu.Lock()
	a.allocs++
	a.mu.Unlock()
	return a.inner.Allocate(size)
}

func (a *trackingAllocator) Reallocate(size int, b []byte) []byte {
	return a.inner.Reallocate(size, b)
}

func (a *trackingAllocator) Free(b []byte) {
	a.mu.Lock()
	a.frees++
	a.mu.Unlock()
	a.inner.Free(b)
}

func (a *trackingAllocator) counts() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocs, a.frees
}
