package gdf

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/cockroachdb/errors"
)

// BufferFactory allocates and releases column buffers for intermediate
// aggregation results. Contents are not zero-initialized and no validity
// mask is produced.
//
// Every column handed out must be released exactly once: never omitted,
// never twice. The composer's exit-path discipline in average.go is the
// enforcement mechanism inside this package.
type BufferFactory struct {
	mem memory.Allocator
}

// NewBufferFactory creates a factory on the given allocator. A nil
// allocator selects memory.DefaultAllocator.
func NewBufferFactory(mem memory.Allocator) *BufferFactory {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return &BufferFactory{mem: mem}
}

// NewColumn allocates a column buffer with the given element capacity.
// The declared length starts at zero; contents are unspecified.
func (f *BufferFactory) NewColumn(dtype DType, capacity int) (*Column, error) {
	if !dtype.Valid() {
		return nil, errors.Wrapf(ErrUnsupportedType, "column type %s", dtype)
	}
	if capacity < 0 {
		return nil, errors.Wrapf(ErrBufferCapacity, "negative capacity %d", capacity)
	}
	buf := memory.NewResizableBuffer(f.mem)
	buf.Resize(capacity * dtype.Size())
	return &Column{dtype: dtype, buf: buf}, nil
}

// Release frees a column allocated by this factory.
func (f *BufferFactory) Release(c *Column) {
	if c != nil {
		c.Release()
	}
}
