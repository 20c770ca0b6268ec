package gdf

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/cockroachdb/errors"
)

func TestBufferFactoryAllocateRelease(t *testing.T) {
	checked := memory.NewCheckedAllocator(memory.NewGoAllocator())
	f := NewBufferFactory(checked)

	c, err := f.NewColumn(Float64, 16)
	if err != nil {
		t.Fatalf("allocation failed: %v", err)
	}
	if c.Cap() != 16 {
		t.Errorf("expected capacity 16, got %d", c.Cap())
	}
	f.Release(c)

	checked.AssertSize(t, 0)
}

func TestBufferFactoryRejectsInvalidType(t *testing.T) {
	f := NewBufferFactory(memory.NewGoAllocator())

	if _, err := f.NewColumn(DType(42), 4); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
	if _, err := f.NewColumn(Int64, -1); !errors.Is(err, ErrBufferCapacity) {
		t.Errorf("expected ErrBufferCapacity, got %v", err)
	}
}

func TestBufferFactoryZeroCapacity(t *testing.T) {
	f := NewBufferFactory(memory.NewGoAllocator())

	c, err := f.NewColumn(Int32, 0)
	if err != nil {
		t.Fatalf("zero-capacity allocation failed: %v", err)
	}
	if c.Cap() != 0 || c.Len() != 0 {
		t.Errorf("expected empty column, got len %d cap %d", c.Len(), c.Cap())
	}
	f.Release(c)
}
