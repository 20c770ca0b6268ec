package gdf

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

func TestNewColumnFrom(t *testing.T) {
	mem := memory.NewGoAllocator()

	c := NewColumnFrom(mem, []float64{1.5, 2.5, 3.5})
	defer c.Release()

	if c.DType() != Float64 {
		t.Errorf("expected Float64, got %s", c.DType())
	}
	if c.Len() != 3 || c.Cap() != 3 {
		t.Errorf("expected len/cap 3/3, got %d/%d", c.Len(), c.Cap())
	}
	if got := c.Float64s(); got[0] != 1.5 || got[2] != 3.5 {
		t.Errorf("unexpected data: %v", got)
	}
}

func TestNewColumnFromInfersTags(t *testing.T) {
	mem := memory.NewGoAllocator()

	cases := []struct {
		col  *Column
		want DType
	}{
		{NewColumnFrom(mem, []int8{1}), Int8},
		{NewColumnFrom(mem, []int16{1}), Int16},
		{NewColumnFrom(mem, []int32{1}), Int32},
		{NewColumnFrom(mem, []int64{1}), Int64},
		{NewColumnFrom(mem, []float32{1}), Float32},
		{NewColumnFrom(mem, []float64{1}), Float64},
	}
	for _, tc := range cases {
		if tc.col.DType() != tc.want {
			t.Errorf("expected %s, got %s", tc.want, tc.col.DType())
		}
		tc.col.Release()
	}
}

func TestNewColumnFromValues(t *testing.T) {
	mem := memory.NewGoAllocator()

	c, err := NewColumnFromValues(mem, Int16, []any{1, int64(2), "3", 4.0})
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	defer c.Release()

	want := []int16{1, 2, 3, 4}
	for i, w := range want {
		if c.Int16s()[i] != w {
			t.Errorf("element %d: expected %d, got %d", i, w, c.Int16s()[i])
		}
	}
}

func TestNewColumnFromValuesRejectsBadInput(t *testing.T) {
	mem := memory.NewGoAllocator()

	if _, err := NewColumnFromValues(mem, Int64, []any{"not a number"}); err == nil {
		t.Error("expected conversion error")
	}
	if _, err := NewColumnFromValues(mem, DType(42), []any{1}); err == nil {
		t.Error("expected unsupported type error")
	}
}

func TestColumnSetLen(t *testing.T) {
	mem := memory.NewGoAllocator()
	f := NewBufferFactory(mem)

	c, err := f.NewColumn(Int64, 10)
	if err != nil {
		t.Fatalf("allocation failed: %v", err)
	}
	defer c.Release()

	if c.Len() != 0 {
		t.Errorf("fresh column should have length 0, got %d", c.Len())
	}
	if c.Cap() != 10 {
		t.Errorf("expected capacity 10, got %d", c.Cap())
	}
	c.SetLen(4)
	if c.Len() != 4 {
		t.Errorf("expected length 4, got %d", c.Len())
	}
	if got := c.Int64s(); len(got) != 4 {
		t.Errorf("typed view should honor declared length, got %d", len(got))
	}
}
