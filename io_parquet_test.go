package gdf

import (
	"bytes"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/parquet-go/parquet-go"
)

func TestGroupResultWriteParquet(t *testing.T) {
	mem := memory.NewGoAllocator()
	engine := NewEngine(Options{Allocator: mem})

	result := sumResult(t, engine, mem)
	defer result.Keys.Release()
	defer result.Values.Release()

	var buf bytes.Buffer
	if err := result.WriteParquetTo(&buf); err != nil {
		t.Fatalf("WriteParquetTo failed: %v", err)
	}

	pf, err := parquet.OpenFile(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("failed to reopen parquet output: %v", err)
	}
	if pf.NumRows() != 3 {
		t.Errorf("expected 3 rows, got %d", pf.NumRows())
	}

	names := map[string]bool{}
	for _, f := range pf.Schema().Fields() {
		names[f.Name()] = true
	}
	if !names["key"] || !names["total"] {
		t.Errorf("missing columns in schema: %v", names)
	}
}

func TestGroupResultWriteParquetCompressions(t *testing.T) {
	mem := memory.NewGoAllocator()
	engine := NewEngine(Options{Allocator: mem})

	result := sumResult(t, engine, mem)
	defer result.Keys.Release()
	defer result.Values.Release()

	for _, compression := range []string{"", "snappy", "gzip", "zstd"} {
		var buf bytes.Buffer
		err := result.WriteParquetTo(&buf, ParquetWriteOptions{Compression: compression})
		if err != nil {
			t.Errorf("compression %q: %v", compression, err)
		}
		if buf.Len() == 0 {
			t.Errorf("compression %q: empty output", compression)
		}
	}
}
