package gdf

import "runtime"

// ============================================================================
// Parallel Execution Configuration
// ============================================================================

// ParallelConfig controls the in-process backend's parallelization
type ParallelConfig struct {
	// MinRowsForParallel is the minimum rows to justify parallel overhead
	MinRowsForParallel int

	// MorselSize is the number of rows per work unit (default 4096)
	MorselSize int

	// MaxWorkers limits the number of worker goroutines (0 = GOMAXPROCS)
	MaxWorkers int

	// Enabled controls whether parallelism is used at all
	Enabled bool
}

// DefaultParallelConfig returns sensible defaults
func DefaultParallelConfig() *ParallelConfig {
	return &ParallelConfig{
		MinRowsForParallel: 8192, // ~8K rows minimum
		MorselSize:         4096, // ~4K rows per morsel
		MaxWorkers:         0,    // Use all CPUs
		Enabled:            true,
	}
}

// numWorkers returns the number of workers to use
func (cfg *ParallelConfig) numWorkers() int {
	if cfg.MaxWorkers > 0 {
		return cfg.MaxWorkers
	}
	return runtime.GOMAXPROCS(0)
}

// shouldParallelize determines if an operation should be parallelized
func (cfg *ParallelConfig) shouldParallelize(rows int) bool {
	return cfg.Enabled && rows >= cfg.MinRowsForParallel
}

// ============================================================================
// Morsel-Based Work Distribution
// ============================================================================

// Morsel represents a range of rows to process
type Morsel struct {
	Start int
	End   int
}

// morsels splits rows into at most parts contiguous ranges of at least
// morselSize rows each. Ranges are assigned statically so partial
// results can be merged in a deterministic order.
func (cfg *ParallelConfig) morsels(rows int) []Morsel {
	parts := cfg.numWorkers()
	size := (rows + parts - 1) / parts
	if size < cfg.MorselSize {
		size = cfg.MorselSize
	}
	out := make([]Morsel, 0, parts)
	for start := 0; start < rows; start += size {
		end := start + size
		if end > rows {
			end = rows
		}
		out = append(out, Morsel{Start: start, End: end})
	}
	return out
}
