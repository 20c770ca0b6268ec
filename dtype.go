package gdf

import "fmt"

// DType identifies the element type of a Column.
// The aggregation engine supports exactly these six fixed-width numeric
// kinds; any other tag is rejected before backend work begins.
type DType uint8

const (
	Int8 DType = iota
	Int16
	Int32
	Int64
	Float32
	Float64

	numDTypes // sentinel, keep last
)

// String returns the string representation of the DType
func (d DType) String() string {
	switch d {
	case Int8:
		return "Int8"
	case Int16:
		return "Int16"
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(d))
	}
}

// Valid returns true if the dtype is one of the six supported kinds
func (d DType) Valid() bool {
	return d < numDTypes
}

// IsFloat returns true if the dtype is a floating point type
func (d DType) IsFloat() bool {
	return d == Float32 || d == Float64
}

// IsInteger returns true if the dtype is an integer type
func (d DType) IsInteger() bool {
	switch d {
	case Int8, Int16, Int32, Int64:
		return true
	default:
		return false
	}
}

// Size returns the size in bytes of one element
func (d DType) Size() int {
	switch d {
	case Int8:
		return 1
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	default:
		return 0
	}
}

// GroupKeyType returns the dtype the grouping path runs on for a key
// column of this dtype. Integer keys group as themselves. Floating-point
// keys are reinterpreted as the equal-width integer type, so float keys
// group by bit pattern: -0.0 and +0.0 are distinct groups, and each NaN
// payload is its own group. Callers that need numeric-value grouping
// must normalize float keys first.
//
// Returns false for tags outside the supported set.
func (d DType) GroupKeyType() (DType, bool) {
	switch d {
	case Int8, Int16, Int32, Int64:
		return d, true
	case Float32:
		return Int32, true
	case Float64:
		return Int64, true
	default:
		return d, false
	}
}
