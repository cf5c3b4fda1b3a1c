// loopnest/types.go
package loopnest

// DataType represents the element type stored in a buffer
type DataType int

const (
	Float32 DataType = iota + 1
	Float64
	INT32
	INT64
)

// SizeOfType returns the size in bytes of a data type
func SizeOfType(dt DataType) int64 {
	switch dt {
	case Float32, INT32:
		return 4
	case Float64, INT64:
		return 8
	default:
		return 8
	}
}

// TypeName returns the C type name for a given DataType
func TypeName(dt DataType) string {
	switch dt {
	case Float32:
		return "float"
	case Float64:
		return "double"
	case INT32:
		return "int"
	case INT64:
		return "long"
	default:
		return "double"
	}
}

// IteratorDomain is the iteration range of one loop of a nest.
// LowBound is inclusive and UpBound exclusive:
//
//	for i := LowBound; i < UpBound; i++
type IteratorDomain struct {
	LowBound int
	UpBound  int
}

// NewIteratorDomain validates LowBound <= UpBound
func NewIteratorDomain(low, up int) (IteratorDomain, error) {
	if low > up {
		return IteratorDomain{}, ErrInvalidDomain(low, up)
	}
	return IteratorDomain{LowBound: low, UpBound: up}, nil
}

// Extent is the trip count of the loop
func (d IteratorDomain) Extent() int {
	return d.UpBound - d.LowBound
}

// Contains reports whether v is a valid iterator value
func (d IteratorDomain) Contains(v int) bool {
	return v >= d.LowBound && v < d.UpBound
}
