package accesses

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// rankCond is the relative singular value cutoff used for rank decisions.
// Coefficients are small integers so any non-zero singular value is far
// above it.
const rankCond = 1e-9

// Linear returns the iterator columns as a NbDims x NbIterators matrix, or
// nil when either dimension is zero
func (am *AccessMatrix) Linear() *mat.Dense {
	if am.NbDims == 0 || am.NbIterators == 0 {
		return nil
	}
	lin := mat.NewDense(am.NbDims, am.NbIterators, nil)
	for r := 0; r < am.NbDims; r++ {
		for c := 0; c < am.NbIterators; c++ {
			lin.Set(r, c, float64(am.Matrix[r][c]))
		}
	}
	return lin
}

// Dense returns the full matrix, constant column included
func (am *AccessMatrix) Dense() *mat.Dense {
	if am.NbDims == 0 {
		return nil
	}
	d := mat.NewDense(am.NbDims, am.NbIterators+1, nil)
	for r := range am.Matrix {
		for c, v := range am.Matrix[r] {
			d.Set(r, c, float64(v))
		}
	}
	return d
}

// Offsets returns the constant column
func (am *AccessMatrix) Offsets() []int {
	out := make([]int, am.NbDims)
	for r := range am.Matrix {
		out[r] = am.Matrix[r][am.NbIterators]
	}
	return out
}

// IsInvariantTo reports whether the accessed element does not change when
// iterator k moves
func (am *AccessMatrix) IsInvariantTo(k int) bool {
	for r := range am.Matrix {
		if am.Matrix[r][k] != 0 {
			return false
		}
	}
	return true
}

// Stride is the distance in elements between the addresses touched by two
// consecutive values of iterator k, for a row-major buffer of the given
// extents (outermost first)
func (am *AccessMatrix) Stride(k int, extents []int) (int, error) {
	if k < 0 || k >= am.NbIterators {
		return 0, errors.Errorf("iterator %d outside nest of depth %d", k, am.NbIterators)
	}
	if len(extents) != am.NbDims {
		return 0, errors.Errorf("buffer %s has %d dims, got %d extents", am.BufferName, am.NbDims, len(extents))
	}
	stride, weight := 0, 1
	for r := am.NbDims - 1; r >= 0; r-- {
		stride += am.Matrix[r][k] * weight
		weight *= extents[r]
	}
	return stride, nil
}

// ContiguousIterator returns the innermost iterator that walks the last
// buffer dimension with unit coefficient and no other dimension, i.e. the
// loop along which the access is contiguous
func (am *AccessMatrix) ContiguousIterator() (int, bool) {
	if am.NbDims == 0 {
		return 0, false
	}
	last := am.NbDims - 1
	for k := am.NbIterators - 1; k >= 0; k-- {
		if am.Matrix[last][k] != 1 {
			continue
		}
		alone := true
		for r := 0; r < last; r++ {
			if am.Matrix[r][k] != 0 {
				alone = false
				break
			}
		}
		if alone {
			return k, true
		}
	}
	return 0, false
}

// LinearRank is the rank of the iterator coefficient matrix
func (am *AccessMatrix) LinearRank() int {
	lin := am.Linear()
	if lin == nil {
		return 0
	}
	var svd mat.SVD
	if !svd.Factorize(lin, mat.SVDNone) {
		return 0
	}
	return svd.Rank(rankCond)
}

// HasSelfTemporalReuse reports whether distinct iterations of the nest
// touch the same element, which holds exactly when the iterator
// coefficients do not have full column rank
func (am *AccessMatrix) HasSelfTemporalReuse() bool {
	return am.NbIterators > 0 && am.LinearRank() < am.NbIterators
}

// SameLinearPart reports whether other accesses the same buffer with the
// same iterator coefficients, differing at most by constant offsets
func (am *AccessMatrix) SameLinearPart(other *AccessMatrix) bool {
	if other == nil || am.BufferName != other.BufferName ||
		am.NbDims != other.NbDims || am.NbIterators != other.NbIterators {
		return false
	}
	for r := range am.Matrix {
		for c := 0; c < am.NbIterators; c++ {
			if am.Matrix[r][c] != other.Matrix[r][c] {
				return false
			}
		}
	}
	return true
}

// IsReduction reports whether am is a read of the buffer written by write
func (am *AccessMatrix) IsReduction(write *AccessMatrix) bool {
	return write != nil && !am.IsWrite && write.IsWrite && am.BufferName == write.BufferName
}
