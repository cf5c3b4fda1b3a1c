// Package schedule records which loop transformations are applied to one
// candidate schedule of a loop nest.
package schedule

import (
	"github.com/pkg/errors"
)

// ErrInvalidScheduleMutation is returned for out-of-range iterators and
// invalid factors
var ErrInvalidScheduleMutation = errors.New("invalid schedule mutation")

// Schedule is the transformation state of one loop nest. It is a plain
// value: give every search branch its own Clone, it has no locking.
type Schedule struct {
	NbIterators int

	Interchanged []bool
	Tiled        []bool
	TilingFact   []int // meaningful only where Tiled is set
	// UnrollingFact applies to the innermost loop; 0 means not unrolled
	UnrollingFact int
}

// New returns an untransformed schedule for a nest of n loops
func New(n int) *Schedule {
	if n < 0 {
		panic("number of iterators cannot be negative")
	}
	return &Schedule{
		NbIterators:  n,
		Interchanged: make([]bool, n),
		Tiled:        make([]bool, n),
		TilingFact:   make([]int, n),
	}
}

func (s *Schedule) check(i int) error {
	if i < 0 || i >= s.NbIterators {
		return errors.Wrapf(ErrInvalidScheduleMutation, "iterator %d outside nest of depth %d", i, s.NbIterators)
	}
	return nil
}

// SetInterchanged marks or clears iterator i as interchanged
func (s *Schedule) SetInterchanged(i int, v bool) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.Interchanged[i] = v
	return nil
}

// Interchange marks the loops at positions i and j as swapped
func (s *Schedule) Interchange(i, j int) error {
	if err := s.check(i); err != nil {
		return err
	}
	if err := s.check(j); err != nil {
		return err
	}
	if i == j {
		return errors.Wrapf(ErrInvalidScheduleMutation, "cannot interchange iterator %d with itself", i)
	}
	s.Interchanged[i] = true
	s.Interchanged[j] = true
	return nil
}

// Tile splits iterator i into an outer/inner pair with the given block size
func (s *Schedule) Tile(i, factor int) error {
	if err := s.check(i); err != nil {
		return err
	}
	if factor <= 0 {
		return errors.Wrapf(ErrInvalidScheduleMutation, "tiling factor %d for iterator %d must be positive", factor, i)
	}
	s.Tiled[i] = true
	s.TilingFact[i] = factor
	return nil
}

// Untile removes the tiling of iterator i
func (s *Schedule) Untile(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.Tiled[i] = false
	s.TilingFact[i] = 0
	return nil
}

// Unroll sets the unrolling factor of the innermost loop, 0 to disable
func (s *Schedule) Unroll(factor int) error {
	if factor < 0 {
		return errors.Wrapf(ErrInvalidScheduleMutation, "unrolling factor %d cannot be negative", factor)
	}
	s.UnrollingFact = factor
	return nil
}

func (s *Schedule) IsInterchanged(i int) bool {
	return i >= 0 && i < s.NbIterators && s.Interchanged[i]
}

func (s *Schedule) IsTiled(i int) bool {
	return i >= 0 && i < s.NbIterators && s.Tiled[i]
}

// TilingFactor returns the block size of iterator i, 0 when not tiled
func (s *Schedule) TilingFactor(i int) int {
	if !s.IsTiled(i) {
		return 0
	}
	return s.TilingFact[i]
}

func (s *Schedule) IsUnrolled() bool {
	return s.UnrollingFact > 0
}

// InterchangedDims lists the interchanged positions in increasing order
func (s *Schedule) InterchangedDims() []int {
	return marked(s.Interchanged)
}

// TiledDims lists the tiled positions in increasing order
func (s *Schedule) TiledDims() []int {
	return marked(s.Tiled)
}

func marked(flags []bool) []int {
	var out []int
	for i, f := range flags {
		if f {
			out = append(out, i)
		}
	}
	return out
}

// IsIdentity reports whether no transformation is applied
func (s *Schedule) IsIdentity() bool {
	return len(s.InterchangedDims()) == 0 && len(s.TiledDims()) == 0 && !s.IsUnrolled()
}

// Clone returns an independent copy
func (s *Schedule) Clone() *Schedule {
	return &Schedule{
		NbIterators:   s.NbIterators,
		Interchanged:  append([]bool(nil), s.Interchanged...),
		Tiled:         append([]bool(nil), s.Tiled...),
		TilingFact:    append([]int(nil), s.TilingFact...),
		UnrollingFact: s.UnrollingFact,
	}
}

// Equal compares transformation state. Tiling factors of untiled loops are
// ignored.
func (s *Schedule) Equal(o *Schedule) bool {
	if o == nil || s.NbIterators != o.NbIterators || s.UnrollingFact != o.UnrollingFact {
		return false
	}
	for i := 0; i < s.NbIterators; i++ {
		if s.Interchanged[i] != o.Interchanged[i] || s.Tiled[i] != o.Tiled[i] {
			return false
		}
		if s.TilingFactor(i) != o.TilingFactor(i) {
			return false
		}
	}
	return true
}
