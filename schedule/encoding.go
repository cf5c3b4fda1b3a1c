package schedule

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

func loopNames(dims []int) []string {
	return lo.Map(dims, func(d int, _ int) string {
		return "L" + strconv.Itoa(d)
	})
}

// String encodes the schedule in the compact form used by the cost model
// datasets, e.g. I(L0,L2)T2(L1,L2,32,32)U(L4,4). The unrolled loop index
// counts the loops added by tiling. The identity schedule is "".
// Interchange marks that do not form a single pair have no encoding and
// are left out; use Encode to reject them instead.
func (s *Schedule) String() string {
	var sb strings.Builder

	if dims := s.InterchangedDims(); len(dims) == 2 {
		sb.WriteString("I(")
		sb.WriteString(strings.Join(loopNames(dims), ","))
		sb.WriteByte(')')
	}

	tiled := s.TiledDims()
	if len(tiled) > 0 {
		factors := lo.Map(tiled, func(d int, _ int) string {
			return strconv.Itoa(s.TilingFact[d])
		})
		sb.WriteString("T")
		sb.WriteString(strconv.Itoa(len(tiled)))
		sb.WriteByte('(')
		sb.WriteString(strings.Join(append(loopNames(tiled), factors...), ","))
		sb.WriteByte(')')
	}

	if s.IsUnrolled() && s.NbIterators > 0 {
		inner := s.NbIterators + len(tiled) - 1
		sb.WriteString("U(L")
		sb.WriteString(strconv.Itoa(inner))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(s.UnrollingFact))
		sb.WriteByte(')')
	}
	return sb.String()
}

// Encode is String for schedules headed to a dataset. It fails when the
// interchange marks are not exactly one pair.
func (s *Schedule) Encode() (string, error) {
	if n := len(s.InterchangedDims()); n != 0 && n != 2 {
		return "", errors.Errorf("cannot encode %d interchanged loops, need a pair", n)
	}
	return s.String(), nil
}

// NumInterchangeClasses is the number of distinct single interchanges in a
// nest of depthMax loops, plus one for "no interchange"
func NumInterchangeClasses(depthMax int) int {
	return depthMax*(depthMax-1)/2 + 1
}

// pairStart is the class index just before the first pair (a, a+1)
func pairStart(a, depthMax int) int {
	p := 0
	for x := 1; x <= a; x++ {
		p += depthMax - x
	}
	return p
}

// InterchangeClass maps the interchanged pair (a, b) to its one-hot
// position among NumInterchangeClasses(depthMax) classes. Class 0 is the
// schedule without interchange; pairs are numbered in lexicographic order
// from 1.
func (s *Schedule) InterchangeClass(depthMax int) (int, error) {
	dims := s.InterchangedDims()
	switch len(dims) {
	case 0:
		return 0, nil
	case 2:
	default:
		return 0, errors.Errorf("interchange class needs exactly two interchanged loops, have %d", len(dims))
	}
	a, b := dims[0], dims[1]
	if b >= depthMax {
		return 0, errors.Errorf("loop %d beyond maximum depth %d", b, depthMax)
	}
	return pairStart(a, depthMax) + b - a, nil
}
