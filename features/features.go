// Package features flattens a computation, its access matrices and its
// schedule into the fixed-size vector read by the cost model.
package features

import (
	"github.com/notargets/DGSched/accesses"
	"github.com/notargets/DGSched/expr"
	"github.com/notargets/DGSched/loopnest"
	"github.com/notargets/DGSched/schedule"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrTooDeep         = errors.New("loop nest or buffer rank exceeds maximum depth")
	ErrTooManyAccesses = errors.New("too many accesses")
	ErrNoAccesses      = errors.New("computation reads no buffer")
)

const (
	DefaultMaxDepth    = 7
	DefaultMaxAccesses = 15

	// upper, lower, interchanged, tiled, tiling factor
	iteratorFields = 5
	// additions, subtractions, multiplications, divisions, loop depth
	trailerFields = 5
)

// Config bounds the representation. Zero fields take the defaults.
type Config struct {
	MaxDepth    int
	MaxAccesses int
}

func (c Config) withDefaults() Config {
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.MaxAccesses <= 0 {
		c.MaxAccesses = DefaultMaxAccesses
	}
	return c
}

// Computation is what the representation needs from a computation
type Computation interface {
	Iterators() []loopnest.IteratorDomain
	IsReduction() bool
	Expr() *expr.Expr
}

// OpCounts is the operation histogram of a computation's expression.
// Index arithmetic inside accesses is not counted.
type OpCounts struct {
	Additions       int
	Subtractions    int
	Multiplications int
	Divisions       int // / and %
}

// CountOps builds the histogram of e
func CountOps(e *expr.Expr) OpCounts {
	var c OpCounts
	expr.Walk(e, func(n *expr.Expr) bool {
		switch n.Kind {
		case expr.Add:
			c.Additions++
		case expr.Sub:
			c.Subtractions++
		case expr.Mul:
			c.Multiplications++
		case expr.Div, expr.Mod:
			c.Divisions++
		case expr.Access:
			return false
		}
		return true
	})
	return c
}

func matrixLen(depth int) int {
	return depth * (depth + 1)
}

// writeMatrixLen is the tagged write matrix: one extra row and column of
// ones marking the used rows and columns
func writeMatrixLen(depth int) int {
	return (depth + 1) * (depth + 2)
}

// Len is the length of every vector produced with cfg
func Len(cfg Config) int {
	cfg = cfg.withDefaults()
	d := cfg.MaxDepth
	return 1 + // reduction flag
		iteratorFields*d +
		1 + // unrolling factor
		1 + writeMatrixLen(d) + // write buffer id + tagged matrix
		cfg.MaxAccesses*(1+matrixLen(d)+1) + // buffer id + matrix + reduction flag
		trailerFields
}

func flag(b bool) float64 {
	return lo.Ternary(b, 1.0, 0.0)
}

// Represent builds the feature vector of comp under sched. acc must come
// from accesses.NewAccesses(comp). A nil sched is the identity schedule.
//
// Layout, every block zero-padded to its maximum size:
//
//	[is_reduction]
//	MaxDepth x [upper, lower, interchanged, tiled, tiling_factor]
//	[unrolling_factor]
//	[write_buffer_id+1] (MaxDepth+1) x (MaxDepth+2) tagged write matrix
//	MaxAccesses x ([buffer_id] MaxDepth x (MaxDepth+1) matrix [is_reduction])
//	[additions, subtractions, multiplications, divisions]
//	[depth]
//
// Padded matrices keep the constant in their last column. The write matrix
// gets a leading column of ones on its used rows and a leading row of ones
// on its used columns, constant column included.
func Represent(cfg Config, comp Computation, acc *accesses.Accesses, sched *schedule.Schedule) ([]float64, error) {
	cfg = cfg.withDefaults()
	iters := comp.Iterators()
	if len(iters) > cfg.MaxDepth {
		return nil, errors.Wrapf(ErrTooDeep, "%d loops, maximum %d", len(iters), cfg.MaxDepth)
	}
	if acc.NbIterators != len(iters) {
		return nil, errors.Errorf("accesses built for %d iterators, computation has %d", acc.NbIterators, len(iters))
	}
	if sched == nil {
		sched = schedule.New(len(iters))
	}
	if sched.NbIterators != len(iters) {
		return nil, errors.Errorf("schedule built for %d iterators, computation has %d", sched.NbIterators, len(iters))
	}

	write, hasWrite := acc.Write()
	reads := acc.Reads()
	if len(reads) > cfg.MaxAccesses {
		return nil, errors.Wrapf(ErrTooManyAccesses, "%d reads, maximum %d", len(reads), cfg.MaxAccesses)
	}
	if len(reads) == 0 {
		return nil, ErrNoAccesses
	}

	out := make([]float64, 0, Len(cfg))
	out = append(out, flag(comp.IsReduction()))

	for d := 0; d < cfg.MaxDepth; d++ {
		if d >= len(iters) {
			out = append(out, make([]float64, iteratorFields)...)
			continue
		}
		out = append(out,
			float64(iters[d].UpBound),
			float64(iters[d].LowBound),
			flag(sched.IsInterchanged(d)),
			flag(sched.IsTiled(d)),
			float64(sched.TilingFactor(d)),
		)
	}
	out = append(out, float64(sched.UnrollingFact))

	if hasWrite {
		tagged, err := padWrite(write, cfg.MaxDepth)
		if err != nil {
			return nil, err
		}
		out = append(out, float64(write.BufferID+1))
		out = append(out, tagged.RawMatrix().Data...)
	} else {
		out = append(out, make([]float64, 1+writeMatrixLen(cfg.MaxDepth))...)
	}

	for i := range reads {
		padded, err := pad(&reads[i], cfg.MaxDepth)
		if err != nil {
			return nil, err
		}
		out = append(out, float64(reads[i].BufferID))
		out = append(out, padded.RawMatrix().Data...)
		out = append(out, flag(reads[i].IsReduction(write)))
	}
	missing := cfg.MaxAccesses - len(reads)
	out = append(out, make([]float64, missing*(1+matrixLen(cfg.MaxDepth)+1))...)

	ops := CountOps(comp.Expr())
	out = append(out,
		float64(ops.Additions),
		float64(ops.Subtractions),
		float64(ops.Multiplications),
		float64(ops.Divisions),
		float64(len(iters)),
	)

	logrus.WithFields(logrus.Fields{
		"comp":     acc.Comp,
		"reads":    len(reads),
		"schedule": sched.String(),
	}).Debug("built representation")
	return out, nil
}

// pad embeds the access in a depth x (depth+1) matrix: the iterator block
// top-left and the constants in the last column
func pad(am *accesses.AccessMatrix, depth int) (*mat.Dense, error) {
	if am.NbDims > depth || am.NbIterators > depth {
		return nil, errors.Wrapf(ErrTooDeep, "access to %s is %dx%d, maximum %d",
			am.BufferName, am.NbDims, am.NbIterators, depth)
	}
	padded := mat.NewDense(depth, depth+1, nil)
	if lin := am.Linear(); lin != nil {
		padded.Slice(0, am.NbDims, 0, am.NbIterators).(*mat.Dense).Copy(lin)
	}
	for r, c := range am.Offsets() {
		padded.Set(r, depth, float64(c))
	}
	return padded, nil
}

// padWrite is pad with the tag row and column added
func padWrite(am *accesses.AccessMatrix, depth int) (*mat.Dense, error) {
	inner, err := pad(am, depth)
	if err != nil {
		return nil, err
	}
	tagged := mat.NewDense(depth+1, depth+2, nil)
	tagged.Slice(1, depth+1, 1, depth+2).(*mat.Dense).Copy(inner)
	for c := 0; c <= am.NbIterators; c++ {
		tagged.Set(0, c, 1)
	}
	tagged.Set(0, depth+1, 1)
	for r := 1; r <= am.NbDims; r++ {
		tagged.Set(r, 0, 1)
	}
	return tagged, nil
}
