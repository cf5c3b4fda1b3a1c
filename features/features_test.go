package features

import (
	"testing"

	"github.com/notargets/DGSched/accesses"
	"github.com/notargets/DGSched/expr"
	"github.com/notargets/DGSched/loopnest"
	"github.com/notargets/DGSched/schedule"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildComp(t *testing.T, iters []loopnest.IteratorDomain, store, e *expr.Expr) (*loopnest.Computation, *accesses.Accesses) {
	t.Helper()
	fn := loopnest.NewFunction("f")
	require.NoError(t, fn.AddBuffers(
		loopnest.Input("A").Dims(64, 64),
		loopnest.Input("B").Dims(64, 64),
		loopnest.InOut("C").Dims(64, 64),
	))
	id, err := fn.AddComputation(loopnest.ComputationSpec{
		Name: "c", Iterators: iters, Store: store, Expr: e,
	})
	require.NoError(t, err)
	comp, err := fn.Computation(id)
	require.NoError(t, err)
	acc, err := accesses.NewAccesses(comp)
	require.NoError(t, err)
	return comp, acc
}

func matmul(t *testing.T) (*loopnest.Computation, *accesses.Accesses) {
	i, j, k := expr.Iter(0), expr.Iter(1), expr.Iter(2)
	return buildComp(t,
		[]loopnest.IteratorDomain{{LowBound: 0, UpBound: 64}, {LowBound: 0, UpBound: 64}, {LowBound: 0, UpBound: 64}},
		expr.Buf("C", i, j),
		expr.Plus(expr.Buf("C", i, j), expr.Times(expr.Buf("A", i, k), expr.Buf("B", k, j))))
}

func TestLen(t *testing.T) {
	// 1 + 5*7 + 1 + (1 + 8*9) + 15*(1 + 56 + 1) + 5
	assert.Equal(t, 985, Len(Config{}))
	assert.Equal(t, 1+5*2+1+(1+3*4)+1*(1+6+1)+5, Len(Config{MaxDepth: 2, MaxAccesses: 1}))
}

func TestCountOps(t *testing.T) {
	i, j := expr.Iter(0), expr.Iter(1)
	e := expr.Minus(
		expr.Plus(expr.Buf("A", expr.Plus(i, expr.Int(1)), expr.Times(expr.Int(2), j)), expr.Lit(1)),
		expr.Quo(expr.Times(expr.Buf("B", i), expr.Buf("B", j)), expr.Rem(expr.Buf("C", i), expr.Lit(3))))
	assert.Equal(t, OpCounts{Additions: 1, Subtractions: 1, Multiplications: 1, Divisions: 2}, CountOps(e))
	assert.Equal(t, OpCounts{}, CountOps(expr.Buf("A", expr.Plus(i, j))))
	assert.Equal(t, OpCounts{}, CountOps(nil))
}

func TestRepresent(t *testing.T) {
	comp, acc := matmul(t)
	sched := schedule.New(3)
	require.NoError(t, sched.Interchange(0, 1))
	require.NoError(t, sched.Tile(2, 16))
	require.NoError(t, sched.Unroll(4))

	cfg := Config{}
	v, err := Represent(cfg, comp, acc, sched)
	require.NoError(t, err)
	require.Len(t, v, Len(cfg))

	const d = DefaultMaxDepth
	assert.Equal(t, 1.0, v[0], "reduction flag")

	// iterator blocks
	assert.Equal(t, []float64{64, 0, 1, 0, 0}, v[1:6])
	assert.Equal(t, []float64{64, 0, 1, 0, 0}, v[6:11])
	assert.Equal(t, []float64{64, 0, 0, 1, 16}, v[11:16])
	assert.Equal(t, make([]float64, iteratorFields*(d-3)), v[16:1+iteratorFields*d])

	pos := 1 + iteratorFields*d
	assert.Equal(t, 4.0, v[pos], "unrolling factor")
	pos++

	// write C[i][j], buffer id 2
	assert.Equal(t, 3.0, v[pos])
	pos++
	write := v[pos : pos+writeMatrixLen(d)]
	w := d + 2
	// tag row covers the tag column, the three iterators and the constant
	assert.Equal(t, []float64{1, 1, 1, 1, 0, 0, 0, 0, 1}, write[:w])
	assert.Equal(t, []float64{1, 1, 0, 0, 0, 0, 0, 0, 0}, write[w:2*w])
	assert.Equal(t, []float64{1, 0, 1, 0, 0, 0, 0, 0, 0}, write[2*w:3*w])
	assert.Equal(t, make([]float64, (d-2)*w), write[3*w:])
	pos += writeMatrixLen(d)

	readBlock := 1 + matrixLen(d) + 1
	// first read is C itself: a reduction
	assert.Equal(t, 2.0, v[pos])
	assert.Equal(t, 1.0, v[pos+readBlock-1])
	// second read A[i][k]
	a := v[pos+readBlock:]
	assert.Equal(t, 0.0, a[0])
	assert.Equal(t, 1.0, a[1+0])         // row 0, i
	assert.Equal(t, 1.0, a[1+(d+1)+2])   // row 1, k
	assert.Equal(t, 0.0, a[readBlock-1]) // not a reduction
	// padding after the three reads
	padding := v[pos+3*readBlock : len(v)-trailerFields]
	assert.Equal(t, make([]float64, len(padding)), padding)

	// one addition, one multiplication, depth 3
	assert.Equal(t, []float64{1, 0, 1, 0, 3}, v[len(v)-trailerFields:])
}

func TestRepresentConstantColumn(t *testing.T) {
	i := expr.Iter(0)
	comp, acc := buildComp(t,
		[]loopnest.IteratorDomain{{LowBound: 1, UpBound: 63}},
		expr.Buf("C", i, expr.Int(0)),
		expr.Plus(expr.Buf("A", expr.Minus(i, expr.Int(1)), expr.Int(5)), expr.Buf("B", i, expr.Int(0))))

	cfg := Config{MaxDepth: 2, MaxAccesses: 3}
	v, err := Represent(cfg, comp, acc, nil)
	require.NoError(t, err)
	require.Len(t, v, Len(cfg))
	assert.Equal(t, 0.0, v[0])

	writeStart := 1 + iteratorFields*2 + 1
	// C[i][0] tagged to 3x4: [1 1 0 1; 1 1 0 0; 1 0 0 0]
	assert.Equal(t, []float64{1, 1, 0, 1, 1, 1, 0, 0, 1, 0, 0, 0},
		v[writeStart+1:writeStart+1+writeMatrixLen(2)])

	readStart := writeStart + 1 + writeMatrixLen(2)
	m := v[readStart+1 : readStart+1+matrixLen(2)]
	// A[i-1][5] padded to 2x3: [1 0 -1; 0 0 5]
	assert.Equal(t, []float64{1, 0, -1, 0, 0, 5}, m)

	// index arithmetic is not counted; one addition at depth 1
	assert.Equal(t, []float64{1, 0, 0, 0, 1}, v[len(v)-trailerFields:])
}

func TestRepresentErrors(t *testing.T) {
	i := expr.Iter(0)
	oneLoop := []loopnest.IteratorDomain{{LowBound: 0, UpBound: 8}}

	t.Run("NoReads", func(t *testing.T) {
		comp, acc := buildComp(t, oneLoop, expr.Buf("C", i, i), expr.Lit(0))
		_, err := Represent(Config{}, comp, acc, nil)
		assert.True(t, errors.Is(err, ErrNoAccesses))
	})
	t.Run("TooManyReads", func(t *testing.T) {
		comp, acc := buildComp(t, oneLoop, nil,
			expr.Plus(expr.Buf("A", i, i), expr.Plus(expr.Buf("B", i, i), expr.Buf("A", i, expr.Int(0)))))
		_, err := Represent(Config{MaxAccesses: 2}, comp, acc, nil)
		assert.True(t, errors.Is(err, ErrTooManyAccesses))
	})
	t.Run("TooDeep", func(t *testing.T) {
		three := []loopnest.IteratorDomain{{LowBound: 0, UpBound: 8}, {LowBound: 0, UpBound: 8}, {LowBound: 0, UpBound: 8}}
		comp, acc := buildComp(t, three, nil, expr.Buf("A", i, i))
		_, err := Represent(Config{MaxDepth: 2}, comp, acc, nil)
		assert.True(t, errors.Is(err, ErrTooDeep))
	})
	t.Run("RankTooHigh", func(t *testing.T) {
		comp, acc := buildComp(t, oneLoop, nil, expr.Buf("A", i, i))
		_, err := Represent(Config{MaxDepth: 1}, comp, acc, nil)
		assert.True(t, errors.Is(err, ErrTooDeep))
	})
	t.Run("ScheduleMismatch", func(t *testing.T) {
		comp, acc := buildComp(t, oneLoop, nil, expr.Buf("A", i, i))
		_, err := Represent(Config{}, comp, acc, schedule.New(2))
		assert.Error(t, err)
	})
}
