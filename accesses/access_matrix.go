// File: accesses/access_matrix.go

package accesses

import (
	"github.com/notargets/DGSched/expr"
	"github.com/notargets/DGSched/loopnest"
	"github.com/pkg/errors"
)

// UnresolvedID marks an AccessMatrix whose buffer has not been looked up yet
const UnresolvedID = -1

// AccessMatrix is the affine form of one buffer access. Row r describes
// buffer dimension r; column c < NbIterators holds the coefficient of
// iterator c and the last column the constant offset.
type AccessMatrix struct {
	NbIterators int
	NbDims      int
	Matrix      [][]int

	BufferName string
	BufferID   int

	Comp    loopnest.CompID // computation the access was found in
	IsWrite bool
}

// NewAccessMatrix allocates a zero-filled NbDims x (NbIterators+1) matrix
func NewAccessMatrix(nbIterators, nbDims int) *AccessMatrix {
	if nbIterators < 0 || nbDims < 0 {
		panic("access matrix dimensions cannot be negative")
	}
	m := make([][]int, nbDims)
	for i := range m {
		m[i] = make([]int, nbIterators+1)
	}
	return &AccessMatrix{
		NbIterators: nbIterators,
		NbDims:      nbDims,
		Matrix:      m,
		BufferID:    UnresolvedID,
		Comp:        loopnest.NoComp,
	}
}

// NewAccessMatrixFromExpr extracts the coefficients of access e, found in
// computation comp, against a nest of nbIterators loops. Any index that is
// not affine in the iterators fails with a *NonAffineError and no matrix is
// returned.
func NewAccessMatrixFromExpr(nbIterators int, e *expr.Expr, comp loopnest.CompID) (*AccessMatrix, error) {
	if !e.IsAccess() {
		return nil, &NonAffineError{Dim: -1, Node: e, Reason: "not a buffer access"}
	}
	indices := e.Indices()
	am := NewAccessMatrix(nbIterators, len(indices))
	am.BufferName = e.Name
	am.Comp = comp

	row := make([]int64, nbIterators+1)
	for i, idx := range indices {
		clear(row)
		if err := fillRow(row, idx, 1); err != nil {
			err.Buffer = e.Name
			err.Dim = i
			return nil, err
		}
		for c, v := range row {
			if int64(int(v)) != v {
				return nil, &NonAffineError{Buffer: e.Name, Dim: i, Node: idx, Reason: "coefficient overflows int"}
			}
			am.Matrix[i][c] = int(v)
		}
	}
	return am, nil
}

// fillRow accumulates mult times the linear form of e into row. The
// multiplier carries both the sign of enclosing subtractions and negations
// and the product of enclosing constant factors.
func fillRow(row []int64, e *expr.Expr, mult int64) *NonAffineError {
	nbIterators := len(row) - 1
	fail := func(reason string) *NonAffineError {
		return &NonAffineError{Node: e, Reason: reason}
	}
	if e == nil {
		return fail("missing index")
	}
	switch e.Kind {
	case expr.Add, expr.Sub, expr.Mul:
		if len(e.Operands) != 2 || e.Operands[0] == nil || e.Operands[1] == nil {
			return fail("malformed " + e.Kind.String())
		}
	case expr.Neg:
		if len(e.Operands) != 1 || e.Operands[0] == nil {
			return fail("malformed neg")
		}
	}

	switch e.Kind {
	case expr.Iterator:
		k := e.Value
		if k < 0 || k >= int64(nbIterators) {
			return fail("iterator outside the loop nest")
		}
		v, ok := expr.CheckedAdd(row[k], mult)
		if !ok {
			return fail("coefficient overflow")
		}
		row[k] = v

	case expr.Constant:
		c, ok := expr.CheckedMul(e.Value, mult)
		if !ok {
			return fail("constant overflow")
		}
		v, ok := expr.CheckedAdd(row[nbIterators], c)
		if !ok {
			return fail("constant overflow")
		}
		row[nbIterators] = v

	case expr.Add:
		if err := fillRow(row, e.Operands[0], mult); err != nil {
			return err
		}
		return fillRow(row, e.Operands[1], mult)

	case expr.Sub:
		if err := fillRow(row, e.Operands[0], mult); err != nil {
			return err
		}
		neg, ok := expr.CheckedNeg(mult)
		if !ok {
			return fail("coefficient overflow")
		}
		return fillRow(row, e.Operands[1], neg)

	case expr.Neg:
		neg, ok := expr.CheckedNeg(mult)
		if !ok {
			return fail("coefficient overflow")
		}
		return fillRow(row, e.Operands[0], neg)

	case expr.Mul:
		lhs, rhs := e.Operands[0], e.Operands[1]
		factor, ok := lhs.ConstValue()
		other := rhs
		if !ok {
			factor, ok = rhs.ConstValue()
			other = lhs
		}
		if !ok {
			return fail("non-constant multiplier")
		}
		scaled, ok := expr.CheckedMul(mult, factor)
		if !ok {
			return fail("coefficient overflow")
		}
		return fillRow(row, other, scaled)

	case expr.Div:
		return fail("division")
	case expr.Mod:
		return fail("modulo")
	case expr.Access:
		return fail("data-dependent index")
	default:
		return fail("unsupported " + e.Kind.String() + " in index")
	}
	return nil
}

// SetBufferID resolves BufferName against the registry. On failure BufferID
// is left unchanged.
func (am *AccessMatrix) SetBufferID(reg loopnest.BufferRegistry) error {
	if reg == nil {
		return errors.Wrapf(ErrUnresolvedBuffer, "buffer %s: no registry", am.BufferName)
	}
	id, ok := reg.BufferID(am.BufferName)
	if !ok {
		return errors.Wrapf(ErrUnresolvedBuffer, "buffer %s", am.BufferName)
	}
	am.BufferID = id
	return nil
}

// IsResolved reports whether SetBufferID succeeded
func (am *AccessMatrix) IsResolved() bool {
	return am.BufferID != UnresolvedID
}

// At returns the coefficient at row, col
func (am *AccessMatrix) At(row, col int) int {
	return am.Matrix[row][col]
}

// Set stores a coefficient, for building matrices by hand
func (am *AccessMatrix) Set(row, col, v int) {
	am.Matrix[row][col] = v
}

// Constant returns the constant offset of dimension row
func (am *AccessMatrix) Constant(row int) int {
	return am.Matrix[row][am.NbIterators]
}

// Equal compares shapes and coefficients only
func (am *AccessMatrix) Equal(other *AccessMatrix) bool {
	if other == nil || am.NbIterators != other.NbIterators || am.NbDims != other.NbDims {
		return false
	}
	for r := range am.Matrix {
		for c := range am.Matrix[r] {
			if am.Matrix[r][c] != other.Matrix[r][c] {
				return false
			}
		}
	}
	return true
}

// Clone deep-copies the matrix
func (am *AccessMatrix) Clone() *AccessMatrix {
	cp := *am
	cp.Matrix = make([][]int, len(am.Matrix))
	for r := range am.Matrix {
		cp.Matrix[r] = append([]int(nil), am.Matrix[r]...)
	}
	return &cp
}
