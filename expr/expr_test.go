package expr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		e    *Expr
		want string
	}{
		{"iterator", Iter(2), "i2"},
		{"affine index", Buf("A", Minus(Times(Int(2), Iter(0)), Minus(Iter(1), Int(3)))),
			"A[(2*i0 - (i1 - 3))]"},
		{"two dims", Buf("B", Iter(0), Plus(Iter(1), Int(1))), "B[i0][(i1 + 1)]"},
		{"product under sum", Plus(Times(Iter(0), Int(4)), Times(Int(2), Iter(1))), "(i0*4 + 2*i1)"},
		{"product alone", Buf("A", Times(Int(3), Iter(0))), "A[(3*i0)]"},
		{"sum under product", Times(Plus(Iter(0), Int(1)), Int(2)), "((i0 + 1)*2)"},
		{"quotient under sum", Plus(Quo(Iter(0), Int(2)), Int(1)), "((i0/2) + 1)"},
		{"negate", Negate(Iter(0)), "-i0"},
		{"call", Fn("max", Buf("A", Iter(0)), Lit(0.5)), "max(A[i0], 0.5)"},
		{"select", Cond(Iter(0), Int(1), Int(2)), "select(i0, 1, 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.e.String())
		})
	}
}

func TestConstValue(t *testing.T) {
	tests := []struct {
		name string
		e    *Expr
		want int64
		ok   bool
	}{
		{"literal", Int(7), 7, true},
		{"folded sum", Plus(Int(2), Int(3)), 5, true},
		{"folded difference", Minus(Int(2), Minus(Int(3), Int(10))), 9, true},
		{"folded product", Times(Negate(Int(4)), Int(3)), -12, true},
		{"iterator", Iter(0), 0, false},
		{"mixed", Plus(Int(1), Iter(0)), 0, false},
		{"division not folded", Quo(Int(8), Int(2)), 0, false},
		{"overflow", Times(Int(math.MaxInt64), Int(2)), 0, false},
		{"negate min", Negate(Int(math.MinInt64)), 0, false},
		{"subtract min", Minus(Int(-1), Int(math.MinInt64)), math.MaxInt64, true},
		{"subtract min overflow", Minus(Int(0), Int(math.MinInt64)), 0, false},
		{"subtract overflow", Minus(Int(math.MinInt64), Int(1)), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.e.ConstValue()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestWalkOrder(t *testing.T) {
	// A[i] + B[j] - A[i+1]
	e := Minus(Plus(Buf("A", Iter(0)), Buf("B", Iter(1))), Buf("A", Plus(Iter(0), Int(1))))
	var names []string
	Walk(e, func(n *Expr) bool {
		if n.IsAccess() {
			names = append(names, n.Name)
		}
		return true
	})
	assert.Equal(t, []string{"A", "B", "A"}, names)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Plus(Buf("A", Iter(0)), Lit(1)).Validate())

	bad := &Expr{Kind: Add, Operands: []*Expr{Iter(0)}}
	assert.Error(t, bad.Validate())

	assert.Error(t, Buf("", Iter(0)).Validate())
	assert.Error(t, Plus(Iter(0), nil).Validate())
}

func TestCheckedArithmetic(t *testing.T) {
	_, ok := CheckedAdd(math.MaxInt64, 1)
	assert.False(t, ok)
	_, ok = CheckedAdd(math.MinInt64, -1)
	assert.False(t, ok)
	v, ok := CheckedMul(-3, 4)
	assert.True(t, ok)
	assert.Equal(t, int64(-12), v)
	_, ok = CheckedMul(math.MinInt64, -1)
	assert.False(t, ok)
	v, ok = CheckedSub(-1, math.MinInt64)
	assert.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), v)
	_, ok = CheckedSub(math.MinInt64, 1)
	assert.False(t, ok)
	_, ok = CheckedSub(0, math.MinInt64)
	assert.False(t, ok)
}
