// Package expr holds the expression trees attached to computations: loop
// iterators, constants, arithmetic and buffer accesses.
package expr

import (
	"github.com/pkg/errors"
)

// Kind tags the node variant of an Expr
type Kind uint8

const (
	Iterator Kind = iota
	Constant
	Float
	Add
	Sub
	Mul
	Neg
	Div
	Mod
	Access
	Select
	Call
)

var kindNames = [...]string{
	Iterator: "iterator",
	Constant: "constant",
	Float:    "float",
	Add:      "add",
	Sub:      "sub",
	Mul:      "mul",
	Neg:      "neg",
	Div:      "div",
	Mod:      "mod",
	Access:   "access",
	Select:   "select",
	Call:     "call",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Expr is one node of an expression tree. Which fields are meaningful
// depends on Kind:
//
//	Iterator  Value is the iterator position in the loop nest
//	Constant  Value is the integer literal
//	Float     FValue is the literal
//	Access    Name is the buffer, Operands are the per-dimension indices
//	Call      Name is the callee, Operands are the arguments
//
// All other kinds only use Operands.
type Expr struct {
	Kind     Kind
	Value    int64
	FValue   float64
	Name     string
	Operands []*Expr
}

// Iter references the loop iterator at position k of the enclosing nest
func Iter(k int) *Expr {
	return &Expr{Kind: Iterator, Value: int64(k)}
}

// Int is an integer literal
func Int(v int64) *Expr {
	return &Expr{Kind: Constant, Value: v}
}

// Lit is a floating point literal, only valid outside index expressions
func Lit(v float64) *Expr {
	return &Expr{Kind: Float, FValue: v}
}

func binary(k Kind, a, b *Expr) *Expr {
	return &Expr{Kind: k, Operands: []*Expr{a, b}}
}

func Plus(a, b *Expr) *Expr  { return binary(Add, a, b) }
func Minus(a, b *Expr) *Expr { return binary(Sub, a, b) }
func Times(a, b *Expr) *Expr { return binary(Mul, a, b) }
func Quo(a, b *Expr) *Expr   { return binary(Div, a, b) }
func Rem(a, b *Expr) *Expr   { return binary(Mod, a, b) }

// Negate is unary minus
func Negate(a *Expr) *Expr {
	return &Expr{Kind: Neg, Operands: []*Expr{a}}
}

// Buf is a read (or the write target) of buffer name at the given indices,
// one per buffer dimension
func Buf(name string, indices ...*Expr) *Expr {
	return &Expr{Kind: Access, Name: name, Operands: indices}
}

// Cond is a ternary select: cond ? t : f
func Cond(cond, t, f *Expr) *Expr {
	return &Expr{Kind: Select, Operands: []*Expr{cond, t, f}}
}

// Fn is an opaque call such as max, exp or a reduction combiner
func Fn(name string, args ...*Expr) *Expr {
	return &Expr{Kind: Call, Name: name, Operands: args}
}

// Indices returns the index expressions of an access node
func (e *Expr) Indices() []*Expr {
	if e == nil || e.Kind != Access {
		return nil
	}
	return e.Operands
}

// IsAccess reports whether e denotes a buffer access
func (e *Expr) IsAccess() bool {
	return e != nil && e.Kind == Access
}

// Validate checks operand arity for every node of the tree
func (e *Expr) Validate() error {
	var err error
	Walk(e, func(n *Expr) bool {
		if err != nil {
			return false
		}
		want := -1
		switch n.Kind {
		case Iterator, Constant, Float:
			want = 0
		case Neg:
			want = 1
		case Add, Sub, Mul, Div, Mod:
			want = 2
		case Select:
			want = 3
		case Access:
			if n.Name == "" {
				err = errors.New("access with empty buffer name")
				return false
			}
		case Call:
		default:
			err = errors.Errorf("unknown expression kind %d", n.Kind)
			return false
		}
		if want >= 0 && len(n.Operands) != want {
			err = errors.Errorf("%s node has %d operands, expected %d", n.Kind, len(n.Operands), want)
			return false
		}
		for _, op := range n.Operands {
			if op == nil {
				err = errors.Errorf("%s node has a nil operand", n.Kind)
				return false
			}
		}
		return true
	})
	return err
}

// Walk visits e and its operands in pre-order, left to right. Returning
// false from fn skips the operands of that node.
func Walk(e *Expr, fn func(*Expr) bool) {
	if e == nil {
		return
	}
	if !fn(e) {
		return
	}
	for _, op := range e.Operands {
		Walk(op, fn)
	}
}
