package expr

import "math"

// CheckedAdd returns a+b and false on int64 overflow
func CheckedAdd(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

// CheckedSub returns a-b and false on int64 overflow
func CheckedSub(a, b int64) (int64, bool) {
	diff := a - b
	if (b > 0 && diff > a) || (b < 0 && diff < a) {
		return 0, false
	}
	return diff, true
}

// CheckedMul returns a*b and false on int64 overflow
func CheckedMul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == math.MinInt64 && b == -1) || (b == math.MinInt64 && a == -1) {
		return 0, false
	}
	prod := a * b
	if prod/b != a {
		return 0, false
	}
	return prod, true
}

// CheckedNeg returns -v and false when v is MinInt64
func CheckedNeg(v int64) (int64, bool) {
	if v == math.MinInt64 {
		return 0, false
	}
	return -v, true
}

// ConstValue folds e to an integer when it is built only from integer
// literals combined with +, -, * and unary minus. Division and modulo are
// never folded. The second result is false when e is not such a constant or
// the fold overflows.
func (e *Expr) ConstValue() (int64, bool) {
	if e == nil {
		return 0, false
	}
	switch e.Kind {
	case Constant:
		return e.Value, true
	case Neg:
		if len(e.Operands) != 1 {
			return 0, false
		}
		v, ok := e.Operands[0].ConstValue()
		if !ok {
			return 0, false
		}
		return CheckedNeg(v)
	case Add, Sub, Mul:
		if len(e.Operands) != 2 {
			return 0, false
		}
		a, ok := e.Operands[0].ConstValue()
		if !ok {
			return 0, false
		}
		b, ok := e.Operands[1].ConstValue()
		if !ok {
			return 0, false
		}
		switch e.Kind {
		case Add:
			return CheckedAdd(a, b)
		case Sub:
			return CheckedSub(a, b)
		default:
			return CheckedMul(a, b)
		}
	}
	return 0, false
}
