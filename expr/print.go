package expr

import (
	"fmt"
	"strconv"
	"strings"
)

var opSymbols = map[Kind]string{
	Add: " + ",
	Sub: " - ",
	Mul: "*",
	Div: "/",
	Mod: "%",
}

// String renders e as C-like source text. Iterators print as i0, i1, ...
func (e *Expr) String() string {
	var sb strings.Builder
	e.write(&sb)
	return sb.String()
}

func (e *Expr) write(sb *strings.Builder) {
	if e == nil {
		sb.WriteString("<nil>")
		return
	}
	switch e.Kind {
	case Iterator:
		fmt.Fprintf(sb, "i%d", e.Value)
	case Constant:
		sb.WriteString(strconv.FormatInt(e.Value, 10))
	case Float:
		sb.WriteString(strconv.FormatFloat(e.FValue, 'g', -1, 64))
	case Add, Sub:
		sb.WriteByte('(')
		e.writeOperands(sb, true)
		sb.WriteByte(')')
	case Mul, Div, Mod:
		sb.WriteByte('(')
		e.writeOperands(sb, false)
		sb.WriteByte(')')
	case Neg:
		sb.WriteByte('-')
		for _, op := range e.Operands {
			op.write(sb)
		}
	case Access:
		sb.WriteString(e.Name)
		for _, idx := range e.Operands {
			sb.WriteByte('[')
			idx.write(sb)
			sb.WriteByte(']')
		}
	case Select:
		sb.WriteString("select(")
		writeList(sb, e.Operands)
		sb.WriteByte(')')
	case Call:
		sb.WriteString(e.Name)
		sb.WriteByte('(')
		writeList(sb, e.Operands)
		sb.WriteByte(')')
	default:
		fmt.Fprintf(sb, "<%s>", e.Kind)
	}
}

// writeOperands joins the operands with the node's symbol. Under + and -
// products are printed bare since they bind tighter.
func (e *Expr) writeOperands(sb *strings.Builder, bareProducts bool) {
	for i, op := range e.Operands {
		if i > 0 {
			sb.WriteString(opSymbols[e.Kind])
		}
		if bareProducts && op != nil && op.Kind == Mul {
			op.writeOperands(sb, false)
			continue
		}
		op.write(sb)
	}
}

func writeList(sb *strings.Builder, ops []*Expr) {
	for i, op := range ops {
		if i > 0 {
			sb.WriteString(", ")
		}
		op.write(sb)
	}
}
