package ast

import (
	"strconv"
	"strings"
)

// Sprint renders an expression as an s-expression, e.g. (+ 1 (* 2 3)).
// It is meant for tests and debugging output, not for code generation.
func Sprint(e Expr) string {
	var sb strings.Builder
	writeExpr(&sb, e)
	return sb.String()
}

func writeExpr(sb *strings.Builder, e Expr) {
	switch n := e.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *Num:
		sb.WriteString(n.Token.Raw)
	case *Str:
		sb.WriteString(strconv.Quote(n.Value))
	case *Template:
		sb.WriteString("`" + n.Value + "`")
	case *Color:
		sb.WriteString(n.Value)
	case *Bool:
		if n.Value {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case *None:
		sb.WriteString("None")
	case *Var:
		sb.WriteString(n.Name)
	case *Tuple:
		writeList(sb, "(tuple", n.Values, ")")
	case *List:
		writeList(sb, "[", n.Values, "]")
	case *Params:
		writeList(sb, "(params", n.Values, ")")
	case *Dict:
		sb.WriteString("{")
		for i, p := range n.Pairs {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeExpr(sb, p.Key)
			sb.WriteString(": ")
			writeExpr(sb, p.Value)
		}
		sb.WriteString("}")
	case *Func:
		sb.WriteString("(func " + n.Name)
		for _, p := range n.Params {
			sb.WriteString(" " + p)
		}
		sb.WriteString(")")
	case *BinaryOp:
		sb.WriteString("(" + n.Op.Kind.String() + " ")
		writeExpr(sb, n.Left)
		sb.WriteString(" ")
		writeExpr(sb, n.Right)
		sb.WriteString(")")
	case *UnaryOp:
		sb.WriteString("(" + n.Op.Kind.String() + " ")
		writeExpr(sb, n.Expr)
		sb.WriteString(")")
	case *Ternary:
		sb.WriteString("(? ")
		writeExpr(sb, n.Cond)
		sb.WriteString(" ")
		writeExpr(sb, n.Then)
		sb.WriteString(" ")
		writeExpr(sb, n.Else)
		sb.WriteString(")")
	case *Attr:
		sb.WriteString("(. ")
		writeExpr(sb, n.Object)
		sb.WriteString(" " + n.Name + ")")
	case *Index:
		sb.WriteString("([] ")
		writeExpr(sb, n.Object)
		sb.WriteString(" ")
		writeExpr(sb, n.Index)
		sb.WriteString(")")
	case *Call:
		sb.WriteString("(call ")
		writeExpr(sb, n.Func)
		if n.Args != nil {
			for _, a := range n.Args.Values {
				sb.WriteString(" ")
				writeExpr(sb, a)
			}
		}
		sb.WriteString(")")
	case *NoOp:
		sb.WriteString("noop")
	}
}

func writeList(sb *strings.Builder, open string, values []Expr, close string) {
	sb.WriteString(open)
	for i, v := range values {
		if i > 0 || open != "[" {
			sb.WriteString(" ")
		}
		writeExpr(sb, v)
	}
	sb.WriteString(close)
}
