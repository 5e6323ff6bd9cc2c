package syntax

import (
	"strings"
)

// Print renders n back to source text.
func Print(n *Node) string {
	if n == nil {
		return ""
	}

	var b strings.Builder

	write(&b, n)

	return b.String()
}

func write(b *strings.Builder, n *Node) {
	switch {
	case n.gaps != nil:
		for i, c := range n.Children {
			b.WriteString(n.gaps[i])
			write(b, c)
		}

		b.WriteString(n.gaps[len(n.Children)])
	case len(n.Children) == 0 && n.Text != "":
		b.WriteString(n.Text)
	default:
		writeCanonical(b, n)
	}
}

//nolint:cyclop,funlen // one case per node kind
func writeCanonical(b *strings.Builder, n *Node) {
	switch n.Kind {
	case KindProgram:
		writeJoined(b, n.Children, "\n")
	case KindExpressionStatement:
		writeJoined(b, n.Children, "")
		b.WriteString(";")
	case KindVarDecl:
		b.WriteString(n.Op)
		b.WriteString(" ")
		writeJoined(b, n.Children, ", ")
		b.WriteString(";")
	case KindDeclarator:
		write(b, n.Get(FieldName))

		if v := n.Get(FieldValue); v != nil {
			b.WriteString(" = ")
			write(b, v)
		}
	case KindAssignment:
		write(b, n.Get(FieldLeft))
		b.WriteString(" = ")
		write(b, n.Get(FieldRight))
	case KindCall:
		write(b, n.Get(FieldFunction))
		writeArgs(b, n.Get(FieldArguments))
	case KindNew:
		b.WriteString("new ")
		write(b, n.Get(FieldConstructor))
		writeArgs(b, n.Get(FieldArguments))
	case KindArguments, KindParams:
		b.WriteString("(")
		writeJoined(b, n.Children, ", ")
		b.WriteString(")")
	case KindMember:
		write(b, n.Get(FieldObject))
		b.WriteString(".")
		write(b, n.Get(FieldProperty))
	case KindSubscript:
		write(b, n.Get(FieldObject))
		b.WriteString("[")
		write(b, n.Get(FieldIndex))
		b.WriteString("]")
	case KindArrow:
		if p := n.Get(FieldParameter); p != nil {
			write(b, p)
		} else {
			write(b, n.Get(FieldParameters))
		}

		b.WriteString(" => ")
		write(b, n.Get(FieldBody))
	case KindBlock:
		if len(n.Children) == 0 {
			b.WriteString("{}")
			return
		}

		b.WriteString("{ ")
		writeJoined(b, n.Children, " ")
		b.WriteString(" }")
	case KindIf:
		b.WriteString("if (")
		write(b, n.Get(FieldCondition))
		b.WriteString(") ")
		write(b, n.Get(FieldConsequence))
	case KindReturn, KindThrow:
		if n.Kind == KindReturn {
			b.WriteString("return")
		} else {
			b.WriteString("throw")
		}

		if len(n.Children) > 0 {
			b.WriteString(" ")
			write(b, n.Children[0])
		}

		b.WriteString(";")
	case KindBinary:
		write(b, n.Get(FieldLeft))
		b.WriteString(" " + n.Op + " ")
		write(b, n.Get(FieldRight))
	case KindUnary:
		b.WriteString(n.Op)

		if isWordOperator(n.Op) {
			b.WriteString(" ")
		}

		write(b, n.Get(FieldArgument))
	case KindSpread, KindRest:
		b.WriteString("...")
		writeJoined(b, n.Children, "")
	case KindParenthesized:
		b.WriteString("(")
		writeJoined(b, n.Children, "")
		b.WriteString(")")
	case KindObject:
		if len(n.Children) == 0 {
			b.WriteString("{}")
			return
		}

		b.WriteString("{ ")
		writeJoined(b, n.Children, ", ")
		b.WriteString(" }")
	case KindPair:
		write(b, n.Get(FieldKey))
		b.WriteString(": ")
		write(b, n.Get(FieldValue))
	case KindArray:
		b.WriteString("[")
		writeJoined(b, n.Children, ", ")
		b.WriteString("]")
	default:
		b.WriteString(n.Text)
		writeJoined(b, n.Children, " ")
	}
}

func writeArgs(b *strings.Builder, args *Node) {
	if args == nil {
		b.WriteString("()")
		return
	}

	write(b, args)
}

func writeJoined(b *strings.Builder, nodes []*Node, sep string) {
	for i, c := range nodes {
		if i > 0 {
			b.WriteString(sep)
		}

		write(b, c)
	}
}

func isWordOperator(op string) bool {
	return op != "" && op[0] >= 'a' && op[0] <= 'z'
}
