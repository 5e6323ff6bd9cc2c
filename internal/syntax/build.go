package syntax

import (
	"strconv"
	"strings"
)

func newNode(kind Kind, typ string) *Node {
	return &Node{Kind: kind, Type: typ}
}

func (n *Node) attach(field string, c *Node) *Node {
	if c == nil {
		return n
	}

	c.Parent = n
	c.Field = field
	n.Children = append(n.Children, c)

	return n
}

// Ident builds an identifier reference.
func Ident(name string) *Node {
	n := newNode(KindIdentifier, "identifier")
	n.Text = name

	return n
}

// Prop builds a property name for member expressions and object keys.
func Prop(name string) *Node {
	n := newNode(KindPropertyIdentifier, "property_identifier")
	n.Text = name

	return n
}

// Str builds a single-quoted string literal.
func Str(value string) *Node {
	n := newNode(KindString, "string")
	n.Text = "'" + strings.ReplaceAll(value, "'", `\'`) + "'"

	return n
}

// Num builds a numeric literal.
func Num(value int) *Node {
	n := newNode(KindNumber, "number")
	n.Text = strconv.Itoa(value)

	return n
}

// Bool builds true or false.
func Bool(value bool) *Node {
	if value {
		n := newNode(KindTrue, "true")
		n.Text = "true"

		return n
	}

	n := newNode(KindFalse, "false")
	n.Text = "false"

	return n
}

// Undefined builds the undefined literal.
func Undefined() *Node {
	n := newNode(KindUndefined, "undefined")
	n.Text = "undefined"

	return n
}

// Raw wraps verbatim source text, used for whole statements such as imports.
func Raw(text string) *Node {
	n := newNode(KindRaw, "raw")
	n.Text = text

	return n
}

// Member builds obj.prop.
func Member(obj *Node, prop string) *Node {
	return newNode(KindMember, "member_expression").
		attach(FieldObject, obj).
		attach(FieldProperty, Prop(prop))
}

// Dotted builds a member chain from a dotted path such as "jest.fn".
func Dotted(path string) *Node {
	parts := strings.Split(path, ".")

	n := Ident(parts[0])
	for _, p := range parts[1:] {
		n = Member(n, p)
	}

	return n
}

// Index builds obj[index].
func Index(obj, index *Node) *Node {
	return newNode(KindSubscript, "subscript_expression").
		attach(FieldObject, obj).
		attach(FieldIndex, index)
}

// Call builds callee(args...).
func Call(callee *Node, args ...*Node) *Node {
	return newNode(KindCall, "call_expression").
		attach(FieldFunction, callee).
		attach(FieldArguments, Arguments(args...))
}

// MethodCall builds obj.method(args...).
func MethodCall(obj *Node, method string, args ...*Node) *Node {
	return Call(Member(obj, method), args...)
}

// Arguments builds an argument list.
func Arguments(args ...*Node) *Node {
	n := newNode(KindArguments, "arguments")
	for _, a := range args {
		n.attach("", a)
	}

	return n
}

// Arrow builds (params...) => body.
func Arrow(params []*Node, body *Node) *Node {
	p := newNode(KindParams, "formal_parameters")
	for _, param := range params {
		p.attach("", param)
	}

	return newNode(KindArrow, "arrow_function").
		attach(FieldParameters, p).
		attach(FieldBody, body)
}

// Rest builds ...name.
func Rest(name string) *Node {
	return newNode(KindRest, "rest_pattern").attach("", Ident(name))
}

// Block builds { stmts... }.
func Block(stmts ...*Node) *Node {
	n := newNode(KindBlock, "statement_block")
	for _, s := range stmts {
		n.attach("", s)
	}

	return n
}

// If builds if (cond) then.
func If(cond, then *Node) *Node {
	return newNode(KindIf, "if_statement").
		attach(FieldCondition, cond).
		attach(FieldConsequence, then)
}

// Return builds return x;.
func Return(x *Node) *Node {
	return newNode(KindReturn, "return_statement").attach("", x)
}

// Throw builds throw x;.
func Throw(x *Node) *Node {
	return newNode(KindThrow, "throw_statement").attach("", x)
}

// Stmt wraps an expression in an expression statement.
func Stmt(x *Node) *Node {
	return newNode(KindExpressionStatement, "expression_statement").attach("", x)
}

// Binary builds left op right.
func Binary(left *Node, op string, right *Node) *Node {
	n := newNode(KindBinary, "binary_expression").
		attach(FieldLeft, left).
		attach(FieldRight, right)
	n.Op = op

	return n
}

// Unary builds op arg, e.g. typeof x.
func Unary(op string, arg *Node) *Node {
	n := newNode(KindUnary, "unary_expression").attach(FieldArgument, arg)
	n.Op = op

	return n
}

// New builds new ctor(args...).
func New(ctor *Node, args ...*Node) *Node {
	return newNode(KindNew, "new_expression").
		attach(FieldConstructor, ctor).
		attach(FieldArguments, Arguments(args...))
}

// Object builds an object literal from pairs.
func Object(pairs ...*Node) *Node {
	n := newNode(KindObject, "object")
	for _, p := range pairs {
		n.attach("", p)
	}

	return n
}

// Pair builds key: value.
func Pair(key string, value *Node) *Node {
	return newNode(KindPair, "pair").
		attach(FieldKey, Prop(key)).
		attach(FieldValue, value)
}
