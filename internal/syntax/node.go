// Package syntax holds the mutable JavaScript/TypeScript tree the rewrite
// passes operate on.
//
// Nodes converted from a parse keep the source text found between their
// children, so an untouched subtree prints back byte for byte. Nodes built
// by the constructors in build.go carry no source text and print in a
// compact canonical form.
package syntax

// Kind is the closed set of node shapes the passes match on. Grammar node
// types without a dedicated kind map to KindOther and keep their Type.
type Kind int

// Node kinds.
const (
	KindOther Kind = iota
	KindProgram
	KindImport
	KindExpressionStatement
	KindVarDecl
	KindDeclarator
	KindAssignment
	KindCall
	KindArguments
	KindMember
	KindSubscript
	KindNew
	KindIdentifier
	KindPropertyIdentifier
	KindString
	KindNumber
	KindTrue
	KindFalse
	KindNull
	KindUndefined
	KindThis
	KindArrow
	KindFunction
	KindFunctionDecl
	KindMethod
	KindParams
	KindBlock
	KindIf
	KindReturn
	KindThrow
	KindBinary
	KindUnary
	KindSpread
	KindRest
	KindParenthesized
	KindObject
	KindPair
	KindArray
	KindFor
	KindCatch
	KindRaw
)

var kindNames = map[Kind]string{
	KindOther:               "other",
	KindProgram:             "program",
	KindImport:              "import",
	KindExpressionStatement: "expression_statement",
	KindVarDecl:             "var_decl",
	KindDeclarator:          "declarator",
	KindAssignment:          "assignment",
	KindCall:                "call",
	KindArguments:           "arguments",
	KindMember:              "member",
	KindSubscript:           "subscript",
	KindNew:                 "new",
	KindIdentifier:          "identifier",
	KindPropertyIdentifier:  "property_identifier",
	KindString:              "string",
	KindNumber:              "number",
	KindTrue:                "true",
	KindFalse:               "false",
	KindNull:                "null",
	KindUndefined:           "undefined",
	KindThis:                "this",
	KindArrow:               "arrow",
	KindFunction:            "function",
	KindFunctionDecl:        "function_decl",
	KindMethod:              "method",
	KindParams:              "params",
	KindBlock:               "block",
	KindIf:                  "if",
	KindReturn:              "return",
	KindThrow:               "throw",
	KindBinary:              "binary",
	KindUnary:               "unary",
	KindSpread:              "spread",
	KindRest:                "rest",
	KindParenthesized:       "parenthesized",
	KindObject:              "object",
	KindPair:                "pair",
	KindArray:               "array",
	KindFor:                 "for",
	KindCatch:               "catch",
	KindRaw:                 "raw",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "unknown"
}

// Field names of child slots, as the tree-sitter grammars name them.
const (
	FieldFunction    = "function"
	FieldArguments   = "arguments"
	FieldObject      = "object"
	FieldProperty    = "property"
	FieldIndex       = "index"
	FieldConstructor = "constructor"
	FieldLeft        = "left"
	FieldRight       = "right"
	FieldName        = "name"
	FieldValue       = "value"
	FieldKey         = "key"
	FieldParameters  = "parameters"
	FieldParameter   = "parameter"
	FieldBody        = "body"
	FieldCondition   = "condition"
	FieldConsequence = "consequence"
	FieldArgument    = "argument"
	FieldSource      = "source"
)

// Node is one element of the tree. Identity is pointer identity and is
// stable for the lifetime of a file's transformation.
type Node struct {
	Kind Kind
	// Type is the grammar node type ("call_expression", "lexical_declaration").
	Type string
	// Field is the slot name this node occupies in its parent, if any.
	Field string
	// Op is the operator of binary/unary/assignment nodes and the keyword
	// (const, let, var) of declarations.
	Op string
	// Text is the literal text of a leaf.
	Text     string
	Children []*Node
	Parent   *Node

	// gaps[i] is the source text preceding Children[i]; the last entry
	// trails the final child. nil means the node prints canonically.
	gaps []string
}

// Get returns the child occupying the named slot.
func (n *Node) Get(field string) *Node {
	if n == nil {
		return nil
	}

	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}

	return nil
}

// Is reports whether n is non-nil and of one of the given kinds.
func (n *Node) Is(kinds ...Kind) bool {
	if n == nil {
		return false
	}

	for _, k := range kinds {
		if n.Kind == k {
			return true
		}
	}

	return false
}

// Name returns the identifier text of an identifier-like node, or "".
func (n *Node) Name() string {
	if n.Is(KindIdentifier, KindPropertyIdentifier, KindThis) {
		return n.Text
	}

	return ""
}

// IsIdent reports whether n is an identifier with the given name.
func (n *Node) IsIdent(name string) bool {
	return n.Is(KindIdentifier) && n.Text == name
}

// Callee returns the function slot of a call or the constructor of a new
// expression.
func (n *Node) Callee() *Node {
	switch {
	case n.Is(KindCall):
		return n.Get(FieldFunction)
	case n.Is(KindNew):
		return n.Get(FieldConstructor)
	}

	return nil
}

// Args returns the argument expressions of a call or new expression.
func (n *Node) Args() []*Node {
	if !n.Is(KindCall, KindNew) {
		return nil
	}

	args := n.Get(FieldArguments)
	if args == nil || !args.Is(KindArguments) {
		return nil
	}

	return args.Children
}

// Object returns the object slot of a member or subscript expression.
func (n *Node) Object() *Node {
	if !n.Is(KindMember, KindSubscript) {
		return nil
	}

	return n.Get(FieldObject)
}

// Property returns the property name of a member expression.
func (n *Node) Property() string {
	if !n.Is(KindMember) {
		return ""
	}

	return n.Get(FieldProperty).Name()
}

// MethodName returns the property name of a call whose callee is a member
// expression, e.g. "returns" for stub.returns(1).
func (n *Node) MethodName() string {
	return n.Callee().Property()
}

// Receiver returns the object a method call is made on.
func (n *Node) Receiver() *Node {
	return n.Callee().Object()
}

// BoolValue reports the value of a boolean literal.
func (n *Node) BoolValue() (value bool, ok bool) {
	switch {
	case n.Is(KindTrue):
		return true, true
	case n.Is(KindFalse):
		return false, true
	}

	return false, false
}

// StringValue returns the unquoted content of a plain string literal.
func (n *Node) StringValue() (string, bool) {
	if !n.Is(KindString) || len(n.Text) < 2 {
		return "", false
	}

	return n.Text[1 : len(n.Text)-1], true
}

// IsLiteral reports whether n is a primitive literal.
func (n *Node) IsLiteral() bool {
	return n.Is(KindString, KindNumber, KindTrue, KindFalse, KindNull, KindUndefined)
}

// Index returns the position of n among its parent's children, or -1.
func (n *Node) Index() int {
	if n == nil || n.Parent == nil {
		return -1
	}

	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}

	return -1
}

// Closest returns the nearest strict ancestor of one of the given kinds.
func (n *Node) Closest(kinds ...Kind) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Is(kinds...) {
			return p
		}
	}

	return nil
}

// Attached reports whether n is still reachable from root through parent
// links that root's subtree agrees with.
func (n *Node) Attached(root *Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == root {
			return true
		}

		if cur.Index() < 0 {
			return false
		}
	}

	return false
}
