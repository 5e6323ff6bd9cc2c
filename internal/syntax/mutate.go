package syntax

import "strings"

// Replace substitutes repl for old in old's parent slot. The replaced node
// is detached. Replacing the root or a detached node is a no-op.
func Replace(old, repl *Node) bool {
	i := old.Index()
	if i < 0 {
		return false
	}

	parent := old.Parent
	if repl.Parent != nil && repl.Parent != parent {
		Detach(repl)
	}

	repl.Parent = parent
	repl.Field = old.Field
	parent.Children[i] = repl
	old.Parent = nil

	return true
}

// Wrap replaces n with build(n), for rewrites that nest n inside its own
// replacement. It returns nil when n is detached.
func Wrap(n *Node, build func(*Node) *Node) *Node {
	parent, i, field := n.Parent, n.Index(), n.Field
	if i < 0 {
		return nil
	}

	repl := build(n)
	repl.Parent = parent
	repl.Field = field
	parent.Children[i] = repl

	return repl
}

// Detach removes n from its parent's child list, merging the surrounding
// source text so separators do not pile up.
func Detach(n *Node) bool {
	i := n.Index()
	if i < 0 {
		return false
	}

	parent := n.Parent
	last := i == len(parent.Children)-1

	if parent.gaps != nil {
		merged := mergeGaps(parent.gaps[i], parent.gaps[i+1], last)
		gaps := make([]string, 0, len(parent.gaps)-1)
		gaps = append(gaps, parent.gaps[:i]...)
		gaps = append(gaps, merged)
		gaps = append(gaps, parent.gaps[i+2:]...)
		parent.gaps = gaps
	}

	parent.Children = append(parent.Children[:i:i], parent.Children[i+1:]...)
	n.Parent = nil

	return true
}

// Remove deletes a statement. A declarator is removed from its declaration,
// and the declaration itself goes away once it has no declarators left.
func Remove(n *Node) bool {
	parent := n.Parent
	if !Detach(n) {
		return false
	}

	if n.Is(KindDeclarator) && parent.Is(KindVarDecl) && len(parent.Children) == 0 {
		return Remove(parent)
	}

	return true
}

func mergeGaps(before, after string, last bool) string {
	if last {
		left := strings.TrimRight(before, " \t\r\n")
		left = strings.TrimSuffix(left, ",")

		return strings.TrimRight(left, " \t") + after
	}

	right := strings.TrimLeft(after, " \t")
	if strings.HasPrefix(right, ",") {
		return before + strings.TrimLeft(right[1:], " \t")
	}

	return before + strings.TrimLeft(after, " \t\r\n")
}

// InsertAfter places n immediately after anchor in anchor's parent.
func InsertAfter(anchor, n *Node) bool {
	i := anchor.Index()
	if i < 0 {
		return false
	}

	parent := anchor.Parent
	n.Parent = parent
	n.Field = ""

	children := make([]*Node, 0, len(parent.Children)+1)
	children = append(children, parent.Children[:i+1]...)
	children = append(children, n)
	children = append(children, parent.Children[i+1:]...)
	parent.Children = children

	if parent.gaps != nil {
		gaps := make([]string, 0, len(parent.gaps)+1)
		gaps = append(gaps, parent.gaps[:i+1]...)
		gaps = append(gaps, "\n"+indentOf(parent.gaps[i]))
		gaps = append(gaps, parent.gaps[i+1:]...)
		parent.gaps = gaps
	}

	return true
}

func indentOf(gap string) string {
	nl := strings.LastIndexByte(gap, '\n')
	if nl < 0 {
		return ""
	}

	tail := gap[nl+1:]

	return tail[:len(tail)-len(strings.TrimLeft(tail, " \t"))]
}

// SetArgs replaces the argument list of a call or new expression. The list
// is re-laid out canonically.
func SetArgs(call *Node, args ...*Node) {
	list := call.Get(FieldArguments)
	if list == nil {
		list = Arguments()
		call.attach(FieldArguments, list)
	}

	list.Children = nil
	list.gaps = nil
	list.Text = ""

	for _, a := range args {
		if a.Parent != nil && a.Parent != list {
			Detach(a)
		}

		list.attach("", a)
	}
}

// Rename swaps the text of an identifier-like node in place.
func Rename(n *Node, name string) {
	n.Text = name
}

// Clone deep-copies n. The copy is detached.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}

	c := &Node{
		Kind:  n.Kind,
		Type:  n.Type,
		Field: n.Field,
		Op:    n.Op,
		Text:  n.Text,
	}

	if n.gaps != nil {
		c.gaps = append([]string(nil), n.gaps...)
	}

	for _, child := range n.Children {
		cc := Clone(child)
		cc.Parent = c
		c.Children = append(c.Children, cc)
	}

	return c
}
