package syntax

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	// Copy so fn may rewrite the child list of n.
	children := append([]*Node(nil), n.Children...)
	for _, c := range children {
		Walk(c, fn)
	}
}

// Find collects every node under root matching pred, in pre-order.
// Collection completes before the caller mutates anything.
func Find(root *Node, pred func(*Node) bool) []*Node {
	var found []*Node

	Walk(root, func(n *Node) bool {
		if pred(n) {
			found = append(found, n)
		}

		return true
	})

	return found
}

// FindKind collects nodes of the given kind under root.
func FindKind(root *Node, kind Kind) []*Node {
	return Find(root, func(n *Node) bool { return n.Kind == kind })
}

// FindPostOrder collects matches innermost first, for rewrites that must see
// already-rewritten inner expressions.
func FindPostOrder(root *Node, pred func(*Node) bool) []*Node {
	var found []*Node

	var visit func(n *Node)

	visit = func(n *Node) {
		for _, c := range n.Children {
			visit(c)
		}

		if pred(n) {
			found = append(found, n)
		}
	}

	if root != nil {
		visit(root)
	}

	return found
}
