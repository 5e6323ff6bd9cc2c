package passes

import (
	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// Link is one hop of a call chain: a member access, optionally invoked.
type Link struct {
	Name string
	Call bool
	// Node is the member expression (or the call wrapping it when Call is set).
	Node *syntax.Node
}

// Chain decomposes expr right to left into its links and returns them in
// source order together with the root expression the chain hangs off.
// For expect(x).to.not.be(true) the root is the expect(x) call, links are
// to, not, be(call).
func Chain(expr *syntax.Node, stopAt func(*syntax.Node) bool) (links []Link, root *syntax.Node) {
	cur := expr

	for cur != nil {
		if stopAt != nil && stopAt(cur) {
			break
		}

		switch {
		case cur.Is(syntax.KindCall) && cur.Callee().Is(syntax.KindMember):
			callee := cur.Callee()
			links = append(links, Link{Name: callee.Property(), Call: true, Node: cur})
			cur = callee.Object()

			continue
		case cur.Is(syntax.KindMember):
			links = append(links, Link{Name: cur.Property(), Node: cur})
			cur = cur.Object()

			continue
		case cur.Is(syntax.KindSubscript):
			cur = cur.Object()

			continue
		}

		break
	}

	for i, j := 0, len(links)-1; i < j; i, j = i+1, j-1 {
		links[i], links[j] = links[j], links[i]
	}

	return links, cur
}

// ChainContains walks expr from the outermost link inward and reports
// whether a link named name appears before a link satisfying stop. The walk
// never enters call arguments.
func ChainContains(name string, expr *syntax.Node, stop func(Link) bool) bool {
	links, _ := Chain(expr, nil)

	for i := len(links) - 1; i >= 0; i-- {
		if stop != nil && stop(links[i]) {
			return false
		}

		if links[i].Name == name {
			return true
		}
	}

	return false
}

// LinksBefore returns, in source order, the names of the links of expr that
// precede the first link satisfying stop. When no link satisfies stop the
// result is the single fallback link, or nil without one.
func LinksBefore(stop func(Link) bool, expr *syntax.Node, fallback string) []string {
	links, _ := Chain(expr, nil)

	var names []string

	for _, l := range links {
		if stop(l) {
			return names
		}

		names = append(names, l.Name)
	}

	if fallback == "" {
		return nil
	}

	return []string{fallback}
}

// ChainHas reports whether any link of expr, at any depth, is named one of names.
func ChainHas(expr *syntax.Node, names ...string) bool {
	links, _ := Chain(expr, nil)

	for _, l := range links {
		for _, name := range names {
			if l.Name == name {
				return true
			}
		}
	}

	return false
}

// RootIdent returns the identifier a member/call/subscript chain hangs off.
func RootIdent(expr *syntax.Node) *syntax.Node {
	cur := expr

	for cur != nil {
		switch {
		case cur.Is(syntax.KindCall):
			cur = cur.Callee()
		case cur.Is(syntax.KindMember, syntax.KindSubscript):
			cur = cur.Object()
		case cur.Is(syntax.KindIdentifier, syntax.KindThis):
			return cur
		default:
			return nil
		}
	}

	return nil
}
