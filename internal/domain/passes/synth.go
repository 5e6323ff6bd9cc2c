package passes

import (
	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// NewAssertion builds expect(subject).<leading...>[.not].target(args...).
// Negation is applied at most once: a base chain already ending in `not`
// is not wrapped again.
func NewAssertion(subject *syntax.Node, leading []string, negated bool, target string, args ...*syntax.Node) *syntax.Node {
	base := syntax.Call(syntax.Ident("expect"), subject)
	last := ""

	for _, link := range leading {
		base = syntax.Member(base, link)
		last = link
	}

	if negated && last != "not" {
		base = syntax.Member(base, "not")
	}

	return syntax.MethodCall(base, target, args...)
}

// MatcherKind classifies one positional argument of a narrowed stub.
type MatcherKind int

// Argument matcher kinds.
const (
	// MatchLiteral compares the received argument with strict equality.
	MatchLiteral MatcherKind = iota
	// MatchTyped compares the runtime type tag of the received argument.
	MatchTyped
	// MatchArity only requires the argument to have been passed.
	MatchArity
)

// ArgMatcher is one positional check of a conditional implementation.
type ArgMatcher struct {
	Kind  MatcherKind
	Value *syntax.Node
	Tag   string
}

// ArgMatcherCondition builds the left-to-right conjunction of positional
// checks over the rest parameter args. It returns nil for no matchers.
func ArgMatcherCondition(matchers []ArgMatcher) *syntax.Node {
	var cond *syntax.Node

	for i, m := range matchers {
		received := syntax.Index(syntax.Ident("args"), syntax.Num(i))

		var check *syntax.Node

		switch m.Kind {
		case MatchTyped:
			check = syntax.Binary(syntax.Unary("typeof", received), "===", syntax.Str(m.Tag))
		case MatchArity:
			check = syntax.Binary(syntax.Member(syntax.Ident("args"), "length"), ">=", syntax.Num(len(matchers)))
		default:
			check = syntax.Binary(received, "===", m.Value)
		}

		if cond == nil {
			cond = check
			continue
		}

		cond = syntax.Binary(cond, "&&", check)
	}

	return cond
}

// ArgCase is one branch of a conditional implementation: when every
// matcher holds, Result (a return or throw statement) runs.
type ArgCase struct {
	Matchers []ArgMatcher
	Result   *syntax.Node
}

// ArgMatcherClosure builds (...args) => { if (cond) return ret; }, the single
// implementation that replaces a stub narrowed by argument. With no
// matchers the closure returns ret unconditionally.
func ArgMatcherClosure(matchers []ArgMatcher, ret *syntax.Node) *syntax.Node {
	return ArgCasesClosure([]ArgCase{{Matchers: matchers, Result: syntax.Return(ret)}})
}

// ArgCasesClosure builds one implementation covering several narrowed
// overloads of the same stub, checked in order.
func ArgCasesClosure(cases []ArgCase) *syntax.Node {
	var stmts []*syntax.Node

	for _, c := range cases {
		if cond := ArgMatcherCondition(c.Matchers); cond != nil {
			stmts = append(stmts, syntax.If(cond, c.Result))
			continue
		}

		stmts = append(stmts, c.Result)
	}

	return syntax.Arrow([]*syntax.Node{syntax.Rest("args")}, syntax.Block(stmts...))
}

// ArgEcho builds (...args) => args[index].
func ArgEcho(index *syntax.Node) *syntax.Node {
	return syntax.Arrow([]*syntax.Node{syntax.Rest("args")}, syntax.Index(syntax.Ident("args"), index))
}

// Thrower builds () => { throw err; }.
func Thrower(err *syntax.Node) *syntax.Node {
	return syntax.Arrow(nil, syntax.Block(syntax.Throw(err)))
}

// JestCall builds jest.<method>(args...).
func JestCall(method string, args ...*syntax.Node) *syntax.Node {
	return syntax.MethodCall(syntax.Ident("jest"), method, args...)
}
