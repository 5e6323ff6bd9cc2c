package passes

import (
	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// whenModule provides the conditional matcher used for match.any.
const whenModule = "jest-when"

// Match translates argument matchers:
//
//	sinon.match({ id: 1 })        -> expect.objectContaining({ id: 1 })
//	sinon.match('part')           -> expect.stringContaining('part')
//	sinon.match.number            -> expect.any(Number)
//	sinon.match.instanceOf(Error) -> expect.any(Error)
//	sinon.match.defined           -> expect.anything()
//	match.any                     -> when(() => true)
//
// The jest-when import is requested only when match.any was rewritten.
func Match(ctx *Context) (Result, error) {
	var res Result

	alias := ctx.Alias()
	matchLocal := ctx.Named("match")

	// Matcher factories first, so their callees are gone before the
	// property matchers are collected.
	factories := syntax.Find(ctx.Root, func(n *syntax.Node) bool {
		return n.Is(syntax.KindCall) && MatcherName(n.Callee(), alias, matchLocal) != ""
	})

	for _, call := range factories {
		if !ctx.Live(call) {
			continue
		}

		repl := syntax.Call(syntax.Dotted("expect.anything"))
		if args := call.Args(); MatcherName(call.Callee(), alias, matchLocal) == "instanceOf" && len(args) == 1 {
			repl = syntax.Call(syntax.Dotted("expect.any"), args[0])
		}

		if syntax.Replace(call, repl) {
			res.count(1)
		}
	}

	partial := syntax.Find(ctx.Root, func(n *syntax.Node) bool {
		callee := n.Callee()
		return n.Is(syntax.KindCall) && (IsMember(callee, alias, "match") || (matchLocal != "" && callee.IsIdent(matchLocal)))
	})

	for _, call := range partial {
		if !ctx.Live(call) {
			continue
		}

		repl := partialMatcher(call.Args())
		if syntax.Replace(call, repl) {
			ctx.debug("match", "rewrote partial matcher", repl)
			res.count(1)
		}
	}

	needsWhen := false

	props := syntax.Find(ctx.Root, func(n *syntax.Node) bool {
		return MatcherName(n, alias, matchLocal) != "" && n.Field != syntax.FieldFunction
	})

	for _, member := range props {
		if !ctx.Live(member) {
			continue
		}

		name := MatcherName(member, alias, matchLocal)

		var repl *syntax.Node

		switch typed, ok := typedMatchers[name]; {
		case ok:
			repl = syntax.Call(syntax.Dotted("expect.any"), syntax.Ident(typed.ctor))
		case name == "any" && member.Object().Is(syntax.KindIdentifier):
			repl = syntax.Call(syntax.Ident("when"), syntax.Arrow(nil, syntax.Bool(true)))
			needsWhen = true
		default:
			repl = syntax.Call(syntax.Dotted("expect.anything"))
		}

		if syntax.Replace(member, repl) {
			ctx.debug("match", "rewrote matcher", repl)
			res.count(1)
		}
	}

	if needsWhen {
		res.Imports = append(res.Imports, Import{Module: whenModule, Name: "when"})
	}

	return res, nil
}

func partialMatcher(args []*syntax.Node) *syntax.Node {
	if len(args) == 1 {
		switch {
		case args[0].Is(syntax.KindString):
			return syntax.Call(syntax.Dotted("expect.stringContaining"), args[0])
		case args[0].Type == "regex":
			return syntax.Call(syntax.Dotted("expect.stringMatching"), args[0])
		}
	}

	return syntax.Call(syntax.Dotted("expect.objectContaining"), args...)
}
