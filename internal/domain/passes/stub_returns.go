package passes

import (
	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// narrowedTerminals are the behavior setters that may follow withArgs(...).
var narrowedTerminals = set("returns", "returnsArg", "throws", "mockResolvedValue", "mockRejectedValue")

// narrowed is one stub.withArgs(...).<terminal>(...) call.
type narrowed struct {
	call     *syntax.Node
	withArgs *syntax.Node
	stub     *syntax.Node
}

// StubReturns turns argument-narrowed stubs into a conditional
// implementation and plain behavior setters into their mock counterparts:
//
//	stub.withArgs(1, 2).returns('x') -> stub.mockImplementation((...args) => { if (args[0] === 1 && args[1] === 2) return 'x'; })
//	stub.returns('x')                -> stub.mockReturnValue('x')
//	stub.returnsArg(0)               -> stub.mockImplementation((...args) => args[0])
//	stub.throws(err)                 -> stub.mockImplementation(() => { throw err; })
//
// Narrowed statements on the same stub within one block fold into a single
// implementation, placed at the first of them, so the later ones do not
// overwrite the earlier ones.
func StubReturns(ctx *Context) (Result, error) {
	var res Result

	matchLocal := ctx.Named("match")

	type groupKey struct {
		block *syntax.Node
		key   string
	}

	var groups [][]narrowed

	groupOf := map[groupKey]int{}

	for _, call := range syntax.Find(ctx.Root, isNarrowedSetter) {
		n := narrowed{call: call, withArgs: call.Receiver(), stub: call.Receiver().Receiver()}

		if len(n.withArgs.Args()) == 0 || isValueless(call) {
			// Nothing to narrow on or nothing to return: drop withArgs and
			// keep the plain setter.
			if syntax.Replace(n.withArgs, n.stub) {
				res.count(1)
			}

			continue
		}

		if stmt := call.Parent; stmt.Is(syntax.KindExpressionStatement) {
			if key := ReceiverKey(n.withArgs); key != "" {
				id := groupKey{block: stmt.Parent, key: key}
				if i, ok := groupOf[id]; ok {
					groups[i] = append(groups[i], n)
					continue
				}

				groupOf[id] = len(groups)
			}
		}

		groups = append(groups, []narrowed{n})
	}

	for _, group := range groups {
		res.count(foldNarrowed(ctx, group, matchLocal))
	}

	res.count(rewriteSetters(ctx))

	return res, nil
}

func isNarrowedSetter(n *syntax.Node) bool {
	return n.Is(syntax.KindCall) && narrowedTerminals[n.MethodName()] && n.Receiver().MethodName() == "withArgs" &&
		n.Receiver().Is(syntax.KindCall)
}

// isValueless reports a narrowed returns() that supplies no value.
func isValueless(call *syntax.Node) bool {
	return call.MethodName() == "returns" && len(call.Args()) == 0
}

func foldNarrowed(ctx *Context, group []narrowed, matchLocal string) int {
	first := group[0]
	if !ctx.Live(first.call) {
		return 0
	}

	cases := make([]ArgCase, 0, len(group))
	for _, n := range group {
		cases = append(cases, ArgCase{
			Matchers: argMatchers(ctx, n.withArgs.Args(), matchLocal),
			Result:   narrowedResult(n.call),
		})
	}

	repl := syntax.MethodCall(first.stub, "mockImplementation", ArgCasesClosure(cases))
	if !syntax.Replace(first.call, repl) {
		return 0
	}

	ctx.debug("stub-returns", "folded narrowed stub", repl)

	for _, n := range group[1:] {
		syntax.Remove(n.call.Parent)
	}

	return len(group)
}

// argMatchers classifies the withArgs arguments: literals and plain
// expressions compare strictly, typed matchers compare the typeof tag and
// any other matcher only requires the argument to be present.
func argMatchers(ctx *Context, args []*syntax.Node, matchLocal string) []ArgMatcher {
	alias := ctx.Alias()
	matchers := make([]ArgMatcher, 0, len(args))

	for _, a := range args {
		switch {
		case a.IsLiteral():
			matchers = append(matchers, ArgMatcher{Kind: MatchLiteral, Value: a})
		case IsMatcher(a, alias, matchLocal):
			if typed, ok := typedMatchers[MatcherName(a, alias, matchLocal)]; ok {
				matchers = append(matchers, ArgMatcher{Kind: MatchTyped, Tag: typed.tag})
				continue
			}

			matchers = append(matchers, ArgMatcher{Kind: MatchArity})
		default:
			matchers = append(matchers, ArgMatcher{Kind: MatchLiteral, Value: a})
		}
	}

	return matchers
}

// narrowedResult is the statement the implementation runs for a matching call.
func narrowedResult(call *syntax.Node) *syntax.Node {
	var arg *syntax.Node
	if args := call.Args(); len(args) > 0 {
		arg = args[0]
	}

	switch call.MethodName() {
	case "throws":
		return syntax.Throw(errorValue(arg))
	case "returnsArg":
		if arg == nil {
			arg = syntax.Num(0)
		}

		return syntax.Return(syntax.Index(syntax.Ident("args"), arg))
	case "mockResolvedValue":
		return syntax.Return(syntax.Call(syntax.Dotted("Promise.resolve"), optional(arg)...))
	case "mockRejectedValue":
		return syntax.Return(syntax.Call(syntax.Dotted("Promise.reject"), optional(arg)...))
	}

	if arg == nil {
		arg = syntax.Undefined()
	}

	return syntax.Return(arg)
}

func optional(n *syntax.Node) []*syntax.Node {
	if n == nil {
		return nil
	}

	return []*syntax.Node{n}
}

// errorValue is what throws(e) throws: e itself, a new Error for a bare
// throws(), and new Error(name) for throws('TypeError').
func errorValue(arg *syntax.Node) *syntax.Node {
	if arg == nil {
		return syntax.New(syntax.Ident("Error"))
	}

	if arg.Is(syntax.KindString) {
		return syntax.New(syntax.Ident("Error"), arg)
	}

	return arg
}

// rewriteSetters handles behavior setters that are not narrowed by withArgs.
func rewriteSetters(ctx *Context) int {
	calls := syntax.Find(ctx.Root, func(n *syntax.Node) bool {
		if !n.Is(syntax.KindCall) || ExpectRoot(n) != nil {
			return false
		}

		switch n.MethodName() {
		case "returns", "returnsArg":
			return true
		case "throws":
			return isStubThrows(n) && !importedElsewhere(ctx, n.Receiver())
		}

		return false
	})

	count := 0

	for _, call := range calls {
		if !ctx.Live(call) {
			continue
		}

		recv := call.Receiver()

		var arg *syntax.Node
		if args := call.Args(); len(args) > 0 {
			arg = args[0]
		}

		switch call.MethodName() {
		case "returns":
			syntax.Rename(call.Callee().Get(syntax.FieldProperty), "mockReturnValue")
		case "returnsArg":
			if arg == nil {
				arg = syntax.Num(0)
			}

			syntax.Replace(call, syntax.MethodCall(recv, "mockImplementation", ArgEcho(arg)))
		case "throws":
			syntax.Replace(call, syntax.MethodCall(recv, "mockImplementation", Thrower(errorValue(arg))))
		}

		ctx.debug("stub-returns", "rewrote behavior setter", call)
		count++
	}

	return count
}

// isStubThrows tells stub.throws(err) apart from assertion helpers such as
// assert.throws(fn, /re/), which take a function and an optional matcher.
func isStubThrows(call *syntax.Node) bool {
	args := call.Args()
	if len(args) > 1 {
		return false
	}

	return len(args) == 0 || !args[0].Is(syntax.KindArrow, syntax.KindFunction)
}

// importedElsewhere reports whether the receiver's root identifier is bound
// by an import or require of a module other than the mocking library.
func importedElsewhere(ctx *Context, recv *syntax.Node) bool {
	root := RootIdent(recv)
	if !root.Is(syntax.KindIdentifier) {
		return false
	}

	scope := ctx.Scopes().DeclaringScope(root)
	if scope == nil {
		return false
	}

	module := syntax.ImportedFrom(scope.Binding(root.Name()))
	if module == "" {
		return false
	}

	return ctx.Import == nil || module != ctx.Import.Module
}
