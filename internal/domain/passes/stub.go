package passes

import (
	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// Stub rewrites spy, stub and fake creation:
//
//	sinon.stub()             -> jest.fn()
//	sinon.stub(impl)         -> jest.fn().mockImplementation(impl)
//	sinon.stub(obj, 'm')     -> jest.spyOn(obj, 'm').mockClear().mockImplementation(() => undefined)
//	sinon.stub(obj, 'm', fn) -> jest.spyOn(obj, 'm').mockClear().mockImplementation(fn)
//	sinon.replaceGetter(o, 'p', fn) -> jest.spyOn(o, 'p', 'get').mockClear().mockImplementation(fn)
func Stub(ctx *Context) (Result, error) {
	var res Result

	alias := ctx.Alias()
	named := map[string]string{}

	for method := range spyMethods {
		if local := ctx.Named(method); local != "" {
			named[local] = method
		}
	}

	calls := syntax.Find(ctx.Root, func(n *syntax.Node) bool {
		if IsMethodCall(n, alias, spyMethods) {
			return true
		}

		return n.Is(syntax.KindCall) && named[n.Callee().Name()] != "" && n.Callee().Is(syntax.KindIdentifier)
	})

	for _, call := range calls {
		if !ctx.Live(call) {
			continue
		}

		method := call.MethodName()
		if method == "" {
			method = named[call.Callee().Name()]
		}

		repl := mockConstruction(method, call.Args(), isChained(call))
		if syntax.Replace(call, repl) {
			ctx.debug("stub", "rewrote mock construction", repl)
			res.count(1)
		}
	}

	res.count(replaceBareFakes(ctx, alias))

	return res, nil
}

// isChained reports whether n is the object of a member access, as in
// sinon.stub(obj, 'm').returns(1).
func isChained(n *syntax.Node) bool {
	return n.Parent.Is(syntax.KindMember) && n.Field == syntax.FieldObject
}

func mockConstruction(method string, args []*syntax.Node, chained bool) *syntax.Node {
	switch {
	case len(args) >= 2:
		spyArgs := []*syntax.Node{args[0], args[1]}
		if method == "replaceGetter" {
			spyArgs = append(spyArgs, syntax.Str("get"))
		}

		spy := syntax.MethodCall(syntax.Call(syntax.Dotted("jest.spyOn"), spyArgs...), "mockClear")

		switch {
		case len(args) >= 3:
			return syntax.MethodCall(spy, "mockImplementation", args[2])
		case !chained && method != "spy":
			return syntax.MethodCall(spy, "mockImplementation", syntax.Arrow(nil, syntax.Undefined()))
		}

		return spy
	case len(args) == 1:
		return syntax.MethodCall(JestCall("fn"), "mockImplementation", args[0])
	}

	return JestCall("fn")
}

// replaceBareFakes rewrites sinon.fake used as a value: sinon.fake.returns(1)
// becomes jest.fn().returns(1) for the stub-returns pass to finish.
func replaceBareFakes(ctx *Context, alias string) int {
	fakes := syntax.Find(ctx.Root, func(n *syntax.Node) bool {
		return IsMember(n, alias, "fake") && n.Field != syntax.FieldFunction
	})

	count := 0

	for _, n := range fakes {
		if !ctx.Live(n) {
			continue
		}

		var repl *syntax.Node
		if n.Parent.Is(syntax.KindMember) {
			repl = JestCall("fn")
		} else {
			repl = syntax.Dotted("jest.fn")
		}

		if syntax.Replace(n, repl) {
			count++
		}
	}

	return count
}
