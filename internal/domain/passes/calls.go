package passes

import (
	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// Calls rewrites call-history accessors onto mock.calls:
//
//	stub.getCall(1)          -> stub.mock.calls[1]
//	stub.getCalls()          -> stub.mock.calls
//	stub.firstCall           -> stub.mock.calls[0]
//	stub.lastCall            -> stub.mock.lastCall
//	stub.getCall(0).args[1]  -> stub.mock.calls[0][1]
//	stub.args[0]             -> stub.mock.calls[0]
//	stub.callCount           -> stub.mock.calls.length
func Calls(ctx *Context) (Result, error) {
	var res Result

	getters := syntax.Find(ctx.Root, func(n *syntax.Node) bool {
		method := n.MethodName()
		return n.Is(syntax.KindCall) && (method == "getCall" || method == "getCalls") && !isJestRooted(n.Receiver())
	})

	for _, call := range getters {
		if !ctx.Live(call) {
			continue
		}

		history := mockCalls(call.Receiver())

		repl := history
		if call.MethodName() == "getCall" {
			index := syntax.Num(0)
			if args := call.Args(); len(args) > 0 {
				index = args[0]
			}

			repl = syntax.Index(history, index)
		}

		if syntax.Replace(call, repl) {
			ctx.debug("calls", "rewrote call getter", repl)
			res.count(1)
		}
	}

	nth := syntax.Find(ctx.Root, func(n *syntax.Node) bool {
		_, ok := nthCalls[n.Property()]
		return ok && n.Object().Property() != "mock" && !isJestRooted(n.Object())
	})

	for _, member := range nth {
		if !ctx.Live(member) {
			continue
		}

		var repl *syntax.Node
		if i := nthCalls[member.Property()]; i < 0 {
			repl = syntax.Member(syntax.Member(member.Object(), "mock"), "lastCall")
		} else {
			repl = syntax.Index(mockCalls(member.Object()), syntax.Num(i))
		}

		if syntax.Replace(member, repl) {
			ctx.debug("calls", "rewrote nth call", repl)
			res.count(1)
		}
	}

	res.count(foldArgs(ctx))
	res.count(rewriteCallCounts(ctx))

	return res, nil
}

func mockCalls(recv *syntax.Node) *syntax.Node {
	return syntax.Member(syntax.Member(recv, "mock"), "calls")
}

func isJestRooted(n *syntax.Node) bool {
	return RootIdent(n).IsIdent("jest")
}

// foldArgs drops an .args hop that follows a call-history access and turns
// a direct stub.args[i] into stub.mock.calls[i]. Only subscripted .args
// accesses are rewritten: a bare .args is too common a property name.
func foldArgs(ctx *Context) int {
	members := syntax.Find(ctx.Root, func(n *syntax.Node) bool {
		if n.Property() != "args" {
			return false
		}

		if isHistory(n.Object()) {
			return true
		}

		return n.Parent.Is(syntax.KindSubscript) && n.Field == syntax.FieldObject
	})

	count := 0

	for _, member := range members {
		if !ctx.Live(member) {
			continue
		}

		var repl *syntax.Node
		if isHistory(member.Object()) {
			repl = member.Object()
		} else {
			repl = mockCalls(member.Object())
		}

		if syntax.Replace(member, repl) {
			ctx.debug("calls", "folded args access", repl)
			count++
		}
	}

	return count
}

// isHistory reports whether expr already reaches into a mock's call history.
func isHistory(expr *syntax.Node) bool {
	return ChainHas(expr, "mock") && ChainHas(expr, "calls", "lastCall")
}

func rewriteCallCounts(ctx *Context) int {
	members := syntax.Find(ctx.Root, func(n *syntax.Node) bool {
		return n.Property() == "callCount" && n.Field != syntax.FieldFunction && !isJestRooted(n.Object())
	})

	count := 0

	for _, member := range members {
		if !ctx.Live(member) {
			continue
		}

		repl := syntax.Member(mockCalls(member.Object()), "length")
		if syntax.Replace(member, repl) {
			count++
		}
	}

	return count
}
