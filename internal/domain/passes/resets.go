package passes

import (
	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// Resets rewrites lifecycle resets. On the API root they act on every mock:
//
//	sinon.restore()      -> jest.restoreAllMocks()
//	sinon.resetHistory() -> jest.clearAllMocks()
//
// On a single mock they map one to one:
//
//	stub.restore()      -> stub.mockRestore()
//	stub.resetHistory() -> stub.mockClear()
//
// Sandboxes and timer handles have their own rewrites and are skipped by name.
func Resets(ctx *Context) (Result, error) {
	var res Result

	alias := ctx.Alias()

	calls := syntax.Find(ctx.Root, func(n *syntax.Node) bool {
		_, ok := mockResets[n.MethodName()]
		return ok && n.Is(syntax.KindCall)
	})

	for _, call := range calls {
		if !ctx.Live(call) || len(call.Args()) > 0 {
			continue
		}

		recv := call.Receiver()
		method := call.MethodName()

		if alias != "" && recv.IsIdent(alias) {
			repl := JestCall(rootResets[method])
			if syntax.Replace(call, repl) {
				ctx.debug("resets", "rewrote root reset", repl)
				res.count(1)
			}

			continue
		}

		if !isResettable(ctx, call) {
			continue
		}

		syntax.Rename(call.Callee().Get(syntax.FieldProperty), mockResets[method])
		ctx.debug("resets", "rewrote mock reset", call)
		res.count(1)
	}

	return res, nil
}

func isResettable(ctx *Context, call *syntax.Node) bool {
	recv := call.Receiver()
	if !recv.Is(syntax.KindIdentifier, syntax.KindMember) {
		return false
	}

	if root := RootIdent(recv); root.IsIdent("jest") {
		return false
	}

	key := ReceiverKey(call)
	if key == "sandbox" || ctx.SandboxNames[key] || ctx.TimerNames[key] {
		return false
	}

	return !(recv.Is(syntax.KindMember) && recv.Property() == defaultTimerName)
}
