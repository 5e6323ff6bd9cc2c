package passes

import (
	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// Resolves renames behavior setters that have a direct mock counterpart,
// e.g. stub.resolves(v) to stub.mockResolvedValue(v). It matches on the
// method name alone, whatever the receiver.
func Resolves(ctx *Context) (Result, error) {
	var res Result

	calls := syntax.Find(ctx.Root, func(n *syntax.Node) bool {
		_, ok := mockMethods[n.MethodName()]
		return ok && n.Is(syntax.KindCall)
	})

	for _, call := range calls {
		if !ctx.Live(call) {
			continue
		}

		prop := call.Callee().Get(syntax.FieldProperty)
		syntax.Rename(prop, mockMethods[prop.Text])
		ctx.debug("resolves", "renamed behavior setter", call)
		res.count(1)
	}

	return res, nil
}
