package passes

import (
	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// BooleanChain rewrites `.be.true` / `.be.false` into `.eq(true)` /
// `.eq(false)` so assertion passes only deal with matcher calls.
func BooleanChain(ctx *Context) (Result, error) {
	var res Result

	matches := syntax.Find(ctx.Root, func(n *syntax.Node) bool {
		prop := n.Property()
		if prop != "true" && prop != "false" {
			return false
		}

		obj := n.Object()

		return obj.Is(syntax.KindMember) && obj.Property() == "be"
	})

	for _, n := range matches {
		if !ctx.Live(n) {
			continue
		}

		be := n.Object()
		value := n.Property() == "true"
		call := syntax.Call(syntax.Member(be.Object(), "eq"), syntax.Bool(value))

		if syntax.Replace(n, call) {
			ctx.debug("boolean-chain", "normalized boolean chain", call)
			res.count(1)
		}
	}

	return res, nil
}
