package passes

import (
	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// assertion describes how one sinon.assert method maps onto an expect chain.
type assertion struct {
	target  string
	negated bool
	// times is the exact call count asserted, 0 for none.
	times int
	// withArgs forwards the arguments after the spy to the matcher.
	withArgs bool
	// partial wraps object literal arguments in expect.objectContaining.
	partial bool
}

var assertMethods = map[string]assertion{
	"called":                {target: "toHaveBeenCalled"},
	"notCalled":             {target: "toHaveBeenCalled", negated: true},
	"calledOnce":            {target: "toHaveBeenCalledTimes", times: 1},
	"calledTwice":           {target: "toHaveBeenCalledTimes", times: 2},
	"calledThrice":          {target: "toHaveBeenCalled"},
	"callCount":             {target: "toHaveBeenCalledTimes"},
	"calledWith":            {target: "toHaveBeenCalledWith", withArgs: true},
	"calledWithExactly":     {target: "toHaveBeenCalledWith", withArgs: true},
	"calledOnceWithExactly": {target: "toHaveBeenCalledWith", withArgs: true},
	"alwaysCalledWith":      {target: "toHaveBeenCalledWith", withArgs: true},
	"calledWithMatch":       {target: "toHaveBeenCalledWith", withArgs: true, partial: true},
	"neverCalledWith":       {target: "toHaveBeenCalledWith", withArgs: true, negated: true},
	"notCalledWith":         {target: "toHaveBeenCalledWith", withArgs: true, negated: true},
}

// Assert rewrites the sinon.assert family into expect chains:
//
//	sinon.assert.calledOnce(spy)       -> expect(spy).toHaveBeenCalledTimes(1)
//	sinon.assert.calledWith(spy, 1, 2) -> expect(spy).toHaveBeenCalledWith(1, 2)
//	sinon.assert.notCalled(spy)        -> expect(spy).not.toHaveBeenCalled()
func Assert(ctx *Context) (Result, error) {
	var res Result

	alias := ctx.Alias()
	assertLocal := ctx.Named("assert")

	calls := syntax.Find(ctx.Root, func(n *syntax.Node) bool {
		if !n.Is(syntax.KindCall) {
			return false
		}

		if _, ok := assertMethods[n.MethodName()]; !ok {
			return false
		}

		recv := n.Receiver()

		return IsMember(recv, alias, "assert") || (assertLocal != "" && recv.IsIdent(assertLocal))
	})

	for _, call := range calls {
		args := call.Args()
		if !ctx.Live(call) || len(args) == 0 {
			continue
		}

		repl := assertionFor(ctx.Options, call.MethodName(), args)
		if syntax.Replace(call, repl) {
			ctx.debug("assert", "rewrote assert call", repl)
			res.count(1)
		}
	}

	return res, nil
}

func assertionFor(opts Options, method string, args []*syntax.Node) *syntax.Node {
	a := assertMethods[method]
	spy, rest := args[0], args[1:]

	if method == "calledThrice" && opts.ExactThrice {
		a = assertion{target: "toHaveBeenCalledTimes", times: 3}
	}

	var matcherArgs []*syntax.Node

	switch {
	case a.times > 0:
		matcherArgs = []*syntax.Node{syntax.Num(a.times)}
	case method == "callCount" && len(rest) > 0:
		matcherArgs = rest[:1]
	case a.withArgs:
		for _, arg := range rest {
			if a.partial && arg.Is(syntax.KindObject) {
				arg = syntax.Call(syntax.Dotted("expect.objectContaining"), arg)
			}

			matcherArgs = append(matcherArgs, arg)
		}
	}

	return NewAssertion(spy, nil, a.negated, a.target, matcherArgs...)
}
