package passes

import (
	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// CallCount rewrites boolean assertions over call-count properties:
//
//	expect(spy.called).to.be(true)      -> expect(spy).toHaveBeenCalled()
//	expect(spy.calledTwice).toBe(true)  -> expect(spy).toHaveBeenCalledTimes(2)
//	expect(spy.notCalled).to.eq(false)  -> expect(spy).toHaveBeenCalled()
//	expect(spy.callCount).to.equal(3)   -> expect(spy).toHaveBeenCalledTimes(3)
//	expect(spy.callCount).toBeFalsy()   -> expect(spy).not.toHaveBeenCalled()
//
// A subject narrowed with withArgs is only normalized to calledWith here,
// e.g. expect(spy.withArgs(1).called) becomes expect(spy.calledWith(1)),
// and left for CalledWith.
func CallCount(ctx *Context) (Result, error) {
	var res Result

	assertions := syntax.Find(ctx.Root, func(n *syntax.Node) bool {
		return IsExpectSinonObject(n, callCountMethods)
	})

	for _, assertion := range assertions {
		if !ctx.Live(assertion) {
			continue
		}

		expectCall := ExpectRoot(assertion.Callee())
		prop := expectCall.Args()[0]
		subject := prop.Object()

		if subject.Is(syntax.KindCall) && subject.MethodName() == "withArgs" {
			syntax.SetArgs(expectCall, subject)
			syntax.Rename(subject.Callee().Get(syntax.FieldProperty), "calledWith")
			ctx.debug("call-count", "normalized narrowed subject", assertion)
			res.count(1)

			continue
		}

		repl := callCountAssertion(ctx.Options, assertion, prop.Property(), subject)
		if syntax.Replace(assertion, repl) {
			ctx.debug("call-count", "rewrote call-count assertion", repl)
			res.count(1)
		}
	}

	return res, nil
}

func callCountAssertion(opts Options, assertion *syntax.Node, method string, subject *syntax.Node) *syntax.Node {
	negated := IsNegated(assertion)
	leading := LeadingLinks(assertion)

	switch method {
	case "notCalled":
		return NewAssertion(subject, leading, !negated, "toHaveBeenCalled")
	case "calledOnce":
		return NewAssertion(subject, leading, negated, "toHaveBeenCalledTimes", syntax.Num(1))
	case "calledTwice":
		return NewAssertion(subject, leading, negated, "toHaveBeenCalledTimes", syntax.Num(2))
	case "calledThrice":
		if opts.ExactThrice {
			return NewAssertion(subject, leading, negated, "toHaveBeenCalledTimes", syntax.Num(3))
		}

		return NewAssertion(subject, leading, negated, "toHaveBeenCalled")
	case "called":
		return NewAssertion(subject, leading, negated, "toHaveBeenCalled")
	}

	// callCount compares against the matcher's own argument. Without a
	// count, as in toBeTruthy() or to.be(true), only presence is asserted.
	a := assertion.Args()
	if len(a) == 0 || a[0].Is(syntax.KindTrue, syntax.KindFalse) {
		return NewAssertion(subject, leading, negated, "toHaveBeenCalled")
	}

	return NewAssertion(subject, leading, negated, "toHaveBeenCalledTimes", a[0])
}

// CalledWith rewrites boolean assertions over argument checks:
//
//	expect(spy.calledWith(1, 2)).to.be(true)  -> expect(spy).toHaveBeenCalledWith(1, 2)
//	expect(spy.notCalledWith(1)).to.be(true)  -> expect(spy).not.toHaveBeenCalledWith(1)
func CalledWith(ctx *Context) (Result, error) {
	var res Result

	assertions := syntax.Find(ctx.Root, func(n *syntax.Node) bool {
		return IsExpectSinonCall(n, calledWithNames)
	})

	for _, assertion := range assertions {
		if !ctx.Live(assertion) {
			continue
		}

		check := ExpectSubject(assertion.Callee())
		negated := IsNegated(assertion) != calledWithMethods[check.MethodName()]

		repl := NewAssertion(check.Receiver(), LeadingLinks(assertion), negated, "toHaveBeenCalledWith", check.Args()...)
		if syntax.Replace(assertion, repl) {
			ctx.debug("called-with", "rewrote called-with assertion", repl)
			res.count(1)
		}
	}

	return res, nil
}

var calledWithNames = set(keys(calledWithMethods)...)

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	return out
}
