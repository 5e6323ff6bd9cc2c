package passes

import (
	"strings"

	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// Rewrite tables. They are never mutated after init and are shared by
// concurrent file pipelines.
var (
	callCountMethods = set("called", "calledOnce", "calledTwice", "calledThrice", "callCount", "notCalled")

	// chainMatchers are compared lowercased.
	chainMatchers = set("be", "eq", "eql", "equal", "equals", "tobe", "toequal", "tobetruthy", "tobefalsy")

	// calledWithMethods maps to whether the method asserts absence.
	calledWithMethods = map[string]bool{
		"calledWith":            false,
		"calledOnceWith":        false,
		"calledWithExactly":     false,
		"calledOnceWithExactly": false,
		"notCalledWith":         true,
	}

	spyMethods = set("spy", "stub", "replaceGetter", "replace", "fake")

	mockResets = map[string]string{
		"reset":         "mockReset",
		"restore":       "mockRestore",
		"resetHistory":  "mockClear",
		"resetBehavior": "mockReset",
	}

	rootResets = map[string]string{
		"restore":       "restoreAllMocks",
		"reset":         "resetAllMocks",
		"resetHistory":  "clearAllMocks",
		"resetBehavior": "resetAllMocks",
	}

	// typedMatchers maps a matcher to its constructor and typeof tag.
	typedMatchers = map[string]struct{ ctor, tag string }{
		"array":  {"Array", "object"},
		"func":   {"Function", "function"},
		"number": {"Number", "number"},
		"object": {"Object", "object"},
		"string": {"String", "string"},
		"bool":   {"Boolean", "boolean"},
	}

	// nthCalls maps an accessor to its history index; -1 is the last call.
	nthCalls = map[string]int{
		"firstCall":  0,
		"secondCall": 1,
		"thirdCall":  2,
		"lastCall":   -1,
	}

	mockMethods = map[string]string{
		"resolves":    "mockResolvedValue",
		"rejects":     "mockRejectedValue",
		"callsFake":   "mockImplementation",
		"returnsThis": "mockReturnThis",
	}

	sandboxMethods = map[string]string{
		"spy":           "fn",
		"mock":          "stubAll",
		"restore":       "dispose",
		"stub":          "stub",
		"replaceGetter": "stubGet",
	}

	// sandboxConstructors are rewritten to a bare mock when called without arguments.
	sandboxConstructors = set("spy", "stub")

	timerMethods = map[string]string{
		"tick":          "advanceTimersByTime",
		"tickAsync":     "advanceTimersByTimeAsync",
		"next":          "advanceTimersToNextTimer",
		"nextAsync":     "advanceTimersToNextTimerAsync",
		"runAll":        "runAllTimers",
		"runAllAsync":   "runAllTimersAsync",
		"runToLast":     "runOnlyPendingTimers",
		"setSystemTime": "setSystemTime",
		"restore":       "useRealTimers",
		"uninstall":     "useRealTimers",
	}

	expectPrefixes = set("to")
)

func set(names ...string) map[string]bool {
	s := make(map[string]bool, len(names))
	for _, n := range names {
		s[n] = true
	}

	return s
}

func isExpectPrefix(l Link) bool {
	return expectPrefixes[l.Name]
}

// IsExpectCall reports whether n is expect(...).
func IsExpectCall(n *syntax.Node) bool {
	return n.Is(syntax.KindCall) && n.Callee().IsIdent("expect")
}

// ExpectRoot returns the expect(...) call an assertion chain hangs off, at
// any depth of qualifier links, or nil.
func ExpectRoot(assertion *syntax.Node) *syntax.Node {
	_, root := Chain(assertion, nil)
	if IsExpectCall(root) {
		return root
	}

	return nil
}

// ExpectSubject returns the single argument of the expect call n hangs off.
func ExpectSubject(assertion *syntax.Node) *syntax.Node {
	expectCall := ExpectRoot(assertion)
	if expectCall == nil {
		return nil
	}

	args := expectCall.Args()
	if len(args) == 0 {
		return nil
	}

	return args[0]
}

// IsChainMatcherCall reports whether n is a terminal equality-style matcher
// call such as .to.be(true), .eq(2) or .toBe(true).
func IsChainMatcherCall(n *syntax.Node) bool {
	if !n.Is(syntax.KindCall) || !n.Callee().Is(syntax.KindMember) {
		return false
	}

	return chainMatchers[strings.ToLower(n.MethodName())]
}

// IsExpectSinonObject reports whether n is an assertion such as
// expect(spy.calledOnce).to.be(true): a chain matcher whose expect subject is
// a property of a mock named in methods.
func IsExpectSinonObject(n *syntax.Node, methods map[string]bool) bool {
	if !IsChainMatcherCall(n) {
		return false
	}

	subject := ExpectSubject(n.Callee())

	return subject.Is(syntax.KindMember) && methods[subject.Property()]
}

// IsExpectSinonCall reports whether n is an assertion such as
// expect(spy.calledWith(1)).to.be(true): a chain matcher whose expect subject
// is a mock method call named in methods.
func IsExpectSinonCall(n *syntax.Node, methods map[string]bool) bool {
	if !IsChainMatcherCall(n) {
		return false
	}

	subject := ExpectSubject(n.Callee())
	if !subject.Is(syntax.KindCall) || !subject.Callee().Is(syntax.KindMember) {
		return false
	}

	return methods[subject.MethodName()]
}

// IsNegated reports the effective polarity of an assertion: a `not` link
// and a falsy expectation each flip it, so both together cancel out.
func IsNegated(assertion *syntax.Node) bool {
	negated := ChainContains("not", assertion.Callee(), nil)

	if strings.EqualFold(assertion.MethodName(), "toBeFalsy") {
		negated = !negated
	}

	if args := assertion.Args(); len(args) > 0 {
		if v, ok := args[0].BoolValue(); ok && !v {
			negated = !negated
		}
	}

	return negated
}

// LeadingLinks returns the qualifier links between expect(...) and the
// `to` boundary, minus negation which IsNegated already accounts for.
func LeadingLinks(assertion *syntax.Node) []string {
	var leading []string

	for _, name := range LinksBefore(isExpectPrefix, assertion.Callee(), "") {
		if name != "not" {
			leading = append(leading, name)
		}
	}

	return leading
}

// IsMember reports whether n is obj.prop with obj the identifier objName.
func IsMember(n *syntax.Node, objName, prop string) bool {
	return objName != "" && n.Is(syntax.KindMember) && n.Object().IsIdent(objName) && n.Property() == prop
}

// IsMethodCall reports whether n is objName.method(...) for a method in methods.
func IsMethodCall(n *syntax.Node, objName string, methods map[string]bool) bool {
	if objName == "" || !n.Is(syntax.KindCall) {
		return false
	}

	callee := n.Callee()

	return callee.Is(syntax.KindMember) && callee.Object().IsIdent(objName) && methods[callee.Property()]
}

// IsCallOf reports whether n is a call to the bare identifier name.
func IsCallOf(n *syntax.Node, name string) bool {
	return name != "" && n.Is(syntax.KindCall) && n.Callee().IsIdent(name)
}

// MatcherName returns X for a sinon.match.X or match.X member, or "".
func MatcherName(n *syntax.Node, alias, matchLocal string) string {
	if !n.Is(syntax.KindMember) {
		return ""
	}

	obj := n.Object()
	if IsMember(obj, alias, "match") || (matchLocal != "" && obj.IsIdent(matchLocal)) {
		return n.Property()
	}

	return ""
}

// IsMatcher reports whether n is any source matcher expression: a
// sinon.match.X member, a sinon.match(...) call or a call of a matcher
// factory such as sinon.match.instanceOf(...).
func IsMatcher(n *syntax.Node, alias, matchLocal string) bool {
	if MatcherName(n, alias, matchLocal) != "" {
		return true
	}

	if !n.Is(syntax.KindCall) {
		return false
	}

	callee := n.Callee()

	return IsMember(callee, alias, "match") ||
		(matchLocal != "" && callee.IsIdent(matchLocal)) ||
		MatcherName(callee, alias, matchLocal) != ""
}

// ReceiverKey renders the receiver of a method call for name-gated
// matching, e.g. "clock" or "this.clock".
func ReceiverKey(call *syntax.Node) string {
	recv := call.Receiver()
	if !recv.Is(syntax.KindIdentifier, syntax.KindMember, syntax.KindThis) {
		return ""
	}

	return syntax.Print(recv)
}
