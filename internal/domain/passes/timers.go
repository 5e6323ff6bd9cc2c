package passes

import (
	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// defaultTimerName is treated as a fake-timer handle even when the binding
// that created it is out of sight, e.g. in a shared setup file.
const defaultTimerName = "clock"

// Timers replaces fake-timer installation with jest.useFakeTimers() and
// turns calls on the returned handle into the matching jest timer calls:
//
//	const clock = sinon.useFakeTimers(now); -> jest.useFakeTimers(); jest.setSystemTime(now);
//	clock.tick(100);                        -> jest.advanceTimersByTime(100);
//	clock.restore();                        -> jest.useRealTimers();
func Timers(ctx *Context) (Result, error) {
	var res Result

	ctx.TimerNames[defaultTimerName] = true

	installs := syntax.Find(ctx.Root, func(n *syntax.Node) bool { return isTimerInstall(ctx, n) })
	for _, call := range installs {
		if !ctx.Live(call) {
			continue
		}

		if key := replaceTimerInstall(ctx, call); key != "" {
			ctx.TimerNames[key] = true
		}

		res.count(1)
	}

	if len(installs) > 0 {
		ctx.Invalidate()
	}

	handles := syntax.Find(ctx.Root, func(n *syntax.Node) bool {
		_, ok := timerMethods[n.MethodName()]
		return ok && n.Is(syntax.KindCall) && isTimerHandle(ctx, n.Receiver())
	})

	for _, call := range handles {
		if !ctx.Live(call) {
			continue
		}

		repl := JestCall(timerMethods[call.MethodName()], call.Args()...)
		if syntax.Replace(call, repl) {
			ctx.debug("timers", "rewrote timer call", repl)
			res.count(1)
		}
	}

	return res, nil
}

func isTimerInstall(ctx *Context, n *syntax.Node) bool {
	if IsCallOf(n, ctx.Named("useFakeTimers")) {
		return true
	}

	if !n.Is(syntax.KindCall) || n.MethodName() != "useFakeTimers" {
		return false
	}

	if alias := ctx.Alias(); alias != "" && n.Receiver().IsIdent(alias) {
		return true
	}

	return ctx.SandboxNames[ReceiverKey(n)]
}

func isTimerHandle(ctx *Context, recv *syntax.Node) bool {
	if !recv.Is(syntax.KindIdentifier, syntax.KindMember) {
		return false
	}

	if recv.Is(syntax.KindMember) && recv.Property() == defaultTimerName {
		return true
	}

	return ctx.TimerNames[syntax.Print(recv)]
}

// timerStatements builds jest.useFakeTimers() and, for an initial time,
// jest.setSystemTime(now).
func timerStatements(args []*syntax.Node) []*syntax.Node {
	stmts := []*syntax.Node{syntax.Stmt(JestCall("useFakeTimers"))}

	if now := initialTime(args); now != nil {
		stmts = append(stmts, syntax.Stmt(JestCall("setSystemTime", now)))
	}

	return stmts
}

// initialTime extracts the clock start from useFakeTimers(now) or
// useFakeTimers({ now }).
func initialTime(args []*syntax.Node) *syntax.Node {
	if len(args) == 0 {
		return nil
	}

	if !args[0].Is(syntax.KindObject) {
		return args[0]
	}

	for _, pair := range args[0].Children {
		if pair.Is(syntax.KindPair) && pair.Get(syntax.FieldKey).Name() == "now" {
			return pair.Get(syntax.FieldValue)
		}
	}

	return nil
}

// replaceTimerInstall rewrites one useFakeTimers call and returns the
// receiver key its handle was bound to, if any.
func replaceTimerInstall(ctx *Context, call *syntax.Node) string {
	parent := call.Parent
	args := call.Args()

	switch {
	case parent.Is(syntax.KindExpressionStatement):
		replaceStatement(parent, timerStatements(args))
	case parent.Is(syntax.KindAssignment) && parent.Parent.Is(syntax.KindExpressionStatement):
		target := parent.Get(syntax.FieldLeft)
		key := syntax.Print(target)

		if target.Is(syntax.KindIdentifier) {
			removeBareDeclaration(ctx, target)
		}

		replaceStatement(parent.Parent, timerStatements(args))

		return key
	case parent.Is(syntax.KindDeclarator) && parent.Parent.Is(syntax.KindVarDecl):
		key := syntax.Print(parent.Get(syntax.FieldName))
		decl := parent.Parent

		if len(decl.Children) == 1 {
			replaceStatement(decl, timerStatements(args))
			return key
		}

		anchor := decl
		for _, stmt := range timerStatements(args) {
			syntax.InsertAfter(anchor, stmt)
			anchor = stmt
		}

		syntax.Remove(parent)

		return key
	default:
		// Installed inside a larger expression: keep it an expression.
		var opts []*syntax.Node
		if now := initialTime(args); now != nil {
			opts = append(opts, syntax.Object(syntax.Pair("now", now)))
		}

		syntax.Replace(call, JestCall("useFakeTimers", opts...))
	}

	return ""
}

// replaceStatement puts stmts where old was.
func replaceStatement(old *syntax.Node, stmts []*syntax.Node) {
	if !syntax.Replace(old, stmts[0]) {
		return
	}

	anchor := stmts[0]
	for _, stmt := range stmts[1:] {
		syntax.InsertAfter(anchor, stmt)
		anchor = stmt
	}
}

// removeBareDeclaration drops `let clock;` once the handle it declared is
// no longer assigned.
func removeBareDeclaration(ctx *Context, ident *syntax.Node) {
	scope := ctx.Scopes().DeclaringScope(ident)
	if scope == nil {
		return
	}

	binding := scope.Binding(ident.Text)
	decl := binding.Parent

	if !decl.Is(syntax.KindDeclarator) || decl.Get(syntax.FieldValue) != nil || binding.Field != syntax.FieldName {
		return
	}

	syntax.Remove(decl)
}
