package passes

import (
	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// sandboxBinding is a receiver a sandbox was assigned to, and the subtree
// its uses are searched in.
type sandboxBinding struct {
	key   string
	ident *syntax.Node
	scope *syntax.Scope
	area  *syntax.Node
}

// Sandbox replaces sandbox construction with the configured factory and
// rewrites the methods called on each sandbox inside the scope that
// declares it.
func Sandbox(ctx *Context) (Result, error) {
	var res Result

	created := replaceSandboxConstruction(ctx, &res)
	if len(created) == 0 {
		return res, nil
	}

	res.Imports = append(res.Imports, Import{Module: ctx.Options.SandboxModule, Name: ctx.Options.SandboxFactory})

	type bindingID struct {
		key   string
		scope *syntax.Scope
	}

	seen := map[bindingID]bool{}

	for _, call := range created {
		b := sandboxBindingOf(ctx, call)
		if b == nil {
			continue
		}

		id := bindingID{key: b.key, scope: b.scope}
		if seen[id] {
			continue
		}

		seen[id] = true
		ctx.SandboxNames[b.key] = true

		replaceSandboxMethods(ctx, b, &res)
		foldObjectExpectations(ctx, b.area, &res)
	}

	return res, nil
}

var sandboxFactories = set("createSandbox")

func isSandboxConstruction(ctx *Context, n *syntax.Node) bool {
	alias := ctx.Alias()

	if IsMethodCall(n, alias, sandboxFactories) {
		return true
	}

	if IsCallOf(n, ctx.Named("createSandbox")) {
		return true
	}

	// sinon.sandbox.create()
	callee := n.Callee()

	return n.Is(syntax.KindCall) && callee.Property() == "create" && IsMember(callee.Object(), alias, "sandbox")
}

func replaceSandboxConstruction(ctx *Context, res *Result) []*syntax.Node {
	var created []*syntax.Node

	for _, n := range syntax.Find(ctx.Root, func(n *syntax.Node) bool { return isSandboxConstruction(ctx, n) }) {
		if !ctx.Live(n) {
			continue
		}

		var args []*syntax.Node
		if insideBeforeEach(n) {
			args = append(args, syntax.Object(syntax.Pair("autoCleanup", syntax.Bool(false))))
		}

		call := syntax.Call(syntax.Ident(ctx.Options.SandboxFactory), args...)
		if syntax.Replace(n, call) {
			ctx.debug("sandbox", "replaced sandbox construction", call)
			res.count(1)

			created = append(created, call)
		}
	}

	return created
}

func insideBeforeEach(n *syntax.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if IsCallOf(p, "beforeEach") {
			return true
		}
	}

	return false
}

func sandboxBindingOf(ctx *Context, call *syntax.Node) *sandboxBinding {
	var target *syntax.Node

	parent := call.Parent

	switch {
	case parent.Is(syntax.KindDeclarator) && call.Field == syntax.FieldValue:
		target = parent.Get(syntax.FieldName)
	case parent.Is(syntax.KindAssignment) && call.Field == syntax.FieldRight:
		target = parent.Get(syntax.FieldLeft)
	default:
		return nil
	}

	if target.Is(syntax.KindIdentifier) {
		scopes := ctx.Scopes()
		scope := scopes.DeclaringScope(target)

		area := ctx.Root
		if scope != nil {
			area = scopes.Restrict(scope)
		}

		return &sandboxBinding{key: target.Text, ident: target, scope: scope, area: area}
	}

	if target.Is(syntax.KindMember) {
		return &sandboxBinding{key: syntax.Print(target), area: ctx.Root}
	}

	return nil
}

func (b *sandboxBinding) owns(ctx *Context, call *syntax.Node) bool {
	if ReceiverKey(call) != b.key {
		return false
	}

	if b.ident == nil {
		return true
	}

	// A nested declaration of the same name shadows the sandbox.
	return ctx.Scopes().DeclaringScope(call.Receiver()) == b.scope
}

func replaceSandboxMethods(ctx *Context, b *sandboxBinding, res *Result) {
	calls := syntax.Find(b.area, func(n *syntax.Node) bool {
		return n.Is(syntax.KindCall) && sandboxMethods[n.MethodName()] != "" && b.owns(ctx, n)
	})

	for _, call := range calls {
		if !ctx.Live(call) {
			continue
		}

		method := call.MethodName()
		target := sandboxMethods[method]
		args := call.Args()

		switch {
		case len(args) == 0 && sandboxConstructors[method]:
			if syntax.Replace(call, JestCall("fn")) {
				res.count(1)
			}
		case len(args) > 2:
			recv := call.Receiver()
			impl := args[len(args)-1]
			repl := syntax.MethodCall(syntax.MethodCall(recv, target, args[0], args[1]), "mockImplementation", impl)

			if syntax.Replace(call, repl) {
				res.count(1)
			}
		case method != target:
			syntax.Rename(call.Callee().Get(syntax.FieldProperty), target)
			res.count(1)
		default:
			continue
		}

		ctx.debug("sandbox", "rewrote sandbox method", call)
	}
}

// foldObjectExpectations turns mock.expects('save').once() into
// mock.expects('save') and then into mock.save.
func foldObjectExpectations(ctx *Context, area *syntax.Node, res *Result) {
	once := syntax.Find(area, func(n *syntax.Node) bool {
		return n.Is(syntax.KindCall) && n.MethodName() == "once" && n.Receiver().MethodName() == "expects"
	})

	for _, call := range once {
		if ctx.Live(call) && syntax.Replace(call, call.Receiver()) {
			res.count(1)
		}
	}

	expects := syntax.Find(area, func(n *syntax.Node) bool {
		return n.Is(syntax.KindCall) && n.MethodName() == "expects" && n.Receiver().Is(syntax.KindIdentifier)
	})

	for _, call := range expects {
		args := call.Args()
		if !ctx.Live(call) || len(args) != 1 {
			continue
		}

		name, ok := args[0].StringValue()
		if !ok {
			continue
		}

		var repl *syntax.Node
		if isIdentifierName(name) {
			repl = syntax.Member(call.Receiver(), name)
		} else {
			repl = syntax.Index(call.Receiver(), args[0])
		}

		if syntax.Replace(call, repl) {
			ctx.debug("sandbox", "folded mock expectation", repl)
			res.count(1)
		}
	}
}

func isIdentifierName(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		letter := r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !letter && (i == 0 || r < '0' || r > '9') {
			return false
		}
	}

	return true
}
