// Package passes holds the rewrite passes that move test code from the
// sinon mocking API onto jest. Each pass mutates the tree in place and is a
// no-op when nothing matches.
package passes

import (
	"log/slog"

	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// Options tune individual passes.
type Options struct {
	// SandboxFactory is the name of the function creating a sandbox.
	SandboxFactory string
	// SandboxModule is the module SandboxFactory is imported from.
	SandboxModule string
	// ExactThrice maps calledThrice to an exact count of 3 instead of a
	// plain "was called" assertion.
	ExactThrice bool
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		SandboxFactory: "createSandbox",
		SandboxModule:  "bolt/tests/utils/sandbox",
	}
}

// Context is the per-file state shared by the passes of one pipeline run.
type Context struct {
	Root    *syntax.Node
	Import  *syntax.Import
	Options Options
	Logger  *slog.Logger

	// SandboxNames collects receivers bound to a sandbox so later passes
	// leave their methods alone.
	SandboxNames map[string]bool
	// TimerNames collects receivers bound to a fake-timer handle.
	TimerNames map[string]bool

	scopes *syntax.ScopeTable
}

// NewContext prepares a context for one file.
func NewContext(root *syntax.Node, imp *syntax.Import, opts Options, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}

	return &Context{
		Root:         root,
		Import:       imp,
		Options:      opts,
		Logger:       logger,
		SandboxNames: map[string]bool{},
		TimerNames:   map[string]bool{},
	}
}

// Alias is the local name of the source module's default or namespace import.
func (c *Context) Alias() string {
	return c.Import.Alias()
}

// Named returns the local name of a named source import, or "".
func (c *Context) Named(name string) string {
	return c.Import.Local(name)
}

// Scopes returns the scope table, rebuilding it after tree changes made by
// earlier passes.
func (c *Context) Scopes() *syntax.ScopeTable {
	if c.scopes == nil {
		c.scopes = syntax.BuildScopes(c.Root)
	}

	return c.scopes
}

// Invalidate drops cached analyses after a structural change.
func (c *Context) Invalidate() {
	c.scopes = nil
}

// Live reports whether n is still part of the tree. Nodes collected before
// a rewrite may have been replaced along with an ancestor.
func (c *Context) Live(n *syntax.Node) bool {
	return n.Attached(c.Root)
}

func (c *Context) debug(pass, msg string, n *syntax.Node) {
	c.Logger.Debug(msg, "pass", pass, "node", syntax.Print(n))
}

// Import is a named binding a rewrite introduced a reference to.
type Import struct {
	Module string
	Name   string
}

// Result reports what one pass did.
type Result struct {
	Mutations int
	// Imports are bindings to add where the source import used to be.
	Imports []Import
}

func (r *Result) count(n int) {
	r.Mutations += n
}

// Pass is one named rewrite step.
type Pass struct {
	Name string
	Run  func(ctx *Context) (Result, error)
}

// All returns the passes in their required order. Later passes rely on
// shapes produced by earlier ones:
//   - boolean-chain reduces .be.true to .eq(true) before call-count and
//     called-with read assertion polarity;
//   - sandbox consumes sandbox.stub(...) before stub looks for stub calls
//     and turns sandbox.restore() into dispose() before resets runs;
//   - timers rewrites clock.restore() before resets treats .restore() as a
//     mock reset;
//   - stub-returns consumes withArgs(...).returns(...) on stubs before
//     call-count rewrites withArgs inside assertions, and reads sinon
//     matchers before match translates them;
//   - call-count turns spy.withArgs(...).called into spy.calledWith(...)
//     for called-with;
//   - calls runs last so its .args fold sees every mock.calls hop.
func All() []Pass {
	return []Pass{
		{Name: "boolean-chain", Run: BooleanChain},
		{Name: "sandbox", Run: Sandbox},
		{Name: "stub", Run: Stub},
		{Name: "resolves", Run: Resolves},
		{Name: "timers", Run: Timers},
		{Name: "stub-returns", Run: StubReturns},
		{Name: "resets", Run: Resets},
		{Name: "assert", Run: Assert},
		{Name: "call-count", Run: CallCount},
		{Name: "called-with", Run: CalledWith},
		{Name: "match", Run: Match},
		{Name: "calls", Run: Calls},
	}
}
