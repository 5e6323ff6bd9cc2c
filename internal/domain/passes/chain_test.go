package passes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// newTestContext parses src as a test file importing the source module
// under its default name.
func newTestContext(t *testing.T, src string) *Context {
	t.Helper()

	root, err := syntax.Parse(context.Background(), "a.test.js", []byte(src))
	require.NoError(t, err)

	return NewContext(root, syntax.FindImport(root, "sinon"), DefaultOptions(), nil)
}

// expr parses a single expression statement and returns its expression.
func expr(t *testing.T, src string) *syntax.Node {
	t.Helper()

	ctx := newTestContext(t, src+";\n")
	require.NotEmpty(t, ctx.Root.Children)

	stmt := ctx.Root.Children[0]
	require.Equal(t, syntax.KindExpressionStatement, stmt.Kind)
	require.NotEmpty(t, stmt.Children)

	return stmt.Children[0]
}

func linkNames(links []Link) []string {
	names := make([]string, 0, len(links))
	for _, l := range links {
		names = append(names, l.Name)
	}

	return names
}

func TestChain(t *testing.T) {
	links, root := Chain(expr(t, "expect(x).to.not.be(true)"), nil)

	assert.Equal(t, []string{"to", "not", "be"}, linkNames(links))
	assert.False(t, links[0].Call)
	assert.True(t, links[2].Call)
	assert.True(t, IsExpectCall(root))
}

func TestChain_StopsAtPredicate(t *testing.T) {
	e := expr(t, "stub.getCall(0).args[1]")

	links, root := Chain(e, func(n *syntax.Node) bool { return n.Is(syntax.KindCall) })

	assert.Equal(t, []string{"args"}, linkNames(links))
	assert.Equal(t, "getCall", root.MethodName())
}

func TestChainContains(t *testing.T) {
	tests := []struct {
		name string
		src  string
		link string
		stop func(Link) bool
		want bool
	}{
		{"present", "expect(x).to.not.be(true)", "not", nil, true},
		{"absent", "expect(x).to.be(true)", "not", nil, false},
		{"stopped before reaching", "expect(x).to.not.be(true)", "to", func(l Link) bool { return l.Name == "not" }, false},
		{"arguments are not entered", "expect(a.not).to.be(true)", "not", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChainContains(tt.link, expr(t, tt.src), tt.stop))
		})
	}
}

func TestLinksBefore(t *testing.T) {
	assert.Equal(t, []string{"deep"}, LinksBefore(isExpectPrefix, expr(t, "expect(x).deep.to.equal(1)"), ""))
	assert.Equal(t, []string{"fallback"}, LinksBefore(isExpectPrefix, expr(t, "a.b.c()"), "fallback"))
	assert.Nil(t, LinksBefore(isExpectPrefix, expr(t, "a.b.c()"), ""))
	assert.Empty(t, LinksBefore(isExpectPrefix, expr(t, "expect(x).to.be(1)"), "fallback"))
}

func TestChainHas(t *testing.T) {
	e := expr(t, "stub.withArgs(1).returns(2)")

	assert.True(t, ChainHas(e, "withArgs"))
	assert.True(t, ChainHas(e, "foo", "returns"))
	assert.False(t, ChainHas(e, "foo"))
}

func TestRootIdent(t *testing.T) {
	assert.True(t, RootIdent(expr(t, "stub.getCall(0).args[1]")).IsIdent("stub"))
	assert.Equal(t, syntax.KindThis, RootIdent(expr(t, "this.clock.tick(1)")).Kind)
	assert.Nil(t, RootIdent(expr(t, "(a || b).c")))
}
