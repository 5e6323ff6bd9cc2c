package syntax

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, path, src string) *Node {
	t.Helper()

	root, err := Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)
	require.NotNil(t, root)

	return root
}

func first(t *testing.T, root *Node, pred func(*Node) bool) *Node {
	t.Helper()

	found := Find(root, pred)
	require.NotEmpty(t, found)

	return found[0]
}

func TestLanguageFor(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"a.js", LanguageJavaScript},
		{"a.jsx", LanguageJavaScript},
		{"a.mjs", LanguageJavaScript},
		{"a.cjs", LanguageJavaScript},
		{"a.ts", LanguageTypeScript},
		{"a.mts", LanguageTypeScript},
		{"A.TSX", LanguageTSX},
	}

	for _, tt := range tests {
		got, err := LanguageFor(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}

	_, err := LanguageFor("main.go")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestParse_Unsupported(t *testing.T) {
	_, err := Parse(context.Background(), "style.css", []byte("a {}"))
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestParse_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		path string
		src  string
	}{
		{
			name: "comments and blank lines",
			path: "a.test.js",
			src: `// header
import sinon from 'sinon'; // trailing

/* block */
const spy = sinon.spy(  );


it("works",   () => {
  expect(spy.called).to.be.true;
});
`,
		},
		{
			name: "templates and regex",
			path: "a.test.js",
			src:  "const s = `a ${b + 1} c`;\nconst r = /ab+c/gi.test(s);\n",
		},
		{
			name: "typescript annotations",
			path: "a.test.ts",
			src: `interface Thing { id: number }
const stub: jest.Mock<Thing> = sinon.stub() as any;
class Foo<T> {
  private x?: T;
  method(a: string, b = 2): void {}
}
`,
		},
		{
			name: "jsx",
			path: "a.test.tsx",
			src:  "const el = <Button onClick={() => spy()}>Click me</Button>;\n",
		},
		{
			name: "syntax error",
			path: "a.test.js",
			src:  "foo(1;\nbar();\n",
		},
		{
			name: "no trailing newline",
			path: "a.test.js",
			src:  "foo()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustParse(t, tt.path, tt.src)

			assert.Equal(t, KindProgram, root.Kind)
			assert.Equal(t, tt.src, Print(root))
		})
	}
}

func TestParse_Kinds(t *testing.T) {
	root := mustParse(t, "a.test.js", "stub.withArgs(1).returns('x', true);\n")

	call := first(t, root, func(n *Node) bool { return n.MethodName() == "returns" })

	assert.Equal(t, KindCall, call.Kind)
	assert.Equal(t, "returns", call.MethodName())
	assert.Equal(t, "withArgs", call.Receiver().MethodName())
	assert.True(t, call.Receiver().Receiver().IsIdent("stub"))

	args := call.Args()
	require.Len(t, args, 2)

	s, ok := args[0].StringValue()
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	v, ok := args[1].BoolValue()
	assert.True(t, ok)
	assert.True(t, v)
	assert.True(t, args[1].IsLiteral())

	stmt := call.Closest(KindExpressionStatement)
	require.NotNil(t, stmt)
	assert.Equal(t, root, stmt.Parent)
	assert.True(t, call.Attached(root))
}

func TestParse_Operators(t *testing.T) {
	root := mustParse(t, "a.test.js", "var a = typeof x === 'string';\n")

	decl := root.Children[0]
	assert.Equal(t, KindVarDecl, decl.Kind)
	assert.Equal(t, "var", decl.Op)

	bin := first(t, root, func(n *Node) bool { return n.Is(KindBinary) })
	assert.Equal(t, "===", bin.Op)
	assert.Equal(t, "typeof", bin.Get(FieldLeft).Op)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "call", KindCall.String())
	assert.Equal(t, "member", KindMember.String())
	assert.Equal(t, "unknown", Kind(999).String())
}
