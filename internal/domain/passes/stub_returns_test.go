package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockshift.dev/pkg/mockshift/internal/syntax"
)

func TestStubReturns(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		mutations int
		want      string
	}{
		{
			name: "typed and arity matchers",
			src: `import sinon from 'sinon';
stub.withArgs(sinon.match.string, 1).returns('s');
stub.withArgs(sinon.match.any).returns('a');
`,
			mutations: 2,
			want: `import sinon from 'sinon';
stub.mockImplementation((...args) => { if (typeof args[0] === 'string' && args[1] === 1) return 's'; if (args.length >= 1) return 'a'; });
`,
		},
		{
			name: "overloads separated by other statements",
			src: `stub.withArgs(1).returns('a');
log();
stub.withArgs(2).throws('TypeError');
`,
			mutations: 2,
			want: `stub.mockImplementation((...args) => { if (args[0] === 1) return 'a'; if (args[0] === 2) throw new Error('TypeError'); });
log();
`,
		},
		{
			name: "overloads in different blocks stay apart",
			src: `it('a', () => {
  stub.withArgs(1).returns('a');
});
stub.withArgs(2).returns('b');
`,
			mutations: 2,
			want: `it('a', () => {
  stub.mockImplementation((...args) => { if (args[0] === 1) return 'a'; });
});
stub.mockImplementation((...args) => { if (args[0] === 2) return 'b'; });
`,
		},
		{
			name:      "narrowed returns without a value keeps the plain setter",
			src:       "stub.withArgs(1).returns();\n",
			mutations: 2,
			want:      "stub.mockReturnValue();\n",
		},
		{
			name:      "empty withArgs is dropped",
			src:       "stub.withArgs().returns(1);\n",
			mutations: 2,
			want:      "stub.mockReturnValue(1);\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(t, tt.src)

			res, err := StubReturns(ctx)
			require.NoError(t, err)

			assert.Equal(t, tt.mutations, res.Mutations)
			assert.Equal(t, tt.want, syntax.Print(ctx.Root))
		})
	}
}

func TestStubReturns_LeavesAssertionThrowsAlone(t *testing.T) {
	src := `import sinon from 'sinon';
import assert from 'assert';
const should = require('should');
assert.throws(() => parse(''), /empty/);
assert.throws(check);
should.throws(check);
t.throws(() => run());
stub.throws('TypeError');
`

	ctx := newTestContext(t, src)

	res, err := StubReturns(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Mutations)
	assert.Equal(t, `import sinon from 'sinon';
import assert from 'assert';
const should = require('should');
assert.throws(() => parse(''), /empty/);
assert.throws(check);
should.throws(check);
t.throws(() => run());
stub.mockImplementation(() => { throw new Error('TypeError'); });
`, syntax.Print(ctx.Root))
}
