package domain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockshift.dev/pkg/mockshift/internal/domain/passes"
	m "mockshift.dev/pkg/mockshift/internal/model"
	"mockshift.dev/pkg/mockshift/internal/syntax"
)

func migrateSource(t *testing.T, path, src string, list ...passes.Pass) (string, Outcome) {
	t.Helper()

	root, err := syntax.Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)

	out, err := NewPipeline(DefaultPipelineOptions(), list...).Run(context.Background(), m.Path(path), root)
	require.NoError(t, err)

	return syntax.Print(root), out
}

func TestPipeline_Migrations(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "call count assertions",
			src: `import sinon from 'sinon';
const spy = sinon.spy();
expect(spy.calledOnce).to.be.true;
expect(spy.called).to.be.false;
`,
			want: `const spy = jest.fn();
expect(spy).toHaveBeenCalledTimes(1);
expect(spy).not.toHaveBeenCalled();
`,
		},
		{
			name: "negated falsy expectation cancels out",
			src: `import sinon from 'sinon';
const spy = sinon.spy();
expect(spy.called).to.not.be.false;
`,
			want: `const spy = jest.fn();
expect(spy).toHaveBeenCalled();
`,
		},
		{
			name: "narrowed overloads fold into one implementation",
			src: `import sinon from 'sinon';
const stub = sinon.stub();
stub.withArgs(1, 2).returns('a');
stub.withArgs(1, 3).returns('b');
`,
			want: `const stub = jest.fn();
stub.mockImplementation((...args) => { if (args[0] === 1 && args[1] === 2) return 'a'; if (args[0] === 1 && args[1] === 3) return 'b'; });
`,
		},
		{
			name: "behavior setters",
			src: `import sinon from 'sinon';
const stub = sinon.stub();
stub.returns(5);
stub.resolves(1);
stub.throws('TypeError');
stub.returnsArg(1);
`,
			want: `const stub = jest.fn();
stub.mockReturnValue(5);
stub.mockResolvedValue(1);
stub.mockImplementation(() => { throw new Error('TypeError'); });
stub.mockImplementation((...args) => args[1]);
`,
		},
		{
			name: "call history",
			src: `import sinon from 'sinon';
const stub = sinon.stub();
expect(stub.getCall(0).args[1]).toBe(2);
expect(stub.firstCall.args[0]).toBe(1);
expect(stub.callCount).toBe(2);
`,
			want: `const stub = jest.fn();
expect(stub.mock.calls[0][1]).toBe(2);
expect(stub.mock.calls[0][0]).toBe(1);
expect(stub).toHaveBeenCalledTimes(2);
`,
		},
		{
			name: "assert family",
			src: `import sinon from 'sinon';
const spy = sinon.spy();
sinon.assert.calledOnce(spy);
sinon.assert.calledWith(spy, 1, 'a');
sinon.assert.notCalled(spy);
sinon.assert.calledWithMatch(spy, { id: 1 });
`,
			want: `const spy = jest.fn();
expect(spy).toHaveBeenCalledTimes(1);
expect(spy).toHaveBeenCalledWith(1, 'a');
expect(spy).not.toHaveBeenCalled();
expect(spy).toHaveBeenCalledWith(expect.objectContaining({ id: 1 }));
`,
		},
		{
			name: "argument matchers",
			src: `import sinon from 'sinon';
const spy = sinon.spy();
sinon.assert.calledWith(spy, sinon.match.number, sinon.match({ id: 1 }), sinon.match('part'), sinon.match.instanceOf(Error), sinon.match.defined);
`,
			want: `const spy = jest.fn();
expect(spy).toHaveBeenCalledWith(expect.any(Number), expect.objectContaining({ id: 1 }), expect.stringContaining('part'), expect.any(Error), expect.anything());
`,
		},
		{
			name: "narrowed subject in called assertion",
			src: `import sinon from 'sinon';
const spy = sinon.spy();
expect(spy.withArgs(1).called).to.be.true;
`,
			want: `const spy = jest.fn();
expect(spy).toHaveBeenCalledWith(1);
`,
		},
		{
			name: "root and mock resets",
			src: `import sinon from 'sinon';
const stub = sinon.stub();
stub.resetHistory();
sinon.restore();
`,
			want: `const stub = jest.fn();
stub.mockClear();
jest.restoreAllMocks();
`,
		},
		{
			name: "fake timers",
			src: `import sinon from 'sinon';

let clock;
beforeEach(() => {
  clock = sinon.useFakeTimers(1000);
});
afterEach(() => {
  clock.restore();
});
it('ticks', () => {
  clock.tick(100);
});
`,
			want: `beforeEach(() => {
  jest.useFakeTimers();
  jest.setSystemTime(1000);
});
afterEach(() => {
  jest.useRealTimers();
});
it('ticks', () => {
  jest.advanceTimersByTime(100);
});
`,
		},
		{
			name: "sandbox",
			src: `import sinon from 'sinon';

describe('thing', () => {
  let sandbox;
  beforeEach(() => {
    sandbox = sinon.createSandbox();
  });
  afterEach(() => {
    sandbox.restore();
  });
  it('works', () => {
    const fn = sandbox.stub();
  });
});
`,
			want: `import { createSandbox } from 'bolt/tests/utils/sandbox';

describe('thing', () => {
  let sandbox;
  beforeEach(() => {
    sandbox = createSandbox({ autoCleanup: false });
  });
  afterEach(() => {
    sandbox.dispose();
  });
  it('works', () => {
    const fn = jest.fn();
  });
});
`,
		},
		{
			name: "named imports and jest-when",
			src: `import { match, stub } from 'sinon';
const s = stub();
expect(s).toHaveBeenCalledWith(match.any);
`,
			want: `import { when } from 'jest-when';
const s = jest.fn();
expect(s).toHaveBeenCalledWith(when(() => true));
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, out := migrateSource(t, "thing.test.ts", tt.src)

			assert.Equal(t, tt.want, got)
			assert.True(t, out.Imported)
			assert.True(t, out.Changed())
			assert.Empty(t, out.Diagnostics)
		})
	}
}

func TestPipeline_MockConstruction(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "method stubs spy on the object",
			src: `import sinon from 'sinon';
sinon.stub(api, 'load');
sinon.replaceGetter(api, 'ready', () => true);
sinon.stub(api, 'save', () => 2);
sinon.stub(api, 'drop').returns(1);
`,
			want: `jest.spyOn(api, 'load').mockClear().mockImplementation(() => undefined);
jest.spyOn(api, 'ready', 'get').mockClear().mockImplementation(() => true);
jest.spyOn(api, 'save').mockClear().mockImplementation(() => 2);
jest.spyOn(api, 'drop').mockClear().mockReturnValue(1);
`,
		},
		{
			name: "sandbox methods stay inside the declaring scope",
			src: `import sinon from 'sinon';

describe('a', () => {
  let sandbox;
  beforeEach(() => {
    sandbox = sinon.createSandbox();
  });
  it('stubs', () => {
    sandbox.stub(api, 'load', () => 1);
    const mock = sandbox.mock(api);
    mock.expects('save').once();
  });
});

describe('b', () => {
  const sandbox = makeSandbox();
  it('keeps', () => {
    sandbox.spy(api, 'load');
    sandbox.stub();
  });
});
`,
			want: `import { createSandbox } from 'bolt/tests/utils/sandbox';

describe('a', () => {
  let sandbox;
  beforeEach(() => {
    sandbox = createSandbox({ autoCleanup: false });
  });
  it('stubs', () => {
    sandbox.stub(api, 'load').mockImplementation(() => 1);
    const mock = sandbox.stubAll(api);
    mock.save;
  });
});

describe('b', () => {
  const sandbox = makeSandbox();
  it('keeps', () => {
    sandbox.spy(api, 'load');
    sandbox.stub();
  });
});
`,
		},
		{
			name: "call history accessors",
			src: `import sinon from 'sinon';
const stub = sinon.stub();
const all = stub.getCalls();
expect(stub.lastCall.args[0]).toBe(1);
expect(stub.getCall(0)).toBeDefined();
`,
			want: `const stub = jest.fn();
const all = stub.mock.calls;
expect(stub.mock.lastCall[0]).toBe(1);
expect(stub.mock.calls[0]).toBeDefined();
`,
		},
		{
			name: "timer handle methods",
			src: `import sinon from 'sinon';
it('ticks', async () => {
  const clock = sinon.useFakeTimers(new Date(2020, 0, 1));
  await clock.tickAsync(10);
  clock.next();
  clock.runAll();
  await clock.runAllAsync();
  clock.runToLast();
  clock.setSystemTime(5);
  clock.uninstall();
});
`,
			want: `it('ticks', async () => {
  jest.useFakeTimers();
  jest.setSystemTime(new Date(2020, 0, 1));
  await jest.advanceTimersByTimeAsync(10);
  jest.advanceTimersToNextTimer();
  jest.runAllTimers();
  await jest.runAllTimersAsync();
  jest.runOnlyPendingTimers();
  jest.setSystemTime(5);
  jest.useRealTimers();
});
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, out := migrateSource(t, "thing.test.ts", tt.src)

			assert.Equal(t, tt.want, got)
			assert.True(t, out.Imported)
			assert.Empty(t, out.Diagnostics)
		})
	}
}

func TestPipeline_CountsRewritesPerPass(t *testing.T) {
	src := `import sinon from 'sinon';
const stub = sinon.stub();
stub.withArgs(1, 2).returns('a');
stub.withArgs(1, 3).returns('b');
`

	_, out := migrateSource(t, "thing.test.js", src)

	assert.Equal(t, 1, out.PassMutations["stub"])
	assert.Equal(t, 2, out.PassMutations["stub-returns"])
	assert.Equal(t, 3, out.Mutations)
}

func TestPipeline_LeavesOtherFilesUntouched(t *testing.T) {
	src := `import { render } from '@testing-library/react';

// stub.returns(1) is not ours to touch
const stub = makeStub();
stub.returns(1);
`

	got, out := migrateSource(t, "thing.test.tsx", src)

	assert.Equal(t, src, got)
	assert.False(t, out.Imported)
	assert.False(t, out.Changed())
	assert.Zero(t, out.Mutations)
}

func TestPipeline_IsIdempotent(t *testing.T) {
	src := `const sinon = require('sinon');
const spy = sinon.spy();
expect(spy.calledTwice).to.be.true;
`

	first, out := migrateSource(t, "thing.test.js", src)
	require.True(t, out.Imported)
	assert.Equal(t, "const spy = jest.fn();\nexpect(spy).toHaveBeenCalledTimes(2);\n", first)

	second, out := migrateSource(t, "thing.test.js", first)
	assert.False(t, out.Imported)
	assert.Equal(t, first, second)
}

func TestPipeline_PreservesComments(t *testing.T) {
	src := `import sinon from 'sinon';
// the spy under test
const spy = sinon.spy(); /* inline */
expect(spy.called).to.be.true; // trailing
`

	got, _ := migrateSource(t, "thing.test.ts", src)

	assert.Contains(t, got, "// the spy under test\n")
	assert.Contains(t, got, "const spy = jest.fn(); /* inline */\n")
	assert.Contains(t, got, "expect(spy).toHaveBeenCalled(); // trailing\n")
	assert.NotContains(t, got, "sinon")
}

func TestPipeline_StrictImport(t *testing.T) {
	root, err := syntax.Parse(context.Background(), "a.test.js", []byte("foo();\n"))
	require.NoError(t, err)

	opts := DefaultPipelineOptions()
	opts.StrictImport = true

	_, err = NewPipeline(opts).Run(context.Background(), "a.test.js", root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceNotImported)
	assert.Contains(t, err.Error(), "a.test.js")
}

func TestPipeline_CanceledContext(t *testing.T) {
	root, err := syntax.Parse(context.Background(), "a.test.js", []byte("import sinon from 'sinon';\n"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewPipeline(DefaultPipelineOptions()).Run(ctx, "a.test.js", root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_FailingPassBecomesDiagnostic(t *testing.T) {
	src := "import sinon from 'sinon';\nconst spy = sinon.spy();\n"

	list := []passes.Pass{
		{Name: "boom", Run: func(*passes.Context) (passes.Result, error) {
			panic("unexpected node")
		}},
		{Name: "broken", Run: func(*passes.Context) (passes.Result, error) {
			return passes.Result{}, errors.New("cannot rewrite")
		}},
		{Name: "stub", Run: passes.Stub},
	}

	got, out := migrateSource(t, "thing.test.js", src, list...)

	assert.Equal(t, "const spy = jest.fn();\n", got)
	require.Len(t, out.Diagnostics, 2)
	assert.Equal(t, "boom", out.Diagnostics[0].Pass)
	assert.Contains(t, out.Diagnostics[0].Message, "panic: unexpected node")
	assert.Equal(t, m.Path("thing.test.js"), out.Diagnostics[0].Path)
	assert.Equal(t, "broken", out.Diagnostics[1].Pass)
	assert.Equal(t, "pass broken: cannot rewrite", out.Diagnostics[1].Message)
	assert.Equal(t, 1, out.Mutations)
}

func TestPassError(t *testing.T) {
	cause := errors.New("bad shape")
	err := error(&PassError{Pass: "calls", Err: cause})

	assert.Equal(t, "pass calls: bad shape", err.Error())
	assert.ErrorIs(t, err, cause)

	var pe *PassError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "calls", pe.Pass)
}

func TestImportStatements(t *testing.T) {
	root, err := syntax.Parse(context.Background(), "a.test.js", []byte("import { c } from 'm1';\n"))
	require.NoError(t, err)

	stmts := importStatements(root, []passes.Import{
		{Module: "m1", Name: "a"},
		{Module: "m2", Name: "b"},
		{Module: "m1", Name: "a"},
		{Module: "m1", Name: "c"},
		{Module: "m1", Name: "d"},
	})

	got := make([]string, 0, len(stmts))
	for _, s := range stmts {
		got = append(got, syntax.Print(s))
	}

	assert.Equal(t, []string{
		"import { a, d } from 'm1';",
		"import { b } from 'm2';",
	}, got)
}

func TestPipelineState_String(t *testing.T) {
	states := []pipelineState{stateInit, stateDetect, stateRunning, stateImportCleanup, stateDone}

	var names []string
	for _, s := range states {
		names = append(names, s.String())
	}

	assert.Equal(t, "init detect running import-cleanup done", strings.Join(names, " "))
	assert.Equal(t, "unknown", pipelineState(42).String())
}
