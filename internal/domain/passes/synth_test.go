package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mockshift.dev/pkg/mockshift/internal/syntax"
)

func TestNewAssertion(t *testing.T) {
	tests := []struct {
		name    string
		leading []string
		negated bool
		target  string
		args    []*syntax.Node
		want    string
	}{
		{"plain", nil, false, "toHaveBeenCalled", nil, "expect(spy).toHaveBeenCalled()"},
		{"negated", nil, true, "toHaveBeenCalledTimes", []*syntax.Node{syntax.Num(2)}, "expect(spy).not.toHaveBeenCalledTimes(2)"},
		{"already negated", []string{"not"}, true, "toHaveBeenCalled", nil, "expect(spy).not.toHaveBeenCalled()"},
		{"leading links", []string{"resolves"}, true, "toBe", []*syntax.Node{syntax.Num(1)}, "expect(spy).resolves.not.toBe(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewAssertion(syntax.Ident("spy"), tt.leading, tt.negated, tt.target, tt.args...)
			assert.Equal(t, tt.want, syntax.Print(got))
		})
	}
}

func TestArgMatcherCondition(t *testing.T) {
	assert.Nil(t, ArgMatcherCondition(nil))

	cond := ArgMatcherCondition([]ArgMatcher{
		{Kind: MatchLiteral, Value: syntax.Num(1)},
		{Kind: MatchTyped, Tag: "string"},
		{Kind: MatchArity},
	})

	assert.Equal(t, "args[0] === 1 && typeof args[1] === 'string' && args.length >= 3", syntax.Print(cond))
}

func TestArgMatcherClosure(t *testing.T) {
	narrowed := ArgMatcherClosure([]ArgMatcher{{Kind: MatchLiteral, Value: syntax.Str("a")}}, syntax.Str("x"))
	assert.Equal(t, "(...args) => { if (args[0] === 'a') return 'x'; }", syntax.Print(narrowed))

	always := ArgMatcherClosure(nil, syntax.Num(1))
	assert.Equal(t, "(...args) => { return 1; }", syntax.Print(always))
}

func TestArgCasesClosure(t *testing.T) {
	closure := ArgCasesClosure([]ArgCase{
		{Matchers: []ArgMatcher{{Kind: MatchLiteral, Value: syntax.Num(1)}}, Result: syntax.Return(syntax.Str("one"))},
		{Matchers: []ArgMatcher{{Kind: MatchTyped, Tag: "number"}}, Result: syntax.Throw(syntax.Ident("err"))},
	})

	assert.Equal(t,
		"(...args) => { if (args[0] === 1) return 'one'; if (typeof args[0] === 'number') throw err; }",
		syntax.Print(closure))
}

func TestSmallBuilders(t *testing.T) {
	assert.Equal(t, "(...args) => args[1]", syntax.Print(ArgEcho(syntax.Num(1))))
	assert.Equal(t, "() => { throw new Error('boom'); }", syntax.Print(Thrower(syntax.New(syntax.Ident("Error"), syntax.Str("boom")))))
	assert.Equal(t, "jest.advanceTimersByTime(100)", syntax.Print(JestCall("advanceTimersByTime", syntax.Num(100))))
}
