package adapter

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	m "mockshift.dev/pkg/mockshift/internal/model"
)

// DiffAdapter renders the change made to a file.
type DiffAdapter interface {
	Unified(path m.Path, before, after []byte) (string, error)
}

// LocalDiffAdapter renders unified diffs with go-difflib.
type LocalDiffAdapter struct {
	context int
}

// NewLocalDiffAdapter constructs a LocalDiffAdapter with three lines of context.
func NewLocalDiffAdapter() *LocalDiffAdapter {
	return &LocalDiffAdapter{context: 3}
}

// Unified returns a unified diff between before and after, or "" when the
// two are identical.
func (a *LocalDiffAdapter) Unified(path m.Path, before, after []byte) (string, error) {
	if string(before) == string(after) {
		return "", nil
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + string(path),
		ToFile:   "b/" + string(path),
		Context:  a.context,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", path, err)
	}

	return text, nil
}
