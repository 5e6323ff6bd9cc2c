package adapter

import (
	"context"

	m "mockshift.dev/pkg/mockshift/internal/model"
	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// ScriptFileAdapter encapsulates JavaScript and TypeScript parsing so the
// domain layer can focus on rewrite rules while delegating grammar details
// to an infrastructure component.
type ScriptFileAdapter interface {
	// Supports reports whether a grammar exists for the path's extension.
	Supports(path m.Path) bool

	// Parse builds a syntax tree for the provided path/source pair.
	Parse(ctx context.Context, path m.Path, src []byte) (*syntax.Node, error)

	// Print renders a tree back to source.
	Print(root *syntax.Node) []byte
}

// LocalScriptFileAdapter provides a ScriptFileAdapter backed by tree-sitter.
type LocalScriptFileAdapter struct{}

// NewLocalScriptFileAdapter constructs a LocalScriptFileAdapter.
func NewLocalScriptFileAdapter() *LocalScriptFileAdapter {
	return &LocalScriptFileAdapter{}
}

// Supports reports whether path has a JavaScript or TypeScript extension.
func (a *LocalScriptFileAdapter) Supports(path m.Path) bool {
	_, err := syntax.LanguageFor(string(path))
	return err == nil
}

// Parse builds a syntax tree for src.
func (a *LocalScriptFileAdapter) Parse(ctx context.Context, path m.Path, src []byte) (*syntax.Node, error) {
	return syntax.Parse(ctx, string(path), src)
}

// Print renders root back to source bytes.
func (a *LocalScriptFileAdapter) Print(root *syntax.Node) []byte {
	return []byte(syntax.Print(root))
}
