package syntax

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ErrUnsupportedLanguage is returned for files whose extension maps to no grammar.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language identifies the grammar used for a file.
type Language string

// Supported grammars.
const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
)

var extensionLanguages = map[string]Language{
	".js":  LanguageJavaScript,
	".jsx": LanguageJavaScript,
	".mjs": LanguageJavaScript,
	".cjs": LanguageJavaScript,
	".ts":  LanguageTypeScript,
	".mts": LanguageTypeScript,
	".cts": LanguageTypeScript,
	".tsx": LanguageTSX,
}

// LanguageFor returns the grammar for a file path.
func LanguageFor(path string) (Language, error) {
	lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, path)
	}

	return lang, nil
}

func (l Language) grammar() *sitter.Language {
	switch l {
	case LanguageTypeScript:
		return typescript.GetLanguage()
	case LanguageTSX:
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// leafTypes are printed verbatim and never descended into.
var leafTypes = map[string]bool{
	"string":          true,
	"template_string": true,
	"regex":           true,
	"number":          true,
	"comment":         true,
	"jsx_text":        true,
}

var typeKinds = map[string]Kind{
	"program":                              KindProgram,
	"import_statement":                     KindImport,
	"expression_statement":                 KindExpressionStatement,
	"lexical_declaration":                  KindVarDecl,
	"variable_declaration":                 KindVarDecl,
	"variable_declarator":                  KindDeclarator,
	"assignment_expression":                KindAssignment,
	"call_expression":                      KindCall,
	"arguments":                            KindArguments,
	"member_expression":                    KindMember,
	"subscript_expression":                 KindSubscript,
	"new_expression":                       KindNew,
	"identifier":                           KindIdentifier,
	"shorthand_property_identifier":        KindIdentifier,
	"shorthand_property_identifier_pattern": KindIdentifier,
	"property_identifier":                  KindPropertyIdentifier,
	"string":                               KindString,
	"number":                               KindNumber,
	"true":                                 KindTrue,
	"false":                                KindFalse,
	"null":                                 KindNull,
	"undefined":                            KindUndefined,
	"this":                                 KindThis,
	"arrow_function":                       KindArrow,
	"function":                             KindFunction,
	"function_expression":                  KindFunction,
	"generator_function":                   KindFunction,
	"function_declaration":                 KindFunctionDecl,
	"generator_function_declaration":       KindFunctionDecl,
	"method_definition":                    KindMethod,
	"formal_parameters":                    KindParams,
	"statement_block":                      KindBlock,
	"if_statement":                         KindIf,
	"return_statement":                     KindReturn,
	"throw_statement":                      KindThrow,
	"binary_expression":                    KindBinary,
	"unary_expression":                     KindUnary,
	"spread_element":                       KindSpread,
	"rest_pattern":                         KindRest,
	"parenthesized_expression":             KindParenthesized,
	"object":                               KindObject,
	"pair":                                 KindPair,
	"array":                                KindArray,
	"for_statement":                        KindFor,
	"for_in_statement":                     KindFor,
	"catch_clause":                         KindCatch,
}

// Parse builds a tree for src using the grammar selected by path.
// Syntax errors do not fail the parse; erroneous regions become KindOther
// nodes that print verbatim.
func Parse(ctx context.Context, path string, src []byte) (*Node, error) {
	lang, err := LanguageFor(path)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(lang.grammar())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("tree-sitter returned no root for %s", path)
	}

	if root.HasError() {
		slog.Debug("source contains syntax errors", "path", path, "language", lang)
	}

	return convert(root, src, "", 0, len(src)), nil
}

func convert(ts *sitter.Node, src []byte, field string, start, end int) *Node {
	n := &Node{
		Kind:  typeKinds[ts.Type()],
		Type:  ts.Type(),
		Field: field,
	}

	if leafTypes[n.Type] || ts.NamedChildCount() == 0 {
		n.Text = string(src[start:end])
		return n
	}

	cursor := start

	for i := 0; i < int(ts.ChildCount()); i++ {
		child := ts.Child(i)
		if child == nil {
			continue
		}

		childField := ts.FieldNameForChild(i)

		if !child.IsNamed() {
			if childField == "operator" || childField == "kind" {
				n.Op = child.Type()
			}

			continue
		}

		if child.Type() == "comment" {
			continue
		}

		childStart, childEnd := int(child.StartByte()), int(child.EndByte())
		n.gaps = append(n.gaps, string(src[cursor:childStart]))
		c := convert(child, src, childField, childStart, childEnd)
		c.Parent = n
		n.Children = append(n.Children, c)
		cursor = childEnd
	}

	if len(n.Children) == 0 {
		n.gaps = nil
		n.Text = string(src[start:end])

		return n
	}

	n.gaps = append(n.gaps, string(src[cursor:end]))

	switch n.Type {
	case "variable_declaration":
		n.Op = "var"
	case "assignment_expression":
		n.Op = "="
	}

	return n
}
