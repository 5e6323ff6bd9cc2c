package syntax

import "strings"

// Import describes how a module is brought into a file, either through an
// ES import statement or a CommonJS require binding.
type Import struct {
	// Decl is the statement to remove once the module is no longer used.
	Decl   *Node
	Module string
	// Default is the local name of a default import or a plain require.
	Default string
	// Namespace is the local name of an `import * as x` binding.
	Namespace string
	// Named maps imported names to their local names.
	Named map[string]string
}

// Alias returns the local name under which the whole module is reachable.
func (i *Import) Alias() string {
	if i == nil {
		return ""
	}

	if i.Default != "" {
		return i.Default
	}

	return i.Namespace
}

// Local returns the local name of a named import, or "".
func (i *Import) Local(imported string) string {
	if i == nil {
		return ""
	}

	return i.Named[imported]
}

// FindImport returns the first top-level import of module, or nil.
func FindImport(root *Node, module string) *Import {
	for _, stmt := range root.Children {
		switch stmt.Kind {
		case KindImport:
			if imp := esImport(stmt); imp != nil && imp.Module == module {
				return imp
			}
		case KindVarDecl:
			if imp := requireImport(stmt, module); imp != nil {
				return imp
			}
		}
	}

	return nil
}

// HasImport reports whether any top-level statement imports module.
func HasImport(root *Node, module string) bool {
	return FindImport(root, module) != nil
}

func esImport(stmt *Node) *Import {
	src, ok := stmt.Get(FieldSource).StringValue()
	if !ok {
		return nil
	}

	imp := &Import{Decl: stmt, Module: src, Named: map[string]string{}}

	for _, c := range stmt.Children {
		if c.Type != "import_clause" {
			continue
		}

		for _, part := range c.Children {
			switch part.Type {
			case "identifier":
				imp.Default = part.Text
			case "namespace_import":
				if len(part.Children) > 0 {
					imp.Namespace = part.Children[0].Text
				}
			case "named_imports":
				for _, specifier := range part.Children {
					name := specifier.Get(FieldName).Name()
					local := name

					if alias := specifier.Get("alias"); alias != nil {
						local = alias.Name()
					}

					if name != "" {
						imp.Named[name] = local
					}
				}
			}
		}
	}

	return imp
}

func requireImport(stmt *Node, module string) *Import {
	for _, d := range stmt.Children {
		value := d.Get(FieldValue)
		if !d.Is(KindDeclarator) || !value.Is(KindCall) || !value.Callee().IsIdent("require") {
			continue
		}

		args := value.Args()
		if len(args) != 1 {
			continue
		}

		if src, ok := args[0].StringValue(); !ok || src != module {
			continue
		}

		imp := &Import{Decl: stmt, Module: module, Named: map[string]string{}}
		name := d.Get(FieldName)

		switch {
		case name.Is(KindIdentifier):
			imp.Default = name.Text
		case name.Type == "object_pattern":
			for _, p := range name.Children {
				switch {
				case p.Is(KindIdentifier):
					imp.Named[p.Text] = p.Text
				case p.Type == "pair_pattern":
					imp.Named[p.Get(FieldKey).Name()] = p.Get(FieldValue).Name()
				}
			}
		}

		if len(stmt.Children) > 1 {
			imp.Decl = d
		}

		return imp
	}

	return nil
}

// ImportedFrom returns the module a binding identifier was imported or
// required from, or "" when it is declared any other way.
func ImportedFrom(binding *Node) string {
	if binding == nil {
		return ""
	}

	child := binding

	for cur := binding.Parent; cur != nil; child, cur = cur, cur.Parent {
		switch cur.Kind {
		case KindImport:
			src, _ := cur.Get(FieldSource).StringValue()
			return src
		case KindDeclarator:
			value := cur.Get(FieldValue)
			if child.Field != FieldName || !value.Is(KindCall) || !value.Callee().IsIdent("require") {
				return ""
			}

			if args := value.Args(); len(args) == 1 {
				src, _ := args[0].StringValue()
				return src
			}

			return ""
		case KindProgram, KindBlock, KindFunction, KindArrow, KindFunctionDecl, KindMethod:
			return ""
		}
	}

	return ""
}

// RemoveImport deletes the declaration that brought the module in.
func RemoveImport(imp *Import) bool {
	if imp == nil || imp.Decl == nil {
		return false
	}

	return Remove(imp.Decl)
}

// ImportStatement renders `import { names } from 'module'`.
func ImportStatement(module string, names ...string) *Node {
	return Raw("import { " + strings.Join(names, ", ") + " } from '" + module + "';")
}

// InsertImports places statements right after anchor, keeping their order.
// When anchor is detached they go to the top of the program.
func InsertImports(root, anchor *Node, stmts ...*Node) {
	for i := len(stmts) - 1; i >= 0; i-- {
		if anchor != nil && anchor.Attached(root) {
			InsertAfter(anchor, stmts[i])
			continue
		}

		insertFirst(root, stmts[i])
	}
}

func insertFirst(root, n *Node) {
	n.Parent = root
	n.Field = ""
	root.Children = append([]*Node{n}, root.Children...)

	if root.gaps != nil {
		gaps := make([]string, 0, len(root.gaps)+1)
		gaps = append(gaps, root.gaps[0], "\n")
		gaps = append(gaps, root.gaps[1:]...)
		root.gaps = gaps
	}
}
