package syntax

// ScopeID indexes a scope in a ScopeTable.
type ScopeID int

// NoScope is the parent of the program scope.
const NoScope ScopeID = -1

// ScopeKind classifies what opened a scope.
type ScopeKind int

// Scope kinds.
const (
	ScopeProgram ScopeKind = iota
	ScopeFunction
	ScopeBlock
)

// Scope is one lexical scope. Node is the tree node that opened it.
type Scope struct {
	ID     ScopeID
	Kind   ScopeKind
	Parent ScopeID
	Node   *Node

	names map[string]*Node
}

// Declares reports whether name is introduced directly in s.
func (s *Scope) Declares(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Binding returns the identifier that introduced name in s.
func (s *Scope) Binding(name string) *Node {
	return s.names[name]
}

// ScopeTable is an arena of the scopes of one file, built once and queried
// by parent-id walks.
type ScopeTable struct {
	scopes []*Scope
	byNode map[*Node]ScopeID
}

// BuildScopes indexes every scope and declaration under root.
func BuildScopes(root *Node) *ScopeTable {
	t := &ScopeTable{byNode: make(map[*Node]ScopeID)}
	t.visit(root, NoScope)

	return t
}

// Scope returns the scope with the given id.
func (t *ScopeTable) Scope(id ScopeID) *Scope {
	if id < 0 || int(id) >= len(t.scopes) {
		return nil
	}

	return t.scopes[id]
}

// Len returns the number of scopes.
func (t *ScopeTable) Len() int {
	return len(t.scopes)
}

// ScopeOf returns the innermost scope enclosing n.
func (t *ScopeTable) ScopeOf(n *Node) *Scope {
	for cur := n; cur != nil; cur = cur.Parent {
		if id, ok := t.byNode[cur]; ok {
			return t.scopes[id]
		}
	}

	return nil
}

// DeclaringScope walks parent links from the scope of ident until one
// declares its name. nil means the name is unresolved.
func (t *ScopeTable) DeclaringScope(ident *Node) *Scope {
	name := ident.Name()
	if name == "" {
		return nil
	}

	for s := t.ScopeOf(ident); s != nil; s = t.Scope(s.Parent) {
		if s.Declares(name) {
			return s
		}
	}

	return nil
}

// Restrict returns the subtree later searches for uses of a binding
// declared in s should be limited to.
func (t *ScopeTable) Restrict(s *Scope) *Node {
	if s == nil {
		return nil
	}

	if s.Kind == ScopeFunction {
		if body := s.Node.Get(FieldBody); body != nil {
			return body
		}
	}

	return s.Node
}

func (t *ScopeTable) open(n *Node, kind ScopeKind, parent ScopeID) ScopeID {
	id := ScopeID(len(t.scopes))
	t.scopes = append(t.scopes, &Scope{
		ID:     id,
		Kind:   kind,
		Parent: parent,
		Node:   n,
		names:  make(map[string]*Node),
	})
	t.byNode[n] = id

	return id
}

// hoistTarget returns the nearest function or program scope.
func (t *ScopeTable) hoistTarget(id ScopeID) ScopeID {
	for s := t.Scope(id); s != nil; s = t.Scope(s.Parent) {
		if s.Kind != ScopeBlock {
			return s.ID
		}
	}

	return id
}

func (t *ScopeTable) declare(id ScopeID, pattern *Node) {
	s := t.Scope(id)
	if s == nil {
		return
	}

	for _, ident := range bindingNames(pattern) {
		if _, ok := s.names[ident.Text]; !ok {
			s.names[ident.Text] = ident
		}
	}
}

func (t *ScopeTable) visit(n *Node, current ScopeID) {
	if n == nil {
		return
	}

	switch n.Kind {
	case KindProgram:
		current = t.open(n, ScopeProgram, current)
	case KindFunctionDecl:
		t.declare(current, n.Get(FieldName))
		current = t.openFunction(n, current)
	case KindFunction, KindArrow, KindMethod:
		outer := current
		current = t.openFunction(n, outer)

		if n.Kind == KindFunction {
			t.declare(current, n.Get(FieldName))
		}
	case KindBlock, KindFor:
		if !t.isFunctionBody(n) {
			current = t.open(n, ScopeBlock, current)
		}
	case KindCatch:
		current = t.open(n, ScopeBlock, current)
		t.declare(current, n.Get(FieldParameter))
	case KindVarDecl:
		target := current
		if n.Op == "var" {
			target = t.hoistTarget(current)
		}

		for _, d := range n.Children {
			if d.Is(KindDeclarator) {
				t.declare(target, d.Get(FieldName))
			}
		}
	case KindImport:
		t.declareImport(current, n)
	case KindOther:
		if n.Type == "class_declaration" {
			t.declare(current, n.Get(FieldName))
		}
	}

	for _, c := range n.Children {
		t.visit(c, current)
	}
}

// openFunction opens a function scope holding its parameters. The body
// block shares that scope.
func (t *ScopeTable) openFunction(n *Node, parent ScopeID) ScopeID {
	id := t.open(n, ScopeFunction, parent)

	if p := n.Get(FieldParameter); p != nil {
		t.declare(id, p)
	}

	if params := n.Get(FieldParameters); params != nil {
		for _, p := range params.Children {
			t.declare(id, p)
		}
	}

	return id
}

func (t *ScopeTable) isFunctionBody(n *Node) bool {
	return n.Field == FieldBody && n.Parent.Is(KindFunction, KindFunctionDecl, KindArrow, KindMethod)
}

func (t *ScopeTable) declareImport(current ScopeID, n *Node) {
	Walk(n, func(c *Node) bool {
		switch c.Type {
		case "string":
			return false
		case "import_specifier":
			if alias := c.Get("alias"); alias != nil {
				t.declare(current, alias)
			} else {
				t.declare(current, c.Get(FieldName))
			}

			return false
		case "identifier":
			t.declare(current, c)
		}

		return true
	})
}

// bindingNames returns the identifiers a declaration pattern introduces.
func bindingNames(pattern *Node) []*Node {
	if pattern == nil {
		return nil
	}

	switch {
	case pattern.Is(KindIdentifier):
		return []*Node{pattern}
	case pattern.Type == "pair_pattern":
		return bindingNames(pattern.Get(FieldValue))
	case pattern.Type == "assignment_pattern", pattern.Type == "object_assignment_pattern":
		return bindingNames(pattern.Get(FieldLeft))
	case pattern.Type == "required_parameter", pattern.Type == "optional_parameter":
		return bindingNames(pattern.Get("pattern"))
	case pattern.Type == "object_pattern", pattern.Type == "array_pattern", pattern.Is(KindRest):
		var names []*Node
		for _, c := range pattern.Children {
			names = append(names, bindingNames(c)...)
		}

		return names
	}

	return nil
}
