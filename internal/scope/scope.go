// Package scope implements the lexical scope stack NameResolver walks
// query ASTs against (spec.md §4.2): a stack of frames, each holding
// the relations visible at that point in the query and the lateral/
// non-lateral visibility rule that governs which sibling FROM items a
// derived table may see.
package scope

import "sqlsift/internal/catalog"

// OriginKind classifies where a visible relation's columns came from.
type OriginKind int

const (
	OriginTable OriginKind = iota
	OriginView
	OriginCTE
	OriginDerived
	OriginValuesList
	OriginTableFn
)

// RelationBinding is one relation visible within a frame: its FROM-
// clause binding name (alias, or the object name when unaliased) and
// its column set.
type RelationBinding struct {
	BindingName string
	Columns     []*catalog.Column
	Origin      OriginKind
}

// FindColumn looks up a column by case-insensitive name within this
// binding.
func (b RelationBinding) FindColumn(name string) (*catalog.Column, bool) {
	for _, c := range b.Columns {
		if foldEqual(c.Name, name) {
			return c, true
		}
	}
	return nil, false
}

// CTEBinding is one CTE introduced by a WITH clause at this frame.
type CTEBinding struct {
	Name      string
	Columns   []*catalog.Column
	Recursive bool
}

// Frame is one lexical scope: a relational context entered on SELECT,
// subquery, CTE body, or derived-table boundaries and exited when that
// construct finishes resolving.
type Frame struct {
	// Relations are the FROM items visible from directly inside this
	// frame, in FROM-clause order.
	Relations []RelationBinding

	// IsLateral marks a frame introduced by a LATERAL derived table:
	// for bare column names such a frame also sees the relations the
	// immediately enclosing frame has bound so far, i.e. the earlier
	// items of the same FROM list (see ResolveBareColumn).
	IsLateral bool

	// ProjectionAliases holds SELECT-list alias bindings, visible to
	// ORDER BY and GROUP BY in this frame (spec.md §4.2).
	ProjectionAliases map[string]*catalog.Column

	// CTEs are WITH-clause bindings introduced at this frame, visible
	// to this frame's own body and every frame nested inside it.
	CTEs map[string]CTEBinding
}

func newFrame() *Frame {
	return &Frame{
		ProjectionAliases: make(map[string]*catalog.Column),
		CTEs:              make(map[string]CTEBinding),
	}
}

// Stack is the ScopeStack: frames pushed on entering a relational
// construct, popped on exit, innermost last.
type Stack struct {
	frames []*Frame
}

// NewStack constructs an empty ScopeStack.
func NewStack() *Stack {
	return &Stack{}
}

// Push enters a new relational construct and returns its Frame for
// the caller to populate.
func (s *Stack) Push() *Frame {
	f := newFrame()
	s.frames = append(s.frames, f)
	return f
}

// Pop exits the current construct's frame.
func (s *Stack) Pop() {
	n := len(s.frames)
	if n == 0 {
		return
	}
	s.frames = s.frames[:n-1]
}

// Top returns the innermost frame, or nil if the stack is empty.
func (s *Stack) Top() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// LookupCTE searches for name as a CTE binding, starting at the
// innermost frame and walking outward (CTE bodies see outer-scope
// CTEs per spec.md §4.2).
func (s *Stack) LookupCTE(name string) (CTEBinding, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		for key, cte := range s.frames[i].CTEs {
			if foldEqual(key, name) {
				return cte, true
			}
		}
	}
	return CTEBinding{}, false
}

// ColumnLookupResult classifies the outcome of resolving a bare column
// reference against the visible relation set.
type ColumnLookupResult int

const (
	ColumnNotFound ColumnLookupResult = iota
	ColumnFound
	ColumnAmbiguous
)

// ResolveBareColumn searches the top frame's visible relations for
// exactly one relation supplying name, per spec.md §4.2's bare-
// reference rule. A LATERAL frame (pushed to resolve one FROM item's
// derived-table body) additionally sees the immediately enclosing
// frame's Relations-so-far — the preceding FROM items of the same
// FROM list, which by construction have already been appended there
// by the time a later item is resolved.
func (s *Stack) ResolveBareColumn(name string) (ColumnLookupResult, *catalog.Column, string) {
	top := s.Top()
	if top == nil {
		return ColumnNotFound, nil, ""
	}

	candidates := top.Relations
	if top.IsLateral && len(s.frames) >= 2 {
		enclosing := s.frames[len(s.frames)-2]
		candidates = append(append([]RelationBinding{}, enclosing.Relations...), candidates...)
	}

	if alias, ok := top.ProjectionAliases[foldEqual2(name)]; ok {
		return ColumnFound, alias, ""
	}

	var found *catalog.Column
	var foundBinding string
	matches := 0
	for _, rel := range candidates {
		if c, ok := rel.FindColumn(name); ok {
			matches++
			found = c
			foundBinding = rel.BindingName
		}
	}

	switch matches {
	case 0:
		return ColumnNotFound, nil, ""
	case 1:
		return ColumnFound, found, foundBinding
	default:
		return ColumnAmbiguous, nil, ""
	}
}

// ResolveQualifiedColumn resolves `binding.column`, searching the top
// frame first and then walking outward through enclosing frames
// (spec.md §4.2's qualified-reference rule).
func (s *Stack) ResolveQualifiedColumn(binding, column string) (*catalog.Column, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		for _, rel := range s.frames[i].Relations {
			if foldEqual(rel.BindingName, binding) {
				return rel.FindColumn(column)
			}
		}
	}
	return nil, false
}

func foldEqual(a, b string) bool { return foldKey(a) == foldKey(b) }

func foldEqual2(name string) string { return foldKey(name) }

func foldKey(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
