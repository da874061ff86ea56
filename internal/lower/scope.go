package lower

import (
	"fmt"

	set "github.com/hashicorp/go-set/v3"

	"github.com/funvibe/caselower/internal/ast"
	"github.com/funvibe/caselower/internal/typesystem"
)

// ClauseScope is the per-arm frame of the Tracker. It maps source
// variables bound by the arm's pattern to their chosen names, records the
// active sum type and which constructors' payloads the pattern already
// extracted. Lookups fall back through parent, so matches nested inside an
// arm body see the enclosing arm's binders.
type ClauseScope struct {
	parent     *ClauseScope
	bindings   map[ast.VarID]string
	descriptor *typesystem.SumType
	consumed   *set.Set[string]

	// payload binders of consumed constructors, by position
	payload map[string][]string
	// variables provably holding the scrutinee of the match this arm
	// belongs to
	receivers *set.Set[ast.VarID]
	scrutinee ast.Node
}

func newClauseScope(parent *ClauseScope, desc *typesystem.SumType) *ClauseScope {
	return &ClauseScope{
		parent:     parent,
		bindings:   make(map[ast.VarID]string),
		descriptor: desc,
		consumed:   set.New[string](0),
		payload:    make(map[string][]string),
		receivers:  set.New[ast.VarID](0),
	}
}

// Parent returns the enclosing scope, nil at the root.
func (s *ClauseScope) Parent() *ClauseScope { return s.parent }

// Set binds a source variable to a target name in this scope.
func (s *ClauseScope) Set(id ast.VarID, name string) {
	s.bindings[id] = name
}

// Lookup resolves a source variable through the parent chain.
func (s *ClauseScope) Lookup(id ast.VarID) (string, bool) {
	for cur := s; cur != nil; cur = cur.Parent() {
		if name, ok := cur.bindings[id]; ok {
			return name, true
		}
	}
	return "", false
}

// visibleNames lists the binder names of the enclosing scopes.
func (s *ClauseScope) visibleNames() []string {
	var out []string
	for cur := s.Parent(); cur != nil; cur = cur.Parent() {
		for _, name := range cur.bindings {
			out = append(out, name)
		}
	}
	return out
}

// Descriptor returns the nearest active sum type.
func (s *ClauseScope) Descriptor() *typesystem.SumType {
	for cur := s; cur != nil; cur = cur.Parent() {
		if cur.descriptor != nil {
			return cur.descriptor
		}
	}
	return nil
}

// Consume records that the arm's pattern extracted every payload of ctor
// into the given binders.
func (s *ClauseScope) Consume(ctor *typesystem.Constructor, binders []string) {
	s.consumed.Insert(ctor.Name)
	s.payload[ctor.Name] = binders
}

// Consumed reports whether this scope's pattern extracted ctor.
func (s *ClauseScope) Consumed(name string) bool {
	return s.consumed.Contains(name)
}

// setScrutinee records the scrutinee and its variable, if any, as an
// allowed receiver of payload extractions.
func (s *ClauseScope) setScrutinee(n ast.Node, v *ast.Var) {
	s.scrutinee = n
	if v != nil {
		s.receivers.Insert(v.ID)
	}
}

// addReceiver records a local alias of the scrutinee.
func (s *ClauseScope) addReceiver(id ast.VarID) { s.receivers.Insert(id) }

// isReceiver reports whether n provably holds this scope's scrutinee.
func (s *ClauseScope) isReceiver(n ast.Node) bool {
	n = ast.Unwrap(n)
	if n == nil {
		return false
	}
	if s.scrutinee != nil && n == ast.Unwrap(s.scrutinee) {
		return true
	}
	if l, ok := n.(*ast.Local); ok && l.Var != nil {
		return s.receivers.Contains(l.Var.ID)
	}
	return false
}

// Payload resolves an out-of-pattern payload extraction to the binder the
// enclosing pattern already introduced for it.
func (s *ClauseScope) Payload(ep *ast.EnumParameter) (string, bool) {
	if ep.Ctor == nil {
		return "", false
	}
	for cur := s; cur != nil; cur = cur.Parent() {
		if !cur.Consumed(ep.Ctor.Name) || !cur.isReceiver(ep.Expr) {
			continue
		}
		binders := cur.payload[ep.Ctor.Name]
		if ep.Index >= 0 && ep.Index < len(binders) && binders[ep.Index] != "" {
			return binders[ep.Index], true
		}
	}
	return "", false
}

// Tracker is the scope stack of one lowering run.
type Tracker struct {
	top   *ClauseScope
	depth int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker { return &Tracker{} }

// Push opens a scope whose parent is the current top.
func (t *Tracker) Push(desc *typesystem.SumType) *ClauseScope {
	s := newClauseScope(t.top, desc)
	t.top = s
	t.depth++
	return s
}

// Pop closes s, which must be the current top.
func (t *Tracker) Pop(s *ClauseScope) {
	if t.top != s || s == nil {
		panic(fmt.Sprintf("lower: unbalanced scope pop at depth %d", t.depth))
	}
	t.top = s.parent
	t.depth--
}

// Enter pushes a scope and returns it with the func that pops it. Callers
// defer the func so the pop happens on every exit path.
func (t *Tracker) Enter(desc *typesystem.SumType) (*ClauseScope, func()) {
	s := t.Push(desc)
	return s, func() { t.Pop(s) }
}

// Current returns the top scope, nil when none is open.
func (t *Tracker) Current() *ClauseScope { return t.top }

// Depth is the number of open scopes.
func (t *Tracker) Depth() int { return t.depth }

// Set binds id in the current scope. It is a no-op outside any scope.
func (t *Tracker) Set(id ast.VarID, name string) {
	if t.top != nil {
		t.top.Set(id, name)
	}
}

// Lookup resolves id from the current scope outwards.
func (t *Tracker) Lookup(id ast.VarID) (string, bool) {
	if t.top == nil {
		return "", false
	}
	return t.top.Lookup(id)
}
