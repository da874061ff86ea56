package lower

import (
	"testing"

	"github.com/funvibe/caselower/internal/ast"
)

func TestTrackerLookupFallsBackToParent(t *testing.T) {
	tr := NewTracker()
	outer, popOuter := tr.Enter(shapeType)
	outer.Set(1, "r")

	inner, popInner := tr.Enter(nil)
	inner.Set(2, "side")

	if inner.Parent() != outer || outer.Parent() != nil {
		t.Errorf("scope chain is not inner -> outer -> root")
	}

	if name, ok := tr.Lookup(1); !ok || name != "r" {
		t.Errorf("Lookup(1) = %q, %v; want r from the enclosing scope", name, ok)
	}
	if name, ok := tr.Lookup(2); !ok || name != "side" {
		t.Errorf("Lookup(2) = %q, %v; want side", name, ok)
	}
	if inner.Descriptor() != shapeType {
		t.Errorf("inner scope does not inherit the active sum type")
	}
	if got := inner.visibleNames(); len(got) != 1 || got[0] != "r" {
		t.Errorf("visibleNames = %v, want [r]", got)
	}

	popInner()
	if _, ok := tr.Lookup(2); ok {
		t.Errorf("binding survived its scope")
	}
	popOuter()
	if tr.Depth() != 0 || tr.Current() != nil {
		t.Errorf("depth = %d after popping every scope", tr.Depth())
	}
	if _, ok := tr.Lookup(1); ok {
		t.Errorf("lookup outside any scope succeeded")
	}
}

func TestTrackerSetOutsideScopeIsNoop(t *testing.T) {
	tr := NewTracker()
	tr.Set(1, "x")
	if _, ok := tr.Lookup(1); ok {
		t.Errorf("Set without an open scope recorded a binding")
	}
}

func TestTrackerUnbalancedPopPanics(t *testing.T) {
	tr := NewTracker()
	outer := tr.Push(nil)
	tr.Push(nil)

	defer func() {
		if recover() == nil {
			t.Errorf("popping a scope that is not on top did not panic")
		}
	}()
	tr.Pop(outer)
}

func TestTrackerEnterPopsOnPanic(t *testing.T) {
	tr := NewTracker()
	func() {
		defer func() { _ = recover() }()
		_, pop := tr.Enter(nil)
		defer pop()
		panic("boom")
	}()
	if tr.Depth() != 0 {
		t.Errorf("depth = %d after a panicking arm, want 0", tr.Depth())
	}
}

func TestScopePayloadResolvesConsumedConstructor(t *testing.T) {
	var vs vars
	shape := vs.of("shape", enumOf(shapeType))
	other := vs.of("other", enumOf(shapeType))
	circle := ctor(shapeType, "Circle")
	square := ctor(shapeType, "Square")

	tr := NewTracker()
	s, pop := tr.Enter(shapeType)
	defer pop()
	s.setScrutinee(local(shape), shape)
	s.Consume(circle, []string{"r"})
	if !s.Consumed("Circle") || s.Consumed("Square") {
		t.Errorf("consumed constructors = Circle %v, Square %v; want only Circle", s.Consumed("Circle"), s.Consumed("Square"))
	}

	if name, ok := s.Payload(ast.Param(local(shape), circle, 0)); !ok || name != "r" {
		t.Errorf("Payload(shape.Circle[0]) = %q, %v; want r", name, ok)
	}
	if _, ok := s.Payload(ast.Param(local(shape), square, 0)); ok {
		t.Errorf("payload of an unmatched constructor resolved")
	}
	if _, ok := s.Payload(ast.Param(local(other), circle, 0)); ok {
		t.Errorf("payload of another receiver resolved")
	}
	if _, ok := s.Payload(ast.Param(local(shape), circle, 3)); ok {
		t.Errorf("out-of-range payload index resolved")
	}

	// Nested scopes see the enclosing arm's extraction.
	inner, popInner := tr.Enter(nil)
	defer popInner()
	if name, ok := inner.Payload(ast.Param(ast.NewParen(local(shape)), circle, 0)); !ok || name != "r" {
		t.Errorf("nested Payload = %q, %v; want r", name, ok)
	}
}

func TestScopeUnnamedPayloadIsNotResolved(t *testing.T) {
	var vs vars
	p := vs.of("p", enumOf(pairType))
	pair := ctor(pairType, "Pair")

	tr := NewTracker()
	s, pop := tr.Enter(pairType)
	defer pop()
	s.setScrutinee(local(p), p)
	s.Consume(pair, []string{"", "second"})

	if _, ok := s.Payload(ast.Param(local(p), pair, 0)); ok {
		t.Errorf("payload bound to a literal sub-pattern resolved to a name")
	}
	if name, _ := s.Payload(ast.Param(local(p), pair, 1)); name != "second" {
		t.Errorf("Payload(1) = %q, want second", name)
	}
}
