package target

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func tag(s string) Pattern { return &PLiteral{Value: &Atom{Value: s}} }

func sorted(names []string) []string {
	sort.Strings(names)
	return names
}

func TestFreeVarsRespectsShadowing(t *testing.T) {
	// x = a; case y do {:ok, a} -> a + x; _ -> b end; fn c -> c + d end
	e := &Block{Exprs: []Expr{
		&MatchBind{Pattern: &PVar{Name: "x"}, Value: &Var{Name: "a"}},
		&Case{
			Scrutinee: &Var{Name: "y"},
			Clauses: []*Clause{
				{Pattern: &PTuple{Elems: []Pattern{tag("ok"), &PVar{Name: "a"}}}, Body: &BinaryOp{Op: "+", Left: &Var{Name: "a"}, Right: &Var{Name: "x"}}},
				{Pattern: &PWildcard{}, Body: &Var{Name: "b"}},
			},
		},
		&Fn{Clauses: []*FnClause{{Params: []Pattern{&PVar{Name: "c"}}, Body: &BinaryOp{Op: "+", Left: &Var{Name: "c"}, Right: &Var{Name: "d"}}}}},
	}}
	got := sorted(FreeVars(e).Slice())
	want := []string{"a", "b", "d", "y"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FreeVars mismatch (-want +got):\n%s", diff)
	}
}

func TestRenameStopsAtBinders(t *testing.T) {
	// case _g do {:ok, _g} -> _g; _ -> _g end
	e := &Case{
		Scrutinee: &Var{Name: "_g"},
		Clauses: []*Clause{
			{Pattern: &PTuple{Elems: []Pattern{tag("ok"), &PVar{Name: "_g"}}}, Body: &Var{Name: "_g"}},
			{Pattern: &PWildcard{}, Body: &Var{Name: "_g"}},
		},
	}
	out := Rename(e, map[string]string{"_g": "value"}).(*Case)
	if got := out.Scrutinee.(*Var).Name; got != "value" {
		t.Errorf("scrutinee = %q, want value", got)
	}
	if got := out.Clauses[0].Body.(*Var).Name; got != "_g" {
		t.Errorf("shadowed body = %q, want _g", got)
	}
	if got := out.Clauses[1].Body.(*Var).Name; got != "value" {
		t.Errorf("free body = %q, want value", got)
	}
	// the input is not modified
	if got := e.Scrutinee.(*Var).Name; got != "_g" {
		t.Errorf("input scrutinee changed to %q", got)
	}
}

func TestRenameSequentialMatch(t *testing.T) {
	// t + 1 before the rebinding sees the outer t, after it the new one
	e := &Block{Exprs: []Expr{
		&MatchBind{Pattern: &PVar{Name: "t"}, Value: &BinaryOp{Op: "+", Left: &Var{Name: "t"}, Right: &Integer{Value: 1}}},
		&Var{Name: "t"},
	}}
	out := Rename(e, map[string]string{"t": "n"}).(*Block)
	bind := out.Exprs[0].(*MatchBind)
	if got := bind.Value.(*BinaryOp).Left.(*Var).Name; got != "n" {
		t.Errorf("value before rebinding = %q, want n", got)
	}
	if got := out.Exprs[1].(*Var).Name; got != "t" {
		t.Errorf("after rebinding = %q, want t", got)
	}
}

func TestTransformRule(t *testing.T) {
	e := &BinaryOp{Op: "+", Left: &Integer{Value: 1}, Right: &Tuple{Elems: []Expr{&Integer{Value: 2}}}}
	out := Transform(e, func(n Expr, _ func(Expr) Expr) (Expr, bool) {
		if i, ok := n.(*Integer); ok {
			return &Integer{Value: i.Value * 10}, true
		}
		return nil, false
	})
	want := &BinaryOp{Op: "+", Left: &Integer{Value: 10}, Right: &Tuple{Elems: []Expr{&Integer{Value: 20}}}}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("Transform mismatch (-want +got):\n%s", diff)
	}
}

func TestInspectSkipsChildren(t *testing.T) {
	e := &Case{
		Scrutinee: &Var{Name: "x"},
		Clauses:   []*Clause{{Pattern: &PWildcard{}, Body: &Var{Name: "inside"}}},
	}
	var seen []string
	Inspect(e, func(n Expr) bool {
		if v, ok := n.(*Var); ok {
			seen = append(seen, v.Name)
		}
		_, isCase := n.(*Case)
		return !isCase
	})
	if len(seen) != 0 {
		t.Errorf("visited %v below a skipped node", seen)
	}
}

func TestBindersAndTag(t *testing.T) {
	p := &PTuple{Elems: []Pattern{
		tag("some"),
		&PAlias{Name: "inner", Pattern: &PTuple{Elems: []Pattern{tag("ok"), &PVar{Name: "n"}}}},
	}}
	if diff := cmp.Diff([]string{"n", "inner"}, Binders(p)); diff != "" {
		t.Errorf("Binders mismatch (-want +got):\n%s", diff)
	}
	if got, ok := Tag(p); !ok || got != "some" {
		t.Errorf("Tag() = %q, %v", got, ok)
	}
	if _, ok := Tag(&PVar{Name: "x"}); ok {
		t.Errorf("Tag(PVar) reported a tag")
	}
}

func TestWildcardAndRenamePattern(t *testing.T) {
	p := &PTuple{Elems: []Pattern{tag("pair"), &PVar{Name: "_a"}, &PVar{Name: "b"}}}
	renamed := RenamePattern(p, map[string]string{"_a": "a"})
	if diff := cmp.Diff([]string{"a", "b"}, Binders(renamed)); diff != "" {
		t.Errorf("RenamePattern mismatch (-want +got):\n%s", diff)
	}
	if got := Binders(Wildcard(p)); len(got) != 0 {
		t.Errorf("Wildcard left binders %v", got)
	}
}
