package lower

import (
	set "github.com/hashicorp/go-set/v3"

	"github.com/funvibe/caselower/internal/target"
)

// splitGuards turns a body that is a cascading conditional into one
// clause per branch, all sharing pattern: branch i is guarded by
// condition i, a trailing else becomes the guard-less last clause. guard
// is the arm's own guard and is conjoined to every clause.
//
// Splitting is abandoned, leaving a single clause, when a condition reads
// an extraction temporary the pattern does not bind (it would be
// undefined at guard time) or is not a guard expression.
func (l *Lowerer) splitGuards(pattern target.Pattern, guard, body target.Expr) []*target.Clause {
	single := []*target.Clause{{Pattern: pattern, Guard: guard, Body: body}}

	chain, ok := unwrapExpr(body).(*target.If)
	if !ok || chain.Else == nil {
		return single
	}
	var conds, branches []target.Expr
	var final target.Expr
	for cur := chain; ; {
		conds = append(conds, cur.Cond)
		branches = append(branches, cur.Then)
		next, ok := unwrapExpr(cur.Else).(*target.If)
		if !ok {
			final = cur.Else
			break
		}
		cur = next
	}

	bound := set.From(target.Binders(pattern))
	for _, c := range conds {
		if !guardSafe(c) {
			l.tracef("condition is not a guard expression, keeping the conditional in the body")
			return single
		}
		for _, name := range target.FreeVars(c).Slice() {
			if !bound.Contains(name) && l.names.IsExtractionTemp(name) {
				l.tracef("condition reads unbound temporary %s, keeping the conditional in the body", name)
				return single
			}
		}
	}

	clauses := make([]*target.Clause, 0, len(conds)+1)
	for i, c := range conds {
		clauses = append(clauses, &target.Clause{Pattern: pattern, Guard: and(guard, c), Body: branches[i]})
	}
	if final == nil {
		final = &target.Nil{}
	}
	clauses = append(clauses, &target.Clause{Pattern: pattern, Guard: guard, Body: final})
	return clauses
}

// fold merges a body that only matches on one of the arm's binders into
// the arm's pattern: {:some, inner} -> case inner do {:ok, n} -> ... end
// becomes {:some, {:ok, n}} -> .... The binder survives as an alias when
// the inner clauses still read it. Folding is skipped when names would
// collide.
func (l *Lowerer) fold(a *arm, guard, body target.Expr) ([]*target.Clause, bool) {
	outer, ok := a.pattern.(*target.PTuple)
	if !ok || a.ctor == nil {
		return nil, false
	}
	inner, ok := unwrapExpr(body).(*target.Case)
	if !ok || len(inner.Clauses) == 0 {
		return nil, false
	}
	v, ok := inner.Scrutinee.(*target.Var)
	if !ok {
		return nil, false
	}
	slot := -1
	for i, bc := range a.binders {
		if bc != nil && bc.Chosen == v.Name {
			slot = i + 1
		}
	}
	if slot < 0 {
		return nil, false
	}

	others := set.New[string](0)
	for _, name := range target.Binders(outer) {
		if name != v.Name {
			others.Insert(name)
		}
	}
	for _, cl := range inner.Clauses {
		for _, name := range target.Binders(cl.Pattern) {
			if name == v.Name || others.Contains(name) {
				return nil, false
			}
		}
	}

	out := make([]*target.Clause, 0, len(inner.Clauses)+1)
	exhaustive := l.exhaustive(inner)
	for _, cl := range inner.Clauses {
		sub, g, b := cl.Pattern, cl.Guard, cl.Body
		switch p := sub.(type) {
		case *target.PVar:
			rename := map[string]string{p.Name: v.Name}
			g, b = renameOpt(g, rename), target.Rename(b, rename)
			sub = l.keepBinder(v.Name, nil, g, b)
		case *target.PWildcard:
			sub = l.keepBinder(v.Name, nil, g, b)
		default:
			sub = l.keepBinder(v.Name, sub, g, b)
		}
		out = append(out, &target.Clause{Pattern: withSlot(outer, slot, sub), Guard: and(guard, g), Body: b})
	}
	if !exhaustive {
		out = append(out, &target.Clause{Pattern: withSlot(target.Wildcard(outer).(*target.PTuple), slot, &target.PWildcard{}), Guard: guard, Body: &target.Nil{}})
	}
	l.tracef("folded nested match on %s into %d clauses", v.Name, len(out))
	return out, true
}

// keepBinder returns the sub-pattern for a folded slot: sub aliased to
// name when the clause reads name, sub alone otherwise. A nil sub stands
// for a catch-all.
func (l *Lowerer) keepBinder(name string, sub target.Pattern, guard, body target.Expr) target.Pattern {
	read := target.Mentions(body, name) || target.Mentions(guard, name)
	switch {
	case sub == nil && read:
		return &target.PVar{Name: name}
	case sub == nil:
		return &target.PWildcard{}
	case read:
		return &target.PAlias{Name: name, Pattern: sub}
	}
	return sub
}

// exhaustive reports whether c matches every value of its scrutinee: it
// has an unguarded catch-all, or an unguarded binder-only clause for each
// constructor of the sum type it was lowered from.
func (l *Lowerer) exhaustive(c *target.Case) bool {
	covered := set.New[string](0)
	for _, cl := range c.Clauses {
		if cl.Guard != nil {
			continue
		}
		if isCatchAll(cl.Pattern) {
			return true
		}
		t, ok := cl.Pattern.(*target.PTuple)
		if !ok || len(t.Elems) == 0 {
			continue
		}
		tag, ok := target.Tag(t)
		if !ok {
			continue
		}
		full := true
		for _, e := range t.Elems[1:] {
			full = full && isCatchAll(e)
		}
		if full {
			covered.Insert(tag)
		}
	}
	desc := l.matched[c]
	if desc == nil {
		return false
	}
	for _, ctor := range desc.Constructors {
		if !covered.Contains(l.names.tag(ctor.Name)) {
			return false
		}
	}
	return true
}

func withSlot(p *target.PTuple, slot int, sub target.Pattern) *target.PTuple {
	elems := append([]target.Pattern(nil), p.Elems...)
	elems[slot] = sub
	return &target.PTuple{Elems: elems}
}

func isCatchAll(p target.Pattern) bool {
	switch p.(type) {
	case *target.PVar, *target.PWildcard:
		return true
	}
	return false
}

func renameOpt(e target.Expr, mapping map[string]string) target.Expr {
	if e == nil {
		return nil
	}
	return target.Rename(e, mapping)
}

// and conjoins two optional guards.
func and(a, b target.Expr) target.Expr {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return &target.BinaryOp{Op: "and", Left: a, Right: b}
}

// unwrapExpr strips single-expression blocks.
func unwrapExpr(e target.Expr) target.Expr {
	for {
		b, ok := e.(*target.Block)
		if !ok || len(b.Exprs) != 1 {
			return e
		}
		e = b.Exprs[0]
	}
}

var guardOps = set.From([]string{
	"==", "!=", "===", "!==", "<", ">", "<=", ">=",
	"and", "or", "+", "-", "*", "/", "in",
})

var guardCalls = set.From([]string{
	"abs", "div", "rem", "elem", "length", "map_size", "tuple_size",
	"byte_size", "hd", "tl", "is_nil", "is_integer", "is_float",
	"is_number", "is_binary", "is_atom", "is_boolean", "is_list",
	"is_map", "is_tuple", "round", "trunc", "not",
})

// guardSafe reports whether e may appear in a clause guard.
func guardSafe(e target.Expr) bool {
	safe := true
	target.Inspect(e, func(n target.Expr) bool {
		if !safe {
			return false
		}
		switch x := n.(type) {
		case *target.Var, *target.Atom, *target.Integer, *target.Float,
			*target.String, *target.Boolean, *target.Nil,
			*target.Tuple, *target.List, *target.Map:
		case *target.BinaryOp:
			safe = guardOps.Contains(x.Op)
		case *target.UnaryOp:
			safe = x.Op == "not" || x.Op == "-" || x.Op == "+"
		case *target.Call:
			safe = x.Module == "Bitwise" || x.Module == "" && guardCalls.Contains(x.Name)
		default:
			safe = false
		}
		return safe
	})
	return safe
}
