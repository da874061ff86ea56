package target

import (
	set "github.com/hashicorp/go-set/v3"
)

// Rule rewrites a single node. When handled is false Transform rebuilds
// the node from its rewritten children. A rule that needs control over
// recursion (for example to track shadowing) handles the node itself and
// calls recurse on whichever children it wants rewritten under the same
// rule.
type Rule func(e Expr, recurse func(Expr) Expr) (out Expr, handled bool)

// Transform rewrites e top-down with rule, recursing into every child
// expression slot. The input tree is left untouched; rebuilt nodes are
// fresh copies.
func Transform(e Expr, rule Rule) Expr {
	if e == nil {
		return nil
	}
	var recurse func(Expr) Expr
	recurse = func(n Expr) Expr {
		if n == nil {
			return nil
		}
		if out, handled := rule(n, recurse); handled {
			return out
		}
		return MapChildren(n, recurse)
	}
	return recurse(e)
}

// MapChildren returns a copy of e with f applied to each direct child
// expression. Patterns are copied by reference.
func MapChildren(e Expr, f func(Expr) Expr) Expr {
	switch n := e.(type) {
	case *Var, *Atom, *Integer, *Float, *String, *Boolean, *Nil:
		return n
	case *Tuple:
		return &Tuple{Elems: mapAll(n.Elems, f)}
	case *List:
		return &List{Elems: mapAll(n.Elems, f)}
	case *Map:
		pairs := make([]MapPair, len(n.Pairs))
		for i, p := range n.Pairs {
			pairs[i] = MapPair{Key: f(p.Key), Value: f(p.Value)}
		}
		return &Map{Pairs: pairs}
	case *BinaryOp:
		return &BinaryOp{Op: n.Op, Left: f(n.Left), Right: f(n.Right)}
	case *UnaryOp:
		return &UnaryOp{Op: n.Op, Operand: f(n.Operand)}
	case *Call:
		return &Call{Module: n.Module, Name: n.Name, Args: mapAll(n.Args, f)}
	case *AnonCall:
		return &AnonCall{Fn: f(n.Fn), Args: mapAll(n.Args, f)}
	case *Access:
		return &Access{Expr: f(n.Expr), Field: n.Field}
	case *Block:
		return &Block{Exprs: mapAll(n.Exprs, f)}
	case *MatchBind:
		return &MatchBind{Pattern: n.Pattern, Value: f(n.Value)}
	case *If:
		return &If{Cond: f(n.Cond), Then: f(n.Then), Else: mapOpt(n.Else, f)}
	case *Case:
		out := &Case{Scrutinee: f(n.Scrutinee), Clauses: make([]*Clause, len(n.Clauses))}
		for i, cl := range n.Clauses {
			out.Clauses[i] = &Clause{Pattern: cl.Pattern, Guard: mapOpt(cl.Guard, f), Body: f(cl.Body)}
		}
		return out
	case *Fn:
		out := &Fn{Clauses: make([]*FnClause, len(n.Clauses))}
		for i, cl := range n.Clauses {
			out.Clauses[i] = &FnClause{Params: cl.Params, Guard: mapOpt(cl.Guard, f), Body: f(cl.Body)}
		}
		return out
	case nil:
		return nil
	}
	panic("target: unknown expression node")
}

func mapAll(es []Expr, f func(Expr) Expr) []Expr {
	if es == nil {
		return nil
	}
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = f(e)
	}
	return out
}

func mapOpt(e Expr, f func(Expr) Expr) Expr {
	if e == nil {
		return nil
	}
	return f(e)
}

// RewriteFree replaces every free occurrence of a variable with fn(v).
// Names bound by clause patterns, function parameters and earlier matches
// in the same block shadow outer names.
func RewriteFree(e Expr, fn func(v *Var) Expr) Expr {
	return rewriteFree(e, set.New[string](0), fn)
}

func rewriteFree(e Expr, bound *set.Set[string], fn func(v *Var) Expr) Expr {
	return Transform(e, func(n Expr, recurse func(Expr) Expr) (Expr, bool) {
		switch x := n.(type) {
		case *Var:
			if bound.Contains(x.Name) {
				return x, true
			}
			return fn(x), true
		case *Case:
			out := &Case{Scrutinee: rewriteFree(x.Scrutinee, bound, fn), Clauses: make([]*Clause, len(x.Clauses))}
			for i, cl := range x.Clauses {
				inner := withBinders(bound, cl.Pattern)
				out.Clauses[i] = &Clause{
					Pattern: cl.Pattern,
					Guard:   optRewrite(cl.Guard, inner, fn),
					Body:    rewriteFree(cl.Body, inner, fn),
				}
			}
			return out, true
		case *Fn:
			out := &Fn{Clauses: make([]*FnClause, len(x.Clauses))}
			for i, cl := range x.Clauses {
				inner := withBinders(bound, cl.Params...)
				out.Clauses[i] = &FnClause{
					Params: cl.Params,
					Guard:  optRewrite(cl.Guard, inner, fn),
					Body:   rewriteFree(cl.Body, inner, fn),
				}
			}
			return out, true
		case *Block:
			cur := bound
			out := &Block{Exprs: make([]Expr, len(x.Exprs))}
			for i, ex := range x.Exprs {
				out.Exprs[i] = rewriteFree(ex, cur, fn)
				if mb, ok := ex.(*MatchBind); ok {
					cur = withBinders(cur, mb.Pattern)
				}
			}
			return out, true
		}
		return nil, false
	})
}

func optRewrite(e Expr, bound *set.Set[string], fn func(v *Var) Expr) Expr {
	if e == nil {
		return nil
	}
	return rewriteFree(e, bound, fn)
}

func withBinders(bound *set.Set[string], pats ...Pattern) *set.Set[string] {
	out := bound.Copy()
	for _, p := range pats {
		out.InsertSlice(Binders(p))
	}
	return out
}

// FreeVars returns the set of variable names read freely in e.
func FreeVars(e Expr) *set.Set[string] {
	names := set.New[string](0)
	RewriteFree(e, func(v *Var) Expr {
		names.Insert(v.Name)
		return v
	})
	return names
}

// Rename replaces free occurrences of the mapping's keys.
func Rename(e Expr, mapping map[string]string) Expr {
	if len(mapping) == 0 {
		return e
	}
	return RewriteFree(e, func(v *Var) Expr {
		if to, ok := mapping[v.Name]; ok {
			return &Var{Name: to}
		}
		return v
	})
}

// Mentions reports whether name occurs free in e.
func Mentions(e Expr, name string) bool {
	return e != nil && FreeVars(e).Contains(name)
}

// Inspect visits e and its descendants top-down. Returning false from fn
// skips the children of that node.
func Inspect(e Expr, fn func(Expr) bool) {
	Transform(e, func(n Expr, _ func(Expr) Expr) (Expr, bool) {
		if !fn(n) {
			return n, true
		}
		return nil, false
	})
}

// RenamePattern renames binders of p, returning a copy when anything
// changed.
func RenamePattern(p Pattern, mapping map[string]string) Pattern {
	switch pt := p.(type) {
	case *PVar:
		if to, ok := mapping[pt.Name]; ok {
			return &PVar{Name: to}
		}
		return pt
	case *PTuple:
		return &PTuple{Elems: renamePatterns(pt.Elems, mapping)}
	case *PList:
		return &PList{Elems: renamePatterns(pt.Elems, mapping)}
	case *PCons:
		return &PCons{Heads: renamePatterns(pt.Heads, mapping), Tail: RenamePattern(pt.Tail, mapping)}
	case *PAlias:
		name := pt.Name
		if to, ok := mapping[name]; ok {
			name = to
		}
		return &PAlias{Name: name, Pattern: RenamePattern(pt.Pattern, mapping)}
	case *PMap:
		return &PMap{Pairs: renamePairs(pt.Pairs, mapping)}
	case *PStruct:
		return &PStruct{Module: pt.Module, Fields: renamePairs(pt.Fields, mapping)}
	}
	return p
}

func renamePatterns(ps []Pattern, mapping map[string]string) []Pattern {
	out := make([]Pattern, len(ps))
	for i, p := range ps {
		out[i] = RenamePattern(p, mapping)
	}
	return out
}

func renamePairs(ps []PMapPair, mapping map[string]string) []PMapPair {
	out := make([]PMapPair, len(ps))
	for i, kv := range ps {
		out[i] = PMapPair{Key: kv.Key, Pattern: RenamePattern(kv.Pattern, mapping)}
	}
	return out
}

// Wildcard replaces every binder of p with `_`.
func Wildcard(p Pattern) Pattern {
	switch pt := p.(type) {
	case *PVar:
		return &PWildcard{}
	case *PTuple:
		return &PTuple{Elems: wildcardAll(pt.Elems)}
	case *PList:
		return &PList{Elems: wildcardAll(pt.Elems)}
	case *PCons:
		return &PCons{Heads: wildcardAll(pt.Heads), Tail: Wildcard(pt.Tail)}
	case *PAlias:
		return Wildcard(pt.Pattern)
	case *PMap:
		pairs := make([]PMapPair, len(pt.Pairs))
		for i, kv := range pt.Pairs {
			pairs[i] = PMapPair{Key: kv.Key, Pattern: Wildcard(kv.Pattern)}
		}
		return &PMap{Pairs: pairs}
	case *PStruct:
		fields := make([]PMapPair, len(pt.Fields))
		for i, kv := range pt.Fields {
			fields[i] = PMapPair{Key: kv.Key, Pattern: Wildcard(kv.Pattern)}
		}
		return &PStruct{Module: pt.Module, Fields: fields}
	}
	return p
}

func wildcardAll(ps []Pattern) []Pattern {
	out := make([]Pattern, len(ps))
	for i, p := range ps {
		out[i] = Wildcard(p)
	}
	return out
}
