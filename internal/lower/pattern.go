package lower

import (
	"fmt"
	"strings"

	set "github.com/hashicorp/go-set/v3"

	"github.com/funvibe/caselower/internal/ast"
	"github.com/funvibe/caselower/internal/diagnostics"
	"github.com/funvibe/caselower/internal/target"
	"github.com/funvibe/caselower/internal/typesystem"
)

// BinderCandidate is the naming record of one payload position while its
// pattern is built.
type BinderCandidate struct {
	Index int
	// Candidates are the acceptable names in priority order: explicit,
	// recovered, guard-derived, declared or canonical.
	Candidates []string
	// Chosen is the final binder name, unused marker included.
	Chosen string
	Used   bool
	// Vars are the source variables standing for this payload, aliases
	// included.
	Vars []ast.VarID
}

// arm is the lowering of one match value: its pattern and the clauses
// it expanded into.
type arm struct {
	pattern target.Pattern
	ctor    *typesystem.Constructor
	// binders by payload position; nil where the pattern has a literal or
	// nested sub-pattern instead of a binder
	binders []*BinderCandidate
	// temporaries recovered for this arm, by target spelling
	temps   map[string]int
	clauses []*target.Clause
}

// buildArm lowers one match value with its guard and body. The scope
// opened here is closed on every return path.
func (l *Lowerer) buildArm(env *Env, tgt Target, value, guard, body ast.Node) (*arm, error) {
	scope, pop := l.tracker.Enter(tgt.Descriptor)
	defer pop()
	scope.setScrutinee(tgt.Scrutinee, tgt.Var)

	a, err := l.buildPattern(env, scope, tgt, value, guard, body)
	if err != nil {
		return nil, err
	}
	if err := l.finishArm(env, a, guard, body); err != nil {
		return nil, err
	}
	return a, nil
}

// buildDefault lowers the fallback body under a wildcard pattern.
func (l *Lowerer) buildDefault(env *Env, tgt Target, body ast.Node) (*arm, error) {
	scope, pop := l.tracker.Enter(tgt.Descriptor)
	defer pop()
	scope.setScrutinee(tgt.Scrutinee, tgt.Var)

	a := &arm{pattern: &target.PWildcard{}}
	if err := l.finishArm(env, a, nil, body); err != nil {
		return nil, err
	}
	return a, nil
}

// finishArm lowers guard and body in the arm's scope and shapes the
// clauses: a nested match on a binder is folded into the pattern, a
// cascading conditional is split into guarded clauses.
func (l *Lowerer) finishArm(env *Env, a *arm, guard, body ast.Node) error {
	var g target.Expr
	var err error
	if guard != nil {
		if g, err = l.lowerExpr(env, guard); err != nil {
			return err
		}
	}
	b, err := l.lowerBody(env, body)
	if err != nil {
		return err
	}
	if clauses, ok := l.fold(a, g, b); ok {
		a.clauses = clauses
		return nil
	}
	a.clauses = l.splitGuards(a.pattern, g, b)
	return nil
}

func (l *Lowerer) buildPattern(env *Env, scope *ClauseScope, tgt Target, value, guard, body ast.Node) (*arm, error) {
	switch v := ast.Unwrap(value).(type) {
	case *ast.Const:
		if i, ok := ordinal(v); ok && tgt.Descriptor != nil {
			ctor, found := tgt.Descriptor.ByIndex(i)
			if found {
				return l.enumArm(env, scope, tgt, ctor, nil, guard, body), nil
			}
			if tgt.Erased {
				return nil, diagnostics.NewError(diagnostics.ErrL001, value.GetPos(),
					fmt.Sprintf("ordinal %d has no constructor in %s (%d constructors)", i, tgt.Descriptor, len(tgt.Descriptor.Constructors)))
			}
		}
		lit, err := constExpr(v)
		if err != nil {
			return l.unsupported(value), nil
		}
		return &arm{pattern: &target.PLiteral{Value: lit}}, nil
	case *ast.EnumCtor:
		if v.Ctor != nil {
			return l.enumArm(env, scope, tgt, v.Ctor, nil, guard, body), nil
		}
	case *ast.Call:
		if ec, ok := ast.Unwrap(v.Fn).(*ast.EnumCtor); ok && ec.Ctor != nil {
			return l.enumArm(env, scope, tgt, ec.Ctor, v.Args, guard, body), nil
		}
	case *ast.Local:
		if v.Var != nil {
			return l.captureArm(scope, v.Var, guard, body), nil
		}
	case *ast.Ident:
		if v.Name == "_" {
			return &arm{pattern: &target.PWildcard{}}, nil
		}
	}
	return l.unsupported(value), nil
}

func (l *Lowerer) unsupported(value ast.Node) *arm {
	l.report(diagnostics.NewWarning(diagnostics.ErrL002, value.GetPos(),
		fmt.Sprintf("unsupported case value %s, matching anything", value.Kind())))
	return &arm{pattern: &target.PWildcard{}}
}

// captureArm binds the whole scrutinee to a variable.
func (l *Lowerer) captureArm(scope *ClauseScope, v *ast.Var, guard, body ast.Node) *arm {
	u := analyzeUsage(&recovery{byVar: map[ast.VarID]int{}, receivers: set.New[ast.VarID](0)}, guard, body)
	name := l.names.ident(v.Name)
	if u.reads[v.ID] == 0 {
		name = l.names.unused(name)
	}
	scope.Set(v.ID, name)
	return &arm{pattern: &target.PVar{Name: name}}
}

// enumArm builds the tagged-tuple pattern of ctor, recovering binder
// names from the arm body.
func (l *Lowerer) enumArm(env *Env, scope *ClauseScope, tgt Target, ctor *typesystem.Constructor, args []ast.Node, guard, body ast.Node) *arm {
	rec := recoverBinders(body, tgt, ctor)
	for _, id := range rec.receivers.Slice() {
		scope.addReceiver(id)
	}
	u := analyzeUsage(rec, guard, body)

	taken := set.From(scope.visibleNames())
	taken.InsertSlice(env.Params())

	var guardVar *ast.Var
	if ctor.Arity() == 1 && !hasExplicitName(args) {
		guardVar = l.guardBinder(env, scope, tgt, rec, guard)
	}
	b := &patternBuilder{l: l, env: env, scope: scope, usage: u, taken: taken}
	pattern, binders := b.ctorPattern(ctor, args, rec, guardVar)

	temps := make(map[string]int)
	for _, e := range rec.extractions {
		if name := l.names.ident(e.Var.Name); l.names.IsExtractionTemp(name) {
			temps[name] = e.Index
		}
	}
	return &arm{pattern: pattern, ctor: ctor, binders: binders, temps: temps}
}

// patternBuilder carries the per-clause state of pattern construction.
type patternBuilder struct {
	l     *Lowerer
	env   *Env
	scope *ClauseScope
	usage *usage
	taken *set.Set[string]
}

// ctorPattern builds {:tag, p0, ..., pk-1} for ctor. rec is nil for
// nested sub-patterns, which only take explicit names.
func (b *patternBuilder) ctorPattern(ctor *typesystem.Constructor, args []ast.Node, rec *recovery, guardVar *ast.Var) (target.Pattern, []*BinderCandidate) {
	l := b.l
	elems := []target.Pattern{&target.PLiteral{Value: &target.Atom{Value: l.names.tag(ctor.Name)}}}
	binders := make([]*BinderCandidate, ctor.Arity())
	payload := make([]string, ctor.Arity())

	for i := 0; i < ctor.Arity(); i++ {
		var arg ast.Node
		if i < len(args) {
			arg = ast.Unwrap(args[i])
		}
		if sub, ok := b.subPattern(arg); ok {
			elems = append(elems, sub)
			continue
		}

		bc := &BinderCandidate{Index: i}
		if loc, ok := arg.(*ast.Local); ok && loc.Var != nil {
			bc.Vars = append(bc.Vars, loc.Var.ID)
			if !l.names.isGeneric(loc.Var.Name) {
				bc.Candidates = append(bc.Candidates, loc.Var.Name)
			}
		}
		var bindable []ast.VarID
		if rec != nil {
			bc.Candidates = append(bc.Candidates, b.recovered(ctor, rec, i)...)
			for _, id := range rec.vars(i) {
				bc.Vars = append(bc.Vars, id)
				// a binder stands for a variable only while every alias of
				// its value still holds the payload
				if b.usage.writtenOnce(rec.aliasGroup(id)) {
					bindable = append(bindable, id)
				}
			}
		}
		if guardVar != nil && i == 0 {
			bc.Vars = append(bc.Vars, guardVar.ID)
			bindable = append(bindable, guardVar.ID)
			if !l.names.isReserved(guardVar.Name) {
				bc.Candidates = append(bc.Candidates, guardVar.Name)
			}
		}
		bc.Candidates = append(bc.Candidates, l.declaredName(ctor, i))

		name := uniqueName(l.names.ident(bc.Candidates[0]), b.taken)
		b.taken.Insert(name)
		if rec != nil {
			bc.Used = b.usage.binderUsed(i, bc.Vars)
		} else {
			bc.Used = b.readsAny(bc.Vars)
		}
		if !bc.Used {
			name = uniqueName(l.names.unused(name), b.taken)
			b.taken.Insert(name)
		}
		bc.Chosen = name

		if loc, ok := arg.(*ast.Local); ok && loc.Var != nil {
			b.scope.Set(loc.Var.ID, name)
		}
		for _, id := range bindable {
			b.scope.Set(id, name)
		}
		binders[i] = bc
		payload[i] = name
		elems = append(elems, &target.PVar{Name: name})
	}
	if rec != nil {
		b.scope.Consume(ctor, payload)
	}
	return &target.PTuple{Elems: elems}, binders
}

// subPattern handles argument shapes that are not binders: literals and
// nested constructor patterns.
func (b *patternBuilder) subPattern(arg ast.Node) (target.Pattern, bool) {
	switch a := arg.(type) {
	case *ast.Const:
		lit, err := constExpr(a)
		if err != nil {
			return b.l.unsupported(a).pattern, true
		}
		return &target.PLiteral{Value: lit}, true
	case *ast.EnumCtor:
		if a.Ctor != nil {
			p, _ := b.ctorPattern(a.Ctor, nil, nil, nil)
			return p, true
		}
	case *ast.Call:
		if ec, ok := ast.Unwrap(a.Fn).(*ast.EnumCtor); ok && ec.Ctor != nil {
			p, _ := b.ctorPattern(ec.Ctor, a.Args, nil, nil)
			return p, true
		}
	}
	return nil, false
}

func (b *patternBuilder) readsAny(vars []ast.VarID) bool {
	for _, id := range vars {
		if b.usage.reads[id] > 0 {
			return true
		}
	}
	return false
}

// recovered returns the names recovered for payload i that survive the
// reserved-name, temporary and parameter filters. Direct extractions come
// before aliases of them. When several direct extractions carry distinct
// names the first wins and the choice is reported.
func (b *patternBuilder) recovered(ctor *typesystem.Constructor, rec *recovery, i int) []string {
	l := b.l
	var direct, aliases []string
	seen := set.New[string](0)
	for _, e := range rec.candidates(i) {
		name := e.Var.Name
		if l.names.isReserved(name) || b.env.IsParam(l.names.ident(name)) || seen.Contains(name) {
			continue
		}
		seen.Insert(name)
		if e.Alias {
			aliases = append(aliases, name)
		} else {
			direct = append(direct, name)
		}
	}
	if len(direct) > 1 {
		l.report(diagnostics.NewInfo(diagnostics.ErrL003, ast.Pos{},
			fmt.Sprintf("payload %d of %s: candidates %s, using %q", i, ctor.Name, strings.Join(direct, ", "), direct[0])))
	}
	return append(direct, aliases...)
}

// guardBinder finds the variable a guard uses for the payload of a
// single-parameter constructor: the first local the guard reads that is
// declared nowhere the lowering has seen.
func (l *Lowerer) guardBinder(env *Env, scope *ClauseScope, tgt Target, rec *recovery, guard ast.Node) *ast.Var {
	var found *ast.Var
	ast.Inspect(guard, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		loc, ok := n.(*ast.Local)
		if !ok || loc.Var == nil {
			return true
		}
		id := loc.Var.ID
		if tgt.Var != nil && id == tgt.Var.ID {
			return true
		}
		if _, ok := rec.byVar[id]; ok {
			return true
		}
		if _, ok := scope.Lookup(id); ok {
			return true
		}
		if _, ok := env.Rename(id); ok {
			return true
		}
		if l.declared.Contains(id) || env.IsParam(l.names.ident(loc.Var.Name)) {
			return true
		}
		found = loc.Var
		return false
	})
	return found
}

// declaredName is the last step of the cascade: the declared parameter
// name, or its canonical replacement when it is generic.
func (l *Lowerer) declaredName(ctor *typesystem.Constructor, i int) string {
	var declared string
	if i < len(ctor.Params) {
		declared = ctor.Params[i].Name
	}
	if declared != "" && !l.names.isGeneric(declared) {
		return declared
	}
	if name, ok := l.cfg.Naming.Canonical(ctor.Name, i); ok {
		return name
	}
	if declared != "" && !l.names.isReserved(declared) {
		return declared
	}
	return fmt.Sprintf("arg%d", i)
}

func hasExplicitName(args []ast.Node) bool {
	if len(args) == 0 {
		return false
	}
	loc, ok := ast.Unwrap(args[0]).(*ast.Local)
	return ok && loc.Var != nil
}

// ordinal extracts an integer case value.
func ordinal(c *ast.Const) (int, bool) {
	switch v := c.Value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	}
	return 0, false
}
