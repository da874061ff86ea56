package lower

import (
	"sort"

	set "github.com/hashicorp/go-set/v3"

	"github.com/funvibe/caselower/internal/target"
)

// repair rewrites nested matches whose scrutinee is an optimizer
// temporary left free in the clause. The temporary stands for a payload
// of the arm's constructor: the only payload for single-parameter
// constructors, otherwise the position recorded during recovery or
// encoded in the temporary's numeric suffix. Binders marked unused lose
// the marker once the rewrite makes them read.
func (l *Lowerer) repair(a *arm) {
	if a.ctor == nil || len(a.binders) == 0 {
		return
	}
	for _, cl := range a.clauses {
		stale := l.staleScrutinees(cl)
		if len(stale) == 0 {
			continue
		}
		rename := make(map[string]string, len(stale))
		unmark := make(map[string]string)
		for _, temp := range stale {
			bc := a.binderFor(temp)
			if bc == nil {
				continue
			}
			name := bc.Chosen
			if !bc.Used {
				if _, done := unmark[name]; !done {
					unmark[name] = l.names.used(name)
				}
				name = unmark[name]
			}
			rename[temp] = name
		}
		if len(rename) == 0 {
			continue
		}
		l.tracef("repairing stale scrutinees %v", rename)
		cl.Body = target.Rename(cl.Body, rename)
		cl.Guard = renameOpt(cl.Guard, rename)
		if len(unmark) > 0 {
			cl.Pattern = target.RenamePattern(cl.Pattern, unmark)
		}
	}
}

// binderFor maps a temporary to the binder of the payload it held.
func (a *arm) binderFor(temp string) *BinderCandidate {
	k := -1
	switch idx, ok := a.temps[temp]; {
	case ok:
		k = idx
	case a.ctor.Arity() == 1:
		k = 0
	default:
		k = tempOrdinal(temp)
	}
	if k < 0 || k >= len(a.binders) {
		return nil
	}
	return a.binders[k]
}

// staleScrutinees lists, in a stable order, the temporaries used as
// nested match scrutinees that nothing in the clause binds.
func (l *Lowerer) staleScrutinees(cl *target.Clause) []string {
	free := target.FreeVars(cl.Body)
	if cl.Guard != nil {
		free.InsertSet(target.FreeVars(cl.Guard))
	}
	free.RemoveSlice(target.Binders(cl.Pattern))

	found := set.New[string](0)
	target.Inspect(cl.Body, func(e target.Expr) bool {
		c, ok := e.(*target.Case)
		if !ok {
			return true
		}
		if v, ok := c.Scrutinee.(*target.Var); ok && free.Contains(v.Name) && l.names.IsExtractionTemp(v.Name) {
			found.Insert(v.Name)
		}
		return true
	})
	out := found.Slice()
	sort.Strings(out)
	return out
}
