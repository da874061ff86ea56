package lower

import (
	"sort"

	set "github.com/hashicorp/go-set/v3"

	"github.com/funvibe/caselower/internal/ast"
	"github.com/funvibe/caselower/internal/typesystem"
)

// extraction is a local whose value is payload Index of the scrutinee,
// either directly or through a chain of aliases.
type extraction struct {
	Var   *ast.Var
	Index int
	Alias bool
}

// recovery is the result of scanning an arm body for payload extractions
// of the current match.
type recovery struct {
	ctor      *typesystem.Constructor
	scrutinee ast.Node
	receivers *set.Set[ast.VarID]

	extractions []extraction
	byVar       map[ast.VarID]int
	aliasOf     map[ast.VarID]ast.VarID
}

// recoverBinders walks body collecting locals initialised from payloads of
// ctor on the scrutinee. Only extractions whose receiver is the scrutinee
// itself or a local alias of it count: recursive sum types produce the
// same extraction shape for unrelated sub-values, and names recovered from
// those would leak into this match's pattern.
func recoverBinders(body ast.Node, target Target, ctor *typesystem.Constructor) *recovery {
	r := &recovery{
		ctor:      ctor,
		scrutinee: target.Scrutinee,
		receivers: set.New[ast.VarID](0),
		byVar:     make(map[ast.VarID]int),
		aliasOf:   make(map[ast.VarID]ast.VarID),
	}
	if target.Var != nil {
		r.receivers.Insert(target.Var.ID)
	}
	if body == nil || ctor == nil {
		return r
	}
	ast.Inspect(body, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.VarDecl:
			if x.Var != nil && x.Init != nil {
				r.track(x.Var, x.Init)
			}
		case *ast.Binop:
			if x.Op != "=" {
				break
			}
			if l, ok := ast.Unwrap(x.Left).(*ast.Local); ok && l.Var != nil {
				if _, seen := r.byVar[l.Var.ID]; !seen {
					r.track(l.Var, x.Right)
				}
			}
		}
		return true
	})
	return r
}

func (r *recovery) track(v *ast.Var, init ast.Node) {
	switch src := ast.Unwrap(init).(type) {
	case *ast.EnumParameter:
		if src.Ctor == nil || src.Ctor.Name != r.ctor.Name || !r.isReceiver(src.Expr) {
			return
		}
		if src.Index < 0 || src.Index >= r.ctor.Arity() {
			return
		}
		r.add(extraction{Var: v, Index: src.Index})
	case *ast.Local:
		if src.Var == nil {
			return
		}
		if idx, ok := r.byVar[src.Var.ID]; ok {
			r.aliasOf[v.ID] = src.Var.ID
			r.add(extraction{Var: v, Index: idx, Alias: true})
			return
		}
		if r.receivers.Contains(src.Var.ID) {
			r.receivers.Insert(v.ID)
		}
	}
}

func (r *recovery) add(e extraction) {
	if _, dup := r.byVar[e.Var.ID]; dup {
		return
	}
	r.byVar[e.Var.ID] = e.Index
	r.extractions = append(r.extractions, e)
}

// isReceiver reports whether n provably holds the scrutinee.
func (r *recovery) isReceiver(n ast.Node) bool {
	n = ast.Unwrap(n)
	if n == nil {
		return false
	}
	if r.scrutinee != nil && n == ast.Unwrap(r.scrutinee) {
		return true
	}
	if l, ok := n.(*ast.Local); ok && l.Var != nil {
		return r.receivers.Contains(l.Var.ID)
	}
	return false
}

// candidates returns the extractions of payload i in body order.
func (r *recovery) candidates(i int) []extraction {
	var out []extraction
	for _, e := range r.extractions {
		if e.Index == i {
			out = append(out, e)
		}
	}
	return out
}

// vars returns the variables bound to payload i, aliases included.
func (r *recovery) vars(i int) []ast.VarID {
	var out []ast.VarID
	for _, e := range r.extractions {
		if e.Index == i {
			out = append(out, e.Var.ID)
		}
	}
	return out
}

// aliasGroup returns id and every variable linked to it by alias edges,
// in either direction.
func (r *recovery) aliasGroup(id ast.VarID) []ast.VarID {
	group := set.From([]ast.VarID{id})
	queue := []ast.VarID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for alias, src := range r.aliasOf {
			var next ast.VarID
			switch cur {
			case alias:
				next = src
			case src:
				next = alias
			default:
				continue
			}
			if !group.Contains(next) {
				group.Insert(next)
				queue = append(queue, next)
			}
		}
	}
	out := group.Slice()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
