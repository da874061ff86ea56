package lower

import (
	"github.com/funvibe/caselower/internal/ast"
)

// usage is the read/write census of one arm body.
type usage struct {
	reads  map[ast.VarID]int
	writes map[ast.VarID]int
	// inline payload reads of the scrutinee, by payload index
	payload map[int]int
}

// analyzeUsage is the first usage pass: it classifies every variable
// occurrence in the given nodes. Declarations and assignment targets are
// writes, read-modify-write operators are both. Initialisers of recovered
// extractions and alias edges are skipped, they are bookkeeping for the
// second pass rather than uses.
func analyzeUsage(rec *recovery, nodes ...ast.Node) *usage {
	u := &usage{
		reads:   make(map[ast.VarID]int),
		writes:  make(map[ast.VarID]int),
		payload: make(map[int]int),
	}
	for _, n := range nodes {
		u.walk(rec, n)
	}
	return u
}

func (u *usage) walk(rec *recovery, n ast.Node) {
	if n == nil {
		return
	}
	switch x := n.(type) {
	case *ast.Local:
		if x.Var != nil {
			u.reads[x.Var.ID]++
		}
		return
	case *ast.VarDecl:
		if x.Var == nil {
			return
		}
		u.writes[x.Var.ID]++
		if _, tracked := rec.byVar[x.Var.ID]; tracked {
			return
		}
		u.walk(rec, x.Init)
		return
	case *ast.Binop:
		if l, ok := ast.Unwrap(x.Left).(*ast.Local); ok && l.Var != nil && isAssignOp(x.Op) {
			u.writes[l.Var.ID]++
			if x.Op != "=" {
				u.reads[l.Var.ID]++
			} else if _, tracked := rec.byVar[l.Var.ID]; tracked && isExtractionOf(rec, x.Right) {
				return
			}
			u.walk(rec, x.Right)
			return
		}
	case *ast.Unop:
		if l, ok := ast.Unwrap(x.Expr).(*ast.Local); ok && l.Var != nil && isIncDec(x.Op) {
			u.reads[l.Var.ID]++
			u.writes[l.Var.ID]++
			return
		}
	case *ast.EnumParameter:
		if rec.ctor != nil && x.Ctor != nil && x.Ctor.Name == rec.ctor.Name && rec.isReceiver(x.Expr) {
			u.payload[x.Index]++
			return
		}
	}
	for _, c := range n.Children() {
		u.walk(rec, c)
	}
}

// binderUsed is the second pass: binder i is used when any variable in
// its alias-closed set is read, or when the body reads payload i inline.
func (u *usage) binderUsed(i int, vars []ast.VarID) bool {
	if u.payload[i] > 0 {
		return true
	}
	for _, id := range vars {
		if u.reads[id] > 0 {
			return true
		}
	}
	return false
}

// writtenOnce reports whether no variable in vars is assigned again after
// its initialisation.
func (u *usage) writtenOnce(vars []ast.VarID) bool {
	for _, id := range vars {
		if u.writes[id] > 1 {
			return false
		}
	}
	return true
}

func isExtractionOf(rec *recovery, n ast.Node) bool {
	ep, ok := ast.Unwrap(n).(*ast.EnumParameter)
	return ok && ep.Ctor != nil && rec.ctor != nil && ep.Ctor.Name == rec.ctor.Name && rec.isReceiver(ep.Expr)
}

func isAssignOp(op string) bool {
	switch op {
	case "=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=", ">>>=", "??=":
		return true
	}
	return false
}

func isIncDec(op string) bool { return op == "++" || op == "--" }
