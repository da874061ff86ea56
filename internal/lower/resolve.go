package lower

import (
	"github.com/funvibe/caselower/internal/ast"
	"github.com/funvibe/caselower/internal/typesystem"
)

// Target is the normalised scrutinee of a match.
type Target struct {
	// Scrutinee is the real value being matched, wrappers and ordinal
	// projection removed.
	Scrutinee ast.Node
	// Descriptor is the sum type of Scrutinee, nil when it has none.
	Descriptor *typesystem.SumType
	// Erased is set when the subject was an ordinal projection.
	Erased bool
	// Var and VarName identify the scrutinee when it is a plain local.
	Var     *ast.Var
	VarName string
}

// Unresolved reports an ordinal test whose descriptor is unknown; arms
// then fall back to literal equality against the ordinal.
func (t Target) Unresolved() bool {
	return t.Erased && t.Descriptor == nil
}

// Resolve normalises a switch subject.
func Resolve(subject ast.Node) Target {
	n := ast.Unwrap(subject)
	if inner, ok := ordinalOperand(n); ok {
		inner = ast.Unwrap(inner)
		t := Target{Scrutinee: inner, Erased: true}
		if inner != nil {
			t.Descriptor = typesystem.SumTypeOf(inner.Type())
		}
		t.setVar(inner)
		return t
	}
	t := Target{Scrutinee: n}
	if n != nil {
		t.Descriptor = typesystem.SumTypeOf(n.Type())
	}
	t.setVar(n)
	return t
}

func (t *Target) setVar(n ast.Node) {
	if l, ok := n.(*ast.Local); ok && l.Var != nil {
		t.Var = l.Var
		t.VarName = l.Var.Name
	}
}

// ordinalOperand recognises the ordinal projection of a sum value: the
// EnumIndex node, or a call to the runtime helper Type.enumIndex(v).
func ordinalOperand(n ast.Node) (ast.Node, bool) {
	switch x := n.(type) {
	case *ast.EnumIndex:
		return x.Expr, true
	case *ast.Call:
		f, ok := ast.Unwrap(x.Fn).(*ast.Field)
		if !ok || f.Name != "enumIndex" || len(x.Args) != 1 {
			return nil, false
		}
		if ref, ok := ast.Unwrap(f.Expr).(*ast.TypeRef); ok && ref.Name == "Type" {
			return x.Args[0], true
		}
	}
	return nil, false
}
