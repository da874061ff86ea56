package lower

import (
	"testing"

	"github.com/funvibe/caselower/internal/ast"
	"github.com/funvibe/caselower/internal/typesystem"
)

func TestResolve(t *testing.T) {
	var vs vars
	shape := vs.of("shape", enumOf(shapeType))
	aliased := vs.of("aliased", typesystem.TNull{Of: typesystem.TAlias{Name: "Shape2", Underlying: enumOf(shapeType)}})
	dyn := vs.of("x", typesystem.Dynamic)
	n := vs.of("n", typesystem.Int)

	enumIndexCall := func(arg ast.Node) ast.Node {
		return ast.NewCall(ast.NewField(ast.NewTypeRef("Type"), "enumIndex", nil), arg)
	}

	tests := []struct {
		name       string
		subject    ast.Node
		erased     bool
		descriptor *typesystem.SumType
		varName    string
	}{
		{"ordinal projection", ast.Index(local(shape)), true, shapeType, "shape"},
		{"wrapped projection", ast.NewParen(ast.NewMeta(":ordinal", ast.Index(ast.NewParen(local(shape))))), true, shapeType, "shape"},
		{"runtime helper", enumIndexCall(local(shape)), true, shapeType, "shape"},
		{"alias and nullable", ast.Index(local(aliased)), true, shapeType, "aliased"},
		{"direct sum value", ast.NewMeta(":m", local(shape)), false, shapeType, "shape"},
		{"unknown type", ast.Index(local(dyn)), true, nil, "x"},
		{"plain int", local(n), false, nil, "n"},
		{"not a local", ast.Index(ast.NewField(local(dyn), "shape", enumOf(shapeType))), true, shapeType, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.subject)
			if got.Erased != tt.erased {
				t.Errorf("Erased = %v, want %v", got.Erased, tt.erased)
			}
			if got.Descriptor != tt.descriptor {
				t.Errorf("Descriptor = %v, want %v", got.Descriptor, tt.descriptor)
			}
			if got.VarName != tt.varName {
				t.Errorf("VarName = %q, want %q", got.VarName, tt.varName)
			}
			if got.Unresolved() != (tt.erased && tt.descriptor == nil) {
				t.Errorf("Unresolved = %v", got.Unresolved())
			}
		})
	}
}

func TestResolveIgnoresOtherHelpers(t *testing.T) {
	var vs vars
	shape := vs.of("shape", enumOf(shapeType))
	call := ast.NewCall(ast.NewField(ast.NewTypeRef("Std"), "enumIndex", nil), local(shape))
	if got := Resolve(call); got.Erased {
		t.Errorf("Std.enumIndex treated as an ordinal projection")
	}
	call = ast.NewCall(ast.NewField(ast.NewTypeRef("Type"), "enumIndex", nil), local(shape), ast.Int(1))
	if got := Resolve(call); got.Erased {
		t.Errorf("two-argument enumIndex treated as an ordinal projection")
	}
}
