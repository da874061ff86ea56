package lower

import (
	"strings"
	"testing"

	"github.com/funvibe/caselower/internal/ast"
	"github.com/funvibe/caselower/internal/diagnostics"
	"github.com/funvibe/caselower/internal/prettyprinter"
	"github.com/funvibe/caselower/internal/typesystem"
)

// Sum types shared by the tests.
var (
	shapeType = typesystem.NewSumType("Shape",
		typesystem.Ctor("Circle", typesystem.Param{Name: "radius", Type: typesystem.Float}),
		typesystem.Ctor("Square", typesystem.Param{Name: "side", Type: typesystem.Float}),
	)
	resultType = typesystem.NewSumType("Result",
		typesystem.Ctor("Ok", typesystem.Param{Name: "value", Type: typesystem.Int}),
		typesystem.Ctor("Error", typesystem.Param{Name: "e", Type: typesystem.String}),
	)
	optionType = typesystem.NewSumType("Option",
		typesystem.Ctor("None"),
		typesystem.Ctor("Some", typesystem.Param{Name: "v", Type: typesystem.TEnum{Sum: resultType}}),
	)
	intOptionType = typesystem.NewSumType("IntOption",
		typesystem.Ctor("None"),
		typesystem.Ctor("Some", typesystem.Param{Name: "v", Type: typesystem.Int}),
	)
	treeType = newTreeType()
	pairType = typesystem.NewSumType("Pair",
		typesystem.Ctor("Pair",
			typesystem.Param{Name: "first", Type: typesystem.Int},
			typesystem.Param{Name: "second", Type: typesystem.Int}),
	)
	colorType = typesystem.NewSumType("Color",
		typesystem.Ctor("Red"), typesystem.Ctor("Green"), typesystem.Ctor("Blue"),
	)
)

func newTreeType() *typesystem.SumType {
	tree := &typesystem.SumType{Name: "Tree"}
	self := typesystem.TEnum{Sum: tree}
	built := typesystem.NewSumType("Tree",
		typesystem.Ctor("Leaf"),
		typesystem.Ctor("Node",
			typesystem.Param{Name: "left", Type: self},
			typesystem.Param{Name: "right", Type: self}),
	)
	*tree = *built
	return tree
}

func ctor(sum *typesystem.SumType, name string) *typesystem.Constructor {
	c, ok := sum.ByName(name)
	if !ok {
		panic("no constructor " + name)
	}
	return c
}

// vars hands out variables with unique ids.
type vars struct{ next ast.VarID }

func (v *vars) of(name string, t typesystem.Type) *ast.Var {
	v.next++
	return &ast.Var{ID: v.next, Name: name, Type: t}
}

func local(v *ast.Var) ast.Node { return ast.NewLocal(v) }

func enumOf(sum *typesystem.SumType) typesystem.Type { return typesystem.TEnum{Sum: sum} }

// lowerSwitch lowers sw in a fresh environment and renders it.
func lowerSwitch(t *testing.T, l *Lowerer, env *Env, sw *ast.Switch) string {
	t.Helper()
	if env == nil {
		env = NewEnv("Test")
	}
	c, err := l.LowerSwitch(env, sw)
	if err != nil {
		t.Fatalf("LowerSwitch: %v", err)
	}
	if c == nil {
		t.Fatalf("LowerSwitch returned nil")
	}
	if d := l.Tracker().Depth(); d != 0 {
		t.Fatalf("tracker depth after lowering = %d, want 0", d)
	}
	return prettyprinter.Print(c)
}

func expectOutput(t *testing.T, got, want string) {
	t.Helper()
	want = strings.TrimSpace(want)
	if got != want {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func expectDiagnostic(t *testing.T, l *Lowerer, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	for _, d := range l.Diagnostics() {
		if d.Code == code {
			return d
		}
	}
	var msgs []string
	for _, d := range l.Diagnostics() {
		msgs = append(msgs, d.Error())
	}
	t.Fatalf("expected diagnostic %s, got:\n%s", code, strings.Join(msgs, "\n"))
	return nil
}

func expectNoDiagnostic(t *testing.T, l *Lowerer, code diagnostics.ErrorCode) {
	t.Helper()
	for _, d := range l.Diagnostics() {
		if d.Code == code {
			t.Fatalf("unexpected diagnostic: %s", d)
		}
	}
}
