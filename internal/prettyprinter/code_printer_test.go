package prettyprinter

import (
	"encoding/json"
	"testing"

	"github.com/funvibe/caselower/internal/target"
)

func v(name string) *target.Var { return &target.Var{Name: name} }

func TestPrintExpressions(t *testing.T) {
	tests := []struct {
		name string
		expr target.Expr
		want string
	}{
		{"atom", &target.Atom{Value: "ok"}, ":ok"},
		{"quoted atom", &target.Atom{Value: "hello world"}, `:"hello world"`},
		{"float", &target.Float{Value: 2}, "2.0"},
		{"string escapes interpolation", &target.String{Value: "a#{b}"}, `"a\#{b}"`},
		{"tuple", &target.Tuple{Elems: []target.Expr{&target.Atom{Value: "some"}, &target.Integer{Value: 5}}}, "{:some, 5}"},
		{
			"precedence",
			&target.BinaryOp{Op: "*", Left: &target.BinaryOp{Op: "+", Left: v("a"), Right: v("b")}, Right: v("c")},
			"(a + b) * c",
		},
		{
			"left assoc",
			&target.BinaryOp{Op: "-", Left: v("a"), Right: &target.BinaryOp{Op: "-", Left: v("b"), Right: v("c")}},
			"a - (b - c)",
		},
		{"not", &target.UnaryOp{Op: "not", Operand: v("x")}, "not x"},
		{"remote call", &target.Call{Module: "Bitwise", Name: "band", Args: []target.Expr{v("a"), v("b")}}, "Bitwise.band(a, b)"},
		{"anon call", &target.AnonCall{Fn: v("f"), Args: []target.Expr{&target.Integer{Value: 1}}}, "f.(1)"},
		{"keyword map", &target.Map{Pairs: []target.MapPair{{Key: &target.Atom{Value: "x"}, Value: &target.Integer{Value: 1}}}}, "%{x: 1}"},
		{"arrow map", &target.Map{Pairs: []target.MapPair{{Key: &target.String{Value: "x"}, Value: &target.Integer{Value: 1}}}}, `%{"x" => 1}`},
		{"match", &target.MatchBind{Pattern: &target.PVar{Name: "r"}, Value: v("x")}, "r = x"},
		{
			"fn",
			&target.Fn{Clauses: []*target.FnClause{{Params: []target.Pattern{&target.PVar{Name: "x"}}, Body: v("x")}}},
			"fn x -> x end",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Print(tt.expr); got != tt.want {
				t.Errorf("Print() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintPatterns(t *testing.T) {
	tag := func(s string) target.Pattern { return &target.PLiteral{Value: &target.Atom{Value: s}} }
	tests := []struct {
		pat  target.Pattern
		want string
	}{
		{&target.PTuple{Elems: []target.Pattern{tag("circle"), &target.PVar{Name: "r"}}}, "{:circle, r}"},
		{&target.PTuple{Elems: []target.Pattern{tag("none")}}, "{:none}"},
		{&target.PAlias{Name: "inner", Pattern: &target.PTuple{Elems: []target.Pattern{tag("ok"), &target.PVar{Name: "n"}}}}, "{:ok, n} = inner"},
		{&target.PCons{Heads: []target.Pattern{&target.PVar{Name: "h"}}, Tail: &target.PWildcard{}}, "[h | _]"},
		{&target.PStruct{Module: "Point", Fields: []target.PMapPair{{Key: &target.Atom{Value: "x"}, Pattern: &target.PVar{Name: "x"}}}}, "%Point{x: x}"},
	}
	for _, tt := range tests {
		if got := PrintPattern(tt.pat); got != tt.want {
			t.Errorf("PrintPattern() = %q, want %q", got, tt.want)
		}
	}
}

func TestPrintCase(t *testing.T) {
	c := &target.Case{
		Scrutinee: v("shape"),
		Clauses: []*target.Clause{
			{
				Pattern: &target.PTuple{Elems: []target.Pattern{&target.PLiteral{Value: &target.Atom{Value: "circle"}}, &target.PVar{Name: "r"}}},
				Guard:   &target.BinaryOp{Op: ">", Left: v("r"), Right: &target.Integer{Value: 0}},
				Body:    &target.BinaryOp{Op: "*", Left: v("r"), Right: v("r")},
			},
			{
				Pattern: &target.PWildcard{},
				Body: &target.Block{Exprs: []target.Expr{
					&target.MatchBind{Pattern: &target.PVar{Name: "x"}, Value: &target.Integer{Value: 1}},
					v("x"),
				}},
			},
		},
	}
	want := `case shape do
  {:circle, r} when r > 0 -> r * r
  _ ->
    x = 1
    x
end`
	if got := Print(c); got != want {
		t.Errorf("Print() =\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintIf(t *testing.T) {
	e := &target.If{Cond: v("c"), Then: &target.String{Value: "a"}, Else: &target.String{Value: "b"}}
	want := "if c do\n  \"a\"\nelse\n  \"b\"\nend"
	if got := Print(e); got != want {
		t.Errorf("Print() = %q, want %q", got, want)
	}
}

func TestMarshalJSON(t *testing.T) {
	c := &target.Case{
		Scrutinee: v("x"),
		Clauses: []*target.Clause{{
			Pattern: &target.PLiteral{Value: &target.Integer{Value: 1}},
			Body:    &target.Atom{Value: "one"},
		}},
	}
	data, err := MarshalJSON(c)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, data)
	}
	if decoded["node"] != "case" {
		t.Errorf("node = %v, want case", decoded["node"])
	}
	clauses, ok := decoded["clauses"].([]interface{})
	if !ok || len(clauses) != 1 {
		t.Fatalf("clauses = %v", decoded["clauses"])
	}
	pattern := clauses[0].(map[string]interface{})["pattern"].(map[string]interface{})
	if pattern["node"] != "p_literal" {
		t.Errorf("pattern node = %v, want p_literal", pattern["node"])
	}
}
