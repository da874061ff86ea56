package fixture

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/caselower/internal/ast"
	"github.com/funvibe/caselower/internal/typesystem"
)

type decoder struct {
	path  string
	types map[string]*typesystem.SumType
	vars  map[string]*ast.Var
	next  ast.VarID
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...interface{}) error {
	return fmt.Errorf("%s:%d:%d: %s", d.path, n.Line, n.Column, fmt.Sprintf(format, args...))
}

func (d *decoder) pos(n *yaml.Node) ast.Pos {
	return ast.Pos{File: d.path, Line: n.Line, Column: n.Column}
}

// declareTypes builds the sum types in two steps so constructor
// parameters may refer to any declared type, their own included.
func (d *decoder) declareTypes(raw []rawType) error {
	for _, t := range raw {
		if t.Name == "" {
			return fmt.Errorf("%s: type without a name", d.path)
		}
		if _, dup := d.types[t.Name]; dup {
			return fmt.Errorf("%s: type %s declared twice", d.path, t.Name)
		}
		d.types[t.Name] = &typesystem.SumType{Name: t.Name}
	}
	for _, t := range raw {
		ctors := make([]*typesystem.Constructor, 0, len(t.Constructors))
		for _, c := range t.Constructors {
			params := make([]typesystem.Param, 0, len(c.Params))
			for _, p := range c.Params {
				typ, err := d.typeOf(p.Type)
				if err != nil {
					return err
				}
				params = append(params, typesystem.Param{Name: p.Name, Type: typ})
			}
			ctors = append(ctors, typesystem.Ctor(c.Name, params...))
		}
		built := typesystem.NewSumType(t.Name, ctors...)
		built.Module = t.Module
		*d.types[t.Name] = *built
	}
	return nil
}

func (d *decoder) declareVar(v rawVar) (*ast.Var, error) {
	if v.Name == "" {
		return nil, fmt.Errorf("%s: variable without a name", d.path)
	}
	if prev, ok := d.vars[v.Name]; ok {
		return prev, nil
	}
	typ, err := d.typeOf(v.Type)
	if err != nil {
		return nil, err
	}
	d.next++
	out := &ast.Var{ID: d.next, Name: v.Name, Type: typ}
	d.vars[v.Name] = out
	return out, nil
}

// typeOf parses a type name: a primitive, a declared sum type, Null<T>,
// or anything else as a class instance.
func (d *decoder) typeOf(name string) (typesystem.Type, error) {
	name = strings.TrimSpace(name)
	switch name {
	case "":
		return nil, nil
	case "Int":
		return typesystem.Int, nil
	case "Float":
		return typesystem.Float, nil
	case "String":
		return typesystem.String, nil
	case "Bool":
		return typesystem.Bool, nil
	case "Void":
		return typesystem.Void, nil
	case "Dynamic":
		return typesystem.Dynamic, nil
	}
	if strings.HasPrefix(name, "Null<") && strings.HasSuffix(name, ">") {
		of, err := d.typeOf(name[len("Null<") : len(name)-1])
		if err != nil {
			return nil, err
		}
		return typesystem.TNull{Of: of}, nil
	}
	if sum, ok := d.types[name]; ok {
		return typesystem.TEnum{Sum: sum}, nil
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		return typesystem.TInst{Module: name[:i], Name: name[i+1:]}, nil
	}
	return typesystem.TInst{Name: name}, nil
}

// ctor resolves "Type.Ctor", or a bare constructor name against hint and
// then every declared type.
func (d *decoder) ctor(n *yaml.Node, hint *typesystem.SumType) (*typesystem.SumType, *typesystem.Constructor, error) {
	name := n.Value
	if i := strings.Index(name, "."); i > 0 {
		sum, ok := d.types[name[:i]]
		if !ok {
			return nil, nil, d.errorf(n, "unknown type %s", name[:i])
		}
		c, ok := sum.ByName(name[i+1:])
		if !ok {
			return nil, nil, d.errorf(n, "%s has no constructor %s", sum.Name, name[i+1:])
		}
		return sum, c, nil
	}
	if c, ok := hint.ByName(name); ok {
		return hint, c, nil
	}
	var (
		found *typesystem.SumType
		ctor  *typesystem.Constructor
	)
	for _, sum := range d.types {
		if c, ok := sum.ByName(name); ok {
			if found != nil {
				return nil, nil, d.errorf(n, "constructor %s is ambiguous between %s and %s", name, found.Name, sum.Name)
			}
			found, ctor = sum, c
		}
	}
	if found == nil {
		return nil, nil, d.errorf(n, "unknown constructor %s", name)
	}
	return found, ctor, nil
}

// fields splits a mapping into its entries.
func (d *decoder) fields(n *yaml.Node) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "expected a mapping")
	}
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out[n.Content[i].Value] = n.Content[i+1]
	}
	return out, nil
}

func (d *decoder) nodes(n *yaml.Node) ([]ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "expected a list of nodes")
	}
	out := make([]ast.Node, 0, len(n.Content))
	for _, c := range n.Content {
		x, err := d.node(c)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

func (d *decoder) local(n *yaml.Node) (*ast.Var, error) {
	v, ok := d.vars[n.Value]
	if !ok {
		return nil, d.errorf(n, "undeclared variable %s", n.Value)
	}
	return v, nil
}

// node decodes one tree node. A missing node or an explicit null yields
// nil.
func (d *decoder) node(n *yaml.Node) (ast.Node, error) {
	if n == nil || n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null") {
		return nil, nil
	}
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return nil, d.errorf(n, "expected a node: a mapping with exactly one kind key")
	}
	out, err := d.build(n.Content[0].Value, n.Content[1])
	if err != nil {
		return nil, err
	}
	ast.SetPos(out, d.pos(n))
	return out, nil
}

func (d *decoder) build(kind string, v *yaml.Node) (ast.Node, error) {
	switch kind {
	case "int":
		var x int64
		if err := v.Decode(&x); err != nil {
			return nil, d.errorf(v, "int: %v", err)
		}
		return ast.Int(x), nil
	case "float":
		var x float64
		if err := v.Decode(&x); err != nil {
			return nil, d.errorf(v, "float: %v", err)
		}
		return ast.Float(x), nil
	case "str":
		return ast.Str(v.Value), nil
	case "bool":
		var x bool
		if err := v.Decode(&x); err != nil {
			return nil, d.errorf(v, "bool: %v", err)
		}
		return ast.Bool(x), nil
	case "null":
		return ast.Null(), nil
	case "local":
		x, err := d.local(v)
		if err != nil {
			return nil, err
		}
		return ast.NewLocal(x), nil
	case "ident":
		return ast.NewIdent(v.Value), nil
	case "this":
		typ, err := d.typeOf(v.Value)
		if err != nil {
			return nil, err
		}
		return ast.NewThis(typ), nil
	case "typeref":
		ref := ast.NewTypeRef(v.Value)
		if i := strings.LastIndex(v.Value, "."); i > 0 {
			ref.Module, ref.Name = v.Value[:i], v.Value[i+1:]
		}
		return ref, nil
	case "ctor":
		sum, c, err := d.ctor(v, nil)
		if err != nil {
			return nil, err
		}
		return &ast.EnumCtor{Sum: sum, Ctor: c}, nil
	case "block":
		exprs, err := d.nodes(v)
		if err != nil {
			return nil, err
		}
		return ast.NewBlock(exprs...), nil
	case "array":
		elems, err := d.nodes(v)
		if err != nil {
			return nil, err
		}
		return ast.NewArray(elems...), nil
	case "paren", "index", "return":
		inner, err := d.node(v)
		if err != nil {
			return nil, err
		}
		switch kind {
		case "paren":
			return ast.NewParen(inner), nil
		case "index":
			return ast.Index(inner), nil
		}
		return ast.NewReturn(inner), nil
	case "object":
		if v.Kind != yaml.MappingNode {
			return nil, d.errorf(v, "object: expected a mapping of fields")
		}
		var fields []ast.ObjectField
		for i := 0; i+1 < len(v.Content); i += 2 {
			x, err := d.node(v.Content[i+1])
			if err != nil {
				return nil, err
			}
			fields = append(fields, ast.ObjectField{Name: v.Content[i].Value, Expr: x})
		}
		return ast.NewObject(fields...), nil
	}

	f, err := d.fields(v)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "decl":
		return d.decl(v, f)
	case "meta":
		inner, err := d.node(f["expr"])
		if err != nil {
			return nil, err
		}
		return ast.NewMeta(scalar(f["name"]), inner), nil
	case "cast":
		inner, err := d.node(f["expr"])
		if err != nil {
			return nil, err
		}
		to, err := d.typeOf(scalar(f["to"]))
		if err != nil {
			return nil, err
		}
		return ast.NewCast(inner, to), nil
	case "if":
		parts, err := d.each(f["cond"], f["then"], f["else"])
		if err != nil {
			return nil, err
		}
		return ast.NewIf(parts[0], parts[1], parts[2]), nil
	case "binop":
		parts, err := d.each(f["left"], f["right"])
		if err != nil {
			return nil, err
		}
		return ast.NewBinop(scalar(f["op"]), parts[0], parts[1]), nil
	case "unop":
		inner, err := d.node(f["expr"])
		if err != nil {
			return nil, err
		}
		return ast.NewUnop(scalar(f["op"]), scalar(f["postfix"]) == "true", inner), nil
	case "param":
		return d.param(v, f)
	case "call":
		fn, err := d.node(f["fn"])
		if err != nil {
			return nil, err
		}
		args, err := d.nodes(f["args"])
		if err != nil {
			return nil, err
		}
		return ast.NewCall(fn, args...), nil
	case "field":
		of, err := d.node(f["of"])
		if err != nil {
			return nil, err
		}
		typ, err := d.typeOf(scalar(f["type"]))
		if err != nil {
			return nil, err
		}
		return ast.NewField(of, scalar(f["name"]), typ), nil
	case "fn":
		return d.function(f)
	case "switch":
		return d.switchNode(v, f)
	}
	return nil, d.errorf(v, "unknown node kind %q", kind)
}

func (d *decoder) each(ns ...*yaml.Node) ([]ast.Node, error) {
	out := make([]ast.Node, len(ns))
	for i, n := range ns {
		x, err := d.node(n)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

func (d *decoder) decl(v *yaml.Node, f map[string]*yaml.Node) (ast.Node, error) {
	init, err := d.node(f["init"])
	if err != nil {
		return nil, err
	}
	name := scalar(f["var"])
	if name == "" {
		return nil, d.errorf(v, "decl: missing var")
	}
	typ := scalar(f["type"])
	x, ok := d.vars[name]
	if !ok {
		if x, err = d.declareVar(rawVar{Name: name, Type: typ}); err != nil {
			return nil, err
		}
		if x.Type == nil && init != nil {
			x.Type = init.Type()
		}
	}
	return ast.Decl(x, init), nil
}

func (d *decoder) param(v *yaml.Node, f map[string]*yaml.Node) (ast.Node, error) {
	of, err := d.node(f["of"])
	if err != nil {
		return nil, err
	}
	if f["ctor"] == nil {
		return nil, d.errorf(v, "param: missing ctor")
	}
	var hint *typesystem.SumType
	if of != nil {
		hint = typesystem.SumTypeOf(ast.Unwrap(of).Type())
	}
	_, c, err := d.ctor(f["ctor"], hint)
	if err != nil {
		return nil, err
	}
	var index int
	if n := f["index"]; n != nil {
		if err := n.Decode(&index); err != nil {
			return nil, d.errorf(n, "param index: %v", err)
		}
	}
	return ast.Param(of, c, index), nil
}

func (d *decoder) function(f map[string]*yaml.Node) (ast.Node, error) {
	var names []string
	if n := f["params"]; n != nil {
		if err := n.Decode(&names); err != nil {
			return nil, d.errorf(n, "fn params: %v", err)
		}
	}
	params := make([]*ast.Var, 0, len(names))
	for _, name := range names {
		x, err := d.declareVar(rawVar{Name: name})
		if err != nil {
			return nil, err
		}
		params = append(params, x)
	}
	body, err := d.node(f["body"])
	if err != nil {
		return nil, err
	}
	return ast.NewFunction(params, body), nil
}

func (d *decoder) switchNode(v *yaml.Node, f map[string]*yaml.Node) (ast.Node, error) {
	subject, err := d.node(f["subject"])
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, d.errorf(v, "switch: missing subject")
	}
	var cases []*ast.Case
	if list := f["cases"]; list != nil {
		if list.Kind != yaml.SequenceNode {
			return nil, d.errorf(list, "switch cases: expected a list")
		}
		for _, item := range list.Content {
			cf, err := d.fields(item)
			if err != nil {
				return nil, err
			}
			values, err := d.nodes(cf["values"])
			if err != nil {
				return nil, err
			}
			if len(values) == 0 {
				return nil, d.errorf(item, "switch case without values")
			}
			parts, err := d.each(cf["guard"], cf["body"])
			if err != nil {
				return nil, err
			}
			c := ast.NewCase(parts[1], values...)
			c.Guard = parts[0]
			cases = append(cases, c)
		}
	}
	def, err := d.node(f["default"])
	if err != nil {
		return nil, err
	}
	return ast.NewSwitch(subject, cases, def), nil
}

func scalar(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}
