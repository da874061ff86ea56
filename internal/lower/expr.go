package lower

import (
	"fmt"

	"github.com/funvibe/caselower/internal/ast"
	"github.com/funvibe/caselower/internal/target"
	"github.com/funvibe/caselower/internal/typesystem"
)

// lowerBody lowers an arm or function body. Bodies always produce a
// value.
func (l *Lowerer) lowerBody(env *Env, n ast.Node) (target.Expr, error) {
	e, err := l.lowerExpr(env, n)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return &target.Nil{}, nil
	}
	return e, nil
}

// lowerExpr lowers one node. It returns a nil expression for nodes that
// vanish in the output, such as declarations of pattern binders.
func (l *Lowerer) lowerExpr(env *Env, n ast.Node) (target.Expr, error) {
	switch x := n.(type) {
	case nil:
		return nil, nil
	case *ast.Const:
		return constExpr(x)
	case *ast.Local:
		return &target.Var{Name: l.localName(env, x.Var)}, nil
	case *ast.Ident:
		if x.Name == "_" {
			return &target.Var{Name: "_"}, nil
		}
		return &target.Var{Name: l.names.ident(x.Name)}, nil
	case *ast.VarDecl:
		return l.lowerDecl(env, x)
	case *ast.Block:
		return l.lowerBlock(env, x)
	case *ast.Paren:
		return l.lowerExpr(env, x.Expr)
	case *ast.Meta:
		return l.lowerExpr(env, x.Expr)
	case *ast.Cast:
		return l.lowerExpr(env, x.Expr)
	case *ast.If:
		return l.lowerIf(env, x)
	case *ast.Switch:
		c, err := l.lowerSwitch(env, x)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return l.fallbackSwitch(x)
		}
		return c, nil
	case *ast.EnumIndex:
		return l.lowerEnumIndex(env, x)
	case *ast.EnumParameter:
		return l.lowerEnumParameter(env, x)
	case *ast.EnumCtor:
		return l.lowerCtorRef(x)
	case *ast.Binop:
		return l.lowerBinop(env, x)
	case *ast.Unop:
		return l.lowerUnop(env, x)
	case *ast.Call:
		return l.lowerCall(env, x)
	case *ast.Field:
		return l.lowerField(env, x)
	case *ast.TypeRef:
		return &target.Var{Name: moduleName(x)}, nil
	case *ast.Function:
		return l.lowerFunction(env, x)
	case *ast.Return:
		return l.lowerBody(env, x.Expr)
	case *ast.ArrayDecl:
		elems, err := l.lowerAll(env, x.Elems)
		if err != nil {
			return nil, err
		}
		return &target.List{Elems: elems}, nil
	case *ast.ObjectDecl:
		out := &target.Map{}
		for _, f := range x.Fields {
			v, err := l.lowerValue(env, f.Expr)
			if err != nil {
				return nil, err
			}
			out.Pairs = append(out.Pairs, target.MapPair{Key: &target.Atom{Value: l.names.ident(f.Name)}, Value: v})
		}
		return out, nil
	case *ast.This:
		return &target.Var{Name: l.receiver(env)}, nil
	default:
		return nil, fmt.Errorf("lower: unsupported node %s at %s", n.Kind(), n.GetPos())
	}
}

// lowerValue lowers a node in value position, where nothing may vanish.
func (l *Lowerer) lowerValue(env *Env, n ast.Node) (target.Expr, error) {
	return l.lowerBody(env, n)
}

func (l *Lowerer) lowerAll(env *Env, nodes []ast.Node) ([]target.Expr, error) {
	out := make([]target.Expr, 0, len(nodes))
	for _, n := range nodes {
		e, err := l.lowerValue(env, n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (l *Lowerer) localName(env *Env, v *ast.Var) string {
	if v == nil {
		return "_"
	}
	if name, ok := l.tracker.Lookup(v.ID); ok {
		return name
	}
	if name, ok := env.Rename(v.ID); ok {
		return name
	}
	return l.names.ident(v.Name)
}

func (l *Lowerer) receiver(env *Env) string {
	if r := env.Receiver(); r != "" {
		return r
	}
	return l.cfg.Naming.Receiver
}

func (l *Lowerer) lowerDecl(env *Env, d *ast.VarDecl) (target.Expr, error) {
	if d.Var == nil {
		return nil, fmt.Errorf("lower: declaration without variable at %s", d.GetPos())
	}
	l.declared.Insert(d.Var.ID)
	// binders introduced by the pattern replace their declarations
	if _, ok := l.tracker.Lookup(d.Var.ID); ok {
		return nil, nil
	}
	value, err := l.lowerValue(env, d.Init)
	if err != nil {
		return nil, err
	}
	return &target.MatchBind{Pattern: &target.PVar{Name: l.localName(env, d.Var)}, Value: value}, nil
}

func (l *Lowerer) lowerBlock(env *Env, b *ast.Block) (target.Expr, error) {
	var exprs []target.Expr
	for _, n := range b.Exprs {
		e, err := l.lowerExpr(env, n)
		if err != nil {
			return nil, err
		}
		if e != nil {
			exprs = append(exprs, e)
		}
	}
	switch len(exprs) {
	case 0:
		return nil, nil
	case 1:
		return exprs[0], nil
	}
	return &target.Block{Exprs: exprs}, nil
}

func (l *Lowerer) lowerIf(env *Env, n *ast.If) (target.Expr, error) {
	cond, err := l.lowerValue(env, n.Cond)
	if err != nil {
		return nil, err
	}
	then, err := l.lowerBody(env, n.Then)
	if err != nil {
		return nil, err
	}
	out := &target.If{Cond: cond, Then: then}
	if n.Else != nil {
		if out.Else, err = l.lowerBody(env, n.Else); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// lowerEnumIndex renders a standalone ordinal projection. With a known
// descriptor the ordinal is recomputed from the tag.
func (l *Lowerer) lowerEnumIndex(env *Env, n *ast.EnumIndex) (target.Expr, error) {
	v, err := l.lowerValue(env, n.Expr)
	if err != nil {
		return nil, err
	}
	desc := typesystem.SumTypeOf(ast.Unwrap(n.Expr).Type())
	if desc == nil {
		return &target.Call{Name: "elem", Args: []target.Expr{v, &target.Integer{Value: 0}}}, nil
	}
	out := &target.Case{Scrutinee: v}
	for _, c := range desc.Constructors {
		elems := []target.Pattern{&target.PLiteral{Value: &target.Atom{Value: l.names.tag(c.Name)}}}
		for range c.Params {
			elems = append(elems, &target.PWildcard{})
		}
		out.Clauses = append(out.Clauses, &target.Clause{
			Pattern: &target.PTuple{Elems: elems},
			Body:    &target.Integer{Value: int64(c.Index)},
		})
	}
	return out, nil
}

// lowerEnumParameter resolves a payload extraction to the binder that
// already holds it, or reads the tuple slot.
func (l *Lowerer) lowerEnumParameter(env *Env, n *ast.EnumParameter) (target.Expr, error) {
	if scope := l.tracker.Current(); scope != nil {
		if name, ok := scope.Payload(n); ok {
			return &target.Var{Name: name}, nil
		}
	}
	v, err := l.lowerValue(env, n.Expr)
	if err != nil {
		return nil, err
	}
	return &target.Call{Name: "elem", Args: []target.Expr{v, &target.Integer{Value: int64(n.Index + 1)}}}, nil
}

// lowerCtorRef renders a constructor used as a value: the tagged tuple
// for nullary constructors, a building function otherwise.
func (l *Lowerer) lowerCtorRef(n *ast.EnumCtor) (target.Expr, error) {
	if n.Ctor == nil {
		return nil, fmt.Errorf("lower: unresolved constructor at %s", n.GetPos())
	}
	tag := &target.Atom{Value: l.names.tag(n.Ctor.Name)}
	if n.Ctor.Arity() == 0 {
		return &target.Tuple{Elems: []target.Expr{tag}}, nil
	}
	fn := &target.FnClause{}
	elems := []target.Expr{tag}
	for i := range n.Ctor.Params {
		name := fmt.Sprintf("arg%d", i)
		fn.Params = append(fn.Params, &target.PVar{Name: name})
		elems = append(elems, &target.Var{Name: name})
	}
	fn.Body = &target.Tuple{Elems: elems}
	return &target.Fn{Clauses: []*target.FnClause{fn}}, nil
}

var bitwiseOps = map[string]string{
	"&": "band", "|": "bor", "^": "bxor", "<<": "bsl", ">>": "bsr", ">>>": "bsr",
}

func (l *Lowerer) lowerBinop(env *Env, n *ast.Binop) (target.Expr, error) {
	if isAssignOp(n.Op) {
		return l.lowerAssign(env, n)
	}
	left, err := l.lowerValue(env, n.Left)
	if err != nil {
		return nil, err
	}
	right, err := l.lowerValue(env, n.Right)
	if err != nil {
		return nil, err
	}
	return l.binary(n.Op, n.Left, n.Right, left, right), nil
}

// binary maps a source operator onto the target: boolean and string
// operators change spelling, integer division and remainder become
// Kernel calls, bit operators go through Bitwise.
func (l *Lowerer) binary(op string, ln, rn ast.Node, left, right target.Expr) target.Expr {
	switch op {
	case "&&":
		return &target.BinaryOp{Op: "and", Left: left, Right: right}
	case "||":
		return &target.BinaryOp{Op: "or", Left: left, Right: right}
	case "+":
		if typesystem.IsString(typeOf(ln)) || typesystem.IsString(typeOf(rn)) {
			return &target.BinaryOp{Op: "<>", Left: left, Right: right}
		}
	case "/":
		if isInt(typeOf(ln)) && isInt(typeOf(rn)) {
			return &target.Call{Name: "div", Args: []target.Expr{left, right}}
		}
	case "%":
		return &target.Call{Name: "rem", Args: []target.Expr{left, right}}
	case "??":
		return &target.If{
			Cond: &target.BinaryOp{Op: "!=", Left: left, Right: &target.Nil{}},
			Then: left,
			Else: right,
		}
	}
	if fn, ok := bitwiseOps[op]; ok {
		return &target.Call{Module: "Bitwise", Name: fn, Args: []target.Expr{left, right}}
	}
	return &target.BinaryOp{Op: op, Left: left, Right: right}
}

// lowerAssign rebinds the assigned name; compound assignments rebind it
// to the combined value. Field assignment on a local or the receiver
// rebinds the holder to an updated map.
func (l *Lowerer) lowerAssign(env *Env, n *ast.Binop) (target.Expr, error) {
	value, err := l.lowerValue(env, n.Right)
	if err != nil {
		return nil, err
	}
	switch lhs := ast.Unwrap(n.Left).(type) {
	case *ast.Local:
		name := l.localName(env, lhs.Var)
		if n.Op != "=" {
			value = l.binary(n.Op[:len(n.Op)-1], n.Left, n.Right, &target.Var{Name: name}, value)
		}
		return &target.MatchBind{Pattern: &target.PVar{Name: name}, Value: value}, nil
	case *ast.Field:
		var holder string
		switch h := ast.Unwrap(lhs.Expr).(type) {
		case *ast.Local:
			holder = l.localName(env, h.Var)
		case *ast.This:
			holder = l.receiver(env)
		default:
			return nil, fmt.Errorf("lower: unsupported assignment target at %s", n.GetPos())
		}
		field := &target.Atom{Value: l.names.ident(lhs.Name)}
		if n.Op != "=" {
			cur := &target.Access{Expr: &target.Var{Name: holder}, Field: l.names.ident(lhs.Name)}
			value = l.binary(n.Op[:len(n.Op)-1], n.Left, n.Right, cur, value)
		}
		return &target.MatchBind{
			Pattern: &target.PVar{Name: holder},
			Value:   &target.Call{Module: "Map", Name: "put", Args: []target.Expr{&target.Var{Name: holder}, field, value}},
		}, nil
	}
	return nil, fmt.Errorf("lower: unsupported assignment target at %s", n.GetPos())
}

func (l *Lowerer) lowerUnop(env *Env, n *ast.Unop) (target.Expr, error) {
	if isIncDec(n.Op) {
		loc, ok := ast.Unwrap(n.Expr).(*ast.Local)
		if !ok {
			return nil, fmt.Errorf("lower: %s on a non-local at %s", n.Op, n.GetPos())
		}
		name := l.localName(env, loc.Var)
		op := "+"
		if n.Op == "--" {
			op = "-"
		}
		return &target.MatchBind{
			Pattern: &target.PVar{Name: name},
			Value:   &target.BinaryOp{Op: op, Left: &target.Var{Name: name}, Right: &target.Integer{Value: 1}},
		}, nil
	}
	operand, err := l.lowerValue(env, n.Expr)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "!":
		return &target.UnaryOp{Op: "not", Operand: operand}, nil
	case "~":
		return &target.Call{Module: "Bitwise", Name: "bnot", Args: []target.Expr{operand}}, nil
	}
	return &target.UnaryOp{Op: n.Op, Operand: operand}, nil
}

func (l *Lowerer) lowerCall(env *Env, n *ast.Call) (target.Expr, error) {
	args, err := l.lowerAll(env, n.Args)
	if err != nil {
		return nil, err
	}
	switch fn := ast.Unwrap(n.Fn).(type) {
	case *ast.EnumCtor:
		if fn.Ctor == nil {
			return nil, fmt.Errorf("lower: unresolved constructor at %s", fn.GetPos())
		}
		elems := append([]target.Expr{&target.Atom{Value: l.names.tag(fn.Ctor.Name)}}, args...)
		return &target.Tuple{Elems: elems}, nil
	case *ast.Field:
		name := l.names.ident(fn.Name)
		switch recv := ast.Unwrap(fn.Expr).(type) {
		case *ast.TypeRef:
			return &target.Call{Module: moduleName(recv), Name: name, Args: args}, nil
		case *ast.This:
			self := &target.Var{Name: l.receiver(env)}
			return &target.Call{Name: name, Args: append([]target.Expr{self}, args...)}, nil
		default:
			obj, err := l.lowerValue(env, recv)
			if err != nil {
				return nil, err
			}
			if inst, ok := typesystem.UnwrapUnderlying(typeOf(recv)).(typesystem.TInst); ok {
				return &target.Call{Module: inst.Name, Name: name, Args: append([]target.Expr{obj}, args...)}, nil
			}
			return &target.AnonCall{Fn: &target.Access{Expr: obj, Field: name}, Args: args}, nil
		}
	case *ast.Ident:
		return &target.Call{Name: l.names.ident(fn.Name), Args: args}, nil
	default:
		f, err := l.lowerValue(env, fn)
		if err != nil {
			return nil, err
		}
		return &target.AnonCall{Fn: f, Args: args}, nil
	}
}

func (l *Lowerer) lowerField(env *Env, n *ast.Field) (target.Expr, error) {
	name := l.names.ident(n.Name)
	switch recv := ast.Unwrap(n.Expr).(type) {
	case *ast.This:
		return &target.Access{Expr: &target.Var{Name: l.receiver(env)}, Field: name}, nil
	case *ast.TypeRef:
		return &target.Call{Module: moduleName(recv), Name: name}, nil
	}
	obj, err := l.lowerValue(env, n.Expr)
	if err != nil {
		return nil, err
	}
	return &target.Access{Expr: obj, Field: name}, nil
}

// lowerFunction lowers a closure. Its parameters shadow the enclosing
// function's for binder naming until it returns.
func (l *Lowerer) lowerFunction(env *Env, n *ast.Function) (target.Expr, error) {
	params := make([]string, len(n.Params))
	pats := make([]target.Pattern, len(n.Params))
	for i, p := range n.Params {
		l.declared.Insert(p.ID)
		params[i] = l.localName(env, p)
		pats[i] = &target.PVar{Name: params[i]}
	}
	restore := env.WithFunction(env.Function, params)
	defer restore()

	body, err := l.lowerBody(env, n.Body)
	if err != nil {
		return nil, err
	}
	return &target.Fn{Clauses: []*target.FnClause{{Params: pats, Body: body}}}, nil
}

// LowerFunction lowers a named function with the given receiver binder,
// the entry point for method bodies.
func (l *Lowerer) LowerFunction(env *Env, name, receiver string, fn *ast.Function) (*target.Fn, error) {
	if env == nil {
		env = NewEnv("")
	}
	if receiver != "" {
		restore := env.WithReceiver(receiver)
		defer restore()
	}
	restore := env.WithFunction(name, nil)
	defer restore()
	out, err := l.lowerFunction(env, fn)
	if err != nil {
		return nil, err
	}
	return out.(*target.Fn), nil
}

// constExpr lowers a literal.
func constExpr(c *ast.Const) (target.Expr, error) {
	switch v := c.Value.(type) {
	case nil:
		return &target.Nil{}, nil
	case bool:
		return &target.Boolean{Value: v}, nil
	case int:
		return &target.Integer{Value: int64(v)}, nil
	case int32:
		return &target.Integer{Value: int64(v)}, nil
	case int64:
		return &target.Integer{Value: v}, nil
	case float64:
		return &target.Float{Value: v}, nil
	case string:
		return &target.String{Value: v}, nil
	}
	return nil, fmt.Errorf("lower: unsupported constant %T at %s", c.Value, c.GetPos())
}

func moduleName(t *ast.TypeRef) string {
	if t.Module != "" {
		return t.Module + "." + t.Name
	}
	return t.Name
}

func typeOf(n ast.Node) typesystem.Type {
	if n == nil {
		return nil
	}
	return n.Type()
}

func isInt(t typesystem.Type) bool {
	p, ok := typesystem.UnwrapUnderlying(t).(typesystem.TPrim)
	return ok && p.Name == typesystem.Int.Name
}
