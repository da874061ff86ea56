package ast

import "github.com/funvibe/caselower/internal/typesystem"

// Constructors for building trees by hand (tests, fixtures). They leave
// positions zeroed.

func Int(v int64) *Const {
	return &Const{base: base{Ty: typesystem.Int}, Value: v}
}

func Float(v float64) *Const {
	return &Const{base: base{Ty: typesystem.Float}, Value: v}
}

func Str(v string) *Const {
	return &Const{base: base{Ty: typesystem.String}, Value: v}
}

func Bool(v bool) *Const {
	return &Const{base: base{Ty: typesystem.Bool}, Value: v}
}

func Null() *Const {
	return &Const{base: base{Ty: typesystem.Dynamic}, Value: nil}
}

func NewLocal(v *Var) *Local { return &Local{Var: v} }

func NewIdent(name string) *Ident { return &Ident{Name: name} }

func Decl(v *Var, init Node) *VarDecl {
	return &VarDecl{base: base{Ty: typesystem.Void}, Var: v, Init: init}
}

func NewBlock(exprs ...Node) *Block {
	b := &Block{Exprs: exprs}
	if len(exprs) > 0 && exprs[len(exprs)-1] != nil {
		b.Ty = exprs[len(exprs)-1].Type()
	}
	return b
}

func NewParen(e Node) *Paren { return &Paren{Expr: e} }

func NewMeta(name string, e Node) *Meta { return &Meta{Name: name, Expr: e} }

func NewCast(e Node, to typesystem.Type) *Cast { return &Cast{Expr: e, To: to} }

func NewIf(cond, then, els Node) *If {
	n := &If{Cond: cond, Then: then, Else: els}
	if then != nil {
		n.Ty = then.Type()
	}
	return n
}

func NewSwitch(subject Node, cases []*Case, def Node) *Switch {
	return &Switch{Subject: subject, Cases: cases, Default: def}
}

func NewCase(body Node, values ...Node) *Case {
	return &Case{Values: values, Body: body}
}

func Index(e Node) *EnumIndex { return &EnumIndex{Expr: e} }

func Param(e Node, ctor *typesystem.Constructor, index int) *EnumParameter {
	return &EnumParameter{Expr: e, Ctor: ctor, Index: index}
}

func CtorRef(sum *typesystem.SumType, name string) *EnumCtor {
	c, _ := sum.ByName(name)
	return &EnumCtor{Sum: sum, Ctor: c}
}

func NewBinop(op string, l, r Node) *Binop {
	n := &Binop{Op: op, Left: l, Right: r}
	switch op {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		n.Ty = typesystem.Bool
	default:
		if l != nil {
			n.Ty = l.Type()
		}
	}
	return n
}

func NewUnop(op string, postfix bool, e Node) *Unop {
	n := &Unop{Op: op, Postfix: postfix, Expr: e}
	if e != nil {
		n.Ty = e.Type()
	}
	return n
}

func NewCall(fn Node, args ...Node) *Call {
	n := &Call{Fn: fn, Args: args}
	if fn != nil {
		if ft, ok := typesystem.UnwrapUnderlying(fn.Type()).(typesystem.TFunc); ok {
			n.Ty = ft.ReturnType
		} else if ec, ok := fn.(*EnumCtor); ok {
			n.Ty = ec.Type()
		}
	}
	return n
}

func NewField(e Node, name string, t typesystem.Type) *Field {
	return &Field{base: base{Ty: t}, Expr: e, Name: name}
}

func NewTypeRef(name string) *TypeRef { return &TypeRef{Name: name} }

func NewFunction(params []*Var, body Node) *Function {
	n := &Function{Params: params, Body: body}
	ft := typesystem.TFunc{}
	for _, p := range params {
		ft.Params = append(ft.Params, p.Type)
	}
	if body != nil {
		ft.ReturnType = body.Type()
	}
	n.Ty = ft
	return n
}

func NewReturn(e Node) *Return { return &Return{Expr: e} }

func NewArray(elems ...Node) *ArrayDecl { return &ArrayDecl{Elems: elems} }

func NewObject(fields ...ObjectField) *ObjectDecl { return &ObjectDecl{Fields: fields} }

func NewThis(t typesystem.Type) *This { return &This{base: base{Ty: t}} }

// SetPos records the source position of n, for callers that track
// locations (the fixture decoder).
func SetPos(n Node, pos Pos) {
	if p, ok := n.(interface{ posPtr() *Pos }); ok {
		*p.posPtr() = pos
	}
}

func (b *base) posPtr() *Pos { return &b.Pos }

// SetType overrides the static type annotation of n.
func SetType(n Node, t typesystem.Type) {
	if p, ok := n.(interface{ typePtr() *typesystem.Type }); ok {
		*p.typePtr() = t
	}
}

func (b *base) typePtr() *typesystem.Type { return &b.Ty }
