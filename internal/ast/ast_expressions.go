package ast

import "github.com/funvibe/caselower/internal/typesystem"

// Const is a literal: int64, float64, string, bool or nil.
type Const struct {
	base
	Value interface{}
}

func (n *Const) Kind() NodeKind   { return KindConst }
func (n *Const) Children() []Node { return nil }
func (*Const) node()              {}

// Local is a read of a source variable.
type Local struct {
	base
	Var *Var
}

func (n *Local) Kind() NodeKind   { return KindLocal }
func (n *Local) Children() []Node { return nil }
func (*Local) node()              {}

// Type returns the variable's declared type unless the node overrides it.
func (n *Local) Type() typesystem.Type {
	if n.Ty == nil && n.Var != nil {
		return n.Var.Type
	}
	return n.Ty
}

// Ident is an untyped identifier, used for `_` in source patterns and for
// names the frontend left unresolved.
type Ident struct {
	base
	Name string
}

func (n *Ident) Kind() NodeKind   { return KindIdent }
func (n *Ident) Children() []Node { return nil }
func (*Ident) node()              {}

// VarDecl declares a local, optionally initialised.
type VarDecl struct {
	base
	Var  *Var
	Init Node
}

func (n *VarDecl) Kind() NodeKind   { return KindVarDecl }
func (n *VarDecl) Children() []Node { return compact(n.Init) }
func (*VarDecl) node()              {}

// Block is a sequence; its value is the last expression.
type Block struct {
	base
	Exprs []Node
}

func (n *Block) Kind() NodeKind   { return KindBlock }
func (n *Block) Children() []Node { return n.Exprs }
func (*Block) node()              {}

// Paren is a transparent grouping wrapper.
type Paren struct {
	base
	Expr Node
}

func (n *Paren) Kind() NodeKind   { return KindParen }
func (n *Paren) Children() []Node { return compact(n.Expr) }
func (*Paren) node()              {}

// Type is the wrapped expression's type.
func (n *Paren) Type() typesystem.Type {
	if n.Ty == nil && n.Expr != nil {
		return n.Expr.Type()
	}
	return n.Ty
}

// Meta is a transparent annotation wrapper (@:name expr).
type Meta struct {
	base
	Name string
	Expr Node
}

func (n *Meta) Kind() NodeKind   { return KindMeta }
func (n *Meta) Children() []Node { return compact(n.Expr) }
func (*Meta) node()              {}

func (n *Meta) Type() typesystem.Type {
	if n.Ty == nil && n.Expr != nil {
		return n.Expr.Type()
	}
	return n.Ty
}

// Cast converts Expr. A nil To marks an unchecked cast, which is
// transparent for lowering.
type Cast struct {
	base
	Expr Node
	To   typesystem.Type
}

func (n *Cast) Kind() NodeKind   { return KindCast }
func (n *Cast) Children() []Node { return compact(n.Expr) }
func (*Cast) node()              {}

func (n *Cast) Type() typesystem.Type {
	if n.To != nil {
		return n.To
	}
	if n.Ty == nil && n.Expr != nil {
		return n.Expr.Type()
	}
	return n.Ty
}

// If is a conditional; Else may be nil.
type If struct {
	base
	Cond Node
	Then Node
	Else Node
}

func (n *If) Kind() NodeKind   { return KindIf }
func (n *If) Children() []Node { return compact(n.Cond, n.Then, n.Else) }
func (*If) node()              {}

// Case is one arm of a Switch: several match values share one body.
// Guard is the optional source-side arm guard.
type Case struct {
	Values []Node
	Guard  Node
	Body   Node
}

// Switch is the match expression to be lowered.
type Switch struct {
	base
	Subject Node
	Cases   []*Case
	Default Node
}

func (n *Switch) Kind() NodeKind { return KindSwitch }
func (n *Switch) Children() []Node {
	out := compact(n.Subject)
	for _, c := range n.Cases {
		out = append(out, c.Values...)
		out = append(out, compact(c.Guard, c.Body)...)
	}
	return append(out, compact(n.Default)...)
}
func (*Switch) node() {}

// EnumIndex projects the ordinal of a sum value. An optimizer that erases
// constructor tests leaves `switch EnumIndex(v)` behind.
type EnumIndex struct {
	base
	Expr Node
}

func (n *EnumIndex) Kind() NodeKind   { return KindEnumIndex }
func (n *EnumIndex) Children() []Node { return compact(n.Expr) }
func (*EnumIndex) node()              {}

func (n *EnumIndex) Type() typesystem.Type {
	if n.Ty == nil {
		return typesystem.Int
	}
	return n.Ty
}

// EnumParameter extracts payload Index of Expr, which holds constructor Ctor.
type EnumParameter struct {
	base
	Expr  Node
	Ctor  *typesystem.Constructor
	Index int
}

func (n *EnumParameter) Kind() NodeKind   { return KindEnumParameter }
func (n *EnumParameter) Children() []Node { return compact(n.Expr) }
func (*EnumParameter) node()              {}

func (n *EnumParameter) Type() typesystem.Type {
	if n.Ty == nil && n.Ctor != nil && n.Index >= 0 && n.Index < len(n.Ctor.Params) {
		return n.Ctor.Params[n.Index].Type
	}
	return n.Ty
}

// EnumCtor references a constructor. Called with arguments it builds a
// value; as a switch value it names the constructor being matched.
type EnumCtor struct {
	base
	Sum  *typesystem.SumType
	Ctor *typesystem.Constructor
}

func (n *EnumCtor) Kind() NodeKind   { return KindEnumCtor }
func (n *EnumCtor) Children() []Node { return nil }
func (*EnumCtor) node()              {}

func (n *EnumCtor) Type() typesystem.Type {
	if n.Ty == nil && n.Sum != nil {
		return typesystem.TEnum{Sum: n.Sum}
	}
	return n.Ty
}

// Binop is a binary operation, assignments (`=`, `+=`, ...) included.
type Binop struct {
	base
	Op    string
	Left  Node
	Right Node
}

func (n *Binop) Kind() NodeKind   { return KindBinop }
func (n *Binop) Children() []Node { return compact(n.Left, n.Right) }
func (*Binop) node()              {}

// Unop is a unary operation; Postfix distinguishes x++ from ++x.
type Unop struct {
	base
	Op      string
	Postfix bool
	Expr    Node
}

func (n *Unop) Kind() NodeKind   { return KindUnop }
func (n *Unop) Children() []Node { return compact(n.Expr) }
func (*Unop) node()              {}

// Call applies Fn to Args.
type Call struct {
	base
	Fn   Node
	Args []Node
}

func (n *Call) Kind() NodeKind   { return KindCall }
func (n *Call) Children() []Node { return append(compact(n.Fn), n.Args...) }
func (*Call) node()              {}

// Field accesses Name on Expr. Static fields hang off a TypeRef.
type Field struct {
	base
	Expr Node
	Name string
}

func (n *Field) Kind() NodeKind   { return KindField }
func (n *Field) Children() []Node { return compact(n.Expr) }
func (*Field) node()              {}

// TypeRef names a module or class, the receiver of static calls.
type TypeRef struct {
	base
	Name   string
	Module string
}

func (n *TypeRef) Kind() NodeKind   { return KindTypeRef }
func (n *TypeRef) Children() []Node { return nil }
func (*TypeRef) node()              {}

// Function is a function literal.
type Function struct {
	base
	Params []*Var
	Body   Node
}

func (n *Function) Kind() NodeKind   { return KindFunction }
func (n *Function) Children() []Node { return compact(n.Body) }
func (*Function) node()              {}

// Return leaves the enclosing function; Expr may be nil.
type Return struct {
	base
	Expr Node
}

func (n *Return) Kind() NodeKind   { return KindReturn }
func (n *Return) Children() []Node { return compact(n.Expr) }
func (*Return) node()              {}

// ArrayDecl is an array literal.
type ArrayDecl struct {
	base
	Elems []Node
}

func (n *ArrayDecl) Kind() NodeKind   { return KindArrayDecl }
func (n *ArrayDecl) Children() []Node { return n.Elems }
func (*ArrayDecl) node()              {}

// ObjectField is one `name: value` entry of an ObjectDecl.
type ObjectField struct {
	Name string
	Expr Node
}

// ObjectDecl is an anonymous object literal.
type ObjectDecl struct {
	base
	Fields []ObjectField
}

func (n *ObjectDecl) Kind() NodeKind { return KindObjectDecl }
func (n *ObjectDecl) Children() []Node {
	out := make([]Node, 0, len(n.Fields))
	for _, f := range n.Fields {
		out = append(out, f.Expr)
	}
	return compact(out...)
}
func (*ObjectDecl) node() {}

// This is the instance receiver.
type This struct {
	base
}

func (n *This) Kind() NodeKind   { return KindThis }
func (n *This) Children() []Node { return nil }
func (*This) node()              {}
