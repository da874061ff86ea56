// Package target defines the Elixir-shaped output tree produced by the
// lowering core. Serialization to concrete syntax lives elsewhere
// (see package prettyprinter).
package target

// Expr is an output expression. The set of implementations is closed.
type Expr interface {
	exprNode()
}

// Var references a bound name.
type Var struct {
	Name string
}

// Atom is a symbolic constant such as :ok.
type Atom struct {
	Value string
}

type Integer struct {
	Value int64
}

type Float struct {
	Value float64
}

type String struct {
	Value string
}

type Boolean struct {
	Value bool
}

type Nil struct{}

// Tuple is {a, b, ...}.
type Tuple struct {
	Elems []Expr
}

// List is [a, b, ...].
type List struct {
	Elems []Expr
}

// MapPair is one `key => value` entry. Atom keys print as `key: value`.
type MapPair struct {
	Key   Expr
	Value Expr
}

// Map is %{...}.
type Map struct {
	Pairs []MapPair
}

// BinaryOp is `left op right` with the operator already in target spelling.
type BinaryOp struct {
	Op    string
	Left  Expr
	Right Expr
}

// UnaryOp is `op operand`.
type UnaryOp struct {
	Op      string
	Operand Expr
}

// Call is `Module.name(args)` or, with an empty Module, `name(args)`.
type Call struct {
	Module string
	Name   string
	Args   []Expr
}

// AnonCall applies a function value: `fun.(args)`.
type AnonCall struct {
	Fn   Expr
	Args []Expr
}

// Access is field access `expr.field`.
type Access struct {
	Expr  Expr
	Field string
}

// Block is a sequence whose value is the last expression.
type Block struct {
	Exprs []Expr
}

// MatchBind is `pattern = value`.
type MatchBind struct {
	Pattern Pattern
	Value   Expr
}

// If is `if cond do then else else end`; Else may be nil.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

// Clause is one `pattern [when guard] -> body` unit. Guard is nil when
// the clause is unconditional.
type Clause struct {
	Pattern Pattern
	Guard   Expr
	Body    Expr
}

// Case is the generic match node produced for a lowered switch.
type Case struct {
	Scrutinee Expr
	Clauses   []*Clause
}

// FnClause is one clause of an anonymous function.
type FnClause struct {
	Params []Pattern
	Guard  Expr
	Body   Expr
}

// Fn is `fn params -> body end`.
type Fn struct {
	Clauses []*FnClause
}

func (*Var) exprNode()       {}
func (*Atom) exprNode()      {}
func (*Integer) exprNode()   {}
func (*Float) exprNode()     {}
func (*String) exprNode()    {}
func (*Boolean) exprNode()   {}
func (*Nil) exprNode()       {}
func (*Tuple) exprNode()     {}
func (*List) exprNode()      {}
func (*Map) exprNode()       {}
func (*BinaryOp) exprNode()  {}
func (*UnaryOp) exprNode()   {}
func (*Call) exprNode()      {}
func (*AnonCall) exprNode()  {}
func (*Access) exprNode()    {}
func (*Block) exprNode()     {}
func (*MatchBind) exprNode() {}
func (*If) exprNode()        {}
func (*Case) exprNode()      {}
func (*Fn) exprNode()        {}
