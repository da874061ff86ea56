// Package ast defines the typed input tree consumed by the lowering core.
//
// The tree is produced upstream (frontend and type checker, possibly
// followed by an optimizer that erases constructor tests into ordinal
// comparisons) and is never mutated here.
package ast

import (
	"fmt"

	"github.com/funvibe/caselower/internal/typesystem"
)

// Pos is a source position used for diagnostics.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// NodeKind discriminates typed nodes.
type NodeKind int

const (
	KindConst NodeKind = iota
	KindLocal
	KindIdent
	KindVarDecl
	KindBlock
	KindParen
	KindMeta
	KindCast
	KindIf
	KindSwitch
	KindEnumIndex
	KindEnumParameter
	KindEnumCtor
	KindBinop
	KindUnop
	KindCall
	KindField
	KindTypeRef
	KindFunction
	KindReturn
	KindArrayDecl
	KindObjectDecl
	KindThis
)

var kindNames = [...]string{
	KindConst:         "const",
	KindLocal:         "local",
	KindIdent:         "ident",
	KindVarDecl:       "var",
	KindBlock:         "block",
	KindParen:         "paren",
	KindMeta:          "meta",
	KindCast:          "cast",
	KindIf:            "if",
	KindSwitch:        "switch",
	KindEnumIndex:     "enum_index",
	KindEnumParameter: "enum_parameter",
	KindEnumCtor:      "enum_ctor",
	KindBinop:         "binop",
	KindUnop:          "unop",
	KindCall:          "call",
	KindField:         "field",
	KindTypeRef:       "type",
	KindFunction:      "function",
	KindReturn:        "return",
	KindArrayDecl:     "array",
	KindObjectDecl:    "object",
	KindThis:          "this",
}

func (k NodeKind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Node is a typed tree node. The set of implementations is closed: only
// types in this package satisfy it.
type Node interface {
	Kind() NodeKind
	Type() typesystem.Type
	Children() []Node
	GetPos() Pos
	node()
}

// VarID identifies a source variable independently of its (possibly
// optimizer-generated) name.
type VarID int

// Var is a source-side variable.
type Var struct {
	ID   VarID
	Name string
	Type typesystem.Type
}

func (v *Var) String() string {
	if v == nil {
		return "<nil var>"
	}
	return fmt.Sprintf("%s#%d", v.Name, v.ID)
}

// base carries the fields shared by every node.
type base struct {
	Pos Pos
	Ty  typesystem.Type
}

func (b *base) GetPos() Pos           { return b.Pos }
func (b *base) Type() typesystem.Type   { return b.Ty }

func compact(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
