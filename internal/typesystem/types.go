package typesystem

import (
	"strings"
)

// Type is the static type annotation carried by every typed node.
type Type interface {
	String() string
	typeNode()
}

// TPrim is a primitive type (Int, Float, String, Bool, Void, Dynamic).
type TPrim struct {
	Name string
}

func (t TPrim) String() string { return t.Name }
func (TPrim) typeNode()        {}

// Primitive types shared by the whole tree.
var (
	Int     = TPrim{Name: "Int"}
	Float   = TPrim{Name: "Float"}
	String  = TPrim{Name: "String"}
	Bool    = TPrim{Name: "Bool"}
	Void    = TPrim{Name: "Void"}
	Dynamic = TPrim{Name: "Dynamic"}
)

// TEnum is an instance of a sum type, e.g. Option<Int>.
type TEnum struct {
	Sum    *SumType
	Params []Type
}

func (t TEnum) String() string {
	if t.Sum == nil {
		return "<enum?>"
	}
	if len(t.Params) == 0 {
		return t.Sum.Name
	}
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = typeString(p)
	}
	return t.Sum.Name + "<" + strings.Join(parts, ", ") + ">"
}
func (TEnum) typeNode() {}

// TInst is a nominal class or struct instance type.
type TInst struct {
	Name   string
	Module string
}

func (t TInst) String() string {
	if t.Module != "" {
		return t.Module + "." + t.Name
	}
	return t.Name
}
func (TInst) typeNode() {}

// TFunc is a function type.
type TFunc struct {
	Params     []Type
	ReturnType Type
}

func (t TFunc) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = typeString(p)
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + typeString(t.ReturnType)
}
func (TFunc) typeNode() {}

// TAlias is a named alias for another type, e.g. typedef Shape2 = Shape.
type TAlias struct {
	Name       string
	Underlying Type
}

func (t TAlias) String() string { return t.Name }
func (TAlias) typeNode()        {}

// TNull wraps a nullable type, e.g. Null<Shape>.
type TNull struct {
	Of Type
}

func (t TNull) String() string { return "Null<" + typeString(t.Of) + ">" }
func (TNull) typeNode()        {}

func typeString(t Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

// UnwrapUnderlying strips aliases and nullable wrappers until reaching a
// type that carries its own meaning.
func UnwrapUnderlying(t Type) Type {
	for {
		switch typ := t.(type) {
		case TAlias:
			if typ.Underlying == nil {
				return t
			}
			t = typ.Underlying
		case TNull:
			if typ.Of == nil {
				return t
			}
			t = typ.Of
		default:
			return t
		}
	}
}

// SumTypeOf returns the sum type descriptor named by t, or nil when t does
// not resolve to a sum type.
func SumTypeOf(t Type) *SumType {
	if t == nil {
		return nil
	}
	if e, ok := UnwrapUnderlying(t).(TEnum); ok {
		return e.Sum
	}
	return nil
}

// IsString reports whether t is the String primitive (through aliases).
func IsString(t Type) bool {
	p, ok := UnwrapUnderlying(t).(TPrim)
	return ok && p.Name == String.Name
}
