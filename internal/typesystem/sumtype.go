package typesystem

import "fmt"

// Param is one entry of a constructor's parameter signature.
type Param struct {
	Name string
	Type Type
}

// Constructor is one variant of a sum type.
type Constructor struct {
	Name   string
	Index  int
	Params []Param
}

// Arity returns the number of payload values the constructor carries.
func (c *Constructor) Arity() int { return len(c.Params) }

func (c *Constructor) String() string {
	return fmt.Sprintf("%s#%d/%d", c.Name, c.Index, len(c.Params))
}

// SumType describes a closed family of ordinal-indexed constructors.
// Descriptors are immutable once built and shared by reference.
type SumType struct {
	Name         string
	Module       string
	Constructors []*Constructor

	byName map[string]*Constructor
}

// NewSumType builds a descriptor. Constructor ordinals are assigned from
// declaration order.
func NewSumType(name string, ctors ...*Constructor) *SumType {
	s := &SumType{Name: name, byName: make(map[string]*Constructor, len(ctors))}
	for i, c := range ctors {
		c.Index = i
		s.Constructors = append(s.Constructors, c)
		s.byName[c.Name] = c
	}
	return s
}

// Ctor is shorthand for declaring a constructor with its parameters.
func Ctor(name string, params ...Param) *Constructor {
	return &Constructor{Name: name, Params: params}
}

// ByIndex looks a constructor up by ordinal.
func (s *SumType) ByIndex(i int) (*Constructor, bool) {
	if s == nil || i < 0 || i >= len(s.Constructors) {
		return nil, false
	}
	return s.Constructors[i], true
}

// ByName looks a constructor up by its declared name.
func (s *SumType) ByName(name string) (*Constructor, bool) {
	if s == nil {
		return nil, false
	}
	if s.byName == nil {
		for _, c := range s.Constructors {
			if c.Name == name {
				return c, true
			}
		}
		return nil, false
	}
	c, ok := s.byName[name]
	return c, ok
}

// Has reports whether c belongs to this family.
func (s *SumType) Has(c *Constructor) bool {
	if s == nil || c == nil {
		return false
	}
	got, ok := s.ByIndex(c.Index)
	return ok && got == c
}

func (s *SumType) String() string {
	if s.Module != "" {
		return s.Module + "." + s.Name
	}
	return s.Name
}
