package target

// Pattern is the closed sum of output patterns.
type Pattern interface {
	patternNode()
}

// PLiteral matches a literal value (Integer, Float, String, Boolean, Nil
// or Atom).
type PLiteral struct {
	Value Expr
}

// PWildcard is `_`.
type PWildcard struct{}

// PVar binds Name.
type PVar struct {
	Name string
}

// PTuple is {p0, p1, ...}. Enum patterns are tuples led by a tag literal.
type PTuple struct {
	Elems []Pattern
}

// PList is [p0, p1, ...].
type PList struct {
	Elems []Pattern
}

// PCons is [h0, h1 | tail].
type PCons struct {
	Heads []Pattern
	Tail  Pattern
}

// PAlias is `pattern = name`, binding the whole matched value.
type PAlias struct {
	Name    string
	Pattern Pattern
}

// PMapPair is one `key => pattern` entry of a map pattern.
type PMapPair struct {
	Key     Expr
	Pattern Pattern
}

// PMap is %{k => p}.
type PMap struct {
	Pairs []PMapPair
}

// PStruct is %Module{field: p}.
type PStruct struct {
	Module string
	Fields []PMapPair
}

func (*PLiteral) patternNode()  {}
func (*PWildcard) patternNode() {}
func (*PVar) patternNode()      {}
func (*PTuple) patternNode()    {}
func (*PList) patternNode()     {}
func (*PCons) patternNode()     {}
func (*PAlias) patternNode()    {}
func (*PMap) patternNode()      {}
func (*PStruct) patternNode()   {}

// Tag returns the leading tag of an enum pattern: the atom of
// {:tag, ...} or of a bare :tag literal.
func Tag(p Pattern) (string, bool) {
	switch pt := p.(type) {
	case *PTuple:
		if len(pt.Elems) == 0 {
			return "", false
		}
		return Tag(pt.Elems[0])
	case *PLiteral:
		if a, ok := pt.Value.(*Atom); ok {
			return a.Value, true
		}
	case *PAlias:
		return Tag(pt.Pattern)
	}
	return "", false
}

// Binders lists the names bound by p, in left-to-right order.
func Binders(p Pattern) []string {
	var out []string
	var walk func(Pattern)
	walk = func(p Pattern) {
		switch pt := p.(type) {
		case *PVar:
			out = append(out, pt.Name)
		case *PTuple:
			for _, e := range pt.Elems {
				walk(e)
			}
		case *PList:
			for _, e := range pt.Elems {
				walk(e)
			}
		case *PCons:
			for _, e := range pt.Heads {
				walk(e)
			}
			walk(pt.Tail)
		case *PAlias:
			walk(pt.Pattern)
			out = append(out, pt.Name)
		case *PMap:
			for _, kv := range pt.Pairs {
				walk(kv.Pattern)
			}
		case *PStruct:
			for _, kv := range pt.Fields {
				walk(kv.Pattern)
			}
		case *PLiteral, *PWildcard, nil:
		}
	}
	walk(p)
	return out
}
