package ast

// Inspect traverses the tree depth-first in child order. When fn returns
// false the children of that node are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Inspect(c, fn)
	}
}

// Unwrap strips transparent wrappers: grouping, annotations and unchecked
// casts.
func Unwrap(n Node) Node {
	for {
		switch w := n.(type) {
		case *Paren:
			n = w.Expr
		case *Meta:
			n = w.Expr
		case *Cast:
			if w.To != nil {
				return n
			}
			n = w.Expr
		default:
			return n
		}
	}
}

// UnwrapBlock strips transparent wrappers and single-expression blocks.
func UnwrapBlock(n Node) Node {
	for {
		n = Unwrap(n)
		b, ok := n.(*Block)
		if !ok || len(b.Exprs) != 1 {
			return n
		}
		n = b.Exprs[0]
	}
}
