package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"
	"unicode"

	"github.com/funvibe/caselower/internal/target"
)

// --- Code Printer (Elixir concrete syntax) ---

// Operator precedence (higher = binds tighter)
var operatorPrecedence = map[string]int{
	"or":  1,
	"||":  1,
	"and": 2,
	"&&":  2,
	"==":  3,
	"!=":  3,
	"===": 3,
	"!==": 3,
	"<":   4,
	">":   4,
	"<=":  4,
	">=":  4,
	"in":  5,
	"|>":  6,
	"<>":  7, // Concatenation (right-assoc)
	"++":  7,
	"--":  7,
	"+":   8,
	"-":   8,
	"*":   9,
	"/":   9,
}

func getPrecedence(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return 10 // Default high precedence for unknown ops
}

// Right-associative operators
var rightAssoc = map[string]bool{
	"<>": true,
	"++": true,
	"--": true,
}

const unaryPrecedence = 11

type CodePrinter struct {
	buf       bytes.Buffer
	indent    int
	lineWidth int // max line width (0 = unlimited)
	column    int // current column position
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{indent: 0, lineWidth: 98, column: 0}
}

func NewCodePrinterWithWidth(width int) *CodePrinter {
	return &CodePrinter{indent: 0, lineWidth: width, column: 0}
}

func (p *CodePrinter) SetLineWidth(width int) {
	p.lineWidth = width
}

// Print renders an expression with the default printer.
func Print(e target.Expr) string {
	p := NewCodePrinter()
	p.Expr(e)
	return p.String()
}

// PrintPattern renders a pattern.
func PrintPattern(pat target.Pattern) string {
	p := NewCodePrinter()
	p.Pattern(pat)
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
	// Track column position
	if idx := strings.LastIndex(s, "\n"); idx != -1 {
		p.column = len(s) - idx - 1
	} else {
		p.column += len(s)
	}
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
	p.column = 0
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("  ")
	}
	p.column = p.indent * 2
}

// sub renders e with a fresh printer at the same indent, for measuring.
func (p *CodePrinter) sub(e target.Expr) string {
	temp := &CodePrinter{indent: p.indent, lineWidth: 0}
	temp.Expr(e)
	return temp.String()
}

// Expr prints an expression.
func (p *CodePrinter) Expr(e target.Expr) {
	p.printExpr(e, 0, false)
}

// printExpr prints an expression, adding parentheses only if needed
func (p *CodePrinter) printExpr(e target.Expr, parentPrec int, isRight bool) {
	switch n := e.(type) {
	case nil:
		p.write("<???>")
	case *target.BinaryOp:
		prec := getPrecedence(n.Op)
		needParens := prec < parentPrec
		// For same precedence, check associativity
		if prec == parentPrec {
			if isRight && !rightAssoc[n.Op] {
				needParens = true
			} else if !isRight && rightAssoc[n.Op] {
				needParens = true
			}
		}
		if needParens {
			p.write("(")
		}
		p.printExpr(n.Left, prec, false)
		p.write(" " + n.Op + " ")
		p.printExpr(n.Right, prec, true)
		if needParens {
			p.write(")")
		}
	case *target.UnaryOp:
		if unaryPrecedence < parentPrec {
			p.write("(")
		}
		if n.Op == "not" {
			p.write("not ")
		} else {
			p.write(n.Op)
		}
		p.printExpr(n.Operand, unaryPrecedence, false)
		if unaryPrecedence < parentPrec {
			p.write(")")
		}
	case *target.Var:
		p.write(n.Name)
	case *target.Atom:
		p.write(atom(n.Value))
	case *target.Integer:
		p.write(strconv.FormatInt(n.Value, 10))
	case *target.Float:
		p.write(formatFloat(n.Value))
	case *target.String:
		p.write(quote(n.Value))
	case *target.Boolean:
		p.write(strconv.FormatBool(n.Value))
	case *target.Nil:
		p.write("nil")
	case *target.Tuple:
		p.write("{")
		p.exprList(n.Elems)
		p.write("}")
	case *target.List:
		p.write("[")
		p.exprList(n.Elems)
		p.write("]")
	case *target.Map:
		p.printMap(n)
	case *target.Call:
		if n.Module != "" {
			p.write(n.Module + ".")
		}
		p.write(n.Name + "(")
		p.exprList(n.Args)
		p.write(")")
	case *target.AnonCall:
		if _, simple := n.Fn.(*target.Var); simple {
			p.Expr(n.Fn)
		} else {
			p.write("(")
			p.Expr(n.Fn)
			p.write(")")
		}
		p.write(".(")
		p.exprList(n.Args)
		p.write(")")
	case *target.Access:
		p.printExpr(n.Expr, unaryPrecedence+1, false)
		p.write("." + n.Field)
	case *target.Block:
		p.printBlock(n)
	case *target.MatchBind:
		p.Pattern(n.Pattern)
		p.write(" = ")
		p.Expr(n.Value)
	case *target.If:
		p.printIf(n)
	case *target.Case:
		p.printCase(n)
	case *target.Fn:
		p.printFn(n)
	default:
		p.write("<???>")
	}
}

func (p *CodePrinter) exprList(es []target.Expr) {
	for i, e := range es {
		if i > 0 {
			p.write(", ")
		}
		p.Expr(e)
	}
}

func (p *CodePrinter) printMap(m *target.Map) {
	keyword := true
	for _, kv := range m.Pairs {
		if a, ok := kv.Key.(*target.Atom); !ok || !isIdentifier(a.Value) {
			keyword = false
		}
	}
	p.write("%{")
	for i, kv := range m.Pairs {
		if i > 0 {
			p.write(", ")
		}
		if keyword {
			p.write(kv.Key.(*target.Atom).Value + ": ")
		} else {
			p.Expr(kv.Key)
			p.write(" => ")
		}
		p.Expr(kv.Value)
	}
	p.write("}")
}

// printBlock writes one expression per line. The caller has already
// positioned the first line.
func (p *CodePrinter) printBlock(b *target.Block) {
	for i, e := range b.Exprs {
		if i > 0 {
			p.writeln()
			p.writeIndent()
		}
		p.Expr(e)
	}
}

// body writes e indented on its own lines.
func (p *CodePrinter) body(e target.Expr) {
	p.indent++
	p.writeln()
	p.writeIndent()
	p.Expr(e)
	p.indent--
}

func (p *CodePrinter) printIf(n *target.If) {
	p.write("if ")
	p.Expr(n.Cond)
	p.write(" do")
	p.body(n.Then)
	if n.Else != nil {
		p.writeln()
		p.writeIndent()
		p.write("else")
		p.body(n.Else)
	}
	p.writeln()
	p.writeIndent()
	p.write("end")
}

func (p *CodePrinter) printCase(n *target.Case) {
	p.write("case ")
	p.Expr(n.Scrutinee)
	p.write(" do")
	p.indent++
	for _, cl := range n.Clauses {
		p.writeln()
		p.writeIndent()
		p.Pattern(cl.Pattern)
		if cl.Guard != nil {
			p.write(" when ")
			p.Expr(cl.Guard)
		}
		p.write(" ->")
		p.clauseBody(cl.Body)
	}
	p.indent--
	p.writeln()
	p.writeIndent()
	p.write("end")
}

// clauseBody keeps short single-line bodies on the arrow line.
func (p *CodePrinter) clauseBody(e target.Expr) {
	text := p.sub(e)
	if !strings.Contains(text, "\n") && (p.lineWidth == 0 || p.column+1+len(text) <= p.lineWidth) {
		p.write(" ")
		p.write(text)
		return
	}
	p.body(e)
}

func (p *CodePrinter) printFn(n *target.Fn) {
	p.write("fn")
	if len(n.Clauses) == 1 {
		cl := n.Clauses[0]
		p.fnHead(cl)
		line := p.buf.Len()
		p.clauseBody(cl.Body)
		if strings.Contains(p.buf.String()[line:], "\n") {
			p.writeln()
			p.writeIndent()
			p.write("end")
		} else {
			p.write(" end")
		}
		return
	}
	p.indent++
	for _, cl := range n.Clauses {
		p.writeln()
		p.writeIndent()
		p.fnHead(cl)
		p.clauseBody(cl.Body)
	}
	p.indent--
	p.writeln()
	p.writeIndent()
	p.write("end")
}

func (p *CodePrinter) fnHead(cl *target.FnClause) {
	for i, param := range cl.Params {
		if i == 0 {
			p.write(" ")
		} else {
			p.write(", ")
		}
		p.Pattern(param)
	}
	if cl.Guard != nil {
		p.write(" when ")
		p.Expr(cl.Guard)
	}
	p.write(" ->")
}

// Pattern prints a pattern.
func (p *CodePrinter) Pattern(pat target.Pattern) {
	switch n := pat.(type) {
	case nil:
		p.write("<???>")
	case *target.PLiteral:
		p.Expr(n.Value)
	case *target.PWildcard:
		p.write("_")
	case *target.PVar:
		p.write(n.Name)
	case *target.PTuple:
		p.write("{")
		p.patternList(n.Elems)
		p.write("}")
	case *target.PList:
		p.write("[")
		p.patternList(n.Elems)
		p.write("]")
	case *target.PCons:
		p.write("[")
		p.patternList(n.Heads)
		p.write(" | ")
		p.Pattern(n.Tail)
		p.write("]")
	case *target.PAlias:
		p.Pattern(n.Pattern)
		p.write(" = " + n.Name)
	case *target.PMap:
		p.write("%{")
		p.pairPatterns(n.Pairs)
		p.write("}")
	case *target.PStruct:
		p.write("%" + n.Module + "{")
		p.pairPatterns(n.Fields)
		p.write("}")
	default:
		p.write("<???>")
	}
}

func (p *CodePrinter) patternList(ps []target.Pattern) {
	for i, e := range ps {
		if i > 0 {
			p.write(", ")
		}
		p.Pattern(e)
	}
}

func (p *CodePrinter) pairPatterns(pairs []target.PMapPair) {
	for i, kv := range pairs {
		if i > 0 {
			p.write(", ")
		}
		if a, ok := kv.Key.(*target.Atom); ok && isIdentifier(a.Value) {
			p.write(a.Value + ": ")
		} else {
			p.Expr(kv.Key)
			p.write(" => ")
		}
		p.Pattern(kv.Pattern)
	}
}

func atom(v string) string {
	if isIdentifier(v) {
		return ":" + v
	}
	return ":" + quote(v)
}

func quote(s string) string {
	q := strconv.Quote(s)
	return strings.ReplaceAll(q, "#{", `\#{`)
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		case (r == '?' || r == '!') && i == len(s)-1 && i > 0:
		default:
			return false
		}
	}
	return true
}
