package prettyprinter

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/funvibe/caselower/internal/target"
)

// --- JSON Printer (structural dump for tooling) ---

// ToValue converts an expression into a protobuf Struct value. Every
// node becomes an object with a "node" discriminator.
func ToValue(e target.Expr) (*structpb.Value, error) {
	return structpb.NewValue(exprTree(e))
}

// MarshalJSON renders the structural dump as indented JSON.
func MarshalJSON(e target.Expr) ([]byte, error) {
	v, err := ToValue(e)
	if err != nil {
		return nil, fmt.Errorf("building json tree: %w", err)
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(v)
}

func exprTree(e target.Expr) interface{} {
	switch n := e.(type) {
	case nil:
		return nil
	case *target.Var:
		return obj("var", "name", n.Name)
	case *target.Atom:
		return obj("atom", "value", n.Value)
	case *target.Integer:
		return obj("integer", "value", n.Value)
	case *target.Float:
		return obj("float", "value", n.Value)
	case *target.String:
		return obj("string", "value", n.Value)
	case *target.Boolean:
		return obj("boolean", "value", n.Value)
	case *target.Nil:
		return obj("nil")
	case *target.Tuple:
		return obj("tuple", "elems", exprs(n.Elems))
	case *target.List:
		return obj("list", "elems", exprs(n.Elems))
	case *target.Map:
		pairs := make([]interface{}, len(n.Pairs))
		for i, kv := range n.Pairs {
			pairs[i] = map[string]interface{}{"key": exprTree(kv.Key), "value": exprTree(kv.Value)}
		}
		return obj("map", "pairs", pairs)
	case *target.BinaryOp:
		return obj("binary", "op", n.Op, "left", exprTree(n.Left), "right", exprTree(n.Right))
	case *target.UnaryOp:
		return obj("unary", "op", n.Op, "operand", exprTree(n.Operand))
	case *target.Call:
		return obj("call", "module", n.Module, "name", n.Name, "args", exprs(n.Args))
	case *target.AnonCall:
		return obj("anon_call", "fn", exprTree(n.Fn), "args", exprs(n.Args))
	case *target.Access:
		return obj("access", "expr", exprTree(n.Expr), "field", n.Field)
	case *target.Block:
		return obj("block", "exprs", exprs(n.Exprs))
	case *target.MatchBind:
		return obj("match", "pattern", patternTree(n.Pattern), "value", exprTree(n.Value))
	case *target.If:
		return obj("if", "cond", exprTree(n.Cond), "then", exprTree(n.Then), "else", exprTree(n.Else))
	case *target.Case:
		clauses := make([]interface{}, len(n.Clauses))
		for i, cl := range n.Clauses {
			clauses[i] = map[string]interface{}{
				"pattern": patternTree(cl.Pattern),
				"guard":   exprTree(cl.Guard),
				"body":    exprTree(cl.Body),
			}
		}
		return obj("case", "scrutinee", exprTree(n.Scrutinee), "clauses", clauses)
	case *target.Fn:
		clauses := make([]interface{}, len(n.Clauses))
		for i, cl := range n.Clauses {
			clauses[i] = map[string]interface{}{
				"params": patterns(cl.Params),
				"guard":  exprTree(cl.Guard),
				"body":   exprTree(cl.Body),
			}
		}
		return obj("fn", "clauses", clauses)
	}
	return obj("unknown", "go_type", fmt.Sprintf("%T", e))
}

func patternTree(pat target.Pattern) interface{} {
	switch n := pat.(type) {
	case nil:
		return nil
	case *target.PLiteral:
		return obj("p_literal", "value", exprTree(n.Value))
	case *target.PWildcard:
		return obj("p_wildcard")
	case *target.PVar:
		return obj("p_var", "name", n.Name)
	case *target.PTuple:
		return obj("p_tuple", "elems", patterns(n.Elems))
	case *target.PList:
		return obj("p_list", "elems", patterns(n.Elems))
	case *target.PCons:
		return obj("p_cons", "heads", patterns(n.Heads), "tail", patternTree(n.Tail))
	case *target.PAlias:
		return obj("p_alias", "name", n.Name, "pattern", patternTree(n.Pattern))
	case *target.PMap:
		return obj("p_map", "pairs", patternPairs(n.Pairs))
	case *target.PStruct:
		return obj("p_struct", "module", n.Module, "fields", patternPairs(n.Fields))
	}
	return obj("unknown", "go_type", fmt.Sprintf("%T", pat))
}

func obj(kind string, kv ...interface{}) map[string]interface{} {
	m := map[string]interface{}{"node": kind}
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

func exprs(es []target.Expr) []interface{} {
	out := make([]interface{}, len(es))
	for i, e := range es {
		out[i] = exprTree(e)
	}
	return out
}

func patterns(ps []target.Pattern) []interface{} {
	out := make([]interface{}, len(ps))
	for i, p := range ps {
		out[i] = patternTree(p)
	}
	return out
}

func patternPairs(pairs []target.PMapPair) []interface{} {
	out := make([]interface{}, len(pairs))
	for i, kv := range pairs {
		out[i] = map[string]interface{}{"key": exprTree(kv.Key), "pattern": patternTree(kv.Pattern)}
	}
	return out
}
