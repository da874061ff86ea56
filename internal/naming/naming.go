// Package naming holds the ambient naming conventions of the target
// language. The lowering core treats them as black boxes.
package naming

import (
	"strings"
	"unicode"
)

// Convention maps source-side names to target-side names.
type Convention interface {
	// Identifier converts a source identifier (variable, function) to the
	// target's identifier convention.
	Identifier(name string) string
	// Tag converts a constructor name to the text of its tag atom.
	Tag(ctorName string) string
}

// Snake is the default convention: snake_case identifiers and tags,
// reserved words suffixed with an underscore.
type Snake struct{}

func (Snake) Identifier(name string) string {
	out := ToSnake(name)
	if reservedWords[out] {
		return out + "_"
	}
	return out
}

func (Snake) Tag(ctorName string) string {
	return ToSnake(ctorName)
}

var reservedWords = map[string]bool{
	"do": true, "end": true, "fn": true, "when": true, "and": true,
	"or": true, "not": true, "in": true, "nil": true, "true": true,
	"false": true, "catch": true, "rescue": true, "after": true,
	"else": true, "cond": true, "case": true, "if": true, "unless": true,
}

// ToSnake converts camelCase and PascalCase to snake_case. Leading
// underscores are kept, acronym runs stay together (HTTPError → http_error).
func ToSnake(name string) string {
	if name == "" {
		return ""
	}
	lead := len(name) - len(strings.TrimLeft(name, "_"))
	body := []rune(name[lead:])

	var b strings.Builder
	b.WriteString(name[:lead])
	for i, r := range body {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := body[i-1]
				nextLower := i+1 < len(body) && unicode.IsLower(body[i+1])
				if prev != '_' && (unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower)) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
