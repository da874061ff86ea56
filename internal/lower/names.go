package lower

import (
	"strconv"
	"strings"
	"unicode"

	set "github.com/hashicorp/go-set/v3"

	"github.com/funvibe/caselower/internal/config"
	"github.com/funvibe/caselower/internal/naming"
)

// namer applies the naming configuration.
type namer struct {
	cfg      *config.Naming
	conv     naming.Convention
	reserved *set.Set[string]
}

func newNamer(cfg *config.Naming, conv naming.Convention) *namer {
	return &namer{cfg: cfg, conv: conv, reserved: set.From(cfg.ReservedNames)}
}

// IsExtractionTemp reports whether name looks like an optimizer-introduced
// extraction temporary. This is a naming heuristic (a short stem plus an
// optional numeric suffix); a user variable spelled like a temporary is
// misclassified. Every temporary check in the package goes through here.
func (n *namer) IsExtractionTemp(name string) bool {
	return name != "" && n.cfg.TempRegexp().MatchString(name)
}

// isReserved: never taken from the source as a binder name.
func (n *namer) isReserved(name string) bool {
	return name == "" || n.reserved.Contains(name) || n.reserved.Contains(strings.TrimLeft(name, "_")) || n.IsExtractionTemp(name)
}

// isGeneric: reserved, a single letter, or digit-suffixed.
func (n *namer) isGeneric(name string) bool {
	if n.isReserved(name) {
		return true
	}
	core := strings.TrimLeft(name, "_")
	if len([]rune(core)) <= 1 {
		return true
	}
	last := core[len(core)-1]
	return last >= '0' && last <= '9'
}

// ident converts a source identifier to the target convention.
func (n *namer) ident(name string) string {
	return n.conv.Identifier(name)
}

// tag converts a constructor name to its tag text.
func (n *namer) tag(ctorName string) string {
	return n.conv.Tag(ctorName)
}

// unused applies the intentionally-unused marker.
func (n *namer) unused(name string) string {
	if strings.HasPrefix(name, n.cfg.UnusedPrefix) {
		return name
	}
	return n.cfg.UnusedPrefix + name
}

// used strips the unused marker.
func (n *namer) used(name string) string {
	if trimmed := strings.TrimPrefix(name, n.cfg.UnusedPrefix); trimmed != "" && isLetter(trimmed) {
		return trimmed
	}
	return name
}

func isLetter(s string) bool {
	r := []rune(s)
	return len(r) > 0 && unicode.IsLetter(r[0])
}

// tempOrdinal orders per-parameter temporaries of one extraction family:
// the bare stem is position 0, a numeric suffix k is position k.
func tempOrdinal(name string) int {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) {
		return 0
	}
	k, err := strconv.Atoi(name[i:])
	if err != nil {
		return -1
	}
	return k
}

// uniqueName returns name, or name with the smallest numeric suffix that
// is not taken.
func uniqueName(name string, taken *set.Set[string]) string {
	if !taken.Contains(name) {
		return name
	}
	for i := 2; ; i++ {
		candidate := name + strconv.Itoa(i)
		if !taken.Contains(candidate) {
			return candidate
		}
	}
}
