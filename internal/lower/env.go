package lower

import (
	set "github.com/hashicorp/go-set/v3"

	"github.com/funvibe/caselower/internal/ast"
)

// Env is the lowering environment threaded through the recursion: the
// lexical container, the active renaming map and the receiver binder for
// instance-style calls. Overrides go through the With* methods, whose
// returned func restores the previous state and is meant to be deferred.
type Env struct {
	Module   string
	Function string

	params   *set.Set[string]
	renames  map[ast.VarID]string
	receiver string
}

// NewEnv returns an environment for code inside module.
func NewEnv(module string) *Env {
	return &Env{
		Module:  module,
		params:  set.New[string](0),
		renames: make(map[ast.VarID]string),
	}
}

// Receiver is the target name of the instance receiver.
func (e *Env) Receiver() string { return e.receiver }

// IsParam reports whether name (target spelling) is a parameter of the
// enclosing function.
func (e *Env) IsParam(name string) bool { return e.params.Contains(name) }

// Params lists the parameter names of the enclosing function.
func (e *Env) Params() []string { return e.params.Slice() }

// Rename returns the target name registered for a source variable.
func (e *Env) Rename(id ast.VarID) (string, bool) {
	name, ok := e.renames[id]
	return name, ok
}

// WithFunction enters a function body with the given parameter names.
func (e *Env) WithFunction(name string, params []string) func() {
	prevName, prevParams := e.Function, e.params
	e.Function = name
	e.params = set.From(params)
	return func() {
		e.Function, e.params = prevName, prevParams
	}
}

// WithRenames overlays renames on the active map.
func (e *Env) WithRenames(renames map[ast.VarID]string) func() {
	prev := e.renames
	merged := make(map[ast.VarID]string, len(prev)+len(renames))
	for k, v := range prev {
		merged[k] = v
	}
	for k, v := range renames {
		merged[k] = v
	}
	e.renames = merged
	return func() { e.renames = prev }
}

// WithReceiver sets the receiver binder.
func (e *Env) WithReceiver(name string) func() {
	prev := e.receiver
	e.receiver = name
	return func() { e.receiver = prev }
}
