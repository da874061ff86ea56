// Package lower turns typed switch expressions, including ones whose
// constructor tests an optimizer erased to ordinal comparisons, into
// tagged-tuple case expressions of the target tree.
package lower

import (
	"fmt"
	"io"
	"log"

	set "github.com/hashicorp/go-set/v3"

	"github.com/funvibe/caselower/internal/ast"
	"github.com/funvibe/caselower/internal/config"
	"github.com/funvibe/caselower/internal/diagnostics"
	"github.com/funvibe/caselower/internal/naming"
	"github.com/funvibe/caselower/internal/target"
	"github.com/funvibe/caselower/internal/typesystem"
)

// Lowerer holds the state of one lowering run. It is not safe for
// concurrent use; independent runs use independent Lowerers.
type Lowerer struct {
	cfg     *config.Config
	conv    naming.Convention
	names   *namer
	tracker *Tracker
	logger  *log.Logger

	// sum type each lowered case expression matches on
	matched map[*target.Case]*typesystem.SumType
	// variables declared so far in the run, including function parameters
	declared *set.Set[ast.VarID]
	diags    []*diagnostics.DiagnosticError
}

// Option configures a Lowerer.
type Option func(*Lowerer)

// WithLogger routes trace output to logger. The default discards it.
func WithLogger(logger *log.Logger) Option {
	return func(l *Lowerer) { l.logger = logger }
}

// WithConfig replaces the built-in naming configuration.
func WithConfig(cfg *config.Config) Option {
	return func(l *Lowerer) { l.cfg = cfg }
}

// WithConvention replaces the snake_case naming convention.
func WithConvention(conv naming.Convention) Option {
	return func(l *Lowerer) { l.conv = conv }
}

// New returns a Lowerer.
func New(opts ...Option) *Lowerer {
	l := &Lowerer{
		cfg:      config.Default(),
		conv:     naming.Snake{},
		tracker:  NewTracker(),
		declared: set.New[ast.VarID](0),
		matched:  make(map[*target.Case]*typesystem.SumType),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = log.New(io.Discard, "", 0)
	}
	l.names = newNamer(&l.cfg.Naming, l.conv)
	return l
}

// Diagnostics returns the non-fatal diagnostics reported so far.
func (l *Lowerer) Diagnostics() []*diagnostics.DiagnosticError {
	return l.diags
}

// Tracker exposes the scope stack, mainly so callers can assert it is
// balanced after a run.
func (l *Lowerer) Tracker() *Tracker { return l.tracker }

func (l *Lowerer) report(d *diagnostics.DiagnosticError) {
	l.diags = append(l.diags, d)
	l.logger.Printf("%s", d)
}

func (l *Lowerer) tracef(format string, args ...interface{}) {
	l.logger.Printf(format, args...)
}

// Lower lowers an arbitrary expression. A nil env is replaced by a fresh
// one; switches reached that way take the literal-equality fallback.
func (l *Lowerer) Lower(env *Env, n ast.Node) (target.Expr, error) {
	if env == nil {
		if sw, ok := ast.Unwrap(n).(*ast.Switch); ok {
			return l.fallbackSwitch(sw)
		}
		env = NewEnv("")
	}
	return l.lowerExpr(env, n)
}

// LowerSwitch lowers one switch into a case expression. It returns nil
// without an error when env is nil: the switch could not be lowered and
// the caller chooses a fallback.
func (l *Lowerer) LowerSwitch(env *Env, sw *ast.Switch) (*target.Case, error) {
	return l.lowerSwitch(env, sw)
}

func (l *Lowerer) lowerSwitch(env *Env, sw *ast.Switch) (*target.Case, error) {
	if env == nil || sw == nil {
		return nil, nil
	}
	tgt := Resolve(sw.Subject)
	if tgt.Unresolved() {
		l.report(diagnostics.NewWarning(diagnostics.ErrL004, sw.GetPos(),
			"ordinal test on a value without a sum type; matching ordinals literally"))
		return l.literalSwitch(env, sw)
	}
	scrutinee, err := l.lowerExpr(env, tgt.Scrutinee)
	if err != nil {
		return nil, err
	}
	l.tracef("switch on %s (descriptor %v, erased %v)", describe(tgt.Scrutinee), tgt.Descriptor, tgt.Erased)

	var arms []*arm
	for _, c := range sw.Cases {
		// one clause group per value, each built in its own scope
		for _, v := range c.Values {
			a, err := l.buildArm(env, tgt, v, c.Guard, c.Body)
			if err != nil {
				return nil, err
			}
			arms = append(arms, a)
		}
	}
	if sw.Default != nil {
		a, err := l.buildDefault(env, tgt, sw.Default)
		if err != nil {
			return nil, err
		}
		arms = append(arms, a)
	}

	out := &target.Case{Scrutinee: scrutinee}
	for _, a := range arms {
		l.repair(a)
		out.Clauses = append(out.Clauses, a.clauses...)
	}
	if tgt.Descriptor != nil {
		l.matched[out] = tgt.Descriptor
	}
	return out, nil
}

// literalSwitch matches the subject's value against literal patterns
// without any constructor recovery.
func (l *Lowerer) literalSwitch(env *Env, sw *ast.Switch) (*target.Case, error) {
	subject, err := l.lowerExpr(env, sw.Subject)
	if err != nil {
		return nil, err
	}
	out := &target.Case{Scrutinee: subject}
	for _, c := range sw.Cases {
		for _, v := range c.Values {
			clause, err := l.literalClause(env, v, c.Guard, c.Body)
			if err != nil {
				return nil, err
			}
			out.Clauses = append(out.Clauses, clause)
		}
	}
	if sw.Default != nil {
		clause, err := l.literalClause(env, nil, nil, sw.Default)
		if err != nil {
			return nil, err
		}
		out.Clauses = append(out.Clauses, clause)
	}
	return out, nil
}

func (l *Lowerer) literalClause(env *Env, value, guard, body ast.Node) (*target.Clause, error) {
	_, pop := l.tracker.Enter(nil)
	defer pop()

	var pattern target.Pattern = &target.PWildcard{}
	if value != nil {
		pattern = l.literalPattern(value)
	}
	clause := &target.Clause{Pattern: pattern}
	var err error
	if guard != nil {
		if clause.Guard, err = l.lowerExpr(env, guard); err != nil {
			return nil, err
		}
	}
	if clause.Body, err = l.lowerBody(env, body); err != nil {
		return nil, err
	}
	return clause, nil
}

func (l *Lowerer) literalPattern(value ast.Node) target.Pattern {
	switch v := ast.Unwrap(value).(type) {
	case *ast.Const:
		if lit, err := constExpr(v); err == nil {
			return &target.PLiteral{Value: lit}
		}
	case *ast.Ident:
		if v.Name == "_" {
			return &target.PWildcard{}
		}
	}
	l.report(diagnostics.NewWarning(diagnostics.ErrL002, value.GetPos(),
		fmt.Sprintf("unsupported case value %s, matching anything", value.Kind())))
	return &target.PWildcard{}
}

// fallbackSwitch is the generic rendition used when no environment is
// available: literal matching in a fresh environment.
func (l *Lowerer) fallbackSwitch(sw *ast.Switch) (target.Expr, error) {
	l.tracef("no environment for switch at %s, using literal fallback", sw.GetPos())
	c, err := l.literalSwitch(NewEnv(""), sw)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func describe(n ast.Node) string {
	switch x := n.(type) {
	case nil:
		return "<nil>"
	case *ast.Local:
		if x.Var != nil {
			return x.Var.Name
		}
	}
	return n.Kind().String()
}
