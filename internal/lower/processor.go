package lower

import (
	"log"

	"github.com/funvibe/caselower/internal/diagnostics"
	"github.com/funvibe/caselower/internal/pipeline"
)

// Processor is the lowering stage: it lowers the fixture input inside an
// environment built from the fixture header.
type Processor struct {
	Logger *log.Logger
}

func (p *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	f := ctx.Fixture
	if f == nil || ctx.Cached {
		return ctx
	}

	var opts []Option
	if ctx.Config != nil {
		opts = append(opts, WithConfig(ctx.Config))
	}
	if p.Logger != nil {
		opts = append(opts, WithLogger(p.Logger))
	}
	l := New(opts...)

	env := NewEnv(f.Module)
	if f.Receiver != "" {
		defer env.WithReceiver(l.names.ident(f.Receiver))()
	}
	params := make([]string, len(f.Params))
	for i, name := range f.Params {
		params[i] = l.names.ident(name)
		if v, ok := f.Vars[name]; ok {
			l.declared.Insert(v.ID)
		}
	}
	defer env.WithFunction(f.Function, params)()

	out, err := l.Lower(env, f.Input)
	ctx.Errors = append(ctx.Errors, l.Diagnostics()...)
	if err != nil {
		ctx.Errors = append(ctx.Errors, diagnostics.As(err, diagnostics.ErrF001))
		return ctx
	}
	ctx.Output = out
	return ctx
}
