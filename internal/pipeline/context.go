package pipeline

import (
	"github.com/funvibe/caselower/internal/config"
	"github.com/funvibe/caselower/internal/diagnostics"
	"github.com/funvibe/caselower/internal/fixture"
	"github.com/funvibe/caselower/internal/target"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx *PipelineContext) *PipelineContext

func (f ProcessorFunc) Process(ctx *PipelineContext) *PipelineContext { return f(ctx) }

// PipelineContext carries one fixture through the stages.
type PipelineContext struct {
	FilePath string
	Source   []byte
	Config   *config.Config

	Fixture *fixture.Fixture
	Output  target.Expr
	// Rendered is the printed Output; set by the render stage or restored
	// from the cache.
	Rendered string
	Format   string
	Cached   bool

	Errors []*diagnostics.DiagnosticError
}

// NewContext returns a context for the fixture at path.
func NewContext(path string, cfg *config.Config) *PipelineContext {
	if cfg == nil {
		cfg = config.Default()
	}
	return &PipelineContext{FilePath: path, Config: cfg, Format: FormatText}
}

// Failed reports whether an error-severity diagnostic was recorded.
func (ctx *PipelineContext) Failed() bool {
	return diagnostics.HasErrors(ctx.Errors)
}

// Codes lists the diagnostic codes recorded so far, in order.
func (ctx *PipelineContext) Codes() []string {
	out := make([]string, 0, len(ctx.Errors))
	for _, d := range ctx.Errors {
		out = append(out, string(d.Code))
	}
	return out
}
