package pipeline

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// finalStage marks stages that report on a run rather than extend it.
// They run even after a fatal diagnostic.
type finalStage interface {
	final()
}

// Run executes the pipeline. Once a stage records an error-severity
// diagnostic, such as a fixture that cannot be decoded or an L001
// recovery failure, the remaining stages are skipped except final ones,
// so a failed lowering is never rendered or cached but is still checked
// against the fixture's expected diagnostics.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		if ctx.Failed() {
			if _, ok := processor.(finalStage); !ok {
				continue
			}
		}
		ctx = processor.Process(ctx)
	}
	return ctx
}
