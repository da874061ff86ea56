package cache

import (
	"strings"

	"github.com/funvibe/caselower/internal/ast"
	"github.com/funvibe/caselower/internal/diagnostics"
	"github.com/funvibe/caselower/internal/pipeline"
)

// LookupProcessor restores a cached rendering and its diagnostics. It
// runs after loading; later stages skip work on a hit.
type LookupProcessor struct {
	Cache      *Cache
	ConfigData []byte
}

func (p *LookupProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if p.Cache == nil || ctx.Fixture == nil {
		return ctx
	}
	e, err := p.Cache.Lookup(Key(ctx.Fixture.Source, p.ConfigData, ctx.Format))
	if err != nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewWarning(diagnostics.ErrP001, ast.Pos{File: ctx.FilePath}, "cache lookup failed: "+err.Error()))
		return ctx
	}
	if e == nil {
		return ctx
	}
	ctx.Rendered = e.Output
	ctx.Cached = true
	for _, line := range e.Diagnostics {
		if d := decodeDiagnostic(line, ctx.FilePath); d != nil {
			ctx.Errors = append(ctx.Errors, d)
		}
	}
	return ctx
}

// StoreProcessor records successful renderings.
type StoreProcessor struct {
	Cache      *Cache
	ConfigData []byte
}

func (p *StoreProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if p.Cache == nil || ctx.Fixture == nil || ctx.Cached || ctx.Rendered == "" || ctx.Failed() {
		return ctx
	}
	e := &Entry{Fixture: ctx.Fixture.Name, Output: ctx.Rendered}
	for _, d := range ctx.Errors {
		e.Diagnostics = append(e.Diagnostics, encodeDiagnostic(d))
	}
	if err := p.Cache.Store(Key(ctx.Fixture.Source, p.ConfigData, ctx.Format), ctx.Format, e); err != nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewWarning(diagnostics.ErrP001, ast.Pos{File: ctx.FilePath}, err.Error()))
	}
	return ctx
}

// Diagnostics are stored one per line as code, severity and message
// separated by tabs. Positions are not kept.
func encodeDiagnostic(d *diagnostics.DiagnosticError) string {
	msg := strings.NewReplacer("\n", " ", "\t", " ").Replace(d.Message)
	return string(d.Code) + "\t" + d.Severity.String() + "\t" + msg
}

func decodeDiagnostic(line, file string) *diagnostics.DiagnosticError {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 {
		return nil
	}
	d := &diagnostics.DiagnosticError{
		Code:    diagnostics.ErrorCode(parts[0]),
		Pos:     ast.Pos{File: file},
		Message: parts[2],
	}
	switch parts[1] {
	case "info":
		d.Severity = diagnostics.SeverityInfo
	case "warning":
		d.Severity = diagnostics.SeverityWarning
	default:
		d.Severity = diagnostics.SeverityError
	}
	return d
}
