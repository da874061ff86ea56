package pipeline

import (
	"os"
	"sort"
	"strings"

	set "github.com/hashicorp/go-set/v3"

	"github.com/funvibe/caselower/internal/ast"
	"github.com/funvibe/caselower/internal/diagnostics"
	"github.com/funvibe/caselower/internal/fixture"
	"github.com/funvibe/caselower/internal/prettyprinter"
)

// Output formats of the render stage.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// LoadProcessor reads and decodes the fixture. Source may be preset, in
// which case FilePath only names it.
type LoadProcessor struct{}

func (LoadProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Fixture != nil {
		return ctx
	}
	if ctx.Source == nil {
		data, err := os.ReadFile(ctx.FilePath)
		if err != nil {
			ctx.Errors = append(ctx.Errors, diagnostics.Wrap(diagnostics.ErrF001, ast.Pos{File: ctx.FilePath}, err, "cannot read fixture"))
			return ctx
		}
		ctx.Source = data
	}
	f, err := fixture.Parse(ctx.Source, ctx.FilePath)
	if err != nil {
		ctx.Errors = append(ctx.Errors, diagnostics.Wrap(diagnostics.ErrF001, ast.Pos{File: ctx.FilePath}, err, "cannot decode fixture"))
		return ctx
	}
	ctx.Fixture = f
	return ctx
}

// RenderProcessor prints the lowered output in ctx.Format.
type RenderProcessor struct{}

func (RenderProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Output == nil || ctx.Cached {
		return ctx
	}
	switch ctx.Format {
	case FormatJSON:
		data, err := prettyprinter.MarshalJSON(ctx.Output)
		if err != nil {
			ctx.Errors = append(ctx.Errors, diagnostics.Wrap(diagnostics.ErrF001, ast.Pos{File: ctx.FilePath}, err, "cannot encode output"))
			return ctx
		}
		ctx.Rendered = string(data)
	default:
		ctx.Rendered = prettyprinter.Print(ctx.Output)
	}
	return ctx
}

// CheckProcessor compares the run against the fixture's expectations:
// the rendering when the fixture gives one, and the set of reported
// diagnostic codes when it lists them.
type CheckProcessor struct{}

func (CheckProcessor) final() {}

func (CheckProcessor) Process(ctx *PipelineContext) *PipelineContext {
	f := ctx.Fixture
	if f == nil {
		return ctx
	}
	pos := ast.Pos{File: ctx.FilePath}
	if f.Expect != "" && ctx.Format != FormatJSON && strings.TrimSpace(ctx.Rendered) != f.Expect {
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrF002, pos,
			"rendering differs from expect:\n--- got\n"+strings.TrimSpace(ctx.Rendered)+"\n--- want\n"+f.Expect))
	}
	if f.Diagnostics != nil {
		got := uniqueCodes(ctx.Codes(), diagnostics.ErrF002)
		want := uniqueCodes(f.Diagnostics, "")
		if strings.Join(got, ",") != strings.Join(want, ",") {
			ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrF002, pos,
				"diagnostics ["+strings.Join(got, ", ")+"], want ["+strings.Join(want, ", ")+"]"))
		}
	}
	return ctx
}

func uniqueCodes(codes []string, skip diagnostics.ErrorCode) []string {
	s := set.From(codes)
	s.Remove(string(skip))
	out := s.Slice()
	sort.Strings(out)
	return out
}
