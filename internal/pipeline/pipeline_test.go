package pipeline_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/funvibe/caselower/internal/cache"
	"github.com/funvibe/caselower/internal/diagnostics"
	"github.com/funvibe/caselower/internal/lower"
	"github.com/funvibe/caselower/internal/pipeline"
)

func newPipeline(extra ...pipeline.Processor) *pipeline.Pipeline {
	stages := []pipeline.Processor{pipeline.LoadProcessor{}}
	stages = append(stages, extra...)
	stages = append(stages, &lower.Processor{}, pipeline.RenderProcessor{}, pipeline.CheckProcessor{})
	return pipeline.New(stages...)
}

func TestGoldenFixtures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no fixtures in testdata")
	}
	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			ctx := newPipeline().Run(pipeline.NewContext(path, nil))
			for _, d := range ctx.Errors {
				if d.Code == diagnostics.ErrF001 || d.Code == diagnostics.ErrF002 {
					t.Error(d)
				}
			}
		})
	}
}

func TestRecoveryFailureStopsRendering(t *testing.T) {
	ctx := newPipeline().Run(pipeline.NewContext(filepath.Join("testdata", "recovery_failure.yaml"), nil))
	if !ctx.Failed() {
		t.Fatalf("run did not fail")
	}
	if ctx.Output != nil || ctx.Rendered != "" {
		t.Errorf("partial output rendered: %q", ctx.Rendered)
	}
}

func TestFailedRunSkipsToCheck(t *testing.T) {
	var reached []string
	stage := func(name string) pipeline.Processor {
		return pipeline.ProcessorFunc(func(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
			reached = append(reached, name)
			return ctx
		})
	}
	p := pipeline.New(pipeline.LoadProcessor{}, stage("cache"), &lower.Processor{}, stage("render"), pipeline.CheckProcessor{})

	ctx := p.Run(pipeline.NewContext(filepath.Join("testdata", "recovery_failure.yaml"), nil))
	if len(reached) != 1 || reached[0] != "cache" {
		t.Errorf("stages reached = %v, want only the one before lowering", reached)
	}
	if len(ctx.Errors) == 0 {
		t.Fatal("no diagnostics recorded")
	}
	for _, d := range ctx.Errors {
		if d.Code != diagnostics.ErrL001 {
			t.Errorf("unexpected diagnostic %v; check should accept the expected L001", d)
		}
	}
}

func TestMissingFixture(t *testing.T) {
	ctx := newPipeline().Run(pipeline.NewContext(filepath.Join("testdata", "absent.yaml"), nil))
	if len(ctx.Errors) != 1 || ctx.Errors[0].Code != diagnostics.ErrF001 {
		t.Fatalf("errors = %v, want one F001", ctx.Errors)
	}
}

func TestExpectationMismatch(t *testing.T) {
	ctx := pipeline.NewContext("inline.yaml", nil)
	ctx.Source = []byte("input: {int: 1}\nexpect: \"2\"\ndiagnostics: [L003]\n")
	ctx = newPipeline().Run(ctx)

	var mismatches int
	for _, d := range ctx.Errors {
		if d.Code == diagnostics.ErrF002 {
			mismatches++
		}
	}
	if mismatches != 2 {
		t.Errorf("got %d expectation mismatches, want 2 (rendering and diagnostics): %v", mismatches, ctx.Errors)
	}
}

func TestJSONFormat(t *testing.T) {
	ctx := pipeline.NewContext(filepath.Join("testdata", "circle_area.yaml"), nil)
	ctx.Format = pipeline.FormatJSON
	ctx = newPipeline().Run(ctx)
	if ctx.Failed() {
		t.Fatalf("errors: %v", ctx.Errors)
	}
	var tree struct {
		Node    string `json:"node"`
		Clauses []struct {
			Pattern struct {
				Node  string            `json:"node"`
				Elems []json.RawMessage `json:"elems"`
			} `json:"pattern"`
		} `json:"clauses"`
	}
	if err := json.Unmarshal([]byte(ctx.Rendered), &tree); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, ctx.Rendered)
	}
	if tree.Node != "case" || len(tree.Clauses) != 2 {
		t.Fatalf("unexpected tree: %+v", tree)
	}
	if p := tree.Clauses[0].Pattern; p.Node != "p_tuple" || len(p.Elems) != 2 {
		t.Errorf("first pattern = %+v", p)
	}
}

func TestCachedRunSkipsLowering(t *testing.T) {
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	path := filepath.Join("testdata", "unresolved.yaml")
	run := func() *pipeline.PipelineContext {
		p := pipeline.New(
			pipeline.LoadProcessor{},
			&cache.LookupProcessor{Cache: c},
			&lower.Processor{},
			pipeline.RenderProcessor{},
			pipeline.CheckProcessor{},
			&cache.StoreProcessor{Cache: c},
		)
		return p.Run(pipeline.NewContext(path, nil))
	}

	first := run()
	if first.Cached || first.Failed() {
		t.Fatalf("first run: cached=%v errors=%v", first.Cached, first.Errors)
	}
	second := run()
	if !second.Cached {
		t.Fatalf("second run missed the cache")
	}
	if second.Output != nil {
		t.Errorf("second run lowered again")
	}
	if second.Rendered != first.Rendered {
		t.Errorf("cached rendering differs:\n%s\nvs\n%s", second.Rendered, first.Rendered)
	}
	// the restored L004 still satisfies the fixture's diagnostics list
	for _, d := range second.Errors {
		if d.Code == diagnostics.ErrF002 {
			t.Error(d)
		}
	}
}
