package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/caselower/internal/ast"
	"github.com/funvibe/caselower/internal/diagnostics"
)

const circleFixture = `
module: Geometry
types:
  - name: Shape
    constructors:
      - {name: Circle, params: [{name: radius, type: Float}]}
      - {name: Square, params: [{name: side, type: Float}]}
vars:
  - {name: shape, type: Shape}
input:
  switch:
    subject: {index: {local: shape}}
    cases:
      - values: [{int: 0}]
        body: {param: {of: {local: shape}, ctor: Circle, index: 0}}
      - values: [{int: 1}]
        body: {float: 0}
expect: |
  case shape do
    {:circle, radius} -> radius
    {:square, _side} -> 0.0
  end
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCollectFixturesSkipsConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "input: {int: 1}\n")
	writeFile(t, dir, "b.yml", "input: {int: 2}\n")
	writeFile(t, dir, "caselower.yaml", "naming: {}\n")
	writeFile(t, dir, "notes.txt", "")

	files, err := collectFixtures([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v, want a.yaml and b.yml", files)
	}
	if _, err := collectFixtures([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Errorf("missing path accepted")
	}
}

func TestRunPrintsLoweredCase(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "circle.yaml", circleFixture)

	var stdout, stderr bytes.Buffer
	if !run([]string{path}, options{format: "text"}, &stdout, &stderr) {
		t.Fatalf("run failed: %s", stderr.String())
	}
	if !strings.Contains(stdout.String(), "{:circle, radius} -> radius") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRunCheckReportsMismatch(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", circleFixture)
	bad := writeFile(t, dir, "bad.yaml", strings.Replace(circleFixture, "-> radius", "-> r", 1))

	var stdout, stderr bytes.Buffer
	if run([]string{good, bad}, options{format: "text", check: true}, &stdout, &stderr) {
		t.Fatalf("check passed with a mismatching fixture")
	}
	out := stdout.String()
	if !strings.Contains(out, "ok   "+good) || !strings.Contains(out, "FAIL "+bad) {
		t.Errorf("stdout = %q", out)
	}
	if !strings.Contains(stderr.String(), "[F002]") {
		t.Errorf("stderr = %q, want an F002 diagnostic", stderr.String())
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "caselower.yaml", "naming:\n  unused_prefix: x\n")
	path := writeFile(t, dir, "circle.yaml", circleFixture)

	var stdout, stderr bytes.Buffer
	if run([]string{path}, options{format: "text", configPath: cfg}, &stdout, &stderr) {
		t.Fatalf("run accepted an invalid configuration")
	}
	if !strings.Contains(stderr.String(), "unused_prefix") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestReporterWithoutTerminalIsPlain(t *testing.T) {
	var buf bytes.Buffer
	r := newReporter(&buf)
	r.report([]*diagnostics.DiagnosticError{
		diagnostics.NewWarning(diagnostics.ErrL004, ast.Pos{Line: 3, Column: 5}, "ordinal test"),
	})
	if got := strings.TrimSpace(buf.String()); got != "3:5: warning [L004]: ordinal test" {
		t.Errorf("report = %q", got)
	}

	r.color = true
	if got := r.format(diagnostics.NewError(diagnostics.ErrL001, ast.Pos{}, "x")); !strings.HasPrefix(got, colorRed) {
		t.Errorf("error not coloured: %q", got)
	}
}

func TestRunWithCacheReusesResult(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "circle.yaml", circleFixture)
	opts := options{format: "text", check: true, useCache: true}

	var stdout, stderr bytes.Buffer
	if !run([]string{path}, opts, &stdout, &stderr) {
		t.Fatalf("first run failed: %s", stderr.String())
	}
	stdout.Reset()
	if !run([]string{path}, opts, &stdout, &stderr) {
		t.Fatalf("second run failed: %s", stderr.String())
	}
	if !strings.Contains(stdout.String(), "(cached)") {
		t.Errorf("second run did not hit the cache: %q", stdout.String())
	}
	if _, err := os.Stat(filepath.Join(dir, ".caselower", "cache.db")); err != nil {
		t.Errorf("cache not created next to the fixture: %v", err)
	}
}
