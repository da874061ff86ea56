// Package fixture reads lowering cases from YAML documents.
//
// A fixture declares the sum types and variables a typed tree refers to,
// the tree itself and, optionally, the expected rendering:
//
//	name: circle area
//	module: Geometry
//	params: [shape]
//	types:
//	  - name: Shape
//	    constructors:
//	      - name: Circle
//	        params: [{name: radius, type: Float}]
//	vars:
//	  - {name: shape, type: Shape}
//	input:
//	  switch:
//	    subject: {index: {local: shape}}
//	    cases:
//	      - values: [{int: 0}]
//	        body: {param: {of: {local: shape}, ctor: Circle, index: 0}}
//	expect: |
//	  case shape do
//	    {:circle, radius} -> radius
//	  end
//
// Every tree node is a single-key mapping whose key selects the node
// kind.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/caselower/internal/ast"
	"github.com/funvibe/caselower/internal/typesystem"
	"github.com/funvibe/caselower/internal/utils"
)

// Fixture is one decoded lowering case.
type Fixture struct {
	Name     string
	Path     string
	Module   string
	Function string
	Params   []string
	Receiver string

	Types map[string]*typesystem.SumType
	Vars  map[string]*ast.Var
	Input ast.Node

	// Expect is the expected rendering, empty when the fixture only
	// checks that lowering succeeds.
	Expect string
	// Diagnostics lists the codes the run must report.
	Diagnostics []string

	// Source is the raw document, the cache key input.
	Source []byte
}

// Switch returns the input when it is a switch.
func (f *Fixture) Switch() (*ast.Switch, bool) {
	sw, ok := ast.Unwrap(f.Input).(*ast.Switch)
	return sw, ok
}

type rawFixture struct {
	Name        string    `yaml:"name"`
	Module      string    `yaml:"module"`
	Function    string    `yaml:"function"`
	Params      []string  `yaml:"params"`
	Receiver    string    `yaml:"receiver"`
	Types       []rawType `yaml:"types"`
	Vars        []rawVar  `yaml:"vars"`
	Input       yaml.Node `yaml:"input"`
	Expect      string    `yaml:"expect"`
	Diagnostics []string  `yaml:"diagnostics"`
}

type rawType struct {
	Name         string    `yaml:"name"`
	Module       string    `yaml:"module"`
	Constructors []rawCtor `yaml:"constructors"`
}

type rawCtor struct {
	Name   string   `yaml:"name"`
	Params []rawVar `yaml:"params"`
}

type rawVar struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Load reads and decodes a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path)
}

// Parse decodes a fixture document. path is used in error messages and
// source positions.
func Parse(data []byte, path string) (*Fixture, error) {
	var raw rawFixture
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if raw.Input.Kind == 0 {
		return nil, fmt.Errorf("%s: missing input", path)
	}

	d := &decoder{
		path:  path,
		types: make(map[string]*typesystem.SumType),
		vars:  make(map[string]*ast.Var),
	}
	if err := d.declareTypes(raw.Types); err != nil {
		return nil, err
	}
	for _, v := range raw.Vars {
		if _, err := d.declareVar(v); err != nil {
			return nil, err
		}
	}
	input, err := d.node(&raw.Input)
	if err != nil {
		return nil, err
	}

	name := raw.Name
	if name == "" {
		name = utils.FixtureName(path)
	}
	module := raw.Module
	if module == "" {
		module = "Main"
	}
	return &Fixture{
		Name:        name,
		Path:        path,
		Module:      module,
		Function:    raw.Function,
		Params:      raw.Params,
		Receiver:    raw.Receiver,
		Types:       d.types,
		Vars:        d.vars,
		Input:       input,
		Expect:      strings.TrimSpace(raw.Expect),
		Diagnostics: raw.Diagnostics,
		Source:      data,
	}, nil
}

// Glob loads every fixture matching pattern, sorted by path.
func Glob(pattern string) ([]*Fixture, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	out := make([]*Fixture, 0, len(paths))
	for _, p := range paths {
		f, err := Load(p)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
