package fsm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"psmc/bdd"
	"psmc/expr"
)

var ErrModel = errors.New("fsm: invalid model")

// A Model is the description of a finite state system with boolean variables.
//
//	{
//	  "vars": ["x0", "x1"],
//	  "init": "!x0 & !x1",
//	  "next": {"x0": "!x0", "x1": "x1 ^ x0"},
//	  "trans": [],
//	  "defines": {"top": "x0 & x1"},
//	  "fairness": [],
//	  "ltlspec": "[]<> top"
//	}
//
// Variables without a next assignment and without trans constraint evolve freely.
type Model struct {
	Vars     []string          `json:"vars"`
	Init     string            `json:"init"`
	Next     map[string]string `json:"next"`
	Trans    []string          `json:"trans"`
	Defines  map[string]string `json:"defines"`
	Fairness []string          `json:"fairness"`
	LTLSpec  string            `json:"ltlspec"`
}

// Read a JSON model
func LoadModel(r io.Reader) (*Model, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var m Model
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModel, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Read a JSON model from a file
func LoadModelFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadModel(f)
}

// Check that the model is structurally sound. Expressions are checked when the model is built.
func (m *Model) Validate() error {
	if len(m.Vars) == 0 {
		return fmt.Errorf("%w: no variables", ErrModel)
	}
	seen := map[string]bool{}
	for _, v := range m.Vars {
		if v == "" || v == "next" {
			return fmt.Errorf("%w: invalid variable name %q", ErrModel, v)
		}
		if seen[v] {
			return fmt.Errorf("%w: variable %v declared twice", ErrModel, v)
		}
		seen[v] = true
	}
	for v := range m.Next {
		if !seen[v] {
			return fmt.Errorf("%w: next assignment of undeclared variable %v", ErrModel, v)
		}
	}
	return nil
}

// Number of diagram variables needed to build the model
func (m *Model) Varnum() int {
	return 2 * len(m.Vars)
}

// Build the transition relation of the model in manager.
//
// The returned Scope resolves the variables and defines of the model.
func (m *Model) Build(manager *bdd.Manager, method TransMethod) (*Trans, *expr.Scope, error) {
	scope := expr.NewScope(manager)
	for i, v := range m.Vars {
		if err := scope.Declare(v, CurrentVar(i), NextVar(i)); err != nil {
			return nil, nil, err
		}
	}
	for name, def := range m.Defines {
		e, err := expr.Parse(def)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: define %v: %v", ErrModel, name, err)
		}
		if err := scope.Define(name, e); err != nil {
			return nil, nil, err
		}
	}

	init := manager.True()
	if m.Init != "" {
		e, err := expr.Parse(m.Init)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: init: %v", ErrModel, err)
		}
		if e.HasNext() {
			return nil, nil, fmt.Errorf("%w: init refers to next state values", ErrModel)
		}
		if init, err = scope.Compile(e); err != nil {
			return nil, nil, fmt.Errorf("%w: init: %v", ErrModel, err)
		}
	}

	partitions := []bdd.Bdd{}
	for i, v := range m.Vars {
		src, ok := m.Next[v]
		if !ok {
			continue
		}
		value, err := scope.CompileString(src)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: next(%v): %v", ErrModel, v, err)
		}
		partitions = append(partitions, manager.IthVar(NextVar(i)).Iff(value))
	}
	for k, src := range m.Trans {
		constraint, err := scope.CompileString(src)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: trans %v: %v", ErrModel, k, err)
		}
		partitions = append(partitions, constraint)
	}

	trans, err := NewTrans(manager, len(m.Vars), init, partitions, method)
	if err != nil {
		return nil, nil, err
	}
	return trans, scope, nil
}

// Parse the fairness constraints of the model
func (m *Model) FairnessExprs() ([]*expr.Expr, error) {
	return parseAll("fairness", m.Fairness)
}

// Parse the trans constraints with the given indexes
func (m *Model) TransExprs(indexes []int) ([]*expr.Expr, error) {
	srcs := make([]string, 0, len(indexes))
	for _, k := range indexes {
		if k < 0 || k >= len(m.Trans) {
			return nil, fmt.Errorf("%w: no trans constraint %v", ErrModel, k)
		}
		srcs = append(srcs, m.Trans[k])
	}
	return parseAll("trans", srcs)
}

func parseAll(what string, srcs []string) ([]*expr.Expr, error) {
	exprs := make([]*expr.Expr, len(srcs))
	for k, src := range srcs {
		e, err := expr.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %v %v: %v", ErrModel, what, k, err)
		}
		exprs[k] = e
	}
	return exprs, nil
}
