// Package ltl turns LTL properties into Büchi automata with an external translator.
package ltl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/exp/slices"

	"psmc/automata"
	"psmc/expr"
)

var ErrTranslator = errors.New("ltl: translator failed")

// A Translator turns an LTL formula into a never claim
type Translator interface {
	Translate(ctx context.Context, formula string) (string, error)
}

// ExecTranslator runs an external program, passing the formula as its last argument and reading the never claim on its standard output.
type ExecTranslator struct {
	Path string
	Args []string
	// Log every translation and its duration
	Verbose bool
}

// The ltl2ba translator, looked up in PATH
func Ltl2ba() *ExecTranslator {
	return &ExecTranslator{Path: "ltl2ba", Args: []string{"-f"}}
}

// The ltl2tgba translator of Spot, printing never claims
func Ltl2tgba() *ExecTranslator {
	return &ExecTranslator{Path: "ltl2tgba", Args: []string{"-s", "-f"}}
}

// The translator with the given name: "ltl2ba", "ltl2tgba", or the path of a program taking -f formula
func ByName(name string, verbose bool) Translator {
	var tr *ExecTranslator
	switch name {
	case "", "ltl2ba":
		tr = Ltl2ba()
	case "ltl2tgba":
		tr = Ltl2tgba()
	default:
		tr = &ExecTranslator{Path: name, Args: []string{"-f"}}
	}
	tr.Verbose = verbose
	return tr
}

func (tr *ExecTranslator) Translate(ctx context.Context, formula string) (string, error) {
	start := time.Now()
	args := append(slices.Clone(tr.Args), formula)
	cmd := exec.CommandContext(ctx, tr.Path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%w: %v: %v: %v", ErrTranslator, tr.Path, err, msg)
		}
		return "", fmt.Errorf("%w: %v: %v", ErrTranslator, tr.Path, err)
	}
	if tr.Verbose {
		log.Printf("ltl: %v translated %v in %v\n", tr.Path, formula, time.Since(start))
	}
	return string(out), nil
}

// StaticTranslator returns the same never claim for every formula
type StaticTranslator string

func (st StaticTranslator) Translate(ctx context.Context, formula string) (string, error) {
	return string(st), nil
}

// Build the negation of "the trans constraints always hold and the fairness constraints hold infinitely often imply spec".
//
// trans may refer to next state values, rendered with the X operator.
func NegatedSpec(spec string, fairness []*expr.Expr, trans []*expr.Expr) string {
	assumptions := []string{}
	for _, t := range trans {
		assumptions = append(assumptions, "([] "+t.LTL()+")")
	}
	for _, f := range fairness {
		assumptions = append(assumptions, "([]<> "+f.LTL()+")")
	}
	if len(assumptions) == 0 {
		return "!(" + spec + ")"
	}
	return "!((" + strings.Join(assumptions, " && ") + ") -> (" + spec + "))"
}

// Translate formula and build the resulting automaton with guards compiled in scope
func FromLTL(ctx context.Context, tr Translator, formula string, scope *expr.Scope) (*automata.Buchi, error) {
	claim, err := tr.Translate(ctx, formula)
	if err != nil {
		return nil, err
	}
	b, err := automata.ParseNeverClaim(claim, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranslator, err)
	}
	return b, nil
}
