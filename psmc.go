// Package psmc checks LTL properties of finite state systems symbolically.
//
// The system is a transition relation over boolean variables, the property is translated into a Büchi automaton
// accepting its violations, and the product is searched for a reachable accepting cycle with per automaton state
// reach sets computed sequentially or by a network of workers.
package psmc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"time"

	"psmc/automata"
	"psmc/bdd"
	"psmc/checking"
	"psmc/config"
	"psmc/fsm"
	"psmc/ltl"
	"psmc/partition"
	"psmc/reach"
)

var ErrEmptySpec = errors.New("psmc: model has no ltlspec")

// Check that the product of trans and automaton has no reachable fair accepting state.
//
// Returns true if a violation is found and the time spent checking.
// The fixpoints run on a network of workers if parallel is true.
// m must be the Manager of trans and of the labels of automaton.
func Check(m *bdd.Manager, trans *fsm.Trans, automaton *automata.Buchi, parallel bool) (bool, time.Duration) {
	if trans.Manager() != m {
		log.Panicf("psmc: the transition relation belongs to another manager")
	}
	var strategy reach.Strategy
	if parallel {
		strategy = reach.NewMessagePassing(trans, automaton, nil, nil)
	}
	resp := checking.NewChecker(trans, automaton, strategy).Check()
	return resp.Violated(), resp.Elapsed
}

// Prepare a checker with initial configuration.
//
// See the CheckerOptions for a full overview of possible options.
// Default values will be used if no value is provided.
func PrepareChecker(opts ...CheckerOption) *Checker {
	var (
		// Compute the fixpoints sequentially
		parallel = false

		settings = reach.Settings{
			Name:         reach.MessagePassingName,
			NumExecutors: runtime.GOMAXPROCS(0),
		}

		forwardVars  = []int{}
		backwardVars = []int{}

		method = fsm.Partition

		verbose = false

		// Check reachability of accepting states only
		safety = false

		translator ltl.Translator = ltl.Ltl2ba()

		extendTrans = []int{}
	)

	for _, opt := range opts {
		switch t := opt.(type) {
		case config.ParallelOption:
			parallel = t.Parallel
		case config.StrategyOption:
			settings.Name = t.Name
		case config.SlicesOption:
			if t.Dir == fsm.Forward {
				forwardVars = append(forwardVars, t.Vars...)
			} else {
				backwardVars = append(backwardVars, t.Vars...)
			}
		case config.NumExecutorsOption:
			settings.NumExecutors = t.N
		case config.TransMethodOption:
			method = t.Method
		case config.VerboseOption:
			verbose = true
		case config.SafetyOption:
			safety = true
		case config.TranslatorOption:
			translator = t.Tr
		case config.ExtendTransOption:
			extendTrans = append(extendTrans, t.Indexes...)
		}
	}
	settings.Verbose = verbose
	if !parallel {
		settings.Name = reach.SequentialName
	}
	return &Checker{
		settings:     settings,
		forwardVars:  forwardVars,
		backwardVars: backwardVars,
		method:       method,
		verbose:      verbose,
		safety:       safety,
		translator:   translator,
		extendTrans:  extendTrans,
	}
}

// Stores the configured pipeline.
//
// Can be used to check multiple models.
type Checker struct {
	settings     reach.Settings
	forwardVars  []int
	backwardVars []int
	method       fsm.TransMethod
	verbose      bool
	safety       bool
	translator   ltl.Translator
	extendTrans  []int
}

// Check the ltlspec of model.
//
// Builds the transition relation of the model in a new Manager, translates the negated property into an automaton
// and checks the product.
// Returns an error if the model, the property or the translator output are invalid.
func (c *Checker) Run(ctx context.Context, model *fsm.Model, opts ...RunOptions) (*checking.Response, error) {
	var (
		export  []io.Writer
		timeout time.Duration
	)
	for _, opt := range opts {
		switch t := opt.(type) {
		case config.ExportOption:
			export = append(export, t.W)
		case config.TranslatorTimeoutOption:
			timeout = t.Timeout
		}
	}

	if model.LTLSpec == "" {
		return nil, ErrEmptySpec
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	m, err := bdd.New(model.Varnum())
	if err != nil {
		return nil, err
	}
	trans, scope, err := model.Build(m, c.method)
	if err != nil {
		return nil, err
	}

	fairness, err := model.FairnessExprs()
	if err != nil {
		return nil, err
	}
	transExprs, err := model.TransExprs(c.extendTrans)
	if err != nil {
		return nil, err
	}
	formula := ltl.NegatedSpec(model.LTLSpec, fairness, transExprs)
	if c.verbose {
		log.Printf("psmc: translating %v\n", formula)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	automaton, err := ltl.FromLTL(ctx, c.translator, formula, scope)
	if err != nil {
		return nil, err
	}
	if c.verbose {
		log.Printf("psmc: automaton with %d states and %d edges\n", automaton.NumState(), automaton.NumEdges())
	}

	strategy, err := c.strategy(trans, automaton, len(model.Vars))
	if err != nil {
		return nil, err
	}
	checker := checking.NewChecker(trans, automaton, strategy)
	checker.SetVerbose(c.verbose)
	var resp *checking.Response
	if c.safety {
		resp = checker.CheckSafety()
	} else {
		resp = checker.Check()
	}
	if err := m.Err(); err != nil {
		return nil, err
	}
	if c.verbose {
		log.Printf("psmc: %+v\n", resp.Statistic)
	}

	_, description := resp.Response()
	for _, w := range export {
		fmt.Fprintln(w, description)
	}
	return resp, nil
}

func (c *Checker) strategy(trans *fsm.Trans, automaton *automata.Buchi, numVars int) (reach.Strategy, error) {
	settings := c.settings
	var err error
	if settings.ForwardSlices, err = slices(c.forwardVars, numVars); err != nil {
		return nil, err
	}
	if settings.BackwardSlices, err = slices(c.backwardVars, numVars); err != nil {
		return nil, err
	}
	return reach.NewStrategy(trans, automaton, settings)
}

// The slices over the current values of the state variables with the given indexes
func slices(indexes []int, numVars int) ([]partition.Slice, error) {
	vars := make([]int, 0, len(indexes))
	for _, i := range indexes {
		if i < 0 || i >= numVars {
			return nil, fmt.Errorf("psmc: no state variable %v to slice on", i)
		}
		vars = append(vars, fsm.CurrentVar(i))
	}
	return partition.Slices(vars)
}
