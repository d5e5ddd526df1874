package psmc

import (
	"io"
	"time"

	"psmc/config"
	"psmc/fsm"
	"psmc/ltl"
)

// A option used to configure the Checker
type CheckerOption interface {
	// noop method
	CheckOpt()
}

// Compute the reach sets with a parallel strategy if parallel is true.
//
// Default value is false.
func Parallel(parallel bool) CheckerOption {
	return config.ParallelOption{Parallel: parallel}
}

// Use the named parallel strategy, "message-passing" or "fork-join".
//
// Only used with Parallel(true). Default value is "message-passing".
func WithStrategy(name string) CheckerOption {
	return config.StrategyOption{Name: name}
}

// Slice the forward reach sets of every automaton state on the state variables with the given indexes.
//
// Every valuation of the variables gets its own worker. Default value is no slicing.
func ForwardSlices(vars ...int) CheckerOption {
	return config.SlicesOption{Dir: fsm.Forward, Vars: vars}
}

// Slice the backward reach sets of every automaton state on the state variables with the given indexes.
//
// Default value is no slicing.
func BackwardSlices(vars ...int) CheckerOption {
	return config.SlicesOption{Dir: fsm.Backward, Vars: vars}
}

// Configure the number of goroutines computing images with the fork-join strategy.
//
// Default value is GOMAXPROCS
func NumExecutors(n int) CheckerOption {
	return config.NumExecutorsOption{N: n}
}

// Configure how the transition relation is represented.
//
// Default value is fsm.Partition.
func TransMethod(method fsm.TransMethod) CheckerOption {
	return config.TransMethodOption{Method: method}
}

// Log the progress of the fixpoints
func Verbose() CheckerOption {
	return config.VerboseOption{}
}

// Only check that no accepting state of the automaton is reachable.
//
// Faster than the fair cycle check, but only sound for safety properties.
func Safety() CheckerOption {
	return config.SafetyOption{}
}

// Use the provided translator to build the automaton of the negated property.
//
// Default value is ltl2ba, looked up in PATH.
func WithTranslator(tr ltl.Translator) CheckerOption {
	return config.TranslatorOption{Tr: tr}
}

// Assume that the trans constraints of the model with the given indexes always hold.
//
// Default value is no assumption.
func ExtendTrans(indexes ...int) CheckerOption {
	return config.ExtendTransOption{Indexes: indexes}
}

// Optional parameters used to configure a run
type RunOptions interface {
	RunOpt()
}

// Write the description of the response to the writer
func Export(w io.Writer) RunOptions {
	return config.ExportOption{W: w}
}

// Stop the LTL translator after timeout
func TranslatorTimeout(timeout time.Duration) RunOptions {
	return config.TranslatorTimeoutOption{Timeout: timeout}
}
