package config

import (
	"psmc/fsm"
	"psmc/ltl"
)

// Compute the fixpoints with a parallel strategy
type ParallelOption struct {
	Parallel bool
}

func (po ParallelOption) CheckOpt() {}

// Name of the parallel strategy
type StrategyOption struct {
	Name string
}

func (so StrategyOption) CheckOpt() {}

// Slice the reach sets of one phase on the listed state variables.

// Vars are indexes of state variables, one worker per automaton state and valuation of the variables.
type SlicesOption struct {
	Dir  fsm.Direction
	Vars []int
}

func (so SlicesOption) CheckOpt() {}

type NumExecutorsOption struct {
	N int
}

func (neo NumExecutorsOption) CheckOpt() {}

type TransMethodOption struct {
	Method fsm.TransMethod
}

func (tmo TransMethodOption) CheckOpt() {}

type VerboseOption struct{}

func (vo VerboseOption) CheckOpt() {}

type SafetyOption struct{}

func (so SafetyOption) CheckOpt() {}

// Translator used to build the automaton of the negated property
type TranslatorOption struct {
	Tr ltl.Translator
}

func (to TranslatorOption) CheckOpt() {}

// Indexes of the trans constraints of the model assumed by the property
type ExtendTransOption struct {
	Indexes []int
}

func (eto ExtendTransOption) CheckOpt() {}
