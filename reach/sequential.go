// Package reach computes reachable states of the product of a transition relation with a Büchi automaton.
//
// The product is never built: reach sets are vectors indexed by automaton state, and automaton edges decide which
// image flows into which element. Edge labels constrain the system state the edge is taken from.
package reach

import (
	"log"

	"golang.org/x/exp/slices"

	"psmc/automata"
	"psmc/bdd"
	"psmc/fsm"
)

// Work done by a strategy
type Stats struct {
	Runs       int
	Iterations int
	Images     int
	Messages   int
}

func (s *Stats) Add(o Stats) {
	s.Runs += o.Runs
	s.Iterations += o.Iterations
	s.Images += o.Images
	s.Messages += o.Messages
}

// Sequential runs the fixpoints on the calling goroutine.
type Sequential struct {
	trans     *fsm.Trans
	automaton *automata.Buchi
	stats     Stats

	Verbose bool
	// Called with the reach sets after every iteration, when not nil
	Observe func(dir fsm.Direction, iteration int, reach []bdd.Bdd)
}

func NewSequential(trans *fsm.Trans, automaton *automata.Buchi) *Sequential {
	return &Sequential{trans: trans, automaton: automaton}
}

func (s *Sequential) Name() string {
	return SequentialName
}

func (s *Sequential) Stats() Stats {
	return s.stats
}

func (s *Sequential) Reachable(dir fsm.Direction, from []bdd.Bdd, constraint []bdd.Bdd) []bdd.Bdd {
	if dir == fsm.Forward {
		return s.post(from, constraint)
	}
	return s.PreReachable(from, constraint)
}

// Compute the states reachable in one or more steps from from.
//
// Contributions of every edge are gathered per destination before computing one image per automaton state.
func (s *Sequential) PostReachable(from []bdd.Bdd) []bdd.Bdd {
	return s.post(from, nil)
}

// Forward fixpoint going only through constraint, which may be nil
func (s *Sequential) post(from []bdd.Bdd, constraint []bdd.Bdd) []bdd.Bdd {
	m := s.trans.Manager()
	s.stats.Runs++
	reach := falses(m, len(from))
	frontier := from
	for iteration := 1; !allFalse(frontier); iteration++ {
		s.stats.Iterations++
		if s.Verbose {
			log.Printf("reach: post iteration %d\n", iteration)
		}
		sources := falses(m, len(from))
		for i, f := range frontier {
			if f.IsFalse() {
				continue
			}
			for _, e := range s.automaton.Forward[i] {
				sources[e.State] = sources[e.State].Or(f.And(e.Label))
			}
		}
		next := falses(m, len(from))
		for j, src := range sources {
			if src.IsFalse() {
				continue
			}
			s.stats.Images++
			image := s.trans.PostImage(src)
			if constraint != nil {
				image = image.And(constraint[j])
			}
			next[j] = image.Diff(reach[j])
			reach[j] = reach[j].Or(next[j])
		}
		frontier = next
		if s.Observe != nil {
			s.Observe(fsm.Forward, iteration, reach)
		}
	}
	return reach
}

// Compute the states from which from can be reached in one or more steps, going only through constraint.
//
// constraint may be nil. One image is computed per automaton state, labels are applied afterwards.
func (s *Sequential) PreReachable(from []bdd.Bdd, constraint []bdd.Bdd) []bdd.Bdd {
	m := s.trans.Manager()
	s.stats.Runs++
	reach := falses(m, len(from))
	frontier := from
	for iteration := 1; !allFalse(frontier); iteration++ {
		s.stats.Iterations++
		if s.Verbose {
			log.Printf("reach: pre iteration %d\n", iteration)
		}
		next := falses(m, len(from))
		for i, f := range frontier {
			if f.IsFalse() {
				continue
			}
			s.stats.Images++
			image := s.trans.PreImage(f)
			if image.IsFalse() {
				continue
			}
			for _, e := range s.automaton.Backward[i] {
				update := image.And(e.Label)
				if constraint != nil {
					update = update.And(constraint[e.State])
				}
				update = update.Diff(reach[e.State])
				reach[e.State] = reach[e.State].Or(update)
				next[e.State] = next[e.State].Or(update)
			}
		}
		frontier = next
		if s.Observe != nil {
			s.Observe(fsm.Backward, iteration, reach)
		}
	}
	return reach
}

// Sequential forward fixpoint
func PostReachable(trans *fsm.Trans, automaton *automata.Buchi, from []bdd.Bdd) []bdd.Bdd {
	return NewSequential(trans, automaton).PostReachable(from)
}

// Sequential backward fixpoint
func PreReachable(trans *fsm.Trans, automaton *automata.Buchi, from []bdd.Bdd, constraint []bdd.Bdd) []bdd.Bdd {
	return NewSequential(trans, automaton).PreReachable(from, constraint)
}

func falses(m *bdd.Manager, n int) []bdd.Bdd {
	v := make([]bdd.Bdd, n)
	for i := range v {
		v[i] = m.False()
	}
	return v
}

func allFalse(v []bdd.Bdd) bool {
	for _, b := range v {
		if !b.IsFalse() {
			return false
		}
	}
	return true
}

// Equal reports whether a and b hold the same functions
func Equal(a, b []bdd.Bdd) bool {
	return slices.EqualFunc(a, b, func(x, y bdd.Bdd) bool { return x.Equal(y) })
}
