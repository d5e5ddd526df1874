package checking

import (
	"log"

	"psmc/bdd"
	"psmc/fsm"
	"psmc/reach"
)

// Compute the fair states within reach: the accepting states from which an accepting state can be reached
// again in one or more steps without leaving reach, repeatedly.
//
// Starts from reach at every accepting state and shrinks the set until it stops changing.
// Returns the fixpoint and the number of backward runs it took.
func (c *Checker) FairStates(reachable []bdd.Bdd) ([]bdd.Bdd, int) {
	fair := falses(c.trans.Manager(), c.automaton.NumState())
	for _, a := range c.automaton.AcceptingStates() {
		fair[a] = reachable[a]
	}
	iterations := 0
	for {
		iterations++
		backward := c.strategy.Reachable(fsm.Backward, fair, reachable)
		next := make([]bdd.Bdd, len(fair))
		for i := range fair {
			next[i] = fair[i].And(backward[i])
		}
		if c.verbose {
			log.Printf("checking: fair iteration %d\n", iterations)
		}
		if c.Observe != nil {
			c.Observe(iterations, next)
		}
		if reach.Equal(next, fair) {
			return fair, iterations
		}
		fair = next
	}
}
