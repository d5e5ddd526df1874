package checking

import (
	"log"
	"time"

	"psmc/bdd"
)

// Check that no accepting state is reachable, stopping at the first iteration reaching one.
//
// Only sound when the automaton accepts every run that reaches an accepting state, as the automata of
// safety properties do. Runs sequentially on the calling goroutine.
func (c *Checker) CheckSafety() *Response {
	start := time.Now()
	m := c.trans.Manager()
	stat := Statistic{Strategy: "safety"}

	reach := c.initVector()
	frontier := append([]bdd.Bdd(nil), reach...)
	for iteration := 1; ; iteration++ {
		if resp := c.verdict(reach); resp.Violated() || allFalse(frontier) {
			stat.PostReachable = time.Since(start)
			stat.Reach.Runs = 1
			stat.Reach.Iterations = iteration - 1
			resp.Safety = true
			resp.Statistic = stat
			resp.Elapsed = time.Since(start)
			return resp
		}
		if c.verbose {
			log.Printf("checking: safety iteration %d\n", iteration)
		}
		sources := falses(m, len(reach))
		for i, f := range frontier {
			if f.IsFalse() {
				continue
			}
			for _, e := range c.automaton.Forward[i] {
				sources[e.State] = sources[e.State].Or(f.And(e.Label))
			}
		}
		next := falses(m, len(reach))
		for j, src := range sources {
			if src.IsFalse() {
				continue
			}
			stat.Reach.Images++
			next[j] = c.trans.PostImage(src).Diff(reach[j])
			reach[j] = reach[j].Or(next[j])
		}
		frontier = next
	}
}

func allFalse(v []bdd.Bdd) bool {
	for _, b := range v {
		if !b.IsFalse() {
			return false
		}
	}
	return true
}
