package worker

import (
	"log"
	"sync"
	"time"

	"psmc/automata"
	"psmc/bdd"
	"psmc/fsm"
	"psmc/partition"
)

// A Network of workers, one per automaton state and slice, sharing an active counter.
type Network struct {
	shared  *bdd.Manager
	layout  partition.Layout
	cubes   []bdd.Bdd
	workers []*Worker
	counter *ActiveCounter
	verbose bool
}

// Create the workers for automaton and trans. Every worker gets its own Manager.
func NewNetwork(trans *fsm.Trans, automaton *automata.Buchi, slices []partition.Slice) *Network {
	layout := partition.NewLayout(automaton.NumState(), slices)
	n := &Network{
		shared:  trans.Manager(),
		layout:  layout,
		counter: &ActiveCounter{},
	}
	for _, s := range layout.Slices {
		n.cubes = append(n.cubes, s.Cube(n.shared))
	}
	mailboxes := make([]*Mailbox, layout.Size())
	for id := range mailboxes {
		mailboxes[id] = NewMailbox()
	}
	for id := 0; id < layout.Size(); id++ {
		n.workers = append(n.workers, newWorker(id, trans, automaton, layout, mailboxes, n.counter))
	}
	return n
}

// Log the duration and the amount of work of every run
func (n *Network) SetVerbose(verbose bool) {
	n.verbose = verbose
}

func (n *Network) Layout() partition.Layout {
	return n.layout
}

func (n *Network) Size() int {
	return len(n.workers)
}

// Reset every worker and the active counter
func (n *Network) Reset() {
	n.counter.Reset(0)
	for _, w := range n.workers {
		w.Reset()
		n.counter.Inc()
	}
}

// Work done during the last run
func (n *Network) Stats() Stats {
	stats := Stats{}
	for _, w := range n.workers {
		stats.add(w.Stats())
	}
	return stats
}

// Run the reachability fixpoint of direction dir on the network.
//
// from and constraint are indexed by automaton state and live in the Manager of the transition relation,
// constraint may be nil. The result is indexed by automaton state, in the same Manager.
func (n *Network) Run(dir fsm.Direction, from []bdd.Bdd, constraint []bdd.Bdd) []bdd.Bdd {
	if len(from) != n.layout.States {
		log.Panicf("worker: %v initial sets for %v automaton states", len(from), n.layout.States)
	}
	start := time.Now()
	n.Reset()

	inputs := make([]bdd.Diagram, len(n.workers))
	constraints := make([]*bdd.Diagram, len(n.workers))
	for id := range n.workers {
		state, slice := n.layout.Owner(id)
		inputs[id] = n.shared.Export(from[state].And(n.cubes[slice]))
		if constraint != nil {
			c := n.shared.Export(constraint[state])
			constraints[id] = &c
		}
	}

	results := make([]bdd.Diagram, len(n.workers))
	var wg sync.WaitGroup
	for id, w := range n.workers {
		wg.Add(1)
		go func(id int, w *Worker) {
			defer wg.Done()
			results[id] = w.Run(dir, inputs[id], constraints[id])
		}(id, w)
	}
	wg.Wait()

	reach := make([]bdd.Bdd, n.layout.States)
	for state := range reach {
		reach[state] = n.shared.False()
	}
	for id, res := range results {
		state, _ := n.layout.Owner(id)
		reach[state] = reach[state].Or(n.shared.Import(res))
	}
	if n.verbose {
		stats := n.Stats()
		log.Printf("worker: %v run on %v workers in %v, %v images, %v messages\n", dir, len(n.workers), time.Since(start), stats.Images, stats.Sent)
	}
	return reach
}
