package reach

import (
	"fmt"

	"psmc/automata"
	"psmc/bdd"
	"psmc/fsm"
	"psmc/partition"
	"psmc/worker"
)

// A Strategy computes reachability fixpoints over vectors indexed by automaton state.
//
// Every strategy computes the same fixpoint: the states reached in one or more steps from from,
// restricted at every step to constraint in either direction. constraint may be nil.
type Strategy interface {
	Name() string
	Reachable(dir fsm.Direction, from []bdd.Bdd, constraint []bdd.Bdd) []bdd.Bdd
	Stats() Stats
}

const (
	MessagePassingName = "message-passing"
	ForkJoinName       = "fork-join"
	SequentialName     = "sequential"
)

// Settings of a parallel strategy
type Settings struct {
	Name           string
	ForwardSlices  []partition.Slice
	BackwardSlices []partition.Slice
	NumExecutors   int
	Verbose        bool
}

// Create the strategy named in settings
func NewStrategy(trans *fsm.Trans, automaton *automata.Buchi, settings Settings) (Strategy, error) {
	switch settings.Name {
	case SequentialName:
		s := NewSequential(trans, automaton)
		s.Verbose = settings.Verbose
		return s, nil
	case MessagePassingName, "":
		mp := NewMessagePassing(trans, automaton, settings.ForwardSlices, settings.BackwardSlices)
		mp.Verbose = settings.Verbose
		return mp, nil
	case ForkJoinName:
		fj := NewForkJoin(trans, automaton, settings.NumExecutors)
		fj.Verbose = settings.Verbose
		return fj, nil
	default:
		return nil, fmt.Errorf("reach: unknown strategy %q", settings.Name)
	}
}

// MessagePassing runs every fixpoint on a network of workers, one per automaton state and slice.
type MessagePassing struct {
	trans          *fsm.Trans
	automaton      *automata.Buchi
	forwardSlices  []partition.Slice
	backwardSlices []partition.Slice
	networks       map[fsm.Direction]*worker.Network
	stats          Stats

	Verbose bool
}

func NewMessagePassing(trans *fsm.Trans, automaton *automata.Buchi, forwardSlices, backwardSlices []partition.Slice) *MessagePassing {
	return &MessagePassing{
		trans:          trans,
		automaton:      automaton,
		forwardSlices:  forwardSlices,
		backwardSlices: backwardSlices,
		networks:       map[fsm.Direction]*worker.Network{},
	}
}

func (mp *MessagePassing) Name() string {
	return MessagePassingName
}

func (mp *MessagePassing) Stats() Stats {
	return mp.stats
}

// The network of a direction is created on first use and reused by later runs
func (mp *MessagePassing) network(dir fsm.Direction) *worker.Network {
	if n, ok := mp.networks[dir]; ok {
		return n
	}
	slices := mp.forwardSlices
	if dir == fsm.Backward {
		slices = mp.backwardSlices
	}
	n := worker.NewNetwork(mp.trans, mp.automaton, slices)
	n.SetVerbose(mp.Verbose)
	mp.networks[dir] = n
	return n
}

func (mp *MessagePassing) Reachable(dir fsm.Direction, from []bdd.Bdd, constraint []bdd.Bdd) []bdd.Bdd {
	n := mp.network(dir)
	reach := n.Run(dir, from, constraint)
	ws := n.Stats()
	mp.stats.Add(Stats{Runs: 1, Iterations: ws.Batches, Images: ws.Images, Messages: ws.Sent})
	return reach
}
