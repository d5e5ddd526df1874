// Package automata holds the Büchi automata encoding the negation of the checked properties.
package automata

import (
	"fmt"
	"log"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/exp/slices"

	"psmc/bdd"
	"psmc/fsm"
)

// An Edge of an automaton. In the forward adjacency lists State is the destination of the edge,
// in the backward ones it is the source.
type Edge struct {
	State int
	Label bdd.Bdd
}

// A Büchi automaton whose edges are labelled with sets of system states.
//
// A label constrains the system state in which the edge is taken.
type Buchi struct {
	Forward   [][]Edge
	Backward  [][]Edge
	Init      mapset.Set[int]
	Accepting mapset.Set[int]
}

// Create an automaton with numState states and no edges
func New(numState int) *Buchi {
	return &Buchi{
		Forward:   make([][]Edge, numState),
		Backward:  make([][]Edge, numState),
		Init:      mapset.NewThreadUnsafeSet[int](),
		Accepting: mapset.NewThreadUnsafeSet[int](),
	}
}

func (b *Buchi) NumState() int {
	return len(b.Forward)
}

func (b *Buchi) checkState(s int) {
	if s < 0 || s >= b.NumState() {
		log.Panicf("automata: state %v out of range [0, %v)", s, b.NumState())
	}
}

// Add the edge from -> to labelled with label
func (b *Buchi) AddEdge(from, to int, label bdd.Bdd) {
	b.checkState(from)
	b.checkState(to)
	b.Forward[from] = append(b.Forward[from], Edge{State: to, Label: label})
	b.Backward[to] = append(b.Backward[to], Edge{State: from, Label: label})
}

func (b *Buchi) AddInitState(s int) {
	b.checkState(s)
	b.Init.Add(s)
}

func (b *Buchi) AddAcceptingState(s int) {
	b.checkState(s)
	b.Accepting.Add(s)
}

// The initial states in increasing order
func (b *Buchi) InitStates() []int {
	return sorted(b.Init)
}

// The accepting states in increasing order
func (b *Buchi) AcceptingStates() []int {
	return sorted(b.Accepting)
}

func (b *Buchi) IsAccepting(s int) bool {
	return b.Accepting.Contains(s)
}

func sorted(set mapset.Set[int]) []int {
	states := set.ToSlice()
	slices.Sort(states)
	return states
}

// Number of edges of the automaton
func (b *Buchi) NumEdges() int {
	n := 0
	for _, edges := range b.Forward {
		n += len(edges)
	}
	return n
}

// Copy the automaton, with its labels rebuilt in m.
//
// The Manager of the labels is read during the call.
func (b *Buchi) Translocate(m *bdd.Manager) *Buchi {
	res := New(b.NumState())
	for from, edges := range b.Forward {
		for _, e := range edges {
			res.AddEdge(from, e.State, m.Translocate(e.Label))
		}
	}
	res.Init = b.Init.Clone()
	res.Accepting = b.Accepting.Clone()
	return res
}

func (b *Buchi) String() string {
	return fmt.Sprintf("Buchi{states: %v, edges: %v, init: %v, accepting: %v}", b.NumState(), b.NumEdges(), b.InitStates(), b.AcceptingStates())
}

// Counter is a three state automaton over the two least significant bits of a counter model.
// It accepts the runs reaching a state where the bits read 11 right after one or more states where they read 00.
func Counter(m *bdd.Manager) *Buchi {
	b := New(3)
	bit0 := m.IthVar(fsm.CurrentVar(0))
	bit1 := m.IthVar(fsm.CurrentVar(1))
	b.AddEdge(0, 0, bit0.Or(bit1))
	b.AddEdge(0, 1, bit0.Not().And(bit1.Not()))
	b.AddEdge(1, 0, bit0.Xor(bit1))
	b.AddEdge(1, 1, bit0.Not().And(bit1.Not()))
	b.AddEdge(1, 2, bit0.And(bit1))
	b.AddEdge(2, 2, m.True())
	b.AddInitState(0)
	b.AddAcceptingState(2)
	return b
}
