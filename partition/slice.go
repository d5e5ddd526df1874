// Package partition splits the state space between workers.
//
// A worker is identified by an automaton state crossed with a Slice, a cube over a few system variables.
package partition

import (
	"errors"
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"psmc/bdd"
)

var ErrSliceVars = errors.New("partition: invalid slice variables")

// A Slice is the cube of the system states where every listed variable has the given polarity.
type Slice []bdd.Literal

func (s Slice) Cube(m *bdd.Manager) bdd.Bdd {
	return m.Cube(s)
}

func (s Slice) String() string {
	if len(s) == 0 {
		return "[]"
	}
	parts := make([]string, len(s))
	for i, lit := range s {
		if lit.Positive {
			parts[i] = fmt.Sprintf("%d", lit.Var)
		} else {
			parts[i] = fmt.Sprintf("!%d", lit.Var)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Slices branches on every variable of vars.
//
// The 2^len(vars) resulting slices are pairwise disjoint and cover the whole state space.
// Without variables a single empty slice, the whole state space, is returned.
func Slices(vars []int) ([]Slice, error) {
	seen := mapset.NewThreadUnsafeSet[int]()
	for _, v := range vars {
		if v < 0 {
			return nil, fmt.Errorf("%w: negative variable %v", ErrSliceVars, v)
		}
		if !seen.Add(v) {
			return nil, fmt.Errorf("%w: variable %v used twice", ErrSliceVars, v)
		}
	}
	slices := []Slice{{}}
	for _, v := range vars {
		next := make([]Slice, 0, 2*len(slices))
		for _, s := range slices {
			for _, polarity := range []bool{true, false} {
				branch := make(Slice, len(s), len(s)+1)
				copy(branch, s)
				next = append(next, append(branch, bdd.Literal{Var: v, Positive: polarity}))
			}
		}
		slices = next
	}
	return slices, nil
}

// Layout assigns an id to every (automaton state, slice) pair.
type Layout struct {
	States int
	Slices []Slice
}

func NewLayout(states int, slices []Slice) Layout {
	if len(slices) == 0 {
		slices = []Slice{{}}
	}
	return Layout{States: states, Slices: slices}
}

// Number of workers
func (l Layout) Size() int {
	return l.States * len(l.Slices)
}

func (l Layout) NumSlices() int {
	return len(l.Slices)
}

// Id of the worker handling slice of state
func (l Layout) Id(state, slice int) int {
	return state*len(l.Slices) + slice
}

// The automaton state and slice handled by worker id
func (l Layout) Owner(id int) (state, slice int) {
	return id / len(l.Slices), id % len(l.Slices)
}
