// Package fsm holds the symbolic transition relation of the system under verification.
//
// State variable i is stored in diagram variable 2i, its next state value in diagram variable 2i+1.
package fsm

import (
	"errors"
	"fmt"
	"log"
	"math/big"

	"psmc/bdd"
)

var ErrVarnum = errors.New("fsm: manager has too few variables")

type TransMethod int

const (
	// One relation, conjunction of every constraint
	Monolithic TransMethod = iota
	// Conjunctive partitions with early quantification
	Partition
)

func (m TransMethod) String() string {
	switch m {
	case Monolithic:
		return "monolithic"
	case Partition:
		return "partition"
	default:
		return fmt.Sprintf("TransMethod(%d)", int(m))
	}
}

// Parse the name of a TransMethod
func ParseTransMethod(name string) (TransMethod, error) {
	switch name {
	case "monolithic":
		return Monolithic, nil
	case "partition":
		return Partition, nil
	default:
		return 0, fmt.Errorf("fsm: unknown trans method %q", name)
	}
}

func CurrentVar(i int) int {
	return 2 * i
}

func NextVar(i int) int {
	return 2*i + 1
}

// Trans is the transition relation of a finite state system together with its initial states.
//
// A Trans is bound to one Manager and shares its restriction: it must only be used by one goroutine at a time.
type Trans struct {
	manager *bdd.Manager
	numVars int
	method  TransMethod

	Init       bdd.Bdd
	partitions []bdd.Bdd

	// Variables quantified right after the conjunction with partitions[k]
	postSchedule []bdd.Bdd
	preSchedule  []bdd.Bdd

	toNext    *bdd.Renamer
	toCurrent *bdd.Renamer
}

// Create a transition relation over numVars state variables.
//
// Every element of partitions is a constraint over current and next state variables,
// the relation is their conjunction.
func NewTrans(m *bdd.Manager, numVars int, init bdd.Bdd, partitions []bdd.Bdd, method TransMethod) (*Trans, error) {
	if m.Varnum() < 2*numVars {
		return nil, fmt.Errorf("%w: %v variables for %v state variables", ErrVarnum, m.Varnum(), numVars)
	}
	t := &Trans{
		manager: m,
		numVars: numVars,
		method:  method,
		Init:    init,
	}
	switch method {
	case Monolithic:
		rel := m.True()
		for _, p := range partitions {
			rel = rel.And(p)
		}
		t.partitions = []bdd.Bdd{rel}
	case Partition:
		t.partitions = make([]bdd.Bdd, 0, len(partitions))
		for _, p := range partitions {
			if !p.IsTrue() {
				t.partitions = append(t.partitions, p)
			}
		}
		if len(t.partitions) == 0 {
			t.partitions = []bdd.Bdd{m.True()}
		}
	default:
		return nil, fmt.Errorf("fsm: unknown trans method %v", method)
	}

	current := make([]int, numVars)
	next := make([]int, numVars)
	for i := 0; i < numVars; i++ {
		current[i] = CurrentVar(i)
		next[i] = NextVar(i)
	}
	var err error
	if t.toNext, err = m.NewRenamer(current, next); err != nil {
		return nil, err
	}
	if t.toCurrent, err = m.NewRenamer(next, current); err != nil {
		return nil, err
	}
	t.postSchedule = t.schedule(current)
	t.preSchedule = t.schedule(next)
	return t, nil
}

// Compute for every partition the variables of vars that no later partition depends on.
func (t *Trans) schedule(vars []int) []bdd.Bdd {
	last := make(map[int]int, len(vars))
	for _, v := range vars {
		last[v] = 0
	}
	for k, p := range t.partitions {
		for _, v := range t.manager.Support(p) {
			if _, ok := last[v]; ok {
				last[v] = k
			}
		}
	}
	quantified := make([][]int, len(t.partitions))
	for _, v := range vars {
		quantified[last[v]] = append(quantified[last[v]], v)
	}
	schedule := make([]bdd.Bdd, len(t.partitions))
	for k, qs := range quantified {
		schedule[k] = t.manager.VarSet(qs)
	}
	return schedule
}

func (t *Trans) Manager() *bdd.Manager {
	return t.manager
}

// Number of state variables
func (t *Trans) NumVars() int {
	return t.numVars
}

func (t *Trans) Method() TransMethod {
	return t.method
}

// Number of conjunctive partitions of the relation
func (t *Trans) NumPartitions() int {
	return len(t.partitions)
}

func (t *Trans) image(s bdd.Bdd, schedule []bdd.Bdd) bdd.Bdd {
	acc := s
	for k, p := range t.partitions {
		acc = t.manager.AndExist(schedule[k], acc, p)
		if acc.IsFalse() {
			break
		}
	}
	return acc
}

// Predecessors of the states in s
func (t *Trans) PreImage(s bdd.Bdd) bdd.Bdd {
	if s.IsFalse() {
		return s
	}
	return t.image(t.manager.Rename(s, t.toNext), t.preSchedule)
}

// Successors of the states in s
func (t *Trans) PostImage(s bdd.Bdd) bdd.Bdd {
	if s.IsFalse() {
		return s
	}
	return t.manager.Rename(t.image(s, t.postSchedule), t.toCurrent)
}

// Number of states in s, a set over current state variables
func (t *Trans) StateCount(s bdd.Bdd) *big.Int {
	count := t.manager.SatCount(s)
	// every variable other than the current state ones is free in s
	return new(big.Int).Rsh(count, uint(t.manager.Varnum()-t.numVars))
}

// Build the same relation in another Manager.
//
// t's Manager is read during the call.
func (t *Trans) CloneWithManager(m *bdd.Manager) *Trans {
	partitions := make([]bdd.Bdd, len(t.partitions))
	for k, p := range t.partitions {
		partitions[k] = m.Translocate(p)
	}
	clone, err := NewTrans(m, t.numVars, m.Translocate(t.Init), partitions, Partition)
	if err != nil {
		log.Panicf("fsm: unable to clone transition relation: %v", err)
	}
	clone.method = t.method
	return clone
}

type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "backward"
}

// Successors of s when going forward, predecessors when going backward
func (t *Trans) Image(dir Direction, s bdd.Bdd) bdd.Bdd {
	if dir == Forward {
		return t.PostImage(s)
	}
	return t.PreImage(s)
}
