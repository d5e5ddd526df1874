package checking

import (
	"testing"

	"psmc/automata"
	"psmc/bdd"
	"psmc/fsm"
	"psmc/partition"
	"psmc/reach"
)

func counterTrans(t *testing.T, method fsm.TransMethod) *fsm.Trans {
	t.Helper()
	model := fsm.Counter(2)
	m, err := bdd.New(model.Varnum())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	trans, _, err := model.Build(m, method)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return trans
}

func maxValue(m *bdd.Manager) bdd.Bdd {
	return m.IthVar(fsm.CurrentVar(0)).And(m.IthVar(fsm.CurrentVar(1)))
}

// Accepts the runs that eventually stay away from 11
func eventuallyNeverMax(m *bdd.Manager) *automata.Buchi {
	b := automata.New(2)
	b.AddEdge(0, 0, m.True())
	b.AddEdge(0, 1, maxValue(m).Not())
	b.AddEdge(1, 1, maxValue(m).Not())
	b.AddInitState(0)
	b.AddAcceptingState(1)
	return b
}

// Accepts the runs that reach 11
func reachesMax(m *bdd.Manager) *automata.Buchi {
	b := automata.New(2)
	b.AddEdge(0, 0, maxValue(m).Not())
	b.AddEdge(0, 1, maxValue(m))
	b.AddEdge(1, 1, m.True())
	b.AddInitState(0)
	b.AddAcceptingState(1)
	return b
}

// A single accepting state with a self loop that is never entered
func noInit(m *bdd.Manager) *automata.Buchi {
	b := automata.New(1)
	b.AddEdge(0, 0, m.True())
	b.AddAcceptingState(0)
	return b
}

func strategies(t *testing.T, trans *fsm.Trans, b *automata.Buchi) []reach.Strategy {
	t.Helper()
	forward, err := partition.Slices([]int{fsm.CurrentVar(0)})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	backward, err := partition.Slices([]int{fsm.CurrentVar(1), fsm.CurrentVar(0)})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return []reach.Strategy{
		reach.NewSequential(trans, b),
		reach.NewMessagePassing(trans, b, nil, nil),
		reach.NewMessagePassing(trans, b, forward, backward),
		reach.NewForkJoin(trans, b, 2),
	}
}

var checkTests = []struct {
	name      string
	automaton func(m *bdd.Manager) *automata.Buchi
	violated  bool
	violating []int
}{
	{"infinitely often max", eventuallyNeverMax, false, nil},
	{"always below max", reachesMax, true, []int{1}},
	{"no initial state", noInit, false, nil},
	{"counter fixture", automata.Counter, false, nil},
}

func TestCheck(t *testing.T) {
	for _, method := range []fsm.TransMethod{fsm.Monolithic, fsm.Partition} {
		trans := counterTrans(t, method)
		for _, test := range checkTests {
			b := test.automaton(trans.Manager())
			for _, s := range strategies(t, trans, b) {
				resp := NewChecker(trans, b, s).Check()
				if resp.Violated() != test.violated {
					t.Errorf("Test %v (%v, %v): Unexpected verdict. Expected violated: %v. Got: %v", test.name, method, s.Name(), test.violated, resp.Violated())
				}
				if got := resp.Export(); len(got) != len(test.violating) {
					t.Errorf("Test %v (%v, %v): Unexpected violating states. Expected: %v. Got: %v", test.name, method, s.Name(), test.violating, got)
				}
				if resp.Statistic.Strategy != s.Name() {
					t.Errorf("Test %v: Unexpected strategy. Expected: %v. Got: %v", test.name, s.Name(), resp.Statistic.Strategy)
				}
				if resp.Statistic.FairIterations < 1 {
					t.Errorf("Test %v: Expected at least one fair iteration", test.name)
				}
			}
		}
	}
}

func TestResponse(t *testing.T) {
	trans := counterTrans(t, fsm.Partition)
	resp := NewChecker(trans, reachesMax(trans.Manager()), nil).Check()
	holds, description := resp.Response()
	if holds {
		t.Errorf("Expected the property to be violated")
	}
	if description == "" {
		t.Errorf("Expected a description of the violation")
	}
	// reach and fair states of state 1 are all 4 counter values
	if resp.Witnesses[0] != "4" {
		t.Errorf("Unexpected number of witnesses. Expected: 4. Got: %v", resp.Witnesses[0])
	}

	resp = NewChecker(trans, noInit(trans.Manager()), nil).Check()
	if holds, _ := resp.Response(); !holds {
		t.Errorf("Expected the property to hold")
	}
	if len(resp.Export()) != 0 {
		t.Errorf("Expected no violating states. Got: %v", resp.Export())
	}
}

func TestFairStatesShrink(t *testing.T) {
	trans := counterTrans(t, fsm.Partition)
	m := trans.Manager()
	b := eventuallyNeverMax(m)
	c := NewChecker(trans, b, nil)
	init := c.initVector()
	forward := reach.PostReachable(trans, b, init)
	for i := range forward {
		forward[i] = forward[i].Or(init[i])
	}
	if forward[1].IsFalse() {
		t.Fatalf("Expected the accepting state to be reachable")
	}
	fair, iterations := c.FairStates(forward)
	if !fair[1].IsFalse() {
		t.Errorf("Expected no fair states, the counter always comes back to 11")
	}
	if iterations < 2 {
		t.Errorf("Expected the fair states to shrink over several iterations. Got: %v", iterations)
	}
	for i := range fair {
		if !fair[i].Implies(forward[i]) {
			t.Errorf("Fair states of %v are not reachable", i)
		}
	}
}

func TestFairStatesConverge(t *testing.T) {
	trans := counterTrans(t, fsm.Partition)
	m := trans.Manager()
	tests := []struct {
		automaton *automata.Buchi
		// upper bound on the iterations, 0 for none
		bound      int
		iterations int
	}{
		{reachesMax(m), reachesMax(m).NumState(), 1},
		{noInit(m), noInit(m).NumState(), 1},
		{automata.Counter(m), automata.Counter(m).NumState(), 1},
		// 3 -> {1, 2} -> {1} -> nothing, confirmed by a fourth run
		{eventuallyNeverMax(m), 0, 4},
	}
	for i, test := range tests {
		c := NewChecker(trans, test.automaton, nil)
		init := c.initVector()
		forward := reach.PostReachable(trans, test.automaton, init)
		for j := range forward {
			forward[j] = forward[j].Or(init[j])
		}
		previous := falses(m, test.automaton.NumState())
		for _, a := range test.automaton.AcceptingStates() {
			previous[a] = forward[a]
		}
		observed := 0
		c.Observe = func(iteration int, fair []bdd.Bdd) {
			observed++
			for j := range fair {
				if !fair[j].Implies(previous[j]) {
					t.Errorf("Test %v: fair states of %v grew at iteration %v", i, j, iteration)
				}
			}
			previous = append([]bdd.Bdd(nil), fair...)
		}
		_, iterations := c.FairStates(forward)
		if iterations != test.iterations {
			t.Errorf("Test %v: Unexpected number of iterations. Expected: %v. Got: %v", i, test.iterations, iterations)
		}
		if test.bound > 0 && iterations > test.bound {
			t.Errorf("Test %v: Expected at most %v iterations. Got: %v", i, test.bound, iterations)
		}
		if observed != iterations {
			t.Errorf("Test %v: Unexpected number of observed iterations. Expected: %v. Got: %v", i, iterations, observed)
		}
	}
}

func TestCheckSafety(t *testing.T) {
	trans := counterTrans(t, fsm.Partition)
	m := trans.Manager()
	for _, test := range []struct {
		automaton *automata.Buchi
		violated  bool
	}{
		{reachesMax(m), true},
		{noInit(m), false},
		{automata.Counter(m), false},
	} {
		resp := NewChecker(trans, test.automaton, nil).CheckSafety()
		if resp.Violated() != test.violated {
			t.Errorf("Unexpected safety verdict. Expected violated: %v. Got: %v", test.violated, resp.Violated())
		}
		if !resp.Safety {
			t.Errorf("Expected a safety response")
		}
	}
}
