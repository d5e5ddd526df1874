package automata

import (
	"errors"
	"testing"

	"golang.org/x/exp/slices"

	"psmc/bdd"
	"psmc/expr"
)

func newScope(t *testing.T) *expr.Scope {
	t.Helper()
	m, err := bdd.New(4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s := expr.NewScope(m)
	s.Declare("p", 0, 1)
	s.Declare("q", 2, 3)
	return s
}

// Every forward edge must be mirrored in the backward lists
func checkMirrored(t *testing.T, b *Buchi) {
	t.Helper()
	count := 0
	for from, edges := range b.Forward {
		for _, e := range edges {
			found := slices.IndexFunc(b.Backward[e.State], func(back Edge) bool {
				return back.State == from && back.Label.Equal(e.Label)
			})
			if found < 0 {
				t.Errorf("Edge %v -> %v has no backward mirror", from, e.State)
			}
			count++
		}
	}
	backward := 0
	for _, edges := range b.Backward {
		backward += len(edges)
	}
	if count != backward {
		t.Errorf("Unexpected number of backward edges. Expected: %v. Got: %v", count, backward)
	}
}

func TestCounter(t *testing.T) {
	m, _ := bdd.New(4)
	b := Counter(m)
	if b.NumState() != 3 {
		t.Errorf("Unexpected number of states. Expected: 3. Got: %v", b.NumState())
	}
	if b.NumEdges() != 6 {
		t.Errorf("Unexpected number of edges. Expected: 6. Got: %v", b.NumEdges())
	}
	if !slices.Equal(b.InitStates(), []int{0}) || !slices.Equal(b.AcceptingStates(), []int{2}) {
		t.Errorf("Unexpected initial or accepting states: %v", b)
	}
	checkMirrored(t, b)
}

func TestAddEdgeOutOfRange(t *testing.T) {
	m, _ := bdd.New(2)
	b := New(2)
	defer func() {
		if recover() == nil {
			t.Errorf("Expected an edge to a missing state to panic")
		}
	}()
	b.AddEdge(0, 2, m.True())
}

func TestTranslocate(t *testing.T) {
	m, _ := bdd.New(4)
	b := Counter(m)
	other := m.Fresh()
	moved := b.Translocate(other)
	checkMirrored(t, moved)
	for from, edges := range moved.Forward {
		for k, e := range edges {
			if e.Label.Manager() != other {
				t.Errorf("Label of %v -> %v not moved", from, e.State)
			}
			if !m.Translocate(e.Label).Equal(b.Forward[from][k].Label) {
				t.Errorf("Label of %v -> %v changed", from, e.State)
			}
		}
	}
	moved.AddAcceptingState(0)
	if b.IsAccepting(0) {
		t.Errorf("Translocated automaton shares its accepting set with the original")
	}
}

const ltl2baOutput = `never { /* !([]<> p) */
T0_init:
	if
	:: (1) -> goto T0_init
	:: (!p) -> goto accept_S2
	fi;
accept_S2:
	if
	:: (!p) -> goto accept_S2
	fi;
}
`

const spotOutput = `never { /* F(p & q) */
T0_init:
  if
  :: (p && q) -> goto accept_all
  :: (!p) || (!q) -> goto T0_init
  fi;
accept_all:
  skip
}
`

const emptyOutput = `never { /* false */
T0_init:
	false;
}
`

func TestParseNeverClaim(t *testing.T) {
	s := newScope(t)
	m := s.Manager()
	p, q := m.IthVar(0), m.IthVar(2)

	b, err := ParseNeverClaim(ltl2baOutput, s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.NumState() != 2 || b.NumEdges() != 3 {
		t.Errorf("Unexpected automaton: %v", b)
	}
	if !slices.Equal(b.InitStates(), []int{0}) || !slices.Equal(b.AcceptingStates(), []int{1}) {
		t.Errorf("Unexpected initial or accepting states: %v", b)
	}
	if !b.Forward[0][0].Label.IsTrue() || !b.Forward[0][1].Label.Equal(p.Not()) || b.Forward[0][1].State != 1 {
		t.Errorf("Unexpected edges of T0_init")
	}
	checkMirrored(t, b)

	b, err = ParseNeverClaim(spotOutput, s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !b.Forward[0][0].Label.Equal(p.And(q)) || !b.Forward[0][1].Label.Equal(p.And(q).Not()) {
		t.Errorf("Unexpected guards of T0_init")
	}
	if len(b.Forward[1]) != 1 || b.Forward[1][0].State != 1 || !b.Forward[1][0].Label.IsTrue() {
		t.Errorf("Expected skip to be a true self loop")
	}

	b, err = ParseNeverClaim(emptyOutput, s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.NumState() != 1 || b.NumEdges() != 0 || b.Accepting.Cardinality() != 0 {
		t.Errorf("Unexpected automaton for false: %v", b)
	}
}

func TestParseNeverClaimErrors(t *testing.T) {
	s := newScope(t)
	inputs := []string{
		"",
		"T0_init:\n\tskip\n",
		"never {\n}\n",
		"never {\nT0_init:\n\t:: (p) -> goto nowhere\n}\n",
		"never {\nT0_init:\n\t:: (r) -> goto T0_init\n}\n",
		"never {\nT0_init:\n\tbogus\n}\n",
		"never {\n\tskip\nT0_init:\n}\n",
	}
	for i, input := range inputs {
		if _, err := ParseNeverClaim(input, s); !errors.Is(err, ErrNeverClaim) {
			t.Errorf("Test %v: Expected ErrNeverClaim. Got: %v", i, err)
		}
	}
}
