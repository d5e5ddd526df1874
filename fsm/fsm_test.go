package fsm

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"psmc/bdd"
	"psmc/expr"
)

func buildCounter(t *testing.T, bits int, method TransMethod) (*Trans, *expr.Scope) {
	t.Helper()
	model := Counter(bits)
	m, err := bdd.New(model.Varnum())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	trans, scope, err := model.Build(m, method)
	if err != nil {
		t.Fatalf("Unexpected error building the counter: %v", err)
	}
	return trans, scope
}

// The state of the counter with value v
func counterValue(t *testing.T, scope *expr.Scope, bits int, v int) bdd.Bdd {
	t.Helper()
	lits := []bdd.Literal{}
	for i := 0; i < bits; i++ {
		lits = append(lits, bdd.Literal{Var: CurrentVar(i), Positive: v&(1<<i) != 0})
	}
	return scope.Manager().Cube(lits)
}

func TestCounterImages(t *testing.T) {
	for _, method := range []TransMethod{Monolithic, Partition} {
		bits := 3
		trans, scope := buildCounter(t, bits, method)
		for v := 0; v < 1<<bits; v++ {
			state := counterValue(t, scope, bits, v)
			succ := counterValue(t, scope, bits, (v+1)%(1<<bits))
			if got := trans.PostImage(state); !got.Equal(succ) {
				t.Errorf("Test %v: Unexpected successor of %v", method, v)
			}
			if got := trans.PreImage(succ); !got.Equal(state) {
				t.Errorf("Test %v: Unexpected predecessor of %v", method, (v+1)%(1<<bits))
			}
		}
		if !trans.Init.Equal(counterValue(t, scope, bits, 0)) {
			t.Errorf("Test %v: Unexpected initial states", method)
		}
	}
}

func TestImageOfFalse(t *testing.T) {
	trans, _ := buildCounter(t, 2, Partition)
	m := trans.Manager()
	if !trans.PostImage(m.False()).IsFalse() || !trans.PreImage(m.False()).IsFalse() {
		t.Errorf("Image of the empty set should be empty")
	}
	if !trans.PostImage(m.True()).IsTrue() {
		t.Errorf("Every counter state has a predecessor")
	}
}

func TestStateCount(t *testing.T) {
	trans, scope := buildCounter(t, 3, Partition)
	m := trans.Manager()
	tests := []struct {
		set      bdd.Bdd
		expected int64
	}{
		{m.True(), 8},
		{m.False(), 0},
		{counterValue(t, scope, 3, 5), 1},
		{m.IthVar(CurrentVar(0)), 4},
	}
	for i, test := range tests {
		if got := trans.StateCount(test.set); got.Cmp(big.NewInt(test.expected)) != 0 {
			t.Errorf("Test %v: Unexpected state count. Expected: %v. Got: %v", i, test.expected, got)
		}
	}
}

func TestCloneWithManager(t *testing.T) {
	trans, scope := buildCounter(t, 2, Partition)
	other := trans.Manager().Fresh()
	clone := trans.CloneWithManager(other)
	if clone.Manager() != other {
		t.Fatalf("Clone is not bound to the new manager")
	}
	if clone.NumPartitions() != trans.NumPartitions() {
		t.Errorf("Unexpected number of partitions. Expected: %v. Got: %v", trans.NumPartitions(), clone.NumPartitions())
	}
	for v := 0; v < 4; v++ {
		state := counterValue(t, scope, 2, v)
		expected := trans.PostImage(state)
		got := trans.Manager().Translocate(clone.PostImage(other.Translocate(state)))
		if !got.Equal(expected) {
			t.Errorf("Test %v: Clone computes a different successor", v)
		}
	}
}

func TestLoadModel(t *testing.T) {
	src := `{
		"vars": ["a", "b"],
		"init": "!a & !b",
		"next": {"a": "b"},
		"trans": ["next(b) -> a"],
		"defines": {"both": "a & b"},
		"fairness": ["both"],
		"ltlspec": "[]<> both"
	}`
	model, err := LoadModel(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	m, err := bdd.New(model.Varnum())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	trans, scope, err := model.Build(m, Partition)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if trans.NumPartitions() != 2 {
		t.Errorf("Unexpected number of partitions. Expected: 2. Got: %v", trans.NumPartitions())
	}
	// From a=0,b=1: next(a)=1, next(b) only if a, so b'=0
	a, b := m.IthVar(CurrentVar(0)), m.IthVar(CurrentVar(1))
	if got := trans.PostImage(a.Not().And(b)); !got.Equal(a.And(b.Not())) {
		t.Errorf("Unexpected successors of !a & b")
	}
	both, err := scope.CompileString("both")
	if err != nil || !both.Equal(a.And(b)) {
		t.Errorf("Define both was not compiled: %v", err)
	}
	fairness, err := model.FairnessExprs()
	if err != nil || len(fairness) != 1 {
		t.Errorf("Unexpected fairness constraints: %v %v", fairness, err)
	}
	if _, err := model.TransExprs([]int{1}); !errors.Is(err, ErrModel) {
		t.Errorf("Expected an error for a missing trans constraint. Got: %v", err)
	}
}

func TestInvalidModels(t *testing.T) {
	sources := []string{
		`{"vars": []}`,
		`{"vars": ["a", "a"]}`,
		`{"vars": ["a"], "next": {"b": "a"}}`,
		`{"vars": ["a"], "unknown": 1}`,
		`{"vars": ["a"`,
	}
	for i, src := range sources {
		if _, err := LoadModel(strings.NewReader(src)); !errors.Is(err, ErrModel) {
			t.Errorf("Test %v: Expected ErrModel. Got: %v", i, err)
		}
	}

	model := &Model{Vars: []string{"a"}, Init: "next(a)"}
	m, _ := bdd.New(model.Varnum())
	if _, _, err := model.Build(m, Partition); !errors.Is(err, ErrModel) {
		t.Errorf("Expected init with next to be rejected. Got: %v", err)
	}
	model = &Model{Vars: []string{"a"}, Next: map[string]string{"a": "c"}}
	if _, _, err := model.Build(m, Partition); !errors.Is(err, expr.ErrUnknownIdentifier) && !errors.Is(err, ErrModel) {
		t.Errorf("Expected unknown identifier to be rejected. Got: %v", err)
	}
}
