package partition

import (
	"errors"
	"math/big"
	"testing"

	"psmc/bdd"
)

func TestSlicesDisjointAndExhaustive(t *testing.T) {
	m, err := bdd.New(6)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	tests := []struct {
		vars     []int
		expected int
	}{
		{[]int{}, 1},
		{[]int{2}, 2},
		{[]int{0, 4}, 4},
		{[]int{0, 2, 4}, 8},
	}
	for i, test := range tests {
		slices, err := Slices(test.vars)
		if err != nil {
			t.Errorf("Test %v: Unexpected error: %v", i, err)
			continue
		}
		if len(slices) != test.expected {
			t.Errorf("Test %v: Unexpected number of slices. Expected: %v. Got: %v", i, test.expected, len(slices))
		}
		union := m.False()
		total := big.NewInt(0)
		for a := range slices {
			if len(slices[a]) != len(test.vars) {
				t.Errorf("Test %v: Slice %v does not fix every variable", i, slices[a])
			}
			for b := a + 1; b < len(slices); b++ {
				if !slices[a].Cube(m).And(slices[b].Cube(m)).IsFalse() {
					t.Errorf("Test %v: Slices %v and %v overlap", i, slices[a], slices[b])
				}
			}
			union = union.Or(slices[a].Cube(m))
			total.Add(total, m.SatCount(slices[a].Cube(m)))
		}
		if !union.IsTrue() {
			t.Errorf("Test %v: Slices do not cover the state space", i)
		}
		if total.Cmp(m.SatCount(m.True())) != 0 {
			t.Errorf("Test %v: Unexpected total size. Expected: %v. Got: %v", i, m.SatCount(m.True()), total)
		}
	}
}

func TestSlicesErrors(t *testing.T) {
	for i, vars := range [][]int{{1, 1}, {-1}, {0, 3, 0}} {
		if _, err := Slices(vars); !errors.Is(err, ErrSliceVars) {
			t.Errorf("Test %v: Expected ErrSliceVars. Got: %v", i, err)
		}
	}
}

func TestLayout(t *testing.T) {
	slices, _ := Slices([]int{0, 2})
	l := NewLayout(3, slices)
	if l.Size() != 12 {
		t.Errorf("Unexpected size. Expected: 12. Got: %v", l.Size())
	}
	seen := map[int]bool{}
	for state := 0; state < 3; state++ {
		for slice := 0; slice < l.NumSlices(); slice++ {
			id := l.Id(state, slice)
			if seen[id] {
				t.Errorf("Id %v assigned twice", id)
			}
			seen[id] = true
			if s, sl := l.Owner(id); s != state || sl != slice {
				t.Errorf("Unexpected owner of %v. Expected: (%v, %v). Got: (%v, %v)", id, state, slice, s, sl)
			}
		}
	}
	if l := NewLayout(2, nil); l.Size() != 2 || l.NumSlices() != 1 {
		t.Errorf("Expected a layout without slices to have one worker per state")
	}
}
