package worker

import (
	"sync"
	"testing"

	"psmc/automata"
	"psmc/bdd"
	"psmc/fsm"
	"psmc/partition"
)

func counterTrans(t *testing.T) *fsm.Trans {
	t.Helper()
	model := fsm.Counter(2)
	m, err := bdd.New(model.Varnum())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	trans, _, err := model.Build(m, fsm.Partition)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return trans
}

// The counter states whose values are listed
func values(m *bdd.Manager, vs ...int) bdd.Bdd {
	res := m.False()
	for _, v := range vs {
		res = res.Or(m.Cube([]bdd.Literal{
			{Var: fsm.CurrentVar(0), Positive: v&1 != 0},
			{Var: fsm.CurrentVar(1), Positive: v&2 != 0},
		}))
	}
	return res
}

func selfLoop(m *bdd.Manager) *automata.Buchi {
	b := automata.New(1)
	b.AddEdge(0, 0, m.True())
	b.AddInitState(0)
	b.AddAcceptingState(0)
	return b
}

func checkQuiescent(t *testing.T, n *Network) {
	t.Helper()
	if got := n.counter.Load(); got != 0 {
		t.Errorf("Active counter not zero after the run. Got: %v", got)
	}
	for _, w := range n.workers {
		if l := w.mailbox.Len(); l != 0 {
			t.Errorf("Worker %v has %v unconsumed messages", w.id, l)
		}
	}
}

func TestNetworkForwardCounter(t *testing.T) {
	trans := counterTrans(t)
	m := trans.Manager()
	automaton := automata.Counter(m)
	for _, sliceVars := range [][]int{{}, {fsm.CurrentVar(0)}, {fsm.CurrentVar(0), fsm.CurrentVar(1)}} {
		slices, err := partition.Slices(sliceVars)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		n := NewNetwork(trans, automaton, slices)
		from := []bdd.Bdd{trans.Init, m.False(), m.False()}
		reach := n.Run(fsm.Forward, from, nil)
		expected := []bdd.Bdd{values(m, 0, 2, 3), values(m, 1), m.False()}
		for state := range expected {
			if !reach[state].Equal(expected[state]) {
				t.Errorf("Test %v: Unexpected reach set of automaton state %v", sliceVars, state)
			}
		}
		checkQuiescent(t, n)
		if stats := n.Stats(); stats.Sent != stats.Received {
			t.Errorf("Test %v: Messages lost. Sent: %v. Received: %v", sliceVars, stats.Sent, stats.Received)
		}
	}
}

func TestNetworkBackwardConstraint(t *testing.T) {
	trans := counterTrans(t)
	m := trans.Manager()
	slices, _ := partition.Slices([]int{fsm.CurrentVar(1)})
	n := NewNetwork(trans, selfLoop(m), slices)

	reach := n.Run(fsm.Backward, []bdd.Bdd{values(m, 3)}, nil)
	if !reach[0].IsTrue() {
		t.Errorf("Every counter value reaches 3")
	}
	checkQuiescent(t, n)

	// the network is reused for a second run
	reach = n.Run(fsm.Backward, []bdd.Bdd{values(m, 3)}, []bdd.Bdd{values(m, 0, 1, 2)})
	if !reach[0].Equal(values(m, 0, 1, 2)) {
		t.Errorf("Unexpected constrained backward reach set")
	}
	checkQuiescent(t, n)
}

func TestNetworkEmpty(t *testing.T) {
	trans := counterTrans(t)
	m := trans.Manager()
	n := NewNetwork(trans, automata.Counter(m), nil)
	reach := n.Run(fsm.Forward, []bdd.Bdd{m.False(), m.False(), m.False()}, nil)
	for state, r := range reach {
		if !r.IsFalse() {
			t.Errorf("Expected an empty reach set for state %v", state)
		}
	}
	checkQuiescent(t, n)
	if stats := n.Stats(); stats.Sent != 0 || stats.Images != 0 {
		t.Errorf("Expected no work. Got: %+v", stats)
	}
}

func TestResetRejectsData(t *testing.T) {
	trans := counterTrans(t)
	n := NewNetwork(trans, selfLoop(trans.Manager()), nil)
	n.workers[0].mailbox.Send(Message{Kind: Quit})
	n.Reset()
	if n.counter.Load() != 1 {
		t.Errorf("Unexpected counter after reset. Expected: 1. Got: %v", n.counter.Load())
	}
	n.workers[0].mailbox.Send(Message{Kind: Data, Diagram: trans.Manager().Export(trans.Init)})
	defer func() {
		if recover() == nil {
			t.Errorf("Expected a Data message during reset to panic")
		}
	}()
	n.Reset()
}

func TestActiveCounter(t *testing.T) {
	c := &ActiveCounter{}
	c.Reset(2)
	c.Inc()
	c.Consume()
	if c.Done() {
		t.Errorf("Counter should not be zero")
	}
	if !c.Done() {
		t.Errorf("Counter should be zero")
	}
	defer func() {
		if recover() == nil {
			t.Errorf("Expected the counter to panic below zero")
		}
	}()
	c.Done()
}

func TestActiveCounterConcurrent(t *testing.T) {
	c := &ActiveCounter{}
	workers := 8
	c.Reset(workers)
	zeros := make(chan bool, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < 100; k++ {
				c.Inc()
				c.Consume()
			}
			zeros <- c.Done()
		}()
	}
	wg.Wait()
	close(zeros)
	count := 0
	for zero := range zeros {
		if zero {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected exactly one worker to observe quiescence. Got: %v", count)
	}
}

func TestMailbox(t *testing.T) {
	mb := NewMailbox()
	if _, ok := mb.TryRecv(); ok {
		t.Errorf("Expected an empty mailbox")
	}
	done := make(chan Message)
	go func() {
		done <- mb.Recv()
	}()
	for i := 0; i < 3; i++ {
		mb.Send(Message{Kind: Data, Src: i})
	}
	if msg := <-done; msg.Src != 0 {
		t.Errorf("Unexpected message. Expected: %v. Got: %v", 0, msg.Src)
	}
	for i := 1; i < 3; i++ {
		msg, ok := mb.TryRecv()
		if !ok || msg.Src != i {
			t.Errorf("Messages out of order. Expected: %v. Got: %v", i, msg.Src)
		}
	}
	if mb.Len() != 0 {
		t.Errorf("Expected an empty mailbox. Got: %v messages", mb.Len())
	}
}
