package worker

import (
	"log"

	"psmc/automata"
	"psmc/bdd"
	"psmc/fsm"
	"psmc/partition"
)

// An automaton edge seen from one end
type route struct {
	state int
	label bdd.Bdd
}

// Counters of the work done by workers
type Stats struct {
	Images   int
	Sent     int
	Received int
	Batches  int
}

func (s *Stats) add(o Stats) {
	s.Images += o.Images
	s.Sent += o.Sent
	s.Received += o.Received
	s.Batches += o.Batches
}

// A Worker owns the system states of one automaton state inside one slice.
//
// Everything a Worker computes lives in its own Manager. Diagrams only leave it exported in messages.
type Worker struct {
	id    int
	state int
	slice int

	manager *bdd.Manager
	trans   *fsm.Trans
	layout  partition.Layout
	cube    bdd.Bdd
	// cubes of every slice of the layout
	cubes    []bdd.Bdd
	forward  []route
	backward []route

	mailbox *Mailbox
	peers   []*Mailbox
	counter *ActiveCounter
	stats   Stats
}

// Build worker id with its own copy of the transition relation and automaton labels.
// The Manager of trans and automaton is read during the call.
func newWorker(id int, trans *fsm.Trans, automaton *automata.Buchi, layout partition.Layout, peers []*Mailbox, counter *ActiveCounter) *Worker {
	m := trans.Manager().Fresh()
	state, slice := layout.Owner(id)
	w := &Worker{
		id:      id,
		state:   state,
		slice:   slice,
		manager: m,
		trans:   trans.CloneWithManager(m),
		layout:  layout,
		mailbox: peers[id],
		peers:   peers,
		counter: counter,
	}
	for _, s := range layout.Slices {
		w.cubes = append(w.cubes, s.Cube(m))
	}
	w.cube = w.cubes[slice]
	for _, e := range automaton.Forward[state] {
		w.forward = append(w.forward, route{state: e.State, label: m.Translocate(e.Label)})
	}
	for _, e := range automaton.Backward[state] {
		w.backward = append(w.backward, route{state: e.State, label: m.Translocate(e.Label)})
	}
	return w
}

func (w *Worker) Id() int {
	return w.id
}

func (w *Worker) Stats() Stats {
	return w.stats
}

// Prepare the worker for a new run.
// Only Quit messages may be left over from a previous run.
func (w *Worker) Reset() {
	for {
		msg, ok := w.mailbox.TryRecv()
		if !ok {
			break
		}
		if msg.Kind != Quit {
			log.Panicf("worker %v: unexpected message during reset: %v", w.id, msg)
		}
	}
	w.stats = Stats{}
}

// Run the fixpoint from the states of from, exported from another manager.
//
// Newly received states are added to the reach set once masked with the states already reached and with constraint.
// The states of from are only part of the result if they are reached again.
func (w *Worker) Run(dir fsm.Direction, from bdd.Diagram, constraint *bdd.Diagram) bdd.Diagram {
	m := w.manager
	reach := m.False()
	restrict := m.True()
	if constraint != nil {
		restrict = m.Import(*constraint)
	}

	start := m.Import(from)
	w.checkSlice(start)
	w.propagate(dir, start)
	for {
		if w.counter.Done() {
			w.quit()
			return m.Export(reach)
		}
		msg := w.mailbox.Recv()
		if msg.Kind == Quit {
			return m.Export(reach)
		}
		update := w.receive(msg)
		for {
			msg, ok := w.mailbox.TryRecv()
			if !ok {
				break
			}
			if msg.Kind == Quit {
				log.Panicf("worker %v: quit received while active", w.id)
			}
			w.counter.Consume()
			update = update.Or(w.receive(msg))
		}
		w.stats.Batches++

		update = update.Diff(reach).And(restrict)
		reach = reach.Or(update)
		w.propagate(dir, update)
	}
}

func (w *Worker) receive(msg Message) bdd.Bdd {
	data := w.manager.Import(msg.Diagram)
	w.checkSlice(data)
	w.stats.Received++
	return data
}

func (w *Worker) checkSlice(data bdd.Bdd) {
	if !data.Implies(w.cube) {
		log.Panicf("worker %v: received states outside of slice %v", w.id, w.layout.Slices[w.slice])
	}
}

// Send the image of states along the automaton edges.
//
// Labels constrain the system state the edge is taken from: going forward they are applied before the image,
// going backward after it.
func (w *Worker) propagate(dir fsm.Direction, states bdd.Bdd) {
	if states.IsFalse() {
		return
	}
	if dir == fsm.Forward {
		for _, r := range w.forward {
			src := states.And(r.label)
			if src.IsFalse() {
				continue
			}
			w.stats.Images++
			w.send(r.state, w.trans.PostImage(src))
		}
		return
	}
	image := w.trans.PreImage(states)
	w.stats.Images++
	if image.IsFalse() {
		return
	}
	for _, r := range w.backward {
		w.send(r.state, image.And(r.label))
	}
}

// Split states between the slices of the destination automaton state
func (w *Worker) send(state int, states bdd.Bdd) {
	for k, cube := range w.cubes {
		part := states.And(cube)
		if part.IsFalse() {
			continue
		}
		w.counter.Inc()
		w.peers[w.layout.Id(state, k)].Send(Message{Kind: Data, Diagram: w.manager.Export(part), Src: w.id})
		w.stats.Sent++
	}
}

func (w *Worker) quit() {
	for id, mb := range w.peers {
		if id != w.id {
			mb.Send(Message{Kind: Quit, Src: w.id})
		}
	}
}
