package reach

import (
	"log"
	"runtime"
	"sync"

	"psmc/automata"
	"psmc/bdd"
	"psmc/fsm"
)

// An executor computes images in its own Manager
type executor struct {
	trans *fsm.Trans
}

type imageTask struct {
	state  int
	input  bdd.Diagram
	output bdd.Diagram
}

// ForkJoin runs the fixpoint on the calling goroutine and fans out the image computations of every iteration
// to a pool of executors, waiting for all of them before the next iteration.
//
// Executors own a copy of the transition relation in their own Manager: diagrams go to them and back exported.
type ForkJoin struct {
	trans     *fsm.Trans
	automaton *automata.Buchi
	executors []*executor
	stats     Stats

	Verbose bool
}

// Create a ForkJoin strategy with numExecutors executors, GOMAXPROCS if numExecutors is not positive.
func NewForkJoin(trans *fsm.Trans, automaton *automata.Buchi, numExecutors int) *ForkJoin {
	if numExecutors <= 0 {
		numExecutors = runtime.GOMAXPROCS(0)
	}
	fj := &ForkJoin{trans: trans, automaton: automaton}
	for i := 0; i < numExecutors; i++ {
		fj.executors = append(fj.executors, &executor{trans: trans.CloneWithManager(trans.Manager().Fresh())})
	}
	return fj
}

func (fj *ForkJoin) Name() string {
	return ForkJoinName
}

func (fj *ForkJoin) Stats() Stats {
	return fj.stats
}

// Compute the images of sets, indexed by automaton state, in parallel. False sets are skipped.
func (fj *ForkJoin) images(dir fsm.Direction, sets []bdd.Bdd) []bdd.Bdd {
	m := fj.trans.Manager()
	tasks := make(chan *imageTask, len(sets))
	pending := []*imageTask{}
	for state, set := range sets {
		if set.IsFalse() {
			continue
		}
		task := &imageTask{state: state, input: m.Export(set)}
		pending = append(pending, task)
		tasks <- task
	}
	close(tasks)

	var wg sync.WaitGroup
	for _, e := range fj.executors {
		wg.Add(1)
		go func(e *executor) {
			defer wg.Done()
			em := e.trans.Manager()
			for task := range tasks {
				task.output = em.Export(e.trans.Image(dir, em.Import(task.input)))
			}
		}(e)
	}
	wg.Wait()

	res := falses(m, len(sets))
	for _, task := range pending {
		res[task.state] = m.Import(task.output)
	}
	fj.stats.Images += len(pending)
	return res
}

func (fj *ForkJoin) Reachable(dir fsm.Direction, from []bdd.Bdd, constraint []bdd.Bdd) []bdd.Bdd {
	m := fj.trans.Manager()
	fj.stats.Runs++
	reach := falses(m, len(from))
	frontier := from
	for iteration := 1; !allFalse(frontier); iteration++ {
		fj.stats.Iterations++
		if fj.Verbose {
			log.Printf("reach: fork-join %v iteration %d\n", dir, iteration)
		}
		next := falses(m, len(from))
		if dir == fsm.Forward {
			sources := falses(m, len(from))
			for i, f := range frontier {
				if f.IsFalse() {
					continue
				}
				for _, e := range fj.automaton.Forward[i] {
					sources[e.State] = sources[e.State].Or(f.And(e.Label))
				}
			}
			for j, image := range fj.images(dir, sources) {
				if constraint != nil {
					image = image.And(constraint[j])
				}
				next[j] = image.Diff(reach[j])
				reach[j] = reach[j].Or(next[j])
			}
		} else {
			for i, image := range fj.images(dir, frontier) {
				if image.IsFalse() {
					continue
				}
				for _, e := range fj.automaton.Backward[i] {
					update := image.And(e.Label)
					if constraint != nil {
						update = update.And(constraint[e.State])
					}
					update = update.Diff(reach[e.State])
					reach[e.State] = reach[e.State].Or(update)
					next[e.State] = next[e.State].Or(update)
				}
			}
		}
		frontier = next
	}
	return reach
}
