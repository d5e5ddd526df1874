// Package checking decides Büchi emptiness of the product of a transition relation with an automaton
// encoding the negation of a property.
package checking

import (
	"bytes"
	"fmt"
	"log"
	"text/tabwriter"
	"time"

	"psmc/automata"
	"psmc/bdd"
	"psmc/fsm"
	"psmc/reach"
)

// CheckerResponse is a response returned by a Checker
//
// Contains the result of checking the system.
type CheckerResponse interface {
	// Create a response.
	//
	// Returns a boolean that is true if the property holds, false otherwise.
	// Returns a string describing the response.
	Response() (bool, string)

	// Export the accepting automaton states that witness a violation.
	//
	// Returns an empty slice if the property holds.
	Export() []int
}

// Time and work spent by a check
type Statistic struct {
	Strategy       string
	PostReachable  time.Duration
	FairCycle      time.Duration
	FairIterations int
	Reach          reach.Stats
}

type Response struct {
	Holds   bool          // True if no accepting state is both reachable and fair
	Safety  bool          // True if the response comes from a safety check
	Elapsed time.Duration // Time spent checking
	// Accepting automaton states with reachable fair states. nil if Holds is true
	Violating []int
	// Number of system states per violating automaton state
	Witnesses []string
	Statistic Statistic
}

// Violated reports whether a violation of the property was found
func (r *Response) Violated() bool {
	return !r.Holds
}

// Generate a response
// Returns two parameters, result, and description.
// Result is true if the property holds, false otherwise.
// If result is false the description lists the accepting automaton states reached by a fair cycle
func (r *Response) Response() (bool, string) {
	if r.Holds {
		return r.Holds, fmt.Sprintf("Property holds. Checked in %v", r.Elapsed)
	}
	var buffer bytes.Buffer
	wrt := tabwriter.NewWriter(&buffer, 4, 4, 0, ' ', 0)
	kind := "fair cycle"
	if r.Safety {
		kind = "reachable"
	}
	out := fmt.Sprintf("Property violated. Checked in %v. Accepting states (%v): \n", r.Elapsed, kind)
	for i, state := range r.Violating {
		fmt.Fprintf(wrt, "-> state %v\t%v system states\n", state, r.Witnesses[i])
	}
	wrt.Flush()
	out += buffer.String()
	return r.Holds, out
}

func (r *Response) Export() []int {
	if r.Violating == nil {
		return []int{}
	}
	return append([]int(nil), r.Violating...)
}

// The Checker verifies that the language of the product of a transition relation and a Büchi automaton is empty.
type Checker struct {
	trans     *fsm.Trans
	automaton *automata.Buchi
	strategy  reach.Strategy
	verbose   bool

	// Called with the fair states after every iteration of FairStates, when not nil
	Observe func(iteration int, fair []bdd.Bdd)
}

// Create a checker computing its fixpoints with strategy, sequentially if strategy is nil
func NewChecker(trans *fsm.Trans, automaton *automata.Buchi, strategy reach.Strategy) *Checker {
	if strategy == nil {
		strategy = reach.NewSequential(trans, automaton)
	}
	return &Checker{
		trans:     trans,
		automaton: automaton,
		strategy:  strategy,
	}
}

func (c *Checker) SetVerbose(verbose bool) {
	c.verbose = verbose
}

func (c *Checker) Strategy() reach.Strategy {
	return c.strategy
}

// The initial states of the system at every initial automaton state
func (c *Checker) initVector() []bdd.Bdd {
	v := falses(c.trans.Manager(), c.automaton.NumState())
	for _, s := range c.automaton.InitStates() {
		v[s] = c.trans.Init
	}
	return v
}

// Check that no reachable accepting state lies on a fair cycle.
func (c *Checker) Check() *Response {
	start := time.Now()
	stat := Statistic{Strategy: c.strategy.Name()}

	init := c.initVector()
	forward := c.strategy.Reachable(fsm.Forward, init, nil)
	for i := range forward {
		forward[i] = forward[i].Or(init[i])
	}
	stat.PostReachable = time.Since(start)
	if c.verbose {
		log.Printf("checking: forward reachability done in %v\n", stat.PostReachable)
	}

	fairStart := time.Now()
	fair, iterations := c.FairStates(forward)
	stat.FairCycle = time.Since(fairStart)
	stat.FairIterations = iterations
	if c.verbose {
		log.Printf("checking: fair states found in %v after %d iterations\n", stat.FairCycle, iterations)
	}

	resp := c.verdict(forward, fair)
	stat.Reach = c.strategy.Stats()
	resp.Statistic = stat
	resp.Elapsed = time.Since(start)
	return resp
}

// Collect the accepting states where both sets intersect
func (c *Checker) verdict(sets ...[]bdd.Bdd) *Response {
	resp := &Response{Holds: true}
	for _, a := range c.automaton.AcceptingStates() {
		states := c.trans.Manager().True()
		for _, set := range sets {
			states = states.And(set[a])
		}
		if states.IsFalse() {
			continue
		}
		resp.Holds = false
		resp.Violating = append(resp.Violating, a)
		resp.Witnesses = append(resp.Witnesses, c.trans.StateCount(states).String())
	}
	return resp
}

func falses(m *bdd.Manager, n int) []bdd.Bdd {
	v := make([]bdd.Bdd, n)
	for i := range v {
		v[i] = m.False()
	}
	return v
}
