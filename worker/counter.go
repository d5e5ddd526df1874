package worker

import (
	"log"
	"sync/atomic"
)

// ActiveCounter counts the workers that are not waiting for a message plus the Data messages not yet consumed.
// The network is quiescent when it reaches zero.
type ActiveCounter struct {
	n atomic.Int64
}

func (c *ActiveCounter) Reset(n int) {
	c.n.Store(int64(n))
}

// Register pending work. Must be called before the work is made visible to another worker.
func (c *ActiveCounter) Inc() {
	c.n.Add(1)
}

// Withdraw the contribution of a worker about to wait for a message.
// Returns true if the network has become quiescent.
func (c *ActiveCounter) Done() bool {
	v := c.n.Add(-1)
	if v < 0 {
		log.Panicf("worker: active counter below zero: %v", v)
	}
	return v == 0
}

// Account for a Data message consumed by a worker that is already counted as active.
func (c *ActiveCounter) Consume() {
	v := c.n.Add(-1)
	if v <= 0 {
		log.Panicf("worker: active counter reached %v while a worker is active", v)
	}
}

func (c *ActiveCounter) Load() int {
	return int(c.n.Load())
}
