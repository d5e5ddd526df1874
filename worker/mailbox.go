// Package worker runs reachability fixpoints on a network of workers exchanging diagrams by message passing.
package worker

import (
	"fmt"
	"sync"

	"psmc/bdd"
)

type Kind int

const (
	Data Kind = iota
	Quit
)

func (k Kind) String() string {
	switch k {
	case Data:
		return "Data"
	case Quit:
		return "Quit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// A Message sent between workers.
//
// The Diagram of a Data message belongs to the receiver once sent.
type Message struct {
	Kind    Kind
	Diagram bdd.Diagram
	Src     int
}

func (m Message) String() string {
	if m.Kind == Quit {
		return fmt.Sprintf("Quit{src: %v}", m.Src)
	}
	return fmt.Sprintf("Data{src: %v, nodes: %v}", m.Src, m.Diagram.Size())
}

// A Mailbox is an unbounded FIFO queue of messages.
// Send never blocks, so that workers sending to each other can not deadlock.
type Mailbox struct {
	mu    sync.Mutex
	cond  *sync.Cond
	queue []Message
}

func NewMailbox() *Mailbox {
	mb := &Mailbox{}
	mb.cond = sync.NewCond(&mb.mu)
	return mb
}

func (mb *Mailbox) Send(msg Message) {
	mb.mu.Lock()
	mb.queue = append(mb.queue, msg)
	mb.mu.Unlock()
	mb.cond.Signal()
}

// Wait until a message is available and remove it from the mailbox
func (mb *Mailbox) Recv() Message {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for len(mb.queue) == 0 {
		mb.cond.Wait()
	}
	return mb.pop()
}

// Remove the first message of the mailbox if there is one
func (mb *Mailbox) TryRecv() (Message, bool) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if len(mb.queue) == 0 {
		return Message{}, false
	}
	return mb.pop(), true
}

func (mb *Mailbox) pop() Message {
	msg := mb.queue[0]
	mb.queue[0] = Message{}
	mb.queue = mb.queue[1:]
	return msg
}

// Number of pending messages
func (mb *Mailbox) Len() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.queue)
}
