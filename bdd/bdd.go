// Package bdd provides reduced ordered binary decision diagrams on top of rudd.
//
// Every Bdd is bound to the Manager that created it. Combining values from two different managers panics,
// use Manager.Translocate to move a value across managers.
package bdd

import (
	"github.com/dalzilio/rudd"
)

// A Bdd is a handle on a boolean function stored in a Manager.
//
// The zero value is not a valid Bdd.
type Bdd struct {
	m *Manager
	n rudd.Node
}

// The Manager owning b
func (b Bdd) Manager() *Manager {
	return b.m
}

func (b Bdd) And(o Bdd) Bdd {
	return b.m.wrap(b.m.b.And(b.n, b.m.own(o)))
}

func (b Bdd) Or(o Bdd) Bdd {
	return b.m.wrap(b.m.b.Or(b.n, b.m.own(o)))
}

func (b Bdd) Not() Bdd {
	return b.m.wrap(b.m.b.Not(b.n))
}

func (b Bdd) Xor(o Bdd) Bdd {
	return b.m.wrap(b.m.b.Apply(b.n, b.m.own(o), rudd.OPxor))
}

func (b Bdd) Imp(o Bdd) Bdd {
	return b.m.wrap(b.m.b.Apply(b.n, b.m.own(o), rudd.OPimp))
}

func (b Bdd) Iff(o Bdd) Bdd {
	return b.m.wrap(b.m.b.Apply(b.n, b.m.own(o), rudd.OPbiimp))
}

// b & !o
func (b Bdd) Diff(o Bdd) Bdd {
	// rudd's OPdiff shortcut returns o when b is false
	return b.And(o.Not())
}

// Equal reports whether b and o represent the same function.
// Both must belong to the same Manager.
func (b Bdd) Equal(o Bdd) bool {
	return b.m.b.Equal(b.n, b.m.own(o))
}

// IsConstant reports whether b is the constant function v
func (b Bdd) IsConstant(v bool) bool {
	return b.m.b.Equal(b.n, b.m.b.From(v))
}

func (b Bdd) IsFalse() bool {
	return b.IsConstant(false)
}

func (b Bdd) IsTrue() bool {
	return b.IsConstant(true)
}

// Implies reports whether every assignment satisfying b also satisfies o
func (b Bdd) Implies(o Bdd) bool {
	return b.Diff(o).IsFalse()
}
