// Package expr implements the boolean expression language used by system models and automaton guards.
package expr

import (
	"fmt"
	"strings"
)

type Op int

const (
	Ident Op = iota
	Const
	Not
	And
	Or
	Xor
	Imp
	Iff
	Next
)

func (op Op) String() string {
	switch op {
	case Ident:
		return "Ident"
	case Const:
		return "Const"
	case Not:
		return "Not"
	case And:
		return "And"
	case Or:
		return "Or"
	case Xor:
		return "Xor"
	case Imp:
		return "Imp"
	case Iff:
		return "Iff"
	case Next:
		return "Next"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

// An Expr is a node of a boolean expression tree.
//
// Ident and Next nodes carry a Name, Const nodes a Value, the other nodes their operands in Args.
type Expr struct {
	Op    Op
	Name  string
	Value bool
	Args  []*Expr
}

func Var(name string) *Expr {
	return &Expr{Op: Ident, Name: name}
}

func Bool(v bool) *Expr {
	return &Expr{Op: Const, Value: v}
}

func NotOf(e *Expr) *Expr {
	return &Expr{Op: Not, Args: []*Expr{e}}
}

func AndOf(a, b *Expr) *Expr {
	return &Expr{Op: And, Args: []*Expr{a, b}}
}

func OrOf(a, b *Expr) *Expr {
	return &Expr{Op: Or, Args: []*Expr{a, b}}
}

func NextOf(name string) *Expr {
	return &Expr{Op: Next, Name: name}
}

// HasNext reports whether e refers to the next state value of a variable
func (e *Expr) HasNext() bool {
	if e.Op == Next {
		return true
	}
	for _, arg := range e.Args {
		if arg.HasNext() {
			return true
		}
	}
	return false
}

// Identifiers returns the names e refers to, in order of first occurrence
func (e *Expr) Identifiers() []string {
	seen := map[string]bool{}
	names := []string{}
	var walk func(*Expr)
	walk = func(n *Expr) {
		if n.Op == Ident || n.Op == Next {
			if !seen[n.Name] {
				seen[n.Name] = true
				names = append(names, n.Name)
			}
		}
		for _, arg := range n.Args {
			walk(arg)
		}
	}
	walk(e)
	return names
}

var infix = map[Op]string{
	And: " & ",
	Or:  " | ",
	Xor: " ^ ",
	Imp: " -> ",
	Iff: " <-> ",
}

// String renders e in the syntax accepted by Parse
func (e *Expr) String() string {
	switch e.Op {
	case Ident:
		return e.Name
	case Const:
		if e.Value {
			return "TRUE"
		}
		return "FALSE"
	case Next:
		return "next(" + e.Name + ")"
	case Not:
		return "!" + e.Args[0].atom()
	default:
		parts := make([]string, len(e.Args))
		for i, arg := range e.Args {
			parts[i] = arg.atom()
		}
		return strings.Join(parts, infix[e.Op])
	}
}

// LTL renders e in the propositional syntax of LTL to Büchi translators.
func (e *Expr) LTL() string {
	switch e.Op {
	case Ident:
		return e.Name
	case Const:
		if e.Value {
			return "true"
		}
		return "false"
	case Next:
		return "(X " + e.Name + ")"
	case Not:
		return "!" + e.Args[0].LTL()
	case And:
		return "(" + e.Args[0].LTL() + " && " + e.Args[1].LTL() + ")"
	case Or:
		return "(" + e.Args[0].LTL() + " || " + e.Args[1].LTL() + ")"
	case Imp:
		return "(" + e.Args[0].LTL() + " -> " + e.Args[1].LTL() + ")"
	case Iff:
		return "(" + e.Args[0].LTL() + " <-> " + e.Args[1].LTL() + ")"
	case Xor:
		// ltl2ba has no exclusive or
		return "!(" + e.Args[0].LTL() + " <-> " + e.Args[1].LTL() + ")"
	default:
		panic(fmt.Sprintf("expr: unknown operator %v", e.Op))
	}
}

func (e *Expr) atom() string {
	switch e.Op {
	case Ident, Const, Next, Not:
		return e.String()
	}
	return "(" + e.String() + ")"
}
