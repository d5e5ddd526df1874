package expr

import (
	"errors"
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"psmc/bdd"
)

var (
	ErrUnknownIdentifier = errors.New("expr: unknown identifier")
	ErrRedeclared        = errors.New("expr: identifier declared twice")
	ErrRecursiveDefine   = errors.New("expr: recursive define")
)

type variable struct {
	current int
	next    int
}

// A Scope resolves the identifiers of expressions to diagram variables and defines.
type Scope struct {
	manager *bdd.Manager
	vars    map[string]variable
	defines map[string]*Expr
}

func NewScope(m *bdd.Manager) *Scope {
	return &Scope{
		manager: m,
		vars:    map[string]variable{},
		defines: map[string]*Expr{},
	}
}

func (s *Scope) Manager() *bdd.Manager {
	return s.manager
}

// Declare a boolean state variable stored in the diagram variables current and next.
func (s *Scope) Declare(name string, current, next int) error {
	if s.declared(name) {
		return fmt.Errorf("%w: %v", ErrRedeclared, name)
	}
	s.vars[name] = variable{current: current, next: next}
	return nil
}

// Define name as an abbreviation of e
func (s *Scope) Define(name string, e *Expr) error {
	if s.declared(name) {
		return fmt.Errorf("%w: %v", ErrRedeclared, name)
	}
	s.defines[name] = e
	return nil
}

func (s *Scope) declared(name string) bool {
	_, isVar := s.vars[name]
	_, isDefine := s.defines[name]
	return isVar || isDefine
}

// The diagram variable holding the current value of name
func (s *Scope) Current(name string) (int, bool) {
	v, ok := s.vars[name]
	return v.current, ok
}

// The diagram variable holding the next value of name
func (s *Scope) Next(name string) (int, bool) {
	v, ok := s.vars[name]
	return v.next, ok
}

// The declared variables, sorted by name
func (s *Scope) Vars() []string {
	names := maps.Keys(s.vars)
	slices.Sort(names)
	return names
}

// Compile e into a diagram of the manager of the scope.
func (s *Scope) Compile(e *Expr) (bdd.Bdd, error) {
	return s.compile(e, map[string]bool{})
}

func (s *Scope) compile(e *Expr, expanding map[string]bool) (bdd.Bdd, error) {
	m := s.manager
	switch e.Op {
	case Const:
		return m.Constant(e.Value), nil
	case Ident:
		if v, ok := s.vars[e.Name]; ok {
			return m.IthVar(v.current), nil
		}
		if def, ok := s.defines[e.Name]; ok {
			if expanding[e.Name] {
				return bdd.Bdd{}, fmt.Errorf("%w: %v", ErrRecursiveDefine, e.Name)
			}
			expanding[e.Name] = true
			defer delete(expanding, e.Name)
			return s.compile(def, expanding)
		}
		return bdd.Bdd{}, fmt.Errorf("%w: %v", ErrUnknownIdentifier, e.Name)
	case Next:
		if v, ok := s.vars[e.Name]; ok {
			return m.IthVar(v.next), nil
		}
		return bdd.Bdd{}, fmt.Errorf("%w: next(%v)", ErrUnknownIdentifier, e.Name)
	}

	args := make([]bdd.Bdd, len(e.Args))
	for i, arg := range e.Args {
		b, err := s.compile(arg, expanding)
		if err != nil {
			return bdd.Bdd{}, err
		}
		args[i] = b
	}
	switch e.Op {
	case Not:
		return args[0].Not(), nil
	case And:
		return args[0].And(args[1]), nil
	case Or:
		return args[0].Or(args[1]), nil
	case Xor:
		return args[0].Xor(args[1]), nil
	case Imp:
		return args[0].Imp(args[1]), nil
	case Iff:
		return args[0].Iff(args[1]), nil
	default:
		return bdd.Bdd{}, fmt.Errorf("expr: unknown operator %v", e.Op)
	}
}

// Parse and compile input
func (s *Scope) CompileString(input string) (bdd.Bdd, error) {
	e, err := Parse(input)
	if err != nil {
		return bdd.Bdd{}, err
	}
	return s.Compile(e)
}
