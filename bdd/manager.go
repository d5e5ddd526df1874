package bdd

import (
	"errors"
	"fmt"
	"log"
	"math/big"

	"github.com/dalzilio/rudd"
)

// A Manager owns the node table of one universe of decision diagrams.
//
// A Manager is not safe for concurrent use. Every value produced by a Manager must only be combined with values of the same Manager,
// values coming from another Manager must be translocated first.
type Manager struct {
	b      *rudd.BDD
	varnum int
}

// Configuration of the node table of a Manager.
type Option func(*managerConfig)

type managerConfig struct {
	nodesize   int
	cachesize  int
	cacheratio int
}

// Set the initial size of the node table
func Nodesize(size int) Option {
	return func(c *managerConfig) { c.nodesize = size }
}

// Set the initial size of the operation caches
func Cachesize(size int) Option {
	return func(c *managerConfig) { c.cachesize = size }
}

// Set the ratio (%) between cache entries and node table slots used when the table grows
func Cacheratio(ratio int) Option {
	return func(c *managerConfig) { c.cacheratio = ratio }
}

// Create a new Manager with varnum boolean variables.
func New(varnum int, opts ...Option) (*Manager, error) {
	cfg := managerConfig{
		nodesize:   10000,
		cachesize:  5000,
		cacheratio: 25,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	b, err := rudd.New(varnum, rudd.Nodesize(cfg.nodesize), rudd.Cachesize(cfg.cachesize), rudd.Cacheratio(cfg.cacheratio))
	if err != nil {
		return nil, fmt.Errorf("bdd: unable to create manager with %v variables: %w", varnum, err)
	}
	return &Manager{b: b, varnum: varnum}, nil
}

// Create a new, empty, Manager with the same number of variables as m.
func (m *Manager) Fresh() *Manager {
	nm, err := New(m.varnum)
	if err != nil {
		log.Panicf("bdd: unable to duplicate manager: %v", err)
	}
	return nm
}

// The number of variables of the Manager
func (m *Manager) Varnum() int {
	return m.varnum
}

// Returns the error status of the underlying node table, nil if no operation failed.
func (m *Manager) Err() error {
	if m.b.Errored() {
		return errors.New(m.b.Error())
	}
	return nil
}

// Statistics about the node table
func (m *Manager) Stats() string {
	return m.b.Stats()
}

func (m *Manager) wrap(n rudd.Node) Bdd {
	if n == nil {
		log.Panicf("bdd: operation failed: %v", m.b.Error())
	}
	return Bdd{m: m, n: n}
}

func (m *Manager) own(v Bdd) rudd.Node {
	if v.m != m {
		log.Panicf("bdd: value belongs to another manager")
	}
	return v.n
}

// The constant function with value v
func (m *Manager) Constant(v bool) Bdd {
	return m.wrap(m.b.From(v))
}

func (m *Manager) True() Bdd {
	return m.Constant(true)
}

func (m *Manager) False() Bdd {
	return m.Constant(false)
}

// The function that is true iff variable i is true
func (m *Manager) IthVar(i int) Bdd {
	m.checkVar(i)
	return m.wrap(m.b.Ithvar(i))
}

// The function that is true iff variable i is false
func (m *Manager) NIthVar(i int) Bdd {
	m.checkVar(i)
	return m.wrap(m.b.NIthvar(i))
}

func (m *Manager) checkVar(i int) {
	if i < 0 || i >= m.varnum {
		log.Panicf("bdd: variable %v out of range [0, %v)", i, m.varnum)
	}
}

// A variable together with the polarity it has in a cube
type Literal struct {
	Var      int
	Positive bool
}

// The conjunction of the literals
func (m *Manager) Cube(lits []Literal) Bdd {
	res := m.b.True()
	for _, lit := range lits {
		m.checkVar(lit.Var)
		if lit.Positive {
			res = m.b.And(res, m.b.Ithvar(lit.Var))
		} else {
			res = m.b.And(res, m.b.NIthvar(lit.Var))
		}
	}
	return m.wrap(res)
}

// The positive cube of vars, used as the variable set of quantifications
func (m *Manager) VarSet(vars []int) Bdd {
	for _, v := range vars {
		m.checkVar(v)
	}
	return m.wrap(m.b.Makeset(vars))
}

// Existentially quantify the variables of the cube vars out of v
func (m *Manager) Exist(v Bdd, vars Bdd) Bdd {
	if vars.IsConstant(true) {
		return v
	}
	return m.wrap(m.b.Exist(m.own(v), m.own(vars)))
}

// Compute (exists vars . a & b) in one pass
func (m *Manager) AndExist(vars Bdd, a, b Bdd) Bdd {
	if vars.IsConstant(true) {
		return a.And(b)
	}
	return m.wrap(m.b.AndExist(m.own(vars), m.own(a), m.own(b)))
}

// A Renamer substitutes variables in values of the Manager that created it.
type Renamer struct {
	m *Manager
	r rudd.Replacer
}

// Create a Renamer mapping from[k] to to[k].
//
// The substitution is only valid on values that do not depend on the variables in to.
// Renamers should be created during setup, on one goroutine at a time.
func (m *Manager) NewRenamer(from, to []int) (*Renamer, error) {
	r, err := m.b.NewReplacer(from, to)
	if err != nil {
		return nil, fmt.Errorf("bdd: invalid renaming: %w", err)
	}
	return &Renamer{m: m, r: r}, nil
}

// Substitute the variables of v according to r
func (m *Manager) Rename(v Bdd, r *Renamer) Bdd {
	if r.m != m {
		log.Panicf("bdd: renamer belongs to another manager")
	}
	return m.wrap(m.b.Replace(m.own(v), r.r))
}

// The variables v depends on, in increasing order
func (m *Manager) Support(v Bdd) []int {
	seen := make([]bool, m.varnum)
	err := m.b.Allnodes(func(id, level, low, high int) error {
		if level < m.varnum {
			seen[level] = true
		}
		return nil
	}, m.own(v))
	if err != nil {
		log.Panicf("bdd: unable to compute support: %v", err)
	}
	vars := []int{}
	for i, ok := range seen {
		if ok {
			vars = append(vars, i)
		}
	}
	return vars
}

// Number of satisfying assignments of v over all the variables of the Manager
func (m *Manager) SatCount(v Bdd) *big.Int {
	return m.b.Satcount(m.own(v))
}

// Import the function represented by v, computed in another Manager, into m.
//
// The source Manager is read during the call, so it must not be in use by another goroutine.
func (m *Manager) Translocate(v Bdd) Bdd {
	if v.m == m {
		return v
	}
	return m.Import(v.m.Export(v))
}
