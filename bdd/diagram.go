package bdd

import (
	"fmt"
	"log"
	"sort"

	"github.com/dalzilio/rudd"
)

// A DiagramNode is one decision node of a Diagram.
// Low and High are indexes into Diagram.Nodes, 0 and 1 being the constants false and true.
type DiagramNode struct {
	Var  int
	Low  int
	High int
}

// A Diagram is a manager independent representation of a Bdd.
//
// Nodes are stored children first so that a Diagram can be rebuilt in a single pass.
// Indexes 0 and 1 are reserved for the constants, Nodes[0] and Nodes[1] are placeholders.
type Diagram struct {
	Nodes []DiagramNode
	Root  int
}

func (d Diagram) String() string {
	return fmt.Sprintf("Diagram{nodes: %v, root: %v}", len(d.Nodes)-2, d.Root)
}

// Size of the diagram, the constants excluded
func (d Diagram) Size() int {
	if len(d.Nodes) < 2 {
		return 0
	}
	return len(d.Nodes) - 2
}

type rawNode struct {
	id, level, low, high int
}

// Export the function represented by v.
func (m *Manager) Export(v Bdd) Diagram {
	n := m.own(v)
	raw := []rawNode{}
	err := m.b.Allnodes(func(id, level, low, high int) error {
		if level < m.varnum {
			raw = append(raw, rawNode{id: id, level: level, low: low, high: high})
		}
		return nil
	}, n)
	if err != nil {
		log.Panicf("bdd: unable to export diagram: %v", err)
	}
	// Children always have a larger level than their parent
	sort.Slice(raw, func(i, j int) bool { return raw[i].level > raw[j].level })

	index := map[int]int{0: 0, 1: 1}
	nodes := make([]DiagramNode, 2, len(raw)+2)
	for _, r := range raw {
		index[r.id] = len(nodes)
		nodes = append(nodes, DiagramNode{Var: r.level, Low: index[r.low], High: index[r.high]})
	}
	return Diagram{Nodes: nodes, Root: index[*n]}
}

// Import a Diagram, rebuilding the function it represents in m.
func (m *Manager) Import(d Diagram) Bdd {
	if d.Root == 0 || d.Root == 1 {
		return m.Constant(d.Root == 1)
	}
	built := make([]rudd.Node, len(d.Nodes))
	built[0] = m.b.False()
	built[1] = m.b.True()
	for i := 2; i < len(d.Nodes); i++ {
		dn := d.Nodes[i]
		m.checkVar(dn.Var)
		if dn.Low >= i || dn.High >= i {
			log.Panicf("bdd: malformed diagram, node %v refers to a later node", i)
		}
		built[i] = m.b.Ite(m.b.Ithvar(dn.Var), built[dn.High], built[dn.Low])
		if built[i] == nil {
			log.Panicf("bdd: unable to import diagram: %v", m.b.Error())
		}
	}
	return m.wrap(built[d.Root])
}
