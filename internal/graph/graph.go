package graph

import (
	"sort"
	"sync"
)

// Graph is a collection of nodes and their dependencies.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map and insertion order.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// order lists node IDs in insertion order.
	order []string
}

// node is a single vertex. It is unexported so callers work with string IDs.
type node struct {
	id string
	// seq is the node's insertion position, used to break ties.
	seq int
	// deps holds the nodes this node depends on (predecessors).
	deps map[string]*node
	// dependents holds the nodes that depend on this node (successors).
	dependents map[string]*node
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a node with the given ID. Adding an existing ID does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:         id,
		seq:        len(g.order),
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.order = append(g.order, id)
}

// AddEdge records that toID depends on fromID. A node depending on itself
// is reported as a one-member cycle.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return &CycleError{Members: []string{fromID}}
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return notFound(fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return notFound(toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode
	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// TopologicalSort orders all nodes so each comes after its dependencies.
// Among nodes that are ready at the same time, earlier insertion wins.
func (g *Graph) TopologicalSort() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	pending := make(map[string]int, len(g.nodes))
	var ready []*node
	for _, id := range g.order {
		n := g.nodes[id]
		pending[id] = len(n.deps)
		if len(n.deps) == 0 {
			ready = append(ready, n)
		}
	}

	out := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i].seq < ready[j].seq })
		n := ready[0]
		ready = ready[1:]
		out = append(out, n.id)
		delete(pending, n.id)

		for _, dep := range sorted(n.dependents) {
			pending[dep.id]--
			if pending[dep.id] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(pending) > 0 {
		return nil, g.findCycle(pending)
	}
	return out, nil
}

// findCycle walks dependency edges among the nodes a sort could not place.
// Each of them has at least one unplaced dependency, so the walk must
// revisit a node; the path from that node onward is a cycle.
func (g *Graph) findCycle(pending map[string]int) error {
	var start *node
	for _, id := range g.order {
		if _, ok := pending[id]; ok {
			start = g.nodes[id]
			break
		}
	}

	var path []string
	at := make(map[string]int)
	for n := start; n != nil; {
		if i, seen := at[n.id]; seen {
			return &CycleError{Members: path[i:]}
		}
		at[n.id] = len(path)
		path = append(path, n.id)

		var next *node
		for _, dep := range sorted(n.deps) {
			if _, ok := pending[dep.id]; ok {
				next = dep
				break
			}
		}
		n = next
	}
	return &CycleError{Members: path}
}

func sorted(m map[string]*node) []*node {
	out := make([]*node, 0, len(m))
	for _, n := range m {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}
