package graph

import (
	"fmt"
	"sort"

	"github.com/ventrath/gantry/pkg/errors"
)

// Graph is a directed acyclic dependency graph over named nodes.
//
// Both engines build one of these before doing anything else; a graph that
// fails Sort() (ie. contains a cycle) is rejected up front so nothing can
// deadlock waiting on itself.
type Graph struct {
	nodes map[string]bool

	// dependents[x] lists nodes that depend on x
	dependents map[string][]string

	// dependencies[x] lists nodes x depends on
	dependencies map[string][]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:        map[string]bool{},
		dependents:   map[string][]string{},
		dependencies: map[string][]string{},
	}
}

// FromDeps builds a graph from a node -> dependencies map, validating that
// every named dependency exists and that the result is acyclic.
func FromDeps(deps map[string][]string) (*Graph, error) {
	g := New()
	for name := range deps {
		g.AddNode(name)
	}
	for name, needs := range deps {
		for _, dep := range needs {
			if err := g.AddEdge(dep, name); err != nil {
				return nil, err
			}
		}
	}
	if _, err := g.Sort(); err != nil {
		return nil, err
	}
	return g, nil
}

// AddNode adds a node; adding the same name twice is a no-op.
func (g *Graph) AddNode(name string) {
	g.nodes[name] = true
}

// AddEdge records that `to` depends on `from`. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) error {
	if !g.nodes[from] {
		return fmt.Errorf("%w %s (needed by %s)", errors.ErrUnknownDep, from, to)
	}
	if !g.nodes[to] {
		return fmt.Errorf("%w %s", errors.ErrUnknownDep, to)
	}
	for _, d := range g.dependencies[to] {
		if d == from {
			return nil
		}
	}
	g.dependents[from] = append(g.dependents[from], to)
	g.dependencies[to] = append(g.dependencies[to], from)
	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns all node names, sorted.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Dependencies returns the direct dependencies of the given node.
func (g *Graph) Dependencies(name string) []string {
	return g.dependencies[name]
}

// Dependents returns the nodes that directly depend on the given node.
func (g *Graph) Dependents(name string) []string {
	return g.dependents[name]
}

// TransitiveDependents returns every node downstream of the given node,
// sorted. Used to work out the subgraph a failure (or skip) takes with it.
func (g *Graph) TransitiveDependents(name string) []string {
	seen := map[string]bool{}
	queue := append([]string{}, g.dependents[name]...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen[n] {
			continue
		}
		seen[n] = true
		queue = append(queue, g.dependents[n]...)
	}

	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Sort returns the nodes in topological order (Kahn's algorithm) or
// ErrCycleDetected if no such order exists. Nodes of equal rank come out in
// name order so the result is deterministic.
func (g *Graph) Sort() ([]string, error) {
	inDegree := map[string]int{}
	for n := range g.nodes {
		inDegree[n] = len(g.dependencies[n])
	}

	frontier := []string{}
	for n, d := range inDegree {
		if d == 0 {
			frontier = append(frontier, n)
		}
	}
	sort.Strings(frontier)

	order := make([]string, 0, len(g.nodes))
	for len(frontier) > 0 {
		n := frontier[0]
		frontier = frontier[1:]
		order = append(order, n)

		next := []string{}
		for _, dep := range g.dependents[n] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				next = append(next, dep)
			}
		}
		sort.Strings(next)
		frontier = append(frontier, next...)
	}

	if len(order) != len(g.nodes) {
		remaining := []string{}
		for n, d := range inDegree {
			if d > 0 {
				remaining = append(remaining, n)
			}
		}
		sort.Strings(remaining)
		return nil, fmt.Errorf("%w involving %v", errors.ErrCycleDetected, remaining)
	}

	return order, nil
}

// Ready returns the nodes whose dependencies are all done and which are
// neither done nor active themselves. This is the execution frontier.
func (g *Graph) Ready(done, active map[string]bool) []string {
	if done == nil {
		done = map[string]bool{}
	}
	if active == nil {
		active = map[string]bool{}
	}

	ready := []string{}
	for n := range g.nodes {
		if done[n] || active[n] {
			continue
		}
		ok := true
		for _, dep := range g.dependencies[n] {
			if !done[dep] {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, n)
		}
	}

	sort.Strings(ready)
	return ready
}
