package usecase

import (
	"sort"

	"github.com/trebuchet-org/catapult/internal/domain"
)

// DependencyGraph is a directed acyclic graph of components.
// An edge dep -> name means name needs the address of dep.
type DependencyGraph struct {
	index map[string]int      // declaration position of every node
	deps  map[string][]string // node -> dependencies
	edges map[string][]string // adjacency list: node -> list of dependents
}

// NewDependencyGraph creates a graph from component specs. Dependencies on
// names that are not nodes are kept so callers can report them.
func NewDependencyGraph(specs []domain.ComponentSpec) *DependencyGraph {
	graph := &DependencyGraph{
		index: make(map[string]int, len(specs)),
		deps:  make(map[string][]string, len(specs)),
		edges: make(map[string][]string),
	}

	for _, spec := range specs {
		graph.index[spec.Name] = spec.Index
		graph.deps[spec.Name] = spec.Dependencies()
	}
	for name, deps := range graph.deps {
		for _, dep := range deps {
			if _, exists := graph.index[dep]; exists {
				graph.edges[dep] = append(graph.edges[dep], name)
			}
		}
	}

	return graph
}

// Has reports whether a component is a node of the graph
func (g *DependencyGraph) Has(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Dependencies returns the declared dependencies of a node
func (g *DependencyGraph) Dependencies(name string) []string {
	return g.deps[name]
}

// Dependents returns the nodes that directly depend on name
func (g *DependencyGraph) Dependents(name string) []string {
	return g.edges[name]
}

// Restrict returns the sub-graph induced by names. Dependencies that fall
// outside the set are dropped from the result.
func (g *DependencyGraph) Restrict(names []string) *DependencyGraph {
	keep := make(map[string]bool, len(names))
	for _, name := range names {
		if g.Has(name) {
			keep[name] = true
		}
	}

	sub := &DependencyGraph{
		index: make(map[string]int, len(keep)),
		deps:  make(map[string][]string, len(keep)),
		edges: make(map[string][]string),
	}
	for name := range keep {
		sub.index[name] = g.index[name]
		for _, dep := range g.deps[name] {
			if keep[dep] {
				sub.deps[name] = append(sub.deps[name], dep)
				sub.edges[dep] = append(sub.edges[dep], name)
			}
		}
	}
	return sub
}

// TopologicalSort orders the nodes so every node follows its dependencies.
// Nodes without an ordering constraint keep their declaration order.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	return topologicalSort(g.index, func(name string) []string {
		var inGraph []string
		for _, dep := range g.deps[name] {
			if g.Has(dep) {
				inGraph = append(inGraph, dep)
			}
		}
		return inGraph
	})
}

// topologicalSort runs Kahn's algorithm with a ready queue kept in
// declaration order. index maps every node to its declaration position and
// deps must only return nodes present in index.
func topologicalSort(index map[string]int, deps func(string) []string) ([]string, error) {
	inDegree := make(map[string]int, len(index))
	dependents := make(map[string][]string)
	for name := range index {
		inDegree[name] = 0
	}
	for name := range index {
		for _, dep := range deps(name) {
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	byDeclaration := func(names []string) {
		sort.Slice(names, func(i, j int) bool {
			if index[names[i]] != index[names[j]] {
				return index[names[i]] < index[names[j]]
			}
			return names[i] < names[j]
		})
	}

	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	byDeclaration(queue)

	result := make([]string, 0, len(index))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		for _, dependent := range dependents[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
		byDeclaration(queue)
	}

	if len(result) != len(index) {
		return nil, &domain.CyclicDependencyError{Cycle: findCycle(index, deps, inDegree)}
	}

	return result, nil
}

// findCycle walks the nodes left over by Kahn's algorithm and returns one
// cycle, closed with its first node repeated at the end
func findCycle(index map[string]int, deps func(string) []string, inDegree map[string]int) []string {
	var remaining []string
	for name, degree := range inDegree {
		if degree > 0 {
			remaining = append(remaining, name)
		}
	}
	sort.Slice(remaining, func(i, j int) bool { return index[remaining[i]] < index[remaining[j]] })

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int)
	var stack []string
	var cycle []string

	var visit func(string) bool
	visit = func(name string) bool {
		state[name] = visiting
		stack = append(stack, name)
		for _, dep := range deps(name) {
			switch state[dep] {
			case visiting:
				for i, n := range stack {
					if n == dep {
						cycle = append(append([]string{}, stack[i:]...), dep)
						return true
					}
				}
			case unvisited:
				if visit(dep) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return false
	}

	for _, name := range remaining {
		if state[name] == unvisited && visit(name) {
			return cycle
		}
	}
	return remaining
}
