package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrValidation marks graph validation failures: missing dependencies,
// unknown operations, and cycles.
var ErrValidation = errors.New("graph validation failed")

// OpLookup is the slice of the operation registry the resolver needs.
type OpLookup interface {
	Has(name string) bool
}

// Resolver validates graphs and produces execution orders. A nil registry
// skips operation-existence checks.
type Resolver struct {
	registry OpLookup
}

// NewResolver returns a resolver that validates operation names against reg.
func NewResolver(reg OpLookup) *Resolver {
	return &Resolver{registry: reg}
}

// Resolve validates g and returns its execution order.
func (r *Resolver) Resolve(g *Graph, contextKeys map[string]struct{}) ([]string, error) {
	if err := r.Validate(g, contextKeys); err != nil {
		return nil, err
	}
	return r.Sort(g, contextKeys)
}

// Validate checks, in order: every dependency is a vertex or a context key;
// every op vertex names a registered operation; the graph is acyclic.
func (r *Resolver) Validate(g *Graph, contextKeys map[string]struct{}) error {
	for _, name := range g.Names() {
		v, _ := g.Vertex(name)
		for _, dep := range v.Deps() {
			if _, inGraph := g.Vertex(dep); inGraph {
				continue
			}
			if _, inContext := contextKeys[dep]; inContext {
				continue
			}
			return fmt.Errorf("%w: vertex %q depends on %q, which is neither a vertex nor a context key",
				ErrValidation, name, dep)
		}
	}

	if r.registry != nil {
		for _, name := range g.Names() {
			op, ok := g.vertices[name].(*OpVertex)
			if !ok {
				continue
			}
			if !r.registry.Has(op.Op()) {
				return fmt.Errorf("%w: vertex %q references unregistered operation %q",
					ErrValidation, name, op.Op())
			}
		}
	}

	if on := findCycle(g); on != "" {
		return fmt.Errorf("%w: graph contains a cycle through vertex %q", ErrValidation, on)
	}
	return nil
}

// findCycle runs a three-colour depth-first search and returns the name of
// a vertex on a cycle, or "" when the graph is acyclic. Context
// dependencies are pre-bound and cannot participate.
func findCycle(g *Graph) string {
	const (
		white = iota // unvisited
		grey         // on the current DFS stack
		black        // finished
	)
	colour := make(map[string]int, g.Len())

	var visit func(name string) string
	visit = func(name string) string {
		colour[name] = grey
		v := g.vertices[name]
		for _, dep := range v.Deps() {
			if _, inGraph := g.vertices[dep]; !inGraph {
				continue
			}
			switch colour[dep] {
			case grey:
				return dep
			case white:
				if on := visit(dep); on != "" {
					return on
				}
			}
		}
		colour[name] = black
		return ""
	}

	for _, name := range g.Names() {
		if colour[name] == white {
			if on := visit(name); on != "" {
				return on
			}
		}
	}
	return ""
}

// Sort orders the vertices with Kahn's algorithm. Ready vertices enter the
// queue in the graph's insertion order, so sibling ties resolve the same
// way on every run of an unchanged graph.
func (r *Resolver) Sort(g *Graph, contextKeys map[string]struct{}) ([]string, error) {
	names := g.Names()
	position := make(map[string]int, len(names))
	for i, name := range names {
		position[name] = i
	}

	inDegree := make(map[string]int, len(names))
	dependents := make(map[string][]string, len(names))
	for _, name := range names {
		v := g.vertices[name]
		degree := 0
		for _, dep := range v.Deps() {
			if _, inGraph := g.vertices[dep]; !inGraph {
				continue // context dependencies contribute no in-edges
			}
			degree++
			dependents[dep] = append(dependents[dep], name)
		}
		inDegree[name] = degree
	}

	var queue []string
	for _, name := range names {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	order := make([]string, 0, len(names))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)

		ready := make([]string, 0, len(dependents[name]))
		for _, dep := range dependents[name] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
		sort.Slice(ready, func(i, j int) bool {
			return position[ready[i]] < position[ready[j]]
		})
		queue = append(queue, ready...)
	}

	if len(order) != len(names) {
		var stuck []string
		for _, name := range names {
			if inDegree[name] > 0 {
				stuck = append(stuck, name)
			}
		}
		return nil, fmt.Errorf("%w: graph contains a cycle among %s",
			ErrValidation, strings.Join(stuck, ", "))
	}
	return order, nil
}
