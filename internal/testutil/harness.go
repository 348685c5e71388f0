// Package testutil provides shared helpers for engine tests: infallible
// vertex constructors, module registration, and dispatch counting.
package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/invariant/internal/graph"
	"github.com/vk/invariant/internal/ops/poly"
	"github.com/vk/invariant/internal/ops/stdlib"
	"github.com/vk/invariant/internal/params"
	"github.com/vk/invariant/internal/registry"
	"github.com/vk/invariant/internal/value"
)

// MustOp constructs a cached op vertex or fails the test.
func MustOp(t *testing.T, op string, p params.Map, deps ...string) *graph.OpVertex {
	t.Helper()
	v, err := graph.NewOp(op, p, deps)
	require.NoError(t, err)
	return v
}

// MustEphemeralOp constructs an uncached op vertex or fails the test.
func MustEphemeralOp(t *testing.T, op string, p params.Map, deps ...string) *graph.OpVertex {
	t.Helper()
	v, err := graph.NewEphemeralOp(op, p, deps)
	require.NoError(t, err)
	return v
}

// MustSub constructs a sub-graph vertex or fails the test.
func MustSub(t *testing.T, p params.Map, deps []string, inner *graph.Graph, output string) *graph.SubVertex {
	t.Helper()
	v, err := graph.NewSub(p, deps, inner, output)
	require.NoError(t, err)
	return v
}

// MustGraph builds a graph from alternating name/vertex pairs, preserving
// the given order.
func MustGraph(t *testing.T, pairs ...any) *graph.Graph {
	t.Helper()
	require.Zero(t, len(pairs)%2, "MustGraph takes name/vertex pairs")
	g := graph.New()
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		require.True(t, ok, "pair %d: name must be a string", i/2)
		v, ok := pairs[i+1].(graph.Vertex)
		require.True(t, ok, "pair %d: not a vertex", i/2)
		require.NoError(t, g.Add(name, v))
	}
	return g
}

// NewRegistry builds a registry with the stdlib and poly modules installed.
func NewRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	require.NoError(t, stdlib.Module{}.Register(r))
	require.NoError(t, poly.Module{}.Register(r))
	return r
}

// DispatchCounter counts operation invocations by name. Instrument a
// registry after its modules are registered to assert on dedup and
// cache-reuse behaviour.
type DispatchCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewDispatchCounter returns an empty counter.
func NewDispatchCounter() *DispatchCounter {
	return &DispatchCounter{counts: make(map[string]int)}
}

// Count reports how many times name was dispatched.
func (c *DispatchCounter) Count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[name]
}

// Total reports dispatches across all names.
func (c *DispatchCounter) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Instrument replaces every registered operation with a counting wrapper.
func (c *DispatchCounter) Instrument(t *testing.T, r *registry.Registry) {
	t.Helper()
	for _, name := range r.Names() {
		op, _ := r.Get(name)
		wrapped := *op
		inner := op.Apply
		opName := name
		wrapped.Apply = func(args map[string]value.Value) (value.Value, error) {
			c.mu.Lock()
			c.counts[opName]++
			c.mu.Unlock()
			return inner(args)
		}
		require.NoError(t, r.Replace(opName, &wrapped))
	}
}
