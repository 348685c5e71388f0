// Package integrationtests exercises the engine end to end, one behaviour
// per file.
package integrationtests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/invariant/internal/executor"
	"github.com/vk/invariant/internal/graph"
	"github.com/vk/invariant/internal/params"
	"github.com/vk/invariant/internal/registry"
	"github.com/vk/invariant/internal/store"
	"github.com/vk/invariant/internal/testutil"
	"github.com/vk/invariant/internal/value"
)

// harness bundles the pieces every scenario needs.
type harness struct {
	registry *registry.Registry
	counter  *testutil.DispatchCounter
	store    store.Store
	exec     *executor.Executor
}

func newHarness(t *testing.T, st store.Store) *harness {
	t.Helper()
	reg := testutil.NewRegistry(t)
	counter := testutil.NewDispatchCounter()
	counter.Instrument(t, reg)
	return &harness{
		registry: reg,
		counter:  counter,
		store:    st,
		exec:     executor.New(reg, st),
	}
}

func (h *harness) run(t *testing.T, g *graph.Graph, ectx map[string]value.Value) map[string]value.Value {
	t.Helper()
	results, err := h.exec.Execute(context.Background(), g, ectx)
	require.NoError(t, err)
	return results
}

func lit(v value.Value) params.Tree { return params.Lit{V: v} }

func intList(ns ...int64) value.List {
	out := make(value.List, len(ns))
	for i, n := range ns {
		out[i] = value.NewInt(n)
	}
	return out
}
