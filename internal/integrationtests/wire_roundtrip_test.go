package integrationtests

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/invariant/internal/graphio"
	"github.com/vk/invariant/internal/store"
	"github.com/vk/invariant/internal/value"
)

const wireDoc = `{
  "format": "invariant-graph",
  "version": 1,
  "graph": {
    "x": {"kind": "node", "op_name": "identity", "params": {"value": 5}, "deps": []},
    "y": {"kind": "node", "op_name": "identity", "params": {"value": 3}, "deps": []},
    "sum": {
      "kind": "node",
      "op_name": "add",
      "params": {"a": {"$ref": "x"}, "b": {"$ref": "y"}},
      "deps": ["x", "y"]
    }
  }
}`

func TestWireDocumentExecutes(t *testing.T) {
	h := newHarness(t, store.NewMemory())
	g, err := graphio.DecodeGraph(strings.NewReader(wireDoc), h.registry.Types)
	require.NoError(t, err)

	results := h.run(t, g, nil)
	assert.True(t, value.Equal(value.NewInt(8), results["sum"]))
}

func TestWireRoundTripPreservesExecution(t *testing.T) {
	h := newHarness(t, store.NewMemory())
	g, err := graphio.DecodeGraph(strings.NewReader(wireDoc), h.registry.Types)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, graphio.EncodeGraph(&buf, g))
	again, err := graphio.DecodeGraph(bytes.NewReader(buf.Bytes()), h.registry.Types)
	require.NoError(t, err)

	first := h.run(t, g, nil)
	second := h.run(t, again, nil)
	assert.True(t, value.Equal(value.Map(first), value.Map(second)))
}
