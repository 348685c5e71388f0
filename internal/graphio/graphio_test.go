package graphio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/invariant/internal/graph"
	"github.com/vk/invariant/internal/ops/poly"
	"github.com/vk/invariant/internal/params"
	"github.com/vk/invariant/internal/value"
)

func polyTypes() *value.TypeRegistry {
	types := value.NewTypeRegistry()
	types.Register(poly.TypeName, poly.Decode)
	types.RegisterJSON(poly.TypeName, poly.DecodeJSON)
	return types
}

const sampleDoc = `{
  "format": "invariant-graph",
  "version": 1,
  "graph": {
    "x": {"kind": "node", "op_name": "identity", "params": {"value": 5}, "deps": []},
    "y": {"kind": "node", "op_name": "identity", "params": {"value": 3}, "deps": []},
    "sum": {
      "kind": "node",
      "op_name": "add",
      "params": {"a": {"$ref": "x"}, "b": {"$cel": "y + 0"}},
      "deps": ["x", "y"]
    }
  }
}`

func TestDecodeGraph(t *testing.T) {
	g, err := DecodeGraph(strings.NewReader(sampleDoc), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "sum"}, g.Names(), "document order survives decoding")

	v, ok := g.Vertex("sum")
	require.True(t, ok)
	op, ok := v.(*graph.OpVertex)
	require.True(t, ok)
	assert.Equal(t, "add", op.Op())
	assert.Equal(t, []string{"x", "y"}, op.Deps())
	assert.Equal(t, params.Ref{Dep: "x"}, op.Params()["a"])
	assert.Equal(t, params.Expr{Source: "y + 0"}, op.Params()["b"])
}

func TestDecodeRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"wrong format":   `{"format": "other", "version": 1, "graph": {}}`,
		"wrong version":  `{"format": "invariant-graph", "version": 2, "graph": {}}`,
		"missing graph":  `{"format": "invariant-graph", "version": 1}`,
		"not an object":  `[1, 2]`,
		"unknown kind":   `{"format": "invariant-graph", "version": 1, "graph": {"v": {"kind": "weird"}}}`,
		"missing opname": `{"format": "invariant-graph", "version": 1, "graph": {"v": {"kind": "node"}}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeGraph(strings.NewReader(doc), nil)
			require.Error(t, err)
		})
	}
}

func TestDecodeRejectsFractionalNumbers(t *testing.T) {
	doc := `{"format": "invariant-graph", "version": 1, "graph": {
	  "v": {"kind": "node", "op_name": "identity", "params": {"value": 1.5}, "deps": []}
	}}`
	_, err := DecodeGraph(strings.NewReader(doc), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$decimal")
}

func TestDecodeMarkers(t *testing.T) {
	doc := `{"format": "invariant-graph", "version": 1, "graph": {
	  "v": {"kind": "node", "op_name": "identity", "params": {
	    "d": {"$decimal": "1.50"},
	    "t": {"$tuple": [1, {"$decimal": "2.5"}]},
	    "lit": {"$literal": {"$ref": "not a marker"}},
	    "plain": {"a": 1, "b": 2}
	  }, "deps": []}
	}}`
	g, err := DecodeGraph(strings.NewReader(doc), nil)
	require.NoError(t, err)

	v, _ := g.Vertex("v")
	p := v.Params()

	d, err := value.ParseDecimal("1.5")
	require.NoError(t, err)
	dLit, ok := p["d"].(params.Lit)
	require.True(t, ok)
	assert.True(t, value.Equal(d, dLit.V))

	tup, ok := p["t"].(params.List)
	require.True(t, ok)
	assert.Len(t, tup, 2)

	lit, ok := p["lit"].(params.Lit)
	require.True(t, ok)
	assert.True(t, value.Equal(value.Map{"$ref": value.Str("not a marker")}, lit.V))

	plain, ok := p["plain"].(params.Map)
	require.True(t, ok)
	assert.Len(t, plain, 2)
}

func TestDecodeSubgraph(t *testing.T) {
	doc := `{"format": "invariant-graph", "version": 1, "graph": {
	  "outer": {
	    "kind": "subgraph",
	    "params": {"left": {"$ref": "x"}},
	    "deps": ["x"],
	    "graph": {
	      "inner": {"kind": "node", "op_name": "identity", "params": {"value": {"$ref": "left"}}, "deps": ["left"]}
	    },
	    "output": "inner"
	  },
	  "x": {"kind": "node", "op_name": "identity", "params": {"value": 1}, "deps": []}
	}}`
	g, err := DecodeGraph(strings.NewReader(doc), nil)
	require.NoError(t, err)

	v, _ := g.Vertex("outer")
	sub, ok := v.(*graph.SubVertex)
	require.True(t, ok)
	assert.Equal(t, "inner", sub.Output())
	assert.Equal(t, 1, sub.Inner().Len())
}

func TestDecodeEphemeralFlag(t *testing.T) {
	doc := `{"format": "invariant-graph", "version": 1, "graph": {
	  "v": {"kind": "node", "op_name": "identity", "params": {"value": 1}, "deps": [], "cache": false}
	}}`
	g, err := DecodeGraph(strings.NewReader(doc), nil)
	require.NoError(t, err)
	v, _ := g.Vertex("v")
	assert.False(t, v.(*graph.OpVertex).Cached())
}

func TestRoundTrip(t *testing.T) {
	d, err := value.ParseDecimal("2.5")
	require.NoError(t, err)

	inner := graph.New()
	innerV, err := graph.NewOp("add", params.Map{
		"a": params.Ref{Dep: "left"},
		"b": params.Lit{V: value.NewInt(1)},
	}, []string{"left"})
	require.NoError(t, err)
	require.NoError(t, inner.Add("sum", innerV))

	g := graph.New()
	x, err := graph.NewOp("identity", params.Map{
		"value":   params.Lit{V: d},
		"tagged":  params.Lit{V: value.Map{"$ref": value.Str("escaped")}},
		"listish": params.List{params.Expr{Source: "1 + 1"}},
		"poly":    params.Lit{V: value.Domain{A: poly.NewFromInt64(1, 2, 1)}},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, g.Add("x", x))
	sub, err := graph.NewSub(params.Map{"left": params.Ref{Dep: "x"}}, []string{"x"}, inner, "sum")
	require.NoError(t, err)
	require.NoError(t, g.Add("s", sub))
	eph, err := graph.NewEphemeralOp("identity", params.Map{"value": params.Lit{V: value.NewInt(1)}}, nil)
	require.NoError(t, err)
	require.NoError(t, g.Add("e", eph))

	var buf bytes.Buffer
	require.NoError(t, EncodeGraph(&buf, g))

	decoded, err := DecodeGraph(bytes.NewReader(buf.Bytes()), polyTypes())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"x", "s", "e"}, decoded.Names())

	dx, _ := decoded.Vertex("x")
	decLit, ok := dx.Params()["value"].(params.Lit)
	require.True(t, ok)
	assert.True(t, value.Equal(d, decLit.V))
	lit := dx.Params()["tagged"].(params.Lit)
	assert.True(t, value.Equal(value.Map{"$ref": value.Str("escaped")}, lit.V))
	polyLit := dx.Params()["poly"].(params.Lit)
	assert.True(t, value.Equal(value.Domain{A: poly.NewFromInt64(1, 2, 1)}, polyLit.V))

	de, _ := decoded.Vertex("e")
	assert.False(t, de.(*graph.OpVertex).Cached())

	ds, _ := decoded.Vertex("s")
	assert.Equal(t, "sum", ds.(*graph.SubVertex).Output())

	// Deterministic: encoding the decoded graph reproduces the bytes.
	var second bytes.Buffer
	require.NoError(t, EncodeGraph(&second, decoded))
	assert.Equal(t, buf.String(), second.String())
}

func TestDecodeArtifactValueForm(t *testing.T) {
	doc := `{"format": "invariant-graph", "version": 1, "graph": {
	  "p": {"kind": "node", "op_name": "identity", "params": {
	    "value": {"$icacheable": {"type": "poly.Polynomial", "value": [1, 1]}}
	  }, "deps": []}
	}}`
	g, err := DecodeGraph(strings.NewReader(doc), polyTypes())
	require.NoError(t, err)
	v, _ := g.Vertex("p")
	lit := v.Params()["value"].(params.Lit)
	assert.Equal(t, 1, lit.V.(value.Domain).A.(*poly.Polynomial).Degree())
}

func TestUnmarshalContext(t *testing.T) {
	ectx, err := UnmarshalContext([]byte(`{"root_width": 144, "scale": {"$decimal": "0.75"}}`), nil)
	require.NoError(t, err)
	assert.True(t, value.Equal(value.NewInt(144), ectx["root_width"]))
	d, _ := value.ParseDecimal("0.75")
	assert.True(t, value.Equal(d, ectx["scale"]))

	_, err = UnmarshalContext([]byte(`{"bad": {"$ref": "x"}}`), nil)
	require.Error(t, err)

	_, err = UnmarshalContext([]byte(`{"f": 1.25}`), nil)
	require.Error(t, err)
}
