package hclgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/invariant/internal/graph"
	"github.com/vk/invariant/internal/params"
	"github.com/vk/invariant/internal/value"
)

func TestLoadBasicGraph(t *testing.T) {
	src := `
vertex "x" {
  op     = "identity"
  params = { value = 5 }
}

vertex "sum" {
  op     = "add"
  deps   = ["x", "y"]
  params = { a = ref("x"), b = ref("y") }
}
`
	g, err := LoadSource("test.hcl", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "sum"}, g.Names(), "source order survives loading")

	v, _ := g.Vertex("sum")
	op := v.(*graph.OpVertex)
	assert.Equal(t, "add", op.Op())
	assert.Equal(t, []string{"x", "y"}, op.Deps())
	assert.Equal(t, params.Ref{Dep: "x"}, op.Params()["a"])
}

func TestLoadMarkers(t *testing.T) {
	src := `
vertex "v" {
  op = "identity"
  params = {
    e = cel("1 + 1")
    d = decimal("1.5")
    l = [1, "two", true]
    m = { nested = 9 }
  }
}
`
	g, err := LoadSource("test.hcl", []byte(src))
	require.NoError(t, err)
	v, _ := g.Vertex("v")
	p := v.Params()

	assert.Equal(t, params.Expr{Source: "1 + 1"}, p["e"])

	d, errD := value.ParseDecimal("1.5")
	require.NoError(t, errD)
	assert.Equal(t, params.Lit{V: d}, p["d"])

	l, ok := p["l"].(params.List)
	require.True(t, ok)
	require.Len(t, l, 3)
	assert.Equal(t, params.Lit{V: value.NewInt(1)}, l[0])

	m, ok := p["m"].(params.Map)
	require.True(t, ok)
	assert.Equal(t, params.Lit{V: value.NewInt(9)}, m["nested"])
}

func TestLoadRejectsFractionalNumbers(t *testing.T) {
	src := `
vertex "v" {
  op     = "identity"
  params = { value = 1.5 }
}
`
	_, err := LoadSource("test.hcl", []byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decimal")
}

func TestLoadEphemeralVertex(t *testing.T) {
	src := `
vertex "v" {
  op     = "identity"
  cache  = false
  params = { value = 1 }
}
`
	g, err := LoadSource("test.hcl", []byte(src))
	require.NoError(t, err)
	v, _ := g.Vertex("v")
	assert.False(t, v.(*graph.OpVertex).Cached())
}

func TestLoadSubgraph(t *testing.T) {
	src := `
vertex "x" {
  op     = "identity"
  params = { value = 5 }
}

subgraph "s" {
  deps   = ["x"]
  params = { left = ref("x") }
  output = "inner"

  vertex "inner" {
    op     = "identity"
    deps   = ["left"]
    params = { value = ref("left") }
  }
}
`
	g, err := LoadSource("test.hcl", []byte(src))
	require.NoError(t, err)
	v, _ := g.Vertex("s")
	sub, ok := v.(*graph.SubVertex)
	require.True(t, ok)
	assert.Equal(t, "inner", sub.Output())
	assert.Equal(t, []string{"x"}, sub.Deps())
}

func TestLoadInterpolationEscape(t *testing.T) {
	src := `
vertex "v" {
  op     = "identity"
  deps   = ["w"]
  params = { value = "Width is $${w}px" }
}
`
	g, err := LoadSource("test.hcl", []byte(src))
	require.NoError(t, err)
	v, _ := g.Vertex("v")
	assert.Equal(t, params.Lit{V: value.Str("Width is ${w}px")}, v.Params()["value"])
}

func TestLoadErrors(t *testing.T) {
	t.Run("syntax error", func(t *testing.T) {
		_, err := LoadSource("bad.hcl", []byte(`vertex "x" {`))
		require.Error(t, err)
	})
	t.Run("missing op", func(t *testing.T) {
		_, err := LoadSource("bad.hcl", []byte(`vertex "x" { params = {} }`))
		require.Error(t, err)
	})
	t.Run("undeclared ref", func(t *testing.T) {
		_, err := LoadSource("bad.hcl", []byte(`
vertex "x" {
  op     = "identity"
  params = { value = ref("ghost") }
}
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ghost")
	})
}
