package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/invariant/internal/params"
)

// stubRegistry recognises a fixed set of operation names.
type stubRegistry map[string]struct{}

func (s stubRegistry) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func op(t *testing.T, name string, deps ...string) *OpVertex {
	t.Helper()
	v, err := NewOp(name, params.Map{}, deps)
	require.NoError(t, err)
	return v
}

func buildGraph(t *testing.T, pairs ...any) *Graph {
	t.Helper()
	g := New()
	for i := 0; i < len(pairs); i += 2 {
		require.NoError(t, g.Add(pairs[i].(string), pairs[i+1].(Vertex)))
	}
	return g
}

func TestValidateMissingDependency(t *testing.T) {
	g := buildGraph(t, "a", op(t, "identity", "ghost"))
	r := NewResolver(nil)

	err := r.Validate(g, nil)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), `"a"`)
	assert.Contains(t, err.Error(), `"ghost"`)
}

func TestValidateContextSatisfiesDependency(t *testing.T) {
	g := buildGraph(t, "a", op(t, "identity", "external"))
	r := NewResolver(nil)

	require.Error(t, r.Validate(g, nil))
	require.NoError(t, r.Validate(g, map[string]struct{}{"external": {}}))
}

func TestValidateUnknownOperation(t *testing.T) {
	g := buildGraph(t, "a", op(t, "mystery"))
	r := NewResolver(stubRegistry{"identity": {}})

	err := r.Validate(g, nil)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "mystery")

	require.NoError(t, NewResolver(stubRegistry{"mystery": {}}).Validate(g, nil))
}

func TestValidateCycle(t *testing.T) {
	g := buildGraph(t,
		"a", op(t, "identity", "b"),
		"b", op(t, "identity", "a"),
	)
	err := NewResolver(nil).Validate(g, nil)
	require.ErrorIs(t, err, ErrValidation)
	// The diagnostic names a vertex on the cycle.
	assert.Regexp(t, `"(a|b)"`, err.Error())
}

func TestValidateSelfCycle(t *testing.T) {
	g := buildGraph(t, "a", op(t, "identity", "a"))
	err := NewResolver(nil).Validate(g, nil)
	require.ErrorIs(t, err, ErrValidation)
}

func TestSortRespectsDependencies(t *testing.T) {
	g := buildGraph(t,
		"sum", op(t, "add", "x", "y"),
		"x", op(t, "identity"),
		"y", op(t, "identity"),
	)
	order, err := NewResolver(nil).Resolve(g, nil)
	require.NoError(t, err)
	require.Len(t, order, 3)
	assert.Equal(t, "sum", order[2])
}

func TestSortStableTieBreaking(t *testing.T) {
	g := buildGraph(t,
		"c", op(t, "identity"),
		"a", op(t, "identity"),
		"b", op(t, "identity"),
	)
	r := NewResolver(nil)
	first, err := r.Resolve(g, nil)
	require.NoError(t, err)
	// Siblings come out in insertion order, not lexicographic order.
	assert.Equal(t, []string{"c", "a", "b"}, first)

	second, err := r.Resolve(g, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSortDiamond(t *testing.T) {
	g := buildGraph(t,
		"root", op(t, "identity"),
		"left", op(t, "identity", "root"),
		"right", op(t, "identity", "root"),
		"join", op(t, "add", "left", "right"),
	)
	order, err := NewResolver(nil).Resolve(g, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "left", "right", "join"}, order)
}

func TestSortEmptyGraph(t *testing.T) {
	order, err := NewResolver(nil).Resolve(New(), nil)
	require.NoError(t, err)
	assert.Empty(t, order)
}
