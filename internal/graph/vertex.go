package graph

import (
	"fmt"
	"strings"

	"github.com/vk/invariant/internal/params"
)

// Vertex is a node of the DAG: either an operation vertex or a sub-graph
// vertex. Implementations are frozen after construction.
type Vertex interface {
	Params() params.Map
	Deps() []string
	isVertex()
}

// OpVertex names an operation, carries a parameter tree, and declares its
// dependencies. Its result is cached unless the vertex is ephemeral.
type OpVertex struct {
	op    string
	pars  params.Map
	deps  []string
	cache bool
}

// NewOp constructs a cached operation vertex.
func NewOp(op string, p params.Map, deps []string) (*OpVertex, error) {
	return newOp(op, p, deps, true)
}

// NewEphemeralOp constructs an operation vertex that is never written to or
// read from the store: it always dispatches.
func NewEphemeralOp(op string, p params.Map, deps []string) (*OpVertex, error) {
	return newOp(op, p, deps, false)
}

func newOp(op string, p params.Map, deps []string, cache bool) (*OpVertex, error) {
	if strings.TrimSpace(op) == "" {
		return nil, fmt.Errorf("op vertex requires a non-empty operation name")
	}
	if err := checkRefs(p, deps); err != nil {
		return nil, err
	}
	return &OpVertex{op: op, pars: p, deps: cloneDeps(deps), cache: cache}, nil
}

func (v *OpVertex) Op() string         { return v.op }
func (v *OpVertex) Params() params.Map { return v.pars }
func (v *OpVertex) Deps() []string     { return cloneDeps(v.deps) }
func (v *OpVertex) Cached() bool       { return v.cache }
func (*OpVertex) isVertex()            {}

// SubVertex embeds an internal graph. At execution time its resolved
// parameters become the inner graph's context and the designated output
// vertex's artifact becomes this vertex's artifact. Inner vertices are
// never visible to the parent's namespace.
type SubVertex struct {
	pars   params.Map
	deps   []string
	inner  *Graph
	output string
}

// NewSub constructs a sub-graph vertex.
func NewSub(p params.Map, deps []string, inner *Graph, output string) (*SubVertex, error) {
	if inner == nil {
		return nil, fmt.Errorf("sub-graph vertex requires an internal graph")
	}
	if _, ok := inner.Vertex(output); !ok {
		return nil, fmt.Errorf("sub-graph output %q is not a vertex of the internal graph (vertices: %s)",
			output, strings.Join(inner.Names(), ", "))
	}
	if err := checkRefs(p, deps); err != nil {
		return nil, err
	}
	return &SubVertex{pars: p, deps: cloneDeps(deps), inner: inner, output: output}, nil
}

func (v *SubVertex) Params() params.Map { return v.pars }
func (v *SubVertex) Deps() []string     { return cloneDeps(v.deps) }
func (v *SubVertex) Inner() *Graph      { return v.inner }
func (v *SubVertex) Output() string     { return v.output }
func (*SubVertex) isVertex()            {}

// checkRefs validates that every reference marker in the parameter tree
// names a declared dependency.
func checkRefs(p params.Map, deps []string) error {
	declared := make(map[string]struct{}, len(deps))
	for _, d := range deps {
		declared[d] = struct{}{}
	}
	for _, ref := range params.CollectRefs(p) {
		if _, ok := declared[ref]; !ok {
			return fmt.Errorf("reference to %q is not a declared dependency (declared: %s)",
				ref, strings.Join(deps, ", "))
		}
	}
	return nil
}

func cloneDeps(deps []string) []string {
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}
