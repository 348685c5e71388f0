package hclgraph

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/invariant/internal/graph"
	"github.com/vk/invariant/internal/params"
)

var graphSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "vertex", LabelNames: []string{"name"}},
		{Type: "subgraph", LabelNames: []string{"name"}},
	},
}

var vertexSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "op", Required: true},
		{Name: "params"},
		{Name: "deps"},
		{Name: "cache"},
	},
}

var subgraphSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "params"},
		{Name: "deps"},
		{Name: "output", Required: true},
	},
	Blocks: graphSchema.Blocks,
}

// LoadFile parses and translates a .hcl graph file.
func LoadFile(path string) (*graph.Graph, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading graph file: %w", err)
	}
	return LoadSource(path, src)
}

// LoadSource parses and translates HCL graph source.
func LoadSource(filename string, src []byte) (*graph.Graph, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %s", filename, diags.Error())
	}
	return decodeBody(file.Body)
}

func decodeBody(body hcl.Body) (*graph.Graph, error) {
	content, diags := body.Content(graphSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decoding graph body: %s", diags.Error())
	}
	g := graph.New()
	for _, block := range content.Blocks {
		name := block.Labels[0]
		var (
			v   graph.Vertex
			err error
		)
		switch block.Type {
		case "vertex":
			v, err = decodeVertexBlock(block)
		case "subgraph":
			v, err = decodeSubgraphBlock(block)
		}
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", block.Type, name, err)
		}
		if err := g.Add(name, v); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func decodeVertexBlock(block *hcl.Block) (graph.Vertex, error) {
	content, diags := block.Body.Content(vertexSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s", diags.Error())
	}
	evalCtx := &hcl.EvalContext{Functions: markerFunctions()}

	opName, err := stringAttr(content, "op", evalCtx)
	if err != nil {
		return nil, err
	}

	pars, err := decodeParamsAttr(content, evalCtx)
	if err != nil {
		return nil, err
	}
	deps, err := decodeDepsAttr(content, evalCtx)
	if err != nil {
		return nil, err
	}

	cached := true
	if attr, ok := content.Attributes["cache"]; ok {
		v, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("cache: %s", diags.Error())
		}
		if v.IsNull() || !v.Type().Equals(cty.Bool) {
			return nil, fmt.Errorf("cache must be a boolean")
		}
		cached = v.True()
	}
	if cached {
		return graph.NewOp(opName, pars, deps)
	}
	return graph.NewEphemeralOp(opName, pars, deps)
}

func decodeSubgraphBlock(block *hcl.Block) (graph.Vertex, error) {
	content, diags := block.Body.Content(subgraphSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s", diags.Error())
	}
	evalCtx := &hcl.EvalContext{Functions: markerFunctions()}

	output, err := stringAttr(content, "output", evalCtx)
	if err != nil {
		return nil, err
	}
	pars, err := decodeParamsAttr(content, evalCtx)
	if err != nil {
		return nil, err
	}
	deps, err := decodeDepsAttr(content, evalCtx)
	if err != nil {
		return nil, err
	}

	inner := graph.New()
	for _, b := range content.Blocks {
		name := b.Labels[0]
		var (
			v    graph.Vertex
			verr error
		)
		switch b.Type {
		case "vertex":
			v, verr = decodeVertexBlock(b)
		case "subgraph":
			v, verr = decodeSubgraphBlock(b)
		}
		if verr != nil {
			return nil, fmt.Errorf("%s %q: %w", b.Type, name, verr)
		}
		if err := inner.Add(name, v); err != nil {
			return nil, err
		}
	}
	return graph.NewSub(pars, deps, inner, output)
}

func stringAttr(content *hcl.BodyContent, name string, evalCtx *hcl.EvalContext) (string, error) {
	attr, ok := content.Attributes[name]
	if !ok {
		return "", fmt.Errorf("missing required attribute %q", name)
	}
	v, diags := attr.Expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", fmt.Errorf("%s: %s", name, diags.Error())
	}
	if v.IsNull() || !v.Type().Equals(cty.String) {
		return "", fmt.Errorf("%s must be a string", name)
	}
	return v.AsString(), nil
}

func decodeParamsAttr(content *hcl.BodyContent, evalCtx *hcl.EvalContext) (params.Map, error) {
	attr, ok := content.Attributes["params"]
	if !ok {
		return params.Map{}, nil
	}
	v, diags := attr.Expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("params: %s", diags.Error())
	}
	tree, err := ctyToTree(v)
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	m, ok := tree.(params.Map)
	if !ok {
		return nil, fmt.Errorf("params must be an object")
	}
	return m, nil
}

func decodeDepsAttr(content *hcl.BodyContent, evalCtx *hcl.EvalContext) ([]string, error) {
	attr, ok := content.Attributes["deps"]
	if !ok {
		return nil, nil
	}
	v, diags := attr.Expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("deps: %s", diags.Error())
	}
	deps, err := ctyToStrings(v)
	if err != nil {
		return nil, err
	}
	return deps, nil
}
