package graphio

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/vk/invariant/internal/graph"
	"github.com/vk/invariant/internal/params"
	"github.com/vk/invariant/internal/value"
)

// EncodeGraph writes g as a deterministic document: all string keys and
// dependency lists sort, so equal graphs serialize to equal bytes.
func EncodeGraph(w io.Writer, g *graph.Graph) error {
	body, err := encodeGraphBody(g)
	if err != nil {
		return err
	}
	doc := map[string]any{
		"format":  FormatID,
		"version": Version,
		"graph":   body,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// MarshalValue renders a Value in the wire format's parameter encoding,
// used by the CLI to print result artifacts.
func MarshalValue(v value.Value) ([]byte, error) {
	encoded, err := encodeValue(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(encoded)
}

func encodeGraphBody(g *graph.Graph) (map[string]any, error) {
	body := make(map[string]any, g.Len())
	for _, name := range g.Names() {
		v, _ := g.Vertex(name)
		obj, err := encodeVertex(v)
		if err != nil {
			return nil, fmt.Errorf("vertex %q: %w", name, err)
		}
		body[name] = obj
	}
	return body, nil
}

func encodeVertex(v graph.Vertex) (map[string]any, error) {
	pars, err := encodeParams(v.Params())
	if err != nil {
		return nil, err
	}
	deps := v.Deps()
	sort.Strings(deps)
	if deps == nil {
		deps = []string{}
	}
	switch vertex := v.(type) {
	case *graph.OpVertex:
		obj := map[string]any{
			"kind":    "node",
			"op_name": vertex.Op(),
			"params":  pars,
			"deps":    deps,
		}
		if !vertex.Cached() {
			obj["cache"] = false
		}
		return obj, nil
	case *graph.SubVertex:
		inner, err := encodeGraphBody(vertex.Inner())
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"kind":   "subgraph",
			"params": pars,
			"deps":   deps,
			"graph":  inner,
			"output": vertex.Output(),
		}, nil
	}
	return nil, fmt.Errorf("unknown vertex type %T", v)
}

func encodeParams(p params.Map) (map[string]any, error) {
	out := make(map[string]any, len(p))
	for k, t := range p {
		encoded, err := encodeTree(t)
		if err != nil {
			return nil, fmt.Errorf("params key %q: %w", k, err)
		}
		out[k] = encoded
	}
	return out, nil
}

func encodeTree(t params.Tree) (any, error) {
	switch node := t.(type) {
	case params.Lit:
		return encodeValue(node.V)
	case params.Ref:
		return map[string]any{"$ref": node.Dep}, nil
	case params.Expr:
		return map[string]any{"$cel": node.Source}, nil
	case params.List:
		out := make([]any, len(node))
		for i, e := range node {
			encoded, err := encodeTree(e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = encoded
		}
		return out, nil
	case params.Map:
		out := make(map[string]any, len(node))
		for k, e := range node {
			encoded, err := encodeTree(e)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = encoded
		}
		return wrapCollision(out), nil
	}
	return nil, fmt.Errorf("unknown parameter node %T", t)
}

func encodeValue(v value.Value) (any, error) {
	switch vv := v.(type) {
	case value.Null:
		return nil, nil
	case value.Bool:
		return bool(vv), nil
	case value.Int:
		return json.Number(vv.String()), nil
	case value.Decimal:
		return map[string]any{"$decimal": vv.Canonical()}, nil
	case value.Str:
		return string(vv), nil
	case value.List:
		out := make([]any, len(vv))
		for i, e := range vv {
			encoded, err := encodeValue(e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = encoded
		}
		return out, nil
	case value.Map:
		out := make(map[string]any, len(vv))
		for k, e := range vv {
			encoded, err := encodeValue(e)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = encoded
		}
		return wrapCollision(out), nil
	case value.Domain:
		var buf bytes.Buffer
		if err := vv.A.EncodeTo(&buf); err != nil {
			return nil, fmt.Errorf("encoding artifact %s: %w", vv.A.TypeName(), err)
		}
		return map[string]any{"$icacheable": map[string]any{
			"type":        vv.A.TypeName(),
			"payload_b64": base64.StdEncoding.EncodeToString(buf.Bytes()),
		}}, nil
	}
	return nil, fmt.Errorf("cannot encode nil value")
}

// wrapCollision escapes a plain single-key map that would otherwise decode
// as a marker.
func wrapCollision(obj map[string]any) map[string]any {
	if len(obj) != 1 {
		return obj
	}
	for key := range obj {
		if _, reserved := reservedKeys[key]; reserved {
			return map[string]any{"$literal": obj}
		}
	}
	return obj
}
