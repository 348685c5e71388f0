package graphio

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vk/invariant/internal/graph"
	"github.com/vk/invariant/internal/params"
	"github.com/vk/invariant/internal/value"
)

// FormatID identifies graph documents.
const FormatID = "invariant-graph"

// Version is the only supported document version.
const Version = 1

// reservedKeys are the single-key object names with marker meaning.
var reservedKeys = map[string]struct{}{
	"$ref": {}, "$cel": {}, "$decimal": {}, "$tuple": {}, "$literal": {}, "$icacheable": {},
}

// DecodeGraph reads a graph document. The type registry resolves
// $icacheable artifact literals; it may be nil when documents carry none.
func DecodeGraph(r io.Reader, types *value.TypeRegistry) (*graph.Graph, error) {
	doc, err := parseJSON(r)
	if err != nil {
		return nil, fmt.Errorf("parsing graph document: %w", err)
	}
	if doc.kind != jObject {
		return nil, fmt.Errorf("graph document must be an object")
	}
	format, ok := doc.lookup("format")
	if !ok || format.kind != jString || format.str != FormatID {
		return nil, fmt.Errorf("graph document must declare format %q", FormatID)
	}
	version, ok := doc.lookup("version")
	if !ok || version.kind != jNumber || version.num.String() != "1" {
		return nil, fmt.Errorf("unsupported graph document version (supported: %d)", Version)
	}
	body, ok := doc.lookup("graph")
	if !ok {
		return nil, fmt.Errorf("graph document has no \"graph\" member")
	}
	return decodeGraphBody(body, types)
}

func decodeGraphBody(body jsonValue, types *value.TypeRegistry) (*graph.Graph, error) {
	if body.kind != jObject {
		return nil, fmt.Errorf("graph must be an object of vertices")
	}
	g := graph.New()
	for _, field := range body.obj {
		v, err := decodeVertex(field.val, types)
		if err != nil {
			return nil, fmt.Errorf("vertex %q: %w", field.key, err)
		}
		if err := g.Add(field.key, v); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func decodeVertex(obj jsonValue, types *value.TypeRegistry) (graph.Vertex, error) {
	if obj.kind != jObject {
		return nil, fmt.Errorf("vertex must be an object")
	}
	kindField, ok := obj.lookup("kind")
	if !ok || kindField.kind != jString {
		return nil, fmt.Errorf("vertex must declare a string \"kind\"")
	}

	pars, err := decodeVertexParams(obj, types)
	if err != nil {
		return nil, err
	}
	deps, err := decodeDeps(obj)
	if err != nil {
		return nil, err
	}

	switch kindField.str {
	case "node":
		opName, ok := obj.lookup("op_name")
		if !ok || opName.kind != jString {
			return nil, fmt.Errorf("op vertex must declare a string \"op_name\"")
		}
		cached := true
		if c, ok := obj.lookup("cache"); ok {
			if c.kind != jBool {
				return nil, fmt.Errorf("\"cache\" must be a boolean")
			}
			cached = c.b
		}
		if cached {
			return graph.NewOp(opName.str, pars, deps)
		}
		return graph.NewEphemeralOp(opName.str, pars, deps)
	case "subgraph":
		innerBody, ok := obj.lookup("graph")
		if !ok {
			return nil, fmt.Errorf("subgraph vertex must carry a \"graph\"")
		}
		inner, err := decodeGraphBody(innerBody, types)
		if err != nil {
			return nil, err
		}
		output, ok := obj.lookup("output")
		if !ok || output.kind != jString {
			return nil, fmt.Errorf("subgraph vertex must declare a string \"output\"")
		}
		return graph.NewSub(pars, deps, inner, output.str)
	}
	return nil, fmt.Errorf("unknown vertex kind %q", kindField.str)
}

func decodeVertexParams(obj jsonValue, types *value.TypeRegistry) (params.Map, error) {
	field, ok := obj.lookup("params")
	if !ok {
		return params.Map{}, nil
	}
	if field.kind != jObject {
		return nil, fmt.Errorf("\"params\" must be an object")
	}
	out := make(params.Map, len(field.obj))
	for _, f := range field.obj {
		t, err := decodeTree(f.val, types)
		if err != nil {
			return nil, fmt.Errorf("params key %q: %w", f.key, err)
		}
		out[f.key] = t
	}
	return out, nil
}

func decodeDeps(obj jsonValue) ([]string, error) {
	field, ok := obj.lookup("deps")
	if !ok {
		return nil, nil
	}
	if field.kind != jArray {
		return nil, fmt.Errorf("\"deps\" must be an array of strings")
	}
	deps := make([]string, len(field.arr))
	for i, e := range field.arr {
		if e.kind != jString {
			return nil, fmt.Errorf("\"deps\" element %d is not a string", i)
		}
		deps[i] = e.str
	}
	return deps, nil
}

// decodeTree converts a JSON value into a parameter tree, interpreting
// single-key reserved objects as markers. Types may be nil.
func decodeTree(v jsonValue, types *value.TypeRegistry) (params.Tree, error) {
	switch v.kind {
	case jNull:
		return params.Lit{V: value.Null{}}, nil
	case jBool:
		return params.Lit{V: value.Bool(v.b)}, nil
	case jString:
		return params.Lit{V: value.Str(v.str)}, nil
	case jNumber:
		i, err := numberToInt(v.num)
		if err != nil {
			return nil, err
		}
		return params.Lit{V: i}, nil
	case jArray:
		out := make(params.List, len(v.arr))
		for i, e := range v.arr {
			t, err := decodeTree(e, types)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = t
		}
		return out, nil
	case jObject:
		if len(v.obj) == 1 {
			if _, reserved := reservedKeys[v.obj[0].key]; reserved {
				return decodeMarker(v.obj[0].key, v.obj[0].val, types)
			}
		}
		out := make(params.Map, len(v.obj))
		for _, f := range v.obj {
			t, err := decodeTree(f.val, types)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", f.key, err)
			}
			out[f.key] = t
		}
		return out, nil
	}
	return nil, fmt.Errorf("unhandled JSON value")
}

func decodeMarker(key string, v jsonValue, types *value.TypeRegistry) (params.Tree, error) {
	switch key {
	case "$ref":
		if v.kind != jString {
			return nil, fmt.Errorf("$ref must carry a dependency name string")
		}
		return params.Ref{Dep: v.str}, nil
	case "$cel":
		if v.kind != jString {
			return nil, fmt.Errorf("$cel must carry an expression string")
		}
		return params.Expr{Source: v.str}, nil
	case "$decimal":
		if v.kind != jString {
			return nil, fmt.Errorf("$decimal must carry a canonical string")
		}
		d, err := value.ParseDecimal(v.str)
		if err != nil {
			return nil, err
		}
		return params.Lit{V: d}, nil
	case "$tuple":
		if v.kind != jArray {
			return nil, fmt.Errorf("$tuple must carry an array")
		}
		out := make(params.List, len(v.arr))
		for i, e := range v.arr {
			t, err := decodeTree(e, types)
			if err != nil {
				return nil, fmt.Errorf("$tuple element %d: %w", i, err)
			}
			out[i] = t
		}
		return out, nil
	case "$literal":
		lit, err := decodeLiteral(v)
		if err != nil {
			return nil, err
		}
		return params.Lit{V: lit}, nil
	case "$icacheable":
		a, err := decodeArtifact(v, types)
		if err != nil {
			return nil, err
		}
		return params.Lit{V: value.Domain{A: a}}, nil
	}
	return nil, fmt.Errorf("unknown marker %q", key)
}

// decodeLiteral converts JSON to a plain Value with no marker
// interpretation, honouring the $literal escape.
func decodeLiteral(v jsonValue) (value.Value, error) {
	switch v.kind {
	case jNull:
		return value.Null{}, nil
	case jBool:
		return value.Bool(v.b), nil
	case jString:
		return value.Str(v.str), nil
	case jNumber:
		return numberToInt(v.num)
	case jArray:
		out := make(value.List, len(v.arr))
		for i, e := range v.arr {
			lit, err := decodeLiteral(e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = lit
		}
		return out, nil
	case jObject:
		out := make(value.Map, len(v.obj))
		for _, f := range v.obj {
			lit, err := decodeLiteral(f.val)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", f.key, err)
			}
			out[f.key] = lit
		}
		return out, nil
	}
	return nil, fmt.Errorf("unhandled JSON value")
}

func decodeArtifact(v jsonValue, types *value.TypeRegistry) (value.Artifact, error) {
	if v.kind != jObject {
		return nil, fmt.Errorf("$icacheable must carry an object")
	}
	typeName, ok := v.lookup("type")
	if !ok || typeName.kind != jString || typeName.str == "" {
		return nil, fmt.Errorf("$icacheable must have a non-empty string \"type\"")
	}
	if types == nil {
		return nil, fmt.Errorf("$icacheable type %q cannot be resolved without a type registry", typeName.str)
	}
	payload, hasPayload := v.lookup("payload_b64")
	jsonForm, hasValue := v.lookup("value")
	if hasPayload == hasValue {
		return nil, fmt.Errorf("$icacheable must have exactly one of \"payload_b64\" or \"value\"")
	}
	if hasPayload {
		if payload.kind != jString {
			return nil, fmt.Errorf("$icacheable \"payload_b64\" must be a string")
		}
		raw, err := base64.StdEncoding.DecodeString(payload.str)
		if err != nil {
			return nil, fmt.Errorf("$icacheable payload_b64 is invalid base64: %w", err)
		}
		a, err := types.Decode(typeName.str, bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("$icacheable decode failed for %q: %w", typeName.str, err)
		}
		return a, nil
	}
	lit, err := decodeLiteral(jsonForm)
	if err != nil {
		return nil, err
	}
	a, err := types.DecodeJSON(typeName.str, lit)
	if err != nil {
		return nil, fmt.Errorf("$icacheable decode failed for %q: %w", typeName.str, err)
	}
	return a, nil
}

func numberToInt(num json.Number) (value.Int, error) {
	s := num.String()
	if strings.ContainsAny(s, ".eE") {
		return value.Int{}, fmt.Errorf("number %s is not an integer; use a {\"$decimal\": ...} marker", s)
	}
	return value.ParseInt(s)
}
