package graphio

import (
	"bytes"
	"fmt"

	"github.com/vk/invariant/internal/value"
)

// UnmarshalContext decodes a JSON object into execution context bindings.
// Value markers ($decimal, $tuple, $literal, $icacheable) are honoured;
// the dependency markers $ref and $cel have no meaning outside a vertex
// and are rejected.
func UnmarshalContext(data []byte, types *value.TypeRegistry) (map[string]value.Value, error) {
	doc, err := parseJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing context: %w", err)
	}
	if doc.kind != jObject {
		return nil, fmt.Errorf("context must be a JSON object")
	}
	out := make(map[string]value.Value, len(doc.obj))
	for _, f := range doc.obj {
		v, err := decodeContextValue(f.val, types)
		if err != nil {
			return nil, fmt.Errorf("context key %q: %w", f.key, err)
		}
		out[f.key] = v
	}
	return out, nil
}

func decodeContextValue(v jsonValue, types *value.TypeRegistry) (value.Value, error) {
	if v.kind == jObject && len(v.obj) == 1 {
		key, val := v.obj[0].key, v.obj[0].val
		switch key {
		case "$ref", "$cel":
			return nil, fmt.Errorf("marker %s is not valid in a context value", key)
		case "$decimal":
			if val.kind != jString {
				return nil, fmt.Errorf("$decimal must carry a canonical string")
			}
			return value.ParseDecimal(val.str)
		case "$tuple":
			if val.kind != jArray {
				return nil, fmt.Errorf("$tuple must carry an array")
			}
			out := make(value.List, len(val.arr))
			for i, e := range val.arr {
				ev, err := decodeContextValue(e, types)
				if err != nil {
					return nil, fmt.Errorf("$tuple element %d: %w", i, err)
				}
				out[i] = ev
			}
			return out, nil
		case "$literal":
			return decodeLiteral(val)
		case "$icacheable":
			a, err := decodeArtifact(val, types)
			if err != nil {
				return nil, err
			}
			return value.Domain{A: a}, nil
		}
	}
	switch v.kind {
	case jArray:
		out := make(value.List, len(v.arr))
		for i, e := range v.arr {
			ev, err := decodeContextValue(e, types)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = ev
		}
		return out, nil
	case jObject:
		out := make(value.Map, len(v.obj))
		for _, f := range v.obj {
			ev, err := decodeContextValue(f.val, types)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", f.key, err)
			}
			out[f.key] = ev
		}
		return out, nil
	}
	return decodeLiteral(v)
}
