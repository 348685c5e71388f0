package params

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/invariant/internal/expr"
	"github.com/vk/invariant/internal/value"
)

// ErrResolution marks failures during parameter resolution: an unbound
// reference, an expression error, or a forbidden float result.
var ErrResolution = errors.New("parameter resolution failed")

// Resolve produces the manifest for a vertex's parameter tree given the
// environment of its dependency artifacts and context values.
func Resolve(p Map, env expr.Env) (map[string]value.Value, error) {
	manifest := make(map[string]value.Value, len(p))
	for key, t := range p {
		v, err := resolveTree(t, env)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %w", ErrResolution, key, err)
		}
		manifest[key] = v
	}
	return manifest, nil
}

// ResolveTree resolves a single parameter tree node.
func ResolveTree(t Tree, env expr.Env) (value.Value, error) {
	v, err := resolveTree(t, env)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResolution, err)
	}
	return v, nil
}

func resolveTree(t Tree, env expr.Env) (value.Value, error) {
	switch node := t.(type) {
	case Lit:
		return resolveValue(node.V, env)
	case Ref:
		v, ok := env[node.Dep]
		if !ok {
			return nil, fmt.Errorf("reference to %q is not bound in the environment", node.Dep)
		}
		return v, nil
	case Expr:
		return expr.Eval(node.Source, env)
	case List:
		out := make(value.List, len(node))
		for i, e := range node {
			v, err := resolveTree(e, env)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	case Map:
		out := make(value.Map, len(node))
		for k, e := range node {
			v, err := resolveTree(e, env)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown parameter node %T", t)
}

// resolveValue walks literal Values so strings nested inside literal lists
// and maps still interpolate.
func resolveValue(v value.Value, env expr.Env) (value.Value, error) {
	switch vv := v.(type) {
	case value.Str:
		if !strings.Contains(string(vv), "${") {
			return vv, nil
		}
		return interpolate(string(vv), env)
	case value.List:
		out := make(value.List, len(vv))
		for i, e := range vv {
			r, err := resolveValue(e, env)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = r
		}
		return out, nil
	case value.Map:
		out := make(value.Map, len(vv))
		for k, e := range vv {
			r, err := resolveValue(e, env)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = r
		}
		return out, nil
	}
	return v, nil
}
