// Package stdlib provides the basic data-manipulation operations every
// embedding registers: identity, arithmetic, and dict/list construction.
package stdlib

import (
	"fmt"

	"github.com/vk/invariant/internal/registry"
	"github.com/vk/invariant/internal/value"
)

// Module registers the stdlib operations under their bare names.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) error {
	return r.RegisterPackage("", map[string]*registry.Op{
		"identity": {
			Params: []registry.Param{{Name: "value", Required: true}},
			Apply: func(args map[string]value.Value) (value.Value, error) {
				return args["value"], nil
			},
		},
		"add": {
			Params: []registry.Param{
				{Name: "a", Required: true},
				{Name: "b", Required: true},
			},
			Apply: func(args map[string]value.Value) (value.Value, error) {
				return arith("add", args["a"], args["b"])
			},
		},
		"multiply": {
			Params: []registry.Param{
				{Name: "a", Required: true},
				{Name: "b", Required: true},
			},
			Apply: func(args map[string]value.Value) (value.Value, error) {
				return arith("multiply", args["a"], args["b"])
			},
		},
		"from_integer": {
			Params: []registry.Param{{Name: "value", Required: true}},
			Apply: func(args map[string]value.Value) (value.Value, error) {
				i, ok := unwrap(args["value"]).(value.Int)
				if !ok {
					return nil, fmt.Errorf("from_integer requires an int value, got %s", args["value"].Kind())
				}
				return i, nil
			},
		},
		"dict_get": {
			Params: []registry.Param{
				{Name: "dict", Required: true},
				{Name: "key", Required: true},
			},
			Apply: applyDictGet,
		},
		"dict_merge": {
			Params: []registry.Param{{Name: "dicts", Required: true}},
			Apply:  applyDictMerge,
		},
		"list_append": {
			Params: []registry.Param{
				{Name: "list", Required: true},
				{Name: "item", Required: true},
			},
			Apply: applyListAppend,
		},
		// The constructors take their entries through the catch-all, so any
		// manifest shape builds a dict or list.
		"make_dict": {
			CatchAll: true,
			Apply: func(args map[string]value.Value) (value.Value, error) {
				out := make(value.Map, len(args))
				for k, v := range args {
					out[k] = v
				}
				return out, nil
			},
		},
		"make_list": {
			CatchAll: true,
			Apply: func(args map[string]value.Value) (value.Value, error) {
				out := make(value.List, 0, len(args))
				for _, k := range value.Map(args).SortedKeys() {
					out = append(out, args[k])
				}
				return out, nil
			},
		},
	})
}

func applyDictGet(args map[string]value.Value) (value.Value, error) {
	m, ok := unwrap(args["dict"]).(value.Map)
	if !ok {
		return nil, fmt.Errorf("dict_get requires a map, got %s", args["dict"].Kind())
	}
	key, ok := unwrap(args["key"]).(value.Str)
	if !ok {
		return nil, fmt.Errorf("dict_get requires a str key, got %s", args["key"].Kind())
	}
	v, ok := m[string(key)]
	if !ok {
		return nil, fmt.Errorf("dict_get: key %q not found", string(key))
	}
	return v, nil
}

func applyDictMerge(args map[string]value.Value) (value.Value, error) {
	dicts, ok := unwrap(args["dicts"]).(value.List)
	if !ok {
		return nil, fmt.Errorf("dict_merge requires a list of maps, got %s", args["dicts"].Kind())
	}
	out := make(value.Map)
	for i, e := range dicts {
		m, ok := unwrap(e).(value.Map)
		if !ok {
			return nil, fmt.Errorf("dict_merge: element %d is %s, not a map", i, e.Kind())
		}
		// Later dicts override earlier ones.
		for k, v := range m {
			out[k] = v
		}
	}
	return out, nil
}

func applyListAppend(args map[string]value.Value) (value.Value, error) {
	l, ok := unwrap(args["list"]).(value.List)
	if !ok {
		return nil, fmt.Errorf("list_append requires a list, got %s", args["list"].Kind())
	}
	out := make(value.List, 0, len(l)+1)
	out = append(out, l...)
	return append(out, args["item"]), nil
}

// arith adds or multiplies two numerics: Int when both are Int, Decimal
// otherwise.
func arith(op string, a, b value.Value) (value.Value, error) {
	av, err := numeric(op, "a", a)
	if err != nil {
		return nil, err
	}
	bv, err := numeric(op, "b", b)
	if err != nil {
		return nil, err
	}
	ai, aInt := av.(value.Int)
	bi, bInt := bv.(value.Int)
	if aInt && bInt {
		x, y := ai.Big(), bi.Big()
		if op == "add" {
			return value.NewIntFromBig(x.Add(x, y)), nil
		}
		return value.NewIntFromBig(x.Mul(x, y)), nil
	}
	ad, bd := promote(av), promote(bv)
	if op == "add" {
		return value.NewDecimal(ad.Dec().Add(bd.Dec())), nil
	}
	return value.NewDecimal(ad.Dec().Mul(bd.Dec())), nil
}

func numeric(op, name string, v value.Value) (value.Value, error) {
	switch vv := unwrap(v).(type) {
	case value.Int:
		return vv, nil
	case value.Decimal:
		return vv, nil
	}
	return nil, fmt.Errorf("%s: parameter %q must be numeric, got %s", op, name, v.Kind())
}

func promote(v value.Value) value.Decimal {
	if i, ok := v.(value.Int); ok {
		return value.DecimalFromInt(i)
	}
	return v.(value.Decimal)
}

// unwrap projects a scalar-wrapping artifact down to its value attribute.
func unwrap(v value.Value) value.Value {
	if d, ok := v.(value.Domain); ok {
		if attr, ok := d.A.Attrs()["value"]; ok {
			return attr
		}
	}
	return v
}
