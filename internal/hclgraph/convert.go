package hclgraph

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/invariant/internal/params"
	"github.com/vk/invariant/internal/value"
)

// ctyToTree converts an evaluated HCL value into a parameter tree,
// unwrapping marker capsules and rejecting non-integer numbers.
func ctyToTree(v cty.Value) (params.Tree, error) {
	if v.IsNull() {
		return params.Lit{V: value.Null{}}, nil
	}
	ty := v.Type()
	switch {
	case ty.Equals(refCapsule):
		return *(v.EncapsulatedValue().(*params.Ref)), nil
	case ty.Equals(exprCapsule):
		return *(v.EncapsulatedValue().(*params.Expr)), nil
	case ty.Equals(decimalCapsule):
		return params.Lit{V: *(v.EncapsulatedValue().(*value.Decimal))}, nil
	case ty.Equals(cty.String):
		return params.Lit{V: value.Str(v.AsString())}, nil
	case ty.Equals(cty.Bool):
		return params.Lit{V: value.Bool(v.True())}, nil
	case ty.Equals(cty.Number):
		i, err := numberToInt(v)
		if err != nil {
			return nil, err
		}
		return params.Lit{V: i}, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make(params.List, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			t, err := ctyToTree(ev)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", len(out), err)
			}
			out = append(out, t)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(params.Map, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			kv, ev := it.Element()
			key := kv.AsString()
			t, err := ctyToTree(ev)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			out[key] = t
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
}

func numberToInt(v cty.Value) (value.Int, error) {
	bf := v.AsBigFloat()
	if !bf.IsInt() {
		return value.Int{}, fmt.Errorf("number %s is not an integer; use decimal(%q)",
			bf.Text('f', -1), bf.Text('f', -1))
	}
	i, _ := bf.Int(nil)
	return value.NewIntFromBig(i), nil
}

// ctyToStrings converts a deps attribute value into a string slice.
func ctyToStrings(v cty.Value) ([]string, error) {
	if v.IsNull() {
		return nil, nil
	}
	ty := v.Type()
	if !ty.IsTupleType() && !ty.IsListType() && !ty.IsSetType() {
		return nil, fmt.Errorf("deps must be a list of strings, got %s", ty.FriendlyName())
	}
	var out []string
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		if !ev.Type().Equals(cty.String) || ev.IsNull() {
			return nil, fmt.Errorf("deps element %d is not a string", len(out))
		}
		out = append(out, ev.AsString())
	}
	return out, nil
}
