package poly

import (
	"fmt"
	"math/big"

	"github.com/vk/invariant/internal/registry"
	"github.com/vk/invariant/internal/value"
)

// Module registers the polynomial operations under the "poly:" prefix and
// the Polynomial artifact decoders.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) error {
	r.Types.Register(TypeName, Decode)
	r.Types.RegisterJSON(TypeName, DecodeJSON)
	return r.RegisterPackage("poly", map[string]*registry.Op{
		"from_coefficients": {
			Params: []registry.Param{{Name: "coefficients", Required: true}},
			Apply:  applyFromCoefficients,
		},
		"add": {
			Params: []registry.Param{
				{Name: "a", Required: true},
				{Name: "b", Required: true},
			},
			Apply: func(args map[string]value.Value) (value.Value, error) {
				a, err := asPolynomial("a", args["a"])
				if err != nil {
					return nil, err
				}
				b, err := asPolynomial("b", args["b"])
				if err != nil {
					return nil, err
				}
				return value.Domain{A: a.Add(b)}, nil
			},
		},
		"multiply": {
			Params: []registry.Param{
				{Name: "a", Required: true},
				{Name: "b", Required: true},
			},
			Apply: func(args map[string]value.Value) (value.Value, error) {
				a, err := asPolynomial("a", args["a"])
				if err != nil {
					return nil, err
				}
				b, err := asPolynomial("b", args["b"])
				if err != nil {
					return nil, err
				}
				return value.Domain{A: a.Mul(b)}, nil
			},
		},
		"scale": {
			Params: []registry.Param{
				{Name: "poly", Required: true},
				{Name: "scalar", Required: true},
			},
			Apply: func(args map[string]value.Value) (value.Value, error) {
				p, err := asPolynomial("poly", args["poly"])
				if err != nil {
					return nil, err
				}
				k, err := asInt("scalar", args["scalar"])
				if err != nil {
					return nil, err
				}
				return value.Domain{A: p.Scale(k)}, nil
			},
		},
		"derivative": {
			Params: []registry.Param{{Name: "poly", Required: true}},
			Apply: func(args map[string]value.Value) (value.Value, error) {
				p, err := asPolynomial("poly", args["poly"])
				if err != nil {
					return nil, err
				}
				return value.Domain{A: p.Derivative()}, nil
			},
		},
		"evaluate": {
			Params: []registry.Param{
				{Name: "poly", Required: true},
				{Name: "x", Required: true},
			},
			Apply: func(args map[string]value.Value) (value.Value, error) {
				p, err := asPolynomial("poly", args["poly"])
				if err != nil {
					return nil, err
				}
				x, err := asInt("x", args["x"])
				if err != nil {
					return nil, err
				}
				return value.NewIntFromBig(p.Evaluate(x)), nil
			},
		},
	})
}

func applyFromCoefficients(args map[string]value.Value) (value.Value, error) {
	l, ok := args["coefficients"].(value.List)
	if !ok {
		return nil, fmt.Errorf("coefficients must be a list, got %s", args["coefficients"].Kind())
	}
	p, err := fromCoefficientList(l)
	if err != nil {
		return nil, err
	}
	return value.Domain{A: p}, nil
}

func asPolynomial(name string, v value.Value) (*Polynomial, error) {
	d, ok := v.(value.Domain)
	if !ok {
		return nil, fmt.Errorf("parameter %q must be a polynomial, got %s", name, v.Kind())
	}
	p, ok := d.A.(*Polynomial)
	if !ok {
		return nil, fmt.Errorf("parameter %q must be a polynomial, got artifact %s", name, d.A.TypeName())
	}
	return p, nil
}

func asInt(name string, v value.Value) (*big.Int, error) {
	i, ok := v.(value.Int)
	if !ok {
		return nil, fmt.Errorf("parameter %q must be int, got %s", name, v.Kind())
	}
	return i.Big(), nil
}
