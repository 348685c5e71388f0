package hclgraph

import (
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/vk/invariant/internal/params"
	"github.com/vk/invariant/internal/value"
)

// Marker values travel through HCL evaluation as capsules and unwrap again
// during cty-to-tree conversion.
var (
	refCapsule     = cty.Capsule("ref", reflect.TypeOf(params.Ref{}))
	exprCapsule    = cty.Capsule("cel", reflect.TypeOf(params.Expr{}))
	decimalCapsule = cty.Capsule("decimal", reflect.TypeOf(value.Decimal{}))
)

// markerFunctions are the functions available inside graph files.
func markerFunctions() map[string]function.Function {
	return map[string]function.Function{
		"ref": function.New(&function.Spec{
			Params: []function.Parameter{{Name: "dep", Type: cty.String}},
			Type:   function.StaticReturnType(refCapsule),
			Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
				return cty.CapsuleVal(refCapsule, &params.Ref{Dep: args[0].AsString()}), nil
			},
		}),
		"cel": function.New(&function.Spec{
			Params: []function.Parameter{{Name: "expr", Type: cty.String}},
			Type:   function.StaticReturnType(exprCapsule),
			Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
				return cty.CapsuleVal(exprCapsule, &params.Expr{Source: args[0].AsString()}), nil
			},
		}),
		"decimal": function.New(&function.Spec{
			Params: []function.Parameter{{Name: "literal", Type: cty.String}},
			Type:   function.StaticReturnType(decimalCapsule),
			Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
				d, err := value.ParseDecimal(args[0].AsString())
				if err != nil {
					return cty.NilVal, err
				}
				return cty.CapsuleVal(decimalCapsule, &d), nil
			},
		}),
	}
}
