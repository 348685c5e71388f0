package value

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ErrNotCacheable marks a Go value that has no place in the Value universe:
// floats, byte strings, and arbitrary objects.
var ErrNotCacheable = errors.New("value is not cacheable")

// FromGo converts untyped Go data into the Value universe. It is the single
// conversion boundary: floats and byte strings fail here, so everything past
// it is cacheable by construction.
func FromGo(v any) (Value, error) {
	switch vv := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return vv, nil
	case Artifact:
		return Domain{A: vv}, nil
	case bool:
		return Bool(vv), nil
	case int:
		return NewInt(int64(vv)), nil
	case int32:
		return NewInt(int64(vv)), nil
	case int64:
		return NewInt(vv), nil
	case uint32:
		return NewInt(int64(vv)), nil
	case *big.Int:
		return NewIntFromBig(vv), nil
	case decimal.Decimal:
		return NewDecimal(vv), nil
	case string:
		return Str(vv), nil
	case float32, float64:
		return nil, fmt.Errorf("%w: float %v (use a decimal)", ErrNotCacheable, vv)
	case []byte:
		return nil, fmt.Errorf("%w: byte string", ErrNotCacheable)
	case []any:
		out := make(List, len(vv))
		for i, e := range vv {
			ev, err := FromGo(e)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			out[i] = ev
		}
		return out, nil
	case map[string]any:
		out := make(Map, len(vv))
		for k, e := range vv {
			ev, err := FromGo(e)
			if err != nil {
				return nil, fmt.Errorf("map key %q: %w", k, err)
			}
			out[k] = ev
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrNotCacheable, v)
}

// MustFromGo is FromGo for literals known to be cacheable; it panics
// otherwise. Intended for tests and fixed tables.
func MustFromGo(v any) Value {
	out, err := FromGo(v)
	if err != nil {
		panic(err)
	}
	return out
}
