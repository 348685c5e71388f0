package value

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDecimal
	KindStr
	KindList
	KindMap
	KindDomain
)

// String returns the lowercase variant name, used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindStr:
		return "str"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindDomain:
		return "domain"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is a member of the closed cacheable universe. The set of
// implementations is fixed; Domain is the only extension point, and it
// extends the universe with opaque artifacts, not with new variants.
type Value interface {
	Kind() Kind
	isValue()
}

// Null is the absence of a value.
type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) isValue()   {}

// Bool is a boolean Value.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) isValue()   {}

// Int is an arbitrary-precision signed integer. The zero Int is 0.
type Int struct {
	n *big.Int
}

func (Int) Kind() Kind { return KindInt }
func (Int) isValue()   {}

// NewInt returns an Int holding v.
func NewInt(v int64) Int {
	return Int{n: big.NewInt(v)}
}

// NewIntFromBig returns an Int holding a copy of n.
func NewIntFromBig(n *big.Int) Int {
	return Int{n: new(big.Int).Set(n)}
}

// ParseInt parses a base-10 integer literal.
func ParseInt(s string) (Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Int{}, fmt.Errorf("invalid integer literal %q", s)
	}
	return Int{n: n}, nil
}

// Big returns a copy of the underlying integer. The Int itself stays frozen.
func (i Int) Big() *big.Int {
	if i.n == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(i.n)
}

// Int64 reports the value as an int64 when it fits.
func (i Int) Int64() (int64, bool) {
	if i.n == nil {
		return 0, true
	}
	return i.n.Int64(), i.n.IsInt64()
}

// String returns the decimal ASCII form, "-" prefixed for negatives,
// no leading zeros except "0" itself.
func (i Int) String() string {
	if i.n == nil {
		return "0"
	}
	return i.n.String()
}

// Decimal is an exact decimal number. Its canonical string form carries no
// trailing non-significant zeros ("1.50" canonicalises to "1.5") and
// normalises negative zero to "0", so hashing and equality agree with
// numeric value.
type Decimal struct {
	d decimal.Decimal
}

func (Decimal) Kind() Kind { return KindDecimal }
func (Decimal) isValue()   {}

// ParseDecimal parses a decimal literal such as "3.14" or "-0.5".
func ParseDecimal(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid decimal literal %q: %w", s, err)
	}
	return Decimal{d: d}, nil
}

// DecimalFromInt promotes an Int to a Decimal with scale zero.
func DecimalFromInt(i Int) Decimal {
	return Decimal{d: decimal.NewFromBigInt(i.Big(), 0)}
}

// NewDecimal wraps an existing decimal value.
func NewDecimal(d decimal.Decimal) Decimal {
	return Decimal{d: d}
}

// Dec returns the underlying decimal for arithmetic.
func (d Decimal) Dec() decimal.Decimal { return d.d }

// Canonical returns the canonical string form used for hashing and
// equality: fixed point, trailing fractional zeros trimmed, "-0" as "0".
func (d Decimal) Canonical() string {
	s := d.d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "" || s == "-0" || s == "-" {
		s = "0"
	}
	return s
}

func (d Decimal) String() string { return d.Canonical() }

// Str is UTF-8 text.
type Str string

func (Str) Kind() Kind { return KindStr }
func (Str) isValue()   {}

// List is an ordered sequence of Values.
type List []Value

func (List) Kind() Kind { return KindList }
func (List) isValue()   {}

// Map is a mapping from string to Value. Iteration order is irrelevant for
// hashing and equality; callers must not rely on it.
type Map map[string]Value

func (Map) Kind() Kind { return KindMap }
func (Map) isValue()   {}

// SortedKeys returns the map's keys in lexicographic order.
func (m Map) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Domain wraps an opaque artifact into the Value universe.
type Domain struct {
	A Artifact
}

func (Domain) Kind() Kind { return KindDomain }
func (Domain) isValue()   {}

// Equal reports structural equality. Variants must match; contents compare
// recursively. Domain values compare by type name and stable hash.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Int:
		return av.Big().Cmp(b.(Int).Big()) == 0
	case Decimal:
		return av.Canonical() == b.(Decimal).Canonical()
	case Str:
		return av == b.(Str)
	case List:
		bv := b.(List)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv := b.(Map)
		if len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !Equal(v, bvv) {
				return false
			}
		}
		return true
	case Domain:
		bd := b.(Domain)
		if av.A.TypeName() != bd.A.TypeName() {
			return false
		}
		ah, bh := av.A.StableHash(), bd.A.StableHash()
		return ah == bh
	}
	return false
}

// Stringify renders a Value as deterministic text, used when interpolating
// expression results into strings.
func Stringify(v Value) string {
	switch vv := v.(type) {
	case nil:
		return "null"
	case Null:
		return "null"
	case Bool:
		if vv {
			return "true"
		}
		return "false"
	case Int:
		return vv.String()
	case Decimal:
		return vv.Canonical()
	case Str:
		return string(vv)
	case List:
		parts := make([]string, len(vv))
		for i, e := range vv {
			parts[i] = Stringify(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Map:
		keys := vv.SortedKeys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + Stringify(vv[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case Domain:
		if attr, ok := vv.A.Attrs()["value"]; ok {
			return Stringify(attr)
		}
		h := vv.A.StableHash()
		return fmt.Sprintf("%s(%x)", vv.A.TypeName(), h[:6])
	}
	return ""
}
