package expr

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/vk/invariant/internal/value"
)

// ErrFloat marks an expression that produced (or would produce) a
// floating-point intermediate, which the numeric policy forbids.
var ErrFloat = errors.New("float result is forbidden")

// Env binds variable names to Values for one evaluation. The evaluator
// never mutates it.
type Env map[string]value.Value

// Eval parses and evaluates an expression source against env. A result that
// is a Domain artifact with a distinguished "value" attribute collapses to
// that attribute.
func Eval(src string, env Env) (value.Value, error) {
	node, err := Parse(src)
	if err != nil {
		return nil, err
	}
	out, err := eval(node, env)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate expression %q: %w", src, err)
	}
	return collapse(out), nil
}

// collapse applies the scalar-wrapper convention to a final result.
func collapse(v value.Value) value.Value {
	if d, ok := v.(value.Domain); ok {
		if attr, ok := d.A.Attrs()["value"]; ok {
			return attr
		}
	}
	return v
}

// unwrap projects a Domain operand down to its "value" attribute for
// arithmetic, comparison, and builtin argument positions. Artifacts without
// one pass through untouched.
func unwrap(v value.Value) value.Value {
	return collapse(v)
}

func eval(n Node, env Env) (value.Value, error) {
	switch node := n.(type) {
	case Lit:
		return node.V, nil
	case Ident:
		v, ok := env[node.Name]
		if !ok {
			return nil, fmt.Errorf("undefined variable %q", node.Name)
		}
		return v, nil
	case Member:
		return evalMember(node, env)
	case Index:
		return evalIndex(node, env)
	case Unary:
		return evalUnary(node, env)
	case Binary:
		return evalBinary(node, env)
	case Ternary:
		cond, err := eval(node.Cond, env)
		if err != nil {
			return nil, err
		}
		b, ok := unwrap(cond).(value.Bool)
		if !ok {
			return nil, fmt.Errorf("ternary condition must be bool, got %s", cond.Kind())
		}
		if b {
			return eval(node.Then, env)
		}
		return eval(node.Else, env)
	case Call:
		return evalCall(node, env)
	}
	return nil, fmt.Errorf("unknown expression node %T", n)
}

func evalMember(node Member, env Env) (value.Value, error) {
	x, err := eval(node.X, env)
	if err != nil {
		return nil, err
	}
	switch xv := x.(type) {
	case value.Domain:
		attrs := xv.A.Attrs()
		if v, ok := attrs[node.Name]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("artifact %s has no attribute %q", xv.A.TypeName(), node.Name)
	case value.Map:
		if v, ok := xv[node.Name]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("map has no key %q", node.Name)
	}
	return nil, fmt.Errorf("cannot access field %q on %s", node.Name, x.Kind())
}

func evalIndex(node Index, env Env) (value.Value, error) {
	x, err := eval(node.X, env)
	if err != nil {
		return nil, err
	}
	i, err := eval(node.I, env)
	if err != nil {
		return nil, err
	}
	switch xv := unwrap(x).(type) {
	case value.List:
		iv, ok := unwrap(i).(value.Int)
		if !ok {
			return nil, fmt.Errorf("list index must be int, got %s", i.Kind())
		}
		idx, fits := iv.Int64()
		if !fits || idx < 0 || idx >= int64(len(xv)) {
			return nil, fmt.Errorf("list index %s out of range [0, %d)", iv.String(), len(xv))
		}
		return xv[idx], nil
	case value.Map:
		key, ok := unwrap(i).(value.Str)
		if !ok {
			return nil, fmt.Errorf("map key must be str, got %s", i.Kind())
		}
		v, ok := xv[string(key)]
		if !ok {
			return nil, fmt.Errorf("map has no key %q", string(key))
		}
		return v, nil
	}
	return nil, fmt.Errorf("cannot index %s", x.Kind())
}

func evalUnary(node Unary, env Env) (value.Value, error) {
	x, err := eval(node.X, env)
	if err != nil {
		return nil, err
	}
	switch node.Op {
	case "-":
		switch xv := unwrap(x).(type) {
		case value.Int:
			n := xv.Big()
			return value.NewIntFromBig(n.Neg(n)), nil
		case value.Decimal:
			return value.NewDecimal(xv.Dec().Neg()), nil
		}
		return nil, fmt.Errorf("cannot negate %s", x.Kind())
	case "!":
		b, ok := unwrap(x).(value.Bool)
		if !ok {
			return nil, fmt.Errorf("'!' requires bool, got %s", x.Kind())
		}
		return value.Bool(!b), nil
	}
	return nil, fmt.Errorf("unknown unary operator %q", node.Op)
}

func evalBinary(node Binary, env Env) (value.Value, error) {
	// Short-circuit combinators evaluate the right side lazily.
	if node.Op == "&&" || node.Op == "||" {
		return evalLogical(node, env)
	}
	x, err := eval(node.X, env)
	if err != nil {
		return nil, err
	}
	y, err := eval(node.Y, env)
	if err != nil {
		return nil, err
	}
	switch node.Op {
	case "+", "-", "*", "/", "%":
		return evalArithmetic(node.Op, x, y)
	case "==":
		return value.Bool(value.Equal(unwrap(x), unwrap(y))), nil
	case "!=":
		return value.Bool(!value.Equal(unwrap(x), unwrap(y))), nil
	case "<", "<=", ">", ">=":
		cmp, err := compareNatural(unwrap(x), unwrap(y))
		if err != nil {
			return nil, err
		}
		switch node.Op {
		case "<":
			return value.Bool(cmp < 0), nil
		case "<=":
			return value.Bool(cmp <= 0), nil
		case ">":
			return value.Bool(cmp > 0), nil
		}
		return value.Bool(cmp >= 0), nil
	case "in":
		return evalIn(unwrap(x), unwrap(y))
	}
	return nil, fmt.Errorf("unknown operator %q", node.Op)
}

func evalLogical(node Binary, env Env) (value.Value, error) {
	x, err := eval(node.X, env)
	if err != nil {
		return nil, err
	}
	xb, ok := unwrap(x).(value.Bool)
	if !ok {
		return nil, fmt.Errorf("%q requires bool operands, got %s", node.Op, x.Kind())
	}
	if node.Op == "&&" && !xb {
		return value.Bool(false), nil
	}
	if node.Op == "||" && bool(xb) {
		return value.Bool(true), nil
	}
	y, err := eval(node.Y, env)
	if err != nil {
		return nil, err
	}
	yb, ok := unwrap(y).(value.Bool)
	if !ok {
		return nil, fmt.Errorf("%q requires bool operands, got %s", node.Op, y.Kind())
	}
	return yb, nil
}

func evalArithmetic(op string, x, y value.Value) (value.Value, error) {
	xv, yv := unwrap(x), unwrap(y)

	// String and list concatenation are the only non-numeric '+' forms.
	if op == "+" {
		if xs, ok := xv.(value.Str); ok {
			ys, ok := yv.(value.Str)
			if !ok {
				return nil, fmt.Errorf("cannot add %s and %s", xv.Kind(), yv.Kind())
			}
			return xs + ys, nil
		}
		if xl, ok := xv.(value.List); ok {
			yl, ok := yv.(value.List)
			if !ok {
				return nil, fmt.Errorf("cannot add %s and %s", xv.Kind(), yv.Kind())
			}
			out := make(value.List, 0, len(xl)+len(yl))
			out = append(out, xl...)
			return append(out, yl...), nil
		}
	}

	xi, xIsInt := xv.(value.Int)
	yi, yIsInt := yv.(value.Int)
	if xIsInt && yIsInt {
		return intArithmetic(op, xi, yi)
	}

	xd, err := asDecimalOperand(xv, op, yv)
	if err != nil {
		return nil, err
	}
	yd, err := asDecimalOperand(yv, op, xv)
	if err != nil {
		return nil, err
	}
	switch op {
	case "+":
		return value.NewDecimal(xd.Add(yd)), nil
	case "-":
		return value.NewDecimal(xd.Sub(yd)), nil
	case "*":
		return value.NewDecimal(xd.Mul(yd)), nil
	case "/":
		if yd.IsZero() {
			return nil, fmt.Errorf("division by zero")
		}
		return value.NewDecimal(xd.Div(yd)), nil
	case "%":
		return nil, fmt.Errorf("'%%' requires int operands")
	}
	return nil, fmt.Errorf("unknown operator %q", op)
}

func intArithmetic(op string, x, y value.Int) (value.Value, error) {
	a, b := x.Big(), y.Big()
	switch op {
	case "+":
		return value.NewIntFromBig(a.Add(a, b)), nil
	case "-":
		return value.NewIntFromBig(a.Sub(a, b)), nil
	case "*":
		return value.NewIntFromBig(a.Mul(a, b)), nil
	case "/":
		if b.Sign() == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		q, r := a.QuoRem(a, b, new(big.Int))
		if r.Sign() != 0 {
			return nil, fmt.Errorf("%w: %s / %s does not yield an integer; use decimal(...)",
				ErrFloat, x.String(), y.String())
		}
		return value.NewIntFromBig(q), nil
	case "%":
		if b.Sign() == 0 {
			return nil, fmt.Errorf("modulo by zero")
		}
		return value.NewIntFromBig(a.Rem(a, b)), nil
	}
	return nil, fmt.Errorf("unknown operator %q", op)
}

// asDecimalOperand promotes an Int or Decimal for mixed decimal arithmetic.
func asDecimalOperand(v value.Value, op string, other value.Value) (decimal.Decimal, error) {
	switch vv := v.(type) {
	case value.Decimal:
		return vv.Dec(), nil
	case value.Int:
		return value.DecimalFromInt(vv).Dec(), nil
	}
	return decimal.Decimal{}, fmt.Errorf("cannot apply %q to %s and %s", op, v.Kind(), other.Kind())
}

// compareNatural orders two values of compatible kinds: numeric values
// cross-compare exactly (Int against Decimal), strings compare
// lexicographically.
func compareNatural(x, y value.Value) (int, error) {
	if xs, ok := x.(value.Str); ok {
		ys, ok := y.(value.Str)
		if !ok {
			return 0, fmt.Errorf("cannot compare str with %s", y.Kind())
		}
		switch {
		case xs < ys:
			return -1, nil
		case xs > ys:
			return 1, nil
		}
		return 0, nil
	}
	xd, xNum := numericAsDecimal(x)
	yd, yNum := numericAsDecimal(y)
	if !xNum || !yNum {
		return 0, fmt.Errorf("values of kind %s and %s are not comparable", x.Kind(), y.Kind())
	}
	return xd.Cmp(yd), nil
}

func numericAsDecimal(v value.Value) (decimal.Decimal, bool) {
	switch vv := v.(type) {
	case value.Int:
		return value.DecimalFromInt(vv).Dec(), true
	case value.Decimal:
		return vv.Dec(), true
	}
	return decimal.Decimal{}, false
}

func evalIn(x, y value.Value) (value.Value, error) {
	switch container := y.(type) {
	case value.List:
		for _, e := range container {
			if value.Equal(x, unwrap(e)) || value.Equal(x, e) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case value.Map:
		key, ok := x.(value.Str)
		if !ok {
			return nil, fmt.Errorf("'in' on a map requires a str key, got %s", x.Kind())
		}
		_, present := container[string(key)]
		return value.Bool(present), nil
	}
	return nil, fmt.Errorf("'in' requires a list or map, got %s", y.Kind())
}
