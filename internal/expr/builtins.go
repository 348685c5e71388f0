package expr

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/vk/invariant/internal/value"
)

// evalCall dispatches a Call node against the fixed builtin table. The
// string predicates accept both the method form ("s".contains("x")) and the
// two-argument function form (contains(s, "x")).
func evalCall(node Call, env Env) (value.Value, error) {
	args := make([]value.Value, 0, len(node.Args)+1)
	if node.Recv != nil {
		recv, err := eval(node.Recv, env)
		if err != nil {
			return nil, err
		}
		args = append(args, recv)
	}
	for _, a := range node.Args {
		v, err := eval(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	switch node.Fn {
	case "decimal":
		if err := arity(node.Fn, args, 1); err != nil {
			return nil, err
		}
		return builtinDecimal(args[0])
	case "min", "max":
		if err := arity(node.Fn, args, 2); err != nil {
			return nil, err
		}
		cmp, err := compareNatural(unwrap(args[0]), unwrap(args[1]))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Fn, err)
		}
		// The original operand comes back, not its unwrapped projection.
		if (node.Fn == "min") == (cmp <= 0) {
			return args[0], nil
		}
		return args[1], nil
	case "size":
		if err := arity(node.Fn, args, 1); err != nil {
			return nil, err
		}
		return builtinSize(args[0])
	case "contains", "startsWith", "endsWith", "matches":
		if err := arity(node.Fn, args, 2); err != nil {
			return nil, err
		}
		return builtinStringPredicate(node.Fn, args[0], args[1])
	}
	return nil, fmt.Errorf("unknown function %q", node.Fn)
}

func arity(fn string, args []value.Value, want int) error {
	if len(args) != want {
		return fmt.Errorf("%s expects %d argument(s), got %d", fn, want, len(args))
	}
	return nil
}

func builtinDecimal(v value.Value) (value.Value, error) {
	switch vv := unwrap(v).(type) {
	case value.Decimal:
		return vv, nil
	case value.Int:
		return value.DecimalFromInt(vv), nil
	case value.Str:
		d, err := value.ParseDecimal(string(vv))
		if err != nil {
			return nil, fmt.Errorf("decimal: %w", err)
		}
		return d, nil
	}
	return nil, fmt.Errorf("decimal expects int, str, or decimal, got %s", v.Kind())
}

func builtinSize(v value.Value) (value.Value, error) {
	switch vv := unwrap(v).(type) {
	case value.Str:
		return value.NewInt(int64(utf8.RuneCountInString(string(vv)))), nil
	case value.List:
		return value.NewInt(int64(len(vv))), nil
	case value.Map:
		return value.NewInt(int64(len(vv))), nil
	}
	return nil, fmt.Errorf("size expects str, list, or map, got %s", v.Kind())
}

func builtinStringPredicate(fn string, recv, arg value.Value) (value.Value, error) {
	s, ok := unwrap(recv).(value.Str)
	if !ok {
		return nil, fmt.Errorf("%s expects a str receiver, got %s", fn, recv.Kind())
	}
	pat, ok := unwrap(arg).(value.Str)
	if !ok {
		return nil, fmt.Errorf("%s expects a str argument, got %s", fn, arg.Kind())
	}
	switch fn {
	case "contains":
		return value.Bool(strings.Contains(string(s), string(pat))), nil
	case "startsWith":
		return value.Bool(strings.HasPrefix(string(s), string(pat))), nil
	case "endsWith":
		return value.Bool(strings.HasSuffix(string(s), string(pat))), nil
	case "matches":
		re, err := regexp.Compile(string(pat))
		if err != nil {
			return nil, fmt.Errorf("matches: invalid pattern %q: %w", string(pat), err)
		}
		return value.Bool(re.MatchString(string(s))), nil
	}
	return nil, fmt.Errorf("unknown function %q", fn)
}
