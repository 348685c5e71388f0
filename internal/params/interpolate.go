package params

import (
	"strings"

	"github.com/vk/invariant/internal/expr"
	"github.com/vk/invariant/internal/value"
)

// segment is one piece of an interpolated string: literal text or the
// source of a ${...} expression.
type segment struct {
	text   string
	expr   string
	isExpr bool
}

// interpolate resolves a string containing ${...} segments. Exactly one
// segment surrounded only by whitespace resolves to the expression's native
// result; anything else stringifies each segment into the literal text.
func interpolate(s string, env expr.Env) (value.Value, error) {
	segs := splitSegments(s)

	exprCount := 0
	whitespaceOnly := true
	for _, seg := range segs {
		if seg.isExpr {
			exprCount++
		} else if strings.TrimSpace(seg.text) != "" {
			whitespaceOnly = false
		}
	}
	if exprCount == 0 {
		return value.Str(s), nil
	}
	if exprCount == 1 && whitespaceOnly {
		for _, seg := range segs {
			if seg.isExpr {
				return expr.Eval(strings.TrimSpace(seg.expr), env)
			}
		}
	}

	var b strings.Builder
	for _, seg := range segs {
		if !seg.isExpr {
			b.WriteString(seg.text)
			continue
		}
		v, err := expr.Eval(strings.TrimSpace(seg.expr), env)
		if err != nil {
			return nil, err
		}
		b.WriteString(value.Stringify(v))
	}
	return value.Str(b.String()), nil
}

// splitSegments scans for ${ openers and their balanced closing braces. An
// opener with no balanced close is literal text.
func splitSegments(s string) []segment {
	var segs []segment
	for len(s) > 0 {
		open := strings.Index(s, "${")
		if open < 0 {
			segs = append(segs, segment{text: s})
			break
		}
		closing := matchBrace(s, open+2)
		if closing < 0 {
			// Unbalanced: the rest is literal.
			segs = append(segs, segment{text: s})
			break
		}
		if open > 0 {
			segs = append(segs, segment{text: s[:open]})
		}
		segs = append(segs, segment{expr: s[open+2 : closing], isExpr: true})
		s = s[closing+1:]
	}
	return segs
}

// matchBrace returns the index of the brace that balances the segment
// opened just before from, or -1 if the segment never closes.
func matchBrace(s string, from int) int {
	depth := 1
	for i := from; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
