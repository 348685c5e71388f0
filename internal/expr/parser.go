package expr

import (
	"fmt"

	"github.com/vk/invariant/internal/value"
)

// parser is a recursive-descent parser with one token of lookahead.
type parser struct {
	lex *lexer
	tok token
	src string
}

// Parse turns an expression source string into an AST.
func Parse(src string) (Node, error) {
	p := &parser{lex: newLexer(src), src: src}
	if err := p.advance(); err != nil {
		return nil, err
	}
	node, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if p.tok.typ != tokEOF {
		return nil, p.errorf("unexpected trailing input %q", p.tok.text)
	}
	return node, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("failed to parse expression %q: "+format,
		append([]any{p.src}, args...)...)
}

func (p *parser) expect(typ tokenType, what string) error {
	if p.tok.typ != typ {
		return p.errorf("expected %s, found %q", what, p.tok.text)
	}
	return p.advance()
}

func (p *parser) parseTernary() (Node, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.typ != tokQuestion {
		return cond, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	then, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokColon, "':'"); err != nil {
		return nil, err
	}
	els, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return Ternary{Cond: cond, Then: then, Else: els}, nil
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.typ == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: "||", X: left, Y: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.tok.typ == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: "&&", X: left, Y: right}
	}
	return left, nil
}

var relOps = map[tokenType]string{
	tokEq: "==", tokNeq: "!=", tokLt: "<", tokLe: "<=",
	tokGt: ">", tokGe: ">=", tokIn: "in",
}

func (p *parser) parseRelational() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := relOps[p.tok.typ]
		if !ok {
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, X: left, Y: right}
	}
}

func (p *parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.tok.typ == tokPlus || p.tok.typ == tokMinus {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, X: left, Y: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.typ == tokStar || p.tok.typ == tokSlash || p.tok.typ == tokPercent {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, X: left, Y: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	switch p.tok.typ {
	case tokMinus:
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{Op: "-", X: x}, nil
	case tokNot:
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{Op: "!", X: x}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.tok.typ {
		case tokDot:
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.typ != tokIdent {
				return nil, p.errorf("expected field name after '.', found %q", p.tok.text)
			}
			name := p.tok.text
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.typ == tokLParen {
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				node = Call{Fn: name, Recv: node, Args: args}
			} else {
				node = Member{X: node, Name: name}
			}
		case tokLBracket:
			if err := p.advance(); err != nil {
				return nil, err
			}
			idx, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			if err := p.expect(tokRBracket, "']'"); err != nil {
				return nil, err
			}
			node = Index{X: node, I: idx}
		default:
			return node, nil
		}
	}
}

func (p *parser) parsePrimary() (Node, error) {
	switch p.tok.typ {
	case tokInt:
		i, err := value.ParseInt(p.tok.text)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return Lit{V: i}, nil
	case tokString:
		s := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return Lit{V: value.Str(s)}, nil
	case tokTrue, tokFalse:
		b := p.tok.typ == tokTrue
		if err := p.advance(); err != nil {
			return nil, err
		}
		return Lit{V: value.Bool(b)}, nil
	case tokNull:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return Lit{V: value.Null{}}, nil
	case tokIdent:
		name := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.typ == tokLParen {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return Call{Fn: name, Args: args}, nil
		}
		return Ident{Name: name}, nil
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		node, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return node, nil
	case tokEOF:
		return nil, p.errorf("unexpected end of expression")
	}
	return nil, p.errorf("unexpected token %q", p.tok.text)
}

// parseArgs consumes '(' expr, ... ')'. The opening paren is the current
// token on entry.
func (p *parser) parseArgs() ([]Node, error) {
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	var args []Node
	if p.tok.typ == tokRParen {
		return args, p.advance()
	}
	for {
		arg, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		switch p.tok.typ {
		case tokComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case tokRParen:
			return args, p.advance()
		default:
			return nil, p.errorf("expected ',' or ')' in argument list, found %q", p.tok.text)
		}
	}
}
