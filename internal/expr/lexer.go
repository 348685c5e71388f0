package expr

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenType represents the kind of token.
type tokenType int

const (
	tokEOF tokenType = iota

	// Literals & identifiers
	tokIdent
	tokInt
	tokString

	// Keywords
	tokTrue
	tokFalse
	tokNull
	tokIn

	// Operators
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokEq
	tokNeq
	tokLt
	tokLe
	tokGt
	tokGe
	tokAnd
	tokOr
	tokNot

	// Punctuation
	tokQuestion
	tokColon
	tokDot
	tokComma
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
)

type token struct {
	typ  tokenType
	text string
	pos  int
}

var keywords = map[string]tokenType{
	"true":  tokTrue,
	"false": tokFalse,
	"null":  tokNull,
	"in":    tokIn,
}

// lexer produces the token stream for one expression source.
type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func (l *lexer) errorf(pos int, format string, args ...any) error {
	return fmt.Errorf("expression %q at offset %d: "+format,
		append([]any{l.src, pos}, args...)...)
}

// next returns the next token or a lexing error.
func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{typ: tokEOF, pos: l.pos}, nil
	}
	start := l.pos
	c := l.src[l.pos]

	switch {
	case isDigit(c):
		return l.scanNumber(start)
	case c == '"' || c == '\'':
		return l.scanString(start)
	case isIdentStart(c):
		l.pos++
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		text := l.src[start:l.pos]
		if kw, ok := keywords[text]; ok {
			return token{typ: kw, text: text, pos: start}, nil
		}
		return token{typ: tokIdent, text: text, pos: start}, nil
	}

	two := ""
	if l.pos+1 < len(l.src) {
		two = l.src[l.pos : l.pos+2]
	}
	switch two {
	case "==":
		l.pos += 2
		return token{typ: tokEq, text: two, pos: start}, nil
	case "!=":
		l.pos += 2
		return token{typ: tokNeq, text: two, pos: start}, nil
	case "<=":
		l.pos += 2
		return token{typ: tokLe, text: two, pos: start}, nil
	case ">=":
		l.pos += 2
		return token{typ: tokGe, text: two, pos: start}, nil
	case "&&":
		l.pos += 2
		return token{typ: tokAnd, text: two, pos: start}, nil
	case "||":
		l.pos += 2
		return token{typ: tokOr, text: two, pos: start}, nil
	}

	single := map[byte]tokenType{
		'+': tokPlus, '-': tokMinus, '*': tokStar, '/': tokSlash,
		'%': tokPercent, '<': tokLt, '>': tokGt, '!': tokNot,
		'?': tokQuestion, ':': tokColon, '.': tokDot, ',': tokComma,
		'(': tokLParen, ')': tokRParen, '[': tokLBracket, ']': tokRBracket,
	}
	if typ, ok := single[c]; ok {
		l.pos++
		return token{typ: typ, text: string(c), pos: start}, nil
	}

	return token{}, l.errorf(start, "unexpected character %q", string(c))
}

func (l *lexer) scanNumber(start int) (token, error) {
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	// A fractional literal would introduce a float-typed intermediate.
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(l.src[l.pos+1]) {
		end := l.pos + 1
		for end < len(l.src) && isDigit(l.src[end]) {
			end++
		}
		return token{}, fmt.Errorf("%w: fractional literal %q; wrap it in decimal(%q)",
			ErrFloat, l.src[start:end], l.src[start:end])
	}
	return token{typ: tokInt, text: l.src[start:l.pos], pos: start}, nil
}

func (l *lexer) scanString(start int) (token, error) {
	quote := l.src[l.pos]
	l.pos++
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case quote:
			l.pos++
			return token{typ: tokString, text: b.String(), pos: start}, nil
		case '\\':
			l.pos++
			if l.pos >= len(l.src) {
				return token{}, l.errorf(start, "unterminated escape in string literal")
			}
			esc := l.src[l.pos]
			l.pos++
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '"', '\'':
				b.WriteByte(esc)
			case 'u':
				if l.pos+4 > len(l.src) {
					return token{}, l.errorf(start, "truncated \\u escape")
				}
				var r rune
				if _, err := fmt.Sscanf(l.src[l.pos:l.pos+4], "%04x", &r); err != nil {
					return token{}, l.errorf(start, "invalid \\u escape %q", l.src[l.pos:l.pos+4])
				}
				l.pos += 4
				b.WriteRune(r)
			default:
				return token{}, l.errorf(start, "unknown escape \\%s", string(esc))
			}
		default:
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			b.WriteRune(r)
			l.pos += size
		}
	}
	return token{}, l.errorf(start, "unterminated string literal")
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
