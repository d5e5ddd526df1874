package expr

import (
	"errors"
	"fmt"
	"unicode"
)

var ErrSyntax = errors.New("expr: syntax error")

// A ParseError reports the position in the input where parsing failed.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expr: %v at position %v in %q", e.Msg, e.Pos, e.Input)
}

func (e *ParseError) Unwrap() error {
	return ErrSyntax
}

type tokenKind int

const (
	tEOF tokenKind = iota
	tIdent
	tTrue
	tFalse
	tNot
	tAnd
	tOr
	tXor
	tImp
	tIff
	tLParen
	tRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(input string) ([]token, error) {
	tokens := []token{}
	runes := []rune(input)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '_' || unicode.IsLetter(r):
			start := i
			for i < len(runes) && (runes[i] == '_' || runes[i] == '.' || unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i])) {
				i++
			}
			text := string(runes[start:i])
			switch text {
			case "TRUE", "true":
				tokens = append(tokens, token{tTrue, text, start})
			case "FALSE", "false":
				tokens = append(tokens, token{tFalse, text, start})
			default:
				tokens = append(tokens, token{tIdent, text, start})
			}
		case r == '1':
			tokens = append(tokens, token{tTrue, "1", i})
			i++
		case r == '0':
			tokens = append(tokens, token{tFalse, "0", i})
			i++
		case r == '!':
			tokens = append(tokens, token{tNot, "!", i})
			i++
		case r == '&':
			n := 1
			if i+1 < len(runes) && runes[i+1] == '&' {
				n = 2
			}
			tokens = append(tokens, token{tAnd, string(runes[i : i+n]), i})
			i += n
		case r == '|':
			n := 1
			if i+1 < len(runes) && runes[i+1] == '|' {
				n = 2
			}
			tokens = append(tokens, token{tOr, string(runes[i : i+n]), i})
			i += n
		case r == '^':
			tokens = append(tokens, token{tXor, "^", i})
			i++
		case r == '-' && i+1 < len(runes) && runes[i+1] == '>':
			tokens = append(tokens, token{tImp, "->", i})
			i += 2
		case r == '<' && i+2 < len(runes) && runes[i+1] == '-' && runes[i+2] == '>':
			tokens = append(tokens, token{tIff, "<->", i})
			i += 3
		case r == '(':
			tokens = append(tokens, token{tLParen, "(", i})
			i++
		case r == ')':
			tokens = append(tokens, token{tRParen, ")", i})
			i++
		default:
			return nil, &ParseError{Input: input, Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	return append(tokens, token{tEOF, "", len(runes)}), nil
}

type parser struct {
	input  string
	tokens []token
	pos    int
}

// Parse an expression.
//
// Operators from the loosest to the tightest binding: <->, -> (right associative), | or ||, ^, & or &&, !.
// next(x) denotes the value of x in the next state.
func Parse(input string) (*Expr, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{input: input, tokens: tokens}
	e, err := p.iff()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tEOF {
		return nil, p.errorf(tok, "unexpected %q", tok.text)
	}
	return e, nil
}

// MustParse is like Parse but panics if the expression can not be parsed
func MustParse(input string) *Expr {
	e, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return e
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return &ParseError{Input: p.input, Pos: tok.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) iff() (*Expr, error) {
	left, err := p.imp()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tIff {
		p.next()
		right, err := p.imp()
		if err != nil {
			return nil, err
		}
		left = &Expr{Op: Iff, Args: []*Expr{left, right}}
	}
	return left, nil
}

func (p *parser) imp() (*Expr, error) {
	left, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tImp {
		p.next()
		right, err := p.imp()
		if err != nil {
			return nil, err
		}
		return &Expr{Op: Imp, Args: []*Expr{left, right}}, nil
	}
	return left, nil
}

func (p *parser) or() (*Expr, error) {
	return p.binary(tOr, Or, p.xor)
}

func (p *parser) xor() (*Expr, error) {
	return p.binary(tXor, Xor, p.and)
}

func (p *parser) and() (*Expr, error) {
	return p.binary(tAnd, And, p.unary)
}

func (p *parser) binary(kind tokenKind, op Op, operand func() (*Expr, error)) (*Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == kind {
		p.next()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &Expr{Op: op, Args: []*Expr{left, right}}
	}
	return left, nil
}

func (p *parser) unary() (*Expr, error) {
	if p.peek().kind == tNot {
		p.next()
		arg, err := p.unary()
		if err != nil {
			return nil, err
		}
		return NotOf(arg), nil
	}
	return p.primary()
}

func (p *parser) primary() (*Expr, error) {
	tok := p.next()
	switch tok.kind {
	case tTrue:
		return Bool(true), nil
	case tFalse:
		return Bool(false), nil
	case tIdent:
		if tok.text == "next" && p.peek().kind == tLParen {
			p.next()
			id := p.next()
			if id.kind != tIdent {
				return nil, p.errorf(id, "expected a variable in next(), got %q", id.text)
			}
			if closing := p.next(); closing.kind != tRParen {
				return nil, p.errorf(closing, "expected ')', got %q", closing.text)
			}
			return NextOf(id.text), nil
		}
		return Var(tok.text), nil
	case tLParen:
		e, err := p.iff()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tRParen {
			return nil, p.errorf(closing, "expected ')', got %q", closing.text)
		}
		return e, nil
	case tEOF:
		return nil, p.errorf(tok, "unexpected end of expression")
	default:
		return nil, p.errorf(tok, "unexpected %q", tok.text)
	}
}
