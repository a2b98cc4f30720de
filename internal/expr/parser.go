package expr

import (
	"fmt"
	"strconv"
)

// Function names recognized in match expressions.
const (
	FuncContains = "contains"
	FuncRegex    = "regex"
)

// Parser turns a token stream into an AST using recursive descent.
//
//	expr       := or_expr
//	or_expr    := and_expr ("or" and_expr)*
//	and_expr   := not_expr ("and" not_expr)*
//	not_expr   := "not" not_expr | comparison
//	comparison := primary (cmp_op primary)?
//	primary    := STRING | NUMBER | BOOL | IDENT | IDENT "(" args ")" | "(" expr ")"
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a parser over tokens, which must end with TokenEOF.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse tokenizes and parses input into an AST.
func Parse(input string) (Node, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(input string) Node {
	n, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return n
}

// Parse consumes the whole token stream.
func (p *Parser) Parse() (Node, error) {
	if p.peek().Type == TokenEOF {
		return nil, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}

	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, p.unexpected(tok)
	}
	return n, nil
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos+offset]
}

func (p *Parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(tokenType TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != tokenType {
		return tok, &SyntaxError{Pos: tok.Position, Msg: fmt.Sprintf("expected %s, found %s", tokenType, describe(tok))}
	}
	p.pos++
	return tok, nil
}

func (p *Parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: TokenOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenAnd {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: TokenAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Node, error) {
	if p.peek().Type == TokenNot {
		p.next()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: TokenNot, Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	tok := p.peek()
	switch {
	case tok.Type.IsComparison():
		p.next()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Op: tok.Type, Left: left, Right: right}, nil

	case tok.Type == TokenIn:
		p.next()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &Membership{Needle: left, Haystack: right}, nil

	case tok.Type == TokenNot:
		if p.peekAt(1).Type != TokenIn {
			return nil, &SyntaxError{Pos: tok.Position, Msg: "expected 'in' after 'not'"}
		}
		p.next()
		p.next()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &Membership{Needle: left, Haystack: right, Negated: true}, nil
	}

	return left, nil
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.next()

	switch tok.Type {
	case TokenString:
		return &Literal{Value: tok.Value}, nil

	case TokenNumber:
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.Position, Msg: fmt.Sprintf("invalid number %q", tok.Value)}
		}
		return &Literal{Value: f}, nil

	case TokenTrue:
		return &Literal{Value: true}, nil

	case TokenFalse:
		return &Literal{Value: false}, nil

	case TokenIdent:
		if p.peek().Type == TokenLParen {
			return p.parseCall(tok)
		}
		return &Identifier{Name: tok.Value}, nil

	case TokenLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return inner, nil
	}

	return nil, p.unexpected(tok)
}

func (p *Parser) parseCall(name Token) (Node, error) {
	if name.Value != FuncContains && name.Value != FuncRegex {
		return nil, &SyntaxError{Pos: name.Position, Msg: fmt.Sprintf("unknown function %q", name.Value)}
	}
	p.next() // (

	var args []Node
	if p.peek().Type != TokenRParen {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().Type != TokenComma {
				break
			}
			p.next()
		}
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	if len(args) != 1 {
		return nil, &SyntaxError{Pos: name.Position, Msg: fmt.Sprintf("%s() takes exactly one argument, got %d", name.Value, len(args))}
	}
	lit, ok := args[0].(*Literal)
	if !ok {
		return nil, &SyntaxError{Pos: name.Position, Msg: fmt.Sprintf("%s() argument must be a string literal", name.Value)}
	}
	s, ok := lit.Value.(string)
	if !ok {
		return nil, &SyntaxError{Pos: name.Position, Msg: fmt.Sprintf("%s() argument must be a string literal", name.Value)}
	}

	return &FunctionCall{Name: name.Value, Arg: s}, nil
}

func (p *Parser) unexpected(tok Token) error {
	return &SyntaxError{Pos: tok.Position, Msg: "unexpected " + describe(tok)}
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of expression"
	case TokenString:
		return fmt.Sprintf("string %q", tok.Value)
	case TokenNumber, TokenIdent:
		return fmt.Sprintf("%s %q", tok.Type, tok.Value)
	}
	return fmt.Sprintf("'%s'", tok.Type)
}
