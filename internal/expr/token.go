// Package expr implements the match-expression language used by merchant rules:
// a lexer, a recursive-descent parser producing an immutable AST, and an
// evaluator that runs the AST against a single transaction.
package expr

import "fmt"

// TokenType identifies the lexical class of a token.
type TokenType int

// Token types produced by the lexer.
const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenString
	TokenNumber
	TokenTrue
	TokenFalse
	TokenAnd
	TokenOr
	TokenNot
	TokenIn
	TokenEq
	TokenNe
	TokenLt
	TokenLe
	TokenGt
	TokenGe
	TokenLParen
	TokenRParen
	TokenComma
)

var tokenNames = map[TokenType]string{
	TokenEOF:    "end of expression",
	TokenIdent:  "identifier",
	TokenString: "string",
	TokenNumber: "number",
	TokenTrue:   "true",
	TokenFalse:  "false",
	TokenAnd:    "and",
	TokenOr:     "or",
	TokenNot:    "not",
	TokenIn:     "in",
	TokenEq:     "==",
	TokenNe:     "!=",
	TokenLt:     "<",
	TokenLe:     "<=",
	TokenGt:     ">",
	TokenGe:     ">=",
	TokenLParen: "(",
	TokenRParen: ")",
	TokenComma:  ",",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// IsComparison reports whether t is one of the six comparison operators.
func (t TokenType) IsComparison() bool {
	switch t {
	case TokenEq, TokenNe, TokenLt, TokenLe, TokenGt, TokenGe:
		return true
	}
	return false
}

// Token is a lexical token. Value holds the decoded text for strings,
// the raw digits for numbers and the lowercased word for identifiers.
type Token struct {
	Value    string
	Type     TokenType
	Position int
}

var keywords = map[string]TokenType{
	"and":   TokenAnd,
	"or":    TokenOr,
	"not":   TokenNot,
	"in":    TokenIn,
	"true":  TokenTrue,
	"false": TokenFalse,
}

// IsKeyword reports whether word is reserved by the language.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}
