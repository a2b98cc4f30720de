package expr

import "strings"

// Lexer breaks a match expression into tokens.
type Lexer struct {
	input  string
	tokens []Token
	pos    int
}

// NewLexer creates a lexer for input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize scans the whole input. The returned slice always ends with TokenEOF.
func Tokenize(input string) ([]Token, error) {
	return NewLexer(input).Tokenize()
}

// Tokenize scans the whole input. The returned slice always ends with TokenEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	l.tokens = l.tokens[:0]
	l.pos = 0

	for l.pos < len(l.input) {
		c := l.input[l.pos]

		switch {
		case isWhitespace(c):
			l.pos++
		case c == '(':
			l.emit(TokenLParen, "(", 1)
		case c == ')':
			l.emit(TokenRParen, ")", 1)
		case c == ',':
			l.emit(TokenComma, ",", 1)
		case c == '"' || c == '\'':
			if err := l.scanString(c); err != nil {
				return nil, err
			}
		case isDigit(c):
			l.scanNumber()
		case isIdentStart(c):
			l.scanWord()
		default:
			if err := l.scanOperator(); err != nil {
				return nil, err
			}
		}
	}

	l.tokens = append(l.tokens, Token{Type: TokenEOF, Position: len(l.input)})
	return l.tokens, nil
}

func (l *Lexer) emit(tokenType TokenType, value string, width int) {
	l.tokens = append(l.tokens, Token{Type: tokenType, Value: value, Position: l.pos})
	l.pos += width
}

// scanString reads a quoted literal. A backslash before the quote character
// escapes it; every other backslash sequence is kept verbatim so regex
// escapes such as \s or \d reach the regex engine untouched.
func (l *Lexer) scanString(quote byte) error {
	start := l.pos
	l.pos++

	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == quote:
			l.pos++
			l.tokens = append(l.tokens, Token{Type: TokenString, Value: sb.String(), Position: start})
			return nil
		case c == '\\' && l.pos+1 < len(l.input):
			next := l.input[l.pos+1]
			if next == quote {
				sb.WriteByte(quote)
			} else {
				sb.WriteByte(c)
				sb.WriteByte(next)
			}
			l.pos += 2
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}

	return &SyntaxError{Pos: start, Msg: "unterminated string literal"}
}

func (l *Lexer) scanNumber() {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos+1 < len(l.input) && l.input[l.pos] == '.' && isDigit(l.input[l.pos+1]) {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	l.tokens = append(l.tokens, Token{Type: TokenNumber, Value: l.input[start:l.pos], Position: start})
}

func (l *Lexer) scanWord() {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}

	word := strings.ToLower(l.input[start:l.pos])
	if tokenType, ok := keywords[word]; ok {
		l.tokens = append(l.tokens, Token{Type: tokenType, Value: word, Position: start})
		return
	}
	l.tokens = append(l.tokens, Token{Type: TokenIdent, Value: word, Position: start})
}

func (l *Lexer) scanOperator() error {
	rest := l.input[l.pos:]

	switch {
	case strings.HasPrefix(rest, "=="):
		l.emit(TokenEq, "==", 2)
	case strings.HasPrefix(rest, "!="):
		l.emit(TokenNe, "!=", 2)
	case strings.HasPrefix(rest, "<="):
		l.emit(TokenLe, "<=", 2)
	case strings.HasPrefix(rest, ">="):
		l.emit(TokenGe, ">=", 2)
	case rest[0] == '<':
		l.emit(TokenLt, "<", 1)
	case rest[0] == '>':
		l.emit(TokenGt, ">", 1)
	case rest[0] == '=':
		return &SyntaxError{Pos: l.pos, Msg: "unexpected '=' (use '==' to compare)"}
	default:
		return &SyntaxError{Pos: l.pos, Msg: "unexpected character " + quoteChar(rest)}
	}
	return nil
}

func quoteChar(rest string) string {
	r := []rune(rest)
	return "'" + string(r[0]) + "'"
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
