package expr

import (
	"strconv"
	"strings"
)

// Node is implemented by every AST node. Nodes are immutable once parsed.
type Node interface {
	// String renders the node back into expression syntax.
	String() string
	node()
}

// Literal is a string, number (float64) or boolean constant.
type Literal struct {
	Value any
}

// Identifier names a transaction field or a user variable. Name is lowercase.
type Identifier struct {
	Name string
}

// FunctionCall is contains("...") or regex("...").
type FunctionCall struct {
	Name string
	Arg  string
}

// BinaryOp is a logical (and/or) or comparison operator.
type BinaryOp struct {
	Left  Node
	Right Node
	Op    TokenType
}

// UnaryOp is logical negation.
type UnaryOp struct {
	Operand Node
	Op      TokenType
}

// Membership is `needle in haystack` or `needle not in haystack`.
type Membership struct {
	Needle   Node
	Haystack Node
	Negated  bool
}

func (*Literal) node()      {}
func (*Identifier) node()   {}
func (*FunctionCall) node() {}
func (*BinaryOp) node()     {}
func (*UnaryOp) node()      {}
func (*Membership) node()   {}

func (n *Literal) String() string {
	switch v := n.Value.(type) {
	case string:
		return quoteString(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return "?"
}

func (n *Identifier) String() string { return n.Name }

func (n *FunctionCall) String() string {
	return n.Name + "(" + quoteString(n.Arg) + ")"
}

func (n *BinaryOp) String() string {
	return "(" + n.Left.String() + " " + n.Op.String() + " " + n.Right.String() + ")"
}

func (n *UnaryOp) String() string {
	return "not " + n.Operand.String()
}

func (n *Membership) String() string {
	op := " in "
	if n.Negated {
		op = " not in "
	}
	return n.Needle.String() + op + n.Haystack.String()
}

// quoteString renders s as a literal the lexer reads back unchanged.
func quoteString(s string) string {
	quoted, _ := tryQuote(s)
	return quoted
}

// tryQuote reports false when s holds both quote characters and each of them
// somewhere directly follows a backslash. The lexer reads `\"` inside a
// literal as an escaped quote, so such a string has no exact spelling.
func tryQuote(s string) (string, bool) {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`, true
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'", true
	}
	for _, q := range []string{`"`, "'"} {
		if !strings.Contains(s, `\`+q) {
			return q + strings.ReplaceAll(s, q, `\`+q) + q, true
		}
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`, false
}

// Quote renders s as a string literal suitable for embedding in an expression.
// Use QuoteRegex for regex patterns, which always round-trip.
func Quote(s string) string {
	return quoteString(s)
}

// QuoteRegex renders a regex pattern as a literal. When the pattern cannot be
// spelled verbatim, double quotes are rewritten as the equivalent \x22
// escape, which matches the same text.
func QuoteRegex(pattern string) string {
	if quoted, ok := tryQuote(pattern); ok {
		return quoted
	}

	out := make([]byte, 0, len(pattern)+8)
	backslashes := 0
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '"' && backslashes%2 == 1:
			// \" is an escaped quote: replace the pair.
			out = append(out[:len(out)-1], `\x22`...)
		case c == '"':
			out = append(out, `\x22`...)
		default:
			out = append(out, c)
		}
		if c == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
	}
	return `"` + string(out) + `"`
}

// Walk calls fn for n and every node below it, depth first.
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	fn(n)
	switch n := n.(type) {
	case *BinaryOp:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *UnaryOp:
		Walk(n.Operand, fn)
	case *Membership:
		Walk(n.Needle, fn)
		Walk(n.Haystack, fn)
	}
}

// References returns the user variable names n refers to, in first-seen order.
func References(n Node) []string {
	var names []string
	seen := make(map[string]bool)
	Walk(n, func(node Node) {
		id, ok := node.(*Identifier)
		if !ok || IsBuiltin(id.Name) || seen[id.Name] {
			return
		}
		seen[id.Name] = true
		names = append(names, id.Name)
	})
	return names
}
