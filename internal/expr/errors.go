package expr

import "fmt"

// SyntaxError reports a malformed expression. It is raised while rules are
// loaded, never while transactions are matched.
type SyntaxError struct {
	Msg string
	Pos int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Msg)
}

// EvalError reports that an expression could not be evaluated against a
// particular transaction. Callers treat the rule as non-matching.
type EvalError struct {
	Msg string
}

func (e *EvalError) Error() string {
	return e.Msg
}

func evalErrorf(format string, args ...any) error {
	return &EvalError{Msg: fmt.Sprintf(format, args...)}
}
