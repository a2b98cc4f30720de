package merchant

import "fmt"

// ParseError reports a rule file that cannot be loaded. Line is the line of
// the offending content, or of the rule header for rule-level problems.
type ParseError struct {
	Rule string
	Msg  string
	Line int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("Line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

func parseErrorf(line int, rule, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Rule: rule, Msg: fmt.Sprintf(format, args...)}
}
