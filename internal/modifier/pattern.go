// Package modifier parses the bracket modifiers that legacy merchant patterns
// carry after their regex, such as COSTCO[amount>200] or AMAZON.*GB[not_travel],
// and renders them as match expressions.
package modifier

import (
	"fmt"
	"time"
)

// AmountOperator is the comparison an amount modifier applies.
type AmountOperator string

// Amount operators. AmountRange is inclusive on both ends.
const (
	AmountGreaterThan  AmountOperator = ">"
	AmountGreaterEqual AmountOperator = ">="
	AmountLessThan     AmountOperator = "<"
	AmountLessEqual    AmountOperator = "<="
	AmountEqual        AmountOperator = "=="
	AmountRange        AmountOperator = "range"
)

// AmountCondition constrains the absolute transaction amount.
type AmountCondition struct {
	Operator AmountOperator
	Value    float64
	Min      float64
	Max      float64
}

// DateKind distinguishes the date modifier forms.
type DateKind string

// Date modifier kinds.
const (
	DateExact DateKind = "exact"
	DateRange DateKind = "range"
	DateMonth DateKind = "month"
)

// DateCondition constrains the transaction date.
type DateCondition struct {
	Date  time.Time
	Start time.Time
	End   time.Time
	Kind  DateKind
	Month int
}

// ParsedPattern is a legacy pattern split into its bare regex and the
// conditions its trailing bracket groups describe.
type ParsedPattern struct {
	RegexPattern     string
	AmountConditions []AmountCondition
	DateConditions   []DateCondition
	NotTravel        bool
}

// HasModifiers reports whether any bracket group was recognized.
func (p ParsedPattern) HasModifiers() bool {
	return len(p.AmountConditions) > 0 || len(p.DateConditions) > 0 || p.NotTravel
}

// Error reports a bracket group that could not be understood.
type Error struct {
	Pattern  string
	Modifier string
	Msg      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid modifier [%s] in pattern %q: %s", e.Modifier, e.Pattern, e.Msg)
}
