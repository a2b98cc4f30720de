package modifier

import (
	"strconv"
	"strings"

	"github.com/Veraticus/tally/internal/expr"
)

// ToExpression renders p as an equivalent match expression. The regex and
// every condition are joined with "and"; a pattern with neither yields
// "true". NotTravel is metadata and does not appear in the expression.
func ToExpression(p ParsedPattern) string {
	var parts []string
	if p.RegexPattern != "" {
		parts = append(parts, expr.FuncRegex+"("+expr.QuoteRegex(p.RegexPattern)+")")
	}
	for _, c := range p.AmountConditions {
		parts = append(parts, amountClause(c))
	}
	for _, c := range p.DateConditions {
		parts = append(parts, dateClause(c))
	}
	if len(parts) == 0 {
		return "true"
	}
	return strings.Join(parts, " and ")
}

// ModifierExpression renders only the conditions, without the regex.
func ModifierExpression(p ParsedPattern) string {
	if len(p.AmountConditions) == 0 && len(p.DateConditions) == 0 {
		return ""
	}
	p.RegexPattern = ""
	return ToExpression(p)
}

func amountClause(c AmountCondition) string {
	if c.Operator == AmountRange {
		return "amount >= " + number(c.Min) + " and amount <= " + number(c.Max)
	}
	return "amount " + string(c.Operator) + " " + number(c.Value)
}

func dateClause(c DateCondition) string {
	switch c.Kind {
	case DateRange:
		return `date >= "` + c.Start.Format(isoDate) + `" and date <= "` + c.End.Format(isoDate) + `"`
	case DateMonth:
		return "month == " + strconv.Itoa(c.Month)
	}
	return `date == "` + c.Date.Format(isoDate) + `"`
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
