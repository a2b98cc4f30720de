package modifier

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Modifier keywords.
const (
	keywordAmount    = "amount"
	keywordDate      = "date"
	keywordMonth     = "month"
	keywordNotTravel = "not_travel"
)

const isoDate = "2006-01-02"

var (
	// A group whose body starts with a word followed by an operator is
	// modifier syntax even when the word is not a known keyword.
	modifierShape = regexp.MustCompile(`(?i)^[a-z_]+\s*[<>=:!]`)
	relativeDate  = regexp.MustCompile(`(?i)^last\s*\d+\s*days?$`)
	notTravelLike = regexp.MustCompile(`(?i)^not[\s_-]*travel$`)
	amountRange   = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*-\s*(\d+(?:\.\d+)?)$`)
	dateRange     = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\s*(?:-|\.\.|to)\s*(\d{4}-\d{2}-\d{2})$`)
)

// Parse splits pattern into its regex and the modifiers in its trailing
// bracket groups. Groups are read right to left and stop at the first group
// that is ordinary regex syntax, so character classes like [A-Z] survive.
// Anything that looks like a modifier but is malformed is an error.
func Parse(pattern string) (ParsedPattern, error) {
	var groups []string
	rest := pattern

	for {
		trimmed := strings.TrimRight(rest, " \t")
		if !strings.HasSuffix(trimmed, "]") {
			break
		}
		open := strings.LastIndex(trimmed, "[")
		if open < 0 || escaped(trimmed, open) {
			break
		}
		body := strings.TrimSpace(trimmed[open+1 : len(trimmed)-1])
		if !isModifier(body) {
			break
		}
		groups = append(groups, body)
		rest = trimmed[:open]
	}

	parsed := ParsedPattern{RegexPattern: strings.TrimRight(rest, " \t")}
	if len(groups) == 0 {
		parsed.RegexPattern = pattern
		return parsed, nil
	}

	for i := len(groups) - 1; i >= 0; i-- {
		if err := parsed.apply(groups[i]); err != nil {
			return ParsedPattern{}, &Error{Pattern: pattern, Modifier: groups[i], Msg: err.Error()}
		}
	}
	return parsed, nil
}

func escaped(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

func isModifier(body string) bool {
	switch keyword(body) {
	case keywordAmount, keywordDate, keywordMonth, keywordNotTravel:
		return true
	}
	return modifierShape.MatchString(body) || relativeDate.MatchString(body) || notTravelLike.MatchString(body)
}

// keyword returns the leading word of body, lowercased. The returned string
// has the same byte length as the word in body.
func keyword(body string) string {
	end := strings.IndexFunc(body, func(r rune) bool {
		return r != '_' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z')
	})
	if end < 0 {
		end = len(body)
	}
	return strings.ToLower(body[:end])
}

func (p *ParsedPattern) apply(body string) error {
	if relativeDate.MatchString(body) {
		return errors.New("relative date modifiers are not supported")
	}

	kw := keyword(body)
	if kw != keywordNotTravel && notTravelLike.MatchString(body) {
		return fmt.Errorf("unknown modifier %q (did you mean not_travel?)", body)
	}
	value := strings.TrimSpace(body[len(kw):])

	switch kw {
	case keywordAmount:
		cond, err := parseAmount(value)
		if err != nil {
			return err
		}
		p.AmountConditions = append(p.AmountConditions, cond)
	case keywordDate:
		cond, err := parseDate(value)
		if err != nil {
			return err
		}
		p.DateConditions = append(p.DateConditions, cond)
	case keywordMonth:
		cond, err := parseMonth(value)
		if err != nil {
			return err
		}
		p.DateConditions = append(p.DateConditions, cond)
	case keywordNotTravel:
		if value != "" {
			return errors.New("not_travel takes no value")
		}
		p.NotTravel = true
	default:
		return fmt.Errorf("unknown modifier %q", kw)
	}
	return nil
}

func parseAmount(value string) (AmountCondition, error) {
	if rng, ok := strings.CutPrefix(value, ":"); ok {
		m := amountRange.FindStringSubmatch(strings.TrimSpace(rng))
		if m == nil {
			return AmountCondition{}, errors.New("amount range must look like amount:MIN-MAX")
		}
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		if lo > hi {
			return AmountCondition{}, fmt.Errorf("amount range %s is inverted", rng)
		}
		return AmountCondition{Operator: AmountRange, Min: lo, Max: hi}, nil
	}

	// Longest operators first.
	for _, op := range []string{">=", "<=", "==", ">", "<", "="} {
		num, ok := strings.CutPrefix(value, op)
		if !ok {
			continue
		}
		v, err := parseAmountValue(num)
		if err != nil {
			return AmountCondition{}, err
		}
		operator := AmountOperator(op)
		if op == "=" {
			operator = AmountEqual
		}
		return AmountCondition{Operator: operator, Value: v}, nil
	}
	return AmountCondition{}, errors.New("amount needs one of >, >=, <, <=, == or a :MIN-MAX range")
}

func parseAmountValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

func parseDate(value string) (DateCondition, error) {
	if rng, ok := strings.CutPrefix(value, ":"); ok {
		m := dateRange.FindStringSubmatch(strings.TrimSpace(rng))
		if m == nil {
			return DateCondition{}, errors.New("date range must look like date:YYYY-MM-DD-YYYY-MM-DD")
		}
		start, err := parseISO(m[1])
		if err != nil {
			return DateCondition{}, err
		}
		end, err := parseISO(m[2])
		if err != nil {
			return DateCondition{}, err
		}
		if start.After(end) {
			return DateCondition{}, fmt.Errorf("date range %s is inverted", rng)
		}
		return DateCondition{Kind: DateRange, Start: start, End: end}, nil
	}

	iso, ok := cutEquals(value)
	if !ok {
		return DateCondition{}, errors.New("date needs =YYYY-MM-DD or :START-END")
	}
	d, err := parseISO(iso)
	if err != nil {
		return DateCondition{}, err
	}
	return DateCondition{Kind: DateExact, Date: d}, nil
}

func parseMonth(value string) (DateCondition, error) {
	num, ok := cutEquals(value)
	if !ok {
		return DateCondition{}, errors.New("month needs =1..12")
	}
	m, err := strconv.Atoi(num)
	if err != nil || m < 1 || m > 12 {
		return DateCondition{}, fmt.Errorf("month must be between 1 and 12, got %q", num)
	}
	return DateCondition{Kind: DateMonth, Month: m}, nil
}

// cutEquals accepts both = and == before a value.
func cutEquals(value string) (string, bool) {
	if v, ok := strings.CutPrefix(value, "=="); ok {
		return strings.TrimSpace(v), true
	}
	if v, ok := strings.CutPrefix(value, "="); ok {
		return strings.TrimSpace(v), true
	}
	return "", false
}

func parseISO(s string) (time.Time, error) {
	t, err := time.Parse(isoDate, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
}
