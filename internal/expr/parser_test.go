package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Structure(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "contains", input: `contains("NETFLIX")`, want: `contains("NETFLIX")`},
		{name: "and binds tighter than or", input: "a or b and c", want: "(a or (b and c))"},
		{name: "left associative and", input: "a and b and c", want: "((a and b) and c)"},
		{name: "not binds tighter than and", input: "not a and b", want: "(not a and b)"},
		{name: "comparison binds tighter than not", input: "not amount > 5", want: "not (amount > 5)"},
		{name: "parentheses override", input: "(a or b) and c", want: "((a or b) and c)"},
		{name: "double negation", input: "not not a", want: "not not a"},
		{name: "membership", input: `"NETFLIX" in description`, want: `"NETFLIX" in description`},
		{name: "negated membership", input: `"EATS" not in description`, want: `"EATS" not in description`},
		{name: "numbers", input: "amount == 499.99", want: "(amount == 499.99)"},
		{name: "booleans", input: "true", want: "true"},
		{name: "date literal", input: `date >= "2025-11-28"`, want: `(date >= "2025-11-28")`},
		{name: "single quoted regex", input: `regex('UBER(?!.*EATS)')`, want: `regex("UBER(?!.*EATS)")`},
		{name: "identifiers lowercased", input: "IS_LARGE", want: "is_large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.String())
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	inputs := []string{
		`contains("UBER") and not contains("EATS")`,
		`regex("COSTCO") and amount > 200`,
		`date >= "2025-11-28" and date <= "2025-11-30"`,
		`month >= 11 and month <= 12 or is_holiday`,
		`regex('say "hi"')`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, err := Parse(input)
			require.NoError(t, err)

			second, err := Parse(first.String())
			require.NoError(t, err)

			assert.Equal(t, first, second)
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	input := `contains("NETFLIX") and (amount > 10 or "PREMIUM" in description)`
	assert.Equal(t, MustParse(input), MustParse(input))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{name: "empty", input: "", wantMsg: "empty expression"},
		{name: "dangling and", input: `contains("A") and`, wantMsg: "unexpected end of expression"},
		{name: "unclosed paren", input: `(amount > 5`, wantMsg: "expected )"},
		{name: "trailing tokens", input: `amount > 5 10`, wantMsg: "unexpected number"},
		{name: "chained comparison", input: `1 < amount < 5`, wantMsg: "unexpected '<'"},
		{name: "unknown function", input: `startswith("A")`, wantMsg: `unknown function "startswith"`},
		{name: "missing argument", input: `contains()`, wantMsg: "exactly one argument, got 0"},
		{name: "too many arguments", input: `regex("A", "B")`, wantMsg: "exactly one argument, got 2"},
		{name: "non string argument", input: `contains(5)`, wantMsg: "must be a string literal"},
		{name: "identifier argument", input: `contains(description)`, wantMsg: "must be a string literal"},
		{name: "not without in", input: `"A" not description`, wantMsg: "expected 'in' after 'not'"},
		{name: "operator first", input: `> 5`, wantMsg: "unexpected '>'"},
		{name: "lexer error surfaces", input: `contains("A`, wantMsg: "unterminated string literal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, n)

			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("amount >") })
}

func TestReferences(t *testing.T) {
	n := MustParse(`is_large and (amount > threshold or is_large) and month == 12`)
	assert.Equal(t, []string{"is_large", "threshold"}, References(n))

	assert.Empty(t, References(MustParse(`contains("A") and amount > 5`)))
}
