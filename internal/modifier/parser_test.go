package modifier

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    ParsedPattern
	}{
		{
			name:    "no modifiers",
			pattern: "NETFLIX",
			want:    ParsedPattern{RegexPattern: "NETFLIX"},
		},
		{
			name:    "amount greater",
			pattern: "COSTCO[amount>200]",
			want: ParsedPattern{
				RegexPattern:     "COSTCO",
				AmountConditions: []AmountCondition{{Operator: AmountGreaterThan, Value: 200}},
			},
		},
		{
			name:    "amount less equal",
			pattern: "COSTCO[amount<=200]",
			want: ParsedPattern{
				RegexPattern:     "COSTCO",
				AmountConditions: []AmountCondition{{Operator: AmountLessEqual, Value: 200}},
			},
		},
		{
			name:    "single equals means equality",
			pattern: "BESTBUY[amount=499.99]",
			want: ParsedPattern{
				RegexPattern:     "BESTBUY",
				AmountConditions: []AmountCondition{{Operator: AmountEqual, Value: 499.99}},
			},
		},
		{
			name:    "amount range",
			pattern: "STORE[amount:100-500]",
			want: ParsedPattern{
				RegexPattern:     "STORE",
				AmountConditions: []AmountCondition{{Operator: AmountRange, Min: 100, Max: 500}},
			},
		},
		{
			name:    "exact date",
			pattern: "STORE[date=2025-01-15]",
			want: ParsedPattern{
				RegexPattern:   "STORE",
				DateConditions: []DateCondition{{Kind: DateExact, Date: date(2025, 1, 15)}},
			},
		},
		{
			name:    "date range",
			pattern: "BESTBUY[date:2025-11-28-2025-11-30]",
			want: ParsedPattern{
				RegexPattern: "BESTBUY",
				DateConditions: []DateCondition{
					{Kind: DateRange, Start: date(2025, 11, 28), End: date(2025, 11, 30)},
				},
			},
		},
		{
			name:    "month",
			pattern: "AMAZON[month=12]",
			want: ParsedPattern{
				RegexPattern:   "AMAZON",
				DateConditions: []DateCondition{{Kind: DateMonth, Month: 12}},
			},
		},
		{
			name:    "not travel flag",
			pattern: "AMAZON.*GB[not_travel]",
			want:    ParsedPattern{RegexPattern: "AMAZON.*GB", NotTravel: true},
		},
		{
			name:    "multiple groups keep order",
			pattern: "BESTBUY[amount>500][date=2025-11-29]",
			want: ParsedPattern{
				RegexPattern:     "BESTBUY",
				AmountConditions: []AmountCondition{{Operator: AmountGreaterThan, Value: 500}},
				DateConditions:   []DateCondition{{Kind: DateExact, Date: date(2025, 11, 29)}},
			},
		},
		{
			name:    "two amount groups",
			pattern: "STORE[amount>=10][amount<50]",
			want: ParsedPattern{
				RegexPattern: "STORE",
				AmountConditions: []AmountCondition{
					{Operator: AmountGreaterEqual, Value: 10},
					{Operator: AmountLessThan, Value: 50},
				},
			},
		},
		{
			name:    "spaces inside group",
			pattern: "STORE [ amount > 20 ]",
			want: ParsedPattern{
				RegexPattern:     "STORE",
				AmountConditions: []AmountCondition{{Operator: AmountGreaterThan, Value: 20}},
			},
		},
		{
			name:    "character class is regex",
			pattern: "STORE #[0-9]",
			want:    ParsedPattern{RegexPattern: "STORE #[0-9]"},
		},
		{
			name:    "uppercase class is regex",
			pattern: "STORE[A-Z]",
			want:    ParsedPattern{RegexPattern: "STORE[A-Z]"},
		},
		{
			name:    "capitalized keyword",
			pattern: "STORE[Amount>200]",
			want: ParsedPattern{
				RegexPattern:     "STORE",
				AmountConditions: []AmountCondition{{Operator: AmountGreaterThan, Value: 200}},
			},
		},
		{
			name:    "uppercase not travel",
			pattern: "AMAZON[NOT_TRAVEL]",
			want:    ParsedPattern{RegexPattern: "AMAZON", NotTravel: true},
		},
		{
			name:    "lowercase class is regex",
			pattern: "ab[cd]",
			want:    ParsedPattern{RegexPattern: "ab[cd]"},
		},
		{
			name:    "escaped bracket is regex",
			pattern: `STORE\[amount>5]`,
			want:    ParsedPattern{RegexPattern: `STORE\[amount>5]`},
		},
		{
			name:    "lookahead preserved",
			pattern: `UBER\s(?!EATS)`,
			want:    ParsedPattern{RegexPattern: `UBER\s(?!EATS)`},
		},
		{
			name:    "modifier only",
			pattern: "[amount>1000]",
			want: ParsedPattern{
				AmountConditions: []AmountCondition{{Operator: AmountGreaterThan, Value: 1000}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantMsg string
	}{
		{name: "unknown keyword", pattern: "STORE[weekday=3]", wantMsg: `unknown modifier "weekday"`},
		{name: "amount without operator", pattern: "STORE[amount]", wantMsg: "amount needs one of"},
		{name: "amount not equal", pattern: "STORE[amount!=5]", wantMsg: "amount needs one of"},
		{name: "amount not a number", pattern: "STORE[amount>lots]", wantMsg: `invalid amount "lots"`},
		{name: "inverted amount range", pattern: "STORE[amount:500-100]", wantMsg: "inverted"},
		{name: "malformed amount range", pattern: "STORE[amount:100]", wantMsg: "amount:MIN-MAX"},
		{name: "bad date", pattern: "STORE[date=2025-13-45]", wantMsg: "invalid date"},
		{name: "date wrong format", pattern: "STORE[date=01/15/2025]", wantMsg: "invalid date"},
		{name: "inverted date range", pattern: "STORE[date:2025-12-01-2025-11-01]", wantMsg: "inverted"},
		{name: "month out of range", pattern: "STORE[month=13]", wantMsg: "between 1 and 12"},
		{name: "month zero", pattern: "STORE[month=0]", wantMsg: "between 1 and 12"},
		{name: "not travel with value", pattern: "STORE[not_travel=yes]", wantMsg: "takes no value"},
		{name: "relative date", pattern: "STORE[last30days]", wantMsg: "relative date"},
		{name: "relative date spaced", pattern: "STORE[last 7 days]", wantMsg: "relative date"},
		{name: "relative date capitalized", pattern: "STORE[Last 7 Days]", wantMsg: "relative date"},
		{name: "capitalized unknown keyword", pattern: "STORE[Weekday=3]", wantMsg: `unknown modifier "weekday"`},
		{name: "capitalized bad amount", pattern: "STORE[AMOUNT>lots]", wantMsg: `invalid amount "lots"`},
		{name: "not travel hyphenated", pattern: "AMAZON[not-travel]", wantMsg: "did you mean not_travel"},
		{name: "not travel joined", pattern: "AMAZON[nottravel]", wantMsg: "did you mean not_travel"},
		{name: "not travel spaced", pattern: "AMAZON[Not Travel]", wantMsg: "did you mean not_travel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.pattern)
			require.Error(t, err)

			var modErr *Error
			require.True(t, errors.As(err, &modErr))
			assert.Equal(t, tt.pattern, modErr.Pattern)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	a, err := Parse("BESTBUY[amount>500][date:2025-11-28-2025-11-30][not_travel]")
	require.NoError(t, err)
	b, err := Parse("BESTBUY[amount>500][date:2025-11-28-2025-11-30][not_travel]")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, a.HasModifiers())
}
