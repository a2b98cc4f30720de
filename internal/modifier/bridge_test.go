package modifier

import (
	"testing"
	"time"

	"github.com/Veraticus/tally/internal/expr"
	"github.com/Veraticus/tally/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToExpression(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{pattern: "NETFLIX", want: `regex("NETFLIX")`},
		{pattern: "COSTCO[amount>200]", want: `regex("COSTCO") and amount > 200`},
		{pattern: "BESTBUY[amount=499.99]", want: `regex("BESTBUY") and amount == 499.99`},
		{pattern: "STORE[amount:50-200]", want: `regex("STORE") and amount >= 50 and amount <= 200`},
		{pattern: "STORE[date=2025-11-29]", want: `regex("STORE") and date == "2025-11-29"`},
		{
			pattern: "STORE[date:2025-11-28-2025-11-30]",
			want:    `regex("STORE") and date >= "2025-11-28" and date <= "2025-11-30"`,
		},
		{pattern: "STORE[month=12]", want: `regex("STORE") and month == 12`},
		{pattern: "AMAZON.*GB[not_travel]", want: `regex("AMAZON.*GB")`},
		{pattern: `UBER\s(?!EATS)`, want: `regex("UBER\s(?!EATS)")`},
		{pattern: `SAY "HI"`, want: `regex('SAY "HI"')`},
		{pattern: `A\"B\'C[amount>5]`, want: `regex("A\x22B\'C") and amount > 5`},
		{pattern: "[amount>1000]", want: "amount > 1000"},
		{pattern: "", want: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			p, err := Parse(tt.pattern)
			require.NoError(t, err)

			got := ToExpression(p)
			assert.Equal(t, tt.want, got)

			_, err = expr.Parse(got)
			assert.NoError(t, err, "rendered expression must parse")
		})
	}
}

func TestModifierExpression(t *testing.T) {
	p, err := Parse("STORE[amount>10][month=12][not_travel]")
	require.NoError(t, err)
	assert.Equal(t, "amount > 10 and month == 12", ModifierExpression(p))

	p, err = Parse("STORE[not_travel]")
	require.NoError(t, err)
	assert.Empty(t, ModifierExpression(p))
}

// A bracket pattern and the native expression it stands for must agree on
// every transaction.
func TestBridgeEquivalence(t *testing.T) {
	cases := []struct {
		pattern string
		native  string
	}{
		{pattern: "COSTCO[amount>200]", native: `regex("COSTCO") and amount > 200`},
		{pattern: "STORE[amount:50-200]", native: `regex("STORE") and amount >= 50 and amount <= 200`},
		{pattern: "BESTBUY[date:2025-11-28-2025-11-30]", native: `regex("BESTBUY") and date >= "2025-11-28" and date <= "2025-11-30"`},
		{pattern: "AMAZON[month=12]", native: `contains("AMAZON") and month == 12`},
		{pattern: `JOE\"S\'[amount>5]`, native: `contains("JOE\"S'") and amount > 5`},
	}

	txns := []model.Transaction{
		{Description: "COSTCO #123", Amount: 250},
		{Description: "COSTCO #123", Amount: -250},
		{Description: "COSTCO #123", Amount: 200},
		{Description: "costco wholesale", Amount: 75},
		{Description: "STORE 9", Amount: 50},
		{Description: "STORE 9", Amount: 200.01},
		{Description: "BESTBUY", Amount: 499, Date: time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC)},
		{Description: "BESTBUY", Amount: 499, Date: time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC)},
		{Description: "BESTBUY", Amount: 499, Date: time.Date(2025, 11, 27, 0, 0, 0, 0, time.UTC)},
		{Description: "AMAZON MKTPLACE", Amount: 30, Date: time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC)},
		{Description: "AMAZON MKTPLACE", Amount: 30, Date: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)},
		{Description: `JOE"S' DINER`, Amount: 12},
		{Description: `JOE"S' DINER`, Amount: 2},
	}

	ev := expr.NewEvaluator(nil)
	for _, c := range cases {
		p, err := Parse(c.pattern)
		require.NoError(t, err)
		bridged := expr.MustParse(ToExpression(p))
		native := expr.MustParse(c.native)

		for _, txn := range txns {
			ctx := expr.FromTransaction(txn)
			want, wantErr := ev.Matches(native, ctx, nil)
			got, gotErr := ev.Matches(bridged, ctx, nil)
			assert.Equal(t, wantErr == nil, gotErr == nil, "%s vs %+v", c.pattern, txn)
			assert.Equal(t, want, got, "%s vs %+v", c.pattern, txn)
		}
	}
}
