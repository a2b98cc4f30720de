package merchant

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRules = `# Tally merchant rules
is_large = amount > 500
Is_Holiday = month >= 11 and month <= 12

[Netflix]
match: contains("NETFLIX")
category: Subscriptions
subcategory: Streaming
tags: Entertainment,  recurring ,

[Uber Rides]
match: regex("UBER(?!.*EATS)")
merchant: Uber
category: Transportation
subcategory: Rideshare

[Large Purchase]
match: is_large
tags: large
`

func TestParseRules(t *testing.T) {
	rules, vars, err := ParseRules(sampleRules)
	require.NoError(t, err)

	require.Len(t, vars, 2)
	assert.Equal(t, "is_large", vars[0].Name)
	assert.Equal(t, "amount > 500", vars[0].Expression)
	assert.Equal(t, 2, vars[0].Line)
	assert.Equal(t, "is_holiday", vars[1].Name)

	require.Len(t, rules, 3)

	netflix := rules[0]
	assert.Equal(t, "Netflix", netflix.Name)
	assert.Equal(t, `contains("NETFLIX")`, netflix.Match)
	assert.Equal(t, "Subscriptions", netflix.Category)
	assert.Equal(t, "Streaming", netflix.Subcategory)
	assert.Equal(t, "Netflix", netflix.DisplayMerchant())
	assert.Equal(t, []string{"entertainment", "recurring"}, netflix.Tags.Sorted())
	assert.Equal(t, 5, netflix.Line)
	assert.NotNil(t, netflix.Expression())
	assert.True(t, netflix.IsCategorizationRule())

	uber := rules[1]
	assert.Equal(t, "Uber", uber.DisplayMerchant())
	assert.Empty(t, uber.Tags)

	large := rules[2]
	assert.False(t, large.IsCategorizationRule())
	assert.True(t, large.Tags.Has("large"))
}

func TestParseRules_Deterministic(t *testing.T) {
	a, av, err := ParseRules(sampleRules)
	require.NoError(t, err)
	b, bv, err := ParseRules(sampleRules)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, av, bv)
}

func TestParseRules_CommentsAndBlankLines(t *testing.T) {
	rules, vars, err := ParseRules("\n# only comments\n   \n\t# indented comment\n")
	require.NoError(t, err)
	assert.Empty(t, rules)
	assert.Empty(t, vars)
}

func TestParseRules_WindowsLineEndings(t *testing.T) {
	rules, _, err := ParseRules("[Netflix]\r\nmatch: contains(\"NETFLIX\")\r\ncategory: Subscriptions\r\n")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "Subscriptions", rules[0].Category)
}

func TestParseRules_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantMsg  string
		wantLine int
		wantRule string
	}{
		{
			name:     "empty rule name",
			content:  "[  ]\nmatch: true\ncategory: X\n",
			wantMsg:  "Line 1: Empty rule name",
			wantLine: 1,
		},
		{
			name:     "missing match",
			content:  "[Netflix]\ncategory: Subscriptions\n",
			wantMsg:  "Line 1: Rule 'Netflix' missing 'match:' expression",
			wantLine: 1,
			wantRule: "Netflix",
		},
		{
			name:     "missing match before next rule",
			content:  "[A]\nmatch: true\ncategory: X\n\n[B]\ncategory: Y\n\n[C]\nmatch: true\ncategory: Z\n",
			wantMsg:  "Rule 'B' missing 'match:' expression",
			wantLine: 5,
			wantRule: "B",
		},
		{
			name:     "no category or tags",
			content:  "[Netflix]\nmatch: contains(\"NETFLIX\")\nsubcategory: Streaming\n",
			wantMsg:  "Rule 'Netflix' must have 'category:' or 'tags:'",
			wantLine: 1,
			wantRule: "Netflix",
		},
		{
			name:     "empty tags do not count",
			content:  "[Netflix]\nmatch: true\ntags: , ,\n",
			wantMsg:  "must have 'category:' or 'tags:'",
			wantLine: 1,
			wantRule: "Netflix",
		},
		{
			name:     "invalid match expression",
			content:  "[Netflix]\nmatch: contains(\"NETFLIX\"\ncategory: Subscriptions\n",
			wantMsg:  "Invalid match expression in 'Netflix'",
			wantLine: 1,
			wantRule: "Netflix",
		},
		{
			name:     "unknown property",
			content:  "[Netflix]\nmatch: true\ncategory: X\npriority: 5\n",
			wantMsg:  "Line 4: Unknown property: priority",
			wantLine: 4,
			wantRule: "Netflix",
		},
		{
			name:     "duplicate property",
			content:  "[Netflix]\nmatch: true\ncategory: X\ncategory: Y\n",
			wantMsg:  "Duplicate property 'category'",
			wantLine: 4,
			wantRule: "Netflix",
		},
		{
			name:     "unexpected content in rule",
			content:  "[Netflix]\nmatch: true\ncategory: X\nis_large = amount > 5\n",
			wantMsg:  "Line 4: Unexpected content in rule",
			wantLine: 4,
			wantRule: "Netflix",
		},
		{
			name:     "unexpected top level content",
			content:  "just some words\n",
			wantMsg:  "Line 1: Unexpected content",
			wantLine: 1,
		},
		{
			name:     "invalid variable expression",
			content:  "is_large = amount >\n",
			wantMsg:  "Invalid variable expression 'is_large'",
			wantLine: 1,
		},
		{
			name:     "reserved variable name",
			content:  "amount = 5\n",
			wantMsg:  "'amount' is a reserved name",
			wantLine: 1,
		},
		{
			name:     "redefined variable",
			content:  "big = amount > 5\nBIG = amount > 10\n",
			wantMsg:  "Line 2: Variable 'big' is already defined",
			wantLine: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, _, err := ParseRules(tt.content)
			require.Error(t, err)
			assert.Nil(t, rules)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.wantLine, pe.Line)
			assert.Equal(t, tt.wantRule, pe.Rule)
		})
	}
}

func TestParse_MalformedFileYieldsNoEngine(t *testing.T) {
	engine, err := Parse("[Netflix]\ncategory: Subscriptions\n")
	require.Error(t, err)
	assert.Nil(t, engine)
	assert.True(t, IsParseError(err))
	assert.Contains(t, err.Error(), "Netflix")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.merchants")
	require.NoError(t, os.WriteFile(path, []byte(sampleRules), 0o600))

	engine, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, engine.Rules(), 3)
	assert.Equal(t, path, engine.Rules()[0].Source)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.merchants"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(dir, "bad.merchants")
	require.NoError(t, os.WriteFile(bad, []byte("[X]\nmatch: true\n"), 0o600))
	_, err = LoadFile(bad)
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.Contains(t, err.Error(), bad)
}

func TestParseTags(t *testing.T) {
	tags := ParseTags(" Large, RECURRING,large,,  ")
	assert.Equal(t, []string{"large", "recurring"}, tags.Sorted())
	assert.Equal(t, "large, recurring", tags.String())
	assert.True(t, tags.Has("LARGE"))
	assert.False(t, tags.Has("holiday"))
}
