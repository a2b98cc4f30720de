package legacy

import (
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/merchant"
	"github.com/Veraticus/tally/internal/modifier"
)

// SourceLabel marks rules that came from a legacy CSV file.
const SourceLabel = "legacy"

// ToRule converts a row to a merchant rule whose match expression is the
// row's pattern and modifiers rendered as an expression.
func ToRule(row Row) (*merchant.Rule, error) {
	parsed, err := modifier.Parse(row.Pattern)
	if err != nil {
		return nil, &merchant.ParseError{
			Line: row.Line,
			Rule: row.Merchant,
			Msg:  fmt.Sprintf("Invalid pattern for '%s': %v", row.Merchant, err),
		}
	}

	return &merchant.Rule{
		Name:        row.Merchant,
		Merchant:    row.Merchant,
		Match:       modifier.ToExpression(parsed),
		Category:    row.Category,
		Subcategory: row.Subcategory,
		Tags:        merchant.NewTags(row.Tags...),
		NotTravel:   parsed.NotTravel,
		Line:        row.Line,
		Source:      SourceLabel,
	}, nil
}

// ToRules converts rows in order.
func ToRules(rows []Row) ([]*merchant.Rule, error) {
	rules := make([]*merchant.Rule, 0, len(rows))
	for _, row := range rows {
		rule, err := ToRule(row)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

const migrationHeader = `# Tally Merchant Rules
# Migrated from merchant_categories.csv
#
# Format:
#   [Rule Name]
#   match: <expression>
#   category: <category>
#   subcategory: <subcategory>
#   tags: tag1, tag2  # optional
`

// RenderMerchants renders rows as .merchants file content. The not_travel
// flag has no native form and is kept as a comment on the rule.
func RenderMerchants(rows []Row) (string, error) {
	var b strings.Builder
	b.WriteString(migrationHeader)
	b.WriteString("\n")

	for _, row := range rows {
		parsed, err := modifier.Parse(row.Pattern)
		if err != nil {
			return "", fmt.Errorf("line %d: %w", row.Line, err)
		}

		fmt.Fprintf(&b, "[%s]\n", row.Merchant)
		if parsed.NotTravel {
			b.WriteString("# not_travel\n")
		}
		fmt.Fprintf(&b, "match: %s\n", modifier.ToExpression(parsed))
		fmt.Fprintf(&b, "category: %s\n", row.Category)
		fmt.Fprintf(&b, "subcategory: %s\n", row.Subcategory)
		if len(row.Tags) > 0 {
			fmt.Fprintf(&b, "tags: %s\n", strings.Join(row.Tags, ", "))
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

// CSVSource reads rules from a legacy CSV file.
type CSVSource struct {
	Path string
}

// Name returns the file path.
func (s CSVSource) Name() string { return s.Path }

// Load reads and converts the file.
func (s CSVSource) Load() ([]*merchant.Rule, []merchant.Variable, error) {
	rows, err := ReadCSVFile(s.Path)
	if err != nil {
		return nil, nil, err
	}
	rules, err := ToRules(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return rules, nil, nil
}

var _ merchant.Source = CSVSource{}
