package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/merchant"
	"github.com/Veraticus/tally/internal/model"
)

const explainDateLayout = "2006-01-02"

// RenderExplain describes how the rules treated one transaction: the
// outcome, the categorizing rule, every rule that added tags, and any
// expressions that failed to evaluate.
func RenderExplain(txn model.Transaction, result merchant.MatchResult) string {
	var b strings.Builder

	b.WriteString(FormatTitle("Transaction"))
	b.WriteString("\n")
	writeField(&b, "Description", txn.Description)
	if txn.RawDescription != "" && txn.RawDescription != txn.Description {
		writeField(&b, "Raw", txn.RawDescription)
	}
	writeField(&b, "Amount", fmt.Sprintf("%.2f", txn.Amount))
	if txn.HasDate() {
		writeField(&b, "Date", txn.Date.Format(explainDateLayout))
	} else {
		writeField(&b, "Date", SubtleStyle.Render("none"))
	}

	b.WriteString("\n")
	b.WriteString(FormatTitle("Result"))
	b.WriteString("\n")
	if result.Matched {
		b.WriteString(FormatSuccess("Categorized"))
		b.WriteString("\n")
		writeField(&b, "Merchant", result.Merchant)
		writeField(&b, "Category", result.Category)
		if result.Subcategory != "" {
			writeField(&b, "Subcategory", result.Subcategory)
		}
		if result.NotTravel {
			writeField(&b, "Not travel", "yes")
		}
		writeField(&b, "Rule", describeRule(result.MatchedRule))
	} else {
		b.WriteString(FormatWarning("No categorization rule matched"))
		b.WriteString("\n")
	}

	if len(result.Tags) > 0 {
		tags := result.Tags.Sorted()
		rendered := make([]string, len(tags))
		for i, tag := range tags {
			rendered[i] = TagStyle.Render(tag)
		}
		writeField(&b, "Tags", strings.Join(rendered, ", "))
	}

	if len(result.TagRules) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatTitle("Tag rules"))
		b.WriteString("\n")
		for _, rule := range result.TagRules {
			fmt.Fprintf(&b, "%s %s [%s]\n", RuleIcon, describeRule(rule), rule.Tags.String())
		}
	}

	if len(result.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatTitle("Warnings"))
		b.WriteString("\n")
		for _, w := range result.Warnings {
			b.WriteString(FormatWarning(w.String()))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString(LabelStyle.Render(label + ":"))
	b.WriteString(value)
	b.WriteString("\n")
}

func describeRule(rule *merchant.Rule) string {
	if rule == nil {
		return ""
	}
	where := fmt.Sprintf("line %d", rule.Line)
	if rule.Source != "" {
		where = fmt.Sprintf("%s:%d", rule.Source, rule.Line)
	}
	return fmt.Sprintf("%s (%s) %s", rule.Name, where, SubtleStyle.Render(rule.Match))
}
