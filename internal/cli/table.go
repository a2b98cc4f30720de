package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/tally/internal/model"
	"github.com/charmbracelet/lipgloss"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

// WriteResults prints one row per categorized transaction.
func WriteResults(out io.Writer, results []model.CategorizedTransaction) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("Date"),
		headerStyle.Render("Description"),
		headerStyle.Render("Amount"),
		headerStyle.Render("Merchant"),
		headerStyle.Render("Category"),
		headerStyle.Render("Tags"))

	for _, r := range results {
		date := "-"
		if r.HasDate() {
			date = r.Date.Format(explainDateLayout)
		}
		category := SubtleStyle.Render("uncategorized")
		if r.Matched {
			category = r.Category
			if r.Subcategory != "" {
				category += " / " + r.Subcategory
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\t%s\n",
			date,
			truncate(r.Description, 40),
			r.Amount,
			r.Merchant,
			category,
			strings.Join(r.Tags, ", "))
	}

	return w.Flush()
}

// WriteRuns prints a listing of stored runs.
func WriteRuns(out io.Writer, runs []model.Run) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("ID"),
		headerStyle.Render("Started"),
		headerStyle.Render("Total"),
		headerStyle.Render("Matched"),
		headerStyle.Render("Tagged"),
		headerStyle.Render("Rules"))
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.Total,
			run.Matched,
			run.Tagged,
			run.Source)
	}

	return w.Flush()
}

// RenderSummary renders the totals of a run in a box.
func RenderSummary(run model.Run, elapsed time.Duration, warnings int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Transactions: %d\n", run.Total)
	fmt.Fprintf(&b, "Categorized:  %d (%s)\n", run.Matched, percent(run.Matched, run.Total))
	fmt.Fprintf(&b, "Tagged:       %d\n", run.Tagged)
	if warnings > 0 {
		fmt.Fprintf(&b, "Warnings:     %d\n", warnings)
	}
	fmt.Fprintf(&b, "Time taken:   %s", elapsed.Round(time.Millisecond))
	return RenderBox("Run "+run.ID, b.String())
}

func percent(n, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(n)*100/float64(total))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
