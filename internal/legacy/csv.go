// Package legacy reads the older merchant_categories.csv rule format and
// converts it to merchant rules, either for direct use or for migration to
// a .merchants file.
package legacy

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSV column names.
const (
	ColumnPattern     = "Pattern"
	ColumnMerchant    = "Merchant"
	ColumnCategory    = "Category"
	ColumnSubcategory = "Subcategory"
	ColumnTags        = "Tags"
)

var requiredColumns = []string{ColumnPattern, ColumnMerchant, ColumnCategory, ColumnSubcategory}

// Row is one rule from a legacy CSV file. Pattern may carry bracket modifiers.
type Row struct {
	Pattern     string
	Merchant    string
	Category    string
	Subcategory string
	Tags        []string
	Line        int
}

// ReadCSVFile reads rules from a legacy CSV file.
func ReadCSVFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy rules: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ReadCSV reads rules with the header Pattern,Merchant,Category,Subcategory
// and an optional Tags column whose values are separated by "|". Lines
// starting with # and rows with an empty Pattern are skipped.
func ReadCSV(r io.Reader) ([]Row, error) {
	content, err := stripComments(r)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read rule: %w", err)
		}

		row := Row{
			Pattern:     field(record, ColumnPattern),
			Merchant:    field(record, ColumnMerchant),
			Category:    field(record, ColumnCategory),
			Subcategory: field(record, ColumnSubcategory),
			Tags:        splitTags(field(record, ColumnTags)),
		}
		if row.Pattern == "" {
			continue
		}
		row.Line, _ = reader.FieldPos(0)
		rows = append(rows, row)
	}

	return rows, nil
}

// stripComments blanks out comment lines, keeping line numbers intact.
func stripComments(r io.Reader) (string, error) {
	var b strings.Builder
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			line = ""
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read legacy rules: %w", err)
	}
	return b.String(), nil
}

func splitTags(value string) []string {
	var tags []string
	for _, tag := range strings.Split(value, "|") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
