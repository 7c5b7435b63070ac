package sheet

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finstat/internal/report"
)

const (
	ColMonth   = "Month"
	ColIncome  = "Income"
	ColExpense = "Expense"
)

var errOutOfRange = errors.New("value out of range")

var requiredCols = []string{ColMonth, ColIncome, ColExpense}

// colIndex maps a required column name to its index in the row.
type colIndex map[string]int

// findHeader scans rows for the first one holding every required column.
// It returns the index map, the header row index and the names still missing
// from the best candidate when no row matches.
func findHeader(rows [][]string) (colIndex, int, []string) {
	var best []string

	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			for _, want := range requiredCols {
				if _, seen := cols[want]; !seen && strings.EqualFold(name, want) {
					cols[want] = i
				}
			}
		}

		if len(cols) == len(requiredCols) {
			return cols, rowIdx, nil
		}

		if len(cols) > 0 && (best == nil || len(requiredCols)-len(cols) < len(best)) {
			best = missing(cols)
		}
	}

	if best == nil {
		best = append([]string(nil), requiredCols...)
	}

	return nil, -1, best
}

func missing(cols colIndex) []string {
	var out []string

	for _, name := range requiredCols {
		if _, ok := cols[name]; !ok {
			out = append(out, name)
		}
	}

	return out
}

// toTable validates the data rows following the header.
// headerRow is the 0-based index of the header in the file (for messages).
func toTable(path string, cols colIndex, rows [][]string, headerRow int) (*report.Table, error) {
	t := &report.Table{}

	for i, row := range rows {
		rowNum := headerRow + i + 2

		if blank(row) {
			continue
		}

		m := cellValue(row, cols[ColMonth])
		if m == "" {
			return nil, loadErr(path, nil, "row %d: missing %s", rowNum, ColMonth)
		}

		income, err := parseNumber(cellValue(row, cols[ColIncome]))
		if err != nil {
			return nil, loadErr(path, err, "row %d: %s is not a number", rowNum, ColIncome)
		}

		expense, err := parseNumber(cellValue(row, cols[ColExpense]))
		if err != nil {
			return nil, loadErr(path, err, "row %d: %s is not a number", rowNum, ColExpense)
		}

		t.Records = append(t.Records, report.Record{Month: m, Income: income, Expense: expense})
	}

	return t, nil
}

// parseNumber accepts plain ("1234.5"), grouped ("1,234.50") and European
// ("1.234,50") notation. A lone comma followed by exactly three digits is a
// thousands separator; any other lone comma is the decimal separator.
func parseNumber(s string) (float64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if clean == "" {
		return 0, fmt.Errorf("empty value")
	}

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")

	switch {
	case lastComma >= 0 && lastDot > lastComma:
		clean = strings.ReplaceAll(clean, ",", "")
	case lastDot >= 0 && lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case lastComma >= 0 && strings.Count(clean, ",") > 1:
		clean = strings.ReplaceAll(clean, ",", "")
	case lastComma >= 0 && lastDot < 0 && len(clean)-lastComma-1 == 3:
		clean = strings.ReplaceAll(clean, ",", "")
	case lastComma >= 0:
		clean = strings.Replace(clean, ",", ".", 1)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}

	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("parse %q: %w", s, errOutOfRange)
	}

	return f, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
