package report

import (
	"strings"
	"time"
)

// Record is one row of an uploaded sheet.
type Record struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// Table is an ordered set of records as they appeared in the source file.
type Table struct {
	Records []Record `json:"records"`
}

// Totals holds column sums for a table.
type Totals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

// MonthResolver maps a raw Month cell to a calendar month.
type MonthResolver func(raw string) (time.Month, error)

func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.Records)
}

// Months returns the raw Month values in table order.
func (t *Table) Months() []string {
	months := make([]string, 0, t.Len())
	for _, r := range t.Records {
		months = append(months, r.Month)
	}

	return months
}

// Incomes returns the Income column in table order.
func (t *Table) Incomes() []float64 {
	values := make([]float64, 0, t.Len())
	for _, r := range t.Records {
		values = append(values, r.Income)
	}

	return values
}

// Expenses returns the Expense column in table order.
func (t *Table) Expenses() []float64 {
	values := make([]float64, 0, t.Len())
	for _, r := range t.Records {
		values = append(values, r.Expense)
	}

	return values
}

func (t *Table) Totals() Totals {
	var tot Totals
	for _, r := range t.Records {
		tot.Income += r.Income
		tot.Expense += r.Expense
	}

	tot.Net = tot.Income - tot.Expense

	return tot
}

// Find returns the first record whose Month resolves to m. Rows the resolver
// rejects fall back to a case-insensitive comparison against raw.
func (t *Table) Find(m time.Month, raw string, resolve MonthResolver) (Record, bool) {
	if t == nil {
		return Record{}, false
	}

	for _, r := range t.Records {
		if resolve != nil {
			if got, err := resolve(r.Month); err == nil {
				if got == m {
					return r, true
				}

				continue
			}
		}

		if strings.EqualFold(strings.TrimSpace(r.Month), strings.TrimSpace(raw)) {
			return r, true
		}
	}

	return Record{}, false
}

// ChartSet holds the web-relative paths of the rendered charts.
type ChartSet struct {
	Line      string `json:"line"`
	Bar       string `json:"bar"`
	Pie       string `json:"pie"`
	Histogram string `json:"hist"`
}

// ChartKind names one chart of a ChartSet.
type ChartKind string

const (
	ChartLine      ChartKind = "line"
	ChartBar       ChartKind = "bar"
	ChartPie       ChartKind = "pie"
	ChartHistogram ChartKind = "hist"
)

// ParseChartKind returns the kind for s, defaulting to ChartLine.
func ParseChartKind(s string) ChartKind {
	switch ChartKind(strings.ToLower(strings.TrimSpace(s))) {
	case ChartBar:
		return ChartBar
	case ChartPie:
		return ChartPie
	case ChartHistogram:
		return ChartHistogram
	}

	return ChartLine
}

// Path returns the chart path for the given kind.
func (c ChartSet) Path(kind ChartKind) string {
	switch kind {
	case ChartBar:
		return c.Bar
	case ChartPie:
		return c.Pie
	case ChartHistogram:
		return c.Histogram
	}

	return c.Line
}

// Paths returns all chart paths in a stable order.
func (c ChartSet) Paths() []string {
	return []string{c.Line, c.Bar, c.Pie, c.Histogram}
}
