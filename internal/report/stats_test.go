package report_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finstat/internal/report"
)

func sampleTable() *report.Table {
	return &report.Table{Records: []report.Record{
		{Month: "Jan", Income: 1000, Expense: 500},
		{Month: "Feb", Income: 1500, Expense: 300},
		{Month: "Mar", Income: 800, Expense: 900},
	}}
}

func TestAnalyze_Sample(t *testing.T) {
	stats, err := report.Analyze(sampleTable())
	require.NoError(t, err)

	assert.Equal(t, "Feb", stats.HighestIncomeMonth)
	assert.Equal(t, "Mar", stats.LowestIncomeMonth)
	assert.Equal(t, "Mar", stats.HighestExpenseMonth)
	assert.Equal(t, "Feb", stats.LowestExpenseMonth)
	assert.Equal(t, "1100.00", stats.FormattedAverageIncome())
	assert.Equal(t, "566.67", stats.FormattedAverageExpense())
	assert.InDelta(t, 566.6666, stats.AverageExpense, 0.001)

	assert.Equal(t, report.Extremes{MaxIncome: 1, MinIncome: 2, MaxExpense: 2, MinExpense: 1}, stats.Extremes)
}

func TestAnalyze_Empty(t *testing.T) {
	_, err := report.Analyze(&report.Table{})
	require.Error(t, err)

	var aerr *report.AnalysisError
	assert.True(t, errors.As(err, &aerr))
	assert.ErrorIs(t, err, report.ErrEmptyTable)

	_, err = report.Analyze(nil)
	assert.ErrorIs(t, err, report.ErrEmptyTable)
}

func TestAnalyze_TiesResolveToFirstOccurrence(t *testing.T) {
	type testCase struct {
		name    string
		records []report.Record
		want    report.Extremes
	}

	tests := []testCase{
		{
			name: "all equal",
			records: []report.Record{
				{Month: "Jan", Income: 100, Expense: 100},
				{Month: "Feb", Income: 100, Expense: 100},
				{Month: "Mar", Income: 100, Expense: 100},
			},
			want: report.Extremes{},
		},
		{
			name: "tied maximum later in table",
			records: []report.Record{
				{Month: "Jan", Income: 10, Expense: 5},
				{Month: "Feb", Income: 50, Expense: 1},
				{Month: "Mar", Income: 50, Expense: 1},
				{Month: "Apr", Income: 10, Expense: 9},
			},
			want: report.Extremes{MaxIncome: 1, MinIncome: 0, MaxExpense: 3, MinExpense: 1},
		},
		{
			name:    "single row",
			records: []report.Record{{Month: "Jan", Income: 1, Expense: 2}},
			want:    report.Extremes{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := report.Analyze(&report.Table{Records: tt.records})
			require.NoError(t, err)
			assert.Equal(t, tt.want, stats.Extremes)
			assert.Equal(t, tt.records[tt.want.MaxIncome].Month, stats.HighestIncomeMonth)
			assert.Equal(t, tt.records[tt.want.MinExpense].Month, stats.LowestExpenseMonth)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := map[float64]string{
		0:         "0.00",
		1100:      "1100.00",
		0.125:     "0.13",
		-0.125:    "-0.13",
		2.5:       "2.50",
		1234.5678: "1234.57",
	}

	for in, want := range tests {
		assert.Equal(t, want, report.FormatAmount(in), "input %v", in)
	}
}

func TestAnalyze_OutOfRange(t *testing.T) {
	table := &report.Table{Records: []report.Record{
		{Month: "Jan", Income: 1.7e308, Expense: 1},
		{Month: "Feb", Income: 1.7e308, Expense: 2},
	}}

	_, err := report.Analyze(table)
	require.Error(t, err)

	var aerr *report.AnalysisError
	assert.True(t, errors.As(err, &aerr))
	assert.ErrorIs(t, err, report.ErrOutOfRange)
}

func TestFormatAmount_NonFinite(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, "+Inf", report.FormatAmount(math.Inf(1)))
		assert.Equal(t, "-Inf", report.FormatAmount(math.Inf(-1)))
		assert.Equal(t, "NaN", report.FormatAmount(math.NaN()))
	})
}
