package sheet_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/finstat/internal/report"
	"github.com/MrJamesThe3rd/finstat/internal/sheet"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "budget.xlsx")
	require.NoError(t, f.SaveAs(path))

	return path
}

func TestLoader_Workbook(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Month", "Income", "Expense", "Notes"},
		{"Jan", 1000, 500, "start"},
		{"Feb", 1500.5, 300, ""},
		{"Mar", 800, 900},
	})

	table, err := sheet.NewLoader("").Load(path)
	require.NoError(t, err)

	assert.Equal(t, []report.Record{
		{Month: "Jan", Income: 1000, Expense: 500},
		{Month: "Feb", Income: 1500.5, Expense: 300},
		{Month: "Mar", Income: 800, Expense: 900},
	}, table.Records)
}

func TestLoader_WorkbookMissingIncome(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Month", "Expense"},
		{"Jan", 500},
	})

	_, err := sheet.NewLoader("").Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, sheet.ErrLoad)

	var lerr *sheet.LoadError
	require.True(t, errors.As(err, &lerr))
	assert.Contains(t, lerr.Reason, "Income")
	assert.NotContains(t, lerr.Reason, "Expense")
}

func TestLoader_WorkbookNamedSheet(t *testing.T) {
	path := writeWorkbook(t, [][]any{{"Month", "Income", "Expense"}, {"Jan", 1, 2}})

	_, err := sheet.NewLoader("Missing").Load(path)
	assert.ErrorIs(t, err, sheet.ErrLoad)

	table, err := sheet.NewLoader("Sheet1").Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestLoader_CSV(t *testing.T) {
	type testCase struct {
		name    string
		content string
		want    []report.Record
		wantErr string
	}

	tests := []testCase{
		{
			name:    "comma separated",
			content: "Month,Income,Expense\nJan,1000,500\nFeb,1500,300\n",
			want: []report.Record{
				{Month: "Jan", Income: 1000, Expense: 500},
				{Month: "Feb", Income: 1500, Expense: 300},
			},
		},
		{
			name:    "semicolon with european numbers and preamble",
			content: "Household budget\n\nmonth ; income ; expense\nJanuary;1.234,50;-10,25\n;;\n",
			want: []report.Record{
				{Month: "January", Income: 1234.5, Expense: -10.25},
			},
		},
		{
			name:    "tab separated grouped thousands",
			content: "Expense\tMonth\tIncome\n\"1,200.75\"\tMar\t2,000\n",
			want: []report.Record{
				{Month: "Mar", Income: 2000, Expense: 1200.75},
			},
		},
		{
			name:    "header only",
			content: "Month,Income,Expense\n",
		},
		{
			name:    "missing income column",
			content: "Month,Expense\nJan,500\n",
			wantErr: "missing required columns: Income",
		},
		{
			name:    "non numeric income",
			content: "Month,Income,Expense\nJan,lots,500\n",
			wantErr: "row 2: Income is not a number",
		},
		{
			name:    "blank month",
			content: "Month,Income,Expense\nJan,1,2\n,3,4\n",
			wantErr: "row 3: missing Month",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := sheet.NewLoader("").Parse("upload.csv", strings.NewReader(tt.content))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, sheet.ErrLoad)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, table.Records)
		})
	}
}

func TestLoader_Errors(t *testing.T) {
	l := sheet.NewLoader("")

	_, err := l.Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, sheet.ErrLoad)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = l.Parse("report.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, sheet.ErrLoad)

	_, err = l.Parse("broken.xlsx", strings.NewReader("not a zip"))
	assert.ErrorIs(t, err, sheet.ErrLoad)
}

func TestFormatOf(t *testing.T) {
	f, ok := sheet.FormatOf("A.XLSX")
	assert.True(t, ok)
	assert.Equal(t, sheet.FormatXLSX, f)

	f, ok = sheet.FormatOf("data.csv")
	assert.True(t, ok)
	assert.Equal(t, sheet.FormatCSV, f)

	_, ok = sheet.FormatOf("data.xls")
	assert.False(t, ok)
}

func TestLoader_RejectsNonFiniteAmounts(t *testing.T) {
	tests := []struct {
		name    string
		content string
		row     string
	}{
		{name: "income overflow", content: "Month,Income,Expense\nJan,1e400,500\n", row: "row 2"},
		{name: "negative expense overflow", content: "Month,Income,Expense\nJan,1,2\nFeb,3,-1e400\n", row: "row 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sheet.NewLoader("").Parse("budget.csv", strings.NewReader(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, sheet.ErrLoad)
			assert.ErrorContains(t, err, tt.row)
		})
	}
}
