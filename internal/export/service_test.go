package export_test

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finstat/internal/analysis"
	"github.com/MrJamesThe3rd/finstat/internal/export"
	"github.com/MrJamesThe3rd/finstat/internal/report"
)

func result(t *testing.T) *analysis.Result {
	t.Helper()

	table := &report.Table{Records: []report.Record{
		{Month: "Jan", Income: 1000, Expense: 500},
		{Month: "Feb", Income: 1500, Expense: 300},
		{Month: "Mar", Income: 800, Expense: 900},
	}}

	stats, err := report.Analyze(table)
	require.NoError(t, err)

	return &analysis.Result{
		Table:  table,
		Stats:  stats,
		Months: []string{"January 2025", "February 2025", "March 2025"},
		Totals: table.Totals(),
	}
}

func TestService_Summary(t *testing.T) {
	svc := export.NewService(func() map[string]string { return nil })

	got := svc.Summary(result(t))

	assert.Contains(t, got, "Highest income:  Feb\n")
	assert.Contains(t, got, "Average expense: 566.67\n")
	assert.Contains(t, got, "* February 2025 | +1500.00 | -300.00 | +1200.00\n")
	assert.Contains(t, got, "* March 2025 | +800.00 | -900.00 | -100.00\n")
	assert.Contains(t, got, "Total: +3300.00 | -1700.00 | net 1600.00\n")
}

func TestService_Archive(t *testing.T) {
	dir := t.TempDir()
	line := filepath.Join(dir, "line.png")
	require.NoError(t, os.WriteFile(line, []byte("png bytes"), 0o644))

	svc := export.NewService(func() map[string]string {
		return map[string]string{"line.png": line}
	})

	var buf bytes.Buffer
	require.NoError(t, svc.Archive(&buf, result(t)))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	contents := map[string]string{}

	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()

		contents[f.Name] = string(data)
	}

	assert.Equal(t, "png bytes", contents["line.png"])
	assert.Contains(t, contents[export.SummaryFile], "Average income:  1100.00")
}

func TestService_ArchiveMissingChart(t *testing.T) {
	svc := export.NewService(func() map[string]string {
		return map[string]string{"line.png": filepath.Join(t.TempDir(), "missing.png")}
	})

	err := svc.Archive(io.Discard, result(t))
	assert.ErrorContains(t, err, "line.png")
}
