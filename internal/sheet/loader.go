// Package sheet loads Month/Income/Expense tables from spreadsheet files.
package sheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/finstat/internal/encoding"
	"github.com/MrJamesThe3rd/finstat/internal/report"
)

// Format is a supported spreadsheet format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatOf picks a format from the file extension.
func FormatOf(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx":
		return FormatXLSX, true
	case ".csv", ".txt":
		return FormatCSV, true
	}

	return "", false
}

// Loader reads spreadsheets into report tables.
type Loader struct {
	sheetName string
}

// NewLoader returns a loader. sheetName selects a workbook sheet; empty means
// the first one.
func NewLoader(sheetName string) *Loader {
	return &Loader{sheetName: sheetName}
}

// Load opens path and parses it.
func (l *Loader) Load(path string) (*report.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loadErr(path, err, "unreadable file")
	}
	defer f.Close()

	return l.Parse(path, f)
}

// Parse reads a spreadsheet named name from r.
func (l *Loader) Parse(name string, r io.Reader) (*report.Table, error) {
	format, ok := FormatOf(name)
	if !ok {
		return nil, loadErr(name, nil, "unsupported file type %q", filepath.Ext(name))
	}

	var (
		rows [][]string
		err  error
	)

	switch format {
	case FormatXLSX:
		rows, err = l.readWorkbook(name, r)
	case FormatCSV:
		rows, err = readCSV(name, r)
	}

	if err != nil {
		return nil, err
	}

	cols, headerIdx, absent := findHeader(rows)
	if cols == nil {
		return nil, loadErr(name, nil, "missing required columns: %s", strings.Join(absent, ", "))
	}

	return toTable(name, cols, rows[headerIdx+1:], headerIdx)
}

func (l *Loader) readWorkbook(name string, r io.Reader) ([][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, loadErr(name, err, "malformed workbook")
	}
	defer wb.Close()

	sheet := l.sheetName
	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, loadErr(name, nil, "workbook has no sheets")
		}

		sheet = sheets[0]
	}

	rows, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, loadErr(name, err, "reading sheet %q", sheet)
	}

	return rows, nil
}

func readCSV(name string, r io.Reader) ([][]string, error) {
	utf8r, cs, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, loadErr(name, err, "detect encoding")
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, loadErr(name, err, "unreadable file")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, loadErr(name, err, "malformed csv")
	}

	slog.Debug("read csv", "file", name, "charset", cs, "delimiter", string(reader.Comma), "rows", len(rows))

	return rows, nil
}

// sniffDelimiter picks whichever of ',', ';' and tab occurs most often over
// the first few non-empty lines.
func sniffDelimiter(data []byte) rune {
	const maxLines = 10

	counts := map[rune]int{}
	sc := bufio.NewScanner(bytes.NewReader(data))

	for n := 0; n < maxLines && sc.Scan(); {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		for _, c := range []rune{',', ';', '\t'} {
			counts[c] += strings.Count(line, string(c))
		}

		n++
	}

	best := ','
	for _, c := range []rune{';', '\t'} {
		if counts[c] > counts[best] {
			best = c
		}
	}

	return best
}
