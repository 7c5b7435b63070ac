package export

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MrJamesThe3rd/finstat/internal/analysis"
	"github.com/MrJamesThe3rd/finstat/internal/report"
)

// SummaryFile is the name of the text summary inside an archive.
const SummaryFile = "summary.txt"

// Service bundles rendered charts and a text summary of an analyzed upload.
type Service struct {
	files func() map[string]string
}

// NewService creates a Service. files returns the on-disk chart paths keyed
// by the name they get in the archive.
func NewService(files func() map[string]string) *Service {
	return &Service{files: files}
}

// Summary renders a plain-text report of the stats and every month.
func (s *Service) Summary(res *analysis.Result) string {
	var sb strings.Builder

	st := res.Stats
	fmt.Fprintf(&sb, "Highest income:  %s\n", st.HighestIncomeMonth)
	fmt.Fprintf(&sb, "Lowest income:   %s\n", st.LowestIncomeMonth)
	fmt.Fprintf(&sb, "Highest expense: %s\n", st.HighestExpenseMonth)
	fmt.Fprintf(&sb, "Lowest expense:  %s\n", st.LowestExpenseMonth)
	fmt.Fprintf(&sb, "Average income:  %s\n", st.FormattedAverageIncome())
	fmt.Fprintf(&sb, "Average expense: %s\n\n", st.FormattedAverageExpense())

	for i, r := range res.Table.Records {
		label := r.Month
		if i < len(res.Months) {
			label = res.Months[i]
		}

		net := r.Income - r.Expense

		sign := "+"
		if net < 0 {
			sign = "-"
			net = -net
		}

		fmt.Fprintf(&sb, "* %s | +%s | -%s | %s%s\n",
			label, report.FormatAmount(r.Income), report.FormatAmount(r.Expense), sign, report.FormatAmount(net))
	}

	tot := res.Totals
	fmt.Fprintf(&sb, "\nTotal: +%s | -%s | net %s\n",
		report.FormatAmount(tot.Income), report.FormatAmount(tot.Expense), report.FormatAmount(tot.Net))

	return sb.String()
}

// Archive writes a zip holding the charts and the summary to w.
func (s *Service) Archive(w io.Writer, res *analysis.Result) error {
	zw := zip.NewWriter(w)

	files := s.files()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if err := addFile(zw, name, files[name]); err != nil {
			return fmt.Errorf("adding %s: %w", name, err)
		}
	}

	sw, err := zw.Create(SummaryFile)
	if err != nil {
		return fmt.Errorf("adding %s: %w", SummaryFile, err)
	}

	if _, err := io.WriteString(sw, s.Summary(res)); err != nil {
		return fmt.Errorf("writing %s: %w", SummaryFile, err)
	}

	return zw.Close()
}

func addFile(zw *zip.Writer, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zf, err := zw.Create(filepath.Base(name))
	if err != nil {
		return err
	}

	_, err = io.Copy(zf, f)

	return err
}
