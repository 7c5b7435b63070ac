// Package graph renders the four report charts as PNG files.
package graph

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/finstat/internal/report"
)

const (
	fileLine      = "line.png"
	fileBar       = "bar.png"
	filePie       = "pie.png"
	fileHistogram = "hist.png"

	// HistogramBins is the number of Expense buckets on the histogram.
	HistogramBins = 6
)

var (
	colorIncome  = drawing.ColorFromHex("1f77b4")
	colorExpense = drawing.ColorFromHex("ff7f0e")

	colorHighIncome  = drawing.ColorFromHex("008000")
	colorLowIncome   = drawing.ColorFromHex("ff0000")
	colorHighExpense = drawing.ColorFromHex("800080")
	colorLowExpense  = drawing.ColorFromHex("ffa500")
)

// Renderer writes charts into a fixed directory. Every call overwrites the
// same four files.
type Renderer struct {
	mu        sync.Mutex
	dir       string
	urlPrefix string
}

// NewRenderer returns a renderer writing to dir. urlPrefix is prepended to
// file names in the returned ChartSet (e.g. "graphs").
func NewRenderer(dir, urlPrefix string) *Renderer {
	return &Renderer{dir: dir, urlPrefix: urlPrefix}
}

// Dir returns the output directory.
func (r *Renderer) Dir() string {
	return r.dir
}

// Render draws all four charts for t. Nothing is written unless every chart
// renders.
func (r *Renderer) Render(t *report.Table, stats report.Stats) (report.ChartSet, error) {
	if t.Len() == 0 {
		return report.ChartSet{}, fmt.Errorf("render: empty table")
	}

	// go-chart does not terminate on non-finite pie slices.
	for i, rec := range t.Records {
		if !finite(rec.Income) || !finite(rec.Expense) {
			return report.ChartSet{}, fmt.Errorf("render: row %d of %q has a non-finite amount", i+1, rec.Month)
		}
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return report.ChartSet{}, fmt.Errorf("creating chart directory: %w", err)
	}

	steps := []struct {
		file string
		draw func(*bytes.Buffer) error
	}{
		{fileLine, func(b *bytes.Buffer) error { return lineChart(t, stats).Render(chart.PNG, b) }},
		{fileBar, func(b *bytes.Buffer) error { return barChart(t, stats).Render(chart.PNG, b) }},
		{filePie, func(b *bytes.Buffer) error {
			pie, err := pieChart(t)
			if err != nil {
				return err
			}

			return pie.Render(chart.PNG, b)
		}},
		{fileHistogram, func(b *bytes.Buffer) error { return histogramChart(t).Render(chart.PNG, b) }},
	}

	bufs := make([]bytes.Buffer, len(steps))

	var g errgroup.Group
	for i, s := range steps {
		g.Go(func() error {
			if err := s.draw(&bufs[i]); err != nil {
				return fmt.Errorf("rendering %s: %w", s.file, err)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report.ChartSet{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range steps {
		if err := os.WriteFile(filepath.Join(r.dir, s.file), bufs[i].Bytes(), 0o644); err != nil {
			return report.ChartSet{}, fmt.Errorf("writing %s: %w", s.file, err)
		}
	}

	return r.ChartSet(), nil
}

// ChartSet returns the web-relative chart paths.
func (r *Renderer) ChartSet() report.ChartSet {
	return report.ChartSet{
		Line:      path.Join(r.urlPrefix, fileLine),
		Bar:       path.Join(r.urlPrefix, fileBar),
		Pie:       path.Join(r.urlPrefix, filePie),
		Histogram: path.Join(r.urlPrefix, fileHistogram),
	}
}

// Files returns the on-disk chart paths keyed by file name.
func (r *Renderer) Files() map[string]string {
	files := make(map[string]string, 4)
	for _, name := range []string{fileLine, fileBar, filePie, fileHistogram} {
		files[name] = filepath.Join(r.dir, name)
	}

	return files
}
