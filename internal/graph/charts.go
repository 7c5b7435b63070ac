package graph

import (
	"fmt"
	"math"
	"slices"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/MrJamesThe3rd/finstat/internal/report"
)

const barWidth = 0.35

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func seriesStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    4,
	}
}

func callout(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		FontColor:   col,
		FontSize:    9,
	}
}

// monthTicks places one tick per row at its index.
func monthTicks(t *report.Table) []chart.Tick {
	ticks := make([]chart.Tick, 0, t.Len())
	for i, m := range t.Months() {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: m})
	}

	return ticks
}

func indexRange(n int, pad float64) *chart.ContinuousRange {
	return &chart.ContinuousRange{Min: -pad, Max: float64(n-1) + pad}
}

// valueRange pads [lo, hi] so a flat series still has a non-zero span.
func valueRange(values []float64, includeZero bool) *chart.ContinuousRange {
	lo, hi := slices.Min(values), slices.Max(values)
	if includeZero {
		lo = math.Min(lo, 0)
		hi = math.Max(hi, 0)
	}

	span := hi - lo
	if span == 0 {
		span = math.Max(math.Abs(hi), 1)
	}

	r := &chart.ContinuousRange{Min: lo - span*0.1, Max: hi + span*0.15}
	if includeZero && lo >= 0 {
		r.Min = 0
	}

	return r
}

func lineChart(t *report.Table, stats report.Stats) chart.Chart {
	xs := make([]float64, t.Len())
	for i := range xs {
		xs[i] = float64(i)
	}

	incomes, expenses := t.Incomes(), t.Expenses()
	ext := stats.Extremes

	annotations := chart.AnnotationSeries{
		Annotations: []chart.Value2{
			{XValue: float64(ext.MaxIncome), YValue: incomes[ext.MaxIncome], Label: "Highest Income", Style: callout(colorHighIncome)},
			{XValue: float64(ext.MinIncome), YValue: incomes[ext.MinIncome], Label: "Lowest Income", Style: callout(colorLowIncome)},
			{XValue: float64(ext.MaxExpense), YValue: expenses[ext.MaxExpense], Label: "Highest Expense", Style: callout(colorHighExpense)},
			{XValue: float64(ext.MinExpense), YValue: expenses[ext.MinExpense], Label: "Lowest Expense", Style: callout(colorLowExpense)},
		},
	}

	ch := chart.Chart{
		Title:      "Income and Expense Over Months",
		Width:      1000,
		Height:     500,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:  "Month",
			Ticks: monthTicks(t),
			Range: indexRange(t.Len(), 0.5),
		},
		YAxis: chart.YAxis{
			Name:  "Amount",
			Range: valueRange(append(slices.Clone(incomes), expenses...), false),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "Income", XValues: xs, YValues: incomes, Style: seriesStyle(colorIncome)},
			chart.ContinuousSeries{Name: "Expense", XValues: slices.Clone(xs), YValues: expenses, Style: seriesStyle(colorExpense)},
			annotations,
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return ch
}

// barOutline traces bars of the given heights along the baseline. Filling the
// area under the outline paints the bars; the gaps sit on zero.
func barOutline(heights []float64, offset float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(heights)*4)
	ys := make([]float64, 0, len(heights)*4)

	for i, h := range heights {
		x0 := float64(i) + offset
		x1 := x0 + barWidth
		xs = append(xs, x0, x0, x1, x1)
		ys = append(ys, 0, h, h, 0)
	}

	return xs, ys
}

func barStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 1,
		FillColor:   col,
	}
}

func barChart(t *report.Table, stats report.Stats) chart.Chart {
	incomes, expenses := t.Incomes(), t.Expenses()
	ext := stats.Extremes

	all := append(slices.Clone(incomes), expenses...)
	yr := valueRange(all, true)
	offset := (yr.Max - yr.Min) * 0.04

	incX, incY := barOutline(incomes, -barWidth)
	expX, expY := barOutline(expenses, 0)

	incomeAt := func(i int) float64 { return float64(i) - barWidth/2 }
	expenseAt := func(i int) float64 { return float64(i) + barWidth/2 }

	ch := chart.Chart{
		Title:      "Income vs Expense by Month",
		Width:      1000,
		Height:     500,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:      "Month",
			Ticks:     monthTicks(t),
			Range:     indexRange(t.Len(), 0.6),
			TickStyle: chart.Style{TextRotationDegrees: 45},
		},
		YAxis: chart.YAxis{Name: "Amount", Range: yr},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "Income", XValues: incX, YValues: incY, Style: barStyle(colorIncome)},
			chart.ContinuousSeries{Name: "Expense", XValues: expX, YValues: expY, Style: barStyle(colorExpense)},
			chart.AnnotationSeries{Annotations: []chart.Value2{
				{XValue: incomeAt(ext.MaxIncome), YValue: incomes[ext.MaxIncome] + offset, Label: "Highest Income", Style: callout(colorHighIncome)},
				{XValue: incomeAt(ext.MinIncome), YValue: incomes[ext.MinIncome] - offset, Label: "Lowest Income", Style: callout(colorLowIncome)},
				{XValue: expenseAt(ext.MaxExpense), YValue: expenses[ext.MaxExpense] + offset, Label: "Highest Expense", Style: callout(colorHighExpense)},
				{XValue: expenseAt(ext.MinExpense), YValue: expenses[ext.MinExpense] - offset, Label: "Lowest Expense", Style: callout(colorLowExpense)},
			}},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return ch
}

// pieChart shows each month's share of total income. Months without positive
// income cannot form a slice and are left out.
func pieChart(t *report.Table) (chart.PieChart, error) {
	var total float64

	for _, r := range t.Records {
		if r.Income > 0 {
			total += r.Income
		}
	}

	if !finite(total) {
		return chart.PieChart{}, fmt.Errorf("pie chart: total income out of range")
	}

	if total <= 0 {
		return chart.PieChart{}, fmt.Errorf("pie chart: no month has positive income")
	}

	values := make([]chart.Value, 0, t.Len())

	for _, r := range t.Records {
		if r.Income <= 0 {
			continue
		}

		values = append(values, chart.Value{
			Value: r.Income,
			Label: fmt.Sprintf("%s %.1f%%", r.Month, r.Income/total*100),
		})
	}

	return chart.PieChart{
		Title:  "Income Distribution by Month",
		Width:  500,
		Height: 500,
		Values: values,
	}, nil
}

func histogramChart(t *report.Table) chart.BarChart {
	bins := report.Histogram(t.Expenses(), HistogramBins)

	maxCount := 0
	bars := make([]chart.Value, 0, len(bins))

	for _, b := range bins {
		maxCount = max(maxCount, b.Count)
		bars = append(bars, chart.Value{
			Value: float64(b.Count),
			Label: fmt.Sprintf("%.0f-%.0f", b.Low, b.High),
			Style: chart.Style{
				FillColor:   colorLowExpense,
				StrokeColor: drawing.ColorFromHex("000000"),
				StrokeWidth: 1,
			},
		})
	}

	return chart.BarChart{
		Title:      "Expense Histogram",
		Width:      600,
		Height:     400,
		BarWidth:   60,
		BarSpacing: 20,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		YAxis: chart.YAxis{
			Name:  "Frequency",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount + 1)},
		},
		Bars: bars,
	}
}
