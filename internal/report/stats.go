package report

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// ErrEmptyTable is matched by errors.Is for an AnalysisError on a table
// without rows.
var ErrEmptyTable = errors.New("table has no rows")

// ErrOutOfRange is matched by errors.Is for an AnalysisError whose sums or
// means do not fit in a float64.
var ErrOutOfRange = errors.New("amounts out of range")

// AnalysisError reports why a table could not be reduced to Stats.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis: %v", e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Extremes holds the row indices of the extreme values.
type Extremes struct {
	MaxIncome  int `json:"max_income"`
	MinIncome  int `json:"min_income"`
	MaxExpense int `json:"max_expense"`
	MinExpense int `json:"min_expense"`
}

// Stats is a snapshot of a table's summary statistics.
type Stats struct {
	HighestIncomeMonth  string   `json:"highest_income_month"`
	LowestIncomeMonth   string   `json:"lowest_income_month"`
	HighestExpenseMonth string   `json:"highest_expense_month"`
	LowestExpenseMonth  string   `json:"lowest_expense_month"`
	AverageIncome       float64  `json:"average_income"`
	AverageExpense      float64  `json:"average_expense"`
	Extremes            Extremes `json:"extremes"`
}

// Analyze scans the table once. Comparisons are strict, so ties resolve to
// the first row in table order.
func Analyze(t *Table) (Stats, error) {
	if t.Len() == 0 {
		return Stats{}, &AnalysisError{Err: ErrEmptyTable}
	}

	var (
		ext        Extremes
		sumIncome  float64
		sumExpense float64
	)

	for i, r := range t.Records {
		sumIncome += r.Income
		sumExpense += r.Expense

		if i == 0 {
			continue
		}

		if r.Income > t.Records[ext.MaxIncome].Income {
			ext.MaxIncome = i
		}

		if r.Income < t.Records[ext.MinIncome].Income {
			ext.MinIncome = i
		}

		if r.Expense > t.Records[ext.MaxExpense].Expense {
			ext.MaxExpense = i
		}

		if r.Expense < t.Records[ext.MinExpense].Expense {
			ext.MinExpense = i
		}
	}

	n := float64(t.Len())
	avgIncome, avgExpense := sumIncome/n, sumExpense/n

	if !finite(avgIncome) || !finite(avgExpense) {
		return Stats{}, &AnalysisError{Err: ErrOutOfRange}
	}

	return Stats{
		HighestIncomeMonth:  t.Records[ext.MaxIncome].Month,
		LowestIncomeMonth:   t.Records[ext.MinIncome].Month,
		HighestExpenseMonth: t.Records[ext.MaxExpense].Month,
		LowestExpenseMonth:  t.Records[ext.MinExpense].Month,
		AverageIncome:       avgIncome,
		AverageExpense:      avgExpense,
		Extremes:            ext,
	}, nil
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// FormatAmount renders v with exactly two decimals, rounding half away from
// zero on the shortest decimal representation of v. Infinities and NaN are
// printed as-is.
func FormatAmount(v float64) string {
	if !finite(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	return decimal.NewFromFloat(v).StringFixed(2)
}

func (s Stats) FormattedAverageIncome() string {
	return FormatAmount(s.AverageIncome)
}

func (s Stats) FormattedAverageExpense() string {
	return FormatAmount(s.AverageExpense)
}
