// Package month turns bare month names into display labels ("January 2025")
// and back.
package month

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/finstat/internal/report"
)

const labelLayout = "January 2006"

// ErrParse is matched by errors.Is for every ParseError.
var ErrParse = errors.New("unrecognised month")

// ParseError reports a Month value that is not a calendar month name.
type ParseError struct {
	Value string
	Row   int // 1-based data row, 0 when not applicable
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("error parsing 'Month' column: row %d: %q is not a month name", e.Row, e.Value)
	}

	return fmt.Sprintf("error parsing month %q", e.Value)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// Parse resolves a full or three-letter month name, optionally followed by a
// year. Matching ignores case.
func Parse(name string) (time.Month, error) {
	m, _, err := parse(name)
	return m, err
}

// parse returns the month and the explicit year, or 0 when name has none.
func parse(name string) (time.Month, int, error) {
	s := strings.Join(strings.Fields(name), " ")
	if s == "" {
		return 0, 0, &ParseError{Value: name}
	}

	for _, layout := range []string{"January", "Jan"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Month(), 0, nil
		}
	}

	for _, layout := range []string{labelLayout, "Jan 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Month(), t.Year(), nil
		}
	}

	return 0, 0, &ParseError{Value: name}
}

// Label pairs a month name with year. A value that already carries its own
// year keeps it.
func Label(name string, year int) (string, error) {
	m, explicit, err := parse(name)
	if err != nil {
		return "", err
	}

	if explicit != 0 {
		year = explicit
	}

	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC).Format(labelLayout), nil
}

// ParseLabel reads a display label back into its calendar month.
func ParseLabel(label string) (time.Month, error) {
	return Parse(label)
}

// Labels builds the display label for every row of t using the year of now.
// The first unrecognised Month rejects the whole table.
func Labels(t *report.Table, now time.Time) ([]string, error) {
	labels := make([]string, 0, t.Len())

	for i, r := range t.Records {
		l, err := Label(r.Month, now.Year())
		if err != nil {
			return nil, &ParseError{Value: r.Month, Row: i + 1}
		}

		labels = append(labels, l)
	}

	return labels, nil
}

// Resolver adapts Parse to report.MonthResolver.
func Resolver() report.MonthResolver {
	return Parse
}
