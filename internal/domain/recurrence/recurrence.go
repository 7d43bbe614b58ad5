// Package recurrence implements the pure rules that turn a recurrence
// pattern and an anchor date into concrete fiscal-year periods and the
// next occurrence date. It has no side effects and no dependency on the
// persistence layer, so every function here is deterministic and safe to
// call from any goroutine.
package recurrence

import (
	"errors"
	"fmt"
	"time"
)

// Pattern identifies how often a recurring task produces an occurrence.
type Pattern string

// Supported recurrence patterns.
const (
	PatternMonthly    Pattern = "monthly"
	PatternQuarterly  Pattern = "quarterly"
	PatternHalfYearly Pattern = "half-yearly"
	PatternYearly     Pattern = "yearly"
)

// PeriodsPerYear is the number of slots in one fiscal-year cycle.
const PeriodsPerYear = 12

// ErrMissingAnchor is returned when an occurrence computation is given a
// zero anchor date.
var ErrMissingAnchor = errors.New("anchor date is required")

// Period is one slot in the fixed April-anchored 12-period fiscal-year
// array. Key is a "YYYY-MM" token, Date is the first day of the period's
// month in UTC.
type Period struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Date  time.Time `json:"date"`
}

// Valid reports whether p is a recognized recurrence pattern.
// Boundary code should reject invalid patterns with this check before
// handing them to the computation functions, which treat an unknown
// pattern as a programming error.
func (p Pattern) Valid() bool {
	switch p {
	case PatternMonthly, PatternQuarterly, PatternHalfYearly, PatternYearly:
		return true
	default:
		return false
	}
}

// IntervalMonths returns the pattern's period length in calendar months.
// Panics on an unrecognized pattern: callers are expected to have
// validated the pattern at the boundary, so reaching the default case is
// a bug, not a recoverable condition.
func IntervalMonths(p Pattern) int {
	switch p {
	case PatternMonthly:
		return 1
	case PatternQuarterly:
		return 3
	case PatternHalfYearly:
		return 6
	case PatternYearly:
		return 12
	default:
		// ALLOW-PANIC: Unrecognized pattern is a programming error
		panic(fmt.Sprintf("recurrence: unrecognized pattern %q", p))
	}
}

// FiscalYearOf returns the fiscal year that contains t. Fiscal years run
// April through March and are named after their starting calendar year,
// so February 2026 belongs to fiscal year 2025.
func FiscalYearOf(t time.Time) int {
	if t.Month() >= time.April {
		return t.Year()
	}
	return t.Year() - 1
}

// GenerateFiscalYearPeriods returns the ordered 12-period array for the
// fiscal year starting in April of referenceYear and ending in March of
// referenceYear+1.
func GenerateFiscalYearPeriods(referenceYear int) []Period {
	periods := make([]Period, 0, PeriodsPerYear)
	for i := 0; i < PeriodsPerYear; i++ {
		date := time.Date(referenceYear, time.April, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
		periods = append(periods, Period{
			Key:   PeriodKeyFor(date),
			Label: date.Format("January 2006"),
			Date:  date,
		})
	}
	return periods
}

// VisiblePeriods filters the full fiscal-year array down to the
// subsequence a pattern actually generates. Indexing is always relative
// to the fixed April-anchored array; patterns never slide based on a
// task's own start month, so a quarterly task starting in June still
// aligns to April, July, October and January.
func VisiblePeriods(p Pattern, periods []Period) []Period {
	step := IntervalMonths(p)
	visible := make([]Period, 0, (len(periods)+step-1)/step)
	for i := 0; i < len(periods); i += step {
		visible = append(visible, periods[i])
	}
	return visible
}

// NextOccurrenceAfter advances anchor by one period length using
// calendar-month arithmetic. Day-of-month is clamped to the last valid
// day of the target month, so January 31 plus one month lands on
// February 28 rather than spilling into March.
func NextOccurrenceAfter(p Pattern, anchor time.Time) (time.Time, error) {
	if anchor.IsZero() {
		return time.Time{}, ErrMissingAnchor
	}
	return addMonthsClamped(anchor, IntervalMonths(p)), nil
}

// PeriodKeyFor returns the "YYYY-MM" token for the period containing t.
func PeriodKeyFor(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// ParsePeriodKey parses a "YYYY-MM" token into the first day of its
// month in UTC.
func ParsePeriodKey(key string) (time.Time, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid period key %q: %w", key, err)
	}
	return t, nil
}

// PeriodAligned reports whether a period key falls on one of the slots
// the pattern generates, independent of fiscal year. A completion
// recorded against a non-aligned key is inert for that pattern.
func PeriodAligned(p Pattern, key string) bool {
	t, err := ParsePeriodKey(key)
	if err != nil {
		return false
	}
	index := (int(t.Month()) - int(time.April) + PeriodsPerYear) % PeriodsPerYear
	return index%IntervalMonths(p) == 0
}

// addMonthsClamped adds months to t without the normalization the
// standard library applies: when the source day does not exist in the
// target month, the result clamps to the month's last day.
func addMonthsClamped(t time.Time, months int) time.Time {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := firstOfMonth.AddDate(0, months, 0)

	day := t.Day()
	if last := daysInMonth(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysInMonth returns the number of days in the given month. Day zero of
// the following month normalizes backwards to the last day we want.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
