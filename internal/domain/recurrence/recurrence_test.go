package recurrence

import (
	"errors"
	"testing"
	"time"
)

func TestPatternValid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		pattern  Pattern
		expected bool
	}{
		{name: "monthly is valid", pattern: PatternMonthly, expected: true},
		{name: "quarterly is valid", pattern: PatternQuarterly, expected: true},
		{name: "half-yearly is valid", pattern: PatternHalfYearly, expected: true},
		{name: "yearly is valid", pattern: PatternYearly, expected: true},
		{name: "empty is invalid", pattern: Pattern(""), expected: false},
		{name: "unknown is invalid", pattern: Pattern("weekly"), expected: false},
		{name: "case sensitive", pattern: Pattern("Monthly"), expected: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.pattern.Valid(); got != tc.expected {
				t.Errorf("Valid() = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestIntervalMonths(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		pattern  Pattern
		expected int
	}{
		{pattern: PatternMonthly, expected: 1},
		{pattern: PatternQuarterly, expected: 3},
		{pattern: PatternHalfYearly, expected: 6},
		{pattern: PatternYearly, expected: 12},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(string(tc.pattern), func(t *testing.T) {
			t.Parallel()
			if got := IntervalMonths(tc.pattern); got != tc.expected {
				t.Errorf("IntervalMonths(%q) = %d, want %d", tc.pattern, got, tc.expected)
			}
		})
	}
}

func TestIntervalMonthsPanicsOnUnknownPattern(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for unrecognized pattern")
		}
	}()
	IntervalMonths(Pattern("fortnightly"))
}

func TestFiscalYearOf(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		date     time.Time
		expected int
	}{
		{
			name:     "April starts the fiscal year",
			date:     time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
			expected: 2025,
		},
		{
			name:     "December stays in the starting year",
			date:     time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC),
			expected: 2025,
		},
		{
			name:     "January belongs to the previous fiscal year",
			date:     time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			expected: 2025,
		},
		{
			name:     "March closes the previous fiscal year",
			date:     time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
			expected: 2025,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := FiscalYearOf(tc.date); got != tc.expected {
				t.Errorf("FiscalYearOf(%v) = %d, want %d", tc.date, got, tc.expected)
			}
		})
	}
}

func TestGenerateFiscalYearPeriods(t *testing.T) {
	t.Parallel()

	periods := GenerateFiscalYearPeriods(2025)

	if len(periods) != PeriodsPerYear {
		t.Fatalf("expected %d periods, got %d", PeriodsPerYear, len(periods))
	}

	if periods[0].Key != "2025-04" {
		t.Errorf("first period key = %q, want %q", periods[0].Key, "2025-04")
	}
	if periods[0].Label != "April 2025" {
		t.Errorf("first period label = %q, want %q", periods[0].Label, "April 2025")
	}
	if periods[8].Key != "2025-12" {
		t.Errorf("ninth period key = %q, want %q", periods[8].Key, "2025-12")
	}

	// The cycle crosses the calendar year boundary into January-March.
	if periods[9].Key != "2026-01" {
		t.Errorf("tenth period key = %q, want %q", periods[9].Key, "2026-01")
	}
	if periods[11].Key != "2026-03" {
		t.Errorf("last period key = %q, want %q", periods[11].Key, "2026-03")
	}
}

func TestVisiblePeriods(t *testing.T) {
	t.Parallel()

	periods := GenerateFiscalYearPeriods(2025)

	testCases := []struct {
		name         string
		pattern      Pattern
		expectedKeys []string
	}{
		{
			name:    "monthly sees every period",
			pattern: PatternMonthly,
			expectedKeys: []string{
				"2025-04", "2025-05", "2025-06", "2025-07", "2025-08", "2025-09",
				"2025-10", "2025-11", "2025-12", "2026-01", "2026-02", "2026-03",
			},
		},
		{
			name:         "quarterly sees April July October January",
			pattern:      PatternQuarterly,
			expectedKeys: []string{"2025-04", "2025-07", "2025-10", "2026-01"},
		},
		{
			name:         "half-yearly sees April and October",
			pattern:      PatternHalfYearly,
			expectedKeys: []string{"2025-04", "2025-10"},
		},
		{
			name:         "yearly sees only April",
			pattern:      PatternYearly,
			expectedKeys: []string{"2025-04"},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			visible := VisiblePeriods(tc.pattern, periods)
			if len(visible) != len(tc.expectedKeys) {
				t.Fatalf("got %d periods, want %d", len(visible), len(tc.expectedKeys))
			}
			for i, key := range tc.expectedKeys {
				if visible[i].Key != key {
					t.Errorf("period[%d] = %q, want %q", i, visible[i].Key, key)
				}
			}
		})
	}
}

func TestNextOccurrenceAfter(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		pattern  Pattern
		anchor   time.Time
		expected time.Time
	}{
		{
			name:     "monthly advances one month",
			pattern:  PatternMonthly,
			anchor:   time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "quarterly advances three months",
			pattern:  PatternQuarterly,
			anchor:   time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "half-yearly advances six months",
			pattern:  PatternHalfYearly,
			anchor:   time.Date(2025, time.November, 30, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2026, time.May, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "yearly advances twelve months",
			pattern:  PatternYearly,
			anchor:   time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "January 31 clamps to February 28",
			pattern:  PatternMonthly,
			anchor:   time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "January 31 clamps to February 29 in a leap year",
			pattern:  PatternMonthly,
			anchor:   time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "May 31 clamps to June 30",
			pattern:  PatternMonthly,
			anchor:   time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "August 31 quarterly clamps to November 30",
			pattern:  PatternQuarterly,
			anchor:   time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2025, time.November, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := NextOccurrenceAfter(tc.pattern, tc.anchor)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tc.expected) {
				t.Errorf("NextOccurrenceAfter(%q, %v) = %v, want %v",
					tc.pattern, tc.anchor, got, tc.expected)
			}
		})
	}
}

func TestNextOccurrenceAfterZeroAnchor(t *testing.T) {
	t.Parallel()

	_, err := NextOccurrenceAfter(PatternMonthly, time.Time{})
	if !errors.Is(err, ErrMissingAnchor) {
		t.Errorf("expected ErrMissingAnchor, got %v", err)
	}
}

func TestPeriodKeyRoundTrip(t *testing.T) {
	t.Parallel()

	date := time.Date(2025, time.September, 14, 10, 30, 0, 0, time.UTC)
	key := PeriodKeyFor(date)
	if key != "2025-09" {
		t.Fatalf("PeriodKeyFor = %q, want %q", key, "2025-09")
	}

	parsed, err := ParsePeriodKey(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	if !parsed.Equal(want) {
		t.Errorf("ParsePeriodKey(%q) = %v, want %v", key, parsed, want)
	}
}

func TestParsePeriodKeyRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"", "2025", "2025-13", "Apr-2025", "2025/04"} {
		if _, err := ParsePeriodKey(key); err == nil {
			t.Errorf("ParsePeriodKey(%q) succeeded, want error", key)
		}
	}
}

func TestPeriodAligned(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		pattern  Pattern
		key      string
		expected bool
	}{
		{name: "every month aligns for monthly", pattern: PatternMonthly, key: "2025-08", expected: true},
		{name: "April aligns for quarterly", pattern: PatternQuarterly, key: "2025-04", expected: true},
		{name: "July aligns for quarterly", pattern: PatternQuarterly, key: "2025-07", expected: true},
		{name: "January aligns for quarterly", pattern: PatternQuarterly, key: "2026-01", expected: true},
		{name: "June does not align for quarterly", pattern: PatternQuarterly, key: "2025-06", expected: false},
		{name: "October aligns for half-yearly", pattern: PatternHalfYearly, key: "2025-10", expected: true},
		{name: "July does not align for half-yearly", pattern: PatternHalfYearly, key: "2025-07", expected: false},
		{name: "April aligns for yearly", pattern: PatternYearly, key: "2025-04", expected: true},
		{name: "May does not align for yearly", pattern: PatternYearly, key: "2025-05", expected: false},
		{name: "garbage key never aligns", pattern: PatternMonthly, key: "bogus", expected: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := PeriodAligned(tc.pattern, tc.key); got != tc.expected {
				t.Errorf("PeriodAligned(%q, %q) = %v, want %v", tc.pattern, tc.key, got, tc.expected)
			}
		})
	}
}
