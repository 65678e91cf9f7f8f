package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsLeap(t *testing.T) {
	require.True(t, IsLeap(2024))
	require.False(t, IsLeap(2023))
	require.False(t, IsLeap(1900)) // century not divisible by 400
	require.True(t, IsLeap(2000))
}

func TestDaysInMonth(t *testing.T) {
	require.Equal(t, 29, DaysInMonth(2024, 2))
	require.Equal(t, 28, DaysInMonth(2023, 2))
	require.Equal(t, 31, DaysInMonth(2025, 1))
	require.Equal(t, 30, DaysInMonth(2025, 4))
}

func countCells(grid [][]int) int {
	n := 0
	for _, week := range grid {
		for _, day := range week {
			if day != 0 {
				n++
			}
		}
	}
	return n
}

func TestMonthGrid(t *testing.T) {
	leap := MonthGrid(2024, 2)
	require.Equal(t, 29, countCells(leap))

	nonLeap := MonthGrid(2023, 2)
	require.Equal(t, 28, countCells(nonLeap))

	for _, week := range leap {
		require.Len(t, week, 7)
	}

	// 2024-02-01 is a Thursday; Sunday-first layout puts it in column 4.
	require.Equal(t, 1, leap[0][4])
	require.Equal(t, 0, leap[0][3])
}

func TestParseCompact(t *testing.T) {
	d, err := ParseCompact("20250908")
	require.NoError(t, err)
	require.Equal(t, Date{Year: 2025, Month: 9, Day: 8}, d)

	for _, bad := range []string{"", "2025090", "202509081", "2025ab08", "-0250908", "20251301", "20250231"} {
		_, err := ParseCompact(bad)
		require.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestToday(t *testing.T) {
	// 23:30 UTC on the 8th is already the 9th in Kolkata.
	now := time.Date(2025, 9, 8, 23, 30, 0, 0, time.UTC)
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	require.Equal(t, Date{Year: 2025, Month: 9, Day: 9}, Today(now, kolkata))
	require.Equal(t, Date{Year: 2025, Month: 9, Day: 8}, Today(now, time.UTC))
}

func TestAgeBreakdown(t *testing.T) {
	res := AgeBreakdown(Date{1992, 7, 15}, Date{2025, 9, 8})
	require.Equal(t, 33, res.Years)
	require.Equal(t, 1, res.Months)
	require.Equal(t, 24, res.Days)
	require.Equal(t, 12108, res.TotalDays)
	require.Equal(t, 12108/7, res.Weeks)
	require.Equal(t, 12108*24, res.TotalHours)
}

func TestAgeBreakdownLeapDayTieBreak(t *testing.T) {
	// A Feb 29 anniversary falls on Feb 28 in non-leap years, so the
	// birthday already counts on the 28th.
	res := AgeBreakdown(Date{2000, 2, 29}, Date{2025, 2, 28})
	require.Equal(t, 25, res.Years)
	require.Equal(t, 0, res.Months)
	require.Equal(t, 0, res.Days)

	// The day before, the year has not yet turned.
	res = AgeBreakdown(Date{2000, 2, 29}, Date{2025, 2, 27})
	require.Equal(t, 24, res.Years)
	require.Equal(t, 11, res.Months)

	// In a leap year the real anniversary governs.
	res = AgeBreakdown(Date{2000, 2, 29}, Date{2024, 2, 29})
	require.Equal(t, 24, res.Years)
	require.Equal(t, 0, res.Months)
	require.Equal(t, 0, res.Days)
}

func TestAgeBreakdownEdgeCases(t *testing.T) {
	same := AgeBreakdown(Date{2024, 1, 1}, Date{2024, 1, 1})
	require.Zero(t, same.Years)
	require.Zero(t, same.Months)
	require.Zero(t, same.Days)
	require.Zero(t, same.TotalDays)

	oneDay := AgeBreakdown(Date{2024, 1, 1}, Date{2024, 1, 2})
	require.Zero(t, oneDay.Years)
	require.Zero(t, oneDay.Months)
	require.Equal(t, 1, oneDay.Days)
	require.Equal(t, 1, oneDay.TotalDays)
}

func TestDaysBetween(t *testing.T) {
	res := DaysBetween(Date{2024, 1, 1}, Date{2025, 9, 8})
	require.Equal(t, 1, res.Years)
	require.Equal(t, 8, res.Months)
	require.Equal(t, 7, res.Days)
	require.Equal(t, 616, res.TotalDays)
}

func TestDaysBetweenSymmetry(t *testing.T) {
	a := Date{2024, 1, 1}
	b := Date{2025, 9, 8}
	require.Equal(t, DaysBetween(a, b), DaysBetween(b, a))

	// Swapping the endpoints twice is the identity.
	swapped := DaysBetween(b, a)
	require.Equal(t, DaysBetween(a, b), swapped)
}

func TestDurationBreakdown(t *testing.T) {
	d := DurationBreakdown(5400)
	require.Equal(t, int64(1), d.Hours)
	require.Equal(t, int64(30), d.Minutes)
	require.Equal(t, int64(0), d.Seconds)
	require.Equal(t, int64(5400), d.TotalSeconds)

	d = DurationBreakdown(86400)
	require.Equal(t, int64(24), d.Hours)
}

func TestDurationInverseLaw(t *testing.T) {
	for s := int64(0); s <= 10_000_000; s++ {
		d := DurationBreakdown(s)
		if got := ToSeconds(d.Hours, d.Minutes, d.Seconds); got != s {
			t.Fatalf("inverse law broken at %d: got %d", s, got)
		}
	}
}
