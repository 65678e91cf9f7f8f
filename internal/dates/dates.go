// Package dates implements the calendar-aware date/time arithmetic used by
// the bot: month grids for the inline calendar keyboard, calendar-correct
// age and date-difference breakdowns, and duration conversion. Everything
// here is a pure function over timezone-naive calendar dates; the only
// timezone touchpoint is Today, which anchors "now".
package dates

import (
	"fmt"
	"time"
)

// Date is a timezone-naive calendar date.
type Date struct {
	Year  int
	Month int
	Day   int
}

// Valid reports whether the date names an actual calendar day.
func (d Date) Valid() bool {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	return d.Day <= DaysInMonth(d.Year, d.Month)
}

// String formats as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Compact formats as the 8-digit YYYYMMDD literal used in callback data.
func (d Date) Compact() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}

// After reports whether d is after other.
func (d Date) After(other Date) bool {
	if d.Year != other.Year {
		return d.Year > other.Year
	}
	if d.Month != other.Month {
		return d.Month > other.Month
	}
	return d.Day > other.Day
}

// ParseCompact parses an 8-digit YYYYMMDD literal.
func ParseCompact(s string) (Date, error) {
	if len(s) != 8 {
		return Date{}, fmt.Errorf("date literal must be 8 digits, got %q", s)
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return Date{}, fmt.Errorf("malformed date literal %q", s)
		}
		n = n*10 + int(r-'0')
	}
	d := Date{Year: n / 10000, Month: n / 100 % 100, Day: n % 100}
	if !d.Valid() {
		return Date{}, fmt.Errorf("no such calendar date: %s", d)
	}
	return d, nil
}

// Today returns the current calendar date in the given location.
func Today(now time.Time, loc *time.Location) Date {
	t := now.In(loc)
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// IsLeap implements the Gregorian leap rule: divisible by 4, except
// centuries not divisible by 400.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

var monthDays = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year, month int) int {
	if month == 2 && IsLeap(year) {
		return 29
	}
	return monthDays[month]
}

// MonthGrid lays out a month as Sunday-first weeks of seven cells.
// A zero cell is padding outside the month.
func MonthGrid(year, month int) [][]int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	offset := int(first.Weekday()) // Sunday = 0
	total := DaysInMonth(year, month)

	var grid [][]int
	week := make([]int, 7)
	col := offset
	for day := 1; day <= total; day++ {
		week[col] = day
		col++
		if col == 7 {
			grid = append(grid, week)
			week = make([]int, 7)
			col = 0
		}
	}
	if col > 0 {
		grid = append(grid, week)
	}
	return grid
}

// Breakdown is the result of an age or date-difference computation.
type Breakdown struct {
	Years      int
	Months     int
	Weeks      int
	Days       int
	TotalDays  int
	TotalHours int
}

// epochDays counts days since the Unix epoch (negative before 1970).
func epochDays(d Date) int {
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	return int(t.Unix() / 86400)
}

// addMonths adds n months to d, clamping the day to the target month's
// length. The clamp is what pins a Feb 29 anniversary to Feb 28 in
// non-leap years.
func addMonths(d Date, n int) Date {
	tm := d.Year*12 + (d.Month - 1) + n
	y, m := tm/12, tm%12+1
	day := d.Day
	if max := DaysInMonth(y, m); day > max {
		day = max
	}
	return Date{Year: y, Month: m, Day: day}
}

// span computes the calendar breakdown between two ordered dates using
// day-of-month-aware subtraction: find the largest whole number of months
// whose clamped addition does not pass asOf, then count leftover days.
func span(from, asOf Date) Breakdown {
	n := (asOf.Year-from.Year)*12 + (asOf.Month - from.Month)
	if addMonths(from, n).After(asOf) {
		n--
	}
	anchor := addMonths(from, n)
	total := epochDays(asOf) - epochDays(from)
	return Breakdown{
		Years:      n / 12,
		Months:     n % 12,
		Weeks:      total / 7,
		Days:       epochDays(asOf) - epochDays(anchor),
		TotalDays:  total,
		TotalHours: total * 24,
	}
}

// AgeBreakdown computes a calendar-correct age. A birth date of Feb 29
// has its anniversary on Feb 28 in non-leap years, so as of the 28th the
// year already counts.
func AgeBreakdown(birth, asOf Date) Breakdown {
	if birth.After(asOf) {
		birth, asOf = asOf, birth
	}
	return span(birth, asOf)
}

// DaysBetween computes the absolute breakdown between two dates; either
// ordering of the inputs yields the same result.
func DaysBetween(a, b Date) Breakdown {
	if a.After(b) {
		a, b = b, a
	}
	return span(a, b)
}

// Duration is the result of a duration conversion.
type Duration struct {
	Hours        int64
	Minutes      int64
	Seconds      int64
	TotalSeconds int64
}

// DurationBreakdown splits a non-negative second count into hours,
// minutes and seconds.
func DurationBreakdown(total int64) Duration {
	return Duration{
		Hours:        total / 3600,
		Minutes:      (total % 3600) / 60,
		Seconds:      total % 60,
		TotalSeconds: total,
	}
}

// ToSeconds is the inverse of DurationBreakdown.
func ToSeconds(hours, minutes, seconds int64) int64 {
	return hours*3600 + minutes*60 + seconds
}
