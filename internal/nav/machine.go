// Package nav is the navigation state machine: it interprets decoded
// action tokens against the current session, mutates the session, and
// returns the view to render. It never talks to the gateway and performs
// no I/O; transitions always complete without suspension.
package nav

import (
	"strconv"
	"time"

	"DayMate/internal/callback"
	"DayMate/internal/config"
	"DayMate/internal/dates"
	"DayMate/internal/session"
)

// Machine drives screen transitions. The clock is injected so "today"
// anchors are testable.
type Machine struct {
	cfg *config.Config
	now func() time.Time
}

// New builds a machine over the given configuration.
func New(cfg *config.Config, now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{cfg: cfg, now: now}
}

func (m *Machine) today(s *session.Session) dates.Date {
	return dates.Today(m.now(), m.cfg.Location(s.Timezone))
}

// Transition applies one action token to the session and returns the view
// for the resulting state. Tokens that are structurally invalid for the
// current screen re-render the current view unchanged, which absorbs
// stale and redelivered callbacks.
func (m *Machine) Transition(s *session.Session, tok callback.Token) View {
	// Universal tokens work from every screen.
	switch tok.Kind {
	case callback.KindCancel:
		s.Reset()
		return m.mainMenuView()
	case callback.KindMenu:
		return m.enter(s, tok.Target)
	case callback.KindBack:
		return m.goBack(s)
	case callback.KindNoop:
		return m.Render(s)
	}

	switch s.Screen {
	case session.ScreenAgeCalendarPick:
		return m.onAgeCalendar(s, tok)
	case session.ScreenAgeNumericPick:
		return m.onAgeNumeric(s, tok)
	case session.ScreenDaysPickStart, session.ScreenDaysPickEnd:
		return m.onDaysCalendar(s, tok)
	case session.ScreenTimeDurationMenu:
		return m.onTimeMenu(s, tok)
	case session.ScreenTimeNumericEntry:
		return m.onTimeNumeric(s, tok)
	case session.ScreenSettingsTimezone:
		return m.onSettings(s, tok)
	case session.ScreenResultView:
		return m.onResult(s, tok)
	}
	return m.Render(s)
}

// enter resets the session and opens the named feature.
func (m *Machine) enter(s *session.Session, target string) View {
	s.Reset()
	switch target {
	case callback.TargetAge:
		s.Screen = session.ScreenAgeCalendarPick
		s.Cursor = m.cursorAtToday(s)
	case callback.TargetDays:
		s.Screen = session.ScreenDaysPickStart
		s.Cursor = m.cursorAtToday(s)
	case callback.TargetTime:
		s.Screen = session.ScreenTimeDurationMenu
	case callback.TargetSettings:
		s.Screen = session.ScreenSettingsTimezone
	case callback.TargetHelp:
		s.Screen = session.ScreenHelp
	}
	return m.Render(s)
}

func (m *Machine) cursorAtToday(s *session.Session) session.Cursor {
	t := m.today(s)
	return session.Cursor{Year: t.Year, Month: t.Month}
}

// goBack steps one screen toward the main menu.
func (m *Machine) goBack(s *session.Session) View {
	switch s.Screen {
	case session.ScreenAgeNumericPick:
		s.ClearEntry()
		s.Screen = session.ScreenAgeCalendarPick
	case session.ScreenDaysPickEnd:
		s.Screen = session.ScreenDaysPickStart
		s.Cursor = m.cursorAtToday(s)
	case session.ScreenTimeNumericEntry:
		s.Buffer = ""
		s.Screen = session.ScreenTimeDurationMenu
	case session.ScreenMainMenu:
		// nothing above the main menu
	default:
		s.Reset()
	}
	return m.Render(s)
}

// moveCursor applies a calendar navigation to the cursor carried by the
// token, clamping at the configured minimum year and a bounded future
// horizon. Crossing a year boundary while stepping months rolls the year.
func (m *Machine) moveCursor(s *session.Session, tok callback.Token) session.Cursor {
	y, mo := tok.Year, tok.Month
	switch tok.Dir {
	case callback.DirPrevMonth:
		mo--
		if mo < 1 {
			mo = 12
			y--
		}
	case callback.DirNextMonth:
		mo++
		if mo > 12 {
			mo = 1
			y++
		}
	case callback.DirPrevYear:
		y--
	case callback.DirNextYear:
		y++
	}
	maxYear := m.today(s).Year + 1
	if y < m.cfg.MinYear {
		y, mo = m.cfg.MinYear, 1
	}
	if y > maxYear {
		y, mo = maxYear, 12
	}
	return session.Cursor{Year: y, Month: mo}
}

func (m *Machine) onAgeCalendar(s *session.Session, tok callback.Token) View {
	switch tok.Kind {
	case callback.KindCalNav:
		if tok.Flow != callback.FlowAge {
			return m.Render(s)
		}
		s.Cursor = m.moveCursor(s, tok)
		return m.Render(s)
	case callback.KindDate:
		if tok.Flow != callback.FlowAge {
			return m.Render(s)
		}
		today := m.today(s)
		if tok.Date.After(today) {
			return m.Render(s).withNotice("That date is in the future. Choose a valid birth date.")
		}
		if tok.Date.Year < m.cfg.MinYear {
			return m.Render(s).withNotice("Birth year must be " + strconv.Itoa(m.cfg.MinYear) + " or later.")
		}
		d := tok.Date
		s.Birth = &d
		s.Flow = session.FlowAge
		s.Screen = session.ScreenResultView
		return m.Render(s)
	case callback.KindAgeMode:
		if tok.Mode == callback.ModeNumeric {
			s.ClearEntry()
			s.Screen = session.ScreenAgeNumericPick
		}
		return m.Render(s)
	}
	return m.Render(s)
}

// numericField identifies which staged field the age keypad is filling.
type numericField int

const (
	fieldYear numericField = iota
	fieldMonth
	fieldDay
)

func ageField(s *session.Session) numericField {
	switch {
	case s.NumYear == 0:
		return fieldYear
	case s.NumMonth == 0:
		return fieldMonth
	default:
		return fieldDay
	}
}

func fieldMaxLen(f numericField) int {
	if f == fieldYear {
		return 4
	}
	return 2
}

func (m *Machine) onAgeNumeric(s *session.Session, tok callback.Token) View {
	field := ageField(s)
	switch tok.Kind {
	case callback.KindDigit:
		if len(s.Buffer) < fieldMaxLen(field) {
			s.Buffer += strconv.Itoa(tok.Digit)
		}
		return m.Render(s)
	case callback.KindBackspace:
		if s.Buffer != "" {
			s.Buffer = s.Buffer[:len(s.Buffer)-1]
		}
		return m.Render(s)
	case callback.KindConfirm:
		return m.confirmAgeField(s, field)
	case callback.KindAgeMode:
		if tok.Mode == callback.ModeCalendar {
			s.ClearEntry()
			s.Screen = session.ScreenAgeCalendarPick
			s.Cursor = m.cursorAtToday(s)
		}
		return m.Render(s)
	}
	return m.Render(s)
}

// confirmAgeField validates the buffer against the active field's
// predicate. A failing predicate leaves the session untouched and
// re-renders with an inline notice.
func (m *Machine) confirmAgeField(s *session.Session, field numericField) View {
	n, err := strconv.Atoi(s.Buffer)
	if err != nil {
		return m.Render(s).withNotice("Enter a value first.")
	}
	today := m.today(s)
	switch field {
	case fieldYear:
		if len(s.Buffer) != 4 || n < m.cfg.MinYear || n > today.Year {
			return m.Render(s).withNotice("Year must be 4 digits between " +
				strconv.Itoa(m.cfg.MinYear) + " and " + strconv.Itoa(today.Year) + ".")
		}
		s.NumYear = n
		s.Buffer = ""
	case fieldMonth:
		if n < 1 || n > 12 {
			return m.Render(s).withNotice("Month must be between 1 and 12.")
		}
		s.NumMonth = n
		s.Buffer = ""
	case fieldDay:
		max := dates.DaysInMonth(s.NumYear, s.NumMonth)
		if n < 1 || n > max {
			return m.Render(s).withNotice("Day must be between 1 and " + strconv.Itoa(max) + ".")
		}
		d := dates.Date{Year: s.NumYear, Month: s.NumMonth, Day: n}
		if d.After(today) {
			return m.Render(s).withNotice("That date is in the future. Choose a valid birth date.")
		}
		s.Birth = &d
		s.ClearEntry()
		s.Flow = session.FlowAge
		s.Screen = session.ScreenResultView
	}
	return m.Render(s)
}

func (m *Machine) onDaysCalendar(s *session.Session, tok callback.Token) View {
	switch tok.Kind {
	case callback.KindCalNav:
		if tok.Flow != callback.FlowDays {
			return m.Render(s)
		}
		s.Cursor = m.moveCursor(s, tok)
		return m.Render(s)
	case callback.KindDate:
		if tok.Flow != callback.FlowDays {
			return m.Render(s)
		}
		limit := futureLimit(m.today(s), m.cfg.MaxFutureDays)
		if tok.Date.After(limit) {
			return m.Render(s).withNotice("That date is too far in the future.")
		}
		d := tok.Date
		if s.Screen == session.ScreenDaysPickStart {
			s.Start = &d
			s.Screen = session.ScreenDaysPickEnd
			s.Cursor = m.cursorAtToday(s)
		} else {
			s.End = &d
			s.Flow = session.FlowDays
			s.Screen = session.ScreenResultView
		}
		return m.Render(s)
	}
	return m.Render(s)
}

// futureLimit shifts today forward by the configured horizon.
func futureLimit(today dates.Date, days int) dates.Date {
	t := time.Date(today.Year, time.Month(today.Month), today.Day, 0, 0, 0, 0, time.UTC)
	t = t.AddDate(0, 0, days)
	return dates.Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

func (m *Machine) onTimeMenu(s *session.Session, tok callback.Token) View {
	switch tok.Kind {
	case callback.KindDuration:
		s.Seconds = tok.Seconds
		s.Flow = session.FlowTime
		s.Screen = session.ScreenResultView
		return m.Render(s)
	case callback.KindCustom:
		s.Buffer = ""
		s.Screen = session.ScreenTimeNumericEntry
		return m.Render(s)
	}
	return m.Render(s)
}

const maxSecondsDigits = 9

func (m *Machine) onTimeNumeric(s *session.Session, tok callback.Token) View {
	switch tok.Kind {
	case callback.KindDigit:
		if len(s.Buffer) < maxSecondsDigits {
			s.Buffer += strconv.Itoa(tok.Digit)
		}
		return m.Render(s)
	case callback.KindBackspace:
		if s.Buffer != "" {
			s.Buffer = s.Buffer[:len(s.Buffer)-1]
		}
		return m.Render(s)
	case callback.KindConfirm:
		secs, err := strconv.ParseInt(s.Buffer, 10, 64)
		if err != nil {
			return m.Render(s).withNotice("Enter a number of seconds first.")
		}
		s.Seconds = secs
		s.Buffer = ""
		s.Flow = session.FlowTime
		s.Screen = session.ScreenResultView
		return m.Render(s)
	}
	return m.Render(s)
}

func (m *Machine) onSettings(s *session.Session, tok callback.Token) View {
	if tok.Kind != callback.KindTimezone {
		return m.Render(s)
	}
	if tok.Index >= len(m.cfg.Timezones) {
		return m.Render(s).withNotice("Unknown timezone choice.")
	}
	s.Timezone = m.cfg.Timezones[tok.Index]
	return m.Render(s).withNotice("Timezone set to " + s.Timezone + ".")
}

func (m *Machine) onResult(s *session.Session, tok callback.Token) View {
	if tok.Kind == callback.KindSwap && s.Flow == session.FlowDays && s.Start != nil && s.End != nil {
		s.Start, s.End = s.End, s.Start
		return m.Render(s)
	}
	return m.Render(s)
}
