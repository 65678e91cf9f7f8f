// Package session holds the per-conversation navigation state and the
// ephemeral store that owns it. State lives only in memory; a session that
// was swept or never existed is indistinguishable from a fresh one at the
// main menu.
package session

import (
	"time"

	"DayMate/internal/dates"
)

// Screen is a named state in the navigation state machine.
type Screen int

const (
	ScreenMainMenu Screen = iota
	ScreenAgeCalendarPick
	ScreenAgeNumericPick
	ScreenDaysPickStart
	ScreenDaysPickEnd
	ScreenTimeDurationMenu
	ScreenTimeNumericEntry
	ScreenSettingsTimezone
	ScreenHelp
	ScreenResultView
)

// Flow names which feature produced the current result view.
type Flow int

const (
	FlowNone Flow = iota
	FlowAge
	FlowDays
	FlowTime
)

// Key identifies a session by conversation and message.
type Key struct {
	ChatID    int64
	MessageID int
}

// Cursor is the (year, month) a calendar keyboard is showing.
type Cursor struct {
	Year  int
	Month int
}

// Session is the per-conversation state. The shape of the input buffer is
// fully determined by Screen: only the keypad screens carry Buffer, and
// NumYear/NumMonth hold the staged fields of the numeric date entry.
type Session struct {
	Key    Key
	Screen Screen
	Flow   Flow

	Cursor   Cursor
	Buffer   string
	NumYear  int // staged year, 0 = not yet confirmed
	NumMonth int // staged month, 0 = not yet confirmed

	Birth   *dates.Date
	Start   *dates.Date
	End     *dates.Date
	Seconds int64

	Timezone string

	CreatedAt time.Time
	LastSeen  time.Time
}

// Reset returns the session to the main menu, discarding every
// session-local buffer but keeping the selected timezone.
func (s *Session) Reset() {
	*s = Session{
		Key:       s.Key,
		Timezone:  s.Timezone,
		CreatedAt: s.CreatedAt,
		LastSeen:  s.LastSeen,
	}
}

// ClearEntry drops only the keypad state, leaving picked dates alone.
func (s *Session) ClearEntry() {
	s.Buffer = ""
	s.NumYear = 0
	s.NumMonth = 0
}
