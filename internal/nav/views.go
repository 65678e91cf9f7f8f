package nav

import (
	"fmt"
	"strconv"

	"DayMate/internal/callback"
	"DayMate/internal/dates"
	"DayMate/internal/session"
)

// Button is one inline-keyboard button: a label and the callback data it
// fires.
type Button struct {
	Label string
	Data  string
}

// View is the outbound description of a screen: message text, an ordered
// button grid, and an optional inline notice the renderer appends to the
// text.
type View struct {
	Text     string
	Keyboard [][]Button
	Notice   string
}

func (v View) withNotice(notice string) View {
	v.Notice = notice
	return v
}

// data encodes a machine-built token. Tokens built here are always within
// the codec's bounds; a decorative no-op is the safe fallback.
func data(t callback.Token) string {
	s, err := callback.Encode(t)
	if err != nil {
		return "nav_noop"
	}
	return s
}

func noop() string {
	return data(callback.Token{Kind: callback.KindNoop})
}

func menuButton(label, target string) Button {
	return Button{Label: label, Data: data(callback.Token{Kind: callback.KindMenu, Target: target})}
}

// controlRow is the Back / Cancel / Main-Menu row every non-main screen
// carries.
func controlRow() []Button {
	return []Button{
		{Label: "↩ Back", Data: data(callback.Token{Kind: callback.KindBack})},
		{Label: "✖ Cancel", Data: data(callback.Token{Kind: callback.KindCancel})},
		menuButton("🏠 Menu", callback.TargetMain),
	}
}

// Render builds the view for the session's current screen without
// changing any state.
func (m *Machine) Render(s *session.Session) View {
	switch s.Screen {
	case session.ScreenAgeCalendarPick:
		return m.calendarView(s, callback.FlowAge, "Select your birth date:")
	case session.ScreenAgeNumericPick:
		return m.ageKeypadView(s)
	case session.ScreenDaysPickStart:
		return m.calendarView(s, callback.FlowDays, "Select START date:")
	case session.ScreenDaysPickEnd:
		title := "Select END date:"
		if s.Start != nil {
			title = fmt.Sprintf("Start date set: %s\nNow select END date:", s.Start)
		}
		return m.calendarView(s, callback.FlowDays, title)
	case session.ScreenTimeDurationMenu:
		return m.timeMenuView()
	case session.ScreenTimeNumericEntry:
		return m.timeKeypadView(s)
	case session.ScreenSettingsTimezone:
		return m.settingsView(s)
	case session.ScreenHelp:
		return m.helpView()
	case session.ScreenResultView:
		return m.resultView(s)
	}
	return m.mainMenuView()
}

func (m *Machine) mainMenuView() View {
	return View{
		Text: "Welcome to DayMate 📅 — choose a feature:",
		Keyboard: [][]Button{
			{menuButton("🎂 Age Calculator", callback.TargetAge)},
			{menuButton("📅 Days Calculator", callback.TargetDays)},
			{menuButton("🕰 Time Calculator", callback.TargetTime)},
			{menuButton("⚙ Settings", callback.TargetSettings), menuButton("❓ Help", callback.TargetHelp)},
		},
	}
}

var weekdayHeader = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// calendarView lays out a month grid for the cursor: weekday header, day
// cells (padding cells are inert), month and year navigation rows, and
// the control row.
func (m *Machine) calendarView(s *session.Session, flow callback.Flow, title string) View {
	year, month := s.Cursor.Year, s.Cursor.Month

	var kb [][]Button

	header := make([]Button, 0, 7)
	for _, d := range weekdayHeader {
		header = append(header, Button{Label: d, Data: noop()})
	}
	kb = append(kb, header)

	for _, week := range dates.MonthGrid(year, month) {
		row := make([]Button, 0, 7)
		for _, day := range week {
			if day == 0 {
				row = append(row, Button{Label: " ", Data: noop()})
				continue
			}
			d := dates.Date{Year: year, Month: month, Day: day}
			row = append(row, Button{
				Label: strconv.Itoa(day),
				Data:  data(callback.Token{Kind: callback.KindDate, Flow: flow, Date: d}),
			})
		}
		kb = append(kb, row)
	}

	nav := func(dir callback.Dir) string {
		return data(callback.Token{Kind: callback.KindCalNav, Flow: flow, Dir: dir, Year: year, Month: month})
	}
	kb = append(kb, []Button{
		{Label: "◀", Data: nav(callback.DirPrevMonth)},
		{Label: fmt.Sprintf("%04d-%02d", year, month), Data: noop()},
		{Label: "▶", Data: nav(callback.DirNextMonth)},
	})
	kb = append(kb, []Button{
		{Label: "«", Data: nav(callback.DirPrevYear)},
		{Label: strconv.Itoa(year), Data: noop()},
		{Label: "»", Data: nav(callback.DirNextYear)},
	})

	if flow == callback.FlowAge {
		kb = append(kb, []Button{{
			Label: "⌨ Type the date",
			Data:  data(callback.Token{Kind: callback.KindAgeMode, Mode: callback.ModeNumeric}),
		}})
	}
	kb = append(kb, controlRow())

	return View{Text: title, Keyboard: kb}
}

// keypadRows is the shared digit pad: 1-9, then backspace / 0 / confirm.
func keypadRows() [][]Button {
	var kb [][]Button
	for base := 1; base <= 7; base += 3 {
		row := make([]Button, 0, 3)
		for d := base; d < base+3; d++ {
			row = append(row, Button{
				Label: strconv.Itoa(d),
				Data:  data(callback.Token{Kind: callback.KindDigit, Digit: d}),
			})
		}
		kb = append(kb, row)
	}
	kb = append(kb, []Button{
		{Label: "⌫", Data: data(callback.Token{Kind: callback.KindBackspace})},
		{Label: "0", Data: data(callback.Token{Kind: callback.KindDigit, Digit: 0})},
		{Label: "✓ OK", Data: data(callback.Token{Kind: callback.KindConfirm})},
	})
	return kb
}

func bufferDisplay(buf string) string {
	if buf == "" {
		return "_"
	}
	return buf
}

func (m *Machine) ageKeypadView(s *session.Session) View {
	var prompt string
	switch ageField(s) {
	case fieldYear:
		prompt = fmt.Sprintf("Enter birth YEAR (4 digits): %s", bufferDisplay(s.Buffer))
	case fieldMonth:
		prompt = fmt.Sprintf("Year: %d\nEnter birth MONTH (1-12): %s", s.NumYear, bufferDisplay(s.Buffer))
	default:
		prompt = fmt.Sprintf("Year: %d  Month: %d\nEnter birth DAY: %s",
			s.NumYear, s.NumMonth, bufferDisplay(s.Buffer))
	}

	kb := keypadRows()
	kb = append(kb, []Button{{
		Label: "📅 Use the calendar",
		Data:  data(callback.Token{Kind: callback.KindAgeMode, Mode: callback.ModeCalendar}),
	}})
	kb = append(kb, controlRow())
	return View{Text: "⌨ Birth date entry\n\n" + prompt, Keyboard: kb}
}

func (m *Machine) timeMenuView() View {
	var kb [][]Button
	row := make([]Button, 0, 2)
	for _, p := range m.cfg.Presets {
		row = append(row, Button{
			Label: p.Label,
			Data:  data(callback.Token{Kind: callback.KindDuration, Seconds: p.Seconds}),
		})
		if len(row) == 2 {
			kb = append(kb, row)
			row = make([]Button, 0, 2)
		}
	}
	if len(row) > 0 {
		kb = append(kb, row)
	}
	kb = append(kb, []Button{{
		Label: "⌨ Custom seconds",
		Data:  data(callback.Token{Kind: callback.KindCustom}),
	}})
	kb = append(kb, controlRow())
	return View{Text: "🕰 Pick a duration to convert:", Keyboard: kb}
}

func (m *Machine) timeKeypadView(s *session.Session) View {
	kb := keypadRows()
	kb = append(kb, controlRow())
	return View{
		Text:     fmt.Sprintf("Enter a duration in seconds: %s", bufferDisplay(s.Buffer)),
		Keyboard: kb,
	}
}

func (m *Machine) settingsView(s *session.Session) View {
	var kb [][]Button
	for i, tz := range m.cfg.Timezones {
		label := tz
		if tz == s.Timezone {
			label = "✔ " + tz
		}
		kb = append(kb, []Button{{
			Label: label,
			Data:  data(callback.Token{Kind: callback.KindTimezone, Index: i}),
		}})
	}
	kb = append(kb, controlRow())
	return View{Text: "⚙ Choose your timezone (used for \"today\"):", Keyboard: kb}
}

func (m *Machine) helpView() View {
	text := "❓ *DayMate Help*\n\n" +
		"🎂 Age Calculator — pick (or type) a birth date and get the exact age.\n" +
		"📅 Days Calculator — pick two dates and get the difference.\n" +
		"🕰 Time Calculator — convert a duration into hours, minutes and seconds.\n\n" +
		"Everything works through buttons; there is nothing to type in chat."
	return View{Text: text, Keyboard: [][]Button{controlRow()}}
}

func (m *Machine) resultView(s *session.Session) View {
	switch s.Flow {
	case session.FlowAge:
		if s.Birth != nil {
			return m.ageResultView(s)
		}
	case session.FlowDays:
		if s.Start != nil && s.End != nil {
			return m.daysResultView(s)
		}
	case session.FlowTime:
		return m.timeResultView(s)
	}
	return m.mainMenuView()
}

func (m *Machine) ageResultView(s *session.Session) View {
	res := dates.AgeBreakdown(*s.Birth, m.today(s))
	text := fmt.Sprintf(
		"🎂 *Age Result*\n\nBorn: %s\n→ %d years, %d months, %d days\n(%d weeks — %d days / %d hours total)",
		s.Birth, res.Years, res.Months, res.Days, res.Weeks, res.TotalDays, res.TotalHours,
	)
	return View{Text: text, Keyboard: [][]Button{
		{menuButton("🔁 Recalculate", callback.TargetAge)},
		{menuButton("↩ Back to menu", callback.TargetMain)},
	}}
}

func (m *Machine) daysResultView(s *session.Session) View {
	res := dates.DaysBetween(*s.Start, *s.End)
	text := fmt.Sprintf(
		"📅 *Days Difference*\n\nFrom: %s\nTo:   %s\n\n→ %d years, %d months, %d days\n(%d weeks — %d days / %d hours total)",
		s.Start, s.End, res.Years, res.Months, res.Days, res.Weeks, res.TotalDays, res.TotalHours,
	)
	return View{Text: text, Keyboard: [][]Button{
		{{Label: "⇄ Swap dates", Data: data(callback.Token{Kind: callback.KindSwap})}},
		{menuButton("🔁 Recalculate", callback.TargetDays)},
		{menuButton("↩ Back to menu", callback.TargetMain)},
	}}
}

func (m *Machine) timeResultView(s *session.Session) View {
	res := dates.DurationBreakdown(s.Seconds)
	text := fmt.Sprintf(
		"🕰 *Duration*\n\n→ %d hours, %d minutes, %d seconds\n(%d seconds total)",
		res.Hours, res.Minutes, res.Seconds, res.TotalSeconds,
	)
	return View{Text: text, Keyboard: [][]Button{
		{menuButton("🔁 Recalculate", callback.TargetTime)},
		{menuButton("↩ Back to menu", callback.TargetMain)},
	}}
}
