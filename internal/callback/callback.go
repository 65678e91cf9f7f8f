// Package callback is the compact codec between action tokens and the
// short strings Telegram hands back when a button is pressed. The wire
// grammar is `<domain>_<action>[_<value>]` with at most one payload, and
// every encoded token must fit the platform's 64-byte callback-data limit.
package callback

import (
	"fmt"
	"strconv"
	"strings"

	"DayMate/internal/dates"
)

// MaxLen is the Telegram callback-data byte limit.
const MaxLen = 64

// maxSeconds bounds duration payloads to a 32-bit second count.
const maxSeconds = 1<<31 - 1

// Kind tags the token variant.
type Kind int

const (
	KindNoop      Kind = iota // decorative cell, answer and ignore
	KindMenu                  // menu select, Target set
	KindDate                  // calendar day select, Flow and Date set
	KindCalNav                // calendar navigation, Flow, Dir, cursor set
	KindDigit                 // keypad digit, Digit set
	KindBackspace             // keypad backspace
	KindConfirm               // keypad confirm
	KindBack                  // back one screen
	KindCancel                // cancel, universal
	KindSwap                  // swap start/end on the days result
	KindDuration              // duration preset, Seconds set
	KindCustom                // switch to custom duration keypad
	KindAgeMode               // switch age flow input mode, Mode set
	KindTimezone              // timezone select, Index set
)

// Flow names the feature a date or navigation token belongs to.
type Flow string

const (
	FlowAge  Flow = "age"
	FlowDays Flow = "days"
	FlowTime Flow = "time"
)

// Dir is a calendar navigation direction.
type Dir string

const (
	DirPrevMonth Dir = "prev"
	DirNextMonth Dir = "next"
	DirPrevYear  Dir = "pyear"
	DirNextYear  Dir = "nyear"
)

// Menu targets.
const (
	TargetMain     = "main"
	TargetAge      = "age"
	TargetDays     = "days"
	TargetTime     = "time"
	TargetSettings = "settings"
	TargetHelp     = "help"
)

// Age input modes.
const (
	ModeCalendar = "cal"
	ModeNumeric  = "num"
)

// Token is an immutable decoded action. Only the fields relevant to Kind
// are set; the zero value of the rest keeps tokens comparable with ==.
type Token struct {
	Kind    Kind
	Target  string
	Flow    Flow
	Date    dates.Date
	Dir     Dir
	Year    int
	Month   int
	Digit   int
	Seconds int64
	Mode    string
	Index   int
}

// DecodeError reports malformed callback data. Callers treat it as a
// no-op: stale buttons from a previous bot lifetime must never crash the
// handler.
type DecodeError struct {
	Data   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode callback %q: %s", e.Data, e.Reason)
}

func decodeErr(data, reason string) (Token, error) {
	return Token{}, &DecodeError{Data: data, Reason: reason}
}

// Encode renders a token into its wire form. It rejects tokens whose
// payload would not survive a round trip or would exceed the byte budget.
func Encode(t Token) (string, error) {
	var s string
	switch t.Kind {
	case KindNoop:
		s = "nav_noop"
	case KindBackspace:
		s = "nav_del"
	case KindConfirm:
		s = "nav_ok"
	case KindBack:
		s = "nav_back"
	case KindCancel:
		s = "nav_cancel"
	case KindDigit:
		if t.Digit < 0 || t.Digit > 9 {
			return "", fmt.Errorf("digit out of range: %d", t.Digit)
		}
		s = fmt.Sprintf("nav_digit_%d", t.Digit)
	case KindMenu:
		switch t.Target {
		case TargetMain:
			s = "menu_main"
		case TargetAge, TargetDays, TargetTime:
			s = t.Target + "_start"
		case TargetSettings:
			s = "settings_open"
		case TargetHelp:
			s = "help_open"
		default:
			return "", fmt.Errorf("unknown menu target %q", t.Target)
		}
	case KindDate:
		if t.Flow != FlowAge && t.Flow != FlowDays {
			return "", fmt.Errorf("flow %q does not pick dates", t.Flow)
		}
		if !t.Date.Valid() || t.Date.Year < 1 || t.Date.Year > 9999 {
			return "", fmt.Errorf("unencodable date %v", t.Date)
		}
		s = fmt.Sprintf("%s_date_%s", t.Flow, t.Date.Compact())
	case KindCalNav:
		if t.Flow != FlowAge && t.Flow != FlowDays {
			return "", fmt.Errorf("flow %q has no calendar", t.Flow)
		}
		switch t.Dir {
		case DirPrevMonth, DirNextMonth, DirPrevYear, DirNextYear:
		default:
			return "", fmt.Errorf("unknown direction %q", t.Dir)
		}
		if t.Year < 1 || t.Year > 9999 || t.Month < 1 || t.Month > 12 {
			return "", fmt.Errorf("unencodable cursor %d-%d", t.Year, t.Month)
		}
		s = fmt.Sprintf("%s_%s_%d_%d", t.Flow, t.Dir, t.Year, t.Month)
	case KindAgeMode:
		if t.Mode != ModeCalendar && t.Mode != ModeNumeric {
			return "", fmt.Errorf("unknown age mode %q", t.Mode)
		}
		s = "age_" + t.Mode
	case KindSwap:
		s = "days_swap"
	case KindDuration:
		if t.Seconds < 0 || t.Seconds > maxSeconds {
			return "", fmt.Errorf("duration out of range: %d", t.Seconds)
		}
		s = fmt.Sprintf("time_dur_%d", t.Seconds)
	case KindCustom:
		s = "time_custom"
	case KindTimezone:
		if t.Index < 0 || t.Index > 99 {
			return "", fmt.Errorf("timezone index out of range: %d", t.Index)
		}
		s = fmt.Sprintf("settings_tz_%d", t.Index)
	default:
		return "", fmt.Errorf("unknown token kind %d", t.Kind)
	}
	if len(s) > MaxLen {
		return "", fmt.Errorf("encoded token exceeds %d bytes: %q", MaxLen, s)
	}
	return s, nil
}

// Decode parses wire data back into a token. Every failure is a
// *DecodeError carrying the offending data and a reason.
func Decode(data string) (Token, error) {
	if data == "" {
		return decodeErr(data, "empty data")
	}
	if len(data) > MaxLen {
		return decodeErr(data, "over byte budget")
	}
	parts := strings.SplitN(data, "_", 3)
	if len(parts) < 2 {
		return decodeErr(data, "missing action")
	}
	domain, action := parts[0], parts[1]
	value := ""
	if len(parts) == 3 {
		value = parts[2]
	}

	switch domain {
	case "menu":
		if action != "main" {
			return decodeErr(data, "unknown action in menu domain")
		}
		if value != "" {
			return decodeErr(data, "unexpected value")
		}
		return Token{Kind: KindMenu, Target: TargetMain}, nil

	case "help":
		if action != "open" {
			return decodeErr(data, "unknown action in help domain")
		}
		if value != "" {
			return decodeErr(data, "unexpected value")
		}
		return Token{Kind: KindMenu, Target: TargetHelp}, nil

	case "settings":
		switch action {
		case "open":
			if value != "" {
				return decodeErr(data, "unexpected value")
			}
			return Token{Kind: KindMenu, Target: TargetSettings}, nil
		case "tz":
			idx, err := strconv.Atoi(value)
			if err != nil || value == "" || idx < 0 || idx > 99 {
				return decodeErr(data, "bad timezone index")
			}
			return Token{Kind: KindTimezone, Index: idx}, nil
		}
		return decodeErr(data, "unknown action in settings domain")

	case "nav":
		switch action {
		case "noop":
			tok := Token{Kind: KindNoop}
			return navToken(data, tok, value)
		case "del":
			return navToken(data, Token{Kind: KindBackspace}, value)
		case "ok":
			return navToken(data, Token{Kind: KindConfirm}, value)
		case "back":
			return navToken(data, Token{Kind: KindBack}, value)
		case "cancel":
			return navToken(data, Token{Kind: KindCancel}, value)
		case "digit":
			if len(value) != 1 || value[0] < '0' || value[0] > '9' {
				return decodeErr(data, "bad digit")
			}
			return Token{Kind: KindDigit, Digit: int(value[0] - '0')}, nil
		}
		return decodeErr(data, "unknown action in nav domain")

	case "age", "days":
		flow := Flow(domain)
		switch action {
		case "start":
			if value != "" {
				return decodeErr(data, "unexpected value")
			}
			return Token{Kind: KindMenu, Target: domain}, nil
		case "date":
			d, err := dates.ParseCompact(value)
			if err != nil {
				return decodeErr(data, "bad date literal")
			}
			return Token{Kind: KindDate, Flow: flow, Date: d}, nil
		case "prev", "next", "pyear", "nyear":
			y, m, ok := parseCursor(value)
			if !ok {
				return decodeErr(data, "bad calendar cursor")
			}
			return Token{Kind: KindCalNav, Flow: flow, Dir: Dir(action), Year: y, Month: m}, nil
		}
		if domain == "age" && (action == ModeCalendar || action == ModeNumeric) {
			if value != "" {
				return decodeErr(data, "unexpected value")
			}
			return Token{Kind: KindAgeMode, Mode: action}, nil
		}
		if domain == "days" && action == "swap" {
			if value != "" {
				return decodeErr(data, "unexpected value")
			}
			return Token{Kind: KindSwap}, nil
		}
		return decodeErr(data, "unknown action in "+domain+" domain")

	case "time":
		switch action {
		case "start":
			if value != "" {
				return decodeErr(data, "unexpected value")
			}
			return Token{Kind: KindMenu, Target: TargetTime}, nil
		case "custom":
			if value != "" {
				return decodeErr(data, "unexpected value")
			}
			return Token{Kind: KindCustom}, nil
		case "dur":
			secs, err := strconv.ParseInt(value, 10, 64)
			if err != nil || value == "" || secs < 0 || secs > maxSeconds {
				return decodeErr(data, "bad duration value")
			}
			return Token{Kind: KindDuration, Seconds: secs}, nil
		}
		return decodeErr(data, "unknown action in time domain")
	}
	return decodeErr(data, "unknown domain")
}

func navToken(data string, tok Token, value string) (Token, error) {
	if value != "" {
		return decodeErr(data, "unexpected value")
	}
	return tok, nil
}

func parseCursor(value string) (year, month int, ok bool) {
	ym := strings.SplitN(value, "_", 2)
	if len(ym) != 2 {
		return 0, 0, false
	}
	y, err := strconv.Atoi(ym[0])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(ym[1])
	if err != nil {
		return 0, 0, false
	}
	if y < 1 || y > 9999 || m < 1 || m > 12 {
		return 0, 0, false
	}
	return y, m, true
}
