package settings

import "time"

// IsQuietAt reports whether now falls inside the quiet-hours window.
//
// A nil window or a bound that does not parse as a 2-digit "HH:MM"
// clock value means not quiet: the evaluator fails open toward
// allowing vibration. Bounds are inclusive. A window whose start is
// later than its end wraps past midnight.
func IsQuietAt(w *Window, now time.Time) bool {
	if w == nil {
		return false
	}

	startHour, startMinute, ok := parseClock(w.Start)
	if !ok {
		return false
	}

	endHour, endMinute, ok := parseClock(w.End)
	if !ok {
		return false
	}

	start := time.Date(now.Year(), now.Month(), now.Day(), startHour, startMinute, 0, 0, now.Location())
	end := time.Date(now.Year(), now.Month(), now.Day(), endHour, endMinute, 0, 0, now.Location())

	if !start.After(end) {
		return !now.Before(start) && !now.After(end)
	}

	// Window crosses midnight.
	return !now.Before(start) || !now.After(end)
}

// parseClock parses a strict "HH:MM" value.
func parseClock(s string) (hour, minute int, ok bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, false
	}

	hour, ok = parseTwoDigits(s[:2])
	if !ok || hour > 23 {
		return 0, 0, false
	}

	minute, ok = parseTwoDigits(s[3:])
	if !ok || minute > 59 {
		return 0, 0, false
	}

	return hour, minute, true
}

// parseTwoDigits parses exactly two ASCII digits.
func parseTwoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}

	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}
