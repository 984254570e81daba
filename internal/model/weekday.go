package model

import "strings"

// WeekdayOrder is the canonical Monday-first ordering used by the breakdown view.
var WeekdayOrder = []string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

var weekdayAbbrevs = map[string]string{
	"Monday":    "Mon",
	"Tuesday":   "Tue",
	"Wednesday": "Wed",
	"Thursday":  "Thu",
	"Friday":    "Fri",
	"Saturday":  "Sat",
	"Sunday":    "Sun",
}

// NormalizeWeekday resolves a weekday string of any case to its canonical form.
// It returns false for empty, placeholder, or unrecognized input.
func NormalizeWeekday(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == "-" || strings.EqualFold(trimmed, "n/a") {
		return "", false
	}
	for _, day := range WeekdayOrder {
		if strings.EqualFold(trimmed, day) {
			return day, true
		}
	}
	return "", false
}

// WeekdayAbbrev returns the three-letter abbreviation for a canonical weekday.
func WeekdayAbbrev(day string) string {
	if abbrev, ok := weekdayAbbrevs[day]; ok {
		return abbrev
	}
	return day
}

// WeekdayIndex returns the Monday-first position of a canonical weekday, or -1.
func WeekdayIndex(day string) int {
	for i, d := range WeekdayOrder {
		if d == day {
			return i
		}
	}
	return -1
}

// FirstWeekday returns the earliest canonical weekday in Monday-first order
// from the given set. The second return is false if the set is empty.
func FirstWeekday(days []string) (string, bool) {
	best := -1
	for _, day := range days {
		if idx := WeekdayIndex(day); idx >= 0 && (best == -1 || idx < best) {
			best = idx
		}
	}
	if best == -1 {
		return "", false
	}
	return WeekdayOrder[best], true
}
