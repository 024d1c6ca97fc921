package timetable

import (
	"strings"
	"time"
)

// Canonical weekday values used for slot matching.
const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

var dayAliases = map[string]string{
	"mon": Monday, "monday": Monday,
	"tue": Tuesday, "tues": Tuesday, "tuesday": Tuesday,
	"wed": Wednesday, "weds": Wednesday, "wednesday": Wednesday,
	"thu": Thursday, "thur": Thursday, "thurs": Thursday, "thursday": Thursday,
	"fri": Friday, "friday": Friday,
	"sat": Saturday, "saturday": Saturday,
	"sun": Sunday, "sunday": Sunday,
}

// NormalizeDay maps a day name or abbreviation in any case to its canonical
// lowercase weekday. Unknown input yields "" and false.
func NormalizeDay(day string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(day))
	key = strings.TrimSuffix(key, ".")
	canonical, ok := dayAliases[key]
	return canonical, ok
}

// SameDay compares two day names after normalization.
func SameDay(a, b string) bool {
	na, okA := NormalizeDay(a)
	nb, okB := NormalizeDay(b)
	return okA && okB && na == nb
}

// DayOf returns the canonical weekday of a date.
func DayOf(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// DatesBetween enumerates calendar dates in [start, end], inclusive.
func DatesBetween(start, end time.Time) []time.Time {
	start = truncateDate(start)
	end = truncateDate(end)
	if end.Before(start) {
		return nil
	}

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
