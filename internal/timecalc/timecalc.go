package timecalc

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidClock is returned when a clock string is not "HH:MM".
var ErrInvalidClock = errors.New("invalid clock")

// DateLayout is the layout used for dates on the command line.
const DateLayout = "2006-01-02"

// GenerateID creates an event ID based on timestamp and random suffix.
func GenerateID(t time.Time) string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 5)
	for i := range suffix {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		suffix[i] = chars[n.Int64()]
	}
	return fmt.Sprintf("%s-%s", t.Format("20060102-150405"), string(suffix))
}

// FormatDuration formats seconds as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// DaysInMonth returns the number of days in the month containing t.
func DaysInMonth(t time.Time) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// FirstWeekdayOfMonth returns the weekday (0 = Sunday) of day 1 of t's month.
func FirstWeekdayOfMonth(t time.Time) int {
	return int(FirstOfMonth(t).Weekday())
}

// MonthGrid returns the cells of a Sunday-first month grid: one 0 per
// leading blank cell, then the day numbers 1..DaysInMonth. The grid ends
// with the last day; there is no trailing padding.
func MonthGrid(t time.Time) []int {
	pad := FirstWeekdayOfMonth(t)
	days := DaysInMonth(t)
	cells := make([]int, pad, pad+days)
	for d := 1; d <= days; d++ {
		cells = append(cells, d)
	}
	return cells
}

// WeekDates returns the seven midnights of the Sunday-to-Saturday week
// containing t.
func WeekDates(t time.Time) []time.Time {
	sunday := StartOfDay(t).AddDate(0, 0, -int(t.Weekday()))
	out := make([]time.Time, 7)
	for i := range out {
		out[i] = sunday.AddDate(0, 0, i)
	}
	return out
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FirstOfMonth returns midnight of day 1 of t's month.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// AddMonths returns midnight of day 1 of the month n months away from t.
func AddMonths(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}

// ParseClock splits a "HH:MM" clock into hour and minute.
func ParseClock(s string) (int, int, error) {
	hs, ms, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("%w %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(ms)
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("%w %q", ErrInvalidClock, s)
	}
	return h, m, nil
}

// ClockHour returns the integer before the first colon of a clock string.
// Only the hour part is inspected, so "09:xx" still yields 9.
func ClockHour(s string) (int, bool) {
	hs, _, _ := strings.Cut(s, ":")
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, false
	}
	return h, true
}

// At combines the calendar day of day with a "HH:MM" clock.
func At(day time.Time, clock string) (time.Time, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location()), nil
}

// ClockSpan returns the seconds between two clocks on the same day, or
// false when either is malformed or end is not after start.
func ClockSpan(start, end string) (int64, bool) {
	sh, sm, err := ParseClock(start)
	if err != nil {
		return 0, false
	}
	eh, em, err := ParseClock(end)
	if err != nil {
		return 0, false
	}
	secs := int64((eh*60+em)-(sh*60+sm)) * 60
	if secs <= 0 {
		return 0, false
	}
	return secs, true
}
