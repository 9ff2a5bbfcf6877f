// Package query holds the pure functions that decide which events appear on
// which calendar cell, and in what order.
package query

import (
	"slices"
	"strings"
	"time"

	"github.com/Tiliavir/trivial-calendar/internal/model"
	"github.com/Tiliavir/trivial-calendar/internal/timecalc"
)

// EventsOnDate returns the events whose date falls on the same calendar day
// as date. Time of day is ignored on both sides.
func EventsOnDate(events []model.Event, date time.Time) []model.Event {
	var out []model.Event
	for _, e := range events {
		if timecalc.SameDay(e.Date, date) {
			out = append(out, e)
		}
	}
	return out
}

// EventsOnDateAtHour narrows EventsOnDate to events whose start time hour
// equals hour. Events with an unparsable start time never match.
func EventsOnDateAtHour(events []model.Event, date time.Time, hour int) []model.Event {
	var out []model.Event
	for _, e := range events {
		if !timecalc.SameDay(e.Date, date) {
			continue
		}
		if h, ok := timecalc.ClockHour(e.StartTime); ok && h == hour {
			out = append(out, e)
		}
	}
	return out
}

// SortChronologically returns a sorted copy of events, ordered by date and
// then by start time. The input slice is left untouched.
func SortChronologically(events []model.Event) []model.Event {
	out := slices.Clone(events)
	slices.SortStableFunc(out, compareEvents)
	return out
}

func compareEvents(a, b model.Event) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	// Zero-padded "HH:MM" sorts correctly as plain strings.
	return strings.Compare(a.StartTime, b.StartTime)
}

// PartitionUpcomingPast splits the chronologically sorted events at now.
// Events dated at or after now are upcoming; the rest are past. Both halves
// stay in ascending order.
func PartitionUpcomingPast(events []model.Event, now time.Time) (upcoming, past []model.Event) {
	for _, e := range SortChronologically(events) {
		if e.Date.Before(now) {
			past = append(past, e)
		} else {
			upcoming = append(upcoming, e)
		}
	}
	return upcoming, past
}

// Search returns events whose title or description contains q, ignoring
// case. A blank query matches nothing.
func Search(events []model.Event, q string) []model.Event {
	if strings.TrimSpace(q) == "" {
		return nil
	}
	needle := strings.ToLower(q)
	var out []model.Event
	for _, e := range events {
		if strings.Contains(strings.ToLower(e.Title), needle) ||
			(e.Description != nil && strings.Contains(strings.ToLower(*e.Description), needle)) {
			out = append(out, e)
		}
	}
	return out
}
