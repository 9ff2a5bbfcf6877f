package ics

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/Tiliavir/trivial-calendar/internal/model"
	"github.com/Tiliavir/trivial-calendar/internal/timecalc"
)

const productID = "-//Tiliavir//trivial-calendar//EN"

// Properties that keep palette token, stored date and wall clocks across a
// round trip.
const (
	propColor     = ical.ComponentProperty("COLOR")
	propDate      = ical.ComponentProperty("X-TCAL-DATE")
	propStartTime = ical.ComponentProperty("X-TCAL-START-TIME")
	propEndTime   = ical.ComponentProperty("X-TCAL-END-TIME")
)

// uidNamespace scopes event UIDs so the same event ID always maps to the
// same UID.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/Tiliavir/trivial-calendar"))

// UID returns the iCalendar UID for an event ID.
func UID(eventID string) string {
	return uuid.NewSHA1(uidNamespace, []byte(eventID)).String()
}

// Export writes events as a VCALENDAR. stamp is used for DTSTAMP.
func Export(w io.Writer, events []model.Event, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range events {
		ve := cal.AddEvent(UID(e.ID))
		ve.SetDtStampTime(stamp)
		ve.SetSummary(e.Title)
		if d := e.DescriptionText(); d != "" {
			ve.SetDescription(d)
		}
		if e.AllDay {
			day := timecalc.StartOfDay(e.Date)
			ve.SetAllDayStartAt(day)
			ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
		} else {
			start, end := eventSpan(e)
			ve.SetStartAt(start)
			ve.SetEndAt(end)
		}
		if e.Color != "" {
			ve.SetProperty(propColor, string(e.Color))
		}
		ve.SetProperty(propDate, e.Date.Format(time.RFC3339))
		ve.SetProperty(propStartTime, e.StartTime)
		ve.SetProperty(propEndTime, e.EndTime)
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

// eventSpan derives DTSTART/DTEND from the event's day and clocks. Malformed
// clocks fall back to the stored date; an end that is not after the start
// collapses to the start.
func eventSpan(e model.Event) (time.Time, time.Time) {
	start, err := timecalc.At(e.Date, e.StartTime)
	if err != nil {
		start = e.Date
	}
	end, err := timecalc.At(e.Date, e.EndTime)
	if err != nil || end.Before(start) {
		end = start
	}
	return start, end
}
