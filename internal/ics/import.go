// Package ics converts between the event collection and iCalendar data.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/rs/zerolog"

	"github.com/Tiliavir/trivial-calendar/internal/model"
)

// Imported is one VEVENT mapped to event data. UID is empty when the
// VEVENT has none.
type Imported struct {
	UID string
	model.EventData
}

// Importer reads VEVENTs into event data.
type Importer struct {
	loc *time.Location
	log zerolog.Logger
}

// NewImporter creates an Importer that places event times in loc.
func NewImporter(loc *time.Location, log zerolog.Logger) *Importer {
	if loc == nil {
		loc = time.Local
	}
	return &Importer{loc: loc, log: log.With().Str("component", "ics").Logger()}
}

// Import parses an iCalendar stream. Events that cannot be mapped are
// logged and skipped. Recurrence rules are not expanded; only the first
// occurrence is kept.
func (im *Importer) Import(r io.Reader) ([]Imported, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	var out []Imported
	for _, ve := range cal.Events() {
		uid := propValue(ve, ical.ComponentPropertyUniqueId)
		data, err := im.mapEvent(ve)
		if err != nil {
			im.log.Warn().Err(err).Str("uid", uid).Msg("skipping vevent")
			continue
		}
		if propValue(ve, ical.ComponentPropertyRrule) != "" {
			im.log.Info().Str("title", data.Title).Msg("recurrence not expanded, keeping first occurrence")
		}
		out = append(out, Imported{UID: uid, EventData: data})
	}
	im.log.Debug().Int("event_count", len(out)).Msg("ics import completed")
	return out, nil
}

func (im *Importer) mapEvent(ve *ical.VEvent) (model.EventData, error) {
	var data model.EventData

	data.Title = strings.TrimSpace(propValue(ve, ical.ComponentPropertySummary))
	if data.Title == "" {
		return data, errors.New("missing SUMMARY")
	}
	if d := propValue(ve, ical.ComponentPropertyDescription); d != "" {
		data.Description = &d
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return data, errors.New("missing DTSTART")
	}
	data.AllDay = isDateValue(dtStart)

	if data.AllDay {
		start, err := ve.GetAllDayStartAt()
		if err != nil {
			return data, fmt.Errorf("parsing DTSTART: %w", err)
		}
		data.Date = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, im.loc)
		data.StartTime = "00:00"
		data.EndTime = "23:59"
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return data, fmt.Errorf("parsing DTSTART: %w", err)
		}
		start = start.In(im.loc)
		data.Date = start
		data.StartTime = start.Format("15:04")
		data.EndTime = data.StartTime
		if end, err := ve.GetEndAt(); err == nil {
			data.EndTime = end.In(im.loc).Format("15:04")
		}
	}

	// Stored date and clocks win; all-day events keep theirs this way.
	if v := propValue(ve, propDate); v != "" {
		if d, err := time.Parse(time.RFC3339, v); err == nil {
			data.Date = d.In(im.loc)
		} else {
			im.log.Debug().Str("date", v).Msg("unparsable stored date, using DTSTART")
		}
	}
	if v := propValue(ve, propStartTime); v != "" {
		data.StartTime = v
	}
	if v := propValue(ve, propEndTime); v != "" {
		data.EndTime = v
	}

	data.Color = model.DefaultColor
	if v := propValue(ve, propColor); v != "" {
		if c, err := model.ParseColor(v); err == nil {
			data.Color = c
		} else {
			im.log.Debug().Str("color", v).Msg("unknown color, using default")
		}
	}
	return data, nil
}

// isDateValue reports whether a DTSTART carries a date without a time.
func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func propValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}
