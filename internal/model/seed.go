package model

import "time"

// SeedEvents returns the demo events shown on a fresh calendar, dated in loc.
func SeedEvents(loc *time.Location) []Event {
	standup := "Daily team sync"
	review := "Review new designs"
	return []Event{
		{
			ID: "1",
			EventData: EventData{
				Title:       "Team Standup",
				Description: &standup,
				Date:        time.Date(2024, time.November, 15, 9, 0, 0, 0, loc),
				StartTime:   "09:00",
				EndTime:     "09:30",
				Color:       ColorBlue,
			},
		},
		{
			ID: "2",
			EventData: EventData{
				Title:       "Design Review",
				Description: &review,
				Date:        time.Date(2024, time.November, 15, 14, 0, 0, 0, loc),
				StartTime:   "14:00",
				EndTime:     "15:00",
				Color:       ColorPurple,
			},
		},
		{
			ID: "3",
			EventData: EventData{
				Title:     "All Hands Meeting",
				Date:      time.Date(2024, time.November, 16, 0, 0, 0, 0, loc),
				StartTime: "10:00",
				EndTime:   "11:00",
				Color:     ColorGreen,
				AllDay:    true,
			},
		},
	}
}
