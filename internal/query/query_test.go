package query_test

import (
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-calendar/internal/model"
	"github.com/Tiliavir/trivial-calendar/internal/query"
)

func ids(events []model.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEventsOnDateSeed(t *testing.T) {
	events := model.SeedEvents(time.UTC)

	got := query.EventsOnDate(events, day(2024, time.November, 15))
	assert.ElementsMatch(t, []string{"1", "2"}, ids(got))

	sorted := query.SortChronologically(got)
	require.Len(t, sorted, 2)
	assert.Equal(t, "Team Standup", sorted[0].Title)
	assert.Equal(t, "Design Review", sorted[1].Title)
}

func TestEventsOnDateIgnoresTimeOfDay(t *testing.T) {
	events := model.SeedEvents(time.UTC)

	// All-day event stored at midnight matches a query late in the day.
	got := query.EventsOnDate(events, time.Date(2024, time.November, 16, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, []string{"3"}, ids(got))

	assert.Empty(t, query.EventsOnDate(events, day(2024, time.November, 17)))
	// Same day number in another month must not match.
	assert.Empty(t, query.EventsOnDate(events, day(2024, time.October, 15)))
}

func TestEventsOnDateOrderIndependent(t *testing.T) {
	events := model.SeedEvents(time.UTC)
	extra := model.Event{ID: "4", EventData: model.EventData{
		Title: "Lunch", Date: time.Date(2024, time.November, 15, 12, 0, 0, 0, time.UTC),
		StartTime: "12:00", EndTime: "13:00", Color: model.ColorYellow,
	}}
	events = append(events, extra)

	target := day(2024, time.November, 15)
	want := ids(query.EventsOnDate(events, target))

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := slices.Clone(events)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := query.EventsOnDate(shuffled, target)
		assert.ElementsMatch(t, want, ids(got))
		// Filtering the result again yields the same set.
		assert.ElementsMatch(t, want, ids(query.EventsOnDate(got, target)))
	}
}

func TestEventsOnDateAtHour(t *testing.T) {
	events := model.SeedEvents(time.UTC)
	d := day(2024, time.November, 15)

	assert.Equal(t, []string{"1"}, ids(query.EventsOnDateAtHour(events, d, 9)))
	assert.Empty(t, query.EventsOnDateAtHour(events, d, 10))
	assert.Equal(t, []string{"2"}, ids(query.EventsOnDateAtHour(events, d, 14)))

	// All-day events still bucket by their stored start time.
	assert.Equal(t, []string{"3"}, ids(query.EventsOnDateAtHour(events, day(2024, time.November, 16), 10)))
}

func TestEventsOnDateAtHourSkipsMalformedStart(t *testing.T) {
	events := []model.Event{{ID: "x", EventData: model.EventData{
		Title: "Broken", Date: day(2024, time.May, 1), StartTime: "soon",
	}}}
	for h := 0; h < 24; h++ {
		assert.Empty(t, query.EventsOnDateAtHour(events, day(2024, time.May, 1), h))
	}
}

func TestSortChronologically(t *testing.T) {
	mk := func(id string, d time.Time, start string) model.Event {
		return model.Event{ID: id, EventData: model.EventData{Title: id, Date: d, StartTime: start}}
	}
	events := []model.Event{
		mk("c", day(2024, time.March, 2), "08:00"),
		mk("b2", day(2024, time.March, 1), "10:00"),
		mk("b1", day(2024, time.March, 1), "09:00"),
		mk("a", time.Date(2024, time.February, 28, 18, 0, 0, 0, time.UTC), "18:00"),
		mk("b3", day(2024, time.March, 1), "10:00"),
	}
	before := ids(events)

	got := query.SortChronologically(events)
	assert.Equal(t, []string{"a", "b1", "b2", "b3", "c"}, ids(got))
	assert.Equal(t, before, ids(events), "input must not be reordered")
}

func TestPartitionUpcomingPast(t *testing.T) {
	events := model.SeedEvents(time.UTC)

	// Between the standup and the review.
	now := time.Date(2024, time.November, 15, 12, 0, 0, 0, time.UTC)
	upcoming, past := query.PartitionUpcomingPast(events, now)
	assert.Equal(t, []string{"2", "3"}, ids(upcoming))
	assert.Equal(t, []string{"1"}, ids(past))

	// Exactly at an event's date-time counts as upcoming.
	upcoming, past = query.PartitionUpcomingPast(events, time.Date(2024, time.November, 15, 14, 0, 0, 0, time.UTC))
	assert.Equal(t, []string{"2", "3"}, ids(upcoming))
	assert.Equal(t, []string{"1"}, ids(past))

	// Comparison uses the full date-time, not the day.
	upcoming, past = query.PartitionUpcomingPast(events, time.Date(2024, time.November, 16, 0, 0, 1, 0, time.UTC))
	assert.Empty(t, upcoming)
	assert.Equal(t, []string{"1", "2", "3"}, ids(past))
}

func TestSearch(t *testing.T) {
	events := model.SeedEvents(time.UTC)

	tests := []struct {
		q    string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"STANDUP", []string{"1"}},
		{"review", []string{"2"}},
		{"team", []string{"1"}},
		{"sync", []string{"1"}},
		{"designs", []string{"2"}},
		{"m", []string{"1", "3"}},
		{"nothing here", nil},
	}
	for _, tt := range tests {
		got := query.Search(events, tt.q)
		if tt.want == nil {
			assert.Empty(t, got, "Search(%q)", tt.q)
			continue
		}
		assert.Equal(t, tt.want, ids(got), "Search(%q)", tt.q)
	}
}
