package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-calendar/internal/model"
	"github.com/Tiliavir/trivial-calendar/internal/query"
	"github.com/Tiliavir/trivial-calendar/internal/timecalc"
)

var (
	listPast  int
	listToday bool
	listWeek  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List upcoming and recent events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cal, cmd.OutOrStdout(), listOptions{past: listPast, today: listToday, week: listWeek})
	},
}

func init() {
	addListFlags(listCmd, &listPast, &listToday, &listWeek)
}

func addListFlags(c *cobra.Command, past *int, today, week *bool) {
	c.Flags().IntVar(past, "past", -1, "Number of past events to show (default from config)")
	c.Flags().BoolVar(today, "today", false, "Show today's events")
	c.Flags().BoolVar(week, "week", false, "Show the displayed week's events")
}

type listOptions struct {
	past  int
	today bool
	week  bool
}

func runList(a *app, w io.Writer, opts listOptions) error {
	events := a.session.Events()
	switch {
	case opts.week:
		var inWeek []model.Event
		for _, d := range timecalc.WeekDates(a.session.State().Current) {
			inWeek = append(inWeek, query.EventsOnDate(events, d)...)
		}
		printAgenda(w, query.SortChronologically(inWeek))
	case opts.today:
		printAgenda(w, query.SortChronologically(query.EventsOnDate(events, a.session.Now())))
	default:
		past := opts.past
		if past < 0 {
			past = a.cfg.Calendar.PastLimit
		}
		a.renderer().List(w, events, past)
	}
	return nil
}

// printAgenda groups sorted events by date and prints them.
func printAgenda(w io.Writer, events []model.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}

	var currentDay string
	for _, e := range events {
		day := e.Date.Format(timecalc.DateLayout)
		if day != currentDay {
			fmt.Fprintln(w, day)
			currentDay = day
		}
		fmt.Fprintf(w, "  %s  %s%s  [%s]\n", agendaTime(e), e.Title, agendaDuration(e), e.ID)
	}
}

func agendaTime(e model.Event) string {
	if e.AllDay {
		return "all day    "
	}
	return fmt.Sprintf("%s–%s", e.StartTime, e.EndTime)
}

func agendaDuration(e model.Event) string {
	if e.AllDay {
		return ""
	}
	if secs, ok := timecalc.ClockSpan(e.StartTime, e.EndTime); ok {
		return fmt.Sprintf(" (%s)", timecalc.FormatDuration(secs))
	}
	return ""
}

// dayOrSelection resolves an optional date argument, falling back to the
// selected day and then to the displayed date.
func dayOrSelection(a *app, args []string) (time.Time, error) {
	if len(args) > 0 {
		return timecalc.ParseDate(args[0], a.location)
	}
	st := a.session.State()
	if st.Selected != nil {
		return *st.Selected, nil
	}
	return st.Current, nil
}
