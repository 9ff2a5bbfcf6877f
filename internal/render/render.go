// Package render draws calendar views as plain text for the terminal.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-isatty"

	"github.com/Tiliavir/trivial-calendar/internal/model"
	"github.com/Tiliavir/trivial-calendar/internal/query"
	"github.com/Tiliavir/trivial-calendar/internal/timecalc"
)

// MaxMonthBadges is the number of badges a month cell shows before
// collapsing the rest into "+N more".
const MaxMonthBadges = 2

// DefaultCellWidth is the width of one day column.
const DefaultCellWidth = 14

var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

var ansiCodes = map[model.Color]string{
	model.ColorBlue:   "34",
	model.ColorRed:    "31",
	model.ColorGreen:  "32",
	model.ColorPurple: "35",
	model.ColorYellow: "33",
	model.ColorPink:   "95",
}

const (
	ansiBold  = "1"
	ansiFaint = "2"
	ansiReset = "\x1b[0m"
)

// ColorEnabled resolves a color mode ("auto", "always", "never") for f.
// In auto mode color is used only on a terminal and when NO_COLOR is unset.
func ColorEnabled(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Renderer writes views. The zero value renders without color, uses
// DefaultCellWidth and treats time.Now as today.
type Renderer struct {
	// Color enables ANSI escapes.
	Color bool
	// CellWidth is the width of one day column.
	CellWidth int
	// Compact omits empty hour rows in the week view.
	Compact bool
	// Now overrides the current time, used for today marks and the
	// upcoming/past split.
	Now time.Time
}

// Selection carries the displayed date and the optionally selected day.
type Selection struct {
	Current  time.Time
	Selected *time.Time
}

// Badge returns the one-line label of an event: the title for all-day
// events, "HH:MM Title" otherwise.
func Badge(e model.Event) string {
	if e.AllDay {
		return e.Title
	}
	return e.StartTime + " " + e.Title
}

// Month draws the Sunday-first grid of sel.Current's month.
func (r Renderer) Month(w io.Writer, sel Selection, events []model.Event) {
	width := r.cellWidth()
	cur := sel.Current

	fmt.Fprintln(w, r.paint(ansiBold, cur.Format("January 2006")))
	r.rule(w)
	cols := make([]string, 7)
	for i, name := range weekdayNames {
		cols[i] = pad(name, width)
	}
	fmt.Fprintln(w, "|"+strings.Join(cols, "|")+"|")
	r.rule(w)

	// The last row stops after the month's last day.
	cells := timecalc.MonthGrid(cur)
	for row := 0; row < len(cells); row += 7 {
		week := cells[row:min(row+7, len(cells))]
		lines := [][]string{make([]string, len(week))}
		for col, day := range week {
			if day == 0 {
				lines[0][col] = pad("", width)
				continue
			}
			date := time.Date(cur.Year(), cur.Month(), day, 0, 0, 0, 0, cur.Location())
			lines[0][col] = r.dayLabel(fmt.Sprint(day), date, sel.Selected, width)

			onDay := query.EventsOnDate(events, date)
			var body []string
			for i, e := range onDay {
				if i == MaxMonthBadges {
					body = append(body, r.paint(ansiFaint, pad(fmt.Sprintf("+%d more", len(onDay)-MaxMonthBadges), width)))
					break
				}
				body = append(body, r.badge(e, width))
			}
			for i, text := range body {
				for len(lines) <= i+1 {
					lines = append(lines, make([]string, len(week)))
				}
				lines[i+1][col] = text
			}
		}
		for _, line := range lines {
			for col := range line {
				if line[col] == "" {
					line[col] = pad("", width)
				}
			}
			fmt.Fprintln(w, "|"+strings.Join(line, "|")+"|")
		}
		r.ruleCols(w, 0, len(week))
	}
}

// Week draws the week containing sel.Current with one row per hour.
func (r Renderer) Week(w io.Writer, sel Selection, events []model.Event) {
	width := r.cellWidth()
	days := timecalc.WeekDates(sel.Current)

	first, last := days[0], days[6]
	fmt.Fprintf(w, "%s  %s - %s\n",
		r.paint(ansiBold, "Week "+timecalc.ISOWeekLabel(sel.Current)),
		first.Format("Jan 2"), last.Format("Jan 2, 2006"))

	const gutter = 6
	r.ruleWith(w, gutter)
	header := make([]string, 7)
	for i, d := range days {
		header[i] = r.dayLabel(d.Format("Mon 2"), d, sel.Selected, width)
	}
	fmt.Fprintln(w, pad("", gutter)+"|"+strings.Join(header, "|")+"|")
	r.ruleWith(w, gutter)

	for hour := 0; hour < 24; hour++ {
		var lines [][]string
		for col, d := range days {
			for i, e := range query.EventsOnDateAtHour(events, d, hour) {
				for len(lines) <= i {
					lines = append(lines, make([]string, 7))
				}
				lines[i][col] = r.badge(e, width)
			}
		}
		if len(lines) == 0 {
			if r.Compact {
				continue
			}
			lines = [][]string{make([]string, 7)}
		}
		for i, line := range lines {
			label := ""
			if i == 0 {
				label = fmt.Sprintf("%02d:00", hour)
			}
			for col := range line {
				if line[col] == "" {
					line[col] = pad("", width)
				}
			}
			fmt.Fprintln(w, pad(label, gutter)+"|"+strings.Join(line, "|")+"|")
		}
	}
	r.ruleWith(w, gutter)
}

// List prints upcoming events followed by at most pastLimit past events.
func (r Renderer) List(w io.Writer, events []model.Event, pastLimit int) {
	upcoming, past := query.PartitionUpcomingPast(events, r.now())

	fmt.Fprintln(w, r.paint(ansiBold, "Upcoming"))
	if len(upcoming) == 0 {
		fmt.Fprintln(w, "  No upcoming events.")
	}
	for _, e := range upcoming {
		fmt.Fprintln(w, r.listLine(e))
	}

	if len(past) == 0 || pastLimit <= 0 {
		return
	}
	if len(past) > pastLimit {
		past = past[:pastLimit]
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.paint(ansiFaint, "Past Events"))
	for _, e := range past {
		fmt.Fprintln(w, r.paint(ansiFaint, "  o "+listText(e)))
	}
}

// SearchResults prints the matches of q, or a not-found line.
func (r Renderer) SearchResults(w io.Writer, q string, matches []model.Event) {
	if len(matches) == 0 {
		fmt.Fprintf(w, "No events found matching %q\n", q)
		return
	}
	for _, e := range matches {
		when := e.Date.Format("Jan 2, 2006")
		if !e.AllDay {
			when += " at " + e.StartTime
		}
		fmt.Fprintf(w, "%s %s  %s  [%s]\n", r.dot(e.Color), e.Title, when, e.ID)
	}
}

// Details prints every field of one event.
func (r Renderer) Details(w io.Writer, e model.Event) {
	fmt.Fprintf(w, "%s %s\n", r.dot(e.Color), r.paint(ansiBold, e.Title))
	fmt.Fprintf(w, "  ID:    %s\n", e.ID)
	fmt.Fprintf(w, "  Date:  %s\n", e.Date.Format("Mon, Jan 2, 2006"))
	if e.AllDay {
		fmt.Fprintln(w, "  Time:  all day")
	} else {
		fmt.Fprintf(w, "  Time:  %s–%s%s\n", e.StartTime, e.EndTime, durationSuffix(e))
	}
	fmt.Fprintf(w, "  Color: %s\n", e.Color)
	if d := e.DescriptionText(); d != "" {
		fmt.Fprintf(w, "  Note:  %s\n", d)
	}
}

func (r Renderer) listLine(e model.Event) string {
	return "  " + r.dot(e.Color) + " " + listText(e)
}

func listText(e model.Event) string {
	when := e.Date.Format("Jan 2")
	if !e.AllDay {
		when += " at " + e.StartTime + durationSuffix(e)
	}
	return fmt.Sprintf("%-28s %s", e.Title, when)
}

func durationSuffix(e model.Event) string {
	if secs, ok := timecalc.ClockSpan(e.StartTime, e.EndTime); ok {
		return fmt.Sprintf(" (%s)", timecalc.FormatDuration(secs))
	}
	return ""
}

func (r Renderer) dayLabel(text string, date time.Time, selected *time.Time, width int) string {
	isToday := timecalc.SameDay(date, r.now())
	isSelected := selected != nil && timecalc.SameDay(date, *selected)
	if isSelected {
		text = "[" + text + "]"
	}
	if isToday {
		text += " *"
	}
	cell := pad(text, width)
	if isToday || isSelected {
		return r.paint(ansiBold, cell)
	}
	return cell
}

func (r Renderer) badge(e model.Event, width int) string {
	return r.paint(ansiCodes[e.Color], pad(Badge(e), width))
}

func (r Renderer) dot(c model.Color) string {
	return r.paint(ansiCodes[c], "o")
}

func (r Renderer) paint(code, s string) string {
	if !r.Color || code == "" {
		return s
	}
	return "\x1b[" + code + "m" + s + ansiReset
}

func (r Renderer) rule(w io.Writer) {
	r.ruleCols(w, 0, 7)
}

func (r Renderer) ruleWith(w io.Writer, gutter int) {
	r.ruleCols(w, gutter, 7)
}

func (r Renderer) ruleCols(w io.Writer, gutter, cols int) {
	seg := strings.Repeat("-", r.cellWidth())
	fmt.Fprintln(w, strings.Repeat(" ", gutter)+"+"+strings.Repeat(seg+"+", cols))
}

func (r Renderer) cellWidth() int {
	if r.CellWidth < 6 {
		return DefaultCellWidth
	}
	return r.CellWidth
}

func (r Renderer) now() time.Time {
	if r.Now.IsZero() {
		return time.Now()
	}
	return r.Now
}

// pad fits s into exactly width runes, truncating with an ellipsis.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		runes := []rune(s)
		return string(runes[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-n)
}
