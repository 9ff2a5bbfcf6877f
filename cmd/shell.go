package cmd

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-calendar/internal/model"
	"github.com/Tiliavir/trivial-calendar/internal/query"
	"github.com/Tiliavir/trivial-calendar/internal/session"
	"github.com/Tiliavir/trivial-calendar/internal/timecalc"
)

// errQuit ends the shell loop.
var errQuit = errors.New("quit")

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive calendar session",
	Long: `shell reads commands from stdin, one per line, and redraws the calendar
after every navigation. Type "help" for the command list and "quit" to leave.

Quote values that contain spaces:
  save --title "Lunch with Bob" --start 12:00 --end 13:00`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cal, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// runShell executes lines from in until EOF or quit. Command errors are
// printed and the loop continues.
func runShell(a *app, in io.Reader, out, errOut io.Writer) error {
	a.showView(out)

	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, shellPrompt(a))
	for scanner.Scan() {
		args, err := splitLine(scanner.Text())
		if err == nil && len(args) > 0 {
			err = execShellLine(a, args, out, errOut)
		}
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(errOut, "Error:", err)
		}
		fmt.Fprint(out, shellPrompt(a))
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

func shellPrompt(a *app) string {
	st := a.session.State()
	switch {
	case st.ModalOpen && st.Editing != nil:
		return fmt.Sprintf("tcal [edit %s]> ", st.Editing.ID)
	case st.ModalOpen && st.Selected != nil:
		return fmt.Sprintf("tcal [new %s]> ", st.Selected.Format(timecalc.DateLayout))
	default:
		return "tcal> "
	}
}

// splitLine breaks a line into words. Double quotes group words.
func splitLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(strings.ReplaceAll(line, "\t", " ")))
	r.Comma = ' '
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	record, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot parse line: %w", err)
	}
	words := record[:0]
	for _, w := range record {
		if w != "" {
			words = append(words, w)
		}
	}
	return words, nil
}

// execShellLine runs one command on a fresh command tree so flag values
// never leak from one line into the next.
func execShellLine(a *app, args []string, out, errOut io.Writer) error {
	root := newShellRoot(a)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.Execute()
}

func newShellRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tcal>",
		Short:         "Interactive calendar commands",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	navigate := func(use, short string, move func()) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				move()
				a.showView(cmd.OutOrStdout())
				return nil
			},
		}
	}

	var compact bool
	week := &cobra.Command{
		Use:   "week",
		Short: "Switch to the week grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.compact = compact
			return runView(a, cmd.OutOrStdout(), session.ViewWeek)
		},
	}
	week.Flags().BoolVar(&compact, "compact", false, "Hide hours without events")

	root.AddCommand(
		navigate("month", "Switch to the month grid", func() { a.session.SetView(session.ViewMonth) }),
		week,
		navigate("view", "Redraw the current view", func() {}),
		navigate("next", "Go to the next month", a.session.NextMonth),
		navigate("prev", "Go to the previous month", a.session.PrevMonth),
		navigate("today", "Go to today", a.session.Today),
		&cobra.Command{
			Use:   "goto <YYYY-MM-DD>",
			Short: "Show the given date",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := timecalc.ParseDate(args[0], a.location)
				if err != nil {
					return err
				}
				a.session.Goto(d)
				a.showView(cmd.OutOrStdout())
				return nil
			},
		},
		newNewCmd(a),
		newEditCmd(a),
		newSaveCmd(a),
		newDeleteCmd(a),
		&cobra.Command{
			Use:   "close",
			Short: "Close the editor and clear the selection",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a.session.Close()
				fmt.Fprintln(cmd.OutOrStdout(), "Editor closed.")
				return nil
			},
		},
		newShellListCmd(a),
		newDayCmd(a),
		newHourCmd(a),
		&cobra.Command{
			Use:   "search <query>",
			Short: "Find events by title or description",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSearch(a, cmd.OutOrStdout(), args)
			},
		},
		newShellExportCmd(a),
		newImportCmd(a),
		&cobra.Command{
			Use:   "state",
			Short: "Show the session state",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				printState(cmd.OutOrStdout(), a)
				return nil
			},
		},
		&cobra.Command{
			Use:     "quit",
			Aliases: []string{"exit"},
			Short:   "Leave the shell",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return errQuit
			},
		},
	)
	return root
}

func newNewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new [YYYY-MM-DD]",
		Short: "Open the editor for a new event",
		Long:  "new selects a day (default: the selected or displayed day) and opens the editor. Finish with save.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dayOrSelection(a, args)
			if err != nil {
				return err
			}
			a.session.ClickDate(timecalc.StartOfDay(d))
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "New event on %s\n", d.Format("Mon, Jan 2, 2006"))
			printForm(w, a.session.Form())
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id>",
		Short: "Open the editor for an existing event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.ClickEvent(args[0]); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Editing event %s\n", args[0])
			printForm(w, a.session.Form())
			return nil
		},
	}
}

func newSaveCmd(a *app) *cobra.Command {
	var (
		title, description, start, end, color string
		allDay                                bool
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the event in the editor",
		Long:  "save applies the given fields on top of the editor's current values and stores the event.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := a.session.Form()
			flags := cmd.Flags()
			if flags.Changed("title") {
				form.Title = title
			}
			if flags.Changed("description") {
				form.Description = description
			}
			if flags.Changed("start") {
				form.StartTime = start
			}
			if flags.Changed("end") {
				form.EndTime = end
			}
			if flags.Changed("all-day") {
				form.AllDay = allDay
			}
			if flags.Changed("color") {
				c, err := model.ParseColor(color)
				if err != nil {
					return err
				}
				form.Color = c
			}
			ev, err := a.session.Save(form)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Saved event %s\n", ev.ID)
			a.renderer().Details(w, ev)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "Event title (required)")
	f.StringVar(&description, "description", "", "Optional description")
	f.StringVar(&start, "start", "", "Start time HH:MM")
	f.StringVar(&end, "end", "", "End time HH:MM")
	f.BoolVar(&allDay, "all-day", false, "All-day event")
	f.StringVar(&color, "color", "", "Color: "+model.PaletteList())
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete the event in the editor, or the event with the given id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := a.session.ClickEvent(args[0]); err != nil {
					return err
				}
			}
			st := a.session.State()
			if err := a.session.Delete(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted event %s\n", st.Editing.ID)
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <file.ics>",
		Short: "Merge the events of an iCalendar file",
		Long: `import adds the events of an iCalendar file. Events imported before, or
exported from this calendar, are updated in place instead of duplicated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.importFile(args[0], dryRun)
			if err != nil {
				return err
			}
			prefix := ""
			if dryRun {
				prefix = "[dry-run] "
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%sImported: %d  Updated: %d  Skipped: %d\n",
				prefix, res.Imported, res.Updated, res.Skipped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report changes without applying them")
	return cmd
}

func newShellListCmd(a *app) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List upcoming and recent events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(a, cmd.OutOrStdout(), opts)
		},
	}
	addListFlags(cmd, &opts.past, &opts.today, &opts.week)
	return cmd
}

func newDayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "List the events of one day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dayOrSelection(a, args)
			if err != nil {
				return err
			}
			printAgenda(cmd.OutOrStdout(), query.SortChronologically(query.EventsOnDate(a.session.Events(), d)))
			return nil
		},
	}
}

func newHourCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hour <0-23> [YYYY-MM-DD]",
		Short: "List the events starting in one hour of a day",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hour, err := strconv.Atoi(args[0])
			if err != nil || hour < 0 || hour > 23 {
				return fmt.Errorf("invalid hour %q (want 0-23)", args[0])
			}
			d, err := dayOrSelection(a, args[1:])
			if err != nil {
				return err
			}
			printAgenda(cmd.OutOrStdout(), query.SortChronologically(query.EventsOnDateAtHour(a.session.Events(), d, hour)))
			return nil
		},
	}
}

func newShellExportCmd(a *app) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print all events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(a, cmd.OutOrStdout(), format, output)
		},
	}
	addExportFlags(cmd, &format, &output)
	return cmd
}

func printForm(w io.Writer, f session.Form) {
	fmt.Fprintf(w, "  title:       %s\n", f.Title)
	fmt.Fprintf(w, "  description: %s\n", f.Description)
	fmt.Fprintf(w, "  start:       %s\n", f.StartTime)
	fmt.Fprintf(w, "  end:         %s\n", f.EndTime)
	fmt.Fprintf(w, "  all-day:     %t\n", f.AllDay)
	fmt.Fprintf(w, "  color:       %s\n", f.Color)
	fmt.Fprintln(w, `Finish with: save --title "..." [--start HH:MM] [--end HH:MM] [--all-day] [--color name]`)
}

func printState(w io.Writer, a *app) {
	st := a.session.State()
	selected := "none"
	if st.Selected != nil {
		selected = st.Selected.Format(timecalc.DateLayout)
	}
	editor := "closed"
	switch {
	case st.ModalOpen && st.Editing != nil:
		editor = "editing " + st.Editing.ID
	case st.ModalOpen:
		editor = "new event"
	}
	fmt.Fprintf(w, "view:     %s\n", st.View)
	fmt.Fprintf(w, "current:  %s\n", st.Current.Format(timecalc.DateLayout))
	fmt.Fprintf(w, "selected: %s\n", selected)
	fmt.Fprintf(w, "editor:   %s\n", editor)
	fmt.Fprintf(w, "events:   %d (version %d)\n", len(a.session.Events()), a.session.Version())
}
