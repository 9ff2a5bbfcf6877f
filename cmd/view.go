package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-calendar/internal/session"
)

var weekCompact bool

var monthCmd = &cobra.Command{
	Use:   "month",
	Short: "Show the month grid",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runView(cal, cmd.OutOrStdout(), session.ViewMonth)
	},
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show the week grid with one row per hour",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cal.compact = weekCompact
		return runView(cal, cmd.OutOrStdout(), session.ViewWeek)
	},
}

func init() {
	weekCmd.Flags().BoolVar(&weekCompact, "compact", false, "Hide hours without events")
}

func runView(a *app, w io.Writer, v session.View) error {
	a.session.SetView(v)
	a.showView(w)
	return nil
}

// showView draws the session's current view.
func (a *app) showView(w io.Writer) {
	r := a.renderer()
	events := a.session.Events()
	if a.session.State().View == session.ViewWeek {
		r.Week(w, a.selection(), events)
		return
	}
	r.Month(w, a.selection(), events)
}
