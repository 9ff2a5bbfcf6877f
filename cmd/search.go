package cmd

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-calendar/internal/query"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find events by title or description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSearch(cal, cmd.OutOrStdout(), args)
	},
}

func runSearch(a *app, w io.Writer, args []string) error {
	q := strings.Join(args, " ")
	matches := query.Search(a.session.Events(), q)
	a.renderer().SearchResults(w, q, matches)
	return nil
}
