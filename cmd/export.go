package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/trivial-calendar/internal/ics"
	"github.com/Tiliavir/trivial-calendar/internal/model"
	"github.com/Tiliavir/trivial-calendar/internal/query"
	"github.com/Tiliavir/trivial-calendar/internal/storage"
	"github.com/Tiliavir/trivial-calendar/internal/timecalc"
)

// exportFormats lists the accepted --format values.
var exportFormats = []string{"csv", "json", "yaml", "md", "ics"}

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all events to stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cal, cmd.OutOrStdout(), exportFormat, exportOutput)
	},
}

func init() {
	addExportFlags(exportCmd, &exportFormat, &exportOutput)
}

func addExportFlags(c *cobra.Command, format, output *string) {
	c.Flags().StringVar(format, "format", "csv", "Output format: "+strings.Join(exportFormats, ", "))
	c.Flags().StringVarP(output, "output", "o", "", "Write to a file instead of stdout")
}

// runExport writes all events in format to w, or to the file output when set.
func runExport(a *app, w io.Writer, format, output string) error {
	events := query.SortChronologically(a.session.Events())
	if output == "" {
		return writeEvents(w, events, format, a.now())
	}
	err := storage.WriteAtomic(output, 0o644, func(f io.Writer) error {
		return writeEvents(f, events, format, a.now())
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %d events to %s\n", len(events), output)
	return nil
}

func writeEvents(w io.Writer, events []model.Event, format string, stamp time.Time) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(events, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(events); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	case "md":
		printMarkdown(w, events)
	case "ics":
		return ics.Export(w, events, stamp)
	case "csv":
		return writeCSV(w, events)
	default:
		return fmt.Errorf("unknown format %q (want %s)", format, strings.Join(exportFormats, ", "))
	}
	return nil
}

var csvHeader = []string{"id", "date", "title", "description", "start_time", "end_time", "all_day", "color"}

func writeCSV(w io.Writer, events []model.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range events {
		record := []string{
			e.ID,
			e.Date.Format(timecalc.DateLayout),
			e.Title,
			e.DescriptionText(),
			e.StartTime,
			e.EndTime,
			strconv.FormatBool(e.AllDay),
			string(e.Color),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}

func printMarkdown(w io.Writer, events []model.Event) {
	fmt.Fprintln(w, "| Date | Time | Title | Description | Color |")
	fmt.Fprintln(w, "|------|------|-------|-------------|-------|")
	for _, e := range events {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
			e.Date.Format(timecalc.DateLayout),
			strings.TrimSpace(agendaTime(e)),
			mdEscape(e.Title),
			mdEscape(e.DescriptionText()),
			e.Color,
		)
	}
}

// mdEscape keeps a value inside a single table cell.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
