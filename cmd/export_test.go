package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-calendar/internal/config"
	"github.com/Tiliavir/trivial-calendar/internal/model"
	"github.com/Tiliavir/trivial-calendar/internal/session"
)

func exportString(t *testing.T, a *app, format string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, runExport(a, &buf, format, ""))
	return buf.String()
}

func TestExportCSV(t *testing.T) {
	out := exportString(t, newTestApp(t), "csv")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "id,date,title,description,start_time,end_time,all_day,color", lines[0])
	assert.Equal(t, "1,2024-11-15,Team Standup,Daily team sync,09:00,09:30,false,blue", lines[1])
	assert.Equal(t, "3,2024-11-16,All Hands Meeting,,10:00,11:00,true,green", lines[3])
}

func TestExportCSVQuotesFields(t *testing.T) {
	a := newTestApp(t)
	runLines(t, a, "new 2024-11-20", `save --title "Lunch, with ""Bob""" --start 12:00`)

	out := exportString(t, a, "csv")
	assert.Contains(t, out, `"Lunch, with ""Bob"""`)
}

func TestExportJSON(t *testing.T) {
	var events []model.Event
	require.NoError(t, json.Unmarshal([]byte(exportString(t, newTestApp(t), "json")), &events))
	require.Len(t, events, 3)
	assert.Equal(t, "1", events[0].ID)
	assert.Equal(t, "Team Standup", events[0].Title)
	assert.True(t, events[2].AllDay)
}

func TestExportYAML(t *testing.T) {
	out := exportString(t, newTestApp(t), "yaml")
	assert.Contains(t, out, "- id: \"1\"")
	assert.Contains(t, out, "title: Team Standup")
	assert.Contains(t, out, "all_day: true")
	assert.NotContains(t, out, "eventdata")
}

func TestExportMarkdown(t *testing.T) {
	out := exportString(t, newTestApp(t), "md")
	assert.True(t, strings.HasPrefix(out, "| Date | Time | Title | Description | Color |\n"))
	assert.Contains(t, out, "| 2024-11-15 | 09:00–09:30 | Team Standup | Daily team sync | blue |")
	assert.Contains(t, out, "| 2024-11-16 | all day | All Hands Meeting |  | green |")
}

func TestExportICS(t *testing.T) {
	out := exportString(t, newTestApp(t), "ics")
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Equal(t, 3, strings.Count(out, "BEGIN:VEVENT"))
}

func TestExportUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := runExport(newTestApp(t), &buf, "xml", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "xml"`)
}

func TestExportToFileAndReimport(t *testing.T) {
	a := newTestApp(t)
	path := filepath.Join(t.TempDir(), "out", "calendar.ics")

	var buf bytes.Buffer
	require.NoError(t, runExport(a, &buf, "ics", path))
	assert.Equal(t, "Wrote 3 events to "+path+"\n", buf.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "BEGIN:VCALENDAR")

	out, errOut := runLines(t, a, "import "+path)
	assert.Empty(t, errOut)
	assert.Contains(t, out, "Imported: 0  Updated: 0  Skipped: 3")
	assert.Len(t, a.session.Events(), 3)
}

func TestImportIntoEmptyCalendar(t *testing.T) {
	src := newTestApp(t)
	path := filepath.Join(t.TempDir(), "calendar.ics")
	require.NoError(t, runExport(src, &bytes.Buffer{}, "ics", path))

	cfg := config.Default()
	cfg.Calendar.Seed = false
	a, err := newApp(cfg, src.log, src.now, src.location)
	require.NoError(t, err)

	out, _ := runLines(t, a, "import --dry-run "+path, "state", "import "+path)
	assert.Contains(t, out, "[dry-run] Imported: 3  Updated: 0  Skipped: 0")
	assert.Contains(t, out, "events:   0 (version 0)")
	assert.Contains(t, out, "Imported: 3  Updated: 0  Skipped: 0")
	assert.Len(t, a.session.Events(), 3)
}

func TestList(t *testing.T) {
	a := newTestApp(t)

	var buf bytes.Buffer
	require.NoError(t, runList(a, &buf, listOptions{past: -1}))
	out := buf.String()
	assert.Contains(t, out, "Upcoming")
	assert.Contains(t, out, "Past Events")
	assert.Less(t, strings.Index(out, "Design Review"), strings.Index(out, "Past Events"))
	assert.Greater(t, strings.Index(out, "Team Standup"), strings.Index(out, "Past Events"))

	buf.Reset()
	require.NoError(t, runList(a, &buf, listOptions{past: 0}))
	assert.NotContains(t, buf.String(), "Past Events")
}

func TestListTodayAndWeek(t *testing.T) {
	a := newTestApp(t)

	var buf bytes.Buffer
	require.NoError(t, runList(a, &buf, listOptions{today: true}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "2024-11-15\n"))
	assert.Contains(t, out, "Team Standup")
	assert.Contains(t, out, "Design Review")
	assert.NotContains(t, out, "All Hands Meeting")

	buf.Reset()
	require.NoError(t, runList(a, &buf, listOptions{week: true}))
	out = buf.String()
	assert.Contains(t, out, "2024-11-16\n")
	assert.Contains(t, out, "all day      All Hands Meeting  [3]")
}

func TestNewAppHonoursConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Calendar.Seed = false
	cfg.Calendar.DefaultView = "week"
	cfg.Calendar.StartDate = "2024-02-10"
	cfg.Calendar.DefaultColor = "pink"

	a, err := newApp(cfg, newTestApp(t).log, func() time.Time { return testNow }, time.UTC)
	require.NoError(t, err)

	st := a.session.State()
	assert.Equal(t, session.ViewWeek, st.View)
	assert.Equal(t, "2024-02-10", st.Current.Format("2006-01-02"))
	assert.Empty(t, a.session.Events())
	assert.Equal(t, model.ColorPink, a.session.Form().Color)
}

func TestPrintConfig(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printConfig(&buf, config.Default()))
	assert.Contains(t, buf.String(), "default_view: month")
	assert.Contains(t, buf.String(), "level: warn")
}
