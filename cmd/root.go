package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-calendar/internal/config"
	"github.com/Tiliavir/trivial-calendar/internal/ics"
	"github.com/Tiliavir/trivial-calendar/internal/logging"
	"github.com/Tiliavir/trivial-calendar/internal/model"
	"github.com/Tiliavir/trivial-calendar/internal/render"
	"github.com/Tiliavir/trivial-calendar/internal/session"
	"github.com/Tiliavir/trivial-calendar/internal/store"
	"github.com/Tiliavir/trivial-calendar/internal/timecalc"
)

var (
	cfgPath    string
	rootDate   string
	rootImport string
	rootNoSeed bool
	rootLog    string
	rootColor  string
)

// cal is the calendar built by the root command before any subcommand runs.
var cal *app

var rootCmd = &cobra.Command{
	Use:   "tcal",
	Short: "Trivial Calendar – a terminal month/week calendar",
	Long: `tcal shows a month or week calendar in the terminal and lets you
create, edit and delete events in an interactive shell.

Events live in memory for the duration of the process. Start from the demo
events, import an iCalendar file with --import, and export with "tcal export".
Settings are read from ~/.tcal/config.yaml and TCAL_* environment variables.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "Config file (default ~/.tcal/config.yaml)")
	pf.StringVar(&rootDate, "date", "", "Date to display (YYYY-MM-DD, default today)")
	pf.StringVar(&rootImport, "import", "", "Load events from an .ics file")
	pf.BoolVar(&rootNoSeed, "no-seed", false, "Start without the demo events")
	pf.StringVar(&rootLog, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&rootColor, "color", "", "Color output: auto, always, never")

	rootCmd.AddCommand(monthCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(configCmd)
}

// app bundles everything a command needs to read or change the calendar.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	store    *store.Store
	session  *session.Controller
	syncer   *ics.Syncer
	color    bool
	compact  bool
	now      func() time.Time
	location *time.Location
}

// setup loads config, applies flag overrides and builds the calendar.
func setup(cmd *cobra.Command, args []string) error {
	path := cfgPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	cfg, warnings, err := config.Load(path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("date") {
		if _, err := timecalc.ParseDate(rootDate, time.Local); err != nil {
			return err
		}
		cfg.Calendar.StartDate = rootDate
	}
	if rootNoSeed {
		cfg.Calendar.Seed = false
	}
	if rootLog != "" {
		if _, err := logging.ParseLevel(rootLog); err != nil {
			return err
		}
		cfg.Log.Level = rootLog
	}
	if rootColor != "" {
		switch rootColor {
		case "auto", "always", "never":
			cfg.Calendar.Color = rootColor
		default:
			return fmt.Errorf("invalid --color %q (want auto, always or never)", rootColor)
		}
	}
	warnings = append(warnings, cfg.Normalize()...)

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	log := logging.New(os.Stderr, level, render.ColorEnabled(cfg.Calendar.Color, os.Stderr))
	for _, w := range warnings {
		log.Warn().Str("config", path).Msg(w)
	}

	a, err := newApp(cfg, log, time.Now, time.Local)
	if err != nil {
		return err
	}
	a.color = render.ColorEnabled(cfg.Calendar.Color, os.Stdout)
	if a.color {
		cmd.Root().SetOut(colorable.NewColorableStdout())
	}

	if rootImport != "" {
		if _, err := a.importFile(rootImport, false); err != nil {
			return err
		}
	}
	cal = a
	return nil
}

// newApp builds the store and session from cfg. Times are placed in loc.
func newApp(cfg config.Config, log zerolog.Logger, now func() time.Time, loc *time.Location) (*app, error) {
	a := &app{cfg: cfg, log: log, now: now, location: loc}

	var storeOpts []store.Option
	if cfg.Calendar.Seed {
		storeOpts = append(storeOpts, store.WithEvents(model.SeedEvents(loc)))
	}
	storeOpts = append(storeOpts, store.WithClock(now))
	a.store = store.New(log, storeOpts...)
	a.syncer = ics.NewSyncer(a.store, log)

	view, err := session.ParseView(cfg.Calendar.DefaultView)
	if err != nil {
		return nil, err
	}
	opts := []session.Option{
		session.WithClock(now),
		session.WithView(view),
		session.WithDefaults(session.Defaults{
			StartTime: cfg.Calendar.DefaultStartTime,
			EndTime:   cfg.Calendar.DefaultEndTime,
			Color:     model.Color(cfg.Calendar.DefaultColor),
		}),
	}
	if cfg.Calendar.StartDate != "" {
		d, err := timecalc.ParseDate(cfg.Calendar.StartDate, loc)
		if err != nil {
			return nil, err
		}
		opts = append(opts, session.WithCurrent(d))
	}
	a.session = session.New(a.store, log, opts...)
	return a, nil
}

// importFile merges the events of an iCalendar file into the store.
func (a *app) importFile(path string, dryRun bool) (ics.SyncResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ics.SyncResult{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return a.importFrom(f, path, dryRun)
}

func (a *app) importFrom(r io.Reader, name string, dryRun bool) (ics.SyncResult, error) {
	events, err := ics.NewImporter(a.location, a.log).Import(r)
	if err != nil {
		return ics.SyncResult{}, fmt.Errorf("importing %s: %w", name, err)
	}
	res, err := a.syncer.Sync(events, dryRun)
	if err != nil {
		return res, fmt.Errorf("importing %s: %w", name, err)
	}
	a.log.Info().Str("file", name).
		Int("imported", res.Imported).
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Msg("calendar imported")
	return res, nil
}

// renderer returns a Renderer reading the session clock.
func (a *app) renderer() render.Renderer {
	return render.Renderer{Color: a.color, Compact: a.compact, Now: a.session.Now()}
}

// selection returns what the views should highlight.
func (a *app) selection() render.Selection {
	st := a.session.State()
	return render.Selection{Current: st.Current, Selected: st.Selected}
}
