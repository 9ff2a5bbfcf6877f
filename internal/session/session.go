// Package session holds the interactive state of a running calendar: which
// view and month are shown, which day is selected and whether the event
// editor is open. The Controller translates user intents into store
// mutations.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/trivial-calendar/internal/model"
	"github.com/Tiliavir/trivial-calendar/internal/store"
	"github.com/Tiliavir/trivial-calendar/internal/timecalc"
)

var (
	// ErrEmptyTitle is returned by Save when the title is blank.
	ErrEmptyTitle = errors.New("title is required")
	// ErrEditorClosed is returned by Save when the editor is not open.
	ErrEditorClosed = errors.New("editor is not open")
	// ErrNotEditing is returned by Delete when no existing event is open.
	ErrNotEditing = errors.New("no event is being edited")
	// ErrInvalidView is returned by ParseView for unknown view names.
	ErrInvalidView = errors.New("invalid view")
)

// View selects the calendar grid.
type View string

const (
	ViewMonth View = "month"
	ViewWeek  View = "week"
)

// ParseView converts a view name.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewMonth, ViewWeek:
		return v, nil
	default:
		return "", fmt.Errorf("%w %q (want month or week)", ErrInvalidView, s)
	}
}

// State is a read-only copy of the session.
type State struct {
	View      View
	Current   time.Time
	Selected  *time.Time
	ModalOpen bool
	Editing   *model.Event
}

// Form holds the editor fields. The event date comes from the selection.
type Form struct {
	Title       string
	Description string
	StartTime   string
	EndTime     string
	AllDay      bool
	Color       model.Color
}

// Defaults prefill the editor when creating a new event.
type Defaults struct {
	StartTime string
	EndTime   string
	Color     model.Color
}

// DefaultFormDefaults are used when no config overrides them.
var DefaultFormDefaults = Defaults{StartTime: "09:00", EndTime: "10:00", Color: model.DefaultColor}

// Controller owns the session state and the event store.
type Controller struct {
	store    *store.Store
	state    State
	defaults Defaults
	now      func() time.Time
	log      zerolog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithView sets the initial view.
func WithView(v View) Option {
	return func(c *Controller) { c.state.View = v }
}

// WithCurrent sets the initially displayed date.
func WithCurrent(t time.Time) Option {
	return func(c *Controller) { c.state.Current = t }
}

// WithDefaults overrides the new-event form defaults. Empty fields keep
// DefaultFormDefaults.
func WithDefaults(d Defaults) Option {
	return func(c *Controller) {
		if d.StartTime != "" {
			c.defaults.StartTime = d.StartTime
		}
		if d.EndTime != "" {
			c.defaults.EndTime = d.EndTime
		}
		if d.Color != "" {
			c.defaults.Color = d.Color
		}
	}
}

// New creates a Controller in month view showing today.
func New(st *store.Store, log zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:    st,
		defaults: DefaultFormDefaults,
		now:      time.Now,
		log:      log.With().Str("component", "session").Logger(),
	}
	c.state.View = ViewMonth
	for _, opt := range opts {
		opt(c)
	}
	if c.state.Current.IsZero() {
		c.state.Current = c.now()
	}
	return c
}

// State returns a copy of the current session state.
func (c *Controller) State() State {
	s := c.state
	if s.Selected != nil {
		sel := *s.Selected
		s.Selected = &sel
	}
	if s.Editing != nil {
		ev := *s.Editing
		s.Editing = &ev
	}
	return s
}

// Events returns the store's current snapshot.
func (c *Controller) Events() []model.Event {
	return c.store.List()
}

// Version returns the store's mutation counter.
func (c *Controller) Version() uint64 {
	return c.store.Version()
}

// Now returns the controller's clock reading.
func (c *Controller) Now() time.Time {
	return c.now()
}

// SetView switches between month and week grids.
func (c *Controller) SetView(v View) {
	c.state.View = v
}

// PrevMonth moves to day 1 of the previous month, in either view.
func (c *Controller) PrevMonth() {
	c.state.Current = timecalc.AddMonths(c.state.Current, -1)
}

// NextMonth moves to day 1 of the next month, in either view.
func (c *Controller) NextMonth() {
	c.state.Current = timecalc.AddMonths(c.state.Current, 1)
}

// Today shows the current date.
func (c *Controller) Today() {
	c.state.Current = c.now()
}

// Goto shows the given date.
func (c *Controller) Goto(t time.Time) {
	c.state.Current = t
}

// ClickDate opens the editor for a new event on d.
func (c *Controller) ClickDate(d time.Time) {
	c.state.Selected = &d
	c.state.Editing = nil
	c.state.ModalOpen = true
	c.log.Debug().Time("date", d).Msg("creating event")
}

// ClickEvent opens the editor for an existing event.
func (c *Controller) ClickEvent(id string) error {
	ev, ok := c.store.Get(id)
	if !ok {
		return fmt.Errorf("open %q: %w", id, store.ErrEventNotFound)
	}
	d := ev.Date
	c.state.Editing = &ev
	c.state.Selected = &d
	c.state.ModalOpen = true
	c.log.Debug().Str("event_id", id).Msg("editing event")
	return nil
}

// Form returns the editor fields for the event being edited, or the
// defaults for a new event.
func (c *Controller) Form() Form {
	if ev := c.state.Editing; ev != nil {
		return Form{
			Title:       ev.Title,
			Description: ev.DescriptionText(),
			StartTime:   ev.StartTime,
			EndTime:     ev.EndTime,
			AllDay:      ev.AllDay,
			Color:       ev.Color,
		}
	}
	return Form{
		StartTime: c.defaults.StartTime,
		EndTime:   c.defaults.EndTime,
		Color:     c.defaults.Color,
	}
}

// Save stores the form. It updates the event being edited or adds a new one
// dated on the selected day (or now when nothing is selected). A blank title
// is rejected and the editor stays open.
func (c *Controller) Save(f Form) (model.Event, error) {
	if !c.state.ModalOpen {
		return model.Event{}, ErrEditorClosed
	}
	if strings.TrimSpace(f.Title) == "" {
		return model.Event{}, ErrEmptyTitle
	}

	date := c.now()
	if c.state.Selected != nil {
		date = *c.state.Selected
	}
	data := model.EventData{
		Title:     f.Title,
		Date:      date,
		StartTime: f.StartTime,
		EndTime:   f.EndTime,
		Color:     f.Color,
		AllDay:    f.AllDay,
	}
	if f.Description != "" {
		desc := f.Description
		data.Description = &desc
	}

	var saved model.Event
	if ev := c.state.Editing; ev != nil {
		if err := c.store.Update(ev.ID, data); err != nil {
			return model.Event{}, err
		}
		saved = model.Event{ID: ev.ID, EventData: data}
	} else {
		saved = c.store.Add(data)
	}

	c.state.ModalOpen = false
	c.state.Editing = nil
	c.log.Info().Str("event_id", saved.ID).Str("title", saved.Title).Msg("event saved")
	return saved, nil
}

// Delete removes the event being edited and closes the editor.
func (c *Controller) Delete() error {
	ev := c.state.Editing
	if ev == nil || !c.state.ModalOpen {
		return ErrNotEditing
	}
	if err := c.store.Delete(ev.ID); err != nil {
		return err
	}
	c.state.ModalOpen = false
	c.state.Editing = nil
	c.log.Info().Str("event_id", ev.ID).Msg("event deleted")
	return nil
}

// Close dismisses the editor and clears the selection.
func (c *Controller) Close() {
	c.state.ModalOpen = false
	c.state.Editing = nil
	c.state.Selected = nil
}
