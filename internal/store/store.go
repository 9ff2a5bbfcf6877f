// Package store owns the authoritative in-memory event collection.
//
// Every successful mutation replaces the collection with a new slice, so a
// snapshot returned by List never changes after the fact. Callers detect
// changes by comparing Version values. A Store is not safe for concurrent
// use.
package store

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/trivial-calendar/internal/model"
	"github.com/Tiliavir/trivial-calendar/internal/timecalc"
)

// maxIDAttempts bounds how often a custom ID generator is asked for a fresh
// ID before falling back to timecalc.GenerateID.
const maxIDAttempts = 100

// ErrEventNotFound is returned when no live event has the requested ID.
var ErrEventNotFound = errors.New("event not found")

// Store holds the live events and assigns their IDs.
type Store struct {
	events  []model.Event
	version uint64
	// issued holds every ID ever seen so deleted IDs are never handed out again.
	issued map[string]struct{}
	newID  func(time.Time) string
	now    func() time.Time
	log    zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithEvents preloads the collection. The slice is copied.
func WithEvents(events []model.Event) Option {
	return func(s *Store) { s.events = slices.Clone(events) }
}

// WithIDFunc replaces the ID generator. Generated IDs that were already
// issued during the store's lifetime are regenerated; a generator that keeps
// repeating itself is replaced by timecalc.GenerateID.
func WithIDFunc(fn func(time.Time) string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock replaces the clock passed to the ID generator.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store.
func New(log zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		newID: timecalc.GenerateID,
		now:   time.Now,
		log:   log.With().Str("component", "store").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.events == nil {
		s.events = []model.Event{}
	}
	s.issued = make(map[string]struct{}, len(s.events))
	for _, e := range s.events {
		s.issued[e.ID] = struct{}{}
	}
	return s
}

// List returns the current snapshot. Callers must treat it as read-only.
func (s *Store) List() []model.Event {
	return s.events
}

// Version increments once per successful mutation.
func (s *Store) Version() uint64 {
	return s.version
}

// Get looks up a live event by ID.
func (s *Store) Get(id string) (model.Event, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.events[i], true
	}
	return model.Event{}, false
}

// Add creates an event from data under a fresh ID and returns it. An empty
// color is replaced with model.DefaultColor.
func (s *Store) Add(data model.EventData) model.Event {
	if data.Color == "" {
		data.Color = model.DefaultColor
	}
	ev := model.Event{ID: s.uniqueID(), EventData: data}

	next := make([]model.Event, len(s.events), len(s.events)+1)
	copy(next, s.events)
	s.commit(append(next, ev))

	s.log.Debug().Str("event_id", ev.ID).Str("title", ev.Title).Msg("event added")
	return ev
}

// Update replaces every field of the event with the given ID except the ID
// itself.
func (s *Store) Update(id string, data model.EventData) error {
	i := s.indexOf(id)
	if i < 0 {
		s.log.Warn().Str("event_id", id).Msg("update of unknown event")
		return fmt.Errorf("update %q: %w", id, ErrEventNotFound)
	}

	next := slices.Clone(s.events)
	next[i] = model.Event{ID: id, EventData: data}
	s.commit(next)

	s.log.Debug().Str("event_id", id).Str("title", data.Title).Msg("event updated")
	return nil
}

// Delete removes the event with the given ID.
func (s *Store) Delete(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		s.log.Warn().Str("event_id", id).Msg("delete of unknown event")
		return fmt.Errorf("delete %q: %w", id, ErrEventNotFound)
	}

	next := make([]model.Event, 0, len(s.events)-1)
	next = append(next, s.events[:i]...)
	next = append(next, s.events[i+1:]...)
	s.commit(next)

	s.log.Debug().Str("event_id", id).Msg("event deleted")
	return nil
}

func (s *Store) commit(next []model.Event) {
	s.events = next
	s.version++
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.events, func(e model.Event) bool { return e.ID == id })
}

func (s *Store) uniqueID() string {
	for attempt := 0; ; attempt++ {
		gen := s.newID
		if attempt >= maxIDAttempts {
			gen = timecalc.GenerateID
		}
		id := gen(s.now())
		if _, taken := s.issued[id]; !taken {
			s.issued[id] = struct{}{}
			return id
		}
		s.log.Debug().Str("event_id", id).Msg("generated id collides, retrying")
	}
}
