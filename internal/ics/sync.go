package ics

import (
	"github.com/rs/zerolog"

	"github.com/Tiliavir/trivial-calendar/internal/model"
	"github.com/Tiliavir/trivial-calendar/internal/store"
)

// SyncResult holds counters for a sync run.
type SyncResult struct {
	Imported int
	Updated  int
	Skipped  int
}

// Syncer merges imported events into a store. It remembers which store
// event each UID became, so importing the same calendar again updates or
// skips instead of duplicating. UIDs produced by Export map back to the
// exported event.
type Syncer struct {
	store *store.Store
	links map[string]string
	log   zerolog.Logger
}

// NewSyncer creates a Syncer writing to st.
func NewSyncer(st *store.Store, log zerolog.Logger) *Syncer {
	return &Syncer{
		store: st,
		links: map[string]string{},
		log:   log.With().Str("component", "ics").Logger(),
	}
}

// Sync applies events to the store. With dryRun the store is left alone and
// the result reports what would have happened, including repeated UIDs
// within events. Events without a UID cannot be matched and are added on
// every sync.
func (s *Syncer) Sync(events []Imported, dryRun bool) (SyncResult, error) {
	var result SyncResult
	planned := map[string]model.EventData{}

	for _, in := range events {
		existing, found := s.lookup(in.UID)
		if dryRun && in.UID != "" {
			if data, ok := planned[in.UID]; ok {
				existing.EventData, found = data, true
			}
		}
		if found {
			if sameData(existing.EventData, in.EventData) {
				s.log.Debug().Str("uid", in.UID).Str("title", in.Title).Msg("skipped, already exists")
				result.Skipped++
				continue
			}
			if dryRun {
				planned[in.UID] = in.EventData
			} else if err := s.store.Update(existing.ID, in.EventData); err != nil {
				return result, err
			}
			s.log.Debug().Str("uid", in.UID).Str("event_id", existing.ID).Msg("updated")
			result.Updated++
			continue
		}

		if dryRun {
			if in.UID != "" {
				planned[in.UID] = in.EventData
			}
		} else {
			ev := s.store.Add(in.EventData)
			if in.UID != "" {
				s.links[in.UID] = ev.ID
			}
			s.log.Debug().Str("uid", in.UID).Str("event_id", ev.ID).Msg("imported")
		}
		result.Imported++
	}
	return result, nil
}

// lookup finds the live event a UID belongs to.
func (s *Syncer) lookup(uid string) (model.Event, bool) {
	if uid == "" {
		return model.Event{}, false
	}
	if id, ok := s.links[uid]; ok {
		if ev, ok := s.store.Get(id); ok {
			return ev, true
		}
		delete(s.links, uid)
	}
	for _, ev := range s.store.List() {
		if UID(ev.ID) == uid {
			s.links[uid] = ev.ID
			return ev, true
		}
	}
	return model.Event{}, false
}

func sameData(a, b model.EventData) bool {
	return a.Title == b.Title &&
		a.DescriptionText() == b.DescriptionText() &&
		a.Date.Equal(b.Date) &&
		a.StartTime == b.StartTime &&
		a.EndTime == b.EndTime &&
		a.Color == b.Color &&
		a.AllDay == b.AllDay
}
