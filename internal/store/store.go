// Package store persists canonical events in an embedded Badger
// database via badgerhold. The contract that matters to the rest of the
// system is idempotent upsert: storing an event whose ID already exists
// overwrites it and never creates a duplicate row, so re-ingesting the
// same calendar day is a no-op.
package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/phuslu/log"
	"github.com/timshannon/badgerhold/v4"

	"github.com/openquants/tradelens/pkg/models"
)

// storedEvent is the persisted shape: the event plus its UTC calendar
// day, indexed so per-day candidate queries don't scan the whole bucket.
type storedEvent struct {
	models.Event
	Day string `badgerhold:"index"`
}

// Store wraps the badgerhold event bucket.
type Store struct {
	db *badgerhold.Store
}

// Open opens (or creates) the event store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil

	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open event store at %s: %w", path, err)
	}

	log.Debug().Str("path", path).Msg("event store opened")
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertEvents stores the events keyed by ID and returns how many were
// written. Invalid events are skipped, never stored; a failure on one
// event does not abort the rest.
func (s *Store) UpsertEvents(ctx context.Context, events []models.Event) (int, error) {
	stored := 0
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		if !ev.Valid() {
			log.Warn().Str("id", ev.ID).Msg("invalid event not stored")
			continue
		}
		se := storedEvent{Event: ev, Day: ev.Day()}
		if err := s.db.Upsert(ev.ID, &se); err != nil {
			log.Error().Err(err).Str("id", ev.ID).Str("event", ev.Event).Msg("upsert failed")
			continue
		}
		stored++
	}
	return stored, nil
}

// EventsByDay returns the events of one UTC calendar day (YYYY-MM-DD),
// optionally narrowed to the given currencies and impact levels.
func (s *Store) EventsByDay(_ context.Context, day string, currencies, impacts []string) ([]models.Event, error) {
	var rows []storedEvent
	if err := s.db.Find(&rows, badgerhold.Where("Day").Eq(day)); err != nil {
		return nil, fmt.Errorf("query events for %s: %w", day, err)
	}
	return filterEvents(rows, currencies, impacts), nil
}

// EventsBetween returns events whose timestamp falls in [start, end],
// narrowed to the given currencies and impacts. It feeds the
// correlator's candidate pools, so the range may span two calendar days
// (the Asia session starts on the previous day).
func (s *Store) EventsBetween(ctx context.Context, start, end time.Time, currencies, impacts []string) ([]models.Event, error) {
	var out []models.Event
	for day := dayOf(start); !day.After(dayOf(end)); day = day.AddDate(0, 0, 1) {
		events, err := s.EventsByDay(ctx, day.Format("2006-01-02"), currencies, impacts)
		if err != nil {
			return nil, err
		}
		for _, ev := range events {
			if !ev.TimeUTC.Before(start) && !ev.TimeUTC.After(end) {
				out = append(out, ev)
			}
		}
	}
	return out, nil
}

// CountByDay returns how many events are stored for a UTC calendar day.
func (s *Store) CountByDay(_ context.Context, day string) (int, error) {
	n, err := s.db.Count(&storedEvent{}, badgerhold.Where("Day").Eq(day))
	if err != nil {
		return 0, fmt.Errorf("count events for %s: %w", day, err)
	}
	return int(n), nil
}

// Badger returns the raw badger DB, for maintenance commands.
func (s *Store) Badger() *badger.DB {
	return s.db.Badger()
}

func filterEvents(rows []storedEvent, currencies, impacts []string) []models.Event {
	out := make([]models.Event, 0, len(rows))
	for _, row := range rows {
		if len(currencies) > 0 && !contains(currencies, row.Currency) {
			continue
		}
		if len(impacts) > 0 && !contains(impacts, row.Impact) {
			continue
		}
		out = append(out, row.Event)
	}
	return out
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
