// Package store holds the in-memory event model keyed by calendar date.
//
// A Store is safe for concurrent use. Every operation, including a full
// reminder sweep, runs under one mutex so readers never observe a partial
// mutation. Callers only ever receive copies of the events it owns.
package store

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/sandeepkv93/eventd/internal/model"
)

var ErrOutOfRange = errors.New("store: index out of range")

type Store struct {
	mu     sync.RWMutex
	days   map[model.Date][]*model.Event
	order  []model.Date
	events int
}

func New() *Store {
	return &Store{days: make(map[model.Date][]*model.Event)}
}

// Add appends ev to the sequence for date, creating the sequence if needed.
func (s *Store) Add(date model.Date, ev model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLocked(date, ev)
}

// AddAll appends every pair from seq under a single lock acquisition. seq is
// drained before the lock is taken, so it may read from s itself.
func (s *Store) AddAll(seq iter.Seq2[model.Date, model.Event]) int {
	pending := collect(seq)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range pending {
		s.addLocked(e.date, e.event)
	}
	return len(pending)
}

// ReplaceAll swaps the whole contents for the pairs from seq. Readers see
// either the old or the new contents, never a mix.
func (s *Store) ReplaceAll(seq iter.Seq2[model.Date, model.Event]) int {
	pending := collect(seq)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	for _, e := range pending {
		s.addLocked(e.date, e.event)
	}
	return len(pending)
}

// Reload replaces the contents like ReplaceAll, but an incoming event that is
// Equal to a not yet matched event on the same date keeps that event's
// delivery state. Reloading an unchanged file therefore fires nothing twice.
func (s *Store) Reload(seq iter.Seq2[model.Date, model.Event]) int {
	pending := collect(seq)
	s.mu.Lock()
	defer s.mu.Unlock()
	used := make(map[*model.Event]bool)
	for i := range pending {
		for _, prev := range s.days[pending[i].date] {
			if used[prev] || !prev.Equal(pending[i].event) {
				continue
			}
			used[prev] = true
			pending[i].event = pending[i].event.Clone()
			pending[i].event.InheritDelivery(*prev)
			break
		}
	}
	s.clearLocked()
	for _, e := range pending {
		s.addLocked(e.date, e.event)
	}
	return len(pending)
}

func collect(seq iter.Seq2[model.Date, model.Event]) []entry {
	var out []entry
	for date, ev := range seq {
		out = append(out, entry{date: date, event: ev})
	}
	return out
}

func (s *Store) addLocked(date model.Date, ev model.Event) {
	cp := ev.Clone()
	if _, ok := s.days[date]; !ok {
		s.order = append(s.order, date)
	}
	s.days[date] = append(s.days[date], &cp)
	s.events++
}

// RemoveAt removes and returns the event at index on date. The date key is
// dropped once its last event is gone.
func (s *Store) RemoveAt(date model.Date, index int) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, err := s.removeLocked(date, index)
	if err != nil {
		return model.Event{}, err
	}
	return ev.Clone(), nil
}

func (s *Store) removeLocked(date model.Date, index int) (*model.Event, error) {
	seq, ok := s.days[date]
	if !ok || index < 0 || index >= len(seq) {
		return nil, fmt.Errorf("%w: %s[%d]", ErrOutOfRange, date, index)
	}
	ev := seq[index]
	seq = slices.Delete(seq, index, index+1)
	if len(seq) == 0 {
		delete(s.days, date)
		s.order = slices.DeleteFunc(s.order, func(d model.Date) bool { return d == date })
	} else {
		s.days[date] = seq
	}
	s.events--
	return ev, nil
}

// MoveEvent replaces the event at oldDate[index] with next, appended to the
// end of newDate's sequence. Both steps happen under one lock acquisition.
// Reminders that are unchanged keep their delivery state.
func (s *Store) MoveEvent(oldDate model.Date, index int, newDate model.Date, next model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, err := s.removeLocked(oldDate, index)
	if err != nil {
		return err
	}
	next = next.Clone()
	next.InheritDelivery(*prev)
	s.addLocked(newDate, next)
	return nil
}

// EventsOn returns copies of the events for date, or an empty slice.
func (s *Store) EventsOn(date model.Date) []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq := s.days[date]
	out := make([]model.Event, 0, len(seq))
	for _, ev := range seq {
		out = append(out, ev.Clone())
	}
	return out
}

// All yields every (date, event) pair. Each call to the returned sequence
// takes a fresh consistent view, so it can be iterated more than once.
func (s *Store) All() iter.Seq2[model.Date, model.Event] {
	return func(yield func(model.Date, model.Event) bool) {
		for _, e := range s.Snapshot().entries {
			if !yield(e.date, e.event) {
				return
			}
		}
	}
}

// Range yields the events whose date lies in [from, to], in date order.
func (s *Store) Range(from, to model.Date) iter.Seq2[model.Date, model.Event] {
	return func(yield func(model.Date, model.Event) bool) {
		s.mu.RLock()
		dates := make([]model.Date, 0, len(s.order))
		for _, d := range s.order {
			if !d.Before(from) && !d.After(to) {
				dates = append(dates, d)
			}
		}
		s.mu.RUnlock()
		slices.SortFunc(dates, model.Date.Compare)
		for _, d := range dates {
			for _, ev := range s.EventsOn(d) {
				if !yield(d, ev) {
					return
				}
			}
		}
	}
}

// Dates returns the date keys in insertion-derived order.
func (s *Store) Dates() []model.Date {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Store) clearLocked() {
	s.days = make(map[model.Date][]*model.Event)
	s.order = nil
	s.events = 0
}

// Due is one reminder that crossed its threshold during a sweep.
type Due struct {
	Date          model.Date
	Event         model.Event
	Index         int
	OffsetMinutes int
	At            time.Time
}

// CollectDue flips every pending reminder whose instant is at or before now
// to fired and returns them. Reminders that are more than maxLateness
// overdue are flipped without being returned; maxLateness <= 0 disables
// that cutoff.
func (s *Store) CollectDue(now time.Time, maxLateness time.Duration) ([]Due, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []Due
	skipped := 0
	for _, date := range s.order {
		for _, ev := range s.days[date] {
			for i := range ev.Reminders {
				if ev.Reminders[i].Fired {
					continue
				}
				at := ev.ReminderAt(i)
				if now.Before(at) {
					continue
				}
				ev.Reminders[i].Fired = true
				if maxLateness > 0 && now.Sub(at) > maxLateness {
					skipped++
					continue
				}
				due = append(due, Due{
					Date:          date,
					Event:         ev.Clone(),
					Index:         i,
					OffsetMinutes: ev.Reminders[i].OffsetMinutes,
					At:            at,
				})
			}
		}
	}
	return due, skipped
}

type entry struct {
	date  model.Date
	event model.Event
}

// Snapshot is a deep copy of the store contents, including delivery state.
type Snapshot struct {
	entries []entry
}

func (s Snapshot) Len() int { return len(s.entries) }

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := Snapshot{entries: make([]entry, 0, s.events)}
	for _, date := range s.order {
		for _, ev := range s.days[date] {
			out.entries = append(out.entries, entry{date: date, event: ev.Clone()})
		}
	}
	return out
}

// Restore replaces the store contents with snap.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	for _, e := range snap.entries {
		s.addLocked(e.date, e.event)
	}
}

// Entries yields the snapshot's (date, event) pairs in store order.
func (s Snapshot) Entries() iter.Seq2[model.Date, model.Event] {
	return func(yield func(model.Date, model.Event) bool) {
		for _, e := range s.entries {
			if !yield(e.date, e.event.Clone()) {
				return
			}
		}
	}
}
