package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var ErrEmptyTitle = errors.New("model: event title is required")

const (
	ClockLayout   = "15:04"
	DisplayLayout = "Jan 02, 2006 15:04"
)

// Event is a calendar occurrence with its reminders. Offsets and fired flags
// share one slice so they can never drift apart in length.
type Event struct {
	Title       string
	OccursAt    time.Time
	Description string
	Reminders   []Reminder
}

// NewEvent validates the input and returns an Event whose reminders are all
// pending. OccursAt is truncated to whole seconds, the precision of the data
// file.
func NewEvent(title string, occursAt time.Time, description string, offsets []int) (Event, error) {
	ev := Event{
		Title:       title,
		OccursAt:    occursAt.Truncate(time.Second),
		Description: description,
		Reminders:   newReminders(offsets),
	}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if e.OccursAt.IsZero() {
		return errors.New("model: event time is required")
	}
	for _, r := range e.Reminders {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (e Event) Date() Date {
	return DateOf(e.OccursAt)
}

func (e Event) Offsets() []int {
	out := make([]int, 0, len(e.Reminders))
	for _, r := range e.Reminders {
		out = append(out, r.OffsetMinutes)
	}
	return out
}

// ReminderAt returns the instant at which reminder i becomes due.
func (e Event) ReminderAt(i int) time.Time {
	return e.OccursAt.Add(-time.Duration(e.Reminders[i].OffsetMinutes) * time.Minute)
}

// PendingCount is the number of reminders not yet delivered.
func (e Event) PendingCount() int {
	n := 0
	for _, r := range e.Reminders {
		if !r.Fired {
			n++
		}
	}
	return n
}

// InheritDelivery copies fired flags from prev for reminders whose offset is
// unchanged, provided the event still occurs at the same instant. Each old
// reminder is matched at most once so duplicate offsets stay independent.
func (e *Event) InheritDelivery(prev Event) {
	if !e.OccursAt.Equal(prev.OccursAt) {
		return
	}
	used := make([]bool, len(prev.Reminders))
	for i := range e.Reminders {
		for j, old := range prev.Reminders {
			if used[j] || old.OffsetMinutes != e.Reminders[i].OffsetMinutes {
				continue
			}
			used[j] = true
			e.Reminders[i].Fired = old.Fired
			break
		}
	}
}

func (e Event) Clone() Event {
	out := e
	out.Reminders = slices.Clone(e.Reminders)
	return out
}

// Equal compares everything except delivery state.
func (e Event) Equal(other Event) bool {
	return e.Title == other.Title &&
		e.OccursAt.Equal(other.OccursAt) &&
		e.Description == other.Description &&
		slices.Equal(e.Offsets(), other.Offsets())
}

// String renders the agenda line for the event.
func (e Event) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s", e.OccursAt.Format(ClockLayout), e.Title)
	if e.Description != "" {
		b.WriteString("\n   " + e.Description)
	}
	if len(e.Reminders) > 0 {
		b.WriteString("\n   reminders: " + joinLabels(e.Reminders))
	}
	return b.String()
}
