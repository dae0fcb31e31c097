package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNegativeOffset = errors.New("model: reminder offset must not be negative")

// ReminderPresets are the offsets offered by the add/edit forms: one day,
// one hour, 30 minutes, 10 minutes and at event time.
var ReminderPresets = []int{1440, 60, 30, 10, 0}

// Reminder is one notification threshold of an Event. Fired is in-memory
// delivery state only and is never persisted.
type Reminder struct {
	OffsetMinutes int
	Fired         bool
}

func (r Reminder) Validate() error {
	if r.OffsetMinutes < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeOffset, r.OffsetMinutes)
	}
	return nil
}

// Label renders the offset the way the agenda lists it.
func (r Reminder) Label() string {
	if r.OffsetMinutes == 0 {
		return "at time"
	}
	return fmt.Sprintf("%dmin before", r.OffsetMinutes)
}

func newReminders(offsets []int) []Reminder {
	out := make([]Reminder, 0, len(offsets))
	for _, off := range offsets {
		out = append(out, Reminder{OffsetMinutes: off})
	}
	return out
}

// FormatOffset renders a reminder offset in the largest whole unit.
func FormatOffset(minutes int) string {
	switch {
	case minutes >= 1440:
		return fmt.Sprintf("%d day(s)", minutes/1440)
	case minutes >= 60:
		return fmt.Sprintf("%d hour(s)", minutes/60)
	default:
		return fmt.Sprintf("%d minute(s)", minutes)
	}
}

func joinLabels(reminders []Reminder) string {
	labels := make([]string, 0, len(reminders))
	for _, r := range reminders {
		labels = append(labels, r.Label())
	}
	return strings.Join(labels, ", ")
}
