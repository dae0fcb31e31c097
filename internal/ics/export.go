// Package ics renders events as an iCalendar feed, one VALARM per reminder.
package ics

import (
	"fmt"
	"io"
	"iter"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/sandeepkv93/eventd/internal/codec"
	"github.com/sandeepkv93/eventd/internal/model"
)

const productID = "-//eventd//eventd//EN"

// eventNamespace scopes the name-based UIDs so an unchanged event keeps its
// UID across exports.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/sandeepkv93/eventd"))

// Build converts entries into a calendar. stamp is written as DTSTAMP.
func Build(entries iter.Seq2[model.Date, model.Event], stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	seen := make(map[string]int)
	for date, ev := range entries {
		line := codec.EncodeLine(date, ev)
		n := seen[line]
		seen[line]++

		vev := cal.AddEvent(UID(line, n))
		vev.SetDtStampTime(stamp)
		vev.SetStartAt(ev.OccursAt)
		vev.SetSummary(ev.Title)
		if ev.Description != "" {
			vev.SetDescription(ev.Description)
		}
		for _, r := range ev.Reminders {
			alarm := vev.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetTrigger(Trigger(r.OffsetMinutes))
			alarm.SetProperty(ical.ComponentPropertyDescription, ev.Title)
		}
	}
	return cal
}

// Export writes the calendar for entries to w.
func Export(w io.Writer, entries iter.Seq2[model.Date, model.Event], stamp time.Time) error {
	_, err := io.WriteString(w, Build(entries, stamp).Serialize())
	return err
}

// UID derives a stable identifier from the encoded event line. n separates
// identical events on the same day.
func UID(line string, n int) string {
	return uuid.NewSHA1(eventNamespace, []byte(line+"#"+strconv.Itoa(n))).String() + "@eventd"
}

// Trigger renders a reminder offset as a relative VALARM trigger.
func Trigger(offsetMinutes int) string {
	return fmt.Sprintf("-PT%dM", offsetMinutes)
}
